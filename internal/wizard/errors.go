package wizard

import "errors"

var (
	// ErrUnknownFlow is returned when a flow name is not registered.
	ErrUnknownFlow = errors.New("unknown wizard flow")
	// ErrUnknownField is returned by FormState.Set for an unknown field name.
	ErrUnknownField = errors.New("unknown form field")
	// ErrGuardFailed means the current step's inputs are not valid yet.
	ErrGuardFailed = errors.New("step is incomplete")
	// ErrWrongStep means the action does not apply to the current step.
	ErrWrongStep = errors.New("action not available on this step")
	// ErrBusy means a request of the same kind is already in flight.
	ErrBusy = errors.New("request already in progress")
	// ErrFinished means the lead was already submitted.
	ErrFinished = errors.New("wizard already completed")

	// ErrPhoneRequired is returned for an empty phone number.
	ErrPhoneRequired = errors.New("phone number is required")
	// ErrPhoneInvalid is returned for numbers that are not 10 or 11 digits.
	ErrPhoneInvalid = errors.New("phone number must have 10 or 11 digits")
	// ErrOTPNotSent is returned when the OTP service reports failure.
	ErrOTPNotSent = errors.New("failed to send OTP")

	// ErrIncompleteCode is returned when fewer than six digits were entered.
	ErrIncompleteCode = errors.New("code must be 6 digits")
	// ErrNoCode is returned when no code was issued to this wizard.
	ErrNoCode = errors.New("no verification code was sent")
	// ErrCodeExpired is returned when the issued code is past its expiry.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrInvalidCode is returned when the entered code does not match.
	ErrInvalidCode = errors.New("invalid code")
	// ErrSubmitFailed wraps a failed lead submission.
	ErrSubmitFailed = errors.New("failed to submit lead")
)
