package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/location"
	"github.com/realestate-agents/lead_wizard/internal/pricing"
)

const (
	msgPhoneRequired  = "Phone number is required"
	msgPhoneInvalid   = "Please enter a valid phone number (10 digits for USA or 11 digits for Bangladesh)"
	msgOTPSendFailed  = "Failed to send OTP"
	msgOTPSendError   = "Failed to send OTP. Please try again."
	msgCodeSent       = "Verification code sent"
	msgSearchFailed   = "Error searching locations. Please try again."
	msgCodeIncomplete = "Please enter a valid 6-digit OTP."
	msgCodeInvalid    = "Invalid OTP. Please try again."
	msgCodeExpired    = "This code has expired. Please request a new one."
	msgNoCode         = "Please request a verification code first."
	msgSubmitFailed   = "Failed to submit form. Please try again."
	msgSubmitted      = "Form submitted successfully!"
)

// Backend is the remote service that issues codes and receives leads.
type Backend interface {
	SendOTP(ctx context.Context, phone string) (api.SendOTPResponse, error)
	SubmitLead(ctx context.Context, endpoint string, payload any) error
}

// LocationSearcher resolves address queries, usually a debounced
// *location.Searcher.
type LocationSearcher interface {
	Search(ctx context.Context, query string) ([]api.Location, error)
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Backend   Backend
	Locations LocationSearcher
	// CodeTTL bounds how long an issued code is accepted. Zero disables expiry.
	CodeTTL time.Duration
	Now     func() time.Time
}

// State is the complete, serializable state of one wizard.
type State struct {
	Flow       string    `json:"flow"`
	Step       int       `json:"step"`
	ModalOpen  bool      `json:"modal_open"`
	Form       FormState `json:"form"`
	Errors     Errors    `json:"errors"`
	Gate       Gate      `json:"gate"`
	Sending    bool      `json:"sending"`
	Submitting bool      `json:"submitting"`
	Submitted  bool      `json:"submitted"`
	Notices    []Notice  `json:"notices,omitempty"`
}

// NewState returns the initial state of the named flow.
func NewState(flow string) (State, error) {
	if _, err := FlowByName(flow); err != nil {
		return State{}, err
	}
	return State{Flow: flow, Form: NewFormState(), Errors: Errors{}}, nil
}

// Controller drives one wizard through its flow.
type Controller struct {
	flow  Flow
	deps  Deps
	state *State
}

// New starts the named flow at step 0.
func New(flow string, deps Deps) (*Controller, error) {
	st, err := NewState(flow)
	if err != nil {
		return nil, err
	}
	return Restore(st, deps)
}

// Restore resumes a controller from a previously saved state.
func Restore(st State, deps Deps) (*Controller, error) {
	flow, err := FlowByName(st.Flow)
	if err != nil {
		return nil, err
	}
	if st.Step < 0 || st.Step >= len(flow.Steps) {
		return nil, fmt.Errorf("step %d out of range for flow %q", st.Step, st.Flow)
	}
	if st.Errors == nil {
		st.Errors = Errors{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Controller{flow: flow, deps: deps, state: &st}, nil
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	st := *c.state
	st.Errors = make(Errors, len(c.state.Errors))
	for k, v := range c.state.Errors {
		st.Errors[k] = v
	}
	st.Notices = append([]Notice(nil), c.state.Notices...)
	if c.state.Gate.Token != nil {
		tok := *c.state.Gate.Token
		st.Gate.Token = &tok
	}
	return st
}

// Step returns the current step index.
func (c *Controller) Step() int { return c.state.Step }

// Current returns the descriptor of the current step.
func (c *Controller) Current() Descriptor { return c.current().Descriptor }

func (c *Controller) current() Step { return c.flow.Steps[c.state.Step] }

func (c *Controller) last() int { return len(c.flow.Steps) - 1 }

// Update sets a form field and clears its error.
func (c *Controller) Update(field string, value any) error {
	if err := c.state.Form.Set(field, value); err != nil {
		return err
	}
	delete(c.state.Errors, field)
	return nil
}

// Next validates the current step and moves forward. Step 0 opens the modal.
// Steps with their own action (phone, OTP) run it instead of incrementing.
func (c *Controller) Next(ctx context.Context) error {
	if c.state.Submitted {
		return ErrFinished
	}
	step := c.current()
	if step.Kind == KindConfirmation {
		return ErrFinished
	}
	if step.Guard != nil && !step.Guard(c) {
		return ErrGuardFailed
	}
	if c.state.Step == 0 {
		c.state.ModalOpen = true
		c.state.Step = 1
		return nil
	}
	if step.Advance != nil {
		return step.Advance(ctx, c)
	}
	c.advance()
	return nil
}

func (c *Controller) advance() {
	if c.state.Step < c.last() {
		c.state.Step++
	}
}

// Back moves to the previous step. Steps 0 and 1 have no back target.
func (c *Controller) Back() {
	if c.state.Submitted {
		return
	}
	if c.state.Step > 1 {
		c.state.Step--
	}
}

// HandleKey applies a keyboard shortcut. Enter outside of text inputs runs
// the same checks as the visible Next control; on the OTP step a complete
// code submits directly.
func (c *Controller) HandleKey(ctx context.Context, key, target string) error {
	if key != "Enter" {
		return nil
	}
	switch strings.ToLower(target) {
	case "input", "textarea":
		return nil
	}
	switch c.current().Kind {
	case KindOTP:
		if !c.state.Gate.Complete() {
			return nil
		}
		return c.Submit(ctx)
	case KindConfirmation:
		return nil
	}
	return c.Next(ctx)
}

// Close dismisses the modal and discards everything entered so far.
func (c *Controller) Close() {
	*c.state = State{Flow: c.flow.Name, Form: NewFormState(), Errors: Errors{}}
}

// SearchLocation runs an address search for the current location step.
func (c *Controller) SearchLocation(ctx context.Context, query string) ([]api.Location, error) {
	if c.deps.Locations == nil {
		return c.ReportSearch(nil, errors.New("location search is not configured"))
	}
	results, err := c.deps.Locations.Search(ctx, query)
	return c.ReportSearch(results, err)
}

// ReportSearch folds the outcome of a search run outside the controller
// into its state. Provider failures become an error notice and an empty
// list; superseded or cancelled searches are passed through untouched.
func (c *Controller) ReportSearch(results []api.Location, err error) ([]api.Location, error) {
	switch {
	case err == nil:
		if results == nil {
			results = []api.Location{}
		}
		return results, nil
	case errors.Is(err, location.ErrSuperseded), errors.Is(err, context.Canceled):
		return nil, err
	default:
		c.notify(NoticeError, msgSearchFailed)
		return []api.Location{}, nil
	}
}

// SelectLocation commits a candidate to the current location step and
// advances.
func (c *Controller) SelectLocation(ctx context.Context, loc api.Location) error {
	step := c.current()
	if step.Kind != KindLocation {
		return ErrWrongStep
	}
	if err := c.Update(step.Field, loc); err != nil {
		return err
	}
	return c.Next(ctx)
}

// AdjustPrice moves the current price selection by delta buckets.
func (c *Controller) AdjustPrice(delta int) error {
	step := c.current()
	if step.Kind != KindPrice {
		return ErrWrongStep
	}
	p := c.state.Form.price(step.Field)
	*p = pricing.Step(*p, delta)
	delete(c.state.Errors, step.Field)
	return nil
}

// SetPriceIndex selects the bucket at position idx, as a slider would.
func (c *Controller) SetPriceIndex(idx int) error {
	step := c.current()
	if step.Kind != KindPrice {
		return ErrWrongStep
	}
	if idx < 0 || idx >= pricing.Len() {
		return fmt.Errorf("price index %d out of range", idx)
	}
	*c.state.Form.price(step.Field) = pricing.At(idx)
	delete(c.state.Errors, step.Field)
	return nil
}

// OTPInput types value into cell i of the code entry.
func (c *Controller) OTPInput(i int, value string) error {
	if c.current().Kind != KindOTP {
		return ErrWrongStep
	}
	c.state.Gate.Input(i, value)
	return nil
}

// OTPBackspace clears cell i of the code entry.
func (c *Controller) OTPBackspace(i int) error {
	if c.current().Kind != KindOTP {
		return ErrWrongStep
	}
	c.state.Gate.Backspace(i)
	return nil
}

// OTPPaste fills the code entry from pasted text.
func (c *Controller) OTPPaste(value string) (bool, error) {
	if c.current().Kind != KindOTP {
		return false, ErrWrongStep
	}
	return c.state.Gate.Paste(value), nil
}

// SendCode normalizes the phone number and requests a verification code.
// It is the phone step's action; it does not advance on its own.
func (c *Controller) SendCode(ctx context.Context) error {
	if c.current().Kind != KindPhone {
		return ErrWrongStep
	}
	return c.sendCode(ctx)
}

// ResendCode requests a new code from the OTP step.
func (c *Controller) ResendCode(ctx context.Context) error {
	if c.current().Kind != KindOTP || c.state.Submitted {
		return ErrWrongStep
	}
	return c.sendCode(ctx)
}

func (c *Controller) sendCode(ctx context.Context) error {
	if c.state.Sending {
		return ErrBusy
	}
	phone, err := NormalizePhone(c.state.Form.PhoneNumber)
	if err != nil {
		if errors.Is(err, ErrPhoneRequired) {
			c.state.Errors[FieldPhoneNumber] = msgPhoneRequired
		} else {
			c.state.Errors[FieldPhoneNumber] = msgPhoneInvalid
		}
		return err
	}
	if c.deps.Backend == nil {
		return errors.New("wizard backend is not configured")
	}

	c.state.Sending = true
	resp, err := c.deps.Backend.SendOTP(ctx, phone)
	c.state.Sending = false
	if err != nil {
		c.notify(NoticeError, msgOTPSendError)
		return fmt.Errorf("%w: %w", ErrOTPNotSent, err)
	}
	if !resp.Success {
		c.notify(NoticeError, msgOTPSendFailed)
		return ErrOTPNotSent
	}

	var expires time.Time
	if c.deps.CodeTTL > 0 {
		expires = c.deps.Now().Add(c.deps.CodeTTL)
	}
	c.state.Gate.Issue(resp.OTP, phone, expires)
	msg := resp.Message
	if msg == "" {
		msg = msgCodeSent
	}
	c.notify(NoticeSuccess, msg)
	return nil
}

// Submit checks the entered code and posts the lead. On success the wizard
// moves to the confirmation step; on any failure it stays on the OTP step.
func (c *Controller) Submit(ctx context.Context) error {
	if c.state.Submitted {
		return ErrFinished
	}
	if c.current().Kind != KindOTP {
		return ErrWrongStep
	}
	if c.state.Submitting {
		return ErrBusy
	}

	code, err := c.state.Gate.Verify(c.deps.Now())
	if err != nil {
		c.notify(NoticeError, codeMessage(err))
		return err
	}

	token := *c.state.Gate.Token
	token.Code = code
	payload, err := c.flow.Payload(c.state.Form, token)
	if err != nil {
		c.notify(NoticeError, msgSubmitFailed)
		return fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	if c.deps.Backend == nil {
		return errors.New("wizard backend is not configured")
	}

	c.state.Submitting = true
	err = c.deps.Backend.SubmitLead(ctx, c.flow.Endpoint, payload)
	c.state.Submitting = false
	if err != nil {
		c.notify(NoticeError, msgSubmitFailed)
		return fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	c.state.Submitted = true
	c.state.Step = c.last()
	c.notify(NoticeSuccess, msgSubmitted)
	return nil
}

func codeMessage(err error) string {
	switch {
	case errors.Is(err, ErrIncompleteCode):
		return msgCodeIncomplete
	case errors.Is(err, ErrCodeExpired):
		return msgCodeExpired
	case errors.Is(err, ErrNoCode):
		return msgNoCode
	default:
		return msgCodeInvalid
	}
}
