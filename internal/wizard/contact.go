package wizard

import (
	"errors"
	"strings"

	"github.com/realestate-agents/lead_wizard/internal/validation"
)

type contactDetails struct {
	FirstName string `json:"firstName" validate:"required" label:"First name"`
	LastName  string `json:"lastName" validate:"required" label:"Last name"`
	Email     string `json:"email" validate:"required,lead_email" label:"Email"`
}

// ValidateContact checks the contact step fields and returns one message per
// failing field. Names and email are trimmed before checking.
func ValidateContact(f FormState) Errors {
	v, err := validation.Default()
	if err != nil {
		return Errors{FieldEmail: err.Error()}
	}

	err = v.Struct(contactDetails{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.TrimSpace(f.Email),
	})
	if err == nil {
		return nil
	}

	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		return Errors(fe.Map())
	}
	return Errors{FieldEmail: err.Error()}
}
