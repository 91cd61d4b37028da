package wizard

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/pricing"
)

// Form field names. They match the keys used by the lead payloads.
const (
	FieldAddressToSell     = "addressToSell"
	FieldCityToBuy         = "cityToBuy"
	FieldPriceRange        = "priceRange"
	FieldHomePriceRange    = "homePriceRange"
	FieldLookingPriceRange = "lookingPriceRange"
	FieldHasAgent          = "hasAgent"
	FieldLookingToSell     = "lookingToSell"
	FieldAdditionalDetails = "additionalDetails"
	FieldFirstName         = "firstName"
	FieldLastName          = "lastName"
	FieldEmail             = "email"
	FieldPhoneNumber       = "phoneNumber"
)

// Address is either free text typed by the user (Raw empty) or a candidate
// picked from the location search.
type Address struct {
	Description string          `json:"description"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// FormState holds every value the wizard collects.
type FormState struct {
	AddressToSell     Address `json:"addressToSell"`
	CityToBuy         Address `json:"cityToBuy"`
	PriceRange        int     `json:"priceRange"`
	HomePriceRange    int     `json:"homePriceRange"`
	LookingPriceRange int     `json:"lookingPriceRange"`
	HasAgent          *bool   `json:"hasAgent"`
	LookingToSell     *bool   `json:"lookingToSell"`
	AdditionalDetails string  `json:"additionalDetails"`
	FirstName         string  `json:"firstName"`
	LastName          string  `json:"lastName"`
	Email             string  `json:"email"`
	PhoneNumber       string  `json:"phoneNumber"`
}

// NewFormState returns a form with the default price selections.
func NewFormState() FormState {
	return FormState{
		PriceRange:        pricing.DefaultValue,
		HomePriceRange:    pricing.DefaultValue,
		LookingPriceRange: pricing.DefaultValue,
	}
}

// Errors maps a field name to its validation message.
type Errors map[string]string

// Set assigns value to field. Accepted value types depend on the field:
// strings for text fields, bool/*bool/nil for answers, a number for prices
// and a string, Address, api.Location or JSON object for addresses.
func (f *FormState) Set(field string, value any) error {
	switch field {
	case FieldAddressToSell, FieldCityToBuy:
		addr, err := toAddress(value)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		*f.address(field) = addr
	case FieldPriceRange, FieldHomePriceRange, FieldLookingPriceRange:
		v, err := toInt(value)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		if pricing.IndexOf(v) < 0 {
			return fmt.Errorf("%s: %w", field, pricing.ErrUnknownPricePoint)
		}
		*f.price(field) = v
	case FieldHasAgent, FieldLookingToSell:
		b, err := toAnswer(value)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		if field == FieldHasAgent {
			f.HasAgent = b
		} else {
			f.LookingToSell = b
		}
	case FieldAdditionalDetails, FieldFirstName, FieldLastName, FieldEmail, FieldPhoneNumber:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: expected string, got %T", field, value)
		}
		*f.text(field) = s
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

func (f *FormState) address(field string) *Address {
	if field == FieldCityToBuy {
		return &f.CityToBuy
	}
	return &f.AddressToSell
}

func (f *FormState) price(field string) *int {
	switch field {
	case FieldHomePriceRange:
		return &f.HomePriceRange
	case FieldLookingPriceRange:
		return &f.LookingPriceRange
	default:
		return &f.PriceRange
	}
}

func (f *FormState) answer(field string) *bool {
	if field == FieldLookingToSell {
		return f.LookingToSell
	}
	return f.HasAgent
}

func (f *FormState) text(field string) *string {
	switch field {
	case FieldFirstName:
		return &f.FirstName
	case FieldLastName:
		return &f.LastName
	case FieldEmail:
		return &f.Email
	case FieldPhoneNumber:
		return &f.PhoneNumber
	default:
		return &f.AdditionalDetails
	}
}

func toAddress(value any) (Address, error) {
	switch v := value.(type) {
	case string:
		return Address{Description: v}, nil
	case Address:
		return v, nil
	case api.Location:
		return Address{Description: v.Description, Raw: v.Raw}, nil
	case map[string]any:
		desc, _ := v["description"].(string)
		addr := Address{Description: desc}
		if raw, ok := v["raw"]; ok && raw != nil {
			b, err := json.Marshal(raw)
			if err != nil {
				return Address{}, err
			}
			addr.Raw = b
		}
		return addr, nil
	default:
		return Address{}, fmt.Errorf("expected address, got %T", value)
	}
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		return int(n), err
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}

func toAnswer(value any) (*bool, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool:
		return &v, nil
	case *bool:
		return v, nil
	case string:
		switch strings.ToLower(v) {
		case "yes", "true":
			b := true
			return &b, nil
		case "no", "false":
			b := false
			return &b, nil
		}
	}
	return nil, fmt.Errorf("expected yes/no answer, got %v", value)
}
