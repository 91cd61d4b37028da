package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// EmailPattern is the simple local@domain.tld shape accepted for lead emails.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// PhonePattern is E.164 with the leading plus and 8 to 15 digits.
var PhonePattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

var customValidators = map[string]validator.Func{
	"lead_email": stringMatcher(EmailPattern),
	"lead_phone": stringMatcher(PhonePattern),
}

var customTranslations = map[string]string{
	"required":   "{0} is required",
	"lead_email": "Please enter a valid email address",
	"lead_phone": "{0} must be in international format, e.g. +12065551234",
	"len":        "{0} must be {1} characters",
	"numeric":    "{0} must contain only digits",
	"oneof":      "{0} must be one of: {1}",
}

// FieldError is one failed field, keyed by its JSON name.
type FieldError struct {
	Field  string
	Detail string
}

// FieldErrors is returned by Validator.Struct when any field fails.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Detail)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// Map converts the errors to a field name -> message mapping.
func (fe FieldErrors) Map() map[string]string {
	out := make(map[string]string, len(fe))
	for _, e := range fe {
		out[e.Field] = e.Detail
	}
	return out
}

// Validator wraps a validator instance and an English translator.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// New creates a Validator. Field names in messages come from the "label" tag.
func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("translator not found")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("register default translations: %w", err)
	}

	for name, fn := range customValidators {
		if err := validate.RegisterValidation(name, fn); err != nil {
			return nil, err
		}
	}

	v := &Validator{validate: validate, trans: trans}
	for tag, msg := range customTranslations {
		if err := v.registerTranslation(tag, msg); err != nil {
			return nil, err
		}
	}
	return v, nil
}

var defaultValidator = sync.OnceValues(New)

// Default returns a shared Validator.
func Default() (*Validator, error) {
	return defaultValidator()
}

// Validate checks s with the shared Validator.
func Validate(s any) error {
	v, err := Default()
	if err != nil {
		return err
	}
	return v.Struct(s)
}

func (v *Validator) registerTranslation(tag, msg string) error {
	return v.validate.RegisterTranslation(tag, v.trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, err := ut.T(tag, fe.Field(), fe.Param())
			if err != nil {
				return fe.Error()
			}
			return t
		})
}

// Struct validates s and returns FieldErrors ordered by field name, or nil.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	typ := reflect.TypeOf(s)
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: jsonName(typ, fe.StructField()), Detail: fe.Translate(v.trans)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func stringMatcher(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			panic(fmt.Sprintf("input field is not a string: %s", fl.FieldName()))
		}
		return re.MatchString(field.String())
	}
}

// jsonName resolves the json tag of a top-level field, falling back to the
// Go name with its first rune lowered (FirstName -> firstName).
func jsonName(typ reflect.Type, structField string) string {
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ != nil && typ.Kind() == reflect.Struct {
		if f, ok := typ.FieldByName(structField); ok {
			if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
				return name
			}
		}
	}
	if structField == "" {
		return structField
	}
	r := []rune(structField)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
