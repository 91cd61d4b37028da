package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/pricing"
	"github.com/realestate-agents/lead_wizard/internal/wizard"
)

const (
	labelBack   = "Back"
	otpResend   = "r"
	otpBackward = "b"
)

// errBack is returned by a step prompt when the user chose to go back.
var errBack = errors.New("back")

// runner walks a wizard controller step by step through a prompter.
type runner struct {
	c   *wizard.Controller
	ask prompter
	out io.Writer
}

func (r *runner) run(ctx context.Context) error {
	for {
		v := r.c.View()
		r.report(v)
		if v.Done || v.Descriptor.Kind == wizard.KindConfirmation {
			fmt.Fprintln(r.out, styles.title.Render(v.Descriptor.Title))
			fmt.Fprintln(r.out, styles.muted.Render(v.Descriptor.Subtitle))
			return nil
		}
		if v.Step > 0 {
			fmt.Fprintln(r.out, styles.muted.Render(fmt.Sprintf("Step %d of %d", v.Step, v.Steps-1)))
		}

		err := r.step(ctx, v)
		switch {
		case err == nil:
		case errors.Is(err, errBack):
			r.c.Back()
		case errors.Is(err, context.Canceled):
			return err
		case isPromptError(err):
			return err
		case errors.Is(err, wizard.ErrGuardFailed):
			// Field errors are shown on the next pass.
		default:
			st := r.c.State()
			if len(st.Notices) == 0 && len(st.Errors) == 0 {
				fmt.Fprintln(r.out, styles.failure.Render(err.Error()))
			}
		}
	}
}

// isPromptError reports whether err came from the terminal rather than from
// the wizard itself.
func isPromptError(err error) bool {
	var pe promptError
	return errors.As(err, &pe)
}

type promptError struct{ err error }

func (e promptError) Error() string { return e.err.Error() }
func (e promptError) Unwrap() error { return e.err }

func (r *runner) step(ctx context.Context, v wizard.View) error {
	switch v.Descriptor.Kind {
	case wizard.KindLocation:
		return r.location(ctx, v)
	case wizard.KindPrice:
		return r.price(ctx, v)
	case wizard.KindQuestion:
		return r.question(ctx, v)
	case wizard.KindText:
		return r.text(ctx, v)
	case wizard.KindContact:
		return r.contact(ctx, v)
	case wizard.KindPhone:
		return r.phone(ctx, v)
	case wizard.KindOTP:
		return r.otp(ctx, v)
	default:
		return fmt.Errorf("unsupported step kind %q", v.Descriptor.Kind)
	}
}

func (r *runner) location(ctx context.Context, v wizard.View) error {
	d := v.Descriptor
	title := d.Title
	if title == "" {
		title = d.Placeholder
	}
	query := addressOf(v.Form, d.Field)
	if err := r.ask.Input(title, "", d.Placeholder, &query); err != nil {
		return promptError{err}
	}
	query = strings.TrimSpace(query)
	if query == "" {
		if err := r.c.Update(d.Field, ""); err != nil {
			return err
		}
		return r.c.Next(ctx)
	}

	results, err := r.c.SearchLocation(ctx, query)
	if err != nil {
		return err
	}
	r.report(wizard.View{Notices: r.c.DrainNotices()})

	labels := make([]string, 0, len(results)+2)
	for _, loc := range results {
		labels = append(labels, loc.Description)
	}
	typed := len(labels)
	labels = append(labels, fmt.Sprintf("Use %q as typed", query))
	if v.CanGoBack {
		labels = append(labels, labelBack)
	}

	choice := 0
	if err := r.ask.Select(d.CTA, labels, &choice); err != nil {
		return promptError{err}
	}
	switch {
	case choice < typed:
		return r.c.SelectLocation(ctx, results[choice])
	case choice == typed:
		if err := r.c.Update(d.Field, api.Location{Description: query}); err != nil {
			return err
		}
		return r.c.Next(ctx)
	default:
		return errBack
	}
}

func (r *runner) price(ctx context.Context, v wizard.View) error {
	d := v.Descriptor
	labels := make([]string, 0, len(d.Options)+1)
	for _, o := range d.Options {
		labels = append(labels, o.Label)
	}
	if v.CanGoBack {
		labels = append(labels, labelBack)
	}

	choice := max(pricing.IndexOf(priceOf(v.Form, d.Field)), 0)
	if err := r.ask.Select(d.Title, labels, &choice); err != nil {
		return promptError{err}
	}
	if choice >= len(d.Options) {
		return errBack
	}
	if err := r.c.SetPriceIndex(choice); err != nil {
		return err
	}
	return r.c.Next(ctx)
}

func (r *runner) question(ctx context.Context, v wizard.View) error {
	d := v.Descriptor
	labels := make([]string, 0, len(d.Options)+1)
	for _, o := range d.Options {
		labels = append(labels, o.Label)
	}
	if v.CanGoBack {
		labels = append(labels, labelBack)
	}

	choice := 0
	if err := r.ask.Select(d.Title, labels, &choice); err != nil {
		return promptError{err}
	}
	if choice >= len(d.Options) {
		return errBack
	}
	if err := r.c.Update(d.Field, d.Options[choice].Value); err != nil {
		return err
	}
	return r.c.Next(ctx)
}

func (r *runner) text(ctx context.Context, v wizard.View) error {
	d := v.Descriptor
	details := v.Form.AdditionalDetails
	if err := r.ask.Text(d.Title, d.Placeholder, &details); err != nil {
		return promptError{err}
	}
	if err := r.c.Update(d.Field, details); err != nil {
		return err
	}
	return r.c.Next(ctx)
}

func (r *runner) contact(ctx context.Context, v wizard.View) error {
	d := v.Descriptor
	first, last, email := v.Form.FirstName, v.Form.LastName, v.Form.Email
	if err := r.ask.Contact(d.Title, d.Subtitle, &first, &last, &email); err != nil {
		return promptError{err}
	}
	for field, value := range map[string]string{
		wizard.FieldFirstName: first,
		wizard.FieldLastName:  last,
		wizard.FieldEmail:     email,
	} {
		if err := r.c.Update(field, value); err != nil {
			return err
		}
	}
	return r.c.Next(ctx)
}

func (r *runner) phone(ctx context.Context, v wizard.View) error {
	d := v.Descriptor
	phone := v.Form.PhoneNumber
	if err := r.ask.Input(d.Title, d.CTA, d.Placeholder, &phone); err != nil {
		return promptError{err}
	}
	if err := r.c.Update(d.Field, phone); err != nil {
		return err
	}
	return r.c.Next(ctx)
}

func (r *runner) otp(ctx context.Context, v wizard.View) error {
	d := v.Descriptor
	description := fmt.Sprintf("%s to %s. Enter %q to resend or %q to change the number.", d.Subtitle, v.OTP.Phone, otpResend, otpBackward)
	var code string
	if err := r.ask.Input(d.Title, description, "000000", &code); err != nil {
		return promptError{err}
	}
	switch strings.ToLower(strings.TrimSpace(code)) {
	case otpResend:
		return r.c.ResendCode(ctx)
	case otpBackward:
		return errBack
	}

	for i := wizard.CodeLength - 1; i >= 0; i-- {
		if err := r.c.OTPBackspace(i); err != nil {
			return err
		}
	}
	pasted, err := r.c.OTPPaste(code)
	if err != nil {
		return err
	}
	if !pasted {
		for i, ch := range []rune(strings.TrimSpace(code)) {
			if i >= wizard.CodeLength {
				break
			}
			if err := r.c.OTPInput(i, string(ch)); err != nil {
				return err
			}
		}
	}
	return r.c.Next(ctx)
}

// report prints pending notices and field errors of v.
func (r *runner) report(v wizard.View) {
	for _, n := range v.Notices {
		style := styles.success
		if n.Level == wizard.NoticeError {
			style = styles.failure
		}
		fmt.Fprintln(r.out, style.Render(n.Message))
	}
	for _, field := range slices.Sorted(maps.Keys(v.Errors)) {
		fmt.Fprintln(r.out, styles.failure.Render(v.Errors[field]))
	}
}

func addressOf(f wizard.FormState, field string) string {
	if field == wizard.FieldCityToBuy {
		return f.CityToBuy.Description
	}
	return f.AddressToSell.Description
}

func priceOf(f wizard.FormState, field string) int {
	switch field {
	case wizard.FieldHomePriceRange:
		return f.HomePriceRange
	case wizard.FieldLookingPriceRange:
		return f.LookingPriceRange
	default:
		return f.PriceRange
	}
}
