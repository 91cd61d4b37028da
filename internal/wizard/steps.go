package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/realestate-agents/lead_wizard/internal/pricing"
)

// Flow names.
const (
	FlowBuy        = "buy"
	FlowSellAndBuy = "sell-and-buy"
)

// Kind identifies how a step is rendered.
type Kind string

const (
	KindLocation     Kind = "location"
	KindPrice        Kind = "price"
	KindQuestion     Kind = "question"
	KindText         Kind = "text"
	KindContact      Kind = "contact"
	KindPhone        Kind = "phone"
	KindOTP          Kind = "otp"
	KindConfirmation Kind = "confirmation"
)

// Option is one selectable choice of a step.
type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Descriptor is everything a surface needs to draw a step.
type Descriptor struct {
	Kind        Kind     `json:"kind"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Field       string   `json:"field,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	CTA         string   `json:"cta"`
	Options     []Option `json:"options,omitempty"`
}

// Step pairs a descriptor with the guard that must pass before advancing and
// an optional action that replaces the plain index increment.
type Step struct {
	Descriptor
	Guard   func(c *Controller) bool
	Advance func(ctx context.Context, c *Controller) error
}

// Flow is the declarative configuration of one wizard variant.
type Flow struct {
	Name     string
	Endpoint string
	Steps    []Step
	Payload  func(f FormState, token Token) (any, error)
}

// FlowByName returns the registered flow called name.
func FlowByName(name string) (Flow, error) {
	switch name {
	case FlowBuy:
		return BuyFlow(), nil
	case FlowSellAndBuy:
		return SellAndBuyFlow(), nil
	default:
		return Flow{}, fmt.Errorf("%w: %q", ErrUnknownFlow, name)
	}
}

// BuyFlow collects a lead from someone looking to buy.
func BuyFlow() Flow {
	return Flow{
		Name:     FlowBuy,
		Endpoint: "/email/buy",
		Steps: []Step{
			locationStep(FieldAddressToSell, "", "Enter your city name", "Compare Agents", "City name is required."),
			priceStep(FieldPriceRange, "What price range are you looking to buy?"),
			questionStep(FieldHasAgent, "Have you already hired a real estate Agent?"),
			questionStep(FieldLookingToSell, "Are you also looking to sell a home?"),
			detailsStep(),
			contactStep(),
			phoneStep(),
			otpStep(),
			confirmationStep(),
		},
		Payload: buyPayload,
	}
}

// SellAndBuyFlow collects a lead from someone selling a home and buying another.
func SellAndBuyFlow() Flow {
	return Flow{
		Name:     FlowSellAndBuy,
		Endpoint: "/email/buy-and-sell",
		Steps: []Step{
			locationStep(FieldAddressToSell, "", "Enter the address you are selling", "Compare Agents", "Address is required."),
			priceStep(FieldHomePriceRange, "Roughly, what is your home worth?"),
			locationStep(FieldCityToBuy, "Where are you looking to buy?", "Enter the address where you want to buy", "Next", "Please enter a city name"),
			priceStep(FieldLookingPriceRange, "What price range are you looking to buy?"),
			questionStep(FieldHasAgent, "Have you already hired a real estate agent?"),
			detailsStep(),
			contactStep(),
			phoneStep(),
			otpStep(),
			confirmationStep(),
		},
		Payload: sellAndBuyPayload,
	}
}

func locationStep(field, title, placeholder, cta, required string) Step {
	return Step{
		Descriptor: Descriptor{Kind: KindLocation, Title: title, Field: field, Placeholder: placeholder, CTA: cta},
		Guard: func(c *Controller) bool {
			if strings.TrimSpace(c.state.Form.address(field).Description) == "" {
				c.state.Errors[field] = required
				return false
			}
			return true
		},
	}
}

func priceStep(field, title string) Step {
	points := pricing.Points()
	options := make([]Option, 0, len(points))
	for _, p := range points {
		options = append(options, Option{Label: p.Display, Value: p.Value})
	}
	return Step{
		Descriptor: Descriptor{Kind: KindPrice, Title: title, Field: field, CTA: "Next", Options: options},
		Guard: func(c *Controller) bool {
			if pricing.IndexOf(*c.state.Form.price(field)) < 0 {
				c.state.Errors[field] = "Please choose a price range"
				return false
			}
			return true
		},
	}
}

func questionStep(field, title string) Step {
	return Step{
		Descriptor: Descriptor{
			Kind:    KindQuestion,
			Title:   title,
			Field:   field,
			CTA:     "Next",
			Options: []Option{{Label: "Yes", Value: true}, {Label: "No", Value: false}},
		},
		Guard: func(c *Controller) bool {
			if c.state.Form.answer(field) == nil {
				c.state.Errors[field] = "Please choose Yes or No"
				return false
			}
			return true
		},
	}
}

func detailsStep() Step {
	return Step{Descriptor: Descriptor{
		Kind:        KindText,
		Title:       "Are there any other details you'd like to share?",
		Field:       FieldAdditionalDetails,
		Placeholder: "Enter any details about your real estate needs...",
		CTA:         "Next",
	}}
}

func contactStep() Step {
	return Step{
		Descriptor: Descriptor{
			Kind:     KindContact,
			Title:    "Last step! Now just add a few contact details",
			Subtitle: "This is where our agents will contact you to discuss your needs",
			CTA:      "Get Agents",
		},
		Guard: func(c *Controller) bool {
			errs := ValidateContact(c.state.Form)
			for k, v := range errs {
				c.state.Errors[k] = v
			}
			return len(errs) == 0
		},
	}
}

func phoneStep() Step {
	return Step{
		Descriptor: Descriptor{
			Kind:        KindPhone,
			Title:       "We're preparing to connect you to at least 3 agents. Please verify the following information to get connected sooner:",
			Field:       FieldPhoneNumber,
			Placeholder: "Cell Number",
			CTA:         "Text Confirmation Code",
		},
		Guard: func(c *Controller) bool {
			if strings.TrimSpace(c.state.Form.PhoneNumber) == "" {
				c.state.Errors[FieldPhoneNumber] = msgPhoneRequired
				return false
			}
			return true
		},
		Advance: func(ctx context.Context, c *Controller) error {
			if err := c.SendCode(ctx); err != nil {
				return err
			}
			c.advance()
			return nil
		},
	}
}

func otpStep() Step {
	return Step{
		Descriptor: Descriptor{
			Kind:     KindOTP,
			Title:    "Welcome Back!",
			Subtitle: "A message with a verification code was just sent to your phone",
			CTA:      "Verify",
		},
		Advance: func(ctx context.Context, c *Controller) error {
			return c.Submit(ctx)
		},
	}
}

func confirmationStep() Step {
	return Step{Descriptor: Descriptor{
		Kind:     KindConfirmation,
		Title:    "Thank you for submitting!",
		Subtitle: "Please check your inbox in the next few minutes as we will also send you a list of 3 local agents that meet your needs.",
	}}
}
