package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/huh"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/pricing"
	"github.com/realestate-agents/lead_wizard/internal/wizard"
)

type scriptedPrompter struct {
	inputs   []string
	selects  []int
	texts    []string
	contacts [][3]string
	titles   []string
}

func (p *scriptedPrompter) Input(title, _, _ string, value *string) error {
	p.titles = append(p.titles, title)
	if len(p.inputs) == 0 {
		return huh.ErrUserAborted
	}
	*value, p.inputs = p.inputs[0], p.inputs[1:]
	return nil
}

func (p *scriptedPrompter) Text(title, _ string, value *string) error {
	p.titles = append(p.titles, title)
	if len(p.texts) == 0 {
		return huh.ErrUserAborted
	}
	*value, p.texts = p.texts[0], p.texts[1:]
	return nil
}

func (p *scriptedPrompter) Select(title string, labels []string, selected *int) error {
	p.titles = append(p.titles, title)
	if len(p.selects) == 0 {
		return huh.ErrUserAborted
	}
	choice := p.selects[0]
	p.selects = p.selects[1:]
	if choice < 0 {
		choice = len(labels) + choice
	}
	*selected = choice
	return nil
}

func (p *scriptedPrompter) Contact(title, _ string, first, last, email *string) error {
	p.titles = append(p.titles, title)
	if len(p.contacts) == 0 {
		return huh.ErrUserAborted
	}
	c := p.contacts[0]
	p.contacts = p.contacts[1:]
	*first, *last, *email = c[0], c[1], c[2]
	return nil
}

type stubBackend struct {
	code     string
	sent     []string
	endpoint string
	payload  any
}

func (b *stubBackend) SendOTP(_ context.Context, phone string) (api.SendOTPResponse, error) {
	b.sent = append(b.sent, phone)
	return api.SendOTPResponse{Success: true, OTP: b.code, Message: "OTP sent"}, nil
}

func (b *stubBackend) SubmitLead(_ context.Context, endpoint string, payload any) error {
	b.endpoint = endpoint
	b.payload = payload
	return nil
}

type stubLocations map[string][]api.Location

func (s stubLocations) Search(_ context.Context, query string) ([]api.Location, error) {
	if results, ok := s[query]; ok {
		return results, nil
	}
	return nil, errors.New("provider down")
}

func newRunner(t *testing.T, flow string, be *stubBackend, ask *scriptedPrompter) (*runner, *bytes.Buffer) {
	t.Helper()
	c, err := wizard.New(flow, wizard.Deps{
		Backend: be,
		Locations: stubLocations{
			"Seattle":  {{Description: "Seattle, WA, USA"}},
			"Bellevue": {{Description: "Bellevue, WA, USA"}, {Description: "Bellevue Square, WA, USA"}},
		},
	})
	if err != nil {
		t.Fatalf("new wizard: %v", err)
	}
	out := new(bytes.Buffer)
	return &runner{c: c, ask: ask, out: out}, out
}

func TestRunnerCompletesBuyFlow(t *testing.T) {
	be := &stubBackend{code: "123456"}
	ask := &scriptedPrompter{
		inputs:   []string{"Seattle", "(206) 555-0100", "111111", "123456"},
		selects:  []int{0, pricing.IndexOf(550), 1, 0},
		texts:    []string{"Two bedrooms near a park"},
		contacts: [][3]string{{"Ada", "Lovelace", "ada@example.com"}},
	}
	r, out := newRunner(t, wizard.FlowBuy, be, ask)

	if err := r.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(be.sent) != 1 || be.sent[0] != "+12065550100" {
		t.Fatalf("expected one code sent to +12065550100, got %v", be.sent)
	}
	if be.endpoint != "/email/buy" {
		t.Fatalf("unexpected endpoint %q", be.endpoint)
	}
	lead, ok := be.payload.(api.BuyLead)
	if !ok {
		t.Fatalf("unexpected payload %T", be.payload)
	}
	if lead.LookingToSell != "Seattle, WA, USA" || lead.AddressToSell == nil || !*lead.AddressToSell {
		t.Fatalf("address fields not wired as expected: %+v", lead)
	}
	if lead.PriceRange != "$550K - $600K" || lead.HasAgent || lead.OTP != "123456" {
		t.Fatalf("unexpected lead %+v", lead)
	}
	text := out.String()
	for _, want := range []string{"Invalid OTP", "Form submitted successfully!", "Thank you for submitting!"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRunnerSellAndBuyWithTypedAddressAndBack(t *testing.T) {
	be := &stubBackend{code: "654321"}
	ask := &scriptedPrompter{
		// The unknown query falls back to the typed text after a search failure.
		inputs:  []string{"12 Pine St", "Bellevue", "Bellevue", "2065550100", "654321"},
		selects: []int{
			0,                    // use "12 Pine St" as typed
			pricing.IndexOf(600), // home worth
			-1,                   // back from the city step
			pricing.IndexOf(600), // home worth again
			1,                    // Bellevue Square
			pricing.IndexOf(50),  // looking price
			0,                    // has agent
		},
		texts:    []string{""},
		contacts: [][3]string{{"Grace", "Hopper", "grace@example.com"}},
	}
	r, out := newRunner(t, wizard.FlowSellAndBuy, be, ask)

	if err := r.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	lead, ok := be.payload.(api.SellAndBuyLead)
	if !ok {
		t.Fatalf("unexpected payload %T", be.payload)
	}
	want := api.SellAndBuyLead{
		AddressToSell:     "12 Pine St",
		CityToBuy:         "Bellevue Square, WA, USA",
		FirstName:         "Grace",
		HasAgent:          "Yes",
		HomePriceRange:    "$600K - $650K",
		LastName:          "Hopper",
		LookingPriceRange: "Under $100K",
		PhoneNumber:       "+12065550100",
		Email:             "grace@example.com",
	}
	if lead != want {
		t.Fatalf("unexpected lead\n got %+v\nwant %+v", lead, want)
	}
	if be.endpoint != "/email/buy-and-sell" {
		t.Fatalf("unexpected endpoint %q", be.endpoint)
	}
	if !strings.Contains(out.String(), "Error searching locations") {
		t.Fatalf("expected search failure notice:\n%s", out.String())
	}
}

func TestRunnerShowsGuardErrors(t *testing.T) {
	be := &stubBackend{code: "123456"}
	ask := &scriptedPrompter{inputs: []string{"   "}}
	r, out := newRunner(t, wizard.FlowBuy, be, ask)

	err := r.run(context.Background())
	if !errors.Is(err, huh.ErrUserAborted) {
		t.Fatalf("expected abort once the script runs out, got %v", err)
	}
	if !strings.Contains(out.String(), "City name is required.") {
		t.Fatalf("expected required message:\n%s", out.String())
	}
	if r.c.Step() != 0 {
		t.Fatalf("expected to stay on step 0, got %d", r.c.Step())
	}
}

func TestRunnerResendAndChangeNumber(t *testing.T) {
	be := &stubBackend{code: "123456"}
	ask := &scriptedPrompter{
		inputs:   []string{"Seattle", "2065550100", "r", "b", "20655501011", "123456"},
		selects:  []int{0, 0, 0, 1},
		texts:    []string{""},
		contacts: [][3]string{{"Ada", "Lovelace", "ada@example.com"}},
	}
	r, _ := newRunner(t, wizard.FlowBuy, be, ask)

	if err := r.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"+12065550100", "+12065550100", "+8820655501011"}
	if strings.Join(be.sent, ",") != strings.Join(want, ",") {
		t.Fatalf("expected sends %v, got %v", want, be.sent)
	}
	lead := be.payload.(api.BuyLead)
	if lead.PhoneNumber != "+8820655501011" {
		t.Fatalf("expected the changed number on the lead, got %q", lead.PhoneNumber)
	}
}
