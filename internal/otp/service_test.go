package otp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/realestate-agents/lead_wizard/internal/logging"
)

type recordingSender struct {
	phone string
	text  string
	err   error
}

func (s *recordingSender) Send(_ context.Context, phone, text string) error {
	s.phone, s.text = phone, text
	return s.err
}

func newTestService(store Store, sender *recordingSender, cfg Config) *Service {
	svc := NewService(store, sender, cfg, logging.Discard())
	svc.generate = func() (string, error) { return "482913", nil }
	return svc
}

func TestSendAndVerify(t *testing.T) {
	sender := &recordingSender{}
	svc := newTestService(NewMemoryStore(), sender, Config{ExposeCode: true})
	ctx := context.Background()

	resp, err := svc.Send(ctx, "+12065550100")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !resp.Success || resp.OTP != "482913" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if sender.phone != "+12065550100" || !strings.Contains(sender.text, "482913") {
		t.Fatalf("unexpected sms %q to %q", sender.text, sender.phone)
	}

	if err := svc.Verify(ctx, "+12065550100", "000000"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected invalid code, got %v", err)
	}
	if err := svc.Verify(ctx, "+12065550100", "482913"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := svc.Verify(ctx, "+12065550100", "482913"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("code should be consumed, got %v", err)
	}
}

func TestCheckDoesNotConsume(t *testing.T) {
	svc := newTestService(NewMemoryStore(), &recordingSender{}, Config{})
	ctx := context.Background()

	if _, err := svc.Send(ctx, "+8801712345678"); err != nil {
		t.Fatalf("send: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := svc.Check(ctx, "+8801712345678", "482913"); err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
	}
	if err := svc.Consume(ctx, "+8801712345678"); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if err := svc.Check(ctx, "+8801712345678", "482913"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("consumed code should be gone, got %v", err)
	}
}

func TestSendHidesCode(t *testing.T) {
	svc := newTestService(NewMemoryStore(), &recordingSender{}, Config{})
	resp, err := svc.Send(context.Background(), "+12065550100")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if resp.OTP != "" {
		t.Fatalf("code should not be exposed, got %q", resp.OTP)
	}
}

func TestSendDeliveryFailure(t *testing.T) {
	store := NewMemoryStore()
	svc := newTestService(store, &recordingSender{err: errors.New("gateway down")}, Config{})
	if _, err := svc.Send(context.Background(), "+12065550100"); err == nil {
		t.Fatal("expected delivery error")
	}
	if _, err := store.Get(context.Background(), "+12065550100"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("undelivered code should be removed, got %v", err)
	}
}

func TestVerifyTooManyAttempts(t *testing.T) {
	svc := newTestService(NewMemoryStore(), &recordingSender{}, Config{MaxAttempts: 3})
	ctx := context.Background()
	if _, err := svc.Send(ctx, "+8801712345678"); err != nil {
		t.Fatalf("send: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.Verify(ctx, "+8801712345678", "111111"); !errors.Is(err, ErrCodeInvalid) {
			t.Fatalf("attempt %d: expected invalid code, got %v", i+1, err)
		}
	}
	if err := svc.Verify(ctx, "+8801712345678", "111111"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected lockout, got %v", err)
	}
	if err := svc.Verify(ctx, "+8801712345678", "482913"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("code should be invalidated, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	svc := newTestService(NewMemoryStore(), &recordingSender{}, Config{TTL: time.Hour})
	now := time.Now()
	svc.now = func() time.Time { return now }
	ctx := context.Background()
	if _, err := svc.Send(ctx, "+12065550100"); err != nil {
		t.Fatalf("send: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if err := svc.Verify(ctx, "+12065550100", "482913"); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected expired code, got %v", err)
	}
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != CodeLength || strings.Trim(code, "0123456789") != "" {
			t.Fatalf("unexpected code %q", code)
		}
	}
}
