// Package otp issues and verifies the phone verification codes that gate
// lead submission.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/sms"
)

const (
	// CodeLength is the number of digits in an issued code.
	CodeLength = 6

	defaultTTL         = 5 * time.Minute
	defaultMaxAttempts = 5
	defaultMessage     = "Your verification code is %s"
	sentMessage        = "OTP sent successfully"
)

var (
	// ErrCodeNotFound means no live code exists for the phone number.
	ErrCodeNotFound = errors.New("no verification code for this phone number")
	// ErrCodeExpired means the stored code is past its expiry.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrCodeInvalid means the code does not match.
	ErrCodeInvalid = errors.New("invalid verification code")
	// ErrTooManyAttempts means the code was invalidated after repeated failures.
	ErrTooManyAttempts = errors.New("too many invalid attempts")
)

// Config tunes code issuance.
type Config struct {
	TTL         time.Duration
	MaxAttempts int
	// ExposeCode returns the code in the send response, which the wizard
	// relies on to check the entry before submitting. Withheld codes are
	// only checked where the lead carries one.
	ExposeCode bool
	// Message is a fmt template with a single %s for the code.
	Message string
}

// Service issues and verifies codes.
type Service struct {
	store    Store
	sender   sms.Sender
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
	generate func() (string, error)
}

// NewService builds an OTP service.
func NewService(store Store, sender sms.Sender, cfg Config, logger *slog.Logger) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Message == "" {
		cfg.Message = defaultMessage
	}
	return &Service{store: store, sender: sender, cfg: cfg, logger: logger, now: time.Now, generate: generateCode}
}

// Send issues a fresh code for phone, replacing any previous one, and texts
// it to the number.
func (s *Service) Send(ctx context.Context, phone string) (api.SendOTPResponse, error) {
	code, err := s.generate()
	if err != nil {
		return api.SendOTPResponse{}, fmt.Errorf("generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return api.SendOTPResponse{}, fmt.Errorf("hash code: %w", err)
	}

	rec := Record{Hash: hash, ExpiresAt: s.now().Add(s.cfg.TTL).UTC()}
	if err := s.store.Save(ctx, phone, rec, s.cfg.TTL); err != nil {
		return api.SendOTPResponse{}, fmt.Errorf("store code: %w", err)
	}

	if err := s.sender.Send(ctx, phone, fmt.Sprintf(s.cfg.Message, code)); err != nil {
		if delErr := s.store.Delete(ctx, phone); delErr != nil {
			s.logger.Warn("otp cleanup failed", "phone", sms.Mask(phone), "error", delErr)
		}
		return api.SendOTPResponse{}, fmt.Errorf("deliver code: %w", err)
	}

	s.logger.Info("otp issued", "phone", sms.Mask(phone), "expires_at", rec.ExpiresAt)
	resp := api.SendOTPResponse{Success: true, Message: sentMessage}
	if s.cfg.ExposeCode {
		resp.OTP = code
	}
	return resp, nil
}

// Verify checks code and consumes it on a match.
func (s *Service) Verify(ctx context.Context, phone, code string) error {
	if err := s.Check(ctx, phone, code); err != nil {
		return err
	}
	return s.Consume(ctx, phone)
}

// Check compares code with the live code for phone without consuming it.
// After MaxAttempts failures the code is invalidated.
func (s *Service) Check(ctx context.Context, phone, code string) error {
	rec, err := s.store.Get(ctx, phone)
	if errors.Is(err, ErrNotFound) {
		return ErrCodeNotFound
	}
	if err != nil {
		return fmt.Errorf("load code: %w", err)
	}

	if s.now().After(rec.ExpiresAt) {
		_ = s.store.Delete(ctx, phone)
		return ErrCodeExpired
	}

	if err := bcrypt.CompareHashAndPassword(rec.Hash, []byte(code)); err != nil {
		n, incErr := s.store.IncrementAttempts(ctx, phone, rec.ExpiresAt.Sub(s.now()))
		if incErr != nil {
			return fmt.Errorf("record attempt: %w", incErr)
		}
		if n >= s.cfg.MaxAttempts {
			_ = s.store.Delete(ctx, phone)
			s.logger.Warn("otp invalidated", "phone", sms.Mask(phone), "attempts", n)
			return ErrTooManyAttempts
		}
		return ErrCodeInvalid
	}
	return nil
}

// Consume deletes the live code for phone so it cannot be used again.
func (s *Service) Consume(ctx context.Context, phone string) error {
	if err := s.store.Delete(ctx, phone); err != nil {
		return fmt.Errorf("consume code: %w", err)
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}
