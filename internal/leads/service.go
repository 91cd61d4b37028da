package leads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/notification"
	"github.com/realestate-agents/lead_wizard/internal/validation"
)

var (
	// ErrInvalidLead wraps payload validation failures.
	ErrInvalidLead = errors.New("invalid lead")
	// ErrVerification wraps phone verification failures.
	ErrVerification = errors.New("phone verification failed")
)

// Verifier checks a phone verification code. Check leaves the code usable;
// Consume retires it once the lead is stored.
type Verifier interface {
	Check(ctx context.Context, phone, code string) error
	Consume(ctx context.Context, phone string) error
}

// Service validates, stores and announces incoming leads.
type Service struct {
	repo     Repository
	verifier Verifier
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds a lead service.
func NewService(repo Repository, verifier Verifier, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, verifier: verifier, notifier: notifier, logger: logger, now: time.Now}
}

// SubmitBuy accepts a buyer lead. The phone number must carry a valid code.
func (s *Service) SubmitBuy(ctx context.Context, in api.BuyLead) (Lead, error) {
	if err := validation.Validate(in); err != nil {
		return Lead{}, fmt.Errorf("%w: %w", ErrInvalidLead, err)
	}
	if err := s.verifier.Check(ctx, in.PhoneNumber, in.OTP); err != nil {
		return Lead{}, fmt.Errorf("%w: %w", ErrVerification, err)
	}

	lead := Lead{
		ID:                uuid.New().String(),
		Kind:              KindBuy,
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		Email:             strings.TrimSpace(in.Email),
		Phone:             in.PhoneNumber,
		Address:           in.LookingToSell,
		PriceRange:        in.PriceRange,
		HasAgent:          in.HasAgent,
		AlsoSelling:       in.AddressToSell,
		AdditionalDetails: strings.TrimSpace(in.AdditionalDetails),
		CreatedAt:         s.now().UTC(),
	}
	if err := s.persist(ctx, lead); err != nil {
		return Lead{}, err
	}
	if err := s.verifier.Consume(ctx, in.PhoneNumber); err != nil {
		s.logger.Warn("otp consume failed", "lead_id", lead.ID, "error", err)
	}
	s.announce(ctx, lead)
	return lead, nil
}

// SubmitBuyAndSell accepts a lead from someone selling and buying.
func (s *Service) SubmitBuyAndSell(ctx context.Context, in api.SellAndBuyLead) (Lead, error) {
	if err := validation.Validate(in); err != nil {
		return Lead{}, fmt.Errorf("%w: %w", ErrInvalidLead, err)
	}

	lead := Lead{
		ID:                uuid.New().String(),
		Kind:              KindBuyAndSell,
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		Email:             strings.TrimSpace(in.Email),
		Phone:             in.PhoneNumber,
		Address:           in.AddressToSell,
		CityToBuy:         in.CityToBuy,
		HomePriceRange:    in.HomePriceRange,
		LookingPriceRange: in.LookingPriceRange,
		HasAgent:          in.HasAgent == "Yes",
		AdditionalDetails: strings.TrimSpace(in.AdditionalDetails),
		CreatedAt:         s.now().UTC(),
	}
	if err := s.persist(ctx, lead); err != nil {
		return Lead{}, err
	}
	s.announce(ctx, lead)
	return lead, nil
}

func (s *Service) persist(ctx context.Context, lead Lead) error {
	if err := s.repo.Create(ctx, lead); err != nil {
		return fmt.Errorf("store lead: %w", err)
	}
	s.logger.Info("lead captured", "lead_id", lead.ID, "kind", lead.Kind)
	return nil
}

func (s *Service) announce(ctx context.Context, lead Lead) {
	if s.notifier != nil {
		if err := s.notifier.Send(ctx, s.message(lead)); err != nil {
			s.logger.Warn("lead notification failed", "lead_id", lead.ID, "error", err)
		}
	}
}

func (s *Service) message(lead Lead) notification.Message {
	msg := notification.Message{
		Kind:        notification.KindLead,
		Destination: string(lead.Kind),
		Subject:     fmt.Sprintf("New %s: %s", strings.ToLower(sheetTitle(lead.Kind)), lead.FullName()),
		Body:        lead.AdditionalDetails,
		Fields:      append(contactFields(lead), requestFields(lead)...),
	}
	sheet, err := RenderSheet(lead)
	if err != nil {
		s.logger.Warn("lead sheet failed", "lead_id", lead.ID, "error", err)
		return msg
	}
	msg.Attachments = []notification.Attachment{{
		Name:        "lead-" + lead.ID + ".pdf",
		ContentType: "application/pdf",
		Data:        sheet,
	}}
	return msg
}

func contactFields(lead Lead) []notification.Field {
	return []notification.Field{
		{Label: "Name", Value: lead.FullName()},
		{Label: "Email", Value: lead.Email},
		{Label: "Phone", Value: lead.Phone},
	}
}

func requestFields(lead Lead) []notification.Field {
	if lead.Kind == KindBuyAndSell {
		return []notification.Field{
			{Label: "Address to sell", Value: lead.Address},
			{Label: "Home price range", Value: lead.HomePriceRange},
			{Label: "City to buy", Value: lead.CityToBuy},
			{Label: "Looking price range", Value: lead.LookingPriceRange},
			{Label: "Has agent", Value: yesNo(lead.HasAgent)},
		}
	}
	fields := []notification.Field{
		{Label: "Location", Value: lead.Address},
		{Label: "Price range", Value: lead.PriceRange},
		{Label: "Has agent", Value: yesNo(lead.HasAgent)},
	}
	if lead.AlsoSelling != nil {
		fields = append(fields, notification.Field{Label: "Also selling", Value: yesNo(*lead.AlsoSelling)})
	}
	return fields
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
