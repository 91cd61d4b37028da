package backend

import (
	"context"
	"testing"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/leads"
	"github.com/realestate-agents/lead_wizard/internal/logging"
	"github.com/realestate-agents/lead_wizard/internal/otp"
	"github.com/realestate-agents/lead_wizard/internal/sms"
)

func TestLocalRoundTrip(t *testing.T) {
	logger := logging.Discard()
	otpSvc := otp.NewService(otp.NewMemoryStore(), sms.NewLogSender(logger), otp.Config{ExposeCode: true}, logger)
	leadSvc := leads.NewService(leads.NewMemoryRepository(), otpSvc, nil, logger)
	local := NewLocal(otpSvc, leadSvc)
	ctx := context.Background()

	resp, err := local.SendOTP(ctx, "+12065550100")
	if err != nil || !resp.Success {
		t.Fatalf("send otp: %+v %v", resp, err)
	}

	no := false
	lead := api.BuyLead{
		AddressToSell: &no,
		Email:         "ada@example.com",
		FirstName:     "Ada",
		LastName:      "Lovelace",
		LookingToSell: "Seattle, WA",
		OTP:           resp.OTP,
		PhoneNumber:   "+12065550100",
		PriceRange:    "$500K - $550K",
	}
	if err := local.SubmitLead(ctx, "/email/buy-and-sell", lead); err == nil {
		t.Fatal("expected endpoint mismatch error")
	}
	if err := local.SubmitLead(ctx, "/email/buy", lead); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := local.SubmitLead(ctx, "/email/buy", lead); err == nil {
		t.Fatal("a consumed code must not verify twice")
	}
}
