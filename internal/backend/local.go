package backend

import (
	"context"
	"fmt"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/leads"
	"github.com/realestate-agents/lead_wizard/internal/otp"
)

// Local serves wizard calls in-process when the wizard and the lead
// endpoints run in the same binary.
type Local struct {
	otp   *otp.Service
	leads *leads.Service
}

// NewLocal builds a Local backend.
func NewLocal(otpSvc *otp.Service, leadSvc *leads.Service) *Local {
	return &Local{otp: otpSvc, leads: leadSvc}
}

// SendOTP issues a code through the OTP service.
func (l *Local) SendOTP(ctx context.Context, phone string) (api.SendOTPResponse, error) {
	return l.otp.Send(ctx, phone)
}

// SubmitLead hands payload to the lead service. The endpoint must agree with
// the payload type.
func (l *Local) SubmitLead(ctx context.Context, endpoint string, payload any) error {
	var err error
	switch p := payload.(type) {
	case api.BuyLead:
		if endpoint != "/email/buy" {
			return fmt.Errorf("buy lead posted to %s", endpoint)
		}
		_, err = l.leads.SubmitBuy(ctx, p)
	case api.SellAndBuyLead:
		if endpoint != "/email/buy-and-sell" {
			return fmt.Errorf("sell-and-buy lead posted to %s", endpoint)
		}
		_, err = l.leads.SubmitBuyAndSell(ctx, p)
	default:
		return fmt.Errorf("unsupported lead payload %T", payload)
	}
	return err
}
