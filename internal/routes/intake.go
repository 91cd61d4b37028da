package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/realestate-agents/lead_wizard/internal/leads"
	"github.com/realestate-agents/lead_wizard/internal/location"
	"github.com/realestate-agents/lead_wizard/internal/otp"
)

// RegisterLocationRoutes wires the address search endpoint.
func RegisterLocationRoutes(r fiber.Router, h *location.Handler) {
	r.Get("/location", h.Search)
}

// RegisterOTPRoutes wires the verification code endpoint.
func RegisterOTPRoutes(r fiber.Router, h *otp.Handler) {
	r.Post("/otp/send-otp", h.Send)
}

// RegisterLeadRoutes wires the lead intake endpoints.
func RegisterLeadRoutes(r fiber.Router, h *leads.Handler) {
	r.Post("/email/buy", h.Buy)
	r.Post("/email/buy-and-sell", h.BuyAndSell)
}
