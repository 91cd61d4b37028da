package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/realestate-agents/lead_wizard/internal/session"
)

// RegisterWizardRoutes wires the wizard session endpoints.
func RegisterWizardRoutes(r fiber.Router, h *session.Handler) {
	w := r.Group("/wizards")
	w.Post("/", h.Create)
	w.Get("/:id", h.Get)
	w.Delete("/:id", h.Close)
	w.Patch("/:id/form", h.UpdateForm)
	w.Post("/:id/next", h.Next)
	w.Post("/:id/back", h.Back)
	w.Post("/:id/key", h.Key)
	w.Get("/:id/locations", h.Locations)
	w.Post("/:id/locations/select", h.SelectLocation)
	w.Post("/:id/price/:field", h.Price)
	w.Post("/:id/otp", h.OTP)
	w.Post("/:id/send-code", h.SendCode)
	w.Post("/:id/submit", h.Submit)
}
