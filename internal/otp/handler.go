package otp

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/validation"
)

// Handler exposes the code issuing endpoint.
type Handler struct {
	service *Service
}

// NewHandler builds an OTP HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Send answers POST /otp/send-otp.
func (h *Handler) Send(c *fiber.Ctx) error {
	var req api.SendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Validate(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	resp, err := h.service.Send(c.UserContext(), req.PhoneNumber)
	if err != nil {
		return fiber.NewError(http.StatusBadGateway, "Failed to send OTP")
	}
	return c.Status(http.StatusOK).JSON(resp)
}
