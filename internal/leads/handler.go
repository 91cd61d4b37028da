package leads

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/realestate-agents/lead_wizard/internal/api"
)

// Handler exposes the lead intake endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a lead HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Buy answers POST /email/buy.
func (h *Handler) Buy(c *fiber.Ctx) error {
	var req api.BuyLead
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.service.SubmitBuy(c.UserContext(), req); err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(api.Result{Success: true, Message: "Lead received"})
}

// BuyAndSell answers POST /email/buy-and-sell.
func (h *Handler) BuyAndSell(c *fiber.Ctx) error {
	var req api.SellAndBuyLead
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.service.SubmitBuyAndSell(c.UserContext(), req); err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(api.Result{Success: true, Message: "Lead received"})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidLead):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrVerification):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "failed to store lead")
	}
}
