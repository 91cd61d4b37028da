package location

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the address search endpoint.
type Handler struct {
	provider Provider
}

// NewHandler builds a location HTTP handler.
func NewHandler(provider Provider) *Handler {
	return &Handler{provider: provider}
}

// Search answers GET /location?query=<text> with a list of candidates.
func (h *Handler) Search(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(http.StatusOK).JSON([]any{})
	}
	results, err := h.provider.Search(c.UserContext(), query)
	if err != nil {
		return fiber.NewError(http.StatusBadGateway, "location search failed")
	}
	return c.Status(http.StatusOK).JSON(results)
}
