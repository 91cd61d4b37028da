package routes

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/middleware"
)

// ErrorHandler renders handler errors as {success:false, error}. Errors that
// are not *fiber.Error are logged and reported as 500.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			logger.Error("unhandled error", "path", c.Path(), "request_id", middleware.RequestIDFrom(c), "error", err)
		}
		return c.Status(code).JSON(api.Result{Success: false, Error: msg})
	}
}
