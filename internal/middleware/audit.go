package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Audit logs one line per request. Server errors log at error level, client
// errors at warn, and requests to skipped paths at debug.
func Audit(logger *slog.Logger, skip ...string) fiber.Handler {
	quiet := make(map[string]bool, len(skip))
	for _, p := range skip {
		quiet[p] = true
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		attrs := []slog.Attr{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("ip", c.IP()),
		}
		if id := RequestIDFrom(c); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}

		level := slog.LevelInfo
		switch {
		case status >= fiber.StatusInternalServerError || (err != nil && status < fiber.StatusBadRequest):
			level = slog.LevelError
		case status >= fiber.StatusBadRequest:
			level = slog.LevelWarn
		case quiet[c.Path()]:
			level = slog.LevelDebug
		}
		logger.LogAttrs(context.Background(), level, "request completed", attrs...)
		return err
	}
}
