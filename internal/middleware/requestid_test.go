package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(RequestIDFrom(c))
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	generated := resp.Header.Get(RequestIDHeader)
	body, _ := io.ReadAll(resp.Body)
	if generated == "" || string(body) != generated {
		t.Fatalf("expected generated id in header and locals, got %q / %q", generated, body)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "lead-123")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	if string(body) != "lead-123" || resp.Header.Get(RequestIDHeader) != "lead-123" {
		t.Fatalf("expected caller id to be kept, got %q", body)
	}

	req = httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if got := resp.Header.Get(RequestIDHeader); len(got) > maxRequestIDLen {
		t.Fatalf("oversized id should be replaced, got %d chars", len(got))
	}
}

func auditLines(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if raw == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			t.Fatalf("decode log line %q: %v", raw, err)
		}
		lines = append(lines, m)
	}
	return lines
}

func TestAuditLevels(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	app := fiber.New()
	app.Use(RequestID())
	app.Use(Audit(logger, "/healthz"))
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/email/buy", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/otp/send-otp", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadGateway, "Failed to send OTP")
	})
	app.Patch("/form", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "step is incomplete"})
	})

	for _, r := range []struct{ method, path string }{
		{fiber.MethodGet, "/healthz"},
		{fiber.MethodPost, "/email/buy"},
		{fiber.MethodPost, "/otp/send-otp"},
		{fiber.MethodPatch, "/form"},
	} {
		if _, err := app.Test(httptest.NewRequest(r.method, r.path, nil)); err != nil {
			t.Fatalf("app.Test %s: %v", r.path, err)
		}
	}

	lines := auditLines(t, &out)
	if len(lines) != 4 {
		t.Fatalf("expected 4 audit lines, got %d: %s", len(lines), out.String())
	}
	want := []struct {
		path   string
		level  string
		status float64
	}{
		{"/healthz", "DEBUG", 200},
		{"/email/buy", "INFO", 200},
		{"/otp/send-otp", "ERROR", 502},
		{"/form", "WARN", 422},
	}
	for i, w := range want {
		l := lines[i]
		if l["path"] != w.path || l["level"] != w.level || l["status"] != w.status {
			t.Fatalf("line %d: got %v, want %+v", i, l, w)
		}
		if id, _ := l["request_id"].(string); id == "" {
			t.Fatalf("line %d: missing request id", i)
		}
	}
}
