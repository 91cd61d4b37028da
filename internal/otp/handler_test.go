package otp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/realestate-agents/lead_wizard/internal/api"
)

func TestHandlerSend(t *testing.T) {
	svc := newTestService(NewMemoryStore(), &recordingSender{}, Config{ExposeCode: true})
	app := fiber.New()
	app.Post("/otp/send-otp", NewHandler(svc).Send)

	req := httptest.NewRequest(fiber.MethodPost, "/otp/send-otp", strings.NewReader(`{"phoneNumber":"+12065550100"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	var body api.SendOTPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.OTP != "482913" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestHandlerRejectsLocalNumber(t *testing.T) {
	svc := newTestService(NewMemoryStore(), &recordingSender{}, Config{})
	app := fiber.New()
	app.Post("/otp/send-otp", NewHandler(svc).Send)

	req := httptest.NewRequest(fiber.MethodPost, "/otp/send-otp", strings.NewReader(`{"phoneNumber":"2065550100"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.StatusCode)
	}
}
