package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/config"
	"github.com/realestate-agents/lead_wizard/internal/logging"
)

func devConfig() config.Config {
	return config.Config{
		AppName: "LeadWizardTest",
		AppEnv:  "test",
		Port:    "0",
		OTP:     config.OTPConfig{ExposeCode: true},
	}
}

func TestServerRejectsMissingStoresOutsideDev(t *testing.T) {
	cfg := devConfig()
	cfg.AppEnv = "production"
	if _, err := New(cfg, nil, nil, logging.Discard()); err == nil {
		t.Fatal("expected error without postgres and redis in production")
	}
}

func TestHealthz(t *testing.T) {
	srv, err := New(devConfig(), nil, nil, logging.Discard())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	resp, err := srv.App().Test(httptest.NewRequest(fiber.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
}

func TestSendOTPThenBuyLead(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() {
		cache.Close()
		mr.Close()
	}()

	srv, err := New(devConfig(), nil, cache, logging.Discard())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	app := srv.App()

	req := httptest.NewRequest(fiber.MethodPost, "/otp/send-otp", strings.NewReader(`{"phoneNumber":"+8801712345678"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var sent api.SendOTPResponse
	if err := json.NewDecoder(resp.Body).Decode(&sent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !sent.Success || len(sent.OTP) != 6 {
		t.Fatalf("unexpected otp response %+v", sent)
	}

	lead := api.BuyLead{
		Email:         "ada@example.com",
		FirstName:     "Ada",
		LastName:      "Lovelace",
		LookingToSell: "Seattle, WA",
		OTP:           sent.OTP,
		PhoneNumber:   "+8801712345678",
		PriceRange:    "$500K - $550K",
	}
	body, _ := json.Marshal(lead)
	req = httptest.NewRequest(fiber.MethodPost, "/email/buy", strings.NewReader(string(body)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(fiber.MethodPost, "/email/buy", strings.NewReader(string(body)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var result api.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized || result.Success || result.Error == "" {
		t.Fatalf("replayed code should be rejected, got %d %+v", resp.StatusCode, result)
	}
}
