package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/realestate-agents/lead_wizard/internal/api"
	"github.com/realestate-agents/lead_wizard/internal/config"
	"github.com/realestate-agents/lead_wizard/internal/logging"
	"github.com/realestate-agents/lead_wizard/internal/middleware"
)

type recordingBot struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (b *recordingBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, nil
}

func newTestApp(t *testing.T, d Deps) *fiber.App {
	t.Helper()
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	if d.Cfg.AppEnv == "" {
		d.Cfg.AppEnv = "test"
	}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(d.Logger)})
	if err := Setup(app, d); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func TestSetupRequiresStoresOutsideDev(t *testing.T) {
	app := fiber.New()
	err := Setup(app, Deps{Cfg: config.Config{AppEnv: "production"}, Logger: logging.Discard()})
	if err == nil {
		t.Fatal("expected error without database in production")
	}
}

func TestSetupWarnsWhenCodesWithheld(t *testing.T) {
	for _, expose := range []bool{false, true} {
		var buf bytes.Buffer
		cfg := config.Config{AppEnv: "test", OTP: config.OTPConfig{ExposeCode: expose}}
		newTestApp(t, Deps{Cfg: cfg, Logger: logging.NewWriter(&buf, "warn", "text")})

		warned := strings.Contains(buf.String(), "sell-and-buy leads are accepted without phone verification")
		if warned == expose {
			t.Fatalf("expose_code=%v: unexpected warning state, log %q", expose, buf.String())
		}
	}
}

func TestPingEchoesRequestID(t *testing.T) {
	app := newTestApp(t, Deps{})

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || body["request_id"] != "req-42" {
		t.Fatalf("unexpected ping response %d %v", resp.StatusCode, body)
	}
}

func TestHealthReportsRedisOutage(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := newTestApp(t, Deps{Cache: cache})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 while redis is up, got %d", resp.StatusCode)
	}

	mr.Close()
	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/healthz", nil), 5000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 once redis is gone, got %d", resp.StatusCode)
	}
}

func TestLeadIsForwardedToTelegram(t *testing.T) {
	bot := &recordingBot{}
	app := newTestApp(t, Deps{
		Cfg:      config.Config{Telegram: config.TelegramConfig{ChatID: 1001}},
		Telegram: bot,
	})

	body := `{"addressToSell":"12 Pine St","cityToBuy":"Bellevue, WA","firstName":"Grace","lastName":"Hopper",
		"hasAgent":"No","homePriceRange":"$600K - $650K","lookingPriceRange":"Under $100K",
		"phoneNumber":"+12065550100","email":"grace@example.com"}`
	req := httptest.NewRequest(fiber.MethodPost, "/email/buy-and-sell", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var result api.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || !result.Success {
		t.Fatalf("unexpected response %d %+v", resp.StatusCode, result)
	}

	bot.mu.Lock()
	defer bot.mu.Unlock()
	if len(bot.sent) != 2 {
		t.Fatalf("expected message and lead sheet, got %d sends", len(bot.sent))
	}
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	if !ok || msg.ChatID != 1001 || !strings.Contains(msg.Text, "Grace Hopper") {
		t.Fatalf("unexpected telegram message %#v", bot.sent[0])
	}
	if _, ok := bot.sent[1].(tgbotapi.DocumentConfig); !ok {
		t.Fatalf("expected a document, got %T", bot.sent[1])
	}
}

func TestErrorHandlerRendersResult(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("database exploded")
	})

	cases := []struct {
		path string
		code int
		msg  string
	}{
		{"/teapot", fiber.StatusTeapot, "short and stout"},
		{"/boom", fiber.StatusInternalServerError, "internal server error"},
		{"/missing", fiber.StatusNotFound, "Cannot GET /missing"},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tc.path, nil))
		if err != nil {
			t.Fatalf("%s: app.Test: %v", tc.path, err)
		}
		var result api.Result
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			t.Fatalf("%s: decode: %v", tc.path, err)
		}
		if resp.StatusCode != tc.code || result.Success || result.Error != tc.msg {
			t.Fatalf("%s: got %d %+v", tc.path, resp.StatusCode, result)
		}
	}
}
