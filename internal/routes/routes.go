package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/realestate-agents/lead_wizard/internal/backend"
	"github.com/realestate-agents/lead_wizard/internal/config"
	"github.com/realestate-agents/lead_wizard/internal/leads"
	"github.com/realestate-agents/lead_wizard/internal/location"
	"github.com/realestate-agents/lead_wizard/internal/middleware"
	"github.com/realestate-agents/lead_wizard/internal/notification"
	"github.com/realestate-agents/lead_wizard/internal/otp"
	"github.com/realestate-agents/lead_wizard/internal/session"
	"github.com/realestate-agents/lead_wizard/internal/sms"
	"github.com/realestate-agents/lead_wizard/internal/wizard"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
	// Telegram overrides the bot built from Cfg.Telegram.
	Telegram notification.BotSender
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger, "/healthz"))
	app.Use(cors.New())

	RegisterHealthRoutes(app, d)

	// Address search
	var provider location.Provider = location.NewNominatim(location.NominatimOptions{
		BaseURL:   d.Cfg.Location.NominatimURL,
		State:     d.Cfg.Location.State,
		StateCode: d.Cfg.Location.StateCode,
		UserAgent: d.Cfg.AppName,
	})
	var remote *backend.Client
	if d.Cfg.BackendBaseURL != "" {
		remote = backend.NewClient(backend.Options{BaseURL: d.Cfg.BackendBaseURL, Logger: d.Logger})
		if d.Cfg.Location.Provider == config.ProviderBackend {
			provider = remote
		}
	}

	// Verification codes
	var otpStore otp.Store
	if d.Cache != nil {
		otpStore = otp.NewRedisStore(d.Cache)
	} else {
		otpStore = otp.NewMemoryStore()
	}
	var sender sms.Sender = sms.NewLogSender(d.Logger)
	if d.Cfg.SMS.GatewayURL != "" {
		sender = sms.NewGatewaySender(sms.GatewayOptions{
			Endpoint: d.Cfg.SMS.GatewayURL,
			APIKey:   d.Cfg.SMS.APIKey,
			From:     d.Cfg.SMS.Sender,
		})
	}
	otpSvc := otp.NewService(otpStore, sender, otp.Config{
		TTL:         d.Cfg.OTP.TTL,
		MaxAttempts: d.Cfg.OTP.MaxAttempts,
		ExposeCode:  d.Cfg.OTP.ExposeCode,
	}, d.Logger)
	if !d.Cfg.OTP.ExposeCode {
		d.Logger.Warn("otp codes withheld from clients; sell-and-buy leads are accepted without phone verification")
	}

	// Leads
	var leadRepo leads.Repository
	if d.DB != nil {
		leadRepo = leads.NewPostgresRepository(d.DB)
	} else {
		leadRepo = leads.NewMemoryRepository()
	}
	notifier, err := buildNotifier(d)
	if err != nil {
		return err
	}
	leadSvc := leads.NewService(leadRepo, otpSvc, notifier, d.Logger)

	// Wizard sessions
	var sessionStore session.Store
	if d.Cache != nil {
		sessionStore = session.NewRedisStore(d.Cache, d.Cfg.SessionTTL)
	} else {
		sessionStore = session.NewMemoryStore(d.Cfg.SessionTTL)
	}
	var wizardBackend wizard.Backend = backend.NewLocal(otpSvc, leadSvc)
	if remote != nil {
		wizardBackend = remote
	}
	sessionSvc := session.NewService(sessionStore, session.Options{
		Backend:  wizardBackend,
		Provider: provider,
		Debounce: d.Cfg.Location.Debounce,
		CodeTTL:  d.Cfg.OTP.TTL,
		TTL:      d.Cfg.SessionTTL,
	}, d.Logger)

	// Lead service endpoints
	RegisterLocationRoutes(app, location.NewHandler(provider))
	RegisterOTPRoutes(app, otp.NewHandler(otpSvc))
	RegisterLeadRoutes(app, leads.NewHandler(leadSvc))

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
	RegisterWizardRoutes(api, session.NewHandler(sessionSvc))

	return nil
}

func buildNotifier(d Deps) (notification.Notifier, error) {
	fanout := notification.Fanout{notification.NewLoggerNotifier(d.Logger)}

	if d.Cfg.SMTP.Host != "" {
		fanout = append(fanout, notification.NewSMTPNotifier(notification.SMTPConfig{
			Host:     d.Cfg.SMTP.Host,
			Port:     d.Cfg.SMTP.Port,
			Username: d.Cfg.SMTP.Username,
			Password: d.Cfg.SMTP.Password,
			From:     d.Cfg.SMTP.From,
		}, d.Cfg.LeadRecipients))
	}

	bot := d.Telegram
	if bot == nil && d.Cfg.Telegram.BotToken != "" {
		api, err := notification.NewTelegramBot(d.Cfg.Telegram.BotToken)
		if err != nil {
			return nil, err
		}
		bot = api
	}
	if bot != nil {
		fanout = append(fanout, notification.NewTelegramNotifier(bot, d.Cfg.Telegram.ChatID))
	}

	return fanout, nil
}
