package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAppName         = "LeadWizard"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultShutdownDelay   = 10 * time.Second
	defaultDebounce        = 400 * time.Millisecond
	defaultNominatimState  = "Washington"
	defaultNominatimCode   = "WA"
	defaultOTPTTL          = 5 * time.Minute
	defaultOTPMaxAttempts  = 5
	defaultSessionTTL      = 30 * time.Minute
	defaultSMTPPort        = 587
	configFileEnvVar       = "CONFIG_FILE"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Location provider names.
const (
	ProviderNominatim = "nominatim"
	ProviderBackend   = "backend"
)

// Config captures application runtime configuration. Values come from an
// optional YAML file named by CONFIG_FILE, overridden by environment variables.
type Config struct {
	AppName        string         `yaml:"app_name"`
	AppEnv         string         `yaml:"app_env"`
	Port           string         `yaml:"port"`
	LogLevel       string         `yaml:"log_level"`
	LogFormat      string         `yaml:"log_format"`
	DatabaseURL    string         `yaml:"database_url"`
	RedisURL       string         `yaml:"redis_url"`
	ShutdownPeriod time.Duration  `yaml:"shutdown_timeout"`
	// BackendBaseURL sends wizard calls over HTTP to another deployment.
	// Empty serves them in-process.
	BackendBaseURL string         `yaml:"backend_base_url"`
	SessionTTL     time.Duration  `yaml:"session_ttl"`
	Location       LocationConfig `yaml:"location"`
	OTP            OTPConfig      `yaml:"otp"`
	SMS            SMSConfig      `yaml:"sms"`
	SMTP           SMTPConfig     `yaml:"smtp"`
	LeadRecipients []string       `yaml:"lead_recipients"`
	Telegram       TelegramConfig `yaml:"telegram"`
}

// LocationConfig selects and tunes the address search provider.
type LocationConfig struct {
	Provider     string        `yaml:"provider"`
	Debounce     time.Duration `yaml:"debounce"`
	NominatimURL string        `yaml:"nominatim_url"`
	State        string        `yaml:"state"`
	StateCode    string        `yaml:"state_code"`
}

// OTPConfig tunes verification codes.
type OTPConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	MaxAttempts int           `yaml:"max_attempts"`
	// ExposeCode returns issued codes to the wizard so it can check the
	// entry locally. When false, buy leads are still verified on
	// /email/buy, but the sell-and-buy payload carries no code and those
	// leads are accepted without phone verification.
	ExposeCode bool `yaml:"expose_code"`
}

// SMSConfig points at the SMS gateway. An empty GatewayURL logs messages
// instead of sending them.
type SMSConfig struct {
	GatewayURL string `yaml:"gateway_url"`
	APIKey     string `yaml:"api_key"`
	Sender     string `yaml:"sender"`
}

// SMTPConfig configures lead emails. An empty Host disables email.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// TelegramConfig configures the lead chat. An empty token disables it.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

func defaults() Config {
	return Config{
		AppName:        defaultAppName,
		AppEnv:         defaultAppEnv,
		Port:           defaultPort,
		LogLevel:       defaultLogLevel,
		LogFormat:      defaultLogFormat,
		ShutdownPeriod: defaultShutdownDelay,
		SessionTTL:     defaultSessionTTL,
		Location: LocationConfig{
			Provider:  ProviderNominatim,
			Debounce:  defaultDebounce,
			State:     defaultNominatimState,
			StateCode: defaultNominatimCode,
		},
		OTP:  OTPConfig{TTL: defaultOTPTTL, MaxAttempts: defaultOTPMaxAttempts, ExposeCode: true},
		SMTP: SMTPConfig{Port: defaultSMTPPort},
	}
}

// Load reads configuration values from the optional config file and the
// environment and populates a Config instance.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv(configFileEnvVar); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", configFileEnvVar, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	setString(&cfg.AppName, "APP_NAME")
	setString(&cfg.AppEnv, "APP_ENV")
	setString(&cfg.Port, "PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.BackendBaseURL, "BACKEND_BASE_URL")
	setString(&cfg.Location.Provider, "LOCATION_PROVIDER")
	setString(&cfg.Location.NominatimURL, "NOMINATIM_URL")
	setString(&cfg.Location.State, "NOMINATIM_STATE")
	setString(&cfg.Location.StateCode, "NOMINATIM_STATE_CODE")
	setString(&cfg.SMS.GatewayURL, "SMS_GATEWAY_URL")
	setString(&cfg.SMS.APIKey, "SMS_API_KEY")
	setString(&cfg.SMS.Sender, "SMS_SENDER")
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setString(&cfg.SMTP.Username, "SMTP_USERNAME")
	setString(&cfg.SMTP.Password, "SMTP_PASSWORD")
	setString(&cfg.SMTP.From, "SMTP_FROM")
	setString(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	if v := os.Getenv("LEAD_RECIPIENTS"); v != "" {
		cfg.LeadRecipients = splitList(v)
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if err := setDuration(&cfg.ShutdownPeriod, shutdownDurationEnvVar); err != nil {
		return Config{}, err
	}

	for key, dst := range map[string]*time.Duration{
		"LOCATION_DEBOUNCE": &cfg.Location.Debounce,
		"OTP_TTL":           &cfg.OTP.TTL,
		"SESSION_TTL":       &cfg.SessionTTL,
	} {
		if err := setDuration(dst, key); err != nil {
			return Config{}, err
		}
	}
	if err := setInt(&cfg.SMTP.Port, "SMTP_PORT"); err != nil {
		return Config{}, err
	}
	if err := setInt(&cfg.OTP.MaxAttempts, "OTP_MAX_ATTEMPTS"); err != nil {
		return Config{}, err
	}
	if err := setBool(&cfg.OTP.ExposeCode, "OTP_EXPOSE_CODE"); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Telegram.ChatID = id
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Location.Provider = strings.ToLower(cfg.Location.Provider)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Location.Provider {
	case ProviderNominatim, ProviderBackend:
	default:
		return fmt.Errorf("invalid LOCATION_PROVIDER %q", c.Location.Provider)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID must be set when TELEGRAM_BOT_TOKEN is set")
	}
	if c.SMTP.Host != "" && len(c.LeadRecipients) == 0 {
		return fmt.Errorf("LEAD_RECIPIENTS must be set when SMTP_HOST is set")
	}
	if c.IsDev() {
		return nil
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", c.AppEnv)
	}
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", c.AppEnv)
	}
	return nil
}

// IsDev reports whether the service runs in a development environment, where
// Postgres and Redis fall back to in-memory stores.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
