package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"stockAlertBot/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Market data
	Oracle           string `yaml:"oracle"`             // "yahoo" or "binance"
	BinanceAPIKey    string `yaml:"binance_api_key"`    // optional, public endpoints work without keys
	BinanceSecretKey string `yaml:"binance_secret_key"` // optional
	Proxy            string `yaml:"proxy"`              // optional outbound proxy

	// Notification transport
	Notifier         string `yaml:"notifier"` // "smtp" or "telegram"
	SMTPHost         string `yaml:"smtp_host"`
	SMTPPort         int    `yaml:"smtp_port"`
	SMTPUsername     string `yaml:"smtp_username"`
	SMTPPassword     string `yaml:"smtp_password"`
	SMTPFrom         string `yaml:"smtp_from"`
	TelegramBotToken string `yaml:"telegram_bot_token"`

	// Monitoring cadence
	PollInterval     time.Duration `yaml:"poll_interval"`     // fast live cycle, default 15s
	ForecastInterval time.Duration `yaml:"forecast_interval"` // slow forecast-augmented cycle, default 60s
	RequestTimeout   time.Duration `yaml:"request_timeout"`   // bound on each external call, default 10s

	// Forecasting windows
	HistoryLookback   time.Duration `yaml:"history_lookback"`   // default 180 days
	HistoryResolution time.Duration `yaml:"history_resolution"` // default 1h
	ForecastHorizon   time.Duration `yaml:"forecast_horizon"`   // default 90 days
	ForecastStep      time.Duration `yaml:"forecast_step"`      // default 1h
	ConfidenceWindow  time.Duration `yaml:"confidence_window"`  // default 6h
	TrendSensitivity  float64       `yaml:"trend_sensitivity"`  // default 0.3
	MinHistoryPoints  int           `yaml:"min_history_points"` // default 72

	// Firing policy: keep an alert active when notification delivery fails
	// (retry next cycle) instead of the default at-most-once deactivation.
	KeepActiveOnSendFailure bool `yaml:"keep_active_on_send_failure"`

	// Database
	DBPath string `yaml:"db_path"`

	// Logging
	LogLevel logger.LogLevel `yaml:"-"`
}

// LoadConfig loads configuration from an optional YAML file (CONFIG_PATH),
// then applies environment variable overrides (.env supported via godotenv).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string // Collect validation errors

	// Optional YAML layer first; env vars take precedence below.
	if path := getEnv("CONFIG_PATH", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// Market data
	cfg.Oracle = strings.ToLower(getEnv("ORACLE", defaultString(cfg.Oracle, "yahoo")))
	if cfg.Oracle != "yahoo" && cfg.Oracle != "binance" {
		errs = append(errs, fmt.Sprintf("ORACLE must be 'yahoo' or 'binance', got %q", cfg.Oracle))
	}
	cfg.BinanceAPIKey = getEnv("BINANCE_API_KEY", cfg.BinanceAPIKey)
	cfg.BinanceSecretKey = getEnv("BINANCE_API_SECRET", cfg.BinanceSecretKey)
	cfg.Proxy = getEnv("HTTPS_PROXY", cfg.Proxy)

	// Notification transport
	cfg.Notifier = strings.ToLower(getEnv("NOTIFIER", defaultString(cfg.Notifier, "smtp")))
	switch cfg.Notifier {
	case "smtp":
		cfg.SMTPHost = getEnv("SMTP_HOST", cfg.SMTPHost)
		cfg.SMTPPort = getEnvAsInt("SMTP_PORT", defaultInt(cfg.SMTPPort, 587))
		cfg.SMTPUsername = getEnv("SMTP_USERNAME", cfg.SMTPUsername)
		cfg.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.SMTPPassword)
		cfg.SMTPFrom = getEnv("SMTP_FROM", cfg.SMTPFrom)
		if cfg.SMTPHost == "" {
			errs = append(errs, "SMTP_HOST must be set for the smtp notifier")
		}
		if cfg.SMTPFrom == "" {
			errs = append(errs, "SMTP_FROM must be set for the smtp notifier")
		}
	case "telegram":
		cfg.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
		if cfg.TelegramBotToken == "" {
			errs = append(errs, "TELEGRAM_BOT_TOKEN must be set for the telegram notifier")
		}
	default:
		errs = append(errs, fmt.Sprintf("NOTIFIER must be 'smtp' or 'telegram', got %q", cfg.Notifier))
	}

	// Monitoring cadence
	var err error
	cfg.PollInterval, err = getEnvAsDuration("POLL_INTERVAL", defaultDuration(cfg.PollInterval, 15*time.Second))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid POLL_INTERVAL: %v", err))
	} else if cfg.PollInterval <= 0 {
		errs = append(errs, "POLL_INTERVAL must be positive")
	}
	cfg.ForecastInterval, err = getEnvAsDuration("FORECAST_INTERVAL", defaultDuration(cfg.ForecastInterval, time.Minute))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid FORECAST_INTERVAL: %v", err))
	} else if cfg.ForecastInterval <= 0 {
		errs = append(errs, "FORECAST_INTERVAL must be positive")
	}
	cfg.RequestTimeout, err = getEnvAsDuration("REQUEST_TIMEOUT", defaultDuration(cfg.RequestTimeout, 10*time.Second))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid REQUEST_TIMEOUT: %v", err))
	} else if cfg.RequestTimeout <= 0 {
		errs = append(errs, "REQUEST_TIMEOUT must be positive")
	}

	// Forecasting windows (using defaults if not set)
	cfg.HistoryLookback, _ = getEnvAsDuration("HISTORY_LOOKBACK", defaultDuration(cfg.HistoryLookback, 180*24*time.Hour))
	cfg.HistoryResolution, _ = getEnvAsDuration("HISTORY_RESOLUTION", defaultDuration(cfg.HistoryResolution, time.Hour))
	cfg.ForecastHorizon, _ = getEnvAsDuration("FORECAST_HORIZON", defaultDuration(cfg.ForecastHorizon, 90*24*time.Hour))
	cfg.ForecastStep, _ = getEnvAsDuration("FORECAST_STEP", defaultDuration(cfg.ForecastStep, time.Hour))
	cfg.ConfidenceWindow, _ = getEnvAsDuration("CONFIDENCE_WINDOW", defaultDuration(cfg.ConfidenceWindow, 6*time.Hour))
	cfg.TrendSensitivity = getEnvAsFloat("TREND_SENSITIVITY", defaultFloat(cfg.TrendSensitivity, 0.3))
	cfg.MinHistoryPoints = getEnvAsInt("MIN_HISTORY_POINTS", defaultInt(cfg.MinHistoryPoints, 72))

	if cfg.TrendSensitivity <= 0 || cfg.TrendSensitivity > 1 {
		errs = append(errs, "TREND_SENSITIVITY must be in (0, 1]")
	}
	if cfg.MinHistoryPoints <= 1 {
		errs = append(errs, "MIN_HISTORY_POINTS must be greater than 1")
	}
	if cfg.HistoryLookback <= 0 || cfg.ForecastHorizon <= 0 {
		errs = append(errs, "HISTORY_LOOKBACK and FORECAST_HORIZON must be positive")
	}

	// Firing policy
	cfg.KeepActiveOnSendFailure = getEnvAsBool("KEEP_ACTIVE_ON_SEND_FAILURE", cfg.KeepActiveOnSendFailure)

	// Database
	cfg.DBPath = getEnv("DB_PATH", defaultString(cfg.DBPath, "./data/alerts.db"))

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

// --- YAML-layer default helpers (env overrides a YAML value, YAML overrides the built-in) ---

func defaultString(current, fallback string) string {
	if current != "" {
		return current
	}
	return fallback
}

func defaultInt(current, fallback int) int {
	if current != 0 {
		return current
	}
	return fallback
}

func defaultFloat(current, fallback float64) float64 {
	if current != 0 {
		return current
	}
	return fallback
}

func defaultDuration(current, fallback time.Duration) time.Duration {
	if current != 0 {
		return current
	}
	return fallback
}
