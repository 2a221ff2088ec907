package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "CoreBank"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultMonitorInterval = time.Hour

	// Amounts are minor units: a floor of 50000 is 500.00.
	defaultMinimumBalance    = 50_000
	defaultLowThreshold      = 100_000
	defaultCriticalThreshold = 50_000
)

// Config captures application runtime configuration loaded from environment
// variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	// Ledger policy.
	MinimumBalance    int64
	LowThreshold      int64
	CriticalThreshold int64
	MonitorInterval   time.Duration

	// Email delivery for balance alerts. Disabled by default; the logger
	// notifier is used instead.
	EmailEnabled bool
	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPPassword string
}

// Load reads configuration values from the environment and populates a
// Config instance. DATABASE_URL and REDIS_URL are optional: without them the
// service runs on the in-memory backend with idempotency and rate limiting
// disabled, which is only sensible for development.
func Load() (Config, error) {
	cfg := Config{
		AppName:           getEnv("APP_NAME", defaultAppName),
		AppEnv:            getEnv("APP_ENV", defaultAppEnv),
		Port:              getEnv("PORT", defaultPort),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		ShutdownPeriod:    defaultShutdownDelay,
		IdempotencyTTL:    defaultIdempotencyTTL,
		MinimumBalance:    defaultMinimumBalance,
		LowThreshold:      defaultLowThreshold,
		CriticalThreshold: defaultCriticalThreshold,
		MonitorInterval:   defaultMonitorInterval,
		EmailEnabled:      getEnv("EMAIL_ENABLED", "false") == "true",
		SMTPHost:          getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPFrom:          os.Getenv("SMTP_FROM"),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.MonitorInterval, err = durationEnv("MONITOR_INTERVAL", cfg.MonitorInterval); err != nil {
		return Config{}, err
	}
	if cfg.MinimumBalance, err = amountEnv("MINIMUM_BALANCE", cfg.MinimumBalance); err != nil {
		return Config{}, err
	}
	if cfg.LowThreshold, err = amountEnv("LOW_BALANCE_THRESHOLD", cfg.LowThreshold); err != nil {
		return Config{}, err
	}
	if cfg.CriticalThreshold, err = amountEnv("CRITICAL_BALANCE_THRESHOLD", cfg.CriticalThreshold); err != nil {
		return Config{}, err
	}

	if cfg.MinimumBalance < 0 {
		return Config{}, fmt.Errorf("MINIMUM_BALANCE must be non-negative")
	}
	if cfg.CriticalThreshold >= cfg.LowThreshold {
		return Config{}, fmt.Errorf("CRITICAL_BALANCE_THRESHOLD must be below LOW_BALANCE_THRESHOLD")
	}
	if cfg.EmailEnabled && (cfg.SMTPFrom == "" || cfg.SMTPPassword == "") {
		return Config{}, fmt.Errorf("SMTP_FROM and SMTP_PASSWORD must be set when EMAIL_ENABLED=true")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func amountEnv(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
