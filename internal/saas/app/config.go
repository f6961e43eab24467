package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	SessionSecret string        // Required: HMAC secret for session tokens
	SessionIssuer string        // Optional: issuer claim for session tokens (default: saas)
	SessionTTL    time.Duration // Optional: session lifetime (default: 24h)

	DatabaseFile string // Optional: path to SQLite database file (default: ./saas.db)

	BillingURL    string // Optional: entitlement service base URL; empty selects the static plan table
	BillingAPIKey string // Optional: bearer token for the entitlement service

	NotifyURL    string // Optional: notification webhook endpoint; empty logs events instead
	NotifyAPIKey string // Optional: bearer token for the notification endpoint

	InviteTTL time.Duration // Optional: invitation lifetime (default: 7 days)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		SessionSecret: os.Getenv("SAAS_SESSION_SECRET"),
		SessionIssuer: getEnvOrDefault("SAAS_SESSION_ISSUER", "saas"),
		SessionTTL:    getEnvDurationOrDefault("SAAS_SESSION_TTL", 24*time.Hour),

		DatabaseFile: getEnvOrDefault("SAAS_DATABASE_FILE", "saas.db"),

		BillingURL:    os.Getenv("SAAS_BILLING_URL"),
		BillingAPIKey: os.Getenv("SAAS_BILLING_API_KEY"),

		NotifyURL:    os.Getenv("SAAS_NOTIFY_URL"),
		NotifyAPIKey: os.Getenv("SAAS_NOTIFY_API_KEY"),

		InviteTTL: getEnvDurationOrDefault("SAAS_INVITE_TTL", 7*24*time.Hour),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
