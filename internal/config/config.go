package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port        string
	Environment string
	Debug       bool

	// Database configuration
	DBDriver               string // "postgres", "sqlite" or "memory"
	DBHost                 string
	DBPort                 string
	DBUser                 string
	DBPass                 string
	DBName                 string
	DBSSLMode              string
	InstanceConnectionName string
	SQLitePath             string

	// Twilio configuration
	TwilioAccountSID         string
	TwilioAuthToken          string
	TwilioMessagingService   string
	TwilioPhoneNumber        string
	PublicURL                string
	DisableWebhookValidation bool

	// Alert policy
	AdminPhoneNumbers  []string
	TimeZone           string
	ReportOpenHour     int
	ReportCloseHour    int
	SightingRateLimit  time.Duration
	BroadcastSendDelay time.Duration
	ContactCardURL     string

	// Shared secrets for operator endpoints
	SendMessageSecret string
	DebugURLSecret    string

	// Conversation sessions
	SessionTTL             time.Duration
	SessionCleanupSchedule string

	WordFilterFile string

	location *time.Location
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "production"),
		Debug:       getBoolEnv("DEBUG", false),

		DBDriver:               getEnv("DB_DRIVER", "postgres"),
		DBHost:                 getEnv("DB_HOST", "localhost"),
		DBPort:                 getEnv("DB_PORT", "5432"),
		DBUser:                 getEnv("DB_USER", "postgres"),
		DBPass:                 getEnv("DB_PASS", ""),
		DBName:                 getEnv("DB_NAME", "whales"),
		DBSSLMode:              getEnv("DB_SSLMODE", "disable"),
		InstanceConnectionName: getEnv("INSTANCE_CONNECTION_NAME", ""),
		SQLitePath:             getEnv("SQLITE_PATH", "data/whales.db"),

		TwilioAccountSID:         getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:          getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioMessagingService:   getEnv("TWILIO_MESSAGING_SERVICE", ""),
		TwilioPhoneNumber:        getEnv("TWILIO_PHONE_NUMBER", ""),
		PublicURL:                strings.TrimSuffix(getEnv("PUBLIC_URL", ""), "/"),
		DisableWebhookValidation: getBoolEnv("DISABLE_WEBHOOK_VALIDATION", false),

		AdminPhoneNumbers:  getSliceEnv("ADMIN_PHONE_NUMBERS", nil),
		TimeZone:           getEnv("ALERT_TIMEZONE", "America/Los_Angeles"),
		ReportOpenHour:     getIntEnv("REPORT_OPEN_HOUR", 8),
		ReportCloseHour:    getIntEnv("REPORT_CLOSE_HOUR", 20),
		SightingRateLimit:  getDurationEnv("SIGHTING_RATE_LIMIT", 4*time.Hour),
		BroadcastSendDelay: getDurationEnv("BROADCAST_SEND_DELAY", 100*time.Millisecond),
		ContactCardURL:     getEnv("CONTACT_CARD_URL", "https://westmarinwhales.s3-us-west-2.amazonaws.com/westmarinwhales.vcf"),

		SendMessageSecret: getEnv("SEND_MESSAGE_SECRET", ""),
		DebugURLSecret:    getEnv("DEBUG_URL_SECRET", ""),

		SessionTTL:             getDurationEnv("SESSION_TTL", 24*time.Hour),
		SessionCleanupSchedule: getEnv("SESSION_CLEANUP_SCHEDULE", "0 0 * * * *"),

		WordFilterFile: getEnv("WORD_FILTER_FILE", ""),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("DB_DRIVER must be 'postgres', 'sqlite' or 'memory'")
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("ALERT_TIMEZONE %q is not a valid IANA zone: %w", c.TimeZone, err)
	}
	c.location = loc

	if c.ReportOpenHour < 0 || c.ReportCloseHour > 24 || c.ReportOpenHour >= c.ReportCloseHour {
		return fmt.Errorf("REPORT_OPEN_HOUR must be before REPORT_CLOSE_HOUR (got %d-%d)", c.ReportOpenHour, c.ReportCloseHour)
	}

	if len(c.AdminPhoneNumbers) == 0 {
		return fmt.Errorf("ADMIN_PHONE_NUMBERS must list at least one admin")
	}

	if c.SightingRateLimit <= 0 {
		return fmt.Errorf("SIGHTING_RATE_LIMIT must be positive")
	}

	if !c.IsDevelopment() {
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" {
			return fmt.Errorf("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN are required outside development")
		}
		if c.TwilioMessagingService == "" && c.TwilioPhoneNumber == "" {
			return fmt.Errorf("TWILIO_MESSAGING_SERVICE or TWILIO_PHONE_NUMBER is required outside development")
		}
	}

	return nil
}

// IsDevelopment reports whether the app runs in local development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Location returns the alert region's time zone
func (c *Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	if loc, err := time.LoadLocation(c.TimeZone); err == nil && c.TimeZone != "" {
		return loc
	}
	return time.UTC
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
