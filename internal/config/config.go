package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server (serve mode only)
	ServerAddr string

	// Database
	DatabaseURL string

	// Slack
	SlackWebhookURL string
	SlackChannel    string

	// Coupon registry source: Google Sheets when configured,
	// otherwise the static COUPON_CODES list.
	SheetsSpreadsheetID   string
	SheetsCredentialsFile string // Path to service account credentials JSON
	SheetsCouponGID       int    // Sheet GID containing the coupon column
	SheetsCouponColumn    string // Header name of the coupon column
	CouponCodes           []string

	// Report settings
	ReportLookbackDays int
	ReportSchedule     string // Cron spec for serve mode, e.g. "0 9 * * 1"

	// Detection rules file (optional, see rules.go)
	RulesFile string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:                   getEnv("ENV", "development"),
		ServerAddr:            getEnv("SERVER_ADDR", ":3000"),
		DatabaseURL:           getEnv("DATABASE_URL", "postgres://localhost:5432/coupontracker?sslmode=disable"),
		SlackWebhookURL:       getEnv("SLACK_WEBHOOK_URL", ""),
		SlackChannel:          getEnv("SLACK_CHANNEL", "#coupon-alerts"),
		SheetsSpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsCredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", ""),
		SheetsCouponGID:       getEnvInt("SHEETS_COUPON_GID", 0),
		SheetsCouponColumn:    getEnv("SHEETS_COUPON_COLUMN", "Coupon"),
		CouponCodes:           splitList(getEnv("COUPON_CODES", "")),
		ReportLookbackDays:    getEnvInt("REPORT_LOOKBACK_DAYS", 7),
		ReportSchedule:        getEnv("REPORT_SCHEDULE", "0 9 * * 1"),
		RulesFile:             getEnv("COUPON_RULES_FILE", "rules.yaml"),
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.SlackWebhookURL == "" {
		return errors.New("SLACK_WEBHOOK_URL is required")
	}
	if !c.UseSheets() && len(c.CouponCodes) == 0 {
		return errors.New("a coupon source is required: set SHEETS_SPREADSHEET_ID or COUPON_CODES")
	}
	if c.ReportLookbackDays <= 0 {
		return errors.New("REPORT_LOOKBACK_DAYS must be positive")
	}
	return nil
}

// UseSheets returns true if the coupon registry should be fetched from
// Google Sheets instead of the static COUPON_CODES list.
func (c *Config) UseSheets() bool {
	return c.SheetsSpreadsheetID != "" && c.SheetsCredentialsFile != ""
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// splitList splits a comma-separated value into trimmed non-empty entries.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var items []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
