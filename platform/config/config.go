// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetChatRatePerMinute() int
}

// MistralConfig provides settings for the Mistral chat-completion API.
type MistralConfig interface {
	GetMistralAPIKey() string
	GetMistralBaseURL() string
	GetMistralModel() string
}

// DateConfig provides settings for due-date resolution and validation.
type DateConfig interface {
	GetWorldTimeAPIURL() string
	GetDateValidationAPIURL() string
	GetDateValidationCountry() string
	GetDateValidationToday() string
}

// SMTPConfig provides settings for quote email delivery.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFromAddress() string
	GetSenderName() string
	IsSMTPEnabled() bool
}

// SheetsConfig provides settings for the spreadsheet audit log.
type SheetsConfig interface {
	GetSheetsWebhookURL() string
	IsSheetsEnabled() bool
}

// GotenbergConfig provides settings for the Gotenberg HTML-to-PDF service.
type GotenbergConfig interface {
	GetGotenbergURL() string
	GetGotenbergUsername() string
	GetGotenbergPassword() string
	IsGotenbergEnabled() bool
}

// StorageConfig provides settings for MinIO artifact archival.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketQuoteArtifacts() string
	IsMinIOEnabled() bool
}

// AdminConfig provides settings for the admin pricing surface.
type AdminConfig interface {
	GetAdminPassword() string
	GetAdminPasswordHash() string
	GetAdminSessionSecret() string
	GetAdminSessionTTL() time.Duration
}

// QuoteDefaultsConfig provides process-wide pricing defaults.
type QuoteDefaultsConfig interface {
	GetDefaultCurrency() string
	GetDefaultLaborRate() float64
	GetDefaultMarkupPct() float64
	GetDefaultVATPct() float64
	GetQuoteValidDays() int
	GetOutputDir() string
	GetAppBaseURL() string
	GetFXRates() map[string]float64
}

// BOMConfig provides settings for the job-type registry.
type BOMConfig interface {
	GetBOMRegistryPath() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                       string
	HTTPAddr                  string
	DatabaseURL               string
	CORSAllowAll              bool
	CORSOrigins               []string
	ChatRatePerMinute         int
	AppBaseURL                string
	MistralAPIKey             string
	MistralBaseURL            string
	MistralModel              string
	WorldTimeAPIURL           string
	DateValidationAPIURL      string
	DateValidationCountry     string
	DateValidationToday       string
	SMTPHost                  string
	SMTPPort                  int
	SMTPUsername              string
	SMTPPassword              string
	SMTPFromAddress           string
	SenderName                string
	SheetsWebhookURL          string
	GotenbergURL              string
	GotenbergUsername         string
	GotenbergPassword         string
	MinIOEndpoint             string
	MinIOAccessKey            string
	MinIOSecretKey            string
	MinIOUseSSL               bool
	MinioBucketQuoteArtifacts string
	AdminPassword             string
	AdminPasswordHash         string
	AdminSessionSecret        string
	AdminSessionTTL           time.Duration
	DefaultCurrency           string
	DefaultLaborRate          float64
	DefaultMarkupPct          float64
	DefaultVATPct             float64
	QuoteValidDays            int
	OutputDir                 string
	FXRates                   map[string]float64
	BOMRegistryPath           string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string        { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool      { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string   { return c.CORSOrigins }
func (c *Config) GetChatRatePerMinute() int { return c.ChatRatePerMinute }

// MistralConfig implementation
func (c *Config) GetMistralAPIKey() string  { return c.MistralAPIKey }
func (c *Config) GetMistralBaseURL() string { return c.MistralBaseURL }
func (c *Config) GetMistralModel() string   { return c.MistralModel }

// DateConfig implementation
func (c *Config) GetWorldTimeAPIURL() string       { return c.WorldTimeAPIURL }
func (c *Config) GetDateValidationAPIURL() string  { return c.DateValidationAPIURL }
func (c *Config) GetDateValidationCountry() string { return c.DateValidationCountry }
func (c *Config) GetDateValidationToday() string   { return c.DateValidationToday }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string        { return c.SMTPHost }
func (c *Config) GetSMTPPort() int           { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string    { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string    { return c.SMTPPassword }
func (c *Config) GetSMTPFromAddress() string { return c.SMTPFromAddress }
func (c *Config) GetSenderName() string      { return c.SenderName }
func (c *Config) IsSMTPEnabled() bool        { return c.SMTPHost != "" && c.SMTPFromAddress != "" }

// SheetsConfig implementation
func (c *Config) GetSheetsWebhookURL() string { return c.SheetsWebhookURL }
func (c *Config) IsSheetsEnabled() bool       { return c.SheetsWebhookURL != "" }

// GotenbergConfig implementation
func (c *Config) GetGotenbergURL() string      { return c.GotenbergURL }
func (c *Config) GetGotenbergUsername() string { return c.GotenbergUsername }
func (c *Config) GetGotenbergPassword() string { return c.GotenbergPassword }
func (c *Config) IsGotenbergEnabled() bool     { return c.GotenbergURL != "" }

// StorageConfig implementation
func (c *Config) GetMinIOEndpoint() string  { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool      { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketQuoteArtifacts() string {
	return c.MinioBucketQuoteArtifacts
}
func (c *Config) IsMinIOEnabled() bool { return c.MinIOEndpoint != "" }

// AdminConfig implementation
func (c *Config) GetAdminPassword() string          { return c.AdminPassword }
func (c *Config) GetAdminPasswordHash() string      { return c.AdminPasswordHash }
func (c *Config) GetAdminSessionSecret() string     { return c.AdminSessionSecret }
func (c *Config) GetAdminSessionTTL() time.Duration { return c.AdminSessionTTL }

// QuoteDefaultsConfig implementation
func (c *Config) GetDefaultCurrency() string      { return c.DefaultCurrency }
func (c *Config) GetDefaultLaborRate() float64    { return c.DefaultLaborRate }
func (c *Config) GetDefaultMarkupPct() float64    { return c.DefaultMarkupPct }
func (c *Config) GetDefaultVATPct() float64       { return c.DefaultVATPct }
func (c *Config) GetQuoteValidDays() int          { return c.QuoteValidDays }
func (c *Config) GetOutputDir() string            { return c.OutputDir }
func (c *Config) GetAppBaseURL() string           { return c.AppBaseURL }
func (c *Config) GetFXRates() map[string]float64 { return c.FXRates }

// BOMConfig implementation
func (c *Config) GetBOMRegistryPath() string { return c.BOMRegistryPath }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:8080"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	fxRates, err := parseFXRates(getEnv("FX_RATES", `{"GBP":1.0}`))
	if err != nil {
		return nil, fmt.Errorf("invalid FX_RATES: %w", err)
	}

	cfg := &Config{
		Env:                       getEnv("APP_ENV", "development"),
		HTTPAddr:                  getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		CORSAllowAll:              corsAllowAll,
		CORSOrigins:               corsOrigins,
		ChatRatePerMinute:         mustInt(getEnv("CHAT_RATE_PER_MINUTE", "30")),
		AppBaseURL:                getEnv("APP_BASE_URL", "http://localhost:8080"),
		MistralAPIKey:             strings.TrimSpace(getEnv("MISTRAL_API_KEY", "")),
		MistralBaseURL:            strings.TrimRight(getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"), "/"),
		MistralModel:              getEnv("MISTRAL_MODEL", "mistral-large-latest"),
		WorldTimeAPIURL:           getEnv("WORLD_TIME_API_URL", "http://worldtimeapi.org/api/timezone/Europe/London"),
		DateValidationAPIURL:      getEnv("DATE_VALIDATION_API_URL", "https://date.nager.at/api/v3/publicholidays/{year}/{country}"),
		DateValidationCountry:     strings.TrimSpace(getEnv("DATE_VALIDATION_COUNTRY", "GB")),
		DateValidationToday:       strings.TrimSpace(getEnv("DATE_VALIDATION_TODAY", "")),
		SMTPHost:                  getEnv("SMTP_HOST", ""),
		SMTPPort:                  mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:              getEnv("SMTP_USERNAME", ""),
		SMTPPassword:              getEnv("SMTP_PASSWORD", ""),
		SMTPFromAddress:           getEnv("SMTP_FROM_ADDRESS", ""),
		SenderName:                getEnv("SENDER_NAME", "Bakery Quotation Studio"),
		SheetsWebhookURL:          getEnv("SHEETS_WEBHOOK_URL", ""),
		GotenbergURL:              getEnv("GOTENBERG_URL", ""),
		GotenbergUsername:         getEnv("GOTENBERG_USERNAME", ""),
		GotenbergPassword:         getEnv("GOTENBERG_PASSWORD", ""),
		MinIOEndpoint:             getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:            getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:            getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:               strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketQuoteArtifacts: getEnv("MINIO_BUCKET_QUOTE_ARTIFACTS", "quote-artifacts"),
		AdminPassword:             strings.TrimSpace(getEnv("ADMIN_PASSWORD", "")),
		AdminPasswordHash:         strings.TrimSpace(getEnv("ADMIN_PASSWORD_HASH", "")),
		AdminSessionSecret:        getEnv("ADMIN_SESSION_SECRET", ""),
		AdminSessionTTL:           mustDuration(getEnv("ADMIN_SESSION_TTL", "12h")),
		DefaultCurrency:           strings.ToUpper(getEnv("DEFAULT_CURRENCY", "GBP")),
		DefaultLaborRate:          mustFloat(getEnv("DEFAULT_LABOR_RATE", "22.50")),
		DefaultMarkupPct:          mustFloat(getEnv("DEFAULT_MARKUP_PCT", "0.15")),
		DefaultVATPct:             mustFloat(getEnv("DEFAULT_VAT_PCT", "0.20")),
		QuoteValidDays:            mustInt(getEnv("QUOTE_VALID_DAYS", "14")),
		OutputDir:                 getEnv("OUTPUT_DIR", "quotes"),
		FXRates:                   fxRates,
		BOMRegistryPath:           getEnv("BOM_REGISTRY_PATH", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	if cfg.AdminSessionSecret == "" {
		return nil, fmt.Errorf("ADMIN_SESSION_SECRET is required")
	}
	if cfg.DefaultMarkupPct < 0 || cfg.DefaultMarkupPct > 1 || cfg.DefaultVATPct < 0 || cfg.DefaultVATPct > 1 {
		return nil, fmt.Errorf("DEFAULT_MARKUP_PCT and DEFAULT_VAT_PCT must be fractional (0.0-1.0)")
	}
	if _, ok := cfg.FXRates[cfg.DefaultCurrency]; !ok {
		return nil, fmt.Errorf("FX_RATES must include the default currency %s", cfg.DefaultCurrency)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func parseFXRates(raw string) (map[string]float64, error) {
	rates := make(map[string]float64)
	if err := json.Unmarshal([]byte(raw), &rates); err != nil {
		return nil, err
	}
	normalized := make(map[string]float64, len(rates))
	for code, rate := range rates {
		if rate <= 0 {
			return nil, fmt.Errorf("rate for %s must be positive", code)
		}
		normalized[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return normalized, nil
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
