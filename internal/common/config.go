package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Extraction ExtractionConfig
	Credential CredentialConfig
	Render     RenderConfig
}

// ExtractionConfig holds settings for the external extraction service.
type ExtractionConfig struct {
	BaseURL string
	Model   string
	APIKey  string // environment credential source; may be empty
	Timeout time.Duration
}

// CredentialConfig holds settings for credential persistence and the
// host-runtime credential helper.
type CredentialConfig struct {
	StorePath     string
	HelperCommand string
}

// RenderConfig holds document formatting options.
type RenderConfig struct {
	FontFamily     string
	Bold           bool
	Italic         bool
	TextColor      string
	CurrencySymbol string
}

// LoadConfig loads configuration from a .env file (if present) and
// environment variables.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Extraction: ExtractionConfig{
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
		},
		Credential: CredentialConfig{
			StorePath:     getEnv("RATESHEET_STORE_PATH", "./ratesheet.db"),
			HelperCommand: getEnv("RATESHEET_CREDENTIAL_HELPER", ""),
		},
		Render: RenderConfig{
			FontFamily:     getEnv("RATESHEET_FONT", "sans"),
			Bold:           getEnvAsBool("RATESHEET_FONT_BOLD", false),
			Italic:         getEnvAsBool("RATESHEET_FONT_ITALIC", false),
			TextColor:      getEnv("RATESHEET_TEXT_COLOR", "#111111"),
			CurrencySymbol: getEnv("RATESHEET_CURRENCY", "$"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

var fontFamilies = map[string]struct{}{"sans": {}, "serif": {}, "mono": {}}

// Validate checks that required settings are present and well-formed.
func (c *Config) Validate() error {
	if c.Extraction.Model == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_MODEL is required", ErrInvalidInput)
	}
	if c.Extraction.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_BASE_URL is required", ErrInvalidInput)
	}
	if c.Credential.StorePath == "" {
		return NewAppError("CONFIG_ERROR", "RATESHEET_STORE_PATH is required", ErrInvalidInput)
	}
	if _, ok := fontFamilies[c.Render.FontFamily]; !ok {
		return NewAppError("CONFIG_ERROR", "RATESHEET_FONT must be one of sans, serif, mono", ErrInvalidInput)
	}
	return nil
}
