package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel     OTelConfig
	Chatwoot ChatwootConfig
	Zendesk  ZendeskConfig
	Env      string
	Port     string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// ChatwootConfig describes the destination platform: the agent inbox
// that receives helpdesk comments as incoming chat messages.
type ChatwootConfig struct {
	BaseURL   string
	AccountID string
	APIToken  string
	InboxID   string
}

// ZendeskConfig describes the source platform. API calls authenticate
// with basic credentials derived from the account email and token.
type ZendeskConfig struct {
	Subdomain string
	Email     string
	APIToken  string
}

// Load loads configuration from environment variables.
// In development it also reads a local .env file if one exists.
func Load() (Config, error) {
	if getEnv("RELAY_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:  getEnv("RELAY_ENV", "development"),
		Port: getEnv("PORT", "8000"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "deskbridge-relay"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Chatwoot: ChatwootConfig{
			BaseURL:   getEnv("CHATWOOT_BASE_URL", ""),
			AccountID: getEnv("CHATWOOT_ACCOUNT_ID", ""),
			APIToken:  getEnv("CHATWOOT_API_TOKEN", ""),
			InboxID:   getEnv("CHATWOOT_INBOX_ID", ""),
		},
		Zendesk: ZendeskConfig{
			Subdomain: getEnv("ZENDESK_SUBDOMAIN", ""),
			Email:     getEnv("ZENDESK_EMAIL", ""),
			APIToken:  getEnv("ZENDESK_API_TOKEN", ""),
		},
	}

	if cfg.Chatwoot.BaseURL == "" || cfg.Chatwoot.AccountID == "" || cfg.Chatwoot.APIToken == "" {
		return Config{}, fmt.Errorf("CHATWOOT_BASE_URL, CHATWOOT_ACCOUNT_ID, and CHATWOOT_API_TOKEN are required")
	}
	if cfg.Chatwoot.InboxID == "" {
		return Config{}, fmt.Errorf("CHATWOOT_INBOX_ID is required")
	}
	if cfg.Zendesk.Subdomain == "" || cfg.Zendesk.Email == "" || cfg.Zendesk.APIToken == "" {
		return Config{}, fmt.Errorf("ZENDESK_SUBDOMAIN, ZENDESK_EMAIL, and ZENDESK_API_TOKEN are required")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
