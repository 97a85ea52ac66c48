// Package config collects every environment-provided setting the service
// consumes into one struct built at process start. Sink credentials are
// optional: a sink whose configuration is incomplete is skipped at dispatch
// time rather than rejected at startup.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// SMTPConfig carries the mail-transport settings for the email sink.
type SMTPConfig struct {
	Host   string
	Port   int
	Secure bool
	User   string
	Pass   string
	From   string
	To     string
}

// Complete reports whether every value required to attempt an SMTP
// delivery is present.
func (c SMTPConfig) Complete() bool {
	return c.Host != "" && c.Port > 0 && c.User != "" && c.Pass != "" && c.To != ""
}

// ResendConfig carries the Resend API settings for the email sink.
// When an API key is present the email sink prefers this transport
// over raw SMTP.
type ResendConfig struct {
	APIKey string
	From   string
	To     string
}

// Complete reports whether the Resend transport can be used.
func (c ResendConfig) Complete() bool {
	return c.APIKey != "" && c.From != "" && c.To != ""
}

// NotionConfig carries the workspace settings for the record sink.
type NotionConfig struct {
	Token      string
	DatabaseID string
}

// Complete reports whether the record sink can attempt a delivery.
func (c NotionConfig) Complete() bool {
	return c.Token != "" && c.DatabaseID != ""
}

// WebhookConfig carries the target for the webhook sink.
type WebhookConfig struct {
	URL string
}

// Complete reports whether the webhook sink can attempt a delivery.
func (c WebhookConfig) Complete() bool {
	return c.URL != ""
}

// ServerConfig carries the HTTP server settings.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// Config is the full environment-derived configuration, built once in main
// and passed into each adapter's constructor.
type Config struct {
	Stage   string
	Server  ServerConfig
	SMTP    SMTPConfig
	Resend  ResendConfig
	Notion  NotionConfig
	Webhook WebhookConfig
}

// Load reads the configuration from the environment. Missing sink
// credentials are not an error; an invalid SMTP_PORT is.
func Load() (*Config, error) {
	cfg := &Config{
		Stage: getEnv("STAGE", "local"),
		Server: ServerConfig{
			Port:           getEnv("API_PORT", "8080"),
			AllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Resend: ResendConfig{
			APIKey: os.Getenv("RESEND_API_KEY"),
			To:     os.Getenv("CONTACT_TO"),
		},
		Notion: NotionConfig{
			Token:      os.Getenv("NOTION_TOKEN"),
			DatabaseID: os.Getenv("NOTION_DATABASE_ID"),
		},
		Webhook: WebhookConfig{
			URL: os.Getenv("WEBHOOK_URL"),
		},
	}

	smtp := SMTPConfig{
		Host:   os.Getenv("SMTP_HOST"),
		Secure: os.Getenv("SMTP_SECURE") == "true",
		User:   os.Getenv("SMTP_USER"),
		Pass:   os.Getenv("SMTP_PASS"),
		To:     os.Getenv("CONTACT_TO"),
	}
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid SMTP_PORT %q", portStr)
		}
		smtp.Port = port
	}

	// The sender falls back to the SMTP user, matching how the site was
	// originally deployed with a single mailbox.
	smtp.From = os.Getenv("CONTACT_FROM")
	if smtp.From == "" {
		smtp.From = smtp.User
	}
	cfg.SMTP = smtp

	cfg.Resend.From = os.Getenv("CONTACT_FROM")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
