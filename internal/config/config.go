package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	DatabaseURL       string
	HTTPAddr          string
	MigrationsPath    string
	DiscordWebhookURL string
	DefaultLocale     string
	LogLevel          zerolog.Level
}

// Load reads the configuration from environment variables and validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional when the variables come from the environment
		// itself (Docker, CI, etc.).
	}

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HTTPAddr:          os.Getenv("HTTP_ADDR"),
		MigrationsPath:    os.Getenv("MIGRATIONS_PATH"),
		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		DefaultLocale:     os.Getenv("DEFAULT_LOCALE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate applies defaults and rejects values the service cannot run with.
func (c *Config) validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		// Useful local default when DATABASE_URL is not provided.
		c.DatabaseURL = "postgres://localhost:5432/vaops?sslmode=disable"
	}
	parsed, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("config: invalid DATABASE_URL (%q): %w", c.DatabaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: invalid DATABASE_URL (%q): missing scheme or host", c.DatabaseURL)
	}

	if strings.TrimSpace(c.HTTPAddr) == "" {
		c.HTTPAddr = ":8080"
	}
	if strings.TrimSpace(c.MigrationsPath) == "" {
		c.MigrationsPath = "migrations"
	}

	if c.DiscordWebhookURL != "" {
		parsed, err := url.Parse(c.DiscordWebhookURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: invalid DISCORD_WEBHOOK_URL (%q)", c.DiscordWebhookURL)
		}
	}

	if strings.TrimSpace(c.DefaultLocale) == "" {
		c.DefaultLocale = "en"
	}

	level := os.Getenv("LOG_LEVEL")
	if strings.TrimSpace(level) == "" {
		level = "info"
	}
	c.LogLevel, err = zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("config: invalid LOG_LEVEL (%q): %w", level, err)
	}

	return nil
}
