package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultBaseURL is the public Pub/Sub REST endpoint
const DefaultBaseURL = "https://pubsub.googleapis.com"

// Config holds all application configuration
type Config struct {
	ProjectID        string
	TopicIDs         []string
	SubscriptionIDs  []string
	BaseURL          string
	EmulatorHost     string
	AccessToken      string
	CredentialsFile  string
	Timeout          time.Duration
	MaxMessages      int
	MessageToPublish string
	EmulatorPort     string
	LogLevel         string
}

type environment struct {
	ProjectID        string        `env:"PUBSUB_PROJECT"`
	Topics           string        `env:"PUBSUB_TOPIC"`
	Subscriptions    string        `env:"PUBSUB_SUBSCRIPTION"`
	BaseURL          string        `env:"PUBSUB_BASE_URL" envDefault:"https://pubsub.googleapis.com"`
	EmulatorHost     string        `env:"PUBSUB_EMULATOR_HOST"`
	AccessToken      string        `env:"PUBSUB_ACCESS_TOKEN"`
	CredentialsFile  string        `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	Timeout          time.Duration `env:"PUBSUB_TIMEOUT" envDefault:"10s"`
	MaxMessages      int           `env:"PUBSUB_MAX_MESSAGES" envDefault:"10"`
	MessageToPublish string        `env:"PUBSUB_MESSAGE" envDefault:"This is a test message"`
	EmulatorPort     string        `env:"PUBSUB_PORT" envDefault:"8085"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadEnvFiles loads the files that exist into the process environment.
// Variables already set are not overridden.
func LoadEnvFiles(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// LoadFromEnv loads configuration from .env files and environment variables
func LoadFromEnv() (*Config, error) {
	if _, err := LoadEnvFiles(".env", ".env.local"); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}

	e, err := env.ParseAs[environment]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg := &Config{
		ProjectID:        e.ProjectID,
		TopicIDs:         parseCommaSeparated(e.Topics),
		SubscriptionIDs:  parseCommaSeparated(e.Subscriptions),
		BaseURL:          strings.TrimRight(e.BaseURL, "/"),
		EmulatorHost:     e.EmulatorHost,
		AccessToken:      e.AccessToken,
		CredentialsFile:  e.CredentialsFile,
		Timeout:          e.Timeout,
		MaxMessages:      e.MaxMessages,
		MessageToPublish: e.MessageToPublish,
		EmulatorPort:     e.EmulatorPort,
		LogLevel:         e.LogLevel,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("required environment variable PUBSUB_PROJECT is not set")
	}
	if len(c.TopicIDs) > 0 && len(c.SubscriptionIDs) > 0 && len(c.TopicIDs) != len(c.SubscriptionIDs) {
		return fmt.Errorf("number of topics (%d) and subscriptions (%d) must match", len(c.TopicIDs), len(c.SubscriptionIDs))
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxMessages <= 0 {
		return fmt.Errorf("max messages must be positive, got %d", c.MaxMessages)
	}
	return nil
}

// IsEmulator returns true when requests go to a local emulator
func (c *Config) IsEmulator() bool {
	return c.EmulatorHost != ""
}

// Endpoint returns the base URL requests are sent to
func (c *Config) Endpoint() string {
	if c.IsEmulator() {
		return "http://" + c.EmulatorHost
	}
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}

// Topic returns the first configured topic, or "" if none
func (c *Config) Topic() string {
	if len(c.TopicIDs) == 0 {
		return ""
	}
	return c.TopicIDs[0]
}

// Subscription returns the first configured subscription, or "" if none
func (c *Config) Subscription() string {
	if len(c.SubscriptionIDs) == 0 {
		return ""
	}
	return c.SubscriptionIDs[0]
}

// parseCommaSeparated splits a comma-separated string and trims whitespace
func parseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
