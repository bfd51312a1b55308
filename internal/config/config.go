// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/plebguard/plebguard/internal/challenge"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port      string
	Env       string // "development", "staging", "production"
	LogLevel  string
	LogFormat string // "json" or "text"

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Tracing
	OTLPEndpoint string // OTLP gRPC endpoint (optional, tracing disabled if not set)

	// Challenge tiers
	Thresholds challenge.Thresholds

	// IP intelligence
	IPIntelAvailable bool

	// Social verification: provider → base credibility in [0.5, 1.0].
	// Empty disables the social verification factor.
	OAuthProviders map[string]float64
}

// Defaults
const (
	DefaultPort      = "8080"
	DefaultEnv       = "development"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Load reads configuration from environment variables.
// It loads .env file if present (for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", DefaultPort),
		Env:          getEnv("ENV", DefaultEnv),
		LogLevel:     getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:    getEnv("LOG_FORMAT", DefaultLogFormat),
		DatabaseURL:  os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Thresholds: challenge.Thresholds{
			AutoAccept:  getEnvFloat("AUTO_ACCEPT_THRESHOLD", challenge.DefaultThresholds.AutoAccept),
			CaptchaOnly: getEnvFloat("CAPTCHA_ONLY_THRESHOLD", challenge.DefaultThresholds.CaptchaOnly),
			AutoReject:  getEnvFloat("AUTO_REJECT_THRESHOLD", challenge.DefaultThresholds.AutoReject),
		},
		IPIntelAvailable: getEnvBool("IP_INTEL_AVAILABLE", false),
	}

	providers, err := parseProviders(os.Getenv("OAUTH_PROVIDERS"))
	if err != nil {
		return nil, err
	}
	cfg.OAuthProviders = providers

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is coherent. Threshold ordering is
// validated again by the challenge mapper at construction; failing here just
// surfaces the problem earlier.
func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	for provider, cred := range c.OAuthProviders {
		if cred < 0.5 || cred > 1.0 {
			return fmt.Errorf("OAUTH_PROVIDERS: credibility for %q must be in [0.5, 1.0], got %g", provider, cred)
		}
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ProviderNames returns the configured provider names sorted, for logging.
func (c *Config) ProviderNames() []string {
	names := make([]string, 0, len(c.OAuthProviders))
	for name := range c.OAuthProviders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseProviders parses "google:1.0,github:0.8,discord:0.6".
func parseProviders(raw string) (map[string]float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	out := make(map[string]float64)
	for _, entry := range strings.Split(raw, ",") {
		name, credStr, found := strings.Cut(strings.TrimSpace(entry), ":")
		if !found || name == "" {
			return nil, fmt.Errorf("OAUTH_PROVIDERS: malformed entry %q (want name:credibility)", entry)
		}
		cred, err := strconv.ParseFloat(credStr, 64)
		if err != nil {
			return nil, fmt.Errorf("OAUTH_PROVIDERS: invalid credibility in %q: %w", entry, err)
		}
		out[name] = cred
	}
	return out, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
