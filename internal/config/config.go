package config

import (
	"fmt"
	"os"
	"strings"
)

// Config captures runtime configuration values used by the backend service.
type Config struct {
	// ServerAddress is the host:port pair the HTTP server listens on. Defaults to ":5000".
	ServerAddress string

	// DatabaseURL is the Postgres DSN used by database/sql.
	DatabaseURL string

	// StripeSecretKey authenticates checkout and portal calls. Billing endpoints
	// fail on first use when it is empty.
	StripeSecretKey string

	// StripePublishableKey is handed to the browser by /api/stripe/config.
	StripePublishableKey string

	// OpenAIAPIKey authenticates the completion API. AI endpoints fail on first
	// use when it is empty.
	OpenAIAPIKey string

	// OpenAIModel is the chat model used for every prompt template.
	OpenAIModel string

	// AnalyticsMeasurementID is the Google Analytics measurement id exposed to the frontend.
	AnalyticsMeasurementID string

	// OperatorToken is the bearer token required by the contact list and billing
	// lookup routes. Those routes reject every request when it is empty.
	OperatorToken string
}

const (
	defaultServerAddress = ":5000"
	defaultOpenAIModel   = "gpt-4o-mini"

	envServerAddress        = "BACKEND_ADDR"
	envDatabaseURL          = "DATABASE_URL"
	envStripeSecretKey      = "STRIPE_SECRET_KEY"
	envStripePublishableKey = "STRIPE_PUBLISHABLE_KEY"
	envOpenAIAPIKey         = "OPENAI_API_KEY"
	envOpenAIModel          = "OPENAI_MODEL"
	envMeasurementID        = "GA_MEASUREMENT_ID"
	envViteMeasurementID    = "VITE_GA_MEASUREMENT_ID"
	envOperatorToken        = "OPERATOR_API_TOKEN"
)

// Load reads configuration from environment variables, applies defaults, and returns
// a Config structure. Only DATABASE_URL is required; missing provider keys degrade
// the matching features instead of preventing startup.
func Load() (Config, error) {
	cfg := fromEnv()
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("%s is required", envDatabaseURL)
	}
	return cfg, nil
}

// LoadStripe reads configuration for tools that only talk to Stripe. It
// requires STRIPE_SECRET_KEY and ignores DATABASE_URL.
func LoadStripe() (Config, error) {
	cfg := fromEnv()
	if cfg.StripeSecretKey == "" {
		return Config{}, fmt.Errorf("%s is required", envStripeSecretKey)
	}
	return cfg, nil
}

func fromEnv() Config {
	return Config{
		ServerAddress:          firstNonEmpty(env(envServerAddress), defaultServerAddress),
		DatabaseURL:            env(envDatabaseURL),
		StripeSecretKey:        env(envStripeSecretKey),
		StripePublishableKey:   env(envStripePublishableKey),
		OpenAIAPIKey:           env(envOpenAIAPIKey),
		OpenAIModel:            firstNonEmpty(env(envOpenAIModel), defaultOpenAIModel),
		AnalyticsMeasurementID: firstNonEmpty(env(envMeasurementID), env(envViteMeasurementID)),
		OperatorToken:          env(envOperatorToken),
	}
}

// Warnings describes the features that are disabled by the current configuration.
func (c Config) Warnings() []string {
	var warnings []string
	if c.StripeSecretKey == "" {
		warnings = append(warnings, fmt.Sprintf("%s not set: checkout and portal requests will fail", envStripeSecretKey))
	}
	if c.StripePublishableKey == "" {
		warnings = append(warnings, fmt.Sprintf("%s not set: /api/stripe/config will fail", envStripePublishableKey))
	}
	if c.OpenAIAPIKey == "" {
		warnings = append(warnings, fmt.Sprintf("%s not set: AI endpoints will fail", envOpenAIAPIKey))
	}
	if c.AnalyticsMeasurementID == "" {
		warnings = append(warnings, fmt.Sprintf("Missing required Google Analytics key: %s (analytics disabled)", envMeasurementID))
	}
	if c.OperatorToken == "" {
		warnings = append(warnings, fmt.Sprintf("%s not set: contact and billing lookups are disabled", envOperatorToken))
	}
	return warnings
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
