// Package config loads service configuration from environment variables.
// Credentials are validated once at startup; callers never re-check env vars
// at call time.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Email provider selectors.
const (
	EmailProviderSendGrid = "sendgrid"
	EmailProviderSES      = "ses"
	EmailProviderStub     = "stub"
)

// Config holds application configuration.
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	PricingVariant string
	Currency       string
	BookingPrefix  string
	SessionTTL     time.Duration

	StripeSecretKey string

	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),

		PricingVariant: getEnv("PRICING_VARIANT", "standard"),
		Currency:       strings.ToLower(getEnv("CURRENCY", "cad")),
		BookingPrefix:  getEnv("BOOKING_PREFIX", "FN"),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", 2*time.Hour),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", EmailProviderStub))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "FreshNest Cleaning"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "FreshNest Cleaning"),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}
}

// PaymentsConfigured reports whether a usable Stripe secret key is present.
// Placeholder values copied from setup docs count as absent.
func (c *Config) PaymentsConfigured() bool {
	return c.StripeSecretKey != "" && !isPlaceholder(c.StripeSecretKey)
}

// EmailConfigured reports whether the selected email provider has the
// credentials it needs.
func (c *Config) EmailConfigured() bool {
	switch c.EmailProvider {
	case EmailProviderSendGrid:
		return c.SendGridAPIKey != "" && !isPlaceholder(c.SendGridAPIKey) && c.SendGridFromEmail != ""
	case EmailProviderSES:
		return c.SESFromEmail != ""
	default:
		return false
	}
}

// Validate reports every configuration problem at once. The service still
// starts with an invalid config; the affected integrations surface their own
// configuration errors to callers.
func (c *Config) Validate() error {
	var errs []error

	if c.StripeSecretKey == "" {
		errs = append(errs, errors.New("STRIPE_SECRET_KEY is not set; payment intents will fail"))
	} else if isPlaceholder(c.StripeSecretKey) {
		errs = append(errs, errors.New("STRIPE_SECRET_KEY looks like a placeholder; payment intents will fail"))
	}

	switch c.EmailProvider {
	case EmailProviderSendGrid:
		if c.SendGridAPIKey == "" || isPlaceholder(c.SendGridAPIKey) {
			errs = append(errs, errors.New("SENDGRID_API_KEY is missing or a placeholder"))
		}
		if c.SendGridFromEmail == "" {
			errs = append(errs, errors.New("SENDGRID_FROM_EMAIL is required for the sendgrid provider"))
		}
	case EmailProviderSES:
		if c.SESFromEmail == "" {
			errs = append(errs, errors.New("SES_FROM_EMAIL is required for the ses provider"))
		}
	case EmailProviderStub:
	default:
		errs = append(errs, fmt.Errorf("unknown EMAIL_PROVIDER %q", c.EmailProvider))
	}

	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	return errors.Join(errs...)
}

// isPlaceholder catches keys copied straight out of setup instructions.
func isPlaceholder(v string) bool {
	lower := strings.ToLower(v)
	return strings.Contains(lower, "placeholder") ||
		strings.Contains(lower, "your_") ||
		strings.Contains(lower, "_here")
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
