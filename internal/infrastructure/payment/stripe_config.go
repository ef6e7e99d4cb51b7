package payment

import (
	"errors"
	"strings"
	"time"
)

const (
	stripeDefaultCurrency = "inr"
	stripeDefaultTimeout  = 30 * time.Second
)

// StripeConfig contains the credentials of a Stripe account
type StripeConfig struct {
	// PublishableKey is handed to the browser (pk_test_xxx or pk_live_xxx)
	PublishableKey string
	// SecretKey authenticates API calls (sk_test_xxx or sk_live_xxx)
	SecretKey string
	// WebhookSecret verifies the Stripe-Signature header (whsec_xxx)
	WebhookSecret string
	// BaseURL overrides the API host (tests, proxies)
	BaseURL  string
	Currency string
	Timeout  time.Duration
}

// Errors for configuration validation
var (
	ErrStripeMissingPublishableKey = errors.New("stripe: missing publishable key")
	ErrStripeMissingSecretKey      = errors.New("stripe: missing secret key")
	ErrStripeMissingWebhookSecret  = errors.New("stripe: missing webhook secret")
	ErrStripeKeyModeMismatch       = errors.New("stripe: publishable and secret keys are from different modes")
)

// Validate validates the configuration
func (c *StripeConfig) Validate() error {
	if c.PublishableKey == "" {
		return ErrStripeMissingPublishableKey
	}
	if c.SecretKey == "" {
		return ErrStripeMissingSecretKey
	}
	if c.WebhookSecret == "" {
		return ErrStripeMissingWebhookSecret
	}
	if strings.HasPrefix(c.SecretKey, "sk_test") != strings.HasPrefix(c.PublishableKey, "pk_test") {
		return ErrStripeKeyModeMismatch
	}
	return nil
}

func (c *StripeConfig) currency() string {
	if c.Currency == "" {
		return stripeDefaultCurrency
	}
	return strings.ToLower(c.Currency)
}

func (c *StripeConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return stripeDefaultTimeout
	}
	return c.Timeout
}
