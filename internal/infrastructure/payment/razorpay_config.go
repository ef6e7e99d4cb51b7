package payment

import (
	"errors"
	"strings"
	"time"
)

const (
	razorpayAPIBaseURL      = "https://api.razorpay.com"
	razorpayDefaultCurrency = "INR"
	razorpayDefaultTimeout  = 30 * time.Second
)

// RazorpayConfig contains the credentials of a Razorpay account
type RazorpayConfig struct {
	// KeyID is the public key handed to the hosted checkout
	KeyID string
	// KeySecret signs checkout results and authenticates API calls
	KeySecret string
	// WebhookSecret signs webhook bodies
	WebhookSecret string
	// BaseURL overrides the API host (tests, proxies)
	BaseURL  string
	Currency string
	Timeout  time.Duration
}

// Errors for configuration validation
var (
	ErrRazorpayMissingKeyID         = errors.New("razorpay: missing key id")
	ErrRazorpayMissingKeySecret     = errors.New("razorpay: missing key secret")
	ErrRazorpayMissingWebhookSecret = errors.New("razorpay: missing webhook secret")
)

// Validate validates the configuration
func (c *RazorpayConfig) Validate() error {
	if c.KeyID == "" {
		return ErrRazorpayMissingKeyID
	}
	if c.KeySecret == "" {
		return ErrRazorpayMissingKeySecret
	}
	if c.WebhookSecret == "" {
		return ErrRazorpayMissingWebhookSecret
	}
	return nil
}

func (c *RazorpayConfig) baseURL() string {
	if c.BaseURL == "" {
		return razorpayAPIBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

func (c *RazorpayConfig) currency() string {
	if c.Currency == "" {
		return razorpayDefaultCurrency
	}
	return c.Currency
}

func (c *RazorpayConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return razorpayDefaultTimeout
	}
	return c.Timeout
}
