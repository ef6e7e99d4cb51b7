package payment

import (
	"fmt"

	"go.uber.org/zap"

	domain "github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// NewGateway builds the gateway selected by configuration
func NewGateway(cfg config.PaymentConfig, logger *zap.Logger) (domain.Gateway, error) {
	gatewayType, err := domain.ParseGatewayType(cfg.Gateway)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, cfg.Gateway)
	}

	switch gatewayType {
	case domain.GatewayRazorpay:
		return NewRazorpayAdapter(&RazorpayConfig{
			KeyID:         cfg.KeyID,
			KeySecret:     cfg.KeySecret,
			WebhookSecret: cfg.WebhookSecret,
			BaseURL:       cfg.BaseURL,
			Currency:      cfg.Currency,
			Timeout:       cfg.Timeout,
		})
	case domain.GatewayStripe:
		return NewStripeAdapter(&StripeConfig{
			PublishableKey: cfg.KeyID,
			SecretKey:      cfg.KeySecret,
			WebhookSecret:  cfg.WebhookSecret,
			BaseURL:        cfg.BaseURL,
			Currency:       cfg.Currency,
			Timeout:        cfg.Timeout,
		}, logger)
	default:
		return NewMockGateway(cfg.KeySecret, cfg.Currency), nil
	}
}
