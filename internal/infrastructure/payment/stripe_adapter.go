package payment

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"

	domain "github.com/storefront/backend/internal/domain/payment"
)

// Stripe events mapped onto the storefront webhook events
const (
	stripeEventSucceeded = "payment_intent.succeeded"
	stripeEventFailed    = "payment_intent.payment_failed"
)

// StripeAdapter implements domain.Gateway with Stripe PaymentIntents. The
// gateway order is the PaymentIntent; the payment is its latest charge. The
// browser confirms with the intent's client secret and hands that secret back
// as the checkout signature.
type StripeAdapter struct {
	config *StripeConfig
	client *client.API
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	backendConfig := &stripe.BackendConfig{
		HTTPClient:    &http.Client{Timeout: config.timeout()},
		LeveledLogger: logger.Named("stripe").Sugar(),
	}
	if config.BaseURL != "" {
		backendConfig.URL = stripe.String(strings.TrimRight(config.BaseURL, "/"))
	}
	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
	}

	return &StripeAdapter{
		config: config,
		client: client.New(config.SecretKey, backends),
		logger: logger,
	}, nil
}

// Type returns the gateway type
func (a *StripeAdapter) Type() domain.GatewayType {
	return domain.GatewayStripe
}

// KeyID returns the publishable key
func (a *StripeAdapter) KeyID() string {
	return a.config.PublishableKey
}

// CreateOrder creates a PaymentIntent for the order total. The receipt doubles
// as the idempotency key, so a retried initiation reuses the same intent.
func (a *StripeAdapter) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.GatewayOrder, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = a.config.currency()
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.Amount),
		Currency:    stripe.String(currency),
		Description: stripe.String(req.Receipt),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey("order-" + req.Receipt)
	params.Metadata = map[string]string{"receipt": req.Receipt}
	maps.Copy(params.Metadata, req.Notes)

	intent, err := a.client.PaymentIntents.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe payment intent",
			zap.String("receipt", req.Receipt),
			zap.Error(err))
		return nil, stripeRequestError(err)
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("%w: missing payment intent id", domain.ErrInvalidResponse)
	}

	return &domain.GatewayOrder{
		ID:           intent.ID,
		Amount:       intent.Amount,
		Currency:     strings.ToUpper(string(intent.Currency)),
		Receipt:      req.Receipt,
		Status:       string(intent.Status),
		ClientSecret: intent.ClientSecret,
	}, nil
}

// VerifyPayment retrieves the intent and accepts the payment when it succeeded
// with paymentID as its latest charge and signature equals its client secret
func (a *StripeAdapter) VerifyPayment(ctx context.Context, gatewayOrderID, paymentID, signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return domain.ErrMissingSignature
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := a.client.PaymentIntents.Get(gatewayOrderID, params)
	if err != nil {
		a.logger.Warn("Failed to retrieve Stripe payment intent",
			zap.String("payment_intent_id", gatewayOrderID),
			zap.Error(err))
		return stripeRequestError(err)
	}

	if !hmac.Equal([]byte(intent.ClientSecret), []byte(signature)) {
		return domain.ErrInvalidSignature
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("%w: payment intent is %s", domain.ErrInvalidSignature, intent.Status)
	}
	if stripePaymentID(intent) != paymentID {
		return domain.ErrInvalidSignature
	}
	return nil
}

// ParseWebhook verifies the Stripe-Signature header and maps PaymentIntent
// events. Other event types are returned by name only.
func (a *StripeAdapter) ParseWebhook(body []byte, signature string) (*domain.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(body, signature, a.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrNotSigned):
			return nil, domain.ErrMissingSignature
		case errors.Is(err, webhook.ErrInvalidHeader), errors.Is(err, webhook.ErrNoValidSignature), errors.Is(err, webhook.ErrTooOld):
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}

	var name string
	switch event.Type {
	case stripeEventSucceeded:
		name = domain.WebhookPaymentCaptured
	case stripeEventFailed:
		name = domain.WebhookPaymentFailed
	default:
		return &domain.WebhookEvent{Event: string(event.Type)}, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}
	out := &domain.WebhookEvent{
		Event:          name,
		GatewayOrderID: intent.ID,
		PaymentID:      stripePaymentID(&intent),
		Amount:         intent.AmountReceived,
	}
	if out.Amount == 0 {
		out.Amount = intent.Amount
	}
	if intent.LastPaymentError != nil {
		out.ErrorReason = intent.LastPaymentError.Msg
	}
	return out, nil
}

// stripePaymentID is the id a payment of intent is captured under
func stripePaymentID(intent *stripe.PaymentIntent) string {
	if intent.LatestCharge != nil && intent.LatestCharge.ID != "" {
		return intent.LatestCharge.ID
	}
	return intent.ID
}

func stripeRequestError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError || stripeErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: stripe %d: %s", domain.ErrGatewayUnavailable, stripeErr.HTTPStatusCode, stripeErr.Msg)
		}
		return fmt.Errorf("%w: stripe %d: %s", domain.ErrGatewayRequest, stripeErr.HTTPStatusCode, stripeErr.Msg)
	}
	return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
}

var _ domain.Gateway = (*StripeAdapter)(nil)
