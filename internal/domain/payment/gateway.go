// Package payment defines the port to hosted-checkout payment gateways.
package payment

import (
	"context"
	"errors"
	"strings"
)

// ---------------------------------------------------------------------------
// Payment Gateway Errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidAmount      = errors.New("payment: invalid payment amount")
	ErrInvalidReceipt     = errors.New("payment: invalid receipt")
	ErrInvalidSignature   = errors.New("payment: signature mismatch")
	ErrMissingSignature   = errors.New("payment: signature missing")
	ErrGatewayUnavailable = errors.New("payment: gateway temporarily unavailable")
	ErrGatewayRequest     = errors.New("payment: gateway request failed")
	ErrInvalidResponse    = errors.New("payment: invalid gateway response")
	ErrUnknownGateway     = errors.New("payment: unknown gateway")
)

// GatewayType identifies a payment gateway implementation
type GatewayType string

const (
	GatewayRazorpay GatewayType = "RAZORPAY"
	GatewayStripe   GatewayType = "STRIPE"
	GatewayMock     GatewayType = "MOCK"
)

// ParseGatewayType parses a configured gateway name case-insensitively
func ParseGatewayType(s string) (GatewayType, error) {
	switch GatewayType(strings.ToUpper(strings.TrimSpace(s))) {
	case GatewayRazorpay:
		return GatewayRazorpay, nil
	case GatewayStripe:
		return GatewayStripe, nil
	case GatewayMock, "":
		return GatewayMock, nil
	}
	return "", ErrUnknownGateway
}

// CreateOrderRequest asks the gateway to open a hosted-checkout order
type CreateOrderRequest struct {
	// Amount in minor units (paise)
	Amount   int64
	Currency string
	// Receipt is our order number
	Receipt string
	Notes   map[string]string
}

// Validate validates the request
func (r *CreateOrderRequest) Validate() error {
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	if r.Receipt == "" {
		return ErrInvalidReceipt
	}
	return nil
}

// GatewayOrder is the gateway's view of a checkout order
type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
	// ClientSecret lets the browser confirm the payment, for gateways that use one
	ClientSecret string
}

// Webhook event names handled by the storefront
const (
	WebhookPaymentCaptured = "payment.captured"
	WebhookPaymentFailed   = "payment.failed"
)

// WebhookEvent is a verified gateway notification
type WebhookEvent struct {
	Event          string
	GatewayOrderID string
	PaymentID      string
	Amount         int64
	ErrorReason    string
}

// Gateway is implemented by every payment gateway adapter
type Gateway interface {
	Type() GatewayType
	// KeyID is the public key the client needs to open the hosted checkout
	KeyID() string
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error)
	// VerifyPayment proves the client's checkout result for the gateway order
	VerifyPayment(ctx context.Context, gatewayOrderID, paymentID, signature string) error
	// ParseWebhook verifies the body signature and decodes the event
	ParseWebhook(body []byte, signature string) (*WebhookEvent, error)
}
