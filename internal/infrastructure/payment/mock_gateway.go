package payment

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	domain "github.com/storefront/backend/internal/domain/payment"
)

const (
	mockKeyID  = "mock_key"
	mockSecret = "mock_secret"
)

// MockGateway is a local gateway for development and tests. Orders are
// numbered sequentially and signatures use a fixed secret, so a client can
// complete a checkout with SignCheckout.
type MockGateway struct {
	secret   string
	currency string
	seq      atomic.Int64

	mu     sync.Mutex
	orders map[string]domain.GatewayOrder
	// FailCreate makes CreateOrder return ErrGatewayUnavailable
	FailCreate bool
}

// NewMockGateway creates a mock gateway. An empty secret uses the built-in one.
func NewMockGateway(secret, currency string) *MockGateway {
	if secret == "" {
		secret = mockSecret
	}
	if currency == "" {
		currency = razorpayDefaultCurrency
	}
	return &MockGateway{secret: secret, currency: currency, orders: make(map[string]domain.GatewayOrder)}
}

func (g *MockGateway) Type() domain.GatewayType { return domain.GatewayMock }

func (g *MockGateway) KeyID() string { return mockKeyID }

func (g *MockGateway) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.GatewayOrder, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	if g.FailCreate {
		return nil, fmt.Errorf("%w: mock failure", domain.ErrGatewayUnavailable)
	}
	currency := req.Currency
	if currency == "" {
		currency = g.currency
	}
	order := domain.GatewayOrder{
		ID:       fmt.Sprintf("order_mock_%06d", g.seq.Add(1)),
		Amount:   req.Amount,
		Currency: currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}
	g.mu.Lock()
	g.orders[order.ID] = order
	g.mu.Unlock()
	return &order, nil
}

func (g *MockGateway) VerifyPayment(_ context.Context, gatewayOrderID, paymentID, signature string) error {
	return verifySignature(g.secret, CheckoutMessage(gatewayOrderID, paymentID), signature)
}

func (g *MockGateway) ParseWebhook(body []byte, signature string) (*domain.WebhookEvent, error) {
	if err := verifySignature(g.secret, string(body), signature); err != nil {
		return nil, err
	}
	return decodeWebhook(body)
}

// SignCheckout returns the signature a successful checkout would carry
func (g *MockGateway) SignCheckout(gatewayOrderID, paymentID string) string {
	return Sign(g.secret, CheckoutMessage(gatewayOrderID, paymentID))
}

// SignWebhook signs a webhook body
func (g *MockGateway) SignWebhook(body []byte) string {
	return Sign(g.secret, string(body))
}

// Order returns an order created by this gateway
func (g *MockGateway) Order(id string) (domain.GatewayOrder, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.orders[id]
	return o, ok
}

var _ domain.Gateway = (*MockGateway)(nil)
