package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository defines the interface for order persistence.
// Recognised filter keys: status (Status), user_id (uuid.UUID).
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// CountPaidByUser counts orders of the user that reached PAID at some point
	CountPaidByUser(ctx context.Context, userID uuid.UUID) (int, error)
	Save(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PendingPayment is the marker kept for an owner between initiation and verification
type PendingPayment struct {
	OrderID        uuid.UUID       `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	GatewayOrderID string          `json:"gateway_order_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PendingPaymentStore keeps at most one pending payment per owner
type PendingPaymentStore interface {
	Put(ctx context.Context, ownerID string, p *PendingPayment) error
	// Get returns nil without error when the owner has no pending payment
	Get(ctx context.Context, ownerID string) (*PendingPayment, error)
	Delete(ctx context.Context, ownerID string) error
}
