package discount

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository defines the interface for discount persistence.
// Recognised filter keys: status (StatusFilter), discount_type (Type), now (time.Time).
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Discount, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Discount, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// FindAvailable returns active discounts whose validity window contains now
	FindAvailable(ctx context.Context, now time.Time) ([]Discount, error)
	// ExistsByName reports whether another discount already uses name (case-insensitive)
	ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, d *Discount) error
	Delete(ctx context.Context, id uuid.UUID) error
	// IncrementUsage atomically adds one to the usage counter
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}

// Redemption records that a user's paid order used a discount
type Redemption struct {
	ID         uuid.UUID
	DiscountID uuid.UUID
	UserID     uuid.UUID
	OrderID    uuid.UUID
	Amount     decimal.Decimal
	RedeemedAt time.Time
}

// RedemptionRepository persists redemptions
type RedemptionRepository interface {
	Save(ctx context.Context, r *Redemption) error
	CountByUser(ctx context.Context, discountID, userID uuid.UUID) (int, error)
	// CountByUserForDiscounts returns per-discount usage counts of one user
	CountByUserForDiscounts(ctx context.Context, userID uuid.UUID, discountIDs []uuid.UUID) (map[uuid.UUID]int, error)
}
