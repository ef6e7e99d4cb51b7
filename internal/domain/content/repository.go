package content

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// FAQRepository persists FAQs.
// Recognised filter keys: category (FAQCategory), is_active (bool).
type FAQRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FAQ, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]FAQ, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, f *FAQ) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InquiryRepository persists design inquiries.
// Recognised filter keys: status (InquiryStatus), product_type (string).
type InquiryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DesignInquiry, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]DesignInquiry, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, i *DesignInquiry) error
	Delete(ctx context.Context, id uuid.UUID) error
}
