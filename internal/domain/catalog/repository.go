package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence.
// Recognised filter keys: category_id, subcategory_id, is_active, in_stock.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Suggest returns active product names matching the prefix of query
	Suggest(ctx context.Context, query string, limit int) ([]Product, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository defines the interface for category and subcategory persistence
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindAll(ctx context.Context, activeOnly bool) ([]Category, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindSubcategoryByID(ctx context.Context, id uuid.UUID) (*Subcategory, error)
	// FindSubcategories lists subcategories, optionally restricted to one category
	FindSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]Subcategory, error)
	SaveSubcategory(ctx context.Context, sub *Subcategory) error
}

// RatingRepository defines the interface for rating persistence
type RatingRepository interface {
	FindByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*Rating, error)
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]Rating, int64, error)
	Save(ctx context.Context, rating *Rating) error
	// Summary returns the average score and the number of ratings of a product
	Summary(ctx context.Context, productID uuid.UUID) (decimal.Decimal, int, error)
}
