package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const summaryRetries = 3

// RatingService records product ratings and keeps the product's rating summary current
type RatingService struct {
	ratings  catalog.RatingRepository
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewRatingService creates a new RatingService
func NewRatingService(ratings catalog.RatingRepository, products catalog.ProductRepository, logger *zap.Logger) *RatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingService{ratings: ratings, products: products, logger: logger}
}

// Rate creates or replaces the caller's rating of a product
func (s *RatingService) Rate(ctx context.Context, userID uuid.UUID, req RatingRequest) (*RatingSummaryResponse, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	}

	rating, err := s.ratings.FindByProductAndUser(ctx, req.ProductID, userID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		rating, err = catalog.NewRating(req.ProductID, userID, req.Score, req.Review)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := rating.Revise(req.Score, req.Review); err != nil {
			return nil, err
		}
	}

	if err := s.ratings.Save(ctx, rating); err != nil {
		return nil, fmt.Errorf("save rating: %w", err)
	}

	product, err = s.refreshSummary(ctx, product)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product rated",
		zap.String("product_id", req.ProductID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("score", rating.Score),
	)
	return &RatingSummaryResponse{
		Rating:        ToRatingResponse(rating),
		AverageRating: product.AverageRating,
		RatingCount:   product.RatingCount,
	}, nil
}

// refreshSummary recomputes the product's average, reloading it when a concurrent edit wins
func (s *RatingService) refreshSummary(ctx context.Context, product *catalog.Product) (*catalog.Product, error) {
	for attempt := 1; ; attempt++ {
		avg, count, err := s.ratings.Summary(ctx, product.ID)
		if err != nil {
			return nil, err
		}
		product.SetRatingSummary(avg, count)
		err = s.products.Save(ctx, product)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) || attempt == summaryRetries {
			return nil, fmt.Errorf("save rating summary: %w", err)
		}
		if product, err = s.products.FindByID(ctx, product.ID); err != nil {
			return nil, err
		}
	}
}

// ListByProduct returns a page of ratings for a product
func (s *RatingService) ListByProduct(ctx context.Context, productID uuid.UUID, f RatingListFilter) (*shared.Paginated[RatingResponse], error) {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.Limit,
		OrderBy:  f.SortBy,
		OrderDir: f.SortOrder,
	}.Normalize()

	ratings, total, err := s.ratings.FindByProduct(ctx, productID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]RatingResponse, len(ratings))
	for i := range ratings {
		items[i] = ToRatingResponse(&ratings[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}
