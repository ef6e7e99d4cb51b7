package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Rating is a customer's score for a product. A user holds at most one rating per product.
type Rating struct {
	shared.BaseEntity
	ProductID uuid.UUID
	UserID    uuid.UUID
	Score     int
	Review    string
}

// NewRating validates and creates a rating
func NewRating(productID, userID uuid.UUID, score int, review string) (*Rating, error) {
	r := &Rating{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		UserID:     userID,
	}
	if err := r.Revise(score, review); err != nil {
		return nil, err
	}
	return r, nil
}

// Revise replaces the score and review
func (r *Rating) Revise(score int, review string) error {
	if score < 1 || score > 5 {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	review = strings.TrimSpace(review)
	if len(review) > 2000 {
		return shared.NewDomainError("INVALID_RATING", "Review cannot exceed 2000 characters")
	}
	r.Score = score
	r.Review = review
	r.UpdatedAt = time.Now()
	return nil
}
