package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRatingRepository implements catalog.RatingRepository using GORM
type GormRatingRepository struct {
	db *gorm.DB
}

// NewGormRatingRepository creates a new GormRatingRepository
func NewGormRatingRepository(db *gorm.DB) *GormRatingRepository {
	return &GormRatingRepository{db: db}
}

// FindByProductAndUser returns the user's rating of a product
func (r *GormRatingRepository) FindByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*catalog.Rating, error) {
	var model models.RatingModel
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND user_id = ?", productID, userID).
		First(&model).Error
	if err != nil {
		return nil, mapNotFound(err, shared.ErrNotFound)
	}
	return model.ToDomain(), nil
}

// FindByProduct returns a page of a product's ratings and their total count
func (r *GormRatingRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]catalog.Rating, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.RatingModel{}).Where("product_id = ?", productID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.RatingModel
	if err := paginate(base, filter, RatingSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	ratings := make([]catalog.Rating, len(rows))
	for i := range rows {
		ratings[i] = *rows[i].ToDomain()
	}
	return ratings, total, nil
}

// Save upserts a rating on (product_id, user_id)
func (r *GormRatingRepository) Save(ctx context.Context, rating *catalog.Rating) error {
	model := &models.RatingModel{}
	model.FromDomain(rating)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "review", "updated_at"}),
	}).Create(model).Error
}

// Summary returns the average score and the number of ratings of a product
func (r *GormRatingRepository) Summary(ctx context.Context, productID uuid.UUID) (decimal.Decimal, int, error) {
	var row struct {
		Average decimal.NullDecimal
		Count   int
	}
	err := r.db.WithContext(ctx).Model(&models.RatingModel{}).
		Select("AVG(score) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	if !row.Average.Valid {
		return decimal.Zero, 0, nil
	}
	return row.Average.Decimal.Round(1), row.Count, nil
}

var _ catalog.RatingRepository = (*GormRatingRepository)(nil)
