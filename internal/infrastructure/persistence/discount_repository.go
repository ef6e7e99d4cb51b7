package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDiscountRepository implements discount.Repository using GORM
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewGormDiscountRepository creates a new GormDiscountRepository
func NewGormDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// FindByID finds a discount by its ID
func (r *GormDiscountRepository) FindByID(ctx context.Context, id uuid.UUID) (*discount.Discount, error) {
	var model models.DiscountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, discount.ErrNotFound)
	}
	return model.ToDomain(), nil
}

// FindAll finds a page of discounts matching the filter
func (r *GormDiscountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]discount.Discount, error) {
	var rows []models.DiscountModel
	query := paginate(r.applyFilter(r.db.WithContext(ctx).Model(&models.DiscountModel{}), filter),
		filter, DiscountSortFields, "created_at")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDiscounts(rows), nil
}

// Count counts discounts matching the filter
func (r *GormDiscountRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.DiscountModel{}), filter).Count(&count).Error
	return count, err
}

// FindAvailable returns active discounts whose validity window contains now
func (r *GormDiscountRepository) FindAvailable(ctx context.Context, now time.Time) ([]discount.Discount, error) {
	var rows []models.DiscountModel
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND valid_from <= ? AND valid_until >= ?", true, now, now).
		Order("valid_until, name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDiscounts(rows), nil
}

// ExistsByName reports whether another discount already uses name, ignoring case
func (r *GormDiscountRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.DiscountModel{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a discount with an optimistic version check.
// The usage counter is owned by IncrementUsage and never overwritten here.
func (r *GormDiscountRepository) Save(ctx context.Context, d *discount.Discount) error {
	model := &models.DiscountModel{}
	model.FromDomain(d)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveVersioned(tx, model, model.ID, model.Version, "usage_count")
	})
}

// Delete deletes a discount
func (r *GormDiscountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DiscountModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return discount.ErrNotFound
	}
	return nil
}

// IncrementUsage atomically adds one to the usage counter
func (r *GormDiscountRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.DiscountModel{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return discount.ErrNotFound
	}
	return nil
}

func (r *GormDiscountRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if t, ok := filterString(filter, "discount_type"); ok {
		query = query.Where("discount_type = ?", t)
	}

	now := time.Now()
	if t, ok := filter.Filters["now"].(time.Time); ok {
		now = t
	}
	status, _ := filter.Filters["status"].(discount.StatusFilter)
	switch status {
	case discount.StatusActive:
		query = query.Where("is_active = ? AND valid_until >= ?", true, now)
	case discount.StatusInactive:
		query = query.Where("is_active = ?", false)
	case discount.StatusExpired:
		query = query.Where("valid_until < ?", now)
	}
	return query
}

func toDiscounts(rows []models.DiscountModel) []discount.Discount {
	out := make([]discount.Discount, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ discount.Repository = (*GormDiscountRepository)(nil)

// GormRedemptionRepository implements discount.RedemptionRepository using GORM
type GormRedemptionRepository struct {
	db *gorm.DB
}

// NewGormRedemptionRepository creates a new GormRedemptionRepository
func NewGormRedemptionRepository(db *gorm.DB) *GormRedemptionRepository {
	return &GormRedemptionRepository{db: db}
}

// Save stores a redemption. An order redeems at most once.
func (r *GormRedemptionRepository) Save(ctx context.Context, red *discount.Redemption) error {
	model := &models.RedemptionModel{}
	model.FromDomain(red)
	return r.db.WithContext(ctx).Create(model).Error
}

// CountByUser counts a user's redemptions of one discount
func (r *GormRedemptionRepository) CountByUser(ctx context.Context, discountID, userID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RedemptionModel{}).
		Where("discount_id = ? AND user_id = ?", discountID, userID).
		Count(&count).Error
	return int(count), err
}

// CountByUserForDiscounts returns a user's redemption count for each of discountIDs
func (r *GormRedemptionRepository) CountByUserForDiscounts(ctx context.Context, userID uuid.UUID, discountIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(discountIDs))
	if len(discountIDs) == 0 || userID == uuid.Nil {
		return counts, nil
	}
	var rows []struct {
		DiscountID uuid.UUID
		Uses       int
	}
	err := r.db.WithContext(ctx).Model(&models.RedemptionModel{}).
		Select("discount_id, COUNT(*) AS uses").
		Where("user_id = ? AND discount_id IN ?", userID, discountIDs).
		Group("discount_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.DiscountID] = row.Uses
	}
	return counts, nil
}

var _ discount.RedemptionRepository = (*GormRedemptionRepository)(nil)
