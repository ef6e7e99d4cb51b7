package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paidStatuses are the statuses an order reaches only after a successful payment
var paidStatuses = []order.Status{
	order.StatusPaid, order.StatusProcessing, order.StatusShipped, order.StatusDelivered,
}

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, order.ErrNotFound)
	}
	return model.ToDomain(), nil
}

// FindByGatewayOrderID finds the order a payment gateway order was created for
func (r *GormOrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error) {
	var model models.OrderModel
	err := r.db.WithContext(ctx).Preload("Items").
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&model).Error
	if err != nil {
		return nil, mapNotFound(err, order.ErrNotFound)
	}
	return model.ToDomain(), nil
}

// FindAll finds a page of orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var rows []models.OrderModel
	query := paginate(r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter),
		filter, OrderSortFields, "created_at")
	if err := query.Preload("Items").Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]order.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter).Count(&count).Error
	return count, err
}

// CountPaidByUser counts the orders of a user that completed payment
func (r *GormOrderRepository) CountPaidByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("user_id = ? AND status IN ?", userID, paidStatuses).
		Count(&count).Error
	return int(count), err
}

// Save creates or updates an order. Items are written once, when the order is created.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model := &models.OrderModel{}
	model.FromDomain(o)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(tx, model, model.ID, model.Version); err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Items).Error
	})
}

// Delete deletes an order and its items
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.OrderItemModel{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.OrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return order.ErrNotFound
		}
		return nil
	})
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where(`(LOWER(order_number) LIKE ? ESCAPE '\' OR LOWER(coupon_code) LIKE ? ESCAPE '\')`,
			containsPattern(filter.Search), containsPattern(filter.Search))
	}
	if status, ok := filterString(filter, "status"); ok {
		query = query.Where("status = ?", status)
	}
	if userID, ok := filterUUID(filter, "user_id"); ok {
		query = query.Where("user_id = ?", userID)
	}
	return query
}

var _ order.Repository = (*GormOrderRepository)(nil)
