package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

var errProductNotFound = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")

// FindByID finds a product with its variants
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("color, size") }).
		First(&model, "id = ?", id).Error
	if err != nil {
		return nil, mapNotFound(err, errProductNotFound)
	}
	return model.ToDomain(), nil
}

// FindAll finds a page of products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var rows []models.ProductModel
	query := paginate(r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter),
		filter, ProductSortFields, "created_at")
	if err := query.Preload("Variants").Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter).Count(&count).Error
	return count, err
}

// Suggest returns active products whose name starts with query, then those containing it
func (r *GormProductRepository) Suggest(ctx context.Context, query string, limit int) ([]catalog.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(query)).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                `CASE WHEN LOWER(name) LIKE ? ESCAPE '\' THEN 0 ELSE 1 END, name`,
			Vars:               []any{prefixPattern(query)},
			WithoutParentheses: true,
		}}).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// Save creates or updates a product and replaces its variant set
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(tx, model, model.ID, model.Version); err != nil {
			return err
		}

		keep := make([]uuid.UUID, 0, len(model.Variants))
		for _, v := range model.Variants {
			keep = append(keep, v.ID)
		}
		stale := tx.Where("product_id = ?", model.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.VariantModel{}).Error; err != nil {
			return err
		}
		if len(model.Variants) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sku", "color", "size", "price", "stock", "images"}),
		}).Create(&model.Variants).Error
	})
}

// Delete deletes a product and its variants
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.VariantModel{}, "product_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ProductModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errProductNotFound
		}
		return nil
	})
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if id, ok := filterUUID(filter, "category_id"); ok {
		query = query.Where("category_id = ?", id)
	}
	if id, ok := filterUUID(filter, "subcategory_id"); ok {
		query = query.Where("subcategory_id = ?", id)
	}
	if active, ok := filterBool(filter, "is_active"); ok {
		query = query.Where("is_active = ?", active)
	}
	if inStock, ok := filterBool(filter, "in_stock"); ok {
		exists := "EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id AND v.stock > 0)"
		if inStock {
			query = query.Where(exists)
		} else {
			query = query.Where("NOT " + exists)
		}
	}
	return query
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
