package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

var (
	errCategoryNotFound    = shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
	errSubcategoryNotFound = shared.NewDomainError("SUBCATEGORY_NOT_FOUND", "Subcategory not found")
)

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, errCategoryNotFound)
	}
	return model.ToDomain(), nil
}

// FindAll lists categories in display order
func (r *GormCategoryRepository) FindAll(ctx context.Context, activeOnly bool) ([]catalog.Category, error) {
	query := r.db.WithContext(ctx).Order("sort_order, name")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.CategoryModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	categories := make([]catalog.Category, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	return categories, nil
}

// ExistsBySlug checks whether another category already uses slug
func (r *GormCategoryRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.CategoryModel{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	model := &models.CategoryModel{}
	model.FromDomain(category)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a category. Categories still referenced by products cannot be deleted.
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inUse int64
		if err := tx.Model(&models.ProductModel{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return shared.NewDomainError("CATEGORY_IN_USE", "Category still has products")
		}
		if err := tx.Delete(&models.SubcategoryModel{}, "category_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.CategoryModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errCategoryNotFound
		}
		return nil
	})
}

// FindSubcategoryByID finds a subcategory by its ID
func (r *GormCategoryRepository) FindSubcategoryByID(ctx context.Context, id uuid.UUID) (*catalog.Subcategory, error) {
	var model models.SubcategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, errSubcategoryNotFound)
	}
	return model.ToDomain(), nil
}

// FindSubcategories lists subcategories, optionally of one category
func (r *GormCategoryRepository) FindSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]catalog.Subcategory, error) {
	query := r.db.WithContext(ctx).Order("name")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	var rows []models.SubcategoryModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	subs := make([]catalog.Subcategory, len(rows))
	for i := range rows {
		subs[i] = *rows[i].ToDomain()
	}
	return subs, nil
}

// SaveSubcategory creates or updates a subcategory
func (r *GormCategoryRepository) SaveSubcategory(ctx context.Context, sub *catalog.Subcategory) error {
	model := &models.SubcategoryModel{}
	model.FromDomain(sub)
	return r.db.WithContext(ctx).Save(model).Error
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
