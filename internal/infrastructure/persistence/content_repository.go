package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFAQRepository implements content.FAQRepository using GORM
type GormFAQRepository struct {
	db *gorm.DB
}

// NewGormFAQRepository creates a new GormFAQRepository
func NewGormFAQRepository(db *gorm.DB) *GormFAQRepository {
	return &GormFAQRepository{db: db}
}

// FindByID finds a FAQ by its ID
func (r *GormFAQRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.FAQ, error) {
	var model models.FAQModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, content.ErrFAQNotFound)
	}
	return model.ToDomain(), nil
}

// FindAll finds a page of FAQs matching the filter
func (r *GormFAQRepository) FindAll(ctx context.Context, filter shared.Filter) ([]content.FAQ, error) {
	var rows []models.FAQModel
	query := paginate(r.applyFilter(r.db.WithContext(ctx).Model(&models.FAQModel{}), filter),
		filter, FAQSortFields, "sort_order")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	faqs := make([]content.FAQ, len(rows))
	for i := range rows {
		faqs[i] = *rows[i].ToDomain()
	}
	return faqs, nil
}

// Count counts FAQs matching the filter
func (r *GormFAQRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.FAQModel{}), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a FAQ
func (r *GormFAQRepository) Save(ctx context.Context, f *content.FAQ) error {
	model := &models.FAQModel{}
	model.FromDomain(f)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a FAQ
func (r *GormFAQRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.FAQModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return content.ErrFAQNotFound
	}
	return nil
}

func (r *GormFAQRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where(`(LOWER(question) LIKE ? ESCAPE '\' OR LOWER(answer) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if category, ok := filterString(filter, "category"); ok {
		query = query.Where("category = ?", category)
	}
	if active, ok := filterBool(filter, "is_active"); ok {
		query = query.Where("is_active = ?", active)
	}
	return query
}

var _ content.FAQRepository = (*GormFAQRepository)(nil)

// GormInquiryRepository implements content.InquiryRepository using GORM
type GormInquiryRepository struct {
	db *gorm.DB
}

// NewGormInquiryRepository creates a new GormInquiryRepository
func NewGormInquiryRepository(db *gorm.DB) *GormInquiryRepository {
	return &GormInquiryRepository{db: db}
}

// FindByID finds a design inquiry by its ID
func (r *GormInquiryRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.DesignInquiry, error) {
	var model models.InquiryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err, content.ErrInquiryNotFound)
	}
	return model.ToDomain(), nil
}

// FindAll finds a page of design inquiries matching the filter
func (r *GormInquiryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]content.DesignInquiry, error) {
	var rows []models.InquiryModel
	query := paginate(r.applyFilter(r.db.WithContext(ctx).Model(&models.InquiryModel{}), filter),
		filter, InquirySortFields, "created_at")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	inquiries := make([]content.DesignInquiry, len(rows))
	for i := range rows {
		inquiries[i] = *rows[i].ToDomain()
	}
	return inquiries, nil
}

// Count counts design inquiries matching the filter
func (r *GormInquiryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.InquiryModel{}), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a design inquiry
func (r *GormInquiryRepository) Save(ctx context.Context, i *content.DesignInquiry) error {
	model := &models.InquiryModel{}
	model.FromDomain(i)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a design inquiry
func (r *GormInquiryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InquiryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return content.ErrInquiryNotFound
	}
	return nil
}

func (r *GormInquiryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern)
	}
	if status, ok := filterString(filter, "status"); ok {
		query = query.Where("status = ?", status)
	}
	if productType, ok := filterString(filter, "product_type"); ok {
		query = query.Where("product_type = ?", productType)
	}
	return query
}

var _ content.InquiryRepository = (*GormInquiryRepository)(nil)
