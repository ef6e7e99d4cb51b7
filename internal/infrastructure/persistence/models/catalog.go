package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product aggregate
type ProductModel struct {
	AggregateModel
	Name          string          `gorm:"type:varchar(200);not null;index"`
	Slug          string          `gorm:"type:varchar(220);not null;index"`
	Description   string          `gorm:"type:text"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SubcategoryID *uuid.UUID      `gorm:"type:uuid;index"`
	BasePrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IsActive      bool            `gorm:"not null;index"`
	AverageRating decimal.Decimal `gorm:"type:decimal(3,1);not null;default:0"`
	RatingCount   int             `gorm:"not null;default:0"`
	Variants      []VariantModel  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
		Description:       m.Description,
		CategoryID:        m.CategoryID,
		SubcategoryID:     m.SubcategoryID,
		BasePrice:         m.BasePrice,
		IsActive:          m.IsActive,
		AverageRating:     m.AverageRating,
		RatingCount:       m.RatingCount,
		Variants:          make([]catalog.Variant, 0, len(m.Variants)),
	}
	for i := range m.Variants {
		p.Variants = append(p.Variants, m.Variants[i].ToDomain())
	}
	return p
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Slug = p.Slug
	m.Description = p.Description
	m.CategoryID = p.CategoryID
	m.SubcategoryID = p.SubcategoryID
	m.BasePrice = p.BasePrice
	m.IsActive = p.IsActive
	m.AverageRating = p.AverageRating
	m.RatingCount = p.RatingCount
	m.Variants = make([]VariantModel, len(p.Variants))
	for i, v := range p.Variants {
		m.Variants[i].FromDomain(v)
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// VariantModel is the persistence model for a product variant
type VariantModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU       string          `gorm:"type:varchar(64)"`
	Color     string          `gorm:"type:varchar(50)"`
	Size      string          `gorm:"type:varchar(20)"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock     int             `gorm:"not null;default:0"`
	Images    StringList      `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (VariantModel) TableName() string {
	return "product_variants"
}

// ToDomain converts the persistence model to a domain Variant
func (m *VariantModel) ToDomain() catalog.Variant {
	return catalog.Variant{
		ID:        m.ID,
		ProductID: m.ProductID,
		SKU:       m.SKU,
		Color:     m.Color,
		Size:      m.Size,
		Price:     m.Price,
		Stock:     m.Stock,
		Images:    append([]string(nil), m.Images...),
	}
}

// FromDomain populates the persistence model from a domain Variant
func (m *VariantModel) FromDomain(v catalog.Variant) {
	m.ID = v.ID
	m.ProductID = v.ProductID
	m.SKU = v.SKU
	m.Color = v.Color
	m.Size = v.Size
	m.Price = v.Price
	m.Stock = v.Stock
	m.Images = StringList(v.Images)
}

// CategoryModel is the persistence model for the Category aggregate
type CategoryModel struct {
	AggregateModel
	Name        string `gorm:"type:varchar(100);not null"`
	Slug        string `gorm:"type:varchar(120);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	SortOrder   int    `gorm:"not null;default:0"`
	IsActive    bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
		Description:       m.Description,
		SortOrder:         m.SortOrder,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Category
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Slug = c.Slug
	m.Description = c.Description
	m.SortOrder = c.SortOrder
	m.IsActive = c.IsActive
}

// SubcategoryModel is the persistence model for a Subcategory
type SubcategoryModel struct {
	BaseModel
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(100);not null"`
	Slug       string    `gorm:"type:varchar(120);not null"`
	IsActive   bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SubcategoryModel) TableName() string {
	return "subcategories"
}

// ToDomain converts the persistence model to a domain Subcategory
func (m *SubcategoryModel) ToDomain() *catalog.Subcategory {
	return &catalog.Subcategory{
		BaseEntity: m.BaseModel.ToDomain(),
		CategoryID: m.CategoryID,
		Name:       m.Name,
		Slug:       m.Slug,
		IsActive:   m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Subcategory
func (m *SubcategoryModel) FromDomain(s *catalog.Subcategory) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.CategoryID = s.CategoryID
	m.Name = s.Name
	m.Slug = s.Slug
	m.IsActive = s.IsActive
}

// RatingModel is the persistence model for a product rating
type RatingModel struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rating_product_user,priority:1"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rating_product_user,priority:2"`
	Score     int       `gorm:"not null"`
	Review    string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RatingModel) TableName() string {
	return "ratings"
}

// ToDomain converts the persistence model to a domain Rating
func (m *RatingModel) ToDomain() *catalog.Rating {
	return &catalog.Rating{
		BaseEntity: m.BaseModel.ToDomain(),
		ProductID:  m.ProductID,
		UserID:     m.UserID,
		Score:      m.Score,
		Review:     m.Review,
	}
}

// FromDomain populates the persistence model from a domain Rating
func (m *RatingModel) FromDomain(r *catalog.Rating) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.ProductID = r.ProductID
	m.UserID = r.UserID
	m.Score = r.Score
	m.Review = r.Review
}
