package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductRequest creates or replaces a product's basic information
type ProductRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Description   string          `json:"description" binding:"max=5000"`
	CategoryID    uuid.UUID       `json:"category_id" binding:"required"`
	SubcategoryID *uuid.UUID      `json:"subcategory_id"`
	BasePrice     decimal.Decimal `json:"base_price"`
	Variants      []VariantInput  `json:"variants" binding:"omitempty,dive"`
}

// VariantInput adds a color/size variant to a product
type VariantInput struct {
	SKU   string           `json:"sku" binding:"max=64"`
	Color string           `json:"color" binding:"max=50"`
	Size  string           `json:"size" binding:"max=20"`
	Price *decimal.Decimal `json:"price"`
	Stock int              `json:"stock" binding:"min=0"`
}

// VariantStockRequest sets the stock of one variant
type VariantStockRequest struct {
	Stock *int `json:"stock" binding:"required,min=0"`
}

// ProductListFilter holds the list query of products
type ProductListFilter struct {
	Search        string `form:"search"`
	CategoryID    string `form:"category_id"`
	SubcategoryID string `form:"subcategory_id"`
	InStock       *bool  `form:"in_stock"`
	IsActive      *bool  `form:"is_active"`
	Page          int    `form:"page"`
	Limit         int    `form:"limit"`
	SortBy        string `form:"sort_by"`
	SortOrder     string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

func (f ProductListFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.Limit,
		OrderBy:  f.SortBy,
		OrderDir: f.SortOrder,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}
	if id, err := uuid.Parse(f.CategoryID); err == nil {
		filter.Filters["category_id"] = id
	}
	if id, err := uuid.Parse(f.SubcategoryID); err == nil {
		filter.Filters["subcategory_id"] = id
	}
	if f.InStock != nil {
		filter.Filters["in_stock"] = *f.InStock
	}
	if f.IsActive != nil {
		filter.Filters["is_active"] = *f.IsActive
	}
	return filter.Normalize()
}

// VariantResponse represents a product variant in API responses
type VariantResponse struct {
	ID     uuid.UUID       `json:"id"`
	SKU    string          `json:"sku,omitempty"`
	Color  string          `json:"color,omitempty"`
	Size   string          `json:"size,omitempty"`
	Label  string          `json:"label"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
	Images []string        `json:"images"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Description   string            `json:"description"`
	CategoryID    uuid.UUID         `json:"category_id"`
	SubcategoryID *uuid.UUID        `json:"subcategory_id,omitempty"`
	BasePrice     decimal.Decimal   `json:"base_price"`
	IsActive      bool              `json:"is_active"`
	InStock       bool              `json:"in_stock"`
	TotalStock    int               `json:"total_stock"`
	AverageRating decimal.Decimal   `json:"average_rating"`
	RatingCount   int               `json:"rating_count"`
	Image         string            `json:"image,omitempty"`
	Variants      []VariantResponse `json:"variants"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Version       int               `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	variants := make([]VariantResponse, len(p.Variants))
	image := ""
	for i, v := range p.Variants {
		images := v.Images
		if images == nil {
			images = []string{}
		}
		if image == "" {
			image = v.PrimaryImage()
		}
		variants[i] = VariantResponse{
			ID:     v.ID,
			SKU:    v.SKU,
			Color:  v.Color,
			Size:   v.Size,
			Label:  v.Label(),
			Price:  v.Price,
			Stock:  v.Stock,
			Images: images,
		}
	}
	stock := p.TotalStock()
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		CategoryID:    p.CategoryID,
		SubcategoryID: p.SubcategoryID,
		BasePrice:     p.BasePrice,
		IsActive:      p.IsActive,
		InStock:       stock > 0,
		TotalStock:    stock,
		AverageRating: p.AverageRating,
		RatingCount:   p.RatingCount,
		Image:         image,
		Variants:      variants,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}

// SuggestionResponse is one search suggestion
type SuggestionResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ImageUpload is a single uploaded image file
type ImageUpload struct {
	VariantID   uuid.UUID
	Filename    string
	ContentType string
	Size        int64
}

// CategoryRequest creates or replaces a category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=1000"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

// SubcategoryRequest creates a subcategory
type SubcategoryRequest struct {
	CategoryID uuid.UUID `json:"category_id" binding:"required"`
	Name       string    `json:"name" binding:"required,min=1,max=100"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID            uuid.UUID             `json:"id"`
	Name          string                `json:"name"`
	Slug          string                `json:"slug"`
	Description   string                `json:"description"`
	SortOrder     int                   `json:"sort_order"`
	IsActive      bool                  `json:"is_active"`
	Subcategories []SubcategoryResponse `json:"subcategories,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// SubcategoryResponse represents a subcategory in API responses
type SubcategoryResponse struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	IsActive   bool      `json:"is_active"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToSubcategoryResponse converts a domain Subcategory to SubcategoryResponse
func ToSubcategoryResponse(s *catalog.Subcategory) SubcategoryResponse {
	return SubcategoryResponse{
		ID:         s.ID,
		CategoryID: s.CategoryID,
		Name:       s.Name,
		Slug:       s.Slug,
		IsActive:   s.IsActive,
	}
}

// RatingRequest rates a product
type RatingRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Score     int       `json:"rating" binding:"required,min=1,max=5"`
	Review    string    `json:"review" binding:"max=2000"`
}

// RatingListFilter pages through the ratings of one product
type RatingListFilter struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// RatingResponse represents a rating in API responses
type RatingResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Score     int       `json:"rating"`
	Review    string    `json:"review,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToRatingResponse converts a domain Rating to RatingResponse
func ToRatingResponse(r *catalog.Rating) RatingResponse {
	return RatingResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Score:     r.Score,
		Review:    r.Review,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// RatingSummaryResponse is returned after rating a product
type RatingSummaryResponse struct {
	Rating        RatingResponse  `json:"rating"`
	AverageRating decimal.Decimal `json:"average_rating"`
	RatingCount   int             `json:"rating_count"`
}
