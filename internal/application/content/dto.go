package content

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/shared"
)

// FAQRequest creates or replaces a FAQ
type FAQRequest struct {
	Question  string              `json:"question" binding:"required,max=500"`
	Answer    string              `json:"answer" binding:"required"`
	Category  content.FAQCategory `json:"category" binding:"omitempty,oneof=GENERAL ORDERS SHIPPING RETURNS PAYMENTS PRODUCTS"`
	SortOrder int                 `json:"sort_order"`
}

// FAQListFilter holds the list query of FAQs
type FAQListFilter struct {
	Search    string `form:"search"`
	Category  string `form:"category"`
	IsActive  *bool  `form:"is_active"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

func (f FAQListFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.Limit,
		OrderBy:  f.SortBy,
		OrderDir: f.SortOrder,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}
	if f.Category != "" {
		filter.Filters["category"] = content.FAQCategory(strings.ToUpper(f.Category))
	}
	if f.IsActive != nil {
		filter.Filters["is_active"] = *f.IsActive
	}
	return filter.Normalize()
}

// FAQResponse represents a FAQ in API responses
type FAQResponse struct {
	ID        uuid.UUID           `json:"id"`
	Question  string              `json:"question"`
	Answer    string              `json:"answer"`
	Category  content.FAQCategory `json:"category"`
	SortOrder int                 `json:"sort_order"`
	IsActive  bool                `json:"is_active"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ToFAQResponse converts a domain FAQ to FAQResponse
func ToFAQResponse(f *content.FAQ) FAQResponse {
	return FAQResponse{
		ID:        f.ID,
		Question:  f.Question,
		Answer:    f.Answer,
		Category:  f.Category,
		SortOrder: f.SortOrder,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// InquiryRequest is a customer's custom design inquiry
type InquiryRequest struct {
	Name            string          `json:"name" binding:"required,max=100"`
	Email           string          `json:"email" binding:"required,email"`
	Phone           string          `json:"phone" binding:"max=20"`
	ProductType     string          `json:"product_type" binding:"required,max=100"`
	Description     string          `json:"description" binding:"required,min=10,max=5000"`
	ReferenceImages []string        `json:"reference_images" binding:"max=5,dive,url"`
	Budget          decimal.Decimal `json:"budget"`
}

// InquiryStatusRequest is an admin status change of an inquiry
type InquiryStatusRequest struct {
	Status     content.InquiryStatus `json:"status" binding:"required,oneof=NEW IN_REVIEW QUOTED CLOSED"`
	AdminNotes *string               `json:"admin_notes" binding:"omitempty,max=2000"`
}

// InquiryListFilter holds the list query of design inquiries
type InquiryListFilter struct {
	Search      string `form:"search"`
	Status      string `form:"status"`
	ProductType string `form:"product_type"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
	SortBy      string `form:"sort_by"`
	SortOrder   string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

func (f InquiryListFilter) toDomain() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.Limit,
		OrderBy:  f.SortBy,
		OrderDir: f.SortOrder,
		Search:   f.Search,
		Filters:  make(map[string]any),
	}
	if f.Status != "" {
		filter.Filters["status"] = content.InquiryStatus(strings.ToUpper(f.Status))
	}
	if f.ProductType != "" {
		filter.Filters["product_type"] = f.ProductType
	}
	return filter.Normalize()
}

// InquiryResponse represents a design inquiry in API responses
type InquiryResponse struct {
	ID              uuid.UUID             `json:"id"`
	Name            string                `json:"name"`
	Email           string                `json:"email"`
	Phone           string                `json:"phone,omitempty"`
	ProductType     string                `json:"product_type"`
	Description     string                `json:"description"`
	ReferenceImages []string              `json:"reference_images"`
	Budget          decimal.Decimal       `json:"budget"`
	Status          content.InquiryStatus `json:"status"`
	AdminNotes      string                `json:"admin_notes,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// ToInquiryResponse converts a domain DesignInquiry to InquiryResponse
func ToInquiryResponse(i *content.DesignInquiry) InquiryResponse {
	images := i.ReferenceImages
	if images == nil {
		images = []string{}
	}
	return InquiryResponse{
		ID:              i.ID,
		Name:            i.Name,
		Email:           i.Email,
		Phone:           i.Phone,
		ProductType:     i.ProductType,
		Description:     i.Description,
		ReferenceImages: images,
		Budget:          i.Budget,
		Status:          i.Status,
		AdminNotes:      i.AdminNotes,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}
