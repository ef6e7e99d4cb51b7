package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns defaultField if the input is empty or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"name":           true,
	"base_price":     true,
	"average_rating": true,
	"rating_count":   true,
}

// DiscountSortFields contains allowed sort fields for discounts
var DiscountSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"name":           true,
	"discount_type":  true,
	"discount_value": true,
	"valid_from":     true,
	"valid_until":    true,
	"usage_count":    true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"status":       true,
	"total":        true,
	"paid_at":      true,
}

// FAQSortFields contains allowed sort fields for FAQs
var FAQSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"sort_order": true,
	"category":   true,
	"question":   true,
}

// InquirySortFields contains allowed sort fields for design inquiries
var InquirySortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"status":       true,
	"product_type": true,
	"budget":       true,
}

// RatingSortFields contains allowed sort fields for ratings
var RatingSortFields = map[string]bool{
	"created_at": true,
	"score":      true,
}
