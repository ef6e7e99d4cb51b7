// Package content holds FAQs and custom design inquiries.
package content

import (
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// FAQCategory groups FAQs on the help page
type FAQCategory string

const (
	FAQGeneral  FAQCategory = "GENERAL"
	FAQOrders   FAQCategory = "ORDERS"
	FAQShipping FAQCategory = "SHIPPING"
	FAQReturns  FAQCategory = "RETURNS"
	FAQPayments FAQCategory = "PAYMENTS"
	FAQProducts FAQCategory = "PRODUCTS"
)

// IsValid checks if the category is known
func (c FAQCategory) IsValid() bool {
	switch c {
	case FAQGeneral, FAQOrders, FAQShipping, FAQReturns, FAQPayments, FAQProducts:
		return true
	}
	return false
}

// ErrFAQNotFound is returned for unknown FAQ ids
var ErrFAQNotFound = shared.NewDomainError("FAQ_NOT_FOUND", "FAQ not found")

// FAQ is a question and answer shown on the help page
type FAQ struct {
	shared.BaseEntity
	Question  string
	Answer    string
	Category  FAQCategory
	SortOrder int
	IsActive  bool
}

// NewFAQ creates an active FAQ
func NewFAQ(question, answer string, category FAQCategory, sortOrder int) (*FAQ, error) {
	f := &FAQ{BaseEntity: shared.NewBaseEntity(), IsActive: true}
	if err := f.Update(question, answer, category, sortOrder); err != nil {
		return nil, err
	}
	return f, nil
}

// Update replaces the FAQ text and placement
func (f *FAQ) Update(question, answer string, category FAQCategory, sortOrder int) error {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || len(question) > 500 {
		return shared.NewDomainError("INVALID_QUESTION", "Question must be between 1 and 500 characters")
	}
	if answer == "" {
		return shared.NewDomainError("INVALID_ANSWER", "Answer cannot be empty")
	}
	if category == "" {
		category = FAQGeneral
	}
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown FAQ category")
	}

	f.Question = question
	f.Answer = answer
	f.Category = category
	f.SortOrder = sortOrder
	f.UpdatedAt = time.Now()
	return nil
}

// ToggleStatus flips visibility
func (f *FAQ) ToggleStatus() {
	f.IsActive = !f.IsActive
	f.Touch()
}
