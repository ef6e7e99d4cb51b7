package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and collapses every run of non-alphanumerics into a dash
func Slugify(s string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(slug, "-")
}

// Category groups products in the storefront navigation
type Category struct {
	shared.BaseAggregateRoot
	Name        string
	Slug        string
	Description string
	SortOrder   int
	IsActive    bool
}

// NewCategory creates a new active category
func NewCategory(name, description string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Slug:              Slugify(name),
		Description:       description,
		IsActive:          true,
	}, nil
}

// Update updates the category's basic information
func (c *Category) Update(name, description string, sortOrder int) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Slug = Slugify(name)
	c.Description = description
	c.SortOrder = sortOrder
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// SetActive sets the visibility of the category
func (c *Category) SetActive(active bool) {
	c.IsActive = active
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Subcategory is a second-level grouping below a Category
type Subcategory struct {
	shared.BaseEntity
	CategoryID uuid.UUID
	Name       string
	Slug       string
	IsActive   bool
}

// NewSubcategory creates a new active subcategory under categoryID
func NewSubcategory(categoryID uuid.UUID, name string) (*Subcategory, error) {
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	return &Subcategory{
		BaseEntity: shared.NewBaseEntity(),
		CategoryID: categoryID,
		Name:       strings.TrimSpace(name),
		Slug:       Slugify(name),
		IsActive:   true,
	}, nil
}

func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
