package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// List returns categories with their subcategories nested.
// Public callers pass activeOnly to hide inactive categories and subcategories.
func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	subs, err := s.categoryRepo.FindSubcategories(ctx, nil)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID][]SubcategoryResponse)
	for i := range subs {
		if activeOnly && !subs[i].IsActive {
			continue
		}
		byCategory[subs[i].CategoryID] = append(byCategory[subs[i].CategoryID], ToSubcategoryResponse(&subs[i]))
	}

	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
		out[i].Subcategories = byCategory[categories[i].ID]
	}
	return out, nil
}

// ListSubcategories returns the active subcategories, optionally of one category
func (s *CategoryService) ListSubcategories(ctx context.Context, categoryID *uuid.UUID) ([]SubcategoryResponse, error) {
	subs, err := s.categoryRepo.FindSubcategories(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	out := make([]SubcategoryResponse, 0, len(subs))
	for i := range subs {
		if subs[i].IsActive {
			out = append(out, ToSubcategoryResponse(&subs[i]))
		}
	}
	return out, nil
}

// GetByID returns one category
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueSlug(ctx, category.Slug, nil); err != nil {
		return nil, err
	}
	if req.SortOrder != 0 {
		if err := category.Update(req.Name, req.Description, req.SortOrder); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil && !*req.IsActive {
		category.SetActive(false)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, fmt.Errorf("save category: %w", err)
	}
	s.logger.Info("category created", zap.String("category_id", category.ID.String()), zap.String("slug", category.Slug))

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Update updates a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req CategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := category.Update(req.Name, req.Description, req.SortOrder); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueSlug(ctx, category.Slug, &id); err != nil {
		return nil, err
	}
	if req.IsActive != nil && *req.IsActive != category.IsActive {
		category.SetActive(*req.IsActive)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, fmt.Errorf("save category: %w", err)
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete deletes a category that no product uses
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("category deleted", zap.String("category_id", id.String()))
	return nil
}

// CreateSubcategory adds a subcategory below an existing category
func (s *CategoryService) CreateSubcategory(ctx context.Context, req SubcategoryRequest) (*SubcategoryResponse, error) {
	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return nil, err
	}
	sub, err := catalog.NewSubcategory(req.CategoryID, req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.SaveSubcategory(ctx, sub); err != nil {
		return nil, fmt.Errorf("save subcategory: %w", err)
	}
	resp := ToSubcategoryResponse(sub)
	return &resp, nil
}

func (s *CategoryService) ensureUniqueSlug(ctx context.Context, slug string, excludeID *uuid.UUID) error {
	exists, err := s.categoryRepo.ExistsBySlug(ctx, slug, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "A category with this name already exists")
	}
	return nil
}
