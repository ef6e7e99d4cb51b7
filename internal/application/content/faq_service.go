// Package content implements the help-page FAQs and custom design inquiries.
package content

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FAQService handles FAQ listing and administration
type FAQService struct {
	repo   content.FAQRepository
	logger *zap.Logger
}

// NewFAQService creates a new FAQService
func NewFAQService(repo content.FAQRepository, logger *zap.Logger) *FAQService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FAQService{repo: repo, logger: logger}
}

// ListPublic returns the active FAQs, optionally of one category
func (s *FAQService) ListPublic(ctx context.Context, f FAQListFilter) (*shared.Paginated[FAQResponse], error) {
	active := true
	f.IsActive = &active
	if f.SortBy == "" {
		f.SortBy = "sort_order"
		f.SortOrder = "asc"
	}
	return s.list(ctx, f.toDomain())
}

// List returns a page of FAQs for administrators
func (s *FAQService) List(ctx context.Context, f FAQListFilter) (*shared.Paginated[FAQResponse], error) {
	return s.list(ctx, f.toDomain())
}

func (s *FAQService) list(ctx context.Context, filter shared.Filter) (*shared.Paginated[FAQResponse], error) {
	faqs, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]FAQResponse, len(faqs))
	for i := range faqs {
		items[i] = ToFAQResponse(&faqs[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetByID returns one FAQ
func (s *FAQService) GetByID(ctx context.Context, id uuid.UUID) (*FAQResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToFAQResponse(f)
	return &resp, nil
}

// Create creates an active FAQ
func (s *FAQService) Create(ctx context.Context, req FAQRequest) (*FAQResponse, error) {
	f, err := content.NewFAQ(req.Question, req.Answer, req.Category, req.SortOrder)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("save faq: %w", err)
	}
	s.logger.Info("faq created", zap.String("faq_id", f.ID.String()), zap.String("category", string(f.Category)))
	resp := ToFAQResponse(f)
	return &resp, nil
}

// Update replaces a FAQ
func (s *FAQService) Update(ctx context.Context, id uuid.UUID, req FAQRequest) (*FAQResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := f.Update(req.Question, req.Answer, req.Category, req.SortOrder); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("save faq: %w", err)
	}
	resp := ToFAQResponse(f)
	return &resp, nil
}

// ToggleStatus shows or hides a FAQ
func (s *FAQService) ToggleStatus(ctx context.Context, id uuid.UUID) (*FAQResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.ToggleStatus()
	if err := s.repo.Save(ctx, f); err != nil {
		return nil, fmt.Errorf("save faq: %w", err)
	}
	resp := ToFAQResponse(f)
	return &resp, nil
}

// Delete removes a FAQ
func (s *FAQService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
