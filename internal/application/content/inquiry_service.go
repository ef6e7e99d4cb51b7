package content

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InquiryNotifier tells the shop about a new design inquiry
type InquiryNotifier interface {
	SendInquiryNotification(ctx context.Context, inquiry *content.DesignInquiry) error
}

// InquiryService handles design inquiry submission and administration
type InquiryService struct {
	repo     content.InquiryRepository
	notifier InquiryNotifier
	logger   *zap.Logger
}

// NewInquiryService creates a new InquiryService. notifier may be nil.
func NewInquiryService(repo content.InquiryRepository, notifier InquiryNotifier, logger *zap.Logger) *InquiryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InquiryService{repo: repo, notifier: notifier, logger: logger}
}

// Submit stores a new inquiry and notifies the admin mailbox.
// A notification failure is logged; the inquiry is still accepted.
func (s *InquiryService) Submit(ctx context.Context, req InquiryRequest) (*InquiryResponse, error) {
	inquiry, err := content.NewDesignInquiry(content.InquiryInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		ProductType:     req.ProductType,
		Description:     req.Description,
		ReferenceImages: req.ReferenceImages,
		Budget:          req.Budget,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("save inquiry: %w", err)
	}

	s.logger.Info("design inquiry submitted",
		zap.String("inquiry_id", inquiry.ID.String()),
		zap.String("product_type", inquiry.ProductType),
	)
	if s.notifier != nil {
		if err := s.notifier.SendInquiryNotification(ctx, inquiry); err != nil {
			s.logger.Warn("failed to send inquiry notification",
				zap.String("inquiry_id", inquiry.ID.String()),
				zap.Error(err),
			)
		}
	}

	resp := ToInquiryResponse(inquiry)
	return &resp, nil
}

// List returns a page of inquiries for administrators
func (s *InquiryService) List(ctx context.Context, f InquiryListFilter) (*shared.Paginated[InquiryResponse], error) {
	filter := f.toDomain()
	inquiries, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]InquiryResponse, len(inquiries))
	for i := range inquiries {
		items[i] = ToInquiryResponse(&inquiries[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetByID returns one inquiry
func (s *InquiryService) GetByID(ctx context.Context, id uuid.UUID) (*InquiryResponse, error) {
	inquiry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInquiryResponse(inquiry)
	return &resp, nil
}

// UpdateStatus moves an inquiry through review
func (s *InquiryService) UpdateStatus(ctx context.Context, id uuid.UUID, req InquiryStatusRequest) (*InquiryResponse, error) {
	inquiry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := inquiry.Status
	if err := inquiry.UpdateStatus(req.Status, req.AdminNotes); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("save inquiry: %w", err)
	}

	s.logger.Info("design inquiry status changed",
		zap.String("inquiry_id", inquiry.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(inquiry.Status)),
	)
	resp := ToInquiryResponse(inquiry)
	return &resp, nil
}

// Delete removes an inquiry
func (s *InquiryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
