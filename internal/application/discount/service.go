// Package discount implements coupon administration.
package discount

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrInvalidStatusFilter is returned for an unknown status query value
var ErrInvalidStatusFilter = shared.NewDomainError("ERR_VALIDATION", "status must be one of ALL, ACTIVE, INACTIVE, EXPIRED")

// Service handles coupon administration
type Service struct {
	repo   discount.Repository
	bus    shared.EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new discount admin service
func NewService(repo discount.Repository, bus shared.EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// List returns a page of discounts. All predicates combine with AND.
func (s *Service) List(ctx context.Context, f ListFilter) (*shared.Paginated[DiscountResponse], error) {
	status, ok := discount.ParseStatusFilter(f.Status)
	if !ok {
		return nil, ErrInvalidStatusFilter
	}
	now := s.now()
	filter := toDomainFilter(f, status, now)

	discounts, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]DiscountResponse, len(discounts))
	for i := range discounts {
		items[i] = ToDiscountResponse(&discounts[i], now)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetByID returns one discount
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*DiscountResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToDiscountResponse(d, s.now())
	return &resp, nil
}

// Create creates a discount. Names act as coupon codes and must be unique.
func (s *Service) Create(ctx context.Context, req DiscountRequest) (*DiscountResponse, error) {
	if err := s.ensureUniqueName(ctx, req.Name, nil); err != nil {
		return nil, err
	}
	d, err := discount.New(req.toInput())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save discount: %w", err)
	}
	s.publish(ctx, d)

	s.logger.Info("discount created",
		zap.String("discount_id", d.ID.String()),
		zap.String("name", d.Name),
		zap.String("type", string(d.Type)),
	)
	resp := ToDiscountResponse(d, s.now())
	return &resp, nil
}

// Update replaces the editable fields of a discount
func (s *Service) Update(ctx context.Context, id uuid.UUID, req DiscountRequest) (*DiscountResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, req.Name, &id); err != nil {
		return nil, err
	}
	if err := d.Update(req.toInput()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save discount: %w", err)
	}
	s.publish(ctx, d)

	resp := ToDiscountResponse(d, s.now())
	return &resp, nil
}

// ToggleStatus flips a discount between active and inactive
func (s *Service) ToggleStatus(ctx context.Context, id uuid.UUID) (*DiscountResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.ToggleStatus()
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save discount: %w", err)
	}
	s.publish(ctx, d)

	s.logger.Info("discount status toggled",
		zap.String("discount_id", d.ID.String()),
		zap.Bool("is_active", d.IsActive),
	)
	resp := ToDiscountResponse(d, s.now())
	return &resp, nil
}

// Delete removes a discount
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("discount deleted", zap.String("discount_id", id.String()))
	return nil
}

func (s *Service) ensureUniqueName(ctx context.Context, name string, excludeID *uuid.UUID) error {
	exists, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return discount.ErrDuplicateName
	}
	return nil
}

func (s *Service) publish(ctx context.Context, d *discount.Discount) {
	events := d.PullDomainEvents()
	if s.bus == nil || len(events) == 0 {
		return
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish discount events", zap.Error(err))
	}
}
