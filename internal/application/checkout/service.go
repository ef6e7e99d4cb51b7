// Package checkout prices carts on the server and runs the coupon session of a
// checkout. The same eligibility verdict backs the available-coupon list, apply
// and the final quote.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrNotApplicable is returned when a coupon fails an eligibility check.
// The session carries the specific reason code.
var ErrNotApplicable = shared.NewDomainError("COUPON_NOT_APPLICABLE", "This coupon cannot be applied to your cart")

// CartReader loads the buyer's cart
type CartReader interface {
	Get(ctx context.Context, ownerID string) (*cart.Cart, error)
}

// OrderCounter reports how many paid orders a customer has
type OrderCounter interface {
	CountPaidByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// Metrics records coupon activity
type Metrics interface {
	RecordCouponApply(ctx context.Context, discountType, outcome string)
}

// Service handles coupon sessions and authoritative pricing
type Service struct {
	discounts   discount.Repository
	redemptions discount.RedemptionRepository
	orders      OrderCounter
	carts       CartReader
	sessions    discount.SessionStore
	cfg         config.CheckoutConfig
	metrics     Metrics
	logger      *zap.Logger
	now         func() time.Time

	// sessionMu guards the read-check-write of a session entering APPLYING
	sessionMu sync.Mutex
}

// NewService creates a new checkout Service
func NewService(
	discounts discount.Repository,
	redemptions discount.RedemptionRepository,
	orders OrderCounter,
	carts CartReader,
	sessions discount.SessionStore,
	cfg config.CheckoutConfig,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		discounts:   discounts,
		redemptions: redemptions,
		orders:      orders,
		carts:       carts,
		sessions:    sessions,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// SetMetrics sets the coupon metrics recorder
func (s *Service) SetMetrics(m Metrics) {
	s.metrics = m
}

// Available lists every currently available coupon with its verdict for the buyer's cart.
// Eligible coupons come first.
func (s *Service) Available(ctx context.Context, buyer Buyer) ([]AvailableDiscountResponse, error) {
	now := s.now()
	c, err := s.carts.Get(ctx, buyer.OwnerID)
	if err != nil {
		return nil, err
	}
	discounts, err := s.discounts.FindAvailable(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("find available discounts: %w", err)
	}
	if len(discounts) == 0 {
		return []AvailableDiscountResponse{}, nil
	}

	priorOrders, err := s.priorOrders(ctx, buyer)
	if err != nil {
		return nil, err
	}
	usage := map[uuid.UUID]int{}
	if !buyer.IsGuest() {
		ids := make([]uuid.UUID, len(discounts))
		for i := range discounts {
			ids[i] = discounts[i].ID
		}
		if usage, err = s.redemptions.CountByUserForDiscounts(ctx, buyer.UserID, ids); err != nil {
			return nil, fmt.Errorf("count coupon usage: %w", err)
		}
	}

	lines := linesOf(c)
	shipping := s.shippingFor(c)
	result := make([]AvailableDiscountResponse, 0, len(discounts))
	for i := range discounts {
		d := &discounts[i]
		verdict := discount.Evaluate(d, discount.EligibilityContext{
			Lines:       lines,
			ShippingFee: shipping,
			PriorOrders: priorOrders,
			UserUsage:   usage[d.ID],
			Now:         now,
		})
		result = append(result, toAvailableResponse(d, verdict))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Eligible && !result[j].Eligible
	})
	return result, nil
}

// Apply runs NO_COUPON → APPLYING → APPLIED|ERROR for the buyer's session
func (s *Service) Apply(ctx context.Context, buyer Buyer, req ApplyRequest) (*ApplyResponse, error) {
	code := strings.TrimSpace(req.Code)
	if req.DiscountID == nil && code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Enter a coupon code")
	}

	session, err := s.beginApply(ctx, buyer.OwnerID, code)
	if err != nil {
		return nil, err
	}

	d, c, verdict, err := s.evaluateRequest(ctx, buyer, req, code)
	if err != nil {
		errCode, msg := failureOf(err)
		s.failApply(ctx, session, "", errCode, msg)
		return nil, err
	}
	if !verdict.Eligible {
		s.failApply(ctx, session, d.Type, string(verdict.Reason), verdict.Message)
		return nil, shared.NewDomainError(ErrNotApplicable.Code, verdict.Message)
	}

	amount := verdict.Preview.Amount()
	if err := session.MarkApplied(d, amount, s.now()); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save checkout session: %w", err)
	}
	s.recordApply(ctx, d.Type, "applied")
	s.logger.Info("coupon applied",
		zap.String("owner_id", buyer.OwnerID),
		zap.String("discount_id", d.ID.String()),
		zap.String("discount", d.Name),
		zap.String("amount", amount.StringFixed(2)),
	)

	quote := s.priceWith(c, d, amount)
	return &ApplyResponse{Session: toSessionResponse(session, s.now()), Quote: quote}, nil
}

// Remove clears the applied coupon
func (s *Service) Remove(ctx context.Context, buyer Buyer) (*SessionResponse, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	session, err := s.sessions.Load(ctx, buyer.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("load checkout session: %w", err)
	}
	now := s.now()
	if err := session.Remove(now); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save checkout session: %w", err)
	}
	resp := toSessionResponse(session, now)
	return &resp, nil
}

// Session returns the buyer's coupon session
func (s *Service) Session(ctx context.Context, buyer Buyer) (*SessionResponse, error) {
	session, err := s.sessions.Load(ctx, buyer.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("load checkout session: %w", err)
	}
	resp := toSessionResponse(session, s.now())
	return &resp, nil
}

// ClearSession forgets the buyer's session once the order is paid
func (s *Service) ClearSession(ctx context.Context, ownerID string) error {
	return s.sessions.Delete(ctx, ownerID)
}

// Quote prices the stored cart with the applied coupon re-evaluated against it.
// A coupon that no longer applies is removed from the session and reported in Notice.
func (s *Service) Quote(ctx context.Context, buyer Buyer) (*Quote, error) {
	c, err := s.carts.Get(ctx, buyer.OwnerID)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.Load(ctx, buyer.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("load checkout session: %w", err)
	}
	if c.IsEmpty() || !session.HasCoupon() {
		q := s.priceWith(c, nil, decimal.Zero)
		return &q, nil
	}

	d, err := s.discounts.FindByID(ctx, *session.DiscountID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("load applied discount: %w", err)
	}
	if d == nil {
		return s.dropCoupon(ctx, c, session, discount.ErrNotFound.Message)
	}

	verdict, err := s.evaluate(ctx, buyer, c, d)
	if err != nil {
		return nil, err
	}
	if !verdict.Eligible {
		return s.dropCoupon(ctx, c, session, verdict.Message)
	}

	amount := verdict.Preview.Amount()
	if !amount.Equal(session.DiscountAmount) {
		session.DiscountAmount = amount
		session.UpdatedAt = s.now()
		if err := s.sessions.Save(ctx, session); err != nil {
			s.logger.Warn("failed to refresh coupon amount", zap.String("owner_id", buyer.OwnerID), zap.Error(err))
		}
	}
	q := s.priceWith(c, d, amount)
	return &q, nil
}

func (s *Service) beginApply(ctx context.Context, ownerID, code string) (*discount.Session, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	session, err := s.sessions.Load(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load checkout session: %w", err)
	}
	if err := session.BeginApply(code, s.now()); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save checkout session: %w", err)
	}
	return session, nil
}

func (s *Service) evaluateRequest(ctx context.Context, buyer Buyer, req ApplyRequest, code string) (*discount.Discount, *cart.Cart, discount.Eligibility, error) {
	d, err := s.resolve(ctx, req.DiscountID, code)
	if err != nil {
		return nil, nil, discount.Eligibility{}, err
	}
	c, err := s.carts.Get(ctx, buyer.OwnerID)
	if err != nil {
		return nil, nil, discount.Eligibility{}, err
	}
	if c.IsEmpty() {
		return nil, nil, discount.Eligibility{}, shared.NewDomainError("CART_EMPTY", "Your cart is empty")
	}
	verdict, err := s.evaluate(ctx, buyer, c, d)
	if err != nil {
		return nil, nil, discount.Eligibility{}, err
	}
	return d, c, verdict, nil
}

// resolve finds the coupon by id, or by a case-insensitive match of the code
// against the names of available coupons
func (s *Service) resolve(ctx context.Context, id *uuid.UUID, code string) (*discount.Discount, error) {
	if id != nil {
		d, err := s.discounts.FindByID(ctx, *id)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, discount.ErrNotFound
		}
		return d, err
	}

	available, err := s.discounts.FindAvailable(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("find available discounts: %w", err)
	}
	var matches []*discount.Discount
	for i := range available {
		if available[i].MatchesCode(code) {
			matches = append(matches, &available[i])
		}
	}
	switch len(matches) {
	case 0:
		return nil, discount.ErrNotFound
	case 1:
		return matches[0], nil
	}
	s.logger.Warn("coupon code matches several discounts",
		zap.String("code", code),
		zap.Int("matches", len(matches)),
	)
	return nil, discount.ErrAmbiguousCoupon
}

func (s *Service) evaluate(ctx context.Context, buyer Buyer, c *cart.Cart, d *discount.Discount) (discount.Eligibility, error) {
	priorOrders, err := s.priorOrders(ctx, buyer)
	if err != nil {
		return discount.Eligibility{}, err
	}
	usage := 0
	if !buyer.IsGuest() {
		if usage, err = s.redemptions.CountByUser(ctx, d.ID, buyer.UserID); err != nil {
			return discount.Eligibility{}, fmt.Errorf("count coupon usage: %w", err)
		}
	}
	return discount.Evaluate(d, discount.EligibilityContext{
		Lines:       linesOf(c),
		ShippingFee: s.shippingFor(c),
		PriorOrders: priorOrders,
		UserUsage:   usage,
		Now:         s.now(),
	}), nil
}

func (s *Service) priorOrders(ctx context.Context, buyer Buyer) (int, error) {
	if buyer.IsGuest() {
		return 0, nil
	}
	n, err := s.orders.CountPaidByUser(ctx, buyer.UserID)
	if err != nil {
		return 0, fmt.Errorf("count paid orders: %w", err)
	}
	return n, nil
}

// failureOf derives the session error code and message from err
func failureOf(err error) (string, string) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code, domainErr.Message
	}
	return "APPLY_FAILED", "Could not apply the coupon, please try again"
}

func (s *Service) failApply(ctx context.Context, session *discount.Session, discountType discount.Type, code, msg string) {
	if err := session.MarkFailed(code, msg, s.now()); err != nil {
		s.logger.Warn("failed to mark coupon apply failed", zap.String("owner_id", session.OwnerID), zap.Error(err))
		return
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Warn("failed to save failed coupon session", zap.String("owner_id", session.OwnerID), zap.Error(err))
	}
	s.recordApply(ctx, discountType, code)
	s.logger.Info("coupon apply failed",
		zap.String("owner_id", session.OwnerID),
		zap.String("code", session.Code),
		zap.String("reason", code),
	)
}

func (s *Service) dropCoupon(ctx context.Context, c *cart.Cart, session *discount.Session, notice string) (*Quote, error) {
	if err := session.Remove(s.now()); err == nil {
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("save checkout session: %w", err)
		}
	}
	s.logger.Info("applied coupon no longer valid", zap.String("owner_id", c.OwnerID), zap.String("notice", notice))
	q := s.priceWith(c, nil, decimal.Zero)
	q.Notice = notice
	return &q, nil
}

func (s *Service) recordApply(ctx context.Context, t discount.Type, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordCouponApply(ctx, string(t), outcome)
	}
}

func (s *Service) priceWith(c *cart.Cart, d *discount.Discount, amount decimal.Decimal) Quote {
	subtotal := c.Subtotal().Amount()
	shipping := s.shippingFor(c).Amount()
	q := Quote{
		Subtotal:  subtotal,
		Discount:  decimal.Zero,
		Shipping:  shipping,
		ItemCount: c.ItemCount(),
		Cart:      c,
	}
	if d != nil && amount.IsPositive() {
		q.Discount = decimal.Min(amount, subtotal.Add(shipping))
		q.AppliedDiscount = &AppliedDiscount{ID: d.ID, Name: d.Name, Type: d.Type, Amount: q.Discount}
	}
	q.Total = subtotal.Sub(q.Discount).Add(shipping)
	return q
}

// shippingFor returns the flat fee, waived above the free-shipping threshold
func (s *Service) shippingFor(c *cart.Cart) valueobject.Money {
	if c.IsEmpty() {
		return valueobject.ZeroINR()
	}
	threshold := s.cfg.FreeShippingThreshold
	if threshold.IsPositive() && !c.Subtotal().Amount().LessThan(threshold) {
		return valueobject.ZeroINR()
	}
	return valueobject.NewMoneyINR(s.cfg.ShippingFee)
}

func linesOf(c *cart.Cart) []discount.Line {
	lines := make([]discount.Line, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, discount.Line{
			ProductID:     item.ProductID,
			CategoryID:    item.CategoryID,
			SubcategoryID: item.SubcategoryID,
			UnitPrice:     item.Price,
			Quantity:      item.Quantity,
		})
	}
	return lines
}
