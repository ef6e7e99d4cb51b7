// Package order orchestrates payment for storefront orders: initiation against
// the hosted-checkout gateway, signature verification, webhook capture and the
// order history views.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// Payment errors surfaced to clients
var (
	ErrInitiationFailed   = shared.NewDomainError("PAYMENT_INITIATION_FAILED", "Could not start the payment, please try again")
	ErrVerificationFailed = shared.NewDomainError("PAYMENT_VERIFICATION_FAILED", "Payment could not be verified")
	ErrPaymentInProgress  = shared.NewDomainError("PAYMENT_IN_PROGRESS", "This payment is already being processed")
	ErrInvalidWebhook     = shared.NewDomainError("INVALID_SIGNATURE", "Webhook signature is invalid")
)

// Quoter prices the buyer's cart and owns the coupon session
type Quoter interface {
	Quote(ctx context.Context, buyer checkout.Buyer) (*checkout.Quote, error)
	ClearSession(ctx context.Context, ownerID string) error
}

// CartClearer empties a cart through the observable store
type CartClearer interface {
	Clear(ctx context.Context, ownerID string) (*cart.Cart, error)
}

// Metrics records order and payment activity
type Metrics interface {
	RecordOrderPlaced(ctx context.Context, gateway string)
	RecordOrderPaid(ctx context.Context, gateway string, total decimal.Decimal)
	RecordPaymentFailure(ctx context.Context, kind string)
}

// ServiceConfig holds the collaborators of Service
type ServiceConfig struct {
	Orders          order.Repository
	PendingPayments order.PendingPaymentStore
	Gateway         payment.Gateway
	Idempotency     shared.IdempotencyStore
	Discounts       discount.Repository
	Redemptions     discount.RedemptionRepository
	Checkout        Quoter
	Carts           CartClearer
	EventPublisher  shared.EventPublisher
	Metrics         Metrics
	Logger          *zap.Logger

	Currency             string
	IdempotencyTTL       time.Duration
	RedirectAfterSeconds int
	// CaptureWait bounds how long a payment already being captured by another
	// request is awaited before answering PAYMENT_IN_PROGRESS
	CaptureWait time.Duration
}

// Service runs the payment lifecycle of orders
type Service struct {
	orders      order.Repository
	pending     order.PendingPaymentStore
	gateway     payment.Gateway
	idempotency shared.IdempotencyStore
	discounts   discount.Repository
	redemptions discount.RedemptionRepository
	checkout    Quoter
	carts       CartClearer
	bus         shared.EventPublisher
	metrics     Metrics
	logger      *zap.Logger

	currency       string
	idempotencyTTL time.Duration
	redirectAfter  int
	captureWait    time.Duration
	now            func() time.Time
}

const capturePollInterval = 50 * time.Millisecond

// NewService creates a new order Service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	currency := cfg.Currency
	if currency == "" {
		currency = string(valueobject.DefaultCurrency)
	}
	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	redirect := cfg.RedirectAfterSeconds
	if redirect <= 0 {
		redirect = 30
	}
	captureWait := cfg.CaptureWait
	if captureWait <= 0 {
		captureWait = 3 * time.Second
	}
	return &Service{
		orders:         cfg.Orders,
		pending:        cfg.PendingPayments,
		gateway:        cfg.Gateway,
		idempotency:    cfg.Idempotency,
		discounts:      cfg.Discounts,
		redemptions:    cfg.Redemptions,
		checkout:       cfg.Checkout,
		carts:          cfg.Carts,
		bus:            cfg.EventPublisher,
		metrics:        cfg.Metrics,
		logger:         logger,
		currency:       currency,
		idempotencyTTL: ttl,
		redirectAfter:  redirect,
		captureWait:    captureWait,
		now:            time.Now,
	}
}

// InitiatePayment places an order from the stored cart at the server quote and
// opens a gateway order for it. On gateway failure the order is marked
// PAYMENT_FAILED and the cart is left untouched.
func (s *Service) InitiatePayment(ctx context.Context, buyer checkout.Buyer, req InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	if buyer.IsGuest() {
		return nil, shared.ErrUnauthorized
	}
	address, err := valueobject.NewShippingAddress(req.ShippingAddress)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}

	quote, err := s.checkout.Quote(ctx, buyer)
	if err != nil {
		return nil, err
	}
	if quote.Cart == nil || quote.Cart.IsEmpty() {
		return nil, order.ErrCartEmpty
	}

	o, err := s.buildOrder(buyer.UserID, address, req.Notes, quote)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	s.publish(ctx, o)
	s.supersedePending(ctx, buyer.OwnerID)

	gwOrder, err := s.gateway.CreateOrder(ctx, payment.CreateOrderRequest{
		Amount:   o.TotalMoney().MinorUnits(),
		Currency: s.currency,
		Receipt:  o.OrderNumber,
		Notes: map[string]string{
			"order_id": o.ID.String(),
			"user_id":  o.UserID.String(),
		},
	})
	if err != nil {
		s.logger.Error("gateway order creation failed",
			zap.String("order_id", o.ID.String()),
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
		if markErr := o.MarkInitiationFailed(err.Error()); markErr == nil {
			if saveErr := s.orders.Save(ctx, o); saveErr != nil {
				s.logger.Error("failed to record initiation failure", zap.String("order_id", o.ID.String()), zap.Error(saveErr))
			}
			s.publish(ctx, o)
		}
		s.recordFailure(ctx, order.FailureInitiation)
		return nil, ErrInitiationFailed
	}

	gatewayName := string(s.gateway.Type())
	if err := o.AttachGatewayOrder(gatewayName, gwOrder.ID); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	marker := &order.PendingPayment{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		GatewayOrderID: gwOrder.ID,
		Amount:         o.Total,
		Currency:       s.currency,
		CreatedAt:      s.now(),
	}
	if err := s.pending.Put(ctx, buyer.OwnerID, marker); err != nil {
		s.logger.Warn("failed to store pending payment", zap.String("order_id", o.ID.String()), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordOrderPlaced(ctx, gatewayName)
	}

	s.logger.Info("payment initiated",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("gateway_order_id", gwOrder.ID),
		zap.String("total", o.Total.StringFixed(2)),
	)
	return &InitiatePaymentResponse{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		GatewayOrderID: gwOrder.ID,
		Amount:         o.Total,
		AmountMinor:    o.TotalMoney().MinorUnits(),
		Currency:       s.currency,
		KeyID:          s.gateway.KeyID(),
		Gateway:        gatewayName,
		ClientSecret:   gwOrder.ClientSecret,
		Notice:         quote.Notice,
	}, nil
}

func (s *Service) buildOrder(userID uuid.UUID, address valueobject.ShippingAddress, notes string, quote *checkout.Quote) (*order.Order, error) {
	o, err := order.NewOrder(order.GenerateOrderNumber(s.now()), userID, address, notes)
	if err != nil {
		return nil, err
	}
	for _, item := range quote.Cart.Items {
		if err := o.AddItem(item.ProductID, item.VariantID, item.Name, item.Color, item.Size, item.Image, item.Price.Amount(), item.Quantity); err != nil {
			return nil, err
		}
	}
	pricing := order.Pricing{
		Subtotal:       quote.Subtotal,
		DiscountAmount: quote.Discount,
		ShippingFee:    quote.Shipping,
	}
	if applied := quote.AppliedDiscount; applied != nil {
		id := applied.ID
		pricing.DiscountID = &id
		pricing.CouponCode = applied.Name
	}
	if err := o.Place(pricing); err != nil {
		return nil, err
	}
	return o, nil
}

// supersedePending cancels the order of an earlier unfinished initiation
func (s *Service) supersedePending(ctx context.Context, ownerID string) {
	previous, err := s.pending.Get(ctx, ownerID)
	if err != nil || previous == nil {
		return
	}
	o, err := s.orders.FindByID(ctx, previous.OrderID)
	if err != nil || !o.IsAwaitingPayment() {
		return
	}
	if err := o.TransitionTo(order.StatusCancelled, "superseded by a new payment attempt"); err != nil {
		return
	}
	if err := s.orders.Save(ctx, o); err != nil {
		s.logger.Warn("failed to cancel superseded order", zap.String("order_id", o.ID.String()), zap.Error(err))
		return
	}
	s.publish(ctx, o)
	if err := s.pending.Delete(ctx, ownerID); err != nil {
		s.logger.Warn("failed to clear pending payment", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

// VerifyPayment checks the checkout signature and, when it matches, marks the
// order paid. A failed check records the attempt and leaves cart, coupon
// session and pending marker as they were.
func (s *Service) VerifyPayment(ctx context.Context, buyer checkout.Buyer, req VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	o, err := s.ownedOrder(ctx, buyer, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.IsPaid() && o.GatewayPaymentID == req.GatewayPaymentID {
		return s.verified(o, true), nil
	}
	if o.GatewayOrderID == "" || o.GatewayOrderID != req.GatewayOrderID {
		return nil, order.ErrPaymentMatch
	}

	if err := s.gateway.VerifyPayment(ctx, req.GatewayOrderID, req.GatewayPaymentID, req.Signature); err != nil {
		s.logger.Warn("payment signature rejected",
			zap.String("order_id", o.ID.String()),
			zap.String("gateway_payment_id", req.GatewayPaymentID),
			zap.Error(err),
		)
		if recErr := o.RecordPaymentFailure(order.FailureVerification, "signature mismatch"); recErr == nil {
			if saveErr := s.orders.Save(ctx, o); saveErr != nil {
				s.logger.Error("failed to record verification failure", zap.String("order_id", o.ID.String()), zap.Error(saveErr))
			}
			s.publish(ctx, o)
		}
		s.recordFailure(ctx, order.FailureVerification)
		return nil, ErrVerificationFailed
	}

	paid, alreadyPaid, err := s.capture(ctx, o, req.GatewayPaymentID)
	if err != nil {
		return nil, err
	}
	return s.verified(paid, alreadyPaid), nil
}

// HandleWebhook processes a signed gateway notification. Unknown events and
// orders are acknowledged without action.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(body, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) || errors.Is(err, payment.ErrMissingSignature) {
			s.logger.Warn("webhook signature rejected", zap.Error(err))
			return ErrInvalidWebhook
		}
		return fmt.Errorf("parse webhook: %w", err)
	}

	logger := s.logger.With(
		zap.String("event", event.Event),
		zap.String("gateway_order_id", event.GatewayOrderID),
		zap.String("gateway_payment_id", event.PaymentID),
	)
	switch event.Event {
	case payment.WebhookPaymentCaptured, payment.WebhookPaymentFailed:
	default:
		logger.Debug("ignoring webhook event")
		return nil
	}

	o, err := s.orders.FindByGatewayOrderID(ctx, event.GatewayOrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			logger.Warn("webhook for unknown order")
			return nil
		}
		return err
	}

	if event.Event == payment.WebhookPaymentFailed {
		if err := o.RecordPaymentFailure(order.FailureDeclined, event.ErrorReason); err != nil {
			logger.Info("ignoring failure for order not awaiting payment", zap.String("status", string(o.Status)))
			return nil
		}
		if err := s.orders.Save(ctx, o); err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		s.publish(ctx, o)
		s.recordFailure(ctx, order.FailureDeclined)
		return nil
	}

	if event.Amount > 0 && event.Amount != o.TotalMoney().MinorUnits() {
		logger.Error("captured amount differs from order total",
			zap.Int64("captured", event.Amount),
			zap.Int64("expected", o.TotalMoney().MinorUnits()),
		)
		return nil
	}
	if _, _, err := s.capture(ctx, o, event.PaymentID); err != nil {
		if errors.Is(err, order.ErrNotPayable) || errors.Is(err, ErrPaymentInProgress) {
			logger.Info("webhook capture skipped", zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}

// capture marks o paid by paymentID exactly once and runs the post-payment
// effects. It reports alreadyPaid when the payment was captured before.
func (s *Service) capture(ctx context.Context, o *order.Order, paymentID string) (*order.Order, bool, error) {
	key := "payment:" + paymentID
	first, err := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL)
	if err != nil {
		return nil, false, fmt.Errorf("idempotency check: %w", err)
	}
	if !first {
		return s.awaitCapture(ctx, o.ID, paymentID)
	}

	if err := o.MarkPaid(o.GatewayOrderID, paymentID, s.now()); err != nil {
		if errors.Is(err, order.ErrAlreadyPaid) {
			return o, true, nil
		}
		s.release(ctx, key)
		return nil, false, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		s.release(ctx, key)
		return nil, false, fmt.Errorf("save order: %w", err)
	}

	s.logger.Info("order paid",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("gateway_payment_id", paymentID),
		zap.String("total", o.Total.StringFixed(2)),
	)
	s.redeem(ctx, o)
	s.publish(ctx, o)
	s.afterPayment(ctx, checkout.UserOwner(o.UserID))
	if s.metrics != nil {
		s.metrics.RecordOrderPaid(ctx, o.Gateway, o.Total)
	}
	return o, false, nil
}

// awaitCapture re-reads the order while another request holds the capture of
// paymentID. The order counts as already paid once that capture lands;
// ErrPaymentInProgress is returned if it does not within captureWait.
func (s *Service) awaitCapture(ctx context.Context, orderID uuid.UUID, paymentID string) (*order.Order, bool, error) {
	timeout := time.NewTimer(s.captureWait)
	defer timeout.Stop()
	ticker := time.NewTicker(capturePollInterval)
	defer ticker.Stop()

	for {
		current, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return nil, false, err
		}
		if current.IsPaid() && current.GatewayPaymentID == paymentID {
			return current, true, nil
		}
		select {
		case <-ctx.Done():
			return nil, false, ErrPaymentInProgress
		case <-timeout.C:
			return nil, false, ErrPaymentInProgress
		case <-ticker.C:
		}
	}
}

// redeem records coupon usage of a paid order
func (s *Service) redeem(ctx context.Context, o *order.Order) {
	if o.DiscountID == nil {
		return
	}
	logger := s.logger.With(zap.String("order_id", o.ID.String()), zap.String("discount_id", o.DiscountID.String()))

	redemption := &discount.Redemption{
		ID:         uuid.New(),
		DiscountID: *o.DiscountID,
		UserID:     o.UserID,
		OrderID:    o.ID,
		Amount:     o.DiscountAmount,
		RedeemedAt: s.now(),
	}
	if err := s.redemptions.Save(ctx, redemption); err != nil {
		logger.Error("failed to record coupon redemption", zap.Error(err))
		return
	}
	if err := s.discounts.IncrementUsage(ctx, *o.DiscountID); err != nil {
		logger.Error("failed to increment coupon usage", zap.Error(err))
		return
	}
	d, err := s.discounts.FindByID(ctx, *o.DiscountID)
	if err != nil {
		logger.Warn("failed to load redeemed coupon", zap.Error(err))
		return
	}
	d.RecordRedemption(o.UserID, o.ID, o.DiscountAmount)
	s.publishEvents(ctx, d.PullDomainEvents())
}

// afterPayment clears the owner's cart, coupon session and pending marker
func (s *Service) afterPayment(ctx context.Context, ownerID string) {
	if _, err := s.carts.Clear(ctx, ownerID); err != nil {
		s.logger.Warn("failed to clear cart after payment", zap.String("owner_id", ownerID), zap.Error(err))
	}
	if err := s.checkout.ClearSession(ctx, ownerID); err != nil {
		s.logger.Warn("failed to clear checkout session after payment", zap.String("owner_id", ownerID), zap.Error(err))
	}
	if err := s.pending.Delete(ctx, ownerID); err != nil {
		s.logger.Warn("failed to clear pending payment", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

// ReportFailure records a non-fatal failure the client hit during payment
func (s *Service) ReportFailure(ctx context.Context, buyer checkout.Buyer, orderID uuid.UUID, req PaymentFailureRequest) (*OrderResponse, error) {
	o, err := s.ownedOrder(ctx, buyer, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.RecordPaymentFailure(req.Kind, req.Reason); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	s.publish(ctx, o)
	s.recordFailure(ctx, req.Kind)
	s.logger.Info("payment failure reported",
		zap.String("order_id", o.ID.String()),
		zap.String("kind", string(req.Kind)),
		zap.Int("attempts", o.PaymentAttempts),
	)
	resp := ToOrderResponse(o)
	return &resp, nil
}

// Pending returns the owner's pending payment marker, or nil
func (s *Service) Pending(ctx context.Context, buyer checkout.Buyer) (*order.PendingPayment, error) {
	return s.pending.Get(ctx, buyer.OwnerID)
}

// MyOrders lists the buyer's orders
func (s *Service) MyOrders(ctx context.Context, buyer checkout.Buyer, filter ListFilter) (*shared.Paginated[OrderResponse], error) {
	if buyer.IsGuest() {
		return nil, shared.ErrUnauthorized
	}
	f := filter.toDomain()
	f.Filters["user_id"] = buyer.UserID
	return s.list(ctx, f)
}

// Get returns one of the buyer's orders
func (s *Service) Get(ctx context.Context, buyer checkout.Buyer, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.ownedOrder(ctx, buyer, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

func (s *Service) list(ctx context.Context, filter shared.Filter) (*shared.Paginated[OrderResponse], error) {
	orders, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToOrderResponses(orders), total, filter.Page, filter.PageSize)
	return &page, nil
}

// ownedOrder loads an order and hides orders of other users as not found
func (s *Service) ownedOrder(ctx context.Context, buyer checkout.Buyer, id uuid.UUID) (*order.Order, error) {
	if buyer.IsGuest() {
		return nil, shared.ErrUnauthorized
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != buyer.UserID {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (s *Service) verified(o *order.Order, alreadyPaid bool) *VerifyPaymentResponse {
	return &VerifyPaymentResponse{
		Order:                ToOrderResponse(o),
		AlreadyPaid:          alreadyPaid,
		RedirectAfterSeconds: s.redirectAfter,
	}
}

func (s *Service) publish(ctx context.Context, o *order.Order) {
	s.publishEvents(ctx, o.PullDomainEvents())
}

func (s *Service) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.bus == nil || len(events) == 0 {
		return
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events", zap.Error(err))
	}
}

func (s *Service) recordFailure(ctx context.Context, kind order.FailureKind) {
	if s.metrics != nil {
		s.metrics.RecordPaymentFailure(ctx, string(kind))
	}
}

func (s *Service) release(ctx context.Context, key string) {
	if err := s.idempotency.Release(ctx, key); err != nil {
		s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}
