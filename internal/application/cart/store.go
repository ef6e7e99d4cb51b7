// Package cart implements the observable cart store. It is the single source of
// truth for carts: handlers mutate carts only through Store, and every
// successful mutation is pushed to subscribers, the event bus and the relay.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// ProductReader resolves catalog data for new cart lines
type ProductReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// Metrics records cart activity
type Metrics interface {
	RecordCartMutation(ctx context.Context, op string)
}

// Change is delivered to subscribers after a cart changed
type Change struct {
	OwnerID string
	Cart    *cart.Cart
	Op      cart.Op
}

// Store serializes cart mutations per owner and notifies observers
type Store struct {
	repo     cart.Repository
	products ProductReader
	bus      shared.EventPublisher
	relay    cart.Relay
	metrics  Metrics
	logger   *zap.Logger
	origin   string
	locks    *ownerLocks

	subMu   sync.RWMutex
	subs    map[int]func(Change)
	nextSub int
}

// Option configures a Store
type Option func(*Store)

// WithEventPublisher publishes a CartUpdated event after every mutation
func WithEventPublisher(bus shared.EventPublisher) Option {
	return func(s *Store) { s.bus = bus }
}

// WithRelay announces mutations to other instances and lets Run receive theirs
func WithRelay(relay cart.Relay) Option {
	return func(s *Store) { s.relay = relay }
}

// WithMetrics sets the cart mutation recorder
func WithMetrics(m Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore creates a Store over repo
func NewStore(repo cart.Repository, products ProductReader, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		repo:     repo,
		products: products,
		logger:   logger,
		origin:   uuid.NewString(),
		locks:    newOwnerLocks(),
		subs:     make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for every cart change and returns a function that
// removes the subscription. fn runs on the mutating goroutine and must not block.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// Get returns the owner's cart
func (s *Store) Get(ctx context.Context, ownerID string) (*cart.Cart, error) {
	if ownerID == "" {
		return nil, cart.ErrEmptyOwner
	}
	c, err := s.repo.Load(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return c, nil
}

// Add resolves the variant from the catalog and adds it to the cart
func (s *Store) Add(ctx context.Context, ownerID string, req AddItemRequest) (*cart.Cart, error) {
	item, err := s.resolveItem(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, ownerID, cart.OpAdd, func(c *cart.Cart) error {
		return c.Add(item)
	})
}

// Increase adds one unit to a line
func (s *Store) Increase(ctx context.Context, ownerID string, key cart.Key) (*cart.Cart, error) {
	return s.mutate(ctx, ownerID, cart.OpIncrease, func(c *cart.Cart) error {
		return c.Increase(key)
	})
}

// Decrease removes one unit from a line, dropping the line at zero
func (s *Store) Decrease(ctx context.Context, ownerID string, key cart.Key) (*cart.Cart, error) {
	return s.mutate(ctx, ownerID, cart.OpDecrease, func(c *cart.Cart) error {
		return c.Decrease(key)
	})
}

// Remove deletes a line
func (s *Store) Remove(ctx context.Context, ownerID string, key cart.Key) (*cart.Cart, error) {
	return s.mutate(ctx, ownerID, cart.OpRemove, func(c *cart.Cart) error {
		return c.Remove(key)
	})
}

// Clear empties the cart
func (s *Store) Clear(ctx context.Context, ownerID string) (*cart.Cart, error) {
	return s.mutate(ctx, ownerID, cart.OpClear, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
}

// Merge folds the guest cart into the user's cart and deletes the guest cart
func (s *Store) Merge(ctx context.Context, guestOwner, userOwner string) (*cart.Cart, error) {
	if guestOwner == "" || userOwner == "" {
		return nil, cart.ErrEmptyOwner
	}
	if guestOwner == userOwner {
		return s.Get(ctx, userOwner)
	}

	first, second := guestOwner, userOwner
	if second < first {
		first, second = second, first
	}
	unlockFirst := s.locks.lock(first)
	defer unlockFirst()
	unlockSecond := s.locks.lock(second)
	defer unlockSecond()

	guest, err := s.repo.Load(ctx, guestOwner)
	if err != nil {
		return nil, fmt.Errorf("load guest cart: %w", err)
	}
	target, err := s.repo.Load(ctx, userOwner)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if guest.IsEmpty() {
		return target, nil
	}

	target.Merge(guest)
	if err := s.repo.Save(ctx, target); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	if err := s.repo.Delete(ctx, guestOwner); err != nil {
		s.logger.Warn("failed to delete merged guest cart", zap.String("owner_id", guestOwner), zap.Error(err))
	}

	s.logger.Info("guest cart merged",
		zap.String("owner_id", userOwner),
		zap.Int("merged_lines", len(guest.Items)),
		zap.Int("item_count", target.ItemCount()),
	)
	s.changed(ctx, target, cart.OpMerge)
	emptied, _ := cart.New(guestOwner)
	s.notify(Change{OwnerID: guestOwner, Cart: emptied, Op: cart.OpMerge})
	return target, nil
}

// Run receives change notices from other instances and forwards them to local
// subscribers. It blocks until ctx is done.
func (s *Store) Run(ctx context.Context) error {
	if s.relay == nil {
		<-ctx.Done()
		return nil
	}
	err := s.relay.Listen(ctx, func(n cart.Notice) {
		if n.Origin == s.origin {
			return
		}
		c, err := s.repo.Load(ctx, n.OwnerID)
		if err != nil {
			s.logger.Warn("failed to load cart for remote notice", zap.String("owner_id", n.OwnerID), zap.Error(err))
			return
		}
		s.notify(Change{OwnerID: n.OwnerID, Cart: c, Op: n.Op})
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *Store) mutate(ctx context.Context, ownerID string, op cart.Op, fn func(*cart.Cart) error) (*cart.Cart, error) {
	if ownerID == "" {
		return nil, cart.ErrEmptyOwner
	}
	unlock := s.locks.lock(ownerID)
	defer unlock()

	c, err := s.repo.Load(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	s.changed(ctx, c, op)
	return c, nil
}

func (s *Store) changed(ctx context.Context, c *cart.Cart, op cart.Op) {
	if s.metrics != nil {
		s.metrics.RecordCartMutation(ctx, string(op))
	}
	s.notify(Change{OwnerID: c.OwnerID, Cart: c, Op: op})

	if s.bus != nil {
		if err := s.bus.Publish(ctx, cart.NewUpdatedEvent(c, op)); err != nil {
			s.logger.Warn("failed to publish cart event", zap.String("owner_id", c.OwnerID), zap.Error(err))
		}
	}
	if s.relay != nil {
		notice := cart.Notice{OwnerID: c.OwnerID, Version: c.Version, Op: op, Origin: s.origin}
		if err := s.relay.Publish(ctx, notice); err != nil {
			s.logger.Warn("failed to relay cart notice", zap.String("owner_id", c.OwnerID), zap.Error(err))
		}
	}
}

func (s *Store) notify(change Change) {
	s.subMu.RLock()
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(Change{OwnerID: change.OwnerID, Cart: snapshot(change.Cart), Op: change.Op})
	}
}

func snapshot(c *cart.Cart) *cart.Cart {
	cp := *c
	cp.Items = append([]cart.Item(nil), c.Items...)
	return &cp
}

func (s *Store) resolveItem(ctx context.Context, req AddItemRequest) (cart.Item, error) {
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return cart.Item{}, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return cart.Item{}, err
	}
	if !product.IsActive {
		return cart.Item{}, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available")
	}
	variant, err := product.Variant(req.VariantID)
	if err != nil {
		return cart.Item{}, err
	}

	price := variant.Price
	if !price.IsPositive() {
		price = product.BasePrice
	}
	return cart.Item{
		ProductID:     product.ID,
		VariantID:     variant.ID,
		CategoryID:    product.CategoryID,
		SubcategoryID: product.SubcategoryID,
		Name:          product.Name,
		Color:         variant.Color,
		Size:          variant.Size,
		Price:         valueobject.NewMoneyINR(price),
		Quantity:      req.Quantity,
		Stock:         variant.Stock,
		Image:         variant.PrimaryImage(),
	}, nil
}
