package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productShelf struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*catalog.Product
}

func (s *productShelf) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	}
	return p, nil
}

func newShelfProduct(t *testing.T, shelf *productShelf, stock int) (*catalog.Product, *catalog.Variant) {
	t.Helper()
	p, err := catalog.NewProduct("Block Print Kurta", "", uuid.New(), nil, valueobject.NewMoneyINRFromInt(1499))
	require.NoError(t, err)
	v, err := p.AddVariant("KURTA-M", "Indigo", "M", decimal.Zero, stock)
	require.NoError(t, err)
	shelf.mu.Lock()
	shelf.products[p.ID] = p
	shelf.mu.Unlock()
	return p, v
}

type cartFixture struct {
	store   *cartapp.Store
	handler *CartHandler
	shelf   *productShelf
}

func newCartFixture(opts ...CartHandlerOption) *cartFixture {
	shelf := &productShelf{products: map[uuid.UUID]*catalog.Product{}}
	store := cartapp.NewStore(cache.NewInMemoryCartRepository(time.Hour), shelf, nil)
	return &cartFixture{store: store, handler: NewCartHandler(store, opts...), shelf: shelf}
}

func (f *cartFixture) engine(mw ...gin.HandlerFunc) *gin.Engine {
	engine := newEngine(mw...)
	engine.GET("/cart", f.handler.Get)
	engine.DELETE("/cart", f.handler.Clear)
	engine.POST("/cart/items", f.handler.Add)
	engine.DELETE("/cart/items", f.handler.Remove)
	engine.POST("/cart/items/increase", f.handler.Increase)
	engine.POST("/cart/items/decrease", f.handler.Decrease)
	engine.POST("/cart/merge", f.handler.Merge)
	engine.GET("/cart/stream", f.handler.Stream)
	return engine
}

func guest(session string) map[string]string {
	return map[string]string{middleware.CartSessionHeader: session}
}

func TestCartHandler_GuestLifecycle(t *testing.T) {
	f := newCartFixture()
	engine := f.engine()
	p, v := newShelfProduct(t, f.shelf, 3)
	line := map[string]any{"product_id": p.ID, "variant_id": v.ID}

	w := perform(engine, http.MethodPost, "/cart/items", jsonBody(t, map[string]any{
		"product_id": p.ID, "variant_id": v.ID, "quantity": 2,
	}), guest("sess-1"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp cartapp.CartResponse
	decodeData(t, w, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.Equal(t, "Block Print Kurta", resp.Items[0].Name)
	assert.True(t, decimal.NewFromInt(2998).Equal(resp.Subtotal), resp.Subtotal.String())

	w = perform(engine, http.MethodPost, "/cart/items/increase", jsonBody(t, line), guest("sess-1"))
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &resp)
	assert.Equal(t, 3, resp.ItemCount)

	// stock is 3
	w = perform(engine, http.MethodPost, "/cart/items/increase", jsonBody(t, line), guest("sess-1"))
	decodeData(t, w, &resp)
	assert.Equal(t, 3, resp.ItemCount)

	w = perform(engine, http.MethodPost, "/cart/items/decrease", jsonBody(t, line), guest("sess-1"))
	decodeData(t, w, &resp)
	assert.Equal(t, 2, resp.ItemCount)

	other := perform(engine, http.MethodGet, "/cart", nil, guest("sess-2"))
	decodeData(t, other, &resp)
	assert.Empty(t, resp.Items, "sessions do not share carts")

	w = perform(engine, http.MethodDelete, "/cart/items", jsonBody(t, line), guest("sess-1"))
	decodeData(t, w, &resp)
	assert.Empty(t, resp.Items)

	w = perform(engine, http.MethodDelete, "/cart/items", jsonBody(t, line), guest("sess-1"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CART_ITEM_NOT_FOUND", decode(t, w).Error.Code)
}

func TestCartHandler_Validation(t *testing.T) {
	f := newCartFixture()
	engine := f.engine()

	t.Run("no session and no user", func(t *testing.T) {
		w := perform(engine, http.MethodGet, "/cart", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "CART_SESSION_REQUIRED", decode(t, w).Error.Code)
	})

	t.Run("missing variant", func(t *testing.T) {
		w := perform(engine, http.MethodPost, "/cart/items", jsonBody(t, map[string]any{"product_id": uuid.New()}), guest("s"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		w := perform(engine, http.MethodPost, "/cart/items", jsonBody(t, map[string]any{
			"product_id": uuid.New(), "variant_id": uuid.New(),
		}), guest("s"))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCartHandler_Merge(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	p, v := newShelfProduct(t, f.shelf, 10)

	guestEngine := f.engine()
	w := perform(guestEngine, http.MethodPost, "/cart/items", jsonBody(t, map[string]any{
		"product_id": p.ID, "variant_id": v.ID, "quantity": 2,
	}), guest("before-login"))
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("guests cannot merge", func(t *testing.T) {
		w := perform(guestEngine, http.MethodPost, "/cart/merge", jsonBody(t, map[string]any{"guest_session": "before-login"}), nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	userEngine := f.engine(asUser(userID))
	w = perform(userEngine, http.MethodPost, "/cart/merge", jsonBody(t, map[string]any{"guest_session": "before-login"}), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var merged cartapp.CartResponse
	decodeData(t, w, &merged)
	assert.Equal(t, 2, merged.ItemCount)

	w = perform(guestEngine, http.MethodGet, "/cart", nil, guest("before-login"))
	var left cartapp.CartResponse
	decodeData(t, w, &left)
	assert.Empty(t, left.Items, "guest cart is emptied by the merge")

	w = perform(userEngine, http.MethodGet, "/cart", nil, nil)
	decodeData(t, w, &merged)
	assert.Equal(t, 2, merged.ItemCount)
}

// readEvent returns the next SSE event name and data line
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if name != "" {
				return name, data
			}
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestCartHandler_Stream(t *testing.T) {
	f := newCartFixture(WithStreamHeartbeat(50*time.Millisecond), WithMaxStreams(1))
	srv := httptest.NewServer(f.engine())
	defer srv.Close()
	p, v := newShelfProduct(t, f.shelf, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/cart/stream", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.CartSessionHeader, "watcher")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := bufio.NewReader(resp.Body)
	name, data := readEvent(t, events)
	assert.Equal(t, "cart", name)
	assert.Contains(t, data, `"item_count":0`)

	t.Run("second stream is refused over the cap", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/cart/stream", nil)
		r.Header.Set(middleware.CartSessionHeader, "other")
		w := httptest.NewRecorder()
		f.engine().ServeHTTP(w, r)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	// changes to another owner are not delivered
	_, err = f.store.Add(ctx, "guest:someone-else", cartapp.AddItemRequest{ProductID: p.ID, VariantID: v.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.store.Add(ctx, "guest:watcher", cartapp.AddItemRequest{ProductID: p.ID, VariantID: v.ID, Quantity: 4})
	require.NoError(t, err)

	for {
		name, data = readEvent(t, events)
		if name == "heartbeat" {
			continue
		}
		break
	}
	assert.Equal(t, "cart", name)
	assert.Contains(t, data, `"item_count":4`)

	for {
		name, _ = readEvent(t, events)
		if name == "heartbeat" {
			break
		}
	}
}

// gatedCarts holds the first load of an owner until released, handing out the
// cart as it was before the gate
type gatedCarts struct {
	cart.Repository
	owner    string
	once     sync.Once
	loaded   chan struct{}
	released chan struct{}
}

func (g *gatedCarts) Load(ctx context.Context, ownerID string) (*cart.Cart, error) {
	c, err := g.Repository.Load(ctx, ownerID)
	if ownerID != g.owner {
		return c, err
	}
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.loaded)
		<-g.released
	}
	return c, err
}

func TestCartHandler_StreamDeliversChangeDuringSnapshot(t *testing.T) {
	shelf := &productShelf{products: make(map[uuid.UUID]*catalog.Product)}
	repo := &gatedCarts{
		Repository: cache.NewInMemoryCartRepository(time.Hour),
		owner:      "guest:racer",
		loaded:     make(chan struct{}),
		released:   make(chan struct{}),
	}
	store := cartapp.NewStore(repo, shelf, nil)
	f := &cartFixture{store: store, handler: NewCartHandler(store, WithStreamHeartbeat(50*time.Millisecond)), shelf: shelf}
	srv := httptest.NewServer(f.engine())
	defer srv.Close()
	p, v := newShelfProduct(t, shelf, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/cart/stream", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.CartSessionHeader, "racer")

	type result struct {
		resp *http.Response
		err  error
	}
	opened := make(chan result, 1)
	go func() {
		resp, err := srv.Client().Do(req)
		opened <- result{resp, err}
	}()

	// the stream is reading its snapshot; change the cart underneath it
	select {
	case <-repo.loaded:
	case <-ctx.Done():
		t.Fatal("stream never read the cart")
	}
	_, err = store.Add(ctx, "guest:racer", cartapp.AddItemRequest{ProductID: p.ID, VariantID: v.ID, Quantity: 2})
	require.NoError(t, err)
	close(repo.released)

	r := <-opened
	require.NoError(t, r.err)
	defer r.resp.Body.Close()
	require.Equal(t, http.StatusOK, r.resp.StatusCode)

	events := bufio.NewReader(r.resp.Body)
	name, data := readEvent(t, events)
	assert.Equal(t, "cart", name)
	assert.Contains(t, data, `"item_count":0`)

	for i := 0; i < 5; i++ {
		name, data = readEvent(t, events)
		if name == "cart" {
			break
		}
	}
	assert.Equal(t, "cart", name)
	assert.Contains(t, data, `"item_count":2`)
}
