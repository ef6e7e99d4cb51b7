package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// MaxImageSize bounds a single uploaded product image
const MaxImageSize = 5 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// ErrUnsupportedImage is returned for uploads that are not a supported image
var ErrUnsupportedImage = shared.NewDomainError("INVALID_IMAGE", "Images must be JPEG, PNG, WebP or GIF and at most 5 MB")

// ImageStorage stores uploaded product images and returns their public URL
type ImageStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, keyOrURL string) error
}

// ProductServiceConfig wires a ProductService
type ProductServiceConfig struct {
	Products          catalog.ProductRepository
	Categories        catalog.CategoryRepository
	Images            ImageStorage
	EventPublisher    shared.EventPublisher
	Logger            *zap.Logger
	SuggestionTimeout time.Duration
	SuggestionLimit   int
}

// ProductService handles product-related business operations
type ProductService struct {
	products          catalog.ProductRepository
	categories        catalog.CategoryRepository
	images            ImageStorage
	bus               shared.EventPublisher
	logger            *zap.Logger
	suggestionTimeout time.Duration
	suggestionLimit   int
}

// NewProductService creates a new ProductService
func NewProductService(cfg ProductServiceConfig) *ProductService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.SuggestionTimeout <= 0 {
		cfg.SuggestionTimeout = 5 * time.Second
	}
	if cfg.SuggestionLimit <= 0 {
		cfg.SuggestionLimit = 8
	}
	return &ProductService{
		products:          cfg.Products,
		categories:        cfg.Categories,
		images:            cfg.Images,
		bus:               cfg.EventPublisher,
		logger:            cfg.Logger,
		suggestionTimeout: cfg.SuggestionTimeout,
		suggestionLimit:   cfg.SuggestionLimit,
	}
}

// ListPublic returns a page of active products
func (s *ProductService) ListPublic(ctx context.Context, f ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	active := true
	f.IsActive = &active
	return s.list(ctx, f.toDomain())
}

// List returns a page of products for administrators
func (s *ProductService) List(ctx context.Context, f ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	return s.list(ctx, f.toDomain())
}

func (s *ProductService) list(ctx context.Context, filter shared.Filter) (*shared.Paginated[ProductResponse], error) {
	products, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = ToProductResponse(&products[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetPublic returns an active product. Inactive products are reported as not found.
func (s *ProductService) GetPublic(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// GetByID returns any product
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// Suggestions returns name suggestions for a partial query. The lookup is bounded
// by the suggestion timeout; a lookup that runs out of time yields no suggestions.
func (s *ProductService) Suggestions(ctx context.Context, query string, limit int) ([]SuggestionResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SuggestionResponse{}, nil
	}
	if limit <= 0 || limit > s.suggestionLimit {
		limit = s.suggestionLimit
	}

	ctx, cancel := context.WithTimeout(ctx, s.suggestionTimeout)
	defer cancel()

	products, err := s.products.Suggest(ctx, query, limit)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.logger.Warn("product suggestions timed out",
				zap.String("query", query),
				zap.Duration("timeout", s.suggestionTimeout),
			)
			return []SuggestionResponse{}, nil
		}
		return nil, err
	}

	out := make([]SuggestionResponse, len(products))
	for i, p := range products {
		out[i] = SuggestionResponse{ID: p.ID, Name: p.Name, Slug: p.Slug}
	}
	return out, nil
}

// Create creates a product with its initial variants
func (s *ProductService) Create(ctx context.Context, req ProductRequest) (*ProductResponse, error) {
	if err := s.checkCategory(ctx, req.CategoryID, req.SubcategoryID); err != nil {
		return nil, err
	}
	p, err := catalog.NewProduct(req.Name, req.Description, req.CategoryID, req.SubcategoryID, valueobject.NewMoneyINR(req.BasePrice))
	if err != nil {
		return nil, err
	}
	for _, v := range req.Variants {
		if _, err := p.AddVariant(v.SKU, v.Color, v.Size, variantPrice(v), v.Stock); err != nil {
			return nil, err
		}
	}
	if err := s.products.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.publish(ctx, p)

	s.logger.Info("product created",
		zap.String("product_id", p.ID.String()),
		zap.String("name", p.Name),
		zap.Int("variants", len(p.Variants)),
	)
	resp := ToProductResponse(p)
	return &resp, nil
}

// Update replaces a product's basic information and appends any new variants
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID, req.SubcategoryID); err != nil {
		return nil, err
	}
	if err := p.Update(req.Name, req.Description, req.CategoryID, req.SubcategoryID, valueobject.NewMoneyINR(req.BasePrice)); err != nil {
		return nil, err
	}
	for _, v := range req.Variants {
		if _, err := p.AddVariant(v.SKU, v.Color, v.Size, variantPrice(v), v.Stock); err != nil {
			return nil, err
		}
	}
	if err := s.products.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.publish(ctx, p)

	resp := ToProductResponse(p)
	return &resp, nil
}

// AddVariant adds one variant to a product
func (s *ProductService) AddVariant(ctx context.Context, id uuid.UUID, req VariantInput) (*ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := p.AddVariant(req.SKU, req.Color, req.Size, variantPrice(req), req.Stock); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// SetVariantStock overwrites the stock of one variant
func (s *ProductService) SetVariantStock(ctx context.Context, id, variantID uuid.UUID, stock int) (*ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.SetVariantStock(variantID, stock); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.publish(ctx, p)

	s.logger.Info("variant stock updated",
		zap.String("product_id", id.String()),
		zap.String("variant_id", variantID.String()),
		zap.Int("stock", stock),
	)
	resp := ToProductResponse(p)
	return &resp, nil
}

// ToggleStatus shows or hides a product in the storefront
func (s *ProductService) ToggleStatus(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ToggleStatus()
	if err := s.products.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.publish(ctx, p)

	resp := ToProductResponse(p)
	return &resp, nil
}

// Delete removes a product and its variants
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.String("product_id", id.String()))
	return nil
}

// UploadImage stores an image in object storage and attaches it to a variant.
// The stored object is removed again if the product cannot be saved.
func (s *ProductService) UploadImage(ctx context.Context, id uuid.UUID, upload ImageUpload, body io.Reader) (*ProductResponse, error) {
	if s.images == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Image storage is not configured")
	}
	ext, ok := imageExtension(upload)
	if !ok || upload.Size <= 0 || upload.Size > MaxImageSize {
		return nil, ErrUnsupportedImage
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := p.Variant(upload.VariantID); err != nil {
		return nil, err
	}

	key := storage.ImageKey(p.ID.String(), uuid.NewString(), ext)
	url, err := s.images.Put(ctx, key, io.LimitReader(body, MaxImageSize), upload.Size, upload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	if err := p.AddVariantImage(upload.VariantID, url); err != nil {
		s.discardImage(ctx, url)
		return nil, err
	}
	if err := s.products.Save(ctx, p); err != nil {
		s.discardImage(ctx, url)
		return nil, fmt.Errorf("save product: %w", err)
	}

	s.logger.Info("product image uploaded",
		zap.String("product_id", p.ID.String()),
		zap.String("variant_id", upload.VariantID.String()),
		zap.String("url", url),
	)
	resp := ToProductResponse(p)
	return &resp, nil
}

func (s *ProductService) discardImage(ctx context.Context, url string) {
	if err := s.images.Delete(ctx, url); err != nil {
		s.logger.Warn("failed to remove orphaned image", zap.String("url", url), zap.Error(err))
	}
}

func (s *ProductService) checkCategory(ctx context.Context, categoryID uuid.UUID, subcategoryID *uuid.UUID) error {
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	if subcategoryID == nil {
		return nil
	}
	sub, err := s.categories.FindSubcategoryByID(ctx, *subcategoryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_SUBCATEGORY", "Subcategory not found")
		}
		return err
	}
	if sub.CategoryID != categoryID {
		return shared.NewDomainError("INVALID_SUBCATEGORY", "Subcategory does not belong to the category")
	}
	return nil
}

func (s *ProductService) publish(ctx context.Context, p *catalog.Product) {
	events := p.PullDomainEvents()
	if s.bus == nil || len(events) == 0 {
		return
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish product events", zap.Error(err))
	}
}

func variantPrice(v VariantInput) decimal.Decimal {
	if v.Price != nil {
		return *v.Price
	}
	return decimal.Zero
}

func imageExtension(upload ImageUpload) (string, bool) {
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(upload.ContentType, ";", 2)[0]))
	ext, ok := allowedImageTypes[contentType]
	return ext, ok
}
