package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// imageFormField is the multipart field carrying an uploaded product image
const imageFormField = "image"

// ProductHandler serves the public catalog and product administration
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListPublic godoc
// @Summary      List products
// @Description  Active products with search, category, subcategory and stock filters
// @Tags         products
// @Produce      json
// @Param        search query string false "Search term"
// @Param        category_id query string false "Category ID"
// @Param        subcategory_id query string false "Subcategory ID"
// @Param        in_stock query bool false "Only products with stock"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10)
// @Param        sort_by query string false "Sort field"
// @Param        sort_order query string false "asc or desc"
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Router       /products [get]
func (h *ProductHandler) ListPublic(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.productService.ListPublic(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Suggestions godoc
// @Summary      Search suggestions
// @Description  Product name suggestions for a partial query. Slow lookups yield an empty list.
// @Tags         products
// @Produce      json
// @Param        q query string true "Partial query"
// @Param        limit query int false "Maximum suggestions"
// @Success      200 {object} APIResponse[[]catalogapp.SuggestionResponse]
// @Router       /products/suggestions [get]
func (h *ProductHandler) Suggestions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	suggestions, err := h.productService.Suggestions(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, suggestions)
}

// GetPublic godoc
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) GetPublic(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "product ID")
		return
	}
	product, err := h.productService.GetPublic(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List godoc
// @Summary      List products (admin)
// @Description  Every product, active or not, with the admin list filters
// @Tags         admin-products
// @Produce      json
// @Param        search query string false "Search term"
// @Param        is_active query bool false "Active flag"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10)
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Security     BearerAuth
// @Router       /admin/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// GetByID godoc
// @Summary      Get product (admin)
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "product ID")
		return
	}
	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @Summary      Create product
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.ProductRequest true "Product"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Update product
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalogapp.ProductRequest true "Product"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Security     BearerAuth
// @Router       /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "product ID")
		return
	}
	var req catalogapp.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// AddVariant godoc
// @Summary      Add a variant
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalogapp.VariantInput true "Variant"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/variants [post]
func (h *ProductHandler) AddVariant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "product ID")
		return
	}
	var req catalogapp.VariantInput
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.productService.AddVariant(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// SetVariantStock godoc
// @Summary      Set variant stock
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        variantId path string true "Variant ID"
// @Param        request body catalogapp.VariantStockRequest true "Stock"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Security     BearerAuth
// @Router       /admin/products/{id}/variants/{variantId}/stock [put]
func (h *ProductHandler) SetVariantStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "product ID")
		return
	}
	variantID, ok := parseID(c, "variantId")
	if !ok {
		h.InvalidID(c, "variant ID")
		return
	}
	var req catalogapp.VariantStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.productService.SetVariantStock(c.Request.Context(), id, variantID, *req.Stock)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ToggleStatus godoc
// @Summary      Toggle product status
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Security     BearerAuth
// @Router       /admin/products/{id}/status [patch]
func (h *ProductHandler) ToggleStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "product ID")
		return
	}
	product, err := h.productService.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete product
// @Tags         admin-products
// @Param        id path string true "Product ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "product ID")
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UploadImage godoc
// @Summary      Upload a variant image
// @Description  Multipart upload; the image is stored in object storage and attached to the variant
// @Tags         admin-products
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        variant_id formData string true "Variant ID"
// @Param        image formData file true "Image file"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/images [post]
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "product ID")
		return
	}
	variantID, err := uuid.Parse(c.PostForm("variant_id"))
	if err != nil {
		h.InvalidID(c, "variant ID")
		return
	}
	header, err := c.FormFile(imageFormField)
	if err != nil {
		h.BadRequest(c, "Image file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Image file cannot be read")
		return
	}
	defer file.Close()

	upload := catalogapp.ImageUpload{
		VariantID:   variantID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	product, err := h.productService.UploadImage(c.Request.Context(), id, upload, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}
