package handler

import (
	"github.com/gin-gonic/gin"
	discountapp "github.com/storefront/backend/internal/application/discount"
)

// DiscountHandler handles coupon administration
type DiscountHandler struct {
	BaseHandler
	discountService *discountapp.Service
}

// NewDiscountHandler creates a new DiscountHandler
func NewDiscountHandler(discountService *discountapp.Service) *DiscountHandler {
	return &DiscountHandler{discountService: discountService}
}

// List godoc
// @Summary      List discounts
// @Tags         admin-discounts
// @Produce      json
// @Param        search query string false "Search in name and description"
// @Param        status query string false "ALL, ACTIVE, INACTIVE or EXPIRED"
// @Param        discount_type query string false "Discount type"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10)
// @Param        sort_by query string false "Sort field"
// @Param        sort_order query string false "asc or desc"
// @Success      200 {object} APIResponse[[]discountapp.DiscountResponse]
// @Security     BearerAuth
// @Router       /admin/discounts [get]
func (h *DiscountHandler) List(c *gin.Context) {
	var filter discountapp.ListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.discountService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// GetByID godoc
// @Summary      Get discount
// @Tags         admin-discounts
// @Produce      json
// @Param        id path string true "Discount ID"
// @Success      200 {object} APIResponse[discountapp.DiscountResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/discounts/{id} [get]
func (h *DiscountHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "discount ID")
		return
	}
	d, err := h.discountService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// Create godoc
// @Summary      Create discount
// @Tags         admin-discounts
// @Accept       json
// @Produce      json
// @Param        request body discountapp.DiscountRequest true "Discount"
// @Success      201 {object} APIResponse[discountapp.DiscountResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/discounts [post]
func (h *DiscountHandler) Create(c *gin.Context) {
	var req discountapp.DiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	d, err := h.discountService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, d)
}

// Update godoc
// @Summary      Update discount
// @Tags         admin-discounts
// @Accept       json
// @Produce      json
// @Param        id path string true "Discount ID"
// @Param        request body discountapp.DiscountRequest true "Discount"
// @Success      200 {object} APIResponse[discountapp.DiscountResponse]
// @Security     BearerAuth
// @Router       /admin/discounts/{id} [put]
func (h *DiscountHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "discount ID")
		return
	}
	var req discountapp.DiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	d, err := h.discountService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// ToggleStatus godoc
// @Summary      Toggle discount status
// @Tags         admin-discounts
// @Produce      json
// @Param        id path string true "Discount ID"
// @Success      200 {object} APIResponse[discountapp.DiscountResponse]
// @Security     BearerAuth
// @Router       /admin/discounts/{id}/status [patch]
func (h *DiscountHandler) ToggleStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "discount ID")
		return
	}
	d, err := h.discountService.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// Delete godoc
// @Summary      Delete discount
// @Tags         admin-discounts
// @Param        id path string true "Discount ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/discounts/{id} [delete]
func (h *DiscountHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "discount ID")
		return
	}
	if err := h.discountService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
