package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/content"
)

// InquiryHandler handles custom design inquiries
type InquiryHandler struct {
	BaseHandler
	inquiryService *content.InquiryService
}

// NewInquiryHandler creates a new InquiryHandler
func NewInquiryHandler(inquiryService *content.InquiryService) *InquiryHandler {
	return &InquiryHandler{inquiryService: inquiryService}
}

// Submit godoc
// @Summary      Submit a design inquiry
// @Description  Stores the inquiry and notifies the store mailbox
// @Tags         design-inquiries
// @Accept       json
// @Produce      json
// @Param        request body content.InquiryRequest true "Inquiry"
// @Success      201 {object} APIResponse[content.InquiryResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /design-inquiries [post]
func (h *InquiryHandler) Submit(c *gin.Context) {
	var req content.InquiryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	inquiry, err := h.inquiryService.Submit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inquiry)
}

// List godoc
// @Summary      List design inquiries
// @Tags         admin-design-inquiries
// @Produce      json
// @Param        search query string false "Name, email or description"
// @Param        status query string false "NEW, IN_REVIEW, QUOTED or CLOSED"
// @Param        product_type query string false "Product type"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10)
// @Success      200 {object} APIResponse[[]content.InquiryResponse]
// @Security     BearerAuth
// @Router       /admin/design-inquiries [get]
func (h *InquiryHandler) List(c *gin.Context) {
	var filter content.InquiryListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.inquiryService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// GetByID godoc
// @Summary      Get design inquiry
// @Tags         admin-design-inquiries
// @Produce      json
// @Param        id path string true "Inquiry ID"
// @Success      200 {object} APIResponse[content.InquiryResponse]
// @Security     BearerAuth
// @Router       /admin/design-inquiries/{id} [get]
func (h *InquiryHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "inquiry ID")
		return
	}
	inquiry, err := h.inquiryService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inquiry)
}

// UpdateStatus godoc
// @Summary      Change inquiry status
// @Tags         admin-design-inquiries
// @Accept       json
// @Produce      json
// @Param        id path string true "Inquiry ID"
// @Param        request body content.InquiryStatusRequest true "Status and notes"
// @Success      200 {object} APIResponse[content.InquiryResponse]
// @Security     BearerAuth
// @Router       /admin/design-inquiries/{id}/status [patch]
func (h *InquiryHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "inquiry ID")
		return
	}
	var req content.InquiryStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	inquiry, err := h.inquiryService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inquiry)
}

// Delete godoc
// @Summary      Delete design inquiry
// @Tags         admin-design-inquiries
// @Param        id path string true "Inquiry ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/design-inquiries/{id} [delete]
func (h *InquiryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "inquiry ID")
		return
	}
	if err := h.inquiryService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
