package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/content"
)

// FAQHandler serves FAQs publicly and to administrators
type FAQHandler struct {
	BaseHandler
	faqService *content.FAQService
}

// NewFAQHandler creates a new FAQHandler
func NewFAQHandler(faqService *content.FAQService) *FAQHandler {
	return &FAQHandler{faqService: faqService}
}

// ListPublic godoc
// @Summary      List FAQs
// @Tags         faqs
// @Produce      json
// @Param        category query string false "FAQ category"
// @Param        search query string false "Search term"
// @Success      200 {object} APIResponse[[]content.FAQResponse]
// @Router       /faqs [get]
func (h *FAQHandler) ListPublic(c *gin.Context) {
	var filter content.FAQListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.faqService.ListPublic(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// List godoc
// @Summary      List FAQs (admin)
// @Tags         admin-faqs
// @Produce      json
// @Param        search query string false "Search term"
// @Param        category query string false "FAQ category"
// @Param        is_active query bool false "Active flag"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10)
// @Success      200 {object} APIResponse[[]content.FAQResponse]
// @Security     BearerAuth
// @Router       /admin/faqs [get]
func (h *FAQHandler) List(c *gin.Context) {
	var filter content.FAQListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.faqService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// GetByID godoc
// @Summary      Get FAQ
// @Tags         admin-faqs
// @Produce      json
// @Param        id path string true "FAQ ID"
// @Success      200 {object} APIResponse[content.FAQResponse]
// @Security     BearerAuth
// @Router       /admin/faqs/{id} [get]
func (h *FAQHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "FAQ ID")
		return
	}
	faq, err := h.faqService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, faq)
}

// Create godoc
// @Summary      Create FAQ
// @Tags         admin-faqs
// @Accept       json
// @Produce      json
// @Param        request body content.FAQRequest true "FAQ"
// @Success      201 {object} APIResponse[content.FAQResponse]
// @Security     BearerAuth
// @Router       /admin/faqs [post]
func (h *FAQHandler) Create(c *gin.Context) {
	var req content.FAQRequest
	if !h.BindJSON(c, &req) {
		return
	}
	faq, err := h.faqService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, faq)
}

// Update godoc
// @Summary      Update FAQ
// @Tags         admin-faqs
// @Accept       json
// @Produce      json
// @Param        id path string true "FAQ ID"
// @Param        request body content.FAQRequest true "FAQ"
// @Success      200 {object} APIResponse[content.FAQResponse]
// @Security     BearerAuth
// @Router       /admin/faqs/{id} [put]
func (h *FAQHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "FAQ ID")
		return
	}
	var req content.FAQRequest
	if !h.BindJSON(c, &req) {
		return
	}
	faq, err := h.faqService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, faq)
}

// ToggleStatus godoc
// @Summary      Toggle FAQ status
// @Tags         admin-faqs
// @Produce      json
// @Param        id path string true "FAQ ID"
// @Success      200 {object} APIResponse[content.FAQResponse]
// @Security     BearerAuth
// @Router       /admin/faqs/{id}/status [patch]
func (h *FAQHandler) ToggleStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "FAQ ID")
		return
	}
	faq, err := h.faqService.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, faq)
}

// Delete godoc
// @Summary      Delete FAQ
// @Tags         admin-faqs
// @Param        id path string true "FAQ ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/faqs/{id} [delete]
func (h *FAQHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "FAQ ID")
		return
	}
	if err := h.faqService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
