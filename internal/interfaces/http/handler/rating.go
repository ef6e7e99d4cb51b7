package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// RatingHandler handles product ratings
type RatingHandler struct {
	BaseHandler
	ratingService *catalogapp.RatingService
}

// NewRatingHandler creates a new RatingHandler
func NewRatingHandler(ratingService *catalogapp.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// Rate godoc
// @Summary      Rate a product
// @Description  One rating per customer and product; rating again replaces the earlier one
// @Tags         ratings
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.RatingRequest true "Rating"
// @Success      200 {object} APIResponse[catalogapp.RatingSummaryResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ratings [post]
func (h *RatingHandler) Rate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req catalogapp.RatingRequest
	if !h.BindJSON(c, &req) {
		return
	}
	summary, err := h.ratingService.Rate(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ListByProduct godoc
// @Summary      List product ratings
// @Tags         ratings
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10)
// @Success      200 {object} APIResponse[[]catalogapp.RatingResponse]
// @Router       /products/{id}/ratings [get]
func (h *RatingHandler) ListByProduct(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "product ID")
		return
	}
	var filter catalogapp.RatingListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	page, err := h.ratingService.ListByProduct(c.Request.Context(), productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}
