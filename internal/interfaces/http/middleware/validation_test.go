package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addItemBody struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Email     string          `json:"email" binding:"required,email"`
	Quantity  int             `json:"quantity" binding:"omitempty,min=1,max=100"`
	Budget    decimal.Decimal `json:"budget" binding:"omitempty,gte=0"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req addItemBody
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req.ProductID))
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleValidationError(t *testing.T) {
	router := newValidationRouter()

	t.Run("reports every invalid field by its JSON name", func(t *testing.T) {
		w := postJSON(router, `{"email":"invalid","quantity":500,"budget":"-3"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)

		fields := map[string]string{}
		messages := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Code
			messages[d.Field] = d.Message
		}
		assert.Equal(t, map[string]string{
			"product_id": "required",
			"email":      "email",
			"quantity":   "max",
			"budget":     "gte",
		}, fields)
		assert.Equal(t, map[string]string{
			"product_id": "This field is required",
			"email":      "Invalid email format",
			"quantity":   "Must be at most 100",
			"budget":     "Must be greater than or equal to 0",
		}, messages)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		w := postJSON(router, `{"email":`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid request body", resp.Error.Message)
		assert.Empty(t, resp.Error.Details)
	})

	t.Run("valid body", func(t *testing.T) {
		id := uuid.New()
		w := postJSON(router, `{"product_id":"`+id.String()+`","email":"a@b.co","quantity":2,"budget":"1500.00"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), id.String())
	})
}
