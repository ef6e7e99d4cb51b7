package dto

import (
	"net/http"
	"strings"
)

// API error codes. Generic domain codes are normalized to these; storefront
// specific codes such as COUPON_NOT_APPLICABLE reach the client unchanged.
const (
	ErrCodeInternal           = "ERR_INTERNAL"
	ErrCodeGatewayUnavailable = "ERR_GATEWAY_UNAVAILABLE"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"

	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"

	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus is the status for each code a handler can return
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeGatewayUnavailable: http.StatusBadGateway,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	"STORAGE_DISABLED":        http.StatusServiceUnavailable,

	// auth
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeForbidden:      http.StatusForbidden,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_REVOKED":       http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,
	"ACCOUNT_INACTIVE":    http.StatusForbidden,
	"ACCOUNT_LOCKED":      http.StatusLocked,

	// resources
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	"EMAIL_TAKEN":              http.StatusConflict,
	"VARIANT_EXISTS":           http.StatusConflict,
	"CATEGORY_IN_USE":          http.StatusConflict,

	// business rules
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	"PRODUCT_UNAVAILABLE":    http.StatusUnprocessableEntity,
	"TOO_MANY_IMAGES":        http.StatusUnprocessableEntity,
	"CART_EMPTY":             http.StatusUnprocessableEntity,
	"CART_SESSION_REQUIRED":  http.StatusBadRequest,
	"ORDER_NOT_PAYABLE":      http.StatusUnprocessableEntity,

	// coupons
	"COUPON_NOT_APPLICABLE":    http.StatusUnprocessableEntity,
	"AMBIGUOUS_COUPON":         http.StatusUnprocessableEntity,
	"COUPON_ALREADY_APPLIED":   http.StatusConflict,
	"COUPON_APPLY_IN_PROGRESS": http.StatusConflict,

	// payments
	"PAYMENT_IN_PROGRESS":         http.StatusConflict,
	"ORDER_ALREADY_PAID":          http.StatusConflict,
	"PAYMENT_MISMATCH":            http.StatusBadRequest,
	"PAYMENT_VERIFICATION_FAILED": http.StatusBadRequest,
	"PAYMENT_INITIATION_FAILED":   http.StatusBadGateway,

	// input
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
}

// GetHTTPStatus looks code up in ErrorCodeHTTPStatus.
// Codes missing from the map fall back on their naming: *_NOT_FOUND is 404,
// *_IN_PROGRESS is 409 and INVALID_* is 400. Anything else is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_IN_PROGRESS"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps shared.DomainError sentinel codes to API codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INSUFFICIENT_STOCK":   ErrCodeInsufficientStock,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
