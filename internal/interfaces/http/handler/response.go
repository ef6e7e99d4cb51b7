package handler

import "github.com/storefront/backend/internal/interfaces/http/dto"

// Envelope shapes referenced by the swag annotations. Handlers write
// dto.Response; these only give the generated OpenAPI document typed data.

// APIResponse is a success envelope with typed data
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// MessageData carries a human readable confirmation
type MessageData struct {
	Message string `json:"message" example:"If the email is registered, a reset link has been sent"`
}
