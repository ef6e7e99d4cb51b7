package shared

import "strings"

// DomainError is a business rule violation. Code is stable and mapped to an
// HTTP status and API error code at the edge; Message is safe to show a shopper.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string { return e.Message }

// Is matches on Code, so a package-specific error with its own message still
// satisfies errors.Is against these sentinels. Codes ending in _NOT_FOUND
// (PRODUCT_NOT_FOUND, ORDER_NOT_FOUND) also match ErrNotFound.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	switch {
	case !ok:
		return false
	case e.Code == t.Code:
		return true
	case t.Code == ErrNotFound.Code:
		return strings.HasSuffix(e.Code, "_"+ErrNotFound.Code)
	default:
		return false
	}
}

var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another request")
)
