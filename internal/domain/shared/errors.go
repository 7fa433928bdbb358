package shared

import (
	"errors"
	"fmt"
)

// DomainError is a business rule violation carrying a stable code that the
// HTTP layer maps to a status. Wrap a sentinel with %w where callers need to
// branch with errors.Is.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a domain error with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WrapDomainError attaches a cause to a domain error.
func WrapDomainError(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Stable error codes shared across modules.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeValidation          = "VALIDATION_ERROR"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodePaymentExceedsTotal = "PAYMENT_EXCEEDS_TOTAL"
	CodeProtectedRecord     = "PROTECTED_RECORD"
	CodeAlreadyCanceled     = "ALREADY_CANCELED"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeDuplicateName       = "DUPLICATE_NAME"
	CodeCategoryNotFound    = "CATEGORY_NOT_FOUND"
	CodeConcurrentUpdate    = "CONCURRENT_UPDATE"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInternal            = "INTERNAL_ERROR"
)

// Sentinel errors for errors.Is checks across layers.
var (
	ErrNotFound          = errors.New("record not found")
	ErrConcurrentUpdate  = errors.New("record was modified concurrently")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProtectedRecord   = errors.New("record is protected")
	ErrAlreadyCanceled   = errors.New("record is already canceled")
	ErrDuplicateName     = errors.New("name already in use")
)

// ErrValidation builds a VALIDATION_ERROR for a specific field.
func ErrValidation(field, reason string) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf("%s: %s", field, reason))
}

// ErrEntityNotFound builds a NOT_FOUND error naming the entity kind.
func ErrEntityNotFound(kind, id string) *DomainError {
	return WrapDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", kind, id), ErrNotFound)
}
