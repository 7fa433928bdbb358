package dto

import (
	"net/http"

	"github.com/retailcore/backend/internal/domain/shared"
)

// statusByCode maps domain error codes to HTTP statuses. Business rule
// violations are 422, conflicts 409, everything unknown falls back to 500.
var statusByCode = map[string]int{
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeCategoryNotFound:    http.StatusNotFound,
	shared.CodeValidation:          http.StatusBadRequest,
	shared.CodeDuplicateName:       http.StatusConflict,
	shared.CodeConcurrentUpdate:    http.StatusConflict,
	shared.CodeInsufficientStock:   http.StatusUnprocessableEntity,
	shared.CodePaymentExceedsTotal: http.StatusUnprocessableEntity,
	shared.CodeProtectedRecord:     http.StatusUnprocessableEntity,
	shared.CodeAlreadyCanceled:     http.StatusUnprocessableEntity,
	shared.CodeInvalidTransition:   http.StatusUnprocessableEntity,
	shared.CodeUnauthorized:        http.StatusUnauthorized,
	shared.CodeForbidden:           http.StatusForbidden,
	shared.CodeInternal:            http.StatusInternalServerError,
}

// HTTPStatus resolves the status for a domain error code.
func HTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
