// Package dto defines the JSON envelope of the REST API and the mapping
// from domain error codes to HTTP statuses.
package dto

import "github.com/retailcore/backend/internal/domain/shared"

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo carries the machine-readable error code and a message.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta is pagination metadata for list responses.
type Meta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// NewSuccess wraps data in a success envelope.
func NewSuccess(data any) Response {
	return Response{Success: true, Data: data}
}

// NewPaginated wraps a paginated result, lifting the page info into Meta.
func NewPaginated[T any](page shared.Paginated[T]) Response {
	return Response{
		Success: true,
		Data:    page.Items,
		Meta: &Meta{
			Total:    page.Total,
			Page:     page.Page,
			PageSize: page.PageSize,
		},
	}
}

// NewError wraps an error code and message in an error envelope.
func NewError(code, message string) Response {
	return Response{Success: false, Error: &ErrorInfo{Code: code, Message: message}}
}

// ListQuery binds the common pagination and sort query parameters.
type ListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	SortBy   string `form:"sort_by"`
	SortDesc bool   `form:"sort_desc"`
	Search   string `form:"search"`
}

// Filter converts the query to a domain filter.
func (q ListQuery) Filter() shared.Filter {
	f := shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		SortBy:   q.SortBy,
		SortDesc: q.SortDesc,
		Search:   q.Search,
	}
	f.Normalize()
	return f
}
