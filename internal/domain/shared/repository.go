package shared

// Filter is the common pagination and sorting envelope for list queries.
type Filter struct {
	Page     int    `json:"page" form:"page"`
	PageSize int    `json:"page_size" form:"page_size"`
	SortBy   string `json:"sort_by" form:"sort_by"`
	SortDesc bool   `json:"sort_desc" form:"sort_desc"`
	Search   string `json:"search" form:"search"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// Normalize clamps the filter into valid bounds.
func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
}

// Offset returns the row offset for the current page.
func (f *Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Paginated wraps a page of results with the total row count.
type Paginated[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// NewPaginated builds a result page from a filter and total count.
func NewPaginated[T any](items []T, total int64, f Filter) Paginated[T] {
	return Paginated[T]{
		Items:    items,
		Total:    total,
		Page:     f.Page,
		PageSize: f.PageSize,
	}
}
