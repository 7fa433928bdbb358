package persistence

import (
	"strings"

	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/shared"
)

// commonSortFields are the sortable columns every entity shares.
var commonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// sortClause builds an ORDER BY clause from the filter, restricted to a
// whitelist so callers cannot inject arbitrary SQL through sort_by.
func sortClause(filter shared.Filter, allowed map[string]bool, defaultField string) string {
	field := strings.TrimSpace(filter.SortBy)
	if field == "" || !allowed[field] {
		field = defaultField
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	return field + " " + direction
}

// paginate applies normalized offset and limit.
func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}

// withSortFields extends the common whitelist with entity columns.
func withSortFields(extra ...string) map[string]bool {
	fields := make(map[string]bool, len(commonSortFields)+len(extra))
	for k := range commonSortFields {
		fields[k] = true
	}
	for _, k := range extra {
		fields[k] = true
	}
	return fields
}
