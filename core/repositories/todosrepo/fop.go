package todosrepo

import "github.com/jrazmi/todos/core/scaffolding/fop"

// QueryFilter holds the available fields a query can be filtered on.
// A nil field is not filtered.
type QueryFilter struct {
	Completed *bool
	UserID    *int
}

// Set of fields a list can be ordered by.
const (
	OrderByAPIID     = "api_id"
	OrderByUserID    = "user_id"
	OrderByTitle     = "title"
	OrderByCreatedAt = "created_at"
)

// OrderByFields maps public order names to columns.
var OrderByFields = map[string]string{
	OrderByAPIID:     "api_id",
	OrderByUserID:    "user_id",
	OrderByTitle:     "title",
	OrderByCreatedAt: "created_at",
}

// DefaultOrderBy is api_id ascending.
var DefaultOrderBy = fop.NewBy(OrderByAPIID, fop.ASC)

// PKField breaks ordering ties.
const PKField = "uuid"
