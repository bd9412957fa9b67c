package todosrepobridge

import (
	"net/http"

	"github.com/jrazmi/todos/core/repositories/todosrepo"
	"github.com/jrazmi/todos/core/scaffolding/fop"
)

// PageSize is the number of todos per page.
const PageSize = 20

// Filter selects todos by completion.
type Filter string

// Set of filters.
const (
	FilterAll      Filter = "all"
	FilterTodo     Filter = "todo"
	FilterComplete Filter = "complete"
)

// ParseFilter normalizes a query value; anything unknown is FilterAll.
func ParseFilter(s string) Filter {
	switch f := Filter(s); f {
	case FilterTodo, FilterComplete:
		return f
	default:
		return FilterAll
	}
}

// QueryFilter translates the filter into a repository filter.
func (f Filter) QueryFilter() todosrepo.QueryFilter {
	switch f {
	case FilterTodo:
		completed := false
		return todosrepo.QueryFilter{Completed: &completed}
	case FilterComplete:
		completed := true
		return todosrepo.QueryFilter{Completed: &completed}
	default:
		return todosrepo.QueryFilter{}
	}
}

// QueryParams are the list query parameters.
type QueryParams struct {
	Filter Filter
	Page   fop.PageNumber
}

func parseQueryParams(r *http.Request) QueryParams {
	q := r.URL.Query()
	return QueryParams{
		Filter: ParseFilter(q.Get("filter")),
		Page:   fop.ParsePageNumber(q.Get("page"), PageSize),
	}
}
