package todosrepobridge

import (
	"encoding/json"

	"github.com/jrazmi/todos/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/todos/core/repositories/todosrepo"
	"github.com/jrazmi/todos/core/scaffolding/fop"
)

// ListContext is the data the list template renders.
type ListContext struct {
	Todos            []todosrepo.Todo
	TotalTodos       int
	CompletedTodos   int
	UncompletedTodos int
	CurrentFilter    string
	Page             fop.Page
	IsPaginated      bool
}

// ListResponse is the JSON form of the list view.
type ListResponse struct {
	fopbridge.PaginatedResponse[todosrepo.Todo]
	Filter  string            `json:"filter"`
	Summary todosrepo.Summary `json:"summary"`
}

// Encode implements the web.Encoder interface.
func (l ListResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(l)
	return data, "application/json", err
}

type toggleRequest struct {
	TodoID json.RawMessage `json:"todo_id"`
}

type toggleResponse struct {
	Success   bool `json:"success"`
	Completed bool `json:"completed"`
}

type healthResponse struct {
	Status string `json:"status"`
}
