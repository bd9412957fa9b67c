package todosrepobridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrazmi/todos/bridge/scaffolding/errs"
	"github.com/jrazmi/todos/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/todos/core/repositories/todosrepo"
	"github.com/jrazmi/todos/infrastructure/web"
)

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	qp := parseQueryParams(r)

	if err := b.ensurePopulated(ctx); err != nil {
		return errs.New(errs.InternalOnlyLog, err)
	}

	result, err := b.queryPage(ctx, qp)
	if err != nil {
		return errs.New(errs.InternalOnlyLog, err)
	}

	summary, err := b.summarize(ctx)
	if err != nil {
		return errs.New(errs.InternalOnlyLog, err)
	}

	return web.NewHTMLResponse(b.tmpl, listTemplate, ListContext{
		Todos:            result.Todos,
		TotalTodos:       summary.Total,
		CompletedTodos:   summary.Completed,
		UncompletedTodos: summary.Uncompleted,
		CurrentFilter:    string(qp.Filter),
		Page:             result.Page,
		IsPaginated:      result.Page.HasOtherPages(),
	})
}

func (b *bridge) httpListJSON(ctx context.Context, r *http.Request) web.Encoder {
	qp := parseQueryParams(r)

	if err := b.ensurePopulated(ctx); err != nil {
		return errs.New(errs.InternalOnlyLog, err)
	}

	result, err := b.queryPage(ctx, qp)
	if err != nil {
		return errs.New(errs.InternalOnlyLog, err)
	}

	summary, err := b.summarize(ctx)
	if err != nil {
		return errs.New(errs.InternalOnlyLog, err)
	}

	return ListResponse{
		PaginatedResponse: fopbridge.NewPaginatedResponse(result.Todos, result.Page),
		Filter:            string(qp.Filter),
		Summary:           summary,
	}
}

func (b *bridge) httpToggle(ctx context.Context, r *http.Request) web.Encoder {
	var req toggleRequest
	if err := web.Decode(r, &req); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, web.ErrEmptyBody), errors.As(err, &syntaxErr):
			return errs.Newf(errs.InvalidArgument, "Invalid JSON")
		case errors.As(err, &typeErr) && typeErr.Field == "":
			return errs.Newf(errs.Rejected, "request body must be a JSON object")
		default:
			return errs.New(errs.Rejected, err)
		}
	}

	if isFalsy(req.TodoID) {
		return errs.Newf(errs.InvalidArgument, "Missing todo_id")
	}

	id, err := parseTodoID(req.TodoID)
	if err != nil {
		return errs.New(errs.Rejected, err)
	}

	todo, err := b.todoRepository.Toggle(ctx, id)
	if err != nil {
		if errors.Is(err, todosrepo.ErrNotFound) {
			return errs.Newf(errs.NotFound, "Todo not found")
		}
		return errs.New(errs.Rejected, err)
	}

	return web.NewJSONResponse(toggleResponse{
		Success:   true,
		Completed: todo.Completed,
	})
}

func (b *bridge) httpHealth(ctx context.Context, r *http.Request) web.Encoder {
	if err := b.todoRepository.Ping(ctx); err != nil {
		return errs.Newf(errs.Internal, "store unreachable")
	}

	return web.NewJSONResponse(healthResponse{Status: "ok"})
}

// isFalsy reports whether a todo_id value is missing, null, false, zero or
// empty.
func isFalsy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}

	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func parseTodoID(raw json.RawMessage) (uuid.UUID, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid todo_id %q: %w", s, err)
		}
		return id, nil
	}

	// An integer names the uuid holding that 128-bit big-endian value.
	n, ok := new(big.Int).SetString(string(bytes.TrimSpace(raw)), 10)
	if !ok {
		return uuid.Nil, errors.New("todo_id must be a string")
	}
	if n.Sign() < 0 || n.BitLen() > 128 {
		return uuid.Nil, fmt.Errorf("invalid todo_id %s: out of range", n)
	}

	var id uuid.UUID
	n.FillBytes(id[:])
	return id, nil
}
