package todosrepobridge

import (
	"context"
	"embed"
	"html/template"

	"github.com/jrazmi/todos/bridge/scaffolding/metrics"
	"github.com/jrazmi/todos/core/repositories/todosrepo"
	"github.com/jrazmi/todos/core/scaffolding/fop"
	"github.com/jrazmi/todos/sdk/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

const listTemplate = "todos.html"

// Seeder fills an empty store.
type Seeder interface {
	Populate(ctx context.Context) ([]todosrepo.Todo, error)
}

// bridge provides HTTP handlers for Todo operations.
type bridge struct {
	log            *logger.Logger
	todoRepository *todosrepo.Repository
	seeder         Seeder
	metrics        *metrics.Metrics
	tmpl           *template.Template
}

func newBridge(cfg Config) (*bridge, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &bridge{
		log:            cfg.Log,
		todoRepository: cfg.Repository,
		seeder:         cfg.Seeder,
		metrics:        cfg.Metrics,
		tmpl:           tmpl,
	}, nil
}

// ensurePopulated runs the seeder when nothing has been stored yet. Seeder
// failures are logged and swallowed so the page still renders.
func (b *bridge) ensurePopulated(ctx context.Context) error {
	empty, err := b.todoRepository.IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty || b.seeder == nil {
		return nil
	}

	todos, err := b.seeder.Populate(ctx)
	switch {
	case err != nil:
		b.log.ErrorContext(ctx, "populating todos", "err", err)
		b.populated("error")
	case len(todos) == 0:
		b.populated("empty")
	default:
		b.log.InfoContext(ctx, "todos populated", "count", len(todos))
		b.populated("ok")
	}

	return nil
}

func (b *bridge) populated(result string) {
	if b.metrics != nil {
		b.metrics.Populated(result)
	}
}

// pageResult is one filtered, ordered page of todos.
type pageResult struct {
	Todos []todosrepo.Todo
	Page  fop.Page
}

func (b *bridge) queryPage(ctx context.Context, qp QueryParams) (pageResult, error) {
	filter := qp.Filter.QueryFilter()

	total, err := b.todoRepository.Count(ctx, filter)
	if err != nil {
		return pageResult{}, err
	}

	page := qp.Page.Clamp(total)

	todos, err := b.todoRepository.List(ctx, filter, todosrepo.DefaultOrderBy, page)
	if err != nil {
		return pageResult{}, err
	}

	return pageResult{Todos: todos, Page: page}, nil
}

func (b *bridge) summarize(ctx context.Context) (todosrepo.Summary, error) {
	return b.todoRepository.Summary(ctx)
}
