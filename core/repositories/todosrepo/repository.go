package todosrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jrazmi/todos/core/scaffolding/fop"
	"github.com/jrazmi/todos/sdk/logger"
)

var (
	ErrNotFound     = errors.New("todo not found")
	ErrInvalidTitle = errors.New("invalid title")
)

// Storer defines the data storage interface for Todo.
type Storer interface {
	Create(ctx context.Context, todo Todo) error
	CreateBatch(ctx context.Context, todos []Todo) (int, error)
	Count(ctx context.Context, filter QueryFilter) (int, error)
	Summary(ctx context.Context) (Summary, error)
	List(ctx context.Context, filter QueryFilter, orderBy fop.By, page fop.Page) ([]Todo, error)
	GetByID(ctx context.Context, id uuid.UUID) (Todo, error)
	Toggle(ctx context.Context, id uuid.UUID, now time.Time) (Todo, error)
	Ping(ctx context.Context) error
}

// Repository provides access to todo storage.
type Repository struct {
	log    *logger.Logger
	storer Storer
	now    func() time.Time
	newID  func() uuid.UUID
}

// NewRepository creates a new Todo repository
func NewRepository(log *logger.Logger, storer Storer) *Repository {
	return &Repository{
		log:    log,
		storer: storer,
		now:    time.Now,
		newID:  uuid.New,
	}
}

// build stamps identity and timestamps. Titles are stored as given; only the
// column width is enforced.
func (r *Repository) build(input CreateTodo, now time.Time) (Todo, error) {
	if utf8.RuneCountInString(input.Title) > MaxTitleLength {
		return Todo{}, fmt.Errorf("%w: longer than %d characters", ErrInvalidTitle, MaxTitleLength)
	}

	return Todo{
		ID:        r.newID(),
		APIID:     input.APIID,
		UserID:    input.UserID,
		Title:     input.Title,
		Image:     input.Image,
		Completed: input.Completed,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Create inserts a single hand-entered todo. Its title is trimmed and must
// not be blank.
func (r *Repository) Create(ctx context.Context, input CreateTodo) (Todo, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return Todo{}, fmt.Errorf("%w: must not be blank", ErrInvalidTitle)
	}

	todo, err := r.build(input, r.now().UTC())
	if err != nil {
		return Todo{}, err
	}

	if err := r.storer.Create(ctx, todo); err != nil {
		return Todo{}, fmt.Errorf("create todo: %w", err)
	}

	return todo, nil
}

// CreateBatch inserts every input in one operation. Inputs whose api_id is
// already stored are skipped; the number actually inserted is returned.
func (r *Repository) CreateBatch(ctx context.Context, inputs []CreateTodo) (int, error) {
	if len(inputs) == 0 {
		return 0, nil
	}

	now := r.now().UTC()
	todos := make([]Todo, 0, len(inputs))
	for _, in := range inputs {
		todo, err := r.build(in, now)
		if err != nil {
			return 0, fmt.Errorf("todo api_id %d: %w", in.APIID, err)
		}
		todos = append(todos, todo)
	}

	n, err := r.storer.CreateBatch(ctx, todos)
	if err != nil {
		return 0, fmt.Errorf("create todos: %w", err)
	}

	return n, nil
}

// Count returns the number of todos matching filter.
func (r *Repository) Count(ctx context.Context, filter QueryFilter) (int, error) {
	n, err := r.storer.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count todos: %w", err)
	}
	return n, nil
}

// IsEmpty reports whether no todo has been stored yet.
func (r *Repository) IsEmpty(ctx context.Context) (bool, error) {
	n, err := r.Count(ctx, QueryFilter{})
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Summary returns the total, completed and uncompleted counts of the whole table.
func (r *Repository) Summary(ctx context.Context) (Summary, error) {
	s, err := r.storer.Summary(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize todos: %w", err)
	}
	return s, nil
}

// List returns one page of todos. A zero page returns every match.
func (r *Repository) List(ctx context.Context, filter QueryFilter, orderBy fop.By, page fop.Page) ([]Todo, error) {
	todos, err := r.storer.List(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

// ListAll returns every todo in the default order.
func (r *Repository) ListAll(ctx context.Context) ([]Todo, error) {
	return r.List(ctx, QueryFilter{}, DefaultOrderBy, fop.Page{})
}

// GetByID returns the todo with the given identity.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Todo, error) {
	todo, err := r.storer.GetByID(ctx, id)
	if err != nil {
		return Todo{}, fmt.Errorf("get todo %s: %w", id, err)
	}
	return todo, nil
}

// Toggle flips the completion flag and bumps updated_at in one statement.
func (r *Repository) Toggle(ctx context.Context, id uuid.UUID) (Todo, error) {
	todo, err := r.storer.Toggle(ctx, id, r.now().UTC())
	if err != nil {
		return Todo{}, fmt.Errorf("toggle todo %s: %w", id, err)
	}

	r.log.DebugContext(ctx, "todo toggled", "uuid", id, "completed", todo.Completed)
	return todo, nil
}

// Ping checks the store is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.storer.Ping(ctx)
}
