// Package todospgxstore is the Postgres storage for todos.
package todospgxstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/todos/core/repositories/todosrepo"
	"github.com/jrazmi/todos/core/scaffolding/fop"
	"github.com/jrazmi/todos/infrastructure/postgresdb"
	"github.com/jrazmi/todos/sdk/logger"
)

// ErrOutOfRange is returned for ids that do not fit the INTEGER columns.
var ErrOutOfRange = errors.New("value out of integer range")

const columns = `uuid, api_id, user_id, title, image, completed, created_at, updated_at`

// Store provides database access for Todo.
type Store struct {
	log  *logger.Logger
	pool *postgresdb.Pool
}

// NewStore creates a new Todo store
func NewStore(log *logger.Logger, pool *postgresdb.Pool) *Store {
	return &Store{
		log:  log,
		pool: pool,
	}
}

func (s *Store) Create(ctx context.Context, todo todosrepo.Todo) error {
	query := `
		INSERT INTO todos (` + columns + `)
		VALUES (@uuid, @api_id, @user_id, @title, @image, @completed, @created_at, @updated_at)`

	args := pgx.NamedArgs{
		"uuid":       todo.ID,
		"api_id":     todo.APIID,
		"user_id":    todo.UserID,
		"title":      todo.Title,
		"image":      todo.Image,
		"completed":  todo.Completed,
		"created_at": todo.CreatedAt,
		"updated_at": todo.UpdatedAt,
	}

	if _, err := s.pool.Exec(ctx, query, args); err != nil {
		return postgresdb.HandlePgError(err)
	}
	return nil
}

// CreateBatch inserts all todos in a single statement. Rows whose api_id
// already exists are skipped.
func (s *Store) CreateBatch(ctx context.Context, todos []todosrepo.Todo) (int, error) {
	if len(todos) == 0 {
		return 0, nil
	}

	var (
		ids       = make([]string, len(todos))
		apiIDs    = make([]int32, len(todos))
		userIDs   = make([]int32, len(todos))
		titles    = make([]string, len(todos))
		images    = make([]string, len(todos))
		completed = make([]bool, len(todos))
		created   = make([]time.Time, len(todos))
		updated   = make([]time.Time, len(todos))
	)
	for i, t := range todos {
		ids[i] = t.ID.String()
		apiID, err := toInt4("api_id", t.APIID)
		if err != nil {
			return 0, err
		}
		userID, err := toInt4("user_id", t.UserID)
		if err != nil {
			return 0, err
		}
		apiIDs[i] = apiID
		userIDs[i] = userID
		titles[i] = t.Title
		images[i] = t.Image
		completed[i] = t.Completed
		created[i] = t.CreatedAt
		updated[i] = t.UpdatedAt
	}

	query := `
		INSERT INTO todos (` + columns + `)
		SELECT * FROM unnest(
			@uuids::uuid[],
			@api_ids::int[],
			@user_ids::int[],
			@titles::text[],
			@images::text[],
			@completed::bool[],
			@created_ats::timestamptz[],
			@updated_ats::timestamptz[]
		)
		ON CONFLICT (api_id) DO NOTHING`

	args := pgx.NamedArgs{
		"uuids":       ids,
		"api_ids":     apiIDs,
		"user_ids":    userIDs,
		"titles":      titles,
		"images":      images,
		"completed":   completed,
		"created_ats": created,
		"updated_ats": updated,
	}

	tag, err := s.pool.Exec(ctx, query, args)
	if err != nil {
		return 0, postgresdb.HandlePgError(err)
	}

	return int(tag.RowsAffected()), nil
}

func (s *Store) Count(ctx context.Context, filter todosrepo.QueryFilter) (int, error) {
	var buf bytes.Buffer
	buf.WriteString("SELECT COUNT(*) FROM todos")
	args := pgx.NamedArgs{}
	applyFilter(filter, args, &buf)

	var n int
	if err := s.pool.QueryRow(ctx, buf.String(), args).Scan(&n); err != nil {
		return 0, postgresdb.HandlePgError(err)
	}
	return n, nil
}

func (s *Store) Summary(ctx context.Context) (todosrepo.Summary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE completed)
		FROM todos`

	var sum todosrepo.Summary
	if err := s.pool.QueryRow(ctx, query).Scan(&sum.Total, &sum.Completed); err != nil {
		return todosrepo.Summary{}, postgresdb.HandlePgError(err)
	}
	sum.Uncompleted = sum.Total - sum.Completed

	return sum, nil
}

func (s *Store) List(ctx context.Context, filter todosrepo.QueryFilter, orderBy fop.By, page fop.Page) ([]todosrepo.Todo, error) {
	var buf bytes.Buffer
	buf.WriteString("SELECT " + columns + " FROM todos")
	args := pgx.NamedArgs{}
	applyFilter(filter, args, &buf)

	if err := postgresdb.AddOrderByClause(&buf, orderBy.Field, todosrepo.PKField, orderBy.Direction); err != nil {
		return nil, fmt.Errorf("order: %w", err)
	}

	if page.Size > 0 {
		postgresdb.AddLimitClause(page.Limit(), args, &buf)
		postgresdb.AddOffsetClause(page.Offset(), args, &buf)
	}

	rows, err := s.pool.Query(ctx, buf.String(), args)
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	todos, err := pgx.CollectRows(rows, pgx.RowToStructByName[todosrepo.Todo])
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}

	return todos, nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (todosrepo.Todo, error) {
	query := `SELECT ` + columns + ` FROM todos WHERE uuid = @uuid`

	rows, err := s.pool.Query(ctx, query, pgx.NamedArgs{"uuid": id})
	if err != nil {
		return todosrepo.Todo{}, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	todo, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[todosrepo.Todo])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todosrepo.Todo{}, todosrepo.ErrNotFound
		}
		return todosrepo.Todo{}, postgresdb.HandlePgError(err)
	}

	return todo, nil
}

// Toggle flips completed in place so concurrent toggles never lose an update.
func (s *Store) Toggle(ctx context.Context, id uuid.UUID, now time.Time) (todosrepo.Todo, error) {
	query := `
		UPDATE todos
		SET completed = NOT completed, updated_at = @updated_at
		WHERE uuid = @uuid
		RETURNING ` + columns

	args := pgx.NamedArgs{
		"uuid":       id,
		"updated_at": now,
	}

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return todosrepo.Todo{}, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	todo, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[todosrepo.Todo])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todosrepo.Todo{}, todosrepo.ErrNotFound
		}
		return todosrepo.Todo{}, postgresdb.HandlePgError(err)
	}

	return todo, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return postgresdb.StatusCheck(ctx, s.pool)
}

func applyFilter(filter todosrepo.QueryFilter, args pgx.NamedArgs, buf *bytes.Buffer) {
	var hasWhere bool

	if filter.Completed != nil {
		postgresdb.AddWhere(buf, &hasWhere, "completed = @completed")
		args["completed"] = *filter.Completed
	}

	if filter.UserID != nil {
		postgresdb.AddWhere(buf, &hasWhere, "user_id = @user_id")
		args["user_id"] = *filter.UserID
	}
}

func toInt4(column string, v int) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%s %d: %w", column, v, ErrOutOfRange)
	}
	return int32(v), nil
}
