// Package todossqlitestore is the SQLite storage for todos, used for local
// runs and tests.
package todossqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrazmi/todos/core/repositories/todosrepo"
	"github.com/jrazmi/todos/core/scaffolding/fop"
	"github.com/jrazmi/todos/infrastructure/sqlitedb"
	"github.com/jrazmi/todos/sdk/logger"
)

const columns = `uuid, api_id, user_id, title, image, completed, created_at, updated_at`

// batchRows keeps a multi-row insert well under SQLite's bound variable limit.
const batchRows = 500

// Store provides database access for Todo.
type Store struct {
	log *logger.Logger
	db  *sql.DB
}

// NewStore creates a new Todo store
func NewStore(log *logger.Logger, db *sql.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

func (s *Store) Create(ctx context.Context, todo todosrepo.Todo) error {
	query := `INSERT INTO todos (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query, insertArgs(todo)...); err != nil {
		return sqlitedb.HandleSQLiteError(err)
	}
	return nil
}

// CreateBatch inserts all todos in one transaction. Rows whose api_id already
// exists are skipped.
func (s *Store) CreateBatch(ctx context.Context, todos []todosrepo.Todo) (int, error) {
	if len(todos) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var inserted int64
	for start := 0; start < len(todos); start += batchRows {
		end := min(start+batchRows, len(todos))
		chunk := todos[start:end]

		var b strings.Builder
		b.WriteString("INSERT INTO todos (" + columns + ") VALUES ")
		args := make([]any, 0, len(chunk)*8)
		for i, t := range chunk {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, insertArgs(t)...)
		}
		b.WriteString(" ON CONFLICT (api_id) DO NOTHING")

		res, err := tx.ExecContext(ctx, b.String(), args...)
		if err != nil {
			return 0, sqlitedb.HandleSQLiteError(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return int(inserted), nil
}

func (s *Store) Count(ctx context.Context, filter todosrepo.QueryFilter) (int, error) {
	where, args := applyFilter(filter)

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM todos"+where, args...).Scan(&n); err != nil {
		return 0, sqlitedb.HandleSQLiteError(err)
	}
	return n, nil
}

func (s *Store) Summary(ctx context.Context) (todosrepo.Summary, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(completed), 0) FROM todos`

	var sum todosrepo.Summary
	if err := s.db.QueryRowContext(ctx, query).Scan(&sum.Total, &sum.Completed); err != nil {
		return todosrepo.Summary{}, sqlitedb.HandleSQLiteError(err)
	}
	sum.Uncompleted = sum.Total - sum.Completed

	return sum, nil
}

func (s *Store) List(ctx context.Context, filter todosrepo.QueryFilter, orderBy fop.By, page fop.Page) ([]todosrepo.Todo, error) {
	where, args := applyFilter(filter)

	order, err := orderClause(orderBy)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + columns + " FROM todos" + where + order
	if page.Size > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, page.Limit(), page.Offset())
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sqlitedb.HandleSQLiteError(err)
	}
	defer rows.Close()

	var todos []todosrepo.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlitedb.HandleSQLiteError(err)
	}

	return todos, nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (todosrepo.Todo, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM todos WHERE uuid = ?", id)

	todo, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return todosrepo.Todo{}, todosrepo.ErrNotFound
		}
		return todosrepo.Todo{}, err
	}
	return todo, nil
}

// Toggle flips completed in place so concurrent toggles never lose an update.
func (s *Store) Toggle(ctx context.Context, id uuid.UUID, now time.Time) (todosrepo.Todo, error) {
	query := `
		UPDATE todos
		SET completed = NOT completed, updated_at = ?
		WHERE uuid = ?
		RETURNING ` + columns

	todo, err := scanTodo(s.db.QueryRowContext(ctx, query, sqlitedb.FormatTime(now), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return todosrepo.Todo{}, todosrepo.ErrNotFound
		}
		return todosrepo.Todo{}, err
	}
	return todo, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return sqlitedb.StatusCheck(ctx, s.db)
}

func insertArgs(t todosrepo.Todo) []any {
	return []any{
		t.ID,
		t.APIID,
		t.UserID,
		t.Title,
		t.Image,
		t.Completed,
		sqlitedb.FormatTime(t.CreatedAt),
		sqlitedb.FormatTime(t.UpdatedAt),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(row scanner) (todosrepo.Todo, error) {
	var (
		todo             todosrepo.Todo
		created, updated string
	)

	err := row.Scan(&todo.ID, &todo.APIID, &todo.UserID, &todo.Title, &todo.Image, &todo.Completed, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return todosrepo.Todo{}, err
		}
		return todosrepo.Todo{}, sqlitedb.HandleSQLiteError(err)
	}

	if todo.CreatedAt, err = sqlitedb.ParseTime(created); err != nil {
		return todosrepo.Todo{}, err
	}
	if todo.UpdatedAt, err = sqlitedb.ParseTime(updated); err != nil {
		return todosrepo.Todo{}, err
	}

	return todo, nil
}

func applyFilter(filter todosrepo.QueryFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if filter.Completed != nil {
		conds = append(conds, "completed = ?")
		args = append(args, *filter.Completed)
	}

	if filter.UserID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, *filter.UserID)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(orderBy fop.By) (string, error) {
	known := false
	for _, column := range todosrepo.OrderByFields {
		if column == orderBy.Field {
			known = true
			break
		}
	}
	if !known {
		return "", fmt.Errorf("unknown order field: %s", orderBy.Field)
	}

	switch orderBy.Direction {
	case fop.ASC, fop.DESC:
	default:
		return "", fmt.Errorf("unknown direction: %s", orderBy.Direction)
	}

	return fmt.Sprintf(" ORDER BY %s %s, %s %s", orderBy.Field, orderBy.Direction, todosrepo.PKField, orderBy.Direction), nil
}
