// Package sqlitedb opens the embedded SQLite database used for local runs and
// tests. The driver is pure Go so no cgo toolchain is required.
package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/jrazmi/todos/sdk/environment"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Set of error variables for CRUD operations.
var (
	ErrDBNotFound        = sql.ErrNoRows
	ErrDBDuplicatedEntry = errors.New("duplicated entry")
)

// TimeLayout is how timestamps are stored in TEXT columns.
const TimeLayout = time.RFC3339Nano

// Options represents the exportable database configuration
type Options struct {
	Path        string        `env:"SQLITE_PATH" default:"todos.sqlite"`
	BusyTimeout time.Duration `env:"SQLITE_BUSY_TIMEOUT" default:"5s"`
}

type options struct {
	path        string
	busyTimeout time.Duration
	logger      *slog.Logger
	migrate     bool
}

// Option is a function that configures the database options
type Option func(*options)

// WithLogger sets the logger used while applying migrations.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithoutMigrations skips applying the embedded schema on open.
func WithoutMigrations() Option {
	return func(o *options) {
		o.migrate = false
	}
}

// NewFromEnv opens the database named by the environment.
func NewFromEnv(ctx context.Context, prefix string, opts ...Option) (*sql.DB, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing sqlite config: %w", err)
	}
	return Open(ctx, cfg, opts...)
}

// NewTestDB opens a database at path with default settings.
func NewTestDB(ctx context.Context, path string, opts ...Option) (*sql.DB, error) {
	return Open(ctx, Options{Path: path, BusyTimeout: 5 * time.Second}, opts...)
}

// Open opens the database file, sets the connection pragmas and brings the
// schema up to date.
func Open(ctx context.Context, cfg Options, opts ...Option) (*sql.DB, error) {
	o := &options{
		path:        cfg.Path,
		busyTimeout: cfg.BusyTimeout,
		migrate:     true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dsn(o.path, o.busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	if err := StatusCheck(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}

	if o.migrate {
		if err := Migrate(ctx, db, o.logger); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return db, nil
}

// dsn carries the pragmas on the connection string so every pooled
// connection gets them, not just the first.
func dsn(path string, busyTimeout time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", "foreign_keys(ON)")
	return "file:" + path + "?" + q.Encode()
}

// StatusCheck returns nil if it can successfully talk to the database
func StatusCheck(ctx context.Context, db *sql.DB) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second)
		defer cancel()
	}

	return db.PingContext(ctx)
}

// HandleSQLiteError converts driver errors to application errors
func HandleSQLiteError(err error) error {
	if err == nil {
		return nil
	}

	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ErrDBDuplicatedEntry
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrDBNotFound
	}

	return err
}

// FormatTime renders t the way it is stored.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a stored timestamp.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", s, err)
	}
	return t, nil
}
