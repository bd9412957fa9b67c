package postgresdb

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// queryLogger logs each statement at debug level and failed statements at
// error level, with their duration.
type queryLogger struct {
	log *slog.Logger
}

type queryStartKey struct{}

func (q *queryLogger) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	q.log.DebugContext(ctx, "query", "sql", compactSQL(data.SQL), "args", len(data.Args))
	return context.WithValue(ctx, queryStartKey{}, time.Now())
}

func (q *queryLogger) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	var took time.Duration
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		took = time.Since(start)
	}

	if data.Err != nil {
		q.log.ErrorContext(ctx, "query failed", "err", data.Err, "took", took)
		return
	}
	q.log.DebugContext(ctx, "query done", "tag", data.CommandTag.String(), "took", took)
}

// compactSQL folds a multi-line statement onto one line.
func compactSQL(sql string) string {
	s := strings.Join(strings.Fields(sql), " ")
	s = strings.ReplaceAll(s, "( ", "(")
	return strings.ReplaceAll(s, " )", ")")
}
