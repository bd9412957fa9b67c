// Package logger builds the structured logger shared by the binaries.
package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jrazmi/todos/sdk/environment"
)

// Logger is the application logger.
type Logger struct {
	*slog.Logger
}

// TraceIDFn extracts a request trace id from the context.
type TraceIDFn func(ctx context.Context) string

// Config is the logger configuration read from the environment.
type Config struct {
	Level      string `env:"LOG_LEVEL" default:"INFO"`
	Output     string `env:"LOG_OUTPUT" default:"STDOUT"`
	Format     string `env:"LOG_FORMAT" default:"json"`
	TimeFormat string `env:"LOG_TIME_FORMAT" default:"RFC3339"`
}

type settings struct {
	cfg     Config
	out     io.Writer
	traceID TraceIDFn
	service string
}

// Option adjusts a Logger being built.
type Option func(*settings)

// WithOutput sends records to w instead of the configured stream.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		s.out = w
	}
}

// WithTraceID adds a trace_id attribute to records logged with a context
// that carries one.
func WithTraceID(fn TraceIDFn) Option {
	return func(s *settings) {
		s.traceID = fn
	}
}

// WithService adds a constant service attribute.
func WithService(name string) Option {
	return func(s *settings) {
		s.service = name
	}
}

// NewFromEnv reads Config under prefix.
func NewFromEnv(prefix string, opts ...Option) (*Logger, error) {
	var cfg Config
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing logger config: %w", err)
	}
	return New(cfg, opts...), nil
}

// NewDefault logs JSON at info level to stdout.
func NewDefault(opts ...Option) *Logger {
	return New(Config{Level: "INFO", Output: "STDOUT", Format: "json", TimeFormat: "RFC3339"}, opts...)
}

// NewDiscard drops everything.
func NewDiscard() *Logger {
	return NewDefault(WithOutput(io.Discard))
}

// New builds a Logger from cfg.
func New(cfg Config, opts ...Option) *Logger {
	s := settings{cfg: cfg}
	for _, opt := range opts {
		opt(&s)
	}
	if s.out == nil {
		s.out = os.Stdout
		if strings.EqualFold(cfg.Output, "STDERR") {
			s.out = os.Stderr
		}
	}

	ho := &slog.HandlerOptions{
		Level:       level(cfg.Level),
		ReplaceAttr: timeFormatter(cfg.TimeFormat),
	}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(s.out, ho)
	} else {
		h = slog.NewJSONHandler(s.out, ho)
	}
	if s.traceID != nil {
		h = &traceHandler{Handler: h, traceID: s.traceID}
	}

	l := slog.New(h)
	if s.service != "" {
		l = l.With("service", s.service)
	}
	return &Logger{Logger: l}
}

// NewStdLogger adapts l for APIs that take a *log.Logger, such as
// http.Server.ErrorLog.
func NewStdLogger(l *Logger, lvl slog.Level) *log.Logger {
	return slog.NewLogLogger(l.Handler(), lvl)
}

func level(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func timeFormatter(format string) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key != slog.TimeKey || len(groups) > 0 || format == "" {
			return a
		}
		t := a.Value.Time()
		switch format {
		case "Unix":
			return slog.Int64(slog.TimeKey, t.Unix())
		case "UnixMilli":
			return slog.Int64(slog.TimeKey, t.UnixMilli())
		case "RFC3339":
			return slog.String(slog.TimeKey, t.Format(time.RFC3339))
		case "RFC3339Nano":
			return slog.String(slog.TimeKey, t.Format(time.RFC3339Nano))
		default:
			return slog.String(slog.TimeKey, t.Format(format))
		}
	}
}

type traceHandler struct {
	slog.Handler
	traceID TraceIDFn
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if id := h.traceID(ctx); id != "" {
			r.AddAttrs(slog.String("trace_id", id))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs), traceID: h.traceID}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name), traceID: h.traceID}
}
