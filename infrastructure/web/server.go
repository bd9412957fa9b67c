package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/jrazmi/todos/sdk/environment"
)

// ServerConfig is the listener configuration read from the environment.
type ServerConfig struct {
	Port            string        `env:"PORT" default:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"20s"`
}

// ServerOption configures the underlying http.Server.
type ServerOption func(*http.Server)

// WithHandler sets the root handler.
func WithHandler(h http.Handler) ServerOption {
	return func(s *http.Server) {
		s.Handler = h
	}
}

// WithErrorLog routes net/http's own errors to l.
func WithErrorLog(l *log.Logger) ServerOption {
	return func(s *http.Server) {
		s.ErrorLog = l
	}
}

// WebServer is an http.Server that shuts down with its context.
type WebServer struct {
	*http.Server
	shutdownTimeout time.Duration
}

// NewServerFromEnv reads ServerConfig under prefix and builds a WebServer.
func NewServerFromEnv(prefix string, opts ...ServerOption) (*WebServer, error) {
	var cfg ServerConfig
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing webserver config: %w", err)
	}
	return NewServer(cfg, opts...), nil
}

// NewServer builds a WebServer from cfg.
func NewServer(cfg ServerConfig, opts ...ServerOption) *WebServer {
	s := &http.Server{
		Addr:         cfg.Port,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return &WebServer{Server: s, shutdownTimeout: cfg.ShutdownTimeout}
}

// Run serves until ctx is done, then gives in-flight requests up to the
// shutdown timeout to finish.
func (s *WebServer) Run(ctx context.Context, log *slog.Logger) error {
	errc := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "startup", "status", "listening", "addr", s.Addr)
		errc <- s.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)

	case <-ctx.Done():
		log.InfoContext(ctx, "shutdown", "status", "draining", "timeout", s.shutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			s.Close()
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		log.InfoContext(ctx, "shutdown", "status", "complete")
		return nil
	}
}
