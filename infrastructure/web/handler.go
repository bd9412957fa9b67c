package web

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jrazmi/todos/sdk/environment"
)

// Encoder is anything a handler can send back: it renders itself and names
// its content type.
type Encoder interface {
	Encode() (data []byte, contentType string, err error)
}

// HandlerFunc handles a request and returns the value to encode.
type HandlerFunc func(ctx context.Context, r *http.Request) Encoder

// Middleware wraps a HandlerFunc.
type Middleware func(HandlerFunc) HandlerFunc

// Telemetry stamps and reads request trace ids.
type Telemetry interface {
	SetTraceID(ctx context.Context) context.Context
	GetTraceID(ctx context.Context) string
}

// Config is the handler configuration read from the environment.
type Config struct {
	CORSOrigins []string `env:"CORS_ORIGINS" default:"*" separator:","`
}

// Option configures a WebHandler.
type Option func(*WebHandler)

// WithLogger logs responses that could not be written.
func WithLogger(log *slog.Logger) Option {
	return func(wh *WebHandler) {
		wh.log = log
	}
}

// WithTelemetry gives every request a trace id.
func WithTelemetry(tel Telemetry) Option {
	return func(wh *WebHandler) {
		wh.telemetry = tel
	}
}

// WithMiddleware adds middleware run by every route, outermost first.
func WithMiddleware(mw ...Middleware) Option {
	return func(wh *WebHandler) {
		wh.middleware = append(wh.middleware, mw...)
	}
}

// WebHandler routes requests to HandlerFuncs and writes what they return.
type WebHandler struct {
	mux        *http.ServeMux
	log        *slog.Logger
	telemetry  Telemetry
	origins    []string
	middleware []Middleware
}

// NewWebHandlerFromEnv reads Config under prefix and builds a WebHandler.
func NewWebHandlerFromEnv(prefix string, opts ...Option) (*WebHandler, error) {
	var cfg Config
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing webhandler config: %w", err)
	}
	return NewWebHandler(cfg, opts...), nil
}

// NewWebHandler builds a WebHandler from cfg.
func NewWebHandler(cfg Config, opts ...Option) *WebHandler {
	wh := &WebHandler{
		mux:     http.NewServeMux(),
		origins: cfg.CORSOrigins,
	}
	for _, opt := range opts {
		opt(wh)
	}
	return wh
}

// Handle registers h for method and path. Route middleware runs inside the
// handler's global middleware.
func (wh *WebHandler) Handle(method, path string, h HandlerFunc, mw ...Middleware) {
	chain := wrap(wrap(h, mw), wh.middleware)

	wh.mux.HandleFunc(strings.ToUpper(method)+" "+path, func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if wh.telemetry != nil {
			ctx = wh.telemetry.SetTraceID(ctx)
		}

		if err := Respond(ctx, w, chain(ctx, r)); err != nil && wh.log != nil {
			wh.log.ErrorContext(ctx, "respond", "path", r.URL.Path, "err", err)
		}
	})
}

// Mount registers a plain http.Handler under pattern, bypassing middleware.
func (wh *WebHandler) Mount(pattern string, h http.Handler) {
	wh.mux.Handle(pattern, h)
}

// Static serves the files below dir in fsys under prefix, which must end in
// a slash.
func (wh *WebHandler) Static(fsys fs.FS, dir, prefix string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return fmt.Errorf("static dir %s: %w", dir, err)
	}
	wh.Mount("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.FS(sub))))
	return nil
}

// ServeHTTP applies CORS and dispatches to the registered routes. Preflight
// requests are answered here since routes are bound to a single method.
func (wh *WebHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if origin := r.Header.Get("Origin"); origin != "" && wh.allowOrigin(w, origin) {
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, X-Requested-With")
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}

	wh.mux.ServeHTTP(w, r)
}

func (wh *WebHandler) allowOrigin(w http.ResponseWriter, origin string) bool {
	for _, allowed := range wh.origins {
		if allowed == "*" || allowed == origin {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Add("Vary", "Origin")
			return true
		}
	}
	return false
}

func wrap(h HandlerFunc, mw []Middleware) HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
