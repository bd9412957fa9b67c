package main

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jrazmi/todos/bridge/repositories/todosrepobridge"
	"github.com/jrazmi/todos/bridge/scaffolding/metrics"
	"github.com/jrazmi/todos/bridge/scaffolding/mid"
	"github.com/jrazmi/todos/core/cases/seedcase"
	"github.com/jrazmi/todos/core/repositories"
	"github.com/jrazmi/todos/infrastructure/todoapi"
	"github.com/jrazmi/todos/infrastructure/web"
	"github.com/jrazmi/todos/sdk/environment"
	"github.com/jrazmi/todos/sdk/logger"
	"github.com/jrazmi/todos/sdk/telemetry"
)

//go:embed static
var static embed.FS

var build = "develop"
var appName = "TODOS"

func main() {
	ctx := context.Background()

	if err := environment.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "env:", err)
		os.Exit(1)
	}

	tel := telemetry.NewTelemetry()
	log, err := logger.NewFromEnv(appName, logger.WithTraceID(tel.GetTraceID), logger.WithService("todos"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}

	if err := run(ctx, log, tel); err != nil {
		log.ErrorContext(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger, tel telemetry.Telemetry) error {
	log.InfoContext(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "build", build)

	cfg, err := loadConfig(appName)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// :*: START DATABASES :*:
	repos, err := repositories.NewFromEnv(ctx, appName, log)
	if err != nil {
		return err
	}
	defer func() {
		log.InfoContext(ctx, "shutdown", "status", "closing database connection")
		repos.Close()
	}()
	log.InfoContext(ctx, "init", "service", repos.Driver)

	// :*: CASES :*:
	client, err := todoapi.NewFromEnv(appName, log)
	if err != nil {
		return fmt.Errorf("configuring todo api client: %w", err)
	}
	seeder := seedcase.NewCase(log, repos.Todo, client, cfg.TodoAPIURL)

	// :*: WEB :*:
	var m *metrics.Metrics
	if cfg.Metrics {
		m = metrics.New(cfg.Service)
	}

	handler, err := webHandler(log, tel, m, todosrepobridge.Config{
		Log:        log,
		Repository: repos.Todo,
		Seeder:     seeder,
		Metrics:    m,
	})
	if err != nil {
		return err
	}

	server, err := web.NewServerFromEnv(appName,
		web.WithHandler(handler),
		web.WithErrorLog(logger.NewStdLogger(log, slog.LevelError)),
	)
	if err != nil {
		return fmt.Errorf("webserver: %w", err)
	}

	return server.Run(ctx, log.Logger)
}

func webHandler(log *logger.Logger, tel telemetry.Telemetry, m *metrics.Metrics, todos todosrepobridge.Config) (http.Handler, error) {
	global := []web.Middleware{
		mid.Logger(log),
		mid.Errors(log),
	}
	if m != nil {
		global = append(global, mid.Metrics(m))
	}
	global = append(global, mid.Panics())

	wh, err := web.NewWebHandlerFromEnv(appName,
		web.WithLogger(log.Logger),
		web.WithTelemetry(tel),
		web.WithMiddleware(global...),
	)
	if err != nil {
		return nil, fmt.Errorf("web handler: %w", err)
	}

	if err := wh.Static(static, "static", "/static/"); err != nil {
		return nil, err
	}

	if m != nil {
		wh.Mount("GET /metrics", m.Handler())
	}

	if err := todosrepobridge.AddHttpRoutes(wh.Group(""), todos); err != nil {
		return nil, err
	}

	return wh, nil
}
