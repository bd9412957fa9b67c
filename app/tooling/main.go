package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrazmi/todos/app/tooling/commands"
	"github.com/jrazmi/todos/sdk/environment"
	"github.com/jrazmi/todos/sdk/logger"
)

var appName = "TODOS"

func main() {
	environment.LoadEnv()

	log, err := logger.NewFromEnv(appName, logger.WithService("tooling"))
	if err != nil {
		fmt.Println("oh no we couldn't even get logging going.")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRootCmd(appName, log).ExecuteContext(ctx); err != nil {
		log.ErrorContext(ctx, "tooling", "err", err)
		stop()
		os.Exit(1)
	}
}
