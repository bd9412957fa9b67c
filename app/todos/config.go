package main

import (
	"fmt"

	"github.com/jrazmi/todos/sdk/environment"
)

// Config is the application level configuration. Each infrastructure package
// reads its own settings under the same prefix.
type Config struct {
	TodoAPIURL string `env:"TODO_API_URL" required:"true"`
	Service    string `env:"SERVICE_NAME" default:"todos"`
	Metrics    bool   `env:"METRICS_ENABLED" default:"true"`
}

func loadConfig(prefix string) (Config, error) {
	var cfg Config
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing app config: %w", err)
	}
	return cfg, nil
}
