package environment_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jrazmi/todos/sdk/environment"
)

type testConfig struct {
	URL      string        `env:"URL" required:"true"`
	Retries  int           `env:"RETRIES" default:"3"`
	Backoff  time.Duration `env:"BACKOFF" default:"300ms"`
	Debug    bool          `env:"DEBUG" default:"false"`
	Statuses []int         `env:"STATUSES" default:"500,502,503,504"`
	Origins  []string      `env:"ORIGINS" default:"a, b" separator:","`
	Factor   float64       `env:"FACTOR" default:"0.5"`
	Conns    int32         `env:"CONNS" default:"25"`
}

func TestParseEnvTags_Defaults(t *testing.T) {
	t.Setenv("TEST_URL", "http://example.test/todos")

	var cfg testConfig
	if err := environment.ParseEnvTags("TEST", &cfg); err != nil {
		t.Fatalf("ParseEnvTags: %v", err)
	}

	if cfg.URL != "http://example.test/todos" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.Retries != 3 {
		t.Errorf("Retries = %d, want 3", cfg.Retries)
	}
	if cfg.Backoff != 300*time.Millisecond {
		t.Errorf("Backoff = %s, want 300ms", cfg.Backoff)
	}
	if cfg.Debug {
		t.Error("Debug = true, want false")
	}
	if len(cfg.Statuses) != 4 || cfg.Statuses[0] != 500 || cfg.Statuses[3] != 504 {
		t.Errorf("Statuses = %v", cfg.Statuses)
	}
	if len(cfg.Origins) != 2 || cfg.Origins[1] != "b" {
		t.Errorf("Origins = %v", cfg.Origins)
	}
	if cfg.Factor != 0.5 {
		t.Errorf("Factor = %v", cfg.Factor)
	}
	if cfg.Conns != 25 {
		t.Errorf("Conns = %d, want 25", cfg.Conns)
	}
}

func TestParseEnvTags_Overrides(t *testing.T) {
	t.Setenv("TEST_URL", "http://example.test/todos")
	t.Setenv("TEST_RETRIES", "5")
	t.Setenv("TEST_STATUSES", "503")
	t.Setenv("TEST_DEBUG", "true")

	var cfg testConfig
	if err := environment.ParseEnvTags("TEST", &cfg); err != nil {
		t.Fatalf("ParseEnvTags: %v", err)
	}
	if cfg.Retries != 5 {
		t.Errorf("Retries = %d, want 5", cfg.Retries)
	}
	if len(cfg.Statuses) != 1 || cfg.Statuses[0] != 503 {
		t.Errorf("Statuses = %v, want [503]", cfg.Statuses)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
}

func TestParseEnvTags_Required(t *testing.T) {
	t.Setenv("TEST_URL", "")

	var cfg testConfig
	err := environment.ParseEnvTags("TEST", &cfg)
	if !errors.Is(err, environment.ErrRequired) {
		t.Fatalf("err = %v, want ErrRequired", err)
	}
}

func TestParseEnvTags_BadValue(t *testing.T) {
	t.Setenv("TEST_URL", "x")
	t.Setenv("TEST_RETRIES", "three")

	var cfg testConfig
	if err := environment.ParseEnvTags("TEST", &cfg); err == nil {
		t.Fatal("expected error for non-numeric int")
	}
}

func TestParseEnvTags_NotAPointer(t *testing.T) {
	if err := environment.ParseEnvTags("TEST", testConfig{}); err == nil {
		t.Fatal("expected error for non-pointer config")
	}
}

func TestParseEnvTags_IntOverflow(t *testing.T) {
	t.Setenv("TEST_URL", "x")
	t.Setenv("TEST_CONNS", "4294967296")

	var cfg testConfig
	if err := environment.ParseEnvTags("TEST", &cfg); err == nil {
		t.Fatalf("Conns = %d, want an out of range error", cfg.Conns)
	}
}

func TestParseEnvTags_BadListItem(t *testing.T) {
	t.Setenv("TEST_URL", "x")
	t.Setenv("TEST_STATUSES", "500, nope")

	var cfg testConfig
	if err := environment.ParseEnvTags("TEST", &cfg); err == nil {
		t.Fatalf("Statuses = %v, want an error", cfg.Statuses)
	}
}
