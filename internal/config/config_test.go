package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"fxapply/internal/config"
	"fxapply/internal/domain"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "fxapply", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.StateDB != filepath.Join(tempHome, ".config", "fxapply", "state.db") {
		t.Fatalf("unexpected state db: %q", cfg.Paths.StateDB)
	}
	if cfg.Project.SampleRate != 44100 || cfg.Logging.Format != "console" || cfg.Server.Addr != "127.0.0.1:7070" {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
	if cfg.LockPath() != filepath.Join(tempHome, ".config", "fxapply", "project.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	path := filepath.Join(t.TempDir(), "fx.toml")
	contents := `
[paths]
project_file = "~/work/demo.json"

[project]
sample_rate = 48000
selection_format = "seconds"

[logging]
level = " DEBUG "
format = "JSON"

[[effects]]
id = "chirp"
type = "generator"
default_duration = 5.0
params = { start_frequency = 440.0 }
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.ProjectFile != filepath.Join(tempHome, "work", "demo.json") {
		t.Fatalf("project file not expanded: %q", cfg.Paths.ProjectFile)
	}
	if cfg.Project.SampleRate != 48000 || cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected values: %#v", cfg)
	}
	if len(cfg.Effects) != 1 {
		t.Fatalf("expected one effect, got %d", len(cfg.Effects))
	}
	meta := cfg.Effects[0].Meta()
	if meta.ID != "chirp" || meta.Type != domain.EffectTypeGenerate || meta.Title != "chirp" || meta.DefaultDuration != 5 {
		t.Fatalf("unexpected meta: %#v", meta)
	}
	if cfg.Effects[0].Params["start_frequency"] != 440 {
		t.Fatalf("params not decoded: %#v", cfg.Effects[0].Params)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.toml")
	if err := os.WriteFile(path, []byte("[project]\nsample_rat = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error for unknown key")
	}
}

func TestCreateSample(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[[effects]]") {
		t.Fatalf("sample config missing effects example: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample does not load: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"sample rate", func(c *config.Config) { c.Project.SampleRate = 0 }, "sample_rate"},
		{"selection format", func(c *config.Config) { c.Project.SelectionFormat = "frames" }, "selection_format"},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"effect id", func(c *config.Config) { c.Effects = []config.Effect{{Type: "process"}} }, "id is required"},
		{"duplicate", func(c *config.Config) {
			c.Effects = []config.Effect{{ID: "a"}, {ID: "a"}}
		}, "duplicate"},
		{"type", func(c *config.Config) { c.Effects = []config.Effect{{ID: "a", Type: "mangle"}} }, "unknown type"},
		{"generator duration", func(c *config.Config) {
			c.Effects = []config.Effect{{ID: "a", Type: "generate"}}
		}, "default_duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}
