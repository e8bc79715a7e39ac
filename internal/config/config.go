package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file locations.
type Paths struct {
	ProjectFile string `toml:"project_file"`
	StateDB     string `toml:"state_db"`
	LockDir     string `toml:"lock_dir"`
}

// Project contains defaults for new projects.
type Project struct {
	SampleRate      float64 `toml:"sample_rate"`
	SelectionFormat string  `toml:"selection_format"`
}

// Logging controls log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Locale selects the message language.
type Locale struct {
	Language string `toml:"language"`
}

// Interactive controls the settings prompt.
type Interactive struct {
	AutoAccept bool `toml:"auto_accept"`
}

// Server contains HTTP API settings.
type Server struct {
	Addr string `toml:"addr"`
}

// Effect declares an extra catalog entry.
type Effect struct {
	ID              string             `toml:"id"`
	Title           string             `toml:"title"`
	Symbol          string             `toml:"symbol"`
	Type            string             `toml:"type"`
	Interactive     bool               `toml:"interactive"`
	MultiClip       bool               `toml:"multi_clip"`
	DefaultDuration float64            `toml:"default_duration"`
	Params          map[string]float64 `toml:"params"`
}

// Config is the full configuration file.
type Config struct {
	Paths       Paths       `toml:"paths"`
	Project     Project     `toml:"project"`
	Logging     Logging     `toml:"logging"`
	Locale      Locale      `toml:"locale"`
	Interactive Interactive `toml:"interactive"`
	Server      Server      `toml:"server"`
	Effects     []Effect    `toml:"effects"`
}

// Load locates, parses, and validates a configuration file. A missing file
// yields the defaults. The returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = DefaultPath()
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return expanded, true, nil
}

// LockPath is the file locked while a command works on the project.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LockDir, "project.lock")
}

// EnsureDirectories creates the directories the configured paths live in.
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Paths.ProjectFile), filepath.Dir(c.Paths.StateDB), c.Paths.LockDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
