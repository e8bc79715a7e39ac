package config

import (
	"os"
	"path/filepath"
)

const (
	defaultSampleRate      = 44100.0
	defaultSelectionFormat = "hh:mm:ss + milliseconds"
	defaultLogLevel        = "warn"
	defaultLanguage        = "en"
	defaultServerAddr      = "127.0.0.1:7070"
)

// DefaultPath returns ~/.config/fxapply/config.toml (or a working directory
// fallback when there is no home directory).
func DefaultPath() string {
	return filepath.Join(baseDir(), "config.toml")
}

func baseDir() string {
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".config", "fxapply")
	}
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, ".fxapply")
}

// Default returns the configuration used when no file exists.
func Default() Config {
	base := baseDir()
	return Config{
		Paths: Paths{
			ProjectFile: filepath.Join(base, "project.json"),
			StateDB:     filepath.Join(base, "state.db"),
			LockDir:     base,
		},
		Project: Project{
			SampleRate:      defaultSampleRate,
			SelectionFormat: defaultSelectionFormat,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: "console",
		},
		Locale: Locale{Language: defaultLanguage},
		Server: Server{Addr: defaultServerAddr},
	}
}
