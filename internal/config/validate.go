package config

import (
	"errors"
	"fmt"
	"strings"

	"fxapply/internal/adapter/secondary/numfmt"
	"fxapply/internal/domain"
	"fxapply/internal/logging"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.ProjectFile, err = expandPath(c.Paths.ProjectFile); err != nil {
		return fmt.Errorf("paths.project_file: %w", err)
	}
	if c.Paths.StateDB, err = expandPath(c.Paths.StateDB); err != nil {
		return fmt.Errorf("paths.state_db: %w", err)
	}
	if c.Paths.LockDir, err = expandPath(c.Paths.LockDir); err != nil {
		return fmt.Errorf("paths.lock_dir: %w", err)
	}

	c.Project.SelectionFormat = strings.TrimSpace(c.Project.SelectionFormat)
	if c.Project.SelectionFormat == "" {
		c.Project.SelectionFormat = defaultSelectionFormat
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	c.Locale.Language = strings.TrimSpace(c.Locale.Language)
	if c.Locale.Language == "" {
		c.Locale.Language = defaultLanguage
	}
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
	if c.Server.Addr == "" {
		c.Server.Addr = defaultServerAddr
	}

	for i := range c.Effects {
		e := &c.Effects[i]
		e.ID = strings.TrimSpace(e.ID)
		e.Type = strings.ToLower(strings.TrimSpace(e.Type))
		if e.Title == "" {
			e.Title = e.ID
		}
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.ProjectFile == "" || c.Paths.StateDB == "" || c.Paths.LockDir == "" {
		return errors.New("paths: project_file, state_db and lock_dir are required")
	}
	if c.Project.SampleRate <= 0 || c.Project.SampleRate > 768000 {
		return fmt.Errorf("project.sample_rate must be between 1 and 768000, got %g", c.Project.SampleRate)
	}
	if !numfmt.Known(c.Project.SelectionFormat) {
		return fmt.Errorf("project.selection_format: unsupported value %q", c.Project.SelectionFormat)
	}
	if _, _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return c.validateEffects()
}

func (c *Config) validateEffects() error {
	seen := map[string]bool{}
	for i, e := range c.Effects {
		if e.ID == "" {
			return fmt.Errorf("effects[%d]: id is required", i)
		}
		if seen[e.ID] {
			return fmt.Errorf("effects[%d]: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = true

		typ, ok := domain.ParseEffectType(e.Type)
		if !ok {
			return fmt.Errorf("effects.%s: unknown type %q", e.ID, e.Type)
		}
		if e.DefaultDuration < 0 {
			return fmt.Errorf("effects.%s: default_duration must not be negative", e.ID)
		}
		if typ == domain.EffectTypeGenerate && e.DefaultDuration == 0 {
			return fmt.Errorf("effects.%s: generators need a default_duration", e.ID)
		}
	}
	return nil
}

// Meta converts the declaration into effect metadata.
func (e Effect) Meta() domain.EffectMeta {
	typ, _ := domain.ParseEffectType(e.Type)
	symbol := e.Symbol
	if symbol == "" {
		symbol = e.Title
	}
	return domain.EffectMeta{
		ID:                domain.EffectID(e.ID),
		Title:             e.Title,
		Symbol:            symbol,
		Type:              typ,
		Interactive:       e.Interactive,
		SupportsMultiClip: e.MultiClip,
		DefaultDuration:   e.DefaultDuration,
	}
}
