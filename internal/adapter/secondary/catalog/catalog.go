// Package catalog is the effect registry: metadata, default settings and
// instances for built-in and configured effects.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"fxapply/internal/domain"
	"fxapply/internal/logging"
)

// Entry describes one registered effect.
type Entry struct {
	Meta domain.EffectMeta
	// Params are the effect's parameter defaults.
	Params map[string]float64
}

// PresetLoader reads a previously accepted preset.
type PresetLoader interface {
	LoadUserPreset(ctx context.Context, effect domain.EffectID, group string) (domain.EffectSettings, bool, error)
}

// Catalog implements domain.EffectsProvider.
// This is a secondary adapter.
type Catalog struct {
	mu       sync.Mutex
	entries  map[domain.EffectID]Entry
	order    []domain.EffectID
	settings map[domain.EffectID]*domain.EffectSettings

	presets     PresetLoader
	presetGroup string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithPresets seeds default settings from the user's saved presets in group.
func WithPresets(loader PresetLoader, group string) Option {
	return func(c *Catalog) {
		c.presets = loader
		c.presetGroup = group
	}
}

// WithoutBuiltins starts from an empty registry.
func WithoutBuiltins() Option {
	return func(c *Catalog) {
		c.entries = map[domain.EffectID]Entry{}
		c.order = nil
	}
}

// New creates a catalog holding the built-in effects.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		entries:  map[domain.EffectID]Entry{},
		settings: map[domain.EffectID]*domain.EffectSettings{},
	}
	for _, e := range Builtins() {
		c.put(e)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Register adds e or replaces the entry with the same id.
func (c *Catalog) Register(e Entry) error {
	if e.Meta.ID == "" {
		return fmt.Errorf("effect id is required")
	}
	if e.Meta.DefaultDuration < 0 {
		return fmt.Errorf("effect %s: default duration must not be negative", e.Meta.ID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(e)
	delete(c.settings, e.Meta.ID)
	return nil
}

func (c *Catalog) put(e Entry) {
	if _, exists := c.entries[e.Meta.ID]; !exists {
		c.order = append(c.order, e.Meta.ID)
	}
	c.entries[e.Meta.ID] = e
}

// List returns every registered effect in registration order.
func (c *Catalog) List() []domain.EffectMeta {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.EffectMeta, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id].Meta)
	}
	return out
}

// Meta implements domain.EffectsProvider.
func (c *Catalog) Meta(id domain.EffectID) (domain.EffectMeta, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return domain.EffectMeta{}, domain.NewError(domain.CodeNotFound, "effect %q is not registered", id)
	}
	return e.Meta, nil
}

// DefaultSettings implements domain.EffectsProvider. The same settings object
// is returned for every call, so changes made during one invocation carry to
// the next.
func (c *Catalog) DefaultSettings(id domain.EffectID) (*domain.EffectSettings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return nil, domain.NewError(domain.CodeNotFound, "effect %q is not registered", id)
	}
	if s, ok := c.settings[id]; ok {
		return s, nil
	}

	s := &domain.EffectSettings{
		Freq:   domain.NoFrequencyBounds(),
		Params: make(map[string]float64, len(e.Params)),
	}
	for k, v := range e.Params {
		s.Params[k] = v
	}
	if c.presets != nil {
		preset, found, err := c.presets.LoadUserPreset(context.Background(), id, c.presetGroup)
		if err != nil {
			logging.Warnf("load preset for %s: %v", id, err)
		}
		if found {
			for k, v := range preset.Params {
				s.Params[k] = v
			}
		}
	}
	c.settings[id] = s
	return s, nil
}

// MakeInstance implements domain.EffectsProvider.
func (c *Catalog) MakeInstance(id domain.EffectID) (domain.Instance, error) {
	c.mu.Lock()
	_, ok := c.entries[id]
	c.mu.Unlock()
	if !ok {
		return nil, domain.NewError(domain.CodeNotFound, "effect %q is not registered", id)
	}
	return &Instance{catalog: c, id: id}, nil
}

// Instance is a processing instance of a catalog effect.
type Instance struct {
	catalog *Catalog
	id      domain.EffectID
	ready   bool
}

func (i *Instance) EffectID() domain.EffectID { return i.id }

// Init fails when the effect was removed from the catalog after the instance
// was made.
func (i *Instance) Init() error {
	if _, err := i.catalog.Meta(i.id); err != nil {
		return err
	}
	i.ready = true
	return nil
}

// Ready reports whether Init succeeded.
func (i *Instance) Ready() bool { return i.ready }
