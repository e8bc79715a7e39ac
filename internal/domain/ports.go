package domain

import "context"

// The interfaces below are secondary ports. They are defined in the domain
// layer and implemented by adapters.

// Instance is one processing instance created from an effect.
type Instance interface {
	EffectID() EffectID
	Init() error
}

// EffectsProvider resolves effects in the registry.
type EffectsProvider interface {
	Meta(id EffectID) (EffectMeta, error)
	// DefaultSettings returns the registry-owned settings object for id.
	DefaultSettings(id EffectID) (*EffectSettings, error)
	MakeInstance(id EffectID) (Instance, error)
}

// SettingsStore persists named configuration values per effect and group.
type SettingsStore interface {
	GetConfig(ctx context.Context, effect EffectID, group, key string) (string, bool, error)
	SetConfig(ctx context.Context, effect EffectID, group, key, value string) error
}

// PresetStore persists the settings the user accepted.
type PresetStore interface {
	SaveUserPreset(ctx context.Context, effect EffectID, group string, settings EffectSettings) error
}

// SelectionController reads and writes the editor's selection.
type SelectionController interface {
	SelectedClips() []ClipKey
	SetSelectedClips(clips []ClipKey)
	SelectedTracks() []TrackID
	SetSelectedTracks(tracks []TrackID)
	HasSelectedClips() bool
	SelectedClipStartTime() float64
	SelectedClipEndTime() float64
	DataSelectedStartTime() float64
	DataSelectedEndTime() float64
	SetDataSelected(start, end float64)
}

// SpectralSelection is implemented by selection controllers that track a
// frequency range.
type SpectralSelection interface {
	FrequencySelection() FrequencyBounds
}

// ClipLookup resolves a clip key to its bounds.
type ClipLookup interface {
	ClipBounds(key ClipKey) (TimeWindow, error)
}

// ProjectInfo exposes project-wide values.
type ProjectInfo interface {
	SampleRate() float64
	TrackIDs() []TrackID
}

// Dispatcher runs the signal processing for one window.
type Dispatcher interface {
	Perform(ctx context.Context, inv InvocationContext, inst Instance, settings *EffectSettings) (DispatchResult, error)
	Preview(ctx context.Context, inv InvocationContext, inst Instance, settings *EffectSettings) error
}

// InstanceHandle is a temporary name for a registered instance.
type InstanceHandle string

// InteractiveSettings lets the user adjust settings before processing.
// It returns nil when accepted and ErrCancel when declined.
type InteractiveSettings interface {
	Show(ctx context.Context, effectType string, handle InstanceHandle) error
}

// HistoryLog records undoable project states.
type HistoryLog interface {
	PushEntry(ctx context.Context, longDescription, shortDescription string) error
}

// ErrorReporter shows failures to the user.
type ErrorReporter interface {
	ShowError(title, message string)
}

// FormatProvider names numeric time formats.
type FormatProvider interface {
	TimeAndSampleFormat() string
	DefaultSelectionFormat() string
}
