package domain

// Selection is the part of the selection state the resolver looks at.
type Selection struct {
	// NumClips is the number of individually selected clips.
	NumClips int
	// ClipWindow spans the selected clips. With one clip it is that clip's bounds.
	ClipWindow TimeWindow
	// DataWindow is the project's general time selection.
	DataWindow TimeWindow
}

// Resolution is the outcome of resolving what an effect acts on.
type Resolution struct {
	Window      TimeWindow
	IsSelection bool
	// PerClip is set when the effect must run once per selected clip.
	PerClip bool
}

// SelectionResolver decides the time range an effect will act on.
// It has no side effects.
type SelectionResolver struct{}

// NewSelectionResolver creates a new selection resolver.
func NewSelectionResolver() *SelectionResolver {
	return &SelectionResolver{}
}

// Resolve validates sel against meta and returns the effective window.
func (r *SelectionResolver) Resolve(sel Selection, meta EffectMeta) (Resolution, error) {
	if sel.NumClips > 1 && !meta.SupportsMultiClip {
		return Resolution{}, ErrMultipleClipSelectionNotSupported
	}

	// With several clips the span is only used for the selection check;
	// per-clip windows come from the clip iteration.
	window := sel.DataWindow
	if sel.NumClips > 0 {
		window = sel.ClipWindow
	}

	res := Resolution{
		Window:      window,
		IsSelection: window.IsSelection(),
		PerClip:     sel.NumClips > 1,
	}
	if !res.IsSelection && !meta.IsGenerator() {
		return Resolution{}, ErrNoAudioSelected
	}
	return res, nil
}

// SettingsInput is everything the builder needs besides the settings object.
type SettingsInput struct {
	Meta        EffectMeta
	Resolution  Resolution
	ProjectRate float64
	// StoredDuration is the persisted generator duration, if any.
	StoredDuration    float64
	HasStoredDuration bool
	Freq              FrequencyBounds
}

// SettingsBuilder populates EffectSettings for one invocation.
type SettingsBuilder struct {
	formats FormatProvider
}

// NewSettingsBuilder creates a builder using formats for duration display names.
func NewSettingsBuilder(formats FormatProvider) *SettingsBuilder {
	return &SettingsBuilder{formats: formats}
}

// Build writes duration, format, window and frequency bounds into settings
// and returns the window the effect will run on.
func (b *SettingsBuilder) Build(settings *EffectSettings, in SettingsInput) TimeWindow {
	duration := 0.0
	if in.Meta.IsGenerator() {
		duration = in.Meta.DefaultDuration
		if in.HasStoredDuration {
			duration = in.StoredDuration
		}
	}

	window := in.Resolution.Window
	if window.IsSelection() {
		// Whole samples at the project rate; the start itself is kept.
		q0 := QuantizeTime(window.Start, in.ProjectRate)
		q1 := QuantizeTime(window.End, in.ProjectRate)
		duration = q1 - q0
		window.End = window.Start + duration
	}

	format := b.formats.DefaultSelectionFormat()
	if in.Resolution.IsSelection {
		format = b.formats.TimeAndSampleFormat()
	}

	settings.Duration = duration
	settings.DurationFormat = format
	settings.Window = window
	settings.Freq = in.Freq
	return window
}
