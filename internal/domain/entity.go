package domain

import (
	"fmt"
	"math"
	"strings"
)

// EffectID identifies an effect in the registry. It is opaque to the orchestration.
type EffectID string

// TrackID identifies a track in the project.
type TrackID string

// ClipID identifies a clip within its track.
type ClipID string

// ClipKey addresses one clip. It is the unit of per-clip iteration.
type ClipKey struct {
	TrackID TrackID
	ClipID  ClipID
}

func (k ClipKey) String() string {
	return string(k.TrackID) + ":" + string(k.ClipID)
}

// ParseClipKey parses the "track:clip" form produced by ClipKey.String.
func ParseClipKey(s string) (ClipKey, error) {
	track, clip, ok := strings.Cut(s, ":")
	if !ok || track == "" || clip == "" {
		return ClipKey{}, fmt.Errorf("invalid clip key %q, want track:clip", s)
	}
	return ClipKey{TrackID: TrackID(track), ClipID: ClipID(clip)}, nil
}

// EffectType classifies what an effect does to the project.
type EffectType int

const (
	EffectTypeProcess EffectType = iota
	EffectTypeGenerate
	EffectTypeAnalyze
	EffectTypeTool
)

func (t EffectType) String() string {
	switch t {
	case EffectTypeProcess:
		return "process"
	case EffectTypeGenerate:
		return "generate"
	case EffectTypeAnalyze:
		return "analyze"
	case EffectTypeTool:
		return "tool"
	default:
		return "unknown"
	}
}

// ParseEffectType maps a config string to an EffectType.
func ParseEffectType(s string) (EffectType, bool) {
	switch s {
	case "process", "processor", "":
		return EffectTypeProcess, true
	case "generate", "generator":
		return EffectTypeGenerate, true
	case "analyze", "analyzer":
		return EffectTypeAnalyze, true
	case "tool":
		return EffectTypeTool, true
	default:
		return EffectTypeProcess, false
	}
}

// EffectMeta is the registry's description of an effect.
type EffectMeta struct {
	ID                EffectID
	Title             string
	Symbol            string
	Type              EffectType
	Interactive       bool
	SupportsMultiClip bool
	DefaultDuration   float64
}

// IsGenerator reports whether the effect synthesizes new audio.
func (m EffectMeta) IsGenerator() bool {
	return m.Type == EffectTypeGenerate
}

// IsProcessor reports whether the effect transforms existing audio.
func (m EffectMeta) IsProcessor() bool {
	return m.Type == EffectTypeProcess
}

// Flags controls a single invocation.
type Flags uint

const (
	// FlagConfigured skips the interactive settings step and reuses stored settings.
	FlagConfigured Flags = 1 << iota
	// FlagSkipHistory suppresses the undo history entry.
	FlagSkipHistory
	// FlagDontRepeatLast keeps the effect out of repeat memory.
	FlagDontRepeatLast
)

// Has reports whether all bits of f are set.
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}

// EffectRequest is the user's intent to apply one effect.
type EffectRequest struct {
	EffectID EffectID
	Flags    Flags
}

// TimeWindow is a [Start, End] range in seconds with Start <= End.
type TimeWindow struct {
	Start float64
	End   float64
}

// IsSelection reports whether the window covers a non-empty range.
func (w TimeWindow) IsSelection() bool {
	return w.End > w.Start
}

// Duration returns End - Start.
func (w TimeWindow) Duration() float64 {
	return w.End - w.Start
}

// UndefinedFrequency marks an unset frequency bound.
const UndefinedFrequency = -1.0

// FrequencyBounds is the spectral part of a selection.
type FrequencyBounds struct {
	F0 float64
	F1 float64
}

// NoFrequencyBounds returns bounds with both ends undefined.
func NoFrequencyBounds() FrequencyBounds {
	return FrequencyBounds{F0: UndefinedFrequency, F1: UndefinedFrequency}
}

// Control marker names registered for defined frequency bounds.
const (
	ControlF0 = "control-f0"
	ControlF1 = "control-f1"
)

// Controls returns the control markers for the defined bounds.
func (b FrequencyBounds) Controls() []string {
	var names []string
	if b.F0 != UndefinedFrequency {
		names = append(names, ControlF0)
	}
	if b.F1 != UndefinedFrequency {
		names = append(names, ControlF1)
	}
	return names
}

// EffectSettings is the configuration for one invocation. The registry owns it;
// the invoker and the interactive step mutate it in place.
type EffectSettings struct {
	Duration       float64
	DurationFormat string
	Window         TimeWindow
	Freq           FrequencyBounds
	Params         map[string]float64
}

// Clone returns a deep copy.
func (s *EffectSettings) Clone() *EffectSettings {
	if s == nil {
		return nil
	}
	out := *s
	if s.Params != nil {
		out.Params = make(map[string]float64, len(s.Params))
		for k, v := range s.Params {
			out.Params[k] = v
		}
	}
	return &out
}

// Param returns a named parameter or fallback when unset.
func (s *EffectSettings) Param(name string, fallback float64) float64 {
	if s == nil || s.Params == nil {
		return fallback
	}
	if v, ok := s.Params[name]; ok {
		return v
	}
	return fallback
}

// SelectionSnapshot is the selection state at one point in time.
type SelectionSnapshot struct {
	Clips  []ClipKey
	Tracks []TrackID
	Window TimeWindow
}

// InvocationContext carries everything the dispatcher needs for one invocation.
// It is built once per call and never mutated afterwards.
type InvocationContext struct {
	Effect      EffectMeta
	Flags       Flags
	ProjectRate float64
	Window      TimeWindow
	Tracks      []TrackID
	Freq        FrequencyBounds
	Controls    []string
}

// WithWindow returns a copy of the context targeting w.
func (c InvocationContext) WithWindow(w TimeWindow) InvocationContext {
	c.Window = w
	return c
}

// DispatchResult is what a processing pass reports back.
type DispatchResult struct {
	// Window is the effect's resulting time window. Generators and
	// tempo-changing effects may move its end.
	Window TimeWindow
	// SkipHistory is raised by effects that made no undoable change.
	SkipHistory bool
}

// QuantizeTime snaps t to the nearest sample boundary at rate.
func QuantizeTime(t, rate float64) float64 {
	if rate <= 0 {
		return t
	}
	return math.Round(t*rate) / rate
}
