// Package numfmt names and renders the numeric time formats used for effect
// durations and selections.
package numfmt

import (
	"fmt"
	"math"
)

// Format names.
const (
	TimeAndSamples      = "hh:mm:ss + samples"
	TimeAndMilliseconds = "hh:mm:ss + milliseconds"
	Seconds             = "seconds"
)

// Provider implements domain.FormatProvider.
// This is a secondary adapter.
type Provider struct {
	// Selection overrides the default selection format when set.
	Selection string
}

func (p Provider) TimeAndSampleFormat() string {
	return TimeAndSamples
}

func (p Provider) DefaultSelectionFormat() string {
	if p.Selection != "" {
		return p.Selection
	}
	return TimeAndMilliseconds
}

// Known reports whether name is a supported format.
func Known(name string) bool {
	switch name {
	case TimeAndSamples, TimeAndMilliseconds, Seconds:
		return true
	}
	return false
}

// Render formats t seconds using the named format. Unknown names render as
// seconds.
func Render(name string, t, rate float64) string {
	if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Sprintf("%g", t)
	}
	whole := math.Floor(t)
	h := int64(whole) / 3600
	m := (int64(whole) % 3600) / 60
	s := int64(whole) % 60
	frac := t - whole

	switch name {
	case TimeAndSamples:
		samples := int64(math.Round(frac * rate))
		if rate > 0 && float64(samples) >= rate {
			samples = int64(rate) - 1
		}
		return fmt.Sprintf("%02d:%02d:%02d + %d samples", h, m, s, samples)
	case TimeAndMilliseconds:
		ms := int64(math.Round(frac * 1000))
		if ms >= 1000 {
			ms = 999
		}
		return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
	default:
		return fmt.Sprintf("%.6f s", t)
	}
}
