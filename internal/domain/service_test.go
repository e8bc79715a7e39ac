package domain_test

import (
	"errors"
	"math"
	"testing"

	"fxapply/internal/domain"
)

type fakeFormats struct{}

func (fakeFormats) TimeAndSampleFormat() string    { return "hh:mm:ss + samples" }
func (fakeFormats) DefaultSelectionFormat() string { return "hh:mm:ss + milliseconds" }

func TestResolveRejectsMultipleClipsWithoutSupport(t *testing.T) {
	r := domain.NewSelectionResolver()
	sel := domain.Selection{NumClips: 2, ClipWindow: domain.TimeWindow{Start: 1, End: 4}}
	_, err := r.Resolve(sel, domain.EffectMeta{ID: "amplify"})
	if !errors.Is(err, domain.ErrMultipleClipSelectionNotSupported) {
		t.Fatalf("expected multiple clip error, got %v", err)
	}
}

func TestResolveWindowSources(t *testing.T) {
	r := domain.NewSelectionResolver()
	cases := []struct {
		name    string
		sel     domain.Selection
		meta    domain.EffectMeta
		want    domain.TimeWindow
		perClip bool
	}{
		{
			name: "data selection",
			sel:  domain.Selection{DataWindow: domain.TimeWindow{Start: 1, End: 2}},
			want: domain.TimeWindow{Start: 1, End: 2},
		},
		{
			name: "single clip wins over data selection",
			sel: domain.Selection{
				NumClips:   1,
				ClipWindow: domain.TimeWindow{Start: 3, End: 7},
				DataWindow: domain.TimeWindow{Start: 1, End: 2},
			},
			want: domain.TimeWindow{Start: 3, End: 7},
		},
		{
			name:    "multiple clips with support",
			sel:     domain.Selection{NumClips: 3, ClipWindow: domain.TimeWindow{Start: 0, End: 9}},
			meta:    domain.EffectMeta{SupportsMultiClip: true},
			want:    domain.TimeWindow{Start: 0, End: 9},
			perClip: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := r.Resolve(tc.sel, tc.meta)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if res.Window != tc.want {
				t.Fatalf("window = %+v, want %+v", res.Window, tc.want)
			}
			if !res.IsSelection {
				t.Fatal("expected a real selection")
			}
			if res.PerClip != tc.perClip {
				t.Fatalf("PerClip = %v, want %v", res.PerClip, tc.perClip)
			}
		})
	}
}

func TestResolveEmptySelection(t *testing.T) {
	r := domain.NewSelectionResolver()
	empty := domain.Selection{DataWindow: domain.TimeWindow{Start: 5, End: 5}}
	inverted := domain.Selection{DataWindow: domain.TimeWindow{Start: 6, End: 5}}

	for _, sel := range []domain.Selection{empty, inverted} {
		if _, err := r.Resolve(sel, domain.EffectMeta{Type: domain.EffectTypeProcess}); !errors.Is(err, domain.ErrNoAudioSelected) {
			t.Fatalf("processor: expected no audio selected, got %v", err)
		}
	}

	res, err := r.Resolve(empty, domain.EffectMeta{Type: domain.EffectTypeGenerate})
	if err != nil {
		t.Fatalf("generator should be exempt: %v", err)
	}
	if res.IsSelection {
		t.Fatal("expected no real selection")
	}
}

func TestQuantizeTimeIsIdempotent(t *testing.T) {
	const rate = 44100.0
	for _, samples := range []float64{0, 1, 88200, 220500, 1234567} {
		v := samples / rate
		if got := domain.QuantizeTime(v, rate); got != v {
			t.Fatalf("QuantizeTime(%v) = %v, want unchanged", v, got)
		}
		if got := domain.QuantizeTime(domain.QuantizeTime(v+0.3/rate, rate), rate); got != v {
			t.Fatalf("double quantize of %v drifted to %v", v, got)
		}
	}
}

func TestBuildQuantizesSelection(t *testing.T) {
	b := domain.NewSettingsBuilder(fakeFormats{})
	settings := &domain.EffectSettings{}
	window := b.Build(settings, domain.SettingsInput{
		Meta:        domain.EffectMeta{Type: domain.EffectTypeProcess},
		Resolution:  domain.Resolution{Window: domain.TimeWindow{Start: 2.0, End: 5.0}, IsSelection: true},
		ProjectRate: 44100,
		Freq:        domain.NoFrequencyBounds(),
	})
	if settings.Duration != 3.0 {
		t.Fatalf("duration = %v, want 3.0", settings.Duration)
	}
	if window != (domain.TimeWindow{Start: 2.0, End: 5.0}) {
		t.Fatalf("window = %+v", window)
	}
	if settings.DurationFormat != "hh:mm:ss + samples" {
		t.Fatalf("format = %q", settings.DurationFormat)
	}
	if len(settings.Freq.Controls()) != 0 {
		t.Fatalf("expected no control markers, got %v", settings.Freq.Controls())
	}
}

func TestBuildSnapsUnalignedEnd(t *testing.T) {
	b := domain.NewSettingsBuilder(fakeFormats{})
	settings := &domain.EffectSettings{}
	const rate = 8000.0
	window := b.Build(settings, domain.SettingsInput{
		Resolution:  domain.Resolution{Window: domain.TimeWindow{Start: 1.0, End: 1.00031}, IsSelection: true},
		ProjectRate: rate,
	})
	samples := settings.Duration * rate
	if math.Round(samples) != 2 || math.Abs(samples-2) > 1e-6 {
		t.Fatalf("expected 2 whole samples, got %v", samples)
	}
	if window.End != window.Start+settings.Duration {
		t.Fatalf("window end %v does not match start+duration", window.End)
	}
}

func TestBuildGeneratorWithoutSelection(t *testing.T) {
	b := domain.NewSettingsBuilder(fakeFormats{})
	meta := domain.EffectMeta{Type: domain.EffectTypeGenerate, DefaultDuration: 30}
	res := domain.Resolution{Window: domain.TimeWindow{Start: 4, End: 4}}

	settings := &domain.EffectSettings{}
	window := b.Build(settings, domain.SettingsInput{Meta: meta, Resolution: res, ProjectRate: 44100})
	if settings.Duration != 30 {
		t.Fatalf("expected built-in default 30, got %v", settings.Duration)
	}
	if window != res.Window {
		t.Fatalf("window must not be quantized, got %+v", window)
	}
	if settings.DurationFormat != "hh:mm:ss + milliseconds" {
		t.Fatalf("format = %q", settings.DurationFormat)
	}

	settings = &domain.EffectSettings{}
	b.Build(settings, domain.SettingsInput{
		Meta:              meta,
		Resolution:        res,
		ProjectRate:       44100,
		StoredDuration:    12.5,
		HasStoredDuration: true,
	})
	if settings.Duration != 12.5 {
		t.Fatalf("expected persisted 12.5, got %v", settings.Duration)
	}
}

func TestFrequencyControls(t *testing.T) {
	b := domain.FrequencyBounds{F0: 100, F1: domain.UndefinedFrequency}
	got := b.Controls()
	if len(got) != 1 || got[0] != domain.ControlF0 {
		t.Fatalf("controls = %v", got)
	}
	b.F1 = 4000
	if got := b.Controls(); len(got) != 2 || got[1] != domain.ControlF1 {
		t.Fatalf("controls = %v", got)
	}
}

func TestErrorMatchesByCode(t *testing.T) {
	err := domain.NewError(domain.CodeCancel, "user closed the dialog")
	if !domain.IsCancel(err) {
		t.Fatal("expected cancel to match")
	}
	if errors.Is(err, domain.ErrUnknown) {
		t.Fatal("cancel must not match unknown")
	}
	if domain.CodeOf(errors.New("boom")) != domain.CodeUnknown {
		t.Fatal("foreign errors should map to CodeUnknown")
	}
}
