// Package dispatch runs effects against the project timeline.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fxapply/internal/adapter/secondary/catalog"
	"fxapply/internal/adapter/secondary/project"
	"fxapply/internal/domain"
	"fxapply/internal/logging"
)

// Timeline is the part of the project the dispatcher edits.
type Timeline interface {
	SelectedTracks() []domain.TrackID
	TrackIDs() []domain.TrackID
	ClipsInWindow(tracks []domain.TrackID, w domain.TimeWindow) []domain.ClipKey
	UpdateClip(key domain.ClipKey, fn func(*project.Clip)) error
	AddClip(track domain.TrackID, c project.Clip) error
	NextClipID(track domain.TrackID, prefix string) domain.ClipID
}

// DefaultGeneratorTrack receives generated audio when the project has no tracks.
const DefaultGeneratorTrack domain.TrackID = "track1"

// TimelineDispatcher implements domain.Dispatcher by editing clips:
// generators insert a clip, tempo changes stretch clips, analyzers and tools
// leave the project untouched, and other processors tag the affected clips.
// This is a secondary adapter.
type TimelineDispatcher struct {
	timeline Timeline
	log      *slog.Logger
}

// NewTimelineDispatcher creates a dispatcher editing timeline.
func NewTimelineDispatcher(timeline Timeline) *TimelineDispatcher {
	return &TimelineDispatcher{timeline: timeline, log: logging.For("dispatch")}
}

// Perform implements domain.Dispatcher.
func (d *TimelineDispatcher) Perform(ctx context.Context, inv domain.InvocationContext, _ domain.Instance, settings *domain.EffectSettings) (domain.DispatchResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.DispatchResult{}, err
	}
	log := d.log.With("effect", string(inv.Effect.ID))
	if len(inv.Controls) > 0 {
		log.Debug("frequency controls", "controls", strings.Join(inv.Controls, ","), "f0", inv.Freq.F0, "f1", inv.Freq.F1)
	}

	switch inv.Effect.Type {
	case domain.EffectTypeGenerate:
		return d.generate(inv, settings, log)
	case domain.EffectTypeAnalyze, domain.EffectTypeTool:
		clips := d.timeline.ClipsInWindow(d.tracks(inv), inv.Window)
		log.Info("inspected clips", "clips", len(clips))
		return domain.DispatchResult{Window: inv.Window, SkipHistory: true}, nil
	}

	if tempo := settings.Param(catalog.ParamTempo, 0); tempo != 0 {
		return d.stretch(inv, tempo, log)
	}
	return d.tag(inv, log)
}

// Preview implements domain.Dispatcher. Previews never modify the project.
func (d *TimelineDispatcher) Preview(ctx context.Context, inv domain.InvocationContext, _ domain.Instance, settings *domain.EffectSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clips := d.timeline.ClipsInWindow(d.tracks(inv), inv.Window)
	d.log.Info("preview",
		"effect", string(inv.Effect.ID),
		"start", inv.Window.Start,
		"end", inv.Window.End,
		"clips", len(clips),
		"params", len(settings.Params),
	)
	return nil
}

func (d *TimelineDispatcher) tracks(inv domain.InvocationContext) []domain.TrackID {
	if selected := d.timeline.SelectedTracks(); len(selected) > 0 {
		return selected
	}
	return inv.Tracks
}

func (d *TimelineDispatcher) generate(inv domain.InvocationContext, settings *domain.EffectSettings, log *slog.Logger) (domain.DispatchResult, error) {
	window := inv.Window
	if !window.IsSelection() {
		window.End = window.Start + settings.Duration
	}
	if !window.IsSelection() {
		return domain.DispatchResult{}, domain.NewError(domain.CodeUnknown, "%s: nothing to generate, duration is %g", inv.Effect.ID, settings.Duration)
	}

	tracks := d.tracks(inv)
	if len(tracks) == 0 {
		tracks = []domain.TrackID{DefaultGeneratorTrack}
	}
	for _, track := range tracks {
		id := d.timeline.NextClipID(track, string(inv.Effect.ID)+"-")
		clip := project.Clip{ID: id, Start: window.Start, End: window.End, Tags: []string{string(inv.Effect.ID)}}
		if err := d.timeline.AddClip(track, clip); err != nil {
			return domain.DispatchResult{}, fmt.Errorf("insert generated clip: %w", err)
		}
		log.Debug("generated clip", "track", string(track), "clip", string(id))
	}
	return domain.DispatchResult{Window: window}, nil
}

func (d *TimelineDispatcher) stretch(inv domain.InvocationContext, tempo float64, log *slog.Logger) (domain.DispatchResult, error) {
	if tempo <= -100 {
		return domain.DispatchResult{}, domain.NewError(domain.CodeUnknown, "tempo change must be above -100%%, got %g%%", tempo)
	}
	factor := 100 / (100 + tempo)
	origin := inv.Window.Start
	scale := func(t float64) float64 {
		if t <= origin {
			return t
		}
		return origin + (t-origin)*factor
	}

	for _, key := range d.timeline.ClipsInWindow(d.tracks(inv), inv.Window) {
		err := d.timeline.UpdateClip(key, func(c *project.Clip) {
			c.Start = scale(c.Start)
			c.End = scale(c.End)
			c.Tags = append(c.Tags, string(inv.Effect.ID))
		})
		if err != nil {
			return domain.DispatchResult{}, fmt.Errorf("stretch clip %s: %w", key, err)
		}
	}
	window := domain.TimeWindow{Start: origin, End: origin + inv.Window.Duration()*factor}
	log.Debug("stretched window", "factor", factor, "end", window.End)
	return domain.DispatchResult{Window: window}, nil
}

func (d *TimelineDispatcher) tag(inv domain.InvocationContext, log *slog.Logger) (domain.DispatchResult, error) {
	clips := d.timeline.ClipsInWindow(d.tracks(inv), inv.Window)
	for _, key := range clips {
		err := d.timeline.UpdateClip(key, func(c *project.Clip) {
			c.Tags = append(c.Tags, string(inv.Effect.ID))
		})
		if err != nil {
			return domain.DispatchResult{}, fmt.Errorf("tag clip %s: %w", key, err)
		}
	}
	log.Debug("processed clips", "clips", len(clips))
	return domain.DispatchResult{Window: inv.Window}, nil
}
