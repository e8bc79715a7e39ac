package usecase

import (
	"context"
	"log/slog"

	"fxapply/internal/domain"
	"fxapply/internal/logging"
)

// ClipIterationEngine applies one instance to every selected clip in turn,
// each with its own window. The selection is restored when it returns.
type ClipIterationEngine struct {
	selection  domain.SelectionController
	clips      domain.ClipLookup
	dispatcher domain.Dispatcher
	log        *slog.Logger
}

// NewClipIterationEngine wires the engine to its collaborators.
func NewClipIterationEngine(selection domain.SelectionController, clips domain.ClipLookup, dispatcher domain.Dispatcher) *ClipIterationEngine {
	return &ClipIterationEngine{
		selection:  selection,
		clips:      clips,
		dispatcher: dispatcher,
		log:        logging.For("clips"),
	}
}

// Run dispatches once per selected clip in selection order. A clip whose track
// or clip lookup fails is skipped and does not affect the outcome. The first
// dispatch failure becomes the outcome; later clips are still processed.
func (e *ClipIterationEngine) Run(ctx context.Context, inv domain.InvocationContext, inst domain.Instance, settings *domain.EffectSettings) (domain.DispatchResult, error) {
	snapshot := snapshotSelection(e.selection)
	defer restoreSelection(e.selection, snapshot)

	var (
		result   domain.DispatchResult
		firstErr error
	)
	for _, key := range snapshot.Clips {
		e.selection.SetSelectedClips([]domain.ClipKey{key})
		e.selection.SetSelectedTracks([]domain.TrackID{key.TrackID})

		bounds, err := e.clips.ClipBounds(key)
		if err != nil {
			e.log.Warn("skipping clip", "clip", key.String(), "error", err)
			continue
		}

		settings.Window = bounds
		result.Window = bounds
		res, err := e.dispatcher.Perform(ctx, inv.WithWindow(bounds), inst, settings)
		if err != nil {
			e.log.Debug("clip dispatch failed", "clip", key.String(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		result.Window = res.Window
		if res.SkipHistory {
			result.SkipHistory = true
		}
	}
	return result, firstErr
}

func snapshotSelection(sel domain.SelectionController) domain.SelectionSnapshot {
	return domain.SelectionSnapshot{
		Clips:  append([]domain.ClipKey(nil), sel.SelectedClips()...),
		Tracks: append([]domain.TrackID(nil), sel.SelectedTracks()...),
		Window: domain.TimeWindow{
			Start: sel.DataSelectedStartTime(),
			End:   sel.DataSelectedEndTime(),
		},
	}
}

func restoreSelection(sel domain.SelectionController, snap domain.SelectionSnapshot) {
	sel.SetSelectedClips(snap.Clips)
	sel.SetSelectedTracks(snap.Tracks)
	sel.SetDataSelected(snap.Window.Start, snap.Window.End)
}
