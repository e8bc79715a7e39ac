package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"fxapply/internal/domain"
)

func TestClipIterationSkipsFailedLookup(t *testing.T) {
	f := newFixture(t)
	c1 := f.addClip("t1", "a", 1, 2)
	c3 := f.addClip("t2", "c", 5, 6)
	c2 := domain.ClipKey{TrackID: "t1", ClipID: "gone"}
	selected := []domain.ClipKey{c1, c2, c3}
	f.project.selectedClips = selected
	f.project.selectedTracks = []domain.TrackID{"t1", "t2"}
	f.project.data = domain.TimeWindow{Start: 0.5, End: 7}

	if err := f.uc.DoPerformEffect(context.Background(), domain.EffectRequest{EffectID: amplifyID}); err != nil {
		t.Fatalf("DoPerformEffect: %v", err)
	}

	if len(f.dispatcher.calls) != 2 {
		t.Fatalf("expected 2 dispatches, got %d", len(f.dispatcher.calls))
	}
	wantWindows := []domain.TimeWindow{{Start: 1, End: 2}, {Start: 5, End: 6}}
	wantSelected := [][]domain.ClipKey{{c1}, {c3}}
	for i, call := range f.dispatcher.calls {
		if call.inv.Window != wantWindows[i] {
			t.Errorf("call %d window = %+v, want %+v", i, call.inv.Window, wantWindows[i])
		}
		if call.settings.Window != wantWindows[i] {
			t.Errorf("call %d settings window = %+v", i, call.settings.Window)
		}
		if !reflect.DeepEqual(call.selected, wantSelected[i]) {
			t.Errorf("call %d selected = %v, want %v", i, call.selected, wantSelected[i])
		}
	}

	if !reflect.DeepEqual(f.project.selectedClips, selected) {
		t.Fatalf("clip selection not restored: %v", f.project.selectedClips)
	}
	if !reflect.DeepEqual(f.project.selectedTracks, []domain.TrackID{"t1", "t2"}) {
		t.Fatalf("track selection not restored: %v", f.project.selectedTracks)
	}
	if f.project.data != (domain.TimeWindow{Start: 0.5, End: 7}) {
		t.Fatalf("data selection not restored: %+v", f.project.data)
	}
	if len(f.history.entries) != 1 {
		t.Fatalf("batch records one history entry, got %d", len(f.history.entries))
	}
}

func TestClipIterationKeepsFirstFailure(t *testing.T) {
	f := newFixture(t)
	c1 := f.addClip("t1", "a", 0, 1)
	c2 := f.addClip("t1", "b", 2, 3)
	c3 := f.addClip("t1", "c", 4, 5)
	f.project.selectedClips = []domain.ClipKey{c1, c2, c3}

	errFirst := errors.New("first")
	errSecond := errors.New("second")
	f.dispatcher.respond = func(n int, inv domain.InvocationContext, _ *domain.EffectSettings) (domain.DispatchResult, error) {
		switch n {
		case 1:
			return domain.DispatchResult{}, errFirst
		case 2:
			return domain.DispatchResult{}, errSecond
		}
		return domain.DispatchResult{Window: inv.Window}, nil
	}

	err := f.uc.DoPerformEffect(context.Background(), domain.EffectRequest{EffectID: amplifyID})
	if !errors.Is(err, errFirst) {
		t.Fatalf("expected first failure, got %v", err)
	}
	if len(f.dispatcher.calls) != 3 {
		t.Fatalf("later clips must still run, got %d calls", len(f.dispatcher.calls))
	}
	if !reflect.DeepEqual(f.project.selectedClips, []domain.ClipKey{c1, c2, c3}) {
		t.Fatalf("selection not restored after failure: %v", f.project.selectedClips)
	}
	if len(f.history.entries) != 0 {
		t.Fatalf("failed batch must not record history")
	}
}

func TestClipIterationRunDirect(t *testing.T) {
	project := newFakeProject()
	a := domain.ClipKey{TrackID: "t1", ClipID: "a"}
	b := domain.ClipKey{TrackID: "t1", ClipID: "b"}
	project.clips[a] = domain.TimeWindow{Start: 0, End: 2}
	project.clips[b] = domain.TimeWindow{Start: 3, End: 4}
	project.selectedClips = []domain.ClipKey{a, b}

	dispatcher := &fakeDispatcher{
		project: project,
		respond: func(n int, inv domain.InvocationContext, _ *domain.EffectSettings) (domain.DispatchResult, error) {
			return domain.DispatchResult{
				Window:      domain.TimeWindow{Start: inv.Window.Start, End: inv.Window.End * 2},
				SkipHistory: n == 0,
			}, nil
		},
	}
	engine := NewClipIterationEngine(project, project, dispatcher)
	settings := &domain.EffectSettings{}

	res, err := engine.Run(context.Background(), domain.InvocationContext{}, &fakeInstance{id: amplifyID}, settings)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Window != (domain.TimeWindow{Start: 3, End: 8}) {
		t.Fatalf("result window = %+v, want last clip's result", res.Window)
	}
	if !res.SkipHistory {
		t.Fatalf("skip history raised by any clip applies to the batch")
	}
}

func TestClipIterationEmptySelection(t *testing.T) {
	project := newFakeProject()
	dispatcher := &fakeDispatcher{project: project}
	engine := NewClipIterationEngine(project, project, dispatcher)

	res, err := engine.Run(context.Background(), domain.InvocationContext{}, &fakeInstance{}, &domain.EffectSettings{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(dispatcher.calls) != 0 || res != (domain.DispatchResult{}) {
		t.Fatalf("nothing to dispatch, got %d calls and %+v", len(dispatcher.calls), res)
	}
}
