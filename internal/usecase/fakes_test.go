package usecase

import (
	"context"
	"sort"
	"testing"

	"fxapply/internal/domain"
	"fxapply/internal/i18n"
)

const (
	amplifyID domain.EffectID = "amplify"
	toneID    domain.EffectID = "tone"
	echoID    domain.EffectID = "echo"
	tempoID   domain.EffectID = "tempo"
)

type fakeInstance struct {
	id      domain.EffectID
	initErr error
}

func (i *fakeInstance) EffectID() domain.EffectID { return i.id }
func (i *fakeInstance) Init() error               { return i.initErr }

type fakeEffects struct {
	metas      map[domain.EffectID]domain.EffectMeta
	settings   map[domain.EffectID]*domain.EffectSettings
	noSettings bool
	makeErr    error
	initErr    error
}

func newFakeEffects() *fakeEffects {
	return &fakeEffects{
		metas: map[domain.EffectID]domain.EffectMeta{
			amplifyID: {ID: amplifyID, Title: "Amplify", Symbol: "Amplify", Type: domain.EffectTypeProcess, SupportsMultiClip: true},
			echoID:    {ID: echoID, Title: "Echo", Symbol: "Echo", Type: domain.EffectTypeProcess, Interactive: true},
			toneID:    {ID: toneID, Title: "Tone", Symbol: "Tone", Type: domain.EffectTypeGenerate, DefaultDuration: 30},
			tempoID:   {ID: tempoID, Title: "Change Tempo", Type: domain.EffectTypeProcess},
		},
		settings: map[domain.EffectID]*domain.EffectSettings{},
	}
}

func (f *fakeEffects) Meta(id domain.EffectID) (domain.EffectMeta, error) {
	meta, ok := f.metas[id]
	if !ok {
		return domain.EffectMeta{}, domain.NewError(domain.CodeNotFound, "effect %s not found", id)
	}
	return meta, nil
}

func (f *fakeEffects) DefaultSettings(id domain.EffectID) (*domain.EffectSettings, error) {
	if f.noSettings {
		return nil, nil
	}
	s, ok := f.settings[id]
	if !ok {
		s = &domain.EffectSettings{}
		f.settings[id] = s
	}
	return s, nil
}

func (f *fakeEffects) MakeInstance(id domain.EffectID) (domain.Instance, error) {
	if f.makeErr != nil {
		return nil, f.makeErr
	}
	return &fakeInstance{id: id, initErr: f.initErr}, nil
}

type fakeStore struct {
	values  map[string]string
	sets    int
	presets []domain.EffectSettings
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func storeKey(effect domain.EffectID, group, key string) string {
	return string(effect) + "/" + group + "/" + key
}

func (s *fakeStore) GetConfig(_ context.Context, effect domain.EffectID, group, key string) (string, bool, error) {
	v, ok := s.values[storeKey(effect, group, key)]
	return v, ok, nil
}

func (s *fakeStore) SetConfig(_ context.Context, effect domain.EffectID, group, key, value string) error {
	s.sets++
	s.values[storeKey(effect, group, key)] = value
	return nil
}

func (s *fakeStore) SaveUserPreset(_ context.Context, _ domain.EffectID, _ string, settings domain.EffectSettings) error {
	s.presets = append(s.presets, settings)
	return nil
}

type fakeProject struct {
	rate           float64
	clips          map[domain.ClipKey]domain.TimeWindow
	selectedClips  []domain.ClipKey
	selectedTracks []domain.TrackID
	data           domain.TimeWindow
	setDataCalls   int
	clipSelections [][]domain.ClipKey
}

func newFakeProject() *fakeProject {
	return &fakeProject{rate: 44100, clips: map[domain.ClipKey]domain.TimeWindow{}}
}

func (p *fakeProject) SelectedClips() []domain.ClipKey { return p.selectedClips }

func (p *fakeProject) SetSelectedClips(clips []domain.ClipKey) {
	p.selectedClips = append([]domain.ClipKey(nil), clips...)
	p.clipSelections = append(p.clipSelections, p.selectedClips)
}

func (p *fakeProject) SelectedTracks() []domain.TrackID { return p.selectedTracks }

func (p *fakeProject) SetSelectedTracks(tracks []domain.TrackID) {
	p.selectedTracks = append([]domain.TrackID(nil), tracks...)
}

func (p *fakeProject) HasSelectedClips() bool { return len(p.selectedClips) > 0 }

func (p *fakeProject) span() domain.TimeWindow {
	var w domain.TimeWindow
	first := true
	for _, key := range p.selectedClips {
		b, ok := p.clips[key]
		if !ok {
			continue
		}
		if first || b.Start < w.Start {
			w.Start = b.Start
		}
		if first || b.End > w.End {
			w.End = b.End
		}
		first = false
	}
	return w
}

func (p *fakeProject) SelectedClipStartTime() float64 { return p.span().Start }
func (p *fakeProject) SelectedClipEndTime() float64   { return p.span().End }
func (p *fakeProject) DataSelectedStartTime() float64 { return p.data.Start }
func (p *fakeProject) DataSelectedEndTime() float64   { return p.data.End }

func (p *fakeProject) SetDataSelected(start, end float64) {
	p.setDataCalls++
	p.data = domain.TimeWindow{Start: start, End: end}
}

func (p *fakeProject) ClipBounds(key domain.ClipKey) (domain.TimeWindow, error) {
	b, ok := p.clips[key]
	if !ok {
		return domain.TimeWindow{}, domain.NewError(domain.CodeNotFound, "clip %s not found", key)
	}
	return b, nil
}

func (p *fakeProject) SampleRate() float64 { return p.rate }

func (p *fakeProject) TrackIDs() []domain.TrackID {
	seen := map[domain.TrackID]bool{}
	var ids []domain.TrackID
	for key := range p.clips {
		if !seen[key.TrackID] {
			seen[key.TrackID] = true
			ids = append(ids, key.TrackID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type spectralProject struct {
	*fakeProject
	freq domain.FrequencyBounds
}

func (p spectralProject) FrequencySelection() domain.FrequencyBounds { return p.freq }

type dispatchCall struct {
	inv      domain.InvocationContext
	settings domain.EffectSettings
	selected []domain.ClipKey
}

type fakeDispatcher struct {
	project  *fakeProject
	calls    []dispatchCall
	respond  func(n int, inv domain.InvocationContext, settings *domain.EffectSettings) (domain.DispatchResult, error)
	previews []domain.InvocationContext
}

func (d *fakeDispatcher) Perform(_ context.Context, inv domain.InvocationContext, _ domain.Instance, settings *domain.EffectSettings) (domain.DispatchResult, error) {
	call := dispatchCall{inv: inv, settings: *settings.Clone()}
	if d.project != nil {
		call.selected = append([]domain.ClipKey(nil), d.project.selectedClips...)
	}
	d.calls = append(d.calls, call)
	if d.respond != nil {
		return d.respond(len(d.calls)-1, inv, settings)
	}
	window := inv.Window
	if inv.Effect.IsGenerator() && !window.IsSelection() {
		window.End = window.Start + settings.Duration
	}
	return domain.DispatchResult{Window: window}, nil
}

func (d *fakeDispatcher) Preview(_ context.Context, inv domain.InvocationContext, _ domain.Instance, _ *domain.EffectSettings) error {
	d.previews = append(d.previews, inv)
	return nil
}

type fakeInteractive struct {
	shown []string
	show  func(ctx context.Context, handle domain.InstanceHandle) error
}

func (f *fakeInteractive) Show(ctx context.Context, effectType string, handle domain.InstanceHandle) error {
	f.shown = append(f.shown, effectType)
	if f.show != nil {
		return f.show(ctx, handle)
	}
	return nil
}

type historyEntry struct {
	long  string
	short string
}

type fakeHistory struct {
	entries []historyEntry
}

func (h *fakeHistory) PushEntry(_ context.Context, long, short string) error {
	h.entries = append(h.entries, historyEntry{long: long, short: short})
	return nil
}

type reportedError struct {
	title   string
	message string
}

type fakeReporter struct {
	errors []reportedError
}

func (r *fakeReporter) ShowError(title, message string) {
	r.errors = append(r.errors, reportedError{title: title, message: message})
}

type fakeFormats struct{}

func (fakeFormats) TimeAndSampleFormat() string    { return "hh:mm:ss + samples" }
func (fakeFormats) DefaultSelectionFormat() string { return "hh:mm:ss + milliseconds" }

type fixture struct {
	effects     *fakeEffects
	store       *fakeStore
	project     *fakeProject
	dispatcher  *fakeDispatcher
	interactive *fakeInteractive
	history     *fakeHistory
	reporter    *fakeReporter
	repeat      *RepeatMemory
	uc          *effectInteractor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithSelection(t, nil)
}

// newFixtureWithSelection builds the interactor; wrap, when set, replaces the
// selection controller with a wrapper around the fake project.
func newFixtureWithSelection(t *testing.T, wrap func(*fakeProject) domain.SelectionController) *fixture {
	t.Helper()
	f := &fixture{
		effects:     newFakeEffects(),
		store:       newFakeStore(),
		project:     newFakeProject(),
		interactive: &fakeInteractive{},
		history:     &fakeHistory{},
		reporter:    &fakeReporter{},
		repeat:      NewRepeatMemory(),
	}
	f.dispatcher = &fakeDispatcher{project: f.project}

	var selection domain.SelectionController = f.project
	if wrap != nil {
		selection = wrap(f.project)
	}

	uc, err := newEffectInteractor(Dependencies{
		Effects:     f.effects,
		Settings:    f.store,
		Presets:     f.store,
		Selection:   selection,
		Clips:       f.project,
		Project:     f.project,
		Dispatcher:  f.dispatcher,
		Interactive: f.interactive,
		History:     f.history,
		Reporter:    f.reporter,
		Formats:     fakeFormats{},
		Printer:     i18n.NewPrinter("en"),
		Repeat:      f.repeat,
	})
	if err != nil {
		t.Fatalf("newEffectInteractor: %v", err)
	}
	f.uc = uc
	return f
}

func (f *fixture) addClip(track, clip string, start, end float64) domain.ClipKey {
	key := domain.ClipKey{TrackID: domain.TrackID(track), ClipID: domain.ClipID(clip)}
	f.project.clips[key] = domain.TimeWindow{Start: start, End: end}
	return key
}
