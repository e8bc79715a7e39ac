package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/text/message"

	"fxapply/internal/domain"
	"fxapply/internal/i18n"
	"fxapply/internal/logging"
)

// Settings store location of the persisted generator duration.
const (
	CurrentSettingsGroup = "CurrentSettings"
	DurationKey          = "LastUsedDuration"
)

// EffectExecutionUseCase is the primary port for applying effects.
// This represents the application's use cases.
//
// Implementations are not safe for concurrent invocation; callers serialize.
type EffectExecutionUseCase interface {
	// PerformEffect applies id and reports failures other than cancellation.
	PerformEffect(ctx context.Context, id domain.EffectID) error
	// PerformRequest is PerformEffect with explicit flags.
	PerformRequest(ctx context.Context, req domain.EffectRequest) error
	// DoPerformEffect runs the protocol without reporting failures.
	DoPerformEffect(ctx context.Context, req domain.EffectRequest) error
	// RepeatLast re-applies the last processor non-interactively.
	RepeatLast(ctx context.Context) error
	// RepeatLastProcessor is RepeatLast with failure reporting.
	RepeatLastProcessor(ctx context.Context) error
	LastProcessorIsAvailable() bool
	LastProcessor() (domain.EffectID, bool)
	// LastProcessorSetAt is when the last processor changed in this session.
	// It reports false for empty or restored memory.
	LastProcessorSetAt() (time.Time, bool)
	OnLastProcessorChanged(fn func(domain.EffectID)) func()
	OnLastProcessorAvailable(fn func()) func()
	// PreviewEffect previews a registered instance with settings.
	PreviewEffect(ctx context.Context, handle domain.InstanceHandle, settings *domain.EffectSettings) error
	// InstanceSettings returns the live settings of a registered instance.
	InstanceSettings(handle domain.InstanceHandle) (*domain.EffectSettings, error)
	// LastWindow is the window the effect last ran on.
	LastWindow(id domain.EffectID) (domain.TimeWindow, bool)
}

// Dependencies are the secondary ports the use case needs.
type Dependencies struct {
	Effects     domain.EffectsProvider
	Settings    domain.SettingsStore
	Presets     domain.PresetStore
	Selection   domain.SelectionController
	Clips       domain.ClipLookup
	Project     domain.ProjectInfo
	Dispatcher  domain.Dispatcher
	Interactive domain.InteractiveSettings
	History     domain.HistoryLog
	Reporter    domain.ErrorReporter
	Formats     domain.FormatProvider

	// Printer localizes history and error texts. Defaults to English.
	Printer *message.Printer
	// Repeat is created when nil.
	Repeat *RepeatMemory
}

func (d Dependencies) validate() error {
	switch {
	case d.Effects == nil:
		return errors.New("effects provider is required")
	case d.Settings == nil:
		return errors.New("settings store is required")
	case d.Presets == nil:
		return errors.New("preset store is required")
	case d.Selection == nil:
		return errors.New("selection controller is required")
	case d.Clips == nil:
		return errors.New("clip lookup is required")
	case d.Project == nil:
		return errors.New("project info is required")
	case d.Dispatcher == nil:
		return errors.New("dispatcher is required")
	case d.Interactive == nil:
		return errors.New("interactive settings collaborator is required")
	case d.History == nil:
		return errors.New("history log is required")
	case d.Reporter == nil:
		return errors.New("error reporter is required")
	case d.Formats == nil:
		return errors.New("format provider is required")
	}
	return nil
}

// effectInteractor implements EffectExecutionUseCase.
// It depends only on domain layer and secondary ports.
type effectInteractor struct {
	effects     domain.EffectsProvider
	settings    domain.SettingsStore
	presets     domain.PresetStore
	selection   domain.SelectionController
	project     domain.ProjectInfo
	dispatcher  domain.Dispatcher
	interactive domain.InteractiveSettings
	reporter    domain.ErrorReporter
	printer     *message.Printer

	resolver  *domain.SelectionResolver
	builder   *domain.SettingsBuilder
	clips     *ClipIterationEngine
	history   *HistoryRecorder
	repeat    *RepeatMemory
	instances *instanceRegister

	mu          sync.Mutex
	inFlight    map[domain.EffectID]bool
	lastWindows map[domain.EffectID]domain.TimeWindow
}

// NewEffectExecutionUseCase creates the use case.
// Dependencies are injected (secondary ports).
func NewEffectExecutionUseCase(deps Dependencies) (EffectExecutionUseCase, error) {
	return newEffectInteractor(deps)
}

func newEffectInteractor(deps Dependencies) (*effectInteractor, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	printer := deps.Printer
	if printer == nil {
		printer = i18n.NewPrinter("")
	}
	repeat := deps.Repeat
	if repeat == nil {
		repeat = NewRepeatMemory()
	}
	return &effectInteractor{
		effects:     deps.Effects,
		settings:    deps.Settings,
		presets:     deps.Presets,
		selection:   deps.Selection,
		project:     deps.Project,
		dispatcher:  deps.Dispatcher,
		interactive: deps.Interactive,
		reporter:    deps.Reporter,
		printer:     printer,
		resolver:    domain.NewSelectionResolver(),
		builder:     domain.NewSettingsBuilder(deps.Formats),
		clips:       NewClipIterationEngine(deps.Selection, deps.Clips, deps.Dispatcher),
		history:     NewHistoryRecorder(deps.History, printer),
		repeat:      repeat,
		instances:   newInstanceRegister(),
		inFlight:    map[domain.EffectID]bool{},
		lastWindows: map[domain.EffectID]domain.TimeWindow{},
	}, nil
}

// PerformEffect applies id with no flags.
func (s *effectInteractor) PerformEffect(ctx context.Context, id domain.EffectID) error {
	return s.PerformRequest(ctx, domain.EffectRequest{EffectID: id})
}

// PerformRequest applies the request and shows an error for failures that
// are not cancellations.
func (s *effectInteractor) PerformRequest(ctx context.Context, req domain.EffectRequest) error {
	err := s.DoPerformEffect(ctx, req)
	s.reportFailure(req.EffectID, err)
	return err
}

// RepeatLast re-applies the remembered processor with FlagConfigured.
func (s *effectInteractor) RepeatLast(ctx context.Context) error {
	id, ok := s.repeat.Last()
	if !ok {
		return domain.NewError(domain.CodeUnknown, "%s", s.printer.Sprintf(i18n.MsgRepeatUnavailable))
	}
	return s.DoPerformEffect(ctx, domain.EffectRequest{EffectID: id, Flags: domain.FlagConfigured})
}

// RepeatLastProcessor is RepeatLast with failure reporting.
func (s *effectInteractor) RepeatLastProcessor(ctx context.Context) error {
	id, ok := s.repeat.Last()
	err := s.RepeatLast(ctx)
	if ok {
		s.reportFailure(id, err)
	} else if err != nil {
		logging.Warnf("repeat requested before any effect was applied")
	}
	return err
}

func (s *effectInteractor) LastProcessorIsAvailable() bool {
	return s.repeat.Available()
}

func (s *effectInteractor) LastProcessor() (domain.EffectID, bool) {
	return s.repeat.Last()
}

func (s *effectInteractor) LastProcessorSetAt() (time.Time, bool) {
	at := s.repeat.SetAt()
	return at, !at.IsZero()
}

func (s *effectInteractor) OnLastProcessorChanged(fn func(domain.EffectID)) func() {
	return s.repeat.OnChanged(fn)
}

func (s *effectInteractor) OnLastProcessorAvailable(fn func()) func() {
	return s.repeat.OnAvailable(fn)
}

// PreviewEffect runs a preview for an instance registered by an open
// interactive settings step.
func (s *effectInteractor) PreviewEffect(ctx context.Context, handle domain.InstanceHandle, settings *domain.EffectSettings) error {
	entry, ok := s.instances.lookup(handle)
	if !ok {
		return domain.NewError(domain.CodeUnknown, "no effect instance registered as %q", handle)
	}
	if settings == nil {
		settings = entry.settings
	}
	return s.dispatcher.Preview(ctx, entry.inv, entry.instance, settings)
}

func (s *effectInteractor) InstanceSettings(handle domain.InstanceHandle) (*domain.EffectSettings, error) {
	entry, ok := s.instances.lookup(handle)
	if !ok {
		return nil, domain.NewError(domain.CodeUnknown, "no effect instance registered as %q", handle)
	}
	return entry.settings, nil
}

func (s *effectInteractor) LastWindow(id domain.EffectID) (domain.TimeWindow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.lastWindows[id]
	return w, ok
}

func (s *effectInteractor) reportFailure(id domain.EffectID, err error) {
	if err == nil || domain.IsCancel(err) {
		return
	}
	name := string(id)
	if meta, metaErr := s.effects.Meta(id); metaErr == nil {
		name = displayName(meta)
	}
	title := s.printer.Sprintf(i18n.MsgEffectFailedTitle, name)
	s.reporter.ShowError(title, i18n.ErrorText(s.printer, err))
}

func (s *effectInteractor) begin(id domain.EffectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[id] {
		return false
	}
	s.inFlight[id] = true
	return true
}

func (s *effectInteractor) end(id domain.EffectID) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}

func (s *effectInteractor) rememberWindow(id domain.EffectID, w domain.TimeWindow) {
	s.mu.Lock()
	s.lastWindows[id] = w
	s.mu.Unlock()
}
