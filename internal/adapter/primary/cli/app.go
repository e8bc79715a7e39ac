package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/message"

	"fxapply/internal/adapter/secondary/catalog"
	"fxapply/internal/adapter/secondary/dispatch"
	"fxapply/internal/adapter/secondary/numfmt"
	"fxapply/internal/adapter/secondary/project"
	"fxapply/internal/adapter/secondary/prompt"
	"fxapply/internal/adapter/secondary/report"
	"fxapply/internal/adapter/secondary/repository"
	"fxapply/internal/config"
	"fxapply/internal/domain"
	"fxapply/internal/i18n"
	"fxapply/internal/logging"
	"fxapply/internal/usecase"
)

type appOptions struct {
	// interactive enables the terminal settings prompt when stdin is a terminal.
	interactive bool
	// dryRun dispatches to the no-op dispatcher, never saves the project and
	// keeps the state store read-only.
	dryRun   bool
	reporter domain.ErrorReporter
}

// app is one command's view of the workspace: the locked project, the state
// store and the effect use case wired to them.
type app struct {
	cfg      *config.Config
	printer  *message.Printer
	lock     *flock.Flock
	projects *project.FileRepository
	project  *project.Project
	store    *repository.Store
	catalog  *catalog.Catalog
	formats  numfmt.Provider
	uc       usecase.EffectExecutionUseCase
	dryRun   bool

	closeTerminal func() error
}

func openApp(opts appOptions) (_ *app, err error) {
	cfg := currentConfig()
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		printer: i18n.NewPrinter(language(cfg)),
		lock:    flock.New(cfg.LockPath()),
		formats: numfmt.Provider{Selection: cfg.Project.SelectionFormat},
		dryRun:  opts.dryRun,
	}
	ok, err := a.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire project lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another fxapply command is using the project (%s)", cfg.LockPath())
	}
	defer func() {
		if err != nil {
			_ = a.close()
		}
	}()

	if a.store, err = repository.Open(cfg.Paths.StateDB); err != nil {
		return nil, err
	}
	if a.projects, err = project.NewFileRepository(cfg.Paths.ProjectFile); err != nil {
		return nil, err
	}
	if a.project, err = a.projects.Load(cfg.Project.SampleRate); err != nil {
		return nil, err
	}

	a.catalog = catalog.New(catalog.WithPresets(a.store, usecase.CurrentSettingsGroup))
	for _, e := range cfg.Effects {
		if err := a.catalog.Register(catalog.Entry{Meta: e.Meta(), Params: e.Params}); err != nil {
			return nil, err
		}
	}

	repeat, err := a.restoreRepeatMemory()
	if err != nil {
		return nil, err
	}

	var interactive domain.InteractiveSettings = prompt.AutoAccept{}
	var terminal *prompt.Terminal
	if opts.interactive && !cfg.Interactive.AutoAccept && isatty.IsTerminal(os.Stdin.Fd()) {
		terminal, a.closeTerminal, err = prompt.NewReadlineTerminal(a.printer)
		if err != nil {
			return nil, err
		}
		interactive = terminal
	}

	var dispatcher domain.Dispatcher = dispatch.NewTimelineDispatcher(a.project)
	if opts.dryRun {
		dispatcher = dispatch.NewNoopDispatcher()
	}
	reporter := opts.reporter
	if reporter == nil {
		reporter = report.NewConsole(os.Stderr)
	}

	var settings stateStore = a.store
	if opts.dryRun {
		settings = readOnlyStore{store: a.store}
	}

	a.uc, err = usecase.NewEffectExecutionUseCase(usecase.Dependencies{
		Effects:     a.catalog,
		Settings:    settings,
		Presets:     settings,
		Selection:   a.project,
		Clips:       a.project,
		Project:     a.project,
		Dispatcher:  dispatcher,
		Interactive: interactive,
		History:     settings,
		Reporter:    reporter,
		Formats:     a.formats,
		Printer:     a.printer,
		Repeat:      repeat,
	})
	if err != nil {
		return nil, err
	}
	if terminal != nil {
		terminal.Attach(a.uc)
	}
	return a, nil
}

// restoreRepeatMemory loads the last processor from the state store and keeps
// the store updated when it changes.
func (a *app) restoreRepeatMemory() (*usecase.RepeatMemory, error) {
	ctx := context.Background()
	last, _, err := a.store.GetState(ctx, repository.StateLastProcessor)
	if err != nil {
		return nil, err
	}
	repeat := usecase.NewRepeatMemory(usecase.WithRestored(domain.EffectID(last)))
	repeat.OnChanged(func(id domain.EffectID) {
		if a.dryRun {
			return
		}
		if err := a.store.SetState(ctx, repository.StateLastProcessor, string(id)); err != nil {
			logging.Warnf("persist last processor: %v", err)
		}
	})
	return repeat, nil
}

func (a *app) save() error {
	if a.dryRun {
		return nil
	}
	return a.projects.Save(a.project)
}

func (a *app) close() error {
	var errs []error
	if a.closeTerminal != nil {
		errs = append(errs, a.closeTerminal())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.lock != nil {
		errs = append(errs, a.lock.Unlock())
	}
	return errors.Join(errs...)
}

func (a *app) renderTime(t float64) string {
	return numfmt.Render(a.formats.DefaultSelectionFormat(), t, a.project.SampleRate())
}

// withApp opens the workspace, runs fn and saves the project when fn succeeds.
func withApp(opts appOptions, fn func(a *app) error) (err error) {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if err := fn(a); err != nil {
		return err
	}
	return a.save()
}
