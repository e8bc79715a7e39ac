package usecase

import (
	"context"
	"strconv"

	"fxapply/internal/domain"
	"fxapply/internal/logging"
)

// DoPerformEffect runs one effect application:
// validate, build settings, configure, instantiate, adjust, dispatch,
// clean up and record. Steps run strictly in that order.
func (s *effectInteractor) DoPerformEffect(ctx context.Context, req domain.EffectRequest) error {
	id := req.EffectID
	flags := req.Flags
	log := logging.For("invoker").With("effect", string(id))

	// Step 1: validate
	meta, err := s.effects.Meta(id)
	if err != nil {
		return err
	}
	if !s.begin(id) {
		return domain.ErrEffectBusy
	}
	defer s.end(id)

	clips := s.selection.SelectedClips()
	res, err := s.resolver.Resolve(s.currentSelection(len(clips)), meta)
	if err != nil {
		log.Debug("selection rejected", "error", err)
		return err
	}

	// Step 2: build settings
	settings, err := s.effects.DefaultSettings(id)
	if err != nil || settings == nil {
		log.Error("default settings unavailable", "error", err)
		return domain.NewError(domain.CodeUnknown, "no settings available for effect %s", id)
	}
	rate := s.project.SampleRate()
	in := domain.SettingsInput{
		Meta:        meta,
		Resolution:  res,
		ProjectRate: rate,
		Freq:        s.frequencySelection(),
	}
	if meta.IsGenerator() {
		in.StoredDuration, in.HasStoredDuration = s.storedDuration(ctx, id)
	}
	window := s.builder.Build(settings, in)

	// Step 3: configure
	inv := domain.InvocationContext{
		Effect:      meta,
		Flags:       flags,
		ProjectRate: rate,
		Window:      window,
		Tracks:      s.project.TrackIDs(),
		Freq:        settings.Freq,
		Controls:    settings.Freq.Controls(),
	}

	// Step 4: instantiate
	inst, err := s.effects.MakeInstance(id)
	if err != nil || inst == nil {
		log.Error("make instance failed", "error", err)
		return domain.NewError(domain.CodeUnknown, "could not create an instance of %s", id)
	}
	if err := inst.Init(); err != nil {
		log.Error("instance init failed", "error", err)
		return domain.NewError(domain.CodeUnknown, "could not initialize %s", id)
	}

	// Step 5: interactive adjustment
	if meta.Interactive && !flags.Has(domain.FlagConfigured) {
		if err := s.adjust(ctx, meta, inst, inv, settings); err != nil {
			return err
		}
	}

	// Step 6: dispatch
	var result domain.DispatchResult
	if res.PerClip {
		result, err = s.clips.Run(ctx, inv, inst, settings)
	} else {
		result, err = s.dispatcher.Perform(ctx, inv, inst, settings)
	}

	// Step 7: cleanup. The invocation context dies with this call; only the
	// effect's resulting window outlives it.
	if err != nil {
		log.Warn("dispatch failed", "error", err)
		return err
	}
	s.rememberWindow(id, result.Window)
	if !res.PerClip && result.Window.End >= result.Window.Start {
		s.selection.SetDataSelected(result.Window.Start, result.Window.End)
	}

	// Step 8: record outcome
	if result.SkipHistory {
		flags |= domain.FlagSkipHistory
	}
	s.recordOutcome(ctx, meta, flags, result.Window)
	log.Info("effect applied", "start", result.Window.Start, "end", result.Window.End)
	return nil
}

func (s *effectInteractor) currentSelection(numClips int) domain.Selection {
	sel := domain.Selection{
		NumClips: numClips,
		DataWindow: domain.TimeWindow{
			Start: s.selection.DataSelectedStartTime(),
			End:   s.selection.DataSelectedEndTime(),
		},
	}
	if s.selection.HasSelectedClips() {
		sel.ClipWindow = domain.TimeWindow{
			Start: s.selection.SelectedClipStartTime(),
			End:   s.selection.SelectedClipEndTime(),
		}
	}
	return sel
}

func (s *effectInteractor) frequencySelection() domain.FrequencyBounds {
	if spectral, ok := s.selection.(domain.SpectralSelection); ok {
		return spectral.FrequencySelection()
	}
	return domain.NoFrequencyBounds()
}

func (s *effectInteractor) storedDuration(ctx context.Context, id domain.EffectID) (float64, bool) {
	raw, ok, err := s.settings.GetConfig(ctx, id, CurrentSettingsGroup, DurationKey)
	if err != nil {
		logging.Warnf("read stored duration for %s: %v", id, err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil || d < 0 {
		logging.Warnf("ignoring stored duration %q for %s", raw, id)
		return 0, false
	}
	return d, true
}

func (s *effectInteractor) adjust(ctx context.Context, meta domain.EffectMeta, inst domain.Instance, inv domain.InvocationContext, settings *domain.EffectSettings) error {
	effectType := meta.Symbol
	if effectType == "" {
		effectType = string(meta.ID)
	}

	handle := s.instances.register(inst, inv, settings)
	err := s.interactive.Show(ctx, effectType, handle)
	s.instances.unregister(handle)
	if err != nil {
		logging.Debugf("show effect %s: %v", effectType, err)
		return err
	}

	if err := s.presets.SaveUserPreset(ctx, meta.ID, CurrentSettingsGroup, *settings); err != nil {
		logging.Warnf("save user preset for %s: %v", meta.ID, err)
	}
	return nil
}

func (s *effectInteractor) recordOutcome(ctx context.Context, meta domain.EffectMeta, flags domain.Flags, window domain.TimeWindow) {
	if !flags.Has(domain.FlagSkipHistory) {
		if err := s.history.Record(ctx, meta); err != nil {
			logging.Errorf("push history for %s: %v", meta.ID, err)
		}
	}

	if !flags.Has(domain.FlagDontRepeatLast) && meta.IsProcessor() {
		s.repeat.Set(meta.ID)
	}

	if meta.IsGenerator() {
		duration := window.Duration()
		if duration <= 0 {
			return
		}
		value := strconv.FormatFloat(duration, 'g', -1, 64)
		if err := s.settings.SetConfig(ctx, meta.ID, CurrentSettingsGroup, DurationKey, value); err != nil {
			logging.Warnf("persist duration for %s: %v", meta.ID, err)
		}
	}
}
