package cli

import (
	"context"

	"fxapply/internal/adapter/secondary/repository"
	"fxapply/internal/domain"
	"fxapply/internal/logging"
)

// stateStore is the slice of the state store the effect use case writes to.
type stateStore interface {
	domain.SettingsStore
	domain.PresetStore
	domain.HistoryLog
}

// readOnlyStore serves stored settings to a dry run and drops every write,
// so a rehearsed effect leaves durations, presets and history as they were.
type readOnlyStore struct {
	store *repository.Store
}

func (s readOnlyStore) GetConfig(ctx context.Context, effect domain.EffectID, group, key string) (string, bool, error) {
	return s.store.GetConfig(ctx, effect, group, key)
}

func (readOnlyStore) SetConfig(_ context.Context, effect domain.EffectID, group, key, value string) error {
	logging.Debugf("dry-run: skip config %s/%s/%s=%s", effect, group, key, value)
	return nil
}

func (readOnlyStore) SaveUserPreset(_ context.Context, effect domain.EffectID, group string, _ domain.EffectSettings) error {
	logging.Debugf("dry-run: skip preset %s/%s", effect, group)
	return nil
}

func (readOnlyStore) PushEntry(_ context.Context, long, _ string) error {
	logging.Debugf("dry-run: skip history %q", long)
	return nil
}
