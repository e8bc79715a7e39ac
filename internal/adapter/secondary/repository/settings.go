package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"fxapply/internal/domain"
)

// GetConfig implements domain.SettingsStore.
func (s *Store) GetConfig(ctx context.Context, effect domain.EffectID, group, key string) (string, bool, error) {
	ctx = ensureContext(ctx)
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM effect_settings WHERE effect = ? AND grp = ? AND key = ?",
		string(effect), group, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s/%s/%s: %w", effect, group, key, err)
	}
	return value, true, nil
}

// SetConfig implements domain.SettingsStore.
func (s *Store) SetConfig(ctx context.Context, effect domain.EffectID, group, key, value string) error {
	err := s.exec(ctx,
		`INSERT INTO effect_settings (effect, grp, key, value, updated_at) VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(effect, grp, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(effect), group, key, value, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("set setting %s/%s/%s: %w", effect, group, key, err)
	}
	return nil
}

type presetPayload struct {
	Duration       float64            `json:"duration"`
	DurationFormat string             `json:"durationFormat,omitempty"`
	Start          float64            `json:"start"`
	End            float64            `json:"end"`
	F0             float64            `json:"f0"`
	F1             float64            `json:"f1"`
	Params         map[string]float64 `json:"params,omitempty"`
}

// SaveUserPreset implements domain.PresetStore. One preset is kept per
// effect and group.
func (s *Store) SaveUserPreset(ctx context.Context, effect domain.EffectID, group string, settings domain.EffectSettings) error {
	payload, err := json.Marshal(presetPayload{
		Duration:       settings.Duration,
		DurationFormat: settings.DurationFormat,
		Start:          settings.Window.Start,
		End:            settings.Window.End,
		F0:             settings.Freq.F0,
		F1:             settings.Freq.F1,
		Params:         settings.Params,
	})
	if err != nil {
		return fmt.Errorf("marshal preset: %w", err)
	}
	err = s.exec(ctx,
		`INSERT INTO user_presets (effect, grp, payload, saved_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(effect, grp) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		string(effect), group, string(payload), s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("save preset %s/%s: %w", effect, group, err)
	}
	return nil
}

// LoadUserPreset returns the preset saved for effect and group.
func (s *Store) LoadUserPreset(ctx context.Context, effect domain.EffectID, group string) (domain.EffectSettings, bool, error) {
	ctx = ensureContext(ctx)
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM user_presets WHERE effect = ? AND grp = ?",
		string(effect), group,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.EffectSettings{}, false, nil
	}
	if err != nil {
		return domain.EffectSettings{}, false, fmt.Errorf("load preset %s/%s: %w", effect, group, err)
	}

	var p presetPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.EffectSettings{}, false, fmt.Errorf("unmarshal preset %s/%s: %w", effect, group, err)
	}
	return domain.EffectSettings{
		Duration:       p.Duration,
		DurationFormat: p.DurationFormat,
		Window:         domain.TimeWindow{Start: p.Start, End: p.End},
		Freq:           domain.FrequencyBounds{F0: p.F0, F1: p.F1},
		Params:         p.Params,
	}, true, nil
}
