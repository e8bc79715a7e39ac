package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"fxapply/internal/adapter/secondary/repository"
	"fxapply/internal/domain"
)

func openStore(t *testing.T) *repository.Store {
	t.Helper()
	store, err := repository.Open(filepath.Join(t.TempDir(), "state", "fxapply.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSettingsRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, ok, err := store.GetConfig(ctx, "tone", "CurrentSettings", "LastUsedDuration"); err != nil || ok {
		t.Fatalf("expected missing value, got ok=%v err=%v", ok, err)
	}
	if err := store.SetConfig(ctx, "tone", "CurrentSettings", "LastUsedDuration", "12.5"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if err := store.SetConfig(ctx, "tone", "CurrentSettings", "LastUsedDuration", "7"); err != nil {
		t.Fatalf("SetConfig overwrite failed: %v", err)
	}
	value, ok, err := store.GetConfig(ctx, "tone", "CurrentSettings", "LastUsedDuration")
	if err != nil || !ok || value != "7" {
		t.Fatalf("GetConfig = %q %v %v", value, ok, err)
	}
	if _, ok, _ := store.GetConfig(ctx, "chirp", "CurrentSettings", "LastUsedDuration"); ok {
		t.Fatal("settings must be scoped per effect")
	}
}

func TestPresetRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	saved := domain.EffectSettings{
		Duration: 3,
		Window:   domain.TimeWindow{Start: 2, End: 5},
		Freq:     domain.NoFrequencyBounds(),
		Params:   map[string]float64{"gain": 1.5},
	}
	if err := store.SaveUserPreset(ctx, "amplify", "CurrentSettings", saved); err != nil {
		t.Fatalf("SaveUserPreset failed: %v", err)
	}
	got, ok, err := store.LoadUserPreset(ctx, "amplify", "CurrentSettings")
	if err != nil || !ok {
		t.Fatalf("LoadUserPreset = %v %v", ok, err)
	}
	if got.Duration != 3 || got.Window != saved.Window || got.Freq != saved.Freq || got.Param("gain", 0) != 1.5 {
		t.Fatalf("unexpected preset: %#v", got)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, name := range []string{"Amplify", "Echo", "Tone"} {
		if err := store.PushEntry(ctx, "Applied effect: "+name, name); err != nil {
			t.Fatalf("PushEntry failed: %v", err)
		}
	}
	entries, err := store.History(ctx, 2)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ShortDescription != "Tone" || entries[1].ShortDescription != "Echo" {
		t.Fatalf("unexpected order: %#v", entries)
	}
	if entries[0].CreatedAt.IsZero() {
		t.Fatal("expected created timestamp")
	}

	all, err := store.History(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("History(0) = %d entries, err %v", len(all), err)
	}
}

func TestStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fxapply.db")
	ctx := context.Background()

	store, err := repository.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.SetState(ctx, repository.StateLastProcessor, "echo"); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	_ = store.Close()

	reopened, err := repository.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	value, ok, err := reopened.GetState(ctx, repository.StateLastProcessor)
	if err != nil || !ok || value != "echo" {
		t.Fatalf("GetState = %q %v %v", value, ok, err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := repository.Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
