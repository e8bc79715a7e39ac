package project_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"fxapply/internal/adapter/secondary/project"
	"fxapply/internal/domain"
)

func key(track, clip string) domain.ClipKey {
	return domain.ClipKey{TrackID: domain.TrackID(track), ClipID: domain.ClipID(clip)}
}

func sampleProject(t *testing.T) *project.Project {
	t.Helper()
	p := project.New(48000)
	clips := []struct {
		track string
		clip  project.Clip
	}{
		{"vox", project.Clip{ID: "b", Start: 4, End: 6}},
		{"vox", project.Clip{ID: "a", Start: 1, End: 2}},
		{"drums", project.Clip{ID: "k", Start: 0, End: 8}},
	}
	for _, c := range clips {
		if err := p.AddClip(domain.TrackID(c.track), c.clip); err != nil {
			t.Fatalf("AddClip failed: %v", err)
		}
	}
	return p
}

func TestClipBoundsAndSpan(t *testing.T) {
	p := sampleProject(t)

	w, err := p.ClipBounds(key("vox", "a"))
	if err != nil || w != (domain.TimeWindow{Start: 1, End: 2}) {
		t.Fatalf("ClipBounds = %+v %v", w, err)
	}
	if _, err := p.ClipBounds(key("vox", "zz")); domain.CodeOf(err) != domain.CodeNotFound {
		t.Fatalf("expected not found for missing clip, got %v", err)
	}
	if _, err := p.ClipBounds(key("bass", "a")); domain.CodeOf(err) != domain.CodeNotFound {
		t.Fatalf("expected not found for missing track, got %v", err)
	}

	if err := p.SelectClips([]domain.ClipKey{key("vox", "b"), key("vox", "a")}); err != nil {
		t.Fatalf("SelectClips failed: %v", err)
	}
	if start, end := p.SelectedClipStartTime(), p.SelectedClipEndTime(); start != 1 || end != 6 {
		t.Fatalf("span = %v..%v, want 1..6", start, end)
	}
	if !reflect.DeepEqual(p.SelectedTracks(), []domain.TrackID{"vox"}) {
		t.Fatalf("selected tracks = %v", p.SelectedTracks())
	}
}

func TestSelectClipsRejectsUnknown(t *testing.T) {
	p := sampleProject(t)
	if err := p.SelectClips([]domain.ClipKey{key("vox", "nope")}); err == nil {
		t.Fatal("expected error for unknown clip")
	}
	if p.HasSelectedClips() {
		t.Fatal("selection must be unchanged on error")
	}
}

func TestClipsKeepStartOrder(t *testing.T) {
	p := sampleProject(t)
	tracks := p.Tracks()
	if tracks[0].ID != "vox" || tracks[0].Clips[0].ID != "a" || tracks[0].Clips[1].ID != "b" {
		t.Fatalf("unexpected layout: %#v", tracks)
	}
	if err := p.AddClip("vox", project.Clip{ID: "a", Start: 9, End: 10}); err == nil {
		t.Fatal("expected duplicate clip error")
	}
	if err := p.AddClip("vox", project.Clip{ID: "x", Start: 3, End: 2}); err == nil {
		t.Fatal("expected inverted clip error")
	}
}

func TestClipsInWindowAndNextID(t *testing.T) {
	p := sampleProject(t)
	got := p.ClipsInWindow([]domain.TrackID{"vox", "drums"}, domain.TimeWindow{Start: 1.5, End: 4.5})
	want := []domain.ClipKey{key("vox", "a"), key("vox", "b"), key("drums", "k")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ClipsInWindow = %v, want %v", got, want)
	}
	if id := p.NextClipID("vox", "a"); id != "a1" {
		t.Fatalf("NextClipID = %q", id)
	}
	if err := p.AddClip("vox", project.Clip{ID: "gen1", Start: 7, End: 8}); err != nil {
		t.Fatalf("AddClip failed: %v", err)
	}
	if id := p.NextClipID("vox", "gen"); id != "gen2" {
		t.Fatalf("NextClipID = %q, want gen2", id)
	}
}

func TestFileRepositoryRoundTrip(t *testing.T) {
	repo, err := project.NewFileRepository(filepath.Join(t.TempDir(), "nested", "project.json"))
	if err != nil {
		t.Fatalf("NewFileRepository failed: %v", err)
	}
	if repo.Exists() {
		t.Fatal("project file should not exist yet")
	}

	empty, err := repo.Load(22050)
	if err != nil {
		t.Fatalf("Load missing failed: %v", err)
	}
	if empty.SampleRate() != 22050 || len(empty.TrackIDs()) != 0 {
		t.Fatalf("unexpected default project")
	}

	p := sampleProject(t)
	if err := p.UpdateClip(key("vox", "a"), func(c *project.Clip) { c.Tags = append(c.Tags, "amplify") }); err != nil {
		t.Fatalf("UpdateClip failed: %v", err)
	}
	if err := p.SelectClips([]domain.ClipKey{key("vox", "a")}); err != nil {
		t.Fatalf("SelectClips failed: %v", err)
	}
	p.SetDataSelected(1, 2)
	p.SetFrequencySelection(domain.FrequencyBounds{F0: 300, F1: domain.UndefinedFrequency})
	if err := repo.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := repo.Load(44100)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.SampleRate() != 48000 {
		t.Fatalf("rate = %v", loaded.SampleRate())
	}
	if !reflect.DeepEqual(loaded.Tracks(), p.Tracks()) {
		t.Fatalf("tracks differ:\n%#v\n%#v", loaded.Tracks(), p.Tracks())
	}
	if !reflect.DeepEqual(loaded.SelectedClips(), []domain.ClipKey{key("vox", "a")}) {
		t.Fatalf("selected clips = %v", loaded.SelectedClips())
	}
	if loaded.DataSelectedStartTime() != 1 || loaded.DataSelectedEndTime() != 2 {
		t.Fatalf("data selection not restored")
	}
	if f := loaded.FrequencySelection(); f.F0 != 300 || f.F1 != domain.UndefinedFrequency {
		t.Fatalf("freq = %+v", f)
	}
}
