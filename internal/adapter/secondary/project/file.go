package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fxapply/internal/domain"
)

// FileRepository loads and saves a project as a JSON document.
// This is a secondary adapter.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRepository creates a file-based project repository.
func NewFileRepository(path string) (*FileRepository, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}

	return &FileRepository{path: path}, nil
}

// Path returns the project file location.
func (f *FileRepository) Path() string {
	return f.path
}

// persistedProject represents the JSON structure on disk.
type persistedProject struct {
	SampleRate float64            `json:"sampleRate"`
	Tracks     []persistedTrack   `json:"tracks"`
	Selection  persistedSelection `json:"selection"`
}

type persistedTrack struct {
	ID    string          `json:"id"`
	Clips []persistedClip `json:"clips"`
}

type persistedClip struct {
	ID    string   `json:"id"`
	Start float64  `json:"start"`
	End   float64  `json:"end"`
	Tags  []string `json:"tags,omitempty"`
}

type persistedSelection struct {
	Clips  []string `json:"clips,omitempty"`
	Tracks []string `json:"tracks,omitempty"`
	Start  float64  `json:"start"`
	End    float64  `json:"end"`
	F0     *float64 `json:"f0,omitempty"`
	F1     *float64 `json:"f1,omitempty"`
}

// Exists reports whether the project file is present.
func (f *FileRepository) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Load reads the project from disk. A missing file yields an empty project
// at defaultRate.
func (f *FileRepository) Load(defaultRate float64) (*Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(defaultRate), nil
		}
		return nil, fmt.Errorf("read project: %w", err)
	}

	var persisted persistedProject
	if err := json.Unmarshal(data, &persisted); err != nil {
		return nil, fmt.Errorf("unmarshal project: %w", err)
	}

	rate := persisted.SampleRate
	if rate <= 0 {
		rate = defaultRate
	}
	p := New(rate)
	for _, t := range persisted.Tracks {
		p.AddTrack(domain.TrackID(t.ID))
		for _, c := range t.Clips {
			clip := Clip{ID: domain.ClipID(c.ID), Start: c.Start, End: c.End, Tags: c.Tags}
			if err := p.AddClip(domain.TrackID(t.ID), clip); err != nil {
				return nil, fmt.Errorf("load project: %w", err)
			}
		}
	}

	sel := persisted.Selection
	var keys []domain.ClipKey
	for _, raw := range sel.Clips {
		key, err := domain.ParseClipKey(raw)
		if err != nil {
			return nil, fmt.Errorf("load selection: %w", err)
		}
		if _, ok := p.Clip(key); ok {
			keys = append(keys, key)
		}
	}
	tracks := make([]domain.TrackID, 0, len(sel.Tracks))
	for _, t := range sel.Tracks {
		tracks = append(tracks, domain.TrackID(t))
	}
	p.SetSelectedClips(keys)
	p.SetSelectedTracks(tracks)
	p.SetDataSelected(sel.Start, sel.End)

	freq := domain.NoFrequencyBounds()
	if sel.F0 != nil {
		freq.F0 = *sel.F0
	}
	if sel.F1 != nil {
		freq.F1 = *sel.F1
	}
	p.SetFrequencySelection(freq)
	return p, nil
}

// Save persists the project to disk.
func (f *FileRepository) Save(p *Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	persisted := persistedProject{SampleRate: p.SampleRate()}
	for _, t := range p.Tracks() {
		pt := persistedTrack{ID: string(t.ID), Clips: []persistedClip{}}
		for _, c := range t.Clips {
			pt.Clips = append(pt.Clips, persistedClip{ID: string(c.ID), Start: c.Start, End: c.End, Tags: c.Tags})
		}
		persisted.Tracks = append(persisted.Tracks, pt)
	}

	for _, key := range p.SelectedClips() {
		persisted.Selection.Clips = append(persisted.Selection.Clips, key.String())
	}
	for _, t := range p.SelectedTracks() {
		persisted.Selection.Tracks = append(persisted.Selection.Tracks, string(t))
	}
	persisted.Selection.Start = p.DataSelectedStartTime()
	persisted.Selection.End = p.DataSelectedEndTime()
	freq := p.FrequencySelection()
	if freq.F0 != domain.UndefinedFrequency {
		persisted.Selection.F0 = &freq.F0
	}
	if freq.F1 != domain.UndefinedFrequency {
		persisted.Selection.F1 = &freq.F1
	}

	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	// Atomic write
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename tmp: %w", err)
	}

	return nil
}
