// Package project holds the in-memory project model: tracks, clips, the
// selection and the sample rate.
package project

import (
	"fmt"
	"sort"
	"sync"

	"fxapply/internal/domain"
)

// DefaultSampleRate is used when a project does not declare one.
const DefaultSampleRate = 44100.0

// Clip is a contiguous piece of audio on a track.
type Clip struct {
	ID    domain.ClipID
	Start float64
	End   float64
	// Tags lists the effects applied to the clip, oldest first.
	Tags []string
}

// Track is an ordered list of clips.
type Track struct {
	ID    domain.TrackID
	Clips []Clip
}

// Project implements domain.SelectionController, domain.SpectralSelection,
// domain.ClipLookup and domain.ProjectInfo.
// This is a secondary adapter.
type Project struct {
	mu             sync.Mutex
	rate           float64
	tracks         []*Track
	selectedClips  []domain.ClipKey
	selectedTracks []domain.TrackID
	data           domain.TimeWindow
	freq           domain.FrequencyBounds
}

// New creates an empty project. A non-positive rate means DefaultSampleRate.
func New(rate float64) *Project {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return &Project{rate: rate, freq: domain.NoFrequencyBounds()}
}

// SampleRate implements domain.ProjectInfo.
func (p *Project) SampleRate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// TrackIDs implements domain.ProjectInfo.
func (p *Project) TrackIDs() []domain.TrackID {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]domain.TrackID, 0, len(p.tracks))
	for _, t := range p.tracks {
		ids = append(ids, t.ID)
	}
	return ids
}

// Tracks returns a copy of the tracks and their clips.
func (p *Project) Tracks() []Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Track, 0, len(p.tracks))
	for _, t := range p.tracks {
		out = append(out, copyTrack(t))
	}
	return out
}

// AddTrack appends an empty track. Adding an existing track is a no-op.
func (p *Project) AddTrack(id domain.TrackID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trackLocked(id, true)
}

// AddClip places c on track, creating the track when needed. Clips stay
// ordered by start time.
func (p *Project) AddClip(track domain.TrackID, c Clip) error {
	if track == "" || c.ID == "" {
		return fmt.Errorf("track and clip ids are required")
	}
	if c.End < c.Start {
		return fmt.Errorf("clip %s: end %.6f before start %.6f", c.ID, c.End, c.Start)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.trackLocked(track, true)
	for _, existing := range t.Clips {
		if existing.ID == c.ID {
			return fmt.Errorf("clip %s already exists on track %s", c.ID, track)
		}
	}
	c.Tags = append([]string(nil), c.Tags...)
	t.Clips = append(t.Clips, c)
	sort.SliceStable(t.Clips, func(i, j int) bool { return t.Clips[i].Start < t.Clips[j].Start })
	return nil
}

// Clip returns a copy of the clip at key.
func (p *Project) Clip(key domain.ClipKey) (Clip, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.clipLocked(key)
	if c == nil {
		return Clip{}, false
	}
	out := *c
	out.Tags = append([]string(nil), c.Tags...)
	return out, true
}

// UpdateClip applies fn to the clip at key.
func (p *Project) UpdateClip(key domain.ClipKey, fn func(*Clip)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.clipLocked(key)
	if c == nil {
		return domain.NewError(domain.CodeNotFound, "clip %s not found", key)
	}
	fn(c)
	if c.End < c.Start {
		c.End = c.Start
	}
	return nil
}

// ClipsInWindow returns the clips on tracks that overlap w, in track order.
func (p *Project) ClipsInWindow(tracks []domain.TrackID, w domain.TimeWindow) []domain.ClipKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	var keys []domain.ClipKey
	for _, id := range tracks {
		t := p.trackLocked(id, false)
		if t == nil {
			continue
		}
		for _, c := range t.Clips {
			if c.Start < w.End && c.End > w.Start {
				keys = append(keys, domain.ClipKey{TrackID: t.ID, ClipID: c.ID})
			}
		}
	}
	return keys
}

// NextClipID returns an unused clip id on track with the given prefix.
func (p *Project) NextClipID(track domain.TrackID, prefix string) domain.ClipID {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.trackLocked(track, false)
	for n := 1; ; n++ {
		id := domain.ClipID(fmt.Sprintf("%s%d", prefix, n))
		if t == nil || !hasClip(t, id) {
			return id
		}
	}
}

// ClipBounds implements domain.ClipLookup.
func (p *Project) ClipBounds(key domain.ClipKey) (domain.TimeWindow, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trackLocked(key.TrackID, false) == nil {
		return domain.TimeWindow{}, domain.NewError(domain.CodeNotFound, "track %s not found", key.TrackID)
	}
	c := p.clipLocked(key)
	if c == nil {
		return domain.TimeWindow{}, domain.NewError(domain.CodeNotFound, "clip %s not found", key)
	}
	return domain.TimeWindow{Start: c.Start, End: c.End}, nil
}

func (p *Project) trackLocked(id domain.TrackID, create bool) *Track {
	for _, t := range p.tracks {
		if t.ID == id {
			return t
		}
	}
	if !create {
		return nil
	}
	t := &Track{ID: id}
	p.tracks = append(p.tracks, t)
	return t
}

func (p *Project) clipLocked(key domain.ClipKey) *Clip {
	t := p.trackLocked(key.TrackID, false)
	if t == nil {
		return nil
	}
	for i := range t.Clips {
		if t.Clips[i].ID == key.ClipID {
			return &t.Clips[i]
		}
	}
	return nil
}

func hasClip(t *Track, id domain.ClipID) bool {
	for _, c := range t.Clips {
		if c.ID == id {
			return true
		}
	}
	return false
}

func copyTrack(t *Track) Track {
	out := Track{ID: t.ID, Clips: make([]Clip, len(t.Clips))}
	for i, c := range t.Clips {
		c.Tags = append([]string(nil), c.Tags...)
		out.Clips[i] = c
	}
	return out
}
