package project

import (
	"math"

	"fxapply/internal/domain"
)

func (p *Project) SelectedClips() []domain.ClipKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ClipKey(nil), p.selectedClips...)
}

func (p *Project) SetSelectedClips(clips []domain.ClipKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selectedClips = append([]domain.ClipKey(nil), clips...)
}

func (p *Project) SelectedTracks() []domain.TrackID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.TrackID(nil), p.selectedTracks...)
}

func (p *Project) SetSelectedTracks(tracks []domain.TrackID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selectedTracks = append([]domain.TrackID(nil), tracks...)
}

func (p *Project) HasSelectedClips() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.selectedClips) > 0
}

// SelectedClipStartTime is the earliest start among the selected clips.
func (p *Project) SelectedClipStartTime() float64 {
	start, _ := p.clipSpan()
	return start
}

// SelectedClipEndTime is the latest end among the selected clips.
func (p *Project) SelectedClipEndTime() float64 {
	_, end := p.clipSpan()
	return end
}

func (p *Project) clipSpan() (float64, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	start, end := math.Inf(1), math.Inf(-1)
	for _, key := range p.selectedClips {
		c := p.clipLocked(key)
		if c == nil {
			continue
		}
		start = math.Min(start, c.Start)
		end = math.Max(end, c.End)
	}
	if math.IsInf(start, 1) {
		return 0, 0
	}
	return start, end
}

func (p *Project) DataSelectedStartTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.Start
}

func (p *Project) DataSelectedEndTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.End
}

func (p *Project) SetDataSelected(start, end float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = domain.TimeWindow{Start: start, End: end}
}

// FrequencySelection implements domain.SpectralSelection.
func (p *Project) FrequencySelection() domain.FrequencyBounds {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.freq
}

// SetFrequencySelection sets the spectral bounds; use domain.UndefinedFrequency
// to clear one end.
func (p *Project) SetFrequencySelection(b domain.FrequencyBounds) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freq = b
}

// SelectClips validates keys against the project and selects them together
// with their tracks. The data selection is cleared.
func (p *Project) SelectClips(keys []domain.ClipKey) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var tracks []domain.TrackID
	seen := map[domain.TrackID]bool{}
	for _, key := range keys {
		if p.clipLocked(key) == nil {
			return domain.NewError(domain.CodeNotFound, "clip %s not found", key)
		}
		if !seen[key.TrackID] {
			seen[key.TrackID] = true
			tracks = append(tracks, key.TrackID)
		}
	}
	p.selectedClips = append([]domain.ClipKey(nil), keys...)
	p.selectedTracks = tracks
	p.data = domain.TimeWindow{}
	return nil
}

// SelectTime selects a time range on tracks and clears the clip selection.
// No tracks means every track.
func (p *Project) SelectTime(w domain.TimeWindow, tracks []domain.TrackID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(tracks) == 0 {
		for _, t := range p.tracks {
			tracks = append(tracks, t.ID)
		}
	}
	p.selectedClips = nil
	p.selectedTracks = append([]domain.TrackID(nil), tracks...)
	p.data = w
}
