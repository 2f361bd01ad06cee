package trackers

import (
	"github.com/samuelfneumann/rlcore/experiment/tracker"
	"github.com/samuelfneumann/rlcore/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment.
// Note that an episode must finish for this Tracker to save its data.
type EpisodeLength struct {
	steps          int
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength Tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track counts the steps of the current episode, caching the count
// when the episode ends
func (e *EpisodeLength) Track(step timestep.Snapshot) {
	e.steps++
	if step.Done {
		e.episodeLengths = append(e.episodeLengths, float64(e.steps))
		e.steps = 0
	}
}

// Data returns the lengths of all finished episodes
func (e *EpisodeLength) Data() []float64 {
	return append([]float64(nil), e.episodeLengths...)
}

// Save saves the data tracked by the EpisodeLength Tracker to disk
func (e *EpisodeLength) Save() error {
	return tracker.SaveData(e.filename, e.episodeLengths)
}
