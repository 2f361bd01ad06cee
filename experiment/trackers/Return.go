// Package trackers implements Trackers of per-episode statistics and a
// chart of their learning curves
package trackers

import (
	"github.com/samuelfneumann/rlcore/experiment/tracker"
	"github.com/samuelfneumann/rlcore/timestep"
)

// Return tracks and saves the episodic return in an experiment. When
// an environment returns a step, this Tracker will extract the reward
// and accumulate the return for each episode in the experiment.
//
// Note: An episode must finish for this Tracker to save its data.
// If the last episode in an experiment does not finish, that episode's
// return will not be saved.
type Return struct {
	currentReturn  float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker which saves its
// data at filename
func NewReturn(filename string) *Return {
	return &Return{filename: filename}
}

// Track accumulates the reward of a step. When the step ends the
// episode, the return is cached and tracking starts over for the next
// episode.
func (r *Return) Track(step timestep.Snapshot) {
	r.currentReturn += step.Reward
	if step.Done {
		r.episodeReturns = append(r.episodeReturns, r.currentReturn)
		r.currentReturn = 0.0
	}
}

// Data returns the returns of all finished episodes
func (r *Return) Data() []float64 {
	return append([]float64(nil), r.episodeReturns...)
}

// Save saves the data tracked by the Return Tracker to disk
func (r *Return) Save() error {
	return tracker.SaveData(r.filename, r.episodeReturns)
}
