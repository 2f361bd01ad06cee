package environment

import (
	"context"

	"github.com/samuelfneumann/rlcore/timestep"
)

// StepLimit wraps an Environment so that episodes end after a fixed
// number of steps
type StepLimit struct {
	Environment
	episodeSteps int
	steps        int
}

// NewStepLimit creates and returns a new step limit around env. A
// non-positive limit leaves episodes unlimited.
func NewStepLimit(env Environment, episodeSteps int) *StepLimit {
	return &StepLimit{Environment: env, episodeSteps: episodeSteps}
}

// Reset starts a new episode
func (s *StepLimit) Reset(ctx context.Context) (timestep.Snapshot, error) {
	s.steps = 0
	return s.Environment.Reset(ctx)
}

// Step takes an environmental step, ending the episode if the step
// limit has been reached
func (s *StepLimit) Step(ctx context.Context,
	action int) (timestep.Snapshot, error) {
	snapshot, err := s.Environment.Step(ctx, action)
	if err != nil {
		return snapshot, err
	}

	s.steps++
	if s.episodeSteps > 0 && s.steps >= s.episodeSteps {
		snapshot.Done = true
	}
	return snapshot, nil
}
