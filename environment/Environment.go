// Package environment outlines the interface that simulated and remote
// environments implement, along with helpers shared between
// environments
package environment

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/rlcore/timestep"
	"gonum.org/v1/gonum/spatial/r1"
)

// Environment implements an episodic environment with discrete
// actions enumerated from 0. States are real-valued vectors, each
// dimension bounded by the corresponding interval of StateSpace. An
// unbounded dimension uses infinite bounds.
type Environment interface {
	// Reset starts a new episode and returns its first state
	Reset(ctx context.Context) (timestep.Snapshot, error)

	// Step takes an action and returns the state reached, the reward
	// for reaching it, and whether the episode ended
	Step(ctx context.Context, action int) (timestep.Snapshot, error)

	// Seed seeds the randomness of the start state distribution
	Seed(ctx context.Context, seed uint64) error

	// Render draws the current state
	Render() error

	StateSpace() []r1.Interval
	StateDim() int
	NumActions() int
}

var errInvalidAction = errors.New("invalid action")

// InvalidAction returns an error reporting that action is not one of
// the numActions legal actions
func InvalidAction(action, numActions int) error {
	return errors.Wrapf(errInvalidAction, "%v ∉ [0, %v)", action,
		numActions)
}

// IsInvalidAction returns whether err reports an illegal action
func IsInvalidAction(err error) bool {
	return errors.Is(err, errInvalidAction)
}

// ValidateAction returns an error if action is not in [0, numActions)
func ValidateAction(action, numActions int) error {
	if action < 0 || action >= numActions {
		return InvalidAction(action, numActions)
	}
	return nil
}

// ValidateStateSpace checks that a state space has dim dimensions,
// each a non-empty interval
func ValidateStateSpace(space []r1.Interval, dim int) error {
	if len(space) != dim {
		return fmt.Errorf("validatestatespace: invalid state space and "+
			"dimension\n\twant(%v)\n\thave(%v)", dim, len(space))
	}
	for i, bounds := range space {
		if !(bounds.Min < bounds.Max) {
			return fmt.Errorf("validatestatespace: empty interval at "+
				"dimension %v\n\thave(%v)", i, bounds)
		}
	}
	return nil
}
