// Package timestep implements the data exchanged between environments,
// agents, and replay memories during the agent-environment interaction
package timestep

import (
	"fmt"
)

// Snapshot packages together the result of a single environment reset
// or step: the observed state, the reward for reaching it, and whether
// the episode has ended.
type Snapshot struct {
	State  []float64
	Reward float64
	Done   bool
}

// NewSnapshot returns a new Snapshot. The state is copied so that
// environments may keep mutating their own state vector.
func NewSnapshot(state []float64, reward float64, done bool) Snapshot {
	return Snapshot{
		State:  clone(state),
		Reward: reward,
		Done:   done,
	}
}

func (s Snapshot) String() string {
	str := "Snapshot | State: %v  |  Reward:  %.2f  |  Done: %v"

	return fmt.Sprintf(str, s.State, s.Reward, s.Done)
}

// Transition packages together a single (s, a, r, s') transition. A
// Transition that ends an episode has a nil NextState, since there is
// no successor state to bootstrap from.
type Transition struct {
	State     []float64
	NextState []float64
	Action    int
	Reward    float64
	Done      bool
}

// NewTransition returns a new Transition. Both states are copied. If
// done is true, the next state is dropped.
func NewTransition(state, nextState []float64, action int, reward float64,
	done bool) Transition {
	var next []float64
	if !done {
		next = clone(nextState)
	}

	return Transition{
		State:     clone(state),
		NextState: next,
		Action:    action,
		Reward:    reward,
		Done:      done,
	}
}

// Terminal returns whether the Transition has no successor state
func (t Transition) Terminal() bool {
	return t.NextState == nil
}

func (t Transition) String() string {
	str := "Transition | State: %v  |  Action: %v  |  Reward:  %.2f  |  " +
		"Next State: %v  |  Done: %v"

	return fmt.Sprintf(str, t.State, t.Action, t.Reward, t.NextState, t.Done)
}

func clone(v []float64) []float64 {
	if v == nil {
		return nil
	}
	c := make([]float64, len(v))
	copy(c, v)
	return c
}
