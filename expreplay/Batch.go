package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/rlcore/timestep"
	"gonum.org/v1/gonum/mat"
)

// Batch stacks a number of Transitions so that row i of each field
// describes Transition i. The next state row of a terminal Transition
// is all zeros.
type Batch struct {
	States     *mat.Dense
	NextStates *mat.Dense
	Actions    []int
	Rewards    []float64
	Dones      []bool
}

// NewBatch stacks transitions into a Batch. All states must have the
// same dimension.
func NewBatch(transitions []timestep.Transition) (*Batch, error) {
	if len(transitions) == 0 {
		return nil, &ReplayError{Op: "newbatch", Err: errEmptyBuffer}
	}

	n := len(transitions)
	features := len(transitions[0].State)
	if features == 0 {
		return nil, fmt.Errorf("newbatch: states must have at least one " +
			"feature")
	}

	states := mat.NewDense(n, features, nil)
	nextStates := mat.NewDense(n, features, nil)
	actions := make([]int, n)
	rewards := make([]float64, n)
	dones := make([]bool, n)

	for i, t := range transitions {
		if len(t.State) != features {
			return nil, fmt.Errorf("newbatch: illegal state length at "+
				"row %v\n\twant(%v)\n\thave(%v)", i, features, len(t.State))
		}
		states.SetRow(i, t.State)

		if !t.Terminal() {
			if len(t.NextState) != features {
				return nil, fmt.Errorf("newbatch: illegal next state length "+
					"at row %v\n\twant(%v)\n\thave(%v)", i, features,
					len(t.NextState))
			}
			nextStates.SetRow(i, t.NextState)
		}

		actions[i] = t.Action
		rewards[i] = t.Reward
		dones[i] = t.Done
	}

	return &Batch{
		States:     states,
		NextStates: nextStates,
		Actions:    actions,
		Rewards:    rewards,
		Dones:      dones,
	}, nil
}

// Len returns the number of Transitions in the Batch
func (b *Batch) Len() int {
	return len(b.Actions)
}
