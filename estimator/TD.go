// Package estimator implements the learning targets and losses used by
// the agents. Every loss returns both its value and the gradient of the
// loss with respect to each approximator output, so that the
// approximator can apply the gradient without knowing the loss.
package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LossKind determines the per-element loss used by TDLoss
type LossKind string

const (
	Squared LossKind = "Squared"
	Huber   LossKind = "Huber"
)

// Validate returns an error if k is not a known loss
func (k LossKind) Validate() error {
	switch k {
	case Squared, Huber:
		return nil
	default:
		return fmt.Errorf("validate: unknown loss %q", string(k))
	}
}

// TDTargets computes the one-step bootstrapped targets
//
//	r + γ max_a' Q(s', a') (1 - done)
//
// Row i of nextScores holds the action values of the next state of
// transition i.
func TDTargets(rewards []float64, nextScores *mat.Dense, dones []bool,
	gamma float64) []float64 {
	rows, _ := nextScores.Dims()
	if rows != len(rewards) || rows != len(dones) {
		panic(fmt.Sprintf("tdtargets: batch mismatch\n\twant(%v)"+
			"\n\thave(rewards: %v, dones: %v)", rows, len(rewards),
			len(dones)))
	}

	targets := make([]float64, len(rewards))
	for i := range targets {
		targets[i] = rewards[i]
		if !dones[i] {
			targets[i] += gamma * floats.Max(nextScores.RawRowView(i))
		}
	}
	return targets
}

// TDLoss computes the mean over the batch of the loss between the
// action values of the taken actions and their targets. Only the
// entries of q indexed by actions receive a gradient.
func TDLoss(kind LossKind, q *mat.Dense, actions []int,
	targets []float64) (float64, *mat.Dense) {
	rows, cols := q.Dims()
	if rows != len(actions) || rows != len(targets) {
		panic(fmt.Sprintf("tdloss: batch mismatch\n\twant(%v)"+
			"\n\thave(actions: %v, targets: %v)", rows, len(actions),
			len(targets)))
	}

	grad := mat.NewDense(rows, cols, nil)
	batch := float64(rows)
	loss := 0.0
	for i, a := range actions {
		if a < 0 || a >= cols {
			panic(fmt.Sprintf("tdloss: action out of range\n\twant([0, %v))"+
				"\n\thave(%v)", cols, a))
		}

		diff := q.At(i, a) - targets[i]
		var l, dl float64
		switch kind {
		case Squared:
			l, dl = 0.5*diff*diff, diff
		case Huber:
			l, dl = huber(diff)
		default:
			panic(fmt.Sprintf("tdloss: unknown loss %q", string(kind)))
		}

		loss += l / batch
		grad.Set(i, a, dl/batch)
	}
	return loss, grad
}

// huber returns the Huber loss with κ = 1 of x and its derivative
func huber(x float64) (float64, float64) {
	if math.Abs(x) <= 1.0 {
		return 0.5 * x * x, x
	}
	return math.Abs(x) - 0.5, math.Copysign(1.0, x)
}
