package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ActorCriticLoss computes the actor-critic loss of a batch of
// outputs, where each row of outputs holds the action logits followed
// by a single state value:
//
//	L = -Σ_t log π(a_t|s_t) A_t + Σ_t (R_t - v(s_t))²
//
// The gradient is written into both the logit and the value columns.
func ActorCriticLoss(outputs *mat.Dense, actions []int, returns,
	advantages []float64) (float64, *mat.Dense) {
	rows, cols := outputs.Dims()
	checkPolicyBatch("actorcriticloss", rows, cols, actions, returns,
		advantages)
	numActions := cols - 1

	grad := mat.NewDense(rows, cols, nil)
	loss := 0.0
	for t, a := range actions {
		row := outputs.RawRowView(t)
		logProbs := LogSoftmax(row[:numActions])
		adv := advantages[t]

		loss -= logProbs[a] * adv
		for k, lp := range logProbs {
			indicator := 0.0
			if k == a {
				indicator = 1.0
			}
			grad.Set(t, k, adv*(math.Exp(lp)-indicator))
		}

		diff := returns[t] - row[numActions]
		loss += diff * diff
		grad.Set(t, numActions, -2*diff)
	}
	return loss, grad
}

// checkPolicyBatch panics if a batch of policy outputs cannot be
// paired with its actions, returns, and advantages
func checkPolicyBatch(op string, rows, cols int, actions []int, returns,
	advantages []float64) {
	if cols < 2 {
		panic(fmt.Sprintf("%v: outputs need at least one logit and a "+
			"value\n\twant(>1)\n\thave(%v)", op, cols))
	}
	if rows != len(actions) || rows != len(returns) ||
		rows != len(advantages) {
		panic(fmt.Sprintf("%v: batch mismatch\n\twant(%v)\n\thave(actions: "+
			"%v, returns: %v, advantages: %v)", op, rows, len(actions),
			len(returns), len(advantages)))
	}
	for _, a := range actions {
		if a < 0 || a >= cols-1 {
			panic(fmt.Sprintf("%v: action out of range\n\twant([0, %v))"+
				"\n\thave(%v)", op, cols-1, a))
		}
	}
}
