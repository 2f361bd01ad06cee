package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// InnerSteps returns the number of minibatch updates performed on a
// rollout of length t, given innerUpdates passes over the rollout in
// minibatches of size innerBatch
func InnerSteps(innerUpdates, t, innerBatch int) int {
	if innerBatch < 1 {
		panic(fmt.Sprintf("innersteps: illegal batch size\n\twant(>0)"+
			"\n\thave(%v)", innerBatch))
	}
	return innerUpdates * ((t + innerBatch - 1) / innerBatch)
}

// ClippedSurrogate returns the clipped surrogate objective of a single
// sample:
//
//	min(ρ A, clip(ρ, 1-ε, 1+ε) A)
func ClippedSurrogate(ratio, adv, eps float64) float64 {
	surrogate, _ := clippedSurrogate(ratio, adv, eps)
	return surrogate
}

// clippedSurrogate returns the clipped surrogate and whether the
// unclipped term was selected. Ties select the unclipped term.
func clippedSurrogate(ratio, adv, eps float64) (float64, bool) {
	unclipped := ratio * adv
	clipped := math.Max(1-eps, math.Min(ratio, 1+eps)) * adv
	if unclipped <= clipped {
		return unclipped, true
	}
	return clipped, false
}

// PPOLoss computes the PPO loss of a batch of outputs laid out as in
// ActorCriticLoss:
//
//	L = -Σ_t min(ρ_t A_t, clip(ρ_t, 1-ε, 1+ε) A_t) + Σ_t (R_t - v(s_t))²
//
// where ρ_t = π(a_t|s_t) / oldProbs[t]. The policy gradient only flows
// through samples for which the unclipped term is selected.
func PPOLoss(outputs *mat.Dense, actions []int, oldProbs, returns,
	advantages []float64, eps float64) (float64, *mat.Dense) {
	rows, cols := outputs.Dims()
	checkPolicyBatch("ppoloss", rows, cols, actions, returns, advantages)
	if len(oldProbs) != rows {
		panic(fmt.Sprintf("ppoloss: batch mismatch\n\twant(%v)"+
			"\n\thave(old probabilities: %v)", rows, len(oldProbs)))
	}
	numActions := cols - 1

	grad := mat.NewDense(rows, cols, nil)
	loss := 0.0
	for t, a := range actions {
		row := outputs.RawRowView(t)
		probs := Softmax(row[:numActions])
		ratio := probs[a] / oldProbs[t]

		surrogate, unclipped := clippedSurrogate(ratio, advantages[t], eps)
		loss -= surrogate
		if unclipped {
			// dρ/dz_k = ρ (1{k = a} - π_k)
			for k, p := range probs {
				indicator := 0.0
				if k == a {
					indicator = 1.0
				}
				grad.Set(t, k, -advantages[t]*ratio*(indicator-p))
			}
		}

		diff := returns[t] - row[numActions]
		loss += diff * diff
		grad.Set(t, numActions, -2*diff)
	}
	return loss, grad
}
