package estimator

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// GAE computes the rewards-to-go and generalized advantage estimates
// GAE(γ, λ) of a single ordered episode following
// https://arxiv.org/abs/1506.02438. The last step of the rollout is
// not bootstrapped:
//
//	R[T-1] = r[T-1]
//	A[T-1] = r[T-1] - v[T-1]
//	R[t]   = r[t] + γ R[t+1]
//	A[t]   = r[t] - v[t] + γ (v[t+1] + λ A[t+1])
func GAE(rewards, values []float64, gamma,
	lambda float64) (returns, advantages []float64) {
	if len(rewards) != len(values) {
		panic(fmt.Sprintf("gae: length mismatch\n\twant(%v)\n\thave(%v)",
			len(rewards), len(values)))
	}
	if len(rewards) == 0 {
		return []float64{}, []float64{}
	}

	n := len(rewards)
	deltas := make([]float64, n)
	for t := 0; t < n; t++ {
		nextValue := 0.0
		if t < n-1 {
			nextValue = values[t+1]
		}
		deltas[t] = rewards[t] + gamma*nextValue - values[t]
	}

	returns = DiscountCumSum(rewards, gamma)
	advantages = DiscountCumSum(deltas, gamma*lambda)
	return returns, advantages
}

// NormalizeAdvantages returns the advantages standardized to mean 0 and
// standard deviation 1
func NormalizeAdvantages(adv []float64) []float64 {
	normalized := make([]float64, len(adv))
	if len(adv) == 0 {
		return normalized
	}

	mean := stat.Mean(adv, nil)
	std := 1e-8
	if len(adv) > 1 {
		std += stat.StdDev(adv, nil)
	}

	copy(normalized, adv)
	floats.AddConst(-mean, normalized)
	floats.Scale(1/std, normalized)
	return normalized
}

// DiscountCumSum computes and returns the discounted cumulative sum
// of all elements of a vector. Given a vector v = [x0 x1 x2 ... xN]
// and discount ℽ, this function computes and returns:
//
//	[
//		x0 + ℽ x1 + ℽ^2 x2 + ... + ℽ^N xN
//		x1 + ℽ^1 x2 + ... + ℽ^(N-1) xN
//		...
//		xN
//	]
func DiscountCumSum(values []float64, discount float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}

	x := mat.NewVecDense(len(values), append([]float64(nil), values...))
	discounts := mat.NewVecDense(x.Len(), nil)
	cumSums := make([]float64, x.Len())
	nextScaled := mat.NewVecDense(x.Len(), nil)
	backing := nextScaled.RawVector().Data

	for i := 0; i < x.Len(); i++ {
		discounts.ScaleVec(discount, discounts)
		discounts.SetVec(x.Len()-i-1, 1)

		nextScaled.MulElemVec(discounts, x)
		cumSums[x.Len()-i-1] = floats.Sum(backing[x.Len()-i-1:])
	}

	return cumSums
}
