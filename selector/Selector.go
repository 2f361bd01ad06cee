// Package selector implements stateless action selection over a row of
// action scores or action probabilities
package selector

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// ErrInvalidDistribution is returned when a categorical walk runs off
// the end of a probability vector, which happens when the
// probabilities sum to less than the uniform draw.
var ErrInvalidDistribution = errors.New("invalid distribution")

// Greedy returns the index of the largest score. Ties go to the first
// index.
func Greedy(scores []float64) int {
	if len(scores) == 0 {
		panic("greedy: no scores to select from")
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}

// EpsilonGreedy selects a uniformly random action with probability
// epsilon and the greedy action otherwise
func EpsilonGreedy(scores []float64, rng *rand.Rand, epsilon float64) int {
	if rng.Float64() < epsilon {
		return rng.Intn(len(scores))
	}
	return Greedy(scores)
}

// Categorical samples an index from the distribution probs by walking
// the buckets in order and subtracting each bucket's mass from a
// uniform draw.
func Categorical(probs []float64, rng *rand.Rand) (int, error) {
	u := rng.Float64()
	for i, p := range probs {
		if u < p {
			return i, nil
		}
		u -= p
	}
	return 0, errors.Wrapf(ErrInvalidDistribution, "categorical: %v", probs)
}

// IsInvalidDistribution returns whether err reports a probability
// vector which could not be sampled from
func IsInvalidDistribution(err error) bool {
	return errors.Is(err, ErrInvalidDistribution)
}

// RandomArgMax returns the index of a maximal value, breaking ties
// uniformly at random. order must be a permutation of the indices of
// values; it is shuffled in place and then walked, keeping the first
// strict maximum found.
func RandomArgMax(values []float64, rng *rand.Rand, order []int) int {
	if len(values) != len(order) {
		panic("randomargmax: order must index every value")
	}

	for i := len(order) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}

	best := -1
	max := math.Inf(-1)
	for _, i := range order {
		if values[i] > max {
			max = values[i]
			best = i
		}
	}

	if best < 0 {
		panic("randomargmax: no maximum in values")
	}
	return best
}

// Order returns the identity permutation over n indices, for use with
// RandomArgMax
func Order(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
