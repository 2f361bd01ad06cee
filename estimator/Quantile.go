package estimator

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// QuantileMidpoints returns the n quantile midpoints τ_i = (i + 0.5)/n
func QuantileMidpoints(n int) []float64 {
	taus := make([]float64, n)
	for i := range taus {
		taus[i] = (float64(i) + 0.5) / float64(n)
	}
	return taus
}

// QuantileMeans returns the mean over quantiles of each action in a
// row laid out as actions consecutive blocks of bins quantiles
func QuantileMeans(row []float64, actions, bins int) []float64 {
	if len(row) != actions*bins {
		panic(fmt.Sprintf("quantilemeans: illegal row length\n\twant(%v)"+
			"\n\thave(%v)", actions*bins, len(row)))
	}

	means := make([]float64, actions)
	for a := range means {
		means[a] = floats.Sum(row[a*bins:(a+1)*bins]) / float64(bins)
	}
	return means
}

// QuantileTargets computes the distributional targets of a batch. For
// each row the greedy next action a* is chosen by its mean quantile
// value and the targets are r + γ θ(s', a*, j) (1 - done) for each
// quantile j. The returned matrix has one row per transition and bins
// columns.
func QuantileTargets(rewards []float64, nextQuantiles *mat.Dense,
	dones []bool, gamma float64, actions, bins int) *mat.Dense {
	rows, _ := nextQuantiles.Dims()
	if rows != len(rewards) || rows != len(dones) {
		panic(fmt.Sprintf("quantiletargets: batch mismatch\n\twant(%v)"+
			"\n\thave(rewards: %v, dones: %v)", rows, len(rewards),
			len(dones)))
	}

	targets := mat.NewDense(rows, bins, nil)
	for i := 0; i < rows; i++ {
		row := nextQuantiles.RawRowView(i)
		best := floats.MaxIdx(QuantileMeans(row, actions, bins))

		for j := 0; j < bins; j++ {
			target := rewards[i]
			if !dones[i] {
				target += gamma * row[best*bins+j]
			}
			targets.Set(i, j, target)
		}
	}
	return targets
}

// QuantileLoss computes the quantile Huber loss, averaged over the
// batch and every pair of predicted and target quantiles:
//
//	mean_{b,i,j} |τ_i - 1{u < 0}| huber(u),  u = T_bj - θ_{b,a_b,i}
//
// Only the quantiles of the taken actions receive a gradient.
func QuantileLoss(pred *mat.Dense, actions []int, targets *mat.Dense,
	taus []float64, actionsCount int) (float64, *mat.Dense) {
	rows, cols := pred.Dims()
	bins := len(taus)
	tRows, tCols := targets.Dims()
	if cols != actionsCount*bins {
		panic(fmt.Sprintf("quantileloss: illegal prediction columns"+
			"\n\twant(%v)\n\thave(%v)", actionsCount*bins, cols))
	}
	if rows != len(actions) || rows != tRows || tCols != bins {
		panic(fmt.Sprintf("quantileloss: batch mismatch\n\twant(%v x %v)"+
			"\n\thave(actions: %v, targets: %v x %v)", rows, bins,
			len(actions), tRows, tCols))
	}

	grad := mat.NewDense(rows, cols, nil)
	scale := float64(rows * bins * bins)
	loss := 0.0
	for b, a := range actions {
		if a < 0 || a >= actionsCount {
			panic(fmt.Sprintf("quantileloss: action out of range"+
				"\n\twant([0, %v))\n\thave(%v)", actionsCount, a))
		}

		for i, tau := range taus {
			col := a*bins + i
			theta := pred.At(b, col)

			dTheta := 0.0
			for j := 0; j < bins; j++ {
				u := targets.At(b, j) - theta
				weight := tau
				if u < 0 {
					weight = 1.0 - tau
				}

				l, dl := huber(u)
				loss += weight * l / scale

				// du/dθ = -1
				dTheta -= weight * dl / scale
			}
			grad.Set(b, col, dTheta)
		}
	}
	return loss, grad
}
