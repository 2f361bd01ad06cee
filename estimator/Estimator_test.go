package estimator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

const tolerance = 1e-6

// numericalGrad returns the central finite difference gradient of f at x
func numericalGrad(f func(*mat.Dense) float64, x *mat.Dense) *mat.Dense {
	const h = 1e-6
	rows, cols := x.Dims()
	grad := mat.NewDense(rows, cols, nil)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			orig := x.At(i, j)

			x.Set(i, j, orig+h)
			plus := f(x)
			x.Set(i, j, orig-h)
			minus := f(x)
			x.Set(i, j, orig)

			grad.Set(i, j, (plus-minus)/(2*h))
		}
	}
	return grad
}

func requireDenseInDelta(t *testing.T, want, have *mat.Dense, delta float64) {
	t.Helper()
	require.True(t, mat.EqualApprox(want, have, delta),
		"want:\n%v\nhave:\n%v", mat.Formatted(want), mat.Formatted(have))
}

func TestTDTargets(t *testing.T) {
	next := mat.NewDense(3, 2, []float64{
		1, 4,
		-2, -3,
		9, 9,
	})
	rewards := []float64{1, 0.5, 2}
	dones := []bool{false, false, true}

	targets := TDTargets(rewards, next, dones, 0.5)
	require.InDeltaSlice(t, []float64{3, -0.5, 2}, targets, tolerance)
}

func TestTDLoss(t *testing.T) {
	q := mat.NewDense(3, 2, []float64{
		0.5, 3,
		-1, 0,
		2, 1,
	})
	actions := []int{1, 0, 0}
	targets := []float64{2.5, 1.5, 2.2}

	t.Run("Squared", func(t *testing.T) {
		loss, grad := TDLoss(Squared, q, actions, targets)

		// diffs: 0.5, -2.5, -0.2
		want := (0.5*0.25 + 0.5*6.25 + 0.5*0.04) / 3
		require.InDelta(t, want, loss, tolerance)

		wantGrad := mat.NewDense(3, 2, []float64{
			0, 0.5 / 3,
			-2.5 / 3, 0,
			-0.2 / 3, 0,
		})
		requireDenseInDelta(t, wantGrad, grad, tolerance)
	})

	t.Run("Huber", func(t *testing.T) {
		loss, grad := TDLoss(Huber, q, actions, targets)

		want := (0.5*0.25 + (2.5 - 0.5) + 0.5*0.04) / 3
		require.InDelta(t, want, loss, tolerance)

		// Linear region clips the gradient magnitude to 1
		wantGrad := mat.NewDense(3, 2, []float64{
			0, 0.5 / 3,
			-1.0 / 3, 0,
			-0.2 / 3, 0,
		})
		requireDenseInDelta(t, wantGrad, grad, tolerance)

		numerical := numericalGrad(func(x *mat.Dense) float64 {
			l, _ := TDLoss(Huber, x, actions, targets)
			return l
		}, q)
		requireDenseInDelta(t, numerical, grad, 1e-4)
	})

	t.Run("Mismatch", func(t *testing.T) {
		require.Panics(t, func() { TDLoss(Squared, q, []int{0}, targets) })
		require.Panics(t, func() {
			TDLoss(Squared, q, []int{0, 0, 2}, targets)
		})
	})
}

func TestLossKindValidate(t *testing.T) {
	require.NoError(t, Squared.Validate())
	require.NoError(t, Huber.Validate())
	require.Error(t, LossKind("L1").Validate())
}

func TestQuantileMidpoints(t *testing.T) {
	require.InDeltaSlice(t, []float64{0.125, 0.375, 0.625, 0.875},
		QuantileMidpoints(4), tolerance)
}

func TestQuantileTargets(t *testing.T) {
	// 2 actions x 2 bins; action 1 has the larger mean
	next := mat.NewDense(2, 4, []float64{
		0, 1, 2, 3,
		5, 5, 0, 0,
	})
	rewards := []float64{1, -1}
	dones := []bool{false, true}

	targets := QuantileTargets(rewards, next, dones, 0.5, 2, 2)
	want := mat.NewDense(2, 2, []float64{
		2, 2.5,
		-1, -1,
	})
	requireDenseInDelta(t, want, targets, tolerance)
}

func TestQuantileLoss(t *testing.T) {
	taus := QuantileMidpoints(3)
	pred := mat.NewDense(2, 6, []float64{
		0.1, 0.4, 2.7, 9, 9, 9,
		-9, -9, -9, -0.3, 0.25, 3.1,
	})
	actions := []int{0, 1}
	targets := mat.NewDense(2, 3, []float64{
		0.2, 0.65, 1.35,
		0.5, -0.45, 1.1,
	})

	loss, grad := QuantileLoss(pred, actions, targets, taus, 2)
	require.True(t, loss > 0)

	// Untaken actions receive no gradient
	for _, col := range []int{3, 4, 5} {
		require.Zero(t, grad.At(0, col))
	}
	for _, col := range []int{0, 1, 2} {
		require.Zero(t, grad.At(1, col))
	}

	numerical := numericalGrad(func(x *mat.Dense) float64 {
		l, _ := QuantileLoss(x, actions, targets, taus, 2)
		return l
	}, pred)
	requireDenseInDelta(t, numerical, grad, 1e-4)
}

func TestQuantileLossAsymmetry(t *testing.T) {
	taus := []float64{0.9}
	pred := mat.NewDense(1, 1, []float64{0})

	// Underestimating a high quantile costs more than overestimating it
	under, _ := QuantileLoss(pred, []int{0}, mat.NewDense(1, 1, []float64{0.5}),
		taus, 1)
	over, _ := QuantileLoss(pred, []int{0}, mat.NewDense(1, 1, []float64{-0.5}),
		taus, 1)
	require.InDelta(t, 0.9*0.125, under, tolerance)
	require.InDelta(t, 0.1*0.125, over, tolerance)
}

func TestGAEUndiscounted(t *testing.T) {
	returns, advantages := GAE([]float64{1, 1, 1}, []float64{0, 0, 0}, 1, 1)
	require.InDeltaSlice(t, []float64{3, 2, 1}, returns, tolerance)
	require.InDeltaSlice(t, []float64{3, 2, 1}, advantages, tolerance)
}

func TestGAEMatchesRecursion(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 12
	gamma, lambda := 0.9, 0.8

	rewards := make([]float64, n)
	values := make([]float64, n)
	for i := range rewards {
		rewards[i] = rng.Float64()*2 - 1
		values[i] = rng.Float64()*4 - 2
	}

	wantRet := make([]float64, n)
	wantAdv := make([]float64, n)
	wantRet[n-1] = rewards[n-1]
	wantAdv[n-1] = rewards[n-1] - values[n-1]
	for t := n - 2; t >= 0; t-- {
		wantRet[t] = rewards[t] + gamma*wantRet[t+1]
		wantAdv[t] = rewards[t] - values[t] +
			gamma*(values[t+1]+lambda*wantAdv[t+1])
	}

	returns, advantages := GAE(rewards, values, gamma, lambda)
	require.InDeltaSlice(t, wantRet, returns, tolerance)
	require.InDeltaSlice(t, wantAdv, advantages, tolerance)
}

func TestGAEEmpty(t *testing.T) {
	returns, advantages := GAE(nil, nil, 0.99, 0.95)
	require.Empty(t, returns)
	require.Empty(t, advantages)
}

func TestDiscountCumSum(t *testing.T) {
	require.InDeltaSlice(t, []float64{1.75, 1.5, 1},
		DiscountCumSum([]float64{1, 1, 1}, 0.5), tolerance)
	require.Empty(t, DiscountCumSum(nil, 0.5))
}

func TestNormalizeAdvantages(t *testing.T) {
	adv := []float64{1, 2, 3, 4, 5}
	normalized := NormalizeAdvantages(adv)

	sum, sumSq := 0.0, 0.0
	for _, a := range normalized {
		sum += a
		sumSq += a * a
	}
	require.InDelta(t, 0, sum, tolerance)

	// Sample standard deviation of 1
	require.InDelta(t, 1, math.Sqrt(sumSq/float64(len(adv)-1)), 1e-4)

	// Input is left untouched
	require.Equal(t, []float64{1, 2, 3, 4, 5}, adv)
}

func TestSoftmax(t *testing.T) {
	probs := Softmax([]float64{0, math.Log(3)})
	require.InDeltaSlice(t, []float64{0.25, 0.75}, probs, tolerance)

	// Large logits must not overflow
	probs = Softmax([]float64{1000, 1000})
	require.InDeltaSlice(t, []float64{0.5, 0.5}, probs, tolerance)
}

func TestActorCriticLoss(t *testing.T) {
	outputs := mat.NewDense(2, 3, []float64{
		0.2, -0.4, 1.5,
		1.1, 0.3, -0.2,
	})
	actions := []int{0, 1}
	returns := []float64{1, 0.5}
	advantages := []float64{0.7, -1.2}

	loss, grad := ActorCriticLoss(outputs, actions, returns, advantages)

	logProbs0 := LogSoftmax([]float64{0.2, -0.4})
	logProbs1 := LogSoftmax([]float64{1.1, 0.3})
	want := -logProbs0[0]*0.7 - logProbs1[1]*-1.2 +
		(1-1.5)*(1-1.5) + (0.5+0.2)*(0.5+0.2)
	require.InDelta(t, want, loss, tolerance)

	numerical := numericalGrad(func(x *mat.Dense) float64 {
		l, _ := ActorCriticLoss(x, actions, returns, advantages)
		return l
	}, outputs)
	requireDenseInDelta(t, numerical, grad, 1e-4)
}

func TestInnerSteps(t *testing.T) {
	tests := []struct {
		updates, t, batch, want int
	}{
		{4, 100, 32, 16},
		{1, 32, 32, 1},
		{3, 33, 32, 6},
		{2, 0, 8, 0},
	}
	for _, test := range tests {
		require.Equal(t, test.want, InnerSteps(test.updates, test.t,
			test.batch))
	}
	require.Panics(t, func() { InnerSteps(1, 1, 0) })
}

func TestClippedSurrogate(t *testing.T) {
	tests := []struct {
		name                string
		ratio, adv, eps     float64
		want                float64
		wantUnclippedChosen bool
	}{
		{"PositiveAdvantageClipped", 1.5, 2, 0.2, 2.4, false},
		{"NegativeAdvantageClipped", 0.5, -1, 0.2, -0.8, false},
		{"InsideRange", 1.1, 2, 0.2, 2.2, true},
		{"PositiveAdvantageLowRatio", 0.5, 1, 0.2, 0.5, true},
		{"NegativeAdvantageHighRatio", 1.5, -1, 0.2, -1.5, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.InDelta(t, test.want, ClippedSurrogate(test.ratio,
				test.adv, test.eps), tolerance)

			_, unclipped := clippedSurrogate(test.ratio, test.adv, test.eps)
			require.Equal(t, test.wantUnclippedChosen, unclipped)
		})
	}
}

func TestPPOLossClippedBranchHasNoPolicyGradient(t *testing.T) {
	// Uniform policy over 2 actions against an old probability of 0.25
	// gives a ratio of 2, well outside [0.8, 1.2]
	outputs := mat.NewDense(1, 3, []float64{0, 0, 0.5})
	loss, grad := PPOLoss(outputs, []int{0}, []float64{0.25},
		[]float64{1}, []float64{1}, 0.2)

	require.InDelta(t, -1.2+0.25, loss, tolerance)
	require.Zero(t, grad.At(0, 0))
	require.Zero(t, grad.At(0, 1))
	require.InDelta(t, -1.0, grad.At(0, 2), tolerance)
}

func TestPPOLossGradient(t *testing.T) {
	outputs := mat.NewDense(3, 4, []float64{
		0.1, 0.2, -0.3, 0.4,
		-0.5, 0.6, 0.1, 0.0,
		0.3, 0.3, 0.3, -1.0,
	})
	actions := []int{2, 1, 0}
	returns := []float64{1, -1, 0.5}
	advantages := []float64{0.8, -0.6, 1.3}

	// Old probabilities close to the current ones keep every ratio
	// inside the clipping range
	oldProbs := make([]float64, len(actions))
	for i, a := range actions {
		oldProbs[i] = Softmax(outputs.RawRowView(i)[:3])[a] * 1.05
	}

	_, grad := PPOLoss(outputs, actions, oldProbs, returns, advantages, 0.2)
	numerical := numericalGrad(func(x *mat.Dense) float64 {
		l, _ := PPOLoss(x, actions, oldProbs, returns, advantages, 0.2)
		return l
	}, outputs)
	requireDenseInDelta(t, numerical, grad, 1e-4)
}
