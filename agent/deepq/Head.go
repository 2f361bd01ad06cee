package deepq

import (
	"github.com/samuelfneumann/rlcore/estimator"
	"github.com/samuelfneumann/rlcore/expreplay"
	"gonum.org/v1/gonum/mat"
)

// head interprets the outputs of the action-value network
type head interface {
	// values returns one action value per action from a row of
	// network outputs
	values(row []float64) []float64

	// loss returns the loss of the predictions for a batch, given the
	// target network's predictions for the next states, and its
	// gradient with respect to the predictions
	loss(pred, next *mat.Dense, b *expreplay.Batch) (float64, *mat.Dense)
}

// scalarHead treats each output as the action value of one action
type scalarHead struct {
	kind  estimator.LossKind
	gamma float64
}

func (h scalarHead) values(row []float64) []float64 {
	return row
}

func (h scalarHead) loss(pred, next *mat.Dense,
	b *expreplay.Batch) (float64, *mat.Dense) {
	targets := estimator.TDTargets(b.Rewards, next, b.Dones, h.gamma)
	return estimator.TDLoss(h.kind, pred, b.Actions, targets)
}

// quantileHead treats the outputs as actions consecutive blocks of
// quantiles of the return distribution
type quantileHead struct {
	actions int
	taus    []float64
	gamma   float64
}

func newQuantileHead(actions, bins int, gamma float64) quantileHead {
	return quantileHead{
		actions: actions,
		taus:    estimator.QuantileMidpoints(bins),
		gamma:   gamma,
	}
}

func (h quantileHead) values(row []float64) []float64 {
	return estimator.QuantileMeans(row, h.actions, len(h.taus))
}

func (h quantileHead) loss(pred, next *mat.Dense,
	b *expreplay.Batch) (float64, *mat.Dense) {
	targets := estimator.QuantileTargets(b.Rewards, next, b.Dones, h.gamma,
		h.actions, len(h.taus))
	return estimator.QuantileLoss(pred, b.Actions, targets, h.taus,
		h.actions)
}
