// Package deepq implements deep Q-learning with experience replay and
// target networks, along with its quantile regression variant.
//
// Transitions are stored in a shuffled replay buffer. Once the buffer
// holds more transitions than the batch size, every step samples a
// batch and takes one gradient step on the TD loss, the targets being
// computed by a target network. The target network is synchronized
// with the learned network at fixed intervals of learning steps, and
// the exploration rate decays with each synchronization.
package deepq

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/rlcore/agent"
	"github.com/samuelfneumann/rlcore/expreplay"
	"github.com/samuelfneumann/rlcore/network"
	"github.com/samuelfneumann/rlcore/selector"
	"github.com/samuelfneumann/rlcore/targetnet"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// DeepQ implements the deep Q-learning algorithm with an
// epsilon-greedy behaviour policy
type DeepQ struct {
	agent.Mode
	config   Config
	features int
	actions  int
	logger   zerolog.Logger
	rng      *rand.Rand
	head     head

	// Rebuilt on Reset
	policy *network.MLPApproximator // Network being learned
	target *network.MLPApproximator // Network providing update targets
	memory *expreplay.Memory
	sync   *targetnet.Synchronizer

	loss float64 // Loss of the latest update
}

// New creates and returns a new DeepQ agent for states of features
// dimensions and actions actions
func New(features, actions int, c Config, seed uint64,
	logger zerolog.Logger) (*DeepQ, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "new")
	}
	if features < 1 || actions < 1 {
		return nil, fmt.Errorf("new: features and actions must be "+
			"positive\n\twant(>0, >0)\n\thave(%v, %v)", features, actions)
	}

	var h head = scalarHead{kind: c.Loss, gamma: c.Gamma}
	name := "deepq"
	if c.Quantiles > 0 {
		h = newQuantileHead(actions, c.Quantiles, c.Gamma)
		name = "qrdeepq"
	}

	d := &DeepQ{
		config:   c,
		features: features,
		actions:  actions,
		logger:   logger.With().Str("component", name).Logger(),
		rng:      rand.New(rand.NewSource(seed)),
		head:     h,
	}
	if err := d.Reset(); err != nil {
		return nil, errors.Wrap(err, "new")
	}
	return d, nil
}

// outputs returns the number of outputs of the action-value network
func (d *DeepQ) outputs() int {
	if d.config.Quantiles > 0 {
		return d.actions * d.config.Quantiles
	}
	return d.actions
}

// React learns from the replay buffer, if it holds enough transitions,
// and returns the action to take in state
func (d *DeepQ) React(state []float64) (int, error) {
	if len(state) != d.features {
		return -1, fmt.Errorf("react: invalid state dimension\n\twant(%v)"+
			"\n\thave(%v)", d.features, len(state))
	}

	if !d.IsEval() {
		if err := d.memory.SetState(state); err != nil {
			return -1, errors.Wrap(err, "react")
		}
		if d.memory.Len() > d.config.BatchSize() {
			if err := d.learn(); err != nil {
				return -1, errors.Wrap(err, "react")
			}
		}
	}

	out, err := d.policy.Predict(mat.NewDense(1, d.features, state))
	if err != nil {
		return -1, errors.Wrap(err, "react")
	}
	values := d.head.values(out.RawRowView(0))
	action := selector.EpsilonGreedy(values, d.rng, d.sync.Epsilon())

	if !d.IsEval() {
		if err := d.memory.SetAction(action); err != nil {
			return -1, errors.Wrap(err, "react")
		}
	}
	return action, nil
}

// Collect records the reward for the last action and whether the
// episode has ended
func (d *DeepQ) Collect(reward float64, done bool) error {
	if d.IsEval() {
		return nil
	}
	return errors.Wrap(d.memory.SetRewardAndMask(reward, done), "collect")
}

// Reset rebuilds the networks, the replay buffer, and the exploration
// schedule
func (d *DeepQ) Reset() error {
	if err := d.Close(); err != nil {
		return errors.Wrap(err, "reset")
	}

	policy, err := network.NewApproximator(d.config.Network, d.features,
		d.outputs())
	if err != nil {
		return errors.Wrap(err, "reset")
	}
	target, err := network.NewApproximator(d.config.Network, d.features,
		d.outputs())
	if err != nil {
		return errors.Wrap(err, "reset")
	}
	if err := target.SetParameters(policy.Parameters()); err != nil {
		return errors.Wrap(err, "reset")
	}

	memory, err := expreplay.New(d.config.Capacity, true, d.rng)
	if err != nil {
		return errors.Wrap(err, "reset")
	}

	sync, err := targetnet.NewPolyak(d.config.SyncInterval, d.config.Tau,
		d.config.Exploration, d.logger)
	if err != nil {
		return errors.Wrap(err, "reset")
	}

	d.policy, d.target, d.memory, d.sync = policy, target, memory, sync
	d.loss = 0
	d.logger.Debug().Int("outputs", d.outputs()).Msg("reset")
	return nil
}

// Close releases the resources held by the networks
func (d *DeepQ) Close() error {
	for _, net := range []*network.MLPApproximator{d.policy, d.target} {
		if net == nil {
			continue
		}
		if err := net.Close(); err != nil {
			return err
		}
	}
	d.policy, d.target = nil, nil
	return nil
}

// Epsilon returns the current exploration rate
func (d *DeepQ) Epsilon() float64 {
	return d.sync.Epsilon()
}

// Loss returns the loss of the most recent update
func (d *DeepQ) Loss() float64 {
	return d.loss
}

// learn takes one gradient step on a batch sampled from the replay
// buffer and synchronizes the target network if it is due
func (d *DeepQ) learn() error {
	batch, err := d.memory.SampleBatch(d.config.BatchSize())
	if err != nil {
		return errors.Wrap(err, "learn")
	}

	pred, err := d.policy.Predict(batch.States)
	if err != nil {
		return errors.Wrap(err, "learn")
	}
	next, err := d.target.Predict(batch.NextStates)
	if err != nil {
		return errors.Wrap(err, "learn")
	}

	loss, grad := d.head.loss(pred, next, batch)
	if err := d.policy.Step(batch.States, grad); err != nil {
		return errors.Wrap(err, "learn")
	}
	d.loss = loss

	if _, err := d.sync.Step(d.target, d.policy); err != nil {
		return errors.Wrap(err, "learn")
	}
	return nil
}
