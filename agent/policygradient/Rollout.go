package policygradient

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/rlcore/agent"
	"github.com/samuelfneumann/rlcore/estimator"
	"github.com/samuelfneumann/rlcore/expreplay"
)

// rollout implements the interaction shared by the agents which learn
// once per episode. Transitions are stored in order and, when an
// episode ends, handed to update as a single batch.
type rollout struct {
	agent.Mode
	*actorCritic
	capacity int
	logger   zerolog.Logger
	memory   *expreplay.Memory
	update   func(*expreplay.Batch) error
	updates  int
}

// React records state and samples an action from the policy
func (r *rollout) React(state []float64) (int, error) {
	if err := r.checkState("react", state); err != nil {
		return -1, err
	}

	if !r.IsEval() {
		if err := r.memory.SetState(state); err != nil {
			return -1, errors.Wrap(err, "react")
		}
	}

	action, err := r.sample(state)
	if err != nil {
		return -1, errors.Wrap(err, "react")
	}

	if !r.IsEval() {
		if err := r.memory.SetAction(action); err != nil {
			return -1, errors.Wrap(err, "react")
		}
	}
	return action, nil
}

// Collect records the reward for the last action and whether the
// episode has ended. The end of an episode triggers learning from
// the stored rollout, which is then cleared. An episode which does not
// fit in the rollout buffer is discarded and reported as an error.
func (r *rollout) Collect(reward float64, done bool) error {
	if r.IsEval() {
		return nil
	}
	if err := r.memory.SetRewardAndMask(reward, done); err != nil {
		return errors.Wrap(err, "collect")
	}
	if err := r.memory.Intact(); err != nil {
		r.memory.Reset()
		return errors.Wrapf(err, "collect: episode longer than capacity %v",
			r.capacity)
	}
	if !done {
		return nil
	}

	batch, err := r.memory.OrderedBatch()
	if err != nil {
		return errors.Wrap(err, "collect")
	}
	if err := r.update(batch); err != nil {
		return errors.Wrap(err, "collect")
	}
	r.updates++
	r.memory.Reset()
	return nil
}

// Reset rebuilds the network and the rollout buffer
func (r *rollout) Reset() error {
	if err := r.rebuild(); err != nil {
		return errors.Wrap(err, "reset")
	}
	memory, err := expreplay.New(r.capacity, false, r.rng)
	if err != nil {
		return errors.Wrap(err, "reset")
	}
	r.memory = memory
	r.updates = 0
	return nil
}

// Updates returns the number of rollouts learned from
func (r *rollout) Updates() int {
	return r.updates
}

// advantages returns the rewards-to-go and GAE advantages of a rollout
func advantages(c GAEConfig, rewards, values []float64) ([]float64,
	[]float64) {
	returns, adv := estimator.GAE(rewards, values, c.Gamma, c.Lambda)
	if c.Normalize {
		adv = estimator.NormalizeAdvantages(adv)
	}
	return returns, adv
}
