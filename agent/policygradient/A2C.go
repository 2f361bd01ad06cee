package policygradient

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/rlcore/agent"
	"github.com/samuelfneumann/rlcore/estimator"
	"github.com/samuelfneumann/rlcore/expreplay"
	"github.com/samuelfneumann/rlcore/timestep"
	"gonum.org/v1/gonum/mat"
)

// A2C implements a one-step advantage actor-critic. Each transition
// (s, a, r, s') is learned from as soon as it is complete, using the
// advantage r + γ v(s') - v(s).
type A2C struct {
	agent.Mode
	*actorCritic
	config A2CConfig
	logger zerolog.Logger

	recorder *expreplay.Recorder
	pending  *expreplay.Queue
	updates  int
}

// NewA2C creates a new A2C agent for states of features dimensions
// and actions actions
func NewA2C(features, actions int, c A2CConfig, seed uint64,
	logger zerolog.Logger) (*A2C, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "new")
	}
	ac, err := newActorCritic(c.Network, features, actions, seed)
	if err != nil {
		return nil, err
	}

	pending := &expreplay.Queue{}
	a := &A2C{
		actorCritic: ac,
		config:      c,
		logger:      logger.With().Str("component", "a2c").Logger(),
		recorder:    expreplay.NewRecorder(pending),
		pending:     pending,
	}
	if err := a.Reset(); err != nil {
		return nil, errors.Wrap(err, "new")
	}
	return a, nil
}

// React learns from the last transition, if it is complete, and
// samples an action from the policy in state
func (a *A2C) React(state []float64) (int, error) {
	if err := a.checkState("react", state); err != nil {
		return -1, err
	}

	if !a.IsEval() {
		if err := a.recorder.SetState(state); err != nil {
			return -1, errors.Wrap(err, "react")
		}
		if err := a.learn(); err != nil {
			return -1, errors.Wrap(err, "react")
		}
	}

	action, err := a.sample(state)
	if err != nil {
		return -1, errors.Wrap(err, "react")
	}

	if !a.IsEval() {
		if err := a.recorder.SetAction(action); err != nil {
			return -1, errors.Wrap(err, "react")
		}
	}
	return action, nil
}

// Collect records the reward for the last action and whether the
// episode has ended, learning from the final transition of an episode
func (a *A2C) Collect(reward float64, done bool) error {
	if a.IsEval() {
		return nil
	}
	if err := a.recorder.SetRewardAndMask(reward, done); err != nil {
		return errors.Wrap(err, "collect")
	}
	return errors.Wrap(a.learn(), "collect")
}

// Reset rebuilds the network and drops any partial transition
func (a *A2C) Reset() error {
	if err := a.rebuild(); err != nil {
		return errors.Wrap(err, "reset")
	}
	a.recorder.Reset()
	a.pending.Drain()
	a.updates = 0
	return nil
}

// learn takes one gradient step for each completed transition
func (a *A2C) learn() error {
	for _, t := range a.pending.Drain() {
		if err := a.update(t); err != nil {
			return err
		}
	}
	return nil
}

func (a *A2C) update(t timestep.Transition) error {
	states := mat.NewDense(1, a.features, t.State)
	out, err := a.net.Predict(states)
	if err != nil {
		return err
	}

	ret := t.Reward
	if !t.Done {
		next, err := a.value(t.NextState)
		if err != nil {
			return err
		}
		ret += a.config.Gamma * next
	}
	adv := ret - out.At(0, a.actions)

	loss, grad := estimator.ActorCriticLoss(out, []int{t.Action},
		[]float64{ret}, []float64{adv})
	if err := a.net.Step(states, grad); err != nil {
		return err
	}

	a.updates++
	a.logger.Trace().Float64("loss", loss).Int("update", a.updates).Msg("update")
	return nil
}
