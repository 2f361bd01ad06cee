// Package policygradient implements actor-critic agents with softmax
// policies over discrete actions.
//
// Each agent owns a single network whose outputs are the action logits
// followed by a state value estimate. A2C learns from every transition
// with a one-step TD advantage. GAE and PPO store a rollout and learn
// from it at the end of each episode using generalized advantage
// estimation, PPO taking several clipped minibatch steps per rollout.
package policygradient

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/rlcore/estimator"
	"github.com/samuelfneumann/rlcore/network"
	"github.com/samuelfneumann/rlcore/selector"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// actorCritic is the network shared by the agents in this package.
// Output rows are laid out as [logits..., value].
type actorCritic struct {
	cfg      network.Config
	features int
	actions  int
	rng      *rand.Rand
	net      *network.MLPApproximator
}

func newActorCritic(cfg network.Config, features, actions int,
	seed uint64) (*actorCritic, error) {
	if features < 1 || actions < 1 {
		return nil, fmt.Errorf("new: features and actions must be "+
			"positive\n\twant(>0, >0)\n\thave(%v, %v)", features, actions)
	}
	return &actorCritic{
		cfg:      cfg,
		features: features,
		actions:  actions,
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// rebuild replaces the network with a freshly initialized one
func (ac *actorCritic) rebuild() error {
	if err := ac.Close(); err != nil {
		return err
	}
	net, err := network.NewApproximator(ac.cfg, ac.features, ac.actions+1)
	if err != nil {
		return err
	}
	ac.net = net
	return nil
}

// Close releases the resources held by the network
func (ac *actorCritic) Close() error {
	if ac.net == nil {
		return nil
	}
	err := ac.net.Close()
	ac.net = nil
	return err
}

// checkState returns an error if state has the wrong dimension
func (ac *actorCritic) checkState(op string, state []float64) error {
	if len(state) != ac.features {
		return fmt.Errorf("%v: invalid state dimension\n\twant(%v)"+
			"\n\thave(%v)", op, ac.features, len(state))
	}
	return nil
}

// Policy returns the action probabilities of state
func (ac *actorCritic) Policy(state []float64) ([]float64, error) {
	if err := ac.checkState("policy", state); err != nil {
		return nil, err
	}

	out, err := ac.net.Predict(mat.NewDense(1, ac.features, state))
	if err != nil {
		return nil, errors.Wrap(err, "policy")
	}
	return estimator.Softmax(out.RawRowView(0)[:ac.actions]), nil
}

// value returns the state value estimate of state
func (ac *actorCritic) value(state []float64) (float64, error) {
	out, err := ac.net.Predict(mat.NewDense(1, ac.features, state))
	if err != nil {
		return 0, err
	}
	return out.At(0, ac.actions), nil
}

// sample samples an action from the policy in state
func (ac *actorCritic) sample(state []float64) (int, error) {
	probs, err := ac.Policy(state)
	if err != nil {
		return -1, err
	}
	return selector.Categorical(probs, ac.rng)
}

// values returns the value column of a matrix of outputs
func (ac *actorCritic) values(out *mat.Dense) []float64 {
	return mat.Col(nil, ac.actions, out)
}
