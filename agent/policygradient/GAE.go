package policygradient

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/rlcore/estimator"
	"github.com/samuelfneumann/rlcore/expreplay"
)

// GAE implements an actor-critic which learns from each full episode
// with generalized advantage estimates. The whole episode is used in a
// single gradient step.
type GAE struct {
	*rollout
	config GAEConfig
}

// NewGAE creates a new GAE agent for states of features dimensions
// and actions actions
func NewGAE(features, actions int, c GAEConfig, seed uint64,
	logger zerolog.Logger) (*GAE, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "new")
	}
	ac, err := newActorCritic(c.Network, features, actions, seed)
	if err != nil {
		return nil, err
	}

	g := &GAE{
		rollout: &rollout{
			actorCritic: ac,
			capacity:    c.Capacity,
			logger:      logger.With().Str("component", "gae").Logger(),
		},
		config: c,
	}
	g.update = g.learn
	if err := g.Reset(); err != nil {
		return nil, errors.Wrap(err, "new")
	}
	return g, nil
}

func (g *GAE) learn(batch *expreplay.Batch) error {
	out, err := g.net.Predict(batch.States)
	if err != nil {
		return err
	}

	returns, adv := advantages(g.config, batch.Rewards, g.values(out))
	loss, grad := estimator.ActorCriticLoss(out, batch.Actions, returns, adv)
	if err := g.net.Step(batch.States, grad); err != nil {
		return err
	}

	g.logger.Debug().
		Int("steps", batch.Len()).
		Float64("loss", loss).
		Msg("update")
	return nil
}
