package policygradient

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/rlcore/estimator"
	"github.com/samuelfneumann/rlcore/expreplay"
	"gonum.org/v1/gonum/mat"
)

// PPO implements proximal policy optimization with the clipped
// surrogate objective. Each episode is learned from with several
// minibatch steps, the minibatches being sampled from the episode
// with replacement.
type PPO struct {
	*rollout
	config PPOConfig
}

// NewPPO creates a new PPO agent for states of features dimensions
// and actions actions
func NewPPO(features, actions int, c PPOConfig, seed uint64,
	logger zerolog.Logger) (*PPO, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "new")
	}
	ac, err := newActorCritic(c.Network, features, actions, seed)
	if err != nil {
		return nil, err
	}

	p := &PPO{
		rollout: &rollout{
			actorCritic: ac,
			capacity:    c.Capacity,
			logger:      logger.With().Str("component", "ppo").Logger(),
		},
		config: c,
	}
	p.update = p.learn
	if err := p.Reset(); err != nil {
		return nil, errors.Wrap(err, "new")
	}
	return p, nil
}

func (p *PPO) learn(batch *expreplay.Batch) error {
	t := batch.Len()
	out, err := p.net.Predict(batch.States)
	if err != nil {
		return err
	}

	// Probabilities of the taken actions under the policy which
	// collected the rollout
	oldProbs := make([]float64, t)
	for i, a := range batch.Actions {
		oldProbs[i] = estimator.Softmax(out.RawRowView(i)[:p.actions])[a]
	}
	returns, adv := advantages(p.config.GAEConfig, batch.Rewards,
		p.values(out))

	n := p.config.InnerBatch
	states := mat.NewDense(n, p.features, nil)
	actions := make([]int, n)
	old := make([]float64, n)
	rets := make([]float64, n)
	advs := make([]float64, n)

	steps := estimator.InnerSteps(p.config.InnerUpdates, t, n)
	loss := 0.0
	for i := 0; i < steps; i++ {
		for j := 0; j < n; j++ {
			k := p.rng.Intn(t)
			states.SetRow(j, batch.States.RawRowView(k))
			actions[j] = batch.Actions[k]
			old[j] = oldProbs[k]
			rets[j] = returns[k]
			advs[j] = adv[k]
		}

		pred, err := p.net.Predict(states)
		if err != nil {
			return err
		}
		var grad *mat.Dense
		loss, grad = estimator.PPOLoss(pred, actions, old, rets, advs,
			p.config.Clip)
		if err := p.net.Step(states, grad); err != nil {
			return err
		}
	}

	p.logger.Debug().
		Int("steps", t).
		Int("inner_steps", steps).
		Float64("loss", loss).
		Msg("update")
	return nil
}
