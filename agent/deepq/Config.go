package deepq

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/rlcore/agent"
	"github.com/samuelfneumann/rlcore/environment"
	"github.com/samuelfneumann/rlcore/estimator"
	"github.com/samuelfneumann/rlcore/network"
	"github.com/samuelfneumann/rlcore/targetnet"
)

// DefaultCapacity is the default size of the experience replay buffer
const DefaultCapacity = 4096

// Config implements a configuration for a DeepQ agent. The batch size
// of Network is the number of transitions sampled per update.
type Config struct {
	Network network.Config `yaml:"network" mapstructure:"network"`

	Capacity int     `yaml:"capacity" mapstructure:"capacity"` // Replay buffer size
	Gamma    float64 `yaml:"gamma" mapstructure:"gamma"`

	// Loss is the per-transition TD loss. It is ignored when learning
	// quantiles, which always use the quantile Huber loss.
	Loss estimator.LossKind `yaml:"loss" mapstructure:"loss"`

	// Quantiles is the number of quantiles learned per action. Zero
	// learns scalar action values.
	Quantiles int `yaml:"quantiles" mapstructure:"quantiles"`

	// Target net updates
	SyncInterval int     `yaml:"sync_interval" mapstructure:"sync_interval"` // Learning steps between syncs
	Tau          float64 `yaml:"tau" mapstructure:"tau"`                     // Polyak averaging constant

	Exploration targetnet.Exploration `yaml:"exploration" mapstructure:"exploration"`
}

// DefaultConfig returns the default DQN configuration
func DefaultConfig() Config {
	return Config{
		Network:      network.DefaultConfig(),
		Capacity:     DefaultCapacity,
		Gamma:        0.99,
		Loss:         estimator.Squared,
		SyncInterval: 100,
		Tau:          1.0,
		Exploration:  targetnet.DefaultExploration(),
	}
}

// DefaultQuantileConfig returns the default QR-DQN configuration
func DefaultQuantileConfig() Config {
	c := DefaultConfig()
	c.Loss = estimator.Huber
	c.Quantiles = 32
	return c
}

// BatchSize returns the number of transitions sampled per update
func (c Config) BatchSize() int {
	return c.Network.Batch
}

// Validate checks a Config to ensure it is a valid configuration of a
// DeepQ agent.
func (c Config) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return errors.Wrap(err, "validate")
	}

	if c.Capacity <= c.BatchSize() {
		return fmt.Errorf("validate: replay capacity must exceed the batch "+
			"size\n\twant(>%v)\n\thave(%v)", c.BatchSize(), c.Capacity)
	}

	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1]"+
			"\n\thave(%v)", c.Gamma)
	}

	if c.Quantiles < 0 {
		return fmt.Errorf("validate: quantiles cannot be negative"+
			"\n\twant(>=0)\n\thave(%v)", c.Quantiles)
	} else if c.Quantiles == 0 {
		if err := c.Loss.Validate(); err != nil {
			return err
		}
	}

	if c.SyncInterval < 1 {
		return fmt.Errorf("validate: target networks must be updated at "+
			"positive intervals\n\twant(>0)\n\thave(%v)", c.SyncInterval)
	}

	if c.Tau <= 0 || c.Tau > 1 {
		return fmt.Errorf("validate: polyak constant must be in (0, 1]"+
			"\n\thave(%v)", c.Tau)
	}

	return errors.Wrap(c.Exploration.Validate(), "validate")
}

// CreateAgent creates a new DeepQ agent based on the configuration
func (c Config) CreateAgent(env environment.Environment, seed uint64,
	logger zerolog.Logger) (agent.Agent, error) {
	return New(env.StateDim(), env.NumActions(), c, seed, logger)
}
