package policygradient

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/rlcore/agent"
	"github.com/samuelfneumann/rlcore/environment"
	"github.com/samuelfneumann/rlcore/network"
)

// DefaultCapacity is the default length of the rollout buffer
const DefaultCapacity = 1024

// A2CConfig represents a configuration for the A2C agent
type A2CConfig struct {
	Network network.Config `yaml:"network" mapstructure:"network"`
	Gamma   float64        `yaml:"gamma" mapstructure:"gamma"`
}

// DefaultA2CConfig returns the default A2C configuration
func DefaultA2CConfig() A2CConfig {
	return A2CConfig{
		Network: network.DefaultConfig().WithBatch(1),
		Gamma:   0.99,
	}
}

// Validate ensures that the Config is valid
func (c A2CConfig) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return errors.Wrap(err, "validate")
	}
	return validateDiscount(c.Gamma)
}

// CreateAgent creates a new A2C agent for env
func (c A2CConfig) CreateAgent(env environment.Environment, seed uint64,
	logger zerolog.Logger) (agent.Agent, error) {
	return NewA2C(env.StateDim(), env.NumActions(), c, seed, logger)
}

// GAEConfig represents a configuration for the GAE agent. The batch
// size of Network must be able to hold a full rollout.
type GAEConfig struct {
	Network  network.Config `yaml:"network" mapstructure:"network"`
	Gamma    float64        `yaml:"gamma" mapstructure:"gamma"`
	Lambda   float64        `yaml:"lambda" mapstructure:"lambda"`
	Capacity int            `yaml:"capacity" mapstructure:"capacity"` // Rollout buffer size

	// Whether advantages are standardized before each update
	Normalize bool `yaml:"normalize" mapstructure:"normalize"`
}

// DefaultGAEConfig returns the default GAE configuration
func DefaultGAEConfig() GAEConfig {
	return GAEConfig{
		Network:  network.DefaultConfig().WithBatch(DefaultCapacity),
		Gamma:    0.99,
		Lambda:   0.95,
		Capacity: DefaultCapacity,
	}
}

// Validate ensures that the Config is valid
func (c GAEConfig) Validate() error {
	if err := c.validate(); err != nil {
		return err
	}
	if c.Network.Batch < c.Capacity {
		return fmt.Errorf("validate: network batch must hold a full "+
			"rollout\n\twant(>=%v)\n\thave(%v)", c.Capacity, c.Network.Batch)
	}
	return nil
}

// validate checks the fields shared with PPOConfig
func (c GAEConfig) validate() error {
	if err := c.Network.Validate(); err != nil {
		return errors.Wrap(err, "validate")
	}
	if err := validateDiscount(c.Gamma); err != nil {
		return err
	}
	if c.Lambda < 0 || c.Lambda > 1 {
		return fmt.Errorf("validate: lambda must be in [0, 1]"+
			"\n\thave(%v)", c.Lambda)
	}
	if c.Capacity < 1 {
		return fmt.Errorf("validate: rollout capacity must be positive"+
			"\n\twant(>0)\n\thave(%v)", c.Capacity)
	}
	return nil
}

// CreateAgent creates a new GAE agent for env
func (c GAEConfig) CreateAgent(env environment.Environment, seed uint64,
	logger zerolog.Logger) (agent.Agent, error) {
	return NewGAE(env.StateDim(), env.NumActions(), c, seed, logger)
}

// PPOConfig represents a configuration for the PPO agent. The batch
// size of Network must be able to hold an inner batch.
type PPOConfig struct {
	GAEConfig `yaml:",inline" mapstructure:",squash"`

	InnerUpdates int     `yaml:"inner_updates" mapstructure:"inner_updates"` // Passes over each rollout
	InnerBatch   int     `yaml:"inner_batch" mapstructure:"inner_batch"`     // Minibatch size
	Clip         float64 `yaml:"clip" mapstructure:"clip"`                   // Ratio clipping ε
}

// DefaultPPOConfig returns the default PPO configuration
func DefaultPPOConfig() PPOConfig {
	gae := DefaultGAEConfig()
	gae.Network = gae.Network.WithBatch(32)

	return PPOConfig{
		GAEConfig:    gae,
		InnerUpdates: 4,
		InnerBatch:   32,
		Clip:         0.2,
	}
}

// Validate ensures that the Config is valid
func (c PPOConfig) Validate() error {
	if err := c.GAEConfig.validate(); err != nil {
		return err
	}
	if c.InnerUpdates < 1 {
		return fmt.Errorf("validate: inner updates must be positive"+
			"\n\twant(>0)\n\thave(%v)", c.InnerUpdates)
	}
	if c.InnerBatch < 1 || c.InnerBatch > c.Network.Batch {
		return fmt.Errorf("validate: inner batch must fit the network "+
			"batch\n\twant([1, %v])\n\thave(%v)", c.Network.Batch,
			c.InnerBatch)
	}
	if c.Clip <= 0 || c.Clip >= 1 {
		return fmt.Errorf("validate: clip must be in (0, 1)\n\thave(%v)",
			c.Clip)
	}
	return nil
}

// CreateAgent creates a new PPO agent for env
func (c PPOConfig) CreateAgent(env environment.Environment, seed uint64,
	logger zerolog.Logger) (agent.Agent, error) {
	return NewPPO(env.StateDim(), env.NumActions(), c, seed, logger)
}

func validateDiscount(gamma float64) error {
	if gamma < 0 || gamma > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1]"+
			"\n\thave(%v)", gamma)
	}
	return nil
}
