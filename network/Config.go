package network

import (
	"fmt"

	"github.com/samuelfneumann/rlcore/initwfn"
	"github.com/samuelfneumann/rlcore/solver"
)

// Config describes an MLP function approximator and the way it is
// trained
type Config struct {
	Hidden      []int    `yaml:"hidden" mapstructure:"hidden"`
	Activations []string `yaml:"activations" mapstructure:"activations"`
	Biases      []bool   `yaml:"biases" mapstructure:"biases"`

	Init      initwfn.Type `yaml:"init" mapstructure:"init"`
	InitScale float64      `yaml:"init_scale" mapstructure:"init_scale"`

	Solver   solver.Type `yaml:"solver" mapstructure:"solver"`
	StepSize float64     `yaml:"step_size" mapstructure:"step_size"`

	// Batch is the fixed number of rows the training network accepts
	// per gradient step. Shorter batches are padded.
	Batch int `yaml:"batch" mapstructure:"batch"`
}

// DefaultConfig returns a two hidden layer ReLU network trained with
// Adam
func DefaultConfig() Config {
	return Config{
		Hidden:      []int{64, 64},
		Activations: []string{"relu", "relu"},
		Biases:      []bool{true, true},
		Init:        initwfn.GlorotU,
		InitScale:   1.0,
		Solver:      solver.Adam,
		StepSize:    1e-3,
		Batch:       32,
	}
}

// Validate checks that the Config describes a network that can be
// built
func (c Config) Validate() error {
	if len(c.Hidden) != len(c.Activations) {
		return fmt.Errorf("validate: invalid number of activations"+
			"\n\twant(%v)\n\thave(%v)", len(c.Hidden), len(c.Activations))
	}
	if len(c.Biases) != 0 && len(c.Biases) != len(c.Hidden) {
		return fmt.Errorf("validate: invalid number of biases"+
			"\n\twant(%v)\n\thave(%v)", len(c.Hidden), len(c.Biases))
	}
	for i, size := range c.Hidden {
		if size < 1 {
			return fmt.Errorf("validate: hidden layer %v must have "+
				"positive size\n\thave(%v)", i, size)
		}
	}
	for _, name := range c.Activations {
		if _, err := ActivationByName(name); err != nil {
			return fmt.Errorf("validate: %v", err)
		}
	}
	if c.Batch < 1 {
		return fmt.Errorf("validate: batch size must be positive"+
			"\n\twant(>0)\n\thave(%v)", c.Batch)
	}
	if _, err := initwfn.New(c.Init, c.InitScale); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if _, err := solver.New(c.Solver, c.StepSize); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	return nil
}

// WithBatch returns a copy of the Config with a new training batch
// size
func (c Config) WithBatch(batch int) Config {
	c.Batch = batch
	return c
}

// biases returns one bias flag per hidden layer, defaulting to true
func (c Config) biases() []bool {
	if len(c.Biases) != 0 {
		return c.Biases
	}
	biases := make([]bool, len(c.Hidden))
	for i := range biases {
		biases[i] = true
	}
	return biases
}

// activations resolves the named activations
func (c Config) activations() ([]*Activation, error) {
	acts := make([]*Activation, len(c.Activations))
	for i, name := range c.Activations {
		act, err := ActivationByName(name)
		if err != nil {
			return nil, err
		}
		acts[i] = act
	}
	return acts, nil
}
