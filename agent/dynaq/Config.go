package dynaq

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/rlcore/agent"
	"github.com/samuelfneumann/rlcore/environment"
)

// MaxStates bounds the size of the Q table
const MaxStates = 1 << 22

// Config represents a configuration for the DynaQ agent
type Config struct {
	Resolution int     `yaml:"resolution" mapstructure:"resolution"` // Bins per state dimension
	Alpha      float64 `yaml:"alpha" mapstructure:"alpha"`           // Step size
	Gamma      float64 `yaml:"gamma" mapstructure:"gamma"`           // Discount
	Epsilon    float64 `yaml:"epsilon" mapstructure:"epsilon"`       // Behaviour policy epsilon

	// Number of simulated updates after each real step
	PlanningIterations int `yaml:"planning_iterations" mapstructure:"planning_iterations"`
}

// DefaultConfig returns a Config suited to the classic control
// environments
func DefaultConfig() Config {
	return Config{
		Resolution:         8,
		Alpha:              0.1,
		Gamma:              0.99,
		Epsilon:            0.1,
		PlanningIterations: 10,
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Resolution < 1 {
		return fmt.Errorf("validate: resolution must be positive"+
			"\n\twant(>0)\n\thave(%v)", c.Resolution)
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("validate: step size must be in (0, 1]"+
			"\n\thave(%v)", c.Alpha)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1]"+
			"\n\thave(%v)", c.Gamma)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("validate: epsilon must be in [0, 1]"+
			"\n\thave(%v)", c.Epsilon)
	}
	if c.PlanningIterations < 0 {
		return fmt.Errorf("validate: planning iterations cannot be "+
			"negative\n\twant(>=0)\n\thave(%v)", c.PlanningIterations)
	}
	return nil
}

// CreateAgent creates a new DynaQ agent for env
func (c Config) CreateAgent(env environment.Environment, seed uint64,
	logger zerolog.Logger) (agent.Agent, error) {
	return New(env.StateSpace(), env.NumActions(), c, seed, logger)
}
