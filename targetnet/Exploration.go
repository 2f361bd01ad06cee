package targetnet

import (
	"fmt"
	"math"
)

// Canonical exploration schedule
const (
	DefaultEpsilon = 1.0
	DefaultRate    = 0.999
	DefaultMin     = 0.05
)

// Exploration is a multiplicatively decaying exploration rate ε which
// never drops below Min
type Exploration struct {
	Epsilon float64 `yaml:"epsilon" mapstructure:"epsilon"`
	Rate    float64 `yaml:"rate" mapstructure:"rate"`
	Min     float64 `yaml:"min" mapstructure:"min"`
}

// DefaultExploration returns the canonical exploration schedule
func DefaultExploration() Exploration {
	return Exploration{
		Epsilon: DefaultEpsilon,
		Rate:    DefaultRate,
		Min:     DefaultMin,
	}
}

// Validate checks that the schedule describes probabilities and a
// non-increasing decay
func (e Exploration) Validate() error {
	if e.Epsilon < 0 || e.Epsilon > 1 {
		return fmt.Errorf("validate: epsilon must be in [0, 1]"+
			"\n\thave(%v)", e.Epsilon)
	}
	if e.Min < 0 || e.Min > 1 {
		return fmt.Errorf("validate: minimum epsilon must be in [0, 1]"+
			"\n\thave(%v)", e.Min)
	}
	if e.Rate <= 0 || e.Rate > 1 {
		return fmt.Errorf("validate: decay rate must be in (0, 1]"+
			"\n\thave(%v)", e.Rate)
	}
	return nil
}

// Decay decays ε once, flooring it at Min, and returns the new ε
func (e *Exploration) Decay() float64 {
	e.Epsilon = math.Max(e.Min, e.Epsilon*e.Rate)
	return e.Epsilon
}
