// Package targetnet implements the periodic synchronization of target
// networks with the networks being learned, together with the
// exploration schedule that decays alongside each synchronization.
package targetnet

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorgonia.org/tensor"
)

// ParameterSet is a named set of parameters which can be read and
// overwritten
type ParameterSet interface {
	Parameters() map[string]*tensor.Dense
	SetParameters(map[string]*tensor.Dense) error
}

// Synchronizer counts learning steps and, every interval steps, moves
// the target parameters towards the learned parameters and decays the
// exploration rate.
type Synchronizer struct {
	interval    int
	tau         float64 // Polyak constant, 1 for a hard copy
	steps       int
	syncs       int
	exploration Exploration
	logger      zerolog.Logger
}

// New returns a Synchronizer which copies parameters every interval
// learning steps
func New(interval int, exploration Exploration,
	logger zerolog.Logger) (*Synchronizer, error) {
	return NewPolyak(interval, 1.0, exploration, logger)
}

// NewPolyak returns a Synchronizer which replaces the target
// parameters θ' by τθ + (1-τ)θ' every interval learning steps
func NewPolyak(interval int, tau float64, exploration Exploration,
	logger zerolog.Logger) (*Synchronizer, error) {
	if interval < 1 {
		return nil, fmt.Errorf("new: sync interval must be positive"+
			"\n\twant(>0)\n\thave(%v)", interval)
	}
	if tau <= 0 || tau > 1 {
		return nil, fmt.Errorf("new: polyak constant must be in (0, 1]"+
			"\n\thave(%v)", tau)
	}
	if err := exploration.Validate(); err != nil {
		return nil, errors.Wrap(err, "new")
	}

	return &Synchronizer{
		interval:    interval,
		tau:         tau,
		exploration: exploration,
		logger:      logger.With().Str("component", "targetnet").Logger(),
	}, nil
}

// Epsilon returns the current exploration rate
func (s *Synchronizer) Epsilon() float64 {
	return s.exploration.Epsilon
}

// Steps returns the number of learning steps counted so far
func (s *Synchronizer) Steps() int {
	return s.steps
}

// Syncs returns the number of synchronizations performed so far
func (s *Synchronizer) Syncs() int {
	return s.syncs
}

// Step counts a single learning step. If the step count is a multiple
// of the sync interval, dst is synchronized with src and ε is decayed.
// Step reports whether a synchronization happened.
func (s *Synchronizer) Step(dst, src ParameterSet) (bool, error) {
	s.steps++
	if s.steps%s.interval != 0 {
		return false, nil
	}

	if err := s.sync(dst, src); err != nil {
		return false, errors.Wrap(err, "step")
	}

	s.syncs++
	epsilon := s.exploration.Decay()
	s.logger.Debug().
		Int("step", s.steps).
		Float64("epsilon", epsilon).
		Msg("synchronized target network")

	return true, nil
}

// sync moves the parameters of dst towards those of src
func (s *Synchronizer) sync(dst, src ParameterSet) error {
	source := src.Parameters()
	if s.tau == 1.0 {
		return dst.SetParameters(source)
	}

	target := dst.Parameters()
	averaged := make(map[string]*tensor.Dense, len(source))
	for name, weights := range source {
		targetWeights, ok := target[name]
		if !ok {
			return fmt.Errorf("sync: no target parameter %q", name)
		}

		scaledTarget, err := targetWeights.MulScalar(1-s.tau, true)
		if err != nil {
			return fmt.Errorf("sync: %v: %v", name, err)
		}
		scaledSource, err := weights.MulScalar(s.tau, true)
		if err != nil {
			return fmt.Errorf("sync: %v: %v", name, err)
		}

		averaged[name], err = scaledTarget.Add(scaledSource)
		if err != nil {
			return fmt.Errorf("sync: %v: %v", name, err)
		}
	}
	return dst.SetParameters(averaged)
}
