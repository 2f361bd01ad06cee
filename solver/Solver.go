// Package solver resolves the solvers named in network configurations
// to Gorgonia Solvers.
package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Type names a solver
type Type string

// Available solvers
const (
	Adam    Type = "Adam"
	Vanilla Type = "Vanilla"
	RMSProp Type = "RMSProp"
)

// Hyperparameters besides the step size are fixed. Gradients are
// averaged over a batch of one, so losses must already be averaged
// over their samples.
var solvers = map[Type]func(stepSize float64) G.Solver{
	Adam: func(stepSize float64) G.Solver {
		return G.NewAdamSolver(G.WithLearnRate(stepSize), G.WithEps(1e-8),
			G.WithBeta1(0.9), G.WithBeta2(0.999), G.WithBatchSize(1))
	},
	Vanilla: func(stepSize float64) G.Solver {
		return G.NewVanillaSolver(G.WithLearnRate(stepSize),
			G.WithBatchSize(1))
	},
	RMSProp: func(stepSize float64) G.Solver {
		return G.NewRMSPropSolver(G.WithLearnRate(stepSize), G.WithEps(1e-8),
			G.WithRho(0.999), G.WithBatchSize(1))
	},
}

// Solver is a Gorgonia Solver together with the Type and step size
// that created it
type Solver struct {
	G.Solver
	Type     Type
	StepSize float64
}

// New returns a new Solver of type t with the given step size
func New(t Type, stepSize float64) (*Solver, error) {
	create, ok := solvers[t]
	if !ok {
		return nil, fmt.Errorf("new: unknown solver type %q", string(t))
	}
	if stepSize <= 0 {
		return nil, fmt.Errorf("new: step size must be positive"+
			"\n\twant(>0)\n\thave(%v)", stepSize)
	}

	return &Solver{Solver: create(stepSize), Type: t, StepSize: stepSize}, nil
}

// String implements the fmt.Stringer interface
func (s *Solver) String() string {
	return fmt.Sprintf("{%v Solver: step size %v}", s.Type, s.StepSize)
}
