package network

import (
	"fmt"

	"github.com/samuelfneumann/rlcore/initwfn"
	"github.com/samuelfneumann/rlcore/solver"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Approximator is a trainable function approximator. Rows of the
// states matrices are inputs; rows of the outputs and gradients are the
// corresponding predictions and loss gradients.
type Approximator interface {
	// Predict returns one row of outputs per row of states
	Predict(states *mat.Dense) (*mat.Dense, error)

	// Step applies a single gradient step given the gradient of some
	// loss with respect to the outputs predicted for states
	Step(states, grads *mat.Dense) error

	Parameters() map[string]*tensor.Dense
	SetParameters(map[string]*tensor.Dense) error
}

// MLPApproximator is an Approximator backed by an MLP.
//
// The training network runs on a fixed batch of rows. Its graph is
// extended with an input node G holding the loss gradient dL/dŷ and
// with the scalar Σ ŷ ∘ G, whose gradient with respect to the weights
// equals the gradient of L. Prediction uses two clones of the training
// network: one with a batch of a single row and one with the training
// batch size. The clones are synchronized lazily after the weights of
// the training network change.
type MLPApproximator struct {
	features int
	outputs  int
	batch    int

	train   NeuralNet
	trainVM G.VM
	grads   *G.Node
	solver  *solver.Solver

	batchNet NeuralNet
	batchVM  G.VM
	single   NeuralNet
	singleVM G.VM

	stale bool
}

// NewApproximator builds a new MLPApproximator described by cfg which
// maps features inputs to outputs outputs
func NewApproximator(cfg Config, features,
	outputs int) (*MLPApproximator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("newapproximator: %v", err)
	}

	init, err := initwfn.New(cfg.Init, cfg.InitScale)
	if err != nil {
		return nil, fmt.Errorf("newapproximator: %v", err)
	}
	s, err := solver.New(cfg.Solver, cfg.StepSize)
	if err != nil {
		return nil, fmt.Errorf("newapproximator: %v", err)
	}
	acts, err := cfg.activations()
	if err != nil {
		return nil, fmt.Errorf("newapproximator: %v", err)
	}

	g := G.NewGraph()
	train, err := NewMLP(features, cfg.Batch, outputs, g, cfg.Hidden,
		cfg.biases(), init.InitWFn(), acts)
	if err != nil {
		return nil, fmt.Errorf("newapproximator: %v", err)
	}

	// Clone before the gradient nodes are added so that the clones
	// only compute forward passes
	batchNet, err := train.CloneWithBatch(cfg.Batch)
	if err != nil {
		return nil, fmt.Errorf("newapproximator: %v", err)
	}
	single, err := train.CloneWithBatch(1)
	if err != nil {
		return nil, fmt.Errorf("newapproximator: %v", err)
	}

	grads := G.NewMatrix(g, tensor.Float64, G.WithShape(cfg.Batch, outputs),
		G.WithName("outputGrad"), G.WithInit(G.Zeroes()))
	surrogate := G.Must(G.HadamardProd(train.Prediction(), grads))
	surrogate = G.Must(G.Sum(surrogate))

	if _, err := G.Grad(surrogate, train.Learnables()...); err != nil {
		return nil, fmt.Errorf("newapproximator: could not compute "+
			"gradient: %v", err)
	}

	return &MLPApproximator{
		features: features,
		outputs:  outputs,
		batch:    cfg.Batch,
		train:    train,
		trainVM:  G.NewTapeMachine(g, G.BindDualValues(train.Learnables()...)),
		grads:    grads,
		solver:   s,
		batchNet: batchNet,
		batchVM:  G.NewTapeMachine(batchNet.Graph()),
		single:   single,
		singleVM: G.NewTapeMachine(single.Graph()),
	}, nil
}

// Features returns the number of inputs per row
func (a *MLPApproximator) Features() int {
	return a.features
}

// Outputs returns the number of outputs per row
func (a *MLPApproximator) Outputs() int {
	return a.outputs
}

// Batch returns the largest number of rows accepted by Step
func (a *MLPApproximator) Batch() int {
	return a.batch
}

// Predict returns one row of outputs per row of states
func (a *MLPApproximator) Predict(states *mat.Dense) (*mat.Dense, error) {
	rows, cols := states.Dims()
	if cols != a.features {
		return nil, fmt.Errorf("predict: illegal number of features"+
			"\n\twant(%v)\n\thave(%v)", a.features, cols)
	}
	if err := a.sync(); err != nil {
		return nil, fmt.Errorf("predict: %v", err)
	}

	if rows == 1 {
		out, err := forward(a.single, a.singleVM, states.RawRowView(0))
		if err != nil {
			return nil, fmt.Errorf("predict: %v", err)
		}
		return mat.NewDense(1, a.outputs, out), nil
	}

	predictions := mat.NewDense(rows, a.outputs, nil)
	for start := 0; start < rows; start += a.batch {
		n := a.batch
		if start+n > rows {
			n = rows - start
		}

		in := padRows(states, start, n, a.batch)
		out, err := forward(a.batchNet, a.batchVM, in)
		if err != nil {
			return nil, fmt.Errorf("predict: %v", err)
		}

		for i := 0; i < n; i++ {
			predictions.SetRow(start+i, out[i*a.outputs:(i+1)*a.outputs])
		}
	}
	return predictions, nil
}

// Step applies one solver step using grads, the gradient of the loss
// with respect to the outputs predicted for states. At most Batch rows
// may be given; missing rows are filled with zero inputs and zero
// gradients, which contribute nothing to the update.
func (a *MLPApproximator) Step(states, grads *mat.Dense) error {
	rows, cols := states.Dims()
	gRows, gCols := grads.Dims()
	if cols != a.features {
		return fmt.Errorf("step: illegal number of features\n\twant(%v)"+
			"\n\thave(%v)", a.features, cols)
	}
	if gRows != rows || gCols != a.outputs {
		return fmt.Errorf("step: illegal gradient shape\n\twant(%v x %v)"+
			"\n\thave(%v x %v)", rows, a.outputs, gRows, gCols)
	}
	if rows > a.batch {
		return fmt.Errorf("step: too many rows\n\twant(<=%v)\n\thave(%v)",
			a.batch, rows)
	}

	if err := a.train.SetInput(padRows(states, 0, rows, a.batch)); err != nil {
		return fmt.Errorf("step: could not set input: %v", err)
	}
	gradTensor := tensor.New(
		tensor.WithBacking(padRows(grads, 0, rows, a.batch)),
		tensor.WithShape(a.batch, a.outputs),
	)
	if err := G.Let(a.grads, gradTensor); err != nil {
		return fmt.Errorf("step: could not set gradient: %v", err)
	}

	defer a.trainVM.Reset()
	if err := a.trainVM.RunAll(); err != nil {
		return fmt.Errorf("step: %v", err)
	}
	if err := a.solver.Step(a.train.Model()); err != nil {
		return fmt.Errorf("step: %v", err)
	}

	a.stale = true
	return nil
}

// Parameters returns a copy of every learnable weight
func (a *MLPApproximator) Parameters() map[string]*tensor.Dense {
	return a.train.Parameters()
}

// SetParameters overwrites the learnable weights
func (a *MLPApproximator) SetParameters(
	params map[string]*tensor.Dense) error {
	if err := a.train.SetParameters(params); err != nil {
		return err
	}
	a.stale = true
	return nil
}

// Close releases the resources held by the Gorgonia VMs
func (a *MLPApproximator) Close() error {
	for _, vm := range []G.VM{a.trainVM, a.batchVM, a.singleVM} {
		if err := vm.Close(); err != nil {
			return fmt.Errorf("close: %v", err)
		}
	}
	return nil
}

// sync copies the training weights into the prediction networks if
// they have changed since the last sync
func (a *MLPApproximator) sync() error {
	if !a.stale {
		return nil
	}
	if err := a.batchNet.Set(a.train); err != nil {
		return err
	}
	if err := a.single.Set(a.train); err != nil {
		return err
	}
	a.stale = false
	return nil
}

// forward runs the forward pass of net on a row-major input and
// returns a copy of its output
func forward(net NeuralNet, vm G.VM, input []float64) ([]float64, error) {
	if err := net.SetInput(input); err != nil {
		return nil, err
	}

	defer vm.Reset()
	if err := vm.RunAll(); err != nil {
		return nil, err
	}
	return values(net.Output())
}

// padRows returns rows [start, start+n) of m in row-major order,
// followed by zero rows up to a total of batch rows
func padRows(m *mat.Dense, start, n, batch int) []float64 {
	_, cols := m.Dims()
	padded := make([]float64, batch*cols)
	for i := 0; i < n; i++ {
		copy(padded[i*cols:(i+1)*cols], m.RawRowView(start+i))
	}
	return padded
}

// values returns a copy of the float64 data held by v
func values(v G.Value) ([]float64, error) {
	if v == nil {
		return nil, fmt.Errorf("values: no output computed")
	}

	switch data := v.Data().(type) {
	case []float64:
		return append([]float64(nil), data...), nil
	case float64:
		return []float64{data}, nil
	default:
		return nil, fmt.Errorf("values: illegal output type %T", data)
	}
}
