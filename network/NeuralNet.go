// Package network implements feed forward neural networks with
// Gorgonia and a function approximator which trains them from
// externally computed loss gradients.
package network

import (
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// NeuralNet is a neural network whose forward pass is part of a
// Gorgonia computational graph
type NeuralNet interface {
	Graph() *G.ExprGraph
	CloneWithBatch(int) (NeuralNet, error)
	BatchSize() int
	Features() int
	Outputs() int
	SetInput([]float64) error
	Set(NeuralNet) error
	Polyak(NeuralNet, float64) error
	Learnables() G.Nodes
	Model() []G.ValueGrad
	Parameters() map[string]*tensor.Dense
	SetParameters(map[string]*tensor.Dense) error
	Output() G.Value
	Prediction() *G.Node
}
