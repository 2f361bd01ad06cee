package estimator

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Softmax returns the softmax of logits
func Softmax(logits []float64) []float64 {
	probs := LogSoftmax(logits)
	for i := range probs {
		probs[i] = math.Exp(probs[i])
	}
	return probs
}

// LogSoftmax returns the log softmax of logits
func LogSoftmax(logits []float64) []float64 {
	logProbs := make([]float64, len(logits))
	if len(logits) == 0 {
		return logProbs
	}

	norm := floats.LogSumExp(logits)
	for i, l := range logits {
		logProbs[i] = l - norm
	}
	return logProbs
}
