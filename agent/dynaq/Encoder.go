package dynaq

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Encoder discretizes continuous states into a single tabular index.
// Each dimension is split into resolution equal-width bins and the
// per-dimension bins are combined mixed-radix, the first dimension
// being the most significant.
//
// Dimensions with an infinite bound are first squashed with arctan,
// so that the bins of an unbounded dimension are narrow around zero
// and widen towards the tails.
type Encoder struct {
	bounds     []r1.Interval
	resolution int
	states     int
}

// NewEncoder returns an Encoder over the given state space
func NewEncoder(bounds []r1.Interval, resolution int) (*Encoder, error) {
	if resolution < 1 {
		return nil, fmt.Errorf("newencoder: resolution must be positive"+
			"\n\twant(>0)\n\thave(%v)", resolution)
	}
	if len(bounds) == 0 {
		return nil, fmt.Errorf("newencoder: empty state space")
	}

	states := 1
	for i, b := range bounds {
		if !(b.Min < b.Max) {
			return nil, fmt.Errorf("newencoder: invalid range at dimension "+
				"%v\n\thave(%v)", i, b)
		}
		if states > MaxStates/resolution {
			return nil, fmt.Errorf("newencoder: too many states\n\twant"+
				"(<=%v)\n\thave(%v^%v)", MaxStates, resolution, len(bounds))
		}
		states *= resolution
	}

	space := make([]r1.Interval, len(bounds))
	copy(space, bounds)

	return &Encoder{
		bounds:     space,
		resolution: resolution,
		states:     states,
	}, nil
}

// States returns the number of distinct encodings of non-nil states.
// This value doubles as the encoding of the nil terminal state.
func (e *Encoder) States() int {
	return e.states
}

// Dims returns the number of state dimensions the Encoder expects
func (e *Encoder) Dims() int {
	return len(e.bounds)
}

// Encode returns the tabular index of state. A nil state encodes to
// States().
func (e *Encoder) Encode(state []float64) int {
	if state == nil {
		return e.states
	}
	if len(state) != len(e.bounds) {
		panic(fmt.Sprintf("encode: invalid state dimension\n\twant(%v)"+
			"\n\thave(%v)", len(e.bounds), len(state)))
	}

	index := 0
	for i, x := range state {
		index = index*e.resolution + e.bin(x, e.bounds[i])
	}
	return index
}

// bin returns the bin of x within bounds, clamped to the valid bins
func (e *Encoder) bin(x float64, bounds r1.Interval) int {
	var score float64
	if math.IsInf(bounds.Min, 0) || math.IsInf(bounds.Max, 0) {
		lo, hi := math.Atan(bounds.Min), math.Atan(bounds.Max)
		score = (math.Atan(x) - lo) / (hi - lo)
	} else {
		score = (x - bounds.Min) / (bounds.Max - bounds.Min)
	}

	value := int(float64(e.resolution) * score)
	if value >= e.resolution {
		value = e.resolution - 1
	}
	if value < 0 {
		value = 0
	}
	return value
}
