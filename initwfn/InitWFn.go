// Package initwfn resolves the weight initializers named in network
// configurations to Gorgonia InitWFns.
package initwfn

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Type names a weight initializer
type Type string

// Available initializers
const (
	GlorotU Type = "GlorotU"
	GlorotN Type = "GlorotN"
	HeU     Type = "HeU"
	HeN     Type = "HeN"
	Zeroes  Type = "Zeroes"
)

// initializer creates a Gorgonia InitWFn from a scale
type initializer struct {
	create func(scale float64) G.InitWFn
	scaled bool // Whether the scale is used and must be positive
}

var initializers = map[Type]initializer{
	GlorotU: {create: func(gain float64) G.InitWFn { return G.GlorotU(gain) }, scaled: true},
	GlorotN: {create: func(gain float64) G.InitWFn { return G.GlorotN(gain) }, scaled: true},
	HeU:     {create: func(gain float64) G.InitWFn { return G.HeU(gain) }, scaled: true},
	HeN:     {create: func(gain float64) G.InitWFn { return G.HeN(gain) }, scaled: true},
	Zeroes:  {create: func(float64) G.InitWFn { return G.Zeroes() }},
}

// InitWFn is a Gorgonia InitWFn together with the Type and scale that
// created it
type InitWFn struct {
	Type  Type
	Scale float64

	initWFn G.InitWFn
}

// New returns the initializer of type t. The scale is the gain of the
// Glorot and He initializers and is ignored by Zeroes.
func New(t Type, scale float64) (*InitWFn, error) {
	init, ok := initializers[t]
	if !ok {
		return nil, fmt.Errorf("new: unknown initializer %q", string(t))
	}
	if init.scaled && scale <= 0 {
		return nil, fmt.Errorf("new: %v gain must be positive"+
			"\n\twant(>0)\n\thave(%v)", t, scale)
	}
	if !init.scaled {
		scale = 0
	}

	return &InitWFn{Type: t, Scale: scale, initWFn: init.create(scale)}, nil
}

// InitWFn returns the wrapped Gorgonia InitWFn
func (i *InitWFn) InitWFn() G.InitWFn {
	return i.initWFn
}

// String implements the fmt.Stringer interface
func (i *InitWFn) String() string {
	if i.Scale == 0 {
		return fmt.Sprintf("{%v InitWFn}", i.Type)
	}
	return fmt.Sprintf("{%v InitWFn: gain %v}", i.Type, i.Scale)
}
