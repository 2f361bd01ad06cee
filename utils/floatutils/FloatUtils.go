// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// ClipInterval is a wrapper to use Clip with an r1.Interval instead of
// a separate max and min value
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// WrapAngle brings an angle that has drifted by less than one full turn
// outside of [-π, π] back into that range
func WrapAngle(th float64) float64 {
	if th > math.Pi {
		return th - 2*math.Pi
	} else if th < -math.Pi {
		return th + 2*math.Pi
	}
	return th
}

// Scale returns the position of value within interval, where 0 is
// the interval minimum and 1 its maximum. Values outside the interval
// are clipped.
func Scale(value float64, interval r1.Interval) float64 {
	value = ClipInterval(value, interval)
	return (value - interval.Min) / (interval.Max - interval.Min)
}
