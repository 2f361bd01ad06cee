// Package mountaincar implements the Mountain Car classic control
// environment
package mountaincar

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/samuelfneumann/rlcore/environment"
	ts "github.com/samuelfneumann/rlcore/timestep"
	"github.com/samuelfneumann/rlcore/utils/floatutils"
	"gonum.org/v1/gonum/spatial/r1"
)

const (
	MinPosition  float64 = -1.2
	MaxPosition  float64 = 0.6
	MaxSpeed     float64 = 0.07
	GoalPosition float64 = 0.5
	GoalVelocity float64 = 0.0
	Force        float64 = 0.001
	Gravity      float64 = 0.0025

	// Start positions are drawn uniformly from [MinStart, MaxStart]
	MinStart float64 = -0.6
	MaxStart float64 = -0.4

	Actions   int = 3
	StateDims int = 2
)

// MountainCar implements the classic control environment Mountain
// Car. An under-powered car sits in a valley and must rock back and
// forth to build up enough momentum to drive up the right hill.
//
// The state features are the car's x position and velocity, both
// clipped to their bounds. Hitting the left wall stops the car.
//
// Actions are discrete:
//
//	Action	Meaning
//	  0		Accelerate left
//	  1		Do nothing
//	  2		Accelerate right
//
// Each step is rewarded with -1. The episode ends once the car reaches
// position 0.5 with non-negative velocity.
type MountainCar struct {
	starter        *environment.UniformStarter
	out            io.Writer
	positionBounds r1.Interval
	speedBounds    r1.Interval

	position, velocity float64
}

// New constructs a new Mountain Car environment. Renderings are
// written to out, which may be nil if the environment is never
// rendered.
func New(seed uint64, out io.Writer) *MountainCar {
	start := []r1.Interval{{Min: MinStart, Max: MaxStart}}

	return &MountainCar{
		starter:        environment.NewUniformStarter(start, seed),
		out:            out,
		positionBounds: r1.Interval{Min: MinPosition, Max: MaxPosition},
		speedBounds:    r1.Interval{Min: -MaxSpeed, Max: MaxSpeed},
	}
}

// Seed seeds the start state distribution
func (m *MountainCar) Seed(_ context.Context, seed uint64) error {
	m.starter.Seed(seed)
	return nil
}

// Reset resets the environment to a random position in the valley
// with zero velocity
func (m *MountainCar) Reset(context.Context) (ts.Snapshot, error) {
	m.position = m.starter.Start()[0]
	m.velocity = 0
	return ts.NewSnapshot(m.state(), 0, false), nil
}

// Step takes one environmental step given action a and returns the
// next state, the reward, and whether the episode has ended
func (m *MountainCar) Step(_ context.Context, a int) (ts.Snapshot, error) {
	if err := environment.ValidateAction(a, Actions); err != nil {
		return ts.Snapshot{}, err
	}

	// Update the velocity
	m.velocity += float64(a-1)*Force - math.Cos(3*m.position)*Gravity
	m.velocity = floatutils.ClipInterval(m.velocity, m.speedBounds)

	// Update the position
	m.position += m.velocity
	m.position = floatutils.ClipInterval(m.position, m.positionBounds)

	// The left wall stops the car
	if m.position <= m.positionBounds.Min && m.velocity < 0 {
		m.velocity = 0
	}

	done := m.position >= GoalPosition && m.velocity >= GoalVelocity
	return ts.NewSnapshot(m.state(), -1, done), nil
}

func (m *MountainCar) state() []float64 {
	return []float64{m.position, m.velocity}
}

// StateSpace returns the bounds on each state feature
func (m *MountainCar) StateSpace() []r1.Interval {
	return []r1.Interval{m.positionBounds, m.speedBounds}
}

// StateDim returns the number of state features
func (m *MountainCar) StateDim() int {
	return StateDims
}

// NumActions returns the number of actions
func (m *MountainCar) NumActions() int {
	return Actions
}

// Render renders a text-based version of the environment
func (m *MountainCar) Render() error {
	if m.out == nil {
		return nil
	}
	xIndices := 16

	// Print the hill
	var hill strings.Builder
	for i := 1; i < xIndices/2+1; i++ {
		if i == 1 {
			fmt.Fprint(&hill, calculateRow(xIndices, i)+"F\n")
		} else {
			fmt.Fprintln(&hill, calculateRow(xIndices, i))
		}
	}
	fmt.Fprintln(&hill, "")

	// Calculate the x position at which to draw the car
	x := int(floatutils.Scale(m.position, m.positionBounds) *
		float64(xIndices-1))

	// Print the position bar
	var builder strings.Builder
	for i := 0; i < xIndices; i++ {
		if i == x {
			fmt.Fprintf(&builder, "C")
		} else if i == xIndices-1 {
			fmt.Fprintf(&builder, "F")
		} else {
			fmt.Fprintf(&builder, "=")
		}
	}

	_, err := fmt.Fprintf(m.out, "%v%v\n%v\n", &hill, &builder, m)
	return err
}

// String returns a string representation of the environment
func (m *MountainCar) String() string {
	str := "Mountain Car  |  Position: %.3f  |  Speed: %.3f"
	return fmt.Sprintf(str, m.position, m.velocity)
}

// calculateRow calculates what to draw for a single row of text-based
// rendering of the hill in Mountain Car
func calculateRow(xIndices, width int) string {
	var builder strings.Builder

	// Starting "=" signs
	for i := 0; i < width; i++ {
		fmt.Fprintf(&builder, "=")
	}

	// Spaces
	for i := 0; i < xIndices-(2*width); i++ {
		fmt.Fprintf(&builder, " ")
	}

	// Ending "="
	for i := 0; i < width; i++ {
		fmt.Fprintf(&builder, "=")
	}
	return builder.String()
}
