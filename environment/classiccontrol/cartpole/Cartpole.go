// Package cartpole implements the Cartpole classic control environment
package cartpole

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
	// Physical constants
	Gravity        float64 = 9.8
	CartMass       float64 = 1.0
	PoleMass       float64 = 0.1
	TotalMass      float64 = CartMass + PoleMass
	HalfPoleLength float64 = 0.5 // half of pole length
	PoleMassLength float64 = PoleMass * HalfPoleLength
	ForceMag       float64 = 10.0 // Magnification of force applied
	Dt             float64 = 0.02 // seconds between state updates

	// Episode termination thresholds
	PositionThreshold float64 = 2.4
	AngleThreshold    float64 = 12 * 2 * math.Pi / 360

	// Bounds (+/-) on the reported state space
	PositionBounds float64 = 2 * PositionThreshold
	AngleBounds    float64 = 2 * AngleThreshold

	// StartBounds bounds (+/-) each state feature at the start of an
	// episode
	StartBounds float64 = 0.05

	Actions   int = 2
	StateDims int = 4
)

// Cartpole implements the classic control environment Cartpole. In
// this environment, a pole is attached to a cart, which can move
// horizontally. Gravity pulls the pole downwards so that balancing it
// in an upright position is very difficult.
//
// The state features are continuous and consist of the cart's x
// position and speed, as well as the pole's angle from the positive
// y-axis and the pole's angular velocity. The pole's angle is kept in
// the range [-π, π].
//
// Actions are discrete, consisting of the direction to apply
// horizontal force to the cart:
//
//	Action	Meaning
//	  0		Apply force left
//	  1		Apply force right
//
// The episode ends once the cart leaves [-2.4, 2.4] or the pole falls
// more than 12 degrees from upright. Each step is rewarded with 1,
// except for the step which ends the episode, which is rewarded with
// 0. Stepping past the end of an episode continues the simulation with
// a reward of 1.
type Cartpole struct {
	starter *environment.UniformStarter
	out     io.Writer

	state       []float64
	stepsBeyond int
}

// New constructs a new Cartpole environment. Renderings are written
// to out, which may be nil if the environment is never rendered.
func New(seed uint64, out io.Writer) *Cartpole {
	bounds := make([]r1.Interval, StateDims)
	for i := range bounds {
		bounds[i] = r1.Interval{Min: -StartBounds, Max: StartBounds}
	}

	return &Cartpole{
		starter:     environment.NewUniformStarter(bounds, seed),
		out:         out,
		state:       make([]float64, StateDims),
		stepsBeyond: -1,
	}
}

// Seed seeds the start state distribution
func (c *Cartpole) Seed(_ context.Context, seed uint64) error {
	c.starter.Seed(seed)
	return nil
}

// Reset resets the environment and returns a starting state drawn
// uniformly from [-0.05, 0.05] for each feature
func (c *Cartpole) Reset(context.Context) (ts.Snapshot, error) {
	c.state = c.starter.Start()
	c.stepsBeyond = -1
	return ts.NewSnapshot(c.state, 0, false), nil
}

// Step takes one environmental step given action a and returns the
// next state, the reward, and whether the episode has ended
func (c *Cartpole) Step(_ context.Context, a int) (ts.Snapshot, error) {
	if err := environment.ValidateAction(a, Actions); err != nil {
		return ts.Snapshot{}, err
	}

	force := -ForceMag
	if a == 1 {
		force = ForceMag
	}

	// Get state variables
	x, xDot := c.state[0], c.state[1]
	th, thDot := c.state[2], c.state[3]

	// Calculate physical variables to determine next state
	cosTheta := math.Cos(th)
	sinTheta := math.Sin(th)

	temp := (force + PoleMassLength*thDot*thDot*sinTheta) / TotalMass
	thAcc := (Gravity*sinTheta - cosTheta*temp) / (HalfPoleLength *
		(4.0/3.0 - PoleMass*cosTheta*cosTheta/TotalMass))
	xAcc := temp - PoleMassLength*thAcc*cosTheta/TotalMass

	// Update state variables using Euler kinematic integration
	x += Dt * xDot
	xDot += Dt * xAcc
	th = floatutils.WrapAngle(th + Dt*thDot)
	thDot += Dt * thAcc
	c.state = []float64{x, xDot, th, thDot}

	done := x < -PositionThreshold || x > PositionThreshold ||
		th < -AngleThreshold || th > AngleThreshold
	if done {
		c.stepsBeyond++
	}

	reward := 1.0
	if c.stepsBeyond == 0 {
		reward = 0.0
	}

	return ts.NewSnapshot(c.state, reward, done), nil
}

// StateSpace returns the bounds on each state feature
func (c *Cartpole) StateSpace() []r1.Interval {
	return []r1.Interval{
		{Min: -PositionBounds, Max: PositionBounds},
		{Min: math.Inf(-1), Max: math.Inf(1)},
		{Min: -AngleBounds, Max: AngleBounds},
		{Min: math.Inf(-1), Max: math.Inf(1)},
	}
}

// StateDim returns the number of state features
func (c *Cartpole) StateDim() int {
	return StateDims
}

// NumActions returns the number of actions
func (c *Cartpole) NumActions() int {
	return Actions
}

// Render renders a text-based version of the environment: the track
// with the cart's position and the pole's lean
func (c *Cartpole) Render() error {
	if c.out == nil {
		return nil
	}

	const trackWidth = 25
	track := r1.Interval{Min: -PositionThreshold, Max: PositionThreshold}
	cart := int(floatutils.Scale(c.state[0], track) * (trackWidth - 1))

	lean := "|"
	if c.state[2] > AngleThreshold/3 {
		lean = "/"
	} else if c.state[2] < -AngleThreshold/3 {
		lean = "\\"
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "%v%v\n", strings.Repeat(" ", cart), lean)
	fmt.Fprintf(&builder, "%v#%v\n", strings.Repeat("=", cart),
		strings.Repeat("=", trackWidth-cart-1))
	fmt.Fprintln(&builder, c)

	_, err := io.WriteString(c.out, builder.String())
	return err
}

func (c *Cartpole) String() string {
	msg := "Cartpole  |  Position: %.3f  | Speed: %.3f  |  Angle: %.3f" +
		"  |  Angular Velocity: %.3f"

	return fmt.Sprintf(msg, c.state[0], c.state[1], c.state[2], c.state[3])
}
