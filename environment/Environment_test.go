package environment

import (
	"context"
	"math"
	"testing"

	"github.com/samuelfneumann/rlcore/timestep"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r1"
)

// counter is an Environment whose state counts the steps taken
type counter struct {
	count float64
}

func (c *counter) Reset(context.Context) (timestep.Snapshot, error) {
	c.count = 0
	return timestep.NewSnapshot([]float64{c.count}, 0, false), nil
}

func (c *counter) Step(_ context.Context,
	action int) (timestep.Snapshot, error) {
	if err := ValidateAction(action, c.NumActions()); err != nil {
		return timestep.Snapshot{}, err
	}
	c.count++
	return timestep.NewSnapshot([]float64{c.count}, 1, false), nil
}

func (c *counter) Seed(context.Context, uint64) error { return nil }
func (c *counter) Render() error                      { return nil }
func (c *counter) StateDim() int                      { return 1 }
func (c *counter) NumActions() int                    { return 2 }
func (c *counter) StateSpace() []r1.Interval {
	return []r1.Interval{{Min: 0, Max: math.Inf(1)}}
}

func TestValidateAction(t *testing.T) {
	require.NoError(t, ValidateAction(0, 2))
	require.NoError(t, ValidateAction(1, 2))

	err := ValidateAction(2, 2)
	require.True(t, IsInvalidAction(err))
	require.True(t, IsInvalidAction(ValidateAction(-1, 2)))
}

func TestValidateStateSpace(t *testing.T) {
	space := []r1.Interval{{Min: -1, Max: 1}, {Min: math.Inf(-1),
		Max: math.Inf(1)}}
	require.NoError(t, ValidateStateSpace(space, 2))
	require.Error(t, ValidateStateSpace(space, 3))
	require.Error(t, ValidateStateSpace([]r1.Interval{{Min: 1, Max: 1}}, 1))
}

func TestUniformStarter(t *testing.T) {
	bounds := []r1.Interval{{Min: -0.05, Max: 0.05}, {Min: 2, Max: 3}}
	starter := NewUniformStarter(bounds, 1)

	first := starter.Start()
	for i := 0; i < 1000; i++ {
		state := starter.Start()
		require.Len(t, state, 2)
		for j, b := range bounds {
			require.GreaterOrEqual(t, state[j], b.Min)
			require.LessOrEqual(t, state[j], b.Max)
		}
	}

	// Reseeding replays the same start states
	starter.Seed(1)
	require.Equal(t, first, starter.Start())
}

func TestStepLimit(t *testing.T) {
	ctx := context.Background()
	env := NewStepLimit(&counter{}, 3)

	for episode := 0; episode < 2; episode++ {
		_, err := env.Reset(ctx)
		require.NoError(t, err)

		for step := 1; step <= 3; step++ {
			snapshot, err := env.Step(ctx, 0)
			require.NoError(t, err)
			require.Equal(t, step == 3, snapshot.Done)
		}
	}

	_, err := env.Step(ctx, 5)
	require.True(t, IsInvalidAction(err))
}
