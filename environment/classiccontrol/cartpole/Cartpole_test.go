package cartpole

import (
	"bytes"
	"context"
	"testing"

	"github.com/samuelfneumann/rlcore/environment"
	"github.com/stretchr/testify/require"
)

func TestReset(t *testing.T) {
	ctx := context.Background()
	c := New(0, nil)

	for i := 0; i < 100; i++ {
		snapshot, err := c.Reset(ctx)
		require.NoError(t, err)
		require.False(t, snapshot.Done)
		require.Len(t, snapshot.State, StateDims)
		for _, v := range snapshot.State {
			require.LessOrEqual(t, v, StartBounds)
			require.GreaterOrEqual(t, v, -StartBounds)
		}
	}

	require.NoError(t, environment.ValidateStateSpace(c.StateSpace(),
		c.StateDim()))
}

func TestSeedReplaysStarts(t *testing.T) {
	ctx := context.Background()
	c := New(3, nil)

	first, err := c.Reset(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Seed(ctx, 3))
	again, err := c.Reset(ctx)
	require.NoError(t, err)
	require.Equal(t, first.State, again.State)
}

func TestEpisodeEndsWithZeroReward(t *testing.T) {
	ctx := context.Background()
	c := New(1, nil)
	_, err := c.Reset(ctx)
	require.NoError(t, err)

	// Always pushing right topples the pole well within 200 steps
	steps := 0
	for {
		snapshot, err := c.Step(ctx, 1)
		require.NoError(t, err)
		steps++
		if snapshot.Done {
			require.Equal(t, 0.0, snapshot.Reward)
			break
		}
		require.Equal(t, 1.0, snapshot.Reward)
		require.Less(t, steps, 200)
	}

	// Only the first terminal step is unrewarded
	snapshot, err := c.Step(ctx, 1)
	require.NoError(t, err)
	require.True(t, snapshot.Done)
	require.Equal(t, 1.0, snapshot.Reward)
}

func TestPushDirection(t *testing.T) {
	ctx := context.Background()
	c := New(2, nil)
	_, err := c.Reset(ctx)
	require.NoError(t, err)
	c.state = []float64{0, 0, 0, 0}

	right, err := c.Step(ctx, 1)
	require.NoError(t, err)
	require.Greater(t, right.State[1], 0.0)

	c.state = []float64{0, 0, 0, 0}
	left, err := c.Step(ctx, 0)
	require.NoError(t, err)
	require.Less(t, left.State[1], 0.0)
}

func TestInvalidAction(t *testing.T) {
	c := New(0, nil)
	_, err := c.Step(context.Background(), 2)
	require.True(t, environment.IsInvalidAction(err))
}

func TestRender(t *testing.T) {
	var out bytes.Buffer
	c := New(0, &out)
	_, err := c.Reset(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Render())
	require.Contains(t, out.String(), "Cartpole")
	require.Contains(t, out.String(), "#")
}
