package floatutils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	require.Equal(t, 1.0, Clip(3, -1, 1))
	require.Equal(t, -1.0, Clip(-3, -1, 1))
	require.Equal(t, 0.5, Clip(0.5, -1, 1))
	require.Equal(t, 0.6, ClipInterval(1, r1.Interval{Min: -1.2, Max: 0.6}))
}

func TestWrapAngle(t *testing.T) {
	require.InDelta(t, -math.Pi+0.1, WrapAngle(math.Pi+0.1), 1e-12)
	require.InDelta(t, math.Pi-0.1, WrapAngle(-math.Pi-0.1), 1e-12)
	require.Equal(t, 0.3, WrapAngle(0.3))
}

func TestScale(t *testing.T) {
	interval := r1.Interval{Min: -1, Max: 3}
	require.Equal(t, 0.0, Scale(-1, interval))
	require.Equal(t, 0.5, Scale(1, interval))
	require.Equal(t, 1.0, Scale(10, interval))
}
