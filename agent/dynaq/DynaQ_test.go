package dynaq

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/rlcore/expreplay"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestEncoder(t *testing.T) {
	tests := []struct {
		name       string
		bounds     []r1.Interval
		resolution int
		state      []float64
		want       int
	}{
		{"lower bin", []r1.Interval{{Min: 0, Max: 2}}, 2, []float64{0.5}, 0},
		{"upper bin", []r1.Interval{{Min: 0, Max: 2}}, 2, []float64{1.5}, 1},
		{"upper bound", []r1.Interval{{Min: 0, Max: 2}}, 2, []float64{2}, 1},
		{"below range", []r1.Interval{{Min: 0, Max: 2}}, 2, []float64{-1}, 0},
		{"above range", []r1.Interval{{Min: 0, Max: 2}}, 2, []float64{9}, 1},
		{
			"mixed radix",
			[]r1.Interval{{Min: 0, Max: 1}, {Min: 0, Max: 1}},
			3,
			[]float64{0.5, 0.9},
			1*3 + 2,
		},
		{
			"unbounded centre",
			[]r1.Interval{{Min: math.Inf(-1), Max: math.Inf(1)}},
			4,
			[]float64{0},
			2,
		},
		{
			"unbounded negative",
			[]r1.Interval{{Min: math.Inf(-1), Max: math.Inf(1)}},
			4,
			[]float64{-0.5},
			1,
		},
		{
			"unbounded tail",
			[]r1.Interval{{Min: math.Inf(-1), Max: math.Inf(1)}},
			4,
			[]float64{10},
			3,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e, err := NewEncoder(test.bounds, test.resolution)
			require.NoError(t, err)
			require.Equal(t, test.want, e.Encode(test.state))
		})
	}
}

func TestEncoderTerminal(t *testing.T) {
	e, err := NewEncoder([]r1.Interval{{Min: 0, Max: 1}, {Min: 0, Max: 1}}, 3)
	require.NoError(t, err)
	require.Equal(t, 9, e.States())
	require.Equal(t, 9, e.Encode(nil))

	require.Panics(t, func() { e.Encode([]float64{0.5}) })
}

func TestNewEncoderValidates(t *testing.T) {
	valid := []r1.Interval{{Min: 0, Max: 1}}

	_, err := NewEncoder(valid, 0)
	require.Error(t, err)

	_, err = NewEncoder(nil, 2)
	require.Error(t, err)

	_, err = NewEncoder([]r1.Interval{{Min: 1, Max: 0}}, 2)
	require.Error(t, err)

	_, err = NewEncoder([]r1.Interval{{Min: 0, Max: 1}, {Min: 0, Max: 1}},
		1<<12)
	require.Error(t, err)
}

func TestModel(t *testing.T) {
	m := NewModel(3, 2, rand.New(rand.NewSource(1)))
	require.Equal(t, 0, m.Visited())
	require.Panics(t, func() { m.Sample() })

	m.Update(0, 1, 1, 0.5, false)
	m.Update(1, 2, 0, 1, true)
	m.Update(0, 2, 1, 0.25, false) // Overwrites the first outcome
	require.Equal(t, 2, m.Visited())

	require.Equal(t, 2, m.Next(0, 1))
	require.Equal(t, 0.25, m.Reward(0, 1))
	require.Equal(t, m.Terminal(), m.Next(1, 0))

	// Only observed pairs are sampled
	for i := 0; i < 100; i++ {
		s, a := m.Sample()
		if s == 0 {
			require.Equal(t, 1, a)
		} else {
			require.Equal(t, 1, s)
			require.Equal(t, 0, a)
		}
	}

	m.Reset()
	require.Equal(t, 0, m.Visited())
	require.Equal(t, 0.0, m.Reward(0, 1))
}

// chain is a deterministic MDP over two states, encoded as [0.5] and
// [1.5]. In state 0, action 1 moves to state 1 and action 0 ends the
// episode. In state 1, action 1 ends the episode with reward 1 and
// action 0 moves back to state 0. All other rewards are 0.
func chain(state, action int) (next int, reward float64, done bool) {
	switch {
	case state == 0 && action == 1:
		return 1, 0, false
	case state == 0:
		return 0, 0, true
	case action == 1:
		return 1, 1, true
	default:
		return 0, 0, false
	}
}

func TestDynaQConverges(t *testing.T) {
	c := Config{
		Resolution:         2,
		Alpha:              0.5,
		Gamma:              0.9,
		Epsilon:            0.2,
		PlanningIterations: 10,
	}
	d, err := New([]r1.Interval{{Min: 0, Max: 2}}, 2, c, 1, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, d.Reset())

	encode := func(state int) []float64 { return []float64{float64(state) + 0.5} }

	for episode := 0; episode < 300; episode++ {
		state := 0
		for step := 0; ; step++ {
			action, err := d.React(encode(state))
			require.NoError(t, err)

			next, reward, done := chain(state, action)
			done = done || step == 19
			require.NoError(t, d.Collect(reward, done))
			if done {
				break
			}
			state = next
		}
	}

	// Flush the final terminal transition
	_, err = d.React(encode(0))
	require.NoError(t, err)

	s0, s1 := d.Values(encode(0)), d.Values(encode(1))
	require.Greater(t, s0[1], s0[0])
	require.Greater(t, s1[1], s1[0])

	require.InDelta(t, 0.9, s0[1], 1e-2)
	require.InDelta(t, 0.0, s0[0], 1e-2)
	require.InDelta(t, 1.0, s1[1], 1e-2)
	require.InDelta(t, 0.81, s1[0], 1e-2)
}

func TestDynaQProtocol(t *testing.T) {
	d, err := New([]r1.Interval{{Min: 0, Max: 1}}, 2, DefaultConfig(), 0,
		zerolog.Nop())
	require.NoError(t, err)

	err = d.Collect(1, false)
	require.True(t, expreplay.IsInvalidProtocolState(err))

	_, err = d.React([]float64{0.5})
	require.NoError(t, err)
	_, err = d.React([]float64{0.5})
	require.True(t, expreplay.IsInvalidProtocolState(err))

	_, err = d.React([]float64{0.5, 0.5})
	require.Error(t, err)
}

func TestDynaQEvalDoesNotLearn(t *testing.T) {
	d, err := New([]r1.Interval{{Min: 0, Max: 2}}, 2, DefaultConfig(), 0,
		zerolog.Nop())
	require.NoError(t, err)
	d.Eval()

	for i := 0; i < 10; i++ {
		_, err := d.React([]float64{0.5})
		require.NoError(t, err)
		require.NoError(t, d.Collect(1, i%3 == 2))
	}
	require.Equal(t, 0, d.model.Visited())
	require.Equal(t, []float64{0, 0}, d.Values([]float64{0.5}))
}

func TestDynaQReset(t *testing.T) {
	d, err := New([]r1.Interval{{Min: 0, Max: 2}}, 2, DefaultConfig(), 0,
		zerolog.Nop())
	require.NoError(t, err)

	_, err = d.React([]float64{0.5})
	require.NoError(t, err)
	require.NoError(t, d.Collect(1, true))
	_, err = d.React([]float64{1.5})
	require.NoError(t, err)
	require.Equal(t, 1, d.model.Visited())

	require.NoError(t, d.Reset())
	require.Equal(t, 0, d.model.Visited())
	require.Equal(t, []float64{0, 0}, d.Values([]float64{0.5}))

	// Reset leaves the recorder expecting a state
	_, err = d.React([]float64{0.5})
	require.NoError(t, err)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	c := DefaultConfig()
	c.Alpha = 0
	require.Error(t, c.Validate())

	c = DefaultConfig()
	c.Epsilon = 2
	require.Error(t, c.Validate())

	c = DefaultConfig()
	c.PlanningIterations = -1
	require.Error(t, c.Validate())
}
