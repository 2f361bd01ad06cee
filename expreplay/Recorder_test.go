package expreplay

import (
	"testing"

	"github.com/samuelfneumann/rlcore/timestep"
	"github.com/stretchr/testify/require"
)

// sliceSink stores every Transition it is given
type sliceSink struct {
	transitions []timestep.Transition
}

func (s *sliceSink) Add(t timestep.Transition) {
	s.transitions = append(s.transitions, t)
}

func TestRecorderStageOrdering(t *testing.T) {
	t.Run("ActionBeforeState", func(t *testing.T) {
		r := NewRecorder(&sliceSink{})

		err := r.SetAction(0)
		require.Error(t, err)
		require.True(t, IsInvalidProtocolState(err))

		var protocolErr *ProtocolError
		require.ErrorAs(t, err, &protocolErr)
		require.Equal(t, StateStage, protocolErr.Expected)
		require.Contains(t, err.Error(), "State")
	})

	t.Run("RewardTwice", func(t *testing.T) {
		r := NewRecorder(&sliceSink{})

		require.NoError(t, r.SetState([]float64{0}))
		require.NoError(t, r.SetAction(1))
		require.NoError(t, r.SetRewardAndMask(1, false))

		err := r.SetRewardAndMask(1, false)
		require.True(t, IsInvalidProtocolState(err))
		require.Contains(t, err.Error(), "State")
	})

	t.Run("StateTwice", func(t *testing.T) {
		r := NewRecorder(&sliceSink{})

		require.NoError(t, r.SetState([]float64{0}))
		err := r.SetState([]float64{1})
		require.True(t, IsInvalidProtocolState(err))
		require.Contains(t, err.Error(), "Action")
	})

	t.Run("IllegalCallDoesNotAdvance", func(t *testing.T) {
		r := NewRecorder(&sliceSink{})

		require.NoError(t, r.SetState([]float64{0}))
		require.Error(t, r.SetRewardAndMask(0, false))
		require.Equal(t, ActionStage, r.Stage())
		require.NoError(t, r.SetAction(0))
	})
}

func TestRecorderTransitionClosure(t *testing.T) {
	sink := &sliceSink{}
	r := NewRecorder(sink)

	s0, s1, s2 := []float64{0, 0}, []float64{1, 1}, []float64{2, 2}

	steps := []struct {
		state  []float64
		action int
		reward float64
		done   bool
	}{
		{s0, 0, 0.5, false},
		{s1, 1, 1.5, false},
		{s2, 2, 2.5, true},
	}
	for _, step := range steps {
		require.NoError(t, r.SetState(step.state))
		require.NoError(t, r.SetAction(step.action))
		require.NoError(t, r.SetRewardAndMask(step.reward, step.done))
	}

	want := []timestep.Transition{
		{State: s0, NextState: s1, Action: 0, Reward: 0.5, Done: false},
		{State: s1, NextState: s2, Action: 1, Reward: 1.5, Done: false},
		{State: s2, NextState: nil, Action: 2, Reward: 2.5, Done: true},
	}
	require.Equal(t, want, sink.transitions)
}

func TestRecorderDoesNotLinkEpisodes(t *testing.T) {
	sink := &sliceSink{}
	r := NewRecorder(sink)

	require.NoError(t, r.SetState([]float64{0}))
	require.NoError(t, r.SetAction(0))
	require.NoError(t, r.SetRewardAndMask(1, true))

	// First state of the next episode closes nothing
	require.NoError(t, r.SetState([]float64{5}))
	require.Len(t, sink.transitions, 1)

	require.NoError(t, r.SetAction(1))
	require.NoError(t, r.SetRewardAndMask(0, false))
	require.NoError(t, r.SetState([]float64{6}))

	require.Len(t, sink.transitions, 2)
	require.Equal(t, []float64{5}, sink.transitions[1].State)
	require.Equal(t, []float64{6}, sink.transitions[1].NextState)
}

func TestQueueDrain(t *testing.T) {
	q := &Queue{}
	r := NewRecorder(q)

	require.NoError(t, r.SetState([]float64{0}))
	require.NoError(t, r.SetAction(1))
	require.NoError(t, r.SetRewardAndMask(0.5, false))
	require.Equal(t, 0, q.Len())

	require.NoError(t, r.SetState([]float64{1}))
	require.Equal(t, 1, q.Len())

	drained := q.Drain()
	require.Equal(t, []timestep.Transition{
		timestep.NewTransition([]float64{0}, []float64{1}, 1, 0.5, false),
	}, drained)
	require.Equal(t, 0, q.Len())
	require.Empty(t, q.Drain())
}
