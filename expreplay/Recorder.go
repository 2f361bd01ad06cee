package expreplay

import (
	"github.com/samuelfneumann/rlcore/timestep"
)

// Stage denotes which piece of information a Recorder expects next
type Stage int

const (
	StateStage Stage = iota
	ActionStage
	RewardStage
)

func (s Stage) String() string {
	switch s {
	case StateStage:
		return "State"
	case ActionStage:
		return "Action"
	case RewardStage:
		return "Reward and Mask"
	default:
		return "Unknown"
	}
}

// next returns the stage following s
func (s Stage) next() Stage {
	return (s + 1) % 3
}

// Sink stores Transitions that a Recorder has assembled
type Sink interface {
	Add(t timestep.Transition)
}

// Recorder assembles Transitions from a stream of per-step calls.
// Each interaction step must call SetState, SetAction, and
// SetRewardAndMask, in that order. Every call besides the first
// SetState of an episode completes the Transition of the previous
// step, which is then sent to the Recorder's Sink.
//
// A call out of order returns a *ProtocolError and leaves the Recorder
// unchanged.
type Recorder struct {
	sink  Sink
	stage Stage

	// Cached pieces of the in-progress transition. state is nil when no
	// episode is in progress.
	state  []float64
	action int
	reward float64
}

// NewRecorder returns a new Recorder which sends completed
// Transitions to sink
func NewRecorder(sink Sink) *Recorder {
	r := &Recorder{sink: sink}
	r.Reset()
	return r
}

// Stage returns the piece of information the Recorder expects next
func (r *Recorder) Stage() Stage {
	return r.stage
}

// SetState records the state at the current step. If a state was
// cached from the previous step of the same episode, the Transition
// from that state to this one is completed.
func (r *Recorder) SetState(state []float64) error {
	if err := r.advance("setstate", StateStage); err != nil {
		return err
	}

	if r.state != nil {
		r.sink.Add(timestep.NewTransition(r.state, state, r.action,
			r.reward, false))
	}

	r.state = make([]float64, len(state))
	copy(r.state, state)
	return nil
}

// SetAction records the action taken in the last recorded state
func (r *Recorder) SetAction(action int) error {
	if err := r.advance("setaction", ActionStage); err != nil {
		return err
	}

	r.action = action
	return nil
}

// SetRewardAndMask records the reward for the last action and whether
// it ended the episode. Ending the episode completes a terminal
// Transition and clears the cached state so that the next episode
// does not link to this one.
func (r *Recorder) SetRewardAndMask(reward float64, done bool) error {
	if err := r.advance("setrewardandmask", RewardStage); err != nil {
		return err
	}

	r.reward = reward
	if done {
		r.sink.Add(timestep.NewTransition(r.state, nil, r.action, reward,
			true))
		r.state = nil
		r.action = -1
	}
	return nil
}

// Reset drops any cached data and returns the Recorder to expecting
// a state
func (r *Recorder) Reset() {
	r.stage = StateStage
	r.state = nil
	r.action = -1
	r.reward = 0.0
}

// advance moves the Recorder to the next stage if the current stage
// is want.
func (r *Recorder) advance(op string, want Stage) error {
	if r.stage != want {
		return &ProtocolError{Op: op, Expected: r.stage}
	}
	r.stage = r.stage.next()
	return nil
}
