// Package expreplay implements fixed-capacity replay memories. A
// Memory is used both as a shuffled experience replay buffer for
// off-policy learning and as an ordered rollout buffer for on-policy
// learning.
package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/rlcore/timestep"
	"golang.org/x/exp/rand"
)

// Memory implements a circular buffer of Transitions. Transitions are
// written into consecutive slots, overwriting the oldest once the
// buffer is full. If shuffle is enabled, the stored Transitions are
// shuffled in place each time the write cursor wraps around, which
// decorrelates the order in which data is overwritten.
//
// Memory embeds a Recorder so that Transitions can be assembled from
// per-step calls to SetState, SetAction, and SetRewardAndMask.
type Memory struct {
	*Recorder

	rng     *rand.Rand
	slots   []timestep.Transition
	shuffle bool

	head int // Slot most recently written
	size int // Number of slots holding data

	shuffles    int // Number of wraparound shuffles performed
	overwritten int // Transitions overwritten since the last Reset
}

// New returns a new Memory holding at most capacity Transitions.
func New(capacity int, shuffle bool, rng *rand.Rand) (*Memory, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("new: capacity must be positive\n\twant(>0)"+
			"\n\thave(%v)", capacity)
	}
	if rng == nil {
		return nil, fmt.Errorf("new: nil rng")
	}

	m := &Memory{
		rng:     rng,
		slots:   make([]timestep.Transition, capacity),
		shuffle: shuffle,
	}
	m.Recorder = NewRecorder(m)
	m.Reset()

	return m, nil
}

// Add adds a Transition to the Memory, overwriting the oldest
// Transition if the Memory is full
func (m *Memory) Add(t timestep.Transition) {
	m.head++
	if m.head >= len(m.slots) {
		if m.shuffle {
			m.shuffleSlots()
		}
		m.head = 0
	}

	m.slots[m.head] = t
	if m.size < len(m.slots) {
		m.size++
	} else {
		m.overwritten++
	}
}

// Sample returns n Transitions drawn uniformly at random with
// replacement
func (m *Memory) Sample(n int) ([]timestep.Transition, error) {
	if m.size == 0 {
		return nil, &ReplayError{Op: "sample", Err: errEmptyBuffer}
	}
	if n < 1 {
		return nil, fmt.Errorf("sample: sample size must be positive"+
			"\n\twant(>0)\n\thave(%v)", n)
	}

	sample := make([]timestep.Transition, n)
	for i := range sample {
		sample[i] = m.slots[m.rng.Intn(m.size)]
	}
	return sample, nil
}

// SampleBatch samples n Transitions with replacement and stacks them
// into a Batch
func (m *Memory) SampleBatch(n int) (*Batch, error) {
	sample, err := m.Sample(n)
	if err != nil {
		return nil, err
	}
	return NewBatch(sample)
}

// Ordered returns all stored Transitions from oldest to newest
func (m *Memory) Ordered() []timestep.Transition {
	ordered := make([]timestep.Transition, 0, m.size)
	if m.size < len(m.slots) {
		return append(ordered, m.slots[:m.size]...)
	}

	start := (m.head + 1) % len(m.slots)
	ordered = append(ordered, m.slots[start:]...)
	return append(ordered, m.slots[:start]...)
}

// OrderedBatch stacks all stored Transitions, oldest first, into a
// Batch
func (m *Memory) OrderedBatch() (*Batch, error) {
	if m.size == 0 {
		return nil, &ReplayError{Op: "orderedbatch", Err: errEmptyBuffer}
	}
	return NewBatch(m.Ordered())
}

// At returns the Transition stored in slot i
func (m *Memory) At(i int) (timestep.Transition, error) {
	if i < 0 || i >= m.size {
		err := fmt.Errorf("%w %v\n\twant([0, %v))", errOutOfRange, i, m.size)
		return timestep.Transition{}, &ReplayError{Op: "at", Err: err}
	}
	return m.slots[i], nil
}

// Overwritten returns the number of Transitions which were
// overwritten since the last Reset
func (m *Memory) Overwritten() int {
	return m.overwritten
}

// Intact returns a *ReplayError if any Transition was overwritten
// since the last Reset, in which case the stored Transitions no longer
// hold a contiguous sequence from its start
func (m *Memory) Intact() error {
	if m.overwritten == 0 {
		return nil
	}
	err := fmt.Errorf("%w: %v transitions lost\n\twant(<=%v transitions)",
		errOverwritten, m.overwritten, len(m.slots))
	return &ReplayError{Op: "intact", Err: err}
}

// Len returns the number of Transitions currently stored
func (m *Memory) Len() int {
	return m.size
}

// Capacity returns the maximum number of Transitions the Memory holds
func (m *Memory) Capacity() int {
	return len(m.slots)
}

// Reset clears all stored Transitions as well as the in-progress
// Transition of the embedded Recorder
func (m *Memory) Reset() {
	for i := range m.slots {
		m.slots[i] = timestep.Transition{}
	}
	m.head = -1
	m.size = 0
	m.overwritten = 0
	m.Recorder.Reset()
}

// shuffleSlots performs an in-place Fisher-Yates shuffle of the
// occupied slots
func (m *Memory) shuffleSlots() {
	for i := m.size - 1; i > 0; i-- {
		j := m.rng.Intn(i + 1)
		m.slots[i], m.slots[j] = m.slots[j], m.slots[i]
	}
	m.shuffles++
}
