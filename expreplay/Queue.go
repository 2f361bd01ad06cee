package expreplay

import (
	"github.com/samuelfneumann/rlcore/timestep"
)

// Queue is a Sink which holds Transitions until they are drained. It
// lets an agent learn from each Transition as soon as a Recorder
// completes it, without keeping a replay memory.
type Queue struct {
	transitions []timestep.Transition
}

// Add appends a Transition to the Queue
func (q *Queue) Add(t timestep.Transition) {
	q.transitions = append(q.transitions, t)
}

// Len returns the number of queued Transitions
func (q *Queue) Len() int {
	return len(q.transitions)
}

// Drain removes and returns all queued Transitions, oldest first
func (q *Queue) Drain() []timestep.Transition {
	drained := q.transitions
	q.transitions = nil
	return drained
}
