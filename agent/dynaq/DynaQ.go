// Package dynaq implements tabular Dyna-Q over a discretized state
// space.
//
// After each real transition, the Q table is updated with the
// Q-learning target and the transition is stored in an empirical
// model of the environment. A number of simulated transitions are then
// drawn from the model and used for further Q-learning updates.
package dynaq

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/rlcore/agent"
	"github.com/samuelfneumann/rlcore/expreplay"
	"github.com/samuelfneumann/rlcore/selector"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
)

// DynaQ implements the Dyna-Q algorithm with an epsilon-greedy
// behaviour policy
type DynaQ struct {
	agent.Mode
	config  Config
	actions int
	logger  zerolog.Logger
	rng     *rand.Rand

	encoder  *Encoder
	model    *Model
	table    [][]float64
	order    []int
	recorder *expreplay.Recorder
	pending  *expreplay.Queue
}

// New creates a new DynaQ agent over the given state space
func New(stateSpace []r1.Interval, actions int, c Config, seed uint64,
	logger zerolog.Logger) (*DynaQ, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "new")
	}
	if actions < 1 {
		return nil, fmt.Errorf("new: at least one action is required"+
			"\n\twant(>0)\n\thave(%v)", actions)
	}

	encoder, err := NewEncoder(stateSpace, c.Resolution)
	if err != nil {
		return nil, errors.Wrap(err, "new")
	}

	rng := rand.New(rand.NewSource(seed))
	pending := &expreplay.Queue{}
	table := make([][]float64, encoder.States())
	for s := range table {
		table[s] = make([]float64, actions)
	}

	return &DynaQ{
		config:   c,
		actions:  actions,
		logger:   logger.With().Str("component", "dynaq").Logger(),
		rng:      rng,
		encoder:  encoder,
		model:    NewModel(encoder.States(), actions, rng),
		table:    table,
		order:    selector.Order(actions),
		recorder: expreplay.NewRecorder(pending),
		pending:  pending,
	}, nil
}

// React learns from any completed transition and returns the action
// to take in state
func (d *DynaQ) React(state []float64) (int, error) {
	if len(state) != d.encoder.Dims() {
		return -1, fmt.Errorf("react: invalid state dimension\n\twant(%v)"+
			"\n\thave(%v)", d.encoder.Dims(), len(state))
	}

	if !d.IsEval() {
		if err := d.recorder.SetState(state); err != nil {
			return -1, errors.Wrap(err, "react")
		}
		d.learn()
	}

	var action int
	if d.rng.Float64() < d.config.Epsilon || d.model.Visited() == 0 {
		action = d.rng.Intn(d.actions)
	} else {
		action = d.greedy(d.encoder.Encode(state))
	}

	if !d.IsEval() {
		if err := d.recorder.SetAction(action); err != nil {
			return -1, errors.Wrap(err, "react")
		}
		if d.model.Visited() > 0 {
			d.plan()
		}
	}

	return action, nil
}

// Collect records the reward for the last action and whether the
// episode has ended
func (d *DynaQ) Collect(reward float64, done bool) error {
	if d.IsEval() {
		return nil
	}
	return errors.Wrap(d.recorder.SetRewardAndMask(reward, done), "collect")
}

// Reset zeroes the Q table and forgets the model and any partial
// transition
func (d *DynaQ) Reset() error {
	for s := range d.table {
		for a := range d.table[s] {
			d.table[s][a] = 0
		}
	}
	d.model.Reset()
	d.recorder.Reset()
	d.pending.Drain()

	d.logger.Debug().Int("states", d.encoder.States()).Msg("reset")
	return nil
}

// Values returns a copy of the action values of state
func (d *DynaQ) Values(state []float64) []float64 {
	row := d.table[d.encoder.Encode(state)]
	values := make([]float64, len(row))
	copy(values, row)
	return values
}

// learn applies the direct update for each completed transition
func (d *DynaQ) learn() {
	for _, t := range d.pending.Drain() {
		s := d.encoder.Encode(t.State)
		next := d.encoder.Encode(t.NextState)
		d.model.Update(s, next, t.Action, t.Reward, t.Done)
		d.update(s, next, t.Action, t.Reward, t.Done)
	}
}

// plan applies updates with transitions simulated from the model
func (d *DynaQ) plan() {
	for i := 0; i < d.config.PlanningIterations; i++ {
		s, a := d.model.Sample()
		next := d.model.Next(s, a)
		reward := d.model.Reward(s, a)
		d.update(s, next, a, reward, next == d.model.Terminal())
	}
}

// update performs a Q-learning update of the action value of (s, a)
func (d *DynaQ) update(s, next, a int, reward float64, done bool) {
	var expected float64
	if !done {
		expected = d.config.Gamma * d.table[next][d.greedy(next)]
	}
	d.table[s][a] += d.config.Alpha * (reward + expected - d.table[s][a])
}

// greedy returns a maximal action in state s, breaking ties randomly
func (d *DynaQ) greedy(s int) int {
	return selector.RandomArgMax(d.table[s], d.rng, d.order)
}
