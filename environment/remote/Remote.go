// Package remote implements an environment which lives behind an HTTP
// endpoint. Requests are form-encoded POSTs and responses are JSON.
//
// The endpoint understands four requests:
//
//	env=query	-> {"state_space": [[lo, hi], ...],
//	               "dim_of_state_space": n, "num_of_actions": m}
//	env=reset	-> {"state": [...], "reward": r, "mask": done}
//	action=a	-> {"state": [...], "reward": r, "mask": done}
//	seed=s		-> ignored body
//
// A null bound in the state space denotes an unbounded dimension.
package remote

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/rlcore/environment"
	ts "github.com/samuelfneumann/rlcore/timestep"
	"gonum.org/v1/gonum/spatial/r1"
)

var errStatus = errors.New("unexpected response status")

// IsStatus returns whether err reports a non-2xx response
func IsStatus(err error) bool {
	return errors.Is(err, errStatus)
}

// Environment is an environment.Environment served over HTTP. Requests
// are never retried.
type Environment struct {
	address    string
	client     *http.Client
	logger     zerolog.Logger
	stateSpace []r1.Interval
	numActions int
}

type query struct {
	StateSpace [][2]*float64 `json:"state_space"`
	StateDim   int           `json:"dim_of_state_space"`
	NumActions int           `json:"num_of_actions"`
}

type snapshot struct {
	State  []float64 `json:"state"`
	Reward float64   `json:"reward"`
	Mask   mask      `json:"mask"`
}

// mask accepts both JSON booleans and numbers, a non-zero number
// meaning the episode has ended
type mask bool

func (m *mask) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*m = mask(b)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return errors.Wrapf(err, "mask: cannot decode %s", data)
	}
	*m = f != 0
	return nil
}

// Make queries the endpoint at address for its state space and number
// of actions and returns the remote Environment. If client is nil,
// http.DefaultClient is used.
func Make(ctx context.Context, address string, client *http.Client,
	logger zerolog.Logger) (*Environment, error) {
	if client == nil {
		client = http.DefaultClient
	}
	e := &Environment{
		address: address,
		client:  client,
		logger:  logger.With().Str("component", "remote").Logger(),
	}

	var q query
	if err := e.send(ctx, url.Values{"env": {"query"}}, &q); err != nil {
		return nil, errors.Wrap(err, "make")
	}

	e.stateSpace = make([]r1.Interval, len(q.StateSpace))
	for i, bounds := range q.StateSpace {
		e.stateSpace[i] = r1.Interval{Min: math.Inf(-1), Max: math.Inf(1)}
		if bounds[0] != nil {
			e.stateSpace[i].Min = *bounds[0]
		}
		if bounds[1] != nil {
			e.stateSpace[i].Max = *bounds[1]
		}
	}
	if err := environment.ValidateStateSpace(e.stateSpace,
		q.StateDim); err != nil {
		return nil, errors.Wrap(err, "make")
	}

	if q.NumActions < 1 {
		return nil, errors.Errorf("make: environment must have at least "+
			"one action\n\thave(%v)", q.NumActions)
	}
	e.numActions = q.NumActions

	e.logger.Debug().
		Str("address", address).
		Int("state_dim", q.StateDim).
		Int("actions", q.NumActions).
		Msg("connected")
	return e, nil
}

// Seed asks the remote environment to seed itself
func (e *Environment) Seed(ctx context.Context, seed uint64) error {
	data := url.Values{"seed": {strconv.FormatUint(seed, 10)}}
	return errors.Wrap(e.send(ctx, data, nil), "seed")
}

// Reset starts a new episode
func (e *Environment) Reset(ctx context.Context) (ts.Snapshot, error) {
	var s snapshot
	if err := e.send(ctx, url.Values{"env": {"reset"}}, &s); err != nil {
		return ts.Snapshot{}, errors.Wrap(err, "reset")
	}
	return ts.NewSnapshot(s.State, s.Reward, bool(s.Mask)), nil
}

// Step takes one environmental step with the given action
func (e *Environment) Step(ctx context.Context, a int) (ts.Snapshot, error) {
	if err := environment.ValidateAction(a, e.numActions); err != nil {
		return ts.Snapshot{}, err
	}

	var s snapshot
	data := url.Values{"action": {strconv.Itoa(a)}}
	if err := e.send(ctx, data, &s); err != nil {
		return ts.Snapshot{}, errors.Wrap(err, "step")
	}
	return ts.NewSnapshot(s.State, s.Reward, bool(s.Mask)), nil
}

// Render has no effect, the remote environment renders itself
func (e *Environment) Render() error {
	return nil
}

// StateSpace returns the bounds on each state feature
func (e *Environment) StateSpace() []r1.Interval {
	space := make([]r1.Interval, len(e.stateSpace))
	copy(space, e.stateSpace)
	return space
}

// StateDim returns the number of state features
func (e *Environment) StateDim() int {
	return len(e.stateSpace)
}

// NumActions returns the number of actions
func (e *Environment) NumActions() int {
	return e.numActions
}

// send POSTs the form data and decodes the JSON response into out. If
// out is nil, the response body is discarded.
func (e *Environment) send(ctx context.Context, data url.Values,
	out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.address,
		strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Wrapf(errStatus, "%v", resp.StatusCode)
	}

	if out == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "decode")
}
