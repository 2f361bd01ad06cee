// Package agent defines the contract between agents and the loop that
// runs them
package agent

// Agent interacts with an environment one step at a time.
//
// Each step of an episode, the agent is given the current state by
// React and returns its action. The result of the action is then given
// to Collect. Learning happens inside React and Collect whenever
// enough experience has been gathered. In evaluation mode nothing is
// recorded and no learning takes place.
type Agent interface {
	// React records the state and returns the action to take in it
	React(state []float64) (int, error)

	// Collect records the reward for the last action and whether it
	// ended the episode
	Collect(reward float64, done bool) error

	// Reset rebuilds the agent, dropping everything it has learned
	Reset() error

	Train()       // Set agent to training mode
	Eval()        // Set agent to evaluation mode
	IsEval() bool // Indicates if in evaluation mode
}

// A Closer is an agent that must be closed after it is done learning
type Closer interface {
	Agent
	Close() error
}

// Mode tracks whether an agent is training or being evaluated. It is
// meant to be embedded; the zero value is in training mode.
type Mode struct {
	eval bool
}

// Train sets training mode
func (m *Mode) Train() { m.eval = false }

// Eval sets evaluation mode
func (m *Mode) Eval() { m.eval = true }

// IsEval returns whether in evaluation mode
func (m *Mode) IsEval() bool { return m.eval }
