package dynaq

import (
	"golang.org/x/exp/rand"
)

// Model is an empirical model of a deterministic environment. It
// remembers the last observed outcome of each state-action pair, and
// samples uniformly over the pairs which have been observed.
type Model struct {
	rng      *rand.Rand
	terminal int

	visited     []int  // Visited states, in order of first visit
	visitedMark []bool // Whether each state has been visited
	actions     [][]int
	actionMark  [][]bool

	next    [][]int
	rewards [][]float64
}

// NewModel returns a new empty Model over states states and actions
// actions. The state index states denotes the terminal state.
func NewModel(states, actions int, rng *rand.Rand) *Model {
	m := &Model{
		rng:         rng,
		terminal:    states,
		visitedMark: make([]bool, states),
		actions:     make([][]int, states),
		actionMark:  make([][]bool, states),
		next:        make([][]int, states),
		rewards:     make([][]float64, states),
	}
	for s := 0; s < states; s++ {
		m.actionMark[s] = make([]bool, actions)
		m.next[s] = make([]int, actions)
		m.rewards[s] = make([]float64, actions)
	}
	return m
}

// Update records that taking action a in state s led to state next
// with the given reward. If done, next is replaced by the terminal
// state.
func (m *Model) Update(s, next, a int, reward float64, done bool) {
	if !m.visitedMark[s] {
		m.visitedMark[s] = true
		m.visited = append(m.visited, s)
	}
	if !m.actionMark[s][a] {
		m.actionMark[s][a] = true
		m.actions[s] = append(m.actions[s], a)
	}

	if done {
		next = m.terminal
	}
	m.next[s][a] = next
	m.rewards[s][a] = reward
}

// Sample returns a state-action pair drawn uniformly from the
// observed states, and then from the actions observed in that state.
// Sample panics if nothing has been observed.
func (m *Model) Sample() (s, a int) {
	if len(m.visited) == 0 {
		panic("sample: no transitions observed")
	}
	s = m.visited[m.rng.Intn(len(m.visited))]
	a = m.actions[s][m.rng.Intn(len(m.actions[s]))]
	return s, a
}

// Next returns the state reached by taking action a in state s
func (m *Model) Next(s, a int) int {
	return m.next[s][a]
}

// Reward returns the reward for taking action a in state s
func (m *Model) Reward(s, a int) float64 {
	return m.rewards[s][a]
}

// Terminal returns the index of the terminal state
func (m *Model) Terminal() int {
	return m.terminal
}

// Visited returns the number of distinct states observed
func (m *Model) Visited() int {
	return len(m.visited)
}

// Reset forgets all observed transitions
func (m *Model) Reset() {
	m.visited = m.visited[:0]
	for s := range m.visitedMark {
		m.visitedMark[s] = false
		m.actions[s] = m.actions[s][:0]
		for a := range m.actionMark[s] {
			m.actionMark[s][a] = false
			m.next[s][a] = 0
			m.rewards[s][a] = 0
		}
	}
}
