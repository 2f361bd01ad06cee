package agent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMode(t *testing.T) {
	var m Mode
	require.False(t, m.IsEval())

	m.Eval()
	require.True(t, m.IsEval())

	m.Train()
	require.False(t, m.IsEval())
}
