package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
)

func TestNew(t *testing.T) {
	tests := map[Type]G.Solver{
		Adam:    &G.AdamSolver{},
		Vanilla: &G.VanillaSolver{},
		RMSProp: &G.RMSPropSolver{},
	}

	for typ, want := range tests {
		t.Run(string(typ), func(t *testing.T) {
			s, err := New(typ, 0.01)
			require.NoError(t, err)
			require.Equal(t, typ, s.Type)
			require.Equal(t, 0.01, s.StepSize)
			require.IsType(t, want, s.Solver)
			require.Contains(t, s.String(), string(typ))
		})
	}
}

func TestNewErrors(t *testing.T) {
	_, err := New("SGD", 0.01)
	require.Error(t, err)

	_, err = New(Adam, 0)
	require.Error(t, err)

	_, err = New(RMSProp, -0.1)
	require.Error(t, err)
}
