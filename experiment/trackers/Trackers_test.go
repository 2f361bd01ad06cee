package trackers

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/rlcore/experiment/tracker"
	"github.com/samuelfneumann/rlcore/timestep"
	"github.com/stretchr/testify/require"
)

// run tracks an episode of n steps with the given reward per step
func run(t tracker.Tracker, n int, reward float64) {
	for i := 1; i <= n; i++ {
		t.Track(timestep.NewSnapshot([]float64{0}, reward, i == n))
	}
}

func TestReturn(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "return.bin")
	r := NewReturn(filename)
	run(r, 3, 1)
	run(r, 2, -0.5)

	// Unfinished episodes are not recorded
	r.Track(timestep.NewSnapshot([]float64{0}, 10, false))
	require.Equal(t, []float64{3, -1}, r.Data())

	require.NoError(t, r.Save())
	data, err := tracker.LoadData(filename)
	require.NoError(t, err)
	require.Equal(t, []float64{3, -1}, data)
}

func TestEpisodeLength(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "length.bin")
	e := NewEpisodeLength(filename)
	run(e, 4, 1)
	run(e, 1, 1)
	require.Equal(t, []float64{4, 1}, e.Data())

	require.NoError(t, e.Save())
	data, err := tracker.LoadData(filename)
	require.NoError(t, err)
	require.Equal(t, []float64{4, 1}, data)

	_, err = tracker.LoadData(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)
}

func TestChart(t *testing.T) {
	r := NewReturn("")
	run(r, 2, 1)
	run(r, 5, 1)

	c := NewChart(filepath.Join(t.TempDir(), "chart.html"), "Learning curve")
	c.Add("training return", r)

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf))
	require.Contains(t, buf.String(), "Learning curve")
	require.Contains(t, buf.String(), "training return")

	require.NoError(t, c.Save())
}
