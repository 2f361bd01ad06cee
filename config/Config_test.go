package config

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/rlcore/agent"
	"github.com/samuelfneumann/rlcore/environment"
	"github.com/samuelfneumann/rlcore/environment/classiccontrol/mountaincar"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	require.Equal(t, zerolog.InfoLevel, c.Level())
}

func TestWriteRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().Write(&buf))
	require.Contains(t, buf.String(), "timeout: 10s")

	c, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestPartialFile(t *testing.T) {
	file := `
seed: 3
environment:
  name: mountaincar
  timeout: 2s
agent:
  type: ppo
  ppo:
    clip: 0.3
    network:
      hidden: [8]
      activations: [tanh]
      biases: [false]
experiment:
  goal: -110
`
	c, err := Read(strings.NewReader(file))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	require.Equal(t, uint64(3), c.Seed)
	require.Equal(t, MountainCar, c.Environment.Name)
	require.Equal(t, 2*time.Second, c.Environment.Timeout)
	require.Equal(t, 500, c.Environment.EpisodeSteps)

	def := Default()
	require.Equal(t, PPO, c.Agent.Type)
	require.Equal(t, 0.3, c.Agent.PPO.Clip)
	require.Equal(t, def.Agent.PPO.InnerBatch, c.Agent.PPO.InnerBatch)
	require.Equal(t, def.Agent.PPO.Lambda, c.Agent.PPO.Lambda)
	require.Equal(t, []int{8}, c.Agent.PPO.Network.Hidden)
	require.Equal(t, []bool{false}, c.Agent.PPO.Network.Biases)
	require.Equal(t, def.Agent.PPO.Network.Batch, c.Agent.PPO.Network.Batch)
	require.Equal(t, -110.0, c.Experiment.Goal)
	require.Equal(t, def.Experiment.MaxEpisodes, c.Experiment.MaxEpisodes)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("RLCORE_AGENT_TYPE", "a2c")
	t.Setenv("RLCORE_SEED", "11")

	c, err := Read(strings.NewReader("agent:\n  type: dqn\n"))
	require.NoError(t, err)
	require.Equal(t, A2C, c.Agent.Type)
	require.Equal(t, uint64(11), c.Seed)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"),
		0o600))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, zerolog.DebugLevel, c.Level())
	require.Equal(t, Default().Agent, c.Agent)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(c *Config){
		"LogLevel":      func(c *Config) { c.LogLevel = "loud" },
		"Environment":   func(c *Config) { c.Environment.Name = "pong" },
		"EpisodeSteps":  func(c *Config) { c.Environment.EpisodeSteps = -1 },
		"AgentType":     func(c *Config) { c.Agent.Type = "sarsa" },
		"SelectedAgent": func(c *Config) { c.Agent.DQN.Gamma = 2 },
		"Experiment":    func(c *Config) { c.Experiment.Window = 0 },
		"RemoteAddress": func(c *Config) {
			c.Environment.Name = Remote
			c.Environment.Address = ""
		},
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}

	// Only the selected agent is validated
	c := Default()
	c.Agent.PPO.Clip = 5
	require.NoError(t, c.Validate())
}

func TestValidateRolloutEpisodeSteps(t *testing.T) {
	for _, kind := range []AgentType{GAE, PPO} {
		t.Run(string(kind), func(t *testing.T) {
			c := Default()
			c.Agent.Type = kind
			c.Agent.GAE.Capacity = 64
			c.Agent.GAE.Network = c.Agent.GAE.Network.WithBatch(64)
			c.Agent.PPO.Capacity = 64

			c.Environment.EpisodeSteps = 64
			require.NoError(t, c.Validate())

			c.Environment.EpisodeSteps = 65
			require.Error(t, c.Validate())

			// Unlimited episodes may not fit in any buffer
			c.Environment.EpisodeSteps = 0
			require.Error(t, c.Validate())
		})
	}

	// Agents which do not learn from whole episodes allow any length
	c := Default()
	c.Agent.Type = A2C
	c.Environment.EpisodeSteps = 0
	require.NoError(t, c.Validate())
}

func TestBuildEnv(t *testing.T) {
	ctx := context.Background()
	c := Default()

	env, err := c.BuildEnv(ctx, nil, zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, &environment.StepLimit{}, env)
	require.Equal(t, 4, env.StateDim())
	require.Equal(t, 2, env.NumActions())

	c.Environment.Name = MountainCar
	c.Environment.EpisodeSteps = 0
	env, err = c.BuildEnv(ctx, nil, zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, &mountaincar.MountainCar{}, env)
	require.Equal(t, 3, env.NumActions())
}

func TestBuildRemoteEnv(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"state_space": [[-1, 1]],
				"dim_of_state_space": 1, "num_of_actions": 4}`)
		}))
	defer ts.Close()

	c := Default()
	c.Environment.Name = Remote
	c.Environment.Address = ts.URL
	env, err := c.BuildEnv(context.Background(), nil, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 1, env.StateDim())
	require.Equal(t, 4, env.NumActions())

	ts.Close()
	_, err = c.BuildEnv(context.Background(), nil, zerolog.Nop())
	require.Error(t, err)
}

func TestBuildAgent(t *testing.T) {
	c := Default()
	env, err := c.BuildEnv(context.Background(), nil, zerolog.Nop())
	require.NoError(t, err)

	for _, kind := range []AgentType{DynaQ, DQN, QRDQN, A2C, GAE, PPO} {
		t.Run(string(kind), func(t *testing.T) {
			c.Agent.Type = kind
			a, err := c.BuildAgent(env, zerolog.Nop())
			require.NoError(t, err)

			action, err := a.React(make([]float64, env.StateDim()))
			require.NoError(t, err)
			require.GreaterOrEqual(t, action, 0)
			require.Less(t, action, env.NumActions())

			if closer, ok := a.(agent.Closer); ok {
				require.NoError(t, closer.Close())
			}
		})
	}

	c.Agent.Type = "sarsa"
	_, err = c.BuildAgent(env, zerolog.Nop())
	require.Error(t, err)
}
