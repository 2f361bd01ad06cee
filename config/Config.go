// Package config implements the run configuration: which environment
// to create, which agent to train on it, and how long to train.
//
// Run files are YAML. Every key has a default, so a run file only needs
// the keys it changes. Keys may also be overridden by environment
// variables prefixed with RLCORE_, for example RLCORE_AGENT_TYPE=ppo.
package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/rlcore/agent"
	"github.com/samuelfneumann/rlcore/agent/deepq"
	"github.com/samuelfneumann/rlcore/agent/dynaq"
	"github.com/samuelfneumann/rlcore/agent/policygradient"
	"github.com/samuelfneumann/rlcore/environment"
	"github.com/samuelfneumann/rlcore/environment/classiccontrol/cartpole"
	"github.com/samuelfneumann/rlcore/environment/classiccontrol/mountaincar"
	"github.com/samuelfneumann/rlcore/environment/remote"
	"github.com/samuelfneumann/rlcore/experiment"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment variables which override keys
const EnvPrefix = "RLCORE"

// EnvName names an environment that can be configured
type EnvName string

// Environments available for configuration
const (
	Cartpole    EnvName = "cartpole"
	MountainCar EnvName = "mountaincar"
	Remote      EnvName = "remote"
)

// AgentType names an agent that can be configured
type AgentType string

// Agents available for configuration
const (
	DynaQ AgentType = "dynaq"
	DQN   AgentType = "dqn"
	QRDQN AgentType = "qrdqn"
	A2C   AgentType = "a2c"
	GAE   AgentType = "gae"
	PPO   AgentType = "ppo"
)

// EnvConfig configures the environment
type EnvConfig struct {
	Name EnvName `yaml:"name" mapstructure:"name"`

	// Steps after which an episode is cut off, 0 means no limit
	EpisodeSteps int `yaml:"episode_steps" mapstructure:"episode_steps"`

	// Remote environments only
	Address string        `yaml:"address" mapstructure:"address"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// AgentConfig holds the configuration of each agent type. Only the
// configuration named by Type is used.
type AgentConfig struct {
	Type  AgentType                `yaml:"type" mapstructure:"type"`
	DynaQ dynaq.Config             `yaml:"dynaq" mapstructure:"dynaq"`
	DQN   deepq.Config             `yaml:"dqn" mapstructure:"dqn"`
	QRDQN deepq.Config             `yaml:"qrdqn" mapstructure:"qrdqn"`
	A2C   policygradient.A2CConfig `yaml:"a2c" mapstructure:"a2c"`
	GAE   policygradient.GAEConfig `yaml:"gae" mapstructure:"gae"`
	PPO   policygradient.PPOConfig `yaml:"ppo" mapstructure:"ppo"`
}

// Selected returns the configuration of the agent named by Type
func (a AgentConfig) Selected() (agent.Config, error) {
	switch a.Type {
	case DynaQ:
		return a.DynaQ, nil
	case DQN:
		return a.DQN, nil
	case QRDQN:
		return a.QRDQN, nil
	case A2C:
		return a.A2C, nil
	case GAE:
		return a.GAE, nil
	case PPO:
		return a.PPO, nil
	}
	return nil, fmt.Errorf("selected: no such agent type %q", a.Type)
}

// rolloutCapacity returns the rollout buffer capacity of the selected
// agent and whether it learns from whole episodes at all
func (a AgentConfig) rolloutCapacity() (int, bool) {
	switch a.Type {
	case GAE:
		return a.GAE.Capacity, true
	case PPO:
		return a.PPO.Capacity, true
	}
	return 0, false
}

// Config represents a configuration of a full run
type Config struct {
	Seed     uint64 `yaml:"seed" mapstructure:"seed"`
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`

	// Directory in which tracked data and charts are saved. Nothing is
	// saved if empty.
	Output string `yaml:"output" mapstructure:"output"`

	Environment EnvConfig         `yaml:"environment" mapstructure:"environment"`
	Agent       AgentConfig       `yaml:"agent" mapstructure:"agent"`
	Experiment  experiment.Config `yaml:"experiment" mapstructure:"experiment"`
}

// Default returns the default configuration: DQN on cart-pole with
// episodes cut off at 500 steps
func Default() Config {
	return Config{
		LogLevel: zerolog.InfoLevel.String(),
		Environment: EnvConfig{
			Name:         Cartpole,
			EpisodeSteps: 500,
			Address:      "http://localhost:5000",
			Timeout:      10 * time.Second,
		},
		Agent: AgentConfig{
			Type:  DQN,
			DynaQ: dynaq.DefaultConfig(),
			DQN:   deepq.DefaultConfig(),
			QRDQN: deepq.DefaultQuantileConfig(),
			A2C:   policygradient.DefaultA2CConfig(),
			GAE:   policygradient.DefaultGAEConfig(),
			PPO:   policygradient.DefaultPPOConfig(),
		},
		Experiment: experiment.DefaultConfig(),
	}
}

// Validate ensures that the Config is valid. Only the selected agent
// configuration is validated.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "validate")
	}

	switch c.Environment.Name {
	case Cartpole, MountainCar:
	case Remote:
		if c.Environment.Address == "" {
			return fmt.Errorf("validate: remote environment needs an " +
				"address")
		}
		if c.Environment.Timeout < 0 {
			return fmt.Errorf("validate: timeout cannot be negative"+
				"\n\twant(>=0)\n\thave(%v)", c.Environment.Timeout)
		}
	default:
		return fmt.Errorf("validate: no such environment %q",
			c.Environment.Name)
	}
	if c.Environment.EpisodeSteps < 0 {
		return fmt.Errorf("validate: episode steps cannot be negative"+
			"\n\twant(>=0)\n\thave(%v)", c.Environment.EpisodeSteps)
	}

	selected, err := c.Agent.Selected()
	if err != nil {
		return errors.Wrap(err, "validate")
	}
	if err := selected.Validate(); err != nil {
		return errors.Wrapf(err, "validate: agent %v", c.Agent.Type)
	}
	if capacity, ok := c.Agent.rolloutCapacity(); ok {
		steps := c.Environment.EpisodeSteps
		if steps == 0 || steps > capacity {
			return fmt.Errorf("validate: agent %v needs episodes which fit "+
				"its rollout buffer\n\twant(episode steps in [1, %v])"+
				"\n\thave(%v)", c.Agent.Type, capacity, steps)
		}
	}

	return errors.Wrap(c.Experiment.Validate(), "validate: experiment")
}

// Level returns the configured log level
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// BuildEnv creates the configured environment. Classic control
// environments render to out.
func (c Config) BuildEnv(ctx context.Context, out io.Writer,
	logger zerolog.Logger) (environment.Environment, error) {
	var env environment.Environment
	switch c.Environment.Name {
	case Cartpole:
		env = cartpole.New(c.Seed, out)
	case MountainCar:
		env = mountaincar.New(c.Seed, out)
	case Remote:
		client := &http.Client{Timeout: c.Environment.Timeout}
		r, err := remote.Make(ctx, c.Environment.Address, client, logger)
		if err != nil {
			return nil, errors.Wrap(err, "buildenv")
		}
		env = r
	default:
		return nil, fmt.Errorf("buildenv: no such environment %q",
			c.Environment.Name)
	}

	if c.Environment.EpisodeSteps > 0 {
		env = environment.NewStepLimit(env, c.Environment.EpisodeSteps)
	}
	return env, nil
}

// BuildAgent creates the configured agent for env
func (c Config) BuildAgent(env environment.Environment,
	logger zerolog.Logger) (agent.Agent, error) {
	selected, err := c.Agent.Selected()
	if err != nil {
		return nil, errors.Wrap(err, "buildagent")
	}
	a, err := selected.CreateAgent(env, c.Seed, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "buildagent: %v", c.Agent.Type)
	}
	return a, nil
}

// Write writes the Config as YAML to w
func (c Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "write")
	}
	return errors.Wrap(enc.Close(), "write")
}

// Load reads the run file at path. Keys missing from the file take
// their values from Default.
func Load(path string) (Config, error) {
	v, err := newViper()
	if err != nil {
		return Config{}, errors.Wrap(err, "load")
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "load")
	}
	return decode(v)
}

// Read reads a run file from r in the same way as Load
func Read(r io.Reader) (Config, error) {
	v, err := newViper()
	if err != nil {
		return Config{}, errors.Wrap(err, "read")
	}
	if err := v.ReadConfig(r); err != nil {
		return Config{}, errors.Wrap(err, "read")
	}
	return decode(v)
}

// newViper returns a viper instance which reads YAML, has a default
// for every key of Config, and is overridden by the environment
func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var buf bytes.Buffer
	if err := Default().Write(&buf); err != nil {
		return nil, err
	}
	defaults := make(map[string]interface{})
	if err := yaml.Unmarshal(buf.Bytes(), &defaults); err != nil {
		return nil, err
	}
	setDefaults(v, "", defaults)
	return v, nil
}

// setDefaults registers every leaf of a nested map as a default
func setDefaults(v *viper.Viper, prefix string, m map[string]interface{}) {
	for key, value := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]interface{}); ok {
			setDefaults(v, key, nested)
			continue
		}
		v.SetDefault(key, value)
	}
}

// decode unmarshals the settings of v. Durations are decoded from
// strings such as "10s".
func decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "decode")
	}
	return c, nil
}
