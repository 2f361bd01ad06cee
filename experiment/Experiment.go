// Package experiment implements functionality for running an experiment.
//
// A Runner plays episodes of an agent in an environment until the
// exponential moving average of the episodic return reaches a goal.
// Every step of an episode is sent to the Runner's Trackers, which
// cache the data they are interested in so that it can be saved once
// the experiment has finished.
package experiment

import (
	"fmt"
	"math"
)

// Smoothing is the weight of the previous score in the exponential
// moving average of episodic returns
const Smoothing = 0.95

// Config represents a configuration of an experiment
type Config struct {
	// Maximum number of training episodes, 0 means no limit
	MaxEpisodes int     `yaml:"max_episodes" mapstructure:"max_episodes"`
	Goal        float64 `yaml:"goal" mapstructure:"goal"`

	// Number of recent episodes averaged in progress reports
	Window       int  `yaml:"window" mapstructure:"window"`
	EvalEpisodes int  `yaml:"eval_episodes" mapstructure:"eval_episodes"`
	Render       bool `yaml:"render" mapstructure:"render"`
}

// DefaultConfig returns the default experiment configuration
func DefaultConfig() Config {
	return Config{
		MaxEpisodes:  1000,
		Goal:         195,
		Window:       100,
		EvalEpisodes: 10,
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.MaxEpisodes < 0 {
		return fmt.Errorf("validate: max episodes cannot be negative"+
			"\n\twant(>=0)\n\thave(%v)", c.MaxEpisodes)
	}
	if math.IsNaN(c.Goal) {
		return fmt.Errorf("validate: goal cannot be NaN")
	}
	if c.Window < 1 {
		return fmt.Errorf("validate: window must be positive\n\twant(>0)"+
			"\n\thave(%v)", c.Window)
	}
	if c.EvalEpisodes < 0 {
		return fmt.Errorf("validate: evaluation episodes cannot be "+
			"negative\n\twant(>=0)\n\thave(%v)", c.EvalEpisodes)
	}
	return nil
}

// Result summarizes a completed run
type Result struct {
	ID       string
	Episodes int
	Steps    int
	Score    float64 // Final moving average of the return
	Mean     float64 // Mean return over the last Window episodes
	Solved   bool    // Whether Score reached the goal
}

// updateScore returns the moving average score after an episode with
// return ret. The first episode sets the score.
func updateScore(score, ret float64) float64 {
	if math.IsInf(score, -1) {
		return ret
	}
	return Smoothing*score + (1-Smoothing)*ret
}
