package experiment

import (
	"context"
	"math"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/rlcore/agent"
	"github.com/samuelfneumann/rlcore/environment"
	"github.com/samuelfneumann/rlcore/experiment/tracker"
	"github.com/samuelfneumann/rlcore/timestep"
)

// Runner runs an agent online in an environment. The agent learns
// during every training episode; evaluation episodes are run with the
// agent in evaluation mode.
type Runner struct {
	env      environment.Environment
	agent    agent.Agent
	config   Config
	seed     uint64
	id       string
	logger   zerolog.Logger
	trackers []tracker.Tracker
	progress *Progress

	recent   *deque.Deque[float64] // Returns of the last Window episodes
	score    float64
	episodes int
	steps    int
}

// NewRunner creates and returns a new Runner of a on e. The
// environment is seeded with seed at the start of each run. The
// trackers t are sent every step of each training episode.
func NewRunner(e environment.Environment, a agent.Agent, c Config,
	seed uint64, logger zerolog.Logger, t ...tracker.Tracker) (*Runner,
	error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "newrunner")
	}

	recent := deque.New[float64](c.Window)

	id := uuid.New().String()
	return &Runner{
		env:      e,
		agent:    a,
		config:   c,
		seed:     seed,
		id:       id,
		logger:   logger.With().Str("component", "runner").Str("run", id).Logger(),
		trackers: t,
		recent:   recent,
		score:    math.Inf(-1),
	}, nil
}

// Register registers a tracker.Tracker with the Runner so that data
// generated during the experiment can be tracked and saved
func (r *Runner) Register(t tracker.Tracker) {
	r.trackers = append(r.trackers, t)
}

// SetProgress sets the Progress which is updated after each episode
func (r *Runner) SetProgress(p *Progress) {
	r.progress = p
}

// ID returns the unique id of the run
func (r *Runner) ID() string {
	return r.id
}

// Score returns the moving average of the return. It is -Inf before
// the first episode.
func (r *Runner) Score() float64 {
	return r.score
}

// Episodes returns the number of training episodes completed
func (r *Runner) Episodes() int {
	return r.episodes
}

// Mean returns the mean return over the most recent episodes
func (r *Runner) Mean() float64 {
	if r.recent.Len() == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := 0; i < r.recent.Len(); i++ {
		sum += r.recent.At(i)
	}
	return sum / float64(r.recent.Len())
}

// Run seeds the environment and runs training episodes until the score
// reaches goal or the maximum number of episodes is reached
func (r *Runner) Run(ctx context.Context, goal float64) (Result, error) {
	if err := r.env.Seed(ctx, r.seed); err != nil {
		return r.result(goal), errors.Wrap(err, "run")
	}
	r.agent.Train()

	for r.score < goal {
		if r.config.MaxEpisodes > 0 && r.episodes >= r.config.MaxEpisodes {
			break
		}

		ret, steps, err := r.RunEpisode(ctx)
		if err != nil {
			return r.result(goal), errors.Wrapf(err, "run: episode %v",
				r.episodes+1)
		}
		r.record(ret, steps)
	}

	result := r.result(goal)
	r.logger.Info().
		Int("episodes", result.Episodes).
		Int("steps", result.Steps).
		Float64("score", result.Score).
		Bool("solved", result.Solved).
		Msg("finished")
	return result, nil
}

// RunEpisode runs a single episode and returns its return and length.
// Each step is sent to the trackers unless the agent is in evaluation
// mode.
func (r *Runner) RunEpisode(ctx context.Context) (float64, int, error) {
	step, err := r.env.Reset(ctx)
	if err != nil {
		return 0, 0, err
	}

	ret := 0.0
	steps := 0
	for !step.Done {
		if err := ctx.Err(); err != nil {
			return ret, steps, err
		}
		if r.config.Render {
			if err := r.env.Render(); err != nil {
				return ret, steps, err
			}
		}

		action, err := r.agent.React(step.State)
		if err != nil {
			return ret, steps, err
		}
		step, err = r.env.Step(ctx, action)
		if err != nil {
			return ret, steps, err
		}
		if err := r.agent.Collect(step.Reward, step.Done); err != nil {
			return ret, steps, err
		}

		ret += step.Reward
		steps++
		if !r.agent.IsEval() {
			r.track(step)
		}
	}
	return ret, steps, nil
}

// Evaluate runs episodes with the agent in evaluation mode and returns
// the mean return. The agent is returned to training mode afterwards.
func (r *Runner) Evaluate(ctx context.Context, episodes int) (float64,
	error) {
	if episodes < 1 {
		return 0, errors.Errorf("evaluate: episodes must be positive"+
			"\n\twant(>0)\n\thave(%v)", episodes)
	}

	r.agent.Eval()
	defer r.agent.Train()

	total := 0.0
	for i := 0; i < episodes; i++ {
		ret, _, err := r.RunEpisode(ctx)
		if err != nil {
			return 0, errors.Wrap(err, "evaluate")
		}
		total += ret
	}

	mean := total / float64(episodes)
	r.logger.Info().Int("episodes", episodes).Float64("mean", mean).
		Msg("evaluation")
	return mean, nil
}

// Save saves the data cached by the trackers
func (r *Runner) Save() error {
	for _, t := range r.trackers {
		if err := t.Save(); err != nil {
			return errors.Wrap(err, "save")
		}
	}
	return nil
}

// record updates the score and the window of recent returns after a
// training episode
func (r *Runner) record(ret float64, steps int) {
	r.episodes++
	r.steps += steps
	r.score = updateScore(r.score, ret)

	if r.recent.Len() == r.config.Window {
		r.recent.PopFront()
	}
	r.recent.PushBack(ret)

	r.logger.Info().
		Int("epoch", r.episodes).
		Float64("return", ret).
		Float64("score", r.score).
		Int("steps", steps).
		Msg("episode")

	if r.progress != nil {
		r.progress.Update(r.episodes, ret, r.score, r.Mean())
	}
}

// track sends a step of the environment to each tracker
func (r *Runner) track(step timestep.Snapshot) {
	for _, t := range r.trackers {
		t.Track(step)
	}
}

func (r *Runner) result(goal float64) Result {
	return Result{
		ID:       r.id,
		Episodes: r.episodes,
		Steps:    r.steps,
		Score:    r.score,
		Mean:     r.Mean(),
		Solved:   r.score >= goal,
	}
}
