package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/rlcore/agent"
	"github.com/samuelfneumann/rlcore/config"
	"github.com/samuelfneumann/rlcore/experiment"
	"github.com/samuelfneumann/rlcore/experiment/trackers"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func runCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Train an agent until it reaches the goal score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := config.Default()
			if path != "" {
				var err error
				if c, err = config.Load(path); err != nil {
					return err
				}
			}
			if err := applyFlags(cmd.Flags(), &c); err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			logger := newLogger(cmd.ErrOrStderr(), c.Level())
			return run(ctx, c, cmd.OutOrStdout(), logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&path, "config", "c", "", "Run file, defaults are "+
		"used if empty")
	flags.Float64("goal", 0, "Score at which training stops")
	flags.Int("episodes", 0, "Maximum number of training episodes")
	flags.Uint64("seed", 0, "Seed of the environment and agent")
	flags.String("output", "", "Directory to save tracked data in")
	return cmd
}

// applyFlags overrides the run file with the flags that were set
func applyFlags(flags *pflag.FlagSet, c *config.Config) error {
	var err error
	if flags.Changed("goal") {
		if c.Experiment.Goal, err = flags.GetFloat64("goal"); err != nil {
			return err
		}
	}
	if flags.Changed("episodes") {
		if c.Experiment.MaxEpisodes, err = flags.GetInt("episodes"); err != nil {
			return err
		}
	}
	if flags.Changed("seed") {
		if c.Seed, err = flags.GetUint64("seed"); err != nil {
			return err
		}
	}
	if flags.Changed("output") {
		if c.Output, err = flags.GetString("output"); err != nil {
			return err
		}
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	return nil
}

// run trains the configured agent, evaluates it, saves the tracked
// data, and prints a summary to out
func run(ctx context.Context, c config.Config, out io.Writer,
	logger zerolog.Logger) error {
	env, err := c.BuildEnv(ctx, out, logger)
	if err != nil {
		return err
	}
	a, err := c.BuildAgent(env, logger)
	if err != nil {
		return err
	}
	if closer, ok := a.(agent.Closer); ok {
		defer closer.Close()
	}

	runner, err := experiment.NewRunner(env, a, c.Experiment, c.Seed, logger)
	if err != nil {
		return err
	}

	var chart *trackers.Chart
	if c.Output != "" {
		if err := os.MkdirAll(c.Output, 0o755); err != nil {
			return errors.Wrap(err, "run")
		}
		prefix := filepath.Join(c.Output, runner.ID())
		ret := trackers.NewReturn(prefix + "-return.bin")
		length := trackers.NewEpisodeLength(prefix + "-length.bin")
		runner.Register(ret)
		runner.Register(length)

		chart = trackers.NewChart(prefix+"-chart.html",
			fmt.Sprintf("%v on %v", c.Agent.Type, c.Environment.Name))
		chart.Add("return", ret)
		chart.Add("episode length", length)
	}

	if f, ok := out.(*os.File); ok && !c.Experiment.Render {
		progress := experiment.NewProgress(f)
		runner.SetProgress(progress)
		defer progress.Stop()
	}

	result, err := runner.Run(ctx, c.Experiment.Goal)
	if err != nil {
		return err
	}

	eval := 0.0
	if c.Experiment.EvalEpisodes > 0 {
		if eval, err = runner.Evaluate(ctx, c.Experiment.EvalEpisodes); err != nil {
			return err
		}
	}

	if c.Output != "" {
		if err := runner.Save(); err != nil {
			return err
		}
		if err := chart.Save(); err != nil {
			return err
		}
	}

	summarize(out, c, result, eval)
	return nil
}

func summarize(out io.Writer, c config.Config, result experiment.Result,
	eval float64) {
	status := aurora.Red("not solved")
	if result.Solved {
		status = aurora.Green("solved")
	}

	fmt.Fprintf(out, "%v on %v: %v after %v episodes (%v steps)\n",
		aurora.Bold(c.Agent.Type), c.Environment.Name, status,
		result.Episodes, result.Steps)
	fmt.Fprintf(out, "  run   %v\n", result.ID)
	fmt.Fprintf(out, "  score %.2f (goal %.2f)\n", result.Score,
		c.Experiment.Goal)
	if c.Experiment.EvalEpisodes > 0 {
		fmt.Fprintf(out, "  eval  %.2f over %v episodes\n", eval,
			c.Experiment.EvalEpisodes)
	}
}
