// Command rlcore trains reinforcement learning agents on classic
// control and remote environments.
//
// Usage:
//
//	rlcore init [path]
//	rlcore run --config path [--goal g] [--episodes n] [--seed s]
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var logLevel string

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rlcore",
		Short:         "Train reinforcement learning agents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level, overrides the run file")

	cmd.AddCommand(
		initCommand(),
		runCommand(),
	)
	return cmd
}

// newLogger returns a logger writing to w. Terminals get human
// readable output, everything else gets JSON.
func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	if isTerminal(w) {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
