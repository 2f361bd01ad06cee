package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/rlcore/config"
	"github.com/spf13/cobra"
)

const defaultPath = "rlcore.yaml"

func initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a run file with the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultPath
			if len(args) == 1 {
				path = args[0]
			}

			flag := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if force {
				flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}
			file, err := os.OpenFile(path, flag, 0o644)
			if err != nil {
				return errors.Wrap(err, "init")
			}
			defer file.Close()

			if err := config.Default().Write(file); err != nil {
				return errors.Wrap(err, "init")
			}
			if err := file.Close(); err != nil {
				return errors.Wrap(err, "init")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %v\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false,
		"Overwrite an existing file")
	return cmd
}
