package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewStopCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop GROUP",
		Short: "Stop and remove the workspace of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := parseGroup(args[0])
			if err != nil {
				return err
			}

			launcher, closeRuntime, err := newLauncher(opts)
			if err != nil {
				return err
			}
			defer closeRuntime()

			if err := launcher.Stop(cmd.Context(), group); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped group %d\n", group)
			return nil
		},
	}
}
