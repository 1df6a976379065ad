package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func NewPsCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "ps",
		Short:   "List workspaces",
		Aliases: []string{"list"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			launcher, closeRuntime, err := newLauncher(opts)
			if err != nil {
				return err
			}
			defer closeRuntime()

			instances, err := launcher.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(instances) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No workspaces found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "GROUP\tNAME\tGPU\tPORT\tSTATE\tCREATED")
			for _, instance := range instances {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%s\n", instance.Group, instance.Name, instance.GPU,
					instance.HostPort, instance.State, instance.Created.Format(time.DateTime))
			}
			return w.Flush()
		},
	}
}
