package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewLaunchCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "launch GROUP [TOKEN]",
		Short: "Launch the workspace of a group",
		Long: `Launch the workspace container of a group. TOKEN becomes the
WORKSPACE_PASSWORD of the container; a random one is generated and
printed when it is omitted.`,
		Example: `  launcher launch 3
  launcher launch 3 my-secret`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			group, err := parseGroup(args[0])
			if err != nil {
				return err
			}
			token := ""
			if len(args) == 2 {
				token = args[1]
			}

			launcher, closeRuntime, err := newLauncher(opts)
			if err != nil {
				return err
			}
			defer closeRuntime()

			instance, err := launcher.Launch(cmd.Context(), group, token)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Launched %s (%s)\n", instance.Name, shortID(instance.ContainerID))
			fmt.Fprintf(out, "  GPU:   %d\n", instance.GPU)
			fmt.Fprintf(out, "  Port:  %d\n", instance.HostPort)
			fmt.Fprintf(out, "  Token: %s\n", instance.Token)
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
