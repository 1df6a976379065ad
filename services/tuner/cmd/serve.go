package cmd

import (
	"github.com/spf13/cobra"
	"go_code_tuner/pkg/app"
	"go_code_tuner/services/tuner/internal"
	"go_code_tuner/services/tuner/internal/config"
)

func NewServeCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the workspace API",
		Long: `Serve the workspace API on server.address. Requests must carry the
WORKSPACE_PASSWORD as a bearer token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			return app.RunService(serviceName, logConfig(cfg), internal.NewService(cfg))
		},
	}
}
