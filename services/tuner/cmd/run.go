package cmd

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go_code_tuner/services/tuner/internal"
	"go_code_tuner/services/tuner/internal/metrics"
)

func NewRunCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Extract, pack, train and sample once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			metrics.Init(cfg.Prometheus.Address)

			publisher, err := internal.NewPublisher(cfg)
			if err != nil {
				return err
			}
			defer publisher.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pipeline := internal.NewPipeline(cfg, internal.NewVersionControl(cfg), publisher)
			report, _, err := pipeline.Run(ctx, uuid.New().String())
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
