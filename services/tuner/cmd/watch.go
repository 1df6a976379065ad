package cmd

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go_code_tuner/services/tuner/internal"
	"go_code_tuner/services/tuner/internal/events"
)

func NewWatchCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Tail training events from Kafka",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			consumer, err := internal.NewConsumer(cfg)
			if err != nil {
				return err
			}
			watcher := events.NewWatcher(consumer, printEvent(cmd.OutOrStdout()), 1)
			defer watcher.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watcher.Start(ctx)
		},
	}
}

func printEvent(out io.Writer) events.Handler {
	return func(event events.Event) error {
		line := fmt.Sprintf("%s  %-12s run=%s", event.Time.Format(time.RFC3339), event.Type, event.RunID)
		switch event.Type {
		case events.TypeStep, events.TypeEval:
			line += fmt.Sprintf(" epoch=%d step=%d loss=%.4f", event.Epoch, event.Step, event.Loss)
			if event.Type == events.TypeStep {
				line += fmt.Sprintf(" lr=%.2e", event.LearningRate)
			}
		case events.TypeCheckpoint:
			line += " path=" + event.Checkpoint
		case events.TypeRunFailed:
			line += " error=" + event.Message
		}
		_, err := fmt.Fprintln(out, line)
		return err
	}
}
