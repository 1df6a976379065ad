// Package cmd implements the tuner command line.
package cmd

import (
	"github.com/spf13/cobra"
	"go_code_tuner/pkg/log"
	"go_code_tuner/services/tuner/internal/config"
)

const serviceName = "tuner"

// GlobalOptions holds flags shared by every subcommand.
type GlobalOptions struct {
	ConfigPath string
}

func NewTunerCommand() *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Fine-tune a code model on the functions of a repository",
		Long: `tuner extracts functions from a Go or Python repository, packs them into
fixed-length token blocks and trains a low-rank adapter on them.

Run it once with "tuner run", or start the workspace API with "tuner serve".`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "./config.yaml", "path to the YAML config")

	cmd.AddCommand(
		NewRunCommand(opts),
		NewExtractCommand(opts),
		NewGenerateCommand(opts),
		NewServeCommand(opts),
		NewWatchCommand(opts),
	)
	return cmd
}

// loadConfig reads the config and initializes logging from it.
func loadConfig(opts *GlobalOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	log.Init(logConfig(cfg))
	return cfg, nil
}

func logConfig(cfg *config.Config) log.Config {
	return log.Config{
		Level:   log.LevelFromString(cfg.LogLevel),
		Env:     cfg.Env,
		Service: serviceName,
	}
}
