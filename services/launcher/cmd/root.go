// Package cmd implements the launcher command line.
package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go_code_tuner/pkg/log"
	"go_code_tuner/services/launcher/internal"
	"go_code_tuner/services/launcher/internal/config"
	"go_code_tuner/services/launcher/internal/runtime"
)

type GlobalOptions struct {
	ConfigPath string
}

// runtimeFactory is replaced in tests.
var runtimeFactory = func(cfg *config.Config) (runtime.Runtime, error) {
	return runtime.NewDocker(runtime.WithPullRetries(cfg.Pull.MaxRetries))
}

func NewLauncherCommand() *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:   "launcher",
		Short: "Start and stop per-group tuner workspaces",
		Long: `launcher runs one tuner workspace container per group on a shared GPU host.

Group N gets GPU (N mod gpu_count) and host port (base_port + N).`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "./launcher.yaml", "path to the YAML config")

	cmd.AddCommand(
		NewLaunchCommand(opts),
		NewStopCommand(opts),
		NewPsCommand(opts),
	)
	return cmd
}

// newLauncher loads the config, initializes logging and connects to the container runtime.
func newLauncher(opts *GlobalOptions) (*internal.Launcher, func(), error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	log.Init(log.Config{
		Level:   log.LevelFromString(cfg.LogLevel),
		Env:     cfg.Env,
		Service: "launcher",
	})

	rt, err := runtimeFactory(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeRuntime := func() {
		if err := rt.Close(); err != nil {
			log.GetLogger().WithError(err).Warn("failed to close runtime client")
		}
	}
	return internal.NewLauncher(cfg, rt), closeRuntime, nil
}

func parseGroup(arg string) (int, error) {
	group, err := strconv.Atoi(arg)
	if err != nil || group < 0 {
		return 0, fmt.Errorf("invalid group number %q", arg)
	}
	return group, nil
}
