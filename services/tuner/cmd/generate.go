package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go_code_tuner/services/tuner/internal"
	"go_code_tuner/services/tuner/internal/generation"
)

type GenerateOptions struct {
	*GlobalOptions

	Checkpoint   string
	MaxNewTokens int
}

func NewGenerateCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &GenerateOptions{GlobalOptions: globalOpts}

	cmd := &cobra.Command{
		Use:     "generate PROMPT",
		Short:   "Greedily continue a prompt with a trained adapter",
		Example: `  tuner generate --checkpoint workspace/checkpoints/epoch_3 "func Area("`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.GlobalOptions)
			if err != nil {
				return err
			}

			dir := opts.Checkpoint
			if dir == "" {
				latest, ok := internal.LatestCheckpoint(cfg.Training.OutputDir)
				if !ok {
					return fmt.Errorf("no checkpoint under %s, pass --checkpoint", cfg.Training.OutputDir)
				}
				dir = latest
			}
			maxNewTokens := opts.MaxNewTokens
			if maxNewTokens <= 0 {
				maxNewTokens = cfg.Generation.MaxNewTokens
			}

			local, err := generation.LoadLocal(dir)
			if err != nil {
				return err
			}
			prompt := strings.Join(args, " ")
			completion, err := local.Generate(cmd.Context(), prompt, maxNewTokens)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), prompt+completion)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Checkpoint, "checkpoint", "", "adapter checkpoint directory (default: latest under training.output_dir)")
	cmd.Flags().IntVarP(&opts.MaxNewTokens, "max-new-tokens", "n", 0, "tokens to generate (default: generation.max_new_tokens)")
	return cmd
}
