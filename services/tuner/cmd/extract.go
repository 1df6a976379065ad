package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go_code_tuner/services/tuner/internal"
	"go_code_tuner/services/tuner/internal/models"
)

type ExtractOptions struct {
	*GlobalOptions

	// Output receives one JSON snippet per line when set.
	Output string
}

func NewExtractCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &ExtractOptions{GlobalOptions: globalOpts}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Print statistics about the functions found in the source",
		Example: `  # Summary per language
  tuner extract

  # Dump every snippet as JSON lines
  tuner extract --output snippets.jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.GlobalOptions)
			if err != nil {
				return err
			}

			snippets, err := internal.NewPipeline(cfg, internal.NewVersionControl(cfg), nil).Extract(cmd.Context())
			if err != nil {
				return err
			}

			if opts.Output != "" {
				if err := writeSnippets(opts.Output, snippets); err != nil {
					return err
				}
			}
			return printStats(cmd.OutOrStdout(), snippets)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write snippets as JSON lines to this file")
	return cmd
}

func writeSnippets(path string, snippets []*models.Snippet) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for _, snippet := range snippets {
		if err := encoder.Encode(snippet); err != nil {
			return fmt.Errorf("failed to write snippet %s: %w", snippet.ID, err)
		}
	}
	return file.Sync()
}

type languageStats struct {
	snippets int
	files    map[string]struct{}
	lines    int
	chars    int
}

func printStats(out io.Writer, snippets []*models.Snippet) error {
	stats := make(map[string]*languageStats)
	for _, snippet := range snippets {
		s, ok := stats[snippet.Language]
		if !ok {
			s = &languageStats{files: make(map[string]struct{})}
			stats[snippet.Language] = s
		}
		s.snippets++
		s.files[snippet.Filename] = struct{}{}
		s.lines += snippet.EndLine - snippet.StartLine + 1
		s.chars += len(snippet.Content)
	}

	languages := make([]string, 0, len(stats))
	for language := range stats {
		languages = append(languages, language)
	}
	sort.Strings(languages)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LANGUAGE\tFILES\tFUNCTIONS\tAVG LINES\tAVG CHARS")
	for _, language := range languages {
		s := stats[language]
		fmt.Fprintf(w, "%s\t%d\t%d\t%.1f\t%.1f\n", language, len(s.files), s.snippets,
			float64(s.lines)/float64(s.snippets), float64(s.chars)/float64(s.snippets))
	}
	return w.Flush()
}
