// Package load implements the load subcommand: turn local files and
// directories into a markdown corpus.
package load

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contextkit/corpora/cmd/common"
	"github.com/contextkit/corpora/internal/corpus"
	"github.com/contextkit/corpora/internal/extract"
	"github.com/contextkit/corpora/internal/loader"
)

// Command builds the load subcommand.
func Command(deps *common.Deps) *cobra.Command {
	var (
		output    string
		maxTokens int
	)

	cmd := &cobra.Command{
		Use:   "load <path ...>",
		Short: "Load files and directories into a single markdown corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, deps, output, maxTokens)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the corpus to this file instead of stdout")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "fail when the combined corpus exceeds this many tokens (0 = unlimited)")

	return cmd
}

func run(cmd *cobra.Command, args []string, deps *common.Deps, output string, maxTokens int) error {
	registry := extract.NewRegistry()

	loaders := make([]loader.Loader, 0, len(args))
	labels := make([]string, 0, len(args))

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %q: %w", path, err)
		}

		var l loader.Loader
		if info.IsDir() {
			l = loader.NewDirLoader(path)
		} else {
			l = loader.NewFileLoader(path, registry)
		}

		loaders = append(loaders, l)
		labels = append(labels, l.Label())
	}

	sources, err := loader.LoadAll(cmd.Context(), loaders)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	combined, err := corpus.Combine(sources, labels, maxTokens)
	if err != nil {
		return err
	}

	deps.Logger.Info("Load finished",
		"sources", len(sources),
		"files", combined.FileCount,
		"tokens", combined.TotalTokens,
	)

	if output == "" {
		fmt.Println(combined.Content)
		return nil
	}

	if err := os.WriteFile(output, []byte(combined.Content), 0o644); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}

	return nil
}
