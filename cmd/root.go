// Package cmd implements the corpora command-line interface.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/contextkit/corpora/cmd/assemble"
	"github.com/contextkit/corpora/cmd/caches"
	"github.com/contextkit/corpora/cmd/common"
	"github.com/contextkit/corpora/cmd/crawl"
	"github.com/contextkit/corpora/cmd/httpd"
	"github.com/contextkit/corpora/cmd/load"
	"github.com/contextkit/corpora/cmd/schedule"
	"github.com/contextkit/corpora/internal/config"
	"github.com/contextkit/corpora/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

var (
	cfgFile string
	debug   bool

	deps common.Deps

	rootCmd = &cobra.Command{
		Use:   "corpora",
		Short: "Build bounded corpora from web pages, files and directories",
		Long: `corpora crawls documentation sites, loads local files and
directories, and assembles the results into a single token-bounded
corpus suitable for registration with a context-cache service.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("initialize configuration: %w", err)
			}

			if debug {
				cfg.Logger.Level = "debug"
				cfg.Logger.Development = true
			}

			deps.Config = cfg
			deps.Logger = logger.New(cfg.Logger)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so viper sees its variables.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("corpora version %s\n", version)
		},
	})

	rootCmd.AddCommand(crawl.Command(&deps))
	rootCmd.AddCommand(load.Command(&deps))
	rootCmd.AddCommand(assemble.Command(&deps))
	rootCmd.AddCommand(caches.Command(&deps))
	rootCmd.AddCommand(httpd.Command(&deps))
	rootCmd.AddCommand(schedule.Command(&deps))
}
