// Package schedule implements the schedule subcommand: run profile crawls
// on a cron expression.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/contextkit/corpora/cmd/common"
	"github.com/contextkit/corpora/internal/crawler"
	"github.com/contextkit/corpora/internal/sources"
)

// Command builds the schedule subcommand.
func Command(deps *common.Deps) *cobra.Command {
	var (
		spec   string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "schedule <profile ...>",
		Short: "Rebuild profile corpora on a cron schedule",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), deps, args, spec, outDir)
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "0 3 * * *", "cron expression for rebuild runs")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "directory corpora are written into")

	return cmd
}

func run(ctx context.Context, deps *common.Deps, profiles []string, spec, outDir string) error {
	path := deps.Config.ProfilesPath
	if path == "" {
		return errors.New("schedule requires a profiles file (set profiles_path)")
	}

	registry, err := sources.Load(path)
	if err != nil {
		return err
	}

	// Fail fast on unknown profile names before scheduling anything.
	for _, name := range profiles {
		if _, err := registry.Get(name); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	log := deps.Logger
	scheduler := cron.New()

	for _, name := range profiles {
		profileName := name

		_, err := scheduler.AddFunc(spec, func() {
			if err := rebuild(ctx, deps, registry, profileName, outDir); err != nil {
				log.Error("Scheduled crawl failed", "profile", profileName, "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule profile %q: %w", profileName, err)
		}
	}

	log.Info("Scheduler started", "cron", spec, "profiles", profiles)
	scheduler.Start()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	stopCtx := scheduler.Stop()

	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
	}

	log.Info("Scheduler stopped")

	return nil
}

func rebuild(ctx context.Context, deps *common.Deps, registry *sources.Registry, name, outDir string) error {
	profile, err := registry.Get(name)
	if err != nil {
		return err
	}

	cfg := profile.CrawlConfig()

	deps.Logger.Info("Scheduled crawl starting", "profile", name)

	source, err := crawler.New(*cfg, crawler.WithLogger(deps.Logger)).Crawl(ctx)
	if err != nil {
		return err
	}

	out := filepath.Join(outDir, name+".md")
	if err := os.WriteFile(out, []byte(source.Content), 0o644); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}

	deps.Logger.Info("Scheduled crawl finished",
		"profile", name,
		"pages", source.FileCount,
		"tokens", source.TotalTokens,
		"output", out,
	)

	return nil
}
