// Package crawl implements the crawl subcommand: fetch a bounded corpus
// from seed URLs or a named profile.
package crawl

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/contextkit/corpora/cmd/common"
	"github.com/contextkit/corpora/internal/cachesvc"
	"github.com/contextkit/corpora/internal/crawler"
	"github.com/contextkit/corpora/internal/domain"
	"github.com/contextkit/corpora/internal/report"
	"github.com/contextkit/corpora/internal/sources"
	"github.com/contextkit/corpora/internal/storage"
)

type options struct {
	profile          string
	output           string
	reportPath       string
	targetTokens     int
	minTokensPerPage int
	maxPages         int
	maxSubrequests   int
	sameDomainOnly   bool
	respectRobots    bool
	delay            time.Duration

	register          bool
	alias             string
	ttl               time.Duration
	systemInstruction string
}

// Command builds the crawl subcommand.
func Command(deps *common.Deps) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "crawl [seed-url ...]",
		Short: "Crawl seed URLs into a single markdown corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, deps, opts)
		},
	}

	defaults := domain.NewCrawlConfig()

	cmd.Flags().StringVar(&opts.profile, "profile", "", "named crawl profile from the profiles file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the corpus to this file instead of stdout")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "write a markdown crawl report to this file")
	cmd.Flags().IntVar(&opts.targetTokens, "target-tokens", defaults.TargetTokens, "stop accepting pages once this many tokens accumulate")
	cmd.Flags().IntVar(&opts.minTokensPerPage, "min-tokens-per-page", defaults.MinTokensPerPage, "discard pages with fewer estimated tokens")
	cmd.Flags().IntVar(&opts.maxPages, "max-pages", defaults.MaxPages, "hard cap on accepted pages")
	cmd.Flags().IntVar(&opts.maxSubrequests, "max-subrequests", defaults.MaxSubrequests, "hard cap on page fetch attempts")
	cmd.Flags().BoolVar(&opts.sameDomainOnly, "same-domain-only", defaults.SameDomainOnly, "only follow links on the discovering page's domain")
	cmd.Flags().BoolVar(&opts.respectRobots, "respect-robots", defaults.RespectRobotsTxt, "honor robots.txt")
	cmd.Flags().DurationVar(&opts.delay, "delay", defaults.Delay, "politeness delay between requests")

	cmd.Flags().BoolVar(&opts.register, "register", false, "register the corpus with the cache service")
	cmd.Flags().StringVar(&opts.alias, "alias", "", "alias for the registered cache")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 0, "TTL for the registered cache (0 = service default)")
	cmd.Flags().StringVar(&opts.systemInstruction, "system-instruction", "", "instruction stored alongside the cache")

	return cmd
}

func run(cmd *cobra.Command, args []string, deps *common.Deps, opts *options) error {
	cfg, err := resolveConfig(cmd, args, deps, opts)
	if err != nil {
		return err
	}

	log := deps.Logger
	log.Info("Starting crawl", "seeds", cfg.SeedURLs, "target_tokens", cfg.TargetTokens)

	source, err := crawler.New(*cfg, crawler.WithLogger(log)).Crawl(cmd.Context())
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	log.Info("Crawl finished",
		"pages", source.FileCount,
		"tokens", source.TotalTokens,
		"errors", len(crawlErrors(source)),
	)

	if opts.reportPath != "" {
		if err := writeReport(opts.reportPath, source); err != nil {
			return err
		}
	}

	if opts.register {
		if err := registerCache(cmd, deps, opts, source); err != nil {
			return err
		}
	}

	return writeOutput(opts.output, source.Content)
}

func registerCache(cmd *cobra.Command, deps *common.Deps, opts *options, source *domain.LoadedSource) error {
	if opts.alias == "" {
		return errors.New("--register requires --alias")
	}

	baseURL := deps.Config.CacheService.BaseURL
	if baseURL == "" {
		return errors.New("cache service is not configured (set cache_service.base_url)")
	}

	client := cachesvc.New(baseURL, deps.Config.CacheService.APIKey)

	handle, err := client.Create(cmd.Context(), source.Content, opts.alias, cachesvc.Options{
		TTL:               opts.ttl,
		SystemInstruction: opts.systemInstruction,
	})
	if err != nil {
		return fmt.Errorf("register cache: %w", err)
	}

	store, err := deps.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	src, _ := source.Metadata[domain.MetaSource].(string)

	record := &storage.CacheRecord{
		Alias:             opts.alias,
		CacheID:           handle.ID,
		TokenCount:        handle.TokenCount,
		Source:            src,
		SystemInstruction: opts.systemInstruction,
		TTLSeconds:        int(opts.ttl.Seconds()),
	}

	if err := store.Save(cmd.Context(), record); err != nil {
		return err
	}

	deps.Logger.Info("Cache registered", "alias", opts.alias, "cache_id", handle.ID, "tokens", handle.TokenCount)

	return nil
}

// resolveConfig builds the crawl configuration from, in increasing
// precedence: defaults, the configured crawl section, a named profile, and
// explicit flags plus positional seeds.
func resolveConfig(cmd *cobra.Command, args []string, deps *common.Deps, opts *options) (*domain.CrawlConfig, error) {
	var cfg domain.CrawlConfig

	switch {
	case opts.profile != "":
		path := deps.Config.ProfilesPath
		if path == "" {
			return nil, errors.New("--profile requires a profiles file (set profiles_path)")
		}

		registry, err := sources.Load(path)
		if err != nil {
			return nil, err
		}

		profile, err := registry.Get(opts.profile)
		if err != nil {
			return nil, err
		}

		cfg = *profile.CrawlConfig()
		cfg.SeedURLs = append(cfg.SeedURLs, args...)
	default:
		cfg = deps.Config.Crawl
		cfg.SeedURLs = args
	}

	applyFlagOverrides(cmd, &cfg, opts)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyFlagOverrides copies in only the flags the user set explicitly so
// profile and config values survive unless overridden.
func applyFlagOverrides(cmd *cobra.Command, cfg *domain.CrawlConfig, opts *options) {
	if cmd.Flags().Changed("target-tokens") {
		cfg.TargetTokens = opts.targetTokens
	}

	if cmd.Flags().Changed("min-tokens-per-page") {
		cfg.MinTokensPerPage = opts.minTokensPerPage
	}

	if cmd.Flags().Changed("max-pages") {
		cfg.MaxPages = opts.maxPages
	}

	if cmd.Flags().Changed("max-subrequests") {
		cfg.MaxSubrequests = opts.maxSubrequests
	}

	if cmd.Flags().Changed("same-domain-only") {
		cfg.SameDomainOnly = opts.sameDomainOnly
	}

	if cmd.Flags().Changed("respect-robots") {
		cfg.RespectRobotsTxt = opts.respectRobots
	}

	if cmd.Flags().Changed("delay") {
		cfg.Delay = opts.delay
	}
}

func writeReport(path string, source *domain.LoadedSource) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := report.WriteMarkdown(f, source); err != nil {
		return err
	}

	return nil
}

func writeOutput(path, content string) error {
	if path == "" {
		fmt.Println(content)
		return nil
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}

	return nil
}

func crawlErrors(source *domain.LoadedSource) []domain.CrawlError {
	errs, _ := source.Metadata[domain.MetaErrors].([]domain.CrawlError)
	return errs
}
