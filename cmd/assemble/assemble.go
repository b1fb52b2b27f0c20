// Package assemble implements the assemble subcommand: combine existing
// corpus files and optionally register the result with the cache service.
package assemble

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/contextkit/corpora/cmd/common"
	"github.com/contextkit/corpora/internal/cachesvc"
	"github.com/contextkit/corpora/internal/corpus"
	"github.com/contextkit/corpora/internal/domain"
	"github.com/contextkit/corpora/internal/storage"
)

type options struct {
	output            string
	maxTokens         int
	register          bool
	alias             string
	ttl               time.Duration
	systemInstruction string
}

// Command builds the assemble subcommand.
func Command(deps *common.Deps) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "assemble <corpus-file ...>",
		Short: "Combine corpus files and optionally register a cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, deps, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the combined corpus to this file instead of stdout")
	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", 0, "fail when the combined corpus exceeds this many tokens (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.register, "register", false, "register the combined corpus with the cache service")
	cmd.Flags().StringVar(&opts.alias, "alias", "", "alias for the registered cache")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 0, "TTL for the registered cache (0 = service default)")
	cmd.Flags().StringVar(&opts.systemInstruction, "system-instruction", "", "instruction stored alongside the cache")

	return cmd
}

func run(cmd *cobra.Command, args []string, deps *common.Deps, opts *options) error {
	if opts.register && opts.alias == "" {
		return errors.New("--register requires --alias")
	}

	sources := make([]*domain.LoadedSource, 0, len(args))
	labels := make([]string, 0, len(args))

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %q: %w", path, err)
		}

		text := string(data)
		sources = append(sources, &domain.LoadedSource{
			Content:     text,
			TotalTokens: domain.EstimateTokens(text),
			FileCount:   1,
			Metadata:    domain.NewMetadata(path),
		})
		labels = append(labels, labelFor(path))
	}

	combined, err := corpus.Combine(sources, labels, opts.maxTokens)
	if err != nil {
		return err
	}

	deps.Logger.Info("Assemble finished", "sources", len(sources), "tokens", combined.TotalTokens)

	if opts.register {
		if err := registerCache(cmd, deps, opts, combined); err != nil {
			return err
		}
	}

	if opts.output == "" {
		fmt.Println(combined.Content)
		return nil
	}

	if err := os.WriteFile(opts.output, []byte(combined.Content), 0o644); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}

	return nil
}

func registerCache(cmd *cobra.Command, deps *common.Deps, opts *options, combined *domain.LoadedSource) error {
	baseURL := deps.Config.CacheService.BaseURL
	if baseURL == "" {
		return errors.New("cache service is not configured (set cache_service.base_url)")
	}

	client := cachesvc.New(baseURL, deps.Config.CacheService.APIKey)

	handle, err := client.Create(cmd.Context(), combined.Content, opts.alias, cachesvc.Options{
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

	record := &storage.CacheRecord{
		Alias:             opts.alias,
		CacheID:           handle.ID,
		TokenCount:        handle.TokenCount,
		Source:            strings.Join(cmd.Flags().Args(), ", "),
		SystemInstruction: opts.systemInstruction,
		TTLSeconds:        int(opts.ttl.Seconds()),
	}

	if err := store.Save(cmd.Context(), record); err != nil {
		return err
	}

	deps.Logger.Info("Cache registered", "alias", opts.alias, "cache_id", handle.ID, "tokens", handle.TokenCount)

	return nil
}

func labelFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
