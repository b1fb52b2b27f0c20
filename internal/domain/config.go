package domain

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Crawl defaults applied by NewCrawlConfig. Callers override per invocation.
const (
	DefaultTargetTokens     = 100000
	DefaultMinTokensPerPage = 500
	DefaultMaxPages         = 50
	DefaultDelay            = 100 * time.Millisecond
	// DefaultMaxSubrequests bounds total network calls for deployments with a
	// platform-imposed request-count ceiling.
	DefaultMaxSubrequests = 40
)

var (
	// ErrNoSeedURLs is returned when a crawl is started without seed URLs.
	ErrNoSeedURLs = errors.New("crawl config: at least one seed URL is required")
)

// CrawlConfig is the immutable per-invocation crawl configuration.
// Callers resolve all defaults before invoking the crawler.
type CrawlConfig struct {
	// SeedURLs are the initial URLs to crawl.
	SeedURLs []string `json:"seed_urls" mapstructure:"seed_urls"`
	// TargetTokens is the soft stop: the crawl stops accepting new pages once
	// accumulated tokens reach this value. Zero disables the target.
	TargetTokens int `json:"target_tokens" mapstructure:"target_tokens"`
	// MinTokensPerPage discards fetched pages whose extracted text estimates
	// below this value. Discarded pages do not contribute links.
	MinTokensPerPage int `json:"min_tokens_per_page" mapstructure:"min_tokens_per_page"`
	// MaxPages is the hard cap on accepted pages. Zero disables the cap.
	MaxPages int `json:"max_pages" mapstructure:"max_pages"`
	// SameDomainOnly restricts link-following to the origin of the page that
	// discovered the link.
	SameDomainOnly bool `json:"same_domain_only" mapstructure:"same_domain_only"`
	// Delay is the inter-request politeness delay.
	Delay time.Duration `json:"delay" mapstructure:"delay"`
	// RespectRobotsTxt enables robots.txt compliance checks.
	RespectRobotsTxt bool `json:"respect_robots_txt" mapstructure:"respect_robots_txt"`
	// MaxSubrequests is the hard cap on total page fetch attempts, distinct
	// from MaxPages because errored fetches also count. Zero disables the cap.
	MaxSubrequests int `json:"max_subrequests" mapstructure:"max_subrequests"`
}

// NewCrawlConfig returns a CrawlConfig with the observed defaults applied.
func NewCrawlConfig(seeds ...string) CrawlConfig {
	return CrawlConfig{
		SeedURLs:         seeds,
		TargetTokens:     DefaultTargetTokens,
		MinTokensPerPage: DefaultMinTokensPerPage,
		MaxPages:         DefaultMaxPages,
		SameDomainOnly:   true,
		Delay:            DefaultDelay,
		RespectRobotsTxt: true,
		MaxSubrequests:   DefaultMaxSubrequests,
	}
}

// Validate checks the configuration before any I/O. A failed validation is
// fatal to the call and never retried.
func (c CrawlConfig) Validate() error {
	if len(c.SeedURLs) == 0 {
		return ErrNoSeedURLs
	}

	for _, seed := range c.SeedURLs {
		parsed, err := url.Parse(seed)
		if err != nil {
			return fmt.Errorf("crawl config: malformed seed URL %q: %w", seed, err)
		}

		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("crawl config: seed URL %q must be http or https", seed)
		}

		if parsed.Host == "" {
			return fmt.Errorf("crawl config: seed URL %q has no host", seed)
		}
	}

	return nil
}
