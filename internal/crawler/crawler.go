// Package crawler implements the token-targeted crawl loop: a priority-queue
// driven traversal with multi-dimensional stopping conditions, per-page error
// isolation, and politeness rate limiting. One Crawler serves one invocation;
// concurrent crawls are independent Crawler values with no shared state.
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/contextkit/corpora/internal/domain"
	"github.com/contextkit/corpora/internal/extract"
	"github.com/contextkit/corpora/internal/fetch"
	"github.com/contextkit/corpora/internal/logger"
	"github.com/contextkit/corpora/internal/robots"
	"github.com/contextkit/corpora/internal/scoring"
	"github.com/contextkit/corpora/internal/urlutil"
)

// seedScore is the priority assigned to every seed URL.
const seedScore = 100

// minLinkScore is the cutoff below which discovered links are not queued.
const minLinkScore = 20

// robotsTimeout bounds one robots.txt fetch. Robots fetches have their own
// budget-independent timeout; they never count as subrequests.
const robotsTimeout = 5 * time.Second

// robotsBlockedReason tags error entries for robots-disallowed URLs.
const robotsBlockedReason = "Blocked by robots.txt"

// RobotsChecker answers allow/deny queries for candidate URLs.
type RobotsChecker interface {
	IsAllowed(ctx context.Context, rawURL string) (bool, error)
}

// Crawler runs one token-budgeted crawl.
type Crawler struct {
	cfg      domain.CrawlConfig
	fetcher  *fetch.Client
	registry *extract.Registry
	robots   RobotsChecker
	log      logger.Interface
}

// Option customizes a Crawler.
type Option func(*Crawler)

// WithFetchClient replaces the default 30s-timeout fetch client.
func WithFetchClient(client *fetch.Client) Option {
	return func(c *Crawler) { c.fetcher = client }
}

// WithRegistry replaces the default extraction registry.
func WithRegistry(registry *extract.Registry) Option {
	return func(c *Crawler) { c.registry = registry }
}

// WithRobotsChecker replaces the default robots checker.
func WithRobotsChecker(checker RobotsChecker) Option {
	return func(c *Crawler) { c.robots = checker }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log logger.Interface) Option {
	return func(c *Crawler) { c.log = log }
}

// New creates a Crawler for one invocation of the given configuration.
// The robots cache is owned by this Crawler and dies with it.
func New(cfg domain.CrawlConfig, opts ...Option) *Crawler {
	c := &Crawler{
		cfg:      cfg,
		fetcher:  fetch.NewClient(fetch.DefaultTimeout, ""),
		registry: extract.NewRegistry(),
		log:      logger.NewNoop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.robots == nil {
		c.robots = robots.NewChecker(&http.Client{Timeout: robotsTimeout}, c.fetcher.UserAgent())
	}

	return c
}

// crawlState accumulates everything one crawl produces.
type crawlState struct {
	queue       *urlQueue
	visited     map[string]struct{}
	items       []domain.FileInfo
	content     strings.Builder
	errs        []domain.CrawlError
	totalTokens int
	pagesLoaded int
	subrequests int
}

// Crawl runs the loop to completion and assembles the result. The only
// errors returned are configuration errors raised before any I/O; per-page
// failures are isolated into the result's error list.
func (c *Crawler) Crawl(ctx context.Context) (*domain.LoadedSource, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	state := &crawlState{
		queue:   newURLQueue(),
		visited: make(map[string]struct{}),
	}

	for _, seed := range c.cfg.SeedURLs {
		state.queue.Push(domain.PrioritizedURL{
			URL:   urlutil.Normalize(seed),
			Score: seedScore,
		})
	}

	var limiter *rate.Limiter
	if c.cfg.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(c.cfg.Delay), 1)
	}

	c.log.Info("crawl starting",
		"seeds", len(c.cfg.SeedURLs),
		"target_tokens", c.cfg.TargetTokens,
		"max_pages", c.cfg.MaxPages,
		"max_subrequests", c.cfg.MaxSubrequests,
	)

	for c.withinBudgets(state) && state.queue.Len() > 0 {
		entry, ok := state.queue.Pop()
		if !ok {
			break
		}

		if _, seen := state.visited[entry.URL]; seen {
			continue
		}

		// Mark visited before any I/O to prevent re-enqueue within this pass.
		state.visited[entry.URL] = struct{}{}

		if c.cfg.RespectRobotsTxt && !c.robotsAllowed(ctx, state, entry.URL) {
			continue
		}

		if limiter != nil {
			if waitErr := limiter.Wait(ctx); waitErr != nil {
				break
			}
		}

		c.processURL(ctx, state, entry)
	}

	return c.assemble(state), nil
}

// withinBudgets reports whether all configured budgets still have headroom.
func (c *Crawler) withinBudgets(state *crawlState) bool {
	if c.cfg.TargetTokens > 0 && state.totalTokens >= c.cfg.TargetTokens {
		return false
	}

	if c.cfg.MaxPages > 0 && state.pagesLoaded >= c.cfg.MaxPages {
		return false
	}

	if c.cfg.MaxSubrequests > 0 && state.subrequests >= c.cfg.MaxSubrequests {
		return false
	}

	return true
}

// robotsAllowed checks compliance for one URL, recording a blocked entry on
// denial. Checker failures fail open: the URL is treated as allowed.
func (c *Crawler) robotsAllowed(ctx context.Context, state *crawlState, rawURL string) bool {
	allowed, err := c.robots.IsAllowed(ctx, rawURL)
	if err != nil {
		c.log.Debug("robots check failed, allowing", "url", rawURL, "error", err)
		return true
	}

	if !allowed {
		c.recordError(state, rawURL, robotsBlockedReason)
		return false
	}

	return true
}

// processURL fetches, extracts, and either accepts or discards one URL.
// Every failure mode records an error entry and returns; nothing here aborts
// the crawl.
func (c *Crawler) processURL(ctx context.Context, state *crawlState, entry domain.PrioritizedURL) {
	// The fetch attempt counts against the subrequest budget whether or not
	// it succeeds; robots checks above do not.
	state.subrequests++

	resp, err := c.fetcher.Get(ctx, entry.URL)
	if err != nil {
		c.recordError(state, entry.URL, err.Error())
		return
	}

	if !resp.OK() {
		c.recordError(state, entry.URL, fmt.Sprintf("http status %d", resp.StatusCode))
		return
	}

	extractor := c.registry.Resolve(resp.ContentType)

	result, err := extractor.Extract(resp.Body, entry.URL)
	if err != nil {
		c.recordError(state, entry.URL, fmt.Sprintf("extraction failed: %v", err))
		return
	}

	tokens := domain.EstimateTokens(result.Text)
	if tokens < c.cfg.MinTokensPerPage {
		// Discarded pages contribute neither content nor links.
		c.log.Debug("page below minimum tokens, discarded",
			"url", entry.URL,
			"tokens", tokens,
			"min", c.cfg.MinTokensPerPage,
		)

		return
	}

	c.acceptPage(state, entry, resp, result, tokens)
	c.enqueueLinks(state, entry, result.Links)
}

// acceptPage appends an accepted page to the accumulated corpus.
func (c *Crawler) acceptPage(
	state *crawlState,
	entry domain.PrioritizedURL,
	resp *fetch.Response,
	result *extract.Result,
	tokens int,
) {
	title := result.Title
	if title == "" {
		title = entry.URL
	}

	state.content.WriteString("# " + title + "\n")
	state.content.WriteString("Source: " + entry.URL + "\n\n")
	state.content.WriteString(result.Text)
	state.content.WriteString("\n\n---\n\n")

	state.items = append(state.items, domain.FileInfo{
		Path:          entry.URL,
		Content:       result.Text,
		Size:          len(resp.Body),
		TokenEstimate: tokens,
		MimeType:      extract.NormalizeContentType(resp.ContentType),
	})

	state.totalTokens += tokens
	state.pagesLoaded++

	c.log.Info("page accepted",
		"url", entry.URL,
		"tokens", tokens,
		"total_tokens", state.totalTokens,
		"depth", entry.Depth,
	)
}

// enqueueLinks filters, scores, and queues the outbound links of an accepted
// page.
func (c *Crawler) enqueueLinks(state *crawlState, parent domain.PrioritizedURL, links []string) {
	for _, link := range links {
		if urlutil.ShouldSkip(link) {
			continue
		}

		normalized := urlutil.Normalize(link)

		if _, seen := state.visited[normalized]; seen {
			continue
		}

		if state.queue.Has(normalized) {
			continue
		}

		if c.cfg.SameDomainOnly && !sameHost(normalized, parent.URL) {
			continue
		}

		score := scoring.Score(normalized, parent.URL)
		if score < minLinkScore {
			continue
		}

		state.queue.Push(domain.PrioritizedURL{
			URL:      normalized,
			Score:    score,
			Depth:    parent.Depth + 1,
			Referrer: parent.URL,
		})
	}
}

// recordError appends a structured per-page error entry.
func (c *Crawler) recordError(state *crawlState, rawURL, reason string) {
	state.errs = append(state.errs, domain.CrawlError{URL: rawURL, Reason: reason})
	c.log.Warn("page failed", "url", rawURL, "reason", reason)
}

// assemble builds the final LoadedSource from accumulated state.
func (c *Crawler) assemble(state *crawlState) *domain.LoadedSource {
	metadata := domain.NewMetadata("crawl:" + strings.Join(c.cfg.SeedURLs, ","))
	metadata[domain.MetaPagesLoaded] = state.pagesLoaded
	metadata[domain.MetaPagesSkipped] = len(state.visited) - state.pagesLoaded
	metadata[domain.MetaPagesQueued] = state.queue.Len()
	metadata[domain.MetaErrors] = state.errs
	metadata[domain.MetaTargetTokens] = c.cfg.TargetTokens
	metadata[domain.MetaStoppedBySubreqCap] = c.stoppedBySubrequests(state)

	return &domain.LoadedSource{
		Content:     state.content.String(),
		TotalTokens: state.totalTokens,
		FileCount:   state.pagesLoaded,
		Items:       state.items,
		Metadata:    metadata,
	}
}

// stoppedBySubrequests reports whether the subrequest cap, rather than the
// token target or page cap, is what ended the crawl. Callers use this to
// distinguish "got what we needed" from "truncated for infrastructure
// reasons".
func (c *Crawler) stoppedBySubrequests(state *crawlState) bool {
	if c.cfg.MaxSubrequests <= 0 || state.subrequests < c.cfg.MaxSubrequests {
		return false
	}

	if c.cfg.TargetTokens > 0 && state.totalTokens >= c.cfg.TargetTokens {
		return false
	}

	if c.cfg.MaxPages > 0 && state.pagesLoaded >= c.cfg.MaxPages {
		return false
	}

	return true
}

// sameHost reports whether two URLs share a hostname.
func sameHost(a, b string) bool {
	parsedA, errA := url.Parse(a)
	parsedB, errB := url.Parse(b)

	if errA != nil || errB != nil {
		return false
	}

	return strings.EqualFold(parsedA.Hostname(), parsedB.Hostname())
}
