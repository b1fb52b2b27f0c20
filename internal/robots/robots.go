// Package robots provides robots.txt compliance checking with a per-origin
// cache. The cache lives for one crawl: it is created with the checker and
// never shared across crawl invocations, which avoids cross-crawl staleness.
package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsTxtPath is the well-known path for robots.txt files.
const robotsTxtPath = "/robots.txt"

// maxBodyBytes limits the size of robots.txt responses we will read.
const maxBodyBytes = 512 * 1024 // 512 KB

// Checker fetches, parses, and caches robots.txt per origin and answers
// allow/deny queries for candidate URLs.
type Checker struct {
	httpClient *http.Client
	userAgent  string
	cache      map[string]*cacheEntry // keyed by scheme://host
	mu         sync.RWMutex
}

// cacheEntry stores the parsed robots.txt data for one origin.
type cacheEntry struct {
	data     *robotstxt.RobotsData
	allowAll bool // robots.txt missing, errored, or unparseable (fail-open)
}

// NewChecker creates a Checker. The client's timeout should be short (the
// crawler uses 5s); robots fetches must not stall the crawl loop.
func NewChecker(httpClient *http.Client, userAgent string) *Checker {
	return &Checker{
		httpClient: httpClient,
		userAgent:  userAgent,
		cache:      make(map[string]*cacheEntry),
	}
}

// IsAllowed reports whether the URL may be fetched under its origin's
// robots.txt. The ruleset is loaded lazily on the first URL from an origin
// and reused for the rest of the crawl. Any load failure results in
// allow-all for that origin.
func (c *Checker) IsAllowed(ctx context.Context, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("robots: parse url: %w", err)
	}

	if parsed.Host == "" {
		return false, fmt.Errorf("robots: empty host in url %q", rawURL)
	}

	origin := strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host)

	entry := c.getOrLoad(ctx, origin)
	if entry.allowAll {
		return true, nil
	}

	return entry.data.TestAgent(parsed.Path, c.userAgent), nil
}

// getOrLoad returns the cached entry for an origin, loading it on first use.
func (c *Checker) getOrLoad(ctx context.Context, origin string) *cacheEntry {
	c.mu.RLock()
	entry, ok := c.cache[origin]
	c.mu.RUnlock()

	if ok {
		return entry
	}

	entry = c.load(ctx, origin)

	c.mu.Lock()
	c.cache[origin] = entry
	c.mu.Unlock()

	return entry
}

// load fetches and parses robots.txt for an origin. Every failure mode
// (network error, non-2xx, unparseable body) degrades to allow-all.
func (c *Checker) load(ctx context.Context, origin string) *cacheEntry {
	body, statusCode, err := c.fetch(ctx, origin+robotsTxtPath)
	if err != nil {
		return &cacheEntry{allowAll: true}
	}

	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return &cacheEntry{allowAll: true}
	}

	data, parseErr := robotstxt.FromBytes(body)
	if parseErr != nil {
		return &cacheEntry{allowAll: true}
	}

	return &cacheEntry{data: data}
}

// fetch performs the HTTP GET request for a robots.txt URL.
func (c *Checker) fetch(ctx context.Context, robotsURL string) (body []byte, statusCode int, err error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, http.NoBody)
	if reqErr != nil {
		return nil, 0, fmt.Errorf("robots: create request: %w", reqErr)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, 0, fmt.Errorf("robots: fetch: %w", doErr)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, maxBodyBytes)

	body, readErr := io.ReadAll(limited)
	if readErr != nil {
		return nil, resp.StatusCode, fmt.Errorf("robots: read body: %w", readErr)
	}

	return body, resp.StatusCode, nil
}
