// Package urlutil provides URL normalization and pre-filtering for the
// crawler. URLs are normalized before queue insertion so that the same URL
// expressed differently deduplicates to one visit.
package urlutil

import (
	"net/url"
	"strings"
)

// trackingParams lists exact query parameter names stripped during
// normalization. Advertising and analytics trackers do not affect page
// content.
var trackingParams = map[string]struct{}{
	"ref":      {},
	"source":   {},
	"campaign": {},
	"fbclid":   {},
	"gclid":    {},
}

// trackingPrefix matches the utm_* family of tracking parameters.
const trackingPrefix = "utm_"

// staticAssetDirs are conventional path segments that never hold crawlable
// documents.
var staticAssetDirs = []string{
	"/static/",
	"/assets/",
	"/dist/",
	"/build/",
	"/_next/",
	"/node_modules/",
}

// Normalize applies deterministic transformations so that equivalent URLs
// produce identical strings: tracking parameters and fragments are removed,
// scheme and host are lowercased, and trailing slashes are stripped from
// non-file paths. Normalize is idempotent. Malformed input is returned
// unchanged rather than failing.
func Normalize(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return rawURL
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawQuery = cleanQuery(parsed.Query())
	parsed.Path = trimTrailingSlash(parsed.Path)

	return parsed.String()
}

// ShouldSkip reports whether a URL is obviously not worth fetching:
// non-http(s) schemes and paths under static-asset directories.
// Invalid URLs are treated as skippable.
func ShouldSkip(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return true
	}

	lowerPath := strings.ToLower(parsed.Path)
	for _, dir := range staticAssetDirs {
		if strings.Contains(lowerPath, dir) {
			return true
		}
	}

	return false
}

// cleanQuery strips tracking parameters and re-encodes the remainder.
// url.Values.Encode sorts keys, which keeps the result stable across calls.
func cleanQuery(values url.Values) string {
	for key := range values {
		if isTrackingParam(key) {
			delete(values, key)
		}
	}

	if len(values) == 0 {
		return ""
	}

	return values.Encode()
}

// isTrackingParam reports whether a query parameter carries tracking state.
func isTrackingParam(key string) bool {
	lower := strings.ToLower(key)
	if strings.HasPrefix(lower, trackingPrefix) {
		return true
	}

	_, tracking := trackingParams[lower]

	return tracking
}

// trimTrailingSlash removes a trailing slash from paths that do not look like
// files (no "." extension in the final segment). The root path is preserved.
func trimTrailingSlash(p string) string {
	if p == "" || p == "/" {
		return p
	}

	if !strings.HasSuffix(p, "/") {
		return p
	}

	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return "/"
	}

	lastSegment := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if strings.Contains(lastSegment, ".") {
		return p
	}

	return trimmed
}
