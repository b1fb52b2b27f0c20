// Package scoring assigns priority scores to candidate links during a crawl.
// Scores are static per (candidate, source) edge: a base value adjusted by
// path heuristics, clamped to [0,100]. Higher scores are fetched first.
package scoring

import (
	"net/url"
	"path"
	"strings"
)

// Score bounds and the base every candidate starts from.
const (
	MinScore  = 0
	MaxScore  = 100
	baseScore = 50

	// parseFailureScore keeps unparseable candidates crawlable but
	// deprioritized.
	parseFailureScore = 10
)

// Adjustment values. The magnitudes are load-bearing: changing them changes
// traversal order.
const (
	sameOriginBonus    = 20
	sharedParentBonus  = 10
	docSignalBonus     = 15
	lowValuePenalty    = 30
	anchorPenalty      = 40
	longURLPenalty     = 10
	manyParamsPenalty  = 15
	shallowPathBonus   = 5
	binaryExtPenalty   = 50
	textualExtBonus    = 5
	longURLThreshold   = 200
	maxQueryParamCount = 3
	shallowPathDepth   = 3
)

// docSignalSegments are path fragments that suggest documentation-like
// content worth prioritizing.
var docSignalSegments = []string{
	"/docs", "/guide", "/reference", "/api", "/tutorial", "/learn",
	"/manual", "/handbook", "/help", "/faq", "/getting-started", "/quickstart",
}

// lowValueSegments are path fragments that suggest navigational or
// transactional pages with little corpus value.
var lowValueSegments = []string{
	"/login", "/signup", "/auth", "/admin", "/cart", "/checkout",
	"/account", "/settings", "/profile", "/search",
	"/tag/", "/category/", "/author/", "/page/",
}

// binaryExtensions end paths that point at archives, binaries, or media.
var binaryExtensions = []string{
	".zip", ".tar", ".gz", ".tgz", ".bz2", ".rar", ".7z",
	".exe", ".dmg", ".iso", ".bin", ".deb", ".rpm",
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico",
	".mp3", ".wav", ".mp4", ".avi", ".mov", ".webm", ".mkv",
	".woff", ".woff2", ".ttf", ".eot",
}

// textualExtensions end paths that point at plain documents.
var textualExtensions = []string{".html", ".htm", ".md", ".txt"}

// Score rates a candidate link discovered on sourceURL. The result is always
// within [MinScore, MaxScore]. Unparseable input scores parseFailureScore.
func Score(candidateURL, sourceURL string) int {
	candidate, err := url.Parse(candidateURL)
	if err != nil || candidate.Scheme == "" || candidate.Host == "" {
		return parseFailureScore
	}

	source, err := url.Parse(sourceURL)
	if err != nil {
		return parseFailureScore
	}

	score := baseScore
	lowerPath := strings.ToLower(candidate.Path)

	if sameOrigin(candidate, source) {
		score += sameOriginBonus
	}

	if sharesParentDir(candidate.Path, source.Path) {
		score += sharedParentBonus
	}

	if containsAny(lowerPath, docSignalSegments) {
		score += docSignalBonus
	}

	if containsAny(lowerPath, lowValueSegments) {
		score -= lowValuePenalty
	}

	if isSamePageAnchor(candidate, source) {
		score -= anchorPenalty
	}

	if len(candidateURL) > longURLThreshold {
		score -= longURLPenalty
	}

	if len(candidate.Query()) > maxQueryParamCount {
		score -= manyParamsPenalty
	}

	if pathDepth(candidate.Path) <= shallowPathDepth {
		score += shallowPathBonus
	}

	if hasAnySuffix(lowerPath, binaryExtensions) {
		score -= binaryExtPenalty
	}

	if hasAnySuffix(lowerPath, textualExtensions) {
		score += textualExtBonus
	}

	return clamp(score)
}

// sameOrigin reports whether candidate and source share scheme and host.
func sameOrigin(candidate, source *url.URL) bool {
	return strings.EqualFold(candidate.Scheme, source.Scheme) &&
		strings.EqualFold(candidate.Host, source.Host)
}

// sharesParentDir reports whether the candidate path sits under the source
// path's parent directory.
func sharesParentDir(candidatePath, sourcePath string) bool {
	parent := path.Dir(sourcePath)
	if parent == "/" || parent == "." || parent == "" {
		return false
	}

	return strings.HasPrefix(candidatePath, parent)
}

// isSamePageAnchor reports whether the candidate is an in-page anchor on the
// source: identical path with a fragment.
func isSamePageAnchor(candidate, source *url.URL) bool {
	return candidate.Fragment != "" &&
		candidate.Path == source.Path &&
		sameOrigin(candidate, source)
}

// pathDepth counts the non-empty segments of a path.
func pathDepth(p string) int {
	depth := 0

	for _, segment := range strings.Split(p, "/") {
		if segment != "" {
			depth++
		}
	}

	return depth
}

// containsAny reports whether s contains any of the given fragments.
func containsAny(s string, fragments []string) bool {
	for _, fragment := range fragments {
		if strings.Contains(s, fragment) {
			return true
		}
	}

	return false
}

// hasAnySuffix reports whether s ends with any of the given suffixes.
func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}

	return false
}

// clamp bounds a score to [MinScore, MaxScore].
func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}

	if score > MaxScore {
		return MaxScore
	}

	return score
}
