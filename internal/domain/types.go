// Package domain provides the data model shared across loaders, the crawler,
// the corpus assembler, and the serving layers.
package domain

import "time"

// Metadata keys common to every LoadedSource.
const (
	MetaSource   = "source"
	MetaLoadedAt = "loaded_at"
)

// Metadata keys specific to crawl results.
const (
	MetaPagesLoaded        = "pages_loaded"
	MetaPagesSkipped       = "pages_skipped"
	MetaPagesQueued        = "pages_queued"
	MetaErrors             = "errors"
	MetaTargetTokens       = "target_tokens"
	MetaStoppedBySubreqCap = "stopped_by_subrequest_limit"
)

// FileInfo describes one fetched or loaded unit contributing to a LoadedSource.
type FileInfo struct {
	// Path is the URL or logical name of the unit.
	Path string `json:"path"`
	// Content is the extracted text.
	Content string `json:"content"`
	// Size is the byte length of the raw content before extraction.
	Size int `json:"size"`
	// TokenEstimate approximates the inference-service token count.
	TokenEstimate int `json:"token_estimate"`
	// MimeType is the normalized content type, when known.
	MimeType string `json:"mime_type,omitempty"`
}

// LoadedSource is the output contract of every loader, including the crawler.
type LoadedSource struct {
	// Content is the final assembled text, ready for downstream consumption.
	Content string `json:"content"`
	// TotalTokens is the sum of per-item token estimates.
	TotalTokens int `json:"total_tokens"`
	// FileCount is the number of items contributing to Content.
	FileCount int `json:"file_count"`
	// Items records each contributing unit in acceptance order.
	Items []FileInfo `json:"items"`
	// Metadata carries at minimum MetaSource and MetaLoadedAt; crawl results
	// additionally carry page counts, the error list, and budget flags.
	Metadata map[string]any `json:"metadata"`
}

// NewMetadata builds a metadata map with the common keys populated.
func NewMetadata(source string) map[string]any {
	return map[string]any{
		MetaSource:   source,
		MetaLoadedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// PrioritizedURL is a crawl-internal queue entry. It lives only inside the
// crawl's priority queue and is never persisted.
type PrioritizedURL struct {
	// URL is the normalized candidate URL.
	URL string `json:"url"`
	// Score is the link priority in [0,100].
	Score int `json:"score"`
	// Depth is the hop count from the seed.
	Depth int `json:"depth"`
	// Referrer is the URL that discovered this one.
	Referrer string `json:"referrer,omitempty"`
}

// CrawlError records one isolated per-page failure. Failures never abort the
// crawl; they accumulate in the result metadata.
type CrawlError struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}
