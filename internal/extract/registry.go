// Package extract maps response content types to specialized extractors and
// exposes a uniform result regardless of source type. Dispatch is an ordered
// strategy table keyed by normalized MIME type with a plain-text fallback.
package extract

import (
	"strings"
)

// Result is the uniform output of every extractor.
type Result struct {
	// Text is the extracted, readable text.
	Text string
	// Title is a best-effort document title; may be empty.
	Title string
	// Links are absolute outbound URLs, deduplicated, in document order.
	// Only the HTML extractor populates this.
	Links []string
	// Metadata carries extractor-specific detail (page counts, JSON shape).
	Metadata map[string]any
}

// Extractor converts raw fetched bytes into a Result.
type Extractor interface {
	// ContentTypes lists the MIME fragments this extractor handles. A
	// normalized response content type matches if it contains any fragment.
	ContentTypes() []string
	// Extract produces a Result from raw bytes. srcURL is the fetched URL,
	// used for link resolution and title fallbacks.
	Extract(data []byte, srcURL string) (*Result, error)
}

// Registry resolves an extractor for a response's declared content type.
type Registry struct {
	extractors []Extractor
	fallback   Extractor
}

// NewRegistry creates the standard four-extractor registry: HTML, PDF, and
// JSON in match order, with plain-text passthrough as the fallback.
func NewRegistry() *Registry {
	return &Registry{
		extractors: []Extractor{
			NewHTMLExtractor(),
			NewPDFExtractor(),
			NewJSONExtractor(),
			NewTextExtractor(),
		},
		fallback: NewTextExtractor(),
	}
}

// Resolve returns the extractor for the given declared content type. The
// type is normalized (parameters stripped, lowercased) and matched by
// case-insensitive substring against each extractor's declared fragments.
// Unrecognized types resolve to the fallback.
func (r *Registry) Resolve(contentType string) Extractor {
	normalized := NormalizeContentType(contentType)

	for _, e := range r.extractors {
		for _, fragment := range e.ContentTypes() {
			if strings.Contains(normalized, fragment) {
				return e
			}
		}
	}

	return r.fallback
}

// NormalizeContentType strips parameters (";charset=..." and the rest) and
// lowercases the media type.
func NormalizeContentType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}

	return strings.ToLower(strings.TrimSpace(contentType))
}

// titleFromURL derives a title from the last non-empty path segment of a URL.
func titleFromURL(srcURL string) string {
	trimmed := strings.TrimRight(srcURL, "/")

	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 && idx < len(trimmed)-1 {
		segment := trimmed[idx+1:]
		if !strings.Contains(segment, ":") {
			return segment
		}
	}

	return trimmed
}
