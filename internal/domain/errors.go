package domain

import "fmt"

// TokenLimitError reports that an assembled corpus exceeds the caller's
// maximum-token ceiling. Exceeding the ceiling is reported explicitly rather
// than silently truncated; callers decide whether to abort or accept partial
// content.
type TokenLimitError struct {
	// Requested is the token total of the assembled corpus.
	Requested int
	// Limit is the configured ceiling.
	Limit int
}

// Error implements the error interface.
func (e *TokenLimitError) Error() string {
	return fmt.Sprintf("corpus of %d tokens exceeds limit of %d tokens", e.Requested, e.Limit)
}

// CacheNotFoundError reports a lookup of a cache alias that does not exist.
type CacheNotFoundError struct {
	Alias string
}

// Error implements the error interface.
func (e *CacheNotFoundError) Error() string {
	return fmt.Sprintf("cache %q not found", e.Alias)
}
