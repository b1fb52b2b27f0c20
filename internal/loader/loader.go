// Package loader provides the non-crawling source loaders the corpus
// assembler combines: single files, directory snapshots, and in-memory
// strings. Every loader produces the same LoadedSource contract the crawler
// does.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/contextkit/corpora/internal/domain"
)

// Loader loads one source into a LoadedSource.
type Loader interface {
	// Load produces the source's content. Implementations return quickly on
	// context cancellation.
	Load(ctx context.Context) (*domain.LoadedSource, error)
	// Label is the human-readable section label for assembly.
	Label() string
}

// codeExtensions mark files whose token estimates use the denser source-code
// divisor.
var codeExtensions = map[string]struct{}{
	".go": {}, ".py": {}, ".js": {}, ".ts": {}, ".jsx": {}, ".tsx": {},
	".java": {}, ".c": {}, ".h": {}, ".cpp": {}, ".hpp": {}, ".cs": {},
	".rb": {}, ".rs": {}, ".php": {}, ".swift": {}, ".kt": {}, ".scala": {},
	".sh": {}, ".sql": {}, ".proto": {}, ".tf": {},
}

// contentTypeByExtension maps file extensions to the declared content type
// used for registry dispatch.
var contentTypeByExtension = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".json": "application/json",
	".pdf":  "application/pdf",
	".md":   "text/markdown",
	".txt":  "text/plain",
}

// isCodeFile reports whether a path looks like source code.
func isCodeFile(path string) bool {
	_, ok := codeExtensions[strings.ToLower(filepath.Ext(path))]

	return ok
}

// contentTypeFor returns the declared content type for a file path,
// defaulting to text/plain.
func contentTypeFor(path string) string {
	if ct, ok := contentTypeByExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}

	return "text/plain"
}

// estimateFileTokens picks the divisor by file kind.
func estimateFileTokens(path, text string) int {
	if isCodeFile(path) {
		return domain.EstimateCodeTokens(text)
	}

	return domain.EstimateTokens(text)
}

// LoadAll runs the given loaders concurrently and returns their results in
// input order. The first failure cancels the rest.
func LoadAll(ctx context.Context, loaders []Loader) ([]*domain.LoadedSource, error) {
	results := make([]*domain.LoadedSource, len(loaders))

	group, groupCtx := errgroup.WithContext(ctx)

	for i, l := range loaders {
		group.Go(func() error {
			loaded, err := l.Load(groupCtx)
			if err != nil {
				return fmt.Errorf("load %s: %w", l.Label(), err)
			}

			results[i] = loaded

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
