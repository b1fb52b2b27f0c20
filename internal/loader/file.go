package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/contextkit/corpora/internal/domain"
	"github.com/contextkit/corpora/internal/extract"
)

// FileLoader loads a single local file, dispatching extraction by file
// extension through the registry.
type FileLoader struct {
	path     string
	registry *extract.Registry
}

// NewFileLoader creates a FileLoader for the given path.
func NewFileLoader(path string, registry *extract.Registry) *FileLoader {
	if registry == nil {
		registry = extract.NewRegistry()
	}

	return &FileLoader{path: path, registry: registry}
}

// Label implements Loader.
func (l *FileLoader) Label() string {
	return filepath.Base(l.path)
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context) (*domain.LoadedSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	contentType := contentTypeFor(l.path)
	extractor := l.registry.Resolve(contentType)

	result, err := extractor.Extract(data, l.path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", l.path, err)
	}

	tokens := estimateFileTokens(l.path, result.Text)

	metadata := domain.NewMetadata("file:" + l.path)
	for key, value := range result.Metadata {
		metadata[key] = value
	}

	return &domain.LoadedSource{
		Content:     result.Text,
		TotalTokens: tokens,
		FileCount:   1,
		Items: []domain.FileInfo{{
			Path:          l.path,
			Content:       result.Text,
			Size:          len(data),
			TokenEstimate: tokens,
			MimeType:      contentType,
		}},
		Metadata: metadata,
	}, nil
}
