package loader

import (
	"context"

	"github.com/contextkit/corpora/internal/domain"
)

// StringLoader wraps an in-memory string as a LoadedSource.
type StringLoader struct {
	name string
	text string
}

// NewStringLoader creates a StringLoader with the given logical name.
func NewStringLoader(name, text string) *StringLoader {
	return &StringLoader{name: name, text: text}
}

// Label implements Loader.
func (l *StringLoader) Label() string {
	return l.name
}

// Load implements Loader.
func (l *StringLoader) Load(_ context.Context) (*domain.LoadedSource, error) {
	tokens := domain.EstimateTokens(l.text)

	return &domain.LoadedSource{
		Content:     l.text,
		TotalTokens: tokens,
		FileCount:   1,
		Items: []domain.FileInfo{{
			Path:          l.name,
			Content:       l.text,
			Size:          len(l.text),
			TokenEstimate: tokens,
			MimeType:      "text/plain",
		}},
		Metadata: domain.NewMetadata("string:" + l.name),
	}, nil
}
