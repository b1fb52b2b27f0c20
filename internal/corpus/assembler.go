// Package corpus combines already-loaded sources into one annotated text
// corpus with a generated header and per-section demarcation, under an
// optional maximum-token ceiling.
package corpus

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/contextkit/corpora/internal/domain"
)

// ErrLabelMismatch is returned when the label list does not pair with the
// source list.
var ErrLabelMismatch = errors.New("corpus: labels must pair one-to-one with sources")

// ErrNoSources is returned when Combine is called with nothing to combine.
var ErrNoSources = errors.New("corpus: at least one source is required")

// Combine concatenates the given sources into a single LoadedSource.
// Token total and file count are the arithmetic sums of the inputs. When
// maxTokens is positive and the combined total exceeds it, a
// *domain.TokenLimitError is returned — an explicit out-of-budget condition,
// never a silent truncation.
func Combine(sources []*domain.LoadedSource, labels []string, maxTokens int) (*domain.LoadedSource, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	if len(labels) != len(sources) {
		return nil, ErrLabelMismatch
	}

	totalTokens := 0
	fileCount := 0

	for _, src := range sources {
		totalTokens += src.TotalTokens
		fileCount += src.FileCount
	}

	if maxTokens > 0 && totalTokens > maxTokens {
		return nil, &domain.TokenLimitError{Requested: totalTokens, Limit: maxTokens}
	}

	var sb strings.Builder

	writeHeader(&sb, labels, fileCount)

	items := make([]domain.FileInfo, 0, fileCount)

	for i, src := range sources {
		sb.WriteString("\n\n# " + labels[i] + "\n\n")
		sb.WriteString(src.Content)

		items = append(items, src.Items...)
	}

	metadata := domain.NewMetadata("assembled:" + strings.Join(labels, ","))
	metadata["source_labels"] = labels

	return &domain.LoadedSource{
		Content:     sb.String(),
		TotalTokens: totalTokens,
		FileCount:   fileCount,
		Items:       items,
		Metadata:    metadata,
	}, nil
}

// writeHeader writes the corpus preamble: source labels, file count, and
// generation timestamp.
func writeHeader(sb *strings.Builder, labels []string, fileCount int) {
	sb.WriteString("# Combined Corpus\n\n")
	sb.WriteString(fmt.Sprintf("Sources: %s\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("Files: %d\n", fileCount))
	sb.WriteString(fmt.Sprintf("Generated: %s\n", time.Now().UTC().Format(time.RFC3339)))
}
