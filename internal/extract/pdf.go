package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoTextContent is returned when a PDF yields no recoverable text, for
// example an image-only scan.
var ErrNoTextContent = errors.New("pdf: no text content recoverable")

// PDFExtractor extracts per-page text from PDF documents.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ContentTypes implements Extractor.
func (e *PDFExtractor) ContentTypes() []string {
	return []string{"application/pdf"}
}

// Extract implements Extractor. Page texts are concatenated in order; the
// page count is reported in metadata.
func (e *PDFExtractor) Extract(data []byte, srcURL string) (*Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	pageCount := reader.NumPage()

	var sb strings.Builder

	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, textErr := page.GetPlainText(nil)
		if textErr != nil {
			continue
		}

		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}

		sb.WriteString(trimmed)
		sb.WriteString("\n\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, ErrNoTextContent
	}

	return &Result{
		Text:     text,
		Title:    titleFromURL(srcURL),
		Metadata: map[string]any{"page_count": pageCount},
	}, nil
}
