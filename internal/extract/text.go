package extract

// TextExtractor is the passthrough extractor and the registry fallback for
// unrecognized content types.
type TextExtractor struct{}

// NewTextExtractor creates a TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// ContentTypes implements Extractor. "text/" matches every remaining textual
// subtype (plain, markdown, csv, and so on).
func (e *TextExtractor) ContentTypes() []string {
	return []string{"text/plain", "text/"}
}

// Extract implements Extractor.
func (e *TextExtractor) Extract(data []byte, srcURL string) (*Result, error) {
	return &Result{
		Text:     string(data),
		Title:    titleFromURL(srcURL),
		Metadata: map[string]any{},
	}, nil
}
