package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"
)

// minReadableLength is the threshold below which the readability result is
// considered too thin and the simpler strip-based strategy takes over.
const minReadableLength = 100

// linkSkipPrefixes are href values that never lead to fetchable documents.
var linkSkipPrefixes = []string{"#", "mailto:", "javascript:", "tel:"}

// boilerplateSelectors are elements removed by the fallback strategy before
// collecting body text.
const boilerplateSelectors = "script, style, nav, header, footer, aside, form, noscript, " +
	".sidebar, .menu, .navigation, .breadcrumb, .advertisement, .ads, .cookie-banner, .social-share"

// HTMLExtractor extracts readable article text and outbound links from HTML.
// The primary strategy is trafilatura's main-content heuristic; when that
// yields too little text it falls back to stripping boilerplate elements and
// returning the remaining body text.
type HTMLExtractor struct{}

// NewHTMLExtractor creates an HTMLExtractor.
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// ContentTypes implements Extractor.
func (e *HTMLExtractor) ContentTypes() []string {
	return []string{"text/html", "application/xhtml"}
}

// Extract implements Extractor.
func (e *HTMLExtractor) Extract(data []byte, srcURL string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, _ := url.Parse(srcURL)

	result := &Result{
		Title:    pageTitle(doc),
		Links:    extractLinks(doc, base),
		Metadata: map[string]any{"strategy": "readability"},
	}

	text, title := readableText(data, srcURL)
	if len(text) < minReadableLength {
		text = strippedBodyText(doc)
		result.Metadata["strategy"] = "strip"
	}

	if title != "" {
		result.Title = title
	}

	if result.Title == "" {
		result.Title = titleFromURL(srcURL)
	}

	result.Text = text

	return result, nil
}

// readableText runs the readability-style main-content extraction and returns
// the article text and detected title. An empty text means the strategy
// failed or found nothing.
func readableText(data []byte, srcURL string) (text, title string) {
	opts := trafilatura.Options{}
	if parsed, err := url.Parse(srcURL); err == nil {
		opts.OriginalURL = parsed
	}

	extracted, err := trafilatura.Extract(bytes.NewReader(data), opts)
	if err != nil || extracted == nil {
		return "", ""
	}

	return strings.TrimSpace(extracted.ContentText), extracted.Metadata.Title
}

// strippedBodyText removes boilerplate elements and returns the remaining
// body text with collapsed whitespace.
func strippedBodyText(doc *goquery.Document) string {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return collapseWhitespace(doc.Text())
	}

	body.Find(boilerplateSelectors).Remove()

	return collapseWhitespace(body.Text())
}

// pageTitle extracts the page title, preferring <title> then og:title.
func pageTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}

	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		return strings.TrimSpace(ogTitle)
	}

	return ""
}

// extractLinks collects all <a href> targets, skipping anchors and
// non-document schemes, resolved to absolute URLs and deduplicated in
// document order.
func extractLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string

	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}

		href = strings.TrimSpace(href)
		if href == "" || hasSkipPrefix(href) {
			return
		}

		absolute := resolveLink(base, href)
		if absolute == "" {
			return
		}

		if _, dup := seen[absolute]; dup {
			return
		}

		seen[absolute] = struct{}{}
		links = append(links, absolute)
	})

	return links
}

// hasSkipPrefix reports whether an href is an anchor or non-document scheme.
func hasSkipPrefix(href string) bool {
	lower := strings.ToLower(href)

	for _, prefix := range linkSkipPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}

	return false
}

// resolveLink resolves href against the page URL and returns the absolute
// form, or empty when resolution is impossible.
func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if base == nil {
		if ref.IsAbs() {
			return ref.String()
		}

		return ""
	}

	return base.ResolveReference(ref).String()
}

// collapseWhitespace reduces runs of whitespace to single spaces while
// keeping line structure readable.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.Join(strings.Fields(line), " ")
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return strings.Join(out, "\n")
}
