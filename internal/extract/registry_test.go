package extract_test

import (
	"testing"

	"github.com/contextkit/corpora/internal/extract"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	registry := extract.NewRegistry()

	tests := []struct {
		name        string
		contentType string
		wantType    any
	}{
		{"html", "text/html", &extract.HTMLExtractor{}},
		{"html with charset", "text/html; charset=utf-8", &extract.HTMLExtractor{}},
		{"html uppercase", "TEXT/HTML", &extract.HTMLExtractor{}},
		{"xhtml", "application/xhtml+xml", &extract.HTMLExtractor{}},
		{"pdf", "application/pdf", &extract.PDFExtractor{}},
		{"json", "application/json", &extract.JSONExtractor{}},
		{"json api suffix", "application/hal+json", &extract.JSONExtractor{}},
		{"plain text", "text/plain", &extract.TextExtractor{}},
		{"markdown", "text/markdown", &extract.TextExtractor{}},
		{"unknown falls back", "application/octet-stream", &extract.TextExtractor{}},
		{"empty falls back", "", &extract.TextExtractor{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := registry.Resolve(tt.contentType)
			if gotType, wantType := typeName(got), typeName(tt.wantType); gotType != wantType {
				t.Errorf("Resolve(%q) = %s, want %s", tt.contentType, gotType, wantType)
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *extract.HTMLExtractor:
		return "html"
	case *extract.PDFExtractor:
		return "pdf"
	case *extract.JSONExtractor:
		return "json"
	case *extract.TextExtractor:
		return "text"
	default:
		return "unknown"
	}
}

func TestNormalizeContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"text/html; charset=utf-8", "text/html"},
		{"TEXT/HTML", "text/html"},
		{" application/json ", "application/json"},
		{"application/json;charset=UTF-8", "application/json"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := extract.NormalizeContentType(tt.input); got != tt.want {
			t.Errorf("NormalizeContentType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
