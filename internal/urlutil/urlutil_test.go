package urlutil_test

import (
	"testing"

	"github.com/contextkit/corpora/internal/urlutil"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		// Tracking parameter stripping
		{"strip utm_source keep others", "https://x.com/p?utm_source=a&id=1", "https://x.com/p?id=1"},
		{"strip all utm params", "https://x.com/p?utm_source=a&utm_medium=b&utm_campaign=c", "https://x.com/p"},
		{"strip ref and fbclid", "https://x.com/p?ref=home&fbclid=abc&q=go", "https://x.com/p?q=go"},
		{"strip gclid and campaign", "https://x.com/p?gclid=1&campaign=spring", "https://x.com/p"},

		// Fragment removal
		{"strip fragment", "https://x.com/docs#install", "https://x.com/docs"},
		{"strip fragment keep query", "https://x.com/docs?v=2#install", "https://x.com/docs?v=2"},

		// Trailing slash
		{"strip trailing slash", "https://x.com/docs/", "https://x.com/docs"},
		{"keep root slash", "https://x.com/", "https://x.com/"},
		{"keep file-looking trailing slash", "https://x.com/readme.txt/", "https://x.com/readme.txt/"},

		// Case
		{"lowercase scheme and host", "HTTPS://Example.COM/Docs", "https://example.com/Docs"},

		// Stable query ordering
		{"sort remaining params", "https://x.com/p?z=1&a=2", "https://x.com/p?a=2&z=1"},

		// Malformed input returned unchanged
		{"malformed url", "://not-a-url", "://not-a-url"},
		{"relative path", "/just/a/path", "/just/a/path"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := urlutil.Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://x.com/p?utm_source=a&id=1",
		"https://x.com/docs/",
		"https://x.com/docs#frag",
		"https://Example.com/Mixed/Case/",
		"https://x.com/p?z=1&a=2&utm_medium=m",
		"://not-a-url",
		"",
	}

	for _, input := range inputs {
		once := urlutil.Normalize(input)
		twice := urlutil.Normalize(once)

		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestShouldSkip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain https page", "https://x.com/docs", false},
		{"plain http page", "http://x.com/docs", false},
		{"mailto scheme", "mailto:dev@x.com", true},
		{"javascript scheme", "javascript:void(0)", true},
		{"ftp scheme", "ftp://x.com/file", true},
		{"static dir", "https://x.com/static/app.css", true},
		{"assets dir", "https://x.com/assets/logo.png", true},
		{"dist dir", "https://x.com/dist/bundle.js", true},
		{"build dir", "https://x.com/build/out.js", true},
		{"next dir", "https://x.com/_next/chunk.js", true},
		{"node_modules dir", "https://x.com/node_modules/pkg/index.js", true},
		{"nested static dir", "https://x.com/site/static/app.js", true},
		{"invalid url", "http://exa mple.com/%zz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := urlutil.ShouldSkip(tt.input); got != tt.want {
				t.Errorf("ShouldSkip(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
