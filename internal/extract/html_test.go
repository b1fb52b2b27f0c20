package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contextkit/corpora/internal/extract"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Install Guide</title></head>
<body>
<nav><a href="/home">Home</a> boilerplate navigation</nav>
<script>console.log("noise")</script>
<article>
<h1>Installing the toolkit</h1>
<p>Download the release, unpack it, and add the binary to your PATH.
The configuration file lives next to the binary and is read on startup.</p>
<p>See the <a href="/docs/config">configuration reference</a> and the
<a href="https://other.example/notes">external notes</a> for details.</p>
<a href="#top">Back to top</a>
<a href="mailto:team@x.com">Contact</a>
<a href="javascript:void(0)">Noop</a>
<a href="/docs/config">Duplicate link</a>
</article>
<footer>footer boilerplate</footer>
</body>
</html>`

func TestHTMLExtract_TextAndTitle(t *testing.T) {
	t.Parallel()

	extractor := extract.NewHTMLExtractor()

	result, err := extractor.Extract([]byte(samplePage), "https://x.com/docs/install")
	require.NoError(t, err)

	assert.Contains(t, result.Title, "Install")
	assert.Contains(t, result.Text, "add the binary to your PATH")
	assert.NotContains(t, result.Text, "console.log", "script content must be stripped")
}

func TestHTMLExtract_Links(t *testing.T) {
	t.Parallel()

	extractor := extract.NewHTMLExtractor()

	result, err := extractor.Extract([]byte(samplePage), "https://x.com/docs/install")
	require.NoError(t, err)

	assert.Contains(t, result.Links, "https://x.com/docs/config", "relative links must resolve absolute")
	assert.Contains(t, result.Links, "https://other.example/notes")
	assert.Contains(t, result.Links, "https://x.com/home")

	for _, link := range result.Links {
		assert.NotContains(t, link, "mailto:")
		assert.NotContains(t, link, "javascript:")
	}

	// The duplicated /docs/config href appears once.
	count := 0
	for _, link := range result.Links {
		if link == "https://x.com/docs/config" {
			count++
		}
	}
	assert.Equal(t, 1, count, "links must be deduplicated")
}

func TestHTMLExtract_FallbackOnThinContent(t *testing.T) {
	t.Parallel()

	extractor := extract.NewHTMLExtractor()

	thin := `<html><head><title>Thin</title></head><body><nav>menu</nav><p>tiny</p></body></html>`

	result, err := extractor.Extract([]byte(thin), "https://x.com/thin")
	require.NoError(t, err)

	assert.Equal(t, "strip", result.Metadata["strategy"])
	assert.Contains(t, result.Text, "tiny")
	assert.NotContains(t, result.Text, "menu", "nav content is stripped by the fallback")
}

func TestHTMLExtract_MalformedHTML(t *testing.T) {
	t.Parallel()

	extractor := extract.NewHTMLExtractor()

	// goquery parses anything tag-soup-like; this should not error.
	result, err := extractor.Extract([]byte("<p>unclosed <b>bold"), "https://x.com/soup")
	require.NoError(t, err)
	assert.Contains(t, result.Text, "unclosed")
}
