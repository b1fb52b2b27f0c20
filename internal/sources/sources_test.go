package sources_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/contextkit/corpora/internal/sources"
)

const sampleProfiles = `
profiles:
  - name: go-docs
    seeds:
      - https://go.dev/doc/
    target_tokens: 80000
    max_pages: 30
    delay: 250ms
  - name: wide
    seeds:
      - https://example.com/a
      - https://example.com/b
    same_domain_only: false
    respect_robots_txt: false
`

func TestParse(t *testing.T) {
	t.Parallel()

	registry, err := sources.Parse([]byte(sampleProfiles))
	require.NoError(t, err)
	require.Equal(t, []string{"go-docs", "wide"}, registry.Names())

	profile, err := registry.Get("go-docs")
	require.NoError(t, err)
	require.Equal(t, []string{"https://go.dev/doc/"}, profile.Seeds)
	require.Equal(t, 250*time.Millisecond, profile.DelayDuration())
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing name",
			yaml: "profiles:\n  - seeds: [https://a.com]\n",
		},
		{
			name: "no seeds",
			yaml: "profiles:\n  - name: empty\n",
		},
		{
			name: "duplicate name",
			yaml: "profiles:\n  - name: x\n    seeds: [https://a.com]\n  - name: x\n    seeds: [https://b.com]\n",
		},
		{
			name: "invalid yaml",
			yaml: "profiles: [",
		},
		{
			name: "invalid delay",
			yaml: "profiles:\n  - name: x\n    seeds: [https://a.com]\n    delay: fast\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := sources.Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestGetMissingProfile(t *testing.T) {
	t.Parallel()

	registry, err := sources.Parse([]byte(sampleProfiles))
	require.NoError(t, err)

	_, err = registry.Get("unknown")
	require.ErrorIs(t, err, sources.ErrProfileNotFound)
}

func TestProfileCrawlConfig(t *testing.T) {
	t.Parallel()

	registry, err := sources.Parse([]byte(sampleProfiles))
	require.NoError(t, err)

	t.Run("overrides applied over defaults", func(t *testing.T) {
		t.Parallel()

		profile, err := registry.Get("go-docs")
		require.NoError(t, err)

		cfg := profile.CrawlConfig()
		require.Equal(t, 80000, cfg.TargetTokens)
		require.Equal(t, 30, cfg.MaxPages)
		require.Equal(t, 250*time.Millisecond, cfg.Delay)
		// Untouched fields keep defaults.
		require.Equal(t, 500, cfg.MinTokensPerPage)
		require.True(t, cfg.SameDomainOnly)
	})

	t.Run("boolean overrides", func(t *testing.T) {
		t.Parallel()

		profile, err := registry.Get("wide")
		require.NoError(t, err)

		cfg := profile.CrawlConfig()
		require.False(t, cfg.SameDomainOnly)
		require.False(t, cfg.RespectRobotsTxt)
		require.Len(t, cfg.SeedURLs, 2)
	})
}
