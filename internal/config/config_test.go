package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/contextkit/corpora/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Address)
	require.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, 100000, cfg.Crawl.TargetTokens)
	require.Equal(t, 500, cfg.Crawl.MinTokensPerPage)
	require.Equal(t, 50, cfg.Crawl.MaxPages)
	require.Equal(t, 40, cfg.Crawl.MaxSubrequests)
	require.True(t, cfg.Crawl.SameDomainOnly)
	require.True(t, cfg.Crawl.RespectRobotsTxt)
	require.Equal(t, 100*time.Millisecond, cfg.Crawl.Delay)
	require.Equal(t, "info", cfg.Logger.Level)
	require.Equal(t, "console", cfg.Logger.Encoding)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
server:
  address: ":9090"
crawl:
  target_tokens: 25000
  delay: 500ms
  same_domain_only: false
cache_service:
  base_url: https://cache.internal
logger:
  level: debug
  encoding: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Server.Address)
	require.Equal(t, 25000, cfg.Crawl.TargetTokens)
	require.Equal(t, 500*time.Millisecond, cfg.Crawl.Delay)
	require.False(t, cfg.Crawl.SameDomainOnly)
	require.Equal(t, "https://cache.internal", cfg.CacheService.BaseURL)
	require.Equal(t, "debug", cfg.Logger.Level)
	require.Equal(t, "json", cfg.Logger.Encoding)
	// File leaves other crawl settings at defaults.
	require.Equal(t, 50, cfg.Crawl.MaxPages)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CORPORA_CRAWL_TARGET_TOKENS", "1234")
	t.Setenv("CORPORA_LOGGER_LEVEL", "warn")

	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, 1234, cfg.Crawl.TargetTokens)
	require.Equal(t, "warn", cfg.Logger.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
