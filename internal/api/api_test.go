package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/contextkit/corpora/internal/api"
	"github.com/contextkit/corpora/internal/config"
	"github.com/contextkit/corpora/internal/domain"
	"github.com/contextkit/corpora/internal/logger"
	"github.com/contextkit/corpora/internal/storage"
)

type stubCrawler struct {
	source *domain.LoadedSource
	err    error
	gotCfg domain.CrawlConfig
}

func (s *stubCrawler) Crawl(_ context.Context) (*domain.LoadedSource, error) {
	return s.source, s.err
}

func newTestServer(t *testing.T, crawl *stubCrawler) (*api.Server, *storage.Store) {
	t.Helper()

	store, err := storage.Open(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	var factory api.CrawlerFactory
	if crawl != nil {
		factory = func(cfg domain.CrawlConfig) api.Crawler {
			crawl.gotCfg = cfg
			return crawl
		}
	}

	cfg := &config.ServerConfig{
		Address:      ":0",
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}

	return api.NewServer(cfg, logger.NewNoop(), store, factory), store
}

func TestHealth(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCrawl(t *testing.T) {
	t.Parallel()

	crawl := &stubCrawler{
		source: &domain.LoadedSource{
			Content:     "# Page\n\nbody",
			TotalTokens: 1200,
			FileCount:   3,
			Metadata:    domain.NewMetadata("https://example.com"),
		},
	}
	server, _ := newTestServer(t, crawl)

	body := `{"seed_urls":["https://example.com"],"target_tokens":5000,"delay_ms":0}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/crawl", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total_tokens":1200`)
	require.Equal(t, 5000, crawl.gotCfg.TargetTokens)
	require.Equal(t, time.Duration(0), crawl.gotCfg.Delay)
	// Unset fields keep defaults.
	require.Equal(t, 50, crawl.gotCfg.MaxPages)
}

func TestCrawl_BadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "missing seeds", body: `{}`},
		{name: "not json", body: `seed_urls=x`},
		{name: "bad scheme", body: `{"seed_urls":["ftp://example.com"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server, _ := newTestServer(t, &stubCrawler{})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/crawl", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			server.Router().ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAssemble(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, nil)

	body := `{"sources":[{"label":"Docs","content":"some documentation text"},{"label":"Code","content":"package main"}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assemble", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "# Docs")
	require.Contains(t, rec.Body.String(), "# Code")
}

func TestAssemble_TokenCeiling(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, nil)

	body := `{"sources":[{"label":"Big","content":"` + strings.Repeat("word ", 200) + `"}],"max_tokens":10}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assemble", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCacheEndpoints(t *testing.T) {
	t.Parallel()

	server, store := newTestServer(t, nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &storage.CacheRecord{
		Alias:      "docs",
		CacheID:    "cache-1",
		TokenCount: 900,
	}))

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/caches", http.NoBody)
		server.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"alias":"docs"`)
	})

	t.Run("get", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/caches/docs", http.NoBody)
		server.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"cache_id":"cache-1"`)
	})

	t.Run("get missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/caches/nope", http.NoBody)
		server.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete then gone", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/caches/docs", http.NoBody)
		server.Router().ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodDelete, "/api/v1/caches/docs", http.NoBody)
		server.Router().ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
