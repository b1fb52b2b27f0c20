package cachesvc_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/contextkit/corpora/internal/cachesvc"
)

func TestClient_Create(t *testing.T) {
	t.Parallel()

	var gotRequest map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/caches", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cache-123","token_count":4200}`))
	}))
	defer server.Close()

	client := cachesvc.New(server.URL, "secret")

	handle, err := client.Create(context.Background(), "corpus text", "docs", cachesvc.Options{
		TTL:               time.Hour,
		SystemInstruction: "answer from corpus",
	})
	require.NoError(t, err)
	require.Equal(t, "cache-123", handle.ID)
	require.Equal(t, 4200, handle.TokenCount)

	require.Equal(t, "corpus text", gotRequest["text"])
	require.Equal(t, "docs", gotRequest["alias"])
	require.Equal(t, float64(3600), gotRequest["ttl_seconds"])
	require.Equal(t, "answer from corpus", gotRequest["system_instruction"])
}

func TestClient_CreateUpstreamError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "token limit exceeded", http.StatusBadRequest)
	}))
	defer server.Close()

	client := cachesvc.New(server.URL, "")

	_, err := client.Create(context.Background(), "text", "", cachesvc.Options{})

	var upstream *cachesvc.UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusBadRequest, upstream.StatusCode)
	require.Contains(t, upstream.Body, "token limit exceeded")
}

func TestClient_Delete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/v1/caches/cache-123", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := cachesvc.New(server.URL, "")

	require.NoError(t, client.Delete(context.Background(), "cache-123"))
}

func TestClient_DeleteMissing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := cachesvc.New(server.URL, "")

	err := client.Delete(context.Background(), "gone")

	var upstream *cachesvc.UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusNotFound, upstream.StatusCode)
}
