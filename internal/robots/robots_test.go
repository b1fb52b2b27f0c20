package robots_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/contextkit/corpora/internal/robots"
)

// newTestChecker creates a Checker for testing.
func newTestChecker(t *testing.T) *robots.Checker {
	t.Helper()

	return robots.NewChecker(&http.Client{Timeout: 5 * time.Second}, "CorporaBot/1.0")
}

func TestIsAllowed_PathAllowed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer server.Close()

	checker := newTestChecker(t)

	allowed, err := checker.IsAllowed(context.Background(), server.URL+"/docs/page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !allowed {
		t.Error("expected /docs/page to be allowed, got disallowed")
	}
}

func TestIsAllowed_PathDisallowed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer server.Close()

	checker := newTestChecker(t)

	allowed, err := checker.IsAllowed(context.Background(), server.URL+"/private/secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if allowed {
		t.Error("expected /private/secret to be disallowed, got allowed")
	}
}

func TestIsAllowed_LongerAllowWins(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\nAllow: /private/docs/\n"))
	}))
	defer server.Close()

	checker := newTestChecker(t)

	allowed, err := checker.IsAllowed(context.Background(), server.URL+"/private/docs/page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !allowed {
		t.Error("expected the more specific allow rule to win")
	}
}

func TestIsAllowed_AgentSpecificGroup(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("User-agent: CorporaBot\nDisallow: /blocked/\n\nUser-agent: *\nDisallow:\n"))
	}))
	defer server.Close()

	checker := newTestChecker(t)

	allowed, err := checker.IsAllowed(context.Background(), server.URL+"/blocked/page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if allowed {
		t.Error("expected agent-specific disallow to apply to CorporaBot/1.0")
	}
}

func TestIsAllowed_Missing404FailsOpen(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := newTestChecker(t)

	allowed, err := checker.IsAllowed(context.Background(), server.URL+"/any/path")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !allowed {
		t.Error("expected allow-all when robots.txt returns 404")
	}
}

func TestIsAllowed_NetworkErrorFailsOpen(t *testing.T) {
	t.Parallel()

	// Server closed before the request is made.
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	serverURL := server.URL
	server.Close()

	checker := newTestChecker(t)

	allowed, err := checker.IsAllowed(context.Background(), serverURL+"/any/path")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !allowed {
		t.Error("expected allow-all when robots.txt is unreachable")
	}
}

func TestIsAllowed_FetchedOncePerOrigin(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fetches.Add(1)
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer server.Close()

	checker := newTestChecker(t)

	for _, p := range []string{"/a", "/b", "/private/c"} {
		if _, err := checker.IsAllowed(context.Background(), server.URL+p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := fetches.Load(); got != 1 {
		t.Errorf("robots.txt fetched %d times, want 1 fetch per origin per crawl", got)
	}
}

func TestIsAllowed_InvalidURL(t *testing.T) {
	t.Parallel()

	checker := newTestChecker(t)

	if _, err := checker.IsAllowed(context.Background(), "not-a-url"); err == nil {
		t.Error("expected error for URL without host")
	}
}
