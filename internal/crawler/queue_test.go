package crawler

import (
	"testing"

	"github.com/contextkit/corpora/internal/domain"
)

func TestURLQueue_PopOrder(t *testing.T) {
	t.Parallel()

	q := newURLQueue()

	q.Push(domain.PrioritizedURL{URL: "https://a.com/low", Score: 30})
	q.Push(domain.PrioritizedURL{URL: "https://a.com/high", Score: 90})
	q.Push(domain.PrioritizedURL{URL: "https://a.com/mid", Score: 60})

	want := []string{"https://a.com/high", "https://a.com/mid", "https://a.com/low"}

	for _, wantURL := range want {
		entry, ok := q.Pop()
		if !ok {
			t.Fatal("queue exhausted early")
		}

		if entry.URL != wantURL {
			t.Errorf("popped %q, want %q", entry.URL, wantURL)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Error("expected empty queue after all pops")
	}
}

func TestURLQueue_TiesBreakByInsertionOrder(t *testing.T) {
	t.Parallel()

	q := newURLQueue()

	q.Push(domain.PrioritizedURL{URL: "https://a.com/first", Score: 50})
	q.Push(domain.PrioritizedURL{URL: "https://a.com/second", Score: 50})
	q.Push(domain.PrioritizedURL{URL: "https://a.com/third", Score: 50})

	want := []string{"https://a.com/first", "https://a.com/second", "https://a.com/third"}

	for _, wantURL := range want {
		entry, _ := q.Pop()
		if entry.URL != wantURL {
			t.Errorf("popped %q, want %q (stable tie-break)", entry.URL, wantURL)
		}
	}
}

func TestURLQueue_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	q := newURLQueue()

	if !q.Push(domain.PrioritizedURL{URL: "https://a.com/x", Score: 50}) {
		t.Fatal("first push rejected")
	}

	if q.Push(domain.PrioritizedURL{URL: "https://a.com/x", Score: 80}) {
		t.Error("duplicate URL accepted")
	}

	if q.Len() != 1 {
		t.Errorf("queue length %d, want 1", q.Len())
	}
}
