package crawler

import (
	"container/heap"

	"github.com/contextkit/corpora/internal/domain"
)

// urlQueue is a max-priority queue of PrioritizedURL entries. Higher scores
// pop first; ties break by insertion order, which keeps one run's traversal
// deterministic. The queue rejects duplicate URLs before insertion to bound
// memory; the visited set remains the deduplication authority at pop time.
type urlQueue struct {
	items  queueItems
	member map[string]struct{}
	seq    int
}

// queueItem pairs an entry with its insertion sequence for stable ordering.
type queueItem struct {
	entry domain.PrioritizedURL
	seq   int
}

// queueItems implements heap.Interface.
type queueItems []queueItem

func (q queueItems) Len() int { return len(q) }

func (q queueItems) Less(i, j int) bool {
	if q[i].entry.Score != q[j].entry.Score {
		return q[i].entry.Score > q[j].entry.Score
	}

	return q[i].seq < q[j].seq
}

func (q queueItems) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queueItems) Push(x any) {
	*q = append(*q, x.(queueItem))
}

func (q *queueItems) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]

	return item
}

// newURLQueue creates an empty queue.
func newURLQueue() *urlQueue {
	return &urlQueue{member: make(map[string]struct{})}
}

// Len returns the number of queued entries.
func (q *urlQueue) Len() int {
	return len(q.items)
}

// Has reports whether a URL is already queued.
func (q *urlQueue) Has(url string) bool {
	_, ok := q.member[url]

	return ok
}

// Push enqueues an entry unless its URL is already present.
// Returns false for rejected duplicates.
func (q *urlQueue) Push(entry domain.PrioritizedURL) bool {
	if q.Has(entry.URL) {
		return false
	}

	q.member[entry.URL] = struct{}{}
	heap.Push(&q.items, queueItem{entry: entry, seq: q.seq})
	q.seq++

	return true
}

// Pop removes and returns the highest-scoring entry.
// The second return is false when the queue is empty.
func (q *urlQueue) Pop() (domain.PrioritizedURL, bool) {
	if len(q.items) == 0 {
		return domain.PrioritizedURL{}, false
	}

	item := heap.Pop(&q.items).(queueItem)
	delete(q.member, item.entry.URL)

	return item.entry, true
}
