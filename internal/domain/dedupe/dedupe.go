// Package dedupe tracks players with a pick in flight so a second submission
// for the same player is refused before it reaches the queue.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records player IDs that have a pending or applied pick.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord releases id, used when a pick was accepted at the edge but
	// could not be enqueued or applied.
	Unrecord(ctx context.Context, id string)

	Size() int
}

type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	maxSize int
}

// NewInMemoryDeduper creates an empty deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{}, max(d.maxSize, 0))
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	// A full tracker treats new ids as seen; the draft state rejects the
	// pick properly once the caller retries after a release.
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		return true
	}
	d.seen[id] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, id)
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
