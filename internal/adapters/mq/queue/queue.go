// Package queue buffers accepted draft picks between the HTTP handlers and
// the single revaluation worker.
package queue

import (
	"context"
	"sync"

	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/pkg/metrics"
)

const defaultQueueCapacity = 256

// Pick is the payload flowing through the queue.
type Pick = model.PickEvent

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a pick. It never blocks: a full queue returns ErrFull.
	Enqueue(ctx context.Context, p Pick) error

	// Dequeue returns the channel picks are delivered on. It is closed when
	// the queue is closed and drained. ctx does not bound the channel:
	// consumers stop by selecting on their own context, as worker.Run does.
	Dequeue(ctx context.Context) <-chan Pick

	// Len returns the number of pending picks.
	Len(ctx context.Context) int

	// Close stops accepting picks.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	picks    chan Pick
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a bounded queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.picks = make(chan Pick, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0, q.capacity)
	return q
}

// Enqueue adds a pick to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, p Pick) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	select {
	case q.picks <- p:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.picks), q.capacity)
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns the receive side of the queue. The same channel is returned
// on every call and ctx is not consulted; only Close ends it.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Pick {
	return q.picks
}

// Len returns the current number of pending picks.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.picks)
	metrics.UpdateQueueSize(size, q.capacity)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.picks)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
