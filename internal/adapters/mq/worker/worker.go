// Package worker drains the pick queue and hands each pick to the processor
// that applies it and re-runs the valuation.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/auctioneer/internal/adapters/mq/queue"
	"github.com/okian/auctioneer/pkg/logger"
	"github.com/okian/auctioneer/pkg/metrics"
)

// Processor applies one pick. Implementations run on the worker goroutine
// only, so they may assume a single writer.
type Processor interface {
	Process(ctx context.Context, p queue.Pick) error
}

// Queue defines how the worker receives picks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Pick
}

// Worker processes picks one at a time.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown waits for the loop to finish the pick in hand and stop.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker is the single consumer of the pick queue. Revaluations are
// serialized through it.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	name      string
	slow      time.Duration

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(q Queue, p Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		processor: p,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	picks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case p, ok := <-picks:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, p); err != nil {
				w.logger.Error(ctx, "error processing pick", logger.Error(err))
			}
		}
	}
}

// Done is closed once Run has returned. Closing the queue and waiting on
// Done drains every pending pick.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Shutdown stops the worker after the pick in hand.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, p queue.Pick) error {
	start := time.Now()
	defer func() {
		took := time.Since(start)
		metrics.RecordWorkerProcessingLatency(float64(took.Milliseconds()))
		if w.slow > 0 && took > w.slow {
			w.logger.Warn(ctx, "slow pick",
				logger.Int("pickNumber", p.PickNumber),
				logger.String("playerId", p.PlayerID),
				logger.Duration("took", took))
		}
	}()

	if err := w.processor.Process(ctx, p); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "process_error")
		metrics.RecordErrorByType("process_error", "high")
		return fmt.Errorf("process pick %d (%s): %w", p.PickNumber, p.PlayerID, err)
	}
	return nil
}
