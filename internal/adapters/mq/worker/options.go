package worker

import (
	"time"

	"github.com/okian/auctioneer/pkg/logger"
)

// Option configures an InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName names the worker in its logs.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger replaces the default worker logger.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithSlowThreshold logs a warning for every pick whose processing, valuation
// run included, takes longer than d. Zero disables the warning.
func WithSlowThreshold(d time.Duration) Option {
	return func(w *InMemoryWorker) {
		if d >= 0 {
			w.slow = d
		}
	}
}
