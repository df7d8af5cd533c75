package service

import (
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/internal/domain/valuation"
	"github.com/okian/auctioneer/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEngine sets the calibrated valuation engine. Required.
func WithEngine(e *valuation.Engine) Option {
	return func(s *Service) {
		s.engine = e
	}
}

// WithPool sets the projected player pool.
func WithPool(hitters, pitchers []model.Player) Option {
	return func(s *Service) {
		s.hitters = hitters
		s.pitchers = pitchers
	}
}

// WithKeepers sets picks applied before the first live pick of a new draft.
func WithKeepers(keepers []model.PickEvent) Option {
	return func(s *Service) {
		s.keepers = keepers
	}
}

// WithPickLog sets the durable pick log. Without one picks live in memory.
func WithPickLog(log PickLog) Option {
	return func(s *Service) {
		s.pickLog = log
	}
}

// WithQueueSize sets the maximum size of the pick queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxBoardLimit caps how many rows one board query may return.
func WithMaxBoardLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBoardLimit = n
		}
	}
}

// WithDiagnosticsDir writes the calibration CSVs after the first run.
func WithDiagnosticsDir(dir string) Option {
	return func(s *Service) {
		s.diagnosticsDir = dir
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
