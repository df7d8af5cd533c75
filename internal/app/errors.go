package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoEngine     = errors.New("valuation engine not configured")
	ErrNotStarted   = errors.New("service not started")
	ErrReplay       = errors.New("pick log replay failed")
	ErrNotPersisted = errors.New("pick not persisted")
)
