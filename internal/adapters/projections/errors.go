package projections

import "errors"

// Sentinel kinds for projection and keeper input errors.
var (
	ErrMissingColumn = errors.New("required column missing")
	ErrNoProjections = errors.New("no projections")
	ErrInvalidRow    = errors.New("invalid row")
)
