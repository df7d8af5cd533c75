package repository

import "errors"

// Sentinel kinds for board and pick log errors.
var (
	ErrNotFound     = errors.New("player not found")
	ErrInvalidLimit = errors.New("invalid board limit")
	ErrClosed       = errors.New("store closed")
)
