package league

import "errors"

// Sentinel kinds for league rule errors.
var (
	ErrInvalidSettings   = errors.New("invalid league settings")
	ErrUnknownPlayerType = errors.New("unknown player type")
)
