package roto

import "errors"

// ErrUnknownTeam is returned when a team is not in the projected table.
var ErrUnknownTeam = errors.New("unknown team")
