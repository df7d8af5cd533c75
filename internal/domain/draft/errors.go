package draft

import "errors"

// Sentinel kinds for rejected picks.
var (
	ErrInvalidPick    = errors.New("invalid pick")
	ErrUnknownTeam    = errors.New("unknown team")
	ErrUnknownPlayer  = errors.New("unknown player")
	ErrAlreadyDrafted = errors.New("player already drafted")
	ErrOverBudget     = errors.New("price exceeds team budget")
	ErrRosterFull     = errors.New("team roster is full")
)
