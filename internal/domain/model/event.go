// Package model contains domain models passed between layers.
package model

import "time"

// PickEvent records one player bought by one team during the auction.
// Keepers are applied as picks before the first live pick.
type PickEvent struct {
	PickNumber int       `json:"pick_number"` // 1-based, assigned on apply when zero
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name,omitempty"`
	TeamID     string    `json:"team_id"`
	Price      int       `json:"price"`
	Keeper     bool      `json:"keeper,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Pin is the engine's view of a drafted player: it holds a slot and its
// price is already spent.
type Pin struct {
	PlayerID   string
	TeamID     string
	Price      int
	PickNumber int
}
