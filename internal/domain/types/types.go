// Package types contains read shapes shared by the service and HTTP layers.
package types

import (
	"time"

	"github.com/okian/auctioneer/internal/domain/model"
)

// Board is one page of the published valuation board.
type Board struct {
	RunID       string            `json:"run_id"`
	PublishedAt time.Time         `json:"published_at"`
	Total       int               `json:"total"`
	Players     []model.Valuation `json:"players"`
}

// Ack is returned for an accepted pick submission.
type Ack struct {
	Status   string `json:"status"`
	PlayerID string `json:"player_id"`
	TeamID   string `json:"team_id"`
}

// Team is the transport view of one team's draft position.
type Team struct {
	TeamID          string `json:"team_id"`
	Picks           int    `json:"picks"`
	Spent           int    `json:"spent"`
	BudgetRemaining int    `json:"budget_remaining"`
	SpotsRemaining  int    `json:"spots_remaining"`
	// MaxBid is the most the team can pay while still filling every
	// remaining spot at the minimum bid.
	MaxBid int `json:"max_bid"`
}

// ComputeMaxBid returns budget minus minBid for every other open spot.
func ComputeMaxBid(budget, spots, minBid int) int {
	if spots <= 0 {
		return 0
	}
	return max(budget-(spots-1)*minBid, 0)
}
