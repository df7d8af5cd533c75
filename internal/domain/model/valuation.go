package model

import "github.com/okian/auctioneer/internal/domain/league"

// Valuation is one row of a run's result table.
type Valuation struct {
	PlayerID  string            `json:"player_id"`
	Name      string            `json:"player_name"`
	Team      string            `json:"team,omitempty"`
	Type      league.PlayerType `json:"player_type"`
	Positions []string          `json:"positions"`

	Slot             string             `json:"assigned_slot"`
	SGP              map[string]float64 `json:"sgp"`
	RawValue         float64            `json:"raw_value"`
	ReplacementLevel float64            `json:"replacement_level"`
	VAR              float64            `json:"var"`
	Price            int                `json:"auction_value"`

	// Ranks are 0 for drafted players; they only order the available pool.
	OverallRank int `json:"overall_rank"`
	SlotRank    int `json:"slot_rank"`

	Drafted   bool   `json:"drafted,omitempty"`
	DraftedBy string `json:"drafted_by,omitempty"`
}

// Unassigned reasons.
const (
	ReasonNoEligibleSlot    = "no_open_eligible_slot"
	ReasonCapacityExhausted = "capacity_exhausted"
)

// Unassigned reports a player the optimizer could not place.
type Unassigned struct {
	PlayerID string            `json:"player_id"`
	Name     string            `json:"player_name"`
	Type     league.PlayerType `json:"player_type"`
	RawValue float64           `json:"raw_value"`
	Reason   string            `json:"reason"`
	Drafted  bool              `json:"drafted,omitempty"`
}
