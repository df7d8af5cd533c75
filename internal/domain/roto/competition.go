package roto

import (
	"sort"

	"github.com/okian/auctioneer/internal/domain/league"
)

// highNeed is the open count at which a slot marks a team as a strong
// bidder there.
const highNeed = 2

// TeamResources is one team's share of what is left to spend and fill.
type TeamResources struct {
	TeamID          string      `json:"team_id"`
	BudgetRemaining int         `json:"budget_remaining"`
	OpenSlots       int         `json:"total_open_slots"`
	BySlot          []SlotCount `json:"open_slots_by_position"`
	// Score averages the team's share of league budget and open slots.
	Score    float64  `json:"competition_score"`
	HighNeed []string `json:"high_need_positions"`
}

// LeagueTotals sums remaining resources across the league.
type LeagueTotals struct {
	BudgetRemaining  int     `json:"total_budget_remaining"`
	OpenSlots        int     `json:"total_open_slots"`
	AvgBudgetPerTeam float64 `json:"avg_budget_per_team"`
	AvgSlotsPerTeam  float64 `json:"avg_slots_per_team"`
	AvgBudgetPerSlot float64 `json:"avg_budget_per_slot"`
}

// SlotDemand is the league-wide competition for one roster slot.
type SlotDemand struct {
	Slot      string            `json:"position"`
	Type      league.PlayerType `json:"player_type"`
	Teams     []string          `json:"teams_with_need"`
	OpenSlots int               `json:"total_slots_available"`
	AvgBudget float64           `json:"avg_budget_per_team_with_need"`
}

// Competition is the league's remaining purchasing power.
type Competition struct {
	Teams     []TeamResources `json:"teams"`
	Totals    LeagueTotals    `json:"league_totals"`
	Positions []SlotDemand    `json:"positions"`
}

// Compete measures who can still bid. Teams are ordered richest first and
// each demand lists its teams the same way.
func Compete(s league.Settings, rosters []Roster) Competition {
	out := Competition{Teams: make([]TeamResources, 0, len(rosters))}
	for _, r := range rosters {
		out.Totals.BudgetRemaining += r.BudgetRemaining
		out.Totals.OpenSlots += r.SpotsRemaining
	}
	for _, r := range rosters {
		tr := TeamResources{
			TeamID:          r.TeamID,
			BudgetRemaining: r.BudgetRemaining,
			OpenSlots:       r.SpotsRemaining,
			BySlot:          OpenSlots(s, r.Players),
			HighNeed:        []string{},
		}
		var budgetShare, slotShare float64
		if out.Totals.BudgetRemaining > 0 {
			budgetShare = float64(r.BudgetRemaining) / float64(out.Totals.BudgetRemaining)
		}
		if out.Totals.OpenSlots > 0 {
			slotShare = float64(r.SpotsRemaining) / float64(out.Totals.OpenSlots)
		}
		tr.Score = round((budgetShare+slotShare)/2, 3)
		for _, sc := range tr.BySlot {
			if sc.Open >= highNeed {
				tr.HighNeed = append(tr.HighNeed, sc.Slot)
			}
		}
		out.Teams = append(out.Teams, tr)
	}
	sort.SliceStable(out.Teams, func(i, j int) bool { return out.Teams[i].BudgetRemaining > out.Teams[j].BudgetRemaining })

	if n := len(rosters); n > 0 {
		out.Totals.AvgBudgetPerTeam = round(float64(out.Totals.BudgetRemaining)/float64(n), 2)
		out.Totals.AvgSlotsPerTeam = round(float64(out.Totals.OpenSlots)/float64(n), 1)
	}
	if out.Totals.OpenSlots > 0 {
		out.Totals.AvgBudgetPerSlot = round(float64(out.Totals.BudgetRemaining)/float64(out.Totals.OpenSlots), 2)
	}

	out.Positions = make([]SlotDemand, 0, len(s.Roster))
	for i, sl := range s.Roster {
		d := SlotDemand{Slot: sl.Name, Type: sl.Type, Teams: []string{}}
		budget := 0
		for _, tr := range out.Teams {
			if open := tr.BySlot[i].Open; open > 0 {
				d.Teams = append(d.Teams, tr.TeamID)
				d.OpenSlots += open
				budget += tr.BudgetRemaining
			}
		}
		if len(d.Teams) > 0 {
			d.AvgBudget = round(float64(budget)/float64(len(d.Teams)), 2)
		}
		out.Positions = append(out.Positions, d)
	}
	return out
}
