package roto

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
)

const (
	// needPool is how many players back a category's available SGP.
	needPool = 5
	// needShown is how many of them are returned with the need.
	needShown = 3
	// focusNeeds is how many of the easiest needs rank the best targets.
	focusNeeds  = 3
	bestTargets = 10

	easeCap     = 3.0
	budgetScale = 100.0
	gapScale    = 10.0
)

// Directions a category must move to gain a place.
const (
	Increase = "increase"
	Reduce   = "reduce"
)

// Target is an available player who helps in one or more categories.
type Target struct {
	PlayerID   string   `json:"player_id"`
	Name       string   `json:"player_name"`
	Positions  []string `json:"positions"`
	Price      int      `json:"auction_value"`
	RawValue   float64  `json:"raw_value"`
	SGP        float64  `json:"sgp"`
	Categories []string `json:"categories,omitempty"`
}

// Need is one category where a team can climb a place.
type Need struct {
	Category     string   `json:"category"`
	CurrentRank  int      `json:"current_rank"`
	NextRank     int      `json:"next_rank"`
	PointsToNext int      `json:"points_to_next_rank"`
	StatsNeeded  float64  `json:"stats_needed"`
	Direction    string   `json:"stats_gap_type"`
	AvailableSGP float64  `json:"available_sgp"`
	Ease         float64  `json:"ease_score"`
	Targets      []Target `json:"top_recommendations"`
}

// TeamNeeds is a team's improvement plan, easiest need first.
type TeamNeeds struct {
	TeamID          string   `json:"team_id"`
	BudgetRemaining int      `json:"budget_remaining"`
	SpotsRemaining  int      `json:"open_slots"`
	Needs           []Need   `json:"needs"`
	BestTargets     []Target `json:"best_overall_targets"`
}

// Needs lists every category where r is not first, measured against the
// team one rank ahead, with the available players who would help most.
func Needs(t Table, r Roster, available []model.Valuation) (TeamNeeds, error) {
	me, ok := t.Team(r.TeamID)
	if !ok {
		return TeamNeeds{}, fmt.Errorf("%w: %q", ErrUnknownTeam, r.TeamID)
	}
	out := TeamNeeds{
		TeamID:          r.TeamID,
		BudgetRemaining: r.BudgetRemaining,
		SpotsRemaining:  r.SpotsRemaining,
		Needs:           []Need{},
	}
	for _, name := range t.Categories {
		rank := me.Ranks[name]
		if rank <= 1 {
			continue
		}
		ahead, ok := t.atRank(name, rank-1)
		if !ok {
			continue
		}
		c, _ := league.LookupCategory(name)
		gap := ahead.Stats[name] - me.Stats[name]
		dir := Increase
		if c.LowerIsBetter {
			gap, dir = -gap, Reduce
		}
		gap = math.Abs(gap)
		points := ahead.Points[name] - me.Points[name]

		pool := targets(available, []string{name}, needPool)
		var sum float64
		for _, p := range pool {
			sum += p.SGP
		}
		out.Needs = append(out.Needs, Need{
			Category:     name,
			CurrentRank:  rank,
			NextRank:     rank - 1,
			PointsToNext: points,
			StatsNeeded:  round(gap, 2),
			Direction:    dir,
			AvailableSGP: round(sum, 2),
			Ease:         round(Ease(points, gap, sum, r.BudgetRemaining), 3),
			Targets:      pool[:min(needShown, len(pool))],
		})
	}
	sort.SliceStable(out.Needs, func(i, j int) bool { return out.Needs[i].Ease > out.Needs[j].Ease })

	focus := make([]string, 0, focusNeeds)
	for _, n := range out.Needs[:min(focusNeeds, len(out.Needs))] {
		focus = append(focus, n.Category)
	}
	out.BestTargets = targets(available, focus, bestTargets)
	return out, nil
}

// Ease scores in [0, 1] how reachable the next rank is: plenty of available
// SGP against the gap, money to spend and a small gap all help. A tie or a
// zero point gap scores zero.
func Ease(points int, gap, availableSGP float64, budget int) float64 {
	if points <= 0 || gap <= 0 {
		return 0
	}
	supply := math.Min(availableSGP/gap, easeCap)
	money := math.Min(float64(budget)/budgetScale, easeCap)
	closeness := 1 / (1 + gap/gapScale)
	return math.Min((0.4*supply+0.3*money+0.3*closeness)/3, 1)
}

// targets ranks available players by their summed SGP over categories and
// keeps the first limit with a positive sum. Ties keep board order.
func targets(available []model.Valuation, categories []string, limit int) []Target {
	out := []Target{}
	if len(categories) == 0 {
		return out
	}
	for _, v := range available {
		if v.Drafted {
			continue
		}
		var sum float64
		for _, c := range categories {
			sum += v.SGP[c]
		}
		if sum <= 0 {
			continue
		}
		t := Target{
			PlayerID:  v.PlayerID,
			Name:      v.Name,
			Positions: v.Positions,
			Price:     v.Price,
			RawValue:  round(v.RawValue, 2),
			SGP:       round(sum, 2),
		}
		if len(categories) > 1 {
			t.Categories = categories
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SGP > out[j].SGP })
	return out[:min(limit, len(out))]
}
