package roto

import (
	"math"
	"sort"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/sgp"
)

// Gap is the distance in one category to the team one place ahead in the
// overall table.
type Gap struct {
	Points int     `json:"points"`
	Stats  float64 `json:"stats"`
}

// Standing is one team's projected final line.
type Standing struct {
	TeamID      string             `json:"team_id"`
	TotalPoints int                `json:"total_points"`
	Points      map[string]int     `json:"category_points"`
	Ranks       map[string]int     `json:"category_ranks"`
	Stats       map[string]float64 `json:"projected_stats"`
	OpenSlots   []SlotCount        `json:"open_slots"`
	// GapsToNext is empty for the leader.
	GapsToNext map[string]Gap `json:"gaps_to_next"`
}

// Summary condenses a projected table.
type Summary struct {
	Teams        int    `json:"num_teams"`
	Leader       string `json:"leader_team,omitempty"`
	LeaderPoints int    `json:"leader_points"`
	LastPoints   int    `json:"last_place_points"`
	Spread       int    `json:"point_spread"`
}

// Table is the projected final standings, best team first.
type Table struct {
	Categories []string   `json:"categories"`
	Standings  []Standing `json:"standings"`
	Summary    Summary    `json:"summary"`
}

// Team returns the standing of id.
func (t Table) Team(id string) (Standing, bool) {
	for _, st := range t.Standings {
		if st.TeamID == id {
			return st, true
		}
	}
	return Standing{}, false
}

// atRank returns the team holding rank in category.
func (t Table) atRank(category string, rank int) (Standing, bool) {
	for _, st := range t.Standings {
		if st.Ranks[category] == rank {
			return st, true
		}
	}
	return Standing{}, false
}

// Project fills every open slot with the replacement baseline of its player
// type and ranks the teams in each scoring category. First place earns one
// point per team and last place earns one. Equal values keep roster order.
// Open slots of a type without a baseline stay empty.
func Project(s league.Settings, rosters []Roster, baselines []sgp.Baseline) Table {
	byType := make(map[league.PlayerType]sgp.Baseline, len(baselines))
	for _, b := range baselines {
		byType[b.Type] = b
	}
	cats := make([]league.Category, 0, len(s.HitterCategories)+len(s.PitcherCategories))
	for _, name := range s.AllCategories() {
		if c, ok := league.LookupCategory(name); ok {
			cats = append(cats, c)
		}
	}

	n := len(rosters)
	out := make([]Standing, n)
	for i, r := range rosters {
		l := newLine()
		open := OpenSlots(s, r.Players)
		for _, c := range cats {
			for _, p := range r.Players {
				if p.Type == c.Type {
					l.addPlayer(c, p)
				}
			}
			b, ok := byType[c.Type]
			if !ok {
				continue
			}
			for _, sc := range open {
				if sc.Type != c.Type {
					continue
				}
				for range sc.Open {
					l.addReplacement(c, b)
				}
			}
		}
		st := Standing{
			TeamID:     r.TeamID,
			Points:     make(map[string]int, len(cats)),
			Ranks:      make(map[string]int, len(cats)),
			Stats:      make(map[string]float64, len(cats)),
			OpenSlots:  open,
			GapsToNext: map[string]Gap{},
		}
		for _, c := range cats {
			st.Stats[c.Name] = l.value(c)
		}
		out[i] = st
	}

	names := make([]string, len(cats))
	order := make([]int, n)
	for k, c := range cats {
		names[k] = c.Name
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			va, vb := out[order[a]].Stats[c.Name], out[order[b]].Stats[c.Name]
			if c.LowerIsBetter {
				return va < vb
			}
			return va > vb
		})
		for rank, i := range order {
			out[i].Ranks[c.Name] = rank + 1
			out[i].Points[c.Name] = n - rank
			out[i].TotalPoints += n - rank
		}
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].TotalPoints > out[b].TotalPoints })
	for i := 1; i < n; i++ {
		ahead := out[i-1]
		for _, name := range names {
			out[i].GapsToNext[name] = Gap{
				Points: ahead.Points[name] - out[i].Points[name],
				Stats:  round(math.Abs(ahead.Stats[name]-out[i].Stats[name]), 2),
			}
		}
	}

	t := Table{Categories: names, Standings: out, Summary: Summary{Teams: n}}
	if n > 0 {
		t.Summary.Leader = out[0].TeamID
		t.Summary.LeaderPoints = out[0].TotalPoints
		t.Summary.LastPoints = out[n-1].TotalPoints
		t.Summary.Spread = t.Summary.LeaderPoints - t.Summary.LastPoints
	}
	return t
}
