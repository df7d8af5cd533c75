package league

import (
	"fmt"
	"sort"
)

// Slot is one roster slot line: per-team count of a named slot.
type Slot struct {
	Name  string
	Count int
	Type  PlayerType
}

// SlotCapacity is a league-wide opening count for one slot.
type SlotCapacity struct {
	Name     string
	Capacity int
}

// Overrides fix replacement rate stats instead of deriving them from the pool.
type Overrides struct {
	OBP  *float64
	SLG  *float64
	ERA  *float64
	WHIP *float64
}

// Settings is the complete rule set of one league.
type Settings struct {
	Teams         int
	BudgetPerTeam int
	MinBid        int

	// Roster is ordered; the order breaks scarcity ties.
	Roster []Slot

	HitterCategories  []string
	PitcherCategories []string

	Seasons       []int
	SeasonWeights map[int]float64

	ReplacementPA float64
	ReplacementIP float64
	HitterWindow  int
	PitcherWindow int
	Overrides     Overrides

	MinPA float64
	MinIP float64

	// ReconcileRounding apportions whole dollars so prices sum to the budget.
	ReconcileRounding bool
}

// DefaultSettings returns a 12-team, $500 league with 13 hitter and 11
// pitcher slots per team.
func DefaultSettings() Settings {
	return Settings{
		Teams:         12,
		BudgetPerTeam: 500,
		MinBid:        1,
		Roster: []Slot{
			{Name: "C", Count: 1, Type: Hitter},
			{Name: "1B", Count: 1, Type: Hitter},
			{Name: "2B", Count: 1, Type: Hitter},
			{Name: "3B", Count: 1, Type: Hitter},
			{Name: "SS", Count: 1, Type: Hitter},
			{Name: SlotOF, Count: 3, Type: Hitter},
			{Name: SlotUtil, Count: 3, Type: Hitter},
			{Name: SlotBenchH, Count: 2, Type: Hitter},
			{Name: SlotP, Count: 8, Type: Pitcher},
			{Name: SlotBenchP, Count: 3, Type: Pitcher},
		},
		HitterCategories:  []string{"R", "RBI", "SB", "OBP", "SLG"},
		PitcherCategories: []string{"W_QS", "SV_HLD", "K", "ERA", "WHIP"},
		Seasons:           []int{2023, 2024, 2025},
		SeasonWeights:     map[int]float64{2023: 1.0, 2024: 1.5, 2025: 2.0},
		ReplacementPA:     450,
		ReplacementIP:     150,
		HitterWindow:      64,
		PitcherWindow:     48,
		MinPA:             50,
		MinIP:             20,
		ReconcileRounding: true,
	}
}

// TotalBudget is the league-wide auction budget.
func (s Settings) TotalBudget() int { return s.Teams * s.BudgetPerTeam }

// RosterSize is the per-team number of slots across both types.
func (s Settings) RosterSize() int {
	n := 0
	for _, sl := range s.Roster {
		n += sl.Count
	}
	return n
}

// Rostered is the league-wide number of slots for type t.
func (s Settings) Rostered(t PlayerType) int {
	n := 0
	for _, sl := range s.Roster {
		if sl.Type == t {
			n += sl.Count
		}
	}
	return n * s.Teams
}

// SlotPool returns the league-wide openings for type t in roster order.
func (s Settings) SlotPool(t PlayerType) []SlotCapacity {
	var out []SlotCapacity
	for _, sl := range s.Roster {
		if sl.Type == t {
			out = append(out, SlotCapacity{Name: sl.Name, Capacity: sl.Count * s.Teams})
		}
	}
	return out
}

// Categories returns the scoring categories for type t.
func (s Settings) Categories(t PlayerType) []string {
	if t == Pitcher {
		return s.PitcherCategories
	}
	return s.HitterCategories
}

// AllCategories returns hitter then pitcher categories.
func (s Settings) AllCategories() []string {
	out := make([]string, 0, len(s.HitterCategories)+len(s.PitcherCategories))
	out = append(out, s.HitterCategories...)
	return append(out, s.PitcherCategories...)
}

// SeasonWeight returns the recency weight for season; unknown seasons weigh 1.
func (s Settings) SeasonWeight(season int) float64 {
	if w, ok := s.SeasonWeights[season]; ok {
		return w
	}
	return 1.0
}

// SortedSeasons returns the configured seasons ascending without duplicates.
func (s Settings) SortedSeasons() []int {
	seen := make(map[int]struct{}, len(s.Seasons))
	out := make([]int, 0, len(s.Seasons))
	for _, y := range s.Seasons {
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// ReplacementWindow is the width of the replacement tier for type t.
func (s Settings) ReplacementWindow(t PlayerType) int {
	if t == Pitcher {
		return s.PitcherWindow
	}
	return s.HitterWindow
}

// ReplacementPlayingTime is the playing time assumed for a replacement player.
func (s Settings) ReplacementPlayingTime(t PlayerType) float64 {
	if t == Pitcher {
		return s.ReplacementIP
	}
	return s.ReplacementPA
}

// MinPlayingTime is the pool filter threshold for type t.
func (s Settings) MinPlayingTime(t PlayerType) float64 {
	if t == Pitcher {
		return s.MinIP
	}
	return s.MinPA
}

// Override returns a fixed replacement rate for a rate category.
func (s Settings) Override(category string) (float64, bool) {
	var p *float64
	switch category {
	case "OBP":
		p = s.Overrides.OBP
	case "SLG":
		p = s.Overrides.SLG
	case "ERA":
		p = s.Overrides.ERA
	case "WHIP":
		p = s.Overrides.WHIP
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Validate checks the rule set for internal consistency.
func (s Settings) Validate() error {
	if s.Teams < 1 {
		return fmt.Errorf("%w: teams must be at least 1", ErrInvalidSettings)
	}
	if s.BudgetPerTeam <= 0 {
		return fmt.Errorf("%w: budget per team must be positive", ErrInvalidSettings)
	}
	if s.MinBid < 0 {
		return fmt.Errorf("%w: minimum bid must not be negative", ErrInvalidSettings)
	}
	if len(s.Roster) == 0 {
		return fmt.Errorf("%w: roster is empty", ErrInvalidSettings)
	}
	names := make(map[string]struct{}, len(s.Roster))
	for _, sl := range s.Roster {
		if sl.Name == "" {
			return fmt.Errorf("%w: roster slot without a name", ErrInvalidSettings)
		}
		if _, dup := names[sl.Name]; dup {
			return fmt.Errorf("%w: duplicate roster slot %q", ErrInvalidSettings, sl.Name)
		}
		names[sl.Name] = struct{}{}
		if sl.Count < 0 {
			return fmt.Errorf("%w: slot %q has a negative count", ErrInvalidSettings, sl.Name)
		}
		if !sl.Type.Valid() {
			return fmt.Errorf("%w: slot %q has no player type", ErrInvalidSettings, sl.Name)
		}
	}
	for _, t := range Types() {
		for _, name := range s.Categories(t) {
			c, ok := LookupCategory(name)
			if !ok {
				return fmt.Errorf("%w: unknown category %q", ErrInvalidSettings, name)
			}
			if c.Type != t {
				return fmt.Errorf("%w: category %q is not a %s category", ErrInvalidSettings, name, t)
			}
		}
	}
	if len(s.Seasons) == 0 {
		return fmt.Errorf("%w: at least one season is required", ErrInvalidSettings)
	}
	for season, w := range s.SeasonWeights {
		if w < 0 {
			return fmt.Errorf("%w: season %d has a negative weight", ErrInvalidSettings, season)
		}
	}
	if s.HitterWindow < 1 || s.PitcherWindow < 1 {
		return fmt.Errorf("%w: replacement windows must be positive", ErrInvalidSettings)
	}
	return nil
}
