package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/auctioneer/internal/domain/league"
)

// League converts the configuration into engine settings.
func (c *Config) League() (league.Settings, error) {
	s := league.Settings{
		Teams:             c.Teams,
		BudgetPerTeam:     c.BudgetPerTeam,
		MinBid:            c.MinBid,
		HitterCategories:  upper(c.HitterCategories),
		PitcherCategories: upper(c.PitcherCategories),
		Seasons:           append([]int(nil), c.Seasons...),
		SeasonWeights:     make(map[int]float64, len(c.SeasonWeights)),
		ReplacementPA:     c.ReplacementHitterPA,
		ReplacementIP:     c.ReplacementPitcherIP,
		HitterWindow:      c.ReplacementHitterWindow,
		PitcherWindow:     c.ReplacementPitcherWindow,
		MinPA:             c.MinPA,
		MinIP:             c.MinIP,
		ReconcileRounding: c.ReconcileRounding,
		Overrides: league.Overrides{
			OBP:  c.ReplacementOBP,
			SLG:  c.ReplacementSLG,
			ERA:  c.ReplacementERA,
			WHIP: c.ReplacementWHIP,
		},
	}
	for _, rs := range c.Roster {
		t, err := league.ParsePlayerType(rs.Type)
		if err != nil {
			return league.Settings{}, fmt.Errorf("%w: roster slot %q: %w", ErrInvalidConfig, rs.Slot, err)
		}
		s.Roster = append(s.Roster, league.Slot{Name: strings.ToUpper(strings.TrimSpace(rs.Slot)), Count: rs.Count, Type: t})
	}
	for k, w := range c.SeasonWeights {
		season, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return league.Settings{}, fmt.Errorf("%w: season weight key %q is not a year", ErrInvalidConfig, k)
		}
		s.SeasonWeights[season] = w
	}
	if err := s.Validate(); err != nil {
		return league.Settings{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return s, nil
}

func upper(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.ToUpper(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
