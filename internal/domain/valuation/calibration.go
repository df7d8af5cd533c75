// Package valuation runs the full auction pipeline: SGP conversion, slot
// assignment, replacement levels and dollar allocation.
package valuation

import (
	"context"
	"fmt"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/internal/domain/sgp"
	"github.com/okian/auctioneer/pkg/logger"
)

// Calibration is the immutable context every run is priced against: league
// settings and the SGP denominators derived from historical standings.
type Calibration struct {
	settings league.Settings
	denoms   map[string]sgp.Denominator
	gaps     []sgp.CategoryGaps
	notes    []model.Note
}

// NewCalibration validates settings and calibrates every scoring category
// from the configured seasons of standings. Seasons outside the configuration
// are ignored.
func NewCalibration(ctx context.Context, standings []sgp.SeasonStandings, s league.Settings, log logger.Logger) (*Calibration, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	configured := make(map[int]bool, len(s.Seasons))
	for _, y := range s.SortedSeasons() {
		configured[y] = true
	}
	use := make([]sgp.SeasonStandings, 0, len(standings))
	for _, st := range standings {
		if configured[st.Season] {
			use = append(use, st)
		}
	}
	if len(use) == 0 {
		return nil, fmt.Errorf("%w: none of the configured seasons were loaded", sgp.ErrNoStandings)
	}

	notes := model.NewNotes(log)
	denoms, gaps, err := sgp.Denominators(ctx, use, s.AllCategories(), s.SeasonWeight, notes)
	if err != nil {
		return nil, err
	}
	return &Calibration{settings: s, denoms: denoms, gaps: gaps, notes: notes.List()}, nil
}

// Settings returns the league rules.
func (c *Calibration) Settings() league.Settings { return c.settings }

// Denominator returns the calibrated denominator of a category.
func (c *Calibration) Denominator(category string) (sgp.Denominator, bool) {
	d, ok := c.denoms[category]
	return d, ok
}

// Denominators returns a copy of every calibrated denominator.
func (c *Calibration) Denominators() map[string]sgp.Denominator {
	out := make(map[string]sgp.Denominator, len(c.denoms))
	for k, v := range c.denoms {
		out[k] = v
	}
	return out
}

// Gaps returns the per-season gap analysis behind the denominators.
func (c *Calibration) Gaps() []sgp.CategoryGaps {
	out := make([]sgp.CategoryGaps, len(c.gaps))
	copy(out, c.gaps)
	return out
}

// Notes returns warnings raised while calibrating.
func (c *Calibration) Notes() []model.Note {
	out := make([]model.Note, len(c.notes))
	copy(out, c.notes)
	return out
}
