package sgp

import (
	"context"
	"fmt"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/pkg/logger"
)

const stageConvert = "convert"

// Scored is one player's SGP line.
type Scored struct {
	SGP map[string]float64
	// Marginal holds the marginal impact of each rate category.
	Marginal map[string]float64
	RawValue float64
}

// MarginalImpact is the rate's contribution relative to baseline, scaled by
// exposure and oriented so that positive is always good.
func MarginalImpact(cat league.Category, rate, baseline, exposure float64) float64 {
	d := rate - baseline
	if cat.LowerIsBetter {
		d = -d
	}
	return d * exposure
}

// Convert scores every player of type t. Output is index-aligned with players.
// Missing statistics count as zero and are noted once per category.
func Convert(ctx context.Context, t league.PlayerType, players []model.Player, categories []string, denoms map[string]Denominator, base Baseline, notes *model.Notes) ([]Scored, error) {
	cats := make([]league.Category, 0, len(categories))
	for _, name := range categories {
		c, ok := league.LookupCategory(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", ErrCalibration, name)
		}
		d, ok := denoms[name]
		if !ok || !positive(d.Value) {
			return nil, fmt.Errorf("%w: no denominator for %s", ErrCalibration, name)
		}
		cats = append(cats, c)
	}

	missing := make(map[string]int)
	estimatedAB := 0
	out := make([]Scored, len(players))
	for i, p := range players {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		s := Scored{SGP: make(map[string]float64, len(cats))}
		for _, c := range cats {
			denom := denoms[c.Name].Value
			v, ok := c.Resolve(p.Stat)
			if !ok {
				missing[c.Name]++
				s.SGP[c.Name] = 0
				continue
			}
			if !c.Rate {
				s.SGP[c.Name] = v / denom
				s.RawValue += s.SGP[c.Name]
				continue
			}
			exposure, ok := p.Stat(c.Exposure)
			if !ok && c.Exposure == league.StatAB {
				exposure = p.Stats[league.StatPA] * league.ABPerPA
				estimatedAB++
			}
			rb, _ := base.Rate(c.Name)
			m := MarginalImpact(c, v, rb, exposure)
			if s.Marginal == nil {
				s.Marginal = make(map[string]float64, 2)
			}
			s.Marginal[c.Name] = m
			s.SGP[c.Name] = m / denom
			s.RawValue += s.SGP[c.Name]
		}
		out[i] = s
	}

	for _, c := range cats {
		if n := missing[c.Name]; n > 0 {
			notes.Warn(ctx, stageConvert, "statistic missing, treated as zero",
				logger.String("type", t.String()), logger.String("category", c.Name), logger.Int("players", n))
		}
	}
	if estimatedAB > 0 {
		notes.Warn(ctx, stageConvert, "AB missing, estimated from PA",
			logger.String("type", t.String()), logger.Int("players", estimatedAB))
	}
	return out, nil
}
