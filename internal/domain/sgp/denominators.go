package sgp

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/pkg/logger"
)

const stageDenominators = "denominators"

// Denominator methods.
const (
	MethodMedian = "median"
	MethodMean   = "mean"
)

// Denominator is the calibrated worth of one standings point in a category.
type Denominator struct {
	Category    string          `json:"category"`
	PerSeason   map[int]float64 `json:"per_season"`
	Methods     map[int]string  `json:"methods"`
	SeasonsUsed []int           `json:"seasons_used"`
	Weights     []float64       `json:"weights"`
	// Value is the recency-weighted average used for every conversion.
	Value float64 `json:"value"`
}

// Denominators calibrates every category in categories from the given seasons.
// weight returns the recency weight of a season. A category no season can
// calibrate fails the whole call with ErrCalibration.
func Denominators(ctx context.Context, standings []SeasonStandings, categories []string, weight func(int) float64, notes *model.Notes) (map[string]Denominator, []CategoryGaps, error) {
	seasons := make([]SeasonStandings, len(standings))
	copy(seasons, standings)
	sort.SliceStable(seasons, func(i, j int) bool { return seasons[i].Season < seasons[j].Season })

	out := make(map[string]Denominator, len(categories))
	var all []CategoryGaps
	for _, name := range categories {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		cat, ok := league.LookupCategory(name)
		if !ok {
			return nil, nil, fmt.Errorf("%w: unknown category %q", ErrCalibration, name)
		}
		d := Denominator{Category: name, PerSeason: map[int]float64{}, Methods: map[int]string{}}
		var vals []float64
		for _, s := range seasons {
			g, ok := AnalyzeGaps(ctx, s, cat, notes)
			if !ok {
				continue
			}
			all = append(all, g)
			v, method := g.Median, MethodMedian
			if !positive(v) {
				v, method = g.Mean, MethodMean
			}
			if !positive(v) {
				notes.Warn(ctx, stageDenominators, "degenerate gaps, season excluded",
					logger.Int("season", s.Season), logger.String("category", name))
				continue
			}
			d.PerSeason[s.Season] = v
			d.Methods[s.Season] = method
			d.SeasonsUsed = append(d.SeasonsUsed, s.Season)
			d.Weights = append(d.Weights, weight(s.Season))
			vals = append(vals, v)
		}
		if len(vals) == 0 {
			return nil, nil, fmt.Errorf("%w: no season yields a denominator for %s", ErrCalibration, name)
		}
		total := floats.Sum(d.Weights)
		if !positive(total) {
			return nil, nil, fmt.Errorf("%w: season weights for %s sum to %v", ErrCalibration, name, total)
		}
		d.Value = floats.Dot(vals, d.Weights) / total
		out[name] = d
	}
	return out, all, nil
}
