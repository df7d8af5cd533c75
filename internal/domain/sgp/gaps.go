package sgp

import (
	"context"
	"sort"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/pkg/logger"
)

const stageGaps = "gaps"

// Transform names how team values were prepared before ranking.
const (
	TransformNone     = "none"
	TransformMarginal = "marginal"
	TransformRaw      = "raw"
)

// RankedTeam is one row of a season's category ranking.
type RankedTeam struct {
	Rank  int
	Team  string
	Value float64
	// Transformed is the value gaps are measured on; higher is always better.
	Transformed float64
}

// CategoryGaps holds the adjacent-rank gaps of one category in one season.
type CategoryGaps struct {
	Season    int
	Category  string
	Transform string
	Ranked    []RankedTeam
	Gaps      []float64
	Median    float64
	Mean      float64
	StdDev    float64
}

// AnalyzeGaps ranks the season's teams in cat and measures the gaps between
// adjacent ranks. Rate categories are measured on marginal impact against the
// season median scaled by each team's exposure; without an exposure column the
// raw rate is used instead. ok is false when the season did not score cat.
func AnalyzeGaps(ctx context.Context, s SeasonStandings, cat league.Category, notes *model.Notes) (CategoryGaps, bool) {
	if !s.Has(cat.Name) {
		return CategoryGaps{}, false
	}
	g := CategoryGaps{Season: s.Season, Category: cat.Name, Transform: TransformNone}

	values := make([]float64, len(s.Teams))
	for i, t := range s.Teams {
		values[i] = t.Values[cat.Name]
	}
	transformed := make([]float64, len(values))
	copy(transformed, values)

	if cat.Rate {
		exposure, ok := teamExposure(s, cat.TeamExposure)
		if ok {
			g.Transform = TransformMarginal
			med := median(values)
			for i, v := range values {
				transformed[i] = MarginalImpact(cat, v, med, exposure[i])
			}
		} else {
			g.Transform = TransformRaw
			notes.Warn(ctx, stageGaps, "exposure column missing, gaps measured on raw rate",
				logger.Int("season", s.Season), logger.String("category", cat.Name),
				logger.String("column", cat.TeamExposure))
		}
	}
	if cat.LowerIsBetter && g.Transform != TransformMarginal {
		for i := range transformed {
			transformed[i] = -transformed[i]
		}
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return transformed[order[a]] > transformed[order[b]] })

	g.Ranked = make([]RankedTeam, len(order))
	for r, i := range order {
		g.Ranked[r] = RankedTeam{Rank: r + 1, Team: s.Teams[i].Team, Value: values[i], Transformed: transformed[i]}
	}
	if len(order) > 1 {
		g.Gaps = make([]float64, len(order)-1)
		for r := 1; r < len(order); r++ {
			d := g.Ranked[r-1].Transformed - g.Ranked[r].Transformed
			if d < 0 {
				d = -d
			}
			g.Gaps[r-1] = d
		}
	}
	g.Median = median(g.Gaps)
	g.Mean, g.StdDev = meanStd(g.Gaps)
	return g, true
}

func teamExposure(s SeasonStandings, col string) ([]float64, bool) {
	if col == "" {
		return nil, false
	}
	out := make([]float64, len(s.Teams))
	for i, t := range s.Teams {
		v, ok := t.Value(col)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}
