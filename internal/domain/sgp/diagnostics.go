package sgp

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
)

// Diagnostic artifact names.
const (
	FileRankDistance    = "01_category_rank_distance.csv"
	FileGapDistribution = "02_category_gap_distribution.csv"
	FileDenominators    = "03_sgp_denominator_calculation.csv"
	FileSmoothing       = "04_multi_year_smoothing.csv"
	FileMarginalImpact  = "05_ratio_marginal_impact.csv"
)

// MarginalSample is one worked rate-category conversion.
type MarginalSample struct {
	PlayerID    string
	Name        string
	Type        league.PlayerType
	Rank        int
	Category    string
	Rate        float64
	Baseline    float64
	Exposure    float64
	Marginal    float64
	Denominator float64
	SGP         float64
	RawValue    float64
}

// Report collects everything the diagnostic artifacts are written from.
type Report struct {
	Gaps          []CategoryGaps
	Denominators  map[string]Denominator
	CategoryOrder []string
	Samples       []MarginalSample
}

// sampleRanks picks the worked-example rows from a pool of n players ranked by
// raw value: the top five, five around rank 50 and five near the replacement
// tier. Smaller pools get the middle and tail instead.
func sampleRanks(n int) []int {
	var idx []int
	add := func(from, to int) {
		for i := from; i < to && i < n; i++ {
			if i >= 0 {
				idx = append(idx, i)
			}
		}
	}
	add(0, 5)
	switch {
	case n >= 55:
		add(49, 54)
	case n >= 25:
		mid := n / 2
		add(mid-2, mid+3)
	}
	switch {
	case n >= 155:
		add(149, 154)
	case n >= 100:
		add(n-10, n-5)
	}
	sort.Ints(idx)
	out := idx[:0]
	for i, v := range idx {
		if i == 0 || v != idx[i-1] {
			out = append(out, v)
		}
	}
	return out
}

// SampleMarginals builds worked examples for the rate categories of type t.
// scored must be index-aligned with players.
func SampleMarginals(t league.PlayerType, players []model.Player, scored []Scored, categories []string, denoms map[string]Denominator, base Baseline) []MarginalSample {
	order := make([]int, len(players))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scored[order[a]].RawValue > scored[order[b]].RawValue })

	var out []MarginalSample
	for _, r := range sampleRanks(len(order)) {
		i := order[r]
		p := players[i]
		for _, name := range categories {
			c, ok := league.LookupCategory(name)
			if !ok || !c.Rate {
				continue
			}
			m, ok := scored[i].Marginal[name]
			if !ok {
				continue
			}
			rate, _ := c.Resolve(p.Stat)
			exposure, ok := p.Stat(c.Exposure)
			if !ok && c.Exposure == league.StatAB {
				exposure = p.Stats[league.StatPA] * league.ABPerPA
			}
			rb, _ := base.Rate(name)
			out = append(out, MarginalSample{
				PlayerID:    p.ID,
				Name:        p.Name,
				Type:        t,
				Rank:        r + 1,
				Category:    name,
				Rate:        rate,
				Baseline:    rb,
				Exposure:    exposure,
				Marginal:    m,
				Denominator: denoms[name].Value,
				SGP:         scored[i].SGP[name],
				RawValue:    scored[i].RawValue,
			})
		}
	}
	return out
}

// WriteDiagnostics writes the five CSV artifacts into dir, creating it.
func WriteDiagnostics(dir string, r Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create diagnostics dir: %w", err)
	}
	writers := []struct {
		name string
		rows func() [][]string
	}{
		{FileRankDistance, r.rankRows},
		{FileGapDistribution, r.distributionRows},
		{FileDenominators, r.denominatorRows},
		{FileSmoothing, r.smoothingRows},
		{FileMarginalImpact, r.marginalRows},
	}
	for _, w := range writers {
		if err := writeCSV(filepath.Join(dir, w.name), w.rows()); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

func (r Report) rankRows() [][]string {
	rows := [][]string{{"season", "category", "transform", "rank", "team", "value", "transformed", "gap_to_next"}}
	for _, g := range r.Gaps {
		for i, t := range g.Ranked {
			gap := ""
			if i < len(g.Gaps) {
				gap = ff(g.Gaps[i])
			}
			rows = append(rows, []string{
				strconv.Itoa(g.Season), g.Category, g.Transform, strconv.Itoa(t.Rank), t.Team,
				ff(t.Value), ff(t.Transformed), gap,
			})
		}
	}
	return rows
}

func (r Report) distributionRows() [][]string {
	rows := [][]string{{"season", "category", "transform", "min", "p25", "median", "p75", "max", "mean", "std", "num_gaps", "outliers"}}
	for _, g := range r.Gaps {
		d := Describe(g.Gaps)
		rows = append(rows, []string{
			strconv.Itoa(g.Season), g.Category, g.Transform,
			ff(d.Min), ff(d.P25), ff(d.Median), ff(d.P75), ff(d.Max), ff(d.Mean), ff(d.StdDev),
			strconv.Itoa(d.Count), strconv.Itoa(d.Outliers),
		})
	}
	return rows
}

func (r Report) denominatorRows() [][]string {
	rows := [][]string{{"season", "category", "median_gap", "mean_gap", "denominator", "method"}}
	for _, g := range r.Gaps {
		d := r.Denominators[g.Category]
		v, used := d.PerSeason[g.Season]
		den, method := "", "excluded"
		if used {
			den, method = ff(v), d.Methods[g.Season]
		}
		rows = append(rows, []string{strconv.Itoa(g.Season), g.Category, ff(g.Median), ff(g.Mean), den, method})
	}
	return rows
}

func (r Report) smoothingRows() [][]string {
	rows := [][]string{{"category", "seasons_used", "weights", "per_season", "smoothed"}}
	for _, name := range r.CategoryOrder {
		d, ok := r.Denominators[name]
		if !ok {
			continue
		}
		seasons := make([]string, len(d.SeasonsUsed))
		weights := make([]string, len(d.Weights))
		per := make([]string, len(d.SeasonsUsed))
		for i, s := range d.SeasonsUsed {
			seasons[i] = strconv.Itoa(s)
			weights[i] = ff(d.Weights[i])
			per[i] = ff(d.PerSeason[s])
		}
		rows = append(rows, []string{name, strings.Join(seasons, ";"), strings.Join(weights, ";"), strings.Join(per, ";"), ff(d.Value)})
	}
	return rows
}

func (r Report) marginalRows() [][]string {
	rows := [][]string{{"player_id", "player_name", "player_type", "rank", "category", "rate", "baseline", "exposure", "marginal_impact", "denominator", "sgp", "raw_value"}}
	for _, s := range r.Samples {
		rows = append(rows, []string{
			s.PlayerID, s.Name, s.Type.String(), strconv.Itoa(s.Rank), s.Category,
			ff(s.Rate), ff(s.Baseline), ff(s.Exposure), ff(s.Marginal), ff(s.Denominator), ff(s.SGP), ff(s.RawValue),
		})
	}
	return rows
}
