package sgp

import (
	"context"
	"math"
	"sort"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/pkg/logger"
)

const stageBaseline = "baseline"

// tierFallback is where the replacement tier starts, as a share of the pool,
// when the pool is too small to reach past the roster cutoff.
const tierFallback = 0.65

// Baseline is the zero-value player of one type: assumed playing time and the
// rate stats rate categories are measured against.
type Baseline struct {
	Type        league.PlayerType  `json:"player_type"`
	PlayingTime float64            `json:"playing_time"`
	AtBats      float64            `json:"at_bats,omitempty"`
	Rates       map[string]float64 `json:"rates"`
	Overridden  map[string]bool    `json:"overridden,omitempty"`
	// Counting is the tier median of each counting category. Projected
	// standings fill open roster spots with it.
	Counting map[string]float64 `json:"counting,omitempty"`
	// TierStart and TierEnd bound the replacement tier in the pool sorted by
	// playing time, end exclusive.
	TierStart int `json:"tier_start"`
	TierEnd   int `json:"tier_end"`
	PoolSize  int `json:"pool_size"`
}

// Rate returns the baseline for a rate category.
func (b Baseline) Rate(category string) (float64, bool) {
	v, ok := b.Rates[category]
	return v, ok
}

// ComputeBaseline derives replacement rate stats for type t from the players
// just below the league-wide roster cutoff when ranked by playing time.
// Configured overrides win over derived values.
func ComputeBaseline(ctx context.Context, t league.PlayerType, players []model.Player, s league.Settings, notes *model.Notes) Baseline {
	b := Baseline{
		Type:        t,
		PlayingTime: s.ReplacementPlayingTime(t),
		Rates:       map[string]float64{},
		Overridden:  map[string]bool{},
		Counting:    map[string]float64{},
	}
	if t == league.Hitter {
		b.AtBats = b.PlayingTime * league.ABPerPA
	}

	pool := make([]model.Player, 0, len(players))
	for _, p := range players {
		if p.Type == t {
			pool = append(pool, p)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].PlayingTime() > pool[j].PlayingTime() })
	n := len(pool)
	b.PoolSize = n

	start := s.Rostered(t)
	end := start + s.ReplacementWindow(t)
	if n < end {
		start, end = int(tierFallback*float64(n)), n
		notes.Warn(ctx, stageBaseline, "pool too small for replacement window, using bottom of pool",
			logger.String("type", t.String()), logger.Int("pool", n), logger.Int("tier_start", start))
	}
	b.TierStart, b.TierEnd = start, end
	tier := pool[start:end]

	for _, name := range s.Categories(t) {
		cat, ok := league.LookupCategory(name)
		if !ok {
			continue
		}
		if !cat.Rate {
			if v := statMedian(tier, cat); !math.IsNaN(v) {
				b.Counting[name] = v
			}
			continue
		}
		if v, ok := s.Override(name); ok {
			b.Rates[name] = v
			b.Overridden[name] = true
			continue
		}
		v := statMedian(tier, cat)
		if math.IsNaN(v) {
			v = statMedian(pool, cat)
			notes.Warn(ctx, stageBaseline, "no tier player reports the rate, using pool median",
				logger.String("type", t.String()), logger.String("category", name))
		}
		if math.IsNaN(v) {
			v = 0
			notes.Warn(ctx, stageBaseline, "no player reports the rate, baseline is zero",
				logger.String("type", t.String()), logger.String("category", name))
		}
		b.Rates[name] = v
	}
	return b
}

func statMedian(players []model.Player, cat league.Category) float64 {
	vals := make([]float64, 0, len(players))
	for _, p := range players {
		if v, ok := cat.Resolve(p.Stat); ok && !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	return median(vals)
}
