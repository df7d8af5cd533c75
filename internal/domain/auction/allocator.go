// Package auction turns value above replacement into whole-dollar prices that
// spend a fixed budget.
package auction

import (
	"context"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/pkg/logger"
)

const stageAllocate = "allocate"

// Entry is one player competing for the allocatable budget.
type Entry struct {
	Type league.PlayerType
	VAR  float64
}

// Allocation is the priced outcome, index-aligned with the entries.
type Allocation struct {
	Prices []int
	// Exact holds the unrounded prices.
	Exact []float64

	HitterVAR      float64
	PitcherVAR     float64
	HitterDollars  float64
	PitcherDollars float64

	Budget      int
	Allocatable float64
	// Clamped is set when the minimum bids alone exceed the budget.
	Clamped   bool
	EvenSplit bool
	Clipped   int

	// Drift is budget minus the rounded total before reconciliation;
	// Residual is what is left after it.
	Drift      int
	Residual   int
	Reconciled bool
}

// Total is the sum of the final prices.
func (a Allocation) Total() int {
	t := 0
	for _, p := range a.Prices {
		t += p
	}
	return t
}

// Options tune Allocate.
type Options struct {
	MinBid int
	// Reconcile replaces independent rounding with a whole-dollar
	// apportionment of the budget above the minimum bids, so prices sum to
	// the budget exactly.
	Reconcile bool
}

// Allocate spends budget over entries. Every entry first receives MinBid; the
// rest is split between hitters and pitchers in proportion to their total VAR
// and then inside each group in proportion to each player's VAR. Prices are
// rounded half to even and never fall below MinBid.
func Allocate(ctx context.Context, entries []Entry, budget int, opts Options, notes *model.Notes) Allocation {
	n := len(entries)
	a := Allocation{
		Prices: make([]int, n),
		Exact:  make([]float64, n),
		Budget: budget,
	}
	minBid := float64(opts.MinBid)

	a.Allocatable = float64(budget) - float64(n)*minBid
	if a.Allocatable < 0 {
		notes.Warn(ctx, stageAllocate, "minimum bids exceed the budget, nothing left to allocate",
			logger.Int("budget", budget), logger.Int("players", n), logger.Int("min_bid", opts.MinBid))
		a.Allocatable = 0
		a.Clamped = true
	}

	hv := make([]float64, 0, n)
	pv := make([]float64, 0, n)
	for _, e := range entries {
		if e.Type == league.Pitcher {
			pv = append(pv, e.VAR)
		} else {
			hv = append(hv, e.VAR)
		}
	}
	a.HitterVAR, a.PitcherVAR = floats.Sum(hv), floats.Sum(pv)
	total := a.HitterVAR + a.PitcherVAR

	if total <= 0 {
		a.EvenSplit = true
		a.HitterDollars = a.Allocatable / 2
		a.PitcherDollars = a.Allocatable - a.HitterDollars
		notes.Warn(ctx, stageAllocate, "total VAR is zero, splitting evenly and pricing everyone at the minimum bid",
			logger.Int("players", n))
		for i := range entries {
			a.Prices[i] = opts.MinBid
			a.Exact[i] = minBid
		}
		a.Drift = budget - a.Total()
		a.Residual = a.Drift
		return a
	}

	a.HitterDollars = a.Allocatable * (a.HitterVAR / total)
	a.PitcherDollars = a.Allocatable - a.HitterDollars

	for i, e := range entries {
		groupVAR, groupDollars := a.HitterVAR, a.HitterDollars
		if e.Type == league.Pitcher {
			groupVAR, groupDollars = a.PitcherVAR, a.PitcherDollars
		}
		exact := minBid
		if e.VAR > 0 && groupVAR > 0 {
			exact = minBid + e.VAR/groupVAR*groupDollars
		}
		a.Exact[i] = exact

		p := int(decimal.NewFromFloat(exact).RoundBank(0).IntPart())
		if p < opts.MinBid {
			p = opts.MinBid
			a.Clipped++
		}
		a.Prices[i] = p
	}
	if a.Clipped > 0 {
		notes.Warn(ctx, stageAllocate, "rounded prices clipped to the minimum bid", logger.Int("players", a.Clipped))
	}

	a.Drift = budget - a.Total()
	a.Residual = a.Drift
	if opts.Reconcile && !a.Clamped && n > 0 {
		weights := make([]float64, n)
		for i, e := range entries {
			weights[i] = e.VAR
		}
		seats := budget - n*opts.MinBid
		for i, s := range Apportion(weights, seats) {
			a.Prices[i] = opts.MinBid + s
		}
		a.Clipped = 0
		a.Residual = budget - a.Total()
		a.Reconciled = true
	}
	return a
}
