package valuation

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/auctioneer/internal/domain/auction"
	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/internal/domain/optimizer"
	"github.com/okian/auctioneer/internal/domain/replacement"
	"github.com/okian/auctioneer/internal/domain/sgp"
	"github.com/okian/auctioneer/pkg/logger"
)

const stageEngine = "engine"

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes run warnings through log.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithSamples toggles worked marginal-impact examples in the report.
func WithSamples(on bool) Option {
	return func(e *Engine) { e.samples = on }
}

// Engine prices a player pool against a calibration. It holds no mutable
// state, so one Engine may serve concurrent runs.
type Engine struct {
	cal     *Calibration
	log     logger.Logger
	samples bool
}

// NewEngine creates an engine over cal.
func NewEngine(cal *Calibration, opts ...Option) *Engine {
	e := &Engine{cal: cal, log: logger.Nop(), samples: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calibration returns the context the engine prices against.
func (e *Engine) Calibration() *Calibration { return e.cal }

// Input is an immutable snapshot of the pool and draft.
type Input struct {
	Hitters  []model.Player
	Pitchers []model.Player
	// Pins maps drafted player IDs to their pick.
	Pins map[string]model.Pin
}

// Budget summarizes how the league budget was spent.
type Budget struct {
	Total          int     `json:"total"`
	Spent          int     `json:"spent"`
	Available      int     `json:"available"`
	Allocatable    float64 `json:"allocatable"`
	HitterVAR      float64 `json:"hitter_var"`
	PitcherVAR     float64 `json:"pitcher_var"`
	HitterDollars  float64 `json:"hitter_dollars"`
	PitcherDollars float64 `json:"pitcher_dollars"`
	Priced         int     `json:"priced"`
	EvenSplit      bool    `json:"even_split"`
	Clamped        bool    `json:"clamped"`
	Drift          int     `json:"drift"`
	Residual       int     `json:"residual"`
}

// Result is the output of one run. Players are ordered by price, then raw
// value, then type, then input order.
type Result struct {
	Players      []model.Valuation          `json:"players"`
	Unassigned   []model.Unassigned         `json:"unassigned"`
	Baselines    []sgp.Baseline             `json:"baselines"`
	Levels       map[string]float64         `json:"replacement_levels"`
	Denominators map[string]sgp.Denominator `json:"denominators"`
	Budget       Budget                     `json:"budget"`
	Notes        []model.Note               `json:"notes"`
	Report       sgp.Report                 `json:"-"`
}

// row carries one player through the stages.
type row struct {
	player model.Player
	scored sgp.Scored
	index  int
	slot   string
	pin    *model.Pin
	level  float64
	vAR    float64
	price  int
}

// Run prices in. It checks ctx between stages and returns no partial result
// when cancelled. A calibration gap is fatal and wraps sgp.ErrCalibration.
func (e *Engine) Run(ctx context.Context, in Input) (*Result, error) {
	s := e.cal.settings
	notes := model.NewNotes(e.log)
	res := &Result{
		Levels:       map[string]float64{},
		Denominators: e.cal.Denominators(),
		Report: sgp.Report{
			Gaps:          e.cal.Gaps(),
			Denominators:  e.cal.Denominators(),
			CategoryOrder: s.AllCategories(),
		},
	}

	var rows []*row
	seen := make(map[string]bool, len(in.Hitters)+len(in.Pitchers))
	for _, t := range league.Types() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pool := in.Hitters
		if t == league.Pitcher {
			pool = in.Pitchers
		}
		players := make([]model.Player, 0, len(pool))
		for _, p := range pool {
			if p.Type != t {
				notes.Warn(ctx, stageEngine, "player listed under the wrong type, skipped",
					logger.String("player_id", p.ID), logger.String("type", t.String()))
				continue
			}
			players = append(players, p)
			seen[p.ID] = true
		}

		typed, err := e.runType(ctx, t, players, in.Pins, res, notes)
		if err != nil {
			return nil, err
		}
		rows = append(rows, typed...)
	}

	spent := 0
	ids := make([]string, 0, len(in.Pins))
	for id, pin := range in.Pins {
		spent += pin.Price
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !seen[id] {
			notes.Warn(ctx, stageEngine, "drafted player not in projections", logger.String("player_id", id))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.price(ctx, rows, spent, res, notes)

	res.Notes = notes.List()
	return res, nil
}

// runType converts, assigns and levels one player type.
func (e *Engine) runType(ctx context.Context, t league.PlayerType, players []model.Player, pins map[string]model.Pin, res *Result, notes *model.Notes) ([]*row, error) {
	s := e.cal.settings
	cats := s.Categories(t)

	base := sgp.ComputeBaseline(ctx, t, players, s, notes)
	res.Baselines = append(res.Baselines, base)

	scored, err := sgp.Convert(ctx, t, players, cats, e.cal.denoms, base, notes)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", t, err)
	}
	if e.samples {
		res.Report.Samples = append(res.Report.Samples,
			sgp.SampleMarginals(t, players, scored, cats, e.cal.denoms, base)...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cands := make([]optimizer.Candidate, len(players))
	rows := make([]*row, len(players))
	for i, p := range players {
		r := &row{player: p, scored: scored[i], index: i}
		cands[i] = optimizer.Candidate{ID: p.ID, Positions: p.Positions, Value: scored[i].RawValue}
		if pin, ok := pins[p.ID]; ok {
			r.pin = &pin
			cands[i].Pinned = true
			cands[i].PickOrder = pin.PickNumber
		}
		rows[i] = r
	}

	slotPool := s.SlotPool(t)
	assigned := optimizer.Assign(t, slotPool, cands)
	for _, a := range assigned.Assignments {
		rows[a.Index].slot = a.Slot
	}
	for _, u := range assigned.Unplaced {
		r := rows[u.Index]
		res.Unassigned = append(res.Unassigned, model.Unassigned{
			PlayerID: r.player.ID,
			Name:     r.player.Name,
			Type:     t,
			RawValue: r.scored.RawValue,
			Reason:   u.Reason,
			Drafted:  r.pin != nil,
		})
		if r.pin != nil {
			notes.Warn(ctx, stageEngine, "drafted player has no open eligible slot",
				logger.String("player_id", r.player.ID), logger.String("reason", u.Reason))
		}
	}
	if n := len(assigned.Unplaced); n > 0 {
		notes.Warn(ctx, stageEngine, "players left unassigned",
			logger.String("type", t.String()), logger.Int("players", n))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slotNames := make([]string, len(slotPool))
	for i, sl := range slotPool {
		slotNames[i] = sl.Name
	}
	members := make([]replacement.Member, len(rows))
	for i, r := range rows {
		members[i] = replacement.Member{Slot: r.slot, Value: r.scored.RawValue, Pinned: r.pin != nil}
	}
	levels := replacement.Levels(slotNames, members)
	vars := replacement.Apply(levels, members)
	for i, r := range rows {
		if r.slot == "" {
			continue
		}
		r.level = levels[r.slot]
		r.vAR = vars[i]
	}
	for k, v := range levels {
		res.Levels[k] = v
	}

	out := rows[:0]
	for _, r := range rows {
		if r.slot != "" {
			out = append(out, r)
		}
	}
	return out, nil
}

// price allocates the remaining budget over undrafted rows, ranks them and
// fills res.Players.
func (e *Engine) price(ctx context.Context, rows []*row, spent int, res *Result, notes *model.Notes) {
	s := e.cal.settings

	var open []*row
	for _, r := range rows {
		if r.pin == nil {
			open = append(open, r)
		} else {
			r.price = r.pin.Price
		}
	}
	entries := make([]auction.Entry, len(open))
	for i, r := range open {
		entries[i] = auction.Entry{Type: r.player.Type, VAR: r.vAR}
	}
	available := s.TotalBudget() - spent
	alloc := auction.Allocate(ctx, entries, available, auction.Options{
		MinBid:    s.MinBid,
		Reconcile: s.ReconcileRounding,
	}, notes)
	for i, r := range open {
		r.price = alloc.Prices[i]
	}

	res.Budget = Budget{
		Total:          s.TotalBudget(),
		Spent:          spent,
		Available:      available,
		Allocatable:    alloc.Allocatable,
		HitterVAR:      alloc.HitterVAR,
		PitcherVAR:     alloc.PitcherVAR,
		HitterDollars:  alloc.HitterDollars,
		PitcherDollars: alloc.PitcherDollars,
		Priced:         len(open),
		EvenSplit:      alloc.EvenSplit,
		Clamped:        alloc.Clamped,
		Drift:          alloc.Drift,
		Residual:       alloc.Residual,
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.price != b.price {
			return a.price > b.price
		}
		if a.scored.RawValue != b.scored.RawValue {
			return a.scored.RawValue > b.scored.RawValue
		}
		if a.player.Type != b.player.Type {
			return a.player.Type < b.player.Type
		}
		return a.index < b.index
	})

	prices := make([]int, len(rows))
	slots := make([]string, len(rows))
	undrafted := make([]bool, len(rows))
	for i, r := range rows {
		prices[i], slots[i], undrafted[i] = r.price, r.slot, r.pin == nil
	}
	overall := auction.RankMin(prices, undrafted)
	within := auction.RankWithin(prices, slots, undrafted)

	res.Players = make([]model.Valuation, len(rows))
	for i, r := range rows {
		v := model.Valuation{
			PlayerID:         r.player.ID,
			Name:             r.player.Name,
			Team:             r.player.Team,
			Type:             r.player.Type,
			Positions:        r.player.Positions,
			Slot:             r.slot,
			SGP:              r.scored.SGP,
			RawValue:         r.scored.RawValue,
			ReplacementLevel: r.level,
			VAR:              r.vAR,
			Price:            r.price,
			OverallRank:      overall[i],
			SlotRank:         within[i],
		}
		if r.pin != nil {
			v.Drafted = true
			v.DraftedBy = r.pin.TeamID
		}
		res.Players[i] = v
	}
}
