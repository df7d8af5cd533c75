package service

import (
	"context"
	"fmt"

	"github.com/okian/auctioneer/internal/adapters/projections"
	"github.com/okian/auctioneer/internal/config"
	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/internal/domain/sgp"
	"github.com/okian/auctioneer/internal/domain/valuation"
	"github.com/okian/auctioneer/pkg/logger"
	"github.com/okian/auctioneer/pkg/metrics"
)

// Inputs is everything a valuation run needs, loaded from configuration.
type Inputs struct {
	Settings league.Settings
	Engine   *valuation.Engine
	Hitters  []model.Player
	Pitchers []model.Player
	Keepers  []model.PickEvent
	// Notes are the recoverable conditions met while loading and
	// calibrating.
	Notes []model.Note
}

// LoadInputs reads standings, projections and keepers named by cfg and
// calibrates the engine.
func LoadInputs(ctx context.Context, cfg *config.Config, log logger.Logger) (*Inputs, error) {
	if log == nil {
		log = logger.Nop()
	}
	s, err := cfg.League()
	if err != nil {
		return nil, err
	}
	notes := model.NewNotes(log)

	standings, err := sgp.LoadStandings(ctx, cfg.StandingsDir, s.SortedSeasons(), s.Teams, notes)
	if err != nil {
		return nil, fmt.Errorf("load standings: %w", err)
	}
	cal, err := valuation.NewCalibration(ctx, standings, s, log)
	if err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}
	for _, d := range cal.Denominators() {
		metrics.UpdateCategoryDenominator(d.Category, d.Value)
		log.Debug(ctx, "denominator",
			logger.String("category", d.Category),
			logger.Float64("value", d.Value),
			logger.Int("seasons", len(d.SeasonsUsed)),
		)
	}

	hitters, err := projections.Load(ctx, league.Hitter, cfg.HittersFiles, s, notes)
	if err != nil {
		return nil, fmt.Errorf("load hitters: %w", err)
	}
	pitchers, err := projections.Load(ctx, league.Pitcher, cfg.PitchersFiles, s, notes)
	if err != nil {
		return nil, fmt.Errorf("load pitchers: %w", err)
	}
	keepers, err := projections.LoadKeepers(cfg.KeepersFile)
	if err != nil {
		return nil, err
	}

	return &Inputs{
		Settings: s,
		Engine:   valuation.NewEngine(cal, valuation.WithLogger(log.Named("engine"))),
		Hitters:  hitters,
		Pitchers: pitchers,
		Keepers:  keepers,
		Notes:    append(notes.List(), cal.Notes()...),
	}, nil
}
