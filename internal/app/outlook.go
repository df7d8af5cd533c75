package service

import (
	"context"
	"fmt"

	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/internal/domain/roto"
	"github.com/okian/auctioneer/internal/domain/sgp"
	"github.com/okian/auctioneer/pkg/logger"
)

// Standings projects the final roto table from the current rosters, filling
// open spots with the last run's replacement baselines.
func (s *Service) Standings(ctx context.Context) (roto.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return roto.Table{}, ErrNotStarted
	}
	return s.project(), nil
}

// TeamNeeds lists where teamID can gain roto points and who on the board
// would help.
func (s *Service) TeamNeeds(ctx context.Context, teamID string) (roto.TeamNeeds, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return roto.TeamNeeds{}, ErrNotStarted
	}
	var (
		team  roto.Roster
		found bool
	)
	for _, r := range s.rosters() {
		if r.TeamID == teamID {
			team, found = r, true
			break
		}
	}
	if !found {
		return roto.TeamNeeds{}, fmt.Errorf("%w: %q", roto.ErrUnknownTeam, teamID)
	}

	var available []model.Valuation
	if s.lastRun != nil {
		available = s.lastRun.Players
	}
	needs, err := roto.Needs(s.project(), team, available)
	if err != nil {
		return roto.TeamNeeds{}, err
	}
	s.logger.Debug(ctx, "team needs computed",
		logger.String("team_id", teamID),
		logger.Int("needs", len(needs.Needs)),
	)
	return needs, nil
}

// Competition reports who can still bid and where.
func (s *Service) Competition(ctx context.Context) (roto.Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return roto.Competition{}, ErrNotStarted
	}
	return roto.Compete(s.settings, s.rosters()), nil
}

// project must be called with s.mu held.
func (s *Service) project() roto.Table {
	var baselines []sgp.Baseline
	if s.lastRun != nil {
		baselines = s.lastRun.Baselines
	}
	return roto.Project(s.settings, s.rosters(), baselines)
}

// rosters groups drafted players by team in pick order. Picks for players
// outside the projected pool carry no stats and are skipped. Must be called
// with s.mu held.
func (s *Service) rosters() []roto.Roster {
	byTeam := make(map[string][]model.Player)
	for _, p := range s.draft.Picks() {
		if pl, ok := s.players[p.PlayerID]; ok {
			byTeam[p.TeamID] = append(byTeam[p.TeamID], pl)
		}
	}
	sum := s.draft.Summary()
	out := make([]roto.Roster, 0, len(sum))
	for _, t := range sum {
		out = append(out, roto.Roster{
			TeamID:          t.TeamID,
			BudgetRemaining: t.BudgetRemaining,
			SpotsRemaining:  t.SpotsRemaining,
			Players:         byTeam[t.TeamID],
		})
	}
	return out
}
