// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/auctioneer/internal/adapters/repository"
	"github.com/okian/auctioneer/internal/domain/dedupe"
	"github.com/okian/auctioneer/internal/domain/draft"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/internal/domain/roto"
	"github.com/okian/auctioneer/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PickDependencies
	ValuationDependencies
	TeamDependencies
	OutlookDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	picksHandler     *PicksHandler
	valuationHandler *ValuationHandler
	teamsHandler     *TeamsHandler
	outlookHandler   *OutlookHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		picksHandler:     NewPicksHandler(deps),
		valuationHandler: NewValuationHandler(deps, maxLimit),
		teamsHandler:     NewTeamsHandler(deps),
		outlookHandler:   NewOutlookHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/picks", MetricsMiddleware(s.picksHandler.HandlePostPick, "picks"))
	mux.HandleFunc("/valuations", MetricsMiddleware(s.valuationHandler.HandleList, "valuations"))
	mux.HandleFunc("/valuations/", MetricsMiddleware(s.valuationHandler.HandleGet, "valuation"))
	mux.HandleFunc("/teams", MetricsMiddleware(s.teamsHandler.HandleTeams, "teams"))
	mux.HandleFunc("/teams/", MetricsMiddleware(s.outlookHandler.HandleTeamNeeds, "team_needs"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.outlookHandler.HandleStandings, "standings"))
	mux.HandleFunc("/competition", MetricsMiddleware(s.outlookHandler.HandleCompetition, "competition"))
}

// PickDependencies defines what the picks endpoint needs.
type PickDependencies interface {
	dedupe.Deduper

	// ValidatePick checks a pick against the current draft state.
	ValidatePick(ctx context.Context, p model.PickEvent) error

	// Enqueue pushes a pick for async processing. Returns false on backpressure.
	Enqueue(ctx context.Context, p model.PickEvent) bool
}

// ValuationDependencies exposes the valuation board.
type ValuationDependencies interface {
	Valuations(ctx context.Context, q repository.Query) (types.Board, error)
	Valuation(ctx context.Context, playerID string) (model.Valuation, error)
}

// TeamDependencies exposes per-team draft summaries.
type TeamDependencies interface {
	Teams(ctx context.Context) []types.Team
}

// OutlookDependencies exposes projected standings, team needs and bidding
// competition.
type OutlookDependencies interface {
	Standings(ctx context.Context) (roto.Table, error)
	TeamNeeds(ctx context.Context, teamID string) (roto.TeamNeeds, error)
	Competition(ctx context.Context) (roto.Competition, error)
}

// pickRequest is the body of POST /picks.
type pickRequest struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	TeamID     string `json:"team_id"`
	Price      *int   `json:"price"`
}

func (p pickRequest) validate() error {
	switch {
	case strings.TrimSpace(p.PlayerID) == "":
		return errors.New("missing player_id")
	case strings.TrimSpace(p.TeamID) == "":
		return errors.New("missing team_id")
	case p.Price == nil:
		return errors.New("missing price")
	case *p.Price < 0:
		return errors.New("price must not be negative")
	}
	return nil
}

func (p pickRequest) event() model.PickEvent {
	return model.PickEvent{
		PlayerID:   strings.TrimSpace(p.PlayerID),
		PlayerName: p.PlayerName,
		TeamID:     strings.TrimSpace(p.TeamID),
		Price:      *p.Price,
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// pickRejection maps a draft rule violation to its HTTP status and code.
func pickRejection(err error) (int, string) {
	switch {
	case errors.Is(err, draft.ErrInvalidPick):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, draft.ErrUnknownTeam):
		return http.StatusConflict, "unknown_team"
	case errors.Is(err, draft.ErrUnknownPlayer):
		return http.StatusConflict, "unknown_player"
	case errors.Is(err, draft.ErrAlreadyDrafted):
		return http.StatusConflict, "already_drafted"
	case errors.Is(err, draft.ErrOverBudget):
		return http.StatusConflict, "over_budget"
	case errors.Is(err, draft.ErrRosterFull):
		return http.StatusConflict, "roster_full"
	}
	return http.StatusInternalServerError, "internal_error"
}
