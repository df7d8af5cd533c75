package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/auctioneer/internal/domain/roto"
)

const needsSuffix = "/needs"

// OutlookHandler serves projected standings and bidding analytics.
type OutlookHandler struct {
	deps OutlookDependencies
}

// NewOutlookHandler creates a new outlook handler.
func NewOutlookHandler(deps OutlookDependencies) *OutlookHandler {
	return &OutlookHandler{deps: deps}
}

// HandleStandings handles GET /standings.
func (h *OutlookHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	const op = "api.standings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	table, err := h.deps.Standings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// HandleCompetition handles GET /competition.
func (h *OutlookHandler) HandleCompetition(w http.ResponseWriter, r *http.Request) {
	const op = "api.competition"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	c, err := h.deps.Competition(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleTeamNeeds handles GET /teams/{team_id}/needs.
func (h *OutlookHandler) HandleTeamNeeds(w http.ResponseWriter, r *http.Request) {
	const op = "api.team_needs"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/teams/")
	id, ok := strings.CutSuffix(rest, needsSuffix)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	needs, err := h.deps.TeamNeeds(r.Context(), id)
	if err != nil {
		if errors.Is(err, roto.ErrUnknownTeam) {
			writeError(w, http.StatusNotFound, "unknown_team", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, needs)
}
