package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/auctioneer/internal/adapters/repository"
)

const defaultLimit = 50

// ValuationHandler serves the valuation board.
type ValuationHandler struct {
	deps     ValuationDependencies
	maxLimit int
}

// NewValuationHandler creates a new valuation handler.
func NewValuationHandler(deps ValuationDependencies, maxLimit int) *ValuationHandler {
	return &ValuationHandler{deps: deps, maxLimit: maxLimit}
}

// HandleList handles GET /valuations?limit=N&slot=S&available=true.
func (h *ValuationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_valuations"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := repository.Query{Limit: defaultLimit, Slot: strings.ToUpper(r.URL.Query().Get("slot"))}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		q.Limit = n
	}
	if h.maxLimit > 0 && q.Limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	if s := r.URL.Query().Get("available"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		q.Available = v
	}

	board, err := h.deps.Valuations(r.Context(), q)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidLimit) {
			writeError(w, http.StatusBadRequest, "limit_exceeded", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// HandleGet handles GET /valuations/{player_id}.
func (h *ValuationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_valuation"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/valuations/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	v, err := h.deps.Valuation(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}
