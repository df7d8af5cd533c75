package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/auctioneer/internal/domain/types"
)

// PicksHandler accepts auction picks.
type PicksHandler struct {
	deps PickDependencies
}

// NewPicksHandler creates a new picks handler.
func NewPicksHandler(deps PickDependencies) *PicksHandler {
	return &PicksHandler{deps: deps}
}

// HandlePostPick handles POST /picks. The pick is validated against the
// draft here; the worker applies it and republishes the board.
func (h *PicksHandler) HandlePostPick(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_pick"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req pickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	pick := req.event()

	if err := h.deps.ValidatePick(r.Context(), pick); err != nil {
		status, code := pickRejection(err)
		writeError(w, status, code, WrapKind(op, ErrRejected, err))
		return
	}

	// A pick for this player is already in flight.
	if h.deps.SeenAndRecord(r.Context(), pick.PlayerID) {
		writeError(w, http.StatusConflict, "duplicate", NewKind(op, ErrDuplicate))
		return
	}

	if ok := h.deps.Enqueue(r.Context(), pick); !ok {
		h.deps.Unrecord(r.Context(), pick.PlayerID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, types.Ack{Status: "accepted", PlayerID: pick.PlayerID, TeamID: pick.TeamID})
}
