package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/auctioneer/internal/adapters/http/api"
	repository "github.com/okian/auctioneer/internal/adapters/repository"
	"github.com/okian/auctioneer/internal/domain/draft"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/internal/domain/roto"
	"github.com/okian/auctioneer/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDeduper struct {
	seen map[string]bool
}

func (m *mockDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDeduper) Unrecord(ctx context.Context, id string) {
	delete(m.seen, id)
}

func (m *mockDeduper) Size() int { return len(m.seen) }

type mockDeps struct {
	mockDeduper

	validateErr error
	enqueueOK   bool
	enqueued    []model.PickEvent
	board       []model.Valuation
	boardErr    error
	lastQuery   repository.Query
	teams       []types.Team
	table       roto.Table
	outlookErr  error
	needsFor    string
}

func (m *mockDeps) ValidatePick(ctx context.Context, p model.PickEvent) error {
	return m.validateErr
}

func (m *mockDeps) Enqueue(ctx context.Context, p model.PickEvent) bool {
	if !m.enqueueOK {
		return false
	}
	m.enqueued = append(m.enqueued, p)
	return true
}

func (m *mockDeps) Valuations(ctx context.Context, q repository.Query) (types.Board, error) {
	m.lastQuery = q
	if m.boardErr != nil {
		return types.Board{}, m.boardErr
	}
	out := m.board
	if q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return types.Board{RunID: "run-1", Total: len(m.board), Players: out}, nil
}

func (m *mockDeps) Valuation(ctx context.Context, id string) (model.Valuation, error) {
	for _, v := range m.board {
		if v.PlayerID == id {
			return v, nil
		}
	}
	return model.Valuation{}, fmt.Errorf("get %s: %w", id, repository.ErrNotFound)
}

func (m *mockDeps) Teams(ctx context.Context) []types.Team { return m.teams }

func (m *mockDeps) Standings(ctx context.Context) (roto.Table, error) {
	return m.table, m.outlookErr
}

func (m *mockDeps) TeamNeeds(ctx context.Context, teamID string) (roto.TeamNeeds, error) {
	m.needsFor = teamID
	if m.outlookErr != nil {
		return roto.TeamNeeds{}, m.outlookErr
	}
	if _, ok := m.table.Team(teamID); !ok {
		return roto.TeamNeeds{}, fmt.Errorf("needs: %w", roto.ErrUnknownTeam)
	}
	return roto.TeamNeeds{TeamID: teamID, Needs: []roto.Need{{Category: "SB", CurrentRank: 2, NextRank: 1}}}, nil
}

func (m *mockDeps) Competition(ctx context.Context) (roto.Competition, error) {
	if m.outlookErr != nil {
		return roto.Competition{}, m.outlookErr
	}
	return roto.Competition{Totals: roto.LeagueTotals{BudgetRemaining: 520, OpenSlots: 40}}, nil
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any { return m.stats }

func newMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]any{"picks": 3}}, 100).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var out map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{enqueueOK: true}
		mux := newMux(deps)

		Convey("Then health serves the metrics registry", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "auctioneer_")
		})

		Convey("Then stats are JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"picks":3`)
		})

		Convey("Then teams are listed", func() {
			deps.teams = []types.Team{{TeamID: "team_01", BudgetRemaining: 260, SpotsRemaining: 24, MaxBid: 237}}
			w := do(mux, http.MethodGet, "/teams", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var got []types.Team
			So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
			So(got, ShouldResemble, deps.teams)
		})

		Convey("Then the wrong method is not found", func() {
			So(do(mux, http.MethodPost, "/teams", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/picks", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPicksHandler(t *testing.T) {
	Convey("Given the picks endpoint", t, func() {
		deps := &mockDeps{enqueueOK: true}
		mux := newMux(deps)
		body := `{"player_id":"p1","team_id":"team_01","price":25}`

		Convey("When a valid pick is posted", func() {
			w := do(mux, http.MethodPost, "/picks", body)

			Convey("Then it is accepted and queued", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].Price, ShouldEqual, 25)
				So(deps.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same player is posted again before it is applied", func() {
			do(mux, http.MethodPost, "/picks", body)
			w := do(mux, http.MethodPost, "/picks", body)

			Convey("Then the second is a conflict", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decodeError(w)["code"], ShouldEqual, "duplicate")
				So(deps.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("When a zero price is posted", func() {
			w := do(mux, http.MethodPost, "/picks", `{"player_id":"p1","team_id":"team_01","price":0}`)
			So(w.Code, ShouldEqual, http.StatusAccepted)
		})

		Convey("When the body is malformed or incomplete", func() {
			So(do(mux, http.MethodPost, "/picks", `{`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/picks", `{"team_id":"team_01","price":1}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/picks", `{"player_id":"p1","team_id":"team_01"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/picks", `{"player_id":"p1","team_id":"team_01","price":-1}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the draft rejects the pick", func() {
			deps.validateErr = fmt.Errorf("%w: team_01", draft.ErrOverBudget)
			w := do(mux, http.MethodPost, "/picks", body)

			Convey("Then it is a conflict with the rule as code", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decodeError(w)["code"], ShouldEqual, "over_budget")
				So(deps.Size(), ShouldEqual, 0)
			})
		})

		Convey("When the queue is full", func() {
			deps.enqueueOK = false
			w := do(mux, http.MethodPost, "/picks", body)

			Convey("Then it reports backpressure and releases the player", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decodeError(w)["code"], ShouldEqual, "backpressure")
				So(deps.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestValuationHandler(t *testing.T) {
	Convey("Given a board with three players", t, func() {
		deps := &mockDeps{board: []model.Valuation{
			{PlayerID: "a", Price: 40, Slot: "SS"},
			{PlayerID: "b", Price: 20, Slot: "OF"},
			{PlayerID: "c", Price: 1, Slot: "OF"},
		}}
		mux := newMux(deps)

		Convey("When listing with a limit", func() {
			w := do(mux, http.MethodGet, "/valuations?limit=2&slot=of&available=true", "")

			Convey("Then the query is forwarded and the page returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastQuery, ShouldResemble, repository.Query{Limit: 2, Slot: "OF", Available: true})
				var b types.Board
				So(json.Unmarshal(w.Body.Bytes(), &b), ShouldBeNil)
				So(b.Players, ShouldHaveLength, 2)
				So(b.Total, ShouldEqual, 3)
			})
		})

		Convey("When no limit is given", func() {
			w := do(mux, http.MethodGet, "/valuations", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastQuery.Limit, ShouldEqual, 50)
		})

		Convey("When the limit is invalid or too large", func() {
			So(do(mux, http.MethodGet, "/valuations?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/valuations?limit=x", "").Code, ShouldEqual, http.StatusBadRequest)
			w := do(mux, http.MethodGet, "/valuations?limit=101", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "limit_exceeded")
			So(do(mux, http.MethodGet, "/valuations?available=maybe", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the board fails", func() {
			deps.boardErr = errors.New("boom")
			So(do(mux, http.MethodGet, "/valuations", "").Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When fetching one player", func() {
			w := do(mux, http.MethodGet, "/valuations/b", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var v model.Valuation
			So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
			So(v.Price, ShouldEqual, 20)
		})

		Convey("When the player is unknown or the path is malformed", func() {
			So(do(mux, http.MethodGet, "/valuations/zzz", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/valuations/a/b", "").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestOutlookHandler(t *testing.T) {
	Convey("Given a projected table of two teams", t, func() {
		deps := &mockDeps{table: roto.Table{
			Categories: []string{"SB"},
			Standings: []roto.Standing{
				{TeamID: "team_01", TotalPoints: 2},
				{TeamID: "team_02", TotalPoints: 1},
			},
			Summary: roto.Summary{Teams: 2, Leader: "team_01", LeaderPoints: 2, LastPoints: 1, Spread: 1},
		}}
		mux := newMux(deps)

		Convey("Then standings are served", func() {
			w := do(mux, http.MethodGet, "/standings", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var got roto.Table
			So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
			So(got.Summary, ShouldResemble, deps.table.Summary)
			So(got.Standings, ShouldHaveLength, 2)
		})

		Convey("Then competition is served", func() {
			w := do(mux, http.MethodGet, "/competition", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"total_budget_remaining":520`)
		})

		Convey("Then a team's needs are served by id", func() {
			w := do(mux, http.MethodGet, "/teams/team_02/needs", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.needsFor, ShouldEqual, "team_02")
			var got roto.TeamNeeds
			So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
			So(got.Needs[0].Category, ShouldEqual, "SB")
		})

		Convey("Then an unknown team is not found", func() {
			w := do(mux, http.MethodGet, "/teams/team_09/needs", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w)["code"], ShouldEqual, "unknown_team")
		})

		Convey("Then malformed team paths are rejected", func() {
			So(do(mux, http.MethodGet, "/teams/a/b/needs", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/teams/team_01", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/teams/team_01/needs", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then the team list still answers on its own path", func() {
			So(do(mux, http.MethodGet, "/teams", "").Code, ShouldEqual, http.StatusOK)
		})

		Convey("When the service is not ready", func() {
			deps.outlookErr = errors.New("service not started")

			Convey("Then every analytics route fails with a server error", func() {
				So(do(mux, http.MethodGet, "/standings", "").Code, ShouldEqual, http.StatusInternalServerError)
				So(do(mux, http.MethodGet, "/competition", "").Code, ShouldEqual, http.StatusInternalServerError)
				So(do(mux, http.MethodGet, "/teams/team_01/needs", "").Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("eof")
		err := api.WrapKind("api.post_pick", api.ErrBadRequest, cause)

		Convey("Then both the kind and the cause match", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.post_pick: bad request: eof")
		})

		Convey("Then Wrap keeps nil as nil", func() {
			So(api.Wrap("op", nil), ShouldBeNil)
			So(api.NewKind("op", api.ErrBackpressure).Error(), ShouldEqual, "op: backpressure")
		})
	})
}
