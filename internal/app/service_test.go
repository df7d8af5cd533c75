package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/auctioneer/internal/adapters/repository"
	service "github.com/okian/auctioneer/internal/app"
	"github.com/okian/auctioneer/internal/domain/draft"
	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/internal/domain/roto"
	"github.com/okian/auctioneer/internal/domain/sgp"
	"github.com/okian/auctioneer/internal/domain/valuation"
	"github.com/okian/auctioneer/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testSettings() league.Settings {
	s := league.DefaultSettings()
	s.Teams = 2
	s.BudgetPerTeam = 50
	s.Roster = []league.Slot{
		{Name: "C", Count: 1, Type: league.Hitter},
		{Name: "1B", Count: 1, Type: league.Hitter},
		{Name: league.SlotOF, Count: 1, Type: league.Hitter},
		{Name: league.SlotUtil, Count: 1, Type: league.Hitter},
		{Name: league.SlotP, Count: 2, Type: league.Pitcher},
	}
	s.HitterCategories = []string{"R", "OBP"}
	s.PitcherCategories = []string{"K", "ERA"}
	s.Seasons = []int{2024}
	s.HitterWindow = 4
	s.PitcherWindow = 4
	return s
}

func testEngine() *valuation.Engine {
	st := sgp.SeasonStandings{Season: 2024, Categories: []string{"R", "OBP", "K", "ERA"}}
	r := []float64{900, 870, 840, 800}
	obp := []float64{0.340, 0.330, 0.325, 0.315}
	k := []float64{1400, 1350, 1300, 1200}
	era := []float64{3.5, 3.7, 3.9, 4.2}
	for i := range r {
		st.Teams = append(st.Teams, sgp.TeamTotals{
			Team:   fmt.Sprintf("team %d", i+1),
			Values: map[string]float64{"R": r[i], "OBP": obp[i], "AB": 5500, "K": k[i], "ERA": era[i], "IP": 1400},
		})
	}
	cal, err := valuation.NewCalibration(context.Background(), []sgp.SeasonStandings{st}, testSettings(), nil)
	So(err, ShouldBeNil)
	return valuation.NewEngine(cal)
}

func testPool() ([]model.Player, []model.Player) {
	positions := [][]string{{"C"}, {"1B"}, {"OF"}, {"1B", "OF"}}
	var hitters, pitchers []model.Player
	for i := 0; i < 8; i++ {
		pa := float64(650 - 20*i)
		hitters = append(hitters, model.Player{
			ID:        fmt.Sprintf("h%02d", i),
			Name:      fmt.Sprintf("Hitter %d", i),
			Type:      league.Hitter,
			Positions: positions[i%len(positions)],
			Stats:     map[string]float64{"PA": pa, "AB": pa * 0.88, "R": float64(100 - 7*i), "OBP": 0.360 - 0.005*float64(i)},
		})
	}
	for i := 0; i < 6; i++ {
		pitchers = append(pitchers, model.Player{
			ID:        fmt.Sprintf("p%02d", i),
			Name:      fmt.Sprintf("Pitcher %d", i),
			Type:      league.Pitcher,
			Positions: []string{"SP"},
			Stats:     map[string]float64{"IP": float64(200 - 10*i), "K": float64(220 - 15*i), "ERA": 3.0 + 0.2*float64(i)},
		})
	}
	return hitters, pitchers
}

// memLog is an in-memory PickLog.
type memLog struct {
	mu    sync.Mutex
	picks []model.PickEvent
	fail  error
}

func (m *memLog) Append(ctx context.Context, p model.PickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.picks = append(m.picks, p)
	return nil
}

func (m *memLog) List(ctx context.Context) ([]model.PickEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.PickEvent(nil), m.picks...), nil
}

func (m *memLog) Close() error { return nil }

func newService(log service.PickLog, opts ...service.Option) *service.Service {
	hitters, pitchers := testPool()
	base := []service.Option{
		service.WithEngine(testEngine()),
		service.WithPool(hitters, pitchers),
		service.WithPickLog(log),
		service.WithQueueSize(4),
	}
	return service.New(append(base, opts...)...)
}

func waitDrafted(svc *service.Service, id string) model.Valuation {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		v, err := svc.Valuation(context.Background(), id)
		if err == nil && v.Drafted {
			return v
		}
		time.Sleep(10 * time.Millisecond)
	}
	v, _ := svc.Valuation(context.Background(), id)
	return v
}

func TestService_Start(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service without an engine", t, func() {
		svc := service.New()

		Convey("Then it refuses to start", func() {
			So(errors.Is(svc.Start(ctx), service.ErrNoEngine), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a configured service", t, func() {
		log := &memLog{}
		svc := newService(log)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then the first board is published", func() {
			board, err := svc.Valuations(ctx, repository.Query{Limit: 100})
			So(err, ShouldBeNil)
			So(board.RunID, ShouldNotBeEmpty)
			So(board.Players, ShouldNotBeEmpty)
			total := 0
			for _, p := range board.Players {
				total += p.Price
			}
			So(total, ShouldEqual, 100)

			top, err := svc.TopN(ctx, 3)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 3)
			So(top[0].PlayerID, ShouldEqual, board.Players[0].PlayerID)
		})

		Convey("Then every team starts with a full budget", func() {
			teams := svc.Teams(ctx)
			So(teams, ShouldHaveLength, 2)
			So(teams[0].TeamID, ShouldEqual, "team_01")
			So(teams[0].BudgetRemaining, ShouldEqual, 50)
			So(teams[0].SpotsRemaining, ShouldEqual, 6)
			So(teams[0].MaxBid, ShouldEqual, 45)
		})

		Convey("Then stats describe the run", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["runs"], ShouldEqual, 1)
			So(stats["picks"], ShouldEqual, 0)
		})

		Convey("When starting again", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["runs"], ShouldEqual, 1)
		})
	})
}

func TestService_Picks(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with a keeper", t, func() {
		log := &memLog{}
		svc := newService(log, service.WithKeepers([]model.PickEvent{{PlayerID: "h00", Price: 10, Keeper: true}}))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then the keeper is seated, logged and priced as paid", func() {
			v, err := svc.Valuation(ctx, "h00")
			So(err, ShouldBeNil)
			So(v.Drafted, ShouldBeTrue)
			So(v.DraftedBy, ShouldEqual, "team_01")
			So(v.Price, ShouldEqual, 10)
			So(log.picks, ShouldHaveLength, 1)
			So(log.picks[0].PlayerName, ShouldEqual, "Hitter 0")
			So(svc.SeenAndRecord(ctx, "h00"), ShouldBeTrue)
		})

		Convey("When a pick goes through the queue", func() {
			pick := model.PickEvent{PlayerID: "h01", TeamID: "team_02", Price: 20}
			So(svc.ValidatePick(ctx, pick), ShouldBeNil)
			So(svc.SeenAndRecord(ctx, pick.PlayerID), ShouldBeFalse)
			So(svc.Enqueue(ctx, pick), ShouldBeTrue)

			Convey("Then the board is republished with the player drafted", func() {
				v := waitDrafted(svc, "h01")
				So(v.Drafted, ShouldBeTrue)
				So(v.Price, ShouldEqual, 20)
				So(svc.Teams(ctx)[1].BudgetRemaining, ShouldEqual, 30)

				board, err := svc.Valuations(ctx, repository.Query{Limit: 100, Available: true})
				So(err, ShouldBeNil)
				total := 0
				for _, p := range board.Players {
					So(p.Drafted, ShouldBeFalse)
					total += p.Price
				}
				So(total, ShouldEqual, 100-10-20)
			})
		})

		Convey("When a pick names an unknown player", func() {
			err := svc.ValidatePick(ctx, model.PickEvent{PlayerID: "nobody", TeamID: "team_01", Price: 1})
			So(errors.Is(err, draft.ErrUnknownPlayer), ShouldBeTrue)
		})

		Convey("When the worker meets a pick the draft rejects", func() {
			svc.SeenAndRecord(ctx, "h02")
			err := svc.Process(ctx, model.PickEvent{PlayerID: "h02", TeamID: "team_01", Price: 45})

			Convey("Then it fails and the player is released", func() {
				So(errors.Is(err, draft.ErrOverBudget), ShouldBeTrue)
				So(svc.SeenAndRecord(ctx, "h02"), ShouldBeFalse)
			})
		})

		Convey("When the pick log fails", func() {
			log.fail = errors.New("disk full")
			err := svc.Process(ctx, model.PickEvent{PlayerID: "h03", TeamID: "team_01", Price: 1})

			Convey("Then the draft is unchanged", func() {
				So(errors.Is(err, service.ErrNotPersisted), ShouldBeTrue)
				v, _ := svc.Valuation(ctx, "h03")
				So(v.Drafted, ShouldBeFalse)
			})
		})
	})
}

func TestService_Replay(t *testing.T) {
	ctx := context.Background()

	Convey("Given a draft that was interrupted", t, func() {
		log := &memLog{}
		first := newService(log, service.WithKeepers([]model.PickEvent{{PlayerID: "h00", TeamID: "team_02", Price: 5}}))
		So(first.Start(ctx), ShouldBeNil)
		So(first.Process(ctx, model.PickEvent{PlayerID: "p00", TeamID: "team_01", Price: 12}), ShouldBeNil)
		first.Stop()

		Convey("When a new service starts on the same log", func() {
			second := newService(log, service.WithKeepers([]model.PickEvent{{PlayerID: "h05", Price: 3}}))
			So(second.Start(ctx), ShouldBeNil)
			defer second.Stop()

			Convey("Then the logged picks are replayed and the keepers file is ignored", func() {
				So(second.GetStats()["picks"], ShouldEqual, 2)
				So(second.GetStats()["spent"], ShouldEqual, 17)
				v, _ := second.Valuation(ctx, "h05")
				So(v.Drafted, ShouldBeFalse)
				p, _ := second.Valuation(ctx, "p00")
				So(p.DraftedBy, ShouldEqual, "team_01")
				So(log.picks[1].PickNumber, ShouldEqual, 2)
			})
		})
	})
}

func TestService_Outlook(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service that has not started", t, func() {
		svc := newService(&memLog{})

		Convey("Then the analytics are unavailable", func() {
			_, err := svc.Standings(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.TeamNeeds(ctx, "team_01")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Competition(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})

	Convey("Given a started service with a keeper", t, func() {
		svc := newService(&memLog{}, service.WithKeepers([]model.PickEvent{{PlayerID: "h00", TeamID: "team_01", Price: 10}}))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the standings are projected", func() {
			table, err := svc.Standings(ctx)
			So(err, ShouldBeNil)

			Convey("Then both teams share the points of every category", func() {
				So(table.Summary.Teams, ShouldEqual, 2)
				So(table.Categories, ShouldResemble, []string{"R", "OBP", "K", "ERA"})
				total := 0
				for _, st := range table.Standings {
					total += st.TotalPoints
				}
				So(total, ShouldEqual, 4*3)
			})

			Convey("Then the keeper fills the catcher slot", func() {
				first, ok := table.Team("team_01")
				So(ok, ShouldBeTrue)
				So(first.OpenSlots[0], ShouldResemble, roto.SlotCount{Slot: "C", Type: league.Hitter, Open: 0})
			})
		})

		Convey("When the trailing team asks for its needs", func() {
			table, _ := svc.Standings(ctx)
			last := table.Standings[1]
			needs, err := svc.TeamNeeds(ctx, last.TeamID)
			So(err, ShouldBeNil)

			Convey("Then every category it trails in is listed", func() {
				behind := 0
				for _, rank := range last.Ranks {
					if rank > 1 {
						behind++
					}
				}
				So(needs.Needs, ShouldHaveLength, behind)
				for _, target := range needs.BestTargets {
					So(target.PlayerID, ShouldNotEqual, "h00")
				}
			})
		})

		Convey("When an unknown team asks for its needs", func() {
			_, err := svc.TeamNeeds(ctx, "team_09")
			So(errors.Is(err, roto.ErrUnknownTeam), ShouldBeTrue)
		})

		Convey("When competition is measured", func() {
			c, err := svc.Competition(ctx)
			So(err, ShouldBeNil)

			Convey("Then the richer team leads and totals reflect the keeper", func() {
				So(c.Teams[0].TeamID, ShouldEqual, "team_02")
				So(c.Totals.BudgetRemaining, ShouldEqual, 90)
				So(c.Totals.OpenSlots, ShouldEqual, 11)
				So(c.Positions, ShouldHaveLength, 5)
				So(c.Positions[0].Teams, ShouldResemble, []string{"team_02"})
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newService(&memLog{})
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it no longer accepts picks", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				So(svc.Enqueue(ctx, model.PickEvent{PlayerID: "h01", TeamID: "team_01", Price: 1}), ShouldBeFalse)
				_, err := svc.Valuations(ctx, repository.Query{Limit: 1})
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})

			Convey("Then stopping twice is harmless", func() {
				svc.Stop()
			})
		})
	})
}
