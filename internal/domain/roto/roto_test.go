package roto_test

import (
	"errors"
	"testing"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/internal/domain/roto"
	"github.com/okian/auctioneer/internal/domain/sgp"
	. "github.com/smartystreets/goconvey/convey"
)

func tinyLeague() league.Settings {
	s := league.DefaultSettings()
	s.Teams = 3
	s.Roster = []league.Slot{
		{Name: "C", Count: 1, Type: league.Hitter},
		{Name: league.SlotUtil, Count: 2, Type: league.Hitter},
		{Name: league.SlotP, Count: 1, Type: league.Pitcher},
	}
	s.HitterCategories = []string{"R", "OBP"}
	s.PitcherCategories = []string{"K", "ERA"}
	return s
}

func baselines() []sgp.Baseline {
	return []sgp.Baseline{
		{Type: league.Hitter, PlayingTime: 500, AtBats: 425, Rates: map[string]float64{"OBP": 0.300}, Counting: map[string]float64{"R": 50}},
		{Type: league.Pitcher, PlayingTime: 100, Rates: map[string]float64{"ERA": 5.00}, Counting: map[string]float64{"K": 80}},
	}
}

func hitter(id string, r, obp, pa float64, positions ...string) model.Player {
	return model.Player{ID: id, Type: league.Hitter, Positions: positions,
		Stats: map[string]float64{"R": r, "OBP": obp, "PA": pa}}
}

func pitcher(id string, k, era, ip float64) model.Player {
	return model.Player{ID: id, Type: league.Pitcher, Positions: []string{"SP"},
		Stats: map[string]float64{"K": k, "ERA": era, "IP": ip}}
}

func rosters() []roto.Roster {
	return []roto.Roster{
		{TeamID: "team_01", BudgetRemaining: 100, SpotsRemaining: 2,
			Players: []model.Player{hitter("a", 100, 0.400, 600, "C"), pitcher("x", 200, 3.00, 180)}},
		{TeamID: "team_02", BudgetRemaining: 200, SpotsRemaining: 3,
			Players: []model.Player{hitter("b", 80, 0.350, 500, "1B")}},
		{TeamID: "team_03", BudgetRemaining: 300, SpotsRemaining: 4},
	}
}

func TestOpenSlots(t *testing.T) {
	Convey("Given the default roster", t, func() {
		s := league.DefaultSettings()
		open := func(sc []roto.SlotCount, name string) int {
			for _, c := range sc {
				if c.Slot == name {
					return c.Open
				}
			}
			return -1
		}

		Convey("When two shortstops are drafted", func() {
			sc := roto.OpenSlots(s, []model.Player{
				hitter("first", 0, 0, 0, "SS", "2B"),
				hitter("second", 0, 0, 0, "SS"),
			})

			Convey("Then the first takes SS and the second falls to utility", func() {
				So(open(sc, "SS"), ShouldEqual, 0)
				So(open(sc, "2B"), ShouldEqual, 1)
				So(open(sc, league.SlotUtil), ShouldEqual, 2)
			})
		})

		Convey("When a hitter lists a pitcher slot", func() {
			sc := roto.OpenSlots(s, []model.Player{hitter("odd", 0, 0, 0, "P")})

			Convey("Then the slot of the other type is not used", func() {
				So(open(sc, league.SlotP), ShouldEqual, 8)
				So(open(sc, league.SlotUtil), ShouldEqual, 2)
			})
		})

		Convey("Then counts follow roster order", func() {
			sc := roto.OpenSlots(s, nil)
			So(sc, ShouldHaveLength, len(s.Roster))
			So(sc[0], ShouldResemble, roto.SlotCount{Slot: "C", Type: league.Hitter, Open: 1})
		})
	})
}

func TestProject(t *testing.T) {
	Convey("Given three teams at different stages of their draft", t, func() {
		table := roto.Project(tinyLeague(), rosters(), baselines())

		Convey("Then open slots are filled at replacement level", func() {
			first, ok := table.Team("team_01")
			So(ok, ShouldBeTrue)
			So(first.Stats["R"], ShouldEqual, 200)
			So(first.Stats["OBP"], ShouldAlmostEqual, 0.3375, 1e-9)
			So(first.Stats["ERA"], ShouldEqual, 3.00)

			second, _ := table.Team("team_02")
			So(second.Stats["R"], ShouldEqual, 180)
			So(second.Stats["K"], ShouldEqual, 80)
			So(second.OpenSlots[0].Open, ShouldEqual, 1)
			So(second.OpenSlots[1].Open, ShouldEqual, 1)
		})

		Convey("Then ranks become points and the table is ordered by total", func() {
			So(table.Categories, ShouldResemble, []string{"R", "OBP", "K", "ERA"})
			So(table.Standings[0].TeamID, ShouldEqual, "team_01")
			So(table.Standings[0].TotalPoints, ShouldEqual, 12)
			So(table.Standings[1].TotalPoints, ShouldEqual, 8)
			So(table.Standings[2].TotalPoints, ShouldEqual, 4)
			So(table.Standings[0].Ranks["ERA"], ShouldEqual, 1)
		})

		Convey("Then equal values keep roster order", func() {
			So(table.Standings[1].Ranks["K"], ShouldEqual, 2)
			So(table.Standings[2].Ranks["K"], ShouldEqual, 3)
		})

		Convey("Then gaps are measured against the team ahead", func() {
			So(table.Standings[0].GapsToNext, ShouldBeEmpty)
			gaps := table.Standings[1].GapsToNext
			So(gaps["R"], ShouldResemble, roto.Gap{Points: 1, Stats: 20})
			So(gaps["OBP"].Stats, ShouldEqual, 0.02)
			So(gaps["ERA"].Stats, ShouldEqual, 2)
		})

		Convey("Then the summary spans leader to last", func() {
			So(table.Summary, ShouldResemble, roto.Summary{
				Teams: 3, Leader: "team_01", LeaderPoints: 12, LastPoints: 4, Spread: 8,
			})
		})
	})

	Convey("Given no rosters", t, func() {
		table := roto.Project(tinyLeague(), nil, baselines())

		Convey("Then the table is empty", func() {
			So(table.Standings, ShouldBeEmpty)
			So(table.Summary, ShouldResemble, roto.Summary{})
		})
	})
}

func TestNeeds(t *testing.T) {
	board := []model.Valuation{
		{PlayerID: "p1", Price: 30, SGP: map[string]float64{"R": 2.0, "OBP": 0.5}},
		{PlayerID: "p2", Price: 12, SGP: map[string]float64{"R": 1.0, "K": 3.0}},
		{PlayerID: "p3", Price: 3, SGP: map[string]float64{"ERA": -1.0, "K": 0.5}},
		{PlayerID: "p4", Drafted: true, SGP: map[string]float64{"R": 9}},
	}

	Convey("Given the projected table and the board", t, func() {
		rs := rosters()
		table := roto.Project(tinyLeague(), rs, baselines())

		Convey("When the second team asks for its needs", func() {
			needs, err := roto.Needs(table, rs[1], board)
			So(err, ShouldBeNil)

			Convey("Then every category below first is listed, easiest first", func() {
				So(needs.Needs, ShouldHaveLength, 4)
				order := []string{}
				for _, n := range needs.Needs {
					order = append(order, n.Category)
				}
				So(order, ShouldResemble, []string{"OBP", "ERA", "R", "K"})
				So(needs.Needs[0].Ease, ShouldEqual, 0.7)
				So(needs.BudgetRemaining, ShouldEqual, 200)
			})

			Convey("Then lower-is-better categories must be reduced", func() {
				era := needs.Needs[1]
				So(era.Direction, ShouldEqual, roto.Reduce)
				So(era.StatsNeeded, ShouldEqual, 2)
				So(era.Targets, ShouldBeEmpty)
				So(era.Ease, ShouldEqual, 0.283)
			})

			Convey("Then recommendations skip drafted players", func() {
				r := needs.Needs[2]
				So(r.Category, ShouldEqual, "R")
				So(r.Direction, ShouldEqual, roto.Increase)
				So(r.AvailableSGP, ShouldEqual, 3)
				So(r.Targets, ShouldHaveLength, 2)
				So(r.Targets[0].PlayerID, ShouldEqual, "p1")
				So(r.Ease, ShouldEqual, 0.253)
			})

			Convey("Then best targets sum SGP over the easiest needs", func() {
				So(needs.BestTargets, ShouldHaveLength, 2)
				So(needs.BestTargets[0].PlayerID, ShouldEqual, "p1")
				So(needs.BestTargets[0].SGP, ShouldEqual, 2.5)
				So(needs.BestTargets[0].Categories, ShouldResemble, []string{"OBP", "ERA", "R"})
				So(needs.BestTargets[1].PlayerID, ShouldEqual, "p2")
			})
		})

		Convey("When the leader asks for its needs", func() {
			needs, err := roto.Needs(table, rs[0], board)

			Convey("Then there is nothing to climb", func() {
				So(err, ShouldBeNil)
				So(needs.Needs, ShouldBeEmpty)
				So(needs.BestTargets, ShouldBeEmpty)
			})
		})

		Convey("When the team is not in the table", func() {
			_, err := roto.Needs(table, roto.Roster{TeamID: "team_99"}, board)

			Convey("Then it is reported as unknown", func() {
				So(errors.Is(err, roto.ErrUnknownTeam), ShouldBeTrue)
			})
		})
	})
}

func TestEase(t *testing.T) {
	Convey("Given the ease score", t, func() {
		Convey("Then a tie or no point gap scores zero", func() {
			So(roto.Ease(0, 5, 10, 100), ShouldEqual, 0)
			So(roto.Ease(1, 0, 10, 100), ShouldEqual, 0)
		})

		Convey("Then more money never makes a need harder", func() {
			So(roto.Ease(1, 5, 1, 200), ShouldBeGreaterThan, roto.Ease(1, 5, 1, 100))
			So(roto.Ease(1, 5, 1, 1000), ShouldEqual, roto.Ease(1, 5, 1, 300))
		})

		Convey("Then the score stays within one", func() {
			So(roto.Ease(1, 0.001, 1000, 1000), ShouldBeLessThanOrEqualTo, 1)
		})
	})
}

func TestCompete(t *testing.T) {
	Convey("Given three teams with different resources", t, func() {
		c := roto.Compete(tinyLeague(), rosters())

		Convey("Then teams are ordered richest first with their share", func() {
			So(c.Teams[0].TeamID, ShouldEqual, "team_03")
			So(c.Teams[0].Score, ShouldEqual, 0.472)
			So(c.Teams[1].Score, ShouldEqual, 0.333)
			So(c.Teams[2].Score, ShouldEqual, 0.194)
		})

		Convey("Then slots with two or more openings are high need", func() {
			So(c.Teams[0].HighNeed, ShouldResemble, []string{league.SlotUtil})
			So(c.Teams[1].HighNeed, ShouldBeEmpty)
			So(c.Teams[2].HighNeed, ShouldResemble, []string{league.SlotUtil})
		})

		Convey("Then league totals are averaged", func() {
			So(c.Totals, ShouldResemble, roto.LeagueTotals{
				BudgetRemaining:  600,
				OpenSlots:        9,
				AvgBudgetPerTeam: 200,
				AvgSlotsPerTeam:  3,
				AvgBudgetPerSlot: 66.67,
			})
		})

		Convey("Then each slot lists the teams still needing it", func() {
			So(c.Positions, ShouldHaveLength, 3)
			catcher := c.Positions[0]
			So(catcher.Teams, ShouldResemble, []string{"team_03", "team_02"})
			So(catcher.OpenSlots, ShouldEqual, 2)
			So(catcher.AvgBudget, ShouldEqual, 250)
			So(c.Positions[1].Teams, ShouldResemble, []string{"team_03", "team_02", "team_01"})
			So(c.Positions[1].OpenSlots, ShouldEqual, 5)
		})
	})

	Convey("Given a league with nothing left", t, func() {
		c := roto.Compete(tinyLeague(), []roto.Roster{{TeamID: "team_01"}})

		Convey("Then shares and averages are zero", func() {
			So(c.Teams[0].Score, ShouldEqual, 0)
			So(c.Totals.AvgBudgetPerSlot, ShouldEqual, 0)
		})
	})
}
