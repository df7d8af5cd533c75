package sgp_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/internal/domain/sgp"
	. "github.com/smartystreets/goconvey/convey"
)

func standings(season int, cat string, values ...float64) sgp.SeasonStandings {
	s := sgp.SeasonStandings{Season: season, Categories: []string{cat}}
	for i, v := range values {
		s.Teams = append(s.Teams, sgp.TeamTotals{
			Team:   fmt.Sprintf("team %d", i+1),
			Values: map[string]float64{cat: v},
		})
	}
	return s
}

func unitWeight(int) float64 { return 1 }

func TestDenominators(t *testing.T) {
	ctx := context.Background()

	Convey("Given a single season of runs for twelve teams", t, func() {
		s := standings(2024, "R", 80, 100, 81, 97, 82, 94, 83, 91, 84, 89, 85, 87)
		notes := model.NewNotes(nil)

		Convey("When the denominators are calibrated", func() {
			d, gaps, err := sgp.Denominators(ctx, []sgp.SeasonStandings{s}, []string{"R"}, unitWeight, notes)
			So(err, ShouldBeNil)

			Convey("Then the ranked gaps are measured between adjacent teams", func() {
				So(gaps, ShouldHaveLength, 1)
				So(gaps[0].Gaps, ShouldResemble, []float64{3, 3, 3, 2, 2, 2, 1, 1, 1, 1, 1})
				So(gaps[0].Ranked[0].Value, ShouldEqual, 100)
				So(gaps[0].Ranked[11].Value, ShouldEqual, 80)
			})

			Convey("Then the median gap becomes the denominator", func() {
				So(d["R"].Value, ShouldEqual, 2)
				So(d["R"].Methods[2024], ShouldEqual, sgp.MethodMedian)
				So(d["R"].SeasonsUsed, ShouldResemble, []int{2024})
			})
		})
	})

	Convey("Given several seasons with recency weights", t, func() {
		older := standings(2023, "R", 10, 8, 6, 4)  // median gap 2
		newer := standings(2025, "R", 20, 16, 12, 8) // median gap 4
		weights := map[int]float64{2023: 1, 2025: 2}

		d, _, err := sgp.Denominators(ctx, []sgp.SeasonStandings{newer, older}, []string{"R"},
			func(s int) float64 { return weights[s] }, nil)

		Convey("Then the denominator is their weighted average", func() {
			So(err, ShouldBeNil)
			So(d["R"].Value, ShouldAlmostEqual, 10.0/3.0)
			So(d["R"].SeasonsUsed, ShouldResemble, []int{2023, 2025})
		})
	})

	Convey("Given a season whose median gap is zero", t, func() {
		s := standings(2024, "SB", 10, 10, 10, 10, 5)

		d, _, err := sgp.Denominators(ctx, []sgp.SeasonStandings{s}, []string{"SB"}, unitWeight, nil)

		Convey("Then the mean gap is used instead", func() {
			So(err, ShouldBeNil)
			So(d["SB"].Value, ShouldEqual, 1.25)
			So(d["SB"].Methods[2024], ShouldEqual, sgp.MethodMean)
		})
	})

	Convey("Given a category no season can calibrate", t, func() {
		flat := standings(2024, "HR", 50, 50, 50)
		notes := model.NewNotes(nil)

		_, _, err := sgp.Denominators(ctx, []sgp.SeasonStandings{flat}, []string{"HR"}, unitWeight, notes)

		Convey("Then the run fails with a calibration error", func() {
			So(errors.Is(err, sgp.ErrCalibration), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "HR")
			So(notes.Count("denominators"), ShouldEqual, 1)
		})
	})

	Convey("Given a category missing from every season", t, func() {
		_, _, err := sgp.Denominators(ctx, []sgp.SeasonStandings{standings(2024, "R", 3, 2, 1)}, []string{"SB"}, unitWeight, nil)
		So(errors.Is(err, sgp.ErrCalibration), ShouldBeTrue)
	})
}

func TestAnalyzeGapsRate(t *testing.T) {
	ctx := context.Background()

	Convey("Given on-base percentage with at-bats", t, func() {
		s := sgp.SeasonStandings{Season: 2024, Categories: []string{"OBP"}}
		for i, v := range []float64{0.320, 0.300, 0.340} {
			s.Teams = append(s.Teams, sgp.TeamTotals{
				Team:   fmt.Sprintf("t%d", i),
				Values: map[string]float64{"OBP": v, "AB": 5000},
			})
		}
		obp, _ := league.LookupCategory("OBP")

		g, ok := sgp.AnalyzeGaps(ctx, s, obp, nil)

		Convey("Then gaps are measured on marginal impact around the median", func() {
			So(ok, ShouldBeTrue)
			So(g.Transform, ShouldEqual, sgp.TransformMarginal)
			So(g.Ranked[0].Team, ShouldEqual, "t2")
			So(g.Gaps, ShouldHaveLength, 2)
			So(g.Gaps[0], ShouldAlmostEqual, 100, 1e-6)
			So(g.Gaps[1], ShouldAlmostEqual, 100, 1e-6)
		})
	})

	Convey("Given ERA without innings pitched", t, func() {
		s := standings(2024, "ERA", 4.0, 3.5, 3.0)
		era, _ := league.LookupCategory("ERA")
		notes := model.NewNotes(nil)

		g, ok := sgp.AnalyzeGaps(ctx, s, era, notes)

		Convey("Then raw rates are ranked ascending and a note is kept", func() {
			So(ok, ShouldBeTrue)
			So(g.Transform, ShouldEqual, sgp.TransformRaw)
			So(g.Ranked[0].Value, ShouldEqual, 3.0)
			So(g.Gaps, ShouldResemble, []float64{0.5, 0.5})
			So(notes.Count("gaps"), ShouldEqual, 1)
		})
	})
}

func TestMarginalImpact(t *testing.T) {
	Convey("Given two pitchers with 150 innings against a 4.00 ERA baseline", t, func() {
		era, _ := league.LookupCategory("ERA")

		Convey("Then the lower ERA contributes positively", func() {
			So(sgp.MarginalImpact(era, 3.00, 4.00, 150), ShouldEqual, 150)
			So(sgp.MarginalImpact(era, 4.50, 4.00, 150), ShouldEqual, -75)
		})
	})

	Convey("Given a hitter above the OBP baseline", t, func() {
		obp, _ := league.LookupCategory("OBP")
		So(sgp.MarginalImpact(obp, 0.350, 0.300, 600), ShouldAlmostEqual, 30, 1e-9)
	})
}

const standingsCSV = `Team,R,W,QS,SO,SV,HLD,ERA,IP
Aces,900,80,90,1400,60,70,3.50,1400
Bats,850,75,85,1350,55,65,3.80,1390
Cubs,800,70,80,1300,50,60,4.10,1380
`

func TestParseStandings(t *testing.T) {
	Convey("Given a combined standings table", t, func() {
		s, err := sgp.ParseStandings(strings.NewReader(standingsCSV), 2024, 3)
		So(err, ShouldBeNil)

		Convey("Then compound and aliased categories are detected", func() {
			So(s.Has("R"), ShouldBeTrue)
			So(s.Has("K"), ShouldBeTrue)
			So(s.Has("W_QS"), ShouldBeTrue)
			So(s.Has("SV_HLD"), ShouldBeTrue)
			So(s.Has("ERA"), ShouldBeTrue)
			So(s.Has("OBP"), ShouldBeFalse)
		})

		Convey("Then values are stored under category names", func() {
			So(s.Teams[0].Team, ShouldEqual, "Aces")
			So(s.Teams[0].Values["W_QS"], ShouldEqual, 170)
			So(s.Teams[0].Values["SV_HLD"], ShouldEqual, 130)
			So(s.Teams[0].Values["K"], ShouldEqual, 1400)
			So(s.Teams[2].Values["IP"], ShouldEqual, 1380)
		})
	})

	Convey("Given the wrong number of teams", t, func() {
		_, err := sgp.ParseStandings(strings.NewReader(standingsCSV), 2024, 12)
		So(errors.Is(err, sgp.ErrInvalidStandings), ShouldBeTrue)
	})

	Convey("Given a duplicate team", t, func() {
		_, err := sgp.ParseStandings(strings.NewReader("Team,R\nA,1\nA,2\n"), 2024, 0)
		So(errors.Is(err, sgp.ErrInvalidStandings), ShouldBeTrue)
	})

	Convey("Given no team column", t, func() {
		_, err := sgp.ParseStandings(strings.NewReader("Name,R\nA,1\n"), 2024, 0)
		So(errors.Is(err, sgp.ErrInvalidStandings), ShouldBeTrue)
	})
}

func TestLoadStandings(t *testing.T) {
	ctx := context.Background()

	Convey("Given a directory with one of two seasons", t, func() {
		dir := t.TempDir()
		So(os.WriteFile(filepath.Join(dir, sgp.StandingsFile(2024)), []byte(standingsCSV), 0o644), ShouldBeNil)
		notes := model.NewNotes(nil)

		got, err := sgp.LoadStandings(ctx, dir, []int{2023, 2024}, 3, notes)

		Convey("Then the missing season is skipped with a note", func() {
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 1)
			So(got[0].Season, ShouldEqual, 2024)
			So(notes.Count("standings"), ShouldEqual, 1)
		})

		Convey("When no season can be loaded", func() {
			_, err := sgp.LoadStandings(ctx, dir, []int{2020}, 3, nil)
			So(errors.Is(err, sgp.ErrNoStandings), ShouldBeTrue)
		})
	})
}

func hitters(n int) []model.Player {
	out := make([]model.Player, n)
	for i := 0; i < n; i++ {
		// Reverse PA order so the baseline has to sort.
		out[n-1-i] = model.Player{
			ID:    fmt.Sprintf("h%02d", i),
			Type:  league.Hitter,
			Stats: map[string]float64{"PA": float64(700 - 10*i), "OBP": 0.300 + 0.001*float64(i), "SLG": 0.450},
		}
	}
	return out
}

func TestComputeBaseline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a pool too small to reach the replacement window", t, func() {
		s := league.DefaultSettings()
		s.Teams = 1
		slg := 0.400
		s.Overrides.SLG = &slg
		notes := model.NewNotes(nil)

		b := sgp.ComputeBaseline(ctx, league.Hitter, hitters(20), s, notes)

		Convey("Then the tier falls back to the bottom of the pool", func() {
			So(b.TierStart, ShouldEqual, 13)
			So(b.TierEnd, ShouldEqual, 20)
			So(notes.Count("baseline"), ShouldEqual, 1)
		})

		Convey("Then the derived rate is the tier median", func() {
			So(b.Rates["OBP"], ShouldAlmostEqual, 0.316, 1e-9)
			So(b.Overridden["OBP"], ShouldBeFalse)
		})

		Convey("Then overrides win and playing time follows settings", func() {
			So(b.Rates["SLG"], ShouldEqual, 0.400)
			So(b.Overridden["SLG"], ShouldBeTrue)
			So(b.PlayingTime, ShouldEqual, 450)
			So(b.AtBats, ShouldAlmostEqual, 382.5)
		})

		Convey("Then counting categories nobody reports are left out", func() {
			So(b.Counting, ShouldBeEmpty)
		})
	})

	Convey("Given a pool that reports runs", t, func() {
		s := league.DefaultSettings()
		s.Teams = 1
		pool := hitters(20)
		for i := range pool {
			pool[i].Stats["R"] = pool[i].Stats["PA"] / 10
		}

		b := sgp.ComputeBaseline(ctx, league.Hitter, pool, s, nil)

		Convey("Then the counting baseline is the tier median", func() {
			// Tier is PA 570..510 in steps of 10.
			So(b.Counting["R"], ShouldAlmostEqual, 54, 1e-9)
			So(b.Counting, ShouldNotContainKey, "RBI")
		})
	})
}

func TestConvert(t *testing.T) {
	ctx := context.Background()

	Convey("Given calibrated denominators and a baseline", t, func() {
		denoms := map[string]sgp.Denominator{
			"R":   {Category: "R", Value: 2},
			"OBP": {Category: "OBP", Value: 10},
		}
		base := sgp.Baseline{Type: league.Hitter, Rates: map[string]float64{"OBP": 0.300}}
		players := []model.Player{
			{ID: "a", Type: league.Hitter, Stats: map[string]float64{"R": 100, "OBP": 0.350, "PA": 600}},
			{ID: "b", Type: league.Hitter, Stats: map[string]float64{"OBP": 0.300, "PA": 500}},
		}
		notes := model.NewNotes(nil)

		scored, err := sgp.Convert(ctx, league.Hitter, players, []string{"R", "OBP"}, denoms, base, notes)
		So(err, ShouldBeNil)

		Convey("Then counting stats divide by the denominator", func() {
			So(scored[0].SGP["R"], ShouldEqual, 50)
		})

		Convey("Then rate stats go through marginal impact", func() {
			So(scored[0].Marginal["OBP"], ShouldAlmostEqual, 30, 1e-9)
			So(scored[0].SGP["OBP"], ShouldAlmostEqual, 3, 1e-9)
			So(scored[0].RawValue, ShouldAlmostEqual, 53, 1e-9)
		})

		Convey("Then a missing stat counts as zero with one note", func() {
			So(scored[1].SGP["R"], ShouldEqual, 0)
			So(scored[1].RawValue, ShouldEqual, 0)
			So(notes.Count("convert"), ShouldEqual, 1)
		})
	})

	Convey("Given a category without a denominator", t, func() {
		_, err := sgp.Convert(ctx, league.Hitter, nil, []string{"SB"}, map[string]sgp.Denominator{}, sgp.Baseline{}, nil)
		So(errors.Is(err, sgp.ErrCalibration), ShouldBeTrue)
	})
}

func TestDiagnostics(t *testing.T) {
	ctx := context.Background()

	Convey("Given a calibrated report with worked examples", t, func() {
		s := standings(2024, "OBP", 0.300, 0.320, 0.340)
		d, gaps, err := sgp.Denominators(ctx, []sgp.SeasonStandings{s}, []string{"OBP"}, unitWeight, nil)
		So(err, ShouldBeNil)

		players := hitters(30)
		base := sgp.Baseline{Type: league.Hitter, Rates: map[string]float64{"OBP": 0.310}}
		scored, err := sgp.Convert(ctx, league.Hitter, players, []string{"OBP"}, d, base, nil)
		So(err, ShouldBeNil)

		samples := sgp.SampleMarginals(league.Hitter, players, scored, []string{"OBP"}, d, base)

		Convey("Then samples cover the top and the middle of the pool", func() {
			So(samples, ShouldHaveLength, 10)
			So(samples[0].Rank, ShouldEqual, 1)
			So(samples[0].RawValue, ShouldBeGreaterThanOrEqualTo, samples[9].RawValue)
		})

		Convey("When the artifacts are written", func() {
			dir := filepath.Join(t.TempDir(), "diag")
			err := sgp.WriteDiagnostics(dir, sgp.Report{
				Gaps: gaps, Denominators: d, CategoryOrder: []string{"OBP"}, Samples: samples,
			})
			So(err, ShouldBeNil)

			Convey("Then every file exists with a header", func() {
				for _, name := range []string{
					sgp.FileRankDistance, sgp.FileGapDistribution, sgp.FileDenominators,
					sgp.FileSmoothing, sgp.FileMarginalImpact,
				} {
					b, err := os.ReadFile(filepath.Join(dir, name))
					So(err, ShouldBeNil)
					So(len(strings.Split(strings.TrimSpace(string(b)), "\n")), ShouldBeGreaterThan, 1)
				}
			})
		})
	})
}

func TestDescribe(t *testing.T) {
	Convey("Given gaps with one blowout", t, func() {
		d := sgp.Describe([]float64{1, 1, 2, 2, 2, 3, 30})

		Convey("Then the blowout is counted as an outlier", func() {
			So(d.Count, ShouldEqual, 7)
			So(d.Median, ShouldEqual, 2)
			So(d.Max, ShouldEqual, 30)
			So(d.Outliers, ShouldEqual, 1)
		})
	})
}
