// Package sgp calibrates Standings Gain Points from historical league
// standings and converts projected player statistics into SGP.
package sgp

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/pkg/logger"
)

const stageStandings = "standings"

// TeamColumn names the team identity column in a standings table.
const TeamColumn = "Team"

// detectOrder is the order categories are probed for in a standings table.
var detectOrder = []string{"R", "RBI", "SB", "HR", "AVG", "OBP", "SLG", "K", "W", "SV", "W_QS", "SV_HLD", "ERA", "WHIP"}

// TeamTotals is one team's final line. Values holds every detected category
// under its canonical name plus the AB and IP columns when present.
type TeamTotals struct {
	Team   string
	Values map[string]float64
}

// Value returns a category total or exposure column.
func (t TeamTotals) Value(col string) (float64, bool) {
	v, ok := t.Values[col]
	return v, ok
}

// SeasonStandings is the immutable final table of one season.
type SeasonStandings struct {
	Season     int
	Teams      []TeamTotals
	Categories []string
}

// Has reports whether the season scored category.
func (s SeasonStandings) Has(category string) bool {
	for _, c := range s.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// StandingsFile is the file name of a season's combined standings.
func StandingsFile(season int) string {
	return fmt.Sprintf("league_%d_combined.csv", season)
}

// ParseStandings reads one season from CSV. teams is the expected row count;
// zero disables that check. Non-numeric cells are treated as absent.
func ParseStandings(r io.Reader, season, teams int) (SeasonStandings, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return SeasonStandings{}, fmt.Errorf("%w: season %d: %v", ErrInvalidStandings, season, err)
	}
	if len(records) == 0 {
		return SeasonStandings{}, fmt.Errorf("%w: season %d: empty table", ErrInvalidStandings, season)
	}
	header := records[0]
	teamIdx := -1
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		if header[i] == TeamColumn {
			teamIdx = i
		}
	}
	if teamIdx < 0 {
		return SeasonStandings{}, fmt.Errorf("%w: season %d: missing %s column", ErrInvalidStandings, season, TeamColumn)
	}
	rows := records[1:]
	if teams > 0 && len(rows) != teams {
		return SeasonStandings{}, fmt.Errorf("%w: season %d: expected %d teams, found %d", ErrInvalidStandings, season, teams, len(rows))
	}

	raw := make([]map[string]float64, 0, len(rows))
	names := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, rec := range rows {
		if teamIdx >= len(rec) || strings.TrimSpace(rec[teamIdx]) == "" {
			return SeasonStandings{}, fmt.Errorf("%w: season %d: row without a team", ErrInvalidStandings, season)
		}
		name := strings.TrimSpace(rec[teamIdx])
		if _, dup := seen[name]; dup {
			return SeasonStandings{}, fmt.Errorf("%w: season %d: duplicate team %q", ErrInvalidStandings, season, name)
		}
		seen[name] = struct{}{}
		names = append(names, name)

		vals := make(map[string]float64, len(header))
		for i, col := range header {
			if i == teamIdx || i >= len(rec) {
				continue
			}
			if v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64); err == nil {
				vals[col] = v
			}
		}
		raw = append(raw, vals)
	}

	// A column counts only when every team reports it.
	has := func(col string) bool {
		for _, vals := range raw {
			if _, ok := vals[col]; !ok {
				return false
			}
		}
		return len(raw) > 0
	}

	out := SeasonStandings{Season: season, Teams: make([]TeamTotals, len(raw))}
	for _, name := range detectOrder {
		c, _ := league.LookupCategory(name)
		if c.Complete(has) {
			out.Categories = append(out.Categories, name)
		}
	}
	for i, vals := range raw {
		t := TeamTotals{Team: names[i], Values: make(map[string]float64, len(out.Categories)+2)}
		get := func(col string) (float64, bool) {
			if !has(col) {
				return 0, false
			}
			v, ok := vals[col]
			return v, ok
		}
		for _, name := range out.Categories {
			c, _ := league.LookupCategory(name)
			if v, ok := c.Resolve(get); ok {
				t.Values[name] = v
			}
		}
		for _, col := range []string{league.StatAB, league.StatIP} {
			if v, ok := get(col); ok {
				t.Values[col] = v
			}
		}
		out.Teams[i] = t
	}
	return out, nil
}

// LoadStandings reads every configured season from dir. Seasons whose file is
// missing or invalid are skipped with a note; ErrNoStandings is returned when
// nothing could be loaded.
func LoadStandings(ctx context.Context, dir string, seasons []int, teams int, notes *model.Notes) ([]SeasonStandings, error) {
	out := make([]SeasonStandings, 0, len(seasons))
	for _, season := range seasons {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, StandingsFile(season))
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				notes.Warn(ctx, stageStandings, "standings file missing, season skipped",
					logger.Int("season", season), logger.String("path", path))
				continue
			}
			return nil, fmt.Errorf("open standings %s: %w", path, err)
		}
		s, err := ParseStandings(f, season, teams)
		_ = f.Close()
		if err != nil {
			notes.Warn(ctx, stageStandings, "standings invalid, season skipped",
				logger.Int("season", season), logger.Error(err))
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: none of %d seasons under %s", ErrNoStandings, len(seasons), dir)
	}
	return out, nil
}
