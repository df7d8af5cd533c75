// Package projections reads projection and keeper tables from CSV and
// combines several projection systems into one consensus pool.
package projections

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/pkg/logger"
)

const stageProjections = "projections"

// Column aliases, checked in order.
var (
	idColumns       = []string{"player_id", "playerid", "PlayerId", "PlayerID"}
	nameColumns     = []string{"player_name", "PlayerName", "Name", "ShortName"}
	positionColumns = []string{"positions", "minpos", "Pos", "pos", "Position"}
	teamColumns     = []string{"team", "Team"}
)

func findColumn(index map[string]int, aliases []string) (int, bool) {
	for _, a := range aliases {
		if i, ok := index[a]; ok {
			return i, true
		}
	}
	return -1, false
}

// ParsePositions splits a position string on slashes, commas and spaces.
func ParsePositions(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == ',' || r == ' ' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Parse reads one projection system for type t. Every numeric column other
// than the identity columns becomes a stat. The id column and the type's
// playing-time column are required.
func Parse(r io.Reader, t league.PlayerType) ([]model.Player, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		header[i] = h
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	idCol, ok := findColumn(index, idColumns)
	if !ok {
		return nil, fmt.Errorf("%w: player id", ErrMissingColumn)
	}
	if _, ok := index[t.PlayingTime()]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, t.PlayingTime())
	}
	nameCol, hasName := findColumn(index, nameColumns)
	posCol, hasPos := findColumn(index, positionColumns)
	teamCol, hasTeam := findColumn(index, teamColumns)
	skip := map[int]bool{idCol: true, nameCol: hasName, posCol: hasPos, teamCol: hasTeam}

	var out []model.Player
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		cell := func(i int) string {
			if i < 0 || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		id := cell(idCol)
		if id == "" {
			return nil, fmt.Errorf("%w: line %d has no player id", ErrInvalidRow, line)
		}
		p := model.Player{ID: id, Type: t, Stats: make(map[string]float64, len(header))}
		if hasName {
			p.Name = cell(nameCol)
		}
		if hasTeam {
			p.Team = cell(teamCol)
		}
		if hasPos {
			p.Positions = ParsePositions(cell(posCol))
		}
		for i, col := range header {
			if skip[i] || col == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell(i), 64)
			if err != nil || math.IsNaN(v) {
				continue
			}
			if _, seen := p.Stats[col]; !seen {
				p.Stats[col] = v
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// Combine merges projection systems into a consensus: each stat is the mean
// over the systems reporting it, positions are the sorted union, and the
// first non-empty name and team win. Players keep first-appearance order.
func Combine(systems ...[]model.Player) []model.Player {
	type acc struct {
		player    model.Player
		sums      map[string]float64
		counts    map[string]int
		positions map[string]struct{}
	}
	var order []string
	byID := make(map[string]*acc)
	for _, sys := range systems {
		for _, p := range sys {
			a, ok := byID[p.ID]
			if !ok {
				a = &acc{
					player:    model.Player{ID: p.ID, Type: p.Type},
					sums:      map[string]float64{},
					counts:    map[string]int{},
					positions: map[string]struct{}{},
				}
				byID[p.ID] = a
				order = append(order, p.ID)
			}
			if a.player.Name == "" {
				a.player.Name = p.Name
			}
			if a.player.Team == "" {
				a.player.Team = p.Team
			}
			for _, pos := range p.Positions {
				a.positions[pos] = struct{}{}
			}
			for k, v := range p.Stats {
				a.sums[k] += v
				a.counts[k]++
			}
		}
	}

	out := make([]model.Player, 0, len(order))
	for _, id := range order {
		a := byID[id]
		p := a.player
		p.Stats = make(map[string]float64, len(a.sums))
		for k, sum := range a.sums {
			p.Stats[k] = sum / float64(a.counts[k])
		}
		if len(a.positions) > 0 {
			p.Positions = make([]string, 0, len(a.positions))
			for pos := range a.positions {
				p.Positions = append(p.Positions, pos)
			}
			sort.Strings(p.Positions)
		}
		out = append(out, p)
	}
	return out
}

// FilterPlayingTime drops players below floor playing time.
func FilterPlayingTime(players []model.Player, floor float64) []model.Player {
	out := players[:0:0]
	for _, p := range players {
		if p.PlayingTime() >= floor {
			out = append(out, p)
		}
	}
	return out
}

// Load reads every file for type t, combines them and applies the playing
// time floor from s.
func Load(ctx context.Context, t league.PlayerType, paths []string, s league.Settings, notes *model.Notes) ([]model.Player, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no %s files configured", ErrNoProjections, t)
	}
	systems := make([][]model.Player, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open projections %s: %w", path, err)
		}
		players, err := Parse(f, t)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse projections %s: %w", path, err)
		}
		if len(players) == 0 {
			notes.Warn(ctx, stageProjections, "projection file is empty, skipped", logger.String("path", path))
			continue
		}
		systems = append(systems, players)
	}
	if len(systems) == 0 {
		return nil, fmt.Errorf("%w: every %s file was empty", ErrNoProjections, t)
	}
	combined := Combine(systems...)
	kept := FilterPlayingTime(combined, s.MinPlayingTime(t))
	if dropped := len(combined) - len(kept); dropped > 0 {
		notes.Warn(ctx, stageProjections, "players below the playing time floor dropped",
			logger.String("type", t.String()), logger.Int("players", dropped),
			logger.Float64("min", s.MinPlayingTime(t)))
	}
	return kept, nil
}
