// Package roto projects end-of-draft rotisserie standings from the rosters
// bought so far and derives team needs and league competition from them.
package roto

import (
	"math"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/internal/domain/sgp"
)

// Roster is one team's draft position.
type Roster struct {
	TeamID          string
	BudgetRemaining int
	SpotsRemaining  int
	// Players are the drafted players in pick order.
	Players []model.Player
}

// SlotCount is the open count of one roster slot.
type SlotCount struct {
	Slot string            `json:"slot"`
	Type league.PlayerType `json:"player_type"`
	Open int               `json:"open"`
}

// OpenSlots seats players in order, each into the first eligible slot with
// room, and returns what is left in roster order. Players that fit nowhere
// are skipped.
func OpenSlots(s league.Settings, players []model.Player) []SlotCount {
	open := make([]SlotCount, len(s.Roster))
	index := make(map[string]int, len(s.Roster))
	for i, sl := range s.Roster {
		open[i] = SlotCount{Slot: sl.Name, Type: sl.Type, Open: sl.Count}
		index[sl.Name] = i
	}
	for _, p := range players {
		for _, name := range p.Type.EligibleSlots(p.Positions) {
			i, ok := index[name]
			if !ok || open[i].Type != p.Type || open[i].Open == 0 {
				continue
			}
			open[i].Open--
			break
		}
	}
	return open
}

// line accumulates a team's counting totals and rate components.
type line struct {
	counting map[string]float64
	num      map[string]float64
	den      map[string]float64
}

func newLine() *line {
	return &line{
		counting: map[string]float64{},
		num:      map[string]float64{},
		den:      map[string]float64{},
	}
}

// addPlayer adds a projection. Rate stats are weighted by the player's
// exposure; AB falls back to PA the way SGP conversion estimates it.
func (l *line) addPlayer(c league.Category, p model.Player) {
	v, ok := c.Resolve(p.Stat)
	if !ok || math.IsNaN(v) {
		return
	}
	if !c.Rate {
		l.counting[c.Name] += v
		return
	}
	exposure, ok := p.Stat(c.Exposure)
	if !ok && c.Exposure == league.StatAB {
		exposure = p.Stats[league.StatPA] * league.ABPerPA
	}
	l.num[c.Name] += v * exposure
	l.den[c.Name] += exposure
}

// addReplacement adds one replacement-level player of b's type.
func (l *line) addReplacement(c league.Category, b sgp.Baseline) {
	if !c.Rate {
		l.counting[c.Name] += b.Counting[c.Name]
		return
	}
	exposure := b.PlayingTime
	if c.Exposure == league.StatAB && b.AtBats > 0 {
		exposure = b.AtBats
	}
	rate, _ := b.Rate(c.Name)
	l.num[c.Name] += rate * exposure
	l.den[c.Name] += exposure
}

func (l *line) value(c league.Category) float64 {
	if !c.Rate {
		return l.counting[c.Name]
	}
	if l.den[c.Name] == 0 {
		return 0
	}
	return l.num[c.Name] / l.den[c.Name]
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
