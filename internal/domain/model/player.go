package model

import "github.com/okian/auctioneer/internal/domain/league"

// Player is one candidate from the combined projection table.
type Player struct {
	ID        string             `json:"player_id"`
	Name      string             `json:"player_name"`
	Team      string             `json:"team,omitempty"`
	Positions []string           `json:"positions"`
	Type      league.PlayerType  `json:"player_type"`
	Stats     map[string]float64 `json:"stats"`
}

// Stat returns a raw statistic and whether the projection reported it.
func (p Player) Stat(name string) (float64, bool) {
	v, ok := p.Stats[name]
	return v, ok
}

// PlayingTime returns PA for hitters and IP for pitchers, zero when absent.
func (p Player) PlayingTime() float64 {
	return p.Stats[p.Type.PlayingTime()]
}
