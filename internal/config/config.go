// Package config defines service configuration structures and loading hooks.
//
// Values layer from defaults, then an optional YAML file named by
// AUCTIONEER_CONFIG, then AUCTIONEER_* environment variables.
package config

import (
	"strconv"

	"github.com/okian/auctioneer/internal/domain/league"
)

// RosterSlot is one roster line as written in configuration.
type RosterSlot struct {
	Slot  string `koanf:"slot"`
	Count int    `koanf:"count"`
	Type  string `koanf:"type"`
}

// Config contains process and league configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects "json" or "text" output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory pick queue.
	QueueSize int `koanf:"queue_size"`

	// DBPath is the sqlite pick log. Empty keeps picks in memory only.
	DBPath string `koanf:"db_path"`

	// MaxBoardLimit caps GET /valuations?limit.
	MaxBoardLimit int `koanf:"max_board_limit"`

	StandingsDir   string   `koanf:"standings_dir"`
	HittersFiles   []string `koanf:"hitters_files"`
	PitchersFiles  []string `koanf:"pitchers_files"`
	KeepersFile    string   `koanf:"keepers_file"`
	DiagnosticsDir string   `koanf:"diagnostics_dir"`

	Teams         int          `koanf:"teams"`
	BudgetPerTeam int          `koanf:"budget_per_team"`
	MinBid        int          `koanf:"min_bid"`
	Roster        []RosterSlot `koanf:"roster"`

	HitterCategories  []string `koanf:"hitter_categories"`
	PitcherCategories []string `koanf:"pitcher_categories"`

	Seasons []int `koanf:"seasons"`
	// SeasonWeights is keyed by season year as text.
	SeasonWeights map[string]float64 `koanf:"season_weights"`

	ReplacementHitterPA      float64 `koanf:"replacement_hitter_pa"`
	ReplacementPitcherIP     float64 `koanf:"replacement_pitcher_ip"`
	ReplacementHitterWindow  int     `koanf:"replacement_hitter_window"`
	ReplacementPitcherWindow int     `koanf:"replacement_pitcher_window"`

	ReplacementOBP  *float64 `koanf:"replacement_obp"`
	ReplacementSLG  *float64 `koanf:"replacement_slg"`
	ReplacementERA  *float64 `koanf:"replacement_era"`
	ReplacementWHIP *float64 `koanf:"replacement_whip"`

	MinPA float64 `koanf:"min_pa"`
	MinIP float64 `koanf:"min_ip"`

	ReconcileRounding bool `koanf:"reconcile_rounding"`
}

// New returns a Config holding the default league.
func New() *Config {
	d := league.DefaultSettings()
	c := &Config{
		LogLevel:                 "info",
		LogFormat:                "json",
		Addr:                     ":9080",
		QueueSize:                256,
		MaxBoardLimit:            1000,
		StandingsDir:             "data/standings",
		HittersFiles:             []string{"data/projections/hitters.csv"},
		PitchersFiles:            []string{"data/projections/pitchers.csv"},
		Teams:                    d.Teams,
		BudgetPerTeam:            d.BudgetPerTeam,
		MinBid:                   d.MinBid,
		HitterCategories:         append([]string(nil), d.HitterCategories...),
		PitcherCategories:        append([]string(nil), d.PitcherCategories...),
		Seasons:                  append([]int(nil), d.Seasons...),
		SeasonWeights:            make(map[string]float64, len(d.SeasonWeights)),
		ReplacementHitterPA:      d.ReplacementPA,
		ReplacementPitcherIP:     d.ReplacementIP,
		ReplacementHitterWindow:  d.HitterWindow,
		ReplacementPitcherWindow: d.PitcherWindow,
		MinPA:                    d.MinPA,
		MinIP:                    d.MinIP,
		ReconcileRounding:        d.ReconcileRounding,
	}
	for _, sl := range d.Roster {
		c.Roster = append(c.Roster, RosterSlot{Slot: sl.Name, Count: sl.Count, Type: sl.Type.String()})
	}
	for season, w := range d.SeasonWeights {
		c.SeasonWeights[strconv.Itoa(season)] = w
	}
	return c
}
