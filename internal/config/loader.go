package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix = "AUCTIONEER_"
	envFile   = "AUCTIONEER_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if AUCTIONEER_CONFIG is set
//  3. env (prefix AUCTIONEER_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// AUCTIONEER_QUEUE_SIZE -> queue_size. Keys stay flat so underscores
	// match the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file path itself is not a setting.
	k.Delete("config")

	cfg := *base
	// Lists and maps replace the defaults instead of merging into them.
	for key, reset := range map[string]func(){
		"roster":             func() { cfg.Roster = nil },
		"hitters_files":      func() { cfg.HittersFiles = nil },
		"pitchers_files":     func() { cfg.PitchersFiles = nil },
		"hitter_categories":  func() { cfg.HitterCategories = nil },
		"pitcher_categories": func() { cfg.PitcherCategories = nil },
		"seasons":            func() { cfg.Seasons = nil },
		"season_weights":     func() { cfg.SeasonWeights = nil },
	} {
		if k.Exists(key) {
			reset()
		}
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks process settings and that the league converts cleanly.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.MaxBoardLimit < 1 {
		return fmt.Errorf("%w: max_board_limit must be positive", ErrInvalidConfig)
	}
	if _, err := c.League(); err != nil {
		return err
	}
	return nil
}
