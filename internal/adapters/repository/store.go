// Package repository holds the published valuation board and the durable
// pick log.
package repository

import (
	"context"
	"time"

	"github.com/okian/auctioneer/internal/domain/model"
)

// Meta describes the run behind the current board.
type Meta struct {
	RunID       string    `json:"run_id"`
	PublishedAt time.Time `json:"published_at"`
	Players     int       `json:"players"`
	Available   int       `json:"available"`
	Unassigned  int       `json:"unassigned"`
}

// Query selects board rows. Limit must be positive; Slot filters on the
// assigned slot; Available hides drafted players.
type Query struct {
	Limit     int
	Slot      string
	Available bool
}

// Store provides read/write access to the latest valuation board.
type Store interface {
	// Publish atomically replaces the board.
	Publish(ctx context.Context, runID string, at time.Time, players []model.Valuation, unassigned []model.Unassigned) error

	// List returns rows matching q in board order.
	List(ctx context.Context, q Query) ([]model.Valuation, error)

	// Get returns one player's row.
	// Returns ErrNotFound if the player is not on the board.
	Get(ctx context.Context, playerID string) (model.Valuation, error)

	// Count returns the number of players on the board.
	Count(ctx context.Context) int

	// Meta describes the current board.
	Meta(ctx context.Context) Meta
}
