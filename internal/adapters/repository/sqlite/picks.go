// Package sqlite persists draft picks in an append-only SQLite log so a
// restarted service can replay the draft.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/auctioneer/internal/adapters/repository"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/pkg/metrics"
)

// ErrDuplicatePick is returned when a player or pick number is already logged.
var ErrDuplicatePick = errors.New("pick already logged")

// PickStore is the durable pick log.
type PickStore struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// Open opens (or creates) the database at path and runs migrations. Use
// ":memory:" for a throwaway log.
func Open(ctx context.Context, path string) (*PickStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases alive and writes ordered.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	s := &PickStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *PickStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS picks (
			pick_number INTEGER PRIMARY KEY,
			player_id   TEXT    NOT NULL UNIQUE,
			player_name TEXT    NOT NULL DEFAULT '',
			team_id     TEXT    NOT NULL,
			price       INTEGER NOT NULL,
			keeper      INTEGER NOT NULL DEFAULT 0,
			timestamp   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_picks_team ON picks(team_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:30], err)
		}
	}
	return nil
}

// Append logs one applied pick.
func (s *PickStore) Append(ctx context.Context, p model.PickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return repository.ErrClosed
	}

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM picks WHERE pick_number = ? OR player_id = ?`, p.PickNumber, p.PlayerID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check pick %d: %w", p.PickNumber, err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: pick %d player %s", ErrDuplicatePick, p.PickNumber, p.PlayerID)
	}

	keeper := 0
	if p.Keeper {
		keeper = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO picks (pick_number, player_id, player_name, team_id, price, keeper, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.PickNumber, p.PlayerID, p.PlayerName, p.TeamID, p.Price, keeper, p.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert pick %d: %w", p.PickNumber, err)
	}
	metrics.RecordPickStoreWrite()
	return nil
}

// List returns every logged pick ordered by pick number.
func (s *PickStore) List(ctx context.Context) ([]model.PickEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, repository.ErrClosed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT pick_number, player_id, player_name, team_id, price, keeper, timestamp
		 FROM picks ORDER BY pick_number`)
	if err != nil {
		return nil, fmt.Errorf("query picks: %w", err)
	}
	defer rows.Close()

	var out []model.PickEvent
	for rows.Next() {
		var (
			p      model.PickEvent
			keeper int
			ts     int64
		)
		if err := rows.Scan(&p.PickNumber, &p.PlayerID, &p.PlayerName, &p.TeamID, &p.Price, &keeper, &ts); err != nil {
			return nil, fmt.Errorf("scan pick: %w", err)
		}
		p.Keeper = keeper == 1
		p.Timestamp = time.UnixMilli(ts).UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate picks: %w", err)
	}
	return out, nil
}

// Close releases the database.
func (s *PickStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
