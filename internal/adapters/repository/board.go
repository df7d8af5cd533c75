package repository

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/pkg/metrics"
)

const defaultMaxLimit = 1000

// snapshot is an immutable board. Readers load it without locking.
type snapshot struct {
	meta       Meta
	entries    []model.Valuation
	byID       map[string]int
	unassigned []model.Unassigned
}

// BoardStore keeps the latest board behind an atomic pointer. Publish swaps
// the whole snapshot so readers never see a half-written run.
type BoardStore struct {
	maxLimit int
	snapshot atomic.Pointer[snapshot]
}

// NewBoardStore creates an empty board.
func NewBoardStore(opts ...Option) *BoardStore {
	s := &BoardStore{maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&snapshot{byID: map[string]int{}})
	return s
}

// Publish implements Store.
func (s *BoardStore) Publish(ctx context.Context, runID string, at time.Time, players []model.Valuation, unassigned []model.Unassigned) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries := make([]model.Valuation, len(players))
	copy(entries, players)
	sortEntries(entries)

	snap := &snapshot{
		meta: Meta{
			RunID:       runID,
			PublishedAt: at,
			Players:     len(entries),
			Unassigned:  len(unassigned),
		},
		entries:    entries,
		byID:       make(map[string]int, len(entries)),
		unassigned: append([]model.Unassigned(nil), unassigned...),
	}
	for i, e := range entries {
		snap.byID[e.PlayerID] = i
		if !e.Drafted {
			snap.meta.Available++
		}
	}
	s.snapshot.Store(snap)

	metrics.RecordBoardPublish()
	metrics.UpdateBoardSize(len(entries))
	return nil
}

// List implements Store.
func (s *BoardStore) List(ctx context.Context, q Query) ([]model.Valuation, error) {
	start := time.Now()
	defer func() {
		metrics.RecordBoardQueryLatency(float64(time.Since(start).Nanoseconds()) / 1e6)
	}()

	if q.Limit <= 0 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, q.Limit)
	}
	limit := min(q.Limit, s.maxLimit)

	snap := s.snapshot.Load()
	out := make([]model.Valuation, 0, min(limit, len(snap.entries)))
	for _, e := range snap.entries {
		if len(out) == limit {
			break
		}
		if q.Slot != "" && e.Slot != q.Slot {
			continue
		}
		if q.Available && e.Drafted {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// TopN returns the n best available players.
func (s *BoardStore) TopN(ctx context.Context, n int) ([]model.Valuation, error) {
	return s.List(ctx, Query{Limit: n, Available: true})
}

// BySlot returns the n best available players assigned to slot.
func (s *BoardStore) BySlot(ctx context.Context, slot string, n int) ([]model.Valuation, error) {
	return s.List(ctx, Query{Limit: n, Slot: slot, Available: true})
}

// Get implements Store.
func (s *BoardStore) Get(ctx context.Context, playerID string) (model.Valuation, error) {
	snap := s.snapshot.Load()
	i, ok := snap.byID[playerID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Valuation{}, fmt.Errorf("%w: %s", ErrNotFound, playerID)
	}
	return snap.entries[i], nil
}

// Unassigned returns the players the last run could not place.
func (s *BoardStore) Unassigned(ctx context.Context) []model.Unassigned {
	snap := s.snapshot.Load()
	return append([]model.Unassigned(nil), snap.unassigned...)
}

// Count implements Store.
func (s *BoardStore) Count(ctx context.Context) int {
	return len(s.snapshot.Load().entries)
}

// Meta implements Store.
func (s *BoardStore) Meta(ctx context.Context) Meta {
	return s.snapshot.Load().meta
}

// sortEntries orders by price desc, then raw value desc, then id asc.
func sortEntries(entries []model.Valuation) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Price != b.Price {
			return a.Price > b.Price
		}
		if a.RawValue != b.RawValue {
			return a.RawValue > b.RawValue
		}
		return a.PlayerID < b.PlayerID
	})
}
