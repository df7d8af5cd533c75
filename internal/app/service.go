// Package service provides the draft-day service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	pickqueue "github.com/okian/auctioneer/internal/adapters/mq/queue"
	"github.com/okian/auctioneer/internal/adapters/mq/worker"
	repository "github.com/okian/auctioneer/internal/adapters/repository"
	"github.com/okian/auctioneer/internal/domain/dedupe"
	"github.com/okian/auctioneer/internal/domain/draft"
	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/internal/domain/sgp"
	"github.com/okian/auctioneer/internal/domain/types"
	"github.com/okian/auctioneer/internal/domain/valuation"
	"github.com/okian/auctioneer/pkg/logger"
	"github.com/okian/auctioneer/pkg/metrics"
)

const (
	defaultQueueSize     = 256
	defaultMaxBoardLimit = 1000
	shutdownTimeout      = 10 * time.Second
	slowPickThreshold    = 2 * time.Second
)

// PickLog persists picks so a restarted draft can be replayed.
type PickLog interface {
	Append(ctx context.Context, p model.PickEvent) error
	List(ctx context.Context) ([]model.PickEvent, error)
	Close() error
}

// Service owns the draft state and republishes the valuation board after
// every applied pick. Picks are applied by a single worker, so runs never
// overlap.
type Service struct {
	mu sync.RWMutex

	engine   *valuation.Engine
	settings league.Settings
	hitters  []model.Player
	pitchers []model.Player
	players  map[string]model.Player
	keepers  []model.PickEvent

	board   *repository.BoardStore
	pickLog PickLog
	draft   *draft.State
	deduper dedupe.Deduper
	queue   pickqueue.Queue
	worker  *worker.InMemoryWorker

	queueSize      int
	maxBoardLimit  int
	diagnosticsDir string

	runs    int
	lastRun *valuation.Result
	lastErr error

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:     defaultQueueSize,
		maxBoardLimit: defaultMaxBoardLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start restores the draft, publishes the first board and starts the
// revaluation worker.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.engine == nil {
		return ErrNoEngine
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting auction service...")

	s.settings = s.engine.Calibration().Settings()
	s.players = make(map[string]model.Player, len(s.hitters)+len(s.pitchers))
	for _, group := range [][]model.Player{s.hitters, s.pitchers} {
		for _, p := range group {
			s.players[p.ID] = p
		}
	}
	s.board = repository.NewBoardStore(repository.WithMaxLimit(s.maxBoardLimit))
	s.draft = draft.NewState(s.settings)
	s.deduper = dedupe.NewInMemoryDeduper()

	if err := s.restore(ctx); err != nil {
		return err
	}
	if err := s.revalue(ctx); err != nil {
		return fmt.Errorf("initial valuation: %w", err)
	}
	if s.diagnosticsDir != "" && s.lastRun != nil {
		if err := sgp.WriteDiagnostics(s.diagnosticsDir, s.lastRun.Report); err != nil {
			s.logger.Warn(ctx, "diagnostics not written", logger.String("dir", s.diagnosticsDir), logger.Error(err))
		}
	}

	s.queue = pickqueue.NewInMemoryQueue(pickqueue.WithCapacity(s.queueSize))
	s.worker = worker.NewInMemoryWorker(s.queue, s,
		worker.WithName("revaluer"),
		worker.WithLogger(s.logger.Named("worker")),
		worker.WithSlowThreshold(slowPickThreshold))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	go s.worker.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "auction service started",
		logger.Int("players", len(s.players)),
		logger.Int("picks", len(s.draft.Picks())),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// restore replays the pick log, or seats the keepers when the log is empty.
// Must be called with s.mu held.
func (s *Service) restore(ctx context.Context) error {
	var logged []model.PickEvent
	if s.pickLog != nil {
		var err error
		if logged, err = s.pickLog.List(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrReplay, err)
		}
	}

	if len(logged) > 0 {
		if err := s.draft.ApplyAll(logged); err != nil {
			return fmt.Errorf("%w: %w", ErrReplay, err)
		}
		if len(s.keepers) > 0 {
			s.logger.Info(ctx, "draft resumed from pick log; keepers file ignored", logger.Int("picks", len(logged)))
		}
	} else {
		for _, k := range s.keepers {
			if k.TeamID == "" {
				team, ok := s.draft.OpenTeam()
				if !ok {
					return fmt.Errorf("keeper %s: %w", k.PlayerID, draft.ErrRosterFull)
				}
				k.TeamID = team
			}
			if p, ok := s.players[k.PlayerID]; ok && k.PlayerName == "" {
				k.PlayerName = p.Name
			}
			if err := s.commit(ctx, k); err != nil {
				return fmt.Errorf("keeper %s: %w", k.PlayerID, err)
			}
		}
	}

	for _, p := range s.draft.Picks() {
		s.deduper.SeenAndRecord(ctx, p.PlayerID)
	}
	metrics.UpdateDraftBudgetRemaining(s.settings.TotalBudget() - s.draft.Spent())
	return nil
}

// commit numbers, persists and applies one pick.
func (s *Service) commit(ctx context.Context, p model.PickEvent) error {
	if err := s.draft.Validate(p); err != nil {
		return err
	}
	p.PickNumber = s.draft.Next()
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}
	if s.pickLog != nil {
		if err := s.pickLog.Append(ctx, p); err != nil {
			return fmt.Errorf("%w: %w", ErrNotPersisted, err)
		}
	}
	if _, err := s.draft.Apply(p); err != nil {
		return err
	}
	metrics.RecordDraftPick()
	return nil
}

// Stop drains the pick queue and shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	q, w, cancel := s.queue, s.worker, s.cancel
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping auction service...")

	// The worker takes s.mu per pick, so it must not be held here.
	_ = q.Close()
	shutdownCtx, stop := context.WithTimeout(ctx, shutdownTimeout)
	defer stop()
	select {
	case <-w.Done():
	case <-shutdownCtx.Done():
	}
	if err := w.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "worker did not stop cleanly", logger.Error(err))
	}
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pickLog != nil {
		if err := s.pickLog.Close(); err != nil {
			s.logger.Warn(ctx, "pick log close failed", logger.Error(err))
		}
	}
	s.logger.Info(ctx, "auction service stopped")
}

// SeenAndRecord reports whether a pick for player id is already pending or
// applied, recording it when not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord releases player id after a pick for it was dropped.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the number of players with a pending or applied pick.
func (s *Service) Size() int {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// ValidatePick checks p against the projected pool and the draft.
func (s *Service) ValidatePick(ctx context.Context, p model.PickEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return s.validate(p)
}

func (s *Service) validate(p model.PickEvent) error {
	if _, ok := s.players[p.PlayerID]; !ok {
		return fmt.Errorf("%w: %s", draft.ErrUnknownPlayer, p.PlayerID)
	}
	return s.draft.Validate(p)
}

// Enqueue submits a pick for asynchronous processing. It returns false on
// backpressure or when the service is stopping.
func (s *Service) Enqueue(ctx context.Context, p model.PickEvent) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return false
	}
	if err := s.queue.Enqueue(ctx, p); err != nil {
		s.logger.Warn(ctx, "pick not queued",
			logger.String("player_id", p.PlayerID),
			logger.Error(err),
		)
		return false
	}
	s.logger.Debug(ctx, "pick queued",
		logger.String("player_id", p.PlayerID),
		logger.String("team_id", p.TeamID),
		logger.Int("price", p.Price),
	)
	return true
}

// Process applies one queued pick and republishes the board. It is called
// by the worker only.
func (s *Service) Process(ctx context.Context, p pickqueue.Pick) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pl, ok := s.players[p.PlayerID]; ok && p.PlayerName == "" {
		p.PlayerName = pl.Name
	}
	err := s.validate(p)
	if err == nil {
		err = s.commit(ctx, p)
	}
	if err != nil {
		metrics.RecordDraftPickRejected(rejectReason(err))
		if !s.draft.IsDrafted(p.PlayerID) {
			s.deduper.Unrecord(ctx, p.PlayerID)
		}
		return fmt.Errorf("apply pick: %w", err)
	}
	metrics.UpdateDraftBudgetRemaining(s.settings.TotalBudget() - s.draft.Spent())

	s.logger.Info(ctx, "pick applied",
		logger.String("player_id", p.PlayerID),
		logger.String("team_id", p.TeamID),
		logger.Int("price", p.Price),
	)
	return s.revalue(ctx)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, draft.ErrUnknownPlayer):
		return "unknown_player"
	case errors.Is(err, draft.ErrUnknownTeam):
		return "unknown_team"
	case errors.Is(err, draft.ErrAlreadyDrafted):
		return "already_drafted"
	case errors.Is(err, draft.ErrOverBudget):
		return "over_budget"
	case errors.Is(err, draft.ErrRosterFull):
		return "roster_full"
	case errors.Is(err, ErrNotPersisted):
		return "not_persisted"
	}
	return "invalid"
}

// Revalue re-runs the pipeline against the current draft and publishes the
// result.
func (s *Service) Revalue(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	return s.revalue(ctx)
}

// revalue must be called with s.mu held.
func (s *Service) revalue(ctx context.Context) error {
	start := time.Now()
	res, err := s.engine.Run(ctx, valuation.Input{
		Hitters:  s.hitters,
		Pitchers: s.pitchers,
		Pins:     s.draft.Pins(),
	})
	if err != nil {
		s.lastErr = err
		metrics.RecordValuationFailure("run")
		metrics.RecordErrorByComponent("service", "valuation_failed")
		return fmt.Errorf("valuation run: %w", err)
	}

	runID := uuid.NewString()
	if err := s.board.Publish(ctx, runID, time.Now().UTC(), res.Players, res.Unassigned); err != nil {
		s.lastErr = err
		return fmt.Errorf("publish board: %w", err)
	}
	s.runs++
	s.lastRun = res
	s.lastErr = nil

	metrics.RecordValuationRun(float64(time.Since(start).Milliseconds()))
	metrics.UpdateLastRun(len(res.Players), len(res.Unassigned), res.Budget.Drift)
	s.logger.Info(ctx, "valuation published",
		logger.String("run_id", runID),
		logger.Int("players", len(res.Players)),
		logger.Int("unassigned", len(res.Unassigned)),
		logger.Int("available_budget", res.Budget.Available),
		logger.Int("notes", len(res.Notes)),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// Valuations returns one page of the current board.
func (s *Service) Valuations(ctx context.Context, q repository.Query) (types.Board, error) {
	if !s.isStarted() {
		return types.Board{}, ErrNotStarted
	}
	players, err := s.board.List(ctx, q)
	if err != nil {
		return types.Board{}, err
	}
	meta := s.board.Meta(ctx)
	total := meta.Players
	if q.Available {
		total = meta.Available
	}
	return types.Board{
		RunID:       meta.RunID,
		PublishedAt: meta.PublishedAt,
		Total:       total,
		Players:     players,
	}, nil
}

// TopN returns the n best available players.
func (s *Service) TopN(ctx context.Context, n int) ([]model.Valuation, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.board.TopN(ctx, n)
}

// BySlot returns the n best available players assigned to slot.
func (s *Service) BySlot(ctx context.Context, slot string, n int) ([]model.Valuation, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.board.BySlot(ctx, slot, n)
}

// Valuation returns one player's row from the current board.
func (s *Service) Valuation(ctx context.Context, playerID string) (model.Valuation, error) {
	if !s.isStarted() {
		return model.Valuation{}, ErrNotStarted
	}
	return s.board.Get(ctx, playerID)
}

// Teams summarizes every team's draft position.
func (s *Service) Teams(ctx context.Context) []types.Team {
	if !s.isStarted() {
		return nil
	}
	sum := s.draft.Summary()
	out := make([]types.Team, 0, len(sum))
	for _, t := range sum {
		out = append(out, types.Team{
			TeamID:          t.TeamID,
			Picks:           t.Picks,
			Spent:           t.Spent,
			BudgetRemaining: t.BudgetRemaining,
			SpotsRemaining:  t.SpotsRemaining,
			MaxBid:          types.ComputeMaxBid(t.BudgetRemaining, t.SpotsRemaining, s.settings.MinBid),
		})
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":   s.started,
		"queueSize": s.queueSize,
		"runs":      s.runs,
	}
	if !s.started {
		return stats
	}

	queueLen := s.queue.Len(ctx)
	meta := s.board.Meta(ctx)
	stats["queueLength"] = queueLen
	stats["picks"] = len(s.draft.Picks())
	stats["spent"] = s.draft.Spent()
	stats["budgetRemaining"] = s.settings.TotalBudget() - s.draft.Spent()
	stats["pending"] = s.deduper.Size() - len(s.draft.Picks())
	stats["boardSize"] = meta.Players
	stats["available"] = meta.Available
	stats["unassigned"] = meta.Unassigned
	stats["lastRunId"] = meta.RunID
	stats["lastRunAt"] = meta.PublishedAt
	if s.lastRun != nil {
		stats["budget"] = s.lastRun.Budget
		stats["notes"] = len(s.lastRun.Notes)
	}
	if s.lastErr != nil {
		stats["lastError"] = s.lastErr.Error()
	}

	metrics.UpdateQueueSize(queueLen, s.queueSize)
	metrics.UpdateBoardSize(meta.Players)
	return stats
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
