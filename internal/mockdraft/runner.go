// Package mockdraft drives a simulated auction against a running valuation
// service and checks the budget bookkeeping it reports back.
package mockdraft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/auctioneer/pkg/logger"
)

// ErrNotSettled is returned when an accepted pick never shows on the board.
var ErrNotSettled = errors.New("pick not reflected on board")

// nominationWindow is how many of the top available players a nomination
// is drawn from.
const nominationWindow = 3

// Run executes a complete mock draft against the configured service.
func Run(ctx context.Context, cfg *Config) error {
	log := logger.Get().Named("mockdraft")
	log.Info(ctx, "starting mock draft",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("picks", cfg.Picks),
		logger.Int("jitter", cfg.Jitter))

	client := NewClient(cfg.BaseURL, orDuration(cfg.Timeout, DefaultTimeout))
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	outcomes, stats, err := Draft(ctx, client, cfg)
	if err != nil {
		return err
	}

	if cfg.OutputFile != "" {
		if err := saveTranscript(cfg.OutputFile, outcomes); err != nil {
			return fmt.Errorf("failed to save transcript: %w", err)
		}
		log.Info(ctx, "transcript saved", logger.String("file", cfg.OutputFile))
	}

	displayFinalStats(ctx, log, stats)
	log.Info(ctx, "mock draft completed successfully")
	return nil
}

// Draft submits up to cfg.Picks picks, each awarded to the team with the
// deepest pockets, and verifies the team ledger afterwards. It stops early
// once no team can bid or no player is left.
func Draft(ctx context.Context, client *Client, cfg *Config) ([]Outcome, Stats, error) {
	log := logger.Get().Named("mockdraft")
	stats := Stats{StartTime: time.Now()}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	pool := cfg.Pool
	if pool <= 0 {
		pool = DefaultPool
	}

	before, err := client.Teams(ctx)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to fetch teams: %w", err)
	}

	var outcomes []Outcome
	for i := 0; i < cfg.Picks; i++ {
		if err := ctx.Err(); err != nil {
			return outcomes, stats, err
		}
		teams, err := client.Teams(ctx)
		if err != nil {
			return outcomes, stats, fmt.Errorf("failed to fetch teams: %w", err)
		}
		winner, ok := richestTeam(teams, rng)
		if !ok {
			log.Info(ctx, "no team can bid; draft complete", logger.Int("pick", i))
			break
		}
		board, err := client.Available(ctx, pool)
		if err != nil {
			return outcomes, stats, fmt.Errorf("failed to fetch board: %w", err)
		}
		if err := verifyBoard(board); err != nil {
			return outcomes, stats, err
		}
		if len(board.Players) == 0 {
			log.Info(ctx, "player pool exhausted", logger.Int("pick", i))
			break
		}

		p := board.Players[rng.IntN(min(nominationWindow, len(board.Players)))]
		pick := Pick{
			PlayerID:   p.PlayerID,
			PlayerName: p.Name,
			TeamID:     winner.TeamID,
			Price:      bidPrice(p.Price, cfg.Jitter, winner.MaxBid, rng),
		}
		out := Outcome{Pick: pick, Value: p.Price, RunID: board.RunID}
		stats.PicksAttempted++

		status, code, err := client.Submit(ctx, pick)
		switch {
		case err != nil:
			out.Status = StatusFailed
			stats.PicksFailed++
			log.Warn(ctx, "pick submission failed", logger.String("playerId", pick.PlayerID), logger.Error(err))
		case status == http.StatusAccepted:
			if err := waitDrafted(ctx, client, pick, orDuration(cfg.Settle, DefaultSettle)); err != nil {
				return outcomes, stats, err
			}
			out.Status = StatusAccepted
			stats.PicksAccepted++
			stats.DollarsSpent += pick.Price
		default:
			out.Status = StatusRejected
			out.Code = code
			stats.PicksRejected++
		}
		outcomes = append(outcomes, out)

		if cfg.Verbose {
			log.Info(ctx, "pick",
				logger.Int("n", i+1),
				logger.String("playerId", pick.PlayerID),
				logger.String("teamId", pick.TeamID),
				logger.Int("price", pick.Price),
				logger.Int("value", p.Price),
				logger.String("status", out.Status))
		}
	}

	after, err := client.Teams(ctx)
	if err != nil {
		return outcomes, stats, fmt.Errorf("failed to fetch teams: %w", err)
	}
	if err := verifyTeams(before, after, stats.DollarsSpent); err != nil {
		return outcomes, stats, err
	}
	if err := verifyDuplicate(ctx, client, outcomes); err != nil {
		return outcomes, stats, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	return outcomes, stats, nil
}

// richestTeam returns the team with the highest max bid; ties are broken at
// random. Teams with no open spot or no money are skipped.
func richestTeam(teams []Team, rng *rand.Rand) (Team, bool) {
	var best []Team
	for _, t := range teams {
		if t.SpotsRemaining <= 0 || t.MaxBid <= 0 {
			continue
		}
		switch {
		case len(best) == 0 || t.MaxBid > best[0].MaxBid:
			best = append(best[:0], t)
		case t.MaxBid == best[0].MaxBid:
			best = append(best, t)
		}
	}
	if len(best) == 0 {
		return Team{}, false
	}
	return best[rng.IntN(len(best))], true
}

// bidPrice perturbs value by up to jitter dollars and clamps it to [1, maxBid].
func bidPrice(value, jitter, maxBid int, rng *rand.Rand) int {
	price := value
	if jitter > 0 {
		price += rng.IntN(2*jitter+1) - jitter
	}
	return max(1, min(price, maxBid))
}

func waitDrafted(ctx context.Context, client *Client, pick Pick, settle time.Duration) error {
	deadline := time.Now().Add(settle)
	for {
		p, err := client.Player(ctx, pick.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", pick.PlayerID, err)
		}
		if p.Drafted {
			if p.DraftedBy != pick.TeamID {
				return fmt.Errorf("%s drafted by %s, want %s", pick.PlayerID, p.DraftedBy, pick.TeamID)
			}
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s after %s", ErrNotSettled, pick.PlayerID, settle)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settlePoll):
		}
	}
}

func saveTranscript(filename string, outcomes []Outcome) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(outcomes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, append(data, '\n'), filePermission)
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats Stats) {
	var acceptRate, picksPerSecond float64
	if stats.PicksAttempted > 0 {
		acceptRate = float64(stats.PicksAccepted) / float64(stats.PicksAttempted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		picksPerSecond = float64(stats.PicksAttempted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("picksAttempted", stats.PicksAttempted),
		logger.Int("picksAccepted", stats.PicksAccepted),
		logger.Int("picksRejected", stats.PicksRejected),
		logger.Int("picksFailed", stats.PicksFailed),
		logger.Int("dollarsSpent", stats.DollarsSpent),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("picksPerSecond", picksPerSecond))
}

func orDuration(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
