package mockdraft

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrInconsistent is returned when the service's bookkeeping does not add up.
var ErrInconsistent = errors.New("inconsistent draft state")

// verifyTeams checks every team ledger and that league spending grew by
// exactly the accepted prices.
func verifyTeams(before, after []Team, spent int) error {
	if len(before) != len(after) {
		return fmt.Errorf("%w: team count changed from %d to %d", ErrInconsistent, len(before), len(after))
	}
	budget := -1
	var gotBefore, gotAfter int
	for _, t := range before {
		gotBefore += t.Spent
	}
	for _, t := range after {
		gotAfter += t.Spent
		if t.BudgetRemaining < 0 {
			return fmt.Errorf("%w: %s has negative budget %d", ErrInconsistent, t.TeamID, t.BudgetRemaining)
		}
		if t.MaxBid > t.BudgetRemaining {
			return fmt.Errorf("%w: %s max bid %d exceeds budget %d", ErrInconsistent, t.TeamID, t.MaxBid, t.BudgetRemaining)
		}
		if t.SpotsRemaining == 0 && t.MaxBid != 0 {
			return fmt.Errorf("%w: %s has a full roster but max bid %d", ErrInconsistent, t.TeamID, t.MaxBid)
		}
		total := t.Spent + t.BudgetRemaining
		if budget >= 0 && total != budget {
			return fmt.Errorf("%w: %s budget %d differs from %d", ErrInconsistent, t.TeamID, total, budget)
		}
		budget = total
	}
	if gotAfter-gotBefore != spent {
		return fmt.Errorf("%w: teams spent %d, accepted picks total %d", ErrInconsistent, gotAfter-gotBefore, spent)
	}
	return nil
}

// verifyBoard checks the available board holds no drafted players and is
// ordered by price.
func verifyBoard(b Board) error {
	for i, p := range b.Players {
		if p.Drafted {
			return fmt.Errorf("%w: drafted player %s on available board", ErrInconsistent, p.PlayerID)
		}
		if i > 0 && p.Price > b.Players[i-1].Price {
			return fmt.Errorf("%w: board not ordered by price at %d", ErrInconsistent, i)
		}
	}
	return nil
}

// verifyDuplicate resubmits the last accepted pick and expects a conflict.
func verifyDuplicate(ctx context.Context, client *Client, outcomes []Outcome) error {
	for i := len(outcomes) - 1; i >= 0; i-- {
		if outcomes[i].Status != StatusAccepted {
			continue
		}
		status, code, err := client.Submit(ctx, outcomes[i].Pick)
		if err != nil {
			return fmt.Errorf("duplicate check: %w", err)
		}
		if status != http.StatusConflict {
			return fmt.Errorf("%w: resubmitted %s answered %d (%s)", ErrInconsistent, outcomes[i].PlayerID, status, code)
		}
		return nil
	}
	return nil
}
