// Package draft tracks auction picks per team and exposes drafted players to
// the valuation engine.
package draft

import (
	"fmt"
	"sort"
	"sync"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
)

// TeamID returns the id of the i-th team, 1-based.
func TeamID(i int) string { return fmt.Sprintf("team_%02d", i) }

// TeamSummary is a read-only view of one team.
type TeamSummary struct {
	TeamID          string `json:"team_id"`
	Picks           int    `json:"picks"`
	Spent           int    `json:"spent"`
	BudgetRemaining int    `json:"budget_remaining"`
	SpotsRemaining  int    `json:"spots_remaining"`
}

type team struct {
	id     string
	budget int
	spots  int
	picks  []model.PickEvent
}

// State is the league's draft ledger. It is safe for concurrent use.
type State struct {
	mu      sync.RWMutex
	teams   map[string]*team
	ids     []string
	drafted map[string]model.PickEvent
	picks   []model.PickEvent
	last    int
}

// NewState creates an empty draft for the league in s.
func NewState(s league.Settings) *State {
	st := &State{
		teams:   make(map[string]*team, s.Teams),
		drafted: make(map[string]model.PickEvent),
	}
	for i := 1; i <= s.Teams; i++ {
		id := TeamID(i)
		st.ids = append(st.ids, id)
		st.teams[id] = &team{id: id, budget: s.BudgetPerTeam, spots: s.RosterSize()}
	}
	return st
}

// Validate checks p against the current state without applying it.
func (s *State) Validate(p model.PickEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validate(p)
}

func (s *State) validate(p model.PickEvent) error {
	if p.PlayerID == "" {
		return fmt.Errorf("%w: player id is required", ErrInvalidPick)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: negative price %d", ErrInvalidPick, p.Price)
	}
	t, ok := s.teams[p.TeamID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTeam, p.TeamID)
	}
	if prev, ok := s.drafted[p.PlayerID]; ok {
		return fmt.Errorf("%w: %s at pick %d", ErrAlreadyDrafted, p.PlayerID, prev.PickNumber)
	}
	if t.spots <= 0 {
		return fmt.Errorf("%w: %s", ErrRosterFull, t.id)
	}
	if p.Price > t.budget {
		return fmt.Errorf("%w: %s has %d, price %d", ErrOverBudget, t.id, t.budget, p.Price)
	}
	return nil
}

// Apply validates and records p. A zero pick number is replaced by the next
// one in sequence. The recorded pick is returned.
func (s *State) Apply(p model.PickEvent) (model.PickEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.validate(p); err != nil {
		return model.PickEvent{}, err
	}
	if p.PickNumber == 0 {
		p.PickNumber = s.last + 1
	}
	if p.PickNumber > s.last {
		s.last = p.PickNumber
	}
	t := s.teams[p.TeamID]
	t.budget -= p.Price
	t.spots--
	t.picks = append(t.picks, p)
	s.drafted[p.PlayerID] = p
	s.picks = append(s.picks, p)
	return p, nil
}

// Next returns the pick number the next unnumbered pick will receive.
func (s *State) Next() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last + 1
}

// ApplyAll applies picks in pick-number order, stopping at the first error.
func (s *State) ApplyAll(picks []model.PickEvent) error {
	sorted := make([]model.PickEvent, len(picks))
	copy(sorted, picks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PickNumber < sorted[j].PickNumber })
	for _, p := range sorted {
		if _, err := s.Apply(p); err != nil {
			return fmt.Errorf("pick %d: %w", p.PickNumber, err)
		}
	}
	return nil
}

// OpenTeam returns the team with the most open roster spots, lowest id first.
// It is used to seat keepers listed without a team.
func (s *State) OpenTeam() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	best := ""
	for _, id := range s.ids {
		t := s.teams[id]
		if t.spots <= 0 {
			continue
		}
		if best == "" || t.spots > s.teams[best].spots {
			best = id
		}
	}
	return best, best != ""
}

// Pins returns every drafted player keyed by id.
func (s *State) Pins() map[string]model.Pin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.Pin, len(s.drafted))
	for id, p := range s.drafted {
		out[id] = model.Pin{PlayerID: id, TeamID: p.TeamID, Price: p.Price, PickNumber: p.PickNumber}
	}
	return out
}

// IsDrafted reports whether id has been picked.
func (s *State) IsDrafted(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.drafted[id]
	return ok
}

// Picks returns every applied pick in application order.
func (s *State) Picks() []model.PickEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PickEvent, len(s.picks))
	copy(out, s.picks)
	return out
}

// Spent is the league-wide total paid so far.
func (s *State) Spent() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, p := range s.picks {
		total += p.Price
	}
	return total
}

// Summary lists every team ordered by id.
func (s *State) Summary() []TeamSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TeamSummary, 0, len(s.ids))
	for _, id := range s.ids {
		t := s.teams[id]
		spent := 0
		for _, p := range t.picks {
			spent += p.Price
		}
		out = append(out, TeamSummary{
			TeamID:          id,
			Picks:           len(t.picks),
			Spent:           spent,
			BudgetRemaining: t.budget,
			SpotsRemaining:  t.spots,
		})
	}
	return out
}
