// Package optimizer places players into a league-wide pool of roster slots.
//
// Placement is greedy: pinned players go first in pick order, then the rest by
// value descending. Each player takes the open eligible slot with the lowest
// scarcity, remaining capacity divided by the players still waiting that could
// fill it. The result is deterministic but not guaranteed to be optimal.
//
// Assign owns the capacity it mutates; concurrent calls need no locking as
// long as each passes its own pool slice, which Assign copies anyway.
package optimizer

import (
	"sort"

	"github.com/okian/auctioneer/internal/domain/league"
	"github.com/okian/auctioneer/internal/domain/model"
)

// Candidate is one player offered to the optimizer.
type Candidate struct {
	ID        string
	Positions []string
	Value     float64
	// Pinned players were already drafted and are placed before everyone else
	// in ascending PickOrder.
	Pinned    bool
	PickOrder int
}

// Assignment binds a candidate, by input index, to one slot.
type Assignment struct {
	Index  int
	Slot   string
	Pinned bool
}

// Unplaced is a candidate left without a slot.
type Unplaced struct {
	Index  int
	Reason string
}

// Result is the outcome of one Assign call. Assignments are in placement order.
type Result struct {
	Assignments []Assignment
	Unplaced    []Unplaced
	Remaining   []league.SlotCapacity
}

// SlotOf returns the slot of every candidate index, "" when unplaced.
func (r Result) SlotOf(n int) []string {
	out := make([]string, n)
	for _, a := range r.Assignments {
		out[a.Index] = a.Slot
	}
	return out
}

// Filled counts assignments per slot.
func (r Result) Filled() map[string]int {
	out := make(map[string]int, len(r.Remaining))
	for _, a := range r.Assignments {
		out[a.Slot]++
	}
	return out
}

// Order returns the placement order: pinned candidates by pick order, then the
// rest by value descending. Ties keep input order.
func Order(cands []Candidate) []int {
	order := make([]int, len(cands))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ca, cb := cands[order[a]], cands[order[b]]
		if ca.Pinned != cb.Pinned {
			return ca.Pinned
		}
		if ca.Pinned {
			return ca.PickOrder < cb.PickOrder
		}
		return ca.Value > cb.Value
	})
	return order
}

// Assign places candidates of type t into pool. Slots are considered in pool
// order, which also breaks equal scarcity. Positions that name no pool slot
// are ignored.
func Assign(t league.PlayerType, pool []league.SlotCapacity, cands []Candidate) Result {
	slotIdx := make(map[string]int, len(pool))
	remaining := make([]int, len(pool))
	total := 0
	for i, s := range pool {
		slotIdx[s.Name] = i
		if s.Capacity > 0 {
			remaining[i] = s.Capacity
			total += s.Capacity
		}
	}

	// eligible[c] lists pool indices in pool order; waiting[s] counts candidates
	// not yet processed that could fill slot s.
	eligible := make([][]int, len(cands))
	waiting := make([]int, len(pool))
	for c, cand := range cands {
		var idx []int
		for _, name := range t.EligibleSlots(cand.Positions) {
			if i, ok := slotIdx[name]; ok {
				idx = append(idx, i)
			}
		}
		sort.Ints(idx)
		eligible[c] = idx
		for _, i := range idx {
			waiting[i]++
		}
	}

	res := Result{Assignments: make([]Assignment, 0, min(total, len(cands)))}
	order := Order(cands)
	for pos, c := range order {
		if total == 0 {
			for _, rest := range order[pos:] {
				res.Unplaced = append(res.Unplaced, Unplaced{Index: rest, Reason: model.ReasonCapacityExhausted})
			}
			break
		}

		best := -1
		var bestScore float64
		for _, i := range eligible[c] {
			if remaining[i] == 0 {
				continue
			}
			score := float64(remaining[i]) / float64(waiting[i])
			if best < 0 || score < bestScore {
				best, bestScore = i, score
			}
		}
		for _, i := range eligible[c] {
			waiting[i]--
		}
		if best < 0 {
			res.Unplaced = append(res.Unplaced, Unplaced{Index: c, Reason: model.ReasonNoEligibleSlot})
			continue
		}
		remaining[best]--
		total--
		res.Assignments = append(res.Assignments, Assignment{Index: c, Slot: pool[best].Name, Pinned: cands[c].Pinned})
	}

	res.Remaining = make([]league.SlotCapacity, len(pool))
	for i, s := range pool {
		res.Remaining[i] = league.SlotCapacity{Name: s.Name, Capacity: remaining[i]}
	}
	return res
}
