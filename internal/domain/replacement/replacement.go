// Package replacement derives per-slot replacement levels from a realized
// assignment and measures value above them.
package replacement

import "math"

// Member is one assigned player as seen by the level calculation.
type Member struct {
	Slot  string
	Value float64
	// Pinned members hold a slot but do not set its level.
	Pinned bool
}

// Levels returns the replacement level of every slot: the lowest value among
// non-pinned members assigned to it. Slots listed in slots without such a
// member get level 0.
func Levels(slots []string, members []Member) map[string]float64 {
	out := make(map[string]float64, len(slots))
	seen := make(map[string]bool, len(slots))
	for _, m := range members {
		if m.Pinned || m.Slot == "" {
			continue
		}
		if !seen[m.Slot] || m.Value < out[m.Slot] {
			out[m.Slot] = m.Value
			seen[m.Slot] = true
		}
	}
	for _, s := range slots {
		if !seen[s] {
			out[s] = 0
		}
	}
	return out
}

// VAR is value above replacement, floored at zero.
func VAR(value, level float64) float64 {
	return math.Max(0, value-level)
}

// Apply computes VAR for every member against levels, index-aligned.
func Apply(levels map[string]float64, members []Member) []float64 {
	out := make([]float64, len(members))
	for i, m := range members {
		if m.Slot == "" {
			continue
		}
		out[i] = VAR(m.Value, levels[m.Slot])
	}
	return out
}
