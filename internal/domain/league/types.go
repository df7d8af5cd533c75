// Package league describes the scoring and roster rules a valuation run is
// computed against: player types, categories, slots, budget.
package league

import (
	"fmt"
	"strings"
)

// PlayerType is the closed set of player kinds. Each kind owns its playing
// time stat, rate categories and generic slots.
type PlayerType int

const (
	Hitter PlayerType = iota + 1
	Pitcher
)

// Types lists every player type in evaluation order.
func Types() []PlayerType { return []PlayerType{Hitter, Pitcher} }

func (t PlayerType) String() string {
	switch t {
	case Hitter:
		return "hitter"
	case Pitcher:
		return "pitcher"
	default:
		return fmt.Sprintf("PlayerType(%d)", int(t))
	}
}

// Valid reports whether t is one of the declared types.
func (t PlayerType) Valid() bool { return t == Hitter || t == Pitcher }

// ParsePlayerType accepts hitter(s)/h and pitcher(s)/p, case-insensitive.
func ParsePlayerType(s string) (PlayerType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hitter", "hitters", "h":
		return Hitter, nil
	case "pitcher", "pitchers", "p":
		return Pitcher, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPlayerType, s)
}

func (t PlayerType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayerType, int(t))
	}
	return []byte(t.String()), nil
}

func (t *PlayerType) UnmarshalText(b []byte) error {
	v, err := ParsePlayerType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// PlayingTime is the stat that scales rate categories and orders the
// replacement tier: PA for hitters, IP for pitchers.
func (t PlayerType) PlayingTime() string {
	if t == Pitcher {
		return StatIP
	}
	return StatPA
}

// FlexSlots are the generic slots every player of the type qualifies for.
func (t PlayerType) FlexSlots() []string {
	if t == Pitcher {
		return []string{SlotP, SlotBenchP}
	}
	return []string{SlotUtil, SlotBenchH}
}

// positionAliases folds declared positions onto roster slot names.
func (t PlayerType) positionAliases() map[string]string {
	if t == Pitcher {
		return map[string]string{"SP": SlotP, "RP": SlotP}
	}
	return map[string]string{"LF": SlotOF, "CF": SlotOF, "RF": SlotOF}
}

// EligibleSlots expands declared positions into the slot names a player of
// type t may fill. Unknown positions pass through unchanged; callers only
// consider names that exist in the roster.
func (t PlayerType) EligibleSlots(positions []string) []string {
	aliases := t.positionAliases()
	seen := make(map[string]struct{}, len(positions)+2)
	out := make([]string, 0, len(positions)+2)
	add := func(s string) {
		if _, ok := seen[s]; ok || s == "" {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, p := range positions {
		p = strings.ToUpper(strings.TrimSpace(p))
		if a, ok := aliases[p]; ok {
			add(a)
			continue
		}
		add(p)
	}
	for _, s := range t.FlexSlots() {
		add(s)
	}
	return out
}

// Stat and slot names shared across packages.
const (
	StatPA = "PA"
	StatAB = "AB"
	StatIP = "IP"

	SlotOF     = "OF"
	SlotUtil   = "UTIL"
	SlotBenchH = "BN_H"
	SlotP      = "P"
	SlotBenchP = "BN_P"
)

// ABPerPA approximates at-bats from plate appearances when AB is missing.
const ABPerPA = 0.85
