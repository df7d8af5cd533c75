package model

import (
	"context"
	"sync"

	"github.com/okian/auctioneer/pkg/logger"
)

// Note is one recoverable condition met during a run.
type Note struct {
	Stage   string         `json:"stage"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Notes logs warnings and keeps them for the run result. A nil *Notes is
// valid and discards everything.
type Notes struct {
	mu      sync.Mutex
	log     logger.Logger
	entries []Note
}

// NewNotes creates a collector that also writes through log; log may be nil.
func NewNotes(log logger.Logger) *Notes {
	if log == nil {
		log = logger.Nop()
	}
	return &Notes{log: log}
}

// Warn records and logs a recoverable condition.
func (n *Notes) Warn(ctx context.Context, stage, msg string, fields ...logger.Field) {
	if n == nil {
		return
	}
	n.log.Warn(ctx, msg, append(fields, logger.String("stage", stage))...)

	var kv map[string]any
	if len(fields) > 0 {
		kv = make(map[string]any, len(fields))
		for _, f := range fields {
			if err, ok := f.Value.(error); ok {
				kv[f.Key] = err.Error()
				continue
			}
			kv[f.Key] = f.Value
		}
	}
	n.mu.Lock()
	n.entries = append(n.entries, Note{Stage: stage, Message: msg, Fields: kv})
	n.mu.Unlock()
}

// List returns a copy of the recorded notes in order.
func (n *Notes) List() []Note {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Note, len(n.entries))
	copy(out, n.entries)
	return out
}

// Count returns how many notes were recorded for stage; an empty stage counts all.
func (n *Notes) Count(stage string) int {
	if n == nil {
		return 0
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if stage == "" {
		return len(n.entries)
	}
	c := 0
	for _, e := range n.entries {
		if e.Stage == stage {
			c++
		}
	}
	return c
}
