// Package activity keeps a short sliding window of each actor's recent
// operations for the rapid-operation heuristic.
package activity

import (
	"context"
	"sort"
	"sync"
	"time"

	"pigate/internal/forensic/models"
	"pigate/pkg/requestcontext"
)

const (
	DefaultWindow = 60 * time.Second
	// DefaultMaxEntries caps how many operations are kept per actor.
	DefaultMaxEntries = 100
)

// MemoryHistory is the in-process history used when redis is not configured.
type MemoryHistory struct {
	mu         sync.Mutex
	window     time.Duration
	maxEntries int
	ops        map[string][]models.RecentOperation
}

func NewMemoryHistory(window time.Duration, maxEntries int) *MemoryHistory {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryHistory{
		window:     window,
		maxEntries: maxEntries,
		ops:        make(map[string][]models.RecentOperation),
	}
}

// Recent returns the actor's operations inside the window, oldest first.
func (h *MemoryHistory) Recent(ctx context.Context, userID string) ([]models.RecentOperation, error) {
	cutoff := requestcontext.Now(ctx).Add(-h.window)

	h.mu.Lock()
	defer h.mu.Unlock()
	kept := prune(h.ops[userID], cutoff)
	if len(kept) == 0 {
		delete(h.ops, userID)
		return []models.RecentOperation{}, nil
	}
	h.ops[userID] = kept
	return append([]models.RecentOperation(nil), kept...), nil
}

func (h *MemoryHistory) Record(ctx context.Context, userID string, op models.RecentOperation) error {
	cutoff := requestcontext.Now(ctx).Add(-h.window)

	h.mu.Lock()
	defer h.mu.Unlock()
	ops := append(h.ops[userID], op)
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Timestamp.Before(ops[j].Timestamp) })
	ops = prune(ops, cutoff)
	if len(ops) > h.maxEntries {
		ops = ops[len(ops)-h.maxEntries:]
	}
	h.ops[userID] = ops
	return nil
}

// prune drops operations older than cutoff from a timestamp-ordered slice.
func prune(ops []models.RecentOperation, cutoff time.Time) []models.RecentOperation {
	i := sort.Search(len(ops), func(i int) bool { return !ops[i].Timestamp.Before(cutoff) })
	return ops[i:]
}
