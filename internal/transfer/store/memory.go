// Package store persists transfers. Every transition out of PENDING is a
// conditional update so a concurrent freeze always wins or loses atomically.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pigate/internal/forensic/models"
	"pigate/pkg/platform/sentinel"
)

// Filter selects transfers for listing.
type Filter struct {
	UserID string
	Status models.TransferStatus
	Offset int
	Limit  int
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func (f Filter) normalize() Filter {
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	return f
}

type InMemoryStore struct {
	mu        sync.RWMutex
	transfers map[string]*models.Transfer
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{transfers: make(map[string]*models.Transfer)}
}

func (s *InMemoryStore) Create(ctx context.Context, t *models.Transfer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transfers[t.ID]; ok {
		return fmt.Errorf("transfer %s: %w", t.ID, sentinel.ErrConflict)
	}
	cp := *t
	s.transfers[t.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, id string) (*models.Transfer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transfers[id]
	if !ok {
		return nil, fmt.Errorf("transfer %s: %w", id, sentinel.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

// Decide applies outcome only if the transfer is still PENDING. The returned
// transfer is the stored state after the attempt; applied is false when
// another transition got there first.
func (s *InMemoryStore) Decide(ctx context.Context, id string, outcome models.TransferOutcome) (*models.Transfer, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transfers[id]
	if !ok {
		return nil, false, fmt.Errorf("transfer %s: %w", id, sentinel.ErrNotFound)
	}
	if t.Status != models.TransferPending {
		cp := *t
		return &cp, false, nil
	}
	applyOutcome(t, outcome)
	cp := *t
	return &cp, true, nil
}

func (s *InMemoryStore) FreezePending(ctx context.Context, frozenAt time.Time, reason string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, t := range s.transfers {
		if t.Status != models.TransferPending {
			continue
		}
		at := frozenAt
		t.Status = models.TransferFrozen
		t.FrozenAt = &at
		t.Reason = reason
		n++
	}
	return n, nil
}

// List returns matching transfers, newest first.
func (s *InMemoryStore) List(ctx context.Context, filter Filter) ([]*models.Transfer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filter = filter.normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.Transfer, 0)
	for _, t := range s.transfers {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.UserID != "" && t.SourceUserID != filter.UserID && t.TargetUserID != filter.UserID {
			continue
		}
		cp := *t
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if filter.Offset >= len(matched) {
		return []*models.Transfer{}, nil
	}
	end := min(filter.Offset+filter.Limit, len(matched))
	return matched[filter.Offset:end], nil
}

// Aggregate sums in-flight (PENDING and FROZEN) value and counts transfers created since since.
func (s *InMemoryStore) Aggregate(ctx context.Context, since time.Time) (*models.LiquidityAggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg := &models.LiquidityAggregate{InFlightTotal: decimal.Zero, FrozenTotal: decimal.Zero}
	for _, t := range s.transfers {
		switch t.Status {
		case models.TransferPending:
			agg.InFlightCount++
			agg.InFlightTotal = agg.InFlightTotal.Add(t.Amount)
		case models.TransferFrozen:
			agg.InFlightCount++
			agg.InFlightTotal = agg.InFlightTotal.Add(t.Amount)
			agg.FrozenCount++
			agg.FrozenTotal = agg.FrozenTotal.Add(t.Amount)
		}
		if !t.CreatedAt.Before(since) {
			agg.Volume24hCount++
		}
	}
	return agg, nil
}

func applyOutcome(t *models.Transfer, o models.TransferOutcome) {
	t.Status = o.Status
	t.SourceAuditID = o.SourceAuditID
	t.TargetAuditID = o.TargetAuditID
	t.RiskLevel = o.RiskLevel
	t.Suspicious = o.Suspicious
	t.Reason = o.Reason
	at := o.DecidedAt
	switch o.Status {
	case models.TransferApproved:
		t.ApprovedAt = &at
	case models.TransferFrozen:
		t.FrozenAt = &at
	}
}
