// Package store persists audit log entries. Append seals each entry against
// the persisted chain head so the chain stays linear across writers.
package store

import (
	"context"
	"sync"

	"pigate/internal/forensic/ledger"
	"pigate/internal/forensic/models"
)

// InMemoryStore keeps the chain in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []*models.AuditLogEntry
	head    string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{head: ledger.GenesisHash}
}

// Append seals entry with the current head, assigns its sequence and stores a copy.
func (s *InMemoryStore) Append(ctx context.Context, entry *models.AuditLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger.Seal(entry, s.head)
	entry.Sequence = int64(len(s.entries) + 1)

	stored := *entry
	s.entries = append(s.entries, &stored)
	s.head = entry.Hash
	return nil
}

// ListAll returns every entry in creation order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]*models.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.entries), nil
}

// List returns a page of matching entries, newest first.
func (s *InMemoryStore) List(_ context.Context, filter models.AuditFilter) (*models.AuditPage, error) {
	filter = filter.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.AuditLogEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if filter.Matches(s.entries[i]) {
			matched = append(matched, s.entries[i])
		}
	}

	page := &models.AuditPage{
		Entries: []*models.AuditLogEntry{},
		Total:   len(matched),
		Offset:  filter.Offset,
		Limit:   filter.Limit,
	}
	if filter.Offset >= len(matched) {
		return page, nil
	}
	end := min(filter.Offset+filter.Limit, len(matched))
	page.Entries = cloneEntries(matched[filter.Offset:end])
	return page, nil
}

// FindByID returns sentinel.ErrNotFound when id is unknown.
func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, errNotFound(id)
}

// Head returns the hash of the newest entry, or the genesis hash.
func (s *InMemoryStore) Head(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.head, nil
}

// Tamper replaces the stored entry at index i. Test-only hook for chain verification.
func (s *InMemoryStore) Tamper(i int, mutate func(*models.AuditLogEntry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(s.entries[i])
}

func cloneEntries(in []*models.AuditLogEntry) []*models.AuditLogEntry {
	out := make([]*models.AuditLogEntry, len(in))
	for i, e := range in {
		cp := *e
		out[i] = &cp
	}
	return out
}
