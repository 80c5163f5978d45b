// Package store persists the SystemControl singleton.
package store

import (
	"context"
	"sync"
	"time"

	"pigate/internal/forensic/models"
	"pigate/internal/integrity"
)

// InMemoryStore holds the singleton in memory. The row is created lazily.
type InMemoryStore struct {
	mu      sync.RWMutex
	control *models.SystemControl
	now     func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{now: time.Now}
}

func (s *InMemoryStore) Get(ctx context.Context) (*models.SystemControl, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensure(), nil
}

// GetForUpdate is Get; callers serialize through InMemoryTx.
func (s *InMemoryStore) GetForUpdate(ctx context.Context) (*models.SystemControl, error) {
	return s.Get(ctx)
}

func (s *InMemoryStore) Save(ctx context.Context, control *models.SystemControl) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *control
	cp.Synthetic = false
	s.control = &cp
	return nil
}

// ensure returns a copy of the row, creating the default first.
func (s *InMemoryStore) ensure() *models.SystemControl {
	if s.control == nil {
		def := models.DefaultSystemControl(s.now().UTC())
		s.control = &def
	}
	cp := *s.control
	return &cp
}

// InMemoryTx serializes control mutations with a coarse lock and restores the
// previous row when the callback fails.
type InMemoryTx struct {
	mu        sync.Mutex
	control   *InMemoryStore
	transfers integrity.TransferFreezer
}

func NewInMemoryTx(control *InMemoryStore, transfers integrity.TransferFreezer) *InMemoryTx {
	return &InMemoryTx{control: control, transfers: transfers}
}

func (t *InMemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores integrity.TxStores) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	before, err := t.control.Get(ctx)
	if err != nil {
		return err
	}
	if err := fn(ctx, integrity.TxStores{Control: t.control, Transfers: t.transfers}); err != nil {
		_ = t.control.Save(context.WithoutCancel(ctx), before)
		return err
	}
	return nil
}
