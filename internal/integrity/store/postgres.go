package store

import (
	"context"
	"database/sql"
	"fmt"

	"pigate/internal/forensic/models"
	"pigate/internal/integrity"
	"pigate/pkg/platform/tx"
)

// PostgresStore reads and writes the system_control row. Inside a
// transaction started by PostgresTx it joins that transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const ensureRow = `INSERT INTO system_control (id) VALUES (1) ON CONFLICT (id) DO NOTHING`

const selectControl = `
	SELECT integrity_level, circuit_breaker_active, lock_reason, locked_by, locked_at, updated_at
	FROM system_control WHERE id = 1`

func (s *PostgresStore) Get(ctx context.Context) (*models.SystemControl, error) {
	return s.read(ctx, selectControl)
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (s *PostgresStore) GetForUpdate(ctx context.Context) (*models.SystemControl, error) {
	if _, ok := tx.From(ctx); !ok {
		return nil, fmt.Errorf("lock system control: no transaction in context")
	}
	return s.read(ctx, selectControl+` FOR UPDATE`)
}

func (s *PostgresStore) read(ctx context.Context, query string) (*models.SystemControl, error) {
	exec := tx.Exec(ctx, s.db)
	if _, err := exec.ExecContext(ctx, ensureRow); err != nil {
		return nil, fmt.Errorf("ensure system control row: %w", err)
	}

	var (
		c        models.SystemControl
		level    string
		lockedAt sql.NullTime
	)
	err := exec.QueryRowContext(ctx, query).Scan(
		&level, &c.CircuitBreakerActive, &c.LockReason, &c.LockedBy, &lockedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("read system control: %w", err)
	}
	c.IntegrityLevel = models.IntegrityLevel(level)
	c.UpdatedAt = c.UpdatedAt.UTC()
	if lockedAt.Valid {
		t := lockedAt.Time.UTC()
		c.LockedAt = &t
	}
	return &c, nil
}

func (s *PostgresStore) Save(ctx context.Context, c *models.SystemControl) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE system_control
		SET integrity_level = $1,
		    circuit_breaker_active = $2,
		    lock_reason = $3,
		    locked_by = $4,
		    locked_at = $5,
		    updated_at = $6
		WHERE id = 1`,
		string(c.IntegrityLevel), c.CircuitBreakerActive, c.LockReason, c.LockedBy, c.LockedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save system control: %w", err)
	}
	return nil
}

// PostgresTx runs control mutations and the transfer freeze in one
// database transaction.
type PostgresTx struct {
	db        *sql.DB
	control   *PostgresStore
	transfers integrity.TransferFreezer
}

// NewPostgresTx expects transfers to join the transaction carried in ctx.
func NewPostgresTx(db *sql.DB, transfers integrity.TransferFreezer) *PostgresTx {
	return &PostgresTx{db: db, control: NewPostgres(db), transfers: transfers}
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores integrity.TxStores) error) error {
	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin control transaction: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, sqlTx), integrity.TxStores{Control: t.control, Transfers: t.transfers}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit control transaction: %w", err)
	}
	return nil
}
