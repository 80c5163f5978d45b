package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pigate/internal/forensic/models"
	"pigate/pkg/platform/sentinel"
	"pigate/pkg/platform/tx"
)

// PostgresStore persists transfers in the transfers table. Calls join the
// transaction carried in ctx, if any.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const transferColumns = `id, source_user_id, target_user_id, source_domain, target_domain,
	amount, currency, status, source_audit_id, target_audit_id, risk_level,
	suspicious, reason, created_at, approved_at, frozen_at`

func (s *PostgresStore) Create(ctx context.Context, t *models.Transfer) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO transfers (`+transferColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		t.ID, t.SourceUserID, t.TargetUserID, t.SourceDomain, t.TargetDomain,
		t.Amount, t.Currency, string(t.Status), t.SourceAuditID, t.TargetAuditID, string(t.RiskLevel),
		t.Suspicious, t.Reason, t.CreatedAt, t.ApprovedAt, t.FrozenAt,
	)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Transfer, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
	t, err := scanTransfer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transfer %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find transfer: %w", err)
	}
	return t, nil
}

// Decide applies outcome only while the row is still PENDING.
func (s *PostgresStore) Decide(ctx context.Context, id string, o models.TransferOutcome) (*models.Transfer, bool, error) {
	var approvedAt, frozenAt *time.Time
	at := o.DecidedAt
	switch o.Status {
	case models.TransferApproved:
		approvedAt = &at
	case models.TransferFrozen:
		frozenAt = &at
	}
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx, `
		UPDATE transfers
		SET status = $2,
		    source_audit_id = $3,
		    target_audit_id = $4,
		    risk_level = $5,
		    suspicious = $6,
		    reason = $7,
		    approved_at = $8,
		    frozen_at = $9
		WHERE id = $1 AND status = 'PENDING'
		RETURNING `+transferColumns,
		id, string(o.Status), o.SourceAuditID, o.TargetAuditID, string(o.RiskLevel), o.Suspicious, o.Reason, approvedAt, frozenAt,
	)
	t, err := scanTransfer(row)
	if err == nil {
		return t, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("decide transfer: %w", err)
	}

	current, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

func (s *PostgresStore) FreezePending(ctx context.Context, frozenAt time.Time, reason string) (int64, error) {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE transfers
		SET status = 'FROZEN', frozen_at = $1, reason = $2
		WHERE status = 'PENDING'`,
		frozenAt, reason,
	)
	if err != nil {
		return 0, fmt.Errorf("freeze pending transfers: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("freeze pending transfers: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*models.Transfer, error) {
	filter = filter.normalize()

	var (
		clauses []string
		args    []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		clauses = append(clauses, fmt.Sprintf("(source_user_id = $%[1]d OR target_user_id = $%[1]d)", len(args)))
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM transfers%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		transferColumns, where, len(args)-1, len(args))

	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	out := []*models.Transfer{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Aggregate(ctx context.Context, since time.Time) (*models.LiquidityAggregate, error) {
	var agg models.LiquidityAggregate
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('PENDING', 'FROZEN')),
			COALESCE(SUM(amount) FILTER (WHERE status IN ('PENDING', 'FROZEN')), 0),
			COUNT(*) FILTER (WHERE status = 'FROZEN'),
			COALESCE(SUM(amount) FILTER (WHERE status = 'FROZEN'), 0),
			COUNT(*) FILTER (WHERE created_at >= $1)
		FROM transfers`, since,
	).Scan(&agg.InFlightCount, &agg.InFlightTotal, &agg.FrozenCount, &agg.FrozenTotal, &agg.Volume24hCount)
	if err != nil {
		return nil, fmt.Errorf("aggregate transfers: %w", err)
	}
	return &agg, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (*models.Transfer, error) {
	var (
		t                  models.Transfer
		status, risk       string
		approvedAt, frozen sql.NullTime
	)
	if err := row.Scan(
		&t.ID, &t.SourceUserID, &t.TargetUserID, &t.SourceDomain, &t.TargetDomain,
		&t.Amount, &t.Currency, &status, &t.SourceAuditID, &t.TargetAuditID, &risk,
		&t.Suspicious, &t.Reason, &t.CreatedAt, &approvedAt, &frozen,
	); err != nil {
		return nil, err
	}
	t.Status = models.TransferStatus(status)
	t.RiskLevel = models.RiskLevel(risk)
	t.CreatedAt = t.CreatedAt.UTC()
	if approvedAt.Valid {
		at := approvedAt.Time.UTC()
		t.ApprovedAt = &at
	}
	if frozen.Valid {
		at := frozen.Time.UTC()
		t.FrozenAt = &at
	}
	return &t, nil
}
