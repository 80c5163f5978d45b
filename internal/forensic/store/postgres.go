package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pigate/internal/forensic/ledger"
	"pigate/internal/forensic/models"
)

// PostgresStore persists entries in audit_log. The chain head lives in the
// single-row audit_chain_head table and is locked for the duration of an append.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const entryColumns = `sequence, id, timestamp, operation_type, operation_data,
	actor_user_id, actor_email, actor_external_id,
	identity_check, validation_result, suspicion_result,
	approved, risk_level, request_metadata, previous_hash, hash`

// Append seals entry with the persisted head inside one transaction.
func (s *PostgresStore) Append(ctx context.Context, entry *models.AuditLogEntry) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit append: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var head string
	err = tx.QueryRowContext(ctx, `SELECT last_hash FROM audit_chain_head WHERE id = 1 FOR UPDATE`).Scan(&head)
	if errors.Is(err, sql.ErrNoRows) {
		head = ledger.GenesisHash
		_, err = tx.ExecContext(ctx, `INSERT INTO audit_chain_head (id, last_hash, updated_at) VALUES (1, $1, NOW()) ON CONFLICT (id) DO NOTHING`, head)
		if err == nil {
			err = tx.QueryRowContext(ctx, `SELECT last_hash FROM audit_chain_head WHERE id = 1 FOR UPDATE`).Scan(&head)
		}
	}
	if err != nil {
		return fmt.Errorf("lock audit chain head: %w", err)
	}

	ledger.Seal(entry, head)

	cols, err := encodeColumns(entry)
	if err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO audit_log (
			id, timestamp, operation_type, operation_data,
			actor_user_id, actor_email, actor_external_id,
			identity_check, validation_result, suspicion_result,
			approved, risk_level, request_metadata, previous_hash, hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING sequence`,
		entry.ID,
		entry.Timestamp,
		string(entry.OperationType),
		cols.operationData,
		entry.ActorUserID,
		entry.ActorEmail,
		entry.ActorExternalID,
		cols.identity,
		cols.validation,
		cols.suspicion,
		entry.Approved,
		string(entry.RiskLevel),
		cols.meta,
		entry.PreviousHash,
		entry.Hash,
	).Scan(&entry.Sequence)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE audit_chain_head SET last_hash = $1, updated_at = NOW() WHERE id = 1`, entry.Hash); err != nil {
		return fmt.Errorf("advance audit chain head: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit audit append: %w", err)
	}
	return nil
}

// ListAll returns every entry in sequence order.
func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.AuditLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM audit_log ORDER BY sequence ASC`)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// List returns a page of matching entries, newest first.
func (s *PostgresStore) List(ctx context.Context, filter models.AuditFilter) (*models.AuditPage, error) {
	filter = filter.Normalize()
	where, args := buildFilter(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count audit entries: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM audit_log%s ORDER BY sequence DESC LIMIT $%d OFFSET $%d`,
		entryColumns, where, len(args)-1, len(args))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	return &models.AuditPage{
		Entries: entries,
		Total:   total,
		Offset:  filter.Offset,
		Limit:   filter.Limit,
	}, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.AuditLogEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errNotFound(id)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM audit_log WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("find audit entry: %w", err)
	}
	defer rows.Close()
	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errNotFound(id)
	}
	return entries[0], nil
}

func (s *PostgresStore) Head(ctx context.Context) (string, error) {
	var head string
	err := s.db.QueryRowContext(ctx, `SELECT last_hash FROM audit_chain_head WHERE id = 1`).Scan(&head)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.GenesisHash, nil
	}
	if err != nil {
		return "", fmt.Errorf("read audit chain head: %w", err)
	}
	return head, nil
}

func buildFilter(f models.AuditFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if f.OperationType != "" {
		add("operation_type = $%d", string(f.OperationType))
	}
	if f.Approved != nil {
		add("approved = $%d", *f.Approved)
	}
	if f.ActorID != "" {
		add("actor_user_id = $%d", f.ActorID)
	}
	if f.Domain != "" {
		args = append(args, f.Domain)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(operation_data->>'domain' = $%[1]d OR operation_data->>'domain_name' = $%[1]d OR operation_data->>'source_domain' = $%[1]d OR operation_data->>'target_domain' = $%[1]d)", n))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type encodedColumns struct {
	operationData []byte
	identity      []byte
	validation    []byte
	suspicion     []byte
	meta          []byte
}

func encodeColumns(e *models.AuditLogEntry) (encodedColumns, error) {
	var (
		out encodedColumns
		err error
	)
	if out.operationData, err = json.Marshal(e.OperationData); err != nil {
		return out, fmt.Errorf("marshal operation data: %w", err)
	}
	if out.identity, err = json.Marshal(e.IdentityCheck); err != nil {
		return out, fmt.Errorf("marshal identity check: %w", err)
	}
	if out.validation, err = json.Marshal(e.ValidationResult); err != nil {
		return out, fmt.Errorf("marshal validation result: %w", err)
	}
	if out.suspicion, err = json.Marshal(e.SuspicionResult); err != nil {
		return out, fmt.Errorf("marshal suspicion result: %w", err)
	}
	if out.meta, err = json.Marshal(e.RequestMetadata); err != nil {
		return out, fmt.Errorf("marshal request metadata: %w", err)
	}
	return out, nil
}

func scanEntries(rows *sql.Rows) ([]*models.AuditLogEntry, error) {
	entries := []*models.AuditLogEntry{}
	for rows.Next() {
		var (
			e                                   models.AuditLogEntry
			opType, risk                        string
			data, identity, validation, suspect []byte
			meta                                []byte
		)
		if err := rows.Scan(
			&e.Sequence, &e.ID, &e.Timestamp, &opType, &data,
			&e.ActorUserID, &e.ActorEmail, &e.ActorExternalID,
			&identity, &validation, &suspect,
			&e.Approved, &risk, &meta, &e.PreviousHash, &e.Hash,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.OperationType = models.OperationType(opType)
		e.RiskLevel = models.RiskLevel(risk)
		e.Timestamp = e.Timestamp.UTC()

		for _, col := range []struct {
			raw  []byte
			dest any
			name string
		}{
			{data, &e.OperationData, "operation data"},
			{identity, &e.IdentityCheck, "identity check"},
			{validation, &e.ValidationResult, "validation result"},
			{suspect, &e.SuspicionResult, "suspicion result"},
			{meta, &e.RequestMetadata, "request metadata"},
		} {
			if err := json.Unmarshal(col.raw, col.dest); err != nil {
				return nil, fmt.Errorf("unmarshal %s: %w", col.name, err)
			}
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
