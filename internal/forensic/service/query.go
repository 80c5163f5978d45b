package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"pigate/internal/forensic/ledger"
	"pigate/internal/forensic/models"
	dErrors "pigate/pkg/domain-errors"
	"pigate/pkg/platform/sentinel"
)

// ListEntries returns one page of entries, newest first.
func (s *Service) ListEntries(ctx context.Context, filter models.AuditFilter) (*models.AuditPage, error) {
	if filter.OperationType != "" && !filter.OperationType.IsKnown() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown operation_type filter")
	}
	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	page, err := s.store.List(readCtx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit entries")
	}
	return page, nil
}

func (s *Service) GetEntry(ctx context.Context, id string) (*models.AuditLogEntry, error) {
	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entry, err := s.store.FindByID(readCtx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "audit entry not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit entry")
	}
	return entry, nil
}

// VerifyChain re-walks the whole chain. A broken chain degrades integrity to
// CRITICAL; it does not trip the breaker.
func (s *Service) VerifyChain(ctx context.Context) (ledger.VerifyResult, error) {
	entries, err := s.store.ListAll(ctx)
	if err != nil {
		return ledger.VerifyResult{FailedIndex: -1}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit chain")
	}

	result := ledger.VerifyIntegrity(entries)
	s.metrics.IncChainVerify(result.Valid)
	if result.Valid {
		s.logger.InfoContext(ctx, "audit chain verified", "entries", result.Checked)
		return result, nil
	}

	s.logger.ErrorContext(ctx, "audit chain verification failed",
		"log_type", "audit",
		"failed_index", result.FailedIndex,
		"reason", result.Reason,
	)
	if s.degrader != nil {
		reason := fmt.Sprintf("audit chain broken at index %d", result.FailedIndex)
		if _, err := s.degrader.Degrade(ctx, models.IntegrityCritical, reason); err != nil {
			s.logger.ErrorContext(ctx, "failed to degrade integrity after chain failure", "error", err)
		}
	}
	return result, nil
}

// Export writes every entry in creation order as JSON lines and returns the count.
func (s *Service) Export(ctx context.Context, w io.Writer) (int, error) {
	entries, err := s.store.ListAll(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit chain")
	}
	enc := json.NewEncoder(w)
	for i, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return i, fmt.Errorf("write audit export: %w", err)
		}
	}
	return len(entries), nil
}
