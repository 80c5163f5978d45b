package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"pigate/internal/forensic/models"
	"pigate/internal/transfer/store"
	dErrors "pigate/pkg/domain-errors"
	"pigate/pkg/platform/sentinel"
	"pigate/pkg/requestcontext"
)

// MaxAmountScale is the number of decimal places the transfers table keeps.
const MaxAmountScale = 8

// Request records a PENDING transfer, runs the dual check and applies the
// decision. A transfer frozen while the check ran stays frozen and is
// returned as such.
func (s *Service) Request(ctx context.Context, req Request) (*RequestResult, error) {
	ctx, span := s.tracer.Start(ctx, "transfer.Request")
	defer span.End()

	if err := validateRequest(req); err != nil {
		span.SetStatus(codes.Error, "invalid transfer request")
		return nil, err
	}

	if gate := s.gate.EmergencyGate(ctx); gate.Blocked {
		span.SetAttributes(attribute.Bool("transfer.blocked", true))
		return nil, dErrors.New(dErrors.CodeSystemLocked, gate.Message)
	}

	now := requestcontext.Now(ctx).UTC().Truncate(time.Microsecond)
	t := &models.Transfer{
		ID:           uuid.NewString(),
		SourceUserID: req.SourceUser.ID,
		TargetUserID: req.TargetUser.ID,
		SourceDomain: req.SourceDomain,
		TargetDomain: req.TargetDomain,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Status:       models.TransferPending,
		CreatedAt:    now,
	}
	span.SetAttributes(attribute.String("transfer.id", t.ID))

	if err := s.withTimeout(ctx, func(ctx context.Context) error { return s.store.Create(ctx, t) }); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create transfer")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record transfer")
	}

	amount := req.Amount
	check := s.Check(ctx, CheckRequest{
		SourceUser: req.SourceUser,
		TargetUser: req.TargetUser,
		TransferData: models.OperationData{
			Amount:       &amount,
			Currency:     req.Currency,
			Destination:  req.TargetDomain,
			SourceDomain: req.SourceDomain,
			TargetDomain: req.TargetDomain,
		},
		RequestMeta:   req.RequestMeta,
		SourceContext: req.SourceContext,
		TargetContext: req.TargetContext,
	})
	if check.Blocked {
		// The breaker tripped after the transfer was recorded. Activation may
		// have frozen PENDING rows before this one existed, so freeze it here.
		s.freezeBlocked(ctx, t.ID, check.Reason)
		return nil, dErrors.New(dErrors.CodeSystemLocked, check.Reason)
	}

	outcome := models.TransferOutcome{
		Status:        models.TransferRejected,
		SourceAuditID: check.SourceAuditID,
		TargetAuditID: check.TargetAuditID,
		RiskLevel:     check.RiskLevel,
		Suspicious:    check.Suspicious,
		Reason:        check.Reason,
		DecidedAt:     requestcontext.Now(ctx).UTC().Truncate(time.Microsecond),
	}
	if check.Approved {
		outcome.Status = models.TransferApproved
	}

	var (
		decided *models.Transfer
		applied bool
	)
	// The audits are already written; the decision must land even if the caller leaves.
	err := s.withTimeout(context.WithoutCancel(ctx), func(ctx context.Context) error {
		var err error
		decided, applied, err = s.store.Decide(ctx, t.ID, outcome)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decide transfer")
		s.logger.ErrorContext(ctx, "failed to record transfer decision",
			"log_type", "audit",
			"error", err,
			"transfer_id", t.ID,
			"decision", outcome.Status,
			"source_audit_id", check.SourceAuditID,
			"target_audit_id", check.TargetAuditID,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record transfer decision")
	}

	if !applied {
		s.logger.WarnContext(ctx, "transfer changed state during check",
			"log_type", "audit",
			"transfer_id", t.ID,
			"status", decided.Status,
			"decision", outcome.Status,
		)
	}
	s.metrics.IncTransferOutcome(string(decided.Status))
	span.SetAttributes(attribute.String("transfer.status", string(decided.Status)))

	s.logger.InfoContext(ctx, "transfer decided",
		"log_type", "audit",
		"transfer_id", t.ID,
		"status", decided.Status,
		"risk_level", check.RiskLevel,
		"source_user_id", t.SourceUserID,
		"target_user_id", t.TargetUserID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &RequestResult{Transfer: decided, Check: check}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Transfer, error) {
	var t *models.Transfer
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.store.FindByID(ctx, id)
		return err
	})
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "transfer not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load transfer")
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, filter store.Filter) ([]*models.Transfer, error) {
	if filter.Status != "" && !isStatus(filter.Status) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown transfer status")
	}
	var out []*models.Transfer
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.store.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transfers")
	}
	return out, nil
}

func (s *Service) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

// freezeBlocked moves a transfer that lost the race with breaker activation
// out of PENDING. A failure is logged; the row is still PENDING and the next
// activation freezes it.
func (s *Service) freezeBlocked(ctx context.Context, id, reason string) {
	outcome := models.TransferOutcome{
		Status:    models.TransferFrozen,
		Reason:    reason,
		DecidedAt: requestcontext.Now(ctx).UTC().Truncate(time.Microsecond),
	}
	var (
		frozen  *models.Transfer
		applied bool
	)
	err := s.withTimeout(context.WithoutCancel(ctx), func(ctx context.Context) error {
		var err error
		frozen, applied, err = s.store.Decide(ctx, id, outcome)
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to freeze blocked transfer",
			"log_type", "audit",
			"error", err,
			"transfer_id", id,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	s.metrics.IncTransferOutcome(string(frozen.Status))
	s.logger.WarnContext(ctx, "transfer blocked after creation",
		"log_type", "audit",
		"transfer_id", id,
		"status", frozen.Status,
		"frozen_here", applied,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func validateRequest(req Request) error {
	if req.SourceUser == nil || strings.TrimSpace(req.SourceUser.ID) == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "an authenticated source user is required")
	}

	var details []string
	if req.TargetUser == nil || strings.TrimSpace(req.TargetUser.ID) == "" {
		details = append(details, "target user is required")
	} else if req.TargetUser.ID == req.SourceUser.ID {
		details = append(details, "source and target users must differ")
	}
	if strings.TrimSpace(req.SourceDomain) == "" {
		details = append(details, "source domain is required")
	}
	if strings.TrimSpace(req.TargetDomain) == "" {
		details = append(details, "target domain is required")
	}
	if !req.Amount.IsPositive() {
		details = append(details, "amount must be positive")
	} else if !req.Amount.Equal(req.Amount.Truncate(MaxAmountScale)) {
		details = append(details, fmt.Sprintf("amount supports at most %d decimal places", MaxAmountScale))
	}
	if len(details) > 0 {
		return dErrors.New(dErrors.CodeValidation, "invalid transfer request").WithDetails(details...)
	}
	return nil
}

func isStatus(s models.TransferStatus) bool {
	switch s {
	case models.TransferPending, models.TransferApproved, models.TransferRejected, models.TransferFrozen:
		return true
	}
	return false
}
