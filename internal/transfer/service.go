// Package transfer runs the dual forensic check that gates inter-domain
// transfers and drives the transfer lifecycle around it. Both parties are
// audited independently; a transfer is approved only when both audits approve.
package transfer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"pigate/internal/forensic/metrics"
	"pigate/internal/forensic/models"
	forensic "pigate/internal/forensic/service"
	"pigate/internal/transfer/store"
	"pigate/pkg/requestcontext"
)

const defaultStorageTimeout = 5 * time.Second

// AuditService records one party's forensic audit.
type AuditService interface {
	CreateEntry(ctx context.Context, req forensic.EntryRequest) *forensic.EntryResult
}

type Gate interface {
	EmergencyGate(ctx context.Context) models.GateResult
}

// Store persists transfers. Decide only applies to PENDING transfers and
// reports whether it did.
type Store interface {
	Create(ctx context.Context, t *models.Transfer) error
	FindByID(ctx context.Context, id string) (*models.Transfer, error)
	Decide(ctx context.Context, id string, outcome models.TransferOutcome) (*models.Transfer, bool, error)
	List(ctx context.Context, filter store.Filter) ([]*models.Transfer, error)
}

// CheckRequest describes both parties of a transfer.
type CheckRequest struct {
	SourceUser    *models.Actor
	TargetUser    *models.Actor
	TransferData  models.OperationData
	RequestMeta   models.RequestMeta
	SourceContext *models.OperationContext
	TargetContext *models.OperationContext
}

// CheckResult combines both party audits. Audit ids are set whenever the
// check was not blocked by the gate.
type CheckResult struct {
	Approved      bool                  `json:"approved"`
	Blocked       bool                  `json:"blocked"`
	Reason        string                `json:"reason,omitempty"`
	Reasons       []string              `json:"reasons"`
	SourceAuditID string                `json:"source_audit_id,omitempty"`
	TargetAuditID string                `json:"target_audit_id,omitempty"`
	SourceAudit   *forensic.EntryResult `json:"source_audit,omitempty"`
	TargetAudit   *forensic.EntryResult `json:"target_audit,omitempty"`
	RiskLevel     models.RiskLevel      `json:"risk_level,omitempty"`
	Suspicious    bool                  `json:"suspicious"`
}

// Request is an inbound transfer proposal.
type Request struct {
	SourceUser    *models.Actor
	TargetUser    *models.Actor
	SourceDomain  string
	TargetDomain  string
	Amount        decimal.Decimal
	Currency      string
	RequestMeta   models.RequestMeta
	SourceContext *models.OperationContext
	TargetContext *models.OperationContext
}

// RequestResult is the stored transfer plus the check that decided it.
type RequestResult struct {
	Transfer *models.Transfer `json:"transfer"`
	Check    *CheckResult     `json:"check"`
}

type Service struct {
	audits  AuditService
	gate    Gate
	store   Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
	timeout time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithStorageTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(audits AuditService, gate Gate, transfers Store, opts ...Option) (*Service, error) {
	switch {
	case audits == nil:
		return nil, errors.New("audit service is required")
	case gate == nil:
		return nil, errors.New("emergency gate is required")
	case transfers == nil:
		return nil, errors.New("transfer store is required")
	}
	s := &Service{
		audits:  audits,
		gate:    gate,
		store:   transfers,
		logger:  slog.Default(),
		tracer:  otel.Tracer("pigate/internal/transfer"),
		timeout: defaultStorageTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Check gates the transfer, then audits both parties concurrently.
// A blocked gate returns immediately and records nothing.
func (s *Service) Check(ctx context.Context, req CheckRequest) *CheckResult {
	ctx, span := s.tracer.Start(ctx, "transfer.Check")
	defer span.End()
	start := time.Now()
	defer func() {
		s.metrics.ObserveCheckLatency(time.Since(start))
	}()

	if gate := s.gate.EmergencyGate(ctx); gate.Blocked {
		span.SetAttributes(
			attribute.Bool("transfer.blocked", true),
			attribute.String("integrity.level", string(gate.IntegrityLevel)),
		)
		s.logger.WarnContext(ctx, "transfer rejected by emergency gate",
			"log_type", "audit",
			"integrity_level", gate.IntegrityLevel,
			"request_id", requestcontext.RequestID(ctx),
		)
		return &CheckResult{Blocked: true, Reason: gate.Message, Reasons: []string{gate.Message}}
	}

	var source, target *forensic.EntryResult
	var g errgroup.Group
	g.Go(func() error {
		source = s.audit(ctx, "source", req.SourceUser, req.TransferData, req.RequestMeta, req.SourceContext)
		return nil
	})
	g.Go(func() error {
		target = s.audit(ctx, "target", req.TargetUser, req.TransferData, req.RequestMeta, req.TargetContext)
		return nil
	})
	_ = g.Wait()

	reasons := make([]string, 0)
	reasons = append(reasons, partyReasons(source, "source")...)
	reasons = append(reasons, partyReasons(target, "target")...)
	result := &CheckResult{
		Approved:      source.Approved && target.Approved,
		Reasons:       reasons,
		Reason:        strings.Join(reasons, "; "),
		SourceAuditID: source.LogEntry.ID,
		TargetAuditID: target.LogEntry.ID,
		SourceAudit:   source,
		TargetAudit:   target,
		RiskLevel:     models.MaxRisk(source.RiskLevel, target.RiskLevel),
		Suspicious:    source.SuspicionResult.Suspicious || target.SuspicionResult.Suspicious,
	}

	span.SetAttributes(
		attribute.Bool("transfer.approved", result.Approved),
		attribute.String("transfer.risk_level", string(result.RiskLevel)),
		attribute.String("transfer.source_audit_id", result.SourceAuditID),
		attribute.String("transfer.target_audit_id", result.TargetAuditID),
	)
	return result
}

func (s *Service) audit(ctx context.Context, party string, user *models.Actor, data models.OperationData, meta models.RequestMeta, opCtx *models.OperationContext) *forensic.EntryResult {
	ctx, span := s.tracer.Start(ctx, "transfer.audit."+party)
	defer span.End()

	res := s.audits.CreateEntry(ctx, forensic.EntryRequest{
		User:           user,
		OperationType:  models.OperationTransfer,
		OperationData:  data,
		RequestMeta:    meta,
		Context:        opCtx,
		ApprovedIntent: true,
	})
	span.SetAttributes(
		attribute.Bool("audit.approved", res.Approved),
		attribute.Bool("audit.persisted", res.PersistResult.Success),
	)
	return res
}

// partyReasons prefixes a rejected party's reasons with its role.
func partyReasons(res *forensic.EntryResult, party string) []string {
	if res.Approved {
		return nil
	}
	if len(res.Reasons) == 0 {
		return []string{party + ": rejected"}
	}
	out := make([]string, len(res.Reasons))
	for i, r := range res.Reasons {
		out[i] = party + ": " + r
	}
	return out
}
