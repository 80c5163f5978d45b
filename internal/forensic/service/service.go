// Package service orchestrates the forensic pipeline: identity, validation and
// suspicion checks, the approval decision, and the hash-chained audit entry
// that records it. Rejections are recorded exactly like approvals.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pigate/internal/forensic/ledger"
	"pigate/internal/forensic/metrics"
	"pigate/internal/forensic/models"
	dErrors "pigate/pkg/domain-errors"
	"pigate/pkg/requestcontext"
)

const defaultStorageTimeout = 5 * time.Second

// persistFailedMessage is what callers see; the cause is logged.
const persistFailedMessage = "audit entry could not be persisted"

// Store persists and queries audit entries. Append seals the entry against
// the persisted chain head.
type Store interface {
	Append(ctx context.Context, entry *models.AuditLogEntry) error
	List(ctx context.Context, filter models.AuditFilter) (*models.AuditPage, error)
	ListAll(ctx context.Context) ([]*models.AuditLogEntry, error)
	FindByID(ctx context.Context, id string) (*models.AuditLogEntry, error)
}

type IdentityVerifier interface {
	Verify(ctx context.Context, user *models.Actor, meta models.RequestMeta) models.IdentityCheck
}

type OperationValidator interface {
	Validate(opType models.OperationType, data models.OperationData) models.ValidationResult
}

type SuspicionDetector interface {
	Detect(ctx context.Context, user *models.Actor, opType models.OperationType, data models.OperationData, opCtx *models.OperationContext) models.SuspicionResult
}

// Gate is the emergency gate of the integrity state machine.
type Gate interface {
	EmergencyGate(ctx context.Context) models.GateResult
}

// Degrader raises the integrity level after a broken chain is found.
type Degrader interface {
	Degrade(ctx context.Context, level models.IntegrityLevel, reason string) (bool, error)
}

// PersistenceObserver is told about every audit persistence outcome.
type PersistenceObserver interface {
	RecordSuccess(ctx context.Context)
	RecordFailure(ctx context.Context, cause error)
}

// Publisher streams persisted entries to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, entry *models.AuditLogEntry) error
}

// ActivityHistory supplies and records per-actor recent operations.
type ActivityHistory interface {
	Recent(ctx context.Context, userID string) ([]models.RecentOperation, error)
	Record(ctx context.Context, userID string, op models.RecentOperation) error
}

// EntryRequest describes one sensitive operation to judge and record.
type EntryRequest struct {
	User          *models.Actor
	OperationType models.OperationType
	OperationData models.OperationData
	RequestMeta   models.RequestMeta
	// Context is optional caller history; when nil it is loaded from the
	// activity history, if one is configured.
	Context        *models.OperationContext
	ApprovedIntent bool
}

// EntryResult is the decision plus the full evidentiary trail.
type EntryResult struct {
	Approved         bool                    `json:"approved"`
	RiskLevel        models.RiskLevel        `json:"risk_level"`
	LogEntry         *models.AuditLogEntry   `json:"log_entry"`
	PersistResult    models.PersistResult    `json:"persist_result"`
	IdentityCheck    models.IdentityCheck    `json:"identity_check"`
	ValidationResult models.ValidationResult `json:"validation_result"`
	SuspicionResult  models.SuspicionResult  `json:"suspicion_result"`
	Reasons          []string                `json:"reasons"`
}

// Service is the audit entry orchestrator.
type Service struct {
	store     Store
	verifier  IdentityVerifier
	validator OperationValidator
	detector  SuspicionDetector
	gate      Gate

	degrader  Degrader
	observer  PersistenceObserver
	publisher Publisher
	activity  ActivityHistory
	metrics   *metrics.Metrics
	logger    *slog.Logger
	timeout   time.Duration
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

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithPersistenceObserver(o PersistenceObserver) Option {
	return func(s *Service) {
		s.observer = o
	}
}

func WithDegrader(d Degrader) Option {
	return func(s *Service) {
		s.degrader = d
	}
}

func WithActivityHistory(a ActivityHistory) Option {
	return func(s *Service) {
		s.activity = a
	}
}

func WithStorageTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(store Store, verifier IdentityVerifier, validator OperationValidator, detector SuspicionDetector, gate Gate, opts ...Option) (*Service, error) {
	switch {
	case store == nil:
		return nil, errors.New("audit store is required")
	case verifier == nil:
		return nil, errors.New("identity verifier is required")
	case validator == nil:
		return nil, errors.New("operation validator is required")
	case detector == nil:
		return nil, errors.New("suspicion detector is required")
	case gate == nil:
		return nil, errors.New("emergency gate is required")
	}

	s := &Service{
		store:     store,
		verifier:  verifier,
		validator: validator,
		detector:  detector,
		gate:      gate,
		logger:    slog.Default(),
		timeout:   defaultStorageTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateEntry judges the operation, then builds and persists its audit entry
// whatever the verdict. A persistence failure is reported in PersistResult and
// never changes the verdict.
func (s *Service) CreateEntry(ctx context.Context, req EntryRequest) *EntryResult {
	start := time.Now()
	defer func() {
		s.metrics.ObserveEntryLatency(time.Since(start))
	}()

	opCtx := s.resolveContext(ctx, req)

	identity := s.verifier.Verify(ctx, req.User, req.RequestMeta)
	validation := s.validator.Validate(req.OperationType, req.OperationData)
	suspicion := s.detector.Detect(ctx, req.User, req.OperationType, req.OperationData, opCtx)

	approved := identity.Verified && validation.Valid && !suspicion.ShouldBlock && req.ApprovedIntent
	risk := models.MaxRisk(identity.RiskLevel, validation.RiskLevel, suspicion.ThreatLevel)

	entry := ledger.Build(ledger.Draft{
		Timestamp:        requestcontext.Now(ctx),
		OperationType:    req.OperationType,
		OperationData:    req.OperationData,
		Actor:            req.User,
		IdentityCheck:    identity,
		ValidationResult: validation,
		SuspicionResult:  suspicion,
		Approved:         approved,
		RiskLevel:        risk,
		RequestMetadata:  req.RequestMeta,
	})

	persist := s.persist(ctx, entry)
	s.recordActivity(ctx, req.User, entry)

	s.metrics.IncDecision(string(req.OperationType), approved)
	s.metrics.IncIndicators(suspicion.Indicators)

	s.logger.InfoContext(ctx, "forensic decision",
		"log_type", "audit",
		"entry_id", entry.ID,
		"operation_type", req.OperationType,
		"user_id", entry.ActorUserID,
		"approved", approved,
		"risk_level", risk,
		"persisted", persist.Success,
		"request_id", requestcontext.RequestID(ctx),
	)

	return &EntryResult{
		Approved:         approved,
		RiskLevel:        risk,
		LogEntry:         entry,
		PersistResult:    persist,
		IdentityCheck:    identity,
		ValidationResult: validation,
		SuspicionResult:  suspicion,
		Reasons:          collectReasons(identity, validation, suspicion),
	}
}

// ProcessOperation runs a non-transfer sensitive operation behind the
// emergency gate. A blocked gate creates no audit entry.
func (s *Service) ProcessOperation(ctx context.Context, req EntryRequest) (*EntryResult, error) {
	if req.OperationType == models.OperationTransfer {
		return nil, dErrors.New(dErrors.CodeBadRequest, "transfers must be requested through the transfer endpoint")
	}
	if gate := s.gate.EmergencyGate(ctx); gate.Blocked {
		s.logger.WarnContext(ctx, "operation rejected by emergency gate",
			"operation_type", req.OperationType,
			"integrity_level", gate.IntegrityLevel,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.New(dErrors.CodeSystemLocked, gate.Message)
	}
	req.ApprovedIntent = true
	return s.CreateEntry(ctx, req), nil
}

func (s *Service) persist(ctx context.Context, entry *models.AuditLogEntry) models.PersistResult {
	// Persistence completes even if the caller goes away mid-request.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.store.Append(storeCtx, entry); err != nil {
		entry.Sequence = 0
		entry.PreviousHash = ""
		entry.Hash = ""

		s.logger.ErrorContext(ctx, "audit entry persistence failed",
			"log_type", "audit",
			"error", err,
			"entry_id", entry.ID,
			"operation_type", entry.OperationType,
			"approved", entry.Approved,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.metrics.IncPersistFailures()
		if s.observer != nil {
			s.observer.RecordFailure(ctx, err)
		}
		return models.PersistResult{Success: false, Error: persistFailedMessage}
	}

	if s.observer != nil {
		s.observer.RecordSuccess(ctx)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, entry); err != nil {
			s.metrics.IncPublishFailures()
			s.logger.WarnContext(ctx, "audit entry publish failed",
				"error", err,
				"entry_id", entry.ID,
			)
		}
	}
	return models.PersistResult{Success: true}
}

func (s *Service) resolveContext(ctx context.Context, req EntryRequest) *models.OperationContext {
	if req.Context != nil || s.activity == nil || req.User == nil || req.User.ID == "" {
		return req.Context
	}

	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	recent, err := s.activity.Recent(readCtx, req.User.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "activity history unavailable",
			"error", err,
			"user_id", req.User.ID,
		)
		return nil
	}
	return &models.OperationContext{
		RecentOperations: recent,
		UserCreatedAt:    req.User.CreatedAt,
	}
}

func (s *Service) recordActivity(ctx context.Context, user *models.Actor, entry *models.AuditLogEntry) {
	if s.activity == nil || user == nil || user.ID == "" {
		return
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	err := s.activity.Record(writeCtx, user.ID, models.RecentOperation{
		Timestamp:     entry.Timestamp,
		OperationType: entry.OperationType,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record activity",
			"error", err,
			"user_id", user.ID,
		)
	}
}

func collectReasons(identity models.IdentityCheck, validation models.ValidationResult, suspicion models.SuspicionResult) []string {
	reasons := make([]string, 0, len(identity.Reasons)+len(validation.Errors)+len(suspicion.Indicators))
	reasons = append(reasons, identity.Reasons...)
	reasons = append(reasons, validation.Errors...)
	reasons = append(reasons, suspicion.Indicators...)
	return reasons
}
