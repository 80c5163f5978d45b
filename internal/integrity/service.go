// Package integrity owns the system integrity state machine: the persisted
// SystemControl row, the emergency gate derived from it and the operator
// circuit breaker toggle that freezes in-flight transfers.
package integrity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pigate/internal/forensic/metrics"
	"pigate/internal/forensic/models"
	dErrors "pigate/pkg/domain-errors"
	"pigate/pkg/requestcontext"
)

const (
	defaultStorageTimeout = 5 * time.Second

	// failClosedReason is recorded on synthetic snapshots.
	failClosedReason = "integrity state unavailable"
)

// ControlReader reads the singleton, creating the default row when absent.
type ControlReader interface {
	Get(ctx context.Context) (*models.SystemControl, error)
}

// ControlTxStore is the locked view of the singleton inside a transaction.
type ControlTxStore interface {
	GetForUpdate(ctx context.Context) (*models.SystemControl, error)
	Save(ctx context.Context, control *models.SystemControl) error
}

// TransferFreezer moves every PENDING transfer to FROZEN.
type TransferFreezer interface {
	FreezePending(ctx context.Context, frozenAt time.Time, reason string) (int64, error)
}

// TxStores are the stores available inside RunInTx.
type TxStores struct {
	Control   ControlTxStore
	Transfers TransferFreezer
}

// StoreTx provides the transactional boundary for control mutations.
// Implementations wrap a database transaction or, in memory, a coarse lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error
}

// ToggleRequest is an operator circuit breaker change.
type ToggleRequest struct {
	ActorID  string
	Activate bool
	Reason   string
}

// ToggleResult reports the new posture and how many transfers were frozen.
type ToggleResult struct {
	Previous    models.SystemControl `json:"previous"`
	Control     models.SystemControl `json:"system_control"`
	FrozenCount int64                `json:"frozen_count"`
}

// Service implements the integrity state machine.
type Service struct {
	reader  ControlReader
	tx      StoreTx
	metrics *metrics.Metrics
	logger  *slog.Logger
	timeout time.Duration
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithStorageTimeout bounds every storage call.
func WithStorageTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(reader ControlReader, tx StoreTx, opts ...Option) *Service {
	s := &Service{
		reader:  reader,
		tx:      tx,
		logger:  slog.Default(),
		timeout: defaultStorageTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckIntegrity returns the current posture. Any read failure yields a
// synthetic CRITICAL snapshot with the breaker active.
func (s *Service) CheckIntegrity(ctx context.Context) models.SystemControl {
	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	control, err := s.reader.Get(readCtx)
	if err != nil || control == nil {
		if err == nil {
			err = fmt.Errorf("control store returned no row")
		}
		s.logger.ErrorContext(ctx, "integrity state unreadable, failing closed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.metrics.IncFailClosed("control")
		failed := models.FailClosedSystemControl(requestcontext.Now(ctx), failClosedReason)
		s.metrics.SetControl(true, failed.IntegrityLevel.Rank())
		return failed
	}

	s.metrics.SetControl(control.CircuitBreakerActive, control.IntegrityLevel.Rank())
	return *control
}

// EmergencyGate decides whether transfers and sensitive operations may proceed.
func (s *Service) EmergencyGate(ctx context.Context) models.GateResult {
	gate := models.GateFor(s.CheckIntegrity(ctx))
	if gate.Blocked {
		s.metrics.IncGateBlocked()
	}
	return gate
}

// Toggle activates or deactivates the circuit breaker. Activation locks the
// system and freezes every PENDING transfer in the same transaction.
// Deactivation returns to NORMAL and never un-freezes anything.
func (s *Service) Toggle(ctx context.Context, req ToggleRequest) (*ToggleResult, error) {
	actor := strings.TrimSpace(req.ActorID)
	reason := strings.TrimSpace(req.Reason)
	if actor == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "actor id is required")
	}
	if req.Activate && reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "reason is required to activate the circuit breaker")
	}

	now := requestcontext.Now(ctx).UTC()
	result := &ToggleResult{}

	txCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.tx.RunInTx(txCtx, func(ctx context.Context, stores TxStores) error {
		control, err := stores.Control.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		result.Previous = *control

		if req.Activate {
			control.CircuitBreakerActive = true
			control.IntegrityLevel = models.IntegrityLocked
			control.LockReason = reason
			control.LockedBy = actor
			control.LockedAt = &now
		} else {
			control.CircuitBreakerActive = false
			control.IntegrityLevel = models.IntegrityNormal
			control.LockReason = ""
			control.LockedBy = ""
			control.LockedAt = nil
		}
		control.UpdatedAt = now

		if err := stores.Control.Save(ctx, control); err != nil {
			return err
		}

		if req.Activate {
			frozen, err := stores.Transfers.FreezePending(ctx, now, "circuit breaker: "+reason)
			if err != nil {
				return err
			}
			result.FrozenCount = frozen
		}
		result.Control = *control
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "circuit breaker toggle failed",
			"error", err,
			"actor_id", actor,
			"activate", req.Activate,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to toggle circuit breaker")
	}

	s.metrics.SetControl(result.Control.CircuitBreakerActive, result.Control.IntegrityLevel.Rank())
	s.metrics.AddFrozen(result.FrozenCount)
	s.logger.WarnContext(ctx, "circuit breaker toggled",
		"log_type", "audit",
		"actor_id", actor,
		"activate", req.Activate,
		"reason", reason,
		"frozen_count", result.FrozenCount,
		"previous_level", result.Previous.IntegrityLevel,
		"integrity_level", result.Control.IntegrityLevel,
		"request_id", requestcontext.RequestID(ctx),
	)
	return result, nil
}

// Degrade raises the integrity level to at least level. It never lowers the
// level, never reaches LOCKED and never touches the breaker; only Toggle does.
// Reports whether the stored level changed.
func (s *Service) Degrade(ctx context.Context, level models.IntegrityLevel, reason string) (bool, error) {
	switch level {
	case models.IntegrityWarning, models.IntegrityCritical:
	default:
		return false, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("cannot degrade to %q", level))
	}

	now := requestcontext.Now(ctx).UTC()
	changed := false
	var previous models.IntegrityLevel

	txCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.tx.RunInTx(txCtx, func(ctx context.Context, stores TxStores) error {
		control, err := stores.Control.GetForUpdate(ctx)
		if err != nil {
			return err
		}
		previous = control.IntegrityLevel
		if control.IntegrityLevel.Rank() >= level.Rank() {
			return nil
		}
		control.IntegrityLevel = level
		if !control.CircuitBreakerActive {
			control.LockReason = reason
		}
		control.UpdatedAt = now
		if err := stores.Control.Save(ctx, control); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "integrity degrade failed",
			"error", err,
			"level", level,
			"reason", reason,
		)
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to degrade integrity level")
	}

	if changed {
		s.logger.WarnContext(ctx, "integrity level degraded",
			"log_type", "audit",
			"previous_level", previous,
			"integrity_level", level,
			"reason", reason,
		)
	}
	return changed, nil
}
