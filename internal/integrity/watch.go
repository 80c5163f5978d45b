package integrity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"pigate/internal/forensic/models"
)

const defaultPersistFailureThreshold = 5

// Degrader raises the integrity level.
type Degrader interface {
	Degrade(ctx context.Context, level models.IntegrityLevel, reason string) (bool, error)
}

// PersistenceWatch counts consecutive audit persistence failures. Once the
// threshold is reached it degrades integrity to WARNING, once per failure
// streak. It never trips the circuit breaker.
type PersistenceWatch struct {
	mu sync.Mutex

	degrader  Degrader
	threshold int
	logger    *slog.Logger

	failures  int
	escalated bool
}

func NewPersistenceWatch(degrader Degrader, threshold int, logger *slog.Logger) *PersistenceWatch {
	if threshold <= 0 {
		threshold = defaultPersistFailureThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistenceWatch{
		degrader:  degrader,
		threshold: threshold,
		logger:    logger,
	}
}

// RecordSuccess ends the current failure streak.
func (w *PersistenceWatch) RecordSuccess(_ context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures = 0
	w.escalated = false
}

// RecordFailure extends the streak and escalates when it reaches the threshold.
func (w *PersistenceWatch) RecordFailure(ctx context.Context, cause error) {
	w.mu.Lock()
	w.failures++
	failures := w.failures
	escalate := failures >= w.threshold && !w.escalated
	if escalate {
		w.escalated = true
	}
	w.mu.Unlock()

	if !escalate {
		return
	}

	reason := fmt.Sprintf("audit persistence failing: %d consecutive failures", failures)
	w.logger.ErrorContext(ctx, "audit persistence incident",
		"log_type", "audit",
		"consecutive_failures", failures,
		"error", cause,
	)
	// The watch may fire on a request whose context is about to expire.
	if _, err := w.degrader.Degrade(context.WithoutCancel(ctx), models.IntegrityWarning, reason); err != nil {
		w.logger.ErrorContext(ctx, "failed to degrade integrity after persistence failures",
			"error", err,
		)
		w.mu.Lock()
		w.escalated = false
		w.mu.Unlock()
	}
}

// Failures returns the current streak length.
func (w *PersistenceWatch) Failures() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failures
}
