// Package liquidity reports in-flight transfer value alongside the current
// safety posture. Reports are read-only and fail closed: if either read
// fails the report is zeroed and shows the breaker as active.
package liquidity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"pigate/internal/forensic/metrics"
	"pigate/internal/forensic/models"
	"pigate/pkg/requestcontext"
)

const (
	defaultStorageTimeout = 5 * time.Second
	volumeWindow          = 24 * time.Hour
	degradedReason        = "liquidity data unavailable"
)

// ControlReader returns the integrity snapshot; Synthetic marks a fail-closed one.
type ControlReader interface {
	CheckIntegrity(ctx context.Context) models.SystemControl
}

type Aggregator interface {
	Aggregate(ctx context.Context, since time.Time) (*models.LiquidityAggregate, error)
}

type Reporter struct {
	control    ControlReader
	aggregates Aggregator
	metrics    *metrics.Metrics
	logger     *slog.Logger
	timeout    time.Duration
}

type Option func(*Reporter)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reporter) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reporter) {
		r.metrics = m
	}
}

func WithStorageTimeout(d time.Duration) Option {
	return func(r *Reporter) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func New(control ControlReader, aggregates Aggregator, opts ...Option) (*Reporter, error) {
	if control == nil {
		return nil, errors.New("control reader is required")
	}
	if aggregates == nil {
		return nil, errors.New("aggregator is required")
	}
	r := &Reporter{
		control:    control,
		aggregates: aggregates,
		logger:     slog.Default(),
		timeout:    defaultStorageTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Reporter) Report(ctx context.Context) models.LiquidityReport {
	now := requestcontext.Now(ctx).UTC()
	control := r.control.CheckIntegrity(ctx)

	readCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	agg, err := r.aggregates.Aggregate(readCtx, now.Add(-volumeWindow))
	if err == nil && agg == nil {
		err = errors.New("aggregator returned no result")
	}

	if err != nil || control.Synthetic {
		if err != nil {
			r.logger.ErrorContext(ctx, "liquidity aggregate unreadable, failing closed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		r.metrics.IncFailClosed("liquidity")
		return degraded(now)
	}

	return models.LiquidityReport{
		InFlightCount:  agg.InFlightCount,
		InFlightTotal:  agg.InFlightTotal,
		FrozenCount:    agg.FrozenCount,
		FrozenTotal:    agg.FrozenTotal,
		Volume24hCount: agg.Volume24hCount,
		Control:        control,
		GeneratedAt:    now,
	}
}

func degraded(now time.Time) models.LiquidityReport {
	return models.LiquidityReport{
		InFlightTotal: decimal.Zero,
		FrozenTotal:   decimal.Zero,
		Control:       models.FailClosedSystemControl(now, degradedReason),
		GeneratedAt:   now,
		Degraded:      true,
	}
}
