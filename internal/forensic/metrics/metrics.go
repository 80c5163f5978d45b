package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the forensic pipeline, the integrity
// state machine and transfer decisions. All methods are nil-safe.
type Metrics struct {
	Decisions        *prometheus.CounterVec
	EntryLatency     prometheus.Histogram
	PersistFailures  prometheus.Counter
	Indicators       *prometheus.CounterVec
	ChainVerify      *prometheus.CounterVec
	PublishFailures  prometheus.Counter
	PublishDropped   prometheus.Counter
	GateBlocked      prometheus.Counter
	FailClosedReads  *prometheus.CounterVec
	BreakerActive    prometheus.Gauge
	IntegrityLevel   prometheus.Gauge
	TransfersFrozen  prometheus.Counter
	TransferOutcomes *prometheus.CounterVec
	CheckLatency     prometheus.Histogram
}

// New creates a new Metrics instance with all forensic metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pigate_forensic_decisions_total",
			Help: "Audit decisions by operation type and outcome",
		}, []string{"operation_type", "approved"}),

		EntryLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pigate_forensic_entry_duration_seconds",
			Help:    "Duration of a full audit entry creation including persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pigate_forensic_persist_failures_total",
			Help: "Audit entries whose decision was made but could not be persisted",
		}),

		Indicators: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pigate_forensic_suspicion_indicators_total",
			Help: "Triggered suspicion indicators",
		}, []string{"indicator"}),

		ChainVerify: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pigate_forensic_chain_verifications_total",
			Help: "Audit chain verification runs by result",
		}, []string{"result"}),

		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pigate_forensic_publish_failures_total",
			Help: "Persisted audit entries that could not be streamed",
		}),

		PublishDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pigate_forensic_publish_dropped_total",
			Help: "Audit entries dropped from the stream buffer",
		}),

		GateBlocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pigate_integrity_gate_blocked_total",
			Help: "Requests rejected by the emergency gate",
		}),

		FailClosedReads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pigate_integrity_fail_closed_reads_total",
			Help: "Storage reads that fell back to the fail-closed posture",
		}, []string{"source"}), // source: "control", "liquidity"

		BreakerActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pigate_integrity_circuit_breaker_active",
			Help: "Circuit breaker state as last observed (1=active)",
		}),

		IntegrityLevel: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "pigate_integrity_level",
			Help: "Integrity level as last observed (0=NORMAL .. 3=LOCKED)",
		}),

		TransfersFrozen: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pigate_transfers_frozen_total",
			Help: "Pending transfers frozen by circuit breaker activation",
		}),

		TransferOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pigate_transfer_outcomes_total",
			Help: "Transfer decisions by final status",
		}, []string{"status"}),

		CheckLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pigate_transfer_check_duration_seconds",
			Help:    "Duration of the dual forensic check",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncDecision(operationType string, approved bool) {
	if m != nil {
		m.Decisions.WithLabelValues(operationType, strconv.FormatBool(approved)).Inc()
	}
}

func (m *Metrics) ObserveEntryLatency(d time.Duration) {
	if m != nil {
		m.EntryLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncPersistFailures() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}

func (m *Metrics) IncIndicators(indicators []string) {
	if m == nil {
		return
	}
	for _, ind := range indicators {
		m.Indicators.WithLabelValues(ind).Inc()
	}
}

func (m *Metrics) IncChainVerify(valid bool) {
	if m == nil {
		return
	}
	result := "valid"
	if !valid {
		result = "broken"
	}
	m.ChainVerify.WithLabelValues(result).Inc()
}

func (m *Metrics) IncPublishFailures() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}

func (m *Metrics) IncPublishDropped() {
	if m != nil {
		m.PublishDropped.Inc()
	}
}

func (m *Metrics) IncGateBlocked() {
	if m != nil {
		m.GateBlocked.Inc()
	}
}

func (m *Metrics) IncFailClosed(source string) {
	if m != nil {
		m.FailClosedReads.WithLabelValues(source).Inc()
	}
}

// SetControl records the observed breaker state and integrity rank.
func (m *Metrics) SetControl(active bool, rank int) {
	if m == nil {
		return
	}
	if active {
		m.BreakerActive.Set(1)
	} else {
		m.BreakerActive.Set(0)
	}
	m.IntegrityLevel.Set(float64(rank))
}

func (m *Metrics) AddFrozen(n int64) {
	if m != nil && n > 0 {
		m.TransfersFrozen.Add(float64(n))
	}
}

func (m *Metrics) IncTransferOutcome(status string) {
	if m != nil {
		m.TransferOutcomes.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ObserveCheckLatency(d time.Duration) {
	if m != nil {
		m.CheckLatency.Observe(d.Seconds())
	}
}
