// Package publisher streams persisted audit entries to Kafka. Publishing is
// best effort: Publish only buffers, and a background worker produces the
// buffered entries in order. The ledger stays authoritative when the broker
// is unavailable.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"pigate/internal/forensic/metrics"
	"pigate/internal/forensic/models"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = 250 * time.Millisecond
	defaultDrainTimeout  = 5 * time.Second
)

// Record headers set on every produced entry.
const (
	HeaderHash          = "pigate-hash"
	HeaderPreviousHash  = "pigate-previous-hash"
	HeaderOperationType = "pigate-operation-type"
	HeaderApproved      = "pigate-approved"
)

// Producer is the subset of *kgo.Client the publisher needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaPublisher buffers entries and produces them from Run.
type KafkaPublisher struct {
	producer      Producer
	topic         string
	buffer        *ringBuffer
	breaker       *breaker
	wake          chan struct{}
	pending       []*kgo.Record
	inflight      atomic.Int64
	batchSize     int
	flushInterval time.Duration
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

type Option func(*KafkaPublisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *KafkaPublisher) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *KafkaPublisher) {
		p.metrics = m
	}
}

func WithBufferCapacity(n int) Option {
	return func(p *KafkaPublisher) {
		p.buffer = newRingBuffer(n)
	}
}

func WithBatchSize(n int) Option {
	return func(p *KafkaPublisher) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(p *KafkaPublisher) {
		if d > 0 {
			p.flushInterval = d
		}
	}
}

// WithBreaker sets how many consecutive produce failures pause producing and
// for how long.
func WithBreaker(threshold int, cooldown time.Duration) Option {
	return func(p *KafkaPublisher) {
		p.breaker = newBreaker(threshold, cooldown)
	}
}

func New(producer Producer, topic string, opts ...Option) *KafkaPublisher {
	p := &KafkaPublisher{
		producer:      producer,
		topic:         topic,
		buffer:        newRingBuffer(defaultBufferCapacity),
		breaker:       newBreaker(0, 0),
		wake:          make(chan struct{}, 1),
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish buffers entry for the worker. It never blocks on the broker.
func (p *KafkaPublisher) Publish(_ context.Context, entry *models.AuditLogEntry) error {
	if entry == nil {
		return fmt.Errorf("publish: nil entry")
	}
	if p.buffer.push(entry) {
		p.metrics.IncPublishDropped()
	}
	select {
	case p.wake <- struct{}{}:
	default:
	}
	return nil
}

// Pending is the number of entries buffered or awaiting retry.
func (p *KafkaPublisher) Pending() int {
	return p.buffer.len() + int(p.inflight.Load())
}

// Dropped is the number of entries evicted from a full buffer.
func (p *KafkaPublisher) Dropped() int64 {
	return p.buffer.droppedCount()
}

// Run produces buffered entries until ctx is cancelled, then makes one
// bounded attempt to drain what is left.
func (p *KafkaPublisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultDrainTimeout)
			p.flush(drainCtx)
			cancel()
			if n := p.Pending(); n > 0 {
				p.logger.Warn("audit publisher stopped with undelivered entries", "pending", n)
			}
			return ctx.Err()
		case <-p.wake:
			p.flush(ctx)
		case <-ticker.C:
			p.flush(ctx)
		}
	}
}

// flush produces batches until the buffer is empty or a batch fails.
// A failed batch is kept and retried first so ordering is preserved.
func (p *KafkaPublisher) flush(ctx context.Context) {
	for {
		if len(p.pending) == 0 {
			batch := p.buffer.popBatch(p.batchSize)
			if len(batch) == 0 {
				return
			}
			p.pending = p.records(batch)
			p.inflight.Store(int64(len(p.pending)))
		}
		if len(p.pending) == 0 {
			continue
		}
		if !p.breaker.allow() {
			return
		}

		if err := p.producer.ProduceSync(ctx, p.pending...).FirstErr(); err != nil {
			p.metrics.IncPublishFailures()
			opened := p.breaker.failure()
			p.logger.Warn("failed to produce audit entries",
				"error", err,
				"topic", p.topic,
				"batch", len(p.pending),
				"breaker_opened", opened,
			)
			return
		}
		p.breaker.success()
		p.pending = nil
		p.inflight.Store(0)
	}
}

func (p *KafkaPublisher) records(entries []*models.AuditLogEntry) []*kgo.Record {
	out := make([]*kgo.Record, 0, len(entries))
	for _, entry := range entries {
		rec, err := p.record(entry)
		if err != nil {
			p.metrics.IncPublishFailures()
			p.logger.Error("failed to encode audit entry", "error", err, "entry_id", entry.ID)
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (p *KafkaPublisher) record(entry *models.AuditLogEntry) (*kgo.Record, error) {
	value, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal audit entry: %w", err)
	}
	return &kgo.Record{
		Topic:     p.topic,
		Key:       []byte(entry.ID),
		Value:     value,
		Timestamp: entry.Timestamp,
		Headers: []kgo.RecordHeader{
			{Key: HeaderHash, Value: []byte(entry.Hash)},
			{Key: HeaderPreviousHash, Value: []byte(entry.PreviousHash)},
			{Key: HeaderOperationType, Value: []byte(entry.OperationType)},
			{Key: HeaderApproved, Value: []byte(strconv.FormatBool(entry.Approved))},
		},
	}, nil
}
