package publisher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"pigate/internal/forensic/models"
)

type fakeProducer struct {
	mu       sync.Mutex
	records  []*kgo.Record
	calls    int
	failNext int
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	results := make(kgo.ProduceResults, 0, len(rs))
	if f.failNext > 0 {
		f.failNext--
		for _, r := range rs {
			results = append(results, kgo.ProduceResult{Record: r, Err: errors.New("broker unavailable")})
		}
		return results
	}
	f.records = append(f.records, rs...)
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r})
	}
	return results
}

func (f *fakeProducer) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.records))
	for i, r := range f.records {
		out[i] = string(r.Key)
	}
	return out
}

func entry(n int) *models.AuditLogEntry {
	return &models.AuditLogEntry{
		ID:            fmt.Sprintf("entry-%d", n),
		Sequence:      int64(n),
		Timestamp:     time.Date(2026, 6, 1, 12, 0, n, 0, time.UTC),
		OperationType: models.OperationPaymentCreate,
		Approved:      n%2 == 0,
		PreviousHash:  fmt.Sprintf("sha256:prev-%d", n),
		Hash:          fmt.Sprintf("sha256:hash-%d", n),
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func header(r *kgo.Record, key string) string {
	for _, h := range r.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublishProducesInOrder(t *testing.T) {
	producer := &fakeProducer{}
	p := New(producer, "pigate.audit.entries", WithLogger(quietLogger()), WithBatchSize(2))

	for i := 1; i <= 5; i++ {
		require.NoError(t, p.Publish(context.Background(), entry(i)))
	}
	assert.Equal(t, 5, p.Pending())

	p.flush(context.Background())

	assert.Equal(t, []string{"entry-1", "entry-2", "entry-3", "entry-4", "entry-5"}, producer.keys())
	assert.Equal(t, 3, producer.calls, "batches of two")
	assert.Zero(t, p.Pending())

	first := producer.records[0]
	assert.Equal(t, "pigate.audit.entries", first.Topic)
	assert.Equal(t, "sha256:hash-1", header(first, HeaderHash))
	assert.Equal(t, "sha256:prev-1", header(first, HeaderPreviousHash))
	assert.Equal(t, "payment_create", header(first, HeaderOperationType))
	assert.Equal(t, "false", header(first, HeaderApproved))
	assert.Contains(t, string(first.Value), `"hash":"sha256:hash-1"`)
}

func TestPublishRejectsNilEntry(t *testing.T) {
	p := New(&fakeProducer{}, "t", WithLogger(quietLogger()))
	assert.Error(t, p.Publish(context.Background(), nil))
}

func TestFullBufferEvictsOldest(t *testing.T) {
	producer := &fakeProducer{}
	p := New(producer, "t", WithLogger(quietLogger()), WithBufferCapacity(2))

	for i := 1; i <= 3; i++ {
		require.NoError(t, p.Publish(context.Background(), entry(i)))
	}
	assert.Equal(t, int64(1), p.Dropped())

	p.flush(context.Background())
	assert.Equal(t, []string{"entry-2", "entry-3"}, producer.keys())
}

func TestFailedBatchIsRetriedFirst(t *testing.T) {
	producer := &fakeProducer{failNext: 1}
	p := New(producer, "t", WithLogger(quietLogger()), WithBatchSize(2))

	require.NoError(t, p.Publish(context.Background(), entry(1)))
	require.NoError(t, p.Publish(context.Background(), entry(2)))
	p.flush(context.Background())
	assert.Empty(t, producer.keys())
	assert.Equal(t, 2, p.Pending())

	require.NoError(t, p.Publish(context.Background(), entry(3)))
	p.flush(context.Background())
	assert.Equal(t, []string{"entry-1", "entry-2", "entry-3"}, producer.keys())
	assert.Zero(t, p.Pending())
}

func TestBreakerPausesProducing(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	producer := &fakeProducer{failNext: 2}
	p := New(producer, "t", WithLogger(quietLogger()), WithBreaker(2, time.Minute))
	p.breaker.now = func() time.Time { return now }

	require.NoError(t, p.Publish(context.Background(), entry(1)))
	p.flush(context.Background())
	p.flush(context.Background())
	require.Equal(t, 2, producer.calls)
	assert.True(t, p.breaker.open())

	p.flush(context.Background())
	assert.Equal(t, 2, producer.calls, "no attempt while open")

	now = now.Add(time.Minute)
	p.flush(context.Background())
	assert.Equal(t, 3, producer.calls)
	assert.Equal(t, []string{"entry-1"}, producer.keys())
	assert.False(t, p.breaker.open())
}

func TestRunDrainsOnShutdown(t *testing.T) {
	producer := &fakeProducer{}
	p := New(producer, "t", WithLogger(quietLogger()), WithFlushInterval(time.Hour))

	require.NoError(t, p.Publish(context.Background(), entry(1)))
	require.NoError(t, p.Publish(context.Background(), entry(2)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"entry-1", "entry-2"}, producer.keys())
}

func TestRunProducesOnWake(t *testing.T) {
	producer := &fakeProducer{}
	p := New(producer, "t", WithLogger(quietLogger()), WithFlushInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.NoError(t, p.Publish(ctx, entry(7)))
	assert.Eventually(t, func() bool {
		return len(producer.keys()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
