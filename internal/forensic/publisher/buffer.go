package publisher

import (
	"sync"

	"pigate/internal/forensic/models"
)

const defaultBufferCapacity = 10_000

// ringBuffer holds entries waiting to be produced. When full the oldest
// entry is evicted; the ledger itself remains the source of truth.
type ringBuffer struct {
	mu      sync.Mutex
	entries []*models.AuditLogEntry
	head    int // next write position
	tail    int // next read position
	count   int
	dropped int64
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity <= 0 {
		capacity = defaultBufferCapacity
	}
	return &ringBuffer{entries: make([]*models.AuditLogEntry, capacity)}
}

// push appends entry and reports whether an older entry was evicted.
func (b *ringBuffer) push(entry *models.AuditLogEntry) (evicted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.entries)
	if b.count == capacity {
		b.entries[b.tail] = nil
		b.tail = (b.tail + 1) % capacity
		b.count--
		b.dropped++
		evicted = true
	}
	b.entries[b.head] = entry
	b.head = (b.head + 1) % capacity
	b.count++
	return evicted
}

// popBatch removes up to n entries in insertion order.
func (b *ringBuffer) popBatch(n int) []*models.AuditLogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}
	if n > b.count {
		n = b.count
	}
	capacity := len(b.entries)
	out := make([]*models.AuditLogEntry, n)
	for i := range n {
		out[i] = b.entries[b.tail]
		b.entries[b.tail] = nil
		b.tail = (b.tail + 1) % capacity
	}
	b.count -= n
	return out
}

func (b *ringBuffer) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *ringBuffer) droppedCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
