package notification

import "sync"

const (
	// DefaultLogCapacity is the number of entries retained when no capacity is configured.
	DefaultLogCapacity = 1000

	// DefaultQueryLimit is used by Query when the caller passes a non-positive limit.
	DefaultQueryLimit = 50
)

// DeliveryLog keeps the most recent dispatch attempts in a fixed-capacity ring.
// The oldest entry is evicted once capacity is reached.
type DeliveryLog struct {
	mu       sync.RWMutex
	entries  []DeliveryLogEntry
	start    int
	size     int
	recorded uint64
}

// NewDeliveryLog constructs a log that retains at most capacity entries.
func NewDeliveryLog(capacity int) *DeliveryLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &DeliveryLog{entries: make([]DeliveryLogEntry, capacity)}
}

// Record appends an entry, evicting the oldest when full.
func (l *DeliveryLog) Record(entry DeliveryLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	capacity := len(l.entries)
	if l.size < capacity {
		l.entries[(l.start+l.size)%capacity] = entry
		l.size++
	} else {
		l.entries[l.start] = entry
		l.start = (l.start + 1) % capacity
	}
	l.recorded++
}

// Query returns a copy of the trailing limit entries, oldest first.
func (l *DeliveryLog) Query(limit int) []DeliveryLogEntry {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	n := min(limit, l.size)
	out := make([]DeliveryLogEntry, n)
	capacity := len(l.entries)
	offset := l.size - n
	for i := range n {
		out[i] = l.entries[(l.start+offset+i)%capacity]
	}
	return out
}

// Len returns the number of retained entries.
func (l *DeliveryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// Recorded returns how many entries were ever recorded, including evicted ones.
func (l *DeliveryLog) Recorded() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.recorded
}

// Capacity returns the maximum number of retained entries.
func (l *DeliveryLog) Capacity() int {
	return len(l.entries)
}
