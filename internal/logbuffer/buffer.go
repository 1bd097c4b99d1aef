// Package logbuffer keeps a bounded, in-memory history of recent log entries.
//
// A Buffer is created by the application root and injected into every
// component that logs, usually through the zap Core in this package. It never
// grows past its capacity: once full, each push evicts the oldest entry.
package logbuffer

import (
	"sync"
	"time"

	"github.com/dhima/edge-cache/pkg/clock"
)

// Entry is a single buffered log record. Entries are values; the buffer
// hands out copies only.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Target    string    `json:"target"`
	Message   string    `json:"message"`
}

// Buffer is a fixed-capacity FIFO ring of log entries, safe for concurrent use.
//
// A capacity of zero is legal: pushes are accepted and discarded, so the
// buffer is always empty.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	head    int // index of the oldest entry
	count   int
	max     int
	clock   clock.Clock
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithClock overrides the clock used to timestamp pushed entries.
func WithClock(c clock.Clock) Option {
	return func(b *Buffer) {
		if c != nil {
			b.clock = c
		}
	}
}

// New creates a buffer retaining at most maxEntries entries.
// Negative capacities are treated as zero.
func New(maxEntries int, opts ...Option) *Buffer {
	if maxEntries < 0 {
		maxEntries = 0
	}
	b := &Buffer{
		entries: make([]Entry, maxEntries),
		max:     maxEntries,
		clock:   clock.RealClock{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Cap returns the configured capacity.
func (b *Buffer) Cap() int {
	return b.max
}

// Push appends an entry stamped with the current time, evicting the oldest
// entry first when the buffer is full.
func (b *Buffer) Push(level Level, target, message string) {
	entry := Entry{
		Timestamp: b.clock.Now().UTC(),
		Level:     level,
		Target:    target,
		Message:   message,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max == 0 {
		return
	}
	if b.count == b.max {
		b.entries[b.head] = Entry{}
		b.head = (b.head + 1) % b.max
		b.count--
	}
	b.entries[(b.head+b.count)%b.max] = entry
	b.count++
}

// Snapshot returns a point-in-time copy of the entries, oldest first.
func (b *Buffer) Snapshot() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Entry, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.entries[(b.head+i)%b.max]
	}
	return out
}

// Clear removes every entry.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.entries {
		b.entries[i] = Entry{}
	}
	b.head = 0
	b.count = 0
}

// Len returns the number of buffered entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// IsEmpty reports whether the buffer holds no entries.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}
