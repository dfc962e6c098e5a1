package endpoints

import (
	"context"
	"sync"

	"github.com/artpar/actuate/domain/payload"
	"github.com/artpar/actuate/ports"
)

// DefaultTraceCapacity is used when no capacity is configured.
const DefaultTraceCapacity = 100

// Trace keeps the last exchanges in a ring buffer and serves them newest
// first.
type Trace struct {
	mu    sync.Mutex
	buf   []ports.Exchange
	next  int
	count int
}

// NewTrace creates a trace holding up to capacity exchanges.
func NewTrace(capacity int) *Trace {
	if capacity <= 0 {
		capacity = DefaultTraceCapacity
	}
	return &Trace{buf: make([]ports.Exchange, capacity)}
}

// Record stores e, evicting the oldest exchange when full.
func (t *Trace) Record(e ports.Exchange) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf[t.next] = e
	t.next = (t.next + 1) % len(t.buf)
	if t.count < len(t.buf) {
		t.count++
	}
}

// Recent returns the stored exchanges, newest first.
func (t *Trace) Recent() []ports.Exchange {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recentLocked()
}

func (t *Trace) recentLocked() []ports.Exchange {
	out := make([]ports.Exchange, t.count)
	for i := 0; i < t.count; i++ {
		idx := (t.next - 1 - i + len(t.buf)) % len(t.buf)
		out[i] = t.buf[idx]
	}
	return out
}

// Resize changes the capacity, keeping the newest exchanges that fit.
func (t *Trace) Resize(capacity int) {
	if capacity <= 0 {
		capacity = DefaultTraceCapacity
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if capacity == len(t.buf) {
		return
	}

	recent := t.recentLocked()
	if len(recent) > capacity {
		recent = recent[:capacity]
	}
	buf := make([]ports.Exchange, capacity)
	// Oldest first so the newest ends up just before next.
	for i := range recent {
		buf[i] = recent[len(recent)-1-i]
	}
	t.buf = buf
	t.count = len(recent)
	t.next = len(recent) % capacity
}

// Capacity returns the buffer size.
func (t *Trace) Capacity() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buf)
}

// Invoke returns the recorded exchanges as a sequence.
func (t *Trace) Invoke(context.Context, ports.Request) (payload.Value, error) {
	recent := t.Recent()
	items := make([]any, len(recent))
	for i, e := range recent {
		items[i] = e
	}
	return payload.OfSequence(items), nil
}

var (
	_ ports.Endpoint         = (*Trace)(nil)
	_ ports.ExchangeRecorder = (*Trace)(nil)
)
