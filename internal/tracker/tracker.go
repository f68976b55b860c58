// tracker.go — generic seq-cursor tracker over a ring buffer, shared by
// the console, network, and exception trackers (spec §4.C).
package tracker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gasoline-dev/gasoline-broker/internal/buffers"
)

// Tracker is the shape common to all three event kinds: a bounded ring
// plus live subscriber fan-out. Overflow drops the oldest event.
type Tracker[T any] struct {
	buf *buffers.RingBuffer[Event[T]]
	seq int64 // atomic, monotonic per tracker

	mu        sync.Mutex
	listeners map[int]func(Event[T])
	nextSub   int
}

func newTracker[T any](capacity int) *Tracker[T] {
	return &Tracker[T]{
		buf:       buffers.NewRingBuffer[Event[T]](capacity),
		listeners: make(map[int]func(Event[T])),
	}
}

// emit records a new event and fans it out to live subscribers. Listener
// delivery never blocks the tracker; a listener that panics is not this
// tracker's concern (callers should wrap with util.SafeGo if run async).
func (t *Tracker[T]) emit(category string, payload T) Event[T] {
	e := Event[T]{
		Seq:      atomic.AddInt64(&t.seq, 1),
		Ts:       time.Now(),
		Category: category,
		Payload:  payload,
	}
	t.buf.WriteOne(e)

	t.mu.Lock()
	fns := make([]func(Event[T]), 0, len(t.listeners))
	for _, fn := range t.listeners {
		fns = append(fns, fn)
	}
	t.mu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
	return e
}

// Poll returns events with Seq > sinceSeq, oldest first, capped at max (0
// means unlimited). Truncated reports whether more matching events exist
// beyond the returned page.
func (t *Tracker[T]) Poll(sinceSeq int64, max int) PollResult[T] {
	all := t.buf.ReadAll()
	nextSeq := sinceSeq
	if len(all) > 0 {
		nextSeq = all[len(all)-1].Seq
	}

	var matched []Event[T]
	for _, e := range all {
		if e.Seq > sinceSeq {
			matched = append(matched, e)
		}
	}

	truncated := false
	if max > 0 && len(matched) > max {
		matched = matched[:max]
		truncated = true
	}
	return PollResult[T]{Events: matched, NextSeq: nextSeq, Truncated: truncated}
}

// Subscribe registers fn to receive every event emitted from this point
// forward, in insertion order, exactly once. The returned func unsubscribes.
// Subscription does not affect the poll cursor.
func (t *Tracker[T]) Subscribe(fn func(Event[T])) func() {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.listeners[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

// Len reports how many events are currently retained (debug-trace sizing).
func (t *Tracker[T]) Len() int {
	return t.buf.Len()
}
