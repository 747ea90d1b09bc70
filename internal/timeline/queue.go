// Package timeline holds the time-ordered event queue that drives a single
// simulation run.
//
// Events live in an arena owned by the queue and are addressed through
// Handles. Cancelling an event only flips a flag on its slot; the heap entry
// stays where it is and is discarded when it reaches the front.
package timeline

import (
	"container/heap"
	"time"
)

// Handle addresses one event slot. The zero Handle is never valid.
type Handle struct {
	index uint32
	gen   uint32
}

// Valid reports whether the handle was ever issued.
func (h Handle) Valid() bool {
	return h.gen != 0
}

type slot[T any] struct {
	payload   T
	at        time.Duration
	stamp     uint64
	scheduled bool
	cancelled bool
}

type entry struct {
	at    time.Duration
	seq   uint64
	index uint32
	stamp uint64
}

type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Queue is a min-priority queue of events keyed by (timestamp, insertion
// sequence). It is not safe for concurrent use; each run owns one.
type Queue[T any] struct {
	now   time.Duration
	slots []slot[T]
	heap  entryHeap
	seq   uint64
	gen   uint32
}

// New returns an empty queue with the clock at zero.
func New[T any]() *Queue[T] {
	return &Queue[T]{gen: 1}
}

// Reset drops every slot and pending entry, rewinds the clock and
// invalidates all handles issued before the call.
func (q *Queue[T]) Reset() {
	q.now = 0
	q.slots = q.slots[:0]
	q.heap = q.heap[:0]
	q.seq = 0
	q.gen++
	if q.gen == 0 {
		q.gen = 1
	}
}

// Now returns the current simulation clock.
func (q *Queue[T]) Now() time.Duration {
	return q.now
}

// Add stores payload in a fresh slot without scheduling it.
func (q *Queue[T]) Add(payload T) Handle {
	q.slots = append(q.slots, slot[T]{payload: payload})
	return Handle{index: uint32(len(q.slots) - 1), gen: q.gen}
}

func (q *Queue[T]) slot(h Handle) *slot[T] {
	if h.gen != q.gen || int(h.index) >= len(q.slots) {
		return nil
	}
	return &q.slots[h.index]
}

// Owns reports whether h was issued by this queue since the last Reset.
func (q *Queue[T]) Owns(h Handle) bool {
	return q.slot(h) != nil
}

// Payload returns a pointer to the handle's payload, or nil for a foreign
// or stale handle.
func (q *Queue[T]) Payload(h Handle) *T {
	s := q.slot(h)
	if s == nil {
		return nil
	}
	return &s.payload
}

// Schedule sets the event's timestamp to now+delta, clears its cancelled
// flag and pushes it with a fresh sequence number. Rescheduling an already
// pending event supersedes its previous entry.
func (q *Queue[T]) Schedule(h Handle, delta time.Duration) (time.Duration, bool) {
	s := q.slot(h)
	if s == nil {
		return 0, false
	}
	q.seq++
	s.stamp = q.seq
	s.at = q.now + delta
	s.scheduled = true
	s.cancelled = false
	heap.Push(&q.heap, entry{at: s.at, seq: q.seq, index: h.index, stamp: s.stamp})
	return s.at, true
}

// Unschedule marks a pending event cancelled. It refuses, without mutating
// anything, when the event's timestamp is already behind the clock.
func (q *Queue[T]) Unschedule(h Handle) bool {
	s := q.slot(h)
	if s == nil || !s.scheduled {
		return false
	}
	if s.at < q.now {
		return false
	}
	s.cancelled = true
	return true
}

// Timestamp returns the time the event was last scheduled for.
func (q *Queue[T]) Timestamp(h Handle) time.Duration {
	s := q.slot(h)
	if s == nil {
		return 0
	}
	return s.at
}

// Cancelled reports whether the event was unscheduled after its last
// Schedule call.
func (q *Queue[T]) Cancelled(h Handle) bool {
	s := q.slot(h)
	return s != nil && s.cancelled
}

// Pending reports whether the event is scheduled, not cancelled and not yet
// dispatched.
func (q *Queue[T]) Pending(h Handle) bool {
	s := q.slot(h)
	return s != nil && s.scheduled && !s.cancelled
}

// Live reports whether the event is pending and its timestamp is not behind
// the clock.
func (q *Queue[T]) Live(h Handle) bool {
	s := q.slot(h)
	return s != nil && s.scheduled && !s.cancelled && s.at >= q.now
}

// Pop removes the earliest pending event, advances the clock to its
// timestamp and returns it. late is true when the event's timestamp was
// behind the clock; the clock never moves backwards.
func (q *Queue[T]) Pop() (h Handle, at time.Duration, late bool, ok bool) {
	for q.heap.Len() > 0 {
		e := heap.Pop(&q.heap).(entry)
		s := &q.slots[e.index]
		if e.stamp != s.stamp || !s.scheduled {
			continue
		}
		s.scheduled = false
		if s.cancelled {
			continue
		}
		if e.at < q.now {
			late = true
		} else {
			q.now = e.at
		}
		return Handle{index: e.index, gen: q.gen}, e.at, late, true
	}
	return Handle{}, 0, false, false
}

// Peek returns the timestamp of the earliest pending event.
func (q *Queue[T]) Peek() (time.Duration, bool) {
	for q.heap.Len() > 0 {
		e := q.heap[0]
		s := &q.slots[e.index]
		if e.stamp == s.stamp && s.scheduled && !s.cancelled {
			return e.at, true
		}
		heap.Pop(&q.heap)
	}
	return 0, false
}

// Clear cancels every pending event. Slots and handles stay valid.
func (q *Queue[T]) Clear() {
	for _, e := range q.heap {
		s := &q.slots[e.index]
		if e.stamp == s.stamp {
			s.cancelled = true
			s.scheduled = false
		}
	}
	q.heap = q.heap[:0]
}

// Len returns the number of heap entries, including cancelled and
// superseded ones not yet discarded.
func (q *Queue[T]) Len() int {
	return q.heap.Len()
}
