// Deterministic discrete-event scheduler driving the study in virtual time.
package timeline

import (
	"container/heap"
	"time"
)

// event is one scheduled callback.
type event struct {
	at  time.Duration
	seq uint64
	fn  func()
}

type eventHeap []event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(event)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	*h = old[:n-1]
	return ev
}

// Timeline delivers scheduled callbacks in non-decreasing virtual-time order.
// Two events at the same instant fire in scheduling order. Nothing runs past
// the declared stop time, so self-rescheduling timers cannot outlive a run.
type Timeline struct {
	now    time.Duration
	stop   time.Duration
	seq    uint64
	events eventHeap
}

// New creates a timeline that executes events up to and including stop.
func New(stop time.Duration) *Timeline {
	return &Timeline{stop: stop}
}

// Now returns the current virtual time.
func (t *Timeline) Now() time.Duration { return t.now }

// Stop returns the declared stop time.
func (t *Timeline) Stop() time.Duration { return t.stop }

// Schedule enqueues fn to run after delay. A negative delay runs at the
// current instant.
func (t *Timeline) Schedule(delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}
	t.ScheduleAt(t.now+delay, fn)
}

// ScheduleAt enqueues fn at an absolute virtual time. Events in the past are
// delivered at the current instant.
func (t *Timeline) ScheduleAt(at time.Duration, fn func()) {
	if at < t.now {
		at = t.now
	}
	t.seq++
	heap.Push(&t.events, event{at: at, seq: t.seq, fn: fn})
}

// Run executes events until the queue drains or the next event lies beyond
// the stop time. Callbacks may schedule further events.
func (t *Timeline) Run() {
	for t.events.Len() > 0 {
		if t.events[0].at > t.stop {
			break
		}
		ev := heap.Pop(&t.events).(event)
		t.now = ev.at
		ev.fn()
	}
	t.now = t.stop
}
