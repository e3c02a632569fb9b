package ntcore

import (
	"container/heap"
	"time"
)

// timerHandle is the opaque token returned by timerQueue.arm, passed back
// to cancel. Grounded on the teacher's eventloop/loop.go timerHeap, here
// narrowed to one wait-deadline timer per armed wait instead of a general
// task scheduler.
type timerHandle struct {
	when     time.Time
	fire     func()
	index    int
	canceled bool
}

// timerQueue is a min-heap of armed wait deadlines, ordered by when. The
// dispatch loop polls it once per tick (Engine.Tick, driven by
// wireTransport.Run in transport.go) rather than
// running a background goroutine per timer, preserving the
// single-threaded cooperative model (spec section 5).
type timerQueue struct {
	h timerPQ
}

func newTimerQueue() *timerQueue {
	q := &timerQueue{}
	heap.Init(&q.h)
	return q
}

func (q *timerQueue) arm(when time.Time, fire func()) *timerHandle {
	th := &timerHandle{when: when, fire: fire}
	heap.Push(&q.h, th)
	return th
}

func (q *timerQueue) cancel(th *timerHandle) {
	th.canceled = true
}

// Tick fires every timer whose deadline has elapsed, as of t. Canceled
// timers are dropped without firing.
func (q *timerQueue) Tick(t time.Time) {
	for q.h.Len() > 0 {
		next := q.h[0]
		if next.canceled {
			heap.Pop(&q.h)
			continue
		}
		if next.when.After(t) {
			return
		}
		heap.Pop(&q.h)
		next.fire()
	}
}

// NextDeadline reports the soonest non-canceled deadline, used by the
// dispatch loop to size its poll timeout.
func (q *timerQueue) NextDeadline() (time.Time, bool) {
	for q.h.Len() > 0 {
		next := q.h[0]
		if next.canceled {
			heap.Pop(&q.h)
			continue
		}
		return next.when, true
	}
	return time.Time{}, false
}

type timerPQ []*timerHandle

func (h timerPQ) Len() int            { return len(h) }
func (h timerPQ) Less(i, j int) bool  { return h[i].when.Before(h[j].when) }
func (h timerPQ) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerPQ) Push(x any)         { th := x.(*timerHandle); th.index = len(*h); *h = append(*h, th) }
func (h *timerPQ) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}
