package ntcore

// Mutex, Event, and Semaphore are the three synchronizable object kinds
// the wait-engine scenarios in spec section 8 exercise directly. They are
// not part of the core's required surface (spec section 1 treats the
// object model as polymorphic and open-ended) but are provided so the
// engine is testable without a host supplying its own object kinds, and
// so QueueAPC/select's signal-and-wait path has something concrete to
// signal.

// Mutex models a recursive kernel mutex: ownership transfers to
// whichever thread's wait is granted by Satisfied, and a mutex whose
// owner dies while still held is reported abandoned to the next waiter
// (spec section 8, scenario 2).
type Mutex struct {
	ObjectBase

	owner     *Thread
	recursion uint32
	abandoned bool
}

// NewMutex constructs an unowned mutex, optionally pre-owned by owner (the
// "initial owner" flag of the real API).
func NewMutex(owner *Thread) *Mutex {
	m := &Mutex{owner: owner}
	m.InitRefCount()
	if owner != nil {
		m.recursion = 1
		owner.mutexes[m] = struct{}{}
	}
	return m
}

// Signaled implements Object: a mutex is signaled when unowned, or when
// owned by t itself (recursive acquisition).
func (m *Mutex) Signaled(t *Thread) bool {
	return m.owner == nil || m.owner == t
}

// Satisfied implements Object: transfers ownership to t, incrementing the
// recursion count on a self-reacquire. Reports true (abandoned) exactly
// once, the first time ownership transfers following the prior owner's
// death without release.
func (m *Mutex) Satisfied(t *Thread) bool {
	wasAbandoned := m.abandoned
	m.abandoned = false
	if m.owner == t {
		m.recursion++
		return wasAbandoned
	}
	if m.owner != nil {
		delete(m.owner.mutexes, m)
	}
	m.owner = t
	m.recursion = 1
	t.mutexes[m] = struct{}{}
	return wasAbandoned
}

// Release drops one level of recursive ownership; on the last release the
// mutex becomes unowned and signaled, waking any queued waiter.
func (m *Mutex) Release(e *Engine, t *Thread) NTStatus {
	if m.owner != t {
		return StatusUnsuccessful
	}
	m.recursion--
	if m.recursion > 0 {
		return StatusSuccess
	}
	delete(t.mutexes, m)
	m.owner = nil
	if e != nil {
		e.WakeUp(m, 1)
	}
	return StatusSuccess
}

// Abandon is invoked by thread kill cleanup (spec section 4.2) for every
// mutex still held at death: the mutex becomes unowned but flagged
// abandoned, so the next thread to acquire it observes Satisfied==true.
func (m *Mutex) Abandon(e *Engine) {
	m.owner = nil
	m.abandoned = true
	if e != nil {
		e.WakeUp(m, 1)
	}
}

func (m *Mutex) Destroy()               {}
func (m *Mutex) Dump(dst []byte) []byte { return dumpMutex(dst, m) }

// Signal implements Object: releases one level of t's ownership, the
// "signal" half of select's signal-and-wait primitive.
func (m *Mutex) Signal(e *Engine, t *Thread) bool {
	return m.Release(e, t) == StatusSuccess
}

// EventKind distinguishes manual-reset from auto-reset event semantics.
type EventKind int

const (
	EventManualReset EventKind = iota
	EventAutoReset
)

// Event models a kernel event object. An auto-reset event resets to
// non-signaled the moment a single wait is satisfied by it (spec section
// 4.3 step 3's remark about auto-reset events resetting "on query ... but
// only once the full wait is granted").
type Event struct {
	ObjectBase

	kind     EventKind
	signaled bool
}

// NewEvent constructs an event in the given initial state.
func NewEvent(kind EventKind, initiallySignaled bool) *Event {
	e := &Event{kind: kind, signaled: initiallySignaled}
	e.InitRefCount()
	return e
}

// Set signals the event, waking queued waiters (spec section 4.3,
// "Object-queue wake fan-out").
func (e *Event) Set(eng *Engine) {
	e.signaled = true
	if eng != nil {
		max := 0
		if e.kind == EventAutoReset {
			max = 1
		}
		eng.WakeUp(e, max)
	}
}

// Reset clears the event to non-signaled.
func (e *Event) Reset() { e.signaled = false }

// Signaled implements Object.
func (e *Event) Signaled(_ *Thread) bool { return e.signaled }

// Satisfied implements Object: an auto-reset event clears itself the
// instant a wait is granted; a manual-reset event stays signaled.
func (e *Event) Satisfied(_ *Thread) bool {
	if e.kind == EventAutoReset {
		e.signaled = false
	}
	return false
}

func (e *Event) Destroy()               {}
func (e *Event) Dump(dst []byte) []byte { return dumpEvent(dst, e) }

// Signal implements Object: sets the event, the "signal" half of
// select's signal-and-wait primitive.
func (ev *Event) Signal(eng *Engine, _ *Thread) bool {
	ev.Set(eng)
	return true
}

// Semaphore models a counted kernel semaphore with a fixed maximum count.
type Semaphore struct {
	ObjectBase

	count, max int32
}

// NewSemaphore constructs a semaphore with the given initial and maximum
// counts.
func NewSemaphore(initial, max int32) *Semaphore {
	s := &Semaphore{count: initial, max: max}
	s.InitRefCount()
	return s
}

// Release adds n to the semaphore's count, waking up to n queued waiters,
// and reports the previous count. If the new count would exceed max it
// fails with StatusUnsuccessful and leaves the count unchanged.
func (s *Semaphore) Release(eng *Engine, n int32) (previous int32, status NTStatus) {
	previous = s.count
	if s.count+n > s.max {
		return previous, StatusUnsuccessful
	}
	s.count += n
	if eng != nil {
		eng.WakeUp(s, int(n))
	}
	return previous, StatusSuccess
}

// Signaled implements Object.
func (s *Semaphore) Signaled(_ *Thread) bool { return s.count > 0 }

// Satisfied implements Object: consumes one count.
func (s *Semaphore) Satisfied(_ *Thread) bool {
	if s.count > 0 {
		s.count--
	}
	return false
}

func (s *Semaphore) Destroy()               {}
func (s *Semaphore) Dump(dst []byte) []byte { return dumpSemaphore(dst, s) }


