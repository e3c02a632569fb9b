package ntcore

import (
	"errors"
	"io"
	"syscall"
	"time"
)

// WaitFlags selects WAIT-ALL vs WAIT-ANY and whether APCs may terminate
// the wait early (spec section 6, "Flags on select").
type WaitFlags uint32

const (
	// WaitAll requires every waited object to be signaled (WAIT-ALL);
	// absent, the wait is WAIT-ANY.
	WaitAll WaitFlags = 1 << iota
	// WaitAlertable lets a queued user APC terminate the wait.
	WaitAlertable
	// WaitInterruptible lets a queued system APC terminate the wait,
	// even though the wait is not alertable.
	WaitInterruptible
)

// waitResult is the outcome check_wait or timeout resolution can report;
// -1 (waitKeepWaiting) means "not yet decided" (spec section 4.3, steps
// 1-7).
type waitResult int32

const waitKeepWaiting waitResult = -1

// WaitBlock is one installed wait (spec section 3, "Wait record"): a
// back-reference to its thread, flags, an absolute deadline, an opaque
// client cookie, an optional timer, and one WaitEntry per waited object.
// WaitBlock.next links to the thread's next-older nested wait, forming
// the wait stack named in spec section 3's invariants.
type WaitBlock struct {
	thread   *Thread
	next     *WaitBlock
	entries  []*WaitEntry
	flags    WaitFlags
	deadline time.Time
	infinite bool
	cookie   uint64
	timer    *timerHandle
	start    time.Time // installation time, for wait-latency metrics
}

// SelectOn installs a wait on objs for thread t, per spec section 4.3
// ("Entering a wait"). signalObj, if non-nil, is signaled first
// (signal-and-wait), then the wait is installed and check_wait decides
// the outcome exactly as for any other wait -- WAIT-ALL/WAIT-ANY and the
// input-order "first signalled wins" rule apply to signalObj the same as
// to every other waited object.
//
// On success it returns the WaitBlock (already linked as t's new top
// wait) and a status that is either a definite outcome (wait was
// immediately satisfied) or StatusPending (caller must suspend at the
// wake channel). Definite outcomes still leave the record installed so
// callers share the end_wait/pop path uniformly; it is the caller's
// (engine's) job to immediately end_wait when the result is definite.
func (e *Engine) SelectOn(t *Thread, objs []Object, flags WaitFlags, deadline time.Time, infinite bool, cookie uint64, signalObj Object) (*WaitBlock, NTStatus) {
	if len(objs) > e.opts.maxWaitObjects {
		return nil, StatusInvalidParameter
	}

	// Signal-and-wait (spec section 4.3, "Entering a wait"): signal first,
	// then fall through to the ordinary install-and-check_wait path below
	// rather than short-circuiting on signalObj alone. Short-circuiting
	// here would grant the wait on signalObj regardless of the other
	// waited objects (breaking WAIT-ALL) and regardless of a lower-index
	// object also being signaled (breaking WAIT-ANY's input-order rule);
	// check_wait already applies both rules correctly.
	if signalObj != nil {
		signalObj.Signal(e, t)
	}

	wb := &WaitBlock{thread: t, flags: flags, deadline: deadline, infinite: infinite, cookie: cookie, start: now()}
	wb.entries = make([]*WaitEntry, 0, len(objs))
	for i, o := range objs {
		entry := &WaitEntry{obj: o, block: wb, index: i}
		o.AddQueue(entry)
		wb.entries = append(wb.entries, entry)
	}
	wb.next = t.topWait
	t.topWait = wb
	e.metrics.incLiveWaits()

	status := e.checkWait(t)
	if status != waitKeepWaiting {
		return wb, ntStatusFromWaitResult(wb, status)
	}

	if !infinite {
		wb.timer = e.timers.arm(deadline, func() { e.onTimerFired(wb) })
	}
	return wb, StatusPending
}

func ntStatusFromWaitResult(wb *WaitBlock, r waitResult) NTStatus {
	switch r {
	case waitResultTimeout:
		return StatusTimeout
	case waitResultUserAPC:
		return StatusUserAPC
	default:
		idx := int32(r)
		abandoned := idx >= waitAbandonedBase
		if abandoned {
			idx -= waitAbandonedBase
		}
		return WaitIndexStatus(int(idx), abandoned)
	}
}

// Sentinel waitResult values distinct from real object indices, chosen
// above any plausible MAXIMUM_WAIT_OBJECTS count.
const (
	waitResultTimeout waitResult = -2
	waitResultUserAPC waitResult = -3
	waitAbandonedBase waitResult = 1 << 16
)

// checkWait implements spec section 4.3 "check_wait", steps 1-7 in
// order.
func (e *Engine) checkWait(t *Thread) waitResult {
	wb := t.topWait
	if wb == nil {
		return waitResultTimeout // no wait installed; nothing to check
	}

	// 1. INTERRUPTIBLE + queued system APC preempts even non-alertable waits.
	if wb.flags&WaitInterruptible != 0 && !t.systemAPCs.empty() {
		return waitResultUserAPC
	}

	// 2. Suspension defers lock acquisition but was already checked for APCs above.
	if t.effectiveSuspended() {
		return waitKeepWaiting
	}

	if wb.flags&WaitAll != 0 {
		allSignaled := true
		for _, entry := range wb.entries {
			if !entry.obj.Signaled(t) {
				allSignaled = false
			}
		}
		if allSignaled {
			abandoned := false
			for _, entry := range wb.entries {
				if entry.obj.Satisfied(t) {
					abandoned = true
				}
			}
			if abandoned {
				return waitAbandonedBase
			}
			return 0
		}
	} else {
		for _, entry := range wb.entries {
			if entry.obj.Signaled(t) {
				abandoned := entry.obj.Satisfied(t)
				if abandoned {
					return waitAbandonedBase + waitResult(entry.index)
				}
				return waitResult(entry.index)
			}
		}
	}

	// 5. ALERTABLE + queued user APC.
	if wb.flags&WaitAlertable != 0 && !t.userAPCs.empty() {
		return waitResultUserAPC
	}

	// 6. Deadline passed.
	if !wb.infinite && !wb.deadline.After(now()) {
		return waitResultTimeout
	}

	// 7. Keep waiting.
	return waitKeepWaiting
}

// EndWait implements spec section 4.3 "end_wait": pops the top wait
// record, removes each entry from its object's queue (releasing the
// AddQueue reference), cancels the timer, and frees the record.
func (e *Engine) EndWait(t *Thread) {
	wb := t.topWait
	if wb == nil {
		return
	}
	t.topWait = wb.next
	for _, entry := range wb.entries {
		entry.obj.RemoveQueue(entry)
	}
	if wb.timer != nil {
		e.timers.cancel(wb.timer)
	}
	e.metrics.decLiveWaits()
	e.metrics.RecordWaitLatency(now().Sub(wb.start))
}

// WakeThread implements spec section 4.3 "wake_thread": runs check_wait
// in a loop while a wait exists and a definite verdict is returned,
// popping one wait per iteration to support nested waits, and writes a
// wake_up_reply{cookie, signaled} for each definite verdict. Transport
// errors other than EPIPE are fatal; EPIPE triggers a non-violent kill.
func (e *Engine) WakeThread(t *Thread) {
	for t.topWait != nil {
		r := e.checkWait(t)
		if r == waitKeepWaiting {
			return
		}
		wb := t.topWait
		status := ntStatusFromWaitResult(wb, r)
		e.EndWait(t)
		if err := e.transport.SendWake(t, wb.cookie, status); err != nil {
			if isEPIPE(err) {
				e.KillThread(t, false, 0)
			} else {
				e.logger.Error("fatal_protocol_error", "thread", t.id, "err", err)
				e.KillThread(t, true, 0)
			}
			return
		}
	}
}

// WakeUp implements spec section 4.3 "Object-queue wake fan-out": walks
// obj's wait queue and calls WakeThread on each entry's thread. Because a
// successful wake may mutate the queue, iteration restarts at the head
// whenever any thread was woken; if max > 0, iteration stops after max
// successful wakes.
func (e *Engine) WakeUp(obj Object, max int) {
	base, ok := obj.(interface{ Entries() []*WaitEntry })
	if !ok {
		return
	}
	woken := 0
	for {
		entries := base.Entries()
		progressed := false
		for _, entry := range entries {
			t := entry.Thread()
			before := t.topWait
			e.WakeThread(t)
			if t.topWait != before {
				progressed = true
				woken++
				if max > 0 && woken >= max {
					return
				}
				break // queue mutated: restart at head
			}
		}
		if !progressed {
			return
		}
	}
}

// onTimerFired is the timer callback of spec section 4.3: if wb is no
// longer the thread's top wait it was already ended and is ignored. A
// suspended thread's timer is swallowed -- the wait persists until
// resume re-evaluates it.
func (e *Engine) onTimerFired(wb *WaitBlock) {
	t := wb.thread
	if t.topWait != wb {
		return
	}
	if t.effectiveSuspended() {
		return
	}
	e.WakeThread(t)
}

func isEPIPE(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}
