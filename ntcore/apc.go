package ntcore

// APCKind tags the call descriptor's variant (spec section 4.4,
// "Routing by call kind"). NONE, USER, and TIMER route to the user
// queue; every other kind routes to the system queue.
type APCKind uint32

const (
	APCNone APCKind = iota
	APCUser
	APCTimer
	APCVirtualAlloc
	APCVirtualFree
	APCVirtualQuery
	APCMapView
	APCMapViewEx
	APCUnmapView
	APCCreateThread
	APCAsyncIO
	APCDupHandle
)

func (k APCKind) systemRouted() bool {
	switch k {
	case APCNone, APCUser, APCTimer:
		return false
	default:
		return true
	}
}

// APCCall is the tagged call descriptor an APC carries (spec section 3,
// "APC"). Args is kind-specific payload, opaque to the core beyond the
// CREATE_THREAD/ASYNC_IO post-processing hooks in resultPostProcess.
type APCCall struct {
	Kind APCKind
	Args any
}

// APCResult is the tagged result descriptor a client posts back via
// prev_apc (spec section 6, "select").
type APCResult struct {
	Kind   APCKind
	Status NTStatus
	Value  any
}

// APC is a reference-counted unit of work queued on a thread (spec
// section 3, "APC"). Owner, when non-nil, identifies the object the APC
// is coalesced/canceled against (e.g. an async I/O handle).
type APC struct {
	RefCount

	Owner  Object
	Caller *Thread // populated when the APC crosses processes
	Call   APCCall
	Result APCResult

	executed bool
	joiners  *ObjectBase // threads waiting for this APC to complete
}

// NewAPC constructs an unexecuted APC with one strong reference.
func NewAPC(owner Object, caller *Thread, call APCCall) *APC {
	a := &APC{Owner: owner, Caller: caller, Call: call, joiners: &ObjectBase{}}
	a.InitRefCount()
	return a
}

// Signaled implements Object: an APC is signaled once executed, letting
// joiners wait for completion.
func (a *APC) Signaled(_ *Thread) bool { return a.executed }

// Satisfied implements Object; APCs are never reported abandoned.
func (a *APC) Satisfied(_ *Thread) bool { return false }

// Signal implements Object: an APC has no release operation of its own,
// only an execution outcome set by markExecuted.
func (a *APC) Signal(_ *Engine, _ *Thread) bool { return false }
func (a *APC) AddQueue(e *WaitEntry)            { a.joiners.AddQueue(e) }
func (a *APC) RemoveQueue(e *WaitEntry)         { a.joiners.RemoveQueue(e) }
func (a *APC) Destroy()                         {}
func (a *APC) Dump(dst []byte) []byte           { return dumpAPC(dst, a) }
func (a *APC) Ref() *RefCount                   { return &a.RefCount }

// Entries exposes the joiners' wait queue so Engine.WakeUp can reach
// threads waiting for this APC to complete.
func (a *APC) Entries() []*WaitEntry { return a.joiners.Entries() }

func (a *APC) markExecuted(status NTStatus, value any) {
	a.executed = true
	a.Result = APCResult{Kind: a.Call.Kind, Status: status, Value: value}
}

// apcQueue is a FIFO queue of *APC, used once for system APCs and once
// for user APCs per thread (spec section 4.4).
type apcQueue struct {
	items []*APC
}

func newAPCQueue() *apcQueue { return &apcQueue{} }

func (q *apcQueue) empty() bool { return len(q.items) == 0 }

func (q *apcQueue) push(a *APC) { q.items = append(q.items, a) }

func (q *apcQueue) pop() *APC {
	if len(q.items) == 0 {
		return nil
	}
	a := q.items[0]
	q.items = q.items[1:]
	return a
}

// removeMatching removes and returns the first APC matching owner+kind,
// used both by coalescing (Enqueue) and by explicit Cancel.
func (q *apcQueue) removeMatching(owner Object, kind APCKind) *APC {
	for i, a := range q.items {
		if a.Owner == owner && a.Call.Kind == kind {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return a
		}
	}
	return nil
}

func (q *apcQueue) drain() []*APC {
	items := q.items
	q.items = nil
	return items
}

// QueueAPC implements spec section 4.4 "Enqueue (to a specific thread)":
// fails on a terminated thread; coalesces any prior same-owner/same-kind
// APC in the routed queue; appends; kicks the OS thread if a system
// queue was empty and the thread is not in an APC-acceptable wait; wakes
// the thread either way. owner, when non-nil, is the object the APC
// coalesces/cancels against (spec section 3 "APC"; e.g. an async I/O
// handle so only the latest completion is ever delivered).
func (e *Engine) QueueAPC(t *Thread, owner Object, call APCCall, caller *Thread) (*APC, NTStatus) {
	if t.state == ThreadTerminated {
		return nil, StatusThreadIsTerminating
	}

	a := NewAPC(owner, caller, call)
	q := t.userAPCs
	if call.Kind.systemRouted() {
		q = t.systemAPCs
	}

	wasEmpty := q.empty()
	if a.Owner != nil {
		if prior := q.removeMatching(a.Owner, a.Call.Kind); prior != nil {
			prior.markExecuted(StatusUnsuccessful, nil)
			e.WakeUp(prior, 0)
			e.metrics.setAPCDepth(call.Kind.systemRouted(), -1)
		}
	}
	q.push(a)
	e.metrics.setAPCDepth(call.Kind.systemRouted(), 1)

	if call.Kind.systemRouted() && wasEmpty && !apcAcceptableWait(t) {
		e.kick(t)
	}

	e.WakeThread(t)
	return a, StatusSuccess
}

// QueueAPCToProcess implements spec section 4.4 "Enqueue (to a process,
// thread unspecified)": prefers a thread already in an APC-acceptable
// wait, else the first thread the kick signal reaches, else fails.
func (e *Engine) QueueAPCToProcess(p *Process, owner Object, call APCCall, caller *Thread) (*APC, NTStatus) {
	if t := p.APCAcceptableThread(); t != nil {
		return e.QueueAPC(t, owner, call, caller)
	}
	for _, t := range p.Threads() {
		if t.State() != ThreadTerminated && e.kick(t) {
			return e.QueueAPC(t, owner, call, caller)
		}
	}
	return nil, StatusUnsuccessful
}

func apcAcceptableWait(t *Thread) bool {
	return t.effectiveSuspended() || t.currentWaitInterruptible()
}

// DequeueAPC implements spec section 4.4 "Dequeue": system queue first
// unless systemOnly is false and the user queue should be tried, system
// always takes precedence per P4.
func (t *Thread) DequeueAPC(systemOnly bool) *APC {
	if a := t.systemAPCs.pop(); a != nil {
		return a
	}
	if systemOnly {
		return nil
	}
	return t.userAPCs.pop()
}

// DequeueAPC wraps Thread.DequeueAPC with the depth-metric bookkeeping
// the bare Thread method cannot perform on its own (spec section 4.11).
func (e *Engine) DequeueAPC(t *Thread, systemOnly bool) *APC {
	system := !t.systemAPCs.empty()
	a := t.DequeueAPC(systemOnly)
	if a != nil {
		e.metrics.setAPCDepth(system, -1)
	}
	return a
}

// CancelAPC implements spec section 4.4 "Cancel": removes the first
// matching APC from the routed queue, marks it executed, wakes joiners,
// and drops the enqueue reference.
func (e *Engine) CancelAPC(t *Thread, owner Object, kind APCKind) NTStatus {
	q := t.userAPCs
	if kind.systemRouted() {
		q = t.systemAPCs
	}
	a := q.removeMatching(owner, kind)
	if a == nil {
		return StatusInvalidParameter
	}
	e.metrics.setAPCDepth(kind.systemRouted(), -1)
	a.markExecuted(StatusUnsuccessful, nil)
	e.WakeUp(a, 0)
	a.Release(a.Destroy)
	return StatusSuccess
}

// ClearAPCs implements spec section 4.4 "Clear": flushes both queues on
// thread cleanup; every cleared APC is marked executed and joiners woken.
func (e *Engine) ClearAPCs(t *Thread) {
	sys := t.systemAPCs.drain()
	e.metrics.setAPCDepth(true, -int64(len(sys)))
	for _, a := range sys {
		a.markExecuted(StatusThreadIsTerminating, nil)
		e.WakeUp(a, 0)
	}
	usr := t.userAPCs.drain()
	e.metrics.setAPCDepth(false, -int64(len(usr)))
	for _, a := range usr {
		a.markExecuted(StatusThreadIsTerminating, nil)
		e.WakeUp(a, 0)
	}
}

// resultPostProcess implements spec section 4.4 "Result post-processing"
// for the two kinds the core must special-case: CREATE_THREAD handle
// duplication and ASYNC_IO result forwarding. Both callbacks are
// host-supplied since handle duplication and async object state live
// outside this core's scope (spec section 1).
func (e *Engine) resultPostProcess(a *APC) {
	switch a.Call.Kind {
	case APCCreateThread:
		if e.hooks.DuplicateCreateThreadHandle != nil {
			_ = e.hooks.DuplicateCreateThreadHandle(a.Caller, a.Result.Value)
		}
	case APCAsyncIO:
		if owner, ok := a.Owner.(AsyncIOObject); ok {
			owner.SetAsyncResult(a.Result.Status, a.Result.Value, a)
		}
	}
}

// AsyncIOObject is the external collaborator interface an ASYNC_IO APC's
// owner must implement to receive its completion (spec section 4.4,
// "ASYNC_IO result").
type AsyncIOObject interface {
	Object
	SetAsyncResult(status NTStatus, total any, apc *APC)
}
