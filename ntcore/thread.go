package ntcore

import "time"

// ThreadState is the thread lifecycle state (spec section 3,
// "lifecycle"). The only legal transition is RUNNING -> TERMINATED, and
// it is irreversible.
type ThreadState int

const (
	ThreadRunning ThreadState = iota
	ThreadTerminated
)

// Priority sentinels outside the normal per-process-class range (spec
// section 6, "priority range constants").
const (
	PriorityIdle            int32 = -15
	PriorityRealtimeLowest  int32 = -7
	PriorityRealtimeHighest int32 = 6
	PriorityTimeCritical    int32 = 15
)

// Context is an opaque, host-supplied CPU register snapshot. The core
// never interprets its contents (spec section 1): it only captures,
// hands off, and merges register sets, keyed by CPU type.
type Context struct {
	CPU  CPUType
	Data []byte
}

// The in-flight fd cache's miss policy is Strategy, in inflight.go.

// Thread is the per-client-thread state record (spec section 3). It
// implements Object itself: other threads wait on a thread handle to be
// woken at termination (a "join"), so Thread embeds ObjectBase and is
// signaled exactly when its state is ThreadTerminated.
type Thread struct {
	ObjectBase

	id      uint16
	process *Process

	pid, tid int32 // OS identity, populated at init_thread
	teb      uint64

	state      ThreadState
	createdAt  time.Time
	exitedAt   time.Time
	exitCode   uint32

	priority int32
	affinity uint64

	suspendCount int32
	suspendCtx   *Context // set via set_suspend_context, consumed once
	debugBreak   bool
	capturedCtx  *Context // host-visible register context while captured

	initialized bool // init_thread has run (one-shot guard)

	// transport: request/reply/wake are owned fd-like handles to a
	// polled transport; modelled as opaque tokens here since the wire
	// layer (wire.go) and poller own the real fds.
	requestFD, replyFD, wakeFD int

	systemAPCs *apcQueue
	userAPCs   *apcQueue

	topWait *WaitBlock // current wait, topWait.next links older nested waits

	mutexes map[*Mutex]struct{} // held mutexes, for abandonment on kill

	inflight *inflightTable

	token any // optional impersonation token, opaque to the core
}

// NewThread allocates a thread attached to proc, per create (spec
// section 4.2). It does not register the thread with a Registry or
// assign an id; the Engine does that as part of new_thread so id
// allocation can be rolled back atomically on failure.
func NewThread(proc *Process, affinity uint64, maxInflight int) *Thread {
	t := &Thread{
		process:    proc,
		affinity:   affinity,
		state:      ThreadRunning,
		createdAt:  now(),
		priority:   0,
		systemAPCs: newAPCQueue(),
		userAPCs:   newAPCQueue(),
		mutexes:    make(map[*Mutex]struct{}),
		inflight:   newInflightTable(maxInflight),
	}
	t.InitRefCount()
	return t
}

// now is indirected so tests can substitute a deterministic clock.
var now = time.Now

func (t *Thread) ID() uint16        { return t.id }
func (t *Thread) Process() *Process { return t.process }
func (t *Thread) State() ThreadState { return t.state }
func (t *Thread) ExitCode() uint32  { return t.exitCode }
func (t *Thread) Priority() int32   { return t.priority }
func (t *Thread) Affinity() uint64  { return t.affinity }
func (t *Thread) CreatedAt() time.Time { return t.createdAt }
func (t *Thread) ExitedAt() time.Time  { return t.exitedAt }
func (t *Thread) TEB() uint64       { return t.teb }
func (t *Thread) OSIdentity() (pid, tid int32) { return t.pid, t.tid }
func (t *Thread) Initialized() bool { return t.initialized }

func (t *Thread) effectiveSuspended() bool {
	total := t.suspendCount
	if t.process != nil {
		total += t.process.SuspendCount()
	}
	return total > 0
}

func (t *Thread) currentWaitInterruptible() bool {
	return t.topWait != nil && t.topWait.flags&WaitInterruptible != 0
}

func (t *Thread) currentWaitAlertable() bool {
	return t.topWait != nil && t.topWait.flags&WaitAlertable != 0
}

// --- Object interface: a thread handle is signaled once the thread
// exits, letting other threads join on it. ---

// Signaled implements Object.
func (t *Thread) Signaled(_ *Thread) bool { return t.state == ThreadTerminated }

// Satisfied implements Object. Thread handles never report abandonment.
func (t *Thread) Satisfied(_ *Thread) bool { return false }

// Signal implements Object. A thread handle has no release operation of
// its own; only termination (Kill) signals it.
func (t *Thread) Signal(_ *Engine, _ *Thread) bool { return false }

// Destroy implements Object. By the time the refcount reaches zero,
// cleanup_thread (see lifecycle.go) has already run at least once; this
// only releases the slices it still owns, making Destroy idempotent with
// cleanupThread per spec section 3, "Ownership".
func (t *Thread) Destroy() {
	t.systemAPCs = nil
	t.userAPCs = nil
	t.mutexes = nil
	t.inflight = nil
}

// Dump implements Object, rendering the diagnostic view described in
// spec section 4.9/DESIGN.md "Dispatcher metrics"/"Wire codec".
func (t *Thread) Dump(dst []byte) []byte {
	return dumpThread(dst, t)
}
