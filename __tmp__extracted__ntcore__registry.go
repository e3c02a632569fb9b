package ntcore

import "sync"

// pidTidKey identifies a thread by the OS-level (pid, tid) pair a client
// process reports at init_thread time (spec section 4.1, "thread
// registry" and section 5, the reader-writer-locked index).
type pidTidKey struct {
	pid, tid int32
}

// Registry is the single source of truth for every live Thread: the dense
// CID table addressed by the client-visible thread/client id (the value
// new_thread/open_thread hand back), plus an optional reverse index keyed
// by OS (pid, tid) for get_thread_from_tid/get_thread_from_pid lookups
// that may originate off the dispatch goroutine (e.g. a debugger
// front-end attaching by OS tid).
//
// Every method except the byPID accessors is called only from the
// dispatch goroutine and needs no synchronization; byPID is the one
// RWMutex-protected exception named in spec section 5.
type Registry struct {
	cids    *cidTable
	byPID   map[pidTidKey]*Thread
	byPIDMu sync.RWMutex
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		cids:  newCIDTable(),
		byPID: make(map[pidTidKey]*Thread),
	}
}

// Register allocates a CID for t and returns it. Call from the dispatch
// goroutine only.
func (r *Registry) Register(t *Thread) uint16 {
	return r.cids.alloc(t)
}

// Unregister releases id and, if the thread had completed init_thread and
// thus published an OS (pid, tid), removes it from the reverse index.
func (r *Registry) Unregister(id uint16, t *Thread) {
	r.cids.release(id)
	if t.pid != 0 || t.tid != 0 {
		r.byPIDMu.Lock()
		delete(r.byPID, pidTidKey{t.pid, t.tid})
		r.byPIDMu.Unlock()
	}
}

// Lookup returns the thread registered under id, or nil.
func (r *Registry) Lookup(id uint16) *Thread {
	v, _ := r.cids.lookup(id).(*Thread)
	return v
}

// PublishPID records t's OS (pid, tid) in the reverse index. Called once,
// from init_thread, after the thread has reported its OS identity (spec
// section 4.2).
func (r *Registry) PublishPID(t *Thread, pid, tid int32) {
	t.pid, t.tid = pid, tid
	r.byPIDMu.Lock()
	r.byPID[pidTidKey{pid, tid}] = t
	r.byPIDMu.Unlock()
}

// ThreadFromTID resolves a thread by OS (pid, tid). Safe to call from any
// goroutine.
func (r *Registry) ThreadFromTID(pid, tid int32) *Thread {
	r.byPIDMu.RLock()
	defer r.byPIDMu.RUnlock()
	return r.byPID[pidTidKey{pid, tid}]
}

// ThreadsFromPID returns every registered thread belonging to pid. Safe to
// call from any goroutine; the result is a snapshot copy.
func (r *Registry) ThreadsFromPID(pid int32) []*Thread {
	r.byPIDMu.RLock()
	defer r.byPIDMu.RUnlock()
	var out []*Thread
	for k, t := range r.byPID {
		if k.pid == pid {
			out = append(out, t)
		}
	}
	return out
}

// ThreadSnapshot is one row of a Registry.Snapshot: a thread together with
// the fields diagnostics care about at the instant of the snapshot (spec
// section 4.1, "snapshot() -> [(thread, refcount, priority)]").
type ThreadSnapshot struct {
	Thread   *Thread
	RefCount int32
	Priority int32
}

// Snapshot returns every registered thread that has not yet terminated,
// for diagnostics (spec section 4.9) and test assertions. Call from the
// dispatch goroutine only.
func (r *Registry) Snapshot() []ThreadSnapshot {
	var out []ThreadSnapshot
	for _, v := range r.cids.slots {
		if v == nil {
			continue
		}
		t := v.(*Thread)
		if t.State() == ThreadTerminated {
			continue
		}
		out = append(out, ThreadSnapshot{Thread: t, RefCount: t.Ref().Count(), Priority: t.Priority()})
	}
	return out
}


