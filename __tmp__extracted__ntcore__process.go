package ntcore

import "sync"

// Process is a minimal stand-in for the process object, which spec
// section 1 names an external collaborator out of scope for this core.
// It carries only the fields the thread/APC/lifecycle logic actually
// reads: affinity mask, priority class, CPU type, suspend counter, the
// per-process thread list used for APC routing and "last thread exits"
// detection, and a terminating flag. A host embedding this package is
// expected to supply its own richer process object and adapt these
// touch-points; this stub exists so the core is self-contained and
// testable.
type Process struct {
	mu sync.Mutex

	pid           int32
	affinity      uint64
	priorityClass int32
	cpu           CPUType
	cpuFinalized  bool
	suspendCount  int32
	terminating   bool
	threads       map[*Thread]struct{}
}

// CPUType is the bitmask tag a client reports at init_thread; the core
// only checks it against the server's supported set, never interprets
// register layouts (spec section 1).
type CPUType uint32

// NewProcess constructs a Process with the given OS pid and affinity
// mask (the set of CPUs this process may run on).
func NewProcess(pid int32, affinity uint64) *Process {
	return &Process{
		pid:           pid,
		affinity:      affinity,
		priorityClass: 0,
		threads:       make(map[*Thread]struct{}),
	}
}

// Affinity returns the process-wide affinity mask.
func (p *Process) Affinity() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.affinity
}

// SetAffinity replaces the process-wide affinity mask. Used when the
// first thread of a parentless process adopts its own affinity as the
// process affinity (spec section 4.2).
func (p *Process) SetAffinity(mask uint64) {
	p.mu.Lock()
	p.affinity = mask
	p.mu.Unlock()
}

// IsTerminating reports whether the process has begun exiting.
func (p *Process) IsTerminating() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminating
}

// MarkTerminating flags the process as exiting; create fails with
// StatusProcessIsTerminating once this is set.
func (p *Process) MarkTerminating() {
	p.mu.Lock()
	p.terminating = true
	p.mu.Unlock()
}

// FinalizeCPU records the process's CPU type on the first thread's init,
// reporting false if it was already finalized to a different value.
func (p *Process) FinalizeCPU(cpu CPUType) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.cpuFinalized {
		p.cpu = cpu
		p.cpuFinalized = true
		return true
	}
	return p.cpu == cpu
}

// SuspendCount returns the process-wide suspend counter, added to a
// thread's own counter to compute effective suspension (spec section
// 4.5).
func (p *Process) SuspendCount() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.suspendCount
}

// AddThread registers t as belonging to this process.
func (p *Process) AddThread(t *Thread) {
	p.mu.Lock()
	p.threads[t] = struct{}{}
	p.mu.Unlock()
}

// RemoveThread drops t's membership, used on kill to release the
// process's strong reference to the thread (spec section 4.2).
func (p *Process) RemoveThread(t *Thread) {
	p.mu.Lock()
	delete(p.threads, t)
	p.mu.Unlock()
}

// RunningThreadCount reports how many non-terminated threads remain,
// used to compute terminate_thread's "last" result.
func (p *Process) RunningThreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for t := range p.threads {
		if t.State() == ThreadRunning {
			n++
		}
	}
	return n
}

// APCAcceptableThread returns a thread belonging to this process that is
// currently eligible for an unaddressed-process APC: suspended, or in an
// interruptible wait (spec section 4.4, "Enqueue to a process").
func (p *Process) APCAcceptableThread() *Thread {
	p.mu.Lock()
	threads := make([]*Thread, 0, len(p.threads))
	for t := range p.threads {
		threads = append(threads, t)
	}
	p.mu.Unlock()
	for _, t := range threads {
		if t.effectiveSuspended() || t.currentWaitInterruptible() {
			return t
		}
	}
	return nil
}

// Threads returns a snapshot of every thread registered to the process.
func (p *Process) Threads() []*Thread {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Thread, 0, len(p.threads))
	for t := range p.threads {
		out = append(out, t)
	}
	return out
}


