package ntcore

// lifecycle.go implements spec section 4.2's create/init/terminate/kill
// state machine on top of the Thread/Registry/Process primitives.

// CreateThread implements spec section 4.2 "create": fails if p is
// already terminating; otherwise allocates a thread attached to p,
// registers it for a CID, and attaches it to p. Channel fds are adopted
// as given (the caller has already received them from the wire layer).
func (e *Engine) CreateThread(p *Process, requestFD, replyFD, wakeFD int, suspended bool) (*Thread, NTStatus) {
	if p.IsTerminating() {
		return nil, StatusProcessIsTerminating
	}

	t := NewThread(p, p.Affinity(), e.opts.maxInflightFDs)
	t.inflight.strategy = e.opts.inflightStrategy
	t.requestFD, t.replyFD, t.wakeFD = requestFD, replyFD, wakeFD
	if suspended {
		t.suspendCount = 1
	}

	id := e.registry.Register(t)
	t.id = id
	p.AddThread(t)
	e.metrics.incLiveThreads()

	if e.transport != nil {
		if err := e.transport.RegisterThread(t); err != nil {
			e.registry.Unregister(id, t)
			p.RemoveThread(t)
			e.metrics.decLiveThreads()
			return nil, StatusInvalidHandle
		}
	}

	e.logger.Info("thread_created", "tid", id, "pid", p.pid)
	return t, StatusSuccess
}

// InitThread implements spec section 4.2 "init": a one-shot call guarded
// by Thread.initialized, recording the client's OS identity and TEB and
// finalizing the process CPU type on the first thread. It returns only a
// status: the handshake reply fields (process/thread ids, protocol
// version, server start time, supported CPU flags) are not produced here.
func (e *Engine) InitThread(t *Thread, pid, tid int32, teb uint64, cpu CPUType, hasParent bool) NTStatus {
	if t.initialized {
		return StatusInvalidParameter
	}
	if teb == 0 || teb%8 != 0 {
		return StatusInvalidParameter
	}
	if e.opts.supportedCPUFlags != 0 && uint32(cpu)&e.opts.supportedCPUFlags == 0 {
		return StatusNotSupported
	}
	if !t.process.FinalizeCPU(cpu) {
		return StatusNotRegistryFile
	}
	if !hasParent {
		t.process.SetAffinity(t.affinity)
	}

	t.pid, t.tid = pid, tid
	t.teb = teb
	t.initialized = true
	if e.opts.pidIndexEnabled {
		e.registry.PublishPID(t, pid, tid)
	}
	return StatusSuccess
}

// TerminateThread implements spec section 4.2 "terminate": self-
// termination reports whether this was the process's last running
// thread and leaves actual teardown to the client's exit; terminating
// another thread kills it violently.
func (e *Engine) TerminateThread(caller, target *Thread, exitCode uint32) (self, last bool, status NTStatus) {
	if target.state == ThreadTerminated {
		return false, false, StatusThreadIsTerminating
	}
	if target == caller {
		last = target.process.RunningThreadCount() == 1
		return true, last, StatusSuccess
	}
	e.KillThread(target, true, exitCode)
	return false, false, StatusSuccess
}

// KillThread implements spec section 4.2 "kill": marks the thread
// terminated, drains nested waits delivering the exit code to each,
// wakes thread-handle joiners, abandons any mutexes still held, runs
// cleanupThread, and removes the thread from its process. If violent is
// true and the thread had no pending wait, an unthrottled kick is sent to
// the OS thread.
func (e *Engine) KillThread(t *Thread, violent bool, exitCode uint32) {
	if t.state == ThreadTerminated {
		return
	}
	t.state = ThreadTerminated
	t.exitCode = exitCode
	t.exitedAt = now()

	hadWait := t.topWait != nil
	for t.topWait != nil {
		cookie := t.topWait.cookie
		e.EndWait(t)
		if e.transport != nil {
			_ = e.transport.SendWake(t, cookie, NTStatus(exitCode))
		}
	}

	e.cleanupThread(t)

	e.WakeUp(t, 0) // joiners on the thread handle itself

	t.process.RemoveThread(t)
	e.metrics.decLiveThreads()
	e.logger.Info("thread_killed", "tid", t.id, "violent", violent, "exitCode", exitCode)

	if violent && !hadWait {
		e.kickViolent(t)
	}
}

// cleanupThread implements the object-teardown portion of spec section
// 4.2 "kill": abandons every mutex still owned by t, flushes both APC
// queues, clears the in-flight fd cache, and releases the registry's CID.
func (e *Engine) cleanupThread(t *Thread) {
	for m := range t.mutexes {
		m.Abandon(e)
	}
	t.mutexes = nil

	e.ClearAPCs(t)
	if t.inflight != nil {
		t.inflight.Clear()
	}

	if e.transport != nil {
		_ = e.transport.UnregisterThread(t)
	}
	closeFD(t.requestFD)
	if t.replyFD != t.requestFD {
		closeFD(t.replyFD)
	}
	if t.wakeFD != t.requestFD && t.wakeFD != t.replyFD {
		closeFD(t.wakeFD)
	}

	e.registry.Unregister(t.id, t)
}
