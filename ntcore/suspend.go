package ntcore

// suspend.go implements spec section 4.5's counted suspend/resume and
// debug-event context capture.

// SuspendThread implements spec section 4.5 "suspend_thread": increments
// t's suspend counter, stopping the OS thread on the 0->1 transition
// unless it is already inside a captured debug event or not yet past
// init_thread. Over-suspension is bounded by MAXIMUM_SUSPEND_COUNT.
func (e *Engine) SuspendThread(t *Thread, autoKick bool) (count int32, status NTStatus) {
	if t.state == ThreadTerminated {
		return 0, StatusAccessDenied
	}
	if t.suspendCount >= e.opts.maxSuspendCount {
		return t.suspendCount, StatusSuspendCountExceeded
	}
	prev := t.suspendCount
	t.suspendCount++
	if prev == 0 && autoKick && t.capturedCtx == nil && t.initialized {
		e.kick(t)
	}
	return prev, StatusSuccess
}

// ResumeThread implements spec section 4.5 "resume_thread": decrements
// t's suspend counter, waking the thread via WakeThread on the 1->0
// transition. Over-resume (count already zero) is tolerated and reported
// via the returned previous count.
func (e *Engine) ResumeThread(t *Thread) (count int32, status NTStatus) {
	if t.state == ThreadTerminated {
		return 0, StatusAccessDenied
	}
	prev := t.suspendCount
	if prev == 0 {
		return 0, StatusSuccess
	}
	t.suspendCount--
	if t.suspendCount == 0 {
		e.WakeThread(t)
	}
	return prev, StatusSuccess
}

// SetSuspendContext implements spec section 4.5 "set_suspend_context":
// the OS thread reports its captured register context while suspended.
// Nested captures are rejected.
func (e *Engine) SetSuspendContext(t *Thread, ctx *Context) NTStatus {
	if t.capturedCtx != nil {
		return StatusInvalidParameter
	}
	t.capturedCtx = ctx
	t.suspendCtx = ctx
	if t.debugBreak {
		t.debugBreak = false
		if e.hooks.DispatchBreakpoint != nil && ctx != nil {
			e.hooks.DispatchBreakpoint(t, ctx.CPU, pcFromContext(ctx))
		}
	}
	return StatusSuccess
}

// GetSuspendContext implements spec section 4.5 "get_suspend_context":
// the captured context is retrieved exactly once; the slot is nulled on
// handoff.
func (e *Engine) GetSuspendContext(t *Thread) (*Context, NTStatus) {
	ctx := t.suspendCtx
	if ctx == nil {
		return nil, StatusInvalidParameter
	}
	t.suspendCtx = nil
	return ctx, StatusSuccess
}

// RequestDebugBreak arms a synthetic breakpoint event, dispatched
// immediately if a context is already captured, or deferred to the next
// SetSuspendContext otherwise.
func (e *Engine) RequestDebugBreak(t *Thread) {
	if t.capturedCtx != nil {
		if e.hooks.DispatchBreakpoint != nil {
			e.hooks.DispatchBreakpoint(t, t.capturedCtx.CPU, pcFromContext(t.capturedCtx))
		}
		return
	}
	t.debugBreak = true
}

// pcFromContext extracts a program counter from an opaque captured
// context. The core does not interpret register layouts (spec section
// 1); the first 8 bytes of Data are reserved by convention as the PC, set
// by the host's SplitSystemRegisters/capture path.
func pcFromContext(ctx *Context) uint64 {
	if ctx == nil || len(ctx.Data) < 8 {
		return 0
	}
	var pc uint64
	for i := 0; i < 8; i++ {
		pc |= uint64(ctx.Data[i]) << (8 * i)
	}
	return pc
}
