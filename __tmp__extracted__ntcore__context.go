package ntcore

// context.go implements spec section 4.5's get_thread_context/
// set_thread_context, operating only on a thread currently captured via
// SetSuspendContext, with system (debug) registers partitioned out
// through the host-supplied Hooks.

// GetThreadContext implements spec section 4.5 "get_thread_context":
// if target is not currently captured, returns PENDING and, if
// autoSuspend is set, suspends the thread so a retry will eventually
// succeed. System registers are merged out of the captured context via
// Hooks.SplitSystemRegisters before being handed to the caller.
func (e *Engine) GetThreadContext(target *Thread, autoSuspend bool) (*Context, NTStatus) {
	if target.capturedCtx == nil {
		if target.state != ThreadRunning {
			return nil, StatusUnsuccessful
		}
		if autoSuspend {
			e.SuspendThread(target, true)
		}
		return nil, StatusPending
	}
	ctx := target.capturedCtx
	if e.hooks.SplitSystemRegisters == nil {
		return &Context{CPU: ctx.CPU, Data: append([]byte(nil), ctx.Data...)}, StatusSuccess
	}
	user, _ := e.hooks.SplitSystemRegisters(ctx.CPU, ctx)
	return &Context{CPU: ctx.CPU, Data: user}, StatusSuccess
}

// SetThreadContext implements spec section 4.5 "set_thread_context":
// merges the caller-supplied (user-visible) registers into target's
// captured context in place via Hooks.MergeSystemRegisters, which is
// responsible for preserving the system-register partition.
func (e *Engine) SetThreadContext(target *Thread, ctx *Context) NTStatus {
	if target.capturedCtx == nil {
		if target.state != ThreadRunning {
			return StatusUnsuccessful
		}
		return StatusPending
	}
	if ctx == nil {
		return StatusInvalidParameter
	}
	if e.hooks.MergeSystemRegisters == nil {
		target.capturedCtx.Data = append([]byte(nil), ctx.Data...)
		return StatusSuccess
	}
	e.hooks.MergeSystemRegisters(ctx.CPU, target.capturedCtx, ctx.Data)
	return StatusSuccess
}

// GetSelectorEntry implements spec section 6 "get_selector_entry": a
// host-defined per-CPU descriptor-table lookup. The core has no
// knowledge of selector layout (spec section 1); this is a thin
// passthrough the host wires via Hooks if it needs the operation, kept
// here only so the entrypoint has a home in the core's surface.
func (e *Engine) GetSelectorEntry(target *Thread, entry uint32, lookup func(*Context, uint32) (base, limit uint64, flags uint32, ok bool)) (base, limit uint64, flags uint32, status NTStatus) {
	if target.capturedCtx == nil || lookup == nil {
		return 0, 0, 0, StatusInvalidParameter
	}
	b, l, f, ok := lookup(target.capturedCtx, entry)
	if !ok {
		return 0, 0, 0, StatusInvalidParameter
	}
	return b, l, f, StatusSuccess
}


