package ntcore

// entrypoints.go rounds out the spec section 6 request table with the
// handful of operations not already covered by lifecycle.go, suspend.go,
// context.go, select.go, and apc.go: handle-free lookup, info
// query/update, and the get_apc_result query.

// OpenThread implements spec section 6 "open_thread": resolves a client
// id to its Thread, the registry lookup standing in for the handle
// table's access-check step (out of scope per spec section 1).
func (e *Engine) OpenThread(tid uint16) (*Thread, NTStatus) {
	t := e.registry.Lookup(tid)
	if t == nil {
		return nil, StatusInvalidCid
	}
	return t, StatusSuccess
}

// ThreadInfo is the spec section 6 "get_thread_info" reply shape.
type ThreadInfo struct {
	PID, TID   int32
	TEB        uint64
	ExitCode   uint32
	Priority   int32
	Affinity   uint64
	CreatedAt  int64 // unix nanoseconds
	ExitedAt   int64
	Last       bool
}

// GetThreadInfo implements spec section 6 "get_thread_info".
func (e *Engine) GetThreadInfo(t *Thread) ThreadInfo {
	last := false
	if t.process != nil {
		last = t.process.RunningThreadCount() == 0
	}
	return ThreadInfo{
		PID:       t.pid,
		TID:       t.tid,
		TEB:       t.teb,
		ExitCode:  t.exitCode,
		Priority:  t.priority,
		Affinity:  t.affinity,
		CreatedAt: t.createdAt.UnixNano(),
		ExitedAt:  t.exitedAt.UnixNano(),
		Last:      last,
	}
}

// ThreadInfoMask selects which fields SetThreadInfo updates (spec section
// 6 "set_thread_info" | In: handle, mask, priority, affinity, token).
type ThreadInfoMask uint32

const (
	ThreadInfoPriority ThreadInfoMask = 1 << iota
	ThreadInfoAffinity
	ThreadInfoToken
)

// SetThreadInfo implements spec section 6 "set_thread_info": rejects a
// terminating thread and validates the affinity mask against the
// process-wide mask (spec section 8, invariant P1).
func (e *Engine) SetThreadInfo(t *Thread, mask ThreadInfoMask, priority int32, affinity uint64, token any) NTStatus {
	if t.state == ThreadTerminated {
		return StatusThreadIsTerminating
	}
	if mask&ThreadInfoAffinity != 0 {
		if affinity&t.process.Affinity() != affinity || affinity == 0 {
			return StatusInvalidParameter
		}
		t.affinity = affinity
	}
	if mask&ThreadInfoPriority != 0 {
		if priority < PriorityIdle || priority > PriorityTimeCritical {
			return StatusInvalidParameter
		}
		t.priority = priority
	}
	if mask&ThreadInfoToken != 0 {
		t.token = token
	}
	return StatusSuccess
}

// GetAPCResult implements spec section 6 "get_apc_result": reports
// PENDING until the APC has executed.
func (e *Engine) GetAPCResult(a *APC) (APCResult, NTStatus) {
	if !a.executed {
		return APCResult{}, StatusPending
	}
	return a.Result, StatusSuccess
}
