package ntcore

import "time"

// SelectResult is what the select entrypoint reports back to the wire
// layer (spec section 6, "select" | Out: timeout, apc_handle, call).
type SelectResult struct {
	Status  NTStatus
	APC     *APC // non-nil when an APC is returned to the client for execution
	Pending bool // true when the caller must suspend at the wake channel
}

// Select implements the spec section 6 "select" entrypoint end to end:
// (1) posts the previous APC's client-supplied result, if any, running
// resultPostProcess; (2) installs the new wait via SelectOn, including
// the optional signal-and-wait object; (3) on a definite, non-APC
// verdict ends the wait and returns it directly; (4) on USER_APC (either
// an immediate check_wait verdict or an alertable/interruptible wait
// already satisfied by a queued APC) ends the wait and dequeues one APC
// to hand back to the client, per "Delivery to client" in spec section
// 4.4. NONE calls are discarded silently, matching "exist only to wake
// the thread".
func (e *Engine) Select(t *Thread, objs []Object, flags WaitFlags, timeout time.Duration, infinite bool, cookie uint64, signalObj Object, prevAPC *APC, prevResult APCResult) SelectResult {
	if prevAPC != nil {
		prevAPC.markExecuted(prevResult.Status, prevResult.Value)
		e.WakeUp(prevAPC, 0)
		e.resultPostProcess(prevAPC)
		prevAPC.Release(prevAPC.Destroy)
	}

	var deadline time.Time
	if !infinite {
		deadline = now().Add(timeout)
	}

	wb, status := e.SelectOn(t, objs, flags, deadline, infinite, cookie, signalObj)
	if wb == nil {
		// Validation failure (e.g. too many wait objects): no record was
		// installed, so there is nothing for this thread's own top wait
		// (if any) to do with it.
		return SelectResult{Status: status}
	}

	if status == StatusPending {
		return SelectResult{Status: status, Pending: true}
	}

	// Definite verdict from the initial check_wait in SelectOn.
	e.EndWait(t)
	if status != StatusUserAPC {
		return SelectResult{Status: status}
	}

	systemOnly := flags&WaitAlertable == 0
	apc := e.DequeueAPC(t, systemOnly)
	for apc != nil && apc.Call.Kind == APCNone {
		apc.markExecuted(StatusSuccess, nil)
		apc.Release(apc.Destroy)
		apc = e.DequeueAPC(t, systemOnly)
	}
	if apc == nil {
		return SelectResult{Status: StatusSuccess}
	}
	return SelectResult{Status: StatusUserAPC, APC: apc}
}
