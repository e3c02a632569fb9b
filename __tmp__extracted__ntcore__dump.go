package ntcore

import (
	"strconv"

	"github.com/joeycumines/go-utilpkg/jsonenc"
)

// dump.go implements Object.Dump for the core object kinds (spec section
// 3, "dump" vtable operation), using the allocation-light string/number
// token encoders from jsonenc rather than encoding/json reflection (spec
// section 4.9), matching how logiface-slog's own event encoder is built
// from the same primitives.

func appendField(dst []byte, first bool, key, rawVal string) []byte {
	if !first {
		dst = append(dst, ',')
	}
	dst = jsonenc.AppendString(dst, key)
	dst = append(dst, ':')
	dst = append(dst, rawVal...)
	return dst
}

func appendStrField(dst []byte, first bool, key, val string) []byte {
	if !first {
		dst = append(dst, ',')
	}
	dst = jsonenc.AppendString(dst, key)
	dst = append(dst, ':')
	dst = jsonenc.AppendString(dst, val)
	return dst
}

func dumpThread(dst []byte, t *Thread) []byte {
	dst = append(dst, '{')
	dst = appendStrField(dst, true, "kind", "thread")
	dst = appendField(dst, false, "id", strconv.FormatUint(uint64(t.id), 10))
	dst = appendField(dst, false, "pid", strconv.FormatInt(int64(t.pid), 10))
	dst = appendField(dst, false, "tid", strconv.FormatInt(int64(t.tid), 10))
	dst = appendStrField(dst, false, "state", threadStateName(t.state))
	dst = appendField(dst, false, "suspendCount", strconv.FormatInt(int64(t.suspendCount), 10))
	dst = appendField(dst, false, "priority", strconv.FormatInt(int64(t.priority), 10))
	dst = appendField(dst, false, "refs", strconv.FormatInt(int64(t.Ref().Count()), 10))
	dst = append(dst, '}')
	return dst
}

func threadStateName(s ThreadState) string {
	if s == ThreadTerminated {
		return "terminated"
	}
	return "running"
}

func dumpAPC(dst []byte, a *APC) []byte {
	dst = append(dst, '{')
	dst = appendStrField(dst, true, "kind", "apc")
	dst = appendField(dst, false, "apcKind", strconv.FormatUint(uint64(a.Call.Kind), 10))
	dst = appendField(dst, false, "executed", strconv.FormatBool(a.executed))
	dst = appendField(dst, false, "status", strconv.FormatInt(int64(a.Result.Status), 10))
	dst = appendField(dst, false, "refs", strconv.FormatInt(int64(a.Ref().Count()), 10))
	dst = append(dst, '}')
	return dst
}

func dumpMutex(dst []byte, m *Mutex) []byte {
	dst = append(dst, '{')
	dst = appendStrField(dst, true, "kind", "mutex")
	dst = appendField(dst, false, "recursion", strconv.FormatInt(int64(m.recursion), 10))
	dst = appendField(dst, false, "abandoned", strconv.FormatBool(m.abandoned))
	owner := uint16(0)
	if m.owner != nil {
		owner = m.owner.ID()
	}
	dst = appendField(dst, false, "owner", strconv.FormatUint(uint64(owner), 10))
	dst = append(dst, '}')
	return dst
}

func dumpEvent(dst []byte, e *Event) []byte {
	dst = append(dst, '{')
	dst = appendStrField(dst, true, "kind", "event")
	dst = appendStrField(dst, false, "eventKind", eventKindName(e.kind))
	dst = appendField(dst, false, "signaled", strconv.FormatBool(e.signaled))
	dst = append(dst, '}')
	return dst
}

func eventKindName(k EventKind) string {
	if k == EventManualReset {
		return "manual"
	}
	return "auto"
}

func dumpSemaphore(dst []byte, s *Semaphore) []byte {
	dst = append(dst, '{')
	dst = appendStrField(dst, true, "kind", "semaphore")
	dst = appendField(dst, false, "count", strconv.FormatInt(int64(s.count), 10))
	dst = appendField(dst, false, "max", strconv.FormatInt(int64(s.max), 10))
	dst = append(dst, '}')
	return dst
}


