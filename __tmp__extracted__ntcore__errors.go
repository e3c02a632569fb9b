package ntcore

import "fmt"

// NTStatus is an NT-style status/error code. It implements the error
// interface so callers use ordinary errors.Is/errors.As instead of magic
// numbers, while still round-tripping as the 32-bit wire value named in
// spec section 6/7.
type NTStatus uint32

// Status codes observed at this layer (spec section 7). Values match the
// real NT status constants so traces and dumps stay meaningful to anyone
// who has debugged the system this package models.
const (
	StatusSuccess              NTStatus = 0x00000000
	StatusWait0                NTStatus = 0x00000000
	StatusAbandonedWait0       NTStatus = 0x00000080
	StatusUserAPC              NTStatus = 0x000000C0
	StatusTimeout              NTStatus = 0x00000102
	StatusPending              NTStatus = 0x00000103
	StatusInvalidHandle        NTStatus = 0xC0000008
	StatusInvalidCid           NTStatus = 0xC000000B
	StatusInvalidParameter     NTStatus = 0xC000000D
	StatusNotSupported         NTStatus = 0xC00000BB
	StatusAccessDenied         NTStatus = 0xC0000022
	StatusTooManyOpenedFiles   NTStatus = 0xC000011F
	StatusUnsuccessful         NTStatus = 0xC0000001
	StatusSuspendCountExceeded NTStatus = 0xC000004A
	StatusThreadIsTerminating  NTStatus = 0xC000004B
	StatusProcessIsTerminating NTStatus = 0xC000010A
	StatusNotRegistryFile      NTStatus = 0xC000015C
)

var statusNames = map[NTStatus]string{
	StatusSuccess:              "STATUS_SUCCESS",
	StatusAbandonedWait0:       "STATUS_ABANDONED_WAIT_0",
	StatusUserAPC:              "STATUS_USER_APC",
	StatusTimeout:              "STATUS_TIMEOUT",
	StatusPending:              "STATUS_PENDING",
	StatusInvalidHandle:        "STATUS_INVALID_HANDLE",
	StatusInvalidCid:           "STATUS_INVALID_CID",
	StatusInvalidParameter:     "STATUS_INVALID_PARAMETER",
	StatusNotSupported:         "STATUS_NOT_SUPPORTED",
	StatusAccessDenied:         "STATUS_ACCESS_DENIED",
	StatusTooManyOpenedFiles:   "STATUS_TOO_MANY_OPENED_FILES",
	StatusUnsuccessful:         "STATUS_UNSUCCESSFUL",
	StatusSuspendCountExceeded: "STATUS_SUSPEND_COUNT_EXCEEDED",
	StatusThreadIsTerminating:  "STATUS_THREAD_IS_TERMINATING",
	StatusProcessIsTerminating: "STATUS_PROCESS_IS_TERMINATING",
	StatusNotRegistryFile:      "STATUS_NOT_REGISTRY_FILE",
}

// Error implements the error interface.
func (s NTStatus) Error() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("NTSTATUS(0x%08X)", uint32(s))
}

// Success reports whether the status represents a non-error outcome
// (STATUS_SUCCESS, any STATUS_WAIT_0+n, STATUS_ABANDONED_WAIT_0+n,
// STATUS_USER_APC, or STATUS_PENDING).
func (s NTStatus) Success() bool {
	switch {
	case s < StatusAbandonedWait0:
		return true // STATUS_WAIT_0 .. STATUS_WAIT_0+63 range is success
	case s == StatusUserAPC, s == StatusPending:
		return true
	case s >= StatusAbandonedWait0 && s < StatusUserAPC:
		return true // STATUS_ABANDONED_WAIT_0+n
	default:
		return false
	}
}

// WaitIndexStatus builds the STATUS_WAIT_0+index or
// STATUS_ABANDONED_WAIT_0+index result a wait produces, per spec section
// 4.3 step 3/4 ("the result is i or i + ABANDONED_WAIT_0").
func WaitIndexStatus(index int, abandoned bool) NTStatus {
	base := StatusWait0
	if abandoned {
		base = StatusAbandonedWait0
	}
	return base + NTStatus(index)
}

// WaitIndex extracts the object index from a STATUS_WAIT_0/
// STATUS_ABANDONED_WAIT_0 family status, along with whether it was
// abandoned. ok is false for statuses outside either family.
func (s NTStatus) WaitIndex() (index int, abandoned bool, ok bool) {
	switch {
	case s >= StatusAbandonedWait0 && s < StatusUserAPC:
		return int(s - StatusAbandonedWait0), true, true
	case s < StatusAbandonedWait0:
		return int(s - StatusWait0), false, true
	default:
		return 0, false, false
	}
}


