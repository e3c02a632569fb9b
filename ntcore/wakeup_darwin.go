//go:build darwin

package ntcore

import "golang.org/x/sys/unix"

// wakeIdent is the EVFILT_USER identifier the transport multiplexer
// registers once per kqueue to deterministically unblock a blocking
// Kevent call from any goroutine (spec section 4.7: "Darwin uses a
// kqueue user event (EVFILT_USER)").
const wakeIdent = 1

// armWakeUser registers the EVFILT_USER wake event against kq.
func armWakeUser(kq int32) error {
	ev := unix.Kevent_t{Ident: wakeIdent, Filter: unix.EVFILT_USER, Flags: unix.EV_ADD | unix.EV_CLEAR}
	_, err := unix.Kevent(int(kq), []unix.Kevent_t{ev}, nil, nil)
	return err
}

// triggerWakeUser fires the armed EVFILT_USER event, unblocking a
// concurrent PollIO call.
func triggerWakeUser(kq int32) error {
	ev := unix.Kevent_t{Ident: wakeIdent, Filter: unix.EVFILT_USER, Fflags: unix.NOTE_TRIGGER}
	_, err := unix.Kevent(int(kq), []unix.Kevent_t{ev}, nil, nil)
	return err
}

// isWakeEvent reports whether a Kevent_t delivered by PollIO is the wake
// sentinel rather than a real fd readiness event.
func isWakeEvent(ev unix.Kevent_t) bool {
	return ev.Filter == unix.EVFILT_USER && ev.Ident == wakeIdent
}
