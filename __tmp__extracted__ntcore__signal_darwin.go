//go:build darwin

package ntcore

import (
	"golang.org/x/sys/unix"
)

// killKicker implements Kicker on Darwin. The BSD/Darwin unix package has
// no tgkill equivalent reachable without cgo, so this falls back to a
// process-directed unix.Kill -- a degraded, process- rather than
// thread-targeted kick, matching the spec section 9 design note that a
// host lacking per-thread signals substitutes an equivalent wake
// primitive (here: the best available coarse one; hosts needing true
// per-thread delivery should pair this with a control-pipe Transport).
type killKicker struct {
	logger Logger
}

// NewKicker constructs the platform Kicker.
func NewKicker(logger Logger) Kicker {
	if logger == nil {
		logger = nopLogger{}
	}
	return &killKicker{logger: logger}
}

func (k *killKicker) Kick(pid, tid int32) bool {
	return k.kill(pid, unix.SIGUSR1)
}

func (k *killKicker) KickViolently(pid, tid int32) bool {
	return k.kill(pid, unix.SIGQUIT)
}

func (k *killKicker) kill(pid int32, sig unix.Signal) bool {
	if pid == 0 {
		return false
	}
	if err := unix.Kill(int(pid), sig); err != nil {
		k.logger.Warn("kick_failed", "pid", pid, "sig", int(sig), "err", err)
		return false
	}
	return true
}


