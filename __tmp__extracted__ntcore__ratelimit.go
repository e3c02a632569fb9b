package ntcore

import (
	"time"

	"github.com/joeycumines/go-catrate"
)

// kickLimiter throttles kick signals per OS tid (spec section 4.8): a
// pathological client forcing a kick on every APC enqueue must not be
// able to flood a single OS thread with tgkill calls. Grounded on
// catrate.Limiter (go-catrate/limiter.go), the same sliding-window
// leaky-bucket limiter used elsewhere in the pack for generic event rate
// limiting, repurposed here to bound kicks-per-tid instead of
// named-event categories.
type kickLimiter struct {
	l *catrate.Limiter
}

func newKickLimiter() *kickLimiter {
	return &kickLimiter{
		l: catrate.NewLimiter(map[time.Duration]int{
			10 * time.Millisecond: 1,
			time.Second:           50,
		}),
	}
}

// allow reports whether a kick to tid may be sent now.
func (k *kickLimiter) allow(tid int32) bool {
	if k == nil || k.l == nil {
		return true
	}
	_, ok := k.l.Allow(tid)
	return ok
}


