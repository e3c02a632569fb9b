package ntcore

import "time"

// fakeTransport records wake-up replies instead of writing to a real fd,
// for use across the wait/APC/lifecycle test suites.
type fakeTransport struct {
	wakes []fakeWake
	fail  error // when set, SendWake returns this error instead of recording
}

type fakeWake struct {
	tid    uint16
	cookie uint64
	status NTStatus
}

func (f *fakeTransport) SendWake(t *Thread, cookie uint64, status NTStatus) error {
	if f.fail != nil {
		return f.fail
	}
	f.wakes = append(f.wakes, fakeWake{tid: t.id, cookie: cookie, status: status})
	return nil
}

func (f *fakeTransport) RegisterThread(*Thread) error   { return nil }
func (f *fakeTransport) UnregisterThread(*Thread) error { return nil }
func (f *fakeTransport) Close() error                   { return nil }

// fakeKicker records kick calls without touching any OS thread.
type fakeKicker struct {
	kicks    []int32
	violent  []int32
	allowAll bool
}

func (k *fakeKicker) Kick(pid, tid int32) bool {
	k.kicks = append(k.kicks, tid)
	return true
}

func (k *fakeKicker) KickViolently(pid, tid int32) bool {
	k.violent = append(k.violent, tid)
	return true
}

// newTestEngine builds an Engine wired to fake transport/kicker. It leaves
// now() untouched; tests that need a fixed clock use setClock.
func newTestEngine() (*Engine, *fakeTransport) {
	tr := &fakeTransport{}
	e := NewEngine(tr, &fakeKicker{}, Hooks{}, WithMetrics(NewMetrics()))
	return e, tr
}

// newTestThread creates a registered, initialized thread on a fresh
// process, ready to participate in wait/APC scenarios.
func newTestThread(e *Engine) *Thread {
	proc := NewProcess(1000, 0xFF)
	t, status := e.CreateThread(proc, 1, 2, 3, false)
	if status != StatusSuccess {
		panic(status)
	}
	_ = e.InitThread(t, 1000, int32(t.id)+1, 8, 0, false)
	return t
}

// setClock substitutes now() for the duration of a test, returning a
// restore function.
func setClock(fixed time.Time) func() {
	prev := now
	now = func() time.Time { return fixed }
	return func() { now = prev }
}


