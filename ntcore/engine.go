package ntcore

import "time"

// Transport is the abstract "polled transport" of spec section 3: the
// owner of a thread's request/reply/wake descriptors. Engine depends on
// it only to send wake-up replies and to register/unregister a thread's
// descriptors with the platform poller; the concrete implementation
// (transport.go + poller_linux.go/poller_darwin.go) is the DOMAIN STACK
// "Transport multiplexer" of SPEC_FULL.md section 4.7.
type Transport interface {
	// SendWake writes a wake_up_reply{cookie, signaled} record to t's
	// wake channel (spec section 4.3, "Wake-up").
	SendWake(t *Thread, cookie uint64, status NTStatus) error

	// RegisterThread registers t's request descriptor with the poller,
	// invoking the Engine's dispatch callback on readiness.
	RegisterThread(t *Thread) error

	// UnregisterThread removes t's descriptors from the poller.
	UnregisterThread(t *Thread) error

	// Close shuts down the transport and releases its poller resources.
	Close() error
}

// Kicker sends the "SIGUSR1-equivalent" OS-level interrupt named
// throughout spec section 4 (create/APC enqueue/suspend) to a client OS
// thread, per SPEC_FULL.md section 4.8 ("Kick signaling"). It reports
// whether the signal was (or would be) delivered.
type Kicker interface {
	Kick(pid, tid int32) bool
	KickViolently(pid, tid int32) bool
}

// Hooks are host-supplied callbacks for the handful of operations spec
// section 1 explicitly treats as external collaborators (the handle
// table, per-CPU register partitioning) but which the APC/context flow
// must still invoke.
type Hooks struct {
	// DuplicateCreateThreadHandle implements spec section 4.4's
	// CREATE_THREAD result post-processing: duplicate a callee-process
	// thread handle into caller with the original access mask.
	DuplicateCreateThreadHandle func(caller *Thread, calleeHandle any) error

	// SplitSystemRegisters/MergeSystemRegisters implement spec section
	// 4.5's per-CPU debug-register partitioning for
	// get_thread_context/set_thread_context.
	SplitSystemRegisters func(cpu CPUType, ctx *Context) (user, system []byte)
	MergeSystemRegisters func(cpu CPUType, ctx *Context, system []byte)

	// DispatchBreakpoint implements spec section 4.5's synthetic
	// debug-break event, dispatched per CPU type on a captured PC.
	DispatchBreakpoint func(t *Thread, cpu CPUType, pc uint64)
}

// Engine is the dispatcher: the single process-wide value (spec section
// 9, "Global thread list and id allocator") that owns the thread
// registry, the wait-timer queue, and the ambient stack (logger,
// metrics, transport, kicker). All public methods are meant to be
// invoked from one goroutine at a time -- the "dispatch goroutine" named
// throughout spec section 5 -- except where individually documented
// otherwise (Registry.ThreadFromTID/ThreadsFromPID).
type Engine struct {
	opts *engineOptions

	registry *Registry
	timers   *timerQueue

	logger  Logger
	metrics *Metrics

	transport Transport
	kicker    Kicker
	limiter   *kickLimiter

	hooks Hooks

	serverStart time.Time
}

// NewEngine constructs an Engine ready to service create_thread and
// onward. transport and kicker are supplied by the host's wiring layer
// (cmd/ntserverd); tests typically substitute fakes for both.
func NewEngine(transport Transport, kicker Kicker, hooks Hooks, opts ...Option) *Engine {
	cfg := resolveEngineOptions(opts)
	return &Engine{
		opts:        cfg,
		registry:    NewRegistry(),
		timers:      newTimerQueue(),
		logger:      cfg.logger,
		metrics:     cfg.metrics,
		transport:   transport,
		kicker:      kicker,
		limiter:     newKickLimiter(),
		hooks:       hooks,
		serverStart: now(),
	}
}

// Registry exposes the Engine's thread registry (spec section 4.1).
func (e *Engine) Registry() *Registry { return e.registry }

// ServerStart returns the timestamp init_thread reports to the first
// client (spec section 4.2).
func (e *Engine) ServerStart() time.Time { return e.serverStart }

// Tick advances the timer queue to t, firing any expired wait deadlines.
// wireTransport.Run calls it once after each poll call returns, i.e. after
// that poll's request callbacks have run, so a request and a deadline
// that fall due in the same poll are handled request first (Open Question
// (ii) in DESIGN.md).
func (e *Engine) Tick(t time.Time) { e.timers.Tick(t) }

// NextDeadline reports the soonest armed wait deadline, used by the host
// to size its poller timeout.
func (e *Engine) NextDeadline() (time.Time, bool) { return e.timers.NextDeadline() }

// Close releases the transport's poller resources. It does not kill any
// live threads; the host is responsible for draining them first.
func (e *Engine) Close() error {
	if e.transport != nil {
		return e.transport.Close()
	}
	return nil
}

// kick sends the rate-limited OS-level interrupt named in spec sections
// 4.2/4.4/4.5 to t's OS thread. A kick dropped by the limiter is not an
// error (spec section 4.8): the condition it would have announced is
// still observed on the thread's next visit to check_wait.
func (e *Engine) kick(t *Thread) bool {
	if e.kicker == nil || t.pid == 0 && t.tid == 0 {
		return false
	}
	if !e.limiter.allow(t.tid) {
		e.metrics.incKicksDropped()
		return false
	}
	ok := e.kicker.Kick(t.pid, t.tid)
	if ok {
		e.metrics.incKicksSent()
	}
	return ok
}

// kickViolent sends an unthrottled SIGQUIT-equivalent, used only by
// KillThread's violent-death path (spec section 4.2): a dying thread
// should not be held up by the same-tid rate limiter that throttles
// APC-wake kicks.
func (e *Engine) kickViolent(t *Thread) bool {
	if e.kicker == nil {
		return false
	}
	return e.kicker.KickViolently(t.pid, t.tid)
}
