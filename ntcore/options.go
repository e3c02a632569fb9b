package ntcore

// engineOptions holds resolved Engine configuration (spec section 4.12,
// "Server configuration"). Grounded on the teacher's eventloop/options.go
// LoopOption/resolveLoopOptions pattern.
type engineOptions struct {
	maxWaitObjects    int
	maxSuspendCount   int32
	maxInflightFDs    int
	protocolVersion   uint32
	supportedCPUFlags uint32
	pidIndexEnabled   bool
	logger            Logger
	metrics           *Metrics
	inflightStrategy  Strategy
}

func defaultEngineOptions() *engineOptions {
	return &engineOptions{
		maxWaitObjects:    64,
		maxSuspendCount:   127,
		maxInflightFDs:    256,
		protocolVersion:   1,
		supportedCPUFlags: 0,
		pidIndexEnabled:   true,
		logger:            nopLogger{},
		metrics:           NewMetrics(),
		inflightStrategy:  StrategyNoDup,
	}
}

// Option configures an Engine at construction time.
type Option interface {
	applyEngine(*engineOptions)
}

type engineOptionFunc func(*engineOptions)

func (f engineOptionFunc) applyEngine(o *engineOptions) { f(o) }

// WithMaxWaitObjects overrides MAXIMUM_WAIT_OBJECTS, the maximum number of
// handles a single select() may reference (spec section 2, "Wait engine").
func WithMaxWaitObjects(n int) Option {
	return engineOptionFunc(func(o *engineOptions) { o.maxWaitObjects = n })
}

// WithMaxSuspendCount overrides MAXIMUM_SUSPEND_COUNT, the ceiling on a
// thread's nested suspend counter (spec section 4.5).
func WithMaxSuspendCount(n int32) Option {
	return engineOptionFunc(func(o *engineOptions) { o.maxSuspendCount = n })
}

// WithMaxInflightFDs overrides MAX_INFLIGHT_FDS, the capacity of the
// in-flight file descriptor cache (spec section 4.6).
func WithMaxInflightFDs(n int) Option {
	return engineOptionFunc(func(o *engineOptions) { o.maxInflightFDs = n })
}

// WithInflightStrategy selects what the in-flight fd cache does on a
// lookup miss: StrategyNoDup fails, StrategyDup duplicates the client fd
// (Open Question (i), resolved in DESIGN.md).
func WithInflightStrategy(s Strategy) Option {
	return engineOptionFunc(func(o *engineOptions) { o.inflightStrategy = s })
}

// WithProtocolVersion records the wire protocol version in the Engine's
// options (spec section 4.12). No Engine method reads it back or reports
// it to clients.
func WithProtocolVersion(v uint32) Option {
	return engineOptionFunc(func(o *engineOptions) { o.protocolVersion = v })
}

// WithSupportedCPUFlags sets the bitmask of CPU personalities the server
// accepts from new_thread (spec section 4.2).
func WithSupportedCPUFlags(flags uint32) Option {
	return engineOptionFunc(func(o *engineOptions) { o.supportedCPUFlags = flags })
}

// WithPIDIndex toggles the optional RWMutex-protected OS-pid/tid reverse
// index (spec section 5). When disabled, InitThread does not publish
// threads into it, so Registry.ThreadFromTID/ThreadsFromPID find none.
func WithPIDIndex(enabled bool) Option {
	return engineOptionFunc(func(o *engineOptions) { o.pidIndexEnabled = enabled })
}

// WithLogger installs a structured logger (spec section 4.10). The default
// is a no-op logger.
func WithLogger(l Logger) Option {
	return engineOptionFunc(func(o *engineOptions) {
		if l != nil {
			o.logger = l
		}
	})
}

// WithMetrics installs a pre-constructed Metrics sink, e.g. to share one
// across multiple engines in tests.
func WithMetrics(m *Metrics) Option {
	return engineOptionFunc(func(o *engineOptions) {
		if m != nil {
			o.metrics = m
		}
	})
}

func resolveEngineOptions(opts []Option) *engineOptions {
	cfg := defaultEngineOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyEngine(cfg)
	}
	return cfg
}
