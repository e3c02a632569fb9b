package ntcore

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics is the always-cheap-when-disabled dispatcher metrics sink of
// SPEC_FULL.md section 4.11, grounded on eventloop/metrics.go's
// Metrics/LatencyMetrics shape and its P-Square percentile estimator
// (psquare.go), narrowed to the fields this system names: live thread and
// wait-record counts, APC queue depths, kick delivery, and wait-latency
// percentiles.
type Metrics struct {
	enabled atomic.Bool

	liveThreads atomic.Int64
	liveWaits   atomic.Int64

	systemAPCDepth atomic.Int64
	userAPCDepth   atomic.Int64

	kicksSent    atomic.Int64
	kicksDropped atomic.Int64

	waitLatencyMu sync.Mutex
	waitLatency   *latencyQuantileSet
}

// NewMetrics constructs an enabled Metrics sink.
func NewMetrics() *Metrics {
	m := &Metrics{waitLatency: newLatencyQuantileSet()}
	m.enabled.Store(true)
	return m
}

// SetEnabled toggles metrics collection; a disabled sink's update methods
// are no-ops (spec section 4.11, "always-cheap-when-disabled").
func (m *Metrics) SetEnabled(v bool) { m.enabled.Store(v) }

func (m *Metrics) incLiveThreads() {
	if m == nil || !m.enabled.Load() {
		return
	}
	m.liveThreads.Add(1)
}

func (m *Metrics) decLiveThreads() {
	if m == nil || !m.enabled.Load() {
		return
	}
	m.liveThreads.Add(-1)
}

func (m *Metrics) incLiveWaits() {
	if m == nil || !m.enabled.Load() {
		return
	}
	m.liveWaits.Add(1)
}

func (m *Metrics) decLiveWaits() {
	if m == nil || !m.enabled.Load() {
		return
	}
	m.liveWaits.Add(-1)
}

func (m *Metrics) setAPCDepth(system bool, delta int64) {
	if m == nil || !m.enabled.Load() {
		return
	}
	if system {
		m.systemAPCDepth.Add(delta)
	} else {
		m.userAPCDepth.Add(delta)
	}
}

func (m *Metrics) incKicksSent() {
	if m == nil || !m.enabled.Load() {
		return
	}
	m.kicksSent.Add(1)
}

func (m *Metrics) incKicksDropped() {
	if m == nil || !m.enabled.Load() {
		return
	}
	m.kicksDropped.Add(1)
}

// RecordWaitLatency records the duration between a wait's installation
// and its resolution (spec section 4.11).
func (m *Metrics) RecordWaitLatency(d time.Duration) {
	if m == nil || !m.enabled.Load() {
		return
	}
	m.waitLatencyMu.Lock()
	m.waitLatency.Update(float64(d))
	m.waitLatencyMu.Unlock()
}

// Snapshot is a point-in-time copy of every tracked metric, safe to read
// concurrently with further updates.
type Snapshot struct {
	LiveThreads    int64
	LiveWaits      int64
	SystemAPCDepth int64
	UserAPCDepth   int64
	KicksSent      int64
	KicksDropped   int64
	WaitLatencyP50 time.Duration
	WaitLatencyP90 time.Duration
	WaitLatencyP99 time.Duration
}

// Snapshot returns the current metric values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.waitLatencyMu.Lock()
	p50, p90, p99 := m.waitLatency.P50(), m.waitLatency.P90(), m.waitLatency.P99()
	m.waitLatencyMu.Unlock()
	return Snapshot{
		LiveThreads:    m.liveThreads.Load(),
		LiveWaits:      m.liveWaits.Load(),
		SystemAPCDepth: m.systemAPCDepth.Load(),
		UserAPCDepth:   m.userAPCDepth.Load(),
		KicksSent:      m.kicksSent.Load(),
		KicksDropped:   m.kicksDropped.Load(),
		WaitLatencyP50: time.Duration(p50),
		WaitLatencyP90: time.Duration(p90),
		WaitLatencyP99: time.Duration(p99),
	}
}
