package ntcore

import "errors"

// IOEvents is the readiness bitmask the platform poller reports,
// grounded on eventloop/poller_linux.go's IOEvents (spec section 4.7,
// "Transport multiplexer").
type IOEvents uint32

const (
	EventRead IOEvents = 1 << iota
	EventWrite
	EventError
	EventHangup
)

// IOCallback is invoked on the single dispatch goroutine when a
// registered descriptor becomes ready; the multiplexer itself holds no
// thread/wait/APC state (spec section 4.7).
type IOCallback func(IOEvents)

// Shared poller errors.
var (
	ErrFDOutOfRange        = errors.New("ntcore: fd out of range")
	ErrFDAlreadyRegistered = errors.New("ntcore: fd already registered")
	ErrFDNotRegistered     = errors.New("ntcore: fd not registered")
	ErrPollerClosed        = errors.New("ntcore: poller closed")
)

// maxFDs bounds the direct-indexed fd table, matching the teacher's
// poller sizing (eventloop/poller_linux.go).
const maxFDs = 65536
