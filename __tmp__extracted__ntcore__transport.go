package ntcore

import (
	"bytes"
	"io"
	"sync"
)

// Dispatch is invoked by wireTransport on the dispatch goroutine whenever
// a thread's request channel becomes readable; it is the seam between
// the transport multiplexer and the entrypoint handlers of entrypoints.go
// (spec section 4.7: "converting kernel readiness events into entrypoint
// calls on the single dispatch goroutine").
type Dispatch func(t *Thread, req []byte)

// wireTransport is the concrete Transport (spec section 4.7, "Transport
// multiplexer"): one platform poller plus a wake fd that lets any
// goroutine unblock a concurrent PollIO. Adapted from
// eventloop/eventloop.go's reactor wiring: the teacher registers one fd
// per watched resource with a per-fd callback and a dedicated wake
// primitive to break out of a blocking wait from outside the poll loop.
type wireTransport struct {
	poller *fastPoller
	logger Logger

	mu      sync.Mutex
	wakeFD  int // linux: eventfd; darwin: unused, kq itself carries EVFILT_USER
	onRead  Dispatch
	closed  bool
}

// NewTransport constructs the platform poller and wake primitive and
// wires onRead as the callback invoked for every registered request fd.
func NewTransport(logger Logger, onRead Dispatch) (*wireTransport, error) {
	p, err := newFastPoller()
	if err != nil {
		return nil, err
	}
	tr := &wireTransport{poller: p, logger: logger, onRead: onRead}
	if err := tr.armWake(); err != nil {
		_ = p.Close()
		return nil, err
	}
	return tr, nil
}

// RegisterThread registers t's request descriptor with the poller; reply
// and wake writes happen synchronously from SendWake and need no
// registration.
func (tr *wireTransport) RegisterThread(t *Thread) error {
	return tr.poller.RegisterFD(t.requestFD, EventRead, func(ev IOEvents) {
		tr.dispatchRequest(t, ev)
	})
}

// UnregisterThread removes t's request descriptor from the poller.
func (tr *wireTransport) UnregisterThread(t *Thread) error {
	return tr.poller.UnregisterFD(t.requestFD)
}

func (tr *wireTransport) dispatchRequest(t *Thread, ev IOEvents) {
	if ev&(EventHangup|EventError) != 0 {
		if tr.logger != nil {
			tr.logger.Warn("ntcore: transport hangup", "tid", t.ID())
		}
		return
	}
	var hdr [4]byte
	n, err := readFD(t.requestFD, hdr[:])
	if err != nil || n == 0 {
		return
	}
	size := int(hdr[0]) | int(hdr[1])<<8 | int(hdr[2])<<16 | int(hdr[3])<<24
	if size <= 0 || size > 1<<20 {
		return
	}
	body := make([]byte, size)
	if _, err := readFD(t.requestFD, body); err != nil {
		return
	}
	if tr.onRead != nil {
		tr.onRead(t, body)
	}
}

// SendWake writes a wake_up_reply{cookie, signaled} record to t's wake
// channel (spec section 4.3).
func (tr *wireTransport) SendWake(t *Thread, cookie uint64, status NTStatus) error {
	var buf bytes.Buffer
	if err := EncodeWakeMessage(&buf, WakeMessage{Cookie: cookie, Signaled: int32(status)}); err != nil {
		return err
	}
	_, err := writeFD(t.wakeFD, buf.Bytes())
	return err
}

// WriteReply writes an encoded reply record to t's reply channel; used
// by the entrypoint handlers, not by Engine directly.
func (tr *wireTransport) WriteReply(t *Thread, body []byte) error {
	var hdr [4]byte
	size := len(body)
	hdr[0], hdr[1], hdr[2], hdr[3] = byte(size), byte(size>>8), byte(size>>16), byte(size>>24)
	if _, err := writeFD(t.replyFD, hdr[:]); err != nil {
		return err
	}
	_, err := writeFD(t.replyFD, body)
	return err
}

// Run services the poller until Close is called, driving tick at most
// once per wakeup. It is the host's (cmd/ntserverd) dispatch loop body.
func (tr *wireTransport) Run(tick func(), nextTimeout func() int) error {
	for {
		tr.mu.Lock()
		closed := tr.closed
		tr.mu.Unlock()
		if closed {
			return nil
		}
		timeout := -1
		if nextTimeout != nil {
			timeout = nextTimeout()
		}
		if _, err := tr.poller.PollIO(timeout); err != nil {
			if err == ErrPollerClosed {
				return nil
			}
			return err
		}
		if tick != nil {
			tick()
		}
	}
}

// Wake unblocks a concurrent PollIO call without waiting for any fd to
// become ready, e.g. after arming a new timer deadline from outside the
// dispatch goroutine.
func (tr *wireTransport) Wake() error {
	return tr.triggerWake()
}

// Close shuts down the poller and wake primitive.
func (tr *wireTransport) Close() error {
	tr.mu.Lock()
	tr.closed = true
	tr.mu.Unlock()
	tr.closeWake()
	return tr.poller.Close()
}

var _ io.Closer = (*wireTransport)(nil)


