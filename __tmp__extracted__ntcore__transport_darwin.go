//go:build darwin

package ntcore

// armWake registers the kqueue EVFILT_USER wake event directly against
// the poller's kqueue; Darwin needs no extra fd (spec section 4.7).
func (tr *wireTransport) armWake() error {
	return armWakeUser(tr.poller.kq)
}

func (tr *wireTransport) triggerWake() error {
	return triggerWakeUser(tr.poller.kq)
}

func (tr *wireTransport) closeWake() {
	// The EVFILT_USER registration is torn down along with the kqueue
	// itself in poller.Close; nothing to do here.
}


