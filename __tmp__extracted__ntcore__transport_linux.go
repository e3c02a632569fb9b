//go:build linux

package ntcore

// armWake creates the eventfd wake primitive and registers it with the
// poller so PollIO returns promptly when it is signalled.
func (tr *wireTransport) armWake() error {
	fd, err := createWakeFd()
	if err != nil {
		return err
	}
	tr.wakeFD = fd
	return tr.poller.RegisterFD(fd, EventRead, func(IOEvents) {
		drainWakeFd(fd)
	})
}

func (tr *wireTransport) triggerWake() error {
	return signalWakeFd(tr.wakeFD)
}

func (tr *wireTransport) closeWake() {
	_ = tr.poller.UnregisterFD(tr.wakeFD)
	_ = closeWakeFd(tr.wakeFD)
}


