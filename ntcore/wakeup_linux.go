//go:build linux

package ntcore

import "golang.org/x/sys/unix"

// createWakeFd creates an eventfd used to deterministically unblock the
// poller's blocking wait from any goroutine (spec section 4.7), grounded
// on eventloop/wakeup_linux.go's createWakeFd. The same fd serves as both
// read and write end.
func createWakeFd() (int, error) {
	return unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
}

func closeWakeFd(fd int) error {
	if fd < 0 {
		return nil
	}
	return unix.Close(fd)
}

// signalWakeFd writes one token to fd, unblocking a concurrent EpollWait.
func signalWakeFd(fd int) error {
	var buf [8]byte
	buf[7] = 1
	_, err := unix.Write(fd, buf[:])
	return err
}

// drainWakeFd consumes all pending wake tokens from fd.
func drainWakeFd(fd int) {
	var buf [8]byte
	for {
		if _, err := unix.Read(fd, buf[:]); err != nil {
			return
		}
	}
}
