// Command ntserverd hosts an ntcore.Engine behind a Unix-domain listener,
// wiring the transport multiplexer, kicker, and structured logger to
// their concrete platform implementations.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ntsync/ntserver/ntcore"
)

func main() {
	var (
		socketPath = flag.String("socket", "/tmp/ntserverd.sock", "unix domain socket to listen on")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := ntcore.NewLogiface(handler)
	kicker := ntcore.NewKicker(logger)

	// dispatch is filled in after the Engine exists, since the transport
	// and Engine each need a reference to the other.
	var dispatch ntcore.Dispatch
	tr, err := ntcore.NewTransport(logger, func(t *ntcore.Thread, req []byte) {
		if dispatch != nil {
			dispatch(t, req)
		}
	})
	if err != nil {
		slog.Error("failed to start transport", "err", err)
		os.Exit(1)
	}

	engine := ntcore.NewEngine(tr, kicker, ntcore.Hooks{}, ntcore.WithLogger(logger))
	dispatch = func(t *ntcore.Thread, req []byte) {
		// Wire-level opcode decoding is out of scope for this core (spec
		// section 1); a production host decodes req here and calls the
		// matching Engine entrypoint (Select, QueueAPC, SuspendThread,
		// ...), then writes the reply via tr.WriteReply.
		_ = engine
		_ = req
		_ = t
	}

	listener, err := net.Listen("unix", *socketPath)
	if err != nil {
		slog.Error("failed to listen", "socket", *socketPath, "err", err)
		os.Exit(1)
	}
	defer listener.Close()

	proc := ntcore.NewProcess(int32(os.Getpid()), 0xFFFFFFFF)
	go acceptLoop(listener, engine, proc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = engine.Close()
		_ = listener.Close()
	}()

	err = tr.Run(
		func() { engine.Tick(time.Now()) },
		func() int {
			deadline, ok := engine.NextDeadline()
			if !ok {
				return -1
			}
			if d := time.Until(deadline); d > 0 {
				return int(d.Milliseconds())
			}
			return 0
		},
	)
	if err != nil {
		slog.Error("transport run loop exited", "err", err)
		os.Exit(1)
	}
}

func acceptLoop(l net.Listener, engine *ntcore.Engine, proc *ntcore.Process) {
	for {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		uc, ok := conn.(*net.UnixConn)
		if !ok {
			conn.Close()
			continue
		}
		registerClient(engine, proc, uc)
	}
}

func registerClient(engine *ntcore.Engine, proc *ntcore.Process, conn *net.UnixConn) {
	f, err := conn.File()
	if err != nil {
		conn.Close()
		return
	}
	// f's finalizer would close its fd once f is garbage collected, so the
	// thread gets its own duplicate and f is closed here. cleanupThread is
	// the eventual owner of the duplicate's close.
	fd, err := syscall.Dup(int(f.Fd()))
	f.Close()
	if err != nil {
		conn.Close()
		return
	}
	// A production wiring layer receives distinct request/reply/wake fds
	// (e.g. via SCM_RIGHTS) per spec section 3's "communication"; this
	// thin binary uses one fd for all three channels as a placeholder.
	if _, status := engine.CreateThread(proc, fd, fd, fd, false); status != ntcore.StatusSuccess {
		conn.Close()
	}
}


