// Package ntcore implements the thread and synchronization core of a
// user-mode OS personality server: it tracks every client thread of every
// client process, owns the cross-process wait-object graph, and mediates
// suspension, wake-up, asynchronous procedure calls (APCs), and debugger
// breakpoints on behalf of those threads.
//
// The dispatcher is single-threaded cooperative: callers are expected to
// invoke Engine methods from one goroutine at a time (the "dispatch
// goroutine"), matching the single-dispatch-loop design of the system this
// package models. The one exception is the optional OS-pid/tid index
// (Registry.byPID), which takes a reader-writer lock because it may be
// queried from goroutines outside the dispatch loop (e.g. a debugger
// front-end).
package ntcore
