// Package reactor implements the single-threaded I/O event reactor: a
// dispatch loop that multiplexes file-descriptor readiness, timers, and
// POSIX signals over the best readiness primitive the host OS offers
// (epoll on Linux, kqueue on BSD/Darwin, a portable select-based scan
// everywhere else).
//
// # Architecture
//
// A [Reactor] owns three collections: the FD table (one record per watched
// descriptor), the timeout heap (a min-heap of absolute deadlines), and the
// signal bridge (the reactor's table of registered signal handlers). Its
// [Reactor.Dispatch] loop blocks on the platform poller up to the next
// deadline, then delivers ready fds, drained signals, and expired timers in
// that order, each dispatched inline on the caller's goroutine.
//
// # Thread Safety
//
// The reactor is explicitly single-threaded: [Reactor.Dispatch] must run on
// one goroutine, and callbacks registered with [Reactor.SetFD],
// [Reactor.SetTimer], and [Reactor.SetSignal] never run concurrently with
// each other. Parallelism is obtained by running independent reactors on
// independent goroutines, never by sharing one reactor across goroutines.
package reactor
