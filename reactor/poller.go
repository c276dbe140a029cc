// Package reactor — platform backend selection.
//
// The best available readiness primitive is chosen at build time in
// priority order (spec.md §4.1 "Backend selection"):
//
//  1. epoll (Linux) — poller_linux.go
//  2. kqueue (Darwin/BSD) — poller_kqueue.go
//  3. a portable select-based readiness scan — poller_fallback.go
//
// All three implement [backendPoller] and must produce identical external
// behavior: the same fd, the same requested events, the same callback
// invocation, regardless of which backend compiled in.
package reactor

// readyFn is invoked by a backend for each fd it finds ready.
type readyFn func(fd int, events EventFlags)

// backendPoller is the minimal contract every platform backend satisfies.
// Grounded on eventloop/poller_linux.go's RegisterFD/UnregisterFD/ModifyFD/
// PollIO quartet, generalized to report events through a callback argument
// (readyFn) rather than a stored per-fd callback, so the [fdTable] stays
// the single source of truth for what runs (the backend only needs to know
// "fd N became ready for these bits").
type backendPoller interface {
	init() error
	close() error
	add(fd int, events EventFlags) error
	modify(fd int, events EventFlags) error
	remove(fd int) error
	// wait blocks up to timeoutMs (or indefinitely if negative) and
	// invokes ready for each readiness event: once per ready fd on epoll
	// and the select fallback, once per triggered filter on kqueue (so an
	// fd ready for both read and write is reported twice there). Returns
	// the number of events reported, or an error. A transient interrupt must be retried
	// internally and reported as (0, nil), never surfaced to the caller
	// (spec.md §4.1 "Failure semantics").
	wait(timeoutMs int, ready readyFn) (int, error)
}

func eventsToBackendMask(events EventFlags) (read, write bool) {
	return events.Has(Read), events.Has(Write)
}
