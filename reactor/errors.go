package reactor

import (
	"errors"
	"fmt"
)

// Standard errors, in the teacher's style of package-level sentinel errors
// (eventloop.ErrLoopAlreadyRunning et al.).
var (
	// ErrAlreadyRunning is not returned by this package: a Dispatch call
	// on a reactor that is already dispatching returns
	// ErrReentrantDispatch.
	ErrAlreadyRunning = errors.New("reactor: dispatch is already running")

	// ErrClosed is returned by Dispatch on a reactor that has been
	// destroyed.
	ErrClosed = errors.New("reactor: reactor has been destroyed")

	// ErrFDOutOfRange is returned when a file descriptor is outside the
	// range the FD table can directly index.
	ErrFDOutOfRange = errors.New("reactor: fd out of range")

	// ErrFDNotRegistered is returned by SetFDTimeoutHandler when the fd
	// has no interest record.
	ErrFDNotRegistered = errors.New("reactor: fd not registered")

	// ErrNoHandler is not returned by this package: CLEAR on an fd with
	// no record returns nil, and SignalUnset with an unknown token
	// returns 0.
	ErrNoHandler = errors.New("reactor: no matching handler")

	// ErrReentrantDispatch is returned when a handler calls Dispatch
	// recursively; spec.md §5 forbids this.
	ErrReentrantDispatch = errors.New("reactor: cannot call Dispatch from within a handler")
)

// RegistrationError wraps a backend failure (epoll_ctl/kevent errno, or
// out-of-memory) encountered while changing fd interest. Per spec.md §7
// "Registration errors", these are surfaced as -1 to the caller with the
// FD table left unchanged; RegistrationError is the Go-idiomatic carrier
// of that same fact for callers that want the underlying cause.
type RegistrationError struct {
	Op  string // "set_fd" (the only operation that reports one)
	FD  int
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("reactor: %s failed for fd %d: %v", e.Op, e.FD, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// FatalError wraps a readiness-primitive failure other than transient
// interruption (spec.md §7 "Fatal reactor errors"). Dispatch returns this
// error; the caller must destroy the reactor.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return fmt.Sprintf("reactor: fatal poll error: %v", e.Err) }

func (e *FatalError) Unwrap() error { return e.Err }
