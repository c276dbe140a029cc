package reactor

import (
	"container/heap"
	"sync/atomic"
	"syscall"
	"time"
)

// LoopHook is invoked once at the top of every dispatch iteration
// (spec.md §4.1 "Dispatch loop" step 1), before computing the next
// deadline. [runtime.Runtime] does not use it to drive the interpreter;
// it installs the driver through [Reactor.StartHeartbeat] instead.
type LoopHook func(data any)

// defaultHeartbeatMillis is the fixed heartbeat period of spec.md §4.1
// step 2, used to preempt long-running scripted jobs even when no timer
// is pending.
const defaultHeartbeatMillis = 50

var idCounter atomic.Uint64

// Reactor is the single-threaded I/O event reactor of spec.md §4.1. It
// must be driven by exactly one goroutine calling [Reactor.Dispatch].
//
// Grounded on eventloop/loop.go's Loop, stripped of the multi-goroutine
// ingress/fast-path machinery (ChunkedIngress, MicrotaskRing, FastState
// CAS transitions) since spec.md §5 specifies a single-threaded reactor
// with no external task-submission queue of its own — see
// SPEC_FULL.md "[Reactor Core]".
type Reactor struct {
	id uint64

	fds     fdTable
	timers  timerHeap
	signals *signalBridge
	backend backendPoller

	isMain bool
	dirty  bool // true once the poller has been initialized

	heartbeatMillis int64
	hook            LoopHook
	hookData        any

	breakRequested bool
	dispatching    bool
	destroyed      bool

	timerSeq uint64
	nextID   TimerID

	metrics Metrics
}

// New creates a Reactor with its own signal bridge. isMain is recorded on
// the reactor; no behaviour in this package depends on it.
func New(isMain bool) (*Reactor, error) {
	r := &Reactor{
		id:              idCounter.Add(1),
		signals:         newSignalBridge(),
		isMain:          isMain,
		heartbeatMillis: defaultHeartbeatMillis,
		nextID:          1,
	}
	r.backend = newBackendPoller()
	if err := r.backend.init(); err != nil {
		return nil, err
	}
	r.dirty = true
	return r, nil
}

// Destroy releases the reactor's backend resources. It is an error to
// call Dispatch again afterward.
func (r *Reactor) Destroy() error {
	if r.destroyed {
		return nil
	}
	r.destroyed = true
	if r.dirty {
		return r.backend.close()
	}
	return nil
}

// SetCallback registers the per-iteration loop hook (spec.md §4.1 step 1).
func (r *Reactor) SetCallback(hook LoopHook, data any) {
	r.hook = hook
	r.hookData = data
}

// SetBreak latches a request to stop the dispatch loop. There is no
// asynchronous interrupt: the current handler runs to completion.
// Dispatch checks the flag once per iteration, after that iteration's
// ready fds, drained signals and expired timers have all been dispatched,
// so other handlers already due in the same iteration still run.
func (r *Reactor) SetBreak() {
	r.breakRequested = true
}

// SetFD installs or updates the interest for fd (spec.md §4.1 "Contract").
//
// Without [Append], this call replaces the fd's interest bits, handler,
// and data wholesale for every side named in flags, and clears any side
// not named. With [Append], existing sides not named in flags are left
// untouched and the named bits are ORed into the existing record.
// [Clear] removes the fd entirely, superseding every other bit.
//
// Returns an error (mirroring spec.md §6 "-1 on error for setters") if the
// backend rejects the change; the FD table is left unchanged in that case.
func (r *Reactor) SetFD(fd int, flags EventFlags, timeoutMS int64, data any, handler ReadyHandler) error {
	if !validFD(fd) {
		return ErrFDOutOfRange
	}

	if flags.Has(Clear) {
		return r.clearFD(fd)
	}

	rec, existed := r.fds.get(fd)
	prevInterest := EventFlags(0)
	if existed {
		prevInterest = rec.interest
	}

	newRec := fdRecord{active: true, deadlineMS: Unlimited}
	if existed {
		newRec = *rec
	}

	if flags.Has(Append) {
		newRec.interest |= flags &^ (Append | Oneshot | Clear)
	} else {
		newRec.interest = flags &^ (Append | Oneshot | Clear)
	}
	if flags.Has(Oneshot) {
		newRec.interest |= Oneshot
	} else if !flags.Has(Append) {
		newRec.interest &^= Oneshot
	}

	if flags.Has(Read) {
		newRec.readData = data
		newRec.readFn = handler
	} else if !flags.Has(Append) {
		newRec.readData = nil
		newRec.readFn = nil
	}
	if flags.Has(Write) {
		newRec.writeData = data
		newRec.writeFn = handler
	} else if !flags.Has(Append) {
		newRec.writeData = nil
		newRec.writeFn = nil
	}

	if newRec.interest&(Read|Write) == 0 {
		return r.clearFD(fd)
	}

	if err := r.syncBackend(fd, prevInterest, newRec.interest, existed); err != nil {
		return &RegistrationError{Op: "set_fd", FD: fd, Err: err}
	}

	*r.fds.getOrCreate(fd) = newRec
	r.applyFDTimeout(fd, timeoutMS)
	return nil
}

func (r *Reactor) syncBackend(fd int, prev, next EventFlags, existed bool) error {
	maskBits := func(f EventFlags) EventFlags { return f & (Read | Write) }
	if !existed {
		return r.backend.add(fd, maskBits(next))
	}
	if maskBits(prev) == maskBits(next) {
		return nil
	}
	return r.backend.modify(fd, maskBits(next))
}

func (r *Reactor) clearFD(fd int) error {
	rec, existed := r.fds.get(fd)
	if !existed {
		return nil
	}
	if rec.timer != nil {
		r.timers.remove(rec.timer)
	}
	if err := r.backend.remove(fd); err != nil {
		return &RegistrationError{Op: "set_fd", FD: fd, Err: err}
	}
	r.fds.clear(fd)
	return nil
}

// SetFDTimeoutHandler updates only the timeout handler for an already
// registered fd, leaving interest untouched (spec.md §4.1 "Contract").
func (r *Reactor) SetFDTimeoutHandler(fd int, data any, handler TimerHandler) error {
	rec, ok := r.fds.get(fd)
	if !ok {
		return ErrFDNotRegistered
	}
	rec.timeoutFn = handler
	rec.timeoutArg = data
	return nil
}

// applyFDTimeout implements the fd-timeout discipline of spec.md §4.1:
// Unlimited removes any pending entry, Unmodified preserves the prior
// deadline, and a positive value reschedules to now+ms.
func (r *Reactor) applyFDTimeout(fd int, timeoutMS int64) {
	rec, ok := r.fds.get(fd)
	if !ok {
		return
	}
	switch {
	case timeoutMS == Unmodified:
		return
	case timeoutMS == Unlimited || timeoutMS < 0:
		if rec.timer != nil {
			r.timers.remove(rec.timer)
			rec.timer = nil
		}
		rec.deadlineMS = Unlimited
	default:
		if rec.timer != nil {
			r.timers.remove(rec.timer)
		}
		rec.deadlineMS = timeoutMS
		r.timerSeq++
		entry := &timerEntry{
			deadlineUS: nowMicros() + timeoutMS*1000,
			seq:        r.timerSeq,
			kind:       timerFDTimeout,
			fd:         fd,
		}
		rec.timer = entry
		heapPush(&r.timers, entry)
	}
}

// SetTimer schedules a one-shot timer, firing no earlier than ms from now
// (spec.md §8 "Laws"). Returns an id usable to understand ordering;
// one-shot timers are removed from the heap before their handler runs
// (spec.md §3 "Timer record").
func (r *Reactor) SetTimer(ms int64, data any, handler TimerHandler) TimerID {
	r.timerSeq++
	id := r.nextID
	r.nextID++
	entry := &timerEntry{
		deadlineUS: nowMicros() + ms*1000,
		seq:        r.timerSeq,
		id:         id,
		kind:       timerOneShot,
		data:       data,
		handler:    handler,
	}
	heapPush(&r.timers, entry)
	return id
}

// CancelTimer removes a previously scheduled one-shot timer, if still
// pending. Returns false if the id is unknown (already fired or never
// existed).
func (r *Reactor) CancelTimer(id TimerID) bool {
	for _, e := range r.timers {
		if e.kind == timerOneShot && e.id == id {
			r.timers.remove(e)
			return true
		}
	}
	return false
}

// StartHeartbeat installs the reactor's recurring heartbeat tick, the
// extension point [runtime.Runtime] uses to drive the interpreter (spec.md
// §1 "the interpreter is a specialized timer-handler that the reactor
// re-arms", §2 item 8, §4.3 "Budgeting"). handler is invoked once per
// heartbeat period and re-armed automatically by dispatchExpiredTimers —
// callers never call this more than once per reactor.
func (r *Reactor) StartHeartbeat(handler TimerHandler, data any) {
	r.setHeartbeatTimer(handler, data)
}

// setHeartbeatTimer schedules the next occurrence of the recurring
// heartbeat tick.
func (r *Reactor) setHeartbeatTimer(handler TimerHandler, data any) {
	r.timerSeq++
	entry := &timerEntry{
		deadlineUS: nowMicros() + r.heartbeatMillis*1000,
		seq:        r.timerSeq,
		kind:       timerHeartbeat,
		data:       data,
		handler:    handler,
	}
	heapPush(&r.timers, entry)
}

// SetSignal registers or unregisters a signal handler (spec.md §4.1
// "Signal ordering", §6 "Signal registration flags"). Returns a token
// identifying the registration for later SignalUnset calls; the token is
// the Go-idiomatic substitute for C's (handler, data) pointer-identity
// removal, since Go cannot compare func values.
func (r *Reactor) SetSignal(flag SignalFlag, signo syscall.Signal, data any, handler SignalHandler, token uint64) uint64 {
	return r.signals.register(flag, signo, data, handler, token)
}

// Metrics returns a point-in-time snapshot of reactor activity counters
// (SPEC_FULL.md "Supplemented features").
func (r *Reactor) Metrics() Metrics {
	return r.metrics
}

// Dispatch runs the reactor's dispatch loop (spec.md §4.1 "Dispatch
// loop") until SetBreak is called or a fatal backend error occurs.
func (r *Reactor) Dispatch() error {
	if r.dispatching {
		return ErrReentrantDispatch
	}
	if r.destroyed {
		return ErrClosed
	}
	r.dispatching = true
	defer func() { r.dispatching = false }()

	for {
		if r.hook != nil {
			r.hook(r.hookData)
		}

		timeoutMS := r.nextTimeoutMS()

		n, err := r.backend.wait(timeoutMS, r.onReady)
		if err != nil {
			return &FatalError{Err: err}
		}
		r.metrics.TicksTotal++
		r.metrics.EventsDispatched += int64(n)

		r.signals.drain()

		r.dispatchExpiredTimers()

		if r.breakRequested {
			r.breakRequested = false
			return nil
		}
	}
}

// nextTimeoutMS computes spec.md §4.1 step 2: the minimum of the timeout
// heap's root deadline and the fixed heartbeat period.
func (r *Reactor) nextTimeoutMS() int {
	now := nowMicros()
	heartbeatDeadline := now + r.heartbeatMillis*1000
	deadline := heartbeatDeadline
	if root := r.timers.peek(); root != nil && root.deadlineUS < deadline {
		deadline = root.deadlineUS
	}
	ms := (deadline - now) / 1000
	if ms < 0 {
		ms = 0
	}
	return int(ms)
}

// onReady is the backend's readyFn: it looks up the fd's record and
// dispatches read before write (spec.md §4.1 step 4), dropping stale
// readiness for a record that no longer exists.
func (r *Reactor) onReady(fd int, events EventFlags) {
	rec, ok := r.fds.get(fd)
	if !ok {
		return // stale readiness: record absent since the wait started
	}

	oneshot := rec.interest.Has(Oneshot)
	if oneshot {
		// ONESHOT: the record is removed before the first handler runs,
		// then both sides are dispatched (spec.md §4.1 step 4).
		readFn, readData := rec.readFn, rec.readData
		writeFn, writeData := rec.writeFn, rec.writeData
		interest := rec.interest
		_ = r.clearFD(fd)
		r.deliver(fd, events, interest, readFn, readData, writeFn, writeData)
		return
	}

	r.deliver(fd, events, rec.interest, rec.readFn, rec.readData, rec.writeFn, rec.writeData)
}

func (r *Reactor) deliver(fd int, events, interest EventFlags, readFn ReadyHandler, readData any, writeFn ReadyHandler, writeData any) {
	if events.Has(Read) && readFn != nil {
		readFn(fd, Read, readData)
	}
	if events.Has(Write) && writeFn != nil {
		writeFn(fd, Write, writeData)
	}
	if events.Has(Error) {
		if interest.Has(Read) && readFn != nil {
			readFn(fd, Error, readData)
		} else if writeFn != nil {
			writeFn(fd, Error, writeData)
		}
	}
}

// dispatchExpiredTimers pops every timer whose deadline has passed
// (spec.md §4.1 step 6), firing one-shot timers after removal and
// fd-timeout entries without touching the fd's interest.
func (r *Reactor) dispatchExpiredTimers() {
	now := nowMicros()
	for {
		root := r.timers.peek()
		if root == nil || root.deadlineUS > now {
			return
		}

		heapPop(&r.timers)
		r.metrics.TimersFired++

		switch root.kind {
		case timerOneShot:
			if root.handler != nil {
				root.handler(root.data)
			}
		case timerHeartbeat:
			if root.handler != nil {
				root.handler(root.data)
			}
			// Re-arm: the reactor is the one that keeps the heartbeat
			// alive, per spec.md §1 "the interpreter is a specialized
			// timer-handler that the reactor re-arms."
			r.setHeartbeatTimer(root.handler, root.data)
		case timerFDTimeout:
			rec, ok := r.fds.get(root.fd)
			if ok {
				rec.timer = nil
				rec.deadlineMS = Unlimited
				if rec.timeoutFn != nil {
					rec.timeoutFn(rec.timeoutArg)
				}
			}
		}
	}
}

func nowMicros() int64 {
	return time.Now().UnixMicro()
}

// heapPush/heapPop wrap container/heap the same way eventloop/loop.go's
// timerHeap is driven by the standard library's heap.Interface, rather
// than hand-rolling sift-up/down.
func heapPush(h *timerHeap, e *timerEntry) {
	heap.Push(h, e)
}

func heapPop(h *timerHeap) *timerEntry {
	return heap.Pop(h).(*timerEntry)
}

// Metrics tracks reactor dispatch activity (SPEC_FULL.md "Supplemented
// features"), grounded on eventloop/metrics.go's Metrics shape but
// trimmed to plain counters since the reactor owns a single goroutine and
// needs no atomics.
type Metrics struct {
	TicksTotal       int64
	EventsDispatched int64
	TimersFired      int64
}
