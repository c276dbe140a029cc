package reactor

// maxDirectFDs bounds the directly-indexed fd array, mirroring
// eventloop/poller_linux.go's "maxFDs = 65536" direct-indexing strategy
// (array lookup instead of a map, since fds are small dense integers).
const maxDirectFDs = 65536

// ReadyHandler is invoked when a watched fd becomes ready. events carries
// the subset of the fd's interest that fired (Read/Write/Error), and data
// is whichever side's user pointer spec.md §4.1 step 4 says to deliver it
// through (the read side's if registered, else the write side's).
type ReadyHandler func(fd int, events EventFlags, data any)

// fdRecord is the event descriptor record of spec.md §3: interest bits,
// one opaque user pointer and one handler per side, the active deadline,
// and a back-reference to the fd's heap slot if a timeout is pending.
//
// Invariant (spec.md §3): a descriptor is present in the table iff it has
// at least one of {Read, Write} in interest. ERROR is delivered on the
// handler of whichever side is registered (read takes priority).
type fdRecord struct {
	interest   EventFlags
	readData   any
	readFn     ReadyHandler
	writeData  any
	writeFn    ReadyHandler
	timeoutFn  TimerHandler
	timeoutArg any
	deadlineMS int64 // Unlimited if none pending
	timer      *timerEntry
	active     bool
}

// fdTable is the direct-indexed fd→record mapping of spec.md §2 item 3.
type fdTable struct {
	records [maxDirectFDs]fdRecord
}

func validFD(fd int) bool { return fd >= 0 && fd < maxDirectFDs }

func (t *fdTable) get(fd int) (*fdRecord, bool) {
	if !validFD(fd) {
		return nil, false
	}
	r := &t.records[fd]
	if !r.active {
		return nil, false
	}
	return r, true
}

func (t *fdTable) getOrCreate(fd int) *fdRecord {
	r := &t.records[fd]
	r.active = true
	return r
}

func (t *fdTable) clear(fd int) {
	if !validFD(fd) {
		return
	}
	t.records[fd] = fdRecord{}
}
