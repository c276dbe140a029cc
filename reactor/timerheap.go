package reactor

import "container/heap"

// timerKind distinguishes the three timer record kinds of spec.md §3
// ("Timer record"): a one-shot user timer, an fd-timeout entry sharing
// lifetime with its fd record, and the interpreter heartbeat.
type timerKind uint8

const (
	timerOneShot timerKind = iota
	timerFDTimeout
	timerHeartbeat
)

// TimerID identifies a scheduled timer for cancellation.
type TimerID uint64

// TimerHandler is invoked when a timer fires. data is the opaque pointer
// supplied at registration time.
type TimerHandler func(data any)

// timerEntry is one node of the timeout heap: an absolute deadline in
// microseconds (spec.md §3), a kind, user data, and a handler.
//
// seq breaks ties between equal deadlines by insertion order, since the
// deadline alone does not record that (spec.md §5 "Ordering guarantees":
// "expired timers in deadline order, stable by insertion time for equal
// deadlines").
type timerEntry struct {
	deadlineUS int64
	seq        uint64
	id         TimerID
	kind       timerKind
	fd         int // valid only for timerFDTimeout
	data       any
	handler    TimerHandler
	index      int // current position in the heap slice, for removal
}

// timerHeap is a min-heap keyed by (deadlineUS, seq), mirroring
// eventloop/loop.go's timerHeap (Len/Less/Swap/Push/Pop over a slice of
// value-typed entries), generalized to carry a back-reference index so
// arbitrary entries (not just the root) can be removed in O(log n) — the
// FD Table needs this to drop an fd's timeout entry without waiting for it
// to reach the root.
type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadlineUS != h[j].deadlineUS {
		return h[i].deadlineUS < h[j].deadlineUS
	}
	return h[i].seq < h[j].seq
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// peek returns the root entry (earliest deadline) without removing it.
func (h timerHeap) peek() *timerEntry {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

// remove drops an arbitrary entry from the heap by its current index.
func (h *timerHeap) remove(e *timerEntry) {
	if e.index < 0 || e.index >= len(*h) {
		return
	}
	heap.Remove(h, e.index)
	e.index = -1
}
