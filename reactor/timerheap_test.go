package reactor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTimerHeapRootIsMinimum exercises spec.md §8 invariant: "The timeout
// heap's root deadline is <= every other entry's deadline."
func TestTimerHeapRootIsMinimum(t *testing.T) {
	var h timerHeap
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		e := &timerEntry{deadlineUS: rng.Int63n(1_000_000), seq: uint64(i)}
		heapPush(&h, e)

		root := h.peek()
		for _, other := range h {
			assert.LessOrEqual(t, root.deadlineUS, other.deadlineUS)
		}
	}
}

func TestTimerHeapPopOrder(t *testing.T) {
	var h timerHeap
	deadlines := []int64{50, 10, 30, 20, 40}
	for i, d := range deadlines {
		heapPush(&h, &timerEntry{deadlineUS: d, seq: uint64(i)})
	}

	var popped []int64
	for h.Len() > 0 {
		popped = append(popped, heapPop(&h).deadlineUS)
	}
	assert.Equal(t, []int64{10, 20, 30, 40, 50}, popped)
}

func TestTimerHeapRemoveArbitrary(t *testing.T) {
	var h timerHeap
	entries := make([]*timerEntry, 5)
	for i := range entries {
		entries[i] = &timerEntry{deadlineUS: int64(i * 10), seq: uint64(i)}
		heapPush(&h, entries[i])
	}

	h.remove(entries[2])
	assert.Equal(t, 4, h.Len())

	var remaining []int64
	for h.Len() > 0 {
		remaining = append(remaining, heapPop(&h).deadlineUS)
	}
	assert.Equal(t, []int64{0, 10, 30, 40}, remaining)
}
