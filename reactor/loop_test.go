package reactor

import (
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTimerFanOut exercises spec.md §8 scenario 1: three one-shot timers
// scheduled at 10/20/30ms fire in that order. To allow for scheduler
// slack it asserts the first fire at >= 8ms and each later gap at >= 5ms.
func TestTimerFanOut(t *testing.T) {
	r, err := New(true)
	require.NoError(t, err)
	defer r.Destroy()

	var mu sync.Mutex
	var order []int
	var times []time.Time

	start := time.Now()
	r.SetTimer(10, 1, func(data any) {
		mu.Lock()
		order = append(order, data.(int))
		times = append(times, time.Now())
		mu.Unlock()
	})
	r.SetTimer(20, 2, func(data any) {
		mu.Lock()
		order = append(order, data.(int))
		times = append(times, time.Now())
		mu.Unlock()
		if len(order) == 3 {
			r.SetBreak()
		}
	})
	r.SetTimer(30, 3, func(data any) {
		mu.Lock()
		order = append(order, data.(int))
		times = append(times, time.Now())
		mu.Unlock()
		r.SetBreak()
	})

	require.NoError(t, r.Dispatch())

	assert.Equal(t, []int{1, 2, 3}, order)
	require.Len(t, times, 3)
	assert.GreaterOrEqual(t, times[0].Sub(start).Milliseconds(), int64(8))
	assert.GreaterOrEqual(t, times[1].Sub(times[0]).Milliseconds(), int64(5))
	assert.GreaterOrEqual(t, times[2].Sub(times[1]).Milliseconds(), int64(5))
}

// TestFDReadWithTimeout exercises spec.md §8 scenario 2: a pipe read end
// registered with READ and a 50ms timeout, written to after 10ms, must
// fire the read handler exactly once and never the timeout handler.
func TestFDReadWithTimeout(t *testing.T) {
	rfd, wfd, err := pipeFDs()
	require.NoError(t, err)
	defer syscall.Close(rfd)
	defer syscall.Close(wfd)

	r, err := New(true)
	require.NoError(t, err)
	defer r.Destroy()

	var readCount, timeoutCount int
	require.NoError(t, r.SetFD(rfd, Read, 50, nil, func(fd int, events EventFlags, data any) {
		readCount++
		buf := make([]byte, 1)
		_, _ = syscall.Read(rfd, buf)
		r.SetBreak()
	}))
	require.NoError(t, r.SetFDTimeoutHandler(rfd, nil, func(data any) {
		timeoutCount++
		r.SetBreak()
	}))

	go func() {
		time.Sleep(10 * time.Millisecond)
		_, _ = syscall.Write(wfd, []byte{1})
	}()

	require.NoError(t, r.Dispatch())

	assert.Equal(t, 1, readCount)
	assert.Equal(t, 0, timeoutCount)
}

// TestFDTimeoutOnly exercises spec.md §8 scenario 3: no write arrives, so
// only the timeout handler fires, and the fd interest remains registered
// (not implicitly cleared) until explicitly CLEARed.
func TestFDTimeoutOnly(t *testing.T) {
	rfd, wfd, err := pipeFDs()
	require.NoError(t, err)
	defer syscall.Close(rfd)
	defer syscall.Close(wfd)

	r, err := New(true)
	require.NoError(t, err)
	defer r.Destroy()

	var readCount, timeoutCount int
	start := time.Now()
	require.NoError(t, r.SetFD(rfd, Read, 50, nil, func(fd int, events EventFlags, data any) {
		readCount++
	}))
	require.NoError(t, r.SetFDTimeoutHandler(rfd, nil, func(data any) {
		timeoutCount++
		r.SetBreak()
	}))

	require.NoError(t, r.Dispatch())

	assert.Equal(t, 0, readCount)
	assert.Equal(t, 1, timeoutCount)
	assert.GreaterOrEqual(t, time.Since(start).Milliseconds(), int64(45))

	_, stillThere := r.fds.get(rfd)
	assert.True(t, stillThere, "fd interest must survive an fd-timeout expiry")

	require.NoError(t, r.SetFD(rfd, Clear, Unmodified, nil, nil))
	_, stillThere = r.fds.get(rfd)
	assert.False(t, stillThere)
}

// TestSignalUnification exercises spec.md §8 scenario 4: two handlers
// registered for the same signal both fire, in registration order, for a
// single raise.
func TestSignalUnification(t *testing.T) {
	r, err := New(true)
	require.NoError(t, err)
	defer r.Destroy()

	var mu sync.Mutex
	var order []int

	r.SetSignal(SignalSet, syscall.SIGUSR1, nil, func(signo syscall.Signal, data any) {
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
	}, 0)
	r.SetSignal(SignalSet, syscall.SIGUSR1, nil, func(signo syscall.Signal, data any) {
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
		r.SetBreak()
	}, 0)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = syscall.Kill(os.Getpid(), syscall.SIGUSR1)
	}()

	require.NoError(t, r.Dispatch())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2}, order)
}

// TestAppendPreservesOtherSide exercises spec.md §4.1 "APPEND ORs new
// interest bits into an existing record without disturbing unrelated
// state."
func TestAppendPreservesOtherSide(t *testing.T) {
	rfd, wfd, err := pipeFDs()
	require.NoError(t, err)
	defer syscall.Close(rfd)
	defer syscall.Close(wfd)

	r, err := New(true)
	require.NoError(t, err)
	defer r.Destroy()

	readCalled := false
	require.NoError(t, r.SetFD(rfd, Read, Unlimited, "read-data", func(fd int, events EventFlags, data any) {
		readCalled = true
		assert.Equal(t, "read-data", data)
	}))

	rec, ok := r.fds.get(rfd)
	require.True(t, ok)
	assert.Equal(t, Read, rec.interest)
	assert.Equal(t, "read-data", rec.readData)

	require.NoError(t, r.SetFD(rfd, Write|Append, Unmodified, "write-data", func(fd int, events EventFlags, data any) {}))

	rec, ok = r.fds.get(rfd)
	require.True(t, ok)
	assert.True(t, rec.interest.Has(Read))
	assert.True(t, rec.interest.Has(Write))
	assert.Equal(t, "read-data", rec.readData, "APPEND must not disturb the read side's data")
	_ = readCalled
}

// TestRegistrationLaw exercises spec.md §8 law: "Registering interest R
// then registering with CLEAR then registering interest R again is
// indistinguishable externally from a single registration of R."
func TestRegistrationLaw(t *testing.T) {
	rfd, wfd, err := pipeFDs()
	require.NoError(t, err)
	defer syscall.Close(rfd)
	defer syscall.Close(wfd)

	r, err := New(true)
	require.NoError(t, err)
	defer r.Destroy()

	fired := 0
	handler := func(fd int, events EventFlags, data any) { fired++ }

	require.NoError(t, r.SetFD(rfd, Read, Unlimited, nil, handler))
	require.NoError(t, r.SetFD(rfd, Clear, Unmodified, nil, nil))
	require.NoError(t, r.SetFD(rfd, Read, Unlimited, nil, handler))

	_, _ = syscall.Write(wfd, []byte{9})
	r.SetTimer(20, nil, func(any) { r.SetBreak() })
	require.NoError(t, r.Dispatch())

	assert.Equal(t, 1, fired)
}

func pipeFDs() (r, w int, err error) {
	var fds [2]int
	if err := syscall.Pipe(fds[:]); err != nil {
		return 0, 0, err
	}
	return fds[0], fds[1], nil
}
