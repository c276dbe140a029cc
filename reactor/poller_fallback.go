//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package reactor

import (
	"time"

	"golang.org/x/sys/unix"
)

// scanPoller is the portable readiness-scan fallback of spec.md §4.1,
// used on hosts without epoll or kqueue. It tracks watched fds itself
// (the teacher's epoll/kqueue backends instead delegate that bookkeeping
// to the kernel) and multiplexes them with unix.Select, which x/sys/unix
// implements broadly across remaining unix-like targets.
//
// This is the externally-transparent "best available primitive" tier:
// callers never observe which backend is compiled in (spec.md §4.1
// "The selection must be transparent").
type scanPoller struct {
	watch map[int]EventFlags
}

func newBackendPoller() backendPoller {
	return &scanPoller{watch: make(map[int]EventFlags)}
}

func (p *scanPoller) init() error  { return nil }
func (p *scanPoller) close() error { return nil }

func (p *scanPoller) add(fd int, events EventFlags) error {
	p.watch[fd] = events
	return nil
}

func (p *scanPoller) modify(fd int, events EventFlags) error {
	p.watch[fd] = events
	return nil
}

func (p *scanPoller) remove(fd int) error {
	delete(p.watch, fd)
	return nil
}

func (p *scanPoller) wait(timeoutMs int, ready readyFn) (int, error) {
	if len(p.watch) == 0 {
		if timeoutMs > 0 {
			time.Sleep(time.Duration(timeoutMs) * time.Millisecond)
		}
		return 0, nil
	}

	var rset, wset unix.FdSet
	maxFD := 0
	for fd, ev := range p.watch {
		if ev.Has(Read) {
			fdSet(&rset, fd)
		}
		if ev.Has(Write) {
			fdSet(&wset, fd)
		}
		if fd > maxFD {
			maxFD = fd
		}
	}

	var tv *unix.Timeval
	if timeoutMs >= 0 {
		t := unix.NsecToTimeval(int64(timeoutMs) * int64(time.Millisecond))
		tv = &t
	}

	n, err := unix.Select(maxFD+1, &rset, &wset, nil, tv)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}

	count := 0
	for fd, ev := range p.watch {
		var fired EventFlags
		if ev.Has(Read) && fdIsSet(&rset, fd) {
			fired |= Read
		}
		if ev.Has(Write) && fdIsSet(&wset, fd) {
			fired |= Write
		}
		if fired != 0 {
			ready(fd, fired)
			count++
		}
	}
	_ = n
	return count, nil
}

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}
