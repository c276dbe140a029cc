package channel

import (
	"fmt"

	"github.com/Mu-L/Melon/value"
	"github.com/google/uuid"
)

// ProtocolError is spec.md §7's host-integration error: "message-channel
// protocol misuse (double-send before read)."
type ProtocolError struct {
	Channel string
	Reason  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("channel %q: %s", e.Channel, e.Reason)
}

// HostHandler is invoked in reactor thread context when the script side
// posts a value (spec.md §4.5).
type HostHandler func(v *value.Value)

type slot struct {
	value   *value.Value
	pending bool
}

// Channel is spec.md §4.5's named rendezvous object: two one-slot
// buffers and read-pending bookkeeping. Identity (ID) is assigned at
// creation via google/uuid so host code can address channels across a
// process restart's log output without colliding on the human-readable
// Name.
type Channel struct {
	ID   uuid.UUID
	Name string

	toHost   slot // script -> host
	toScript slot // host -> script

	host HostHandler

	scriptWaiting bool
	wakeScript    func()
}

// New creates a named channel with the host-side handler invoked on
// every script->host post.
func New(name string, host HostHandler) *Channel {
	return &Channel{ID: uuid.New(), Name: name, host: host}
}

// SendFromScript posts a value to the host, invoking the registered
// handler synchronously (reactor thread context — there is only one
// thread). Returns a ProtocolError if a prior post has not yet been
// delivered, enforcing "at most one outstanding value per direction".
func (c *Channel) SendFromScript(v *value.Value) error {
	if c.toHost.pending {
		return &ProtocolError{Channel: c.Name, Reason: "double-send before read"}
	}
	c.toHost.pending = true
	c.toHost.value = v
	if c.host != nil {
		c.host(v)
	}
	c.toHost.pending = false
	c.toHost.value = nil
	return nil
}

// ReadForScript attempts a non-blocking script-side read of the
// host->script slot. ok is false when the slot is empty, in which case
// the caller should move its job to blocked and call WaitForScript.
func (c *Channel) ReadForScript() (v *value.Value, ok bool) {
	if !c.toScript.pending {
		return nil, false
	}
	v = c.toScript.value
	c.toScript.pending = false
	c.toScript.value = nil
	return v, true
}

// WaitForScript registers wake to be called once a host send fills the
// slot, implementing the run->blocked transition's resumption side
// (spec.md §4.3 "blocked -> run: when the awaited event fires").
func (c *Channel) WaitForScript(wake func()) {
	c.scriptWaiting = true
	c.wakeScript = wake
}

// SendFromHost posts a value for the script to read, re-queuing any
// blocked reader. Returns a ProtocolError if the slot already holds an
// undelivered value.
func (c *Channel) SendFromHost(v *value.Value) error {
	if c.toScript.pending {
		return &ProtocolError{Channel: c.Name, Reason: "double-send before read"}
	}
	c.toScript.pending = true
	c.toScript.value = v
	if c.scriptWaiting {
		wake := c.wakeScript
		c.scriptWaiting = false
		c.wakeScript = nil
		if wake != nil {
			wake()
		}
	}
	return nil
}
