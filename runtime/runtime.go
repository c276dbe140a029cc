// Package runtime wires the reactor core, the interpreter driver, and
// message-channel registry into the single top-level object scripts and
// embedding hosts actually interact with (spec.md §3 "Runtime").
package runtime

import (
	"fmt"

	"github.com/Mu-L/Melon/ast"
	"github.com/Mu-L/Melon/channel"
	"github.com/Mu-L/Melon/reactor"
	"github.com/Mu-L/Melon/vm"
)

// Runtime is spec.md §3's top-level object: one reactor, one interpreter
// driver, this Runtime's channel registry, and the configured limits
// and logger every subsystem shares.
type Runtime struct {
	Reactor *reactor.Reactor
	Driver  *vm.Driver
	Limits  Limits
	Log     Logger

	channels map[string]*channel.Channel
}

// New creates a Runtime with the given limits, wiring the interpreter
// driver in as the reactor's heartbeat timer handler (spec.md §1: "the
// interpreter is a specialized timer-handler that the reactor re-arms",
// §4.3 "Budgeting": "the job remains on the run queue and resumes on the
// next heartbeat tick") — not the reactor's generic per-iteration
// set_callback hook, which fires on every dispatch iteration (including
// ones woken purely by fd readiness) and would couple script CPU
// allotment to I/O event rate instead of pacing it to the heartbeat.
// isMain is passed through to reactor.New, which records it.
func New(isMain bool, limits Limits) (*Runtime, error) {
	r, err := reactor.NewWithOptions(isMain, reactor.WithHeartbeatMillis(limits.HeartbeatMillis))
	if err != nil {
		return nil, fmt.Errorf("runtime: %w", err)
	}
	d := vm.NewDriver(r, limits.StepBudget)

	rt := &Runtime{
		Reactor:  r,
		Driver:   d,
		Limits:   limits,
		Log:      NoopLogger{},
		channels: make(map[string]*channel.Channel),
	}
	d.OnJobDone = rt.onJobDone
	r.StartHeartbeat(func(any) { rt.tick() }, nil)
	return rt, nil
}

// SetLogger installs a backend (e.g. NewZerologBackend) for every
// subsequent log call. The Runtime itself is the only thing holding a
// Logger; the reactor and vm packages never import one.
func (rt *Runtime) SetLogger(l Logger) {
	if l == nil {
		l = NoopLogger{}
	}
	rt.Log = l
}

func (rt *Runtime) tick() {
	logDebug(rt.Log, "reactor", "heartbeat", map[string]any{
		"run":     rt.Driver.RunQueueLen(),
		"blocked": rt.Driver.BlockedQueueLen(),
		"wait":    rt.Driver.WaitQueueLen(),
	})
	rt.Driver.Tick()
}

func (rt *Runtime) onJobDone(j *vm.Job) {
	if err := j.Err(); err != nil {
		logError(rt.Log, "job", "job finished with an uncaught error", err, map[string]any{"job": j.ID})
		return
	}
	logInfo(rt.Log, "job", "job finished", map[string]any{"job": j.ID})
}

// SubmitScript wraps an already-parsed root AST node in a fresh Job and
// enqueues it on the driver's run queue (spec.md §3 "a script is loaded
// by constructing a Job").
func (rt *Runtime) SubmitScript(root *ast.Node, filename string) *vm.Job {
	j := vm.NewJob(rt.Driver.NextJobID(), filename, root, rt.Limits.StepBudget, rt.Limits.MaxOpenFiles)
	rt.Driver.Submit(j)
	logInfo(rt.Log, "job", "script submitted", map[string]any{"job": j.ID, "file": filename})
	return j
}

// OpenChannel creates and registers a named message channel (spec.md
// §4.5), invoking host whenever the script side posts a value.
func (rt *Runtime) OpenChannel(name string, host channel.HostHandler) *channel.Channel {
	c := channel.New(name, host)
	rt.channels[name] = c
	logDebug(rt.Log, "channel", "channel opened", map[string]any{"name": name})
	return c
}

// Channel looks up a previously opened channel by name.
func (rt *Runtime) Channel(name string) (*channel.Channel, bool) {
	c, ok := rt.channels[name]
	return c, ok
}

// CloseChannel removes a channel from the registry. It does not unblock
// any job still waiting on it; callers should drain or cancel such jobs
// first.
func (rt *Runtime) CloseChannel(name string) {
	delete(rt.channels, name)
	logDebug(rt.Log, "channel", "channel closed", map[string]any{"name": name})
}

// Run drives the reactor's dispatch loop until Stop is called or a
// fatal backend error occurs.
func (rt *Runtime) Run() error {
	logInfo(rt.Log, "reactor", "dispatch loop starting", nil)
	err := rt.Reactor.Dispatch()
	if err != nil {
		logError(rt.Log, "reactor", "dispatch loop exited with an error", err, nil)
	} else {
		logInfo(rt.Log, "reactor", "dispatch loop stopped", nil)
	}
	return err
}

// Stop requests the dispatch loop exit after its current iteration.
func (rt *Runtime) Stop() {
	rt.Reactor.SetBreak()
}

// Close releases the reactor's backend resources. Call after Run returns.
func (rt *Runtime) Close() error {
	return rt.Reactor.Destroy()
}
