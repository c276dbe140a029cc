package vm

import (
	"fmt"

	"github.com/Mu-L/Melon/reactor"
	"github.com/Mu-L/Melon/value"
)

// DefaultStepBudget is spec.md §4.3's "build-time constant (64)":
// "Each activation of the driver executes at most step units."
const DefaultStepBudget = 64

// jobQueue is a doubly-linked intrusive list over Job.Prev/Next, backing
// the runtime's run/blocked/wait queues (spec.md §3 "Runtime").
type jobQueue struct {
	head, tail *Job
	len        int
}

func (q *jobQueue) pushBack(j *Job) {
	j.Prev, j.Next = q.tail, nil
	if q.tail != nil {
		q.tail.Next = j
	} else {
		q.head = j
	}
	q.tail = j
	q.len++
}

func (q *jobQueue) remove(j *Job) {
	if j.Prev != nil {
		j.Prev.Next = j.Next
	} else if q.head == j {
		q.head = j.Next
	}
	if j.Next != nil {
		j.Next.Prev = j.Prev
	} else if q.tail == j {
		q.tail = j.Prev
	}
	j.Prev, j.Next = nil, nil
	q.len--
}

func (q *jobQueue) popFront() *Job {
	j := q.head
	if j == nil {
		return nil
	}
	q.remove(j)
	return j
}

// Driver is spec.md §8's "Interpreter Driver": the budgeted pump that
// advances the current job's evaluation stack, registered with the
// reactor as a heartbeat timer handler re-armed every tick.
type Driver struct {
	Reactor    *reactor.Reactor
	StepBudget int

	run, blocked, wait jobQueue
	nextJobID          uint64

	// OnJobDone is invoked (if set) whenever a job is destroyed, for
	// callers that want to clean up host-side bookkeeping keyed by job ID.
	OnJobDone func(j *Job)
}

// NewDriver wires a Driver to r, using stepBudget (DefaultStepBudget if
// zero) as the per-tick step allowance for every job.
func NewDriver(r *reactor.Reactor, stepBudget int) *Driver {
	if stepBudget <= 0 {
		stepBudget = DefaultStepBudget
	}
	return &Driver{Reactor: r, StepBudget: stepBudget}
}

// NextJobID allocates a monotonically increasing job ID.
func (d *Driver) NextJobID() uint64 {
	d.nextJobID++
	return d.nextJobID
}

// Submit enqueues a freshly created job onto the run queue.
func (d *Driver) Submit(j *Job) {
	j.Queue = QueueRun
	d.run.pushBack(j)
}

// Block moves j from run to blocked (spec.md §4.3 "run -> blocked").
func (d *Driver) Block(j *Job) {
	d.run.remove(j)
	j.Queue = QueueBlocked
	d.blocked.pushBack(j)
}

// Wake moves j from blocked back to run (spec.md §4.3 "blocked -> run").
func (d *Driver) Wake(j *Job) {
	d.blocked.remove(j)
	j.Queue = QueueRun
	d.run.pushBack(j)
}

// ParkForResource moves j from run to wait (spec.md §4.3 "run -> wait").
func (d *Driver) ParkForResource(j *Job) {
	d.run.remove(j)
	j.Queue = QueueWait
	d.wait.pushBack(j)
}

// ReleaseWaiter moves the FIFO-first waiter for a resource back to run (spec.md
// §4.3 "wait -> run: ... FIFO among waiters").
func (d *Driver) ReleaseWaiter() *Job {
	j := d.wait.popFront()
	if j == nil {
		return nil
	}
	j.Queue = QueueRun
	d.run.pushBack(j)
	return j
}

// RunQueueLen, BlockedQueueLen, WaitQueueLen expose queue depth for
// metrics and tests.
func (d *Driver) RunQueueLen() int     { return d.run.len }
func (d *Driver) BlockedQueueLen() int { return d.blocked.len }
func (d *Driver) WaitQueueLen() int    { return d.wait.len }

// Step executes exactly one unit of work for the job's top activation.
func (d *Driver) Step(j *Job) error {
	top := j.Stack.Top()
	if top == nil {
		return nil
	}
	h, ok := dispatch[top.Node.Kind]
	if !ok {
		return fmt.Errorf("vm: no step-handler registered for %s", top.Node.Kind)
	}
	done, err := h(d, j, top)
	if err != nil {
		if u, isUnwind := err.(*unwindSignal); isUnwind {
			return d.unwind(j, u)
		}
		j.SetError(&ScriptError{File: j.Filename, Line: top.Node.Line, Err: err})
		for !j.Stack.Empty() {
			j.Stack.Pop()
		}
		j.syncCurStack()
		return nil
	}
	if done {
		j.Stack.Pop()
		if parent := j.Stack.Top(); parent != nil {
			parent.ChildPending = false
			parent.ChildResult = top.Partial
		} else {
			j.CurrentExpr = top.Partial
		}
	}
	j.syncCurStack()
	return nil
}

// unwind pops activations per spec.md §4.3's break/continue/return
// semantics (via Stack.UnwindToLoop / Stack.UnwindToCall); a break,
// continue or return with no enclosing loop or call empties the stack.
// Runtime errors do not come through here: Step records them on the job
// and empties the stack itself.
//
// For break/continue, the frame left on top after unwinding is exactly
// the frame that was waiting on the loop (or, for continue, the loop
// frame itself awaiting its body) to finish — the same position the
// normal done-path in Step leaves it in after popping a completed child.
// So unwind hands it a nil-valued ChildResult the same way Step's
// done-path hands a parent its child's Partial, instead of leaving
// ChildResult nil (which every handler reads as "push/re-run the child").
func (d *Driver) unwind(j *Job, u *unwindSignal) error {
	switch u.kind {
	case unwindBreak:
		j.Stack.UnwindToLoop(true)
		if top := j.Stack.Top(); top != nil {
			top.ChildResult = returnOf(value.NewNil())
		}
	case unwindContinue:
		if loop := j.Stack.UnwindToLoop(false); loop != nil {
			loop.ChildResult = returnOf(value.NewNil())
		}
	case unwindReturn:
		boundary := j.Stack.UnwindToCall()
		if boundary != nil {
			boundary.pendingReturn = j.returnCarry
		}
		j.returnCarry = nil
	}
	j.syncCurStack()
	return nil
}

// Pump advances j by at most the driver's step budget (spec.md §4.3
// "Budgeting"), stopping early if the job's stack empties or an error
// is recorded on the job.
func (d *Driver) Pump(j *Job) error {
	budget := d.StepBudget
	if j.StepBudget > 0 {
		budget = j.StepBudget
	}
	for i := 0; i < budget; i++ {
		if j.Stack.Empty() || j.Err() != nil {
			return j.Err()
		}
		if err := d.Step(j); err != nil {
			return err
		}
	}
	return nil
}

// Tick runs one heartbeat's worth of work: every job currently on the
// run queue gets one Pump call. Jobs that finish (empty stack) are
// removed and OnJobDone is invoked; jobs still runnable stay on the run
// queue for the next tick. Callers wire this in as the reactor's
// heartbeat timer handler via Reactor.StartHeartbeat (spec.md §1: "the
// interpreter is a specialized timer-handler that the reactor re-arms"),
// so it runs once per heartbeat period regardless of fd event rate —
// never as the generic per-iteration set_callback hook, which would tie
// script CPU allotment to I/O readiness instead of the heartbeat
// (spec.md §4.3 "Budgeting").
func (d *Driver) Tick() {
	j := d.run.head
	for j != nil {
		next := j.Next
		if err := d.Pump(j); err != nil {
			j.SetError(err)
		}
		if j.Stack.Empty() {
			d.run.remove(j)
			if d.OnJobDone != nil {
				d.OnJobDone(j)
			}
		}
		j = next
	}
}
