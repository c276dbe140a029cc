package vm

import (
	"github.com/Mu-L/Melon/ast"
	"github.com/Mu-L/Melon/channel"
)

// QueueKind is which of the runtime's three job queues a Job currently
// inhabits (spec.md §3 "Lifecycles").
type QueueKind uint8

const (
	QueueRun QueueKind = iota
	QueueBlocked
	QueueWait
)

// Job is spec.md §3's "Job context". The memory pool the spec names is
// represented implicitly by Go's allocator and the refcounting already
// enforced by the value package; nothing here re-implements a pool.
type Job struct {
	ID       uint64
	Filename string

	Root  *ast.Node
	Stack Stack

	rootScope *Scope
	curScope  *Scope

	StepBudget int
	stepsUsed  int

	// returnCarry ferries a return statement's value up to the nearest
	// call-boundary frame during an unwindReturn (see driver.go's unwind).
	returnCarry *ReturnExpr

	OpenFiles   *FileSet
	Channels    map[string]*channel.Channel
	CurrentExpr *ReturnExpr

	Queue      QueueKind
	Prev, Next *Job
	refs       int32

	errBuf error // set by an uncaught runtime error; nil while healthy
}

// FileSet tracks open-file descriptors a job holds, bounded by the
// runtime's MaxOpenFiles limit (spec.md §3: "a file-set for open-file
// tracking bounded by M_LANG_MAX_OPENFILE").
type FileSet struct {
	max  int
	open map[int]struct{}
}

// NewFileSet creates a file-set with the given cap.
func NewFileSet(max int) *FileSet {
	return &FileSet{max: max, open: make(map[int]struct{})}
}

// Open records fd as open, failing if the job is already at its cap.
func (f *FileSet) Open(fd int) bool {
	if len(f.open) >= f.max {
		return false
	}
	f.open[fd] = struct{}{}
	return true
}

// Close releases fd from the set.
func (f *FileSet) Close(fd int) { delete(f.open, fd) }

// Len reports the number of currently tracked open descriptors.
func (f *FileSet) Len() int { return len(f.open) }

// NewJob creates a job rooted at root with the given step budget and
// open-file cap, with a single root SET scope.
func NewJob(id uint64, filename string, root *ast.Node, stepBudget, maxOpenFiles int) *Job {
	j := &Job{
		ID:         id,
		Filename:   filename,
		Root:       root,
		StepBudget: stepBudget,
		OpenFiles:  NewFileSet(maxOpenFiles),
		Channels:   make(map[string]*channel.Channel),
		refs:       1,
	}
	j.rootScope = NewScope(ScopeSet, "", j, nil)
	j.curScope = j.rootScope
	j.Stack.Push(NewFrame(root))
	return j
}

// Scope returns the job's current innermost scope.
func (j *Job) Scope() *Scope { return j.curScope }

// PushScope links and switches to a new child scope.
func (j *Job) PushScope(kind ScopeKind, name string) *Scope {
	s := NewScope(kind, name, j, j.curScope)
	j.curScope = s
	return s
}

// PopScope returns to the parent of the current scope, per spec.md's
// function-call protocol step (e): "the FUNC scope is torn down."
func (j *Job) PopScope() {
	if j.curScope != nil && j.curScope.Prev != nil {
		j.curScope = j.curScope.Prev
	}
}

// Retain/Release implement the job refcount spec.md §3 names: "destroyed
// when its stack is empty and its refcount is zero."
func (j *Job) Retain() { j.refs++ }

func (j *Job) Release() { j.refs-- }

// Alive reports whether the job should be kept on a queue.
func (j *Job) Alive() bool { return j.refs > 0 || j.Stack.Len() > 0 }

// SetError records an uncaught runtime error on the job (spec.md §7).
func (j *Job) SetError(err error) { j.errBuf = err }

// Err returns the job's recorded error, if any.
func (j *Job) Err() error { return j.errBuf }

// syncCurStack updates the current scope's cur_stack cursor to match the
// evaluation stack top, maintaining spec.md §8's invariant ("At any step
// boundary, scope.cur_stack equals the job's evaluation stack top").
func (j *Job) syncCurStack() {
	j.curScope.setCurStack(j.Stack.Top())
}
