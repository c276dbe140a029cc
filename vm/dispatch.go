package vm

import "github.com/Mu-L/Melon/ast"

// StepHandler performs one unit of work for the frame on top of the
// stack (spec.md §4.3): evaluate a child, combine children, or emit a
// return-expression. It returns done=true when the frame is finished and
// should be popped, with f.Partial holding the value to deliver to the
// parent frame.
type StepHandler func(d *Driver, j *Job, f *Frame) (done bool, err error)

// dispatch maps each ast.Kind to its step-handler — the runtime's
// "dispatch lookup table mapping stack-node tags to step-handlers"
// (spec.md §3 "Runtime"). Populated by each eval_*.go file's init().
var dispatch = map[ast.Kind]StepHandler{}

func register(k ast.Kind, h StepHandler) {
	if _, exists := dispatch[k]; exists {
		panic("vm: duplicate step-handler registration for " + k.String())
	}
	dispatch[k] = h
}
