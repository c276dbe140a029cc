package vm

import (
	"github.com/Mu-L/Melon/ast"
	"github.com/Mu-L/Melon/value"
)

func init() {
	register(ast.KindFunctionCall, stepFunctionCall)
	register(ast.KindFunctionDef, stepFunctionDef)
	register(ast.KindSetDef, stepSetDef)
	register(ast.KindFunctionSuffix, stepFunctionSuffix)
	register(ast.KindElementList, stepElementList)
}

type callState struct {
	fn      *value.Function
	args    []*value.Variable
	argIdx  int
	bodyHas bool
}

const (
	callEvalCallee = iota
	callEvalArgs
	callInvoke
	callAwaitBody
)

// stepFunctionCall implements spec.md §4.3's function call protocol.
func stepFunctionCall(d *Driver, j *Job, f *Frame) (bool, error) {
	switch f.Step {
	case callEvalCallee:
		if f.ChildResult == nil {
			j.Stack.Push(newChildFrame(f.Node.Callee))
			return false, nil
		}
		callee := f.ChildResult.Value()
		f.ChildResult = nil
		if callee.Kind() != value.Func {
			return false, &NotCallableError{}
		}
		f.scratch = &callState{fn: callee.FuncDetail()}
		f.Step = callEvalArgs
		return false, nil
	case callEvalArgs:
		st := f.scratch.(*callState)
		if f.ChildResult != nil {
			st.args = append(st.args, f.ChildResult.Var)
			f.ChildResult = nil
			st.argIdx++
		}
		if st.argIdx < len(f.Node.CallArgs) {
			j.Stack.Push(newChildFrame(f.Node.CallArgs[st.argIdx]))
			return false, nil
		}
		f.Step = callInvoke
		return false, nil
	case callInvoke:
		st := f.scratch.(*callState)
		if len(st.args) > len(st.fn.Args) {
			return false, &ArityMismatchError{Func: st.fn.Name, Want: len(st.fn.Args), Got: len(st.args)}
		}
		if st.fn.Kind == value.Internal {
			result, err := st.fn.Host(j, st.args)
			if err != nil {
				return false, err
			}
			v, _ := result.(*value.Value)
			if v == nil {
				v = value.NewNil()
			}
			f.Partial = returnOf(v)
			return true, nil
		}
		j.PushScope(ScopeFunc, st.fn.Name)
		scope := j.Scope()
		for i, decl := range st.fn.Args {
			if i < len(st.args) {
				scope.JoinVariable(value.NewVariable(decl.Name, st.args[i].Get()))
				continue
			}
			def := decl.Default
			if def == nil {
				def = value.NewNil()
			}
			scope.JoinVariable(value.NewVariable(decl.Name, def))
		}
		body, _ := st.fn.Body.(*ast.Node)
		if body == nil {
			j.PopScope()
			f.Partial = returnOf(value.NewNil())
			return true, nil
		}
		f.Step = callAwaitBody
		j.Stack.Push(NewFrame(body))
		return false, nil
	default: // callAwaitBody
		j.PopScope()
		if f.pendingReturn != nil {
			f.Partial = f.pendingReturn
			f.pendingReturn = nil
			return true, nil
		}
		f.ChildResult = nil
		f.Partial = returnOf(value.NewNil())
		return true, nil
	}
}

// stepFunctionDef evaluates a function-definition expression: builds a
// Function detail from the node's declared body/args and binds it under
// Name in the current scope.
func stepFunctionDef(d *Driver, j *Job, f *Frame) (bool, error) {
	fn := value.NewExternalFunction(f.Node.Name, f.Node.Args, f.Node.Body)
	if f.Node.Name != "" {
		j.Scope().JoinVariable(value.NewVariable(f.Node.Name, value.NewFunc(fn)))
	}
	f.Partial = returnOf(value.NewFunc(fn))
	return true, nil
}

// stepSetDef evaluates a set definition: runs its body in a fresh SET
// scope to populate default member bindings, then captures that scope's
// variables into a SetDetail bound under Name in the enclosing scope.
func stepSetDef(d *Driver, j *Job, f *Frame) (bool, error) {
	if f.Step == 0 {
		j.PushScope(ScopeSet, f.Node.Name)
		f.Step = 1
		if f.Node.Body != nil {
			j.Stack.Push(NewFrame(f.Node.Body))
			return false, nil
		}
		return false, nil
	}
	scope := j.Scope()
	set := value.NewSetDetail(f.Node.Name)
	for name, sym := range scope.symbols {
		if sym.Kind == SymbolVariable {
			set.Members[name] = value.NewVariable(name, sym.Var.Get())
		}
	}
	j.PopScope()
	j.Scope().JoinSet(f.Node.Name, set)
	f.Partial = returnOf(value.NewNil())
	return true, nil
}

// stepFunctionSuffix resolves a base expression followed by a chain of
// subscript/property accessors, yielding the final element's variable.
func stepFunctionSuffix(d *Driver, j *Job, f *Frame) (bool, error) {
	type suffixState struct {
		cur         *value.Variable
		idx         int
		awaitingKey bool
	}
	if f.scratch == nil {
		if f.ChildResult == nil {
			j.Stack.Push(newChildFrame(f.Node.Base))
			return false, nil
		}
		f.scratch = &suffixState{cur: f.ChildResult.Var}
		f.ChildResult = nil
	}
	st := f.scratch.(*suffixState)

	if st.awaitingKey {
		st.awaitingKey = false
		keyVal := f.ChildResult.Value()
		f.ChildResult = nil
		arr := st.cur.Get().ArrayValue()
		if arr == nil {
			return false, &value.IndexOutOfRangeError{Key: keyVal}
		}
		elemVal, ok := arr.Get(keyVal)
		if !ok {
			return false, &value.IndexOutOfRangeError{Key: keyVal}
		}
		st.cur = value.NewVariable("", elemVal)
		st.idx++
	}

	if st.idx >= len(f.Node.Accessor) {
		f.Partial = returnOfVar(st.cur)
		return true, nil
	}
	acc := f.Node.Accessor[st.idx]
	if acc.IsProperty {
		obj := st.cur.Get().ObjectInstance()
		if obj == nil {
			return false, &value.IndexOutOfRangeError{Key: acc.Name}
		}
		member, ok := obj.Members[acc.Name]
		if !ok {
			return false, &value.IndexOutOfRangeError{Key: acc.Name}
		}
		st.cur = member
		st.idx++
		return false, nil
	}
	st.awaitingKey = true
	j.Stack.Push(newChildFrame(acc))
	return false, nil
}

// stepElementList builds an Array value from a bracketed element list
// (spec.md §3 "Array"): each child is keyed by its ElementKey if set, or
// by its position otherwise.
func stepElementList(d *Driver, j *Job, f *Frame) (bool, error) {
	if f.scratch == nil {
		f.scratch = value.NewArrayValue()
	}
	arr := f.scratch.(*value.ArrayValue)

	if f.ChildResult != nil {
		child := f.Node.Children[f.Step]
		var key *value.Value
		if child.ElementKey != "" {
			key = value.NewString(child.ElementKey)
		} else {
			key = value.NewInt(int64(f.Step))
		}
		arr.Set(key, f.ChildResult.Value())
		f.ChildResult = nil
		f.Step++
	}

	if f.Step >= len(f.Node.Children) {
		f.Partial = returnOf(value.NewArray(arr))
		return true, nil
	}
	j.Stack.Push(newChildFrame(f.Node.Children[f.Step]))
	return false, nil
}
