package vm

import (
	"github.com/Mu-L/Melon/ast"
	"github.com/Mu-L/Melon/value"
)

func init() {
	register(ast.KindStatement, stepStatement)
	register(ast.KindBlock, stepStatementList)
	register(ast.KindSetBodyStmt, stepStatementList)
	register(ast.KindWhile, stepWhile)
	register(ast.KindFor, stepFor)
	register(ast.KindIf, stepIf)
	register(ast.KindSwitch, stepSwitch)
	register(ast.KindSwitchStm, stepSwitchArm)
}

// stepStatement handles a single statement: a break/continue/return
// control transfer, or (Control == ControlNone) either a statement list
// in Children, run like a block, or a wrapped expression in Inner,
// evaluated for its side effect.
func stepStatement(d *Driver, j *Job, f *Frame) (bool, error) {
	switch f.Node.Control {
	case ast.ControlBreak:
		return false, &unwindSignal{kind: unwindBreak}
	case ast.ControlContinue:
		return false, &unwindSignal{kind: unwindContinue}
	case ast.ControlReturn:
		if f.Node.ReturnValue == nil {
			j.returnCarry = returnOf(value.NewNil())
			return false, &unwindSignal{kind: unwindReturn}
		}
		if f.ChildResult == nil {
			j.Stack.Push(newChildFrame(f.Node.ReturnValue))
			return false, nil
		}
		j.returnCarry = f.ChildResult
		f.ChildResult = nil
		return false, &unwindSignal{kind: unwindReturn}
	default:
		if len(f.Node.Children) > 0 {
			return stepStatementList(d, j, f)
		}
		if f.ChildResult != nil {
			f.Partial = f.ChildResult
			f.ChildResult = nil
			return true, nil
		}
		if f.Node.Inner == nil {
			f.Partial = returnOf(value.NewNil())
			return true, nil
		}
		j.Stack.Push(newChildFrame(f.Node.Inner))
		return false, nil
	}
}

// stepStatementList drives KindBlock/KindSetBodyStmt: run each child in
// order, discarding results, and finish once all children have run.
func stepStatementList(d *Driver, j *Job, f *Frame) (bool, error) {
	if f.ChildResult != nil {
		f.ChildResult = nil
		f.Step++
	}
	if f.Step >= len(f.Node.Children) {
		f.Partial = returnOf(value.NewNil())
		return true, nil
	}
	j.Stack.Push(newChildFrame(f.Node.Children[f.Step]))
	return false, nil
}

// stepWhile implements spec.md §4.3: "while pushes its condition, on
// true pushes its body then re-pushes itself; on false pops." Modeled
// here with two sub-steps (0: evaluate condition, 1: run body) instead
// of a literal self-repush, since the frame already persists on the
// stack across ticks.
func stepWhile(d *Driver, j *Job, f *Frame) (bool, error) {
	switch f.Step {
	case 0:
		if f.ChildResult == nil {
			j.Stack.Push(newChildFrame(f.Node.Cond))
			return false, nil
		}
		cond := f.ChildResult.Value().Truthy()
		f.ChildResult = nil
		if !cond {
			f.Partial = returnOf(value.NewNil())
			return true, nil
		}
		f.Step = 1
		j.Stack.Push(newChildFrame(f.Node.Body))
		return false, nil
	default:
		f.ChildResult = nil
		f.Step = 0
		return false, nil
	}
}

// stepFor implements the four sub-steps spec.md §4.3 names: init,
// condition, body, update.
func stepFor(d *Driver, j *Job, f *Frame) (bool, error) {
	const (
		subInit = iota
		subCond
		subBody
		subUpdate
	)
	switch f.Step {
	case subInit:
		if f.Node.Init == nil {
			f.Step = subCond
			return false, nil
		}
		if f.ChildResult == nil {
			j.Stack.Push(newChildFrame(f.Node.Init))
			return false, nil
		}
		f.ChildResult = nil
		f.Step = subCond
		return false, nil
	case subCond:
		if f.Node.Cond == nil {
			f.Step = subBody
			return false, nil
		}
		if f.ChildResult == nil {
			j.Stack.Push(newChildFrame(f.Node.Cond))
			return false, nil
		}
		cond := f.ChildResult.Value().Truthy()
		f.ChildResult = nil
		if !cond {
			f.Partial = returnOf(value.NewNil())
			return true, nil
		}
		f.Step = subBody
		return false, nil
	case subBody:
		if f.ChildResult == nil {
			j.Stack.Push(newChildFrame(f.Node.Body))
			return false, nil
		}
		f.ChildResult = nil
		f.Step = subUpdate
		return false, nil
	default:
		if f.Node.Update == nil {
			f.Step = subCond
			return false, nil
		}
		if f.ChildResult == nil {
			j.Stack.Push(newChildFrame(f.Node.Update))
			return false, nil
		}
		f.ChildResult = nil
		f.Step = subCond
		return false, nil
	}
}

// stepIf implements spec.md §4.3: "if pushes one of two branches by
// condition truthiness."
func stepIf(d *Driver, j *Job, f *Frame) (bool, error) {
	switch f.Step {
	case 0:
		if f.ChildResult == nil {
			j.Stack.Push(newChildFrame(f.Node.Cond))
			return false, nil
		}
		cond := f.ChildResult.Value().Truthy()
		f.ChildResult = nil
		f.Step = 1
		branch := f.Node.Else
		if cond {
			branch = f.Node.Then
		}
		if branch == nil {
			f.Partial = returnOf(value.NewNil())
			return true, nil
		}
		j.Stack.Push(newChildFrame(branch))
		return false, nil
	default:
		f.Partial = f.ChildResult
		if f.Partial == nil {
			f.Partial = returnOf(value.NewNil())
		}
		f.ChildResult = nil
		return true, nil
	}
}

// stepSwitch implements spec.md §4.3: "switch evaluates its expression
// then scans its arm list for an equality match; default arm is taken
// iff no arm matches."
func stepSwitch(d *Driver, j *Job, f *Frame) (bool, error) {
	type switchState struct {
		subject *value.Value
		armIdx  int
		matched bool
	}
	if f.scratch == nil {
		if f.ChildResult == nil {
			j.Stack.Push(newChildFrame(f.Node.Subject))
			return false, nil
		}
		f.scratch = &switchState{subject: f.ChildResult.Value()}
		f.ChildResult = nil
	}
	st := f.scratch.(*switchState)

	if st.matched {
		f.ChildResult = nil
		f.Partial = returnOf(value.NewNil())
		return true, nil
	}

	var defaultArm *ast.Node
	for st.armIdx < len(f.Node.Arms) {
		arm := f.Node.Arms[st.armIdx]
		st.armIdx++
		if arm.IsDefault {
			defaultArm = arm
			continue
		}
		// Arm guards are constant expressions evaluated eagerly here since
		// they must be compared before deciding whether to enter the arm
		// body; a guard that itself blocks would violate "scan the arm
		// list" being a single synchronous step, which spec.md §4.3
		// assumes. Literal/identifier guards satisfy this in practice.
		guardVal, err := evalConstant(j, arm.Cond)
		if err != nil {
			return false, err
		}
		eq, err := value.Binary(value.OpEqual, st.subject, guardVal)
		if err != nil {
			return false, err
		}
		if eq.Bool() {
			st.matched = true
			j.Stack.Push(newChildFrame(arm))
			return false, nil
		}
	}
	if defaultArm != nil {
		st.matched = true
		j.Stack.Push(newChildFrame(defaultArm))
		return false, nil
	}
	f.Partial = returnOf(value.NewNil())
	return true, nil
}

// evalConstant synchronously evaluates a switch-arm guard, which the
// grammar restricts to a KindSpec literal or identifier so it can be
// compared without pushing a nested activation.
func evalConstant(j *Job, n *ast.Node) (*value.Value, error) {
	if n.Kind != ast.KindSpec {
		return nil, &UndefinedSymbolError{Name: "non-constant switch-arm guard"}
	}
	switch n.SpecTag {
	case ast.SpecLiteral:
		return n.Literal, nil
	case ast.SpecIdentifier:
		v, ok := j.Scope().LookupVariable(n.Name, n.Local)
		if !ok {
			return nil, &UndefinedSymbolError{Name: n.Name}
		}
		return v.Get(), nil
	default:
		return value.NewNil(), nil
	}
}

// stepSwitchArm runs one matched arm's body.
func stepSwitchArm(d *Driver, j *Job, f *Frame) (bool, error) {
	return stepStatementList(d, j, f)
}
