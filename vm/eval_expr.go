package vm

import (
	"github.com/Mu-L/Melon/ast"
	"github.com/Mu-L/Melon/value"
)

func init() {
	register(ast.KindExpression, stepWrapChild(func(n *ast.Node) *ast.Node { return n.Inner }))
	register(ast.KindFactor, stepWrapChild(func(n *ast.Node) *ast.Node { return n.Inner }))

	register(ast.KindLogicLow, stepBinary)
	register(ast.KindLogicHigh, stepBinary)
	register(ast.KindRelativeLow, stepBinary)
	register(ast.KindRelativeHigh, stepBinary)
	register(ast.KindMove, stepBinary)
	register(ast.KindAddSub, stepBinary)
	register(ast.KindMulDiv, stepBinary)

	register(ast.KindAssign, stepAssign)
	register(ast.KindSuffix, stepSuffix)
	register(ast.KindLocate, stepLocate)
	register(ast.KindSpec, stepSpec)
}

// stepWrapChild builds a handler for single-child pass-through nodes
// (KindExpression wrapping the logic-low chain; KindFactor wrapping a
// parenthesized sub-expression): push the child once, then forward its
// result unchanged.
func stepWrapChild(child func(n *ast.Node) *ast.Node) StepHandler {
	return func(d *Driver, j *Job, f *Frame) (bool, error) {
		if f.ChildResult != nil {
			f.Partial = f.ChildResult
			f.ChildResult = nil
			return true, nil
		}
		j.Stack.Push(newChildFrame(child(f.Node)))
		f.ChildPending = true
		return false, nil
	}
}

// stepBinary drives any left-associated binary operator node (logic-low/
// high, relative-low/high, move, addsub, muldiv): step 0 evaluates Left,
// step 1 evaluates Right, step 2 applies the operator.
func stepBinary(d *Driver, j *Job, f *Frame) (bool, error) {
	switch f.Step {
	case 0:
		j.Stack.Push(newChildFrame(f.Node.Left))
		f.Step = 1
		return false, nil
	case 1:
		f.scratch = f.ChildResult.Value()
		f.ChildResult = nil
		j.Stack.Push(newChildFrame(f.Node.Right))
		f.Step = 2
		return false, nil
	default:
		lhs := f.scratch.(*value.Value)
		rhs := f.ChildResult.Value()
		f.ChildResult = nil
		result, err := value.Binary(f.Node.Op, lhs, rhs)
		if err != nil {
			return false, err
		}
		f.Partial = returnOf(result)
		return true, nil
	}
}

// stepAssign handles spec.md §4.2's assignment family. Only identifier
// lvalues are supported; any other target (subscript, property) fails
// in lvalueOf.
func stepAssign(d *Driver, j *Job, f *Frame) (bool, error) {
	switch f.Step {
	case 0:
		j.Stack.Push(newChildFrame(f.Node.Right))
		f.Step = 1
		return false, nil
	default:
		rhs := f.ChildResult.Value()
		f.ChildResult = nil

		variable, err := lvalueOf(j, f.Node.Left)
		if err != nil {
			return false, err
		}
		if f.Node.Op == value.OpAssign {
			variable.Set(rhs)
			f.Partial = returnOfVar(variable)
			return true, nil
		}
		current := variable.Get()
		combined, err := value.Binary(compoundOperatorOf(f.Node.Op), current, rhs)
		if err != nil {
			return false, err
		}
		variable.Set(combined)
		f.Partial = returnOfVar(variable)
		return true, nil
	}
}

// compoundOperatorOf maps a compound-assignment operator (+=, -=, ...)
// to the plain binary operator computing its right-hand combination.
func compoundOperatorOf(op value.OperatorKind) value.OperatorKind {
	switch op {
	case value.OpAddAssign:
		return value.OpAdd
	case value.OpSubAssign:
		return value.OpSub
	case value.OpMulAssign:
		return value.OpMul
	case value.OpDivAssign:
		return value.OpDiv
	case value.OpModAssign:
		return value.OpMod
	case value.OpShlAssign:
		return value.OpShl
	case value.OpShrAssign:
		return value.OpShr
	case value.OpAndAssign:
		return value.OpAndAssign
	case value.OpOrAssign:
		return value.OpOrAssign
	case value.OpXorAssign:
		return value.OpXorAssign
	default:
		return op
	}
}

// lvalueOf resolves an assignment target to the Variable it should
// write through: an identifier looks up (joining a fresh binding in the
// innermost scope if undefined, matching typical dynamic-scope script
// languages). Any other node kind returns an UndefinedSymbolError.
func lvalueOf(j *Job, n *ast.Node) (*value.Variable, error) {
	switch n.Kind {
	case ast.KindSpec:
		if n.SpecTag != ast.SpecIdentifier {
			return nil, &NotCallableError{}
		}
		if v, ok := j.Scope().LookupVariable(n.Name, n.Local); ok {
			return v, nil
		}
		v := value.NewVariable(n.Name, value.NewNil())
		j.Scope().JoinVariable(v)
		return v, nil
	default:
		return nil, &UndefinedSymbolError{Name: "<non-identifier lvalue>"}
	}
}

// stepSuffix handles postfix ++/--: evaluate the operand's lvalue,
// apply the operator in place, and yield the PRE-increment value as the
// return-expression (the usual postfix-operator contract).
func stepSuffix(d *Driver, j *Job, f *Frame) (bool, error) {
	variable, err := lvalueOf(j, f.Node.Operand)
	if err != nil {
		return false, err
	}
	before := variable.Get()
	op := value.OpAdd
	if f.Node.Op == value.OpSuffixDec {
		op = value.OpSub
	}
	result, err := value.Binary(op, before, value.NewInt(1))
	if err != nil {
		return false, err
	}
	variable.Set(result)
	f.Partial = returnOf(before)
	return true, nil
}

// stepLocate handles prefix ++/--, unary -, bitwise ~, logical !.
// Prefix ++/-- share the suffix machinery but yield the POST value.
func stepLocate(d *Driver, j *Job, f *Frame) (bool, error) {
	switch f.Node.Op {
	case value.OpPrefixInc, value.OpPrefixDec:
		variable, err := lvalueOf(j, f.Node.Operand)
		if err != nil {
			return false, err
		}
		op := value.OpAdd
		if f.Node.Op == value.OpPrefixDec {
			op = value.OpSub
		}
		result, err := value.Binary(op, variable.Get(), value.NewInt(1))
		if err != nil {
			return false, err
		}
		variable.Set(result)
		f.Partial = returnOf(result)
		return true, nil
	default:
		if f.ChildResult != nil {
			operand := f.ChildResult.Value()
			f.ChildResult = nil
			result, err := value.Unary(f.Node.Op, operand)
			if err != nil {
				return false, err
			}
			f.Partial = returnOf(result)
			return true, nil
		}
		j.Stack.Push(newChildFrame(f.Node.Operand))
		return false, nil
	}
}

// stepSpec resolves an atom: a literal yields itself; an identifier
// resolves through scope lookup.
func stepSpec(d *Driver, j *Job, f *Frame) (bool, error) {
	switch f.Node.SpecTag {
	case ast.SpecLiteral:
		f.Partial = returnOf(f.Node.Literal)
	case ast.SpecIdentifier:
		v, ok := j.Scope().LookupVariable(f.Node.Name, f.Node.Local)
		if !ok {
			return false, &UndefinedSymbolError{Name: f.Node.Name}
		}
		f.Partial = returnOfVar(v)
	default:
		f.Partial = returnOf(value.NewNil())
	}
	return true, nil
}
