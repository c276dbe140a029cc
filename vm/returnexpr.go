package vm

import "github.com/Mu-L/Melon/value"

// ReturnExprKind distinguishes the two shapes spec.md §3's
// "Return-expression" can take.
type ReturnExprKind uint8

const (
	// ReturnVariable is an already-evaluated datum: a reference to a
	// Variable (which may be a freshly-synthesized temporary).
	ReturnVariable ReturnExprKind = iota
	// ReturnCall is a not-yet-invoked callable capture: the callee
	// function plus evaluated argument variables. The step-handlers in
	// this package do not produce it; stepFunctionCall invokes the callee
	// and yields a ReturnVariable.
	ReturnCall
)

// ReturnExpr is the result slot of an evaluated AST node (spec.md §3).
type ReturnExpr struct {
	Kind ReturnExprKind
	Var  *value.Variable
	Call *PendingCall
}

// PendingCall is a not-yet-invoked callable capture: the ReturnCall
// payload of a ReturnExpr.
type PendingCall struct {
	Callee *value.Function
	Args   []*value.Variable
}

// Value resolves a ReturnExpr to its variable's current value. It does
// not invoke a pending call: a nil ReturnExpr, or one with no Var (such
// as a ReturnCall), yields NIL. Most consumers (operators, assignment,
// conditionals) want this rather than the raw expression.
func (r *ReturnExpr) Value() *value.Value {
	if r == nil || r.Var == nil {
		return value.NewNil()
	}
	return r.Var.Get()
}

// returnOf wraps a bare value as a temporary, unnamed NORMAL variable —
// the usual shape of a return-expression freshly produced by an
// operator or literal.
func returnOf(v *value.Value) *ReturnExpr {
	return &ReturnExpr{Kind: ReturnVariable, Var: value.NewVariable("", v)}
}

func returnOfVar(v *value.Variable) *ReturnExpr {
	return &ReturnExpr{Kind: ReturnVariable, Var: v}
}
