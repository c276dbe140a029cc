package vm

import (
	"testing"

	"github.com/Mu-L/Melon/ast"
	"github.com/Mu-L/Melon/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func litNode(v *value.Value) *ast.Node {
	return &ast.Node{Kind: ast.KindSpec, SpecTag: ast.SpecLiteral, Literal: v}
}

func identNode(name string) *ast.Node {
	return &ast.Node{Kind: ast.KindSpec, SpecTag: ast.SpecIdentifier, Name: name}
}

func binNode(kind ast.Kind, op value.OperatorKind, l, r *ast.Node) *ast.Node {
	return &ast.Node{Kind: kind, Op: op, Left: l, Right: r}
}

func assignNode(name string, op value.OperatorKind, rhs *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindAssign, Op: op, Left: identNode(name), Right: rhs}
}

func exprStmt(n *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindStatement, Inner: n}
}

func block(stmts ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindBlock, Children: stmts}
}

// runToCompletion pumps a job until its stack empties or it records an
// error, bounded by a generous tick cap so a broken test can't hang.
func runToCompletion(t *testing.T, d *Driver, j *Job) {
	t.Helper()
	for i := 0; i < 100000 && !j.Stack.Empty() && j.Err() == nil; i++ {
		require.NoError(t, d.Step(j))
	}
	require.Nil(t, j.Err())
}

func newTestJob(root *ast.Node) (*Driver, *Job) {
	d := &Driver{StepBudget: DefaultStepBudget}
	j := NewJob(1, "test.scr", root, DefaultStepBudget, 16)
	return d, j
}

func TestArithmeticPrecedence(t *testing.T) {
	// x = 2 * 3 + 4 => 10, represented as addsub(muldiv(2,3), 4)
	expr := binNode(ast.KindAddSub, value.OpAdd,
		binNode(ast.KindMulDiv, value.OpMul, litNode(value.NewInt(2)), litNode(value.NewInt(3))),
		litNode(value.NewInt(4)))
	root := block(exprStmt(assignNode("x", value.OpAssign, expr)))
	d, j := newTestJob(root)
	runToCompletion(t, d, j)
	assert.True(t, j.Stack.Empty())

	v, ok := j.Scope().LookupVariable("x", false)
	require.True(t, ok)
	assert.Equal(t, int64(10), v.Get().Int())
}

func TestAssignAndLookup(t *testing.T) {
	root := block(
		exprStmt(assignNode("x", value.OpAssign, litNode(value.NewInt(41)))),
		exprStmt(assignNode("x", value.OpAddAssign, litNode(value.NewInt(1)))),
	)
	d, j := newTestJob(root)
	runToCompletion(t, d, j)

	v, ok := j.Scope().LookupVariable("x", false)
	require.True(t, ok)
	assert.Equal(t, int64(42), v.Get().Int())
}

func TestIfBranchSelection(t *testing.T) {
	root := block(
		&ast.Node{
			Kind: ast.KindIf,
			Cond: litNode(value.NewBool(false)),
			Then: block(exprStmt(assignNode("x", value.OpAssign, litNode(value.NewInt(1))))),
			Else: block(exprStmt(assignNode("x", value.OpAssign, litNode(value.NewInt(2))))),
		},
	)
	d, j := newTestJob(root)
	runToCompletion(t, d, j)
	v, ok := j.Scope().LookupVariable("x", false)
	require.True(t, ok)
	assert.Equal(t, int64(2), v.Get().Int())
}

func TestWhileLoopCounts(t *testing.T) {
	// x = 0; while (x < 5) { x += 1 }
	root := block(
		exprStmt(assignNode("x", value.OpAssign, litNode(value.NewInt(0)))),
		&ast.Node{
			Kind: ast.KindWhile,
			Cond: binNode(ast.KindRelativeLow, value.OpLess, identNode("x"), litNode(value.NewInt(5))),
			Body: block(exprStmt(assignNode("x", value.OpAddAssign, litNode(value.NewInt(1))))),
		},
	)
	d, j := newTestJob(root)
	runToCompletion(t, d, j)
	v, ok := j.Scope().LookupVariable("x", false)
	require.True(t, ok)
	assert.Equal(t, int64(5), v.Get().Int())
}

func TestBreakExitsLoopEarly(t *testing.T) {
	// x = 0; while (true) { x += 1; if (x == 3) break }
	root := block(
		exprStmt(assignNode("x", value.OpAssign, litNode(value.NewInt(0)))),
		&ast.Node{
			Kind: ast.KindWhile,
			Cond: litNode(value.NewBool(true)),
			Body: block(
				exprStmt(assignNode("x", value.OpAddAssign, litNode(value.NewInt(1)))),
				&ast.Node{
					Kind: ast.KindIf,
					Cond: binNode(ast.KindRelativeHigh, value.OpEqual, identNode("x"), litNode(value.NewInt(3))),
					Then: block(&ast.Node{Kind: ast.KindStatement, Control: ast.ControlBreak}),
				},
			),
		},
	)
	d, j := newTestJob(root)
	runToCompletion(t, d, j)
	v, ok := j.Scope().LookupVariable("x", false)
	require.True(t, ok)
	assert.Equal(t, int64(3), v.Get().Int())
}

func TestFunctionCallAndReturn(t *testing.T) {
	// function double(n) { return n * 2 } ; r = double(21)
	doubleBody := block(
		&ast.Node{
			Kind:        ast.KindStatement,
			Control:     ast.ControlReturn,
			ReturnValue: binNode(ast.KindMulDiv, value.OpMul, identNode("n"), litNode(value.NewInt(2))),
		},
	)
	defineFn := &ast.Node{
		Kind: ast.KindFunctionDef,
		Name: "double",
		Args: []value.Arg{{Name: "n"}},
		Body: doubleBody,
	}
	call := &ast.Node{
		Kind:     ast.KindFunctionCall,
		Callee:   identNode("double"),
		CallArgs: []*ast.Node{litNode(value.NewInt(21))},
	}
	root := block(
		exprStmt(defineFn),
		exprStmt(assignNode("r", value.OpAssign, call)),
	)
	d, j := newTestJob(root)
	runToCompletion(t, d, j)

	v, ok := j.Scope().LookupVariable("r", false)
	require.True(t, ok)
	assert.Equal(t, int64(42), v.Get().Int())
}

func TestStepBudgetBoundsProgressPerPump(t *testing.T) {
	// A loop of 10,000 increments must not finish within a single
	// small-budget Pump call (spec.md §8 scenario 5's step-budget
	// property), but must finish eventually across repeated Pump calls.
	root := block(
		exprStmt(assignNode("x", value.OpAssign, litNode(value.NewInt(0)))),
		&ast.Node{
			Kind: ast.KindWhile,
			Cond: binNode(ast.KindRelativeLow, value.OpLess, identNode("x"), litNode(value.NewInt(10000))),
			Body: block(exprStmt(assignNode("x", value.OpAddAssign, litNode(value.NewInt(1))))),
		},
	)
	j := NewJob(1, "budget.scr", root, 8, 16)
	d := &Driver{StepBudget: 8}

	require.NoError(t, d.Pump(j))
	v, ok := j.Scope().LookupVariable("x", false)
	require.True(t, ok)
	assert.Less(t, v.Get().Int(), int64(10000), "an 8-step budget must not finish a 10,000-iteration loop in one pump")

	for i := 0; i < 100000 && !j.Stack.Empty(); i++ {
		require.NoError(t, d.Pump(j))
	}
	assert.Equal(t, int64(10000), v.Get().Int())
}

func TestForLoopCounts(t *testing.T) {
	// for (i = 0; i < 5; i += 1) { total += i }
	root := block(
		exprStmt(assignNode("total", value.OpAssign, litNode(value.NewInt(0)))),
		&ast.Node{
			Kind:   ast.KindFor,
			Init:   assignNode("i", value.OpAssign, litNode(value.NewInt(0))),
			Cond:   binNode(ast.KindRelativeLow, value.OpLess, identNode("i"), litNode(value.NewInt(5))),
			Update: assignNode("i", value.OpAddAssign, litNode(value.NewInt(1))),
			Body:   block(exprStmt(assignNode("total", value.OpAddAssign, identNode("i")))),
		},
	)
	d, j := newTestJob(root)
	runToCompletion(t, d, j)

	total, ok := j.Scope().LookupVariable("total", false)
	require.True(t, ok)
	assert.Equal(t, int64(10), total.Get().Int()) // 0+1+2+3+4

	i, ok := j.Scope().LookupVariable("i", false)
	require.True(t, ok)
	assert.Equal(t, int64(5), i.Get().Int())
}

func TestContinueRunsUpdateBeforeNextIteration(t *testing.T) {
	// for (i = 0; i < 5; i += 1) { if (i == 2) continue; total += i }
	// Regardless of the continue, i must still advance every iteration
	// (via Update) and the loop must still terminate at i == 5.
	root := block(
		exprStmt(assignNode("total", value.OpAssign, litNode(value.NewInt(0)))),
		&ast.Node{
			Kind:   ast.KindFor,
			Init:   assignNode("i", value.OpAssign, litNode(value.NewInt(0))),
			Cond:   binNode(ast.KindRelativeLow, value.OpLess, identNode("i"), litNode(value.NewInt(5))),
			Update: assignNode("i", value.OpAddAssign, litNode(value.NewInt(1))),
			Body: block(
				&ast.Node{
					Kind: ast.KindIf,
					Cond: binNode(ast.KindRelativeHigh, value.OpEqual, identNode("i"), litNode(value.NewInt(2))),
					Then: block(&ast.Node{Kind: ast.KindStatement, Control: ast.ControlContinue}),
				},
				exprStmt(assignNode("total", value.OpAddAssign, identNode("i"))),
			),
		},
	)
	d, j := newTestJob(root)
	runToCompletion(t, d, j)

	i, ok := j.Scope().LookupVariable("i", false)
	require.True(t, ok)
	assert.Equal(t, int64(5), i.Get().Int(), "update must run every iteration, including the one that continued")

	total, ok := j.Scope().LookupVariable("total", false)
	require.True(t, ok)
	assert.Equal(t, int64(8), total.Get().Int()) // 0+1+3+4, skipping i==2
}

func TestBreakExitsForLoopEarly(t *testing.T) {
	// for (i = 0; i < 100; i += 1) { if (i == 3) break; total += i }
	root := block(
		exprStmt(assignNode("total", value.OpAssign, litNode(value.NewInt(0)))),
		&ast.Node{
			Kind:   ast.KindFor,
			Init:   assignNode("i", value.OpAssign, litNode(value.NewInt(0))),
			Cond:   binNode(ast.KindRelativeLow, value.OpLess, identNode("i"), litNode(value.NewInt(100))),
			Update: assignNode("i", value.OpAddAssign, litNode(value.NewInt(1))),
			Body: block(
				&ast.Node{
					Kind: ast.KindIf,
					Cond: binNode(ast.KindRelativeHigh, value.OpEqual, identNode("i"), litNode(value.NewInt(3))),
					Then: block(&ast.Node{Kind: ast.KindStatement, Control: ast.ControlBreak}),
				},
				exprStmt(assignNode("total", value.OpAddAssign, identNode("i"))),
			),
		},
		exprStmt(assignNode("after", value.OpAssign, litNode(value.NewInt(1)))),
	)
	d, j := newTestJob(root)
	runToCompletion(t, d, j)

	total, ok := j.Scope().LookupVariable("total", false)
	require.True(t, ok)
	assert.Equal(t, int64(3), total.Get().Int()) // 0+1+2, stops before adding 3

	after, ok := j.Scope().LookupVariable("after", false)
	require.True(t, ok)
	assert.Equal(t, int64(1), after.Get().Int(), "the statement following the loop must still run")
}
