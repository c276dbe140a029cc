package ast

import "github.com/Mu-L/Melon/value"

// SpecTag distinguishes the atom kinds a KindSpec node can hold.
type SpecTag uint8

const (
	SpecLiteral SpecTag = iota
	SpecIdentifier
	SpecThis
)

// ControlKind tags a leaf KindStatement node as a loop/function control
// transfer rather than a plain child-statement list. break/continue/
// return are statement forms, not separate grammar productions, so they
// ride on KindStatement instead of growing the stack-node-type set.
type ControlKind uint8

const (
	ControlNone ControlKind = iota
	ControlBreak
	ControlContinue
	ControlReturn
)

// Node is one node of the fixed grammar spec.md §6 names. Field use
// varies by Kind; unused fields are left zero. A Node is immutable once
// parsed — the vm package never mutates it, only the stack activations
// that point at it.
type Node struct {
	Kind Kind
	Line int

	// KindStatement / KindBlock / KindSetBodyStmt / KindElementList:
	// an ordered list of child statements or elements.
	Children []*Node

	// KindStatement leaf form: break / continue / return. Control is
	// ControlNone for an ordinary statement, which carries either a
	// statement list in Children or a single expression in Inner.
	Control     ControlKind
	ReturnValue *Node // KindStatement + ControlReturn: optional expression

	// KindFunctionDef / KindSetDef: declared name.
	Name string
	// KindFunctionDef: ordered argument list.
	Args []value.Arg
	// KindFunctionDef / KindSetDef: body statement list.
	Body *Node

	// KindWhile / KindIf / KindSwitchStm (arm guard): condition expression.
	Cond *Node
	// KindIf: taken-on-true / taken-on-false branches.
	Then, Else *Node
	// KindFor: init, condition, update, body.
	Init, Update *Node

	// KindSwitch: scrutinee expression and ordered arm list.
	Subject *Node
	Arms    []*Node
	// KindSwitchStm: IsDefault marks the default arm, whose Cond is not
	// evaluated; every other arm needs a Cond guard.
	IsDefault bool

	// KindAssign / KindLogicLow / KindLogicHigh / KindRelativeLow /
	// KindRelativeHigh / KindMove / KindAddSub / KindMulDiv: binary
	// operator and its two operands. Chains are left-associated: a binary
	// node's Left may itself be a binary node of the same or higher
	// precedence Kind.
	Op          value.OperatorKind
	Left, Right *Node

	// KindSuffix / KindLocate: unary operator and its single operand.
	Operand *Node

	// KindSpec: atom tag, literal value (SpecLiteral), or identifier name
	// (SpecIdentifier).
	SpecTag SpecTag
	Literal *value.Value
	Local   bool // "local" flag restricting symbol lookup to innermost scope

	// KindFactor: the parenthesized sub-expression. KindExpression and
	// an ordinary KindStatement also wrap their single child here.
	Inner *Node

	// KindFunctionSuffix: base expression plus an ordered chain of
	// subscript/property accessors. An accessor with IsProperty set names
	// a member in its Name field and is not itself evaluated; otherwise
	// the accessor is an expression producing the subscript key.
	Base       *Node
	Accessor   []*Node
	IsProperty bool

	// KindFunctionCall: callee expression and ordered argument expressions.
	Callee   *Node
	CallArgs []*Node

	// KindElementList: an array-literal element's explicit string key, set
	// only when the source used key:value syntax; zero value means
	// "key by position".
	ElementKey string
}

// Statement list convenience constructor.
func NewStatementList(children ...*Node) *Node {
	return &Node{Kind: KindStatement, Children: children}
}
