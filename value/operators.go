package value

// OperatorKind enumerates every entry of spec.md §4.2's "operator
// dispatch table". Kept as a small closed enum so the table below can be
// array-indexed rather than map-indexed, matching the teacher's
// direct-indexed convention for closed small key spaces (see
// reactor/fdtable.go's fds [maxDirectFDs]fdRecord).
type OperatorKind uint8

const (
	OpAssign OperatorKind = iota
	OpAddAssign
	OpSubAssign
	OpShlAssign
	OpShrAssign
	OpMulAssign
	OpDivAssign
	OpOrAssign
	OpAndAssign
	OpXorAssign
	OpModAssign
	OpLogicalOr
	OpLogicalAnd
	OpLogicalXor
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpShl
	OpShr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpSuffixDec
	OpSuffixInc
	OpSubscript
	OpProperty
	OpUnaryMinus
	OpBitwiseNot
	OpLogicalNot
	OpPrefixInc
	OpPrefixDec
	operatorKindCount
)

var operatorNames = [operatorKindCount]string{
	OpAssign: "=", OpAddAssign: "+=", OpSubAssign: "-=", OpShlAssign: "<<=",
	OpShrAssign: ">>=", OpMulAssign: "*=", OpDivAssign: "/=", OpOrAssign: "|=",
	OpAndAssign: "&=", OpXorAssign: "^=", OpModAssign: "%=", OpLogicalOr: "||",
	OpLogicalAnd: "&&", OpLogicalXor: "^^", OpEqual: "==", OpNotEqual: "!=",
	OpLess: "<", OpLessEqual: "<=", OpGreater: ">", OpGreaterEqual: ">=",
	OpShl: "<<", OpShr: ">>", OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/",
	OpMod: "%", OpSuffixDec: "--", OpSuffixInc: "++", OpSubscript: "[]",
	OpProperty: ".", OpUnaryMinus: "unary-", OpBitwiseNot: "~",
	OpLogicalNot: "!", OpPrefixInc: "++x", OpPrefixDec: "--x",
}

func (k OperatorKind) String() string {
	if k < operatorKindCount {
		return operatorNames[k]
	}
	return "op(?)"
}

// BinaryFunc computes a binary operator's result over two already-
// evaluated values, per spec.md §4.2: "Each entry takes the job context
// and two return-expressions and produces a new return-expression or a
// typed error." The job context is threaded through by the vm package's
// caller, not here: this table is pure value arithmetic.
type BinaryFunc func(lhs, rhs *Value) (*Value, error)

// binaryTable is the [operator][left-operand-kind] dispatch table. A nil
// entry is the spec's "missing entry" case and must surface as a
// *TypeMismatchError from the caller.
var binaryTable [operatorKindCount][kindCount]BinaryFunc

func init() {
	binaryTable[OpAdd][Int] = func(a, b *Value) (*Value, error) { return NewInt(a.Int() + intOf(b)), nil }
	binaryTable[OpAdd][Real] = func(a, b *Value) (*Value, error) { return NewReal(a.Real() + ToReal(b)), nil }
	binaryTable[OpAdd][String] = func(a, b *Value) (*Value, error) { return NewString(a.Str() + ToString(b)), nil }

	binaryTable[OpSub][Int] = func(a, b *Value) (*Value, error) { return NewInt(a.Int() - intOf(b)), nil }
	binaryTable[OpSub][Real] = func(a, b *Value) (*Value, error) { return NewReal(a.Real() - ToReal(b)), nil }

	binaryTable[OpMul][Int] = func(a, b *Value) (*Value, error) { return NewInt(a.Int() * intOf(b)), nil }
	binaryTable[OpMul][Real] = func(a, b *Value) (*Value, error) { return NewReal(a.Real() * ToReal(b)), nil }

	binaryTable[OpDiv][Int] = func(a, b *Value) (*Value, error) {
		d := intOf(b)
		if d == 0 {
			return nil, &DivideByZeroError{}
		}
		return NewInt(a.Int() / d), nil
	}
	binaryTable[OpDiv][Real] = func(a, b *Value) (*Value, error) {
		d := ToReal(b)
		if d == 0 {
			return nil, &DivideByZeroError{}
		}
		return NewReal(a.Real() / d), nil
	}

	binaryTable[OpMod][Int] = func(a, b *Value) (*Value, error) {
		d := intOf(b)
		if d == 0 {
			return nil, &DivideByZeroError{}
		}
		return NewInt(a.Int() % d), nil
	}

	binaryTable[OpShl][Int] = func(a, b *Value) (*Value, error) { return NewInt(a.Int() << uint64(intOf(b))), nil }
	binaryTable[OpShr][Int] = func(a, b *Value) (*Value, error) { return NewInt(a.Int() >> uint64(intOf(b))), nil }

	binaryTable[OpLess][Int] = cmpInt(func(a, b int64) bool { return a < b })
	binaryTable[OpLess][Real] = cmpReal(func(a, b float64) bool { return a < b })
	binaryTable[OpLess][String] = cmpStr(func(a, b string) bool { return a < b })
	binaryTable[OpLessEqual][Int] = cmpInt(func(a, b int64) bool { return a <= b })
	binaryTable[OpLessEqual][Real] = cmpReal(func(a, b float64) bool { return a <= b })
	binaryTable[OpLessEqual][String] = cmpStr(func(a, b string) bool { return a <= b })
	binaryTable[OpGreater][Int] = cmpInt(func(a, b int64) bool { return a > b })
	binaryTable[OpGreater][Real] = cmpReal(func(a, b float64) bool { return a > b })
	binaryTable[OpGreater][String] = cmpStr(func(a, b string) bool { return a > b })
	binaryTable[OpGreaterEqual][Int] = cmpInt(func(a, b int64) bool { return a >= b })
	binaryTable[OpGreaterEqual][Real] = cmpReal(func(a, b float64) bool { return a >= b })
	binaryTable[OpGreaterEqual][String] = cmpStr(func(a, b string) bool { return a >= b })

	for k := Kind(0); k < kindCount; k++ {
		binaryTable[OpEqual][k] = func(a, b *Value) (*Value, error) { return NewBool(equalValues(a, b)), nil }
		binaryTable[OpNotEqual][k] = func(a, b *Value) (*Value, error) { return NewBool(!equalValues(a, b)), nil }
		binaryTable[OpLogicalOr][k] = func(a, b *Value) (*Value, error) { return NewBool(a.Truthy() || b.Truthy()), nil }
		binaryTable[OpLogicalAnd][k] = func(a, b *Value) (*Value, error) { return NewBool(a.Truthy() && b.Truthy()), nil }
		binaryTable[OpLogicalXor][k] = func(a, b *Value) (*Value, error) { return NewBool(a.Truthy() != b.Truthy()), nil }
	}

	binaryTable[OpAndAssign][Int] = func(a, b *Value) (*Value, error) { return NewInt(a.Int() & intOf(b)), nil }
	binaryTable[OpOrAssign][Int] = func(a, b *Value) (*Value, error) { return NewInt(a.Int() | intOf(b)), nil }
	binaryTable[OpXorAssign][Int] = func(a, b *Value) (*Value, error) { return NewInt(a.Int() ^ intOf(b)), nil }
}

func intOf(v *Value) int64 { return ToInt(v) }

func cmpInt(f func(a, b int64) bool) BinaryFunc {
	return func(a, b *Value) (*Value, error) { return NewBool(f(a.Int(), ToInt(b))), nil }
}

func cmpReal(f func(a, b float64) bool) BinaryFunc {
	return func(a, b *Value) (*Value, error) { return NewBool(f(a.Real(), ToReal(b))), nil }
}

func cmpStr(f func(a, b string) bool) BinaryFunc {
	return func(a, b *Value) (*Value, error) { return NewBool(f(a.Str(), ToString(b))), nil }
}

func equalValues(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case Nil:
		return true
	case Int:
		return a.Int() == b.Int()
	case Bool:
		return a.Bool() == b.Bool()
	case Real:
		return a.Real() == b.Real()
	case String:
		return a.Str() == b.Str()
	case Object:
		return a.ObjectInstance() == b.ObjectInstance()
	case Func:
		return a.FuncDetail() == b.FuncDetail()
	case Array:
		return a.ArrayValue() == b.ArrayValue()
	default:
		return false
	}
}

// UnaryFunc computes a unary/prefix/suffix operator's result.
type UnaryFunc func(v *Value) (*Value, error)

var unaryTable [operatorKindCount][kindCount]UnaryFunc

func init() {
	unaryTable[OpUnaryMinus][Int] = func(v *Value) (*Value, error) { return NewInt(-v.Int()), nil }
	unaryTable[OpUnaryMinus][Real] = func(v *Value) (*Value, error) { return NewReal(-v.Real()), nil }
	unaryTable[OpBitwiseNot][Int] = func(v *Value) (*Value, error) { return NewInt(^v.Int()), nil }
	for k := Kind(0); k < kindCount; k++ {
		unaryTable[OpLogicalNot][k] = func(v *Value) (*Value, error) { return NewBool(!v.Truthy()), nil }
	}
}

// Binary looks up and applies a binary operator, returning
// *TypeMismatchError per spec.md §4.2 when no entry exists for op/kind.
func Binary(op OperatorKind, lhs, rhs *Value) (*Value, error) {
	fn := binaryTable[op][lhs.Kind()]
	if fn == nil {
		return nil, &TypeMismatchError{Operator: op, Kind: lhs.Kind()}
	}
	return fn(lhs, rhs)
}

// Unary looks up and applies a unary operator.
func Unary(op OperatorKind, v *Value) (*Value, error) {
	fn := unaryTable[op][v.Kind()]
	if fn == nil {
		return nil, &TypeMismatchError{Operator: op, Kind: v.Kind()}
	}
	return fn(v)
}
