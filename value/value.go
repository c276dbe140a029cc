package value

import "fmt"

// Kind is the tag of the sum type spec.md §3 "Value" describes. Kept as a
// small closed enum (not an interface) so operator dispatch can switch on
// it directly, per spec.md §9 "Polymorphism": "sum-type dispatch... rather
// than per-value virtual dispatch."
type Kind uint8

const (
	Nil Kind = iota
	Int
	Bool
	Real
	String
	Object
	Func
	Array
	kindCount
)

func (k Kind) String() string {
	switch k {
	case Nil:
		return "nil"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Real:
		return "real"
	case String:
		return "string"
	case Object:
		return "object"
	case Func:
		return "function"
	case Array:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is the tagged-union cell of spec.md §3. Every Value begins at
// refcount 1 on creation (spec.md §4.2 "Refcount rules"); callers that
// want to hold it for longer than the constructing expression must call
// [Value.Retain], and must call [Value.Release] exactly once per Retain
// (and once for the initial creation) when done.
//
// Pointer-typed fields are grouped first, matching the teacher's
// alignment-conscious struct layout convention seen throughout
// eventloop/loop.go and poller_linux.go ("// betteralign:ignore" /
// field-ordering comments).
type Value struct { // betteralign:ignore
	obj *ObjectInstance
	fn  *Function
	arr *ArrayValue

	str string // immutable, shared — Go strings already are

	i64 int64
	f64 float64

	refs int32
	kind Kind
	bl   bool
}

// NewNil returns a fresh NIL value at refcount 1.
func NewNil() *Value { return &Value{kind: Nil, refs: 1} }

// NewInt returns a fresh INT value at refcount 1.
func NewInt(i int64) *Value { return &Value{kind: Int, i64: i, refs: 1} }

// NewBool returns a fresh BOOL value at refcount 1.
func NewBool(b bool) *Value { return &Value{kind: Bool, bl: b, refs: 1} }

// NewReal returns a fresh REAL value at refcount 1.
func NewReal(f float64) *Value { return &Value{kind: Real, f64: f, refs: 1} }

// NewString returns a fresh STRING value at refcount 1. The backing Go
// string is already immutable and may be shared freely.
func NewString(s string) *Value { return &Value{kind: String, str: s, refs: 1} }

// NewObject returns a fresh OBJECT value wrapping an instance. It does
// not retain the owning set again; the instance already holds it.
func NewObject(o *ObjectInstance) *Value {
	return &Value{kind: Object, obj: o, refs: 1}
}

// NewFunc returns a fresh FUNC value wrapping a function detail.
func NewFunc(f *Function) *Value { return &Value{kind: Func, fn: f, refs: 1} }

// NewArray returns a fresh ARRAY value wrapping an array.
func NewArray(a *ArrayValue) *Value { return &Value{kind: Array, arr: a, refs: 1} }

// Kind reports the value's tag.
func (v *Value) Kind() Kind { return v.kind }

// RefCount reports the current reference count, for tests asserting
// spec.md §8's refcount invariant.
func (v *Value) RefCount() int32 { return v.refs }

// Retain increments the refcount and returns v, for fluent call sites
// (variable.Set(val.Retain())).
func (v *Value) Retain() *Value {
	if v == nil {
		return v
	}
	v.refs++
	return v
}

// Release decrements the refcount; at zero it recursively releases
// whatever the value owns (spec.md §4.2 "Refcount rules": "recursively,
// its interior (set-detail refcount for objects; element trees for
// arrays...)").
func (v *Value) Release() {
	if v == nil {
		return
	}
	v.refs--
	if v.refs > 0 {
		return
	}
	switch v.kind {
	case Object:
		if v.obj != nil {
			v.obj.release()
		}
	case Array:
		if v.arr != nil {
			v.arr.release()
		}
	case Func:
		if v.fn != nil {
			v.fn.release()
		}
	}
}

// Int returns the INT payload; valid only when Kind() == Int.
func (v *Value) Int() int64 { return v.i64 }

// Bool returns the BOOL payload; valid only when Kind() == Bool.
func (v *Value) Bool() bool { return v.bl }

// Real returns the REAL payload; valid only when Kind() == Real.
func (v *Value) Real() float64 { return v.f64 }

// Str returns the STRING payload; valid only when Kind() == String.
func (v *Value) Str() string { return v.str }

// ObjectInstance returns the OBJECT payload; valid only when Kind() == Object.
func (v *Value) ObjectInstance() *ObjectInstance { return v.obj }

// FuncDetail returns the FUNC payload; valid only when Kind() == Func.
func (v *Value) FuncDetail() *Function { return v.fn }

// ArrayValue returns the ARRAY payload; valid only when Kind() == Array.
func (v *Value) ArrayValue() *ArrayValue { return v.arr }

// Truthy implements spec.md §4.2 "Truthiness": NIL, BOOL(false), INT(0),
// REAL(0), and empty STRING are false; everything else, true.
func (v *Value) Truthy() bool {
	switch v.kind {
	case Nil:
		return false
	case Bool:
		return v.bl
	case Int:
		return v.i64 != 0
	case Real:
		return v.f64 != 0
	case String:
		return v.str != ""
	default:
		// spec.md §9 "Open questions": objects and functions are true
		// (non-nil) by default; arrays follow the same rule here.
		return true
	}
}
