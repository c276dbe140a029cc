package value

// VariableKind distinguishes ownership semantics per spec.md §3
// "Variable": NORMAL owns its current binding, REFER aliases another
// variable's cell.
type VariableKind uint8

const (
	Normal VariableKind = iota
	Refer
)

// Variable is spec.md §3's "Variable": a name bound to a value (or, for
// REFER, bound to another Variable's cell), with a back-pointer to its
// containing set and prev/next links for list-style containment. Neither
// vm.Scope (a map of symbols) nor ArrayValue (a slice of elements)
// threads variables through these links.
type Variable struct {
	Name  string
	Kind  VariableKind
	cell  *Value
	alias *Variable

	Owner *SetDetail // containing set, nil for free-standing variables

	Prev, Next *Variable
}

// NewVariable creates a NORMAL variable bound to val, retaining it
// (spec.md §4.2 "Refcount rules": "A variable binding increments").
func NewVariable(name string, val *Value) *Variable {
	v := &Variable{Name: name, Kind: Normal}
	v.Set(val)
	return v
}

// NewReferVariable creates a REFER variable aliasing target's cell.
func NewReferVariable(name string, target *Variable) *Variable {
	return &Variable{Name: name, Kind: Refer, alias: target}
}

// Get resolves the variable's current value, following the alias chain
// for REFER variables.
func (v *Variable) Get() *Value {
	if v.Kind == Refer {
		if v.alias == nil {
			return nil
		}
		return v.alias.Get()
	}
	return v.cell
}

// Set rebinds the variable. For NORMAL, the prior binding is released and
// val retained (spec.md §4.2: "Assigning a value decrements the previous
// value's refcount and increments the new one"). For REFER, the write is
// forwarded to the aliased variable so every alias observes it.
func (v *Variable) Set(val *Value) {
	if v.Kind == Refer {
		if v.alias != nil {
			v.alias.Set(val)
		}
		return
	}
	if val == v.cell {
		return
	}
	old := v.cell
	if val != nil {
		val.Retain()
	}
	v.cell = val
	old.Release()
}

// Bind turns v into a REFER alias of target, dropping whatever v owned as
// a NORMAL variable first.
func (v *Variable) Bind(target *Variable) {
	if v.Kind == Normal && v.cell != nil {
		v.cell.Release()
		v.cell = nil
	}
	v.Kind = Refer
	v.alias = target
}

// Unbind releases a NORMAL variable's value (used when a variable leaves
// scope or a set/array element is deleted).
func (v *Variable) Unbind() {
	if v.Kind == Normal {
		v.cell.Release()
		v.cell = nil
	}
	v.alias = nil
}
