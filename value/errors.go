package value

import "fmt"

// TypeMismatchError is raised when an operator has no dispatch-table entry
// for a value's kind (spec.md §4.2 "Operator dispatch table": "A missing
// entry for a given operator/type is a typed runtime error").
type TypeMismatchError struct {
	Operator OperatorKind
	Kind     Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("value: operator %s not defined for %s", e.Operator, e.Kind)
}

// IndexOutOfRangeError is raised by a failed array subscript or object
// property lookup.
type IndexOutOfRangeError struct {
	Key any
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("value: index out of range: %v", e.Key)
}

// DivideByZeroError is raised by / and % on a zero divisor.
type DivideByZeroError struct{}

func (e *DivideByZeroError) Error() string { return "value: division by zero" }
