package value

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDumpRendersRetainedValue exercises Dump on a value with an
// elevated refcount, checking that the payload is rendered and that no
// raw pointer address appears.
func TestDumpRendersRetainedValue(t *testing.T) {
	v := NewInt(42)
	v.Retain()

	out := Dump(v)
	require.NotEmpty(t, out)
	assert.Contains(t, out, "42")
	assert.NotContains(t, out, "0x", "DisablePointerAddresses must suppress raw pointer output")
}

// TestDumpRendersArrayGraph exercises Dump over an array value holding
// both an insertion-ordered int key and a string key, confirming the
// dump walks into the array's interior rather than stopping at the
// top-level Value wrapper.
func TestDumpRendersArrayGraph(t *testing.T) {
	arr := NewArrayValue()
	arr.Set(NewInt(0), NewString("first"))
	arr.Set(NewString("name"), NewString("melon"))

	out := Dump(NewArray(arr))
	require.NotEmpty(t, out)
	assert.True(t, strings.Contains(out, "first") && strings.Contains(out, "melon"),
		"dump must surface both array elements' values")
}

// TestDumpRendersObjectGraph exercises Dump over an object instance, its
// backing set, and a bound member variable, confirming the whole chain
// (Value -> ObjectInstance -> SetDetail/Members) is walked.
func TestDumpRendersObjectGraph(t *testing.T) {
	set := NewSetDetail("Point")
	set.Members["x"] = NewVariable("x", NewInt(1))
	set.Members["y"] = NewVariable("y", NewInt(2))

	obj := NewObjectInstance(set)
	set.Release() // NewObjectInstance retained its own reference

	out := Dump(NewObject(obj))
	require.NotEmpty(t, out)
	assert.Contains(t, out, "Point")
	assert.True(t, strings.Contains(out, "1") && strings.Contains(out, "2"),
		"dump must surface member values, not just the set name")
}
