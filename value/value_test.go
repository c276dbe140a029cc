package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthiness(t *testing.T) {
	cases := []struct {
		name string
		v    *Value
		want bool
	}{
		{"nil", NewNil(), false},
		{"bool false", NewBool(false), false},
		{"bool true", NewBool(true), true},
		{"int zero", NewInt(0), false},
		{"int nonzero", NewInt(-1), true},
		{"real zero", NewReal(0), false},
		{"real nonzero", NewReal(0.0001), true},
		{"string empty", NewString(""), false},
		{"string nonempty", NewString("x"), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.v.Truthy())
		})
	}
}

func TestRefcountRetainRelease(t *testing.T) {
	v := NewInt(42)
	require.EqualValues(t, 1, v.RefCount())
	v.Retain()
	assert.EqualValues(t, 2, v.RefCount())
	v.Release()
	assert.EqualValues(t, 1, v.RefCount())
}

func TestObjectRefcountCascadesToSetDetail(t *testing.T) {
	set := NewSetDetail("Point")
	set.Members["x"] = NewVariable("x", NewInt(0))
	require.EqualValues(t, 1, set.RefCount())

	o := NewObjectInstance(set)
	require.EqualValues(t, 2, set.RefCount(), "instantiation retains the set detail")

	ov := NewObject(o)
	ov.Release()
	assert.EqualValues(t, 1, set.RefCount(), "releasing the last object reference releases the set")
}
