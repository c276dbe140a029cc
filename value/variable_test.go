package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalVariableOwnsBinding(t *testing.T) {
	v1 := NewInt(1)
	va := NewVariable("a", v1)
	require.EqualValues(t, 2, v1.RefCount(), "NewVariable retains")

	v2 := NewInt(2)
	va.Set(v2)
	assert.EqualValues(t, 1, v1.RefCount(), "reassigning releases the prior binding")
	assert.EqualValues(t, 2, v2.RefCount())

	va.Unbind()
	assert.EqualValues(t, 1, v2.RefCount())
}

func TestReferVariableForwardsWrites(t *testing.T) {
	target := NewVariable("x", NewInt(10))
	alias := NewReferVariable("y", target)

	assert.Equal(t, int64(10), alias.Get().Int())

	alias.Set(NewInt(20))
	assert.Equal(t, int64(20), target.Get().Int(), "writes through a REFER variable land on the aliased cell")
	assert.Equal(t, int64(20), alias.Get().Int())
}

func TestBindConvertsNormalToRefer(t *testing.T) {
	owned := NewVariable("a", NewInt(5))
	other := NewVariable("b", NewInt(9))

	owned.Bind(other)
	assert.Equal(t, Refer, owned.Kind)
	assert.Equal(t, int64(9), owned.Get().Int())
}
