package vm

import (
	"testing"

	"github.com/Mu-L/Melon/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeLookupInnerToOuter(t *testing.T) {
	outer := NewScope(ScopeSet, "outer", nil, nil)
	outer.JoinVariable(value.NewVariable("x", value.NewInt(1)))

	inner := NewScope(ScopeFunc, "inner", nil, outer)
	v, ok := inner.LookupVariable("x", false)
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Get().Int())
}

func TestScopeShadowing(t *testing.T) {
	outer := NewScope(ScopeSet, "outer", nil, nil)
	outer.JoinVariable(value.NewVariable("x", value.NewInt(1)))

	inner := NewScope(ScopeFunc, "inner", nil, outer)
	inner.JoinVariable(value.NewVariable("x", value.NewInt(2)))

	v, ok := inner.LookupVariable("x", false)
	require.True(t, ok)
	assert.Equal(t, int64(2), v.Get().Int(), "the innermost binding shadows the outer one")
}

func TestScopeLocalFlagRestrictsLookup(t *testing.T) {
	outer := NewScope(ScopeSet, "outer", nil, nil)
	outer.JoinVariable(value.NewVariable("x", value.NewInt(1)))

	inner := NewScope(ScopeFunc, "inner", nil, outer)
	_, ok := inner.LookupVariable("x", true)
	assert.False(t, ok, "local lookup must not escape to the outer scope")
}

func TestSetsAndVariablesShareNamespace(t *testing.T) {
	s := NewScope(ScopeSet, "s", nil, nil)
	s.JoinSet("Point", value.NewSetDetail("Point"))

	kind, _, ok := s.Lookup("Point", false)
	require.True(t, ok)
	assert.Equal(t, SymbolSet, kind)

	_, ok = s.LookupVariable("Point", false)
	assert.False(t, ok, "a set binding must not resolve through the variable-only lookup helper")
}
