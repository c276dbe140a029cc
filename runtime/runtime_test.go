package runtime

import (
	"testing"

	"github.com/Mu-L/Melon/ast"
	"github.com/Mu-L/Melon/value"
	"github.com/Mu-L/Melon/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assignScript() *ast.Node {
	lhs := &ast.Node{Kind: ast.KindSpec, SpecTag: ast.SpecIdentifier, Name: "x"}
	rhs := &ast.Node{Kind: ast.KindSpec, SpecTag: ast.SpecLiteral, Literal: value.NewInt(7)}
	assign := &ast.Node{Kind: ast.KindAssign, Op: value.OpAssign, Left: lhs, Right: rhs}
	return &ast.Node{Kind: ast.KindBlock, Children: []*ast.Node{
		{Kind: ast.KindStatement, Inner: assign},
	}}
}

// TestSubmitScriptRunsToCompletion exercises the Runtime's reactor/driver
// wiring end to end: a submitted job must finish draining within a few
// heartbeats of Dispatch, at which point Stop ends the loop.
func TestSubmitScriptRunsToCompletion(t *testing.T) {
	rt, err := New(true, DefaultLimits())
	require.NoError(t, err)
	defer rt.Close()

	j := rt.SubmitScript(assignScript(), "inline.scr")

	prevOnDone := rt.Driver.OnJobDone
	rt.Driver.OnJobDone = func(done *vm.Job) {
		prevOnDone(done)
		rt.Stop()
	}

	require.NoError(t, rt.Run())

	v, ok := j.Scope().LookupVariable("x", false)
	require.True(t, ok)
	assert.Equal(t, int64(7), v.Get().Int())
}

func TestOpenChannelRoundTrip(t *testing.T) {
	rt, err := New(true, DefaultLimits())
	require.NoError(t, err)
	defer rt.Close()

	var received *value.Value
	c := rt.OpenChannel("to-host", func(v *value.Value) {
		received = v
	})

	require.NoError(t, c.SendFromScript(value.NewInt(9)))
	require.NotNil(t, received)
	assert.Equal(t, int64(9), received.Int())

	got, ok := rt.Channel("to-host")
	require.True(t, ok)
	assert.Same(t, c, got)

	rt.CloseChannel("to-host")
	_, ok = rt.Channel("to-host")
	assert.False(t, ok)
}

func TestNoopLoggerDiscardsEverything(t *testing.T) {
	l := NoopLogger{}
	assert.False(t, l.Enabled(LevelError))
	l.Log(Event{Level: LevelError, Message: "should be discarded"})
}
