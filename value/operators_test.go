package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryArithmetic(t *testing.T) {
	r, err := Binary(OpAdd, NewInt(2), NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, int64(5), r.Int())

	r, err = Binary(OpAdd, NewString("foo"), NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, "foo1", r.Str())

	_, err = Binary(OpDiv, NewInt(1), NewInt(0))
	var divZero *DivideByZeroError
	require.ErrorAs(t, err, &divZero)
}

func TestBinaryMissingEntryIsTypeMismatch(t *testing.T) {
	_, err := Binary(OpShl, NewString("x"), NewInt(1))
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, String, mismatch.Kind)
	assert.Equal(t, OpShl, mismatch.Operator)
}

func TestUnaryOperators(t *testing.T) {
	r, err := Unary(OpUnaryMinus, NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, int64(-5), r.Int())

	r, err = Unary(OpLogicalNot, NewBool(false))
	require.NoError(t, err)
	assert.True(t, r.Bool())
}

func TestCoercions(t *testing.T) {
	assert.Equal(t, int64(1), ToInt(NewBool(true)))
	assert.Equal(t, int64(42), ToInt(NewString("42")))
	assert.Equal(t, int64(0), ToInt(NewString("not-a-number")))
	assert.Equal(t, "3.5", ToString(NewReal(3.5)))
	assert.Equal(t, float64(7), ToReal(NewInt(7)))
}
