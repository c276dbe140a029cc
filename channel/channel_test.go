package channel

import (
	"testing"

	"github.com/Mu-L/Melon/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendFromScriptInvokesHostHandlerSynchronously(t *testing.T) {
	var got *value.Value
	c := New("events", func(v *value.Value) { got = v })

	err := c.SendFromScript(value.NewInt(7))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.Int())
}

func TestHostSendWakesBlockedScriptReader(t *testing.T) {
	c := New("ping", nil)

	v, ok := c.ReadForScript()
	assert.False(t, ok)
	assert.Nil(t, v)

	woke := false
	c.WaitForScript(func() { woke = true })

	require.NoError(t, c.SendFromHost(value.NewString("hello")))
	assert.True(t, woke)

	v, ok = c.ReadForScript()
	require.True(t, ok)
	assert.Equal(t, "hello", v.Str())
}

func TestDoubleSendBeforeReadIsProtocolError(t *testing.T) {
	c := New("ch", nil)
	require.NoError(t, c.SendFromHost(value.NewInt(1)))

	err := c.SendFromHost(value.NewInt(2))
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
}
