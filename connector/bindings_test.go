package connector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddParameterBindingDefaultsRangeFromMeta(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	require.NoError(t, c.AddParameterBinding(0, 0, 0, "gain", 0, 0))

	bd := c.Current().Bindings[0]
	require.Len(t, bd.Parameters, 1)
	require.Equal(t, float32(-60), bd.Parameters[0].Min)
	require.Equal(t, float32(12), bd.Parameters[0].Max)
}

func TestSetBindingValueScalesIntoParameterRange(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	require.NoError(t, c.AddParameterBinding(0, 0, 0, "gain", -60, 12))

	require.NoError(t, c.SetBindingValue(0, 1, SceneModeIgnore))

	b := c.Current().Block(0, 0)
	idx := b.ParameterIndexForSymbol("gain")
	require.Equal(t, float32(12), b.Parameters[idx].Value)
}

func TestSetBindingValueRejectsOutOfRangeNormalizedValue(t *testing.T) {
	c := newTestController(t, 1)
	err := c.SetBindingValue(0, 1.5, SceneModeIgnore)
	require.Error(t, err)
}

func TestRemoveParameterBindingDropsEntry(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	require.NoError(t, c.AddParameterBinding(0, 0, 0, "gain", -60, 12))
	require.NoError(t, c.RemoveParameterBinding(0, 0))
	require.Empty(t, c.Current().Bindings[0].Parameters)
}

func TestReplaceBlockWithClearBindingsRemovesBindings(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	require.NoError(t, c.AddParameterBinding(0, 0, 0, "gain", -60, 12))

	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/stereo", true))
	require.Empty(t, c.Current().Bindings[0].Parameters)
}
