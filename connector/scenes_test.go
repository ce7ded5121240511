package connector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSwitchSceneAppliesStoredValues(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	require.NoError(t, c.SwitchScene(1))
	require.NoError(t, c.SetBlockParameter(0, 0, "gain", -6, SceneModeAuto))
	require.NoError(t, c.SwitchScene(2))
	require.NoError(t, c.SwitchScene(1))

	b := c.Current().Block(0, 0)
	idx := b.ParameterIndexForSymbol("gain")
	require.Equal(t, float32(-6), b.Parameters[idx].Value)
}

func TestSwitchSceneRejectsAlreadyActive(t *testing.T) {
	c := newTestController(t, 1)
	err := c.SwitchScene(0)
	require.Error(t, err)
}

func TestSwapScenesExchangesValuesAndNames(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	require.NoError(t, c.RenameScene(1, "Verse"))
	require.NoError(t, c.RenameScene(2, "Chorus"))
	require.NoError(t, c.SwitchScene(1))
	require.NoError(t, c.SetBlockParameter(0, 0, "gain", -6, SceneModeAuto))
	require.NoError(t, c.SwitchScene(0))

	require.NoError(t, c.SwapScenes(1, 2))
	require.Equal(t, "Chorus", c.Current().SceneNames[1])
	require.Equal(t, "Verse", c.Current().SceneNames[2])

	b := c.Current().Block(0, 0)
	idx := b.ParameterIndexForSymbol("gain")
	v, used := b.SceneParamValue(2, idx)
	require.True(t, used)
	require.Equal(t, float32(-6), v)
}

func TestRenameSceneRejectsOutOfRange(t *testing.T) {
	c := newTestController(t, 1)
	err := c.RenameScene(99, "nope")
	require.Error(t, err)
}
