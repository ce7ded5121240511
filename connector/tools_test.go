package connector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnableToolLoadsAndUnloads(t *testing.T) {
	c := newTestController(t, 1)

	require.NoError(t, c.EnableTool(0, "http://example.org/mono"))
	require.Equal(t, "http://example.org/mono", c.tools[0].URI)
	require.True(t, c.tools[0].Enabled)
	require.Len(t, c.tools[0].Parameters, 2)

	require.NoError(t, c.EnableTool(0, ""))
	require.Equal(t, "", c.tools[0].URI)
	require.False(t, c.tools[0].Enabled)
}

func TestEnableToolRejectsOutOfRangeIndex(t *testing.T) {
	c := newTestController(t, 1)
	err := c.EnableTool(-1, "http://example.org/mono")
	require.Error(t, err)
	err = c.EnableTool(1000, "http://example.org/mono")
	require.Error(t, err)
}

func TestSetToolParameterUpdatesModel(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.EnableTool(2, "http://example.org/mono"))
	require.NoError(t, c.SetToolParameter(2, "gain", -6))
	require.Equal(t, float32(-6), c.tools[2].Parameters[0].Value)
}

func TestSetToolParameterOnEmptySlotFails(t *testing.T) {
	c := newTestController(t, 1)
	err := c.SetToolParameter(3, "gain", -6)
	require.Error(t, err)
}

func TestResolveToolMatchesToolInstanceRange(t *testing.T) {
	c := newTestController(t, 1)
	idx, ok := c.ResolveTool(toolInstanceID(4))
	require.True(t, ok)
	require.Equal(t, 4, idx)

	_, ok = c.ResolveTool(ToolBaseID - 1)
	require.False(t, ok)
}
