package connector

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shaban/modconnector/model"
)

func TestSaveThenLoadCurrentPresetRoundTrips(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	require.NoError(t, c.SetBlockParameter(0, 0, "gain", -9, SceneModeIgnore))

	dir := t.TempDir()
	path := filepath.Join(dir, "preset.json")
	require.NoError(t, c.SaveCurrentPresetToFile(path))
	require.Equal(t, model.Clean, c.Current().Dirty)

	require.NoError(t, c.LoadCurrentPresetFromFile(path, true))
	b := c.Current().Block(0, 0)
	require.Equal(t, "http://example.org/mono", b.URI)
	require.Equal(t, float32(-9), b.Parameters[0].Value)
}

func TestReorderPresetsRemapsActiveIndex(t *testing.T) {
	c := newTestController(t, 1)
	require.Equal(t, 0, c.Current().PresetIndex)

	require.NoError(t, c.ReorderPresets(0, 2))
	require.Equal(t, 2, c.Current().PresetIndex)
}

func TestSwapPresetsRemapsActiveIndex(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.SwapPresets(0, 1))
	require.Equal(t, 1, c.Current().PresetIndex)
}

func TestSwitchPresetRejectsAlreadyActive(t *testing.T) {
	c := newTestController(t, 1)
	err := c.SwitchPreset(0)
	require.Error(t, err)
}

func TestSwitchPresetRejectsEmptySlot(t *testing.T) {
	c := newTestController(t, 1)
	c.bank.Presets[1] = nil
	err := c.SwitchPreset(1)
	require.Error(t, err)
}
