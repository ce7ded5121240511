package connector

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shaban/modconnector/engineclient"
	"github.com/shaban/modconnector/model"
)

// testPlugins is a tiny in-memory catalog standing in for the out-of-scope
// plugin-metadata collaborator (spec §1/§6).
var testPlugins = map[string]model.PluginInfo{
	"http://example.org/mono": {
		URI: "http://example.org/mono", Name: "Mono FX",
		NumInputs: 1, NumOutputs: 1,
		Parameters: []model.ParameterInfo{
			{Symbol: "gain", Name: "Gain", Default: 0, Min: -60, Max: 12},
			{Symbol: "meter", Name: "Meter", IsOutput: true, Flags: FlagIsOutput},
		},
		Properties: []model.PropertyInfo{
			{URI: "http://example.org/mono#file", Name: "File", DefPath: ""},
		},
	},
	"http://example.org/stereo": {
		URI: "http://example.org/stereo", Name: "Stereo FX",
		NumInputs: 2, NumOutputs: 2,
		Parameters: []model.ParameterInfo{
			{Symbol: "mix", Name: "Mix", Default: 0.5, Min: 0, Max: 1},
		},
	},
}

func testLookup() model.PluginLookup {
	return model.PluginLookupFunc(func(uri string) (model.PluginInfo, bool) {
		info, ok := testPlugins[uri]
		return info, ok
	})
}

// newTestController dials the engine client in dummy mode (no real engine
// process involved, per engineclient's MOD_DEV_HOST switch) and constructs a
// Controller with rows parallel chain rows.
func newTestController(t *testing.T, rows int) *Controller {
	t.Helper()
	t.Setenv("MOD_DEV_HOST", "1")
	client, err := engineclient.Dial(engineclient.Config{})
	require.NoError(t, err)
	require.True(t, client.Dummy())

	c := New(client, testLookup(), rows)

	bank := model.Bank{}
	for i := range bank.Presets {
		bank.Presets[i] = model.NewPreset(rows)
	}
	bank.Presets[0].Chains[0].Capture = [2]string{"system:capture_1", "system:capture_2"}
	bank.Presets[0].Chains[0].Playback = [2]string{"system:playback_1", "system:playback_2"}
	require.NoError(t, c.hostClearAndLoadBank(bank, 0))
	return c
}

func TestReplaceBlockPassThroughThenMonoBlock(t *testing.T) {
	c := newTestController(t, 1)

	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	b := c.Current().Block(0, 0)
	require.Equal(t, "http://example.org/mono", b.URI)
	require.Equal(t, 1, c.Current().NumLoadedPlugins)
	require.Len(t, b.Parameters, 2)
}

func TestReplaceBlockWithEmptyClearsCell(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	require.NoError(t, c.ReplaceBlock(0, 0, "", true))
	require.True(t, c.Current().Block(0, 0).IsEmpty())
	require.Equal(t, 0, c.Current().NumLoadedPlugins)
}

func TestReplaceBlockUnknownPluginFails(t *testing.T) {
	c := newTestController(t, 1)
	err := c.ReplaceBlock(0, 0, "http://example.org/nope", true)
	require.Error(t, err)
	require.Equal(t, err, c.LastError())
}

func TestSetBlockParameterRejectsUnknownSymbol(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	err := c.SetBlockParameter(0, 0, "nope", 1, SceneModeAuto)
	require.Error(t, err)
}

func TestSetBlockParameterRejectsOutputPort(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	err := c.SetBlockParameter(0, 0, "meter", 1, SceneModeAuto)
	require.Error(t, err)
}

func TestSetBlockParameterCapturesSceneZeroBaselineOnFirstWrite(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	require.NoError(t, c.SwitchScene(1))

	require.NoError(t, c.SetBlockParameter(0, 0, "gain", -6, SceneModeAuto))

	b := c.Current().Block(0, 0)
	idx := b.ParameterIndexForSymbol("gain")
	baseline, used := b.SceneParamValue(0, idx)
	require.True(t, used)
	require.Equal(t, float32(0), baseline)

	v1, used1 := b.SceneParamValue(1, idx)
	require.True(t, used1)
	require.Equal(t, float32(-6), v1)
	require.Equal(t, float32(-6), b.Parameters[idx].Value)
}

func TestEnableBlockTogglesBypass(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	require.NoError(t, c.EnableBlock(0, 0, false, SceneModeAuto))
	require.False(t, c.Current().Block(0, 0).Enabled)
}

func TestReorderBlockMovesCellAndRemapsBindings(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	require.NoError(t, c.AddParameterBinding(0, 0, 0, "gain", -60, 12))

	require.NoError(t, c.ReorderBlock(0, 0, 2))

	require.True(t, c.Current().Block(0, 0).IsEmpty())
	require.Equal(t, "http://example.org/mono", c.Current().Block(0, 2).URI)
	require.Equal(t, 2, c.Current().Bindings[0].Parameters[0].Block)
}

func TestSwapBlockRowMovesBetweenRows(t *testing.T) {
	c := newTestController(t, 2)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	require.NoError(t, c.SwapBlockRow(0, 0, 1, 0))
	require.True(t, c.Current().Block(0, 0).IsEmpty())
	require.Equal(t, "http://example.org/mono", c.Current().Block(1, 0).URI)
}

func TestDualMonoInsertionAllocatesPair(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/stereo", true))
	require.NoError(t, c.ReplaceBlock(0, 1, "http://example.org/mono", true))

	pair := c.mapper.Get(c.current.PresetIndex, 0, 1)
	require.NotEqual(t, -1, pair.ID)
	require.NotEqual(t, -1, pair.Pair, "mono-in block downstream of a stereo block should get a dual-mono pair")
}

func TestSwitchPresetActivatesOtherSlot(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	require.NoError(t, c.SaveCurrentPreset())

	require.NoError(t, c.SwitchPreset(1))
	require.Equal(t, 1, c.Current().PresetIndex)
	require.True(t, c.Current().Block(0, 0).IsEmpty())

	require.NoError(t, c.SwitchPreset(0))
	require.Equal(t, 0, c.Current().PresetIndex)
	require.Equal(t, "http://example.org/mono", c.Current().Block(0, 0).URI)
}

func TestClearCurrentPresetEmptiesEveryBlock(t *testing.T) {
	c := newTestController(t, 1)
	require.NoError(t, c.ReplaceBlock(0, 0, "http://example.org/mono", true))
	require.NoError(t, c.ClearCurrentPreset())
	require.True(t, c.Current().Block(0, 0).IsEmpty())
	require.Equal(t, model.Dirty, c.Current().Dirty)
}
