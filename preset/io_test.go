package preset

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shaban/modconnector/model"
	"github.com/stretchr/testify/require"
)

func lookupFixture(uri string) (PluginDescriptor, bool) {
	switch uri {
	case "http://example.org/gain":
		return PluginDescriptor{Name: "Gain", NumInputs: 1, NumOutputs: 1}, true
	case "http://example.org/stereo-eq":
		return PluginDescriptor{Name: "Stereo EQ", NumInputs: 2, NumOutputs: 2}, true
	default:
		return PluginDescriptor{}, false
	}
}

func TestSaveThenLoadPresetRoundTrips(t *testing.T) {
	p := model.NewPreset(1)
	p.Name = "My Preset"
	p.Chains[0].Capture = [2]string{"system:capture_1", "system:capture_2"}
	p.Chains[0].Playback = [2]string{"mod-monitor:in_1", "mod-monitor:in_2"}
	p.Chains[0].Blocks[0] = model.Block{
		Enabled: true,
		URI:     "http://example.org/gain",
		Parameters: []model.Parameter{
			{Symbol: "gain", Value: -3.5},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, SavePreset(&buf, p))

	loader := Loader{Lookup: lookupFixture}
	got, diags, err := loader.LoadPreset(&buf)
	require.NoError(t, err)
	require.Empty(t, diags)

	diff := cmp.Diff(p, got,
		cmpopts.IgnoreFields(model.Block{}, "Meta"),
		cmpopts.IgnoreUnexported(model.Block{}),
		cmpopts.IgnoreFields(model.Preset{}, "Chains"),
	)
	require.Empty(t, diff)
	require.Equal(t, "http://example.org/gain", got.Chains[0].Blocks[0].URI)
	require.Equal(t, float32(-3.5), got.Chains[0].Blocks[0].Parameters[0].Value)
}

func TestLoadPresetUnknownPluginBecomesEmptyCellWithDiagnostic(t *testing.T) {
	p := model.NewPreset(1)
	p.Chains[0].Blocks[2] = model.Block{URI: "http://example.org/does-not-exist"}

	var buf bytes.Buffer
	require.NoError(t, SavePreset(&buf, p))

	loader := Loader{Lookup: lookupFixture}
	got, diags, err := loader.LoadPreset(&buf)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	require.True(t, got.Chains[0].Blocks[2].IsEmpty())
}

func TestLoadPresetRejectsUnsupportedVersion(t *testing.T) {
	file := PresetFile{Envelope: Envelope{Type: TypePreset, Version: MaxSupportedVersion + 1}}
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(file))

	loader := Loader{Lookup: lookupFixture}
	_, _, err := loader.LoadPreset(&buf)
	require.Error(t, err)
}

func TestLoadBankFillsMissingPresetSlotsWithNil(t *testing.T) {
	bank := &model.Bank{Title: "Test bank"}
	bank.Presets[0] = model.NewPreset(1)
	bank.Presets[0].Name = "Only one"

	var buf bytes.Buffer
	require.NoError(t, SaveBank(&buf, bank))

	loader := Loader{Lookup: lookupFixture}
	got, _, err := loader.LoadBank(&buf)
	require.NoError(t, err)
	require.NotNil(t, got.Presets[0])
	require.Nil(t, got.Presets[1])
	require.Nil(t, got.Presets[2])
}
