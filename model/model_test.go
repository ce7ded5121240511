package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloneIsIndependentOfSource(t *testing.T) {
	p := NewPreset(1)
	p.Chains[0].Blocks[0] = Block{
		URI:        "http://example.org/mono",
		Parameters: []Parameter{{Symbol: "gain", Value: 0}},
	}
	p.Bindings[0].Parameters = []ParameterBinding{{Row: 0, Block: 0, ParameterSymbol: "gain"}}

	clone := p.Clone()
	clone.Chains[0].Blocks[0].Parameters[0].Value = -6
	clone.Bindings[0].Parameters[0].ParameterSymbol = "mix"
	clone.Chains[0].Blocks[0].URI = "http://example.org/other"

	require.Equal(t, float32(0), p.Chains[0].Blocks[0].Parameters[0].Value)
	require.Equal(t, "gain", p.Bindings[0].Parameters[0].ParameterSymbol)
	require.Equal(t, "http://example.org/mono", p.Chains[0].Blocks[0].URI)
}

func TestCloneCopiesSceneValuesIndependently(t *testing.T) {
	p := NewPreset(1)
	b := &p.Chains[0].Blocks[0]
	b.URI = "http://example.org/mono"
	b.Parameters = []Parameter{{Symbol: "gain"}}
	b.SetSceneParam(1, ScenesPerPreset, 0, -6)

	clone := p.Clone()
	clone.Chains[0].Blocks[0].SetSceneParam(1, ScenesPerPreset, 0, 3)

	v, used := b.SceneParamValue(1, 0)
	require.True(t, used)
	require.Equal(t, float32(-6), v, "mutating the clone's scene data must not affect the source")
}

func TestRegenUUIDChangesIdentity(t *testing.T) {
	p := NewPreset(1)
	before := p.UUID
	p.RegenUUID()
	require.NotEqual(t, before, p.UUID)
}

func TestBlockParameterAndPropertyLookup(t *testing.T) {
	b := &Block{
		Parameters: []Parameter{{Symbol: "gain"}, {Symbol: "mix"}},
		Properties: []Property{{URI: "http://example.org/file"}},
	}
	require.Equal(t, 1, b.ParameterIndexForSymbol("mix"))
	require.Equal(t, -1, b.ParameterIndexForSymbol("nope"))
	require.Equal(t, 0, b.PropertyIndexForURI("http://example.org/file"))
}

func TestSceneParamUsedFalseOutsideRange(t *testing.T) {
	b := &Block{}
	require.False(t, b.SceneParamUsed(5, 0))
	_, used := b.SceneParamValue(-1, 0)
	require.False(t, used)
}
