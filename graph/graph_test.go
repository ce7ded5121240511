package graph

import (
	"testing"

	"github.com/shaban/modconnector/instancemapper"
	"github.com/stretchr/testify/assert"
)

func emptyRow(n int, captureStereo bool) RowView {
	blocks := make([]BlockView, n)
	for i := range blocks {
		blocks[i] = BlockView{Empty: true}
	}
	return RowView{Blocks: blocks, CaptureStereo: captureStereo}
}

func TestShouldBeStereoPassThroughRowIsStereoCapture(t *testing.T) {
	row := emptyRow(6, true)
	assert.True(t, ShouldBeStereo(row, 0))
}

func TestShouldBeStereoPropagatesFromNearestLoadedBlock(t *testing.T) {
	row := emptyRow(6, true)
	row.Blocks[1] = BlockView{IsStereoOut: false}
	row.Blocks[3] = BlockView{IsStereoOut: true}

	assert.False(t, ShouldBeStereo(row, 2), "nearest loaded block (1) is mono-out")
	assert.True(t, ShouldBeStereo(row, 4), "nearest loaded block (3) is stereo-out")
}

func TestShouldBeStereoMonoRowPropagatesFromStereoOutBlock(t *testing.T) {
	row := emptyRow(6, false)
	row.Blocks[0] = BlockView{IsStereoOut: true}
	assert.True(t, ShouldBeStereo(row, 1), "a stereo-out block makes the signal stereo even on a mono capture row")
}

func TestReconcileStereoChainDetectsNewDualMonoInsertion(t *testing.T) {
	row := emptyRow(3, true)
	row.Blocks[0] = BlockView{IsStereoOut: true}
	row.Blocks[1] = BlockView{IsMonoIn: true, IsStereoOut: false}

	hasPair := func(block int) bool { return false }
	changes := ReconcileStereoChain(row, 0, 2, hasPair)

	assert.Len(t, changes, 1)
	assert.Equal(t, 1, changes[0].Block)
	assert.True(t, changes[0].AllocPair)
}

func TestReconcileStereoChainFreesStalePair(t *testing.T) {
	row := emptyRow(3, true)
	row.Blocks[0] = BlockView{IsStereoOut: false}
	row.Blocks[1] = BlockView{IsMonoIn: true}

	hasPair := func(block int) bool { return block == 1 }
	changes := ReconcileStereoChain(row, 0, 2, hasPair)

	assert.Len(t, changes, 1)
	assert.Equal(t, 1, changes[0].Block)
	assert.False(t, changes[0].AllocPair)
}

func TestConnectAllPassThroughWhenNoPluginsLoaded(t *testing.T) {
	row := emptyRow(6, true)
	ep := Endpoints{Capture: [2]string{"sys:cap1", "sys:cap2"}, Playback: [2]string{"mon:in1", "mon:in2"}}

	conns, disc := ConnectAll(row, ep, 0, 5, func(int) instancemapper.BlockPair { return instancemapper.BlockPair{} })

	assert.Nil(t, disc)
	assert.ElementsMatch(t, []Connection{
		{"sys:cap1", "mon:in1"},
		{"sys:cap2", "mon:in2"},
	}, conns)
}

func TestConnectAllSingleStereoBlock(t *testing.T) {
	row := emptyRow(6, true)
	row.Blocks[2] = BlockView{IsStereoOut: true}
	ep := Endpoints{Capture: [2]string{"sys:cap1", "sys:cap2"}, Playback: [2]string{"mon:in1", "mon:in2"}}

	pairOf := func(b int) instancemapper.BlockPair {
		if b == 2 {
			return instancemapper.BlockPair{ID: 5, Pair: instancemapper.Unset}
		}
		return instancemapper.BlockPair{ID: instancemapper.Unset, Pair: instancemapper.Unset}
	}

	conns, disc := ConnectAll(row, ep, 0, 5, pairOf)
	assert.NotEmpty(t, disc)
	assert.Contains(t, conns, Connection{"sys:cap1", "effect_5:in_1"})
	assert.Contains(t, conns, Connection{"sys:cap2", "effect_5:in_2"})
	assert.Contains(t, conns, Connection{"effect_5:out_1", "mon:in1"})
	assert.Contains(t, conns, Connection{"effect_5:out_2", "mon:in2"})
}

func TestConnectBlockToBlockDualMonoPairToStereoIn(t *testing.T) {
	a := BlockView{IsStereoOut: false, IsMonoIn: true}
	b := BlockView{IsStereoOut: false, IsMonoIn: false}
	aPair := instancemapper.BlockPair{ID: 1, Pair: 2}
	bPair := instancemapper.BlockPair{ID: 3, Pair: instancemapper.Unset}

	a.IsStereoOut = true
	conns := ConnectBlockToBlock(0, a, aPair, 1, b, bPair)
	assert.Contains(t, conns, Connection{"effect_1:out_1", "effect_3:in_1"})
	assert.Contains(t, conns, Connection{"effect_2:out", "effect_3:in_2"})
}
