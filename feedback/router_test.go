package feedback

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shaban/modconnector/engineclient"
)

// fakeConnector is a minimal in-memory stand-in for connector.Controller's
// feedback.Connector implementation.
type fakeConnector struct {
	blocks map[int][2]int // instance ID -> (row, block)
	tools  map[int]int    // instance ID -> tool index

	paramValues     map[[2]int]map[string]float32
	toolParamValues map[int]map[string]float32
	applyFails      map[string]bool // symbol -> force ApplyParameterFeedback to fail
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{
		blocks:          map[int][2]int{},
		tools:           map[int]int{},
		paramValues:     map[[2]int]map[string]float32{},
		toolParamValues: map[int]map[string]float32{},
		applyFails:      map[string]bool{},
	}
}

func (f *fakeConnector) ResolveBlock(instanceID int) (int, int, bool) {
	rb, ok := f.blocks[instanceID]
	return rb[0], rb[1], ok
}

func (f *fakeConnector) ResolveTool(instanceID int) (int, bool) {
	idx, ok := f.tools[instanceID]
	return idx, ok
}

func (f *fakeConnector) ApplyParameterFeedback(row, block int, symbol string, value float32) bool {
	if f.applyFails[symbol] {
		return false
	}
	key := [2]int{row, block}
	if f.paramValues[key] == nil {
		f.paramValues[key] = map[string]float32{}
	}
	f.paramValues[key][symbol] = value
	return true
}

func (f *fakeConnector) ApplyToolParameterFeedback(toolIndex int, symbol string, value float32) bool {
	if f.applyFails[symbol] {
		return false
	}
	if f.toolParamValues[toolIndex] == nil {
		f.toolParamValues[toolIndex] = map[string]float32{}
	}
	f.toolParamValues[toolIndex][symbol] = value
	return true
}

func TestDispatchParamSetAppliesAndNotifies(t *testing.T) {
	target := newFakeConnector()
	target.blocks[5] = [2]int{0, 2}

	var gotRow, gotBlock int
	var gotSymbol string
	var gotValue float32
	r := Router{
		Target: target,
		OnParameterChanged: func(row, block int, symbol string, value float32) {
			gotRow, gotBlock, gotSymbol, gotValue = row, block, symbol, value
		},
	}

	r.Dispatch(engineclient.ParamSet{InstanceID: 5, Symbol: "gain", Value: -3})

	require.Equal(t, 0, gotRow)
	require.Equal(t, 2, gotBlock)
	require.Equal(t, "gain", gotSymbol)
	require.Equal(t, float32(-3), gotValue)
	require.Equal(t, float32(-3), target.paramValues[[2]int{0, 2}]["gain"])
}

func TestDispatchParamSetRoutesToToolSlot(t *testing.T) {
	target := newFakeConnector()
	target.tools[9998] = 8

	var gotIdx int
	r := Router{
		Target: target,
		OnToolParameterChanged: func(toolIndex int, symbol string, value float32) {
			gotIdx = toolIndex
		},
	}
	r.Dispatch(engineclient.ParamSet{InstanceID: 9998, Symbol: "mix", Value: 0.5})
	require.Equal(t, 8, gotIdx)
	require.Equal(t, float32(0.5), target.toolParamValues[8]["mix"])
}

func TestDispatchParamSetUnresolvedInstanceIsSilentlyDropped(t *testing.T) {
	target := newFakeConnector()
	called := false
	r := Router{
		Target:             target,
		OnParameterChanged: func(int, int, string, float32) { called = true },
	}
	r.Dispatch(engineclient.ParamSet{InstanceID: 404, Symbol: "gain", Value: 1})
	require.False(t, called)
}

func TestDispatchParamSetFailedApplySkipsCallback(t *testing.T) {
	target := newFakeConnector()
	target.blocks[5] = [2]int{0, 0}
	target.applyFails["unknown"] = true

	called := false
	r := Router{
		Target:             target,
		OnParameterChanged: func(int, int, string, float32) { called = true },
	}
	r.Dispatch(engineclient.ParamSet{InstanceID: 5, Symbol: "unknown", Value: 1})
	require.False(t, called, "a symbol the block doesn't have must not reach the user callback")
}

func TestDispatchOutputMonitorNeverCallsApply(t *testing.T) {
	target := newFakeConnector()
	target.blocks[5] = [2]int{1, 3}

	var gotValue float32
	r := Router{
		Target: target,
		OnOutputMonitor: func(row, block int, symbol string, value float32) {
			gotValue = value
		},
	}
	r.Dispatch(engineclient.OutputMonitor{InstanceID: 5, Symbol: "meter", Value: -12})

	require.Equal(t, float32(-12), gotValue)
	require.Empty(t, target.paramValues, "output-monitor feedback must never mutate model state")
}

func TestDispatchFinishedAndLogPassThrough(t *testing.T) {
	target := newFakeConnector()
	finished := false
	var logMsg string
	r := Router{
		Target:     target,
		OnFinished: func() { finished = true },
		OnLog:      func(level byte, msg string) { logMsg = msg },
	}
	r.Dispatch(engineclient.Finished{})
	r.Dispatch(engineclient.Log{Level: 1, Msg: "engine warning"})
	require.True(t, finished)
	require.Equal(t, "engine warning", logMsg)
}

func TestDispatchWithNilCallbacksDoesNotPanic(t *testing.T) {
	target := newFakeConnector()
	target.blocks[5] = [2]int{0, 0}
	r := Router{Target: target}
	require.NotPanics(t, func() {
		r.Dispatch(engineclient.ParamSet{InstanceID: 5, Symbol: "gain", Value: 1})
		r.Dispatch(engineclient.OutputMonitor{InstanceID: 5, Symbol: "meter", Value: 1})
		r.Dispatch(engineclient.Transport{Rolling: true, BPM: 120})
	})
}
