package engineclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFeedbackParamSet(t *testing.T) {
	ev, ok := decodeFeedback("param_set 12 gain 0.75")
	require.True(t, ok)
	ps, ok := ev.(ParamSet)
	require.True(t, ok)
	assert.Equal(t, 12, ps.InstanceID)
	assert.Equal(t, "gain", ps.Symbol)
	assert.InDelta(t, 0.75, ps.Value, 1e-6)
}

func TestDecodeFeedbackMidiMapped(t *testing.T) {
	ev, ok := decodeFeedback("midi_mapped 3 cutoff 1 74 0.5 0 1")
	require.True(t, ok)
	mm := ev.(MIDIMapped)
	assert.EqualValues(t, 3, mm.InstanceID)
	assert.EqualValues(t, 1, mm.Channel)
	assert.EqualValues(t, 74, mm.Controller)
}

func TestDecodeFeedbackLogLevels(t *testing.T) {
	ev, ok := decodeFeedback("log 3 boom")
	require.True(t, ok)
	assert.Equal(t, byte('e'), ev.(Log).Level)

	ev, ok = decodeFeedback("log 2 careful")
	require.True(t, ok)
	assert.Equal(t, byte('w'), ev.(Log).Level)

	ev, ok = decodeFeedback("log 9 whatever")
	require.True(t, ok)
	assert.Equal(t, byte('n'), ev.(Log).Level)
}

func TestDecodeFeedbackUnknownPrefixDropped(t *testing.T) {
	_, ok := decodeFeedback("totally_unknown_prefix 1 2 3")
	assert.False(t, ok)
}

func TestDecodeFeedbackFinished(t *testing.T) {
	ev, ok := decodeFeedback("finished")
	require.True(t, ok)
	_, isFinished := ev.(Finished)
	assert.True(t, isFinished)
}
