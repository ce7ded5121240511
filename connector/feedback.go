package connector

import (
	"github.com/shaban/modconnector/feedback"
	"github.com/shaban/modconnector/model"
)

var _ feedback.Connector = (*Controller)(nil)

// ResolveBlock implements feedback.Connector: it maps an engine instance ID
// back to the (row, block) cell that owns it in the active preset.
func (c *Controller) ResolveBlock(instanceID int) (row, block int, ok bool) {
	loc, found := c.mapper.GetBlockWithID(c.current.PresetIndex, instanceID)
	if !found {
		return 0, 0, false
	}
	return loc.Row, loc.Block, true
}

// ResolveTool implements feedback.Connector: instance IDs at or past
// ToolBaseID address the reserved tool-slot range.
func (c *Controller) ResolveTool(instanceID int) (toolIndex int, ok bool) {
	if instanceID < ToolBaseID || instanceID >= ToolBaseID+ToolSlots {
		return 0, false
	}
	return instanceID - ToolBaseID, true
}

// ApplyParameterFeedback implements feedback.Connector: it overwrites a
// block's in-memory parameter value to match what the engine reports,
// e.g. after a MIDI-mapped control or another client changed it directly.
// It returns false (and leaves the model untouched) if symbol isn't a
// parameter on the resolved block, per spec §4.5.
func (c *Controller) ApplyParameterFeedback(row, block int, symbol string, value float32) bool {
	b := c.current.Block(row, block)
	if b == nil || b.IsEmpty() {
		return false
	}
	idx := b.ParameterIndexForSymbol(symbol)
	if idx < 0 {
		return false
	}
	b.Parameters[idx].Value = value
	return true
}

// ApplyToolParameterFeedback is ApplyParameterFeedback for a tool slot.
func (c *Controller) ApplyToolParameterFeedback(toolIndex int, symbol string, value float32) bool {
	if toolIndex < 0 || toolIndex >= model.MaxToolInstances {
		return false
	}
	slot := &c.tools[toolIndex]
	for i := range slot.Parameters {
		if slot.Parameters[i].Symbol == symbol {
			slot.Parameters[i].Value = value
			return true
		}
	}
	return false
}
