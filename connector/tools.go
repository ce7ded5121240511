package connector

import (
	"fmt"

	"github.com/shaban/modconnector/model"
)

// Tool slots are standalone LV2 utility plugins addressed at fixed instance
// IDs past the end of the chain-row pool (spec §3/§4.5), so they never
// contend with the instancemapper's per-cell allocation. Grounded on
// connector.cpp's enableTool/connectToolAudioInput/connectToolAudioOutput/
// setToolParameter/monitorToolOutputParameter, which address
// MAX_MOD_HOST_PLUGIN_INSTANCES+toolIndex directly.

func (c *Controller) validateTool(toolIndex int) error {
	if toolIndex < 0 || toolIndex >= model.MaxToolInstances {
		return wrapErr(KindValidation, fmt.Errorf("connector: tool index %d out of range [0,%d)", toolIndex, model.MaxToolInstances))
	}
	return nil
}

func toolInstanceID(toolIndex int) int {
	return ToolBaseID + toolIndex
}

// EnableTool loads (or, with an empty uri, unloads) the plugin in tool slot
// toolIndex.
func (c *Controller) EnableTool(toolIndex int, uri string) error {
	if err := c.validateTool(toolIndex); err != nil {
		return c.fail(err)
	}
	id := toolInstanceID(toolIndex)
	slot := &c.tools[toolIndex]

	if uri == "" {
		if slot.URI == "" {
			return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: EnableTool(%d) - already empty", toolIndex)))
		}
		if err := c.client.Remove(id); err != nil {
			return c.fail(fromEngineErr(err))
		}
		*slot = model.ToolSlot{}
		return c.ok()
	}

	info, found := c.lookup.Lookup(uri)
	if !found {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: unknown plugin %q", uri)))
	}
	if err := c.client.Add(uri, id); err != nil {
		return c.fail(fromEngineErr(err))
	}

	slot.URI = uri
	slot.Enabled = true
	slot.Parameters = make([]model.Parameter, 0, len(info.Parameters))
	for _, p := range info.Parameters {
		slot.Parameters = append(slot.Parameters, model.Parameter{Symbol: p.Symbol, Value: p.Default})
	}
	return c.ok()
}

// ConnectToolAudioInput wires an external jack port into one of tool
// toolIndex's audio input ports.
func (c *Controller) ConnectToolAudioInput(toolIndex int, symbol, jackPort string) error {
	if err := c.validateTool(toolIndex); err != nil {
		return c.fail(err)
	}
	port := fmt.Sprintf("effect_%d:%s", toolInstanceID(toolIndex), symbol)
	if err := c.client.Connect(jackPort, port); err != nil {
		return c.fail(fromEngineErr(err))
	}
	return c.ok()
}

// ConnectToolAudioOutput wires one of tool toolIndex's audio output ports to
// an external jack port.
func (c *Controller) ConnectToolAudioOutput(toolIndex int, symbol, jackPort string) error {
	if err := c.validateTool(toolIndex); err != nil {
		return c.fail(err)
	}
	port := fmt.Sprintf("effect_%d:%s", toolInstanceID(toolIndex), symbol)
	if err := c.client.Connect(port, jackPort); err != nil {
		return c.fail(fromEngineErr(err))
	}
	return c.ok()
}

// SetToolParameter writes a control-port value on a tool instance. Tool
// slots are not part of the scene system (spec §3 scopes scenes to chain
// blocks), so there is no scene-mode argument here.
func (c *Controller) SetToolParameter(toolIndex int, symbol string, value float32) error {
	if err := c.validateTool(toolIndex); err != nil {
		return c.fail(err)
	}
	slot := &c.tools[toolIndex]
	if slot.URI == "" {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: SetToolParameter(%d) - slot is empty", toolIndex)))
	}
	for i := range slot.Parameters {
		if slot.Parameters[i].Symbol == symbol {
			slot.Parameters[i].Value = value
			break
		}
	}
	if err := c.client.ParamSet(toolInstanceID(toolIndex), symbol, value); err != nil {
		return c.fail(fromEngineErr(err))
	}
	return c.ok()
}

// MonitorToolOutputParameter requests feedback notification for an
// output-only control port on a tool instance.
func (c *Controller) MonitorToolOutputParameter(toolIndex int, symbol string) error {
	if err := c.validateTool(toolIndex); err != nil {
		return c.fail(err)
	}
	if err := c.client.MonitorOutput(toolInstanceID(toolIndex), symbol); err != nil {
		return c.fail(fromEngineErr(err))
	}
	return c.ok()
}
