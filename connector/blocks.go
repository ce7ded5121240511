package connector

import (
	"fmt"

	"github.com/shaban/modconnector/instancemapper"
	"github.com/shaban/modconnector/model"
)

// EnableBlock sets the bypass state of the block at (row, block) and,
// unless sceneMode is SceneModeIgnore, records the new state into the
// active scene (spec §4.4).
func (c *Controller) EnableBlock(row, block int, enable bool, sceneMode SceneMode) error {
	if err := c.validateRow(row); err != nil {
		return c.fail(err)
	}
	if err := c.validateBlock(block); err != nil {
		return c.fail(err)
	}
	b := c.current.Block(row, block)
	if b == nil || b.IsEmpty() {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: EnableBlock(%d,%d) - block not in use", row, block)))
	}
	if b.Enabled == enable {
		return c.ok()
	}

	pair := c.mapper.Get(c.current.PresetIndex, row, block)
	if pair.ID != instancemapper.Unset {
		if err := c.client.Bypass(pair.ID, !enable); err != nil {
			return c.fail(fromEngineErr(err))
		}
	}
	if pair.Pair != instancemapper.Unset {
		if err := c.client.Bypass(pair.Pair, !enable); err != nil {
			return c.fail(fromEngineErr(err))
		}
	}

	b.Enabled = enable
	if sceneMode != SceneModeIgnore && c.current.Scene != 0 {
		b.ensureScene(c.current.Scene, model.ScenesPerPreset, len(b.Parameters), len(b.Properties)).Enabled = enable
		c.markDirty(true)
	} else {
		c.markDirty(false)
	}
	return c.ok()
}

// ReplaceBlock loads a plugin into (row, block), tearing down whatever was
// there first. An empty uri clears the cell. clearBindings controls whether
// bindings pointing at this cell are removed (spec §4.4); callers pass false
// only when certain the new plugin's parameters/properties are a superset of
// the old one's.
func (c *Controller) ReplaceBlock(row, block int, uri string, clearBindings bool) error {
	if err := c.validateRow(row); err != nil {
		return c.fail(err)
	}
	if err := c.validateBlock(block); err != nil {
		return c.fail(err)
	}

	b := c.current.Block(row, block)
	wasEmpty := b.IsEmpty()
	if wasEmpty && uri == "" {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: ReplaceBlock(%d,%d) - already empty", row, block)))
	}

	scope := c.client.NewScope()
	defer func() {
		if err := scope.Close(); err != nil {
			c.fail(fromEngineErr(err))
		}
	}()

	if !wasEmpty {
		if err := c.tearDownBlock(row, block, clearBindings); err != nil {
			return c.fail(err)
		}
	}

	if uri == "" {
		b.Clear()
		c.markDirty(false)
		return c.applyGraphAndReport(row, max0(block-1), minInt(block+1, model.BlocksPerPreset-1))
	}

	info, found := c.lookup.Lookup(uri)
	if !found {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: unknown plugin %q", uri)))
	}
	if info.NumInputs > 2 || info.NumOutputs > 2 {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: unsupported IO for %q (in=%d out=%d)", uri, info.NumInputs, info.NumOutputs)))
	}

	b.LoadFromPlugin(info)

	id, err := c.mapper.Add(c.current.PresetIndex, row, block)
	if err != nil {
		return c.fail(wrapErr(KindLogic, err))
	}
	if err := c.client.Add(uri, id); err != nil {
		return c.fail(fromEngineErr(err))
	}
	if err := c.client.Bypass(id, !b.Enabled); err != nil {
		return c.fail(fromEngineErr(err))
	}
	if err := c.flushParams(id, b, true); err != nil {
		return c.fail(err)
	}
	c.current.NumLoadedPlugins++
	c.markDirty(false)

	return c.applyGraphAndReport(row, max0(block-1), minInt(block+1, model.BlocksPerPreset-1))
}

func (c *Controller) applyGraphAndReport(row, start, end int) error {
	if err := c.applyGraph(row, start, end); err != nil {
		return c.fail(err)
	}
	return c.ok()
}

func (c *Controller) tearDownBlock(row, block int, clearBindings bool) error {
	pair := c.mapper.Remove(c.current.PresetIndex, row, block)

	if err := c.disconnectBlockPorts(pair.ID); err != nil {
		return err
	}
	if err := c.disconnectBlockPorts(pair.Pair); err != nil {
		return err
	}
	if pair.ID != instancemapper.Unset {
		if err := c.client.Remove(pair.ID); err != nil {
			return fromEngineErr(err)
		}
		c.current.NumLoadedPlugins--
	}
	if pair.Pair != instancemapper.Unset {
		if err := c.client.Remove(pair.Pair); err != nil {
			return fromEngineErr(err)
		}
	}
	if clearBindings {
		c.removeBindingsForCell(row, block)
	}
	return nil
}

// ResetBlock restores a block's parameters/properties to the plugin's
// declared defaults, optionally (resetUserDefaults) discarding a
// previously-saved custom default too (spec supplement from
// connector.hpp's saveBlockStateAsDefault/resetBlock pair).
func (c *Controller) ResetBlock(row, block int, resetUserDefaults bool) error {
	if err := c.validateRow(row); err != nil {
		return c.fail(err)
	}
	if err := c.validateBlock(block); err != nil {
		return c.fail(err)
	}
	b := c.current.Block(row, block)
	if b.IsEmpty() {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: ResetBlock(%d,%d) - block is empty", row, block)))
	}

	info, found := c.lookup.Lookup(b.URI)
	if !found {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: unknown plugin %q", b.URI)))
	}
	if resetUserDefaults {
		b.LoadFromPlugin(info)
	} else {
		for i := range b.Parameters {
			b.Parameters[i].Value = b.Parameters[i].Meta.Default
		}
	}

	pair := c.mapper.Get(c.current.PresetIndex, row, block)
	if pair.ID == instancemapper.Unset {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: ResetBlock(%d,%d) - no engine instance", row, block)))
	}
	if err := c.flushParams(pair.ID, b, true); err != nil {
		return c.fail(err)
	}
	if pair.Pair != instancemapper.Unset {
		if err := c.flushParams(pair.Pair, b, true); err != nil {
			return c.fail(err)
		}
	}
	c.markDirty(false)
	return c.ok()
}

// SaveBlockStateAsDefault snapshots a block's current parameter values as
// the default state to seed the block with next time it is (re)loaded.
// This connector has no on-disk LV2-preset bundle writer (out of scope,
// §1); it records the snapshot as the plugin's effective defaults for the
// remainder of the process by rewriting Parameter.Meta.Default in place.
func (c *Controller) SaveBlockStateAsDefault(row, block int) error {
	if err := c.validateRow(row); err != nil {
		return c.fail(err)
	}
	if err := c.validateBlock(block); err != nil {
		return c.fail(err)
	}
	b := c.current.Block(row, block)
	if b.IsEmpty() {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: SaveBlockStateAsDefault(%d,%d) - block is empty", row, block)))
	}
	for i := range b.Parameters {
		b.Parameters[i].Meta.Default = b.Parameters[i].Value
	}
	return c.ok()
}

// SetBlockParameter writes a control-port value to the model and through to
// the engine, applying the lazy-baseline scene capture described in spec §4.4
// and demonstrated in §8 scenario 6.
func (c *Controller) SetBlockParameter(row, block int, symbol string, value float32, sceneMode SceneMode) error {
	if err := c.validateRow(row); err != nil {
		return c.fail(err)
	}
	if err := c.validateBlock(block); err != nil {
		return c.fail(err)
	}
	b := c.current.Block(row, block)
	if b.IsEmpty() {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: SetBlockParameter(%d,%d) - block is empty", row, block)))
	}
	idx := b.ParameterIndexForSymbol(symbol)
	if idx < 0 {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: unknown parameter %q on block (%d,%d)", symbol, row, block)))
	}
	if b.Parameters[idx].Meta.Flags&FlagIsOutput != 0 {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: parameter %q is output-only", symbol)))
	}

	pair := c.mapper.Get(c.current.PresetIndex, row, block)
	if pair.ID == instancemapper.Unset {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: SetBlockParameter(%d,%d) - no engine instance", row, block)))
	}

	if sceneMode != SceneModeIgnore && c.current.Scene != 0 {
		if !b.SceneParamUsed(c.current.Scene, idx) {
			if !b.SceneParamUsed(0, idx) {
				b.SetSceneParam(0, model.ScenesPerPreset, idx, b.Parameters[idx].Value)
			}
		}
		b.SetSceneParam(c.current.Scene, model.ScenesPerPreset, idx, value)
	}

	b.Parameters[idx].Value = value
	c.markDirty(sceneMode != SceneModeIgnore && c.current.Scene != 0)

	if err := c.client.ParamSet(pair.ID, symbol, value); err != nil {
		return c.fail(fromEngineErr(err))
	}
	if pair.Pair != instancemapper.Unset {
		if err := c.client.ParamSet(pair.Pair, symbol, value); err != nil {
			return c.fail(fromEngineErr(err))
		}
	}
	return c.ok()
}

// SetBlockProperty writes a patch-property value, mirroring SetBlockParameter
// but through the engine's patch_set message.
func (c *Controller) SetBlockProperty(row, block int, uri, value string, sceneMode SceneMode) error {
	if err := c.validateRow(row); err != nil {
		return c.fail(err)
	}
	if err := c.validateBlock(block); err != nil {
		return c.fail(err)
	}
	b := c.current.Block(row, block)
	if b.IsEmpty() {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: SetBlockProperty(%d,%d) - block is empty", row, block)))
	}
	idx := b.PropertyIndexForURI(uri)
	if idx < 0 {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: unknown property %q on block (%d,%d)", uri, row, block)))
	}

	pair := c.mapper.Get(c.current.PresetIndex, row, block)
	if pair.ID == instancemapper.Unset {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: SetBlockProperty(%d,%d) - no engine instance", row, block)))
	}

	if sceneMode != SceneModeIgnore && c.current.Scene != 0 {
		sv := b.ensureScene(c.current.Scene, model.ScenesPerPreset, len(b.Parameters), idx+1)
		sv.PropertiesUsed[idx] = true
		sv.Properties[idx] = value
	}

	b.Properties[idx].Value = value
	c.markDirty(sceneMode != SceneModeIgnore && c.current.Scene != 0)

	if err := c.client.PatchSet(pair.ID, uri, value); err != nil {
		return c.fail(fromEngineErr(err))
	}
	if pair.Pair != instancemapper.Unset {
		if err := c.client.PatchSet(pair.Pair, uri, value); err != nil {
			return c.fail(fromEngineErr(err))
		}
	}
	return c.ok()
}

// MonitorBlockOutputParameter requests feedback notification for an
// output-only control port, e.g. a plugin-reported meter value.
func (c *Controller) MonitorBlockOutputParameter(row, block int, symbol string) error {
	if err := c.validateRow(row); err != nil {
		return c.fail(err)
	}
	b := c.current.Block(row, block)
	if b == nil || b.IsEmpty() {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: MonitorBlockOutputParameter(%d,%d) - block is empty", row, block)))
	}
	idx := b.ParameterIndexForSymbol(symbol)
	if idx < 0 || b.Parameters[idx].Meta.Flags&FlagIsOutput == 0 {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: %q is not an output parameter", symbol)))
	}
	pair := c.mapper.Get(c.current.PresetIndex, row, block)
	if pair.ID == instancemapper.Unset {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: no engine instance for block (%d,%d)", row, block)))
	}
	if err := c.client.MonitorOutput(pair.ID, symbol); err != nil {
		return c.fail(fromEngineErr(err))
	}
	return c.ok()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
