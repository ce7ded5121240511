package connector

import (
	"fmt"

	"github.com/shaban/modconnector/engineclient"
	"github.com/shaban/modconnector/graph"
	"github.com/shaban/modconnector/instancemapper"
	"github.com/shaban/modconnector/model"
	"github.com/shaban/modconnector/preset"
)

// presetLookup adapts the controller's plugin-metadata collaborator to the
// lighter descriptor shape preset.Loader needs to fill in a file's missing
// fields.
func (c *Controller) presetLookup(uri string) (preset.PluginDescriptor, bool) {
	if c.lookup == nil {
		return preset.PluginDescriptor{}, false
	}
	info, ok := c.lookup.Lookup(uri)
	if !ok {
		return preset.PluginDescriptor{}, false
	}
	return preset.PluginDescriptor{
		Name:         info.Name,
		Abbreviation: info.Abbreviation,
		Brand:        info.Brand,
		NumInputs:    info.NumInputs,
		NumOutputs:   info.NumOutputs,
	}, true
}

func (c *Controller) loader() preset.Loader {
	return preset.Loader{Lookup: c.presetLookup, Logger: c.logger}
}

func (c *Controller) padRows(p *model.Preset) {
	for len(p.Chains) < c.rows {
		p.Chains = append(p.Chains, model.ChainRow{})
	}
	if len(p.Chains) > c.rows {
		p.Chains = p.Chains[:c.rows]
	}
}

// LoadBankFromPresetFiles loads up to PresetsPerBank preset files (a missing
// filename becomes a fresh empty preset), activates initialIndex as the
// live current preset, and reconciles the running engine: the active
// preset's blocks are instantiated and connected, every other preset's
// blocks are merely preloaded so a later SwitchPreset can activate them
// without a cold plugin load. Grounded on connector.cpp's
// hostClearAndLoadCurrentBank.
func (c *Controller) LoadBankFromPresetFiles(filenames [model.PresetsPerBank]string, initialIndex int) error {
	if initialIndex < 0 || initialIndex >= model.PresetsPerBank {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: initial preset index %d out of range", initialIndex)))
	}

	loader := c.loader()
	var bank model.Bank
	for i, fn := range filenames {
		if fn == "" {
			continue
		}
		p, diags, err := loader.LoadPresetFile(fn)
		if err != nil {
			return c.fail(wrapErr(KindPersistence, fmt.Errorf("connector: load preset %q: %w", fn, err)))
		}
		for _, d := range diags {
			c.logger.Warn().Str("path", d.Path).Msg(d.Message)
		}
		p.Filename = fn
		c.padRows(p)
		bank.Presets[i] = p
	}
	for i := range bank.Presets {
		if bank.Presets[i] == nil {
			bank.Presets[i] = model.NewPreset(c.rows)
		}
	}

	return c.hostClearAndLoadBank(bank, initialIndex)
}

// hostClearAndLoadBank tears down every engine instance, reinstantiates the
// bank from scratch and reconnects the audio graph of every row of the
// active preset.
func (c *Controller) hostClearAndLoadBank(bank model.Bank, activeIndex int) error {
	mode := engineclient.ProcessingOffWithFadeOut
	if c.firstBoot {
		c.firstBoot = false
		mode = engineclient.ProcessingOffWithoutFadeOut
	}
	if err := c.client.FeatureEnableProcessing(mode); err != nil {
		return c.fail(fromEngineErr(err))
	}

	scope := c.client.NewScope()
	teardown := func(err error) error {
		if cerr := scope.Close(); cerr != nil && err == nil {
			err = fromEngineErr(cerr)
		}
		if ferr := c.client.FeatureEnableProcessing(engineclient.ProcessingOnWithFadeIn); ferr != nil && err == nil {
			err = fromEngineErr(ferr)
		}
		if err != nil {
			return c.fail(err)
		}
		return c.ok()
	}

	if err := c.client.Remove(-1); err != nil {
		return teardown(fromEngineErr(err))
	}
	for pr := range bank.Presets {
		c.mapper.Reset(pr)
	}

	c.bank = bank
	c.current = model.Current{Preset: *bank.Presets[activeIndex].Clone(), PresetIndex: activeIndex}

	for row := 0; row < c.rows; row++ {
		for pr := range bank.Presets {
			active := pr == activeIndex
			var chain *model.ChainRow
			if active {
				chain = &c.current.Chains[row]
			} else {
				chain = &bank.Presets[pr].Chains[row]
			}

			loaded := 0
			for bl := range chain.Blocks {
				block := &chain.Blocks[bl]
				if block.IsEmpty() {
					continue
				}

				id, err := c.mapper.Add(pr, row, bl)
				if err != nil {
					return teardown(wrapErr(KindLogic, err))
				}
				if err := c.instantiateBlock(active, block, id); err != nil {
					c.mapper.Remove(pr, row, bl)
					if active {
						block.Clear()
					}
					continue
				}

				if graph.ShouldBeStereo(chainRowView(chain), bl) && block.Meta.IsMonoIn {
					pairID, err := c.mapper.AddPair(pr, row, bl)
					if err != nil {
						return teardown(wrapErr(KindLogic, err))
					}
					if err := c.instantiateBlock(active, block, pairID); err != nil {
						c.client.Remove(id)
						c.mapper.Remove(pr, row, bl)
						if active {
							block.Clear()
						}
						continue
					}
				}

				if active {
					loaded++
					c.current.NumLoadedPlugins++
				}
			}
			if active && loaded > 0 {
				view := chainRowView(chain)
				conns, _ := graph.ConnectAll(view, c.endpoints(row), 0, model.BlocksPerPreset-1, c.pairOf(row))
				for _, conn := range conns {
					if err := c.client.Connect(conn.Origin, conn.Destination); err != nil {
						return teardown(fromEngineErr(err))
					}
				}
			} else if active {
				ep := c.endpoints(row)
				if err := c.client.Connect(ep.Capture[0], ep.Playback[0]); err != nil {
					return teardown(fromEngineErr(err))
				}
				if err := c.client.Connect(ep.Capture[1], ep.Playback[1]); err != nil {
					return teardown(fromEngineErr(err))
				}
			}
		}
	}

	return teardown(nil)
}

// instantiateBlock loads block's plugin into instance id, active preferring
// a live "add" over a "preload" so the engine brings it up processing
// immediately.
func (c *Controller) instantiateBlock(active bool, block *model.Block, id int) error {
	var err error
	if active {
		err = c.client.Add(block.URI, id)
	} else {
		err = c.client.Preload(block.URI, id)
	}
	if err != nil {
		return fromEngineErr(err)
	}
	if !block.Enabled {
		if err := c.client.Bypass(id, true); err != nil {
			return fromEngineErr(err)
		}
	}
	return c.flushParams(id, block, true)
}

// LoadCurrentPresetFromFile replaces the live current preset with the
// contents of filename. With replaceDefault the file also becomes the bank
// slot's saved state; otherwise the slot keeps its previous saved state.
// The other presets' saved state is left as it is, but the engine is rebuilt
// the same way a full bank load does: every instance, the other presets'
// preloaded ones included, is removed and instantiated again.
func (c *Controller) LoadCurrentPresetFromFile(filename string, replaceDefault bool) error {
	loader := c.loader()
	p, diags, err := loader.LoadPresetFile(filename)
	if err != nil {
		return c.fail(wrapErr(KindPersistence, fmt.Errorf("connector: load preset %q: %w", filename, err)))
	}
	for _, d := range diags {
		c.logger.Warn().Str("path", d.Path).Msg(d.Message)
	}
	p.Filename = filename
	c.padRows(p)

	index := c.current.PresetIndex
	saved := c.bank.Presets[index]
	bank := c.bank
	bank.Presets[index] = p
	err = c.hostClearAndLoadBank(bank, index)
	if !replaceDefault {
		c.bank.Presets[index] = saved
	}
	return err
}

// SaveCurrentPresetToFile writes the live current preset to filename and
// records it as the bank slot's saved state.
func (c *Controller) SaveCurrentPresetToFile(filename string) error {
	c.current.Filename = filename
	if err := c.SaveCurrentPreset(); err != nil {
		return err
	}
	if err := preset.SavePresetFile(filename, &c.current.Preset); err != nil {
		return c.fail(wrapErr(KindPersistence, err))
	}
	return c.ok()
}

// SaveCurrentPreset copies the live current preset back into its bank slot
// and clears the dirty flag, without touching disk.
func (c *Controller) SaveCurrentPreset() error {
	c.bank.Presets[c.current.PresetIndex] = c.current.Preset.Clone()
	c.current.Dirty = model.Clean
	return c.ok()
}

// ClearCurrentPreset empties every block and binding in the live current
// preset, tearing down their engine instances.
func (c *Controller) ClearCurrentPreset() error {
	scope := c.client.NewScope()
	defer func() {
		if err := scope.Close(); err != nil {
			c.fail(fromEngineErr(err))
		}
	}()

	removed := false
	for row := range c.current.Chains {
		chain := &c.current.Chains[row]
		for bl := range chain.Blocks {
			if chain.Blocks[bl].IsEmpty() {
				continue
			}
			if err := c.tearDownBlock(row, bl, true); err != nil {
				return c.fail(err)
			}
			chain.Blocks[bl].Clear()
			removed = true
		}
		if err := c.applyGraph(row, 0, model.BlocksPerPreset-1); err != nil {
			return c.fail(err)
		}
	}
	for i := range c.current.Bindings {
		c.current.Bindings[i] = model.Bindings{}
	}
	if removed {
		c.markDirty(false)
	}
	return c.ok()
}

// RegenUUID assigns the live current preset a fresh UUID, e.g. for "save as".
func (c *Controller) RegenUUID() error {
	c.current.RegenUUID()
	return c.ok()
}

// SetPresetFilename records filename for bank slot index without touching
// the live current preset (unless index is the active one, in which case
// both are updated together, matching connector.hpp's setPresetFilename).
func (c *Controller) SetPresetFilename(index int, filename string) error {
	if index < 0 || index >= model.PresetsPerBank {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: preset index %d out of range", index)))
	}
	if c.bank.Presets[index] != nil {
		c.bank.Presets[index].Filename = filename
	}
	if index == c.current.PresetIndex {
		c.current.Filename = filename
	}
	return c.ok()
}

// SetCurrentPresetName renames the live current preset.
func (c *Controller) SetCurrentPresetName(name string) error {
	c.current.Name = name
	c.markDirty(false)
	return c.ok()
}

// RenamePreset renames a bank slot's stored name directly, without touching
// the live current preset even if index happens to be active (matching
// connector.hpp's separation between renamePreset and setCurrentPresetName).
func (c *Controller) RenamePreset(index int, name string) error {
	if index < 0 || index >= model.PresetsPerBank {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: preset index %d out of range", index)))
	}
	if c.bank.Presets[index] == nil {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: preset %d is empty", index)))
	}
	c.bank.Presets[index].Name = name
	return c.ok()
}

// ReorderPresets moves the bank slot at orig to dest, shifting the slots
// between them by one, the same way ReorderBlock shifts a chain row. The
// live current preset's PresetIndex is remapped if it sat inside the
// disturbed window.
func (c *Controller) ReorderPresets(orig, dest int) error {
	if orig < 0 || orig >= model.PresetsPerBank || dest < 0 || dest >= model.PresetsPerBank {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: preset index out of range")))
	}
	if orig == dest {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: ReorderPresets(%d,%d) - orig == dest", orig, dest)))
	}

	moved := c.bank.Presets[orig]
	if orig < dest {
		copy(c.bank.Presets[orig:dest], c.bank.Presets[orig+1:dest+1])
	} else {
		copy(c.bank.Presets[dest+1:orig+1], c.bank.Presets[dest:orig])
	}
	c.bank.Presets[dest] = moved

	switch {
	case c.current.PresetIndex == orig:
		c.current.PresetIndex = dest
	case orig < dest && c.current.PresetIndex > orig && c.current.PresetIndex <= dest:
		c.current.PresetIndex--
	case orig > dest && c.current.PresetIndex >= dest && c.current.PresetIndex < orig:
		c.current.PresetIndex++
	}
	return c.ok()
}

// SwapPresets exchanges the stored state of two bank slots. Swapping the
// active slot with another is allowed; the live current preset keeps
// editing whichever preset it was already tracking, now at the other index.
func (c *Controller) SwapPresets(a, b int) error {
	if a < 0 || a >= model.PresetsPerBank || b < 0 || b >= model.PresetsPerBank {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: preset index out of range")))
	}
	if a == b {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: SwapPresets - a == b")))
	}
	c.bank.Presets[a], c.bank.Presets[b] = c.bank.Presets[b], c.bank.Presets[a]
	switch c.current.PresetIndex {
	case a:
		c.current.PresetIndex = b
	case b:
		c.current.PresetIndex = a
	}
	return c.ok()
}

// SwitchPreset activates a different bank slot: the outgoing preset's
// instances are deactivated and disconnected (but kept loaded), the
// incoming preset's already-preloaded instances are activated and wired up,
// and finally the outgoing slot's instances are quietly reset back to the
// bank's saved defaults for the outgoing preset so a later switch back
// starts clean. Grounded on connector.cpp's switchPreset.
func (c *Controller) SwitchPreset(index int) error {
	if index < 0 || index >= model.PresetsPerBank {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: preset index %d out of range", index)))
	}
	if c.current.PresetIndex == index {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: SwitchPreset(%d) - already active", index)))
	}
	incoming := c.bank.Presets[index]
	if incoming == nil {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: preset %d is empty", index)))
	}

	oldIndex := c.current.PresetIndex
	oldChains := c.current.Chains

	c.current = model.Current{Preset: *incoming.Clone(), PresetIndex: index}
	c.current.Scene = 0

	fade, err := c.client.NewFadeScope()
	if err != nil {
		return c.fail(fromEngineErr(err))
	}
	fadeErr := func() error {
		for row, chain := range oldChains {
			loaded := false
			for bl := range chain.Blocks {
				if chain.Blocks[bl].IsEmpty() {
					continue
				}
				loaded = true
				pair := c.mapper.Get(oldIndex, row, bl)
				if err := c.disconnectBlockPorts(pair.ID); err != nil {
					return err
				}
				if err := c.disconnectBlockPorts(pair.Pair); err != nil {
					return err
				}
				if pair.ID != instancemapper.Unset {
					if err := c.client.Activate(pair.ID, false); err != nil {
						return fromEngineErr(err)
					}
				}
				if pair.Pair != instancemapper.Unset {
					if err := c.client.Activate(pair.Pair, false); err != nil {
						return fromEngineErr(err)
					}
				}
			}
			if !loaded {
				ep := c.endpoints(row)
				if err := c.client.Disconnect(ep.Capture[0], ep.Playback[0]); err != nil {
					return fromEngineErr(err)
				}
				if err := c.client.Disconnect(ep.Capture[1], ep.Playback[1]); err != nil {
					return fromEngineErr(err)
				}
			}
		}

		for row := range c.current.Chains {
			loaded := 0
			for bl := range c.current.Chains[row].Blocks {
				if c.current.Chains[row].Blocks[bl].IsEmpty() {
					continue
				}
				pair := c.mapper.Get(index, row, bl)
				if pair.ID != instancemapper.Unset {
					if err := c.client.Activate(pair.ID, true); err != nil {
						return fromEngineErr(err)
					}
				}
				if pair.Pair != instancemapper.Unset {
					if err := c.client.Activate(pair.Pair, true); err != nil {
						return fromEngineErr(err)
					}
				}
				loaded++
			}
			view := c.rowView(row)
			if loaded > 0 {
				conns, _ := graph.ConnectAll(view, c.endpoints(row), 0, model.BlocksPerPreset-1, c.pairOf(row))
				for _, conn := range conns {
					if err := c.client.Connect(conn.Origin, conn.Destination); err != nil {
						return fromEngineErr(err)
					}
				}
				c.current.NumLoadedPlugins += loaded
			} else {
				ep := c.endpoints(row)
				if err := c.client.Connect(ep.Capture[0], ep.Playback[0]); err != nil {
					return fromEngineErr(err)
				}
				if err := c.client.Connect(ep.Capture[1], ep.Playback[1]); err != nil {
					return fromEngineErr(err)
				}
			}
		}
		return nil
	}()

	if cerr := fade.Close(); cerr != nil && fadeErr == nil {
		fadeErr = fromEngineErr(cerr)
	}
	if fadeErr != nil {
		return c.fail(fadeErr)
	}

	if err := c.reloadBankDefaults(oldIndex, oldChains); err != nil {
		return c.fail(err)
	}
	return c.ok()
}

// reloadBankDefaults restores the instances of the preset just switched
// away from back to the bank's saved defaults for that slot, so the next
// SwitchPreset back to it starts from a known-clean state instead of
// whatever the user had left on screen.
func (c *Controller) reloadBankDefaults(oldIndex int, oldChains []model.ChainRow) error {
	defaults := c.bank.Presets[oldIndex]
	if defaults == nil {
		return nil
	}

	scope := c.client.NewScope()
	defer func() {
		if err := scope.Close(); err != nil {
			c.fail(fromEngineErr(err))
		}
	}()

	for row := range oldChains {
		for bl := range oldChains[row].Blocks {
			oldBlock := &oldChains[row].Blocks[bl]
			var defBlock *model.Block
			if row < len(defaults.Chains) {
				defBlock = &defaults.Chains[row].Blocks[bl]
			} else {
				defBlock = &model.Block{}
			}

			if defBlock.URI == oldBlock.URI {
				if defBlock.IsEmpty() {
					continue
				}
				pair := c.mapper.Get(oldIndex, row, bl)
				if pair.ID == instancemapper.Unset {
					continue
				}
				if defBlock.Enabled != oldBlock.Enabled {
					if err := c.client.Bypass(pair.ID, !defBlock.Enabled); err != nil {
						return fromEngineErr(err)
					}
					if pair.Pair != instancemapper.Unset {
						if err := c.client.Bypass(pair.Pair, !defBlock.Enabled); err != nil {
							return fromEngineErr(err)
						}
					}
				}
				if err := c.flushParamDiff(pair.ID, defBlock, oldBlock); err != nil {
					return err
				}
				if pair.Pair != instancemapper.Unset {
					if err := c.flushParamDiff(pair.Pair, defBlock, oldBlock); err != nil {
						return err
					}
				}
				continue
			}

			if !oldBlock.IsEmpty() {
				pair := c.mapper.Remove(oldIndex, row, bl)
				if pair.ID != instancemapper.Unset {
					if err := c.client.Remove(pair.ID); err != nil {
						return fromEngineErr(err)
					}
				}
				if pair.Pair != instancemapper.Unset {
					if err := c.client.Remove(pair.Pair); err != nil {
						return fromEngineErr(err)
					}
				}
			}

			if defBlock.IsEmpty() {
				continue
			}

			id, err := c.mapper.Add(oldIndex, row, bl)
			if err != nil {
				return wrapErr(KindLogic, err)
			}
			if err := c.client.Preload(defBlock.URI, id); err != nil {
				return fromEngineErr(err)
			}
			if graph.ShouldBeStereo(chainRowView(&defaults.Chains[row]), bl) && defBlock.Meta.IsMonoIn {
				pairID, err := c.mapper.AddPair(oldIndex, row, bl)
				if err != nil {
					return wrapErr(KindLogic, err)
				}
				if err := c.client.Preload(defBlock.URI, pairID); err != nil {
					return fromEngineErr(err)
				}
				if err := c.flushParams(pairID, defBlock, true); err != nil {
					return err
				}
				if !defBlock.Enabled {
					if err := c.client.Bypass(pairID, true); err != nil {
						return fromEngineErr(err)
					}
				}
			}
			if !defBlock.Enabled {
				if err := c.client.Bypass(id, true); err != nil {
					return fromEngineErr(err)
				}
			}
			if err := c.flushParams(id, defBlock, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// flushParamDiff flushes only the parameters whose value differs between
// def and old, mirroring connector.cpp's params_flush diffing when an
// unchanged plugin identity lets the engine skip untouched controls.
func (c *Controller) flushParamDiff(instanceID int, def, old *model.Block) error {
	params := make([]engineclient.FlushedParam, 0, len(def.Parameters))
	for i := range def.Parameters {
		if def.Parameters[i].Meta.Flags&FlagIsOutput != 0 {
			continue
		}
		if i < len(old.Parameters) && old.Parameters[i].Value == def.Parameters[i].Value {
			continue
		}
		params = append(params, engineclient.FlushedParam{Symbol: def.Parameters[i].Symbol, Value: def.Parameters[i].Value})
	}
	return fromEngineErr(c.client.ParamsFlush(instanceID, 1, params))
}
