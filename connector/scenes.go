package connector

import (
	"fmt"

	"github.com/shaban/modconnector/engineclient"
	"github.com/shaban/modconnector/instancemapper"
	"github.com/shaban/modconnector/model"
)

// SwitchScene activates scene and applies every parameter the scene marks
// as used to every block that has scene data, issuing one params_flush per
// engine instance tagged as a soft reset (spec §4.4, §8 scenario 6's
// counterpart on the read side).
func (c *Controller) SwitchScene(scene int) error {
	if scene < 0 || scene >= model.ScenesPerPreset {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: scene %d out of range", scene)))
	}
	if c.current.Scene == scene {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: SwitchScene(%d) - already active", scene)))
	}
	c.current.Scene = scene

	scope := c.client.NewScope()
	defer func() {
		if err := scope.Close(); err != nil {
			c.fail(fromEngineErr(err))
		}
	}()

	for row := range c.current.Chains {
		chain := &c.current.Chains[row]
		for bi := range chain.Blocks {
			b := &chain.Blocks[bi]
			if b.IsEmpty() || !b.HasScenes() {
				continue
			}
			pair := c.mapper.Get(c.current.PresetIndex, row, bi)
			if pair.ID == instancemapper.Unset {
				continue
			}

			var params []engineclient.FlushedParam
			for pi := range b.Parameters {
				if b.Parameters[pi].Meta.Flags&FlagIsOutput != 0 {
					continue
				}
				value, used := b.SceneParamValue(scene, pi)
				if !used {
					continue
				}
				b.Parameters[pi].Value = value
				params = append(params, engineclient.FlushedParam{Symbol: b.Parameters[pi].Symbol, Value: value})
			}

			if err := c.client.ParamsFlush(pair.ID, 0, params); err != nil {
				return c.fail(fromEngineErr(err))
			}
			if pair.Pair != instancemapper.Unset {
				if err := c.client.ParamsFlush(pair.Pair, 0, params); err != nil {
					return c.fail(fromEngineErr(err))
				}
			}

			if scene < len(b.SceneValues) && b.SceneValues[scene].Enabled {
				wantEnabled := b.SceneValues[scene].Enabled
				if b.Enabled != wantEnabled {
					b.Enabled = wantEnabled
					if err := c.client.Bypass(pair.ID, !wantEnabled); err != nil {
						return c.fail(fromEngineErr(err))
					}
					if pair.Pair != instancemapper.Unset {
						if err := c.client.Bypass(pair.Pair, !wantEnabled); err != nil {
							return c.fail(fromEngineErr(err))
						}
					}
				}
			}
		}
	}

	return c.ok()
}

// RenameScene changes the display name of one of the active preset's scenes.
func (c *Controller) RenameScene(scene int, name string) error {
	if scene < 0 || scene >= model.ScenesPerPreset {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: scene %d out of range", scene)))
	}
	c.current.SceneNames[scene] = name
	c.markDirty(false)
	return c.ok()
}

// SwapScenes exchanges the stored values of two scenes across every block
// in the active preset, including their display names.
func (c *Controller) SwapScenes(a, b int) error {
	if a < 0 || a >= model.ScenesPerPreset || b < 0 || b >= model.ScenesPerPreset {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: scene index out of range")))
	}
	if a == b {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: SwapScenes - a == b")))
	}
	c.current.SceneNames[a], c.current.SceneNames[b] = c.current.SceneNames[b], c.current.SceneNames[a]
	for row := range c.current.Chains {
		chain := &c.current.Chains[row]
		for bi := range chain.Blocks {
			blk := &chain.Blocks[bi]
			if len(blk.SceneValues) <= a || len(blk.SceneValues) <= b {
				continue
			}
			blk.SceneValues[a], blk.SceneValues[b] = blk.SceneValues[b], blk.SceneValues[a]
		}
	}
	if c.current.Scene == a {
		c.current.Scene = b
	} else if c.current.Scene == b {
		c.current.Scene = a
	}
	c.markDirty(false)
	return c.ok()
}
