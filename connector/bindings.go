package connector

import (
	"fmt"

	"github.com/shaban/modconnector/model"
)

// AddParameterBinding appends a hardware-actuator binding to a block's
// parameter, with an optional [min,max] override narrower than the
// parameter's own declared range (spec §3 Binding).
func (c *Controller) AddParameterBinding(actuator, row, block int, symbol string, min, max float32) error {
	if err := c.validateActuator(actuator); err != nil {
		return c.fail(err)
	}
	if err := c.validateRow(row); err != nil {
		return c.fail(err)
	}
	b := c.current.Block(row, block)
	if b == nil || b.IsEmpty() {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: binding to empty block (%d,%d)", row, block)))
	}
	idx := b.ParameterIndexForSymbol(symbol)
	if idx < 0 {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: unknown parameter %q", symbol)))
	}
	if min == 0 && max == 0 {
		min, max = b.Parameters[idx].Meta.Min, b.Parameters[idx].Meta.Max
	}
	bd := &c.current.Bindings[actuator]
	bd.Parameters = append(bd.Parameters, model.ParameterBinding{
		Row: row, Block: block, Min: min, Max: max, ParameterSymbol: symbol,
	})
	c.markDirty(false)
	return c.ok()
}

// AddPropertyBinding is AddParameterBinding for patch properties.
func (c *Controller) AddPropertyBinding(actuator, row, block int, propertyURI string) error {
	if err := c.validateActuator(actuator); err != nil {
		return c.fail(err)
	}
	if err := c.validateRow(row); err != nil {
		return c.fail(err)
	}
	b := c.current.Block(row, block)
	if b == nil || b.IsEmpty() {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: binding to empty block (%d,%d)", row, block)))
	}
	if b.PropertyIndexForURI(propertyURI) < 0 {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: unknown property %q", propertyURI)))
	}
	bd := &c.current.Bindings[actuator]
	bd.Properties = append(bd.Properties, model.PropertyBinding{Row: row, Block: block, PropertyURI: propertyURI})
	c.markDirty(false)
	return c.ok()
}

// RemoveParameterBinding removes the i'th parameter binding from actuator.
func (c *Controller) RemoveParameterBinding(actuator, i int) error {
	if err := c.validateActuator(actuator); err != nil {
		return c.fail(err)
	}
	bd := &c.current.Bindings[actuator]
	if i < 0 || i >= len(bd.Parameters) {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: binding index %d out of range", i)))
	}
	bd.Parameters = append(bd.Parameters[:i], bd.Parameters[i+1:]...)
	c.markDirty(false)
	return c.ok()
}

// RemovePropertyBinding removes the i'th property binding from actuator.
func (c *Controller) RemovePropertyBinding(actuator, i int) error {
	if err := c.validateActuator(actuator); err != nil {
		return c.fail(err)
	}
	bd := &c.current.Bindings[actuator]
	if i < 0 || i >= len(bd.Properties) {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: binding index %d out of range", i)))
	}
	bd.Properties = append(bd.Properties[:i], bd.Properties[i+1:]...)
	c.markDirty(false)
	return c.ok()
}

// ReorderParameterBinding moves the i'th parameter binding on actuator to
// position dest within the same actuator's list.
func (c *Controller) ReorderParameterBinding(actuator, i, dest int) error {
	if err := c.validateActuator(actuator); err != nil {
		return c.fail(err)
	}
	bd := &c.current.Bindings[actuator]
	if i < 0 || i >= len(bd.Parameters) || dest < 0 || dest >= len(bd.Parameters) {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: binding index out of range")))
	}
	if i == dest {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: ReorderParameterBinding - i == dest")))
	}
	moved := bd.Parameters[i]
	bd.Parameters = append(bd.Parameters[:i], bd.Parameters[i+1:]...)
	bd.Parameters = append(bd.Parameters[:dest], append([]model.ParameterBinding{moved}, bd.Parameters[dest:]...)...)
	c.markDirty(false)
	return c.ok()
}

// removeBindingsForCell drops every binding (on every actuator) that
// addresses (row, block), used by ReplaceBlock when clearBindings is set.
func (c *Controller) removeBindingsForCell(row, block int) {
	for a := range c.current.Bindings {
		bd := &c.current.Bindings[a]
		kept := bd.Parameters[:0]
		for _, pb := range bd.Parameters {
			if pb.Row != row || pb.Block != block {
				kept = append(kept, pb)
			}
		}
		bd.Parameters = kept

		keptP := bd.Properties[:0]
		for _, pb := range bd.Properties {
			if pb.Row != row || pb.Block != block {
				keptP = append(keptP, pb)
			}
		}
		bd.Properties = keptP
	}
}

// SetBindingValue records a normalized [0,1] actuator position and fans it
// out to the actuator's bindings (spec §4.4). Each parameter binding gets
// the position scaled into its own [Min,Max]. Each property binding has its
// property's current value sent again; the position is not applied to it.
// There are no bypass bindings.
func (c *Controller) SetBindingValue(actuator int, normalized float64, sceneMode SceneMode) error {
	if err := c.validateActuator(actuator); err != nil {
		return c.fail(err)
	}
	if normalized < 0 || normalized > 1 {
		return c.fail(wrapErr(KindValidation, fmt.Errorf("connector: binding value %g out of [0,1]", normalized)))
	}
	bd := &c.current.Bindings[actuator]
	bd.Value = normalized

	for _, pb := range bd.Parameters {
		b := c.current.Block(pb.Row, pb.Block)
		if b == nil || b.IsEmpty() {
			continue
		}
		scaled := pb.Min + float32(normalized)*(pb.Max-pb.Min)
		if err := c.SetBlockParameter(pb.Row, pb.Block, pb.ParameterSymbol, scaled, sceneMode); err != nil {
			return err
		}
	}
	for _, pb := range bd.Properties {
		b := c.current.Block(pb.Row, pb.Block)
		if b == nil || b.IsEmpty() {
			continue
		}
		idx := b.PropertyIndexForURI(pb.PropertyURI)
		if idx < 0 {
			continue
		}
		if err := c.SetBlockProperty(pb.Row, pb.Block, pb.PropertyURI, b.Properties[idx].Value, sceneMode); err != nil {
			return err
		}
	}
	return c.ok()
}
