package connector

import (
	"fmt"

	"github.com/shaban/modconnector/model"
)

// ReorderBlock moves the block at orig to dest within row, shifting the
// blocks between them by one position, and repairs the affected engine
// connections and any bindings pointing into the disturbed window (spec
// §4.4, §8 scenario 5).
func (c *Controller) ReorderBlock(row, orig, dest int) error {
	if err := c.validateRow(row); err != nil {
		return c.fail(err)
	}
	if err := c.validateBlock(orig); err != nil {
		return c.fail(err)
	}
	if err := c.validateBlock(dest); err != nil {
		return c.fail(err)
	}
	if orig == dest {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: ReorderBlock(%d,%d) - orig == dest", orig, dest)))
	}

	chain := &c.current.Chains[row]
	lo, hi := orig, dest
	if lo > hi {
		lo, hi = hi, lo
	}

	moved := chain.Blocks[orig]
	if orig < dest {
		copy(chain.Blocks[orig:dest], chain.Blocks[orig+1:dest+1])
	} else {
		copy(chain.Blocks[dest+1:orig+1], chain.Blocks[dest:orig])
	}
	chain.Blocks[dest] = moved

	c.mapper.Reorder(c.current.PresetIndex, row, orig, dest)
	c.renumberBindingsAfterReorder(row, orig, dest, lo, hi)

	c.markDirty(false)

	start, end := max0(lo-1), minInt(hi+1, model.BlocksPerPreset-1)
	return c.applyGraphAndReport(row, start, end)
}

// renumberBindingsAfterReorder updates every binding whose block index fell
// within [lo,hi] so it still addresses the plugin instance that moved,
// mirroring the block-array shift applied above.
func (c *Controller) renumberBindingsAfterReorder(row, orig, dest, lo, hi int) {
	remap := func(block int) int {
		if block < lo || block > hi {
			return block
		}
		switch {
		case block == orig:
			return dest
		case orig < dest && block > orig && block <= dest:
			return block - 1
		case orig > dest && block >= dest && block < orig:
			return block + 1
		default:
			return block
		}
	}
	for a := range c.current.Bindings {
		bd := &c.current.Bindings[a]
		for i := range bd.Parameters {
			if bd.Parameters[i].Row == row {
				bd.Parameters[i].Block = remap(bd.Parameters[i].Block)
			}
		}
		for i := range bd.Properties {
			if bd.Properties[i].Row == row {
				bd.Properties[i].Block = remap(bd.Properties[i].Block)
			}
		}
	}
}

// SwapBlockRow moves the block at (srcRow, srcBlock) into an empty cell at
// (dstRow, dstBlock), preserving its plugin identity and engine instance ID.
// Per spec §9 Open Questions, dual-mono reconciliation after a cross-row
// move is not performed by the original implementation; this port runs the
// §4.3 reconciler over both affected rows, since leaving either row's
// dual-mono state stale would violate the invariants in spec §8.
func (c *Controller) SwapBlockRow(srcRow, srcBlock, dstRow, dstBlock int) error {
	if err := c.validateRow(srcRow); err != nil {
		return c.fail(err)
	}
	if err := c.validateRow(dstRow); err != nil {
		return c.fail(err)
	}
	if err := c.validateBlock(srcBlock); err != nil {
		return c.fail(err)
	}
	if err := c.validateBlock(dstBlock); err != nil {
		return c.fail(err)
	}

	dst := c.current.Block(dstRow, dstBlock)
	if !dst.IsEmpty() {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: SwapBlockRow destination (%d,%d) is not empty", dstRow, dstBlock)))
	}
	src := c.current.Block(srcRow, srcBlock)
	if src.IsEmpty() {
		return c.fail(wrapErr(KindLogic, fmt.Errorf("connector: SwapBlockRow source (%d,%d) is empty", srcRow, srcBlock)))
	}

	*dst, *src = *src, *dst
	c.mapper.Swap(c.current.PresetIndex, srcRow, srcBlock, dstRow, dstBlock)

	for a := range c.current.Bindings {
		bd := &c.current.Bindings[a]
		for i := range bd.Parameters {
			if bd.Parameters[i].Row == srcRow && bd.Parameters[i].Block == srcBlock {
				bd.Parameters[i].Row, bd.Parameters[i].Block = dstRow, dstBlock
			}
		}
		for i := range bd.Properties {
			if bd.Properties[i].Row == srcRow && bd.Properties[i].Block == srcBlock {
				bd.Properties[i].Row, bd.Properties[i].Block = dstRow, dstBlock
			}
		}
	}

	c.markDirty(false)

	if err := c.applyGraph(srcRow, max0(srcBlock-1), minInt(srcBlock+1, model.BlocksPerPreset-1)); err != nil {
		return c.fail(err)
	}
	return c.applyGraphAndReport(dstRow, max0(dstBlock-1), minInt(dstBlock+1, model.BlocksPerPreset-1))
}
