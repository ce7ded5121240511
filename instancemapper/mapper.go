// Package instancemapper maintains the bijection between a pedalboard cell
// (preset, row, block) and the small integer instance IDs the audio engine
// uses to address loaded plugins. It is a direct port of the bounded
// bitset-backed arena used by the system this connector drives: IDs are
// handed out by linear scan over a used-bits array and are never reused
// until explicitly freed.
package instancemapper

import "fmt"

// Unset is the sentinel value meaning "no instance assigned".
const Unset = -1

// BlockAndRow identifies a cell by its row and block index within a preset.
type BlockAndRow struct {
	Block int
	Row   int
}

// BlockPair is the pair of engine instance IDs a cell may carry: ID is
// always present once a block is loaded, Pair is Unset unless the block was
// expanded into a dual-mono pair.
type BlockPair struct {
	ID   int
	Pair int
}

func emptyPair() BlockPair { return BlockPair{ID: Unset, Pair: Unset} }

// Mapper is the per-bank instance allocator. It is not safe for concurrent
// use; callers serialize access the way every other part of this connector
// does.
type Mapper struct {
	capacity int
	rows     int
	blocks   int
	presets  int
	used     []bool
	cells    [][]BlockPair // presets * (rows*blocks)
}

// New creates a mapper with the given capacity and the given preset/row/block
// shape. capacity must be large enough to cover presets*rows*blocks*2 in the
// worst case (every block expanded to dual-mono); the caller is expected to
// size it from its own engine's instance-pool limit.
func New(capacity, presets, rows, blocks int) *Mapper {
	m := &Mapper{
		capacity: capacity,
		rows:     rows,
		blocks:   blocks,
		presets:  presets,
		used:     make([]bool, capacity),
	}
	m.cells = make([][]BlockPair, presets)
	for p := range m.cells {
		cells := make([]BlockPair, rows*blocks)
		for i := range cells {
			cells[i] = emptyPair()
		}
		m.cells[p] = cells
	}
	return m
}

func (m *Mapper) index(row, block int) int { return row*m.blocks + block }

func (m *Mapper) alloc() (int, error) {
	for i, u := range m.used {
		if !u {
			m.used[i] = true
			return i, nil
		}
	}
	return Unset, fmt.Errorf("instancemapper: no free instance slots (capacity %d)", m.capacity)
}

func (m *Mapper) free(id int) {
	if id >= 0 && id < len(m.used) {
		m.used[id] = false
	}
}

// Add allocates a primary instance ID for (preset, row, block).
func (m *Mapper) Add(preset, row, block int) (int, error) {
	id, err := m.alloc()
	if err != nil {
		return Unset, err
	}
	m.cells[preset][m.index(row, block)].ID = id
	return id, nil
}

// AddPair allocates the dual-mono pair instance ID for a cell that already
// has a primary ID.
func (m *Mapper) AddPair(preset, row, block int) (int, error) {
	id, err := m.alloc()
	if err != nil {
		return Unset, err
	}
	m.cells[preset][m.index(row, block)].Pair = id
	return id, nil
}

// Remove frees both the primary and (if present) pair instance for a cell,
// returning them so the caller can tear down the engine-side instances.
func (m *Mapper) Remove(preset, row, block int) BlockPair {
	cell := &m.cells[preset][m.index(row, block)]
	freed := *cell
	m.free(cell.ID)
	m.free(cell.Pair)
	*cell = emptyPair()
	return freed
}

// RemovePair frees only the pair instance, leaving the primary untouched.
// Returns the freed pair ID, or Unset if there was none.
func (m *Mapper) RemovePair(preset, row, block int) int {
	cell := &m.cells[preset][m.index(row, block)]
	pair := cell.Pair
	m.free(pair)
	cell.Pair = Unset
	return pair
}

// Get returns the BlockPair currently assigned to (preset, row, block).
func (m *Mapper) Get(preset, row, block int) BlockPair {
	return m.cells[preset][m.index(row, block)]
}

// GetBlockWithID scans a preset's cells for the one whose primary ID matches
// id, returning its location. The second return is false if no cell's
// primary ID matches; a match on a cell's pair ID alone does not count,
// since pair instances are never independently addressed by feedback.
func (m *Mapper) GetBlockWithID(preset, id int) (BlockAndRow, bool) {
	cells := m.cells[preset]
	for i, c := range cells {
		if c.ID == id {
			return BlockAndRow{Block: i % m.blocks, Row: i / m.blocks}, true
		}
	}
	return BlockAndRow{}, false
}

// Reset clears every cell and used bit for a preset back to empty.
func (m *Mapper) Reset(preset int) {
	cells := m.cells[preset]
	for i := range cells {
		m.free(cells[i].ID)
		m.free(cells[i].Pair)
		cells[i] = emptyPair()
	}
}

// Reorder moves the cell at (preset, row, from) to (preset, row, to) within
// the same row, shifting intervening cells by one position each, exactly the
// way the engine-side block list is reordered (a sequence of adjacent
// swaps, not a single rotate).
func (m *Mapper) Reorder(preset, row, from, to int) {
	cells := m.cells[preset]
	base := row * m.blocks
	if from == to {
		return
	}
	if from > to {
		for i := from; i > to; i-- {
			cells[base+i], cells[base+i-1] = cells[base+i-1], cells[base+i]
		}
	} else {
		for i := from; i < to; i++ {
			cells[base+i], cells[base+i+1] = cells[base+i+1], cells[base+i]
		}
	}
}

// Swap exchanges the two cells at (preset, rowA, blockA) and
// (preset, rowB, blockB), which may be in different rows.
func (m *Mapper) Swap(preset, rowA, blockA, rowB, blockB int) {
	cells := m.cells[preset]
	ia, ib := m.index(rowA, blockA), m.index(rowB, blockB)
	cells[ia], cells[ib] = cells[ib], cells[ia]
}
