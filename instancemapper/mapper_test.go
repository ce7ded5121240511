package instancemapper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddAndGetRoundTrip(t *testing.T) {
	m := New(8, 1, 1, 2)
	id, err := m.Add(0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, BlockPair{ID: id, Pair: Unset}, m.Get(0, 0, 0))
}

func TestAddPairThenRemoveFreesBoth(t *testing.T) {
	m := New(8, 1, 1, 1)
	id, err := m.Add(0, 0, 0)
	require.NoError(t, err)
	pairID, err := m.AddPair(0, 0, 0)
	require.NoError(t, err)
	require.NotEqual(t, id, pairID)

	freed := m.Remove(0, 0, 0)
	require.Equal(t, id, freed.ID)
	require.Equal(t, pairID, freed.Pair)

	// both IDs are free again: re-adding a primary and a pair succeeds
	// without hitting capacity.
	_, err = m.Add(0, 0, 0)
	require.NoError(t, err)
	_, err = m.AddPair(0, 0, 0)
	require.NoError(t, err)
}

func TestAllocExhaustion(t *testing.T) {
	m := New(2, 1, 1, 3)
	_, err := m.Add(0, 0, 0)
	require.NoError(t, err)
	_, err = m.Add(0, 0, 1)
	require.NoError(t, err)
	_, err = m.Add(0, 0, 2)
	require.Error(t, err)
}

func TestGetBlockWithIDMatchesPrimaryOnly(t *testing.T) {
	m := New(8, 1, 2, 2)
	id, err := m.Add(0, 1, 0)
	require.NoError(t, err)
	pairID, err := m.AddPair(0, 1, 0)
	require.NoError(t, err)

	loc, ok := m.GetBlockWithID(0, id)
	require.True(t, ok)
	require.Equal(t, BlockAndRow{Row: 1, Block: 0}, loc)

	_, ok = m.GetBlockWithID(0, pairID)
	require.False(t, ok, "a pair ID is never independently addressable by feedback")
}

func TestResetFreesEveryCellInPreset(t *testing.T) {
	m := New(8, 2, 1, 2)
	_, err := m.Add(0, 0, 0)
	require.NoError(t, err)
	_, err = m.Add(0, 0, 1)
	require.NoError(t, err)

	m.Reset(0)
	require.Equal(t, BlockPair{ID: Unset, Pair: Unset}, m.Get(0, 0, 0))

	// freed capacity is usable again
	_, err = m.Add(0, 0, 0)
	require.NoError(t, err)
}

func TestReorderShiftsIntermediateCells(t *testing.T) {
	m := New(8, 1, 1, 3)
	a, err := m.Add(0, 0, 0)
	require.NoError(t, err)
	b, err := m.Add(0, 0, 1)
	require.NoError(t, err)
	c, err := m.Add(0, 0, 2)
	require.NoError(t, err)

	m.Reorder(0, 0, 0, 2)

	require.Equal(t, b, m.Get(0, 0, 0).ID)
	require.Equal(t, c, m.Get(0, 0, 1).ID)
	require.Equal(t, a, m.Get(0, 0, 2).ID)
}

func TestSwapExchangesCellsAcrossRows(t *testing.T) {
	m := New(8, 1, 2, 2)
	a, err := m.Add(0, 0, 0)
	require.NoError(t, err)
	b, err := m.Add(0, 1, 1)
	require.NoError(t, err)

	m.Swap(0, 0, 0, 1, 1)

	require.Equal(t, b, m.Get(0, 0, 0).ID)
	require.Equal(t, a, m.Get(0, 1, 1).ID)
}
