package lod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellTableInsertLookup(t *testing.T) {
	tbl := NewCellTable(4)
	coords := []CellCoord{
		{Lod: 0, X: 0, Y: 0, Z: 0},
		{Lod: 0, X: 1, Y: 0, Z: 0},
		{Lod: 1, X: 0, Y: 0, Z: 0},
		{Lod: 0, X: -5, Y: 3, Z: -2},
	}
	for i, c := range coords {
		tbl.Insert(c, uint32(i))
	}
	require.Equal(t, len(coords), tbl.Len())

	for i, c := range coords {
		v, ok := tbl.Lookup(c)
		require.True(t, ok)
		assert.Equal(t, uint32(i), v)
	}

	_, ok := tbl.Lookup(CellCoord{Lod: 9, X: 9, Y: 9, Z: 9})
	assert.False(t, ok)
}

func TestCellTableGrowsUnderLoad(t *testing.T) {
	tbl := NewCellTable(1)
	const n = 500
	for i := 0; i < n; i++ {
		tbl.Insert(CellCoord{Lod: 0, X: int16(i), Y: int16(i * 7 % 991), Z: int16(-i)}, uint32(i))
	}
	assert.Equal(t, n, tbl.Len())
	for i := 0; i < n; i++ {
		v, ok := tbl.Lookup(CellCoord{Lod: 0, X: int16(i), Y: int16(i * 7 % 991), Z: int16(-i)})
		require.True(t, ok)
		assert.Equal(t, uint32(i), v)
	}
}

func TestCellTableOverwrite(t *testing.T) {
	tbl := NewCellTable(4)
	c := CellCoord{Lod: 2, X: 1, Y: 1, Z: 1}
	tbl.Insert(c, 10)
	tbl.Insert(c, 20)
	v, ok := tbl.Lookup(c)
	require.True(t, ok)
	assert.Equal(t, uint32(20), v)
	assert.Equal(t, 1, tbl.Len())
}

func TestMix64DoesNotCollapseLodBits(t *testing.T) {
	a := mix64(CellCoord{Lod: 0, X: 1, Y: 1, Z: 1}.Key())
	b := mix64(CellCoord{Lod: 1, X: 1, Y: 1, Z: 1}.Key())
	assert.NotEqual(t, a, b)
}
