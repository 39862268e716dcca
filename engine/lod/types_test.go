package lod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellCoordKeyUnique(t *testing.T) {
	seen := make(map[uint64]CellCoord)
	coords := []CellCoord{
		{Lod: 0, X: 0, Y: 0, Z: 0},
		{Lod: 1, X: 0, Y: 0, Z: 0},
		{Lod: 0, X: 1, Y: 0, Z: 0},
		{Lod: 0, X: -1, Y: 0, Z: 0},
		{Lod: -1, X: 0, Y: 0, Z: 0},
	}
	for _, c := range coords {
		k := c.Key()
		if other, ok := seen[k]; ok {
			t.Fatalf("key collision between %+v and %+v", c, other)
		}
		seen[k] = c
	}
	assert.Equal(t, EmptyCellCoord.Key(), coords[4].Key())
}

func TestCellCoordParentChildRoundTrip(t *testing.T) {
	c := CellCoord{Lod: 0, X: 5, Y: 3, Z: 7}
	parent := c.Parent()
	assert.Equal(t, int16(1), parent.Lod)

	var foundOctant = -1
	for octant := 0; octant < 8; octant++ {
		if parent.Child(octant) == c {
			foundOctant = octant
			break
		}
	}
	assert.GreaterOrEqual(t, foundOctant, 0, "c must be one of parent's eight children")
}

func TestCellCoordParentNegativeCoords(t *testing.T) {
	c := CellCoord{Lod: 0, X: -3, Y: -1, Z: -2}
	parent := c.Parent()
	// Arithmetic shift right rounds toward negative infinity.
	assert.Equal(t, int16(-2), parent.X)
	assert.Equal(t, int16(-1), parent.Y)
	assert.Equal(t, int16(-1), parent.Z)
}

func TestVtxAttrHas(t *testing.T) {
	a := VtxAttrNormal | VtxAttrUV0
	assert.True(t, a.Has(VtxAttrNormal))
	assert.True(t, a.Has(VtxAttrUV0))
	assert.False(t, a.Has(VtxAttrUV1))
	assert.True(t, a.Has(VtxAttrNormal|VtxAttrUV0))
	assert.False(t, a.Has(VtxAttrNormal|VtxAttrUV1))
}
