package lod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amath "github.com/lodforge/meshgrid/engine/math"
)

func TestMBufAppendGrowsAndTracksOffsets(t *testing.T) {
	m := NewMBuf(VtxAttrNormal)

	off1 := m.AppendVertices(
		[]amath.Vec3{{X: 0}, {X: 1}, {X: 2}},
		[]amath.Vec3{{Y: 1}, {Y: 1}, {Y: 1}},
		nil, nil,
	)
	require.Equal(t, uint32(0), off1)
	assert.Len(t, m.Positions, 3)
	assert.Len(t, m.Normals, 3)
	assert.Len(t, m.Remap, 3)
	for _, r := range m.Remap {
		assert.Equal(t, RemapSentinel, r)
	}

	off2 := m.AppendVertices([]amath.Vec3{{X: 3}, {X: 4}}, nil, nil, nil)
	require.Equal(t, uint32(3), off2)
	assert.Len(t, m.Positions, 5)
	// Normals weren't supplied for the second batch; they should be
	// zero-valued, not garbage or missing.
	assert.Equal(t, amath.Vec3{}, m.Normals[3])
	assert.Equal(t, amath.Vec3{}, m.Normals[4])

	idxOff := m.AppendIndices([]uint32{0, 1, 2, 2, 3, 4})
	assert.Equal(t, uint32(0), idxOff)
	assert.Len(t, m.Indices, 6)
}

func TestMBufClearResetsEverything(t *testing.T) {
	m := NewMBuf(VtxAttrNormal | VtxAttrUV0)
	m.AppendVertices([]amath.Vec3{{X: 1}}, []amath.Vec3{{Y: 1}}, []amath.Vec2{{X: 1}}, nil)
	m.AppendIndices([]uint32{0, 0, 0})

	m.Clear()

	assert.Empty(t, m.Positions)
	assert.Empty(t, m.Normals)
	assert.Empty(t, m.UV0)
	assert.Empty(t, m.Indices)
	assert.Empty(t, m.Remap)
}

func TestGrowCapacityDoubles(t *testing.T) {
	assert.Equal(t, uint32(64), growCapacity(0, 1))
	assert.Equal(t, uint32(64), growCapacity(0, 64))
	assert.Equal(t, uint32(128), growCapacity(64, 65))
	assert.Equal(t, uint32(256), growCapacity(64, 200))
}
