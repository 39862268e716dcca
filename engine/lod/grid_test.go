package lod_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodforge/meshgrid/engine/lod"
	amath "github.com/lodforge/meshgrid/engine/math"
	"github.com/lodforge/meshgrid/testbed"
)

// unitCubeSource appends a 12-triangle, 8-vertex cube spanning
// [0,1]^3 into arena and returns its source descriptor.
func unitCubeSource(arena *lod.MBuf) lod.SourceMesh {
	c := func(x, y, z float32) amath.Vec3 { return amath.Vec3{X: x, Y: y, Z: z} }
	positions := []amath.Vec3{
		c(0, 0, 0), c(1, 0, 0), c(1, 1, 0), c(0, 1, 0),
		c(0, 0, 1), c(1, 0, 1), c(1, 1, 1), c(0, 1, 1),
	}
	indices := []uint32{
		0, 1, 2, 0, 2, 3, // -Z
		4, 6, 5, 4, 7, 6, // +Z
		0, 4, 5, 0, 5, 1, // -Y
		1, 5, 6, 1, 6, 2, // +X
		2, 6, 7, 2, 7, 3, // +Y
		3, 7, 4, 3, 4, 0, // -X
	}
	vtxOffset := arena.AppendVertices(positions, nil, nil, nil)
	idxOffset := arena.AppendIndices(indices)
	return lod.SourceMesh{
		IndexOffset:  idxOffset,
		IndexCount:   uint32(len(indices)),
		VertexOffset: vtxOffset,
		VertexCount:  uint32(len(positions)),
	}
}

func TestBuildFromMeshSingleLeafCell(t *testing.T) {
	arena := lod.NewMBuf(lod.VtxAttrNormal)
	src := unitCubeSource(arena)

	grid, err := lod.NewMeshGrid(amath.Vec3{}, 2, 1, 0.01)
	require.NoError(t, err)

	stats, err := grid.BuildFromMesh(arena, src, 1)
	require.NoError(t, err)
	require.Equal(t, []int{1}, stats.CellCountPerLevel)

	mesh, ok := grid.GetCell(lod.CellCoord{Lod: 0, X: 0, Y: 0, Z: 0})
	require.True(t, ok)
	assert.EqualValues(t, 36, mesh.IndexCount)
	assert.Zero(t, stats.MeanRelativeError)
}

func TestBuildFromMeshDegenerateInputYieldsEmptyGrid(t *testing.T) {
	arena := lod.NewMBuf(lod.VtxAttrNormal)
	src := lod.SourceMesh{}

	grid, err := lod.NewMeshGrid(amath.Vec3{}, 1, 3, 0.01)
	require.NoError(t, err)

	stats, err := grid.BuildFromMesh(arena, src, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, stats.CellCountPerLevel)
}

func TestBuildFromMeshRejectsNonFiniteVertex(t *testing.T) {
	arena := lod.NewMBuf(lod.VtxAttrNormal)
	src := unitCubeSource(arena)
	arena.Positions[src.VertexOffset] = amath.Vec3{X: float32(math.Inf(1))}

	grid, err := lod.NewMeshGrid(amath.Vec3{}, 2, 1, 0.01)
	require.NoError(t, err)

	stats, err := grid.BuildFromMesh(arena, src, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, stats.CellCountPerLevel)
}

func TestBuildFromMeshRejectsCoordOverflow(t *testing.T) {
	arena := lod.NewMBuf(lod.VtxAttrNormal)
	src := unitCubeSource(arena)
	arena.Positions[src.VertexOffset] = amath.Vec3{X: 1e9, Y: 1e9, Z: 1e9}

	grid, err := lod.NewMeshGrid(amath.Vec3{}, 1, 1, 0.01)
	require.NoError(t, err)

	_, err = grid.BuildFromMesh(arena, src, 1)
	assert.ErrorIs(t, err, lod.ErrCoordOverflow)
}

func TestNewMeshGridValidatesParameters(t *testing.T) {
	_, err := lod.NewMeshGrid(amath.Vec3{}, 0, 1, 0.01)
	assert.ErrorIs(t, err, lod.ErrInvalidStep)

	_, err = lod.NewMeshGrid(amath.Vec3{}, 1, 0, 0.01)
	assert.ErrorIs(t, err, lod.ErrInvalidLevels)

	_, err = lod.NewMeshGrid(amath.Vec3{}, 1, 1, -1)
	assert.ErrorIs(t, err, lod.ErrInvalidErrTol)
}

func TestBuildFromMeshMultiLevelCoverageAndStats(t *testing.T) {
	arena, src := testbed.GenerateCube(8, 4)

	grid, err := lod.NewMeshGrid(amath.Vec3{X: -8, Y: -8, Z: -8}, 2, 4, 0.5)
	require.NoError(t, err)

	stats, err := grid.BuildFromMesh(arena, src, 4)
	require.NoError(t, err)
	require.Len(t, stats.CellCountPerLevel, 4)
	require.Greater(t, stats.CellCountPerLevel[0], 0, "leaf level should not be empty")

	sourceTriCount := int(src.IndexCount / 3)
	assert.Equal(t, sourceTriCount, grid.TriangleCountAt(0), "every source triangle lands in exactly one leaf")

	// Every non-top level reports a cell count; remap entries are not
	// inspected here.
	for level := 0; level < grid.Levels-1; level++ {
		count := grid.CellCountAt(level)
		assert.GreaterOrEqual(t, count, 0)
	}

	// With a populated top level, the build reports a mean relative error.
	topLevel := grid.Levels - 1
	if grid.CellCountAt(topLevel) > 0 {
		// Nothing asserts directly on Remap here since grid doesn't
		// expose per-level vertex ranges publicly; MeanRelativeError
		// over non-leaf levels is exercised instead.
		assert.GreaterOrEqual(t, stats.MeanRelativeError, float32(0))
	}
}
