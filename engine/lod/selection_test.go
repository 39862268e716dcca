package lod_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodforge/meshgrid/engine/containers"
	"github.com/lodforge/meshgrid/engine/lod"
	amath "github.com/lodforge/meshgrid/engine/math"
	"github.com/lodforge/meshgrid/testbed"
)

func buildTestGrid(t *testing.T) *lod.MeshGrid {
	t.Helper()
	arena, src := testbed.GenerateCube(8, 4)
	grid, err := lod.NewMeshGrid(amath.Vec3{X: -8, Y: -8, Z: -8}, 2, 4, 0.5)
	require.NoError(t, err)
	_, err = grid.BuildFromMesh(arena, src, 4)
	require.NoError(t, err)
	return grid
}

func TestSelectFromFarAwayCollapsesToCoarseCut(t *testing.T) {
	grid := buildTestGrid(t)
	sel := lod.NewSelector(grid)
	out := containers.NewFrameBuffers(64)

	sel.Select(lod.SelectParams{
		ViewPos: amath.Vec3{X: 0, Y: 0, Z: 10000},
		Kappa:   1,
	}, out)

	require.Greater(t, out.Len(), 0, "a distant viewer must still get some cut")
	far := out.Len()

	sel.Select(lod.SelectParams{
		ViewPos: amath.Vec3{X: 0, Y: 0, Z: 0},
		Kappa:   1,
	}, out)
	near := out.Len()

	assert.Greater(t, near, 0)
	assert.LessOrEqual(t, far, near, "a distant viewer should never request more cells than a close one")
}

func TestSelectIsIdempotentForFixedParams(t *testing.T) {
	grid := buildTestGrid(t)
	sel := lod.NewSelector(grid)
	out := containers.NewFrameBuffers(64)

	params := lod.SelectParams{ViewPos: amath.Vec3{X: 3, Y: 3, Z: 3}, Kappa: 1}
	sel.Select(params, out)
	first := append([]uint32(nil), out.ToDraw...)

	sel.Select(params, out)
	second := append([]uint32(nil), out.ToDraw...)

	assert.Equal(t, first, second, "repeated selection with identical params must produce an identical cut")
}

func TestSelectEmptyGridProducesEmptyCut(t *testing.T) {
	grid, err := lod.NewMeshGrid(amath.Vec3{}, 1, 2, 0.01)
	require.NoError(t, err)
	sel := lod.NewSelector(grid)
	out := containers.NewFrameBuffers(8)

	sel.Select(lod.SelectParams{ViewPos: amath.Vec3{}, Kappa: 1}, out)
	assert.Equal(t, 0, out.Len())
}

func TestSelectFrustumCullExcludesCellsBehindCamera(t *testing.T) {
	grid := buildTestGrid(t)
	sel := lod.NewSelector(grid)
	out := containers.NewFrameBuffers(64)

	// Looking away from the mesh entirely (target behind the viewer,
	// relative to the mesh's location) should cull everything.
	view := amath.NewMat4LookAt(amath.Vec3{X: 0, Y: 0, Z: -1000}, amath.Vec3{X: 0, Y: 0, Z: -1001}, amath.NewVec3Up())
	proj := amath.NewMat4Perspective(amath.DegToRad(60), 1, 0.1, 100)
	pvm := proj.Mul(view)

	sel.Select(lod.SelectParams{
		ViewPos:     amath.Vec3{X: 0, Y: 0, Z: -1000},
		Kappa:       1,
		FrustumCull: true,
		PVM:         &pvm,
	}, out)

	assert.Equal(t, 0, out.Len(), "a mesh entirely outside the frustum must be culled")
}

func TestSelectContinuousLODFillsParallelParents(t *testing.T) {
	grid := buildTestGrid(t)
	sel := lod.NewSelector(grid)
	out := containers.NewFrameBuffers(64)

	sel.Select(lod.SelectParams{
		ViewPos:       amath.Vec3{X: 0, Y: 0, Z: 10000},
		Kappa:         1,
		ContinuousLOD: true,
	}, out)

	require.Equal(t, out.Len(), len(out.Parents))
}

func TestSuggestKappaScalesWithMeanRelativeError(t *testing.T) {
	fov := amath.DegToRad(60)
	k1 := lod.SuggestKappa(1920, 0.01, 2, fov)
	k2 := lod.SuggestKappa(1920, 0.02, 2, fov)
	assert.Greater(t, k2, k1, "doubling mean relative error should double the suggested kappa")

	assert.Equal(t, float32(1), lod.SuggestKappa(0, 0.01, 2, fov), "invalid viewport width falls back to kappa=1")
}
