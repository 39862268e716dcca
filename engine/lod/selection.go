package lod

import (
	"math"

	"github.com/lodforge/meshgrid/engine/containers"
	amath "github.com/lodforge/meshgrid/engine/math"
)

// ViewRatioMetric selects which distance norm the view ratio uses.
type ViewRatioMetric int

const (
	// ViewRatioLInf is the default: rho = 1 / max(d_inf(vp, B), step_at(lod)).
	ViewRatioLInf ViewRatioMetric = iota
	// ViewRatioEuclidean uses Euclidean distance in place of L-infinity.
	ViewRatioEuclidean
)

// Selector runs the view-dependent cut traversal against a grid. It
// holds no per-frame state: Select can be called repeatedly, and every
// call starts fresh from the top-level cells.
type Selector struct {
	Grid   *MeshGrid
	Metric ViewRatioMetric
}

// NewSelector returns a selector over grid using the default L-infinity
// view ratio.
func NewSelector(grid *MeshGrid) *Selector {
	return &Selector{Grid: grid, Metric: ViewRatioLInf}
}

// SelectParams bundles Select's per-call inputs.
type SelectParams struct {
	ViewPos       amath.Vec3
	Kappa         float32
	ContinuousLOD bool
	FrustumCull   bool
	PVM           *amath.Mat4
}

// Select fills out with the current draw cut for params, per the
// projected-error traversal: depth-first from the top-level cells,
// pruning subtrees the frustum rejects and cells whose projected error
// already falls under 1/kappa.
func (s *Selector) Select(params SelectParams, out *containers.FrameBuffers) {
	out.Reset()
	if s.Grid == nil || len(s.Grid.cellCoords) == 0 {
		return
	}

	var frustum Frustum
	haveFrustum := params.FrustumCull && params.PVM != nil
	if haveFrustum {
		frustum = NewFrustum(params.PVM)
	}

	topLod := int16(s.Grid.Levels - 1)
	start, count := s.Grid.cellOffsets[s.Grid.Levels-1], s.Grid.cellCounts[s.Grid.Levels-1]
	for i := start; i < start+count; i++ {
		coord := s.Grid.cellCoords[i]
		if coord.Lod != topLod {
			continue
		}
		s.visit(coord, EmptyCellCoord, haveFrustum, frustum, params, out)
	}
}

func (s *Selector) visit(coord, parentCoord CellCoord, haveFrustum bool, frustum Frustum, params SelectParams, out *containers.FrameBuffers) {
	idx, ok := s.Grid.table.Lookup(coord)
	if !ok {
		return
	}
	mesh := s.Grid.cells[idx]

	if haveFrustum {
		worldBox := amath.AABB{
			Min: mesh.LocalAABB.Min,
			Max: mesh.LocalAABB.Max,
		}
		if frustum.Classify(worldBox) == Outside {
			return
		}
	}

	isLeaf := coord.Lod == 0
	err := s.Grid.cellErrors[idx]
	acceptable := isLeaf || s.acceptable(err, coord, mesh, params)

	if acceptable {
		s.emit(coord, idx, parentCoord, params, out)
		return
	}

	anyChild := false
	for octant := 0; octant < 8; octant++ {
		childCoord := coord.Child(octant)
		if s.Grid.table.Contains(childCoord) {
			anyChild = true
			s.visit(childCoord, coord, haveFrustum, frustum, params, out)
		}
	}
	if !anyChild {
		// No present children despite being non-leaf-acceptable: draw
		// what we have rather than emit nothing for this subtree.
		s.emit(coord, idx, parentCoord, params, out)
	}
}

func (s *Selector) acceptable(cellError float32, coord CellCoord, mesh Mesh, params SelectParams) bool {
	rho := s.viewRatio(params.ViewPos, coord, mesh)
	return cellError*rho*params.Kappa < 1
}

func (s *Selector) viewRatio(vp amath.Vec3, coord CellCoord, mesh Mesh) float32 {
	step := s.Grid.StepAt(coord.Lod)
	box := amath.AABB{Min: mesh.LocalAABB.Min, Max: mesh.LocalAABB.Max}
	var d float32
	switch s.Metric {
	case ViewRatioEuclidean:
		d = box.DistanceEuclidean(vp)
	default:
		d = box.DistanceLInf(vp)
	}
	denom := d
	if step > denom {
		denom = step
	}
	if denom <= 0 {
		return 0
	}
	return 1 / denom
}

func (s *Selector) emit(coord CellCoord, idx uint32, parentCoord CellCoord, params SelectParams, out *containers.FrameBuffers) {
	parentIdx := idx
	if params.ContinuousLOD {
		if pIdx, ok := s.Grid.table.Lookup(coord.Parent()); ok {
			parentIdx = pIdx
		}
	}
	_ = parentCoord
	out.Append(idx, parentIdx)
}

// SuggestKappa scales meanRelativeError into a kappa that keeps
// projected error under pixelError screen pixels for a viewport of the
// given width and horizontal field of view (radians):
//
//	kappa = (4 * screenWidth / (pixelError * tan(fovRadians/2))) * meanRelativeError
//
// This mirrors the interactive adaptive-LOD controller's error-budget
// calculation, without the caller having to re-derive the projection
// geometry it depends on. No floor is applied; a caller wanting one
// (e.g. to avoid a near-zero kappa at grazing angles) composes
// math.Max(4, SuggestKappa(...)) itself.
func SuggestKappa(screenWidth, meanRelativeError, pixelError, fovRadians float32) float32 {
	if screenWidth <= 0 || pixelError <= 0 || fovRadians <= 0 {
		return 1
	}
	errorMultiplier := 4 * screenWidth / (pixelError * float32(math.Tan(float64(fovRadians)/2)))
	return errorMultiplier * meanRelativeError
}
