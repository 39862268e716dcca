package lod

import (
	"math"

	amath "github.com/lodforge/meshgrid/engine/math"
)

// leafCellBucket accumulates the source-triangle indices routed to one
// leaf cell, in first-encounter order.
type leafCellBucket struct {
	coord     CellCoord
	triangles []uint32
}

// buildLeaves partitions the source mesh into level-0 cells, one meshlet
// per occupied unit cell, covering every source triangle exactly once.
//
// Returns the occupied leaf coordinates/meshlets/errors (errors are all
// zero for leaves) in the order cells were first merged, or ok=false if
// the source mesh is degenerate (empty, or carries a non-finite vertex
// coordinate) — the caller then produces an empty grid rather than
// faulting. Returns a non-nil error only when a centroid's cell
// coordinate would overflow the 16-bit CellCoord range, which is always
// treated as a fault rather than an empty-grid result.
func buildLeaves(dst *MBuf, src *MBuf, srcMesh SourceMesh, base amath.Vec3, step float32, workers int) (coords []CellCoord, meshes []Mesh, errs []float32, ok bool, err error) {
	triCount := int(srcMesh.IndexCount / 3)
	if triCount == 0 {
		return nil, nil, nil, false, nil
	}

	pool := newWorkerPool(workers)

	type workerResult struct {
		order    []CellCoord
		buckets  map[CellCoord]*leafCellBucket
		bad      bool
		overflow bool
	}
	results := make([]workerResult, pool.workerCount)
	// runRanges may spawn fewer than pool.workerCount goroutines when
	// triCount is small; size results to the same bound used there.
	if triCount < len(results) {
		results = results[:triCount]
	}

	pool.runRanges(triCount, func(workerIdx, start, end int) {
		r := workerResult{buckets: make(map[CellCoord]*leafCellBucket)}
		for t := start; t < end; t++ {
			i0 := src.Indices[srcMesh.IndexOffset+uint32(t)*3+0]
			i1 := src.Indices[srcMesh.IndexOffset+uint32(t)*3+1]
			i2 := src.Indices[srcMesh.IndexOffset+uint32(t)*3+2]

			p0 := src.Positions[i0]
			p1 := src.Positions[i1]
			p2 := src.Positions[i2]
			if !finiteVec3(p0) || !finiteVec3(p1) || !finiteVec3(p2) {
				r.bad = true
				continue
			}

			centroid := p0.Add(p1).Add(p2).MulScalar(1.0 / 3.0)
			coord, coordOK := leafCoordFor(centroid, base, step)
			if !coordOK {
				r.overflow = true
				continue
			}

			b, exists := r.buckets[coord]
			if !exists {
				b = &leafCellBucket{coord: coord}
				r.buckets[coord] = b
				r.order = append(r.order, coord)
			}
			b.triangles = append(b.triangles, uint32(t))
		}
		results[workerIdx] = r
	})

	// Merge phase: sequential, runs only after all workers have joined,
	// so no lock is needed here — the WaitGroup barrier above already
	// excludes concurrent writers by the time this loop starts.
	merged := make(map[CellCoord]*leafCellBucket)
	var order []CellCoord
	for _, r := range results {
		if r.overflow {
			return nil, nil, nil, false, ErrCoordOverflow
		}
	}
	for _, r := range results {
		if r.bad {
			return nil, nil, nil, false, nil
		}
		for _, coord := range r.order {
			b := merged[coord]
			if b == nil {
				b = &leafCellBucket{coord: coord}
				merged[coord] = b
				order = append(order, coord)
			}
			b.triangles = append(b.triangles, r.buckets[coord].triangles...)
		}
	}

	coords = make([]CellCoord, 0, len(order))
	meshes = make([]Mesh, 0, len(order))
	errs = make([]float32, 0, len(order))

	for _, coord := range order {
		bucket := merged[coord]
		desc := emitLeafMeshlet(dst, src, srcMesh, bucket.triangles)
		coords = append(coords, coord)
		meshes = append(meshes, desc)
		errs = append(errs, 0)
	}

	return coords, meshes, errs, true, nil
}

func finiteVec3(v amath.Vec3) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float32) bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// leafCoordFor classifies a world-space centroid into the level-0 cell
// containing it. Returns ok=false if any axis falls outside the 16-bit
// coordinate range CellCoord can represent.
func leafCoordFor(centroid, base amath.Vec3, step float32) (CellCoord, bool) {
	x := math.Floor(float64((centroid.X - base.X) / step))
	y := math.Floor(float64((centroid.Y - base.Y) / step))
	z := math.Floor(float64((centroid.Z - base.Z) / step))
	if !int16Range(x) || !int16Range(y) || !int16Range(z) {
		return CellCoord{}, false
	}
	return CellCoord{Lod: 0, X: int16(x), Y: int16(y), Z: int16(z)}, true
}

func int16Range(v float64) bool {
	return v >= math.MinInt16 && v <= math.MaxInt16
}

// emitLeafMeshlet builds a compact vertex list (only vertices referenced
// by triangles), a local index list remapped to [0, vertex_count), and a
// world-space AABB, then appends them to dst.
func emitLeafMeshlet(dst *MBuf, src *MBuf, srcMesh SourceMesh, triangles []uint32) Mesh {
	localOf := make(map[uint32]uint32)
	var positions []amath.Vec3
	var normals []amath.Vec3
	var uv0, uv1 []amath.Vec2
	var localIndices []uint32
	var box amath.AABB
	first := true

	appendVertex := func(srcIdx uint32) uint32 {
		if li, ok := localOf[srcIdx]; ok {
			return li
		}
		li := uint32(len(positions))
		localOf[srcIdx] = li
		p := src.Positions[srcIdx]
		positions = append(positions, p)
		if first {
			box = amath.NewAABBFromPoint(p)
			first = false
		} else {
			box = box.Grow(p)
		}
		if dst.VtxAttr.Has(VtxAttrNormal) {
			if src.VtxAttr.Has(VtxAttrNormal) {
				normals = append(normals, src.Normals[srcIdx])
			} else {
				normals = append(normals, amath.Vec3{})
			}
		}
		if dst.VtxAttr.Has(VtxAttrUV0) {
			if src.VtxAttr.Has(VtxAttrUV0) {
				uv0 = append(uv0, src.UV0[srcIdx])
			} else {
				uv0 = append(uv0, amath.Vec2{})
			}
		}
		if dst.VtxAttr.Has(VtxAttrUV1) {
			if src.VtxAttr.Has(VtxAttrUV1) {
				uv1 = append(uv1, src.UV1[srcIdx])
			} else {
				uv1 = append(uv1, amath.Vec2{})
			}
		}
		return li
	}

	for _, t := range triangles {
		for k := 0; k < 3; k++ {
			srcIdx := src.Indices[srcMesh.IndexOffset+t*3+uint32(k)]
			localIndices = append(localIndices, appendVertex(srcIdx))
		}
	}

	vtxOffset := dst.AppendVertices(positions, normals, uv0, uv1)
	idxOffset := dst.AppendIndices(localIndices)

	return Mesh{
		IndexOffset:  idxOffset,
		IndexCount:   uint32(len(localIndices)),
		VertexOffset: vtxOffset,
		VertexCount:  uint32(len(positions)),
		LocalAABB:    box,
	}
}
