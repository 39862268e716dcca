package lod

import (
	"container/heap"
	"math"
	"sort"

	amath "github.com/lodforge/meshgrid/engine/math"
)

// weldToleranceFor returns the distance under which two vertices at
// level l are considered coincident when stitching child meshlets.
func weldToleranceFor(step float32, lod int16) float32 {
	return 1e-5 * stepAtLevel(step, lod)
}

// stitchedVertex is one vertex of the temporary mesh M0 built while
// stitching a coarse cell's children together.
type stitchedVertex struct {
	pos    amath.Vec3
	normal amath.Vec3
	// sources lists, for every child vertex welded into this one, which
	// child meshlet (octant) and which local vertex within it it came from, so
	// remap can be computed per source vertex once simplification ends.
	sources []childVertexRef
}

type childVertexRef struct {
	octant int
	local  uint32
}

// buildParentLevel implements the parent builder: given the completed
// level l-1, emits level l by merging every occupied 2x2x2 block of
// children into one simplified meshlet.
func buildParentLevel(dst *MBuf, base amath.Vec3, step float32, childCoords []CellCoord, childMeshes []Mesh, workers int) (coords []CellCoord, meshes []Mesh, errs []float32) {
	// Group children by parent coordinate, preserving first-encounter
	// order across the (already fixed) child slice.
	order := make([]CellCoord, 0)
	groups := make(map[CellCoord][8]int)
	present := make(map[CellCoord][8]bool)
	for i, cc := range childCoords {
		p := cc.Parent()
		g, ok := groups[p]
		if !ok {
			order = append(order, p)
		}
		octant := childOctant(cc)
		g[octant] = i
		groups[p] = g
		pres := present[p]
		pres[octant] = true
		present[p] = pres
	}

	coords = make([]CellCoord, len(order))
	meshes = make([]Mesh, len(order))
	errs = make([]float32, len(order))

	pool := newWorkerPool(workers)
	results := make([]parentComputeResult, len(order))

	// Compute phase: parallel. Each call only reads dst (the finalized
	// child level below it) and stitches/simplifies into its own local
	// buffers, so results[i] never aliases another call's writes.
	pool.runRanges(len(order), func(workerIdx, start, end int) {
		for i := start; i < end; i++ {
			p := order[i]
			slots := groups[p]
			pres := present[p]
			results[i] = computeOneParent(dst, base, step, p, slots, pres, childMeshes)
		}
	})

	// Emit phase: sequential, runs only after every compute call above has
	// joined. dst.AppendVertices/AppendIndices/Remap all mutate the shared
	// arena, so they must happen one parent at a time rather than inside
	// the parallel loop.
	for i, r := range results {
		m, e := emitOneParent(dst, childMeshes, r)
		coords[i] = order[i]
		meshes[i] = m
		errs[i] = e
	}
	return coords, meshes, errs
}

func childOctant(cc CellCoord) int {
	return int(cc.X&1) | int(cc.Y&1)<<1 | int(cc.Z&1)<<2
}

// parentComputeResult is the output of stitching and simplifying one
// parent cell's children, before anything has been appended to the
// shared arena. It carries everything emitOneParent needs to finish the
// job without touching dst a second time.
type parentComputeResult struct {
	slots      [8]int
	verts      []stitchedVertex
	simplified simplifiedMesh
	maxErr     float32
}

// computeOneParent stitches the present children of parent and runs
// quadric simplification on the result. It only reads dst (the already
// finalized child level), never writes it, so it is safe to call
// concurrently across different parents — the caller still owes a
// sequential emitOneParent call per result before the build is done.
func computeOneParent(dst *MBuf, base amath.Vec3, step float32, parent CellCoord, slots [8]int, present [8]bool, childMeshes []Mesh) parentComputeResult {
	weld := weldToleranceFor(step, parent.Lod-1)

	var verts []stitchedVertex
	var tris [][3]uint32 // indices into verts

	// posKey buckets stitched vertices by a quantized position so
	// weld lookups stay near O(1) instead of O(n) per vertex.
	type posKey struct{ x, y, z int64 }
	cellOf := func(p amath.Vec3) posKey {
		inv := 1.0 / weld
		return posKey{
			x: int64(p.X * inv),
			y: int64(p.Y * inv),
			z: int64(p.Z * inv),
		}
	}
	buckets := make(map[posKey][]uint32)

	findOrAddVertex := func(octant int, local uint32, pos, normal amath.Vec3) uint32 {
		key := cellOf(pos)
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					k := posKey{key.x + dx, key.y + dy, key.z + dz}
					for _, vi := range buckets[k] {
						if verts[vi].pos.Sub(pos).Length() <= weld {
							verts[vi].sources = append(verts[vi].sources, childVertexRef{octant, local})
							return vi
						}
					}
				}
			}
		}
		vi := uint32(len(verts))
		verts = append(verts, stitchedVertex{pos: pos, normal: normal, sources: []childVertexRef{{octant, local}}})
		buckets[key] = append(buckets[key], vi)
		return vi
	}

	for octant := 0; octant < 8; octant++ {
		if !present[octant] {
			continue
		}
		cm := childMeshes[slots[octant]]
		localToStitched := make([]uint32, cm.VertexCount)
		for lv := uint32(0); lv < cm.VertexCount; lv++ {
			pos := dst.Positions[cm.VertexOffset+lv]
			var normal amath.Vec3
			if dst.VtxAttr.Has(VtxAttrNormal) && len(dst.Normals) > int(cm.VertexOffset+lv) {
				normal = dst.Normals[cm.VertexOffset+lv]
			}
			localToStitched[lv] = findOrAddVertex(octant, lv, pos, normal)
		}
		for t := uint32(0); t < cm.IndexCount/3; t++ {
			i0 := dst.Indices[cm.IndexOffset+t*3+0]
			i1 := dst.Indices[cm.IndexOffset+t*3+1]
			i2 := dst.Indices[cm.IndexOffset+t*3+2]
			tris = append(tris, [3]uint32{localToStitched[i0], localToStitched[i1], localToStitched[i2]})
		}
	}

	locked := lockBoundaryVertices(verts, base, step, parent)

	targetTriCount := maxInt(len(tris)/4, 1)
	simplified, maxErr := simplify(verts, tris, locked, targetTriCount)

	return parentComputeResult{slots: slots, verts: verts, simplified: simplified, maxErr: maxErr}
}

// emitOneParent appends a computeOneParent result's simplified mesh to
// dst and stamps each source child vertex's Remap entry. It mutates the
// shared arena, so the caller must run it sequentially — one parent at
// a time, never concurrently with another emitOneParent call.
func emitOneParent(dst *MBuf, childMeshes []Mesh, r parentComputeResult) (Mesh, float32) {
	positions := make([]amath.Vec3, len(r.simplified.verts))
	normals := make([]amath.Vec3, len(r.simplified.verts))
	for i, v := range r.simplified.verts {
		positions[i] = v.pos
		normals[i] = v.normal
	}
	var indices []uint32
	for _, t := range r.simplified.tris {
		indices = append(indices, t[0], t[1], t[2])
	}

	vtxOffset := dst.AppendVertices(positions, normals, nil, nil)
	idxOffset := dst.AppendIndices(indices)

	var box amath.AABB
	if len(positions) > 0 {
		box = amath.NewAABBFromPoint(positions[0])
		for _, p := range positions[1:] {
			box = box.Grow(p)
		}
	}

	// Stamp remap: for every original stitched vertex (before
	// simplification), find its post-simplification survivor and record
	// it against every child-local source that fed it.
	for oldIdx, survivorIdx := range r.simplified.survivorOf {
		parentVtx := vtxOffset + uint32(survivorIdx)
		for _, src := range r.verts[oldIdx].sources {
			cm := childMeshes[r.slots[src.octant]]
			dst.Remap[cm.VertexOffset+src.local] = parentVtx
		}
	}

	mesh := Mesh{
		IndexOffset:  idxOffset,
		IndexCount:   uint32(len(indices)),
		VertexOffset: vtxOffset,
		VertexCount:  uint32(len(positions)),
		LocalAABB:    box,
	}
	return mesh, r.maxErr
}

// lockBoundaryVertices marks every stitched vertex lying on the outer
// face of parent's world extent: such a vertex may be shared with a
// sibling parent cell at the same level, and moving it would open a
// crack between them.
func lockBoundaryVertices(verts []stitchedVertex, base amath.Vec3, step float32, parent CellCoord) []bool {
	extent := cellWorldExtent(base, step, parent)
	eps := weldToleranceFor(step, parent.Lod-1) * 4
	locked := make([]bool, len(verts))
	for i, v := range verts {
		p := v.pos
		onBoundary := nearf(p.X, extent.Min.X, eps) || nearf(p.X, extent.Max.X, eps) ||
			nearf(p.Y, extent.Min.Y, eps) || nearf(p.Y, extent.Max.Y, eps) ||
			nearf(p.Z, extent.Min.Z, eps) || nearf(p.Z, extent.Max.Z, eps)
		locked[i] = onBoundary
	}
	return locked
}

func nearf(v, target, eps float32) bool {
	d := v - target
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// simplifiedMesh is the result of edge-collapse decimation: the
// surviving vertices/triangles, plus a survivorOf map from every
// original vertex index to its final index.
type simplifiedMesh struct {
	verts      []stitchedVertex
	tris       [][3]uint32
	survivorOf []int
}

// edgeCandidate is one entry of the collapse priority queue.
type edgeCandidate struct {
	v1, v2 uint32
	cost   float64
	target amath.Vec3
	stamp  int
}

type edgeHeap []edgeCandidate

func (h edgeHeap) Len() int { return len(h) }
func (h edgeHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	if h[i].v1 != h[j].v1 {
		return h[i].v1 < h[j].v1
	}
	return h[i].v2 < h[j].v2
}
func (h edgeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *edgeHeap) Push(x any)        { *h = append(*h, x.(edgeCandidate)) }
func (h *edgeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// simplify runs quadric-error edge collapse on (verts, tris) until the
// triangle count reaches targetTriCount or no more collapses are legal,
// honoring locked vertices. Returns the reduced mesh and the maximum
// quadric-derived world-space error introduced by any performed
// collapse.
func simplify(verts []stitchedVertex, tris [][3]uint32, locked []bool, targetTriCount int) (simplifiedMesh, float32) {
	n := len(verts)
	alive := make([]bool, n)
	quadrics := make([]quadric, n)
	positions := make([]amath.Vec3, n)
	for i, v := range verts {
		alive[i] = true
		positions[i] = v.pos
	}

	adjTris := make([][]int, n)
	for ti, t := range tris {
		q := planeQuadric(verts[t[0]].pos, verts[t[1]].pos, verts[t[2]].pos)
		for _, vi := range t {
			quadrics[vi] = quadrics[vi].add(q)
			adjTris[vi] = append(adjTris[vi], ti)
		}
	}

	triAlive := make([]bool, len(tris))
	for i := range triAlive {
		triAlive[i] = true
	}

	parent := make([]uint32, n)
	for i := range parent {
		parent[i] = uint32(i)
	}
	find := func(v uint32) uint32 {
		for parent[v] != v {
			v = parent[v]
		}
		return v
	}

	edgeSet := make(map[[2]uint32]bool)
	h := &edgeHeap{}
	pushEdge := func(a, b uint32) {
		if a == b {
			return
		}
		if a > b {
			a, b = b, a
		}
		key := [2]uint32{a, b}
		if edgeSet[key] {
			return
		}
		edgeSet[key] = true
		q := quadrics[a].add(quadrics[b])
		candidate := positions[a]
		if !locked[a] && !locked[b] {
			candidate = q.optimalPoint(amath.Vec3{
				X: (positions[a].X + positions[b].X) * 0.5,
				Y: (positions[a].Y + positions[b].Y) * 0.5,
				Z: (positions[a].Z + positions[b].Z) * 0.5,
			})
		} else if locked[b] {
			candidate = positions[b]
		}
		cost := q.cost(candidate)
		heap.Push(h, edgeCandidate{v1: a, v2: b, cost: cost, target: candidate})
	}

	for _, t := range tris {
		pushEdge(t[0], t[1])
		pushEdge(t[1], t[2])
		pushEdge(t[2], t[0])
	}

	triCount := len(tris)
	var maxErr float64

	for triCount > targetTriCount && h.Len() > 0 {
		e := heap.Pop(h).(edgeCandidate)
		a, b := find(e.v1), find(e.v2)
		if a == b || !alive[a] || !alive[b] {
			continue
		}
		if locked[a] && locked[b] {
			continue
		}

		survivor, removed := a, b
		if locked[b] {
			survivor, removed = b, a
		}

		newPos := e.target
		if locked[survivor] {
			newPos = positions[survivor]
		}

		q := quadrics[a].add(quadrics[b])
		cost := q.cost(newPos)
		if cost > maxErr {
			maxErr = cost
		}

		positions[survivor] = newPos
		quadrics[survivor] = q
		alive[removed] = false
		parent[removed] = survivor

		removedCount := 0
		for _, ti := range adjTris[removed] {
			if !triAlive[ti] {
				continue
			}
			t := &tris[ti]
			for k := range t {
				if find(t[k]) == removed {
					t[k] = survivor
				} else {
					t[k] = find(t[k])
				}
			}
			if t[0] == t[1] || t[1] == t[2] || t[0] == t[2] {
				triAlive[ti] = false
				removedCount++
			} else {
				adjTris[survivor] = append(adjTris[survivor], ti)
			}
		}
		triCount -= removedCount

		for _, ti := range adjTris[survivor] {
			if !triAlive[ti] {
				continue
			}
			t := tris[ti]
			pushEdge(find(t[0]), find(t[1]))
			pushEdge(find(t[1]), find(t[2]))
			pushEdge(find(t[2]), find(t[0]))
		}
	}

	// Compact surviving vertices/triangles.
	newIndex := make([]int, n)
	for i := range newIndex {
		newIndex[i] = -1
	}
	var outVerts []stitchedVertex
	for i := 0; i < n; i++ {
		if alive[i] {
			newIndex[i] = len(outVerts)
			v := verts[i]
			v.pos = positions[i]
			outVerts = append(outVerts, v)
		}
	}

	survivorOf := make([]int, n)
	for i := 0; i < n; i++ {
		survivorOf[i] = newIndex[find(uint32(i))]
	}

	var outTris [][3]uint32
	seen := make(map[[3]uint32]bool)
	for ti, t := range tris {
		if !triAlive[ti] {
			continue
		}
		nt := [3]uint32{
			uint32(newIndex[find(t[0])]),
			uint32(newIndex[find(t[1])]),
			uint32(newIndex[find(t[2])]),
		}
		if nt[0] == nt[1] || nt[1] == nt[2] || nt[0] == nt[2] {
			continue
		}
		key := nt
		sortTri(&key)
		if seen[key] {
			continue
		}
		seen[key] = true
		outTris = append(outTris, nt)
	}

	sort.Slice(outTris, func(i, j int) bool {
		for k := 0; k < 3; k++ {
			if outTris[i][k] != outTris[j][k] {
				return outTris[i][k] < outTris[j][k]
			}
		}
		return false
	})

	worldError := 0.0
	if maxErr > 0 {
		worldError = math.Sqrt(maxErr)
	}
	return simplifiedMesh{verts: outVerts, tris: outTris, survivorOf: survivorOf}, float32(worldError)
}

func sortTri(t *[3]uint32) {
	if t[0] > t[1] {
		t[0], t[1] = t[1], t[0]
	}
	if t[1] > t[2] {
		t[1], t[2] = t[2], t[1]
	}
	if t[0] > t[1] {
		t[0], t[1] = t[1], t[0]
	}
}
