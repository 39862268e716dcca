package lod

import (
	"testing"

	"github.com/stretchr/testify/assert"

	amath "github.com/lodforge/meshgrid/engine/math"
)

func TestPlaneQuadricZeroOnItsOwnPlane(t *testing.T) {
	p0 := amath.Vec3{X: 0, Y: 0, Z: 0}
	p1 := amath.Vec3{X: 1, Y: 0, Z: 0}
	p2 := amath.Vec3{X: 0, Y: 1, Z: 0}
	q := planeQuadric(p0, p1, p2)

	// Any point on the z=0 plane should have ~zero cost.
	assert.InDelta(t, 0, q.cost(amath.Vec3{X: 5, Y: -3, Z: 0}), 1e-6)
	// A point one unit off the plane costs ~1 (unit normal plane quadric).
	assert.InDelta(t, 1, q.cost(amath.Vec3{X: 0, Y: 0, Z: 1}), 1e-4)
}

func TestQuadricAddAccumulates(t *testing.T) {
	p0 := amath.Vec3{X: 0, Y: 0, Z: 0}
	p1 := amath.Vec3{X: 1, Y: 0, Z: 0}
	p2 := amath.Vec3{X: 0, Y: 1, Z: 0}
	q1 := planeQuadric(p0, p1, p2)
	sum := q1.add(q1)
	// Doubling an identical quadric doubles the cost at any point.
	pt := amath.Vec3{X: 0, Y: 0, Z: 2}
	assert.InDelta(t, 2*q1.cost(pt), sum.cost(pt), 1e-4)
}

func TestSimplifyReducesTriangleCountAndRespectsLocks(t *testing.T) {
	// A flat 3x3 grid of quads (4x4 vertices, 18 triangles) with all
	// boundary vertices locked; simplification should still shrink the
	// interior while keeping locked vertices exactly where they were.
	var verts []stitchedVertex
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			verts = append(verts, stitchedVertex{pos: amath.Vec3{X: float32(i), Y: float32(j), Z: 0}})
		}
	}
	var tris [][3]uint32
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			i00 := uint32(j*4 + i)
			i10 := i00 + 1
			i01 := i00 + 4
			i11 := i01 + 1
			tris = append(tris, [3]uint32{i00, i10, i11}, [3]uint32{i00, i11, i01})
		}
	}
	locked := make([]bool, len(verts))
	for i, v := range verts {
		if v.pos.X == 0 || v.pos.X == 3 || v.pos.Y == 0 || v.pos.Y == 3 {
			locked[i] = true
		}
	}

	result, _ := simplify(verts, tris, locked, len(tris)/4)
	assert.Less(t, len(result.tris), len(tris))

	lockedPositions := make(map[[3]float32]bool)
	for i, v := range verts {
		if locked[i] {
			lockedPositions[[3]float32{v.pos.X, v.pos.Y, v.pos.Z}] = true
		}
	}
	for _, v := range result.verts {
		key := [3]float32{v.pos.X, v.pos.Y, v.pos.Z}
		if lockedPositions[key] {
			delete(lockedPositions, key)
		}
	}
	assert.Empty(t, lockedPositions, "every locked vertex position must survive simplification unchanged")
}
