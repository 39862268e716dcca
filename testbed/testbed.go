package testbed

import (
	"github.com/lodforge/meshgrid/engine/lod"
	amath "github.com/lodforge/meshgrid/engine/math"
)

// cubeFace describes one face of a unit cube as an origin corner plus
// the two edge vectors spanning it, so a face can be walked as a 2D
// grid and triangulated uniformly.
type cubeFace struct {
	origin, edgeU, edgeV amath.Vec3
}

var cubeFaces = [6]cubeFace{
	{amath.Vec3{X: -1, Y: -1, Z: 1}, amath.Vec3{X: 2}, amath.Vec3{Y: 2}},   // +Z
	{amath.Vec3{X: 1, Y: -1, Z: -1}, amath.Vec3{X: -2}, amath.Vec3{Y: 2}},  // -Z
	{amath.Vec3{X: -1, Y: 1, Z: -1}, amath.Vec3{X: 2}, amath.Vec3{Z: 2}},   // +Y
	{amath.Vec3{X: -1, Y: -1, Z: 1}, amath.Vec3{X: 2}, amath.Vec3{Z: -2}},  // -Y
	{amath.Vec3{X: 1, Y: -1, Z: 1}, amath.Vec3{Y: 2}, amath.Vec3{Z: -2}},   // +X
	{amath.Vec3{X: -1, Y: -1, Z: -1}, amath.Vec3{Y: 2}, amath.Vec3{Z: 2}},  // -X
}

// GenerateCube builds a cube of the given half-extent, with each face
// subdivided into subdivisions x subdivisions quads, and appends it to
// arena. Useful as a build-pipeline fixture whose exact triangle/cell
// counts are easy to reason about.
func GenerateCube(halfExtent float32, subdivisions int) (*lod.MBuf, lod.SourceMesh) {
	return GenerateShape(halfExtent, subdivisions, false)
}

// GenerateSphere builds a roughly uniform sphere of the given radius by
// subdividing a cube and normalizing every vertex onto the sphere's
// surface (a standard "spherified cube" construction).
func GenerateSphere(radius float32, subdivisions int) (*lod.MBuf, lod.SourceMesh) {
	return GenerateShape(radius, subdivisions, true)
}

// GenerateShape is the shared implementation behind GenerateCube and
// GenerateSphere.
func GenerateShape(scale float32, subdivisions int, spherify bool) (*lod.MBuf, lod.SourceMesh) {
	if subdivisions < 1 {
		subdivisions = 1
	}
	arena := lod.NewMBuf(lod.VtxAttrNormal)

	var positions []amath.Vec3
	var indices []uint32

	for _, face := range cubeFaces {
		base := uint32(len(positions))
		for j := 0; j <= subdivisions; j++ {
			v := float32(j) / float32(subdivisions)
			for i := 0; i <= subdivisions; i++ {
				u := float32(i) / float32(subdivisions)
				p := face.origin.Add(face.edgeU.MulScalar(u)).Add(face.edgeV.MulScalar(v))
				if spherify {
					p = p.Normalized()
				}
				positions = append(positions, p.MulScalar(scale))
			}
		}
		stride := uint32(subdivisions + 1)
		for j := 0; j < subdivisions; j++ {
			for i := 0; i < subdivisions; i++ {
				i00 := base + uint32(j)*stride + uint32(i)
				i10 := i00 + 1
				i01 := i00 + stride
				i11 := i01 + 1
				indices = append(indices, i00, i10, i11, i00, i11, i01)
			}
		}
	}

	normals := make([]amath.Vec3, len(positions))
	amath.GeometryGenerateNormals(positions, normals, indices)

	vtxOffset := arena.AppendVertices(positions, normals, nil, nil)
	idxOffset := arena.AppendIndices(indices)

	mesh := lod.SourceMesh{
		IndexOffset:  idxOffset,
		IndexCount:   uint32(len(indices)),
		VertexOffset: vtxOffset,
		VertexCount:  uint32(len(positions)),
	}
	return arena, mesh
}
