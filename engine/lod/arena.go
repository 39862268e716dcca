package lod

import (
	"github.com/lodforge/meshgrid/engine/math"
)

// MBuf is the shared mesh arena: flat, parallel arrays holding the
// triangle indices and per-vertex attributes of every meshlet built into
// a grid (or, for a caller-supplied source mesh, the input geometry).
// Arrays grow monotonically; the arena is append-only and is mutated only
// by the build pipeline.
type MBuf struct {
	VtxAttr VtxAttr

	Indices []uint32

	Positions []math.Vec3
	Normals   []math.Vec3
	UV0       []math.Vec2
	UV1       []math.Vec2

	// Remap[v] is the index of vertex v's counterpart in its parent
	// cell's meshlet, or RemapSentinel if it has none.
	Remap []uint32

	idxCapacity uint32
	vtxCapacity uint32
}

// NewMBuf returns an empty arena carrying the given optional attributes.
func NewMBuf(attrs VtxAttr) *MBuf {
	return &MBuf{VtxAttr: attrs | VtxAttrRemap}
}

// ReserveIndices ensures the index array has capacity for at least n
// elements. When shrink is set, the backing array is reallocated to
// exactly n regardless of current capacity.
func (m *MBuf) ReserveIndices(n uint32, shrink bool) {
	if n <= m.idxCapacity && !shrink {
		return
	}
	grown := make([]uint32, len(m.Indices), n)
	copy(grown, m.Indices)
	m.Indices = grown
	m.idxCapacity = n
}

// ReserveVertices ensures every enabled per-vertex array has capacity for
// at least n elements, honoring VtxAttr. When shrink is set, arrays are
// reallocated to exactly n.
func (m *MBuf) ReserveVertices(n uint32, shrink bool) {
	if n <= m.vtxCapacity && !shrink {
		m.vtxCapacity = maxu32(m.vtxCapacity, n)
		return
	}

	grownPos := make([]math.Vec3, len(m.Positions), n)
	copy(grownPos, m.Positions)
	m.Positions = grownPos

	if m.VtxAttr.Has(VtxAttrNormal) {
		grown := make([]math.Vec3, len(m.Normals), n)
		copy(grown, m.Normals)
		m.Normals = grown
	}
	if m.VtxAttr.Has(VtxAttrUV0) {
		grown := make([]math.Vec2, len(m.UV0), n)
		copy(grown, m.UV0)
		m.UV0 = grown
	}
	if m.VtxAttr.Has(VtxAttrUV1) {
		grown := make([]math.Vec2, len(m.UV1), n)
		copy(grown, m.UV1)
		m.UV1 = grown
	}
	if m.VtxAttr.Has(VtxAttrRemap) {
		grown := make([]uint32, len(m.Remap), n)
		copy(grown, m.Remap)
		m.Remap = grown
	}
	m.vtxCapacity = n
}

// Clear releases all arrays and resets capacities to zero.
func (m *MBuf) Clear() {
	m.Indices = nil
	m.Positions = nil
	m.Normals = nil
	m.UV0 = nil
	m.UV1 = nil
	m.Remap = nil
	m.idxCapacity = 0
	m.vtxCapacity = 0
}

// AppendIndices grows the index array by len(idx) and copies idx into the
// new tail, returning the offset the caller should record.
func (m *MBuf) AppendIndices(idx []uint32) uint32 {
	offset := uint32(len(m.Indices))
	needed := offset + uint32(len(idx))
	if needed > m.idxCapacity {
		m.ReserveIndices(growCapacity(m.idxCapacity, needed), false)
	}
	m.Indices = append(m.Indices, idx...)
	return offset
}

// AppendVertices grows every enabled vertex array by the length of
// positions and copies the supplied attribute slices into the new tail
// (nil slices leave the corresponding attribute zero-valued). Returns the
// offset the caller should record.
func (m *MBuf) AppendVertices(positions, normals []math.Vec3, uv0, uv1 []math.Vec2) uint32 {
	offset := uint32(len(m.Positions))
	needed := offset + uint32(len(positions))
	if needed > m.vtxCapacity {
		m.ReserveVertices(growCapacity(m.vtxCapacity, needed), false)
	}
	m.Positions = append(m.Positions, positions...)
	if m.VtxAttr.Has(VtxAttrNormal) {
		m.Normals = append(m.Normals, padVec3(normals, len(positions))...)
	}
	if m.VtxAttr.Has(VtxAttrUV0) {
		m.UV0 = append(m.UV0, padVec2(uv0, len(positions))...)
	}
	if m.VtxAttr.Has(VtxAttrUV1) {
		m.UV1 = append(m.UV1, padVec2(uv1, len(positions))...)
	}
	if m.VtxAttr.Has(VtxAttrRemap) {
		remap := make([]uint32, len(positions))
		for i := range remap {
			remap[i] = RemapSentinel
		}
		m.Remap = append(m.Remap, remap...)
	}
	return offset
}

func padVec3(src []math.Vec3, n int) []math.Vec3 {
	if len(src) == n {
		return src
	}
	return make([]math.Vec3, n)
}

func padVec2(src []math.Vec2, n int) []math.Vec2 {
	if len(src) == n {
		return src
	}
	return make([]math.Vec2, n)
}

// growCapacity doubles cap until it covers need, giving appends amortized
// O(1) cost over the life of a build.
func growCapacity(cap, need uint32) uint32 {
	if cap == 0 {
		cap = 64
	}
	for cap < need {
		cap *= 2
	}
	return cap
}

func maxu32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
