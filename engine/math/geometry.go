package math

import "github.com/lodforge/meshgrid/engine/core"

// GeometryGenerateNormals computes a face normal for every triangle and
// assigns it to all three of its vertices. Vertices shared by more than one
// triangle end up with whichever face wrote to them last; smoothing across
// shared vertices is a separate pass, not performed here.
func GeometryGenerateNormals(positions []Vec3, normals []Vec3, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := positions[i1].Sub(positions[i0])
		edge2 := positions[i2].Sub(positions[i0])

		normal := edge1.Cross(edge2).Normalized()

		normals[i0] = normal
		normals[i1] = normal
		normals[i2] = normal
	}
}

func reassignIndex(indices []uint32, from, to uint32) {
	for i := range indices {
		if indices[i] == from {
			indices[i] = to
		} else if indices[i] > from {
			// Pull in all indices higher than 'from' by 1.
			indices[i]--
		}
	}
}

// GeometryDeduplicateVertices collapses vertices that share the same
// position (within K_FLOAT_EPSILON) and rewrites indices in place. Returns
// the deduplicated position slice.
func GeometryDeduplicateVertices(positions []Vec3, indices []uint32) []Vec3 {
	unique := make([]Vec3, 0, len(positions))

	foundCount := uint32(0)
	for v := 0; v < len(positions); v++ {
		found := false
		for u := range unique {
			if positions[v].Compare(unique[u], K_FLOAT_EPSILON) {
				reassignIndex(indices, uint32(v)-foundCount, uint32(u))
				found = true
				foundCount++
				break
			}
		}
		if !found {
			unique = append(unique, positions[v])
		}
	}

	removed := len(positions) - len(unique)
	core.LogDebug("geometry_deduplicate_vertices: removed %d vertices, orig/now %d/%d.", removed, len(positions), len(unique))

	return unique
}
