package lod

import (
	amath "github.com/lodforge/meshgrid/engine/math"
)

// Classification is the result of testing a box against a frustum plane
// set.
type Classification int

const (
	Outside Classification = iota
	Intersect
	Inside
)

// plane is ax+by+cz+d=0, unnormalized (only its sign matters here).
type plane struct {
	a, b, c, d float32
}

func (p plane) side(v amath.Vec3) float32 {
	return p.a*v.X + p.b*v.Y + p.c*v.Z + p.d
}

// Frustum is the six half-spaces of a projection*view*model matrix,
// extracted as M_row(3) +/- M_row(i) for i in {0,1,2}.
type Frustum struct {
	planes [6]plane
}

// NewFrustum extracts a Frustum from a column-major PVM matrix.
func NewFrustum(pvm *amath.Mat4) Frustum {
	// Data is column-major: element (row r, col c) is Data[c*4+r].
	row := func(r int) [4]float32 {
		return [4]float32{pvm.Data[0*4+r], pvm.Data[1*4+r], pvm.Data[2*4+r], pvm.Data[3*4+r]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	add := func(a, b [4]float32) plane {
		return plane{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
	}
	sub := func(a, b [4]float32) plane {
		return plane{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
	}

	return Frustum{planes: [6]plane{
		add(r3, r0), // left
		sub(r3, r0), // right
		add(r3, r1), // bottom
		sub(r3, r1), // top
		add(r3, r2), // near
		sub(r3, r2), // far
	}}
}

// Classify tests box against the frustum, per 4.H: Outside if every
// corner of box is on the negative side of some one plane, Inside if
// every corner is on the positive side of every plane, Intersect
// otherwise.
func (f Frustum) Classify(box amath.AABB) Classification {
	corners := box.Corners()
	allInside := true
	for _, p := range f.planes {
		outCount := 0
		for _, c := range corners {
			if p.side(c) < 0 {
				outCount++
			}
		}
		if outCount == len(corners) {
			return Outside
		}
		if outCount > 0 {
			allInside = false
		}
	}
	if allInside {
		return Inside
	}
	return Intersect
}
