package lod

import (
	amath "github.com/lodforge/meshgrid/engine/math"
)

// quadric is a Garland-Heckbert error quadric: the sum of squared
// distances to a set of planes, expressed as Q(v) = v^T A v + 2 b^T v + c
// where A is the symmetric 3x3 stored in a (xx, xy, xz, yy, yz, zz order).
type quadric struct {
	a [6]float64
	b [3]float64
	c float64
}

func planeQuadric(p0, p1, p2 amath.Vec3) quadric {
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	n := e1.Cross(e2)
	length := float64(n.Length())
	if length < 1e-20 {
		return quadric{}
	}
	nx := float64(n.X) / length
	ny := float64(n.Y) / length
	nz := float64(n.Z) / length
	d := -(nx*float64(p0.X) + ny*float64(p0.Y) + nz*float64(p0.Z))

	return quadric{
		a: [6]float64{nx * nx, nx * ny, nx * nz, ny * ny, ny * nz, nz * nz},
		b: [3]float64{nx * d, ny * d, nz * d},
		c: d * d,
	}
}

func (q quadric) add(other quadric) quadric {
	for i := range q.a {
		q.a[i] += other.a[i]
	}
	for i := range q.b {
		q.b[i] += other.b[i]
	}
	q.c += other.c
	return q
}

// cost evaluates Q(v), a proxy for the squared distance from v to the
// plane set that produced Q.
func (q quadric) cost(v amath.Vec3) float64 {
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	axx, axy, axz, ayy, ayz, azz := q.a[0], q.a[1], q.a[2], q.a[3], q.a[4], q.a[5]
	quad := x*(axx*x+axy*y+axz*z) + y*(axy*x+ayy*y+ayz*z) + z*(axz*x+ayz*y+azz*z)
	lin := 2 * (q.b[0]*x + q.b[1]*y + q.b[2]*z)
	return quad + lin + q.c
}

// optimalPoint solves for the position minimizing Q, falling back to
// candidate when the system is singular (coplanar or degenerate input).
func (q quadric) optimalPoint(candidate amath.Vec3) amath.Vec3 {
	// Solve A x = -b for the 3x3 symmetric A.
	a00, a01, a02 := q.a[0], q.a[1], q.a[2]
	a11, a12 := q.a[3], q.a[4]
	a22 := q.a[5]

	det := a00*(a11*a22-a12*a12) - a01*(a01*a22-a12*a02) + a02*(a01*a12-a11*a02)
	if det < 1e-12 && det > -1e-12 {
		return candidate
	}

	bx, by, bz := -q.b[0], -q.b[1], -q.b[2]

	// Cramer's rule with the symmetric matrix above.
	dx := bx*(a11*a22-a12*a12) - a01*(by*a22-a12*bz) + a02*(by*a12-a11*bz)
	dy := a00*(by*a22-bz*a12) - bx*(a01*a22-a12*a02) + a02*(a01*bz-by*a02)
	dz := a00*(a11*bz-a12*by) - a01*(a01*bz-by*a02) + bx*(a01*a12-a11*a02)

	x := dx / det
	y := dy / det
	z := dz / det

	result := amath.Vec3{X: float32(x), Y: float32(y), Z: float32(z)}
	if !finiteVec3(result) {
		return candidate
	}
	return result
}
