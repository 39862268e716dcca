package lod

import (
	"testing"

	"github.com/stretchr/testify/assert"

	amath "github.com/lodforge/meshgrid/engine/math"
)

func TestFrustumClassifiesInsideOutsideIntersect(t *testing.T) {
	view := amath.NewMat4LookAt(amath.Vec3{Z: 5}, amath.Vec3{}, amath.NewVec3Up())
	proj := amath.NewMat4Perspective(amath.DegToRad(60), 1, 0.1, 100)
	pvm := proj.Mul(view)
	f := NewFrustum(&pvm)

	inside := amath.AABB{Min: amath.Vec3{X: -0.1, Y: -0.1, Z: -0.1}, Max: amath.Vec3{X: 0.1, Y: 0.1, Z: 0.1}}
	assert.Equal(t, Inside, f.Classify(inside))

	farAway := amath.AABB{Min: amath.Vec3{X: 1000, Y: 1000, Z: 1000}, Max: amath.Vec3{X: 1001, Y: 1001, Z: 1001}}
	assert.Equal(t, Outside, f.Classify(farAway))

	straddling := amath.AABB{Min: amath.Vec3{X: -50, Y: -0.1, Z: -0.1}, Max: amath.Vec3{X: 50, Y: 0.1, Z: 0.1}}
	assert.Equal(t, Intersect, f.Classify(straddling))
}
