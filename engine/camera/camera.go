package camera

import (
	stdmath "math"

	"github.com/lodforge/meshgrid/engine/math"
)

// Fov names the axis a stored field of view is measured along.
type Fov int

const (
	Vertical Fov = iota
	Horizontal
)

// Space names the coordinate frame a translation is understood in.
type Space int

const (
	View Space = iota
	World
)

// Ray is a point and a normalized direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// Camera tracks position and rotation using a quaternion (so orbiting
// never accumulates gimbal-lock drift the way Euler angles would), plus
// the lens configuration needed to build view/clip matrices on demand.
//
// NOTE: do not set Position/Rotation directly; use SetPosition/SetRotation
// so the cached matrices are invalidated.
type Camera struct {
	position math.Vec3
	rotation math.Quaternion

	aspectRatio float32
	fov         float32
	fovAxis     Fov
	shiftX      float32
	shiftY      float32
	near        float32
	far         float32
	orthographic bool

	dirtyView bool
	viewCache math.Mat4
}

// New returns a default camera: origin position, identity rotation,
// centered lens, aspect ratio 1, 90 degree vertical fov, perspective
// projection, near/far of 0.01/1000.
func New() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

// NewWithFov returns a camera positioned at the origin with the given
// aspect ratio and field of view (degrees).
func NewWithFov(aspectRatio, fovDegrees float32, axis Fov) *Camera {
	c := New()
	c.aspectRatio = aspectRatio
	c.fov = math.DegToRad(fovDegrees)
	c.fovAxis = axis
	return c
}

func (c *Camera) Reset() {
	c.position = math.NewVec3Zero()
	c.rotation = math.NewQuatIdentity()
	c.aspectRatio = 1
	c.fov = math.DegToRad(90)
	c.fovAxis = Vertical
	c.shiftX = 0
	c.shiftY = 0
	c.near = 0.01
	c.far = 1000
	c.orthographic = false
	c.dirtyView = true
}

// SetAspect changes the aspect ratio, adapting the fov on the other axis
// so cstAxis keeps its field of view unchanged.
func (c *Camera) SetAspect(aspectRatio float32, cstAxis Fov) *Camera {
	if cstAxis != c.fovAxis {
		// Convert stored fov to the other axis before changing aspect,
		// then convert back, so the axis the caller asked to hold
		// constant actually is.
		if c.fovAxis == Vertical {
			horizontal := 2 * ktan32(c.fov/2) * c.aspectRatio
			c.aspectRatio = aspectRatio
			c.fov = 2 * katan32(horizontal/2)
			c.fovAxis = Horizontal
		} else {
			vertical := 2 * ktan32(c.fov/2) / c.aspectRatio
			c.aspectRatio = aspectRatio
			c.fov = 2 * katan32(vertical/2)
			c.fovAxis = Vertical
		}
		return c
	}
	c.aspectRatio = aspectRatio
	return c
}

func (c *Camera) SetFov(fovDegrees float32, axis Fov) *Camera {
	c.fov = math.DegToRad(fovDegrees)
	c.fovAxis = axis
	return c
}

func (c *Camera) SetLensShift(shiftX, shiftY float32) *Camera {
	c.shiftX = shiftX
	c.shiftY = shiftY
	return c
}

func (c *Camera) SetOrthographic(isOrtho bool) *Camera {
	c.orthographic = isOrtho
	return c
}

func (c *Camera) GetPosition() math.Vec3     { return c.position }
func (c *Camera) GetRotation() math.Quaternion { return c.rotation }

func (c *Camera) SetPosition(position math.Vec3) *Camera {
	c.position = position
	c.dirtyView = true
	return c
}

func (c *Camera) SetRotation(rotation math.Quaternion) *Camera {
	c.rotation = rotation
	c.dirtyView = true
	return c
}

func (c *Camera) GetNear() float32 { return c.near }
func (c *Camera) GetFar() float32  { return c.far }

func (c *Camera) SetNear(near float32) *Camera {
	c.near = near
	return c
}

func (c *Camera) SetFar(far float32) *Camera {
	c.far = far
	return c
}

// Translate moves the camera by t, understood either in view space
// (rotated by the camera's current orientation) or world space.
func (c *Camera) Translate(t math.Vec3, coord Space) *Camera {
	if coord == View {
		t = rotateVec3(c.rotation, t)
	}
	c.position = c.position.Add(t)
	c.dirtyView = true
	return c
}

// Rotate applies an additional rotation around the camera's own center.
func (c *Camera) Rotate(r math.Quaternion) *Camera {
	c.rotation = r.Mul(c.rotation).Normalize()
	c.dirtyView = true
	return c
}

// Orbit rotates the camera by r around pivot, a world-space point.
func (c *Camera) Orbit(r math.Quaternion, pivot math.Vec3) *Camera {
	offset := c.position.Sub(pivot)
	rotated := rotateVec3(r, offset)
	c.position = pivot.Add(rotated)
	c.rotation = r.Mul(c.rotation).Normalize()
	c.dirtyView = true
	return c
}

func rotateVec3(q math.Quaternion, v math.Vec3) math.Vec3 {
	m := q.ToMat4()
	return math.Vec3{
		X: v.X*m.Data[0] + v.Y*m.Data[4] + v.Z*m.Data[8],
		Y: v.X*m.Data[1] + v.Y*m.Data[5] + v.Z*m.Data[9],
		Z: v.X*m.Data[2] + v.Y*m.Data[6] + v.Z*m.Data[10],
	}
}

// WorldToView returns the current view matrix, rebuilding it only when
// position or rotation changed since the last call.
func (c *Camera) WorldToView() math.Mat4 {
	if c.dirtyView {
		rotation := c.rotation.ToMat4()
		translation := math.NewMat4Translation(c.position)
		c.viewCache = translation.Mul(rotation).Inverse()
		c.dirtyView = false
	}
	return c.viewCache
}

func (c *Camera) ViewToWorld() math.Mat4 {
	return c.WorldToView().Inverse()
}

// ViewToClip returns the projection matrix for the camera's current lens
// configuration.
func (c *Camera) ViewToClip() math.Mat4 {
	if c.orthographic {
		halfH := c.orthoHalfHeight()
		halfW := halfH * c.aspectRatio
		return math.NewMat4Orthographic(-halfW+c.shiftX, halfW+c.shiftX, -halfH+c.shiftY, halfH+c.shiftY, c.near, c.far)
	}
	verticalFov := c.fov
	if c.fovAxis == Horizontal {
		verticalFov = 2 * katan32(ktan32(c.fov/2)/c.aspectRatio)
	}
	return math.NewMat4Perspective(verticalFov, c.aspectRatio, c.near, c.far)
}

func (c *Camera) orthoHalfHeight() float32 {
	if c.fovAxis == Vertical {
		return ktan32(c.fov/2) * (c.near + c.far) * 0.5
	}
	return ktan32(c.fov/2) * (c.near + c.far) * 0.5 / c.aspectRatio
}

func (c *Camera) ClipToView() math.Mat4 {
	return c.ViewToClip().Inverse()
}

func (c *Camera) WorldToClip() math.Mat4 {
	return c.ViewToClip().Mul(c.WorldToView())
}

func (c *Camera) ClipToWorld() math.Mat4 {
	return c.WorldToClip().Inverse()
}

// ViewRayAt returns the view-space ray through normalized screen
// coordinates (x, y), where (0,0) is top-left and (1,1) is bottom-right.
func (c *Camera) ViewRayAt(x, y float32) Ray {
	ndcX := 2*x - 1 + 2*c.shiftX
	ndcY := 1 - 2*y + 2*c.shiftY
	clipToView := c.ClipToView()
	near := unproject(math.Vec3{X: ndcX, Y: ndcY, Z: -1}, clipToView)
	far := unproject(math.Vec3{X: ndcX, Y: ndcY, Z: 1}, clipToView)
	dir := far.Sub(near)
	if length := dir.Length(); length > 0 {
		dir = dir.MulScalar(1 / length)
	}
	return Ray{Origin: near, Direction: dir}
}

// WorldRayAt returns the world-space ray through normalized screen
// coordinates (x, y).
func (c *Camera) WorldRayAt(x, y float32) Ray {
	r := c.ViewRayAt(x, y)
	viewToWorld := c.ViewToWorld()
	origin := r.Origin.Transform(viewToWorld)
	dirPoint := r.Origin.Add(r.Direction).Transform(viewToWorld)
	dir := dirPoint.Sub(origin)
	if length := dir.Length(); length > 0 {
		dir = dir.MulScalar(1 / length)
	}
	return Ray{Origin: origin, Direction: dir}
}

// ViewCoordAt returns the view-space position at normalized screen
// coordinates (x, y) and normalized depth in [0,1].
func (c *Camera) ViewCoordAt(x, y, depth float32) math.Vec3 {
	ndcX := 2*x - 1 + 2*c.shiftX
	ndcY := 1 - 2*y + 2*c.shiftY
	ndcZ := 2*depth - 1
	return unproject(math.Vec3{X: ndcX, Y: ndcY, Z: ndcZ}, c.ClipToView())
}

// unproject maps a normalized-device-coordinate point through the
// clip-to-view matrix m and applies the perspective divide by w.
func unproject(ndc math.Vec3, m math.Mat4) math.Vec3 {
	p := ndc.Transform(m)
	w := ndc.X*m.Data[3] + ndc.Y*m.Data[7] + ndc.Z*m.Data[11] + m.Data[15]
	if w != 0 {
		p = p.MulScalar(1 / w)
	}
	return p
}

// WorldCoordAt returns the world-space position at normalized screen
// coordinates (x, y) and normalized depth in [0,1].
func (c *Camera) WorldCoordAt(x, y, depth float32) math.Vec3 {
	return c.ViewCoordAt(x, y, depth).Transform(c.ViewToWorld())
}

func ktan32(x float32) float32 {
	return float32(stdmath.Tan(float64(x)))
}

func katan32(x float32) float32 {
	return float32(stdmath.Atan(float64(x)))
}
