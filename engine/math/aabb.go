package math

// NewAABBFromPoint returns a degenerate box containing only p.
func NewAABBFromPoint(p Vec3) AABB {
	return AABB{Min: p, Max: p}
}

// Grow returns a copy of the box expanded to also contain p.
func (b AABB) Grow(p Vec3) AABB {
	return AABB{
		Min: Vec3{minf(b.Min.X, p.X), minf(b.Min.Y, p.Y), minf(b.Min.Z, p.Z)},
		Max: Vec3{maxf(b.Max.X, p.X), maxf(b.Max.Y, p.Y), maxf(b.Max.Z, p.Z)},
	}
}

// Union returns the smallest box containing both b and other.
func (b AABB) Union(other AABB) AABB {
	return AABB{
		Min: Vec3{minf(b.Min.X, other.Min.X), minf(b.Min.Y, other.Min.Y), minf(b.Min.Z, other.Min.Z)},
		Max: Vec3{maxf(b.Max.X, other.Max.X), maxf(b.Max.Y, other.Max.Y), maxf(b.Max.Z, other.Max.Z)},
	}
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).MulScalar(0.5)
}

// Contains reports whether p lies within the box (inclusive).
func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Corners returns the 8 corners of the box in a fixed, deterministic order.
func (b AABB) Corners() [8]Vec3 {
	return [8]Vec3{
		{b.Min.X, b.Min.Y, b.Min.Z},
		{b.Max.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Min.Z},
		{b.Max.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Max.Z},
		{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

// DistanceLInf returns the minimum L-infinity distance from p to the box,
// or 0 if p lies inside it.
func (b AABB) DistanceLInf(p Vec3) float32 {
	dx := axisGap(p.X, b.Min.X, b.Max.X)
	dy := axisGap(p.Y, b.Min.Y, b.Max.Y)
	dz := axisGap(p.Z, b.Min.Z, b.Max.Z)
	return maxf(dx, maxf(dy, dz))
}

// DistanceEuclidean returns the minimum Euclidean distance from p to the
// box, or 0 if p lies inside it.
func (b AABB) DistanceEuclidean(p Vec3) float32 {
	dx := axisGap(p.X, b.Min.X, b.Max.X)
	dy := axisGap(p.Y, b.Min.Y, b.Max.Y)
	dz := axisGap(p.Z, b.Min.Z, b.Max.Z)
	return ksqrt(dx*dx + dy*dy + dz*dz)
}

// axisGap returns how far v is outside [lo, hi] along one axis, or 0 if
// v is within range.
func axisGap(v, lo, hi float32) float32 {
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
