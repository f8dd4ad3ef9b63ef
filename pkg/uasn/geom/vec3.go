// Package geom implements the small 3-D vector algebra the simulation
// kernel and solvers share: addition, scaling, dot and cross products,
// norm and Euclidean distance.
package geom

import "math"

// Vec3 is a point or vector in metres. Z is depth and is negative
// underwater (0 at the surface, down to -maxDepth).
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and other.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product of v and other.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec3) float64 {
	return a.Sub(b).Norm()
}

// InBounds reports whether v lies within the simulation volume
// described by (maxX, maxY, minZ): 0 <= x <= maxX, 0 <= y <= maxY,
// minZ <= z <= 0.
func (v Vec3) InBounds(maxX, maxY, minZ float64) bool {
	return v.X >= 0 && v.X <= maxX && v.Y >= 0 && v.Y <= maxY && v.Z >= minZ && v.Z <= 0
}
