package grid

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Vec3 is a world-space point or displacement. Y is up; the grid lives on
// the XZ plane.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Planar projects onto the XZ plane as a cp.Vector (cp's Y carries Z here).
func (v Vec3) Planar() cp.Vector {
	return cp.Vector{X: v.X, Y: v.Z}
}

// Lerp interpolates toward o by t in [0, 1].
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
		Z: v.Z + (o.Z-v.Z)*t,
	}
}

// FromPlanar lifts an XZ-plane vector back into world space at height y.
func FromPlanar(p cp.Vector, y float64) Vec3 {
	return Vec3{X: p.X, Y: y, Z: p.Y}
}

// Finite replaces NaN and infinite components with zero.
func (v Vec3) Finite() Vec3 {
	return Vec3{X: finite(v.X), Y: finite(v.Y), Z: finite(v.Z)}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// NormalizeAngle wraps an angle into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// FacingDir converts a facing angle into a unit direction on the XZ plane.
// Facing 0 looks toward +Z.
func FacingDir(angle float64) cp.Vector {
	return cp.Vector{X: math.Sin(angle), Y: math.Cos(angle)}
}
