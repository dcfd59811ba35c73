package geom

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Eps is the tolerance used for score ties and degenerate lengths.
const Eps = 1e-6

// Vec3 is a point or direction in world space.
type Vec3 = r3.Vec

// Canonical axes.
var (
	Zero  = Vec3{}
	Left  = Vec3{X: 1}
	Right = Vec3{X: -1}
	Up    = Vec3{Y: 1}
	Down  = Vec3{Y: -1}
	Front = Vec3{Z: 1}
	Back  = Vec3{Z: -1}
)

// V builds a Vec3.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Add returns a+b.
func Add(a, b Vec3) Vec3 { return r3.Add(a, b) }

// Sub returns a-b.
func Sub(a, b Vec3) Vec3 { return r3.Sub(a, b) }

// Scale returns f*a.
func Scale(f float64, a Vec3) Vec3 { return r3.Scale(f, a) }

// Dot returns a·b.
func Dot(a, b Vec3) float64 { return r3.Dot(a, b) }

// Cross returns a×b.
func Cross(a, b Vec3) Vec3 { return r3.Cross(a, b) }

// Norm returns |a|.
func Norm(a Vec3) float64 { return r3.Norm(a) }

// Norm2 returns |a|².
func Norm2(a Vec3) float64 { return r3.Norm2(a) }

// Neg returns -a.
func Neg(a Vec3) Vec3 { return Vec3{X: -a.X, Y: -a.Y, Z: -a.Z} }

// Madd returns a + f*b.
func Madd(a Vec3, f float64, b Vec3) Vec3 {
	return Vec3{X: a.X + f*b.X, Y: a.Y + f*b.Y, Z: a.Z + f*b.Z}
}

// Normalize returns the unit vector along a, or the zero vector when a is
// too short to carry a direction. r3.Unit returns NaNs in that case.
func Normalize(a Vec3) Vec3 {
	n := r3.Norm(a)
	if n < 1e-12 {
		return Zero
	}
	return r3.Scale(1/n, a)
}

// HNormalize drops the vertical component and normalizes the rest.
func HNormalize(a Vec3) Vec3 {
	a.Y = 0
	return Normalize(a)
}

// HDist2 is the squared horizontal (XZ) distance between a and b.
func HDist2(a, b Vec3) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return dx*dx + dz*dz
}

// Dist2 is the squared distance between a and b.
func Dist2(a, b Vec3) float64 { return r3.Norm2(r3.Sub(a, b)) }

// Dist is the distance between a and b.
func Dist(a, b Vec3) float64 { return r3.Norm(r3.Sub(a, b)) }

// ApproxEqual reports whether every component of a and b differs by at
// most tol.
func ApproxEqual(a, b Vec3, tol float64) bool {
	return floats.EqualWithinAbs(a.X, b.X, tol) &&
		floats.EqualWithinAbs(a.Y, b.Y, tol) &&
		floats.EqualWithinAbs(a.Z, b.Z, tol)
}

// Vec2 is a horizontal position or extent (X, Z).
type Vec2 struct {
	X, Y float64
}

// Vec2i is an integer grid coordinate. Y indexes the board's Z axis.
type Vec2i struct {
	X, Y int
}

// Add returns p+q.
func (p Vec2i) Add(q Vec2i) Vec2i { return Vec2i{X: p.X + q.X, Y: p.Y + q.Y} }

// FloorInt truncates toward negative infinity.
func FloorInt(f float64) int { return int(math.Floor(f)) }

// CeilInt rounds toward positive infinity.
func CeilInt(f float64) int { return int(math.Ceil(f)) }

// RoundInt rounds half away from zero.
func RoundInt(f float64) int { return int(math.Round(f)) }

// Clamp01 bounds f to [0,1].
func Clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
