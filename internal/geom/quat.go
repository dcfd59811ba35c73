package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quat is a unit rotation quaternion.
type Quat quat.Number

// Identity is the null rotation.
var Identity = Quat{Real: 1}

// AxisAngle returns the rotation of angle radians about axis. A zero axis
// yields the identity.
func AxisAngle(axis Vec3, angle float64) Quat {
	if r3.Norm2(axis) < 1e-24 || angle == 0 {
		return Identity
	}
	return Quat(r3.NewRotation(angle, axis))
}

// Rotate applies q to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	return r3.Rotation(q).Rotate(v)
}

// Mul returns q*o: o is applied first, then q.
func (q Quat) Mul(o Quat) Quat {
	return Quat(quat.Mul(quat.Number(q), quat.Number(o)))
}

// Inverse returns the conjugate, which is the inverse of a unit quaternion.
func (q Quat) Inverse() Quat {
	return Quat(quat.Conj(quat.Number(q)))
}

// Normalized rescales q to unit length. The zero quaternion maps to Identity.
func (q Quat) Normalized() Quat {
	n := quat.Abs(quat.Number(q))
	if n < 1e-12 {
		return Identity
	}
	return Quat(quat.Scale(1/n, quat.Number(q)))
}

// ApproxEqual reports whether q and o describe the same rotation within tol,
// accounting for the q/-q double cover.
func (q Quat) ApproxEqual(o Quat, tol float64) bool {
	d := q.Real*o.Real + q.Imag*o.Imag + q.Jmag*o.Jmag + q.Kmag*o.Kmag
	return math.Abs(math.Abs(d)-1) <= tol
}

// FromTo returns the shortest-arc rotation taking direction from onto to.
func FromTo(from, to Vec3) Quat {
	a := Normalize(from)
	b := Normalize(to)
	if a == Zero || b == Zero {
		return Identity
	}
	d := Dot(a, b)
	if d > 1-1e-9 {
		return Identity
	}
	if d < -1+1e-9 {
		axis := Cross(Left, a)
		if Norm2(axis) < 1e-12 {
			axis = Cross(Up, a)
		}
		return AxisAngle(axis, math.Pi)
	}
	c := Cross(a, b)
	return Quat{Real: 1 + d, Imag: c.X, Jmag: c.Y, Kmag: c.Z}.Normalized()
}

// LookRotation returns the rotation mapping local Front to front and local
// Up as close as possible to up. Local Left becomes up×front.
func LookRotation(front, up Vec3) Quat {
	z := Normalize(front)
	if z == Zero {
		return Identity
	}
	x := Normalize(Cross(up, z))
	if x == Zero {
		// up is colinear with front; pick any perpendicular.
		x = Normalize(Cross(Left, z))
		if x == Zero {
			x = Normalize(Cross(Up, z))
		}
	}
	y := Cross(z, x)
	return FromBasis(x, y, z)
}

// FromBasis converts an orthonormal basis (images of Left, Up, Front) into
// a quaternion.
func FromBasis(x, y, z Vec3) Quat {
	// Rotation matrix columns are x, y, z.
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	var q Quat
	tr := m00 + m11 + m22
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		q = Quat{Real: 0.25 * s, Imag: (m21 - m12) / s, Jmag: (m02 - m20) / s, Kmag: (m10 - m01) / s}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = Quat{Real: (m21 - m12) / s, Imag: 0.25 * s, Jmag: (m01 + m10) / s, Kmag: (m02 + m20) / s}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = Quat{Real: (m02 - m20) / s, Imag: (m01 + m10) / s, Jmag: 0.25 * s, Kmag: (m12 + m21) / s}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = Quat{Real: (m10 - m01) / s, Imag: (m02 + m20) / s, Jmag: (m12 + m21) / s, Kmag: 0.25 * s}
	}
	return q.Normalized()
}

// YawSteps returns n rotations about Up spaced by 2π/n, starting at the
// identity.
func YawSteps(n int) []Quat {
	out := make([]Quat, n)
	for i := range out {
		out[i] = AxisAngle(Up, 2*math.Pi*float64(i)/float64(n))
	}
	return out
}
