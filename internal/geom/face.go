package geom

import "math"

// Quad is a planar parallelogram. Edges 0→1 and 0→3 span it; corner 2 is
// opposite corner 0.
type Quad [4]Vec3

// Center returns the average of the four corners.
func (q *Quad) Center() Vec3 {
	return Scale(0.25, Add(Add(q[0], q[1]), Add(q[2], q[3])))
}

// NearestPoint returns the point of the quad closest to p.
func (q *Quad) NearestPoint(p Vec3) Vec3 {
	vx := Sub(q[1], q[0])
	vy := Sub(q[3], q[0])
	xx := Dot(vx, vx)
	yy := Dot(vy, vy)
	rel := Sub(p, q[0])
	xp := Dot(vx, rel)
	yp := Dot(vy, rel)

	switch {
	case xp < 0:
		switch {
		case yp < 0:
			return q[0]
		case yp > yy:
			return q[3]
		}
		return Madd(q[0], yp/yy, vy)
	case xp > xx:
		switch {
		case yp < 0:
			return q[1]
		case yp > yy:
			return q[2]
		}
		return Madd(q[1], yp/yy, vy)
	}
	switch {
	case yp < 0:
		return Madd(q[0], xp/xx, vx)
	case yp > yy:
		return Madd(q[3], xp/xx, vx)
	}
	return Add(q[0], Add(Scale(xp/xx, vx), Scale(yp/yy, vy)))
}

// DistToPoint is the distance from p to the quad.
func (q *Quad) DistToPoint(p Vec3) float64 {
	return Dist(p, q.NearestPoint(p))
}

// rayMaxLen bounds ray casts to a finite segment.
const rayMaxLen = 1e6

// RayCast intersects the ray (org, dir) with the front side of the quad,
// whose outward normal is given. Hits from behind are ignored.
func (q *Quad) RayCast(org, dir, normal Vec3) (Vec3, bool) {
	d := Normalize(dir)
	seg := Segment{Org: org, Dir: d, Len: rayMaxLen}
	c := q.Center()
	if !seg.IntersectsSphere(c, Dist(c, q[0])) {
		return Vec3{}, false
	}

	den := Dot(d, normal)
	if den >= -1e-9 {
		return Vec3{}, false
	}
	t := Dot(Sub(q[0], org), normal) / den
	if t < 0 || t > rayMaxLen {
		return Vec3{}, false
	}
	p := Madd(org, t, d)

	vx := Sub(q[1], q[0])
	vy := Sub(q[3], q[0])
	rel := Sub(p, q[0])
	xp := Dot(vx, rel)
	yp := Dot(vy, rel)
	const tol = 1e-9
	if xp < -tol || xp > Dot(vx, vx)+tol || yp < -tol || yp > Dot(vy, vy)+tol {
		return Vec3{}, false
	}
	if math.IsNaN(p.X) {
		return Vec3{}, false
	}
	return p, true
}
