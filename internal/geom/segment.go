package geom

// Segment starts at Org and runs Len along the unit direction Dir.
type Segment struct {
	Org Vec3
	Dir Vec3
	Len float64
}

// NewSegment builds the segment from a to b.
func NewSegment(a, b Vec3) Segment {
	d := Sub(b, a)
	return Segment{Org: a, Dir: Normalize(d), Len: Norm(d)}
}

// End returns Org + Len*Dir.
func (s Segment) End() Vec3 { return Madd(s.Org, s.Len, s.Dir) }

// ClosestPoint returns the point of s nearest to p.
func (s Segment) ClosestPoint(p Vec3) Vec3 {
	t := Dot(Sub(p, s.Org), s.Dir)
	switch {
	case t <= 0:
		return s.Org
	case t >= s.Len:
		return s.End()
	}
	return Madd(s.Org, t, s.Dir)
}

// DistToPoint is the distance from p to the closest point of s.
func (s Segment) DistToPoint(p Vec3) float64 {
	return Dist(p, s.ClosestPoint(p))
}

// IntersectsSphere reports whether s passes within radius of center.
func (s Segment) IntersectsSphere(center Vec3, radius float64) bool {
	return Dist2(center, s.ClosestPoint(center)) <= radius*radius
}
