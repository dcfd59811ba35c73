package geom

// Box is an oriented box given by its 8 world-space corners. Corners 0-3
// are the +Y face and 4-7 the -Y face, each wound (+x,-z), (-x,-z),
// (-x,+z), (+x,+z) in local coordinates.
type Box [8]Vec3

// BuildBox returns the corners of the box centred at pos with full extents
// size, rotated by rot.
func BuildBox(pos, size Vec3, rot Quat) Box {
	h := Scale(0.5, size)
	local := [8]Vec3{
		{X: +h.X, Y: +h.Y, Z: -h.Z},
		{X: -h.X, Y: +h.Y, Z: -h.Z},
		{X: -h.X, Y: +h.Y, Z: +h.Z},
		{X: +h.X, Y: +h.Y, Z: +h.Z},
		{X: +h.X, Y: -h.Y, Z: -h.Z},
		{X: -h.X, Y: -h.Y, Z: -h.Z},
		{X: -h.X, Y: -h.Y, Z: +h.Z},
		{X: +h.X, Y: -h.Y, Z: +h.Z},
	}
	var b Box
	for i, c := range local {
		b[i] = Add(pos, rot.Rotate(c))
	}
	return b
}

// BoundingRadius is the radius of the sphere circumscribing a box of the
// given full extents.
func BoundingRadius(size Vec3) float64 {
	return Norm(Scale(0.5, size))
}

// PlaneBetweenShapes reports whether every corner of other lies on the
// positive side of the plane through point with the given normal.
func PlaneBetweenShapes(normal, point Vec3, other *Box) bool {
	for i := range other {
		if Dot(normal, Sub(other[i], point)) < 0 {
			return false
		}
	}
	return true
}

// BoxesCollide runs a separating-axis test restricted to the face normals of
// both boxes. Edge-edge cross axes are not tested, so a few rotated pairs
// that are in fact separated are reported as colliding. Placement thresholds
// are tuned against this behaviour.
func BoxesCollide(a, b *Box) bool {
	return !separatedByFaces(a, b) && !separatedByFaces(b, a)
}

func separatedByFaces(a, b *Box) bool {
	for _, k := range [3]int{1, 3, 4} {
		if PlaneBetweenShapes(Sub(a[0], a[k]), a[0], b) {
			return true
		}
		if PlaneBetweenShapes(Sub(a[k], a[0]), a[k], b) {
			return true
		}
	}
	return false
}

// BoxCollide tests a prebuilt box centred at pos1 with extents size1 against
// the box (pos2, size2, rot2). A bounding-sphere check runs first.
func BoxCollide(pos1, size1 Vec3, box1 *Box, pos2, size2 Vec3, rot2 Quat) bool {
	r := BoundingRadius(size1) + BoundingRadius(size2)
	if Dist2(pos1, pos2) > r*r {
		return false
	}
	box2 := BuildBox(pos2, size2, rot2)
	return BoxesCollide(box1, &box2)
}
