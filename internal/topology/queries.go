package topology

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
	"github.com/banshee-data/roomscan/internal/surfel"
)

// SurfaceFromPos returns the index of the first surface whose cell under pos
// is valid, or -1.
func (t *Topology) SurfaceFromPos(pos geom.Vec3) int {
	for i := range t.Surfaces {
		if c := t.CellInSurface(&t.Surfaces[i], pos); c != nil && c.IsValid() {
			return i
		}
	}
	return -1
}

// HigherSurfaceInBox returns the index of the highest surface whose height
// lies within the box (centered on pos) and whose bounds contain pos
// horizontally, or -1.
func (t *Topology) HigherSurfaceInBox(pos, size geom.Vec3) int {
	best := -1
	for i := range t.Surfaces {
		s := &t.Surfaces[i]
		if best >= 0 && t.Surfaces[best].WorldHeight > s.WorldHeight {
			continue
		}
		if math.Abs(s.WorldHeight-pos.Y) > size.Y/2 {
			continue
		}
		if s.MinPos.X > pos.X || s.MaxPos.X < pos.X || s.MinPos.Z > pos.Z || s.MaxPos.Z < pos.Z {
			continue
		}
		best = i
	}
	return best
}

// SurfaceIndexFromZoneID returns the index of the first surface of zone, or
// -1.
func (t *Topology) SurfaceIndexFromZoneID(zone int) int {
	for i := range t.Surfaces {
		if t.Surfaces[i].ZoneID == zone {
			return i
		}
	}
	return -1
}

// rectRotations are the four axis-aligned orientations tried by
// AllRectanglePos.
var rectRotations = [4]geom.Quat{
	geom.Identity,
	geom.FromTo(geom.Left, geom.Front),
	geom.AxisAngle(geom.Up, math.Pi),
	geom.FromTo(geom.Left, geom.Back),
}

// AllRectanglePos returns the cell centers of s around which a
// minWidth x minLength rectangle fits in one of four orientations. A
// position is reported once per fitting orientation.
func (t *Topology) AllRectanglePos(minWidth, minLength float64, s *Surface) []RectPos {
	if minWidth > minLength {
		out := t.AllRectanglePos(minLength, minWidth, s)
		for i := range out {
			out[i].LengthDir = geom.Cross(geom.Down, out[i].LengthDir)
		}
		return out
	}

	border := uint32(geom.FloorInt(minWidth/2/t.VoxelSize) + 1)
	hw, hl := minWidth/2, minLength/2
	var out []RectPos
	for c := range s.Cells {
		if s.Cells[c].DistFromBorder < border || s.Cells[c].DistFromBorder == NoDist {
			continue
		}
		p := t.CellPosition(s, c)
		for _, rot := range rectRotations {
			tl := geom.Add(p, rot.Rotate(geom.V(-hw, 0, -hl)))
			tr := geom.Add(p, rot.Rotate(geom.V(-hw, 0, hl)))
			bl := geom.Add(p, rot.Rotate(geom.V(hw, 0, -hl)))
			br := geom.Add(p, rot.Rotate(geom.V(hw, 0, hl)))
			if t.RectangleIsOk(tl, tr, bl, br, s, RequestValid, 0) {
				out = append(out, RectPos{Pos: p, LengthDir: rot.Rotate(geom.Front)})
			}
		}
	}
	return out
}

// AllRectanglePosOnFloor runs AllRectanglePos over every ground surface.
func (t *Topology) AllRectanglePosOnFloor(minWidth, minLength float64) []RectPos {
	var out []RectPos
	for i := range t.Surfaces {
		if t.Surfaces[i].IsGround {
			out = append(out, t.AllRectanglePos(minWidth, minLength, &t.Surfaces[i])...)
		}
	}
	return out
}

// AllPosOnFloor returns the ground cells at least minSize/2 from the border
// with minHeight of free space above a minSize square around them.
func (t *Topology) AllPosOnFloor(minSize, minHeight float64) []geom.Vec3 {
	half := minSize / 2
	border := uint32(geom.FloorInt(half/t.VoxelSize) + 1)
	space := uint32(geom.FloorInt(minHeight / t.VoxelSize))

	var out []geom.Vec3
	for i := range t.Surfaces {
		s := &t.Surfaces[i]
		if !s.IsGround {
			continue
		}
		for c := range s.Cells {
			cell := &s.Cells[c]
			if cell.DistFromBorder < border || cell.DistFromBorder == NoDist || cell.SpaceToUp < space {
				continue
			}
			p := t.CellPosition(s, c)
			if space == 0 || t.RectangleIsOk(
				geom.Add(p, geom.V(half, 0, half)), geom.Add(p, geom.V(-half, 0, half)),
				geom.Add(p, geom.V(half, 0, -half)), geom.Add(p, geom.V(-half, 0, -half)),
				s, RequestSpace, space) {
				out = append(out, p)
			}
		}
	}
	return out
}

// LargestPosOnFloor returns the ground cells farthest from any border.
func (t *Topology) LargestPosOnFloor() []geom.Vec3 {
	var out []geom.Vec3
	var best uint32
	for i := range t.Surfaces {
		s := &t.Surfaces[i]
		if !s.IsGround {
			continue
		}
		for c := range s.Cells {
			d := s.Cells[c].DistFromBorder
			switch {
			case d == NoDist:
			case d == best:
				out = append(out, t.CellPosition(s, c))
			case d > best:
				out = append(out[:0], t.CellPosition(s, c))
				best = d
			}
		}
	}
	return out
}

// AllPosOnSurface returns the cells of s at least minSize/2 from its
// border.
func (t *Topology) AllPosOnSurface(s *Surface, minSize float64) []geom.Vec3 {
	border := uint32(geom.FloorInt(minSize/2/t.VoxelSize) + 1)
	var out []geom.Vec3
	for c := range s.Cells {
		if d := s.Cells[c].DistFromBorder; d >= border && d != NoDist {
			out = append(out, t.CellPosition(s, c))
		}
	}
	return out
}

// AllPosOnSurfaceInSphere returns one position per board column inside the
// sphere that lies on a surface cell at least posRadius from any wall and
// not on a void edge.
func (t *Topology) AllPosOnSurfaceInSphere(center geom.Vec3, radius, posRadius float64) []geom.Vec3 {
	voxel := t.VoxelSize
	r2 := radius * radius
	wallDist := uint32(geom.FloorInt(posRadius / voxel))
	cx := int((center.X - t.MinPos.X) / voxel)
	cz := int((center.Z - t.MinPos.Z) / voxel)
	rc := int(radius / voxel)

	var out []geom.Vec3
	for z := cz - rc; z <= cz+rc; z++ {
		for x := cx - rc; x <= cx+rc; x++ {
			if x < t.MinPos2D.X || x > t.MaxPos2D.X || z < t.MinPos2D.Y || z > t.MaxPos2D.Y {
				continue
			}
			plane := geom.V(t.MinPos.X+(float64(x)+0.5)*voxel, center.Y, t.MinPos.Z+(float64(z)+0.5)*voxel)
			if geom.Dist2(plane, center) > r2 {
				continue
			}
			for i := range t.Surfaces {
				s := &t.Surfaces[i]
				cell := s.CellAtGrid(geom.Vec2i{X: x, Y: z})
				if cell == nil || cell.DistFromWall < wallDist || cell.DistFromVoid == 0 {
					continue
				}
				p := geom.V(plane.X, s.MinPos.Y, plane.Z)
				if geom.Dist2(p, center) <= r2 {
					out = append(out, p)
					break
				}
			}
		}
	}
	return out
}

// CellIsVisibleFromPlayspaceCenter samples the horizontal segment from pos
// to the room center at eye height and reports false when a sample more
// than 1 m from the center lies in a wall.
func (t *Topology) CellIsVisibleFromPlayspaceCenter(pos geom.Vec3) bool {
	from := pos
	from.Y = t.RoomCenter.Y
	delta := geom.Sub(t.RoomCenter, from)
	n := t.cfg.VisibilitySamples
	for i := 0; i < n; i++ {
		p := geom.Madd(from, float64(i)/float64(n), delta)
		if geom.Dist2(t.RoomCenter, p) <= 1 {
			continue
		}
		if t.IsWallAt(p) {
			return false
		}
	}
	return true
}

// rectCorners returns the corners of a size rectangle centered on pos and
// rotated by rot, in the order (-,-), (-,+), (+,-), (+,+) of local (x, z).
func rectCorners(pos, size geom.Vec2, rot geom.Quat) [4]geom.Vec2 {
	var out [4]geom.Vec2
	for i, sg := range [4][2]float64{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}} {
		v := rot.Rotate(geom.V(sg[0]*size.X/2, 0, sg[1]*size.Y/2))
		out[i] = geom.Vec2{X: pos.X + v.X, Y: pos.Y + v.Z}
	}
	return out
}

// RectangleIsInPlaySpace reports whether the rotated rectangle lies within
// the available area. pos and size are horizontal (X, Z).
func (t *Topology) RectangleIsInPlaySpace(pos, size geom.Vec2, rot geom.Quat) bool {
	for _, c := range rectCorners(pos, size, rot) {
		if c.X < t.AvailableMin.X || c.X > t.AvailableMax.X || c.Y < t.AvailableMin.Z || c.Y > t.AvailableMax.Z {
			return false
		}
	}
	return true
}

// MaxYInRectangle returns the highest non-ceiling surfel height in
// [minY, maxY) under the rotated rectangle, or minY if there is none. An
// empty column under the rectangle yields YCeiling when it is below maxY.
func (t *Topology) MaxYInRectangle(pos, size geom.Vec2, rot geom.Quat, minY, maxY float64) float64 {
	c := rectCorners(pos, size, rot)
	topRight, bottomLeft, topLeft := c[1], c[2], c[3]
	l2r := geom.Vec2{X: (topRight.X - topLeft.X) / size.X, Y: (topRight.Y - topLeft.Y) / size.X}
	t2b := geom.Vec2{X: (bottomLeft.X - topLeft.X) / size.Y, Y: (bottomLeft.Y - topLeft.Y) / size.Y}

	b := t.board
	best := minY
	for i := t.VoxelSize / 2; i < size.X; i += t.VoxelSize {
		for j := t.VoxelSize / 2; j < size.Y; j += t.VoxelSize {
			p := geom.V(topLeft.X+l2r.X*i+t2b.X*j, 0, topLeft.Y+l2r.Y*i+t2b.Y*j)
			x, z, ok := b.CellOf(p)
			if !ok {
				continue
			}
			if b.First(x, z) == nil {
				if t.YCeiling < maxY {
					return t.YCeiling
				}
				continue
			}
			for sf := range b.Column(x, z) {
				if sf.Dir != surfel.DirDown && minY <= sf.Point.Y && maxY > sf.Point.Y {
					best = max(best, sf.Point.Y)
				}
			}
		}
	}
	return best
}

// DistNearestBorderOnGround returns the border distance of the ground cell
// positioned exactly at pos and how many of its 8 neighbours share it. The
// distance is -1 when no ground cell sits at pos.
func (t *Topology) DistNearestBorderOnGround(pos geom.Vec3) (float64, int) {
	for i := range t.Surfaces {
		s := &t.Surfaces[i]
		if !s.IsGround {
			continue
		}
		for c := range s.Cells {
			if t.CellPosition(s, c) != pos {
				continue
			}
			d := s.Cells[c].DistFromBorder
			same := 0
			for _, n := range CellNeighbors(s, c) {
				if nc := s.CellAtGrid(n); nc != nil && nc.DistFromBorder == d {
					same++
				}
			}
			return float64(d), same
		}
	}
	return -1, 0
}
