package topology

import "github.com/banshee-data/roomscan/internal/geom"

// CellIsOk tests the cell of s under pos against every predicate in req.
// limit is the minimum headroom, in cells, for RequestSpace.
func (t *Topology) CellIsOk(pos geom.Vec3, s *Surface, req Request, limit uint32) bool {
	cell := t.CellInSurface(s, pos)
	if cell == nil {
		return req&RequestOutside != 0
	}
	switch {
	case req&RequestOutside != 0:
		return false
	case req&RequestValid != 0 && !cell.IsValid():
		return false
	case req&RequestWall != 0 && cell.DistFromWall != 0:
		return false
	case req&RequestVoid != 0 && cell.DistFromVoid != 0:
		return false
	case req&RequestSpace != 0 && cell.SpaceToUp < limit:
		return false
	}
	return true
}

// sampler accumulates CellIsOk results under the all or only-one policy.
type sampler struct {
	onlyOne bool
}

// visit returns (result, true) when the outcome is decided by ok.
func (sp sampler) visit(ok bool) (bool, bool) {
	if ok && sp.onlyOne {
		return true, true
	}
	if !ok && !sp.onlyOne {
		return false, true
	}
	return false, false
}

func (sp sampler) end() bool { return !sp.onlyOne }

// LineIsOk samples the segment first-last at voxel steps, both ends
// included. A degenerate segment is ok.
func (t *Topology) LineIsOk(first, last geom.Vec3, s *Surface, req Request, limit uint32) bool {
	delta := geom.Sub(last, first)
	length := geom.Norm(delta)
	if length < geom.Eps {
		return true
	}
	n := geom.FloorInt(length/t.VoxelSize) + 1
	delta = geom.Scale(1/float64(n), delta)

	sp := sampler{onlyOne: req&RequestOnlyOne != 0}
	for i := 0; i <= n; i++ {
		if res, done := sp.visit(t.CellIsOk(geom.Madd(first, float64(i), delta), s, req, limit)); done {
			return res
		}
	}
	return sp.end()
}

// RectangleIsOk samples the rectangle spanned by topLeft->topRight and
// topLeft->bottomLeft at voxel steps. The corners are tested first. A
// rectangle with a degenerate side is ok.
func (t *Topology) RectangleIsOk(topLeft, topRight, bottomLeft, bottomRight geom.Vec3, s *Surface, req Request, limit uint32) bool {
	dx := geom.Sub(topRight, topLeft)
	lx := geom.Norm(dx)
	if lx < geom.Eps {
		return true
	}
	dy := geom.Sub(bottomLeft, topLeft)
	ly := geom.Norm(dy)
	if ly < geom.Eps {
		return true
	}

	sp := sampler{onlyOne: req&RequestOnlyOne != 0}
	ok := func(p geom.Vec3) bool { return t.CellIsOk(p, s, req, limit) }
	if sp.onlyOne {
		if ok(topLeft) || ok(topRight) || ok(bottomLeft) || ok(bottomRight) {
			return true
		}
	} else if !ok(topLeft) || !ok(topRight) || !ok(bottomLeft) || !ok(bottomRight) {
		return false
	}

	nx := geom.FloorInt(lx/t.VoxelSize) + 1
	ny := geom.FloorInt(ly/t.VoxelSize) + 1
	dx = geom.Scale(1/float64(nx), dx)
	dy = geom.Scale(1/float64(ny), dy)

	for y := 0; y <= ny; y++ {
		row := geom.Madd(topLeft, float64(y), dy)
		for x := 0; x <= nx; x++ {
			if res, done := sp.visit(ok(geom.Madd(row, float64(x), dx))); done {
				return res
			}
		}
	}
	return sp.end()
}

// RectangleIsOkOnFloor reports whether the rectangle is ok on any ground
// surface.
func (t *Topology) RectangleIsOkOnFloor(topLeft, topRight, bottomLeft, bottomRight geom.Vec3, req Request, limit uint32) bool {
	for i := range t.Surfaces {
		s := &t.Surfaces[i]
		if s.IsGround && t.RectangleIsOk(topLeft, topRight, bottomLeft, bottomRight, s, req, limit) {
			return true
		}
	}
	return false
}

// SurfaceArea is the area of the cells of s that are neither void nor wall.
func (t *Topology) SurfaceArea(s *Surface) float64 {
	area := 0.0
	for i := range s.Cells {
		if s.Cells[i].DistFromVoid != 0 && s.Cells[i].DistFromWall != 0 {
			area += t.VoxelSize * t.VoxelSize
		}
	}
	return area
}
