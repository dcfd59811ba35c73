package topology

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
)

// Raster neighbours already visited by the forward and backward passes.
var (
	prevSteps = [4]geom.Vec2i{{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1}, {X: -1, Y: 0}}
	nextSteps = [4]geom.Vec2i{{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}
)

type distField int

const (
	fieldWall distField = iota
	fieldVoid
	fieldFloor
)

func (f distField) get(c *CellInfo) *uint32 {
	switch f {
	case fieldWall:
		return &c.DistFromWall
	case fieldVoid:
		return &c.DistFromVoid
	}
	return &c.DistFromFloor
}

// computeCellsInfo fills every surface's cell array with a two-pass
// chamfer distance transform of the border, wall, void and floor fields.
func (t *Topology) computeCellsInfo() {
	for i := range t.Surfaces {
		t.computeSurfaceCells(&t.Surfaces[i])
	}
}

func (t *Topology) computeSurfaceCells(s *Surface) {
	sx, sy := s.SizeX(), s.SizeY()
	s.Cells = make([]CellInfo, sx*sy)
	for i := range s.Cells {
		s.Cells[i] = newCellInfo()
	}
	at := func(x, y int) *CellInfo { return &s.Cells[y*sx+x] }

	for y := 0; y < sy; y++ {
		for x := 0; x < sx; x++ {
			gp := geom.Vec2i{X: s.MinPos2D.X + x, Y: s.MinPos2D.Y + y}
			cell := at(x, y)

			if t.inSurface(s, gp) {
				if x == 0 || y == 0 || x == sx-1 || y == sy-1 {
					cell.DistFromBorder = 1
				} else {
					for _, d := range prevSteps {
						cell.DistFromBorder = min(cell.DistFromBorder, incDist(at(x+d.X, y+d.Y).DistFromBorder))
					}
				}
				t.computeSpaceToUp(s, cell, gp)
			} else {
				cell.DistFromBorder = 0
				cell.SpaceToUp = 0
			}

			switch {
			case t.isWall(s.WorldHeight, gp):
				cell.DistFromWall = 0
			case t.isVoid(s.WorldHeight, gp):
				cell.DistFromVoid = 0
				if t.isFloor(s.WorldHeight, gp) {
					cell.DistFromFloor = 0
				}
			}

			for _, d := range prevSteps {
				t.propagate(s, x, y, d)
			}
		}
	}

	for y := sy - 1; y >= 0; y-- {
		for x := sx - 1; x >= 0; x-- {
			cell := at(x, y)
			if x < sx-1 {
				cell.DistFromBorder = min(cell.DistFromBorder, incDist(at(x+1, y).DistFromBorder))
			}
			if y < sy-1 {
				if x < sx-1 {
					cell.DistFromBorder = min(cell.DistFromBorder, incDist(at(x+1, y+1).DistFromBorder))
				}
				cell.DistFromBorder = min(cell.DistFromBorder, incDist(at(x, y+1).DistFromBorder))
				if x > 0 {
					cell.DistFromBorder = min(cell.DistFromBorder, incDist(at(x-1, y+1).DistFromBorder))
				}
			}
			for _, d := range nextSteps {
				t.propagate(s, x, y, d)
			}
		}
	}
}

// inSurface reports whether column gp holds a surfel of s at its height.
func (t *Topology) inSurface(s *Surface, gp geom.Vec2i) bool {
	half := t.VoxelSize / 2
	for sf := range t.board.Column(gp.X, gp.Y) {
		if sf.ZoneID != s.ZoneID {
			continue
		}
		y := sf.Point.Y
		if s.IsCeiling {
			if y > s.WorldHeight-half && y < s.WorldHeight+half {
				return true
			}
			continue
		}
		if sf.IsVirtual() {
			continue
		}
		if (s.IsGround || y < s.WorldHeight+0.005) && y > s.WorldHeight-half {
			return true
		}
	}
	return false
}

// computeSpaceToUp records the free height above (below, for a ceiling)
// the surface in cells. Every surfel is visited: a ceiling's obstruction
// may sit anywhere in the chain.
func (t *Topology) computeSpaceToUp(s *Surface, cell *CellInfo, gp geom.Vec2i) {
	for sf := range t.board.Column(gp.X, gp.Y) {
		delta := sf.Point.Y - s.WorldHeight
		if s.IsCeiling {
			delta = -delta
		}
		if delta > t.VoxelSize {
			cell.SpaceToUp = min(cell.SpaceToUp, uint32(geom.FloorInt(delta/t.VoxelSize)+1))
		}
	}
}

// propagate relaxes the wall, void and floor fields of local cell (x, y)
// from its neighbour at d. A neighbour outside the bounding box is
// classified straight from the board.
func (t *Topology) propagate(s *Surface, x, y int, d geom.Vec2i) {
	sx, sy := s.SizeX(), s.SizeY()
	cell := &s.Cells[y*sx+x]
	ox, oy := x+d.X, y+d.Y

	if ox < 0 || oy < 0 || ox >= sx || oy >= sy {
		gp := geom.Vec2i{X: s.MinPos2D.X + ox, Y: s.MinPos2D.Y + oy}
		if t.isWall(s.WorldHeight, gp) {
			cell.DistFromWall = min(1, cell.DistFromWall)
		}
		if t.isVoid(s.WorldHeight, gp) {
			cell.DistFromVoid = min(1, cell.DistFromVoid)
		}
		if t.isFloor(s.WorldHeight, gp) || t.isFloor(s.WorldHeight, gp.Add(d)) {
			cell.DistFromFloor = min(1, cell.DistFromFloor)
		}
		return
	}

	other := &s.Cells[oy*sx+ox]
	for _, f := range [...]distField{fieldWall, fieldVoid, fieldFloor} {
		p := f.get(cell)
		*p = min(*p, incDist(*f.get(other)))
	}
}

// isWall reports whether column pos holds a vertical surfel 4 to 16 cm
// above height.
func (t *Topology) isWall(height float64, pos geom.Vec2i) bool {
	for sf := range t.board.Column(pos.X, pos.Y) {
		if sf.Dir.IsHorizontal() {
			continue
		}
		d := sf.Point.Y - height
		if d > 0.04 && d < 0.16 {
			return true
		}
	}
	return false
}

// isVoid reports whether column pos has no surfel within half a voxel of
// height and its lowest surfel is not above that band. Columns outside the
// board are not void.
func (t *Topology) isVoid(height float64, pos geom.Vec2i) bool {
	b := t.board
	if !b.InBoard(pos.X, pos.Y) {
		return false
	}
	half := t.VoxelSize / 2
	first := b.First(pos.X, pos.Y)
	if first != nil && first.Point.Y-height > half {
		return false
	}
	for sf := range b.Column(pos.X, pos.Y) {
		if math.Abs(height-sf.Point.Y) < half {
			return false
		}
	}
	return true
}

// isFloor reports a void column whose highest surfel below height is at
// ground level.
func (t *Topology) isFloor(height float64, pos geom.Vec2i) bool {
	if !t.isVoid(height, pos) {
		return false
	}
	top := -1e8
	for sf := range t.board.Column(pos.X, pos.Y) {
		if sf.Point.Y <= height && sf.Point.Y > top {
			top = sf.Point.Y
		}
	}
	return math.Abs(t.YGround-top) < 0.1
}

// IsWallAt reports whether the board column under p holds a wall surfel
// just above p.Y.
func (t *Topology) IsWallAt(p geom.Vec3) bool {
	x, z, _ := t.board.CellOf(p)
	return t.isWall(p.Y, geom.Vec2i{X: x, Y: z})
}
