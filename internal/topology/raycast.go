package topology

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
)

// CellPosition returns the world position of local cell c of s, at the
// surface height.
func (t *Topology) CellPosition(s *Surface, c int) geom.Vec3 {
	sx := s.SizeX()
	x, y := c%sx, c/sx
	return geom.V(
		s.MinPos.X+float64(x)*t.VoxelSize,
		s.MinPos.Y,
		s.MinPos.Z+float64(y)*t.VoxelSize)
}

// cellIndex returns the local index of the cell of s nearest to pos, or -1
// when pos falls outside the bounding box.
func (t *Topology) cellIndex(s *Surface, pos geom.Vec3) int {
	x := geom.RoundInt((pos.X - s.MinPos.X) / t.VoxelSize)
	y := geom.RoundInt((pos.Z - s.MinPos.Z) / t.VoxelSize)
	if x < 0 || y < 0 || x >= s.SizeX() || y >= s.SizeY() {
		return -1
	}
	return y*s.SizeX() + x
}

// CellInSurface returns the cell of s under pos, or nil.
func (t *Topology) CellInSurface(s *Surface, pos geom.Vec3) *CellInfo {
	c := t.cellIndex(s, pos)
	if c < 0 {
		return nil
	}
	return &s.Cells[c]
}

// RayCast returns the nearest hit of the ray (org, dir) on a surface cell
// that is not void or on a wall column that covers the hit height.
func (t *Topology) RayCast(org, dir geom.Vec3) (RayCastResult, bool) {
	best := RayCastResult{SurfaceIdx: -1, CellIdx: -1, WallIdx: -1, ColumnIdx: -1}
	bestDist := math.Inf(1)

	for i := range t.Surfaces {
		s := &t.Surfaces[i]
		face := s.Face(t.VoxelSize)
		for _, n := range [...]geom.Vec3{geom.Up, geom.Down} {
			p, ok := face.RayCast(org, dir, n)
			if !ok {
				continue
			}
			c := t.cellIndex(s, p)
			if c < 0 || s.Cells[c].DistFromVoid == 0 {
				continue
			}
			if d := geom.Dist2(org, p); d < bestDist {
				bestDist = d
				best = RayCastResult{Pos: p, Normal: n, Type: HitSurface,
					SurfaceIdx: i, CellIdx: c, WallIdx: -1, ColumnIdx: -1}
			}
		}
	}

	for i := range t.Walls {
		w := &t.Walls[i]
		if len(w.Columns) == 0 {
			continue
		}
		face := w.Face()
		p, ok := face.RayCast(org, dir, w.Normal)
		if !ok {
			continue
		}
		c, ok := w.ColumnAt(p)
		if !ok {
			continue
		}
		col := &w.Columns[c]
		if p.Y < col.Min || p.Y > col.Max {
			continue
		}
		if d := geom.Dist2(org, p); d < bestDist {
			bestDist = d
			best = RayCastResult{Pos: p, Normal: w.Normal, Type: HitWall,
				SurfaceIdx: -1, CellIdx: -1, WallIdx: i, ColumnIdx: c}
		}
	}

	return best, !math.IsInf(bestDist, 1)
}

// NearestPointOnSurface returns the point of the surface quad closest to p.
func (t *Topology) NearestPointOnSurface(s *Surface, p geom.Vec3) geom.Vec3 {
	face := s.Face(t.VoxelSize)
	return face.NearestPoint(p)
}

// NearestPointOnWall returns the point of the wall quad closest to p.
func NearestPointOnWall(w *Wall, p geom.Vec3) geom.Vec3 {
	face := w.Face()
	return face.NearestPoint(p)
}

// DistPointVsSurface is the distance from p to the surface quad.
func (t *Topology) DistPointVsSurface(s *Surface, p geom.Vec3) float64 {
	return geom.Dist(p, t.NearestPointOnSurface(s, p))
}

// DistPointVsWall is the distance from p to the wall quad.
func DistPointVsWall(w *Wall, p geom.Vec3) float64 {
	return geom.Dist(p, NearestPointOnWall(w, p))
}
