package topology

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
	"github.com/banshee-data/roomscan/internal/surfel"
)

// surfaceTolerance is cos(20°): up surfels tilted further are not floor.
const surfaceTolerance = 0.9397

// findSurface returns the index of the surface of zone whose height is
// within one voxel of y, or -1.
func (t *Topology) findSurface(zone int, y float64) int {
	for i := range t.Surfaces {
		s := &t.Surfaces[i]
		if s.ZoneID == zone && math.Abs(y-s.WorldHeight) < t.VoxelSize {
			return i
		}
	}
	return -1
}

func (t *Topology) newSurface(sf *surfel.Surfel, x, z int, ceiling bool) int {
	h := sf.Point.Y
	s := Surface{
		ZoneID:           sf.ZoneID,
		WorldHeight:      h,
		HeightFromGround: h - t.YGround,
		MinSpace:         1e7,
		MinPos:           geom.V(sf.Point.X, h, sf.Point.Z),
		MaxPos:           geom.V(sf.Point.X, h, sf.Point.Z),
		MinPos2D:         geom.Vec2i{X: x, Y: z},
		MaxPos2D:         geom.Vec2i{X: x, Y: z},
		IsCeiling:        ceiling,
	}
	s.IsGround = math.Abs(s.HeightFromGround) < 0.1
	if !ceiling {
		s.IsGround = s.HeightFromGround < 0.1
	}
	t.Surfaces = append(t.Surfaces, s)
	return len(t.Surfaces) - 1
}

// grow merges the surfel at cell (x, z) into s with a running average
// height.
func (t *Topology) grow(s *Surface, sf *surfel.Surfel, x, z int, space float64) {
	s.NbCell++
	s.Area += t.VoxelSize * t.VoxelSize
	s.WorldHeight = (s.WorldHeight*float64(s.NbCell-1) + sf.Point.Y) / float64(s.NbCell)
	s.HeightFromGround = s.WorldHeight - t.YGround
	s.MinSpace = min(s.MinSpace, space)

	s.MinPos.X = min(s.MinPos.X, sf.Point.X)
	s.MinPos.Z = min(s.MinPos.Z, sf.Point.Z)
	s.MaxPos.X = max(s.MaxPos.X, sf.Point.X)
	s.MaxPos.Z = max(s.MaxPos.Z, sf.Point.Z)
	s.MinPos.Y = s.WorldHeight
	s.MaxPos.Y = s.WorldHeight

	s.MinPos2D.X = min(s.MinPos2D.X, x)
	s.MinPos2D.Y = min(s.MinPos2D.Y, z)
	s.MaxPos2D.X = max(s.MaxPos2D.X, x)
	s.MaxPos2D.Y = max(s.MaxPos2D.Y, z)
}

// setupSurfaces collects the up-facing real surfels at or above the ground
// into surfaces.
func (t *Topology) setupSurfaces() {
	b := t.board
	for z := 0; z < b.SizeY; z++ {
		for x := 0; x < b.SizeX; x++ {
			for sf := range b.Column(x, z) {
				if sf.ZoneID < 0 || sf.Dir != surfel.DirUp || sf.IsVirtual() ||
					sf.Normal.Y < surfaceTolerance || sf.Point.Y < t.YGround-0.1 {
					continue
				}

				idx := t.findSurface(sf.ZoneID, sf.Point.Y)
				if idx < 0 {
					idx = t.newSurface(sf, x, z, false)
				}
				s := &t.Surfaces[idx]

				space := 1000.0
				for up := b.Next(sf); up != nil; up = b.Next(up) {
					if up.Dir != surfel.DirUp && up.Point.Y-sf.Point.Y > t.VoxelSize {
						space = up.Point.Y - sf.Point.Y
						break
					}
				}
				t.grow(s, sf, x, z, space)
				s.IsGround = s.HeightFromGround < 0.1
			}
		}
	}
}

// setupCeiling collects the down-facing surfels near the ceiling height.
// Virtual surfels are kept: ceilings are rarely scanned for real.
func (t *Topology) setupCeiling() {
	b := t.board
	for z := 0; z < b.SizeY; z++ {
		for x := 0; x < b.SizeX; x++ {
			lo, hi := math.Inf(1), math.Inf(-1)
			for sf := range b.Column(x, z) {
				lo = min(lo, sf.Point.Y)
				hi = max(hi, sf.Point.Y)
			}
			for sf := range b.Column(x, z) {
				if sf.ZoneID < 0 || sf.Dir != surfel.DirDown || sf.Point.Y < t.YCeiling-0.2 {
					continue
				}
				idx := t.findSurface(sf.ZoneID, sf.Point.Y)
				if idx < 0 {
					idx = t.newSurface(sf, x, z, true)
				}
				t.grow(&t.Surfaces[idx], sf, x, z, hi-lo)
			}
		}
	}
}

// dropSmallSurfaces removes surfaces one cell wide in either axis and those
// whose bounding box covers at most SurfaceMinCells cells.
func (t *Topology) dropSmallSurfaces() {
	kept := t.Surfaces[:0]
	for _, s := range t.Surfaces {
		if s.MinPos2D.X == s.MaxPos2D.X || s.MinPos2D.Y == s.MaxPos2D.Y {
			continue
		}
		if s.SizeX()*s.SizeY() <= t.cfg.SurfaceMinCells {
			continue
		}
		kept = append(kept, s)
	}
	t.Surfaces = kept
}
