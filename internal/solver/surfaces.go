package solver

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
	"github.com/banshee-data/roomscan/internal/topology"
)

// footprint returns the corners of a size footprint centered on pos and
// turned by rot, in RectangleIsOk order.
func footprint(size geom.Vec3, pos geom.Vec3, rot geom.Quat) (tl, tr, bl, br geom.Vec3) {
	hx, hz := size.X/2, size.Z/2
	tl = geom.Add(pos, rot.Rotate(geom.V(-hx, 0, -hz)))
	tr = geom.Add(pos, rot.Rotate(geom.V(-hx, 0, hz)))
	bl = geom.Add(pos, rot.Rotate(geom.V(hx, 0, -hz)))
	br = geom.Add(pos, rot.Rotate(geom.V(hx, 0, hz)))
	return tl, tr, bl, br
}

// halfWidthCells is the border distance, in cells, a footprint of width w
// needs around its center.
func halfWidthCells(w, voxel float64) uint32 {
	return uint32(geom.FloorInt(w*0.5/voxel) + 1)
}

// yawSteps returns the rotations tried on a surface for a step in degrees.
func yawSteps(stepDeg float64) []geom.Quat {
	n := int(math.Ceil(360/stepDeg - 1e-9))
	return geom.YawSteps(max(n, 1))
}

// onTile reports whether board cell (x, y) lies on the tiling lattice.
func onTile(x, y int, tile geom.Vec3, voxel float64) bool {
	tx := max(1, int(0.0001+tile.X/voxel))
	tz := max(1, int(0.0001+tile.Z/voxel))
	return x%tx == 0 && y%tz == 0
}

// fitsOnSurface runs the footprint checks of a surface placement.
func (sv *Solver) fitsOnSurface(s *SolvingInfos, f *topology.Surface, pos geom.Vec3, rot geom.Quat) bool {
	t := sv.topo
	tl, tr, bl, br := footprint(s.Size, pos, rot)
	if s.AllowPartiallyInWall {
		if t.RectangleIsOk(tl, tr, bl, br, f, topology.RequestOnlyOne|topology.RequestOutside, 0) {
			return false
		}
		if !t.RectangleIsOk(tl, tr, bl, br, f, topology.RequestOnlyOne|topology.RequestValid, 0) {
			return false
		}
		if s.Position.Type != OnCeiling &&
			t.RectangleIsOk(tl, tr, bl, br, f, topology.RequestOnlyOne|topology.RequestVoid, 0) {
			return false
		}
		return true
	}
	if !t.RectangleIsOk(tl, tr, bl, br, f, topology.RequestValid, 0) {
		return false
	}
	limit := uint32(max(0, geom.FloorInt(s.ClearanceSize.Y/t.VoxelSize)))
	return t.RectangleIsOk(tl, tr, bl, br, f, topology.RequestSpace, limit)
}

// posOnSurfaces tries every cell of the given surfaces at every yaw step
// and lifts the chosen pose by yOffset.
func (sv *Solver) posOnSurfaces(s *SolvingInfos, surfaces []int, yOffset float64) bool {
	t := sv.topo
	voxel := t.VoxelSize
	need := halfWidthCells(math.Min(s.Size.X, s.Size.Z), voxel)

	var rots []geom.Quat
	if !s.Position.FixedRot {
		rots = yawSteps(sv.cfg.RotationStepDeg)
	}

	var best ties
	for _, si := range surfaces {
		if si < 0 || si >= len(t.Surfaces) {
			continue
		}
		f := &t.Surfaces[si]
		sx := f.SizeX()
		for c := range f.Cells {
			if !s.AllowPartiallyInWall && f.Cells[c].DistFromBorder < need {
				continue
			}
			if s.Position.Tiled && !onTile(f.MinPos2D.X+c%sx, f.MinPos2D.Y+c/sx, s.Position.TiledPos, voxel) {
				continue
			}
			onFloor := t.CellPosition(f, c)
			if s.Position.FixedRot {
				look := s.Position.PointToLook
				look.Y = onFloor.Y
				rots = append(rots[:0], geom.FromTo(geom.Front, geom.Normalize(geom.Sub(look, onFloor))))
			}

			start := sv.startAt(len(rots))
			for i := range rots {
				rot := rots[(start+i)%len(rots)]
				if !sv.fitsOnSurface(s, f, onFloor, rot) {
					continue
				}
				s.Pos = geom.Madd(onFloor, yOffset, geom.Up)
				s.Rot = rot
				if !sv.checkRules(s) || !t.CellIsVisibleFromPlayspaceCenter(s.Pos) || sv.collides(s, 0) {
					continue
				}
				score := sv.score(s)
				if s.OnlyComputePossiblePos {
					s.addPossible(score)
					continue
				}
				best.offer(score, pose{pos: s.Pos, rot: s.Rot})
			}
		}
	}

	if s.OnlyComputePossiblePos {
		return len(s.PossiblePos) != 0
	}
	if best.empty() {
		return false
	}
	p := sv.pick(&best)
	s.Pos, s.Rot = p.pos, p.rot
	if s.Position.Random90 {
		s.Rot = s.Rot.Mul(geom.AxisAngle(geom.Up, float64(sv.rng.Intn(4))*math.Pi/2))
	}
	return true
}
