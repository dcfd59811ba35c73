package solver

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
	"github.com/banshee-data/roomscan/internal/topology"
)

// wallTypeOK reports whether the kind of w is in the request mask.
func wallTypeOK(p *WallParams, w *topology.Wall) bool {
	switch {
	case w.IsVirtual && w.IsExternal:
		return p.Types&WallExternalVirtual != 0
	case w.IsVirtual:
		return p.Types&WallVirtual != 0
	case w.IsExternal:
		return p.Types&WallExternal != 0
	}
	return p.Types&WallNormal != 0
}

// fullWallOK applies the OnlyFullWall and NotOnFullWall filters.
func (sv *Solver) fullWallOK(p *WallParams, w *topology.Wall) bool {
	if sv.topo.IsFullWall(w) {
		return !p.NotOnFullWall
	}
	return !p.OnlyFullWall
}

// lateralRange returns the first and last offsets along the wall tangent
// and the step between them.
func lateralRange(s *SolvingInfos, w *topology.Wall) (first, last, step float64) {
	cs := w.ColumnSize()
	if s.Position.Tiled {
		if w.IsZWall() {
			cs = s.Position.TiledPos.Z
		} else {
			cs = s.Position.TiledPos.X
		}
	}
	if cs <= 0 {
		return 0, -1, 1
	}
	left := s.Size.X/2 + s.Position.Wall.LeftMargin
	right := s.Size.X/2 + s.Position.Wall.RightMargin
	firstCol := math.Ceil(math.Max(0, left-cs/2) / cs)
	lastCol := math.Floor((w.Width-math.Max(0, right-cs/2))/cs) - 1
	return firstCol*cs + cs/2, lastCol*cs + cs/2, cs
}

// heightRange returns the first and last center heights to try at lateral
// offset off of w, and the step. ok is false when the column cannot be
// used.
func (sv *Solver) heightRange(s *SolvingInfos, w *topology.Wall, off float64) (first, last, step float64, ok bool) {
	t := sv.topo
	p := &s.Position.Wall
	step = t.VoxelSize
	unscaled := s.unscaledSize()

	switch p.Placement {
	case WallNearFloor:
		first = t.YGround
		if math.Abs(w.BaseStart.Y-t.YGround) <= t.VoxelSize {
			first = w.BaseStart.Y
		}
		first += unscaled.Y / 2
		return first, first + 0.1, step, true

	case WallNearCeiling:
		last = t.YCeiling - s.Size.Y/2
		return last - 0.1, last, step, true

	case WallNearSurface:
		c := int(off / w.ColumnSize())
		if c < 0 || c >= len(w.Columns) || !w.Columns[c].IsValid {
			return 0, 0, 0, false
		}
		first = w.Columns[c].Min + unscaled.Y/2
		if first < t.YGround+p.HeightMin || first > t.YGround+p.HeightMax {
			return 0, 0, 0, false
		}
		return first, first, step, true
	}

	first = math.Max(t.YGround+p.HeightMin, w.BaseStart.Y+s.Size.Y/2)
	last = math.Min(t.YGround+p.HeightMax, w.BaseStart.Y+w.Height-s.Size.Y/2)
	if s.Position.Tiled && s.Position.TiledPos.Y >= geom.Eps {
		ty := s.Position.TiledPos.Y
		snapped := t.YGround + math.Floor((first-t.YGround)/ty)*ty
		if snapped < first-geom.Eps {
			snapped += ty
		}
		first = snapped
		step = ty
	}
	return first, last, step, true
}

// restOnSurface drops a near-floor or near-surface wall pose onto the
// highest surface under it. It returns false when no surface can carry the
// object.
func (sv *Solver) restOnSurface(s *SolvingInfos, w *topology.Wall, pos geom.Vec3) (geom.Vec3, bool) {
	t := sv.topo
	unscaled := s.unscaledSize()

	boxPos := geom.Madd(geom.Madd(pos, -0.16, geom.Up), unscaled.Z/2, w.Normal)
	boxSize := s.Size
	boxSize.Y = unscaled.Y + 0.32
	fi := t.HigherSurfaceInBox(boxPos, boxSize)
	if fi < 0 {
		return pos, false
	}
	f := &t.Surfaces[fi]
	pos.Y = f.WorldHeight + unscaled.Y/2

	center := geom.Madd(pos, unscaled.Z, w.Normal)
	tl := geom.Madd(geom.Madd(center, s.Size.Z/2, w.Normal), s.Size.X/2, w.Tangent)
	tr := geom.Madd(tl, -s.Size.X, w.Tangent)
	bl := geom.Madd(geom.Madd(center, -s.Size.Z/2, w.Normal), s.Size.X/2, w.Tangent)
	br := geom.Madd(bl, -s.Size.X, w.Tangent)
	if !t.RectangleIsOk(tl, tr, bl, br, f, topology.RequestValid, 0) {
		return pos, false
	}
	return pos, true
}

// posOnWall browses every accepted wall column by column and height by
// height. The object's local Front is turned to the wall normal.
func (sv *Solver) posOnWall(s *SolvingInfos) bool {
	t := sv.topo
	p := &s.Position.Wall
	baseClearSize, baseClearCenter := s.ClearanceSize.Z, s.ClearanceCenter.Z
	restore := func() {
		s.ClearanceSize.Z = baseClearSize
		s.ClearanceCenter.Z = baseClearCenter
	}
	depth := geom.FloorInt(s.Size.Z/t.VoxelSize) + 1

	var best ties
	for wi := range t.Walls {
		w := &t.Walls[wi]
		if !wallTypeOK(p, w) || !sv.fullWallOK(p, w) {
			continue
		}

		first, last, step := lateralRange(s, w)
		for off := first; off <= last+geom.Eps; off += step {
			y0, y1, ystep, ok := sv.heightRange(s, w, off)
			if !ok || ystep <= 0 {
				continue
			}
			for y := y0; y <= y1+geom.Eps; y += ystep {
				pos := geom.Madd(geom.Madd(w.BaseStart, off, w.Tangent), y-w.BaseStart.Y, w.Up)
				if !topology.SpaceOnWallIsFreeFloat(off-s.Size.X/2, off+s.Size.X/2,
					pos.Y-s.Size.Y/2, pos.Y+s.Size.Y/2, depth, s.AllowPartiallyInWall, w) {
					continue
				}

				switch p.Placement {
				case WallNearCeiling:
					pos.Y = w.BaseStart.Y + w.Height - s.Size.Y/2
				case WallNearFloor, WallNearSurface:
					if pos, ok = sv.restOnSurface(s, w, pos); !ok {
						continue
					}
				}
				if p.Placement == WallAnywhere {
					s.Pos = geom.Madd(pos, s.Size.Z/2, w.Normal)
					s.Rot = geom.LookRotation(w.Normal, w.Up)
				} else {
					n := geom.HNormalize(w.Normal)
					s.Pos = geom.Madd(pos, s.Size.Z/2, n)
					s.Rot = geom.LookRotation(n, geom.Up)
				}

				if s.CheckOppositePos {
					if !sv.clearPathToOppositeWall(s) {
						continue
					}
					span := geom.Dist(s.OppositePos, s.Pos)
					s.ClearanceSize.Z = span + baseClearSize
					s.ClearanceCenter.Z = baseClearCenter + span/2 - baseClearSize/2
				}

				if sv.collides(s, 0) || !sv.checkRules(s) ||
					!t.CellIsVisibleFromPlayspaceCenter(geom.Madd(s.Pos, 0.2, w.Normal)) {
					restore()
					continue
				}

				score := sv.score(s)
				if s.OnlyComputePossiblePos {
					s.addPossible(score)
					restore()
					continue
				}
				best.offer(score, pose{
					pos:         s.Pos,
					rot:         s.Rot,
					clearSize:   s.ClearanceSize,
					clearCenter: s.ClearanceCenter,
					oppositePos: s.OppositePos,
				})
				restore()
			}
		}
	}

	if s.OnlyComputePossiblePos {
		return len(s.PossiblePos) != 0
	}
	if best.empty() {
		return false
	}
	c := sv.pick(&best)
	s.Pos, s.Rot = c.pos, c.rot
	if s.CheckOppositePos {
		s.ClearanceSize, s.ClearanceCenter = c.clearSize, c.clearCenter
		s.OppositePos = c.oppositePos
	}
	return true
}

// clearPathToOppositeWall casts rays along the object's Front from its
// center and its four side corners. All must hit the same accepted wall,
// parallel to the object, at the same depth. The center hit is stored in
// OppositePos.
func (sv *Solver) clearPathToOppositeWall(s *SolvingInfos) bool {
	t := sv.topo
	front := s.Rot.Rotate(geom.Front)
	hit, ok := t.RayCast(s.Pos, front)
	if !ok || hit.Type != topology.HitWall {
		return false
	}
	w := &t.Walls[hit.WallIdx]
	if !wallTypeOK(&s.Position.Wall, w) || !sv.fullWallOK(&s.Position.Wall, w) {
		return false
	}
	left := s.Rot.Rotate(geom.Left)
	if d := geom.Dot(left, w.Normal); d > 0.1 || d < -0.1 {
		return false
	}

	up := s.Rot.Rotate(geom.Up)
	dx, dy := s.Size.X/2, s.Size.Y/2
	for _, i := range [2]float64{-1, 1} {
		for _, j := range [2]float64{-1, 1} {
			org := geom.Madd(geom.Madd(s.Pos, i*dx, left), j*dy, up)
			h2, ok := t.RayCast(org, front)
			if !ok || h2.Type != topology.HitWall {
				return false
			}
			if d := geom.Dot(w.Normal, geom.Sub(hit.Pos, h2.Pos)); d > 0.01 || d < -0.01 {
				return false
			}
		}
	}
	s.OppositePos = hit.Pos
	return true
}
