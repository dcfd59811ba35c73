package solver

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
	"github.com/banshee-data/roomscan/internal/topology"
)

// edgeNormals are the horizontal directions an edge may face.
var edgeNormals = [4]geom.Vec3{
	{X: -1}, {Z: -1}, {Z: 1}, {X: 1},
}

// Couch backs are never used as an edge.
const couchShape, couchBackSlot = "couch", "back"

// couchBacks returns the surfaces that are couch backs, from the shape
// provider when one is set and from the topology otherwise.
func (sv *Solver) couchBacks() map[int]bool {
	var idx []int
	if sv.shapes != nil {
		idx = sv.shapes.SurfacesOnShape(couchShape, couchBackSlot)
	} else {
		for _, c := range sv.topo.Couches(topology.DefaultCouchParams()) {
			idx = append(idx, c.Back...)
		}
	}
	out := make(map[int]bool, len(idx))
	for _, i := range idx {
		out[i] = true
	}
	return out
}

// bottomOf returns the linked floor object of a two-object request.
func bottomOf(s *SolvingInfos) SolvingInfos {
	b := s.clone()
	b.Name = s.Name + ".bottom"
	b.Size = s.Position.Edge.BottomSize
	b.EmptySize = b.Size
	b.ClearanceSize = b.Size
	b.EmptyCenter = geom.Zero
	b.ClearanceCenter = geom.Zero
	return b
}

// storeLinked appends the top and bottom objects of a two-object placement
// with cross references, and copies the indices back to s.
func (sv *Solver) storeLinked(s, bottom *SolvingInfos) {
	top := len(sv.solved)
	bot := top + 1
	for _, o := range []*SolvingInfos{s, bottom} {
		o.Position.Edge.TopIdx = top
		o.Position.Edge.BottomIdx = bot
	}
	s.Idx, bottom.Idx = top, bot
	s.computeWorldPos()
	bottom.computeWorldPos()
	sv.solved = append(sv.solved, s.clone(), bottom.clone())
}

// onGround reports whether the footprint lies on a ground surface.
func (sv *Solver) onGround(tl, tr, bl, br geom.Vec3) bool {
	t := sv.topo
	for i := range t.Surfaces {
		if t.Surfaces[i].IsGround && t.RectangleIsOk(tl, tr, bl, br, &t.Surfaces[i], topology.RequestValid, 0) {
			return true
		}
	}
	return false
}

// edgeWidthOK reports whether the cells across the edge, half the object
// depth to each side of pos, all belong to f.
func (sv *Solver) edgeWidthOK(f *topology.Surface, pos, tangent geom.Vec3, depth float64) bool {
	t := sv.topo
	for i := 0; float64(i) < depth/2/t.VoxelSize; i++ {
		d := float64(i) * t.VoxelSize
		a := t.CellInSurface(f, geom.Madd(pos, d, tangent))
		b := t.CellInSurface(f, geom.Madd(pos, -d, tangent))
		if a == nil || b == nil || !a.IsValid() || !b.IsValid() {
			return false
		}
	}
	return true
}

// posOnEdge puts the object astride the edge of a raised surface, hanging
// a third of its width over the drop, and a bottom object on the floor
// just below.
func (sv *Solver) posOnEdge(s *SolvingInfos) bool {
	t := sv.topo
	voxel := t.VoxelSize
	bottom := bottomOf(s)
	dist := uint32(geom.FloorInt(s.Size.X/2/voxel) + 1)

	backs := sv.couchBacks()

	var best ties
	for fi := range t.Surfaces {
		f := &t.Surfaces[fi]
		if f.IsGround || backs[fi] {
			continue
		}
		for c := range f.Cells {
			cell := &f.Cells[c]
			if cell.DistFromFloor != dist || cell.DistFromBorder != dist {
				continue
			}
			onSurface := t.CellPosition(f, c)

			for _, n := range edgeNormals {
				tangent := geom.Normalize(geom.Cross(n, geom.Down))
				rim := t.CellInSurface(f, geom.Madd(onSurface, voxel*float64(dist-1), n))
				if rim == nil || !rim.IsValid() || rim.DistFromFloor != 1 {
					continue
				}
				if !sv.edgeWidthOK(f, onSurface, tangent, s.Size.Z) {
					continue
				}

				rot := geom.FromTo(geom.Front, tangent)
				s.Pos = geom.Madd(geom.Madd(onSurface, s.Size.Y/2, geom.Up), s.Size.X*0.33, n)
				s.Rot = rot

				reach := math.Ceil((s.Size.X/2+bottom.Size.X/2)/voxel) * voxel
				onFloor := geom.Madd(geom.Madd(onSurface, -f.HeightFromGround, geom.Up), reach, n)
				bottom.Pos = geom.Madd(onFloor, bottom.Size.Y/2, geom.Up)
				bottom.Rot = rot

				if !sv.onGround(footprint(bottom.Size, onFloor, rot)) {
					continue
				}
				if sv.collides(s, 0) || sv.collides(&bottom, 0) || !sv.checkRules(s) ||
					!t.CellIsVisibleFromPlayspaceCenter(s.Pos) {
					continue
				}
				best.offer(sv.score(s), pose{pos: s.Pos, pos2: bottom.Pos, rot: rot})
			}
		}
	}

	if best.empty() {
		return false
	}
	p := sv.pick(&best)
	s.Pos, s.Rot = p.pos, p.rot
	bottom.Pos, bottom.Rot = p.pos2, p.rot
	sv.storeLinked(s, &bottom)
	return true
}

// ceilingAbove returns the first ceiling surface whose bounds contain pos
// and that can carry the top footprint, or nil.
func (sv *Solver) ceilingAbove(s *SolvingInfos, pos geom.Vec3, rot geom.Quat) *topology.Surface {
	t := sv.topo
	for i := range t.Surfaces {
		c := &t.Surfaces[i]
		if !c.IsCeiling {
			continue
		}
		if c.MinPos.X > pos.X || c.MinPos.Z > pos.Z || c.MaxPos.X < pos.X || c.MaxPos.Z < pos.Z {
			continue
		}
		at := pos
		at.Y = c.MinPos.Y
		tl, tr, bl, br := footprint(s.Size, at, rot)
		if t.RectangleIsOk(tl, tr, bl, br, c, topology.RequestOnlyOne|topology.RequestOutside, 0) {
			continue
		}
		if !t.RectangleIsOk(tl, tr, bl, br, c, topology.RequestOnlyOne|topology.RequestValid, 0) {
			continue
		}
		return c
	}
	return nil
}

// posOnFloorAndCeiling pairs a bottom object on the ground with the
// object hanging from the ceiling straight above it.
func (sv *Solver) posOnFloorAndCeiling(s *SolvingInfos) bool {
	t := sv.topo
	voxel := t.VoxelSize
	bottom := bottomOf(s)
	need := halfWidthCells(math.Min(bottom.Size.X, bottom.Size.Z), voxel)
	baseSize, baseCenter := bottom.ClearanceSize.Y, bottom.ClearanceCenter.Y
	rot := geom.Identity

	var best ties
	for fi := range t.Surfaces {
		f := &t.Surfaces[fi]
		if !f.IsGround {
			continue
		}
		for c := range f.Cells {
			if f.Cells[c].DistFromBorder < need {
				continue
			}
			onFloor := t.CellPosition(f, c)
			tl, tr, bl, br := footprint(bottom.Size, onFloor, rot)
			if !t.RectangleIsOk(tl, tr, bl, br, f, topology.RequestValid, 0) {
				continue
			}
			ceiling := sv.ceilingAbove(s, onFloor, rot)
			if ceiling == nil {
				continue
			}
			onCeiling := onFloor
			onCeiling.Y = ceiling.MinPos.Y

			s.Pos = geom.Madd(onCeiling, -s.Size.Y/2, geom.Up)
			s.Rot = rot
			bottom.ClearanceSize.Y, bottom.ClearanceCenter.Y = baseSize, baseCenter
			if s.CheckOppositePos {
				if !sv.clearPathToCeiling(s, onFloor) {
					continue
				}
				span := geom.Dist(onFloor, onCeiling)
				bottom.ClearanceSize.Y = span + baseSize
				bottom.ClearanceCenter.Y = baseCenter + span/2 - baseSize/2
			}
			bottom.Pos = geom.Madd(onFloor, bottom.Size.Y/2, geom.Up)
			bottom.Rot = rot

			if sv.collides(s, 0) || sv.collides(&bottom, 0) || !sv.checkRules(s) ||
				!t.CellIsVisibleFromPlayspaceCenter(s.Pos) {
				continue
			}
			best.offer(sv.score(s), pose{
				pos:         s.Pos,
				pos2:        bottom.Pos,
				rot:         rot,
				clearSize:   bottom.ClearanceSize,
				clearCenter: bottom.ClearanceCenter,
				oppositePos: s.OppositePos,
			})
		}
	}

	if best.empty() {
		return false
	}
	p := sv.pick(&best)
	s.Pos, s.Rot = p.pos, p.rot
	bottom.Pos, bottom.Rot = p.pos2, p.rot
	if s.CheckOppositePos {
		bottom.ClearanceSize, bottom.ClearanceCenter = p.clearSize, p.clearCenter
		s.OppositePos = p.oppositePos
	} else {
		bottom.ClearanceSize.Y, bottom.ClearanceCenter.Y = baseSize, baseCenter
	}
	sv.storeLinked(s, &bottom)
	return true
}

// clearPathToCeiling casts rays up from the object and from the four
// corners of its footprint on the floor. All must reach a ceiling at the
// same height. The center hit is stored in OppositePos.
func (sv *Solver) clearPathToCeiling(s *SolvingInfos, onFloor geom.Vec3) bool {
	t := sv.topo
	isCeiling := func(h topology.RayCastResult) bool {
		return h.Type == topology.HitSurface && h.SurfaceIdx >= 0 && t.Surfaces[h.SurfaceIdx].IsCeiling
	}
	hit, ok := t.RayCast(s.Pos, geom.Up)
	if !ok || !isCeiling(hit) {
		return false
	}

	left := s.Rot.Rotate(geom.Left)
	front := s.Rot.Rotate(geom.Front)
	dx, dz := s.Size.X/2, s.Size.Z/2
	for _, i := range [2]float64{-1, 1} {
		for _, j := range [2]float64{-1, 1} {
			org := geom.Madd(geom.Madd(onFloor, i*dx, left), j*dz, front)
			h2, ok := t.RayCast(org, geom.Up)
			if !ok || !isCeiling(h2) {
				return false
			}
			if d := h2.Pos.Y - hit.Pos.Y; d > 0.01 || d < -0.01 {
				return false
			}
		}
	}
	s.OppositePos = hit.Pos
	return true
}
