package solver

import (
	"github.com/banshee-data/roomscan/internal/geom"
)

// tableShape is the shape whose slots UnderFurnitureEdge walks along.
const tableShape = "table"

// edgeRun is one side of a rectangle: a start corner, a direction and a
// length.
type edgeRun struct {
	first geom.Vec3
	dir   geom.Vec3
	max   float64
}

func rectangleEdges(r Rectangle) [4]edgeRun {
	wd := r.WidthDir()
	l := geom.Scale(r.Length/2, r.LengthDir)
	w := geom.Scale(r.Width/2, wd)
	return [4]edgeRun{
		{first: geom.Sub(geom.Sub(r.Center, l), w), dir: r.LengthDir, max: r.Length},
		{first: geom.Add(geom.Sub(r.Center, l), w), dir: r.LengthDir, max: r.Length},
		{first: geom.Sub(geom.Sub(r.Center, l), w), dir: wd, max: r.Width},
		{first: geom.Sub(geom.Add(r.Center, l), w), dir: wd, max: r.Width},
	}
}

// posUnderFurnitureEdge puts the object on the ground under a table side,
// facing along the side.
func (sv *Solver) posUnderFurnitureEdge(s *SolvingInfos) bool {
	t := sv.topo
	var best ties
	for _, r := range sv.shapes.ShapeRectangles(tableShape) {
		for _, e := range rectangleEdges(r) {
			rot := geom.FromTo(geom.Front, e.dir)
			for off := s.Size.Z / 2; off <= e.max-s.Size.Z/2+geom.Eps; off += t.VoxelSize {
				pos := geom.Madd(e.first, off, e.dir)
				pos.Y = t.YGround + s.Size.Y/2
				s.Pos, s.Rot = pos, rot
				if sv.collides(s, 0) || !sv.checkRules(s) {
					continue
				}
				score := sv.score(s)
				if s.OnlyComputePossiblePos {
					s.addPossible(score)
					continue
				}
				best.offer(score, pose{pos: pos, rot: rot})
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
	return true
}
