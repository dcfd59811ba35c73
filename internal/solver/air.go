package solver

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
)

// airRotations tilts the object's Front toward each of the eight diagonals.
var airRotations = func() [8]geom.Quat {
	var out [8]geom.Quat
	i := 0
	for _, x := range [2]float64{-1, 1} {
		for _, y := range [2]float64{-1, 1} {
			for _, z := range [2]float64{-1, 1} {
				out[i] = geom.FromTo(geom.Front, geom.Normalize(geom.V(x, y, z)))
				i++
			}
		}
	}
	return out
}()

// posRandomInTheAir floats the object above a random surface at a third
// or two thirds of the free height, tilted along a diagonal. The first
// pose that passes collisions, rules and visibility wins.
func (sv *Solver) posRandomInTheAir(s *SolvingInfos) bool {
	t := sv.topo
	n := len(t.Surfaces)
	if n == 0 {
		return false
	}
	top := t.YCeiling - s.Size.Y
	surfStart := sv.startAt(n)
	for i := 0; i < n; i++ {
		f := &t.Surfaces[(surfStart+i)%n]
		if f.IsCeiling {
			continue
		}
		hStart := sv.startAt(2)
		for j := 0; j < 2; j++ {
			h := f.MinSpace * float64((hStart+j)%2+1) / 3
			pos := geom.Scale(0.5, geom.Add(f.MinPos, f.MaxPos))
			pos.Y = math.Min(top, f.WorldHeight+h)

			rStart := sv.startAt(len(airRotations))
			for k := range airRotations {
				rot := airRotations[(rStart+k)%len(airRotations)]
				s.Pos = geom.Madd(pos, s.Size.Y/2, rot.Rotate(geom.Up))
				s.Rot = rot
				if sv.collides(s, 0) || !sv.checkRules(s) || !t.CellIsVisibleFromPlayspaceCenter(s.Pos) {
					continue
				}
				if s.OnlyComputePossiblePos {
					s.addPossible(sv.score(s))
					continue
				}
				return true
			}
		}
	}
	return s.OnlyComputePossiblePos && len(s.PossiblePos) != 0
}

// posInTheMidAir hovers the object above the ground, just over the highest
// thing in its footprint, at twelve yaw steps. Visibility is not checked
// and the first best score is kept.
func (sv *Solver) posInTheMidAir(s *SolvingInfos) bool {
	t := sv.topo
	need := halfWidthCells(math.Max(s.Size.X, s.Size.Z), t.VoxelSize)
	rots := geom.YawSteps(12)
	footprint := geom.Vec2{X: s.ClearanceSize.X * 0.8, Y: s.ClearanceSize.Z * 0.8}

	found := false
	var best pose
	bestScore := math.Inf(-1)
	for fi := range t.Surfaces {
		f := &t.Surfaces[fi]
		if !f.IsGround {
			continue
		}
		for c := range f.Cells {
			if f.Cells[c].DistFromVoid <= need {
				continue
			}
			onFloor := t.CellPosition(f, c)
			at := geom.Vec2{X: onFloor.X, Y: onFloor.Z}
			minY := f.WorldHeight - 0.1
			maxY := minY + s.ClearanceSize.Y

			for _, rot := range rots {
				y := t.MaxYInRectangle(at, footprint, rot, minY, maxY)
				if y > f.WorldHeight+0.5 || y < f.WorldHeight-geom.Eps {
					continue
				}
				s.Pos = geom.V(onFloor.X, y+1.2, onFloor.Z)
				s.Rot = rot
				if sv.collides(s, 0) || !sv.checkRules(s) {
					continue
				}
				score := sv.score(s)
				if s.OnlyComputePossiblePos {
					s.addPossible(score)
					continue
				}
				if score > bestScore {
					found = true
					bestScore = score
					best = pose{pos: s.Pos, rot: rot}
				}
			}
		}
	}

	if s.OnlyComputePossiblePos {
		return len(s.PossiblePos) != 0
	}
	if !found {
		return false
	}
	s.Pos, s.Rot = best.pos, best.rot
	return true
}
