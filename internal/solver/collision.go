package solver

import (
	"github.com/banshee-data/roomscan/internal/geom"
)

// shrink keeps boxes that only touch from colliding.
const shrink = 0.9999

// collides reports whether s at its current pose overlaps a placed object.
// With flags non-zero only objects carrying one of flags are tested.
func (sv *Solver) collides(s *SolvingInfos, flags uint8) bool {
	clearSize := geom.Scale(shrink, s.ClearanceSize)
	emptySize := geom.Scale(shrink, s.EmptySize)
	clearCenter := geom.Add(s.Pos, s.Rot.Rotate(s.ClearanceCenter))
	emptyCenter := geom.Add(s.Pos, s.Rot.Rotate(s.EmptyCenter))

	differ := s.boxesDiffer()
	clearBox := geom.BuildBox(clearCenter, clearSize, s.Rot)
	var emptyBox geom.Box
	if differ {
		emptyBox = geom.BuildBox(emptyCenter, emptySize, s.Rot)
	}

	for i := range sv.solved {
		o := &sv.solved[i]
		if flags != 0 && o.Flags&flags == 0 {
			continue
		}
		if s.ignores(o.Name) || !sameUniverse(s.Universe, o.Universe) {
			continue
		}
		otherDiffer := o.boxesDiffer()

		if geom.BoxCollide(clearCenter, clearSize, &clearBox, o.clearanceWorldCenter, o.ClearanceSize, o.Rot) {
			return true
		}
		if differ && geom.BoxCollide(emptyCenter, emptySize, &emptyBox, o.clearanceWorldCenter, o.ClearanceSize, o.Rot) {
			return true
		}
		if otherDiffer && geom.BoxCollide(clearCenter, clearSize, &clearBox, o.emptyWorldCenter, o.EmptySize, o.Rot) {
			return true
		}
		if differ && otherDiffer && geom.BoxCollide(emptyCenter, emptySize, &emptyBox, o.emptyWorldCenter, o.EmptySize, o.Rot) {
			return true
		}
	}
	return false
}

// CollideWithOtherObjects reports whether a plain box at pos overlaps a
// placed object of a matching universe and flags. It does not modify the
// solver.
func (sv *Solver) CollideWithOtherObjects(pos, size geom.Vec3, rot geom.Quat, universe int8, flags uint8) bool {
	s := NewSolvingInfos("", size)
	s.Pos = pos
	s.Rot = rot
	s.Universe = universe
	return sv.collides(s, flags)
}
