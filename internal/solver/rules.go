package solver

import (
	"github.com/banshee-data/roomscan/internal/geom"
)

// Rule is a hard condition on a candidate pose. The concrete rules are
// AwayFrom, AwayFromWalls, AwayFromOtherObjects and OutOfInterval.
type Rule interface {
	isRule()
}

// AwayFrom requires the horizontal distance to Point to be at least
// DistMin.
type AwayFrom struct {
	Point   geom.Vec3
	DistMin float64
}

// AwayFromWalls rejects poses within DistMin of a real wall at least
// WallHeightMin tall.
type AwayFromWalls struct {
	DistMin       float64
	WallHeightMin float64
}

// AwayFromOtherObjects requires the horizontal distance to every placed
// object to be at least DistMin.
type AwayFromOtherObjects struct {
	DistMin float64
}

// OutOfInterval rejects poses whose distance to the placed object at
// index Object lies strictly between Inf and Sup.
type OutOfInterval struct {
	Inf, Sup float64
	Object   int
}

func (AwayFrom) isRule()             {}
func (AwayFromWalls) isRule()        {}
func (AwayFromOtherObjects) isRule() {}
func (OutOfInterval) isRule()        {}

// checkRules reports whether the pose in s passes every rule.
func (sv *Solver) checkRules(s *SolvingInfos) bool {
	for _, r := range s.Rules {
		if !sv.checkRule(s, r) {
			return false
		}
	}
	return true
}

func (sv *Solver) checkRule(s *SolvingInfos, r Rule) bool {
	switch r := r.(type) {
	case AwayFrom:
		return geom.HDist2(s.Pos, r.Point) >= r.DistMin*r.DistMin

	case AwayFromWalls:
		h := r.WallHeightMin
		if h <= 0 {
			h = r.DistMin
		}
		return !sv.topo.HasWallNear(s.Pos, r.DistMin, h)

	case AwayFromOtherObjects:
		min2 := r.DistMin * r.DistMin
		for i := range sv.solved {
			if geom.HDist2(s.Pos, sv.solved[i].Pos) < min2 {
				return false
			}
		}
		return true

	case OutOfInterval:
		if r.Object < 0 || r.Object >= len(sv.solved) {
			return true
		}
		d2 := geom.Dist2(s.Pos, sv.solved[r.Object].Pos)
		return !(d2 > r.Inf*r.Inf && d2 < r.Sup*r.Sup)
	}
	return false
}
