package surfel

import "github.com/banshee-data/roomscan/internal/geom"

// Cardinal steps accepted by CanGoDown. Y addresses the board's Z axis.
var (
	StepLeft  = geom.Vec2i{X: -1}
	StepRight = geom.Vec2i{X: 1}
	StepBack  = geom.Vec2i{Y: -1}
	StepFront = geom.Vec2i{Y: 1}
)

// CardinalSteps lists the four steps in the order BasinFilter tries them.
var CardinalSteps = [4]geom.Vec2i{StepLeft, StepRight, StepBack, StepFront}

// facesWalker reports whether a side surfel faces back toward a walker
// moving along step, i.e. it is a riser blocking the way.
func facesWalker(step geom.Vec2i, d Direction) bool {
	return (step.X == 1 && d == DirRight) ||
		(step.X == -1 && d == DirLeft) ||
		(step.Y == 1 && d == DirBack) ||
		(step.Y == -1 && d == DirFront)
}

// facesAway reports whether a side surfel faces along step, i.e. it is the
// outer face of a drop the walker can slide down.
func facesAway(step geom.Vec2i, d Direction) bool {
	return (step.X == 1 && d == DirLeft) ||
		(step.X == -1 && d == DirRight) ||
		(step.Y == 1 && d == DirFront) ||
		(step.Y == -1 && d == DirBack)
}

// CanGoDown walks from ground surfel s one cell at a time along step and
// reports the zone of the first lower (or level) ground reached.
//
// The walk fails on meeting a surfel of s's own zone, on a riser facing the
// walker less than 30 cm above the current height, or at the board edge.
// A surfel facing away from the walker below the current height is a slide:
// the walk continues from its height. The result is direction dependent.
func (b *Board) CanGoDown(s *Surfel, step geom.Vec2i) (int, bool) {
	x, z := s.X, s.Z
	cur := s
	curY := s.Point.Y
	first := true

	for {
		if !b.InBoard(x, z) {
			return NoZone, false
		}

		var ground, slide *Surfel
		for o := range b.Column(x, z) {
			if o == s {
				continue
			}
			if o.ZoneID == s.ZoneID {
				return NoZone, false
			}

			if o.Point.Y < curY+0.08 && !first {
				if o.Dir == DirUp {
					if ground == nil || o.Point.Y > ground.Point.Y {
						if cur == s && o.Point.Y >= curY && !cur.CanGo(o) {
							return NoZone, false
						}
						ground = o
					}
				} else if slide == nil || o.Point.Y > slide.Point.Y {
					if facesAway(step, o.Dir) {
						slide = o
					}
				}
			}

			if o.Point.Y > curY && o.Point.Y < curY+0.3 && facesWalker(step, o.Dir) {
				return NoZone, false
			}
		}

		if slide != nil && ground != nil && slide.Point.Y > ground.Point.Y+0.04 {
			ground = nil
		}
		if ground != nil && ground.ZoneID >= 0 {
			return ground.ZoneID, true
		}
		if slide != nil {
			curY = slide.Point.Y
			cur = slide
		}

		x += step.X
		z += step.Y
		first = false
	}
}
