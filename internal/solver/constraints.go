package solver

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
)

// Constraint is a soft preference scored in [0, 1]. Scores of all the
// constraints of a request are averaged.
type Constraint interface {
	isConstraint()
}

// NearOf prefers a distance to Point between DistMin and DistMax.
type NearOf struct {
	Point            geom.Vec3
	DistMin, DistMax float64
}

// NearOfCenter prefers a horizontal distance to the room center between
// DistMin and DistMax.
type NearOfCenter struct {
	DistMin, DistMax float64
}

// NearOfWall prefers a distance to the nearest wall at least Height tall,
// virtual or not per Virtual, between DistMin and DistMax.
type NearOfWall struct {
	Virtual          bool
	Height           float64
	DistMin, DistMax float64
}

// AwayFromWall prefers poses far from real walls.
type AwayFromWall struct{}

// OnSegment prefers the object center close to Segment.
type OnSegment struct {
	Segment geom.Segment
}

// Facing prefers the object's local Segment.Dir to point at Segment.Org.
// A shorter Segment.Len widens the accepted cone.
type Facing struct {
	Segment geom.Segment
}

// RayCast scores 1 when the line from the object-local point Segment.Org
// to the world point Segment.Org + Len*Dir is not blocked by the room.
type RayCast struct {
	Segment geom.Segment
}

// AwayFromOtherObjectsScore prefers poses far from every placed object.
type AwayFromOtherObjectsScore struct{}

// AwayFromPoints prefers poses far from every point; the worst point
// decides.
type AwayFromPoints struct {
	Points []geom.Vec3
}

func (NearOf) isConstraint()                    {}
func (NearOfCenter) isConstraint()              {}
func (NearOfWall) isConstraint()                {}
func (AwayFromWall) isConstraint()              {}
func (OnSegment) isConstraint()                 {}
func (Facing) isConstraint()                    {}
func (RayCast) isConstraint()                   {}
func (AwayFromOtherObjectsScore) isConstraint() {}
func (AwayFromPoints) isConstraint()            {}

// BandScore is 1 for min <= d <= max and falls off as 1/(d-max+1) above the
// band and -1/(d-min-1) below it.
func BandScore(d, min, max float64) float64 {
	switch {
	case d > max:
		return 1 / (d - max + 1)
	case d < min:
		return -1 / (d - min - 1)
	}
	return 1
}

// FarScore is 1 - 1/(d+1): 0 at d = 0, tending to 1.
func FarScore(d float64) float64 {
	return 1 - 1/(d+1)
}

// FarScore2 is 1 + 1/(-1-d2) for a squared distance d2.
func FarScore2(d2 float64) float64 {
	return 1 + 1/(-1-d2)
}

// FacingScore scores the alignment of dir with the horizontal direction
// to target. Behind the object the score drops to 0.1 or less.
func FacingScore(dir, toTarget geom.Vec3, length float64) float64 {
	d := geom.Dot(geom.HNormalize(dir), geom.HNormalize(toTarget))
	if d > 0 {
		d = geom.Clamp01(d / math.Max(0.1, 1-length))
		return d*0.9 + 0.1
	}
	return d*0.1 + 0.1
}

// score averages the constraints of s at its current pose. A request
// without constraints scores 1.
func (sv *Solver) score(s *SolvingInfos) float64 {
	if len(s.Constraints) == 0 {
		return 1
	}
	ratio := 1 / float64(len(s.Constraints))
	total := 0.0
	for _, c := range s.Constraints {
		total += sv.scoreConstraint(s, c) * ratio
	}
	return total
}

func (sv *Solver) scoreConstraint(s *SolvingInfos, c Constraint) float64 {
	switch c := c.(type) {
	case NearOf:
		return BandScore(geom.Dist(c.Point, s.Pos), c.DistMin, c.DistMax)

	case NearOfCenter:
		return BandScore(math.Sqrt(geom.HDist2(sv.topo.RoomCenter, s.Pos)), c.DistMin, c.DistMax)

	case NearOfWall:
		d := sv.topo.DistWallNear(s.Pos, c.Height, c.Virtual)
		return BandScore(d, c.DistMin, c.DistMax)

	case AwayFromWall:
		return FarScore(sv.topo.DistWallNear(s.Pos, sv.cfg.WallHeightMinAway, false))

	case OnSegment:
		p := geom.Sub(s.Pos, s.Rot.Rotate(s.Center))
		return 1 / (c.Segment.DistToPoint(p) + 1)

	case Facing:
		dir := s.Rot.Rotate(c.Segment.Dir)
		return FacingScore(dir, geom.Sub(c.Segment.Org, s.Pos), c.Segment.Len)

	case RayCast:
		org := geom.Add(s.Pos, s.Rot.Rotate(c.Segment.Org))
		dest := c.Segment.End()
		dir := geom.Normalize(geom.Sub(dest, org))
		hit, ok := sv.topo.RayCast(org, dir)
		if ok && geom.Dist2(hit.Pos, org) < geom.Dist2(dest, org) {
			return 0
		}
		return 1

	case AwayFromOtherObjectsScore:
		best := math.MaxFloat64
		for i := range sv.solved {
			best = math.Min(best, geom.Dist2(sv.solved[i].Pos, s.Pos))
		}
		return FarScore2(best)

	case AwayFromPoints:
		lowest := 1.0
		for _, p := range c.Points {
			lowest = math.Min(lowest, FarScore2(geom.Dist2(p, s.Pos)))
		}
		return lowest
	}
	return 0
}
