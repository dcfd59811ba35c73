package surfel

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
)

// Direction is the canonical axis a surfel faces.
type Direction int8

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
	DirFront
	DirBack
)

var dirNames = [...]string{"left", "right", "up", "down", "front", "back"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(dirNames) {
		return "invalid"
	}
	return dirNames[d]
}

// Normal returns the unit world vector of d.
func (d Direction) Normal() geom.Vec3 {
	switch d {
	case DirLeft:
		return geom.Left
	case DirRight:
		return geom.Right
	case DirUp:
		return geom.Up
	case DirDown:
		return geom.Down
	case DirFront:
		return geom.Front
	case DirBack:
		return geom.Back
	}
	return geom.Zero
}

// IsHorizontal reports whether d is Up or Down.
func (d Direction) IsHorizontal() bool { return d == DirUp || d == DirDown }

// DirectionFromNormal returns the canonical direction of the dominant
// component of n.
func DirectionFromNormal(n geom.Vec3) Direction {
	dx, dy, dz := DirLeft, DirUp, DirFront
	if n.X < 0 {
		n.X = -n.X
		dx = DirRight
	}
	if n.Y < 0 {
		n.Y = -n.Y
		dy = DirDown
	}
	if n.Z < 0 {
		n.Z = -n.Z
		dz = DirBack
	}
	if n.X > n.Y {
		if n.X > n.Z {
			return dx
		}
		return dz
	}
	if n.Y > n.Z {
		return dy
	}
	return dz
}

// Flags mark surfel provenance and gameplay eligibility.
type Flags uint8

const (
	FlagVirtual    Flags = 1 << 1
	FlagBasin      Flags = 1 << 2
	FlagNoGameplay Flags = 1 << 3
	FlagBadSurfel  Flags = 1 << 4
	FlagDebug      Flags = 1 << 5
	FlagExternal   Flags = 1 << 6
)

// NoZone is the zone id of an unassigned surfel.
const NoZone = -1

// Surfel is a single oriented sample at integer cell coordinates.
type Surfel struct {
	Normal geom.Vec3
	Point  geom.Vec3

	X, Y, Z int
	ZoneID  int
	Dir     Direction
	Quality uint8
	Flags   Flags

	next int32
	idx  int32
}

func (s *Surfel) IsVirtual() bool { return s.Flags&FlagVirtual != 0 }
func (s *Surfel) IsExternal() bool { return s.Flags&FlagExternal != 0 }
func (s *Surfel) IsBasin() bool { return s.Flags&FlagBasin != 0 }
func (s *Surfel) NoGameplay() bool { return s.Flags&FlagNoGameplay != 0 }
func (s *Surfel) IsBadSurfel() bool { return s.Flags&FlagBadSurfel != 0 }
func (s *Surfel) HasZone() bool { return s.ZoneID >= 0 }
func (s *Surfel) set(f Flags, on bool) {
	if on {
		s.Flags |= f
	} else {
		s.Flags &^= f
	}
}

// SetBasin sets or clears the basin flag.
func (s *Surfel) SetBasin(on bool) { s.set(FlagBasin, on) }

// SetNoGameplay sets or clears the no-gameplay flag.
func (s *Surfel) SetNoGameplay(on bool) { s.set(FlagNoGameplay, on) }

// CanGo reports whether two surfels are coplanar enough to share a zone:
// normals within ~25° and neither point more than 4 cm off the other's plane.
func (s *Surfel) CanGo(o *Surfel) bool {
	if geom.Dot(s.Normal, o.Normal) < 0.9 {
		return false
	}
	d := geom.Sub(o.Point, s.Point)
	p1 := math.Abs(geom.Dot(s.Normal, d))
	p2 := math.Abs(geom.Dot(o.Normal, d))
	return math.Max(p1, p2) < 0.04
}

// RayCast intersects the ray (pos, dir) with the surfel disk of radius
// 10 cm. maxDist bounds the hit distance; on success the hit point and its
// distance are returned.
func (s *Surfel) RayCast(pos, dir geom.Vec3, maxDist float64) (geom.Vec3, float64, bool) {
	cos := geom.Dot(s.Normal, dir)
	if cos > -0.01 {
		return geom.Zero, 0, false
	}
	dp := geom.Dot(geom.Sub(pos, s.Point), s.Normal)
	dist := -dp / cos
	if dist > maxDist {
		return geom.Zero, 0, false
	}
	hit := geom.Madd(pos, dist, dir)
	if geom.Dist2(hit, s.Point) >= 0.1*0.1 {
		return geom.Zero, 0, false
	}
	return hit, dist, true
}
