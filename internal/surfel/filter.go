package surfel

import "math"

// Filter tuning.
const (
	// DefaultProximityDist is the minimum clearance a side surfel needs from
	// the floor, the ceiling and the nearest horizontal surface ahead of it.
	DefaultProximityDist = 0.4
	// undergroundCells bounds the look-ahead of the underground side test.
	undergroundCells = 6
)

// FilterSurfel marks as NoGameplay the surfels that are occluded from
// above, below or in front, or that sit too close to the floor, the
// ceiling or a horizontal surface. eyeY disables the eye-level tests when
// set above the room (1000 is the usual value).
func (b *Board) FilterSurfel(eyeY, groundY, ceilingY float64) {
	for z := 0; z < b.SizeY; z++ {
		for x := 0; x < b.SizeX; x++ {
			var ceiling *Surfel
			for s := range b.Column(x, z) {
				if s.Dir == DirDown && (ceiling == nil || s.Point.Y > ceiling.Point.Y) {
					ceiling = s
				}
			}
			for s := range b.Column(x, z) {
				switch s.Dir {
				case DirUp:
					b.filterUp(x, z, s, ceiling, eyeY)
				case DirDown:
					b.filterDown(x, z, s)
				default:
					b.filterSide(x, z, s, eyeY, groundY, ceilingY)
				}
			}
		}
	}
}

// filterUp rejects an up surfel above eye level, below another up surfel,
// or with less than 30 cm of headroom.
func (b *Board) filterUp(x, z int, s, ceiling *Surfel, eyeY float64) {
	if s.Point.Y > eyeY {
		s.SetNoGameplay(true)
		return
	}
	for o := range b.Column(x, z) {
		if o == s {
			continue
		}
		under := false
		switch o.Dir {
		case DirUp:
			under = o != ceiling && o.Point.Y < eyeY && s.Point.Y < o.Point.Y
		case DirDown:
			under = s.Point.Y < o.Point.Y && o.Point.Y-s.Point.Y < 0.3
		}
		if under {
			s.SetNoGameplay(true)
			return
		}
	}
}

// filterDown keeps only the highest ceiling surfel of a column.
func (b *Board) filterDown(x, z int, s *Surfel) {
	for o := range b.Column(x, z) {
		if o != s && o.Dir == DirDown && s.Point.Y < o.Point.Y {
			s.SetNoGameplay(true)
			return
		}
	}
}

// sideScan describes a walk along a row or column of the board.
type sideScan struct {
	x, z   int
	dx, dz int
	n      int
}

func (b *Board) filterSide(x, z int, s *Surfel, eyeY, groundY, ceilingY float64) {
	// back walks against the surfel normal, ahead along it.
	var back, ahead sideScan
	var reverse Direction
	switch s.Dir {
	case DirLeft:
		back = sideScan{x - 1, z, -1, 0, x}
		ahead = sideScan{x + 1, z, 1, 0, b.SizeX - x - 1}
		reverse = DirRight
	case DirRight:
		back = sideScan{x + 1, z, 1, 0, b.SizeX - x - 1}
		ahead = sideScan{x - 1, z, -1, 0, x}
		reverse = DirLeft
	case DirFront:
		back = sideScan{x, z - 1, 0, -1, z}
		ahead = sideScan{x, z + 1, 0, 1, b.SizeY - z - 1}
		reverse = DirBack
	case DirBack:
		back = sideScan{x, z + 1, 0, 1, b.SizeY - z - 1}
		ahead = sideScan{x, z - 1, 0, -1, z}
		reverse = DirFront
	default:
		return
	}
	b.filterSideOccluded(s, eyeY, back, reverse)
	under := ahead
	under.n = min(under.n, undergroundCells)
	b.filterSideUnderground(s, under, reverse)
	b.filterSideProximity(s, ahead, groundY, ceilingY)
}

// filterSideOccluded rejects a side surfel when, along the scan, another
// zone's parallel face stands at least as high more than 12 cm away, or a
// horizontal surface below eye level stands at least as high.
func (b *Board) filterSideOccluded(s *Surfel, eyeY float64, sc sideScan, reverse Direction) {
	axis := s.Dir.Normal()
	x, z := sc.x, sc.z
	for i := 0; i < sc.n; i++ {
		for o := range b.Column(x, z) {
			dx := o.Point.X - s.Point.X
			dz := o.Point.Z - s.Point.Z
			if math.Sqrt(dx*dx+dz*dz) <= b.CellSize*0.5 {
				continue
			}
			if (o.Dir == s.Dir || o.Dir == reverse) && s.Point.Y <= o.Point.Y && s.ZoneID != o.ZoneID {
				d := axis.X*(s.Point.X-o.Point.X) + axis.Y*(s.Point.Y-o.Point.Y) + axis.Z*(s.Point.Z-o.Point.Z)
				if math.Abs(d) > 0.12 {
					s.SetNoGameplay(true)
					return
				}
			} else if o.Dir.IsHorizontal() {
				if o.Point.Y < eyeY && o.Point.Y >= s.Point.Y && s.ZoneID != o.ZoneID {
					s.SetNoGameplay(true)
					return
				}
			}
		}
		x += sc.dx
		z += sc.dz
	}
}

// filterSideUnderground rejects a side surfel facing, within a few cells,
// a parallel face of another zone at nearly the same height.
func (b *Board) filterSideUnderground(s *Surfel, sc sideScan, reverse Direction) {
	x, z := sc.x, sc.z
	for i := 0; i < sc.n; i++ {
		for o := range b.Column(x, z) {
			if (o.Dir == s.Dir || o.Dir == reverse) &&
				math.Abs(s.Point.Y-o.Point.Y) < b.CellSize*0.5 &&
				s.ZoneID != o.ZoneID {
				s.SetNoGameplay(true)
				return
			}
		}
		x += sc.dx
		z += sc.dz
	}
}

// filterSideProximity rejects a side surfel closer than b.ProximityDist to
// the floor, the ceiling, or the first horizontal surfel found ahead of it.
func (b *Board) filterSideProximity(s *Surfel, sc sideScan, groundY, ceilingY float64) {
	if sc.n == 0 {
		return
	}
	y := s.Point.Y
	dmax := b.ProximityDist
	if ceilingY-y < dmax || y-groundY < dmax {
		s.SetNoGameplay(true)
		return
	}

	myGround, myCeiling := -1e8, 1e8
	x, z := sc.x, sc.z
	for i := 0; i < sc.n; i++ {
		for o := range b.Column(x, z) {
			if !o.Dir.IsHorizontal() {
				continue
			}
			if o.Point.Y < y {
				if o.Point.Y > myGround {
					myGround = o.Point.Y
					if y-myGround < dmax {
						s.SetNoGameplay(true)
						return
					}
				}
			} else if o.Point.Y < myCeiling {
				myCeiling = o.Point.Y
				if myCeiling-y < dmax {
					s.SetNoGameplay(true)
					return
				}
				// sorted: nothing higher can be lower than this one
				break
			}
		}
		if myGround > -1e7 || myCeiling < 1e7 {
			return
		}
		x += sc.dx
		z += sc.dz
	}
}
