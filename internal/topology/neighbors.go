package topology

import (
	"math"
	"slices"

	"github.com/banshee-data/roomscan/internal/geom"
	"github.com/banshee-data/roomscan/internal/surfel"
)

// setupNeighbors links surfaces less than 1 m apart in height when a person
// can step down from the higher one onto the lower one.
func (t *Topology) setupNeighbors() {
	for i := range t.Surfaces {
		for j := i + 1; j < len(t.Surfaces); j++ {
			s1, s2 := &t.Surfaces[i], &t.Surfaces[j]
			if math.Abs(s2.WorldHeight-s1.WorldHeight) > 1 {
				continue
			}
			high, low := s2, s1
			if s1.MaxPos.Y > s2.MaxPos.Y {
				high, low = s1, s2
			}
			if t.stepsDownTo(high, low.ZoneID) {
				s1.Neighbors = append(s1.Neighbors, j)
				s2.Neighbors = append(s2.Neighbors, i)
			}
		}
	}
}

// stepsDownTo reports whether any interior cell of s reaches zone with a
// single CanGoDown walk.
func (t *Topology) stepsDownTo(s *Surface, zone int) bool {
	b := t.board
	c := 0
	for y := s.MinPos2D.Y; y <= s.MaxPos2D.Y; y++ {
		for x := s.MinPos2D.X; x <= s.MaxPos2D.X; x, c = x+1, c+1 {
			cell := &s.Cells[c]
			if !cell.IsValid() || cell.DistFromVoid == 0 || cell.DistFromVoid == NoDist {
				continue
			}
			for sf := range b.Column(x, y) {
				if sf.ZoneID != s.ZoneID {
					continue
				}
				if t.canStepTo(sf, zone) {
					return true
				}
				break
			}
		}
	}
	return false
}

func (t *Topology) canStepTo(sf *surfel.Surfel, zone int) bool {
	b := t.board
	for _, step := range surfel.CardinalSteps {
		nx, nz := sf.X+step.X, sf.Z+step.Y
		if !b.InBoard(nx, nz) {
			continue
		}
		if got, ok := b.CanGoDown(sf, step); ok && got == zone {
			return true
		}
	}
	return false
}

// setupSurfaceGroups gathers connected non-ground, non-ceiling surfaces.
func (t *Topology) setupSurfaceGroups() {
	grouped := make([]bool, len(t.Surfaces))
	for i := range t.Surfaces {
		s := &t.Surfaces[i]
		if s.IsGround || s.IsCeiling || grouped[i] {
			continue
		}
		group := []int{i}
		grouped[i] = true
		group = t.addNeighbors(group, grouped, i)
		t.Groups = append(t.Groups, group)
	}
}

func (t *Topology) addNeighbors(group []int, grouped []bool, i int) []int {
	for _, n := range t.Surfaces[i].Neighbors {
		ns := &t.Surfaces[n]
		if ns.IsGround || ns.IsCeiling || slices.Contains(group, n) {
			continue
		}
		group = append(group, n)
		grouped[n] = true
		group = t.addNeighbors(group, grouped, n)
	}
	return group
}

// CellNeighbors returns the board coordinates of the 8 neighbours of cell c
// of s.
func CellNeighbors(s *Surface, c int) [8]geom.Vec2i {
	sx := s.SizeX()
	p := geom.Vec2i{X: c%sx + s.MinPos2D.X, Y: c/sx + s.MinPos2D.Y}
	return [8]geom.Vec2i{
		{X: p.X - 1, Y: p.Y - 1},
		{X: p.X - 1, Y: p.Y},
		{X: p.X - 1, Y: p.Y + 1},
		{X: p.X, Y: p.Y - 1},
		{X: p.X, Y: p.Y + 1},
		{X: p.X + 1, Y: p.Y - 1},
		{X: p.X + 1, Y: p.Y},
		{X: p.X + 1, Y: p.Y + 1},
	}
}

// groupAwayFromWalls reports whether every wall-adjacent cell of the
// group's surfaces touches another surface of the group.
func (t *Topology) groupAwayFromWalls(group []int) bool {
	for _, si := range group {
		s := &t.Surfaces[si]
		for c := range s.Cells {
			if s.Cells[c].DistFromWall != 1 {
				continue
			}
			if !t.touchesGroup(group, si, CellNeighbors(s, c)) {
				return false
			}
		}
	}
	return true
}

func (t *Topology) touchesGroup(group []int, self int, around [8]geom.Vec2i) bool {
	for _, p := range around {
		for _, o := range group {
			if o != self && t.Surfaces[o].CellAtGrid(p) != nil {
				return true
			}
		}
	}
	return false
}

// GroupsAwayFromWalls returns the indices of groups whose surfaces all lie
// between minHeight and maxHeight above ground and that do not rest against
// a wall.
func (t *Topology) GroupsAwayFromWalls(minHeight, maxHeight float64) []int {
	var out []int
	for g, group := range t.Groups {
		ok := true
		for _, si := range group {
			h := t.Surfaces[si].HeightFromGround
			if h < minHeight || h > maxHeight {
				ok = false
				break
			}
		}
		if ok && t.groupAwayFromWalls(group) {
			out = append(out, g)
		}
	}
	return out
}
