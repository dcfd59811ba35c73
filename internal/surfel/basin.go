package surfel

import (
	"slices"

	"github.com/banshee-data/roomscan/internal/monitoring"
)

// BasinFilter flags as Basin and NoGameplay every ground zone from which
// the ground zone cannot be reached by a chain of CanGoDown steps. It
// returns the flagged zone ids in ascending order.
func (b *Board) BasinFilter(groundZone int) []int {
	reachable := make(map[int][]int)
	var basins []int
	isGround := make(map[int]bool)

	for z := 0; z < b.SizeY; z++ {
		for x := 0; x < b.SizeX; x++ {
			for s := range b.Column(x, z) {
				if s.Dir != DirUp || s.ZoneID < 0 {
					continue
				}
				if !isGround[s.ZoneID] {
					isGround[s.ZoneID] = true
					basins = append(basins, s.ZoneID)
				}
				for _, step := range CardinalSteps {
					to, ok := b.CanGoDown(s, step)
					if ok && !slices.Contains(reachable[s.ZoneID], to) {
						reachable[s.ZoneID] = append(reachable[s.ZoneID], to)
					}
				}
			}
		}
	}

	i := slices.Index(basins, groundZone)
	if i < 0 {
		return nil
	}
	basins = slices.Delete(basins, i, i+1)

	open := []int{groundZone}
	for len(open) > 0 {
		var next []int
		for _, zone := range open {
			for j := len(basins) - 1; j >= 0; j-- {
				if slices.Contains(reachable[basins[j]], zone) {
					next = append(next, basins[j])
					basins = slices.Delete(basins, j, j+1)
				}
			}
		}
		open = next
	}

	if len(basins) == 0 {
		return nil
	}
	for s := range b.All() {
		if s.ZoneID >= 0 && isGround[s.ZoneID] && slices.Contains(basins, s.ZoneID) {
			s.SetBasin(true)
			s.SetNoGameplay(true)
		}
	}
	slices.Sort(basins)
	monitoring.Logf("surfel: basin filter flagged zones %v", basins)
	return basins
}
