package surfel

import "math"

// MinLimitZoneSurfels is the surfel count below which a zone cannot be
// chosen as the ground or the ceiling.
const MinLimitZoneSurfels = 100

// HorizontalLimit is the result of SearchHorizontalLimit.
type HorizontalLimit struct {
	Zone   int
	Height float64
	Count  int
}

// SearchHorizontalLimit picks the ground zone (up == false) or the ceiling
// zone (up == true). Candidates are non-virtual up (resp. down) facing zones
// with at least MinLimitZoneSurfels surfels whose mean height is within 1 m
// of the lowest (resp. highest) such zone; the most populated wins.
func (b *Board) SearchHorizontalLimit(up bool) (HorizontalLimit, bool) {
	dir := DirUp
	if up {
		dir = DirDown
	}

	sum := make(map[int]float64)
	count := make(map[int]int)
	zmax := -1
	for s := range b.All() {
		if s.ZoneID < 0 || s.Dir != dir || s.IsVirtual() {
			continue
		}
		sum[s.ZoneID] += s.Point.Y
		count[s.ZoneID]++
		zmax = max(zmax, s.ZoneID)
	}

	extrema := math.Inf(1)
	if up {
		extrema = math.Inf(-1)
	}
	height := make(map[int]float64, len(count))
	for zone, n := range count {
		h := sum[zone] / float64(n)
		height[zone] = h
		if n < MinLimitZoneSurfels {
			continue
		}
		if up {
			extrema = math.Max(extrema, h)
		} else {
			extrema = math.Min(extrema, h)
		}
	}

	best := HorizontalLimit{Zone: NoZone, Count: -1}
	// Ascending zone order keeps the first of equally populated zones.
	for zone := 0; zone <= zmax; zone++ {
		n := count[zone]
		if n < MinLimitZoneSurfels {
			continue
		}
		if up && height[zone] < extrema-1 {
			continue
		}
		if !up && height[zone] > extrema+1 {
			continue
		}
		if n > best.Count {
			best = HorizontalLimit{Zone: zone, Height: height[zone], Count: n}
		}
	}
	return best, best.Zone >= 0
}
