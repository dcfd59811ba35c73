package surfel

import (
	"fmt"
	"math"

	"github.com/banshee-data/roomscan/internal/monitoring"
)

var (
	cosZoneAccept = math.Cos(45 * math.Pi / 180)
	cosZoneRetain = math.Cos(50 * math.Pi / 180)
)

// ComputeConexity relabels every surfel with a connected-component zone id.
// Components are flood-filled from each unassigned gameplay surfel across
// neighbours facing the seed's direction (or, for virtual wall surfels,
// within 45° of the seed normal) that pass CanGo. Single-surfel components
// are rolled back to NoZone.
//
// Exceeding ZoneLimit or ZoneSurfelLimit returns a *ConfigurationError;
// the board is then only partially zoned.
func (b *Board) ComputeConexity() error {
	for s := range b.All() {
		s.ZoneID = NoZone
	}

	var (
		links []*Surfel
		stack []*Surfel
		zone  int
	)
	for head := range b.All() {
		if head.ZoneID >= 0 || head.NoGameplay() {
			continue
		}
		if zone >= b.ZoneLimit {
			return &ConfigurationError{Err: ErrZoneLimit, Detail: fmt.Sprintf("limit %d", b.ZoneLimit)}
		}

		head.ZoneID = zone
		count := 1
		stack = append(stack[:0], head)
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			links = links[:0]
			if cur.IsVirtual() && !head.Dir.IsHorizontal() {
				links = b.GetSurfelByIDistAndDirWall(cur.X, cur.Y, cur.Z, 1, head.Normal, cosZoneAccept, cosZoneRetain, links)
			} else {
				links = b.GetSurfelByIDistAndIDir(cur.X, cur.Y, cur.Z, 1, head.Dir, links)
			}
			for _, o := range links {
				if o.ZoneID >= 0 || o.NoGameplay() {
					continue
				}
				if !cur.CanGo(o) {
					continue
				}
				o.ZoneID = zone
				count++
				stack = append(stack, o)
				if len(stack) >= b.ZoneSurfelLimit {
					return &ConfigurationError{Err: ErrZoneSurfelLimit, Detail: fmt.Sprintf("zone %d, limit %d", zone, b.ZoneSurfelLimit)}
				}
			}
		}

		if count < 2 {
			head.ZoneID = NoZone
			continue
		}
		zone++
	}
	monitoring.Logf("surfel: conexity assigned %d zones", zone)
	return nil
}
