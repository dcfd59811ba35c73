package solver

import "github.com/banshee-data/roomscan/internal/geom"

// FitsOnSurface runs the footprint checks of a surface placement on surface
// index si.
func (sv *Solver) FitsOnSurface(s *SolvingInfos, si int, pos geom.Vec3, rot geom.Quat) bool {
	return sv.fitsOnSurface(s, &sv.topo.Surfaces[si], pos, rot)
}
