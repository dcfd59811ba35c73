package topology

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
)

// minSeatHeadroom is the headroom, in cells, required above a large seat.
const minSeatHeadroom = 12

// SeatNormals are the eight horizontal directions a seat may face.
var SeatNormals = []geom.Vec3{
	geom.Right, geom.Back, geom.Front, geom.Left,
	geom.V(-math.Sqrt2/2, 0, -math.Sqrt2/2),
	geom.V(math.Sqrt2/2, 0, -math.Sqrt2/2),
	geom.V(-math.Sqrt2/2, 0, math.Sqrt2/2),
	geom.V(math.Sqrt2/2, 0, math.Sqrt2/2),
}

func voxelSpan(length, voxel float64) int {
	return max(1, geom.FloorInt(1+length/2/voxel))
}

func inHeightBand(s *Surface, minHeight, maxHeight float64) bool {
	return s.HeightFromGround > minHeight-geom.Eps && s.HeightFromGround < maxHeight+geom.Eps
}

// facesEdge reports whether walking dist cells from pos along n leaves s
// over the floor: the cells on the way are valid and near the floor, the
// last one is at the edge and the next one is off the surface.
func (t *Topology) facesEdge(s *Surface, pos, n geom.Vec3, dist int) bool {
	step := geom.Scale(t.VoxelSize, n)
	d := uint32(dist)

	if c := t.CellInSurface(s, geom.Madd(pos, float64(dist-1), step)); c == nil || c.DistFromFloor > 1 || c.DistFromWall <= 1 {
		return false
	}
	if c := t.CellInSurface(s, geom.Madd(pos, float64(dist), step)); c != nil && c.IsValid() {
		return false
	}
	for i := 1; i < dist-1; i++ {
		c := t.CellInSurface(s, geom.Madd(pos, float64(i), step))
		if c == nil || c.DistFromFloor > d || !c.IsValid() {
			return false
		}
	}
	return true
}

// AllPosSittable returns the cells of surfaces between minHeight and
// maxHeight above ground that sit within depth/2 of an edge overlooking
// the floor, with the direction of that edge.
func (t *Topology) AllPosSittable(minHeight, maxHeight, depth float64) []Spot {
	dist := voxelSpan(depth, t.VoxelSize)
	d := uint32(dist)

	var out []Spot
	for i := range t.Surfaces {
		s := &t.Surfaces[i]
		if !inHeightBand(s, minHeight, maxHeight) {
			continue
		}
		for c := range s.Cells {
			cell := &s.Cells[c]
			if !cell.IsValid() || cell.DistFromWall <= 1 || cell.DistFromFloor > d || cell.DistFromBorder > d {
				continue
			}
			pos := t.CellPosition(s, c)
			for _, n := range SeatNormals {
				if t.facesEdge(s, pos, n, dist) {
					out = append(out, Spot{Pos: pos, Normal: geom.Normalize(n)})
				}
			}
		}
	}
	return out
}

// AllLargePosSittable runs AllLargePosSittableOnSurface over every surface
// with the eight seat directions.
func (t *Topology) AllLargePosSittable(minHeight, maxHeight, depth, widthMin float64) []Spot {
	var out []Spot
	for i := range t.Surfaces {
		out = append(out, t.AllLargePosSittableOnSurface(&t.Surfaces[i], SeatNormals, minHeight, maxHeight, depth, widthMin)...)
	}
	return out
}

// AllLargePosSittableOnSurface is AllPosSittable restricted to s and the
// given directions, additionally requiring widthMin of valid seat along the
// edge with floor in front of it and a meter of headroom.
func (t *Topology) AllLargePosSittableOnSurface(s *Surface, normals []geom.Vec3, minHeight, maxHeight, depth, widthMin float64) []Spot {
	if !inHeightBand(s, minHeight, maxHeight) {
		return nil
	}
	widthVox := voxelSpan(widthMin, t.VoxelSize)
	dist := min(widthVox, voxelSpan(depth, t.VoxelSize))
	d := uint32(dist)

	var out []Spot
	for c := range s.Cells {
		cell := &s.Cells[c]
		if !cell.IsValid() || cell.DistFromWall < d || cell.DistFromFloor > d ||
			cell.DistFromBorder > d || cell.SpaceToUp < minSeatHeadroom {
			continue
		}
		pos := t.CellPosition(s, c)
		for _, n := range normals {
			if !t.facesEdge(s, pos, n, dist) {
				continue
			}
			tangent := geom.Normalize(geom.Cross(n, geom.Down))
			ahead := geom.Scale(t.VoxelSize*float64(dist), n)
			if t.seatIsWide(s, pos, tangent, ahead, widthVox) {
				out = append(out, Spot{Pos: pos, Normal: geom.Normalize(n)})
			}
		}
	}
	return out
}

func (t *Topology) seatIsWide(s *Surface, pos, tangent, ahead geom.Vec3, widthVox int) bool {
	for i := 0; i < widthVox; i++ {
		off := geom.Scale(t.VoxelSize*float64(i), tangent)
		for _, p := range [...]geom.Vec3{geom.Add(pos, off), geom.Sub(pos, off)} {
			if c := t.CellInSurface(s, geom.Add(p, ahead)); c != nil && c.DistFromFloor > 0 {
				return false
			}
			if c := t.CellInSurface(s, p); c == nil || !c.IsValid() {
				return false
			}
		}
	}
	return true
}
