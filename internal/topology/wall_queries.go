package topology

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
)

// floorContact is how far above YGround a wall base may start and still
// touch the floor.
const floorContact = 0.08

// AllPosOnWall returns the centers of every widthMin x heightSizeMin
// window on the walls, starting heightMin above ground, with depth of free
// space in front of it. Windows slide one column at a time.
func (t *Topology) AllPosOnWall(heightMin, heightSizeMin, widthMin, depth float64, allowVirtual bool) []Spot {
	iDepth := geom.FloorInt(depth / t.VoxelSize)
	var out []Spot
	for wi := range t.Walls {
		w := &t.Walls[wi]
		if w.IsVirtual && !allowVirtual {
			continue
		}
		lo := max(w.BaseStart.Y, t.YGround+heightMin)
		hi := lo + w.Height
		if hi-lo <= heightSizeMin || w.Width <= widthMin || len(w.Columns) < 2 {
			continue
		}

		delta := w.Width / float64(len(w.Columns)-1)
		count := 0
		fMin, fMax := lo, 1e7
		for i := range w.Columns {
			col := &w.Columns[i]
			fMin = max(fMin, col.Min)
			fMax = min(fMax, col.Max)
			if !col.IsValid {
				count = 0
				continue
			}
			if col.blocked(col.part(fMin), col.part(fMax), iDepth) {
				count = 0
				continue
			}
			switch {
			case fMax-fMin > heightSizeMin:
				count++
				if float64(count)*delta >= widthMin-geom.Eps {
					mid := geom.Madd(w.BaseStart, float64(i)*delta-widthMin/2+delta/2, w.Tangent)
					mid.Y = fMin + heightSizeMin/2
					out = append(out, Spot{Pos: mid, Normal: w.Normal})
					count--
				}
			case col.Max-col.Min > heightSizeMin:
				count = 1
				fMin, fMax = max(col.Min, lo), col.Max
			default:
				count = 0
				fMin, fMax = lo, 1e7
			}
		}
	}
	return out
}

// AllPosOnWallNearFloor returns window centers on walls standing on the
// floor, heightMin tall and widthMin wide, with at least floorDist of free
// floor at their foot and depth of free space in front.
func (t *Topology) AllPosOnWallNearFloor(heightMin, widthMin, floorDist, depth float64) []Spot {
	minFloor := geom.FloorInt(floorDist/t.VoxelSize) + 1
	iDepth := geom.FloorInt(depth / t.VoxelSize)
	var out []Spot
	for wi := range t.Walls {
		w := &t.Walls[wi]
		lo := w.BaseStart.Y
		hi := lo + w.Height
		if lo > t.YGround+floorContact || hi <= t.YGround+heightMin || w.Width <= widthMin || len(w.Columns) < 2 {
			continue
		}

		delta := w.Width / float64(len(w.Columns)-1)
		count := 0
		for i := range w.Columns {
			col := &w.Columns[i]
			if !col.IsValid {
				count = 0
				continue
			}
			if col.blocked(0, col.part(col.Max)-1, iDepth) {
				count = 0
				continue
			}
			if col.SpaceBottomSize < minFloor || col.Min > t.YGround+floorContact || col.Max <= t.YGround+heightMin {
				count = 0
				continue
			}
			count++
			if float64(count)*delta >= widthMin-geom.Eps {
				mid := geom.Madd(w.BaseStart, float64(i)*delta-widthMin/2+delta/2, w.Tangent)
				mid.Y = col.Min + heightMin/2
				out = append(out, Spot{Pos: mid, Normal: w.Normal})
				count--
			}
		}
	}
	return out
}

// columnRange returns the columns of w whose centered widthMin window fits
// on the wall, or ok=false when the wall is too narrow.
func (t *Topology) columnRange(w *Wall, widthMin float64) (first, last int, ok bool) {
	n := len(w.Columns)
	if float64(n)*t.VoxelSize < widthMin {
		return 0, 0, false
	}
	half := int(widthMin/t.VoxelSize) / 2
	return half, n - 1 - half, true
}

func (t *Topology) freeWidth(w *Wall, c int) float64 {
	return float64(min(c, len(w.Columns)-1-c)) * t.VoxelSize * 2
}

// AllLargePosOnWall returns, per column with depth of free space over its
// usable height, one spot per voxel of height with the free width around
// the column.
func (t *Topology) AllLargePosOnWall(heightMin, heightSizeMin, widthMin, depth float64, allowVirtual bool) []Spot {
	iDepth := geom.FloorInt(depth / t.VoxelSize)
	var out []Spot
	for wi := range t.Walls {
		w := &t.Walls[wi]
		if w.IsVirtual && !allowVirtual {
			continue
		}
		first, last, ok := t.columnRange(w, widthMin)
		if !ok {
			continue
		}
		for c := first; c <= last; c++ {
			col := &w.Columns[c]
			lo := max(col.Min, t.YGround+heightMin)
			hi := min(col.Max, col.Max-heightSizeMin)
			if col.blocked(max(col.part(lo), 0), max(col.part(hi), 0), iDepth) {
				continue
			}
			width := t.freeWidth(w, c)
			pos := geom.Madd(w.BaseStart, float64(c)*t.VoxelSize, w.Tangent)
			for pos.Y = lo; pos.Y <= hi; pos.Y += t.VoxelSize {
				out = append(out, Spot{Pos: pos, Normal: w.Normal, Width: width})
			}
		}
	}
	return out
}

// AllPosOnWallNearCeiling returns one spot per valid column at ceilingDist
// below the ceiling, with depth of free space in front of the column from
// there up.
func (t *Topology) AllPosOnWallNearCeiling(ceilingDist, widthMin, depth float64) []Spot {
	iDepth := geom.FloorInt(depth / t.VoxelSize)
	var out []Spot
	for wi := range t.Walls {
		w := &t.Walls[wi]
		first, last, ok := t.columnRange(w, widthMin)
		if !ok {
			continue
		}
		for c := first; c <= last; c++ {
			col := &w.Columns[c]
			if !col.IsValid {
				continue
			}
			pos := geom.Madd(w.BaseStart, float64(c)*t.VoxelSize, w.Tangent)
			pos.Y = t.YCeiling - ceilingDist
			if pos.Y < col.Min || pos.Y > col.Max {
				continue
			}
			if col.blocked(col.part(pos.Y), col.part(col.Max), iDepth) {
				continue
			}
			out = append(out, Spot{Pos: pos, Normal: w.Normal, Width: t.freeWidth(w, c)})
		}
	}
	return out
}

// LargestWall returns the index of the wall with the largest area, or -1.
func (t *Topology) LargestWall(allowVirtual, forceExternal bool) int {
	best, area := -1, -1.0
	for i := range t.Walls {
		w := &t.Walls[i]
		if (w.IsVirtual && !allowVirtual) || (!w.IsExternal && forceExternal) {
			continue
		}
		if w.Area > area {
			best, area = i, w.Area
		}
	}
	return best
}

// IsFullWall reports whether w reaches within 0.5 m of the ceiling.
func (t *Topology) IsFullWall(w *Wall) bool {
	return w.BaseStart.Y+w.Height >= t.YCeiling-0.5
}

// HasWallNear reports whether a real wall at least wallHeightMin tall lies
// within radius of pos.
func (t *Topology) HasWallNear(pos geom.Vec3, radius, wallHeightMin float64) bool {
	for i := range t.Walls {
		w := &t.Walls[i]
		if w.IsVirtual || w.Height < wallHeightMin {
			continue
		}
		if DistPointVsWall(w, pos) <= radius {
			return true
		}
	}
	return false
}

// DistWallNear returns the distance from pos to the nearest wall at least
// wallHeightMin tall whose virtual flag equals virtual, or math.MaxFloat64.
func (t *Topology) DistWallNear(pos geom.Vec3, wallHeightMin float64, virtual bool) float64 {
	best := math.MaxFloat64
	for i := range t.Walls {
		w := &t.Walls[i]
		if w.IsVirtual != virtual || w.Height < wallHeightMin {
			continue
		}
		best = min(best, DistPointVsWall(w, pos))
	}
	return best
}

// DistNearestWall returns the distance from pos to the nearest wall at
// least wallHeightMin tall, or math.MaxFloat64.
func (t *Topology) DistNearestWall(pos geom.Vec3, wallHeightMin float64) float64 {
	best := math.MaxFloat64
	for i := range t.Walls {
		if w := &t.Walls[i]; w.Height >= wallHeightMin {
			best = min(best, DistPointVsWall(w, pos))
		}
	}
	return best
}
