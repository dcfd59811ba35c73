package surfel

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
)

// VoxelHit is the result of RayCastVoxel.
type VoxelHit struct {
	Pos    geom.Vec3
	Zone   int
	Surfel *Surfel
}

// RayCastVoxel casts the segment p1-p2 against the voxels of the board and
// returns the first hit on a non-virtual surfel facing the segment. Columns
// are visited in order along the segment's horizontal projection.
func (b *Board) RayCastVoxel(p1, p2 geom.Vec3) (VoxelHit, bool) {
	if b.IsEmpty() || b.CellSize <= 0 {
		return VoxelHit{}, false
	}
	view := geom.Sub(p2, p1)
	if geom.Norm2(view) < 1e-8 {
		return VoxelHit{}, false
	}

	var hit VoxelHit
	found := false
	b.walkColumns(p1, p2, func(x, z int) bool {
		cx := b.Origin.X + float64(x)*b.CellSize
		cz := b.Origin.Z + float64(z)*b.CellSize

		// Height range of the segment over this column.
		t0, t1, ok := slab2(p1, view, cx, cz, b.CellSize)
		if !ok {
			return true
		}
		ya, yb := p1.Y+view.Y*t0, p1.Y+view.Y*t1
		ymin := math.Min(ya, yb) - 1e-4
		ymax := math.Max(ya, yb) + 1e-4
		hmin, hmax := b.LevelOf(ymin), b.LevelOf(ymax)

		bestT := math.Inf(1)
		var best *Surfel
		for s := range b.Column(x, z) {
			if s.Y < hmin || s.Y > hmax || s.IsVirtual() {
				continue
			}
			if geom.Dot(s.Normal, view) >= 0 {
				continue
			}
			lo := geom.V(cx, b.Origin.Y+float64(s.Y)*b.CellSize, cz)
			tmin, _, ok := slab3(p1, view, lo, b.CellSize)
			if !ok || tmin < 0 || tmin > 1 {
				continue
			}
			if tmin < bestT {
				bestT = tmin
				best = s
			}
		}
		if best == nil {
			return true
		}
		hit = VoxelHit{Pos: geom.Madd(p1, bestT, view), Zone: best.ZoneID, Surfel: best}
		found = true
		return false
	})
	return hit, found
}

// walkColumns visits, in order, the board columns crossed by the horizontal
// projection of p1-p2. Columns outside the board are skipped. visit returns
// false to stop.
func (b *Board) walkColumns(p1, p2 geom.Vec3, visit func(x, z int) bool) {
	inv := 1 / b.CellSize
	fx, fz := (p1.X-b.Origin.X)*inv, (p1.Z-b.Origin.Z)*inv
	ex, ez := (p2.X-b.Origin.X)*inv, (p2.Z-b.Origin.Z)*inv
	x, z := geom.FloorInt(fx), geom.FloorInt(fz)
	endX, endZ := geom.FloorInt(ex), geom.FloorInt(ez)

	dx, dz := ex-fx, ez-fz
	stepX, stepZ := 0, 0
	tMaxX, tMaxZ := math.Inf(1), math.Inf(1)
	tDeltaX, tDeltaZ := math.Inf(1), math.Inf(1)
	if dx > 0 {
		stepX = 1
		tDeltaX = 1 / dx
		tMaxX = (float64(x+1) - fx) / dx
	} else if dx < 0 {
		stepX = -1
		tDeltaX = -1 / dx
		tMaxX = (fx - float64(x)) / -dx
	}
	if dz > 0 {
		stepZ = 1
		tDeltaZ = 1 / dz
		tMaxZ = (float64(z+1) - fz) / dz
	} else if dz < 0 {
		stepZ = -1
		tDeltaZ = -1 / dz
		tMaxZ = (fz - float64(z)) / -dz
	}

	n := abs(endX-x) + abs(endZ-z) + 1
	for i := 0; i < n; i++ {
		if b.InBoard(x, z) && !visit(x, z) {
			return
		}
		if tMaxX < tMaxZ {
			x += stepX
			tMaxX += tDeltaX
		} else {
			z += stepZ
			tMaxZ += tDeltaZ
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// slab2 clips the segment org + t*dir, t in [0,1], to the vertical column
// [cx, cx+size] x [cz, cz+size].
func slab2(org, dir geom.Vec3, cx, cz, size float64) (float64, float64, bool) {
	t0, t1 := 0.0, 1.0
	if !clipAxis(org.X, dir.X, cx, cx+size, &t0, &t1) {
		return 0, 0, false
	}
	if !clipAxis(org.Z, dir.Z, cz, cz+size, &t0, &t1) {
		return 0, 0, false
	}
	return t0, t1, true
}

// slab3 intersects the infinite line org + t*dir with the cube of edge
// size whose minimum corner is lo.
func slab3(org, dir, lo geom.Vec3, size float64) (float64, float64, bool) {
	t0, t1 := math.Inf(-1), math.Inf(1)
	if !clipAxis(org.X, dir.X, lo.X, lo.X+size, &t0, &t1) {
		return 0, 0, false
	}
	if !clipAxis(org.Y, dir.Y, lo.Y, lo.Y+size, &t0, &t1) {
		return 0, 0, false
	}
	if !clipAxis(org.Z, dir.Z, lo.Z, lo.Z+size, &t0, &t1) {
		return 0, 0, false
	}
	return t0, t1, true
}

func clipAxis(o, d, lo, hi float64, t0, t1 *float64) bool {
	if math.Abs(d) < 1e-12 {
		return o >= lo && o <= hi
	}
	a, b := (lo-o)/d, (hi-o)/d
	if a > b {
		a, b = b, a
	}
	*t0 = math.Max(*t0, a)
	*t1 = math.Min(*t1, b)
	return *t0 <= *t1
}
