package topology

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
	"github.com/banshee-data/roomscan/internal/surfel"
)

// Thresholds on the distance of a surfel to its wall plane.
const (
	wallExtentTolerance = 0.02
	wallColumnTolerance = 0.08
	partEps             = 1e-6
)

type wallKey struct {
	zone     int
	virtual  bool
	external bool
}

// wallBuild is the working state of one wall during setup.
type wallBuild struct {
	Wall
	normalSum geom.Vec3
	surfels   []*surfel.Surfel
	columns   [][]*surfel.Surfel
}

// setupWalls groups non-horizontal zoned surfels by (zone, virtual,
// external), fits a plane to each group and discretizes it into columns.
func (t *Topology) setupWalls() {
	var builds []*wallBuild
	index := make(map[wallKey]*wallBuild)

	for sf := range t.board.All() {
		if sf.ZoneID == surfel.NoZone || sf.Dir.IsHorizontal() {
			continue
		}
		k := wallKey{zone: sf.ZoneID, virtual: sf.IsVirtual(), external: sf.IsExternal()}
		w := index[k]
		if w == nil {
			w = &wallBuild{Wall: Wall{ZoneID: k.zone, IsVirtual: k.virtual, IsExternal: k.external}}
			index[k] = w
			builds = append(builds, w)
		}
		n := float64(w.NbSurfel)
		w.Centroid = geom.Scale(1/(n+1), geom.Add(geom.Scale(n, w.Centroid), sf.Point))
		w.NbSurfel++
		w.normalSum = geom.Add(w.normalSum, sf.Normal)
		w.surfels = append(w.surfels, sf)
		w.Points = append(w.Points, sf.Point)
	}

	for _, w := range builds {
		if !t.shapeWall(w) {
			continue
		}
		if len(w.Columns) <= 1 || w.Height < 2*t.VoxelSize {
			continue
		}
		t.Walls = append(t.Walls, w.Wall)
	}
}

// shapeWall computes the frame, extent, columns and occlusion profile of
// w. It returns false when no surfel lies on the fitted plane.
func (t *Topology) shapeWall(w *wallBuild) bool {
	w.Normal = geom.Normalize(w.normalSum)
	vecs, vals := geom.Eigen3(w.Points)
	if vals[1] < t.cfg.WallEigenThreshold {
		n := geom.Normalize(geom.Cross(vecs[0], vecs[1]))
		if geom.Dot(n, w.Normal) < 0 {
			n = geom.Neg(n)
		}
		if n != geom.Zero {
			w.Normal = n
		}
	}

	ref := geom.Front
	if math.Abs(w.Normal.X) < math.Abs(w.Normal.Z) {
		ref = geom.Left
	}
	w.Up = geom.Cross(ref, w.Normal)
	w.Tangent = geom.Cross(w.Normal, w.Up)
	w.Tangent.Y = 0
	w.Tangent = geom.HNormalize(w.Tangent)
	w.Up = geom.Normalize(geom.Cross(w.Tangent, w.Normal))
	if w.Up.Y < 0 {
		w.Up = geom.Neg(w.Up)
	}

	lo := geom.Vec2{X: math.Inf(1), Y: math.Inf(1)}
	hi := geom.Vec2{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, sf := range w.surfels {
		rel := geom.Sub(sf.Point, w.Centroid)
		if !w.IsVirtual && math.Abs(geom.Dot(rel, w.Normal)) > wallExtentTolerance {
			continue
		}
		px, py := geom.Dot(rel, w.Tangent), geom.Dot(rel, w.Up)
		lo.X, lo.Y = min(lo.X, px), min(lo.Y, py)
		hi.X, hi.Y = max(hi.X, px), max(hi.Y, py)
	}
	if math.IsInf(lo.X, 1) {
		return false
	}

	w.Width = hi.X - lo.X
	w.Height = hi.Y - lo.Y
	w.BaseStart = geom.Add(w.Centroid, geom.Add(geom.Scale(lo.X, w.Tangent), geom.Scale(lo.Y, w.Up)))
	w.BaseEnd = geom.Add(w.Centroid, geom.Add(geom.Scale(hi.X, w.Tangent), geom.Scale(lo.Y, w.Up)))
	w.Centroid = geom.Add(w.BaseStart, geom.Add(geom.Scale(w.Width/2, w.Tangent), geom.Scale(w.Height/2, w.Up)))
	w.Area = w.Width * w.Height

	if w.Width >= t.VoxelSize {
		t.setupColumns(w)
	}
	return true
}

func (t *Topology) setupColumns(w *wallBuild) {
	voxel := t.VoxelSize
	n := geom.FloorInt(w.Width/voxel) + 1
	colSize := w.Width / float64(n)
	w.Columns = make([]WallColumn, n)
	w.columns = make([][]*surfel.Surfel, n)
	for c := range w.Columns {
		w.Columns[c] = WallColumn{Min: 2000, Max: -2000}
	}

	for _, sf := range w.surfels {
		rel := geom.Sub(sf.Point, w.Centroid)
		if !w.IsVirtual && math.Abs(geom.Dot(rel, w.Normal)) > wallColumnTolerance {
			continue
		}
		px := geom.Dot(rel, w.Tangent)
		c := min(max(geom.FloorInt((w.Width/2+px)/colSize), 0), n-1)
		col := &w.Columns[c]
		col.Min = min(col.Min, sf.Point.Y)
		col.Max = max(col.Max, sf.Point.Y)
		col.IsValid = col.Max-col.Min > voxel
		size := col.Max - col.Min
		col.PartHeight = size / float64(geom.FloorInt(size/voxel)+1)
		w.columns[c] = append(w.columns[c], sf)
	}

	hn := w.Normal
	hn.Y = 0
	dx, dz := 0, 0
	switch surfel.DirectionFromNormal(hn) {
	case surfel.DirLeft:
		dx = 1
	case surfel.DirRight:
		dx = -1
	case surfel.DirFront:
		dz = 1
	case surfel.DirBack:
		dz = -1
	}
	if dx == 0 && dz == 0 {
		return
	}

	w.Area = 0
	for c := range w.Columns {
		col := &w.Columns[c]
		if !col.IsValid {
			continue
		}
		start := geom.Madd(w.BaseStart, colSize*(float64(c)+0.5), w.Tangent)
		x := geom.FloorInt((start.X - t.MinPos.X) / voxel)
		z := geom.FloorInt((start.Z - t.MinPos.Z) / voxel)
		col.SpaceBottomSize = t.spaceBottomSize(x, z, col.Min, dx, dz)

		parts := geom.FloorInt((col.Max-col.Min)/voxel) + 1
		col.SpaceInFrontOf = make([]int, parts)
		for _, sf := range w.columns[c] {
			h := sf.Point.Y
			if h > col.Max-partEps || h < col.Min+partEps {
				continue
			}
			i := col.part(h)
			for _, k := range [...]int{i - 1, i, i + 1} {
				if k >= 0 && k < parts {
					col.SpaceInFrontOf[k] = 1000
				}
			}
		}
		t.spaceInFrontOf(x, z, &w.Wall, col, dx, dz)
		w.Area += (col.Max - col.Min) * colSize
	}
}

// spaceBottomSize counts the cells walked from (x, z) along (dx, dz) before
// meeting a non-ceiling surfel higher than height.
func (t *Topology) spaceBottomSize(x, z int, height float64, dx, dz int) int {
	b := t.board
	size := 1
	for x, z = x+dx, z+dz; b.InBoard(x, z); x, z = x+dx, z+dz {
		for sf := range b.Column(x, z) {
			if sf.Dir != surfel.DirDown && sf.Point.Y > height+0.01 {
				return size
			}
		}
		size++
	}
	return size
}

// spaceInFrontOf walks from the column cell along the wall normal and
// lowers each slab's free depth to the distance of the first foreign
// surfel in front of the wall at that height.
func (t *Topology) spaceInFrontOf(x, z int, w *Wall, col *WallColumn, dx, dz int) {
	b := t.board
	limit := col.Min + col.PartHeight/2
	size := 0
	for ; b.InBoard(x, z); x, z = x+dx, z+dz {
		for sf := range b.Column(x, z) {
			h := sf.Point.Y
			if h > col.Max-partEps {
				break
			}
			if sf.ZoneID != w.ZoneID && h > limit && geom.Dot(geom.Sub(sf.Point, w.Centroid), w.Normal) > 0.01 {
				i := col.part(h)
				if i >= 0 && i < len(col.SpaceInFrontOf) {
					col.SpaceInFrontOf[i] = min(size, col.SpaceInFrontOf[i])
				}
			}
		}
		size++
	}
	for i := range col.SpaceInFrontOf {
		col.SpaceInFrontOf[i] = min(size, col.SpaceInFrontOf[i])
	}
}

// SpaceOnWallIsFree reports whether columns first..last of w are free in
// front over [bottomY, topY] up to depth cells. With allowPartially a single
// free column is enough; otherwise every column must be free. Up to a
// twentieth of the slabs may be blocked.
func SpaceOnWallIsFree(first, last int, bottomY, topY float64, depth int, allowPartially bool, w *Wall) bool {
	n := len(w.Columns)
	if first < 0 || first >= n || last < 0 || last >= n {
		return false
	}
	const eps = 0.001
	limit := (last - first) * geom.FloorInt((topY-bottomY)/0.08) / 20
	count := 0

	for i := first; i <= last; i++ {
		col := &w.Columns[i]
		ok := false
		if col.IsValid && col.Min <= bottomY+eps && col.Max >= topY-eps {
			ok = true
			p0 := col.part(bottomY + eps)
			p1 := col.part(topY - eps)
			for p := p0; p <= p1; p++ {
				if p >= 0 && p < len(col.SpaceInFrontOf) && col.SpaceInFrontOf[p] < depth {
					count++
					if count >= limit {
						ok = false
						break
					}
				}
			}
		}
		switch {
		case ok && allowPartially:
			return true
		case !ok && !allowPartially:
			return false
		}
	}
	return !allowPartially
}

// SpaceOnWallIsFreeFloat is SpaceOnWallIsFree with the column range given as
// offsets along the wall tangent.
func SpaceOnWallIsFreeFloat(leftOffset, rightOffset, bottomY, topY float64, depth int, allowPartially bool, w *Wall) bool {
	cs := w.ColumnSize()
	if cs <= 0 {
		return false
	}
	return SpaceOnWallIsFree(int(leftOffset/cs), int(rightOffset/cs), bottomY, topY, depth, allowPartially, w)
}
