package topology

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
	"github.com/banshee-data/roomscan/internal/surfel"
)

// Request is a set of predicates tested by CellIsOk, LineIsOk and
// RectangleIsOk.
type Request uint32

const (
	// RequestOutside accepts only positions outside the surface footprint.
	RequestOutside Request = 1 << iota
	// RequestWall accepts only wall cells.
	RequestWall
	// RequestVoid accepts only void cells.
	RequestVoid
	// RequestValid accepts only cells inside the surface footprint.
	RequestValid
	// RequestSpace accepts only cells with at least limit cells of headroom.
	RequestSpace
	// RequestOnlyOne turns the "all samples" test into "at least one".
	RequestOnlyOne
)

// NoDist marks a distance that did not propagate to the cell.
const NoDist = math.MaxUint32

// defaultSpaceToUp is the headroom of a cell with nothing above it.
const defaultSpaceToUp = 1000

func incDist(v uint32) uint32 {
	if v == NoDist {
		return NoDist
	}
	return v + 1
}

// CellInfo holds the distance fields of one surface cell, in cells.
type CellInfo struct {
	DistFromBorder uint32
	DistFromWall   uint32
	DistFromVoid   uint32
	DistFromFloor  uint32
	// SpaceToUp is the headroom before the next obstruction.
	SpaceToUp uint32
}

func newCellInfo() CellInfo {
	return CellInfo{
		DistFromBorder: NoDist,
		DistFromWall:   NoDist,
		DistFromVoid:   NoDist,
		DistFromFloor:  NoDist,
		SpaceToUp:      defaultSpaceToUp,
	}
}

// IsValid reports whether the cell belongs to the surface footprint.
func (c *CellInfo) IsValid() bool {
	return c.DistFromBorder != NoDist && c.DistFromBorder != 0
}

// Surface is a horizontal, zone-consistent region. Cells are indexed
// (localY*SizeX + localX) over the 2D bounding box.
type Surface struct {
	ZoneID           int
	WorldHeight      float64
	HeightFromGround float64
	// MinSpace is the smallest free height above any cell.
	MinSpace float64
	MinPos   geom.Vec3
	MaxPos   geom.Vec3
	MinPos2D geom.Vec2i
	MaxPos2D geom.Vec2i
	Area     float64
	NbCell   int

	IsGround  bool
	IsCeiling bool

	Cells []CellInfo
	// Neighbors holds indices into Topology.Surfaces.
	Neighbors []int
}

// SizeX is the bounding box width in cells.
func (s *Surface) SizeX() int { return s.MaxPos2D.X - s.MinPos2D.X + 1 }

// SizeY is the bounding box depth in cells.
func (s *Surface) SizeY() int { return s.MaxPos2D.Y - s.MinPos2D.Y + 1 }

// Face returns the surface bounding quad at its minimum height, padded by
// half a voxel.
func (s *Surface) Face(voxel float64) geom.Quad {
	h := voxel / 2
	y := s.MinPos.Y
	return geom.Quad{
		geom.V(s.MinPos.X-h, y, s.MinPos.Z-h),
		geom.V(s.MaxPos.X+h, y, s.MinPos.Z-h),
		geom.V(s.MaxPos.X+h, y, s.MaxPos.Z+h),
		geom.V(s.MinPos.X-h, y, s.MaxPos.Z+h),
	}
}

// CellAtGrid returns the cell at board coordinates (x, z), or nil when the
// position is outside the bounding box.
func (s *Surface) CellAtGrid(p geom.Vec2i) *CellInfo {
	if p.X < s.MinPos2D.X || p.Y < s.MinPos2D.Y || p.X > s.MaxPos2D.X || p.Y > s.MaxPos2D.Y {
		return nil
	}
	lx, ly := p.X-s.MinPos2D.X, p.Y-s.MinPos2D.Y
	return &s.Cells[ly*s.SizeX()+lx]
}

// WallColumn is one slice of a wall along its tangent.
type WallColumn struct {
	Min, Max float64
	IsValid  bool
	// PartHeight is the height of one slab of SpaceInFrontOf.
	PartHeight float64
	// SpaceInFrontOf is the free depth, in cells, ahead of each slab.
	SpaceInFrontOf []int
	// SpaceBottomSize is the free floor run, in cells, at the column foot.
	SpaceBottomSize int
}

// part returns the slab index of height y.
func (c *WallColumn) part(y float64) int {
	if c.PartHeight <= 0 {
		return 0
	}
	return geom.FloorInt((y - c.Min) / c.PartHeight)
}

// blocked reports whether any slab in [p0, p1] has less than depth cells
// of free space.
func (c *WallColumn) blocked(p0, p1, depth int) bool {
	for p := max(p0, 0); p <= p1 && p < len(c.SpaceInFrontOf); p++ {
		if c.SpaceInFrontOf[p] < depth {
			return true
		}
	}
	return false
}

// Wall is a vertical region of one zone.
type Wall struct {
	ZoneID     int
	Normal     geom.Vec3
	Tangent    geom.Vec3
	Up         geom.Vec3
	BaseStart  geom.Vec3
	BaseEnd    geom.Vec3
	Centroid   geom.Vec3
	NbSurfel   int
	Width      float64
	Height     float64
	Area       float64
	IsVirtual  bool
	IsExternal bool

	Columns []WallColumn
	Points  []geom.Vec3
}

// IsZWall reports whether the wall faces mostly along X, i.e. runs along Z.
func (w *Wall) IsZWall() bool { return math.Abs(w.Normal.X) > 0.707 }

// Face returns the wall quad: base start, base end, top end, top start.
func (w *Wall) Face() geom.Quad {
	across := geom.Scale(w.Width, w.Tangent)
	up := geom.Scale(w.Height, w.Up)
	return geom.Quad{
		w.BaseStart,
		geom.Add(w.BaseStart, across),
		geom.Add(geom.Add(w.BaseStart, across), up),
		geom.Add(w.BaseStart, up),
	}
}

// ColumnSize is the width of one column.
func (w *Wall) ColumnSize() float64 {
	if len(w.Columns) == 0 {
		return w.Width
	}
	return w.Width / float64(len(w.Columns))
}

// ColumnAt returns the index of the column under p, measured along the
// tangent from BaseStart, and whether it falls on the wall.
func (w *Wall) ColumnAt(p geom.Vec3) (int, bool) {
	if len(w.Columns) == 0 {
		return -1, false
	}
	c := geom.FloorInt(geom.Dot(w.Tangent, geom.Sub(p, w.BaseStart)) / w.ColumnSize())
	if c < 0 || c >= len(w.Columns) {
		return -1, false
	}
	return c, true
}

// HitType tells which kind of element a ray hit.
type HitType int

const (
	HitSurface HitType = iota
	HitWall
)

// RayCastResult is the nearest hit of Topology.RayCast.
type RayCastResult struct {
	Pos    geom.Vec3
	Normal geom.Vec3
	Type   HitType

	SurfaceIdx int
	CellIdx    int
	WallIdx    int
	ColumnIdx  int
}

// Spot is a candidate position produced by the wall and seat queries.
type Spot struct {
	Pos    geom.Vec3
	Normal geom.Vec3
	// Width is the free width around Pos, when the query computes it.
	Width float64
}

// RectPos is a rectangle center with the direction of its length.
type RectPos struct {
	Pos       geom.Vec3
	LengthDir geom.Vec3
}

// Input describes the scanned play space handed to Analyze.
type Input struct {
	Board    *surfel.Board
	YGround  float64
	YCeiling float64
	// MinAvailable and MaxAvailable bound the usable area. Zero values
	// default to the board extents.
	MinAvailable geom.Vec3
	MaxAvailable geom.Vec3
	// Center is the play space center; zero defaults to the middle of the
	// available area.
	Center geom.Vec3
}

// Topology is the immutable result of one analysis.
type Topology struct {
	VoxelSize float64
	YGround   float64
	YCeiling  float64
	// MinPos is the world corner of board cell (0, 0).
	MinPos   geom.Vec3
	MinPos2D geom.Vec2i
	MaxPos2D geom.Vec2i

	AvailableMin geom.Vec3
	AvailableMax geom.Vec3

	PlaySpaceCenter geom.Vec3
	RoomCenter      geom.Vec3

	Surfaces []Surface
	Walls    []Wall
	// Groups lists connected non-ground, non-ceiling surfaces as indices
	// into Surfaces.
	Groups [][]int

	cfg   Config
	board *surfel.Board
}

// Board returns the snapshot's own copy of the analysed board. Callers
// must not modify it.
func (t *Topology) Board() *surfel.Board { return t.board }
