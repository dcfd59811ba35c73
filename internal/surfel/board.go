package surfel

import (
	"fmt"
	"iter"

	"github.com/banshee-data/roomscan/internal/geom"
)

const nilSurfel int32 = -1

// Default capacities. Both are tuning values; see config.TuningConfig.
const (
	DefaultZoneLimit       = 2048
	DefaultZoneSurfelLimit = 1 << 18
)

// Cell is one (x, z) column of the board.
type Cell struct {
	CornerX, CornerZ float64
	first            int32
}

// Board is the surfel grid. SizeY counts cells along world Z; SizeH counts
// height buckets along world Y.
type Board struct {
	SizeX, SizeY, SizeH int
	Origin              geom.Vec3
	CellSize            float64

	// ZoneLimit caps the zone ids ComputeConexity may create.
	ZoneLimit int
	// ZoneSurfelLimit caps the flood-fill stack of a single zone.
	ZoneSurfelLimit int
	// ProximityDist is the side-surfel clearance used by FilterSurfel.
	ProximityDist float64

	surfels []Surfel
	free    int32
	cells   []Cell
}

// NewBoard returns an initialised empty board.
func NewBoard(origin geom.Vec3, cellSize float64, sizeX, sizeY, sizeH int) *Board {
	b := &Board{ZoneLimit: DefaultZoneLimit, ZoneSurfelLimit: DefaultZoneSurfelLimit}
	b.Init(origin, cellSize, sizeX, sizeY, sizeH)
	return b
}

// Init sizes the board and drops every surfel.
func (b *Board) Init(origin geom.Vec3, cellSize float64, sizeX, sizeY, sizeH int) {
	b.SizeX, b.SizeY, b.SizeH = sizeX, sizeY, sizeH
	b.CellSize = cellSize
	b.Origin = origin
	b.free = nilSurfel
	b.surfels = b.surfels[:0]
	b.cells = make([]Cell, sizeX*sizeY)
	for z := 0; z < sizeY; z++ {
		cz := origin.Z + float64(z)*cellSize
		for x := 0; x < sizeX; x++ {
			c := &b.cells[z*sizeX+x]
			c.CornerX = origin.X + float64(x)*cellSize
			c.CornerZ = cz
			c.first = nilSurfel
		}
	}
	if b.ZoneLimit == 0 {
		b.ZoneLimit = DefaultZoneLimit
	}
	if b.ZoneSurfelLimit == 0 {
		b.ZoneSurfelLimit = DefaultZoneSurfelLimit
	}
	if b.ProximityDist == 0 {
		b.ProximityDist = DefaultProximityDist
	}
}

// Clone returns a deep copy of the board. Surfel pointers taken from the
// copy are independent of the original.
func (b *Board) Clone() *Board {
	c := *b
	c.surfels = append([]Surfel(nil), b.surfels...)
	c.cells = append([]Cell(nil), b.cells...)
	return &c
}

// Empty removes every surfel and keeps the grid.
func (b *Board) Empty() {
	b.free = nilSurfel
	b.surfels = b.surfels[:0]
	for i := range b.cells {
		b.cells[i].first = nilSurfel
	}
}

// Flush releases the grid and all surfels.
func (b *Board) Flush() {
	b.SizeX, b.SizeY, b.SizeH = 0, 0, 0
	b.free = nilSurfel
	b.surfels = nil
	b.cells = nil
}

// IsEmpty reports whether the board holds no surfel.
func (b *Board) IsEmpty() bool { return len(b.surfels) == 0 }

// Len returns the number of live surfels.
func (b *Board) Len() int {
	n := 0
	for z := 0; z < b.SizeY; z++ {
		for x := 0; x < b.SizeX; x++ {
			for range b.Column(x, z) {
				n++
			}
		}
	}
	return n
}

// InBoard reports whether (x, z) addresses a cell.
func (b *Board) InBoard(x, z int) bool {
	return x >= 0 && z >= 0 && x < b.SizeX && z < b.SizeY
}

// Cell returns the cell at (x, z) or nil outside the board.
func (b *Board) Cell(x, z int) *Cell {
	if !b.InBoard(x, z) {
		return nil
	}
	return &b.cells[z*b.SizeX+x]
}

func (b *Board) at(i int32) *Surfel {
	if i == nilSurfel {
		return nil
	}
	return &b.surfels[i]
}

// First returns the lowest surfel of the column, or nil.
func (b *Board) First(x, z int) *Surfel {
	c := b.Cell(x, z)
	if c == nil {
		return nil
	}
	return b.at(c.first)
}

// Next returns the surfel above s in its column, or nil.
func (b *Board) Next(s *Surfel) *Surfel { return b.at(s.next) }

// Column iterates the surfels of (x, z) from lowest to highest. An
// out-of-board column yields nothing.
func (b *Board) Column(x, z int) iter.Seq[*Surfel] {
	return func(yield func(*Surfel) bool) {
		for s := b.First(x, z); s != nil; s = b.Next(s) {
			if !yield(s) {
				return
			}
		}
	}
}

// All iterates every surfel, column by column in raster order.
func (b *Board) All() iter.Seq[*Surfel] {
	return func(yield func(*Surfel) bool) {
		for z := 0; z < b.SizeY; z++ {
			for x := 0; x < b.SizeX; x++ {
				for s := b.First(x, z); s != nil; s = b.Next(s) {
					if !yield(s) {
						return
					}
				}
			}
		}
	}
}

// GetSurfel returns the surfel at height bucket y of column (x, z).
func (b *Board) GetSurfel(x, y, z int) *Surfel {
	for s := range b.Column(x, z) {
		if s.Y == y {
			return s
		}
	}
	return nil
}

func (b *Board) getSurfelDir(x, y, z int, dir Direction) *Surfel {
	for s := range b.Column(x, z) {
		if s.Y == y && s.Dir == dir {
			return s
		}
	}
	return nil
}

func (b *Board) newSurfel() int32 {
	if b.free != nilSurfel {
		i := b.free
		b.free = b.surfels[i].next
		b.surfels[i] = Surfel{ZoneID: NoZone, next: nilSurfel, idx: i}
		return i
	}
	i := int32(len(b.surfels))
	b.surfels = append(b.surfels, Surfel{ZoneID: NoZone, next: nilSurfel, idx: i})
	return i
}

func (b *Board) indexOf(s *Surfel) int32 {
	if s.idx < 0 || int(s.idx) >= len(b.surfels) || &b.surfels[s.idx] != s {
		return nilSurfel
	}
	return s.idx
}

// sortAdd links surfel i into its column keeping heights ascending.
func (b *Board) sortAdd(c *Cell, i int32) {
	y := b.surfels[i].Point.Y
	prev := c.first
	if prev == nilSurfel || y < b.surfels[prev].Point.Y {
		b.surfels[i].next = prev
		c.first = i
		return
	}
	cur := b.surfels[prev].next
	for cur != nilSurfel && y > b.surfels[cur].Point.Y {
		prev = cur
		cur = b.surfels[cur].next
	}
	b.surfels[prev].next = i
	b.surfels[i].next = cur
}

// TryAddSurfel inserts a surfel at cell (ix, iy, iz). An existing surfel
// with the same height bucket and direction is replaced unless the new one
// is NoGameplay, or the new one is virtual and the existing one is not
// NoGameplay.
func (b *Board) TryAddSurfel(ix, iy, iz int, dir Direction, pos, normal geom.Vec3, flags Flags) error {
	c := b.Cell(ix, iz)
	if c == nil {
		return fmt.Errorf("add surfel at (%d,%d,%d): %w", ix, iy, iz, ErrOutOfBoard)
	}
	if flags&FlagBadSurfel != 0 {
		flags |= FlagNoGameplay
	}
	if old := b.getSurfelDir(ix, iy, iz, dir); old != nil {
		if flags&FlagNoGameplay != 0 {
			return nil
		}
		if !old.NoGameplay() && flags&FlagVirtual != 0 {
			return nil
		}
		b.RemoveSurfel(old)
	}

	i := b.newSurfel()
	s := &b.surfels[i]
	s.X, s.Y, s.Z = ix, iy, iz
	s.Normal = normal
	s.Point = pos
	s.Quality = 255
	s.Dir = dir
	s.Flags = flags & (FlagVirtual | FlagNoGameplay | FlagBadSurfel | FlagExternal)
	b.sortAdd(c, i)
	return nil
}

// AddSurfelAt derives the cell coordinates and direction from a world
// position and normal, then calls TryAddSurfel.
func (b *Board) AddSurfelAt(pos, normal geom.Vec3, flags Flags) error {
	ix := geom.FloorInt((pos.X - b.Origin.X) / b.CellSize)
	iy := b.LevelOf(pos.Y)
	iz := geom.FloorInt((pos.Z - b.Origin.Z) / b.CellSize)
	return b.TryAddSurfel(ix, iy, iz, DirectionFromNormal(normal), pos, geom.Normalize(normal), flags)
}

// RemoveSurfel unlinks s from its column and recycles it.
func (b *Board) RemoveSurfel(s *Surfel) {
	c := b.Cell(s.X, s.Z)
	if c == nil {
		return
	}
	i := b.indexOf(s)
	if i == nilSurfel {
		return
	}
	if c.first == i {
		c.first = s.next
	} else {
		cur := c.first
		for cur != nilSurfel && b.surfels[cur].next != i {
			cur = b.surfels[cur].next
		}
		if cur == nilSurfel {
			return
		}
		b.surfels[cur].next = s.next
	}
	s.next = b.free
	b.free = i
}

// FlushCell recycles every surfel of column (x, z).
func (b *Board) FlushCell(x, z int) {
	c := b.Cell(x, z)
	if c == nil || c.first == nilSurfel {
		return
	}
	last := c.first
	for b.surfels[last].next != nilSurfel {
		last = b.surfels[last].next
	}
	b.surfels[last].next = b.free
	b.free = c.first
	c.first = nilSurfel
}

// CheckCell verifies the column invariants: every surfel sits at (x, z)
// and no two share a height bucket.
func (b *Board) CheckCell(x, z int) bool {
	for s := range b.Column(x, z) {
		if s.X != x || s.Z != z {
			return false
		}
		for o := b.Next(s); o != nil; o = b.Next(o) {
			if o.Y == s.Y {
				return false
			}
		}
	}
	return true
}

// FindBiggestHole returns the first gap taller than 20 cm found walking
// down from the highest ceiling surfel of the column.
func (b *Board) FindBiggestHole(x, z int) (down, up float64, ok bool) {
	up = -1000
	for s := range b.Column(x, z) {
		if s.Dir == DirDown && s.Point.Y > up {
			up = s.Point.Y
		}
	}
	if up < -900 {
		return 0, 0, false
	}
	for {
		down = -1000
		for s := range b.Column(x, z) {
			if s.Dir == DirUp && s.Point.Y < up-0.08 && s.Point.Y > down {
				down = s.Point.Y
			}
		}
		if down < -900 {
			return 0, 0, false
		}
		if up-down > 0.2 {
			return down, up, true
		}
		up = down
	}
}

func (b *Board) searchWindow(x, y, z, n int) (minX, maxX, minY, maxY, minZ, maxZ int) {
	minX, maxX = max(x-n, 0), min(x+n, b.SizeX-1)
	minZ, maxZ = max(z-n, 0), min(z+n, b.SizeY-1)
	return minX, maxX, y - n, y + n, minZ, maxZ
}

// GetSurfelByIDistAndIDir appends to out every surfel facing dir within n
// cells of (x, y, z) on each axis.
func (b *Board) GetSurfelByIDistAndIDir(x, y, z, n int, dir Direction, out []*Surfel) []*Surfel {
	minX, maxX, minY, maxY, minZ, maxZ := b.searchWindow(x, y, z, n)
	for cz := minZ; cz <= maxZ; cz++ {
		for cx := minX; cx <= maxX; cx++ {
			for s := range b.Column(cx, cz) {
				if s.Y >= minY && s.Y <= maxY && s.Dir == dir {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// GetSurfelByIDistAndDirWall appends the surfels within n cells whose
// normal is within the tolerance cone of norm. A column contributes only
// if at least one of its candidates is inside the tighter cosMax cone.
func (b *Board) GetSurfelByIDistAndDirWall(x, y, z, n int, norm geom.Vec3, cosMax, cosTolerance float64, out []*Surfel) []*Surfel {
	minX, maxX, minY, maxY, minZ, maxZ := b.searchWindow(x, y, z, n)
	for cz := minZ; cz <= maxZ; cz++ {
		for cx := minX; cx <= maxX; cx++ {
			saved := len(out)
			valid := false
			for s := range b.Column(cx, cz) {
				if s.Y < minY || s.Y > maxY {
					continue
				}
				d := geom.Dot(s.Normal, norm)
				if d > cosTolerance {
					if d > cosMax {
						valid = true
					}
					out = append(out, s)
				}
			}
			if !valid {
				out = out[:saved]
			}
		}
	}
	return out
}

// ZoneCount returns one more than the highest zone id on the board, or 0
// when no surfel carries a zone.
func (b *Board) ZoneCount() int {
	zmax := NoZone
	for s := range b.All() {
		zmax = max(zmax, s.ZoneID)
	}
	return zmax + 1
}

// LevelOf returns the height index of world height y. Heights below the
// origin map to negative levels.
func (b *Board) LevelOf(y float64) int {
	return geom.FloorInt((y - b.Origin.Y) / b.CellSize)
}

// CellOf returns the cell coordinates of a world position, and whether
// they fall inside the board.
func (b *Board) CellOf(p geom.Vec3) (int, int, bool) {
	x := geom.FloorInt((p.X - b.Origin.X) / b.CellSize)
	z := geom.FloorInt((p.Z - b.Origin.Z) / b.CellSize)
	return x, z, b.InBoard(x, z)
}
