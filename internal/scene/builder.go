package scene

import (
	"fmt"
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
	"github.com/banshee-data/roomscan/internal/surfel"
	"github.com/banshee-data/roomscan/internal/topology"
)

// Side names one of the four walls of a room by the board edge it stands
// on.
type Side int

const (
	SideMinX Side = iota
	SideMaxX
	SideMinZ
	SideMaxZ
)

var sideNames = [...]string{"min_x", "max_x", "min_z", "max_z"}

func (s Side) String() string {
	if s < 0 || int(s) >= len(sideNames) {
		return "invalid"
	}
	return sideNames[s]
}

// ParseSide is the inverse of Side.String.
func ParseSide(name string) (Side, error) {
	for i, n := range sideNames {
		if n == name {
			return Side(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown side %q", ErrInvalidScene, name)
}

// CellRect is the half-open cell range [X0,X1) x [Z0,Z1).
type CellRect struct {
	X0 int `json:"x0"`
	Z0 int `json:"z0"`
	X1 int `json:"x1"`
	Z1 int `json:"z1"`
}

func (r CellRect) contains(x, z int) bool {
	return x >= r.X0 && x < r.X1 && z >= r.Z0 && z < r.Z1
}

func (r CellRect) empty() bool { return r.X1 <= r.X0 || r.Z1 <= r.Z0 }

// Platform is a flat horizontal surface above the floor.
type Platform struct {
	Name string   `json:"name"`
	Rect CellRect `json:"rect"`
	Top  float64  `json:"top"`
	// Sides adds vertical faces from the floor to Top around the platform.
	Sides bool `json:"sides,omitempty"`
	// Shape and Slot label the platform for shape placements.
	Shape string `json:"shape,omitempty"`
	Slot  string `json:"slot,omitempty"`
}

// wallEndOffset moves the outermost wall surfels off the cell centres so
// that wall widths are not a whole number of voxels.
const wallEndOffset = 0.03

// RoomBuilder rasterises a box room into a surfel board.
type RoomBuilder struct {
	voxel        float64
	origin       geom.Vec3
	sizeX, sizeZ int

	floor, ceiling       float64
	hasFloor, hasCeiling bool

	wallBase, wallTop float64
	hasWalls          bool
	virtual           [4]bool

	platforms []Platform
	holes     []CellRect
	center    geom.Vec3

	zoneLimit, zoneSurfelLimit int
}

// NewRoomBuilder returns a builder for a sizeX x sizeZ cell room with its
// corner at the world origin.
func NewRoomBuilder(voxel float64, sizeX, sizeZ int) *RoomBuilder {
	return &RoomBuilder{voxel: voxel, sizeX: sizeX, sizeZ: sizeZ}
}

// Origin moves the room corner.
func (r *RoomBuilder) Origin(o geom.Vec3) *RoomBuilder { r.origin = o; return r }

// Floor covers every cell with an up-facing surfel at height y.
func (r *RoomBuilder) Floor(y float64) *RoomBuilder {
	r.floor, r.hasFloor = y, true
	return r
}

// Ceiling covers every cell with a down-facing surfel at height y.
func (r *RoomBuilder) Ceiling(y float64) *RoomBuilder {
	r.ceiling, r.hasCeiling = y, true
	return r
}

// Walls stacks side surfels from base to top along the four board edges.
func (r *RoomBuilder) Walls(base, top float64) *RoomBuilder {
	r.wallBase, r.wallTop, r.hasWalls = base, top, true
	return r
}

// VirtualWall flags the surfels of one wall as virtual.
func (r *RoomBuilder) VirtualWall(s Side) *RoomBuilder {
	if s >= 0 && int(s) < len(r.virtual) {
		r.virtual[s] = true
	}
	return r
}

// Platform adds a raised flat surface.
func (r *RoomBuilder) Platform(p Platform) *RoomBuilder {
	r.platforms = append(r.platforms, p)
	return r
}

// Hole removes the floor from a cell range.
func (r *RoomBuilder) Hole(rect CellRect) *RoomBuilder {
	r.holes = append(r.holes, rect)
	return r
}

// ZoneLimits overrides the zoning caps of the built board. Zero keeps the
// board default.
func (r *RoomBuilder) ZoneLimits(zones, surfels int) *RoomBuilder {
	r.zoneLimit, r.zoneSurfelLimit = zones, surfels
	return r
}

// Center sets the play space center. The default is the room middle.
func (r *RoomBuilder) Center(c geom.Vec3) *RoomBuilder { r.center = c; return r }

// Platforms returns the platforms added so far.
func (r *RoomBuilder) Platforms() []Platform { return r.platforms }

// CellCenter returns the world position of the centre of cell (x, z) at
// height y.
func (r *RoomBuilder) CellCenter(x, z int, y float64) geom.Vec3 {
	return geom.V(
		r.origin.X+(float64(x)+0.5)*r.voxel,
		y,
		r.origin.Z+(float64(z)+0.5)*r.voxel)
}

func (r *RoomBuilder) validate() error {
	if r.voxel <= 0 {
		return fmt.Errorf("%w: voxel size %v", ErrInvalidScene, r.voxel)
	}
	if r.sizeX < 2 || r.sizeZ < 2 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidScene, r.sizeX, r.sizeZ)
	}
	if r.hasFloor && r.hasCeiling && r.ceiling <= r.floor {
		return fmt.Errorf("%w: ceiling %.2f not above floor %.2f", ErrInvalidScene, r.ceiling, r.floor)
	}
	if r.hasWalls && r.wallTop <= r.wallBase {
		return fmt.Errorf("%w: wall top %.2f not above base %.2f", ErrInvalidScene, r.wallTop, r.wallBase)
	}
	for _, p := range r.platforms {
		if p.Rect.empty() || p.Rect.X0 < 0 || p.Rect.Z0 < 0 || p.Rect.X1 > r.sizeX || p.Rect.Z1 > r.sizeZ {
			return fmt.Errorf("%w: platform %q out of room", ErrInvalidScene, p.Name)
		}
		if r.hasFloor && p.Top <= r.floor {
			return fmt.Errorf("%w: platform %q below floor", ErrInvalidScene, p.Name)
		}
	}
	return nil
}

// height returns the number of vertical cells the board needs.
func (r *RoomBuilder) height() int {
	top := r.floor
	if r.hasCeiling {
		top = math.Max(top, r.ceiling)
	}
	if r.hasWalls {
		top = math.Max(top, r.wallTop)
	}
	for _, p := range r.platforms {
		top = math.Max(top, p.Top)
	}
	return geom.CeilInt((top-r.origin.Y)/r.voxel) + 2
}

func (r *RoomBuilder) add(b *surfel.Board, x, z int, p geom.Vec3, dir surfel.Direction, flags surfel.Flags) error {
	iy := geom.RoundInt((p.Y - r.origin.Y) / r.voxel)
	return b.TryAddSurfel(x, iy, z, dir, p, dir.Normal(), flags)
}

func (r *RoomBuilder) addStack(b *surfel.Board, x, z int, face geom.Vec3, base, top float64, dir surfel.Direction, flags surfel.Flags) error {
	n := geom.RoundInt((top - base) / r.voxel)
	for k := 0; k <= n; k++ {
		p := face
		p.Y = base + float64(k)*r.voxel
		if err := r.add(b, x, z, p, dir, flags); err != nil {
			return err
		}
	}
	return nil
}

func (r *RoomBuilder) inHole(x, z int) bool {
	for _, h := range r.holes {
		if h.contains(x, z) {
			return true
		}
	}
	return false
}

// Board rasterises the room and zones it.
func (r *RoomBuilder) Board() (*surfel.Board, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	b := surfel.NewBoard(r.origin, r.voxel, r.sizeX, r.sizeZ, r.height())

	for z := 0; z < r.sizeZ; z++ {
		for x := 0; x < r.sizeX; x++ {
			if r.hasFloor && !r.inHole(x, z) {
				if err := r.add(b, x, z, r.CellCenter(x, z, r.floor), surfel.DirUp, 0); err != nil {
					return nil, err
				}
			}
			if r.hasCeiling {
				if err := r.add(b, x, z, r.CellCenter(x, z, r.ceiling), surfel.DirDown, 0); err != nil {
					return nil, err
				}
			}
			for _, p := range r.platforms {
				if p.Rect.contains(x, z) {
					if err := r.add(b, x, z, r.CellCenter(x, z, p.Top), surfel.DirUp, 0); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	if r.hasWalls {
		if err := r.addWalls(b); err != nil {
			return nil, err
		}
	}
	for _, p := range r.platforms {
		if p.Sides {
			if err := r.addPlatformSides(b, p); err != nil {
				return nil, err
			}
		}
	}

	if r.zoneLimit > 0 {
		b.ZoneLimit = r.zoneLimit
	}
	if r.zoneSurfelLimit > 0 {
		b.ZoneSurfelLimit = r.zoneSurfelLimit
	}
	if err := b.ComputeConexity(); err != nil {
		return nil, fmt.Errorf("zoning scene: %w", err)
	}
	return b, nil
}

func (r *RoomBuilder) addWalls(b *surfel.Board) error {
	flags := func(s Side) surfel.Flags {
		if r.virtual[s] {
			return surfel.FlagVirtual
		}
		return 0
	}
	lastX, lastZ := r.sizeX-1, r.sizeZ-1
	loX, hiX := r.origin.X+0.5*r.voxel, r.origin.X+(float64(lastX)+0.5)*r.voxel
	loZ, hiZ := r.origin.Z+0.5*r.voxel, r.origin.Z+(float64(lastZ)+0.5)*r.voxel

	along := func(i, last int, o float64) float64 {
		a := o + (float64(i)+0.5)*r.voxel
		switch i {
		case 0:
			a -= wallEndOffset
		case last:
			a += wallEndOffset
		}
		return a
	}
	for i := 0; i < r.sizeZ; i++ {
		a := along(i, lastZ, r.origin.Z)
		if err := r.addStack(b, 0, i, geom.V(loX, 0, a), r.wallBase, r.wallTop, surfel.DirLeft, flags(SideMinX)); err != nil {
			return err
		}
		if err := r.addStack(b, lastX, i, geom.V(hiX, 0, a), r.wallBase, r.wallTop, surfel.DirRight, flags(SideMaxX)); err != nil {
			return err
		}
	}
	for i := 0; i < r.sizeX; i++ {
		a := along(i, lastX, r.origin.X)
		if err := r.addStack(b, i, 0, geom.V(a, 0, loZ), r.wallBase, r.wallTop, surfel.DirFront, flags(SideMinZ)); err != nil {
			return err
		}
		if err := r.addStack(b, i, lastZ, geom.V(a, 0, hiZ), r.wallBase, r.wallTop, surfel.DirBack, flags(SideMaxZ)); err != nil {
			return err
		}
	}
	return nil
}

// addPlatformSides puts outward faces in the cells just outside the
// platform, from one voxel above the floor to one voxel under the top.
func (r *RoomBuilder) addPlatformSides(b *surfel.Board, p Platform) error {
	base := r.floor + r.voxel
	top := p.Top - r.voxel
	if top < base {
		return nil
	}
	rc := p.Rect
	for z := rc.Z0; z < rc.Z1; z++ {
		if rc.X0 > 0 {
			face := r.CellCenter(rc.X0-1, z, 0)
			face.X += r.voxel / 2
			if err := r.addStack(b, rc.X0-1, z, face, base, top, surfel.DirRight, 0); err != nil {
				return err
			}
		}
		if rc.X1 < r.sizeX {
			face := r.CellCenter(rc.X1, z, 0)
			face.X -= r.voxel / 2
			if err := r.addStack(b, rc.X1, z, face, base, top, surfel.DirLeft, 0); err != nil {
				return err
			}
		}
	}
	for x := rc.X0; x < rc.X1; x++ {
		if rc.Z0 > 0 {
			face := r.CellCenter(x, rc.Z0-1, 0)
			face.Z += r.voxel / 2
			if err := r.addStack(b, x, rc.Z0-1, face, base, top, surfel.DirBack, 0); err != nil {
				return err
			}
		}
		if rc.Z1 < r.sizeZ {
			face := r.CellCenter(x, rc.Z1, 0)
			face.Z -= r.voxel / 2
			if err := r.addStack(b, x, rc.Z1, face, base, top, surfel.DirFront, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// Input builds the board and wraps it with the room limits for analysis.
func (r *RoomBuilder) Input() (topology.Input, error) {
	b, err := r.Board()
	if err != nil {
		return topology.Input{}, err
	}
	in := topology.Input{Board: b, YGround: r.floor, YCeiling: r.ceiling, Center: r.center}
	if !r.hasCeiling {
		in.YCeiling = float64(b.SizeH)*r.voxel + r.origin.Y
	}
	return in, nil
}

// Analyze builds the board and runs the topology analysis on it.
func (r *RoomBuilder) Analyze(cfg topology.Config) (*topology.Topology, error) {
	in, err := r.Input()
	if err != nil {
		return nil, err
	}
	return topology.Analyze(in, cfg)
}
