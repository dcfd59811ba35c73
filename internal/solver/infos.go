package solver

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/banshee-data/roomscan/internal/geom"
)

// PositionType selects the placement strategy.
type PositionType int

const (
	OnFloor PositionType = iota
	OnWall
	OnCeiling
	OnShape
	OnEdge
	OnFloorAndCeiling
	RandomInTheAir
	InTheMidAir
	UnderFurnitureEdge
)

var positionNames = [...]string{
	OnFloor:            "on_floor",
	OnWall:             "on_wall",
	OnCeiling:          "on_ceiling",
	OnShape:            "on_shape",
	OnEdge:             "on_edge",
	OnFloorAndCeiling:  "on_floor_and_ceiling",
	RandomInTheAir:     "random_in_the_air",
	InTheMidAir:        "in_the_mid_air",
	UnderFurnitureEdge: "under_furniture_edge",
}

func (p PositionType) String() string {
	if p >= 0 && int(p) < len(positionNames) {
		return positionNames[p]
	}
	return fmt.Sprintf("position(%d)", int(p))
}

// ParsePositionType is the inverse of PositionType.String.
func ParsePositionType(s string) (PositionType, error) {
	for i, n := range positionNames {
		if strings.EqualFold(n, s) {
			return PositionType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPositionType, s)
}

// WallType is a mask of the wall kinds a wall placement accepts.
type WallType uint32

const (
	WallNormal WallType = 1 << iota
	WallExternal
	WallVirtual
	WallExternalVirtual

	AnyWall = WallNormal | WallExternal | WallVirtual | WallExternalVirtual
)

// WallPlacement pins a wall placement vertically.
type WallPlacement int

const (
	// WallAnywhere browses the whole height band.
	WallAnywhere WallPlacement = iota
	// WallNearFloor rests the object on the surface at the wall foot.
	WallNearFloor
	// WallNearCeiling puts the object against the top of the wall.
	WallNearCeiling
	// WallNearSurface rests the object on the surface under each column.
	WallNearSurface
)

// WallParams configures OnWall.
type WallParams struct {
	// HeightMin and HeightMax bound the object center above the ground.
	HeightMin, HeightMax float64
	OnlyFullWall         bool
	NotOnFullWall        bool
	Types                WallType
	Placement            WallPlacement
	LeftMargin           float64
	RightMargin          float64
}

// ShapeParams names the shape slot used by OnShape.
type ShapeParams struct {
	Shape string
	Slot  string
}

// EdgeParams configures the linked placements OnEdge and
// OnFloorAndCeiling. TopIdx and BottomIdx are filled by the solver.
type EdgeParams struct {
	BottomSize geom.Vec3
	TopIdx     int
	BottomIdx  int
}

// Position groups the strategy and its parameters.
type Position struct {
	Type  PositionType
	Wall  WallParams
	Shape ShapeParams
	Edge  EdgeParams

	// FixedRot orients surface placements toward PointToLook.
	FixedRot    bool
	PointToLook geom.Vec3

	// Tiled restricts candidates to a lattice with TiledPos spacing.
	Tiled    bool
	TiledPos geom.Vec3

	// Random90 adds a random quarter turn about Up to the chosen pose.
	Random90 bool
}

const (
	// AllUniverses makes an object collide with every universe.
	AllUniverses int8 = 127

	// FlagWantLight marks objects that want light.
	FlagWantLight uint8 = 1
)

// Candidate is a feasible pose with its constraint score.
type Candidate struct {
	Pos   geom.Vec3 `json:"pos"`
	Rot   geom.Quat `json:"rot"`
	Score float64   `json:"score"`
}

// SolvingInfos is one placement request and, once solved, its result.
//
// Size is the object box. EmptySize/EmptyCenter is the box the object needs
// free around itself, ClearanceSize/ClearanceCenter the box other objects
// must stay out of. Centers are offsets in the object frame.
type SolvingInfos struct {
	Name string

	Size            geom.Vec3
	Center          geom.Vec3
	EmptySize       geom.Vec3
	EmptyCenter     geom.Vec3
	ClearanceSize   geom.Vec3
	ClearanceCenter geom.Vec3

	// Factor scales the request; Size and ClearanceSize are divided by it
	// when the result is stored.
	Factor float64

	AllowPartiallyInWall   bool
	OnlyComputePossiblePos bool
	CheckOppositePos       bool
	OppositePos            geom.Vec3

	// IgnoredSolvedBox names placed objects this request may overlap.
	IgnoredSolvedBox []string

	Position    Position
	Rules       []Rule
	Constraints []Constraint

	Universe int8
	Flags    uint8

	// Set by the solver.
	Idx         int
	Pos         geom.Vec3
	Rot         geom.Quat
	PossiblePos []Candidate

	emptyWorldCenter     geom.Vec3
	clearanceWorldCenter geom.Vec3
}

// NewSolvingInfos returns a request for a box of the given full size whose
// empty and clearance boxes equal the object box.
func NewSolvingInfos(name string, size geom.Vec3) *SolvingInfos {
	return &SolvingInfos{
		Name:          name,
		Size:          size,
		EmptySize:     size,
		ClearanceSize: size,
		Factor:        1,
		Universe:      AllUniverses,
		Idx:           -1,
		Rot:           geom.Identity,
		Position:      Position{Edge: EdgeParams{TopIdx: -1, BottomIdx: -1}},
	}
}

// SetPositionOnFloor places the object on a ground surface.
func (s *SolvingInfos) SetPositionOnFloor() { s.Position.Type = OnFloor }

// SetPositionOnWall places the object against a wall with its center
// between heightMin and heightMax above the ground.
func (s *SolvingInfos) SetPositionOnWall(heightMin, heightMax float64, types WallType, leftMargin, rightMargin float64) {
	s.Position.Type = OnWall
	s.Position.Wall.HeightMin = heightMin
	s.Position.Wall.HeightMax = heightMax
	s.Position.Wall.Types = types
	s.Position.Wall.LeftMargin = leftMargin
	s.Position.Wall.RightMargin = rightMargin
}

func (s *SolvingInfos) SetPositionOnCeiling() { s.Position.Type = OnCeiling }

func (s *SolvingInfos) SetPositionOnShape(shape, slot string) {
	s.Position.Type = OnShape
	s.Position.Shape = ShapeParams{Shape: shape, Slot: slot}
}

// SetPositionOnEdge places the object on the edge of a raised surface with
// a second object of size bottom on the floor below it.
func (s *SolvingInfos) SetPositionOnEdge(bottom geom.Vec3) {
	s.Position.Type = OnEdge
	s.Position.Edge.BottomSize = bottom
}

// SetPositionOnFloorAndCeiling places the object under the ceiling with a
// second object of size bottom on the floor below it.
func (s *SolvingInfos) SetPositionOnFloorAndCeiling(bottom geom.Vec3) {
	s.Position.Type = OnFloorAndCeiling
	s.Position.Edge.BottomSize = bottom
}

func (s *SolvingInfos) SetPositionRandomInTheAir()     { s.Position.Type = RandomInTheAir }
func (s *SolvingInfos) SetPositionInTheMidAir()        { s.Position.Type = InTheMidAir }
func (s *SolvingInfos) SetPositionUnderFurnitureEdge() { s.Position.Type = UnderFurnitureEdge }

// AddRule appends hard rules.
func (s *SolvingInfos) AddRule(r ...Rule) { s.Rules = append(s.Rules, r...) }

// AddConstraint appends scored constraints.
func (s *SolvingInfos) AddConstraint(c ...Constraint) {
	s.Constraints = append(s.Constraints, c...)
}

// computeWorldPos refreshes the cached world centers of the boxes.
func (s *SolvingInfos) computeWorldPos() {
	s.clearanceWorldCenter = geom.Add(s.Pos, s.Rot.Rotate(s.ClearanceCenter))
	s.emptyWorldCenter = geom.Add(s.Pos, s.Rot.Rotate(s.EmptyCenter))
}

// boxesDiffer reports whether the empty and clearance boxes are distinct.
func (s *SolvingInfos) boxesDiffer() bool {
	return !geom.ApproxEqual(s.ClearanceCenter, s.EmptyCenter, geom.Eps) ||
		!geom.ApproxEqual(s.ClearanceSize, s.EmptySize, geom.Eps)
}

func (s *SolvingInfos) ignores(name string) bool {
	for _, n := range s.IgnoredSolvedBox {
		if n == name {
			return true
		}
	}
	return false
}

// clone copies s deeply enough that the copy's slices can be appended to
// without aliasing.
func (s *SolvingInfos) clone() SolvingInfos {
	c := *s
	c.IgnoredSolvedBox = append([]string(nil), s.IgnoredSolvedBox...)
	c.Rules = append([]Rule(nil), s.Rules...)
	c.Constraints = append([]Constraint(nil), s.Constraints...)
	c.PossiblePos = nil
	return c
}

func (s *SolvingInfos) addPossible(score float64) {
	s.PossiblePos = append(s.PossiblePos, Candidate{Pos: s.Pos, Rot: s.Rot, Score: score})
}

func (s *SolvingInfos) sortPossible() {
	sort.SliceStable(s.PossiblePos, func(i, j int) bool {
		return s.PossiblePos[i].Score > s.PossiblePos[j].Score
	})
}

func sameUniverse(a, b int8) bool {
	if a == AllUniverses || b == AllUniverses {
		return true
	}
	return a >= 0 && a == b
}

// applyFactor divides the size fields by Factor before a result is stored.
func (s *SolvingInfos) applyFactor() {
	f := s.Factor
	if f == 0 || f == 1 {
		return
	}
	if s.CheckOppositePos {
		s.ClearanceSize.X /= f
		s.ClearanceSize.Z /= f
		s.Size.X /= f
		s.Size.Z /= f
		return
	}
	s.ClearanceSize = geom.Scale(1/f, s.ClearanceSize)
	s.Size = geom.Scale(1/f, s.Size)
}

// unscaledSize is Size divided by Factor.
func (s *SolvingInfos) unscaledSize() geom.Vec3 {
	if s.Factor == 0 || math.IsNaN(s.Factor) {
		return s.Size
	}
	return geom.Scale(1/s.Factor, s.Size)
}
