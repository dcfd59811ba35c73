package solver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/roomscan/internal/geom"
)

// Vec is the JSON form of a vector, [x, y, z].
type Vec [3]float64

func (v Vec) vec3() geom.Vec3 { return geom.V(v[0], v[1], v[2]) }

func toVec(v geom.Vec3) Vec { return Vec{v.X, v.Y, v.Z} }

// WallRequest holds the OnWall parameters of a Request.
type WallRequest struct {
	HeightMin     float64  `json:"height_min"`
	HeightMax     float64  `json:"height_max"`
	Types         []string `json:"types,omitempty"` // normal, external, virtual, external_virtual
	Placement     string   `json:"placement,omitempty"`
	LeftMargin    float64  `json:"left_margin,omitempty"`
	RightMargin   float64  `json:"right_margin,omitempty"`
	OnlyFullWall  bool     `json:"only_full_wall,omitempty"`
	NotOnFullWall bool     `json:"not_on_full_wall,omitempty"`
}

// RuleRequest is one rule of a Request.
type RuleRequest struct {
	Type          string  `json:"type"` // away_from_position, away_from_walls, away_from_other_objects
	Position      Vec     `json:"position,omitempty"`
	MinDistance   float64 `json:"min_distance"`
	WallHeightMin float64 `json:"wall_height_min,omitempty"`
}

// ConstraintRequest is one constraint of a Request.
type ConstraintRequest struct {
	Type        string  `json:"type"` // near_point, near_wall, away_from_walls, near_center, away_from_other_objects, away_from_point
	Position    Vec     `json:"position,omitempty"`
	MinDistance float64 `json:"min_distance,omitempty"`
	MaxDistance float64 `json:"max_distance,omitempty"`
	WallHeight  float64 `json:"wall_height,omitempty"`
	Virtual     bool    `json:"virtual,omitempty"`
}

// Request is the file form of a placement request. Dimensions are given as
// half extents.
type Request struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	HalfDims Vec    `json:"half_dims"`

	// ClearanceHalfDims defaults to HalfDims.
	ClearanceHalfDims *Vec `json:"clearance_half_dims,omitempty"`
	// BottomHalfDims sizes the floor object of on_edge and
	// on_floor_and_ceiling.
	BottomHalfDims    Vec  `json:"bottom_half_dims,omitempty"`

	Wall  *WallRequest `json:"wall,omitempty"`
	Shape string       `json:"shape,omitempty"`
	Slot  string       `json:"slot,omitempty"`

	AllowPartiallyInWall bool     `json:"allow_partially_in_wall,omitempty"`
	CheckOppositePos     bool     `json:"check_opposite_pos,omitempty"`
	PossiblePositions    bool     `json:"possible_positions,omitempty"`
	Ignore               []string `json:"ignore,omitempty"`
	Universe             *int8    `json:"universe,omitempty"`
	Flags                uint8    `json:"flags,omitempty"`

	Rules       []RuleRequest       `json:"rules,omitempty"`
	Constraints []ConstraintRequest `json:"constraints,omitempty"`
}

// Result is the file form of a solved request.
type Result struct {
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	Placed     bool        `json:"placed"`
	Position   Vec         `json:"position"`
	Right      Vec         `json:"right"`
	Up         Vec         `json:"up"`
	Forward    Vec         `json:"forward"`
	Rotation   [4]float64  `json:"rotation"` // x, y, z, w
	HalfDims   Vec         `json:"half_dims"`
	Universe   int8        `json:"universe"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// NewResult describes s after a Solve call.
func NewResult(s *SolvingInfos, placed bool) Result {
	r := Result{
		Name:       s.Name,
		Type:       s.Position.Type.String(),
		Placed:     placed,
		Universe:   s.Universe,
		Candidates: s.PossiblePos,
	}
	if placed {
		r.Rotation = [4]float64{s.Rot.Imag, s.Rot.Jmag, s.Rot.Kmag, s.Rot.Real}
		r.Position = toVec(s.Pos)
		r.Right = toVec(s.Rot.Rotate(geom.Left))
		r.Up = toVec(s.Rot.Rotate(geom.Up))
		r.Forward = toVec(s.Rot.Rotate(geom.Front))
		r.HalfDims = toVec(geom.Scale(0.5, s.Size))
	}
	return r
}

var wallTypeNames = map[string]WallType{
	"normal":           WallNormal,
	"external":         WallExternal,
	"virtual":          WallVirtual,
	"external_virtual": WallExternalVirtual,
	"any":              AnyWall,
}

var wallPlacementNames = map[string]WallPlacement{
	"":             WallAnywhere,
	"anywhere":     WallAnywhere,
	"near_floor":   WallNearFloor,
	"near_ceiling": WallNearCeiling,
	"near_surface": WallNearSurface,
}

// SolvingInfos converts r into a solver request.
func (r *Request) SolvingInfos() (*SolvingInfos, error) {
	if r.Name == "" {
		return nil, fmt.Errorf("request without name")
	}
	typ, err := ParsePositionType(r.Type)
	if err != nil {
		return nil, fmt.Errorf("request %q: %w", r.Name, err)
	}
	size := geom.Scale(2, r.HalfDims.vec3())
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("request %q: half_dims must be positive", r.Name)
	}

	s := NewSolvingInfos(r.Name, size)
	if r.ClearanceHalfDims != nil {
		s.ClearanceSize = geom.Scale(2, r.ClearanceHalfDims.vec3())
	}
	s.AllowPartiallyInWall = r.AllowPartiallyInWall
	s.CheckOppositePos = r.CheckOppositePos
	s.OnlyComputePossiblePos = r.PossiblePositions
	s.IgnoredSolvedBox = r.Ignore
	if r.Universe != nil {
		s.Universe = *r.Universe
	}
	s.Flags = r.Flags

	switch typ {
	case OnWall:
		w := r.Wall
		if w == nil {
			return nil, fmt.Errorf("request %q: on_wall needs wall parameters", r.Name)
		}
		types := AnyWall
		if len(w.Types) > 0 {
			types = 0
			for _, n := range w.Types {
				t, ok := wallTypeNames[strings.ToLower(n)]
				if !ok {
					return nil, fmt.Errorf("request %q: unknown wall type %q", r.Name, n)
				}
				types |= t
			}
		}
		s.SetPositionOnWall(w.HeightMin, w.HeightMax, types, w.LeftMargin, w.RightMargin)
		placement, ok := wallPlacementNames[strings.ToLower(w.Placement)]
		if !ok {
			return nil, fmt.Errorf("request %q: unknown wall placement %q", r.Name, w.Placement)
		}
		s.Position.Wall.Placement = placement
		s.Position.Wall.OnlyFullWall = w.OnlyFullWall
		s.Position.Wall.NotOnFullWall = w.NotOnFullWall
	case OnShape:
		s.SetPositionOnShape(r.Shape, r.Slot)
	case OnEdge:
		s.SetPositionOnEdge(geom.Scale(2, r.BottomHalfDims.vec3()))
	case OnFloorAndCeiling:
		s.SetPositionOnFloorAndCeiling(geom.Scale(2, r.BottomHalfDims.vec3()))
	default:
		s.Position.Type = typ
	}

	for i, rr := range r.Rules {
		rule, err := rr.rule()
		if err != nil {
			return nil, fmt.Errorf("request %q rule %d: %w", r.Name, i, err)
		}
		s.AddRule(rule)
	}
	for i, cr := range r.Constraints {
		c, err := cr.constraint()
		if err != nil {
			return nil, fmt.Errorf("request %q constraint %d: %w", r.Name, i, err)
		}
		s.AddConstraint(c)
	}
	return s, nil
}

func (rr RuleRequest) rule() (Rule, error) {
	switch rr.Type {
	case "away_from_position":
		return AwayFrom{Point: rr.Position.vec3(), DistMin: rr.MinDistance}, nil
	case "away_from_walls":
		return AwayFromWalls{DistMin: rr.MinDistance, WallHeightMin: rr.WallHeightMin}, nil
	case "away_from_other_objects":
		return AwayFromOtherObjects{DistMin: rr.MinDistance}, nil
	}
	return nil, fmt.Errorf("unknown rule type %q", rr.Type)
}

func (cr ConstraintRequest) constraint() (Constraint, error) {
	switch cr.Type {
	case "near_point":
		return NearOf{Point: cr.Position.vec3(), DistMin: cr.MinDistance, DistMax: cr.MaxDistance}, nil
	case "near_wall":
		return NearOfWall{Virtual: cr.Virtual, Height: cr.WallHeight, DistMin: cr.MinDistance, DistMax: cr.MaxDistance}, nil
	case "away_from_walls":
		return AwayFromWall{}, nil
	case "near_center":
		return NearOfCenter{DistMin: cr.MinDistance, DistMax: cr.MaxDistance}, nil
	case "away_from_other_objects":
		return AwayFromOtherObjectsScore{}, nil
	case "away_from_point":
		return AwayFromPoints{Points: []geom.Vec3{cr.Position.vec3()}}, nil
	}
	return nil, fmt.Errorf("unknown constraint type %q", cr.Type)
}

// LoadRequests reads a JSON array of requests from path.
func LoadRequests(path string) ([]Request, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("requests file must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read requests file: %w", err)
	}
	var reqs []Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("failed to parse requests JSON: %w", err)
	}
	return reqs, nil
}
