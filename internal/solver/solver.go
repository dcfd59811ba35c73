package solver

import (
	"math/rand"

	"github.com/banshee-data/roomscan/internal/geom"
	"github.com/banshee-data/roomscan/internal/monitoring"
	"github.com/banshee-data/roomscan/internal/topology"
)

// Solver places objects in one topology snapshot and remembers what it
// placed.
type Solver struct {
	topo   *topology.Topology
	shapes ShapeProvider
	cfg    Config
	rng    *rand.Rand

	solved []SolvingInfos
}

// New returns a solver over topo. A nil rng is replaced by one seeded from
// cfg.Seed.
func New(topo *topology.Topology, cfg Config, rng *rand.Rand) *Solver {
	cfg = cfg.withDefaults()
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	return &Solver{topo: topo, cfg: cfg, rng: rng}
}

// SetShapeProvider sets the source of named shapes used by OnShape, OnEdge
// and UnderFurnitureEdge.
func (sv *Solver) SetShapeProvider(p ShapeProvider) { sv.shapes = p }

// SetTopology swaps the analysed room. Placed objects are kept.
func (sv *Solver) SetTopology(topo *topology.Topology) { sv.topo = topo }

// Topology returns the current snapshot.
func (sv *Solver) Topology() *topology.Topology { return sv.topo }

// Solve looks for a pose for s. On success it sets s.Pos and s.Rot and,
// unless only possible positions were requested, records s as a placed
// object. A request without any valid pose returns false with a nil error
// and leaves s.Pos and s.Rot unchanged. Errors are ConfigurationErrors.
func (sv *Solver) Solve(s *SolvingInfos) (bool, error) {
	if sv.topo == nil {
		return false, misuse(ErrNoTopology, "solving %q", s.Name)
	}
	s.PossiblePos = s.PossiblePos[:0]

	work := s.clone()
	ok, err := sv.computePos(&work)
	if err != nil {
		return false, err
	}
	if !ok {
		monitoring.Logf("solver: no %s position for %q", s.Position.Type, s.Name)
		return false, nil
	}

	switch {
	case work.OnlyComputePossiblePos:
		work.sortPossible()
		s.PossiblePos = work.PossiblePos
		monitoring.Logf("solver: %d %s positions for %q", len(s.PossiblePos), s.Position.Type, s.Name)
		return true, nil

	case s.Position.Type == OnEdge || s.Position.Type == OnFloorAndCeiling:
		// Both objects were stored by the strategy.
		work.PossiblePos = nil
		*s = work

	default:
		work.PossiblePos = nil
		work.applyFactor()
		*s = work
		s.Idx = sv.addSolved(s)
	}
	monitoring.Logf("solver: placed %q %s at (%.2f, %.2f, %.2f)", s.Name, s.Position.Type, s.Pos.X, s.Pos.Y, s.Pos.Z)
	return true, nil
}

func (sv *Solver) computePos(s *SolvingInfos) (bool, error) {
	switch s.Position.Type {
	case OnFloor:
		return sv.posOnSurfaces(s, sv.surfaces(func(f *topology.Surface) bool { return f.IsGround }), s.Size.Y/2), nil
	case OnCeiling:
		return sv.posOnSurfaces(s, sv.surfaces(func(f *topology.Surface) bool { return f.IsCeiling }), -s.Size.Y/2), nil
	case OnWall:
		return sv.posOnWall(s), nil
	case OnShape:
		if sv.shapes == nil {
			return false, misuse(ErrNoShapeProvider, "shape %q", s.Position.Shape.Shape)
		}
		idx := sv.shapes.SurfacesOnShape(s.Position.Shape.Shape, s.Position.Shape.Slot)
		return sv.posOnSurfaces(s, idx, s.Size.Y/2), nil
	case OnEdge:
		if s.OnlyComputePossiblePos {
			return false, misuse(ErrPossiblePosUnsupported, "%s", s.Position.Type)
		}
		return sv.posOnEdge(s), nil
	case OnFloorAndCeiling:
		if s.OnlyComputePossiblePos {
			return false, misuse(ErrPossiblePosUnsupported, "%s", s.Position.Type)
		}
		return sv.posOnFloorAndCeiling(s), nil
	case RandomInTheAir:
		return sv.posRandomInTheAir(s), nil
	case InTheMidAir:
		return sv.posInTheMidAir(s), nil
	case UnderFurnitureEdge:
		if sv.shapes == nil {
			return false, misuse(ErrNoShapeProvider, "%s", s.Position.Type)
		}
		return sv.posUnderFurnitureEdge(s), nil
	}
	return false, misuse(ErrUnknownPositionType, "%d", int(s.Position.Type))
}

// surfaces returns the indices of the surfaces matching keep.
func (sv *Solver) surfaces(keep func(*topology.Surface) bool) []int {
	var out []int
	for i := range sv.topo.Surfaces {
		if keep(&sv.topo.Surfaces[i]) {
			out = append(out, i)
		}
	}
	return out
}

// NbSolvedObjects returns the number of placed objects.
func (sv *Solver) NbSolvedObjects() int { return len(sv.solved) }

// SolvingInfos returns a copy of the placed object at idx.
func (sv *Solver) SolvingInfos(idx int) (SolvingInfos, bool) {
	if idx < 0 || idx >= len(sv.solved) {
		return SolvingInfos{}, false
	}
	return sv.solved[idx].clone(), true
}

// SetSolvingInfosAtIndex replaces the placed object at idx.
func (sv *Solver) SetSolvingInfosAtIndex(idx int, s *SolvingInfos) error {
	if idx < 0 || idx >= len(sv.solved) {
		return misuse(ErrIndexOutOfRange, "index %d of %d", idx, len(sv.solved))
	}
	sv.solved[idx] = s.clone()
	sv.solved[idx].computeWorldPos()
	return nil
}

// addSolved stores s, replacing an object of the same name and universe.
func (sv *Solver) addSolved(s *SolvingInfos) int {
	idx := -1
	for i := range sv.solved {
		if sv.solved[i].Universe == s.Universe && sv.solved[i].Name == s.Name {
			idx = i
			break
		}
	}
	if idx == -1 {
		idx = len(sv.solved)
		sv.solved = append(sv.solved, SolvingInfos{})
	}
	sv.solved[idx] = s.clone()
	sv.solved[idx].Idx = idx
	sv.solved[idx].computeWorldPos()
	return idx
}

// AddSolvedBox records an obstacle box that was placed by other means and
// returns its index.
func (sv *Solver) AddSolvedBox(pos, size geom.Vec3, rot geom.Quat, name string, universe int8, flags uint8) int {
	s := NewSolvingInfos(name, size)
	s.Pos = pos
	s.Rot = rot
	s.Universe = universe
	s.Flags = flags
	return sv.addSolved(s)
}

// RemoveSolvedBox deletes the placed object at idx. Later indices shift
// down by one.
func (sv *Solver) RemoveSolvedBox(idx int) error {
	if idx < 0 || idx >= len(sv.solved) {
		return misuse(ErrIndexOutOfRange, "index %d of %d", idx, len(sv.solved))
	}
	sv.solved = append(sv.solved[:idx], sv.solved[idx+1:]...)
	for i := idx; i < len(sv.solved); i++ {
		sv.solved[i].Idx = i
	}
	return nil
}

// RemoveByName deletes the first placed object called name and reports
// whether one was found.
func (sv *Solver) RemoveByName(name string) bool {
	for i := range sv.solved {
		if sv.solved[i].Name == name {
			_ = sv.RemoveSolvedBox(i)
			return true
		}
	}
	return false
}

// RemoveAllSolved forgets every placed object.
func (sv *Solver) RemoveAllSolved() { sv.solved = sv.solved[:0] }

// AllObjects returns copies of the placed objects visible from universe
// and, when flags is non-zero, carrying one of flags.
func (sv *Solver) AllObjects(universe int8, flags uint8) []SolvingInfos {
	var out []SolvingInfos
	for i := range sv.solved {
		o := &sv.solved[i]
		if flags != 0 && o.Flags&flags == 0 {
			continue
		}
		if !sameUniverse(universe, o.Universe) {
			continue
		}
		out = append(out, o.clone())
	}
	return out
}
