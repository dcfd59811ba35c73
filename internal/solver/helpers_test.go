package solver_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/roomscan/internal/geom"
	"github.com/banshee-data/roomscan/internal/scene"
	"github.com/banshee-data/roomscan/internal/solver"
	"github.com/banshee-data/roomscan/internal/topology"
)

const (
	voxel     = 0.1
	ground    = 0.05
	ceiling   = 2.45
	tableTop  = 0.75
	wallBase  = 0.1
	wallTop   = 2.3
	testSeed  = 7
	roomCells = 30
)

// tableRoom is a 3 m x 3 m room with walls, a ceiling and a 1 m x 1 m
// table labelled as a "table" shape over cells [10,20)x[10,20).
func tableRoom() *scene.RoomBuilder {
	return scene.NewRoomBuilder(voxel, roomCells, roomCells).
		Floor(ground).
		Ceiling(ceiling).
		Walls(wallBase, wallTop).
		Platform(scene.Platform{
			Name:  "table",
			Rect:  scene.CellRect{X0: 10, Z0: 10, X1: 20, Z1: 20},
			Top:   tableTop,
			Shape: "table",
			Slot:  "top",
		})
}

// flatFloor is a 4 m x 4 m floor with nothing else.
func flatFloor() *scene.RoomBuilder {
	return scene.NewRoomBuilder(voxel, 40, 40).Floor(ground)
}

func analyze(t *testing.T, rb *scene.RoomBuilder) *topology.Topology {
	t.Helper()
	topo, err := rb.Analyze(topology.DefaultConfig())
	require.NoError(t, err)
	return topo
}

func newSolver(t *testing.T, rb *scene.RoomBuilder) *solver.Solver {
	t.Helper()
	topo := analyze(t, rb)
	cfg := solver.DefaultConfig()
	cfg.Seed = testSeed
	sv := solver.New(topo, cfg, nil)
	sv.SetShapeProvider(rb.Shapes(topo))
	return sv
}

func cube(name string, edge float64) *solver.SolvingInfos {
	return solver.NewSolvingInfos(name, geom.V(edge, edge, edge))
}

// hdist is the horizontal distance between a and b.
func hdist(a, b geom.Vec3) float64 {
	return geom.Dist(geom.V(a.X, 0, a.Z), geom.V(b.X, 0, b.Z))
}
