package topology

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/roomscan/internal/geom"
	"github.com/banshee-data/roomscan/internal/surfel"
)

const (
	testVoxel    = 0.1
	testSize     = 30
	testGround   = 0.05
	testCeiling  = 2.45
	testTableY   = 0.75
	testSeatY    = 0.45
	testBackY    = 0.85
	testWallBase = 0.1
	testWallTop  = 2.3
)

func center(x, z int, y float64) geom.Vec3 {
	return geom.V((float64(x)+0.5)*testVoxel, y, (float64(z)+0.5)*testVoxel)
}

func addSurfel(t *testing.T, b *surfel.Board, x, z int, p geom.Vec3, dir surfel.Direction) {
	t.Helper()
	iy := geom.RoundInt(p.Y / testVoxel)
	require.NoError(t, b.TryAddSurfel(x, iy, z, dir, p, dir.Normal(), 0))
}

func addStack(t *testing.T, b *surfel.Board, x, z int, face geom.Vec3, dir surfel.Direction) {
	t.Helper()
	n := geom.RoundInt((testWallTop - testWallBase) / testVoxel)
	for k := 0; k <= n; k++ {
		p := face
		p.Y = testWallBase + float64(k)*testVoxel
		addSurfel(t, b, x, z, p, dir)
	}
}

// buildRoom returns a zoned 3 m x 3 m room: floor, ceiling, four walls and
// a floating 1 m x 1 m table at 0.75 m over cells [10,20)x[10,20).
func buildRoom(t *testing.T) *surfel.Board {
	t.Helper()
	return furnishedRoom(t, func(x, z int) (float64, bool) {
		return testTableY, x >= 10 && x < 20 && z >= 10 && z < 20
	})
}

// buildCouchRoom replaces the table with a couch facing -Z: a seat at 0.45 m
// over [8,22)x[10,15) and a back at 0.85 m over [8,22)x[15,18).
func buildCouchRoom(t *testing.T) *surfel.Board {
	t.Helper()
	return furnishedRoom(t, func(x, z int) (float64, bool) {
		if x < 8 || x >= 22 {
			return 0, false
		}
		switch {
		case z >= 10 && z < 15:
			return testSeatY, true
		case z >= 15 && z < 18:
			return testBackY, true
		}
		return 0, false
	})
}

// furnishedRoom builds the walled room with one floating upward surfel per
// cell where furniture reports a height.
func furnishedRoom(t *testing.T, furniture func(x, z int) (float64, bool)) *surfel.Board {
	t.Helper()
	b := surfel.NewBoard(geom.Zero, testVoxel, testSize, testSize, 30)
	for z := 0; z < testSize; z++ {
		for x := 0; x < testSize; x++ {
			addSurfel(t, b, x, z, center(x, z, testGround), surfel.DirUp)
			addSurfel(t, b, x, z, center(x, z, testCeiling), surfel.DirDown)
			if y, ok := furniture(x, z); ok {
				addSurfel(t, b, x, z, center(x, z, y), surfel.DirUp)
			}
		}
	}
	last := testSize - 1
	lo, hi := 0.5*testVoxel, (float64(last)+0.5)*testVoxel
	for i := 0; i < testSize; i++ {
		// Wall ends sit 3 cm off the cell centres so that the wall width is
		// not a whole number of voxels.
		a := (float64(i) + 0.5) * testVoxel
		switch i {
		case 0:
			a -= 0.03
		case last:
			a += 0.03
		}
		addStack(t, b, 0, i, geom.V(lo, 0, a), surfel.DirLeft)
		addStack(t, b, last, i, geom.V(hi, 0, a), surfel.DirRight)
		addStack(t, b, i, 0, geom.V(a, 0, lo), surfel.DirFront)
		addStack(t, b, i, last, geom.V(a, 0, hi), surfel.DirBack)
	}
	require.NoError(t, b.ComputeConexity())
	return b
}

func analyzeRoom(t *testing.T) *Topology {
	t.Helper()
	return analyzeBoard(t, buildRoom(t))
}

func analyzeBoard(t *testing.T, b *surfel.Board) *Topology {
	t.Helper()
	topo, err := Analyze(Input{Board: b, YGround: testGround, YCeiling: testCeiling}, DefaultConfig())
	require.NoError(t, err)
	return topo
}

// surfaceAt returns the surface closest to height y.
func surfaceAt(t *testing.T, topo *Topology, y float64) *Surface {
	t.Helper()
	for i := range topo.Surfaces {
		s := &topo.Surfaces[i]
		if s.WorldHeight > y-testVoxel/2 && s.WorldHeight < y+testVoxel/2 {
			return s
		}
	}
	require.FailNow(t, "no surface", "height %.2f", y)
	return nil
}

// wallFacing returns the wall whose normal is closest to n.
func wallFacing(t *testing.T, topo *Topology, n geom.Vec3) *Wall {
	t.Helper()
	for i := range topo.Walls {
		if geom.Dot(topo.Walls[i].Normal, n) > 0.9 {
			return &topo.Walls[i]
		}
	}
	require.FailNow(t, "no wall", "normal %v", n)
	return nil
}

// localIndex is the cell index of board cell (x, z) in s.
func localIndex(s *Surface, x, z int) int {
	return (z-s.MinPos2D.Y)*s.SizeX() + (x - s.MinPos2D.X)
}
