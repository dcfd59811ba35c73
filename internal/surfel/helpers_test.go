package surfel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/roomscan/internal/geom"
)

const testCell = 0.1

func newTestBoard(sizeX, sizeZ int) *Board {
	return NewBoard(geom.Zero, testCell, sizeX, sizeZ, 40)
}

// cellCenter returns the world XZ centre of column (x, z) at height y.
func cellCenter(b *Board, x, z int, y float64) geom.Vec3 {
	return geom.V(b.Origin.X+(float64(x)+0.5)*b.CellSize, y, b.Origin.Z+(float64(z)+0.5)*b.CellSize)
}

// addPlane fills [x0,x1)x[z0,z1) with horizontal surfels at height y.
func addPlane(t *testing.T, b *Board, x0, x1, z0, z1 int, y float64, dir Direction, flags Flags) {
	t.Helper()
	iy := geom.FloorInt((y - b.Origin.Y) / b.CellSize)
	for z := z0; z < z1; z++ {
		for x := x0; x < x1; x++ {
			require.NoError(t, b.TryAddSurfel(x, iy, z, dir, cellCenter(b, x, z, y), dir.Normal(), flags))
		}
	}
}

// addFace stacks side surfels in column (x, z) from y0 to y1 (exclusive)
// with the given face position along the normal axis.
func addFace(t *testing.T, b *Board, x, z int, y0, y1 float64, dir Direction, face geom.Vec3) {
	t.Helper()
	for y := y0; y < y1-1e-9; y += b.CellSize {
		p := face
		p.Y = y
		iy := geom.FloorInt((y - b.Origin.Y) / b.CellSize)
		require.NoError(t, b.TryAddSurfel(x, iy, z, dir, p, dir.Normal(), 0))
	}
}

// buildStep builds two 10x10 floors side by side: the upper one on
// x in [0,10) at 2.05 m, the lower one on x in [10,20) at 0.05 m, joined by
// a cliff face at x = 1.0 facing +X.
func buildStep(t *testing.T) *Board {
	t.Helper()
	b := newTestBoard(20, 10)
	addPlane(t, b, 0, 10, 0, 10, 2.05, DirUp, 0)
	addPlane(t, b, 10, 20, 0, 10, 0.05, DirUp, 0)
	for z := 0; z < 10; z++ {
		addFace(t, b, 10, z, 0.15, 2.0, DirLeft, geom.V(1.0, 0, (float64(z)+0.5)*testCell))
	}
	return b
}

// partition returns the zone partition as a set of sorted surfel keys per
// zone, ignoring zone numbering.
func partition(b *Board) map[string]bool {
	byZone := map[int]string{}
	for s := range b.All() {
		if s.ZoneID >= 0 {
			// raster order is stable, so keys compare equal across runs
			byZone[s.ZoneID] += fmt.Sprintf("%d,%d,%d,%d;", s.X, s.Y, s.Z, s.Dir)
		}
	}
	out := map[string]bool{}
	for _, key := range byZone {
		out[key] = true
	}
	return out
}
