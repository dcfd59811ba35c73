package topology

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/roomscan/internal/geom"
)

var approxVec = cmpopts.EquateApprox(0, 1e-6)

func TestRayCastHitsTable(t *testing.T) {
	topo := analyzeRoom(t)
	table := surfaceAt(t, topo, testTableY)

	hit, ok := topo.RayCast(geom.V(1.5, 2.0, 1.5), geom.Down)
	require.True(t, ok)
	assert.Equal(t, HitSurface, hit.Type)
	assert.Equal(t, topo.SurfaceIndexFromZoneID(table.ZoneID), hit.SurfaceIdx)
	assert.Equal(t, -1, hit.WallIdx)
	assert.InDelta(t, testTableY, hit.Pos.Y, 1e-9)
	assert.Equal(t, geom.Up, hit.Normal)
}

func TestRayCastHitsFloorBesideTable(t *testing.T) {
	topo := analyzeRoom(t)
	floor := surfaceAt(t, topo, testGround)

	hit, ok := topo.RayCast(geom.V(0.55, 2.0, 0.55), geom.Down)
	require.True(t, ok)
	assert.Equal(t, HitSurface, hit.Type)
	assert.Equal(t, topo.SurfaceIndexFromZoneID(floor.ZoneID), hit.SurfaceIdx)
	assert.InDelta(t, testGround, hit.Pos.Y, 1e-9)
}

func TestRayCastHitsWall(t *testing.T) {
	topo := analyzeRoom(t)

	hit, ok := topo.RayCast(geom.V(1.5, 1.2, 1.55), geom.Right)
	require.True(t, ok)
	require.Equal(t, HitWall, hit.Type)
	w := &topo.Walls[hit.WallIdx]
	assert.InDelta(t, 1, geom.Dot(w.Normal, geom.Left), 1e-6)
	assert.Equal(t, 15, hit.ColumnIdx)
	assert.True(t, cmp.Equal(geom.V(0.05, 1.2, 1.55), hit.Pos, approxVec), "hit %v", hit.Pos)
}

func TestRayCastMisses(t *testing.T) {
	topo := analyzeRoom(t)

	// Pointing out of the room through the ceiling's back face.
	_, ok := topo.RayCast(geom.V(1.5, 3.0, 1.5), geom.Up)
	assert.False(t, ok)
}

func TestCellPositionRoundTrip(t *testing.T) {
	topo := analyzeRoom(t)
	table := surfaceAt(t, topo, testTableY)

	for _, c := range []int{0, 7, 55, len(table.Cells) - 1} {
		p := topo.CellPosition(table, c)
		assert.InDelta(t, testTableY, p.Y, 1e-9)
		assert.Same(t, &table.Cells[c], topo.CellInSurface(table, p))
	}
	assert.Nil(t, topo.CellInSurface(table, geom.V(0.2, testTableY, 0.2)))
}

func TestNearestPoints(t *testing.T) {
	topo := analyzeRoom(t)
	table := surfaceAt(t, topo, testTableY)
	w := wallFacing(t, topo, geom.Left)

	p := topo.NearestPointOnSurface(table, geom.V(1.5, 2.0, 1.5))
	assert.True(t, cmp.Equal(geom.V(1.5, testTableY, 1.5), p, approxVec), "got %v", p)
	assert.InDelta(t, 1.25, topo.DistPointVsSurface(table, geom.V(1.5, 2.0, 1.5)), 1e-9)

	q := NearestPointOnWall(w, geom.V(1.0, 1.0, 1.0))
	assert.True(t, cmp.Equal(geom.V(0.05, 1.0, 1.0), q, approxVec), "got %v", q)
	assert.InDelta(t, 0.95, DistPointVsWall(w, geom.V(1.0, 1.0, 1.0)), 1e-6)

	// Above the wall top the nearest point sits on its top edge.
	q = NearestPointOnWall(w, geom.V(0.05, 3.0, 1.0))
	assert.InDelta(t, testWallTop, q.Y, 1e-6)
}

func TestWallColumnAt(t *testing.T) {
	w := &Wall{
		Tangent:   geom.Front,
		Up:        geom.Up,
		BaseStart: geom.V(0.05, 0.1, 0.2),
		Width:     1.0,
		Height:    2.0,
		Columns:   make([]WallColumn, 10),
	}
	tests := []struct {
		name string
		z    float64
		want int
		ok   bool
	}{
		{"first column", 0.25, 0, true},
		{"middle", 0.75, 5, true},
		{"last column", 1.15, 9, true},
		{"just before start", 0.19, -1, false},
		{"past end", 1.21, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := w.ColumnAt(geom.V(0.05, 1.0, tt.z))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, c)
		})
	}

	_, ok := (&Wall{Tangent: geom.Front}).ColumnAt(geom.Zero)
	assert.False(t, ok, "no columns")
}
