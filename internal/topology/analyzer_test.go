package topology

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/roomscan/internal/geom"
	"github.com/banshee-data/roomscan/internal/surfel"
)

func TestAnalyzeRequiresBoard(t *testing.T) {
	_, err := Analyze(Input{}, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoBoard)
}

func TestAnalyzeRoomSurfaces(t *testing.T) {
	topo := analyzeRoom(t)
	require.Len(t, topo.Surfaces, 3)

	floor := surfaceAt(t, topo, testGround)
	table := surfaceAt(t, topo, testTableY)
	ceiling := surfaceAt(t, topo, testCeiling)

	assert.True(t, floor.IsGround)
	assert.False(t, floor.IsCeiling)
	assert.Equal(t, geom.Vec2i{X: 0, Y: 0}, floor.MinPos2D)
	assert.Equal(t, geom.Vec2i{X: testSize - 1, Y: testSize - 1}, floor.MaxPos2D)
	assert.Equal(t, testSize*testSize, floor.NbCell)

	assert.False(t, table.IsGround)
	assert.InDelta(t, testTableY-testGround, table.HeightFromGround, 1e-9)
	assert.Equal(t, geom.Vec2i{X: 10, Y: 10}, table.MinPos2D)
	assert.Equal(t, geom.Vec2i{X: 19, Y: 19}, table.MaxPos2D)

	assert.True(t, ceiling.IsCeiling)
	assert.InDelta(t, 100*testVoxel*testVoxel, table.Area, 1e-9)
}

func TestAnalyzeDoesNotAliasBoard(t *testing.T) {
	b := buildRoom(t)
	topo, err := Analyze(Input{Board: b, YGround: testGround, YCeiling: testCeiling}, DefaultConfig())
	require.NoError(t, err)

	b.Empty()
	assert.False(t, topo.Board().IsEmpty())
}

func TestDropSmallSurfaces(t *testing.T) {
	b := surfel.NewBoard(geom.Zero, testVoxel, 10, 10, 20)
	for z := 0; z < 10; z++ {
		for x := 0; x < 10; x++ {
			addSurfel(t, b, x, z, center(x, z, testGround), surfel.DirUp)
		}
	}
	// 4x4 shelf: 16 cells, at the drop threshold.
	for z := 2; z < 6; z++ {
		for x := 2; x < 6; x++ {
			addSurfel(t, b, x, z, center(x, z, 1.05), surfel.DirUp)
		}
	}
	// 1-wide strip.
	for x := 0; x < 8; x++ {
		addSurfel(t, b, x, 8, center(x, 8, 0.55), surfel.DirUp)
	}
	require.NoError(t, b.ComputeConexity())

	topo, err := Analyze(Input{Board: b, YGround: testGround, YCeiling: 2.0}, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, topo.Surfaces, 1)
	assert.True(t, topo.Surfaces[0].IsGround)
}

func TestBorderDistanceChamfer(t *testing.T) {
	topo := analyzeRoom(t)
	for si := range topo.Surfaces {
		s := &topo.Surfaces[si]
		sx, sy := s.SizeX(), s.SizeY()
		for c := range s.Cells {
			cell := &s.Cells[c]
			if !cell.IsValid() {
				continue
			}
			x, y := c%sx, c/sx
			if x == 0 || y == 0 || x == sx-1 || y == sy-1 {
				assert.EqualValues(t, 1, cell.DistFromBorder, "surface %d cell %d", si, c)
			}
			for _, n := range CellNeighbors(s, c) {
				nc := s.CellAtGrid(n)
				if nc == nil || !nc.IsValid() {
					continue
				}
				assert.LessOrEqual(t, cell.DistFromBorder, nc.DistFromBorder+1, "surface %d cell %d", si, c)
			}
		}
	}
}

func TestCellFields(t *testing.T) {
	topo := analyzeRoom(t)
	floor := surfaceAt(t, topo, testGround)
	table := surfaceAt(t, topo, testTableY)

	tests := []struct {
		name  string
		cell  *CellInfo
		check func(t *testing.T, c *CellInfo)
	}{
		{"floor against wall", &floor.Cells[localIndex(floor, 0, 15)], func(t *testing.T, c *CellInfo) {
			assert.EqualValues(t, 0, c.DistFromWall)
		}},
		{"floor next to wall", &floor.Cells[localIndex(floor, 2, 15)], func(t *testing.T, c *CellInfo) {
			assert.EqualValues(t, 2, c.DistFromWall)
		}},
		{"floor under table", &floor.Cells[localIndex(floor, 15, 15)], func(t *testing.T, c *CellInfo) {
			assert.Less(t, c.SpaceToUp, uint32(10))
			assert.Greater(t, c.SpaceToUp, uint32(5))
		}},
		{"table edge", &table.Cells[localIndex(table, 10, 15)], func(t *testing.T, c *CellInfo) {
			assert.EqualValues(t, 1, c.DistFromVoid)
			assert.EqualValues(t, 1, c.DistFromFloor)
			assert.EqualValues(t, uint32(NoDist), c.DistFromWall)
		}},
		{"table middle", &table.Cells[localIndex(table, 14, 14)], func(t *testing.T, c *CellInfo) {
			assert.EqualValues(t, 5, c.DistFromVoid)
			assert.EqualValues(t, 5, c.DistFromBorder)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { tt.check(t, tt.cell) })
	}
}

func TestNeighborsAndGroups(t *testing.T) {
	topo := analyzeRoom(t)
	floorIdx := topo.SurfaceIndexFromZoneID(surfaceAt(t, topo, testGround).ZoneID)
	tableIdx := topo.SurfaceIndexFromZoneID(surfaceAt(t, topo, testTableY).ZoneID)

	assert.Contains(t, topo.Surfaces[tableIdx].Neighbors, floorIdx)
	assert.Contains(t, topo.Surfaces[floorIdx].Neighbors, tableIdx)
	assert.Equal(t, [][]int{{tableIdx}}, topo.Groups)

	assert.Equal(t, []int{0}, topo.GroupsAwayFromWalls(0.5, 1.0))
	assert.Empty(t, topo.GroupsAwayFromWalls(1.0, 2.0))
}

func TestRoomCenter(t *testing.T) {
	topo := analyzeRoom(t)
	want := geom.V(1.5, testGround+1.6, 1.5)
	assert.True(t, cmp.Equal(want, topo.RoomCenter, cmpopts.EquateApprox(0, 0.2)), "room center %v", topo.RoomCenter)
}

func TestRoomCenterFallsBackToPlaySpaceCenter(t *testing.T) {
	b := surfel.NewBoard(geom.Zero, testVoxel, 10, 10, 20)
	for z := 0; z < 10; z++ {
		for x := 0; x < 10; x++ {
			addSurfel(t, b, x, z, center(x, z, testGround), surfel.DirUp)
		}
	}
	require.NoError(t, b.ComputeConexity())

	in := Input{Board: b, YGround: testGround, YCeiling: testCeiling, Center: geom.V(0.3, 0, 0.7)}
	topo, err := Analyze(in, DefaultConfig())
	require.NoError(t, err)
	assert.InDelta(t, 0.3, topo.RoomCenter.X, 1e-9)
	assert.InDelta(t, 0.7, topo.RoomCenter.Z, 1e-9)
	assert.InDelta(t, testGround+1.6, topo.RoomCenter.Y, 1e-9)
}
