package topology

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/roomscan/internal/geom"
)

func near(ps []geom.Vec3, want geom.Vec3) bool {
	for _, p := range ps {
		if geom.Dist(p, want) < 1e-6 {
			return true
		}
	}
	return false
}

func TestSurfaceLookups(t *testing.T) {
	topo := analyzeRoom(t)
	floorIdx := topo.SurfaceIndexFromZoneID(surfaceAt(t, topo, testGround).ZoneID)
	tableIdx := topo.SurfaceIndexFromZoneID(surfaceAt(t, topo, testTableY).ZoneID)

	assert.GreaterOrEqual(t, topo.SurfaceFromPos(geom.V(1.5, 0, 1.5)), 0)
	assert.Equal(t, -1, topo.SurfaceFromPos(geom.V(5, 0, 5)))

	box := geom.V(0.5, 1.0, 0.5)
	assert.Equal(t, tableIdx, topo.HigherSurfaceInBox(geom.V(1.5, 0.5, 1.5), box))
	assert.Equal(t, floorIdx, topo.HigherSurfaceInBox(geom.V(0.5, 0.5, 0.5), box))
	assert.Equal(t, -1, topo.HigherSurfaceInBox(geom.V(1.5, 1.5, 1.5), geom.V(0.5, 0.2, 0.5)))
	assert.Equal(t, -1, topo.SurfaceIndexFromZoneID(9999))
}

func TestAllRectanglePos(t *testing.T) {
	topo := analyzeRoom(t)
	table := surfaceAt(t, topo, testTableY)

	narrow := topo.AllRectanglePos(0.4, 0.6, table)
	require.NotEmpty(t, narrow)
	for _, r := range narrow {
		assert.InDelta(t, 1, geom.Norm(r.LengthDir), 1e-9)
		assert.InDelta(t, 0, r.LengthDir.Y, 1e-9)
		assert.InDelta(t, testTableY, r.Pos.Y, 1e-9)
		assert.InDelta(t, 1.5, r.Pos.X, 0.35)
		assert.InDelta(t, 1.5, r.Pos.Z, 0.35)
	}

	swapped := topo.AllRectanglePos(0.6, 0.4, table)
	require.Len(t, swapped, len(narrow))
	for i := range swapped {
		assert.Equal(t, narrow[i].Pos, swapped[i].Pos)
		assert.InDelta(t, 0, geom.Dot(narrow[i].LengthDir, swapped[i].LengthDir), 1e-9)
	}

	assert.Empty(t, topo.AllRectanglePos(1.2, 1.2, table))

	onFloor := topo.AllRectanglePosOnFloor(0.4, 0.6)
	require.NotEmpty(t, onFloor)
	for _, r := range onFloor {
		assert.InDelta(t, testGround, r.Pos.Y, 1e-9)
	}
}

func TestAllPosOnFloor(t *testing.T) {
	topo := analyzeRoom(t)
	floor := surfaceAt(t, topo, testGround)

	ps := topo.AllPosOnFloor(0.4, 1.0)
	require.NotEmpty(t, ps)
	assert.True(t, near(ps, topo.CellPosition(floor, localIndex(floor, 5, 5))))
	for _, p := range ps {
		underTable := math.Abs(p.X-1.5) < 0.55 && math.Abs(p.Z-1.5) < 0.55
		assert.False(t, underTable, "position %v under the table", p)
	}

	// Without a height constraint the table footprint is usable.
	assert.True(t, near(topo.AllPosOnFloor(0.4, 0), topo.CellPosition(floor, localIndex(floor, 15, 15))))
}

func TestLargestPosOnFloor(t *testing.T) {
	topo := analyzeRoom(t)
	ps := topo.LargestPosOnFloor()
	require.Len(t, ps, 4)
	for _, p := range ps {
		assert.InDelta(t, 1.5, p.X, 0.051)
		assert.InDelta(t, 1.5, p.Z, 0.051)
	}
}

func TestAllPosOnSurface(t *testing.T) {
	topo := analyzeRoom(t)
	table := surfaceAt(t, topo, testTableY)
	assert.Len(t, topo.AllPosOnSurface(table, 0.4), 36)
	assert.Empty(t, topo.AllPosOnSurface(table, 2.0))
}

func TestAllPosOnSurfaceInSphere(t *testing.T) {
	topo := analyzeRoom(t)

	center := geom.V(1.5, testTableY, 1.5)
	ps := topo.AllPosOnSurfaceInSphere(center, 0.3, 0.2)
	require.NotEmpty(t, ps)
	for _, p := range ps {
		assert.InDelta(t, testTableY, p.Y, 1e-9)
		assert.LessOrEqual(t, geom.Dist(p, center), 0.3+1e-9)
	}

	ps = topo.AllPosOnSurfaceInSphere(geom.V(0.5, testGround, 0.5), 0.25, 0.2)
	require.NotEmpty(t, ps)
	for _, p := range ps {
		assert.InDelta(t, testGround, p.Y, 1e-9)
	}

	assert.Empty(t, topo.AllPosOnSurfaceInSphere(geom.V(1.5, 1.3, 1.5), 0.3, 0.2))
}

func TestCellIsVisibleFromPlayspaceCenter(t *testing.T) {
	topo := analyzeRoom(t)
	assert.True(t, topo.CellIsVisibleFromPlayspaceCenter(geom.V(0.2, testGround, 0.2)))
	assert.False(t, topo.CellIsVisibleFromPlayspaceCenter(geom.V(-0.3, 0, 1.5)))
}

func TestRectangleIsInPlaySpace(t *testing.T) {
	topo := analyzeRoom(t)
	quarter := geom.AxisAngle(geom.Up, math.Pi/2)

	tests := []struct {
		name string
		pos  geom.Vec2
		rot  geom.Quat
		want bool
	}{
		{"centered", geom.Vec2{X: 1.5, Y: 1.5}, geom.Identity, true},
		{"past the edge", geom.Vec2{X: 2.8, Y: 1.5}, geom.Identity, false},
		{"near the edge", geom.Vec2{X: 0.6, Y: 1.5}, geom.Identity, true},
		{"rotated past the edge", geom.Vec2{X: 0.6, Y: 1.5}, quarter, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := topo.RectangleIsInPlaySpace(tt.pos, geom.Vec2{X: 1, Y: 2}, tt.rot)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaxYInRectangle(t *testing.T) {
	topo := analyzeRoom(t)
	size := geom.Vec2{X: 0.4, Y: 0.4}

	assert.InDelta(t, testTableY, topo.MaxYInRectangle(geom.Vec2{X: 1.5, Y: 1.5}, size, geom.Identity, 0.2, 2.0), 1e-9)
	assert.InDelta(t, 0.2, topo.MaxYInRectangle(geom.Vec2{X: 0.5, Y: 0.5}, size, geom.Identity, 0.2, 2.0), 1e-9)
	assert.InDelta(t, testGround, topo.MaxYInRectangle(geom.Vec2{X: 0.5, Y: 0.5}, size, geom.Identity, 0, 2.0), 1e-9)
}

func TestDistNearestBorderOnGround(t *testing.T) {
	topo := analyzeRoom(t)
	floor := surfaceAt(t, topo, testGround)

	d, same := topo.DistNearestBorderOnGround(topo.CellPosition(floor, localIndex(floor, 14, 14)))
	assert.InDelta(t, 15, d, 1e-9)
	assert.Equal(t, 3, same)

	d, same = topo.DistNearestBorderOnGround(geom.V(1, 2, 3))
	assert.InDelta(t, -1, d, 1e-9)
	assert.Zero(t, same)
}

func TestDominantDirection(t *testing.T) {
	var line []geom.Vec3
	for i := 0; i <= 10; i++ {
		line = append(line, geom.V(float64(i)*0.1, 0.5, 1))
	}
	dir, length := DominantDirection(line)
	assert.InDelta(t, 1.0, length, 1e-9)
	assert.Greater(t, math.Abs(dir.X), 0.5)
	assert.InDelta(t, 0, dir.Y, 1e-9)
	assert.InDelta(t, 0, dir.Z, 1e-9)

	for _, pts := range [][]geom.Vec3{nil, {geom.Up}, {geom.Up, geom.Up}} {
		dir, length = DominantDirection(pts)
		assert.Equal(t, geom.Zero, dir)
		assert.Zero(t, length)
	}
}

func TestCouches(t *testing.T) {
	couchTopo := analyzeBoard(t, buildCouchRoom(t))
	huge := DefaultCouchParams()
	huge.SeatAreaMin = 50

	tests := []struct {
		name   string
		topo   *Topology
		params CouchParams
		found  bool
	}{
		{"couch", couchTopo, DefaultCouchParams(), true},
		{"table is no couch", analyzeRoom(t), DefaultCouchParams(), false},
		{"seat too small", couchTopo, huge, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			couches := tt.topo.Couches(tt.params)
			if !tt.found {
				assert.Empty(t, couches)
				return
			}
			require.Len(t, couches, 1)
			c := couches[0]
			seat := surfaceAt(t, tt.topo, testSeatY)
			back := surfaceAt(t, tt.topo, testBackY)
			assert.Equal(t, []int{tt.topo.SurfaceIndexFromZoneID(seat.ZoneID)}, c.Seat)
			assert.Equal(t, []int{tt.topo.SurfaceIndexFromZoneID(back.ZoneID)}, c.Back)
			assert.True(t, geom.ApproxEqual(geom.V(1.5, testSeatY, 1.25), c.Pos, 0.02), "pos %v", c.Pos)
			assert.True(t, geom.ApproxEqual(geom.Back, c.Normal, 1e-6), "normal %v", c.Normal)
			assert.InDelta(t, 1.36, c.Length, 0.02)
			assert.InDelta(t, 0.41, c.Width, 0.02)
		})
	}
}

func TestFindAlignedRectangles(t *testing.T) {
	topo := analyzeRoom(t)
	tests := []struct {
		name    string
		widths  []float64
		lengths []float64
		found   bool
	}{
		{"two benches", []float64{0.4, 0.4}, []float64{0.6, 0.8}, true},
		{"single", []float64{0.4}, []float64{0.6}, true},
		{"longer than the room", []float64{0.4, 0.4}, []float64{2.5, 2.5}, false},
		{"no candidate", []float64{0.4}, []float64{5}, false},
		{"mismatched", []float64{0.4}, []float64{0.6, 0.8}, false},
		{"empty", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, dir, ok := topo.FindAlignedRectangles(tt.widths, tt.lengths)
			require.Equal(t, tt.found, ok)
			if !ok {
				assert.Nil(t, pos)
				return
			}
			require.Len(t, pos, len(tt.lengths))
			assert.InDelta(t, 1, geom.Norm(dir), 1e-6)
			for i := 1; i < len(pos); i++ {
				d := geom.Sub(pos[i], pos[i-1])
				assert.InDelta(t, 0, geom.Dot(geom.Cross(geom.Down, dir), d), 0.01)
				assert.GreaterOrEqual(t, geom.Dot(dir, d), (tt.lengths[i-1]+tt.lengths[i])/2-1e-9)
			}
		})
	}
}

func TestFindRectanglesSequence(t *testing.T) {
	topo := analyzeRoom(t)
	widths, lengths := []float64{0.4, 0.4}, []float64{2.0, 2.0}

	_, _, ok := topo.FindAlignedRectangles(widths, lengths)
	assert.False(t, ok, "two 2 m benches cannot share a line in a 3 m room")

	seq, ok := topo.FindRectanglesSequence(widths, lengths)
	require.True(t, ok)
	require.Len(t, seq, 2)
	d0, d1 := seq[0].LengthDir, seq[1].LengthDir
	step := geom.Sub(seq[1].Pos, seq[0].Pos)
	assert.InDelta(t, 0, geom.Dot(d0, d1), 0.01)
	assert.GreaterOrEqual(t, geom.Dot(d0, step), 1.2-1e-9)
	assert.GreaterOrEqual(t, geom.Dot(d1, step), 1.2-1e-9)

	_, ok = topo.FindRectanglesSequence([]float64{0.4}, []float64{2.0, 2.0})
	assert.False(t, ok)
}
