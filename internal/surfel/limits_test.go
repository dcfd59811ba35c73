package surfel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/roomscan/internal/geom"
)

func TestSearchHorizontalLimit(t *testing.T) {
	b := newTestBoard(12, 12)
	addPlane(t, b, 0, 12, 0, 12, 0.05, DirUp, 0)
	addPlane(t, b, 0, 12, 0, 12, 2.45, DirDown, 0)
	// Small table: too few surfels to be a candidate.
	addPlane(t, b, 3, 6, 3, 6, 0.75, DirUp, 0)
	require.NoError(t, b.ComputeConexity())

	ground, ok := b.SearchHorizontalLimit(false)
	require.True(t, ok)
	assert.Equal(t, b.GetSurfel(0, 0, 0).ZoneID, ground.Zone)
	assert.InDelta(t, 0.05, ground.Height, 1e-9)
	assert.Equal(t, 144, ground.Count)

	ceiling, ok := b.SearchHorizontalLimit(true)
	require.True(t, ok)
	assert.Equal(t, b.GetSurfel(0, 24, 0).ZoneID, ceiling.Zone)
	assert.InDelta(t, 2.45, ceiling.Height, 1e-9)
}

func TestSearchHorizontalLimitPrefersLargestNearExtremum(t *testing.T) {
	tests := []struct {
		name      string
		platformY float64
		wantLarge bool
	}{
		{"platform within 1 m wins on count", 0.85, true},
		{"platform above 1 m is excluded", 1.55, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBoard(30, 10)
			addPlane(t, b, 0, 20, 0, 10, tt.platformY, DirUp, 0)
			addPlane(t, b, 20, 30, 0, 10, 0.05, DirUp, 0)
			require.NoError(t, b.ComputeConexity())

			large := b.GetSurfel(0, geom.FloorInt(tt.platformY/testCell), 0).ZoneID
			small := b.GetSurfel(29, 0, 0).ZoneID
			ground, ok := b.SearchHorizontalLimit(false)
			require.True(t, ok)
			if tt.wantLarge {
				assert.Equal(t, large, ground.Zone)
				assert.Equal(t, 200, ground.Count)
			} else {
				assert.Equal(t, small, ground.Zone)
				assert.Equal(t, 100, ground.Count)
			}
		})
	}
}

func TestSearchHorizontalLimitNone(t *testing.T) {
	b := newTestBoard(4, 4)
	addPlane(t, b, 0, 4, 0, 4, 0.05, DirUp, 0)
	require.NoError(t, b.ComputeConexity())

	_, ok := b.SearchHorizontalLimit(false)
	assert.False(t, ok)
}

func TestSearchHorizontalLimitIgnoresVirtual(t *testing.T) {
	b := newTestBoard(12, 12)
	addPlane(t, b, 0, 12, 0, 12, 0.05, DirUp, FlagVirtual)
	require.NoError(t, b.ComputeConexity())

	_, ok := b.SearchHorizontalLimit(false)
	assert.False(t, ok)
}

func TestRayCastVoxel(t *testing.T) {
	b := newTestBoard(20, 10)
	addPlane(t, b, 0, 20, 0, 10, 0.05, DirUp, 0)
	for z := 0; z < 10; z++ {
		// A wall at x = 1.0 facing -X, occupying column 10.
		addFace(t, b, 10, z, 0.15, 2.0, DirRight, geom.V(1.0, 0, (float64(z)+0.5)*testCell))
	}
	require.NoError(t, b.ComputeConexity())

	t.Run("hits wall", func(t *testing.T) {
		hit, ok := b.RayCastVoxel(geom.V(0.25, 1.0, 0.5), geom.V(1.75, 1.0, 0.5))
		require.True(t, ok)
		assert.InDelta(t, 1.0, hit.Pos.X, 1e-9)
		assert.InDelta(t, 1.0, hit.Pos.Y, 1e-9)
		require.NotNil(t, hit.Surfel)
		assert.Equal(t, DirRight, hit.Surfel.Dir)
		assert.Equal(t, hit.Surfel.ZoneID, hit.Zone)
	})
	t.Run("back faces are ignored", func(t *testing.T) {
		_, ok := b.RayCastVoxel(geom.V(1.75, 1.0, 0.5), geom.V(0.25, 1.0, 0.5))
		assert.False(t, ok)
	})
	t.Run("stops short of wall", func(t *testing.T) {
		_, ok := b.RayCastVoxel(geom.V(0.25, 1.0, 0.5), geom.V(0.85, 1.0, 0.5))
		assert.False(t, ok)
	})
	t.Run("hits floor from above", func(t *testing.T) {
		hit, ok := b.RayCastVoxel(geom.V(0.35, 1.0, 0.35), geom.V(0.35, -1.0, 0.35))
		require.True(t, ok)
		assert.InDelta(t, 0.1, hit.Pos.Y, 1e-9)
	})
	t.Run("degenerate segment", func(t *testing.T) {
		_, ok := b.RayCastVoxel(geom.V(0.3, 1, 0.3), geom.V(0.3, 1, 0.3))
		assert.False(t, ok)
	})
}
