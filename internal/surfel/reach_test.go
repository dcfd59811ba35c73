package surfel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanGoDownIsDirectional(t *testing.T) {
	b := buildStep(t)
	require.NoError(t, b.ComputeConexity())

	upper := b.GetSurfel(9, 20, 5)
	lower := b.GetSurfel(10, 0, 5)
	require.NotNil(t, upper)
	require.NotNil(t, lower)
	require.NotEqual(t, upper.ZoneID, lower.ZoneID)

	t.Run("downhill reaches lower floor", func(t *testing.T) {
		zone, ok := b.CanGoDown(upper, StepRight)
		require.True(t, ok)
		assert.Equal(t, lower.ZoneID, zone)
	})
	t.Run("uphill is blocked by the riser", func(t *testing.T) {
		_, ok := b.CanGoDown(lower, StepLeft)
		assert.False(t, ok)
	})
	t.Run("walking off the board fails", func(t *testing.T) {
		_, ok := b.CanGoDown(upper, StepLeft)
		assert.False(t, ok)
		_, ok = b.CanGoDown(lower, StepRight)
		assert.False(t, ok)
	})
	t.Run("own zone ahead fails", func(t *testing.T) {
		inner := b.GetSurfel(5, 20, 5)
		require.NotNil(t, inner)
		_, ok := b.CanGoDown(inner, StepFront)
		assert.False(t, ok)
	})
}

func TestCanGoDownSmallStep(t *testing.T) {
	// A 5 cm step is too tall to merge the floors but has no riser: going
	// down works, going up is refused because the floors are not coplanar.
	b := newTestBoard(20, 6)
	addPlane(t, b, 0, 10, 0, 6, 0.10, DirUp, 0)
	addPlane(t, b, 10, 20, 0, 6, 0.05, DirUp, 0)
	require.NoError(t, b.ComputeConexity())

	high := b.GetSurfel(9, 1, 3)
	low := b.GetSurfel(10, 0, 3)
	require.NotNil(t, high)
	require.NotNil(t, low)
	require.NotEqual(t, high.ZoneID, low.ZoneID)

	zone, ok := b.CanGoDown(high, StepRight)
	require.True(t, ok)
	assert.Equal(t, low.ZoneID, zone)

	_, ok = b.CanGoDown(low, StepLeft)
	assert.False(t, ok)
}

func TestBasinFilter(t *testing.T) {
	b := buildStep(t)
	require.NoError(t, b.ComputeConexity())
	upper := b.GetSurfel(0, 20, 0).ZoneID
	lower := b.GetSurfel(19, 0, 0).ZoneID

	t.Run("lower pocket is a basin of the upper ground", func(t *testing.T) {
		basins := b.BasinFilter(upper)
		assert.Equal(t, []int{lower}, basins)
		for s := range b.All() {
			if s.ZoneID == lower {
				assert.True(t, s.IsBasin())
				assert.True(t, s.NoGameplay())
			}
			if s.ZoneID == upper {
				assert.False(t, s.IsBasin())
			}
		}
	})
}

func TestBasinFilterFromLowerGround(t *testing.T) {
	b := buildStep(t)
	require.NoError(t, b.ComputeConexity())
	lower := b.GetSurfel(19, 0, 0).ZoneID

	// Stepping down from the upper floor reaches the lower one.
	assert.Empty(t, b.BasinFilter(lower))
	for s := range b.All() {
		assert.False(t, s.IsBasin())
	}
}

func TestBasinFilterUnknownGround(t *testing.T) {
	b := buildStep(t)
	require.NoError(t, b.ComputeConexity())
	assert.Nil(t, b.BasinFilter(999))
}
