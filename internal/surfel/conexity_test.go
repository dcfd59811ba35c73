package surfel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/roomscan/internal/geom"
)

func TestComputeConexityFlatFloor(t *testing.T) {
	b := newTestBoard(10, 10)
	addPlane(t, b, 0, 10, 0, 10, 0.05, DirUp, 0)

	require.NoError(t, b.ComputeConexity())
	assert.Equal(t, 1, b.ZoneCount())
	for s := range b.All() {
		assert.Equal(t, 0, s.ZoneID)
	}
}

func TestComputeConexitySeparatesHeightsAndDirections(t *testing.T) {
	b := newTestBoard(10, 10)
	addPlane(t, b, 0, 10, 0, 10, 0.05, DirUp, 0)
	addPlane(t, b, 2, 5, 2, 5, 0.75, DirUp, 0)
	addPlane(t, b, 0, 10, 0, 10, 2.45, DirDown, 0)

	require.NoError(t, b.ComputeConexity())
	assert.Len(t, partition(b), 3)

	floor := b.GetSurfel(0, 0, 0)
	table := b.GetSurfel(3, 7, 3)
	ceiling := b.GetSurfel(0, 24, 0)
	require.NotNil(t, floor)
	require.NotNil(t, table)
	require.NotNil(t, ceiling)
	assert.NotEqual(t, floor.ZoneID, table.ZoneID)
	assert.NotEqual(t, floor.ZoneID, ceiling.ZoneID)
}

func TestComputeConexityDropsSingletons(t *testing.T) {
	b := newTestBoard(10, 10)
	addPlane(t, b, 0, 4, 0, 4, 0.05, DirUp, 0)
	addPlane(t, b, 8, 9, 8, 9, 0.05, DirUp, 0)

	require.NoError(t, b.ComputeConexity())
	assert.Equal(t, NoZone, b.GetSurfel(8, 0, 8).ZoneID)
	assert.Equal(t, 0, b.GetSurfel(0, 0, 0).ZoneID)
}

func TestComputeConexitySkipsNoGameplay(t *testing.T) {
	b := newTestBoard(6, 6)
	addPlane(t, b, 0, 6, 0, 6, 0.05, DirUp, FlagNoGameplay)

	require.NoError(t, b.ComputeConexity())
	for s := range b.All() {
		assert.Equal(t, NoZone, s.ZoneID)
	}
}

func TestComputeConexityIdempotent(t *testing.T) {
	b := buildStep(t)
	addPlane(t, b, 12, 15, 2, 5, 0.55, DirUp, 0)

	require.NoError(t, b.ComputeConexity())
	first := partition(b)
	require.NoError(t, b.ComputeConexity())
	assert.Equal(t, first, partition(b))
}

func TestComputeConexityZoneLimit(t *testing.T) {
	b := newTestBoard(10, 10)
	b.ZoneLimit = 2
	addPlane(t, b, 0, 2, 0, 2, 0.05, DirUp, 0)
	addPlane(t, b, 4, 6, 4, 6, 0.55, DirUp, 0)
	addPlane(t, b, 8, 10, 8, 10, 1.05, DirUp, 0)

	err := b.ComputeConexity()
	require.Error(t, err)
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
	assert.True(t, errors.Is(err, ErrZoneLimit))
}

func TestComputeConexityZoneSurfelLimit(t *testing.T) {
	b := newTestBoard(10, 10)
	b.ZoneSurfelLimit = 4
	addPlane(t, b, 0, 10, 0, 10, 0.05, DirUp, 0)

	err := b.ComputeConexity()
	assert.True(t, errors.Is(err, ErrZoneSurfelLimit))
}

func TestCanGo(t *testing.T) {
	a := &Surfel{Normal: geom.Up, Point: geom.V(0, 0.05, 0)}
	tests := []struct {
		name string
		o    Surfel
		want bool
	}{
		{"level neighbour", Surfel{Normal: geom.Up, Point: geom.V(0.1, 0.05, 0)}, true},
		{"3 cm step", Surfel{Normal: geom.Up, Point: geom.V(0.1, 0.08, 0)}, true},
		{"5 cm step", Surfel{Normal: geom.Up, Point: geom.V(0.1, 0.10, 0)}, false},
		{"perpendicular", Surfel{Normal: geom.Left, Point: geom.V(0.1, 0.05, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.CanGo(&tt.o))
		})
	}
}
