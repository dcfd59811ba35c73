package db

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "roomscan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPragmasApplied(t *testing.T) {
	db := openTestDB(t)

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var busyTimeout, foreignKeys int
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	assert.Equal(t, 5000, busyTimeout)
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)
}

func TestEmbeddedMigrations(t *testing.T) {
	migFS, err := getMigrationsFS()
	require.NoError(t, err)
	entries, err := fs.ReadDir(migFS, ".")
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	db := openTestDB(t)
	version, dirty, err := db.MigrateVersion(migFS)
	require.NoError(t, err)
	assert.EqualValues(t, 2, version)
	assert.False(t, dirty)

	// Reopening an up-to-date database is a no-op.
	require.NoError(t, db.MigrateUp(migFS))

	require.NoError(t, db.MigrateDown(migFS))
	version, _, err = db.MigrateVersion(migFS)
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)

	var n int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='placements'").Scan(&n))
	assert.Zero(t, n)
}

func TestSessionLifecycle(t *testing.T) {
	db := openTestDB(t)

	s := &Session{Scene: "room.json", VoxelSize: 0.1, Surfaces: 3, Walls: 4, Zones: 2}
	require.NoError(t, db.CreateSession(s))
	assert.NotEmpty(t, s.ID)
	assert.NotZero(t, s.CreatedAtNs)

	got, err := db.GetSession(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	score := 0.75
	placements := []Placement{
		{SessionID: s.ID, Seq: 0, Name: "lamp", PositionType: "on_ceiling", Placed: true,
			Pos: [3]float64{1, 2.35, 1}, Rot: [4]float64{0, 0, 0, 1}, Size: [3]float64{0.2, 0.2, 0.2},
			Universe: 127, Score: &score},
		{SessionID: s.ID, Seq: 1, Name: "piano", PositionType: "on_floor",
			Size: [3]float64{2, 1, 1.5}, Universe: 1},
	}
	// Inserted out of order; listing follows Seq.
	require.NoError(t, db.RecordPlacement(&placements[1]))
	require.NoError(t, db.RecordPlacement(&placements[0]))

	list, err := db.ListPlacements(s.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, placements[0], list[0])
	assert.Equal(t, placements[1], list[1])
	assert.Nil(t, list[1].Score)

	sessions, err := db.ListSessions()
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	require.NoError(t, db.DeleteSession(s.ID))
	_, err = db.GetSession(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.DeleteSession(s.ID), ErrNotFound)

	list, err = db.ListPlacements(s.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "placements cascade with their session")
}

func TestRecordPlacementNeedsSession(t *testing.T) {
	db := openTestDB(t)
	err := db.RecordPlacement(&Placement{SessionID: "missing", Name: "x", PositionType: "on_floor"})
	assert.Error(t, err)
}
