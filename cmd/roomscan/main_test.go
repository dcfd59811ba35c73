package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/roomscan/internal/config"
	"github.com/banshee-data/roomscan/internal/db"
	"github.com/banshee-data/roomscan/internal/monitoring"
)

const testScene = `{
  "voxel_size": 0.1,
  "size_x": 30,
  "size_z": 30,
  "floor": 0.05,
  "ceiling": 2.45,
  "walls": {"base": 0.1, "top": 2.3},
  "platforms": [
    {"name": "table", "rect": {"x0": 10, "z0": 10, "x1": 20, "z1": 20}, "top": 0.75, "shape": "table", "slot": "top"}
  ]
}`

const testRequests = `[
  {"name": "crate", "type": "on_floor", "half_dims": [0.15, 0.15, 0.15]},
  {"name": "vase", "type": "on_shape", "half_dims": [0.1, 0.1, 0.1], "shape": "table"},
  {"name": "wardrobe", "type": "on_floor", "half_dims": [5, 1, 5]}
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newRunConfig(t *testing.T, dir string) *config.RunConfig {
	t.Helper()
	cfg, err := config.LoadRunConfig(dir)
	require.NoError(t, err)
	cfg.Set("scenePath", writeFile(t, dir, "room.json", testScene))
	cfg.Set("requestsPath", writeFile(t, dir, "requests.json", testRequests))
	cfg.Set("seed", int64(3))
	cfg.Set("dbPath", "")
	return cfg
}

func TestRun(t *testing.T) {
	monitoring.SetLogger(t.Logf)
	t.Cleanup(func() { monitoring.SetLogger(nil) })

	for _, background := range []bool{false, true} {
		t.Run(map[bool]string{false: "inline", true: "job"}[background], func(t *testing.T) {
			dir := t.TempDir()
			cfg := newRunConfig(t, dir)
			cfg.Set("useJob", background)
			dbPath := filepath.Join(dir, "roomscan.db")
			cfg.Set("dbPath", dbPath)

			var out bytes.Buffer
			require.NoError(t, run(context.Background(), cfg, &out))

			var rep report
			require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
			assert.Positive(t, rep.Surfaces)
			assert.Positive(t, rep.Walls)
			assert.Positive(t, rep.Zones)
			require.Len(t, rep.Results, 3)
			assert.True(t, rep.Results[0].Placed)
			assert.True(t, rep.Results[1].Placed)
			assert.InDelta(t, 0.85, rep.Results[1].Position[1], 0.01)
			assert.False(t, rep.Results[2].Placed)
			require.NotEmpty(t, rep.SessionID)

			store, err := db.OpenDB(dbPath)
			require.NoError(t, err)
			defer store.Close()
			rows, err := store.ListPlacements(rep.SessionID)
			require.NoError(t, err)
			require.Len(t, rows, 3)
			assert.Equal(t, "crate", rows[0].Name)
			assert.Equal(t, [3]float64(rep.Results[0].Position), rows[0].Pos)
			assert.False(t, rows[2].Placed)
		})
	}
}

func TestRunRequiresScene(t *testing.T) {
	cfg, err := config.LoadRunConfig(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, run(context.Background(), cfg, &bytes.Buffer{}))
}

func TestRunSeedIsRepeatable(t *testing.T) {
	monitoring.SetLogger(nil)
	dir := t.TempDir()

	var a, b bytes.Buffer
	require.NoError(t, run(context.Background(), newRunConfig(t, dir), &a))
	require.NoError(t, run(context.Background(), newRunConfig(t, dir), &b))
	assert.JSONEq(t, a.String(), b.String())
}
