package topology

import (
	"github.com/banshee-data/roomscan/internal/geom"
	"github.com/banshee-data/roomscan/internal/monitoring"
	"github.com/banshee-data/roomscan/internal/surfel"
)

// Analyze builds a topology snapshot from a zoned board. The board is
// copied; the caller may reuse it once Analyze returns.
func Analyze(in Input, cfg Config) (*Topology, error) {
	if in.Board == nil {
		return nil, ErrNoBoard
	}
	return analyzeOwned(in.Board.Clone(), in, cfg), nil
}

// analyzeOwned runs the analysis on a board the snapshot takes ownership of.
func analyzeOwned(b *surfel.Board, in Input, cfg Config) *Topology {
	cfg = cfg.withDefaults()
	t := &Topology{
		VoxelSize: b.CellSize,
		YGround:   in.YGround,
		YCeiling:  in.YCeiling,
		MinPos:    b.Origin,
		MinPos2D:  geom.Vec2i{},
		MaxPos2D:  geom.Vec2i{X: b.SizeX - 1, Y: b.SizeY - 1},
		cfg:       cfg,
		board:     b,
	}
	t.AvailableMin, t.AvailableMax = in.MinAvailable, in.MaxAvailable
	if t.AvailableMin == geom.Zero && t.AvailableMax == geom.Zero {
		t.AvailableMin = b.Origin
		t.AvailableMax = geom.Add(b.Origin, geom.V(
			float64(b.SizeX)*b.CellSize,
			float64(b.SizeH)*b.CellSize,
			float64(b.SizeY)*b.CellSize))
	}
	t.PlaySpaceCenter = in.Center
	if t.PlaySpaceCenter == geom.Zero {
		t.PlaySpaceCenter = geom.Scale(0.5, geom.Add(t.AvailableMin, t.AvailableMax))
	}

	t.setupSurfaces()
	t.setupCeiling()
	t.dropSmallSurfaces()
	t.computeCellsInfo()
	t.setupNeighbors()
	t.setupSurfaceGroups()
	t.setupWalls()
	t.computeRoomCenter()

	monitoring.Logf("topology: %d surfaces, %d walls, %d groups, room center %.2f,%.2f,%.2f",
		len(t.Surfaces), len(t.Walls), len(t.Groups), t.RoomCenter.X, t.RoomCenter.Y, t.RoomCenter.Z)
	return t
}

// computeRoomCenter averages the ceiling cells visible from the play space
// center at eye level. Without any, the play space center is used.
func (t *Topology) computeRoomCenter() {
	eye := t.PlaySpaceCenter
	eye.Y = min(t.YGround+1.6, t.YCeiling-0.5)

	var sx, sz float64
	n := 0
	for i := range t.Surfaces {
		s := &t.Surfaces[i]
		if !s.IsCeiling {
			continue
		}
		for c := range s.Cells {
			cell := &s.Cells[c]
			if cell.DistFromVoid == 0 || cell.DistFromWall == 0 {
				continue
			}
			p := t.CellPosition(s, c)
			p.Y = eye.Y
			if _, hit := t.board.RayCastVoxel(eye, p); hit {
				continue
			}
			sx += p.X
			sz += p.Z
			n++
		}
	}

	t.RoomCenter = eye
	if n > 0 {
		t.RoomCenter.X = sx / float64(n)
		t.RoomCenter.Z = sz / float64(n)
	}
}
