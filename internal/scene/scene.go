package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/roomscan/internal/geom"
	"github.com/banshee-data/roomscan/internal/solver"
	"github.com/banshee-data/roomscan/internal/topology"
)

// maxSceneSize caps scene files.
const maxSceneSize = 4 * 1024 * 1024

// WallsSpec describes the four walls of a Scene.
type WallsSpec struct {
	Base    float64  `json:"base"`
	Top     float64  `json:"top"`
	Virtual []string `json:"virtual,omitempty"` // sides: min_x, max_x, min_z, max_z
}

// Scene is the JSON form of a room.
type Scene struct {
	VoxelSize float64     `json:"voxel_size"`
	Origin    [3]float64  `json:"origin,omitempty"`
	SizeX     int         `json:"size_x"`
	SizeZ     int         `json:"size_z"`
	Floor     *float64    `json:"floor,omitempty"`
	Ceiling   *float64    `json:"ceiling,omitempty"`
	Walls     *WallsSpec  `json:"walls,omitempty"`
	Platforms []Platform  `json:"platforms,omitempty"`
	Holes     []CellRect  `json:"holes,omitempty"`
	Center    *[3]float64 `json:"center,omitempty"`
}

// Load reads a scene file.
func Load(path string) (*Scene, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("scene file must have .json extension, got %q", ext)
	}
	fi, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat scene file: %w", err)
	}
	if fi.Size() > maxSceneSize {
		return nil, fmt.Errorf("scene file too large: %d bytes (max %d)", fi.Size(), maxSceneSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scene from JSON.
func Parse(data []byte) (*Scene, error) {
	var sc Scene
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	if sc.Floor == nil {
		return nil, fmt.Errorf("%w: no floor", ErrInvalidScene)
	}
	return &sc, nil
}

// Builder returns a RoomBuilder set up from the scene.
func (sc *Scene) Builder() (*RoomBuilder, error) {
	r := NewRoomBuilder(sc.VoxelSize, sc.SizeX, sc.SizeZ).
		Origin(geom.V(sc.Origin[0], sc.Origin[1], sc.Origin[2]))
	if sc.Floor != nil {
		r.Floor(*sc.Floor)
	}
	if sc.Ceiling != nil {
		r.Ceiling(*sc.Ceiling)
	}
	if w := sc.Walls; w != nil {
		r.Walls(w.Base, w.Top)
		for _, name := range w.Virtual {
			s, err := ParseSide(name)
			if err != nil {
				return nil, err
			}
			r.VirtualWall(s)
		}
	}
	for _, p := range sc.Platforms {
		r.Platform(p)
	}
	for _, h := range sc.Holes {
		r.Hole(h)
	}
	if sc.Center != nil {
		r.Center(geom.V(sc.Center[0], sc.Center[1], sc.Center[2]))
	}
	return r, r.validate()
}

// Shapes returns the labelled platforms of r as solver shapes. Slot
// surfaces are looked up in topo at the platform centre.
func (r *RoomBuilder) Shapes(topo *topology.Topology) solver.StaticShapes {
	byName := map[string]int{}
	var out solver.StaticShapes
	for _, p := range r.platforms {
		if p.Shape == "" {
			continue
		}
		i, ok := byName[p.Shape]
		if !ok {
			i = len(out)
			byName[p.Shape] = i
			out = append(out, solver.StaticShape{Name: p.Shape, Slots: map[string][]int{}})
		}
		rect := r.rectangle(p)
		out[i].Rectangles = append(out[i].Rectangles, rect)
		if si := topo.HigherSurfaceInBox(rect.Center, geom.V(0, r.voxel, 0)); si >= 0 {
			out[i].Slots[p.Slot] = append(out[i].Slots[p.Slot], si)
		}
	}
	return out
}

// rectangle returns the world rectangle of a platform top, its length
// along the longer side.
func (r *RoomBuilder) rectangle(p Platform) solver.Rectangle {
	lo := r.CellCenter(p.Rect.X0, p.Rect.Z0, p.Top)
	hi := r.CellCenter(p.Rect.X1-1, p.Rect.Z1-1, p.Top)
	c := geom.Scale(0.5, geom.Add(lo, hi))
	dx := float64(p.Rect.X1-p.Rect.X0) * r.voxel
	dz := float64(p.Rect.Z1-p.Rect.Z0) * r.voxel
	if dx >= dz {
		return solver.Rectangle{Center: c, LengthDir: geom.Left, Length: dx, Width: dz}
	}
	return solver.Rectangle{Center: c, LengthDir: geom.Front, Length: dz, Width: dx}
}
