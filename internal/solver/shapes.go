package solver

import (
	"github.com/banshee-data/roomscan/internal/geom"
)

// Rectangle is a flat rectangular slot of a recognised shape, such as a
// table top. LengthDir is horizontal.
type Rectangle struct {
	Center    geom.Vec3
	LengthDir geom.Vec3
	Length    float64
	Width     float64
}

// WidthDir returns the horizontal direction across the rectangle.
func (r Rectangle) WidthDir() geom.Vec3 { return geom.Cross(r.LengthDir, geom.Down) }

// ShapeProvider exposes the furniture found by a shape recognition layer.
type ShapeProvider interface {
	// SurfacesOnShape returns the topology surface indices of a shape slot.
	// An empty slot selects every slot of the shape.
	SurfacesOnShape(shape, slot string) []int
	// ShapeRectangles returns the rectangular slots of every shape named
	// shape.
	ShapeRectangles(shape string) []Rectangle
}

// StaticShape is one named shape with its slots.
type StaticShape struct {
	Name       string
	Slots      map[string][]int
	Rectangles []Rectangle
}

// StaticShapes is a fixed ShapeProvider, used when shapes are given by a
// scene file instead of a recogniser.
type StaticShapes []StaticShape

func (ss StaticShapes) SurfacesOnShape(shape, slot string) []int {
	var out []int
	for _, s := range ss {
		if s.Name != shape {
			continue
		}
		for name, idx := range s.Slots {
			if slot == "" || slot == name {
				out = append(out, idx...)
			}
		}
	}
	return out
}

func (ss StaticShapes) ShapeRectangles(shape string) []Rectangle {
	var out []Rectangle
	for _, s := range ss {
		if s.Name == shape {
			out = append(out, s.Rectangles...)
		}
	}
	return out
}
