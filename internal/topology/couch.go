package topology

import (
	"math"
	"sort"

	"github.com/banshee-data/roomscan/internal/geom"
)

// maxDirectionPairs bounds the point pairs averaged by DominantDirection.
const maxDirectionPairs = 512

// DominantDirection returns the main axis of a set of points together with
// its length, the largest distance between two points. The axis is the
// difference of the mean positions of the two ends of the farthest pairs;
// it is not normalised. Fewer than two distinct points give a zero axis.
func DominantDirection(points []geom.Vec3) (geom.Vec3, float64) {
	type pair struct {
		a, b geom.Vec3
		d2   float64
	}
	// Sorted by decreasing distance; equal distances keep discovery order.
	var far []pair
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			d2 := geom.Dist2(points[i], points[j])
			if d2 <= 0 {
				continue
			}
			k := sort.Search(len(far), func(k int) bool { return d2 > far[k].d2 })
			if k >= maxDirectionPairs {
				continue
			}
			far = append(far, pair{})
			copy(far[k+1:], far[k:])
			far[k] = pair{a: points[i], b: points[j], d2: d2}
			if len(far) > maxDirectionPairs {
				far = far[:maxDirectionPairs]
			}
		}
	}
	if len(far) == 0 {
		return geom.Zero, 0
	}

	length := math.Sqrt(far[0].d2)
	beyond := geom.Madd(far[0].a, 20000, geom.Sub(far[0].b, far[0].a))

	ends := make([]geom.Vec3, 0, 2*len(far))
	for _, p := range far {
		ends = append(ends, p.a, p.b)
	}
	sort.SliceStable(ends, func(i, j int) bool {
		return geom.Dist2(beyond, ends[i]) < geom.Dist2(beyond, ends[j])
	})

	n := len(far)
	var near, away geom.Vec3
	for i := 0; i < n; i++ {
		near = geom.Add(near, ends[i])
		away = geom.Add(away, ends[n+i])
	}
	return geom.Scale(1/float64(n), geom.Sub(away, near)), length
}

// CouchParams bounds the surfaces Couches accepts. Heights are measured
// from the ground; the seat area is in square meters.
type CouchParams struct {
	SeatHeightMin, SeatHeightMax float64
	BackHeightMin, BackHeightMax float64
	SeatAreaMin                  float64
}

// DefaultCouchParams returns the bands of an ordinary sofa.
func DefaultCouchParams() CouchParams {
	return CouchParams{
		SeatHeightMin: 0.3,
		SeatHeightMax: 0.6,
		BackHeightMin: 0.6,
		BackHeightMax: 1.2,
		SeatAreaMin:   0.5,
	}
}

// Couch is a surface group made of seats and higher backs.
type Couch struct {
	// Pos is the mean of the seat cells.
	Pos geom.Vec3
	// Normal is horizontal and points away from the back.
	Normal geom.Vec3
	Length float64
	Width  float64
	Seat   []int
	Back   []int
}

// openCell reports a cell that is neither void nor against a wall.
func openCell(c *CellInfo) bool { return c.DistFromVoid != 0 && c.DistFromWall != 0 }

// openCells appends the positions of the open cells of the given surfaces.
func (t *Topology) openCells(surfaces []int, out []geom.Vec3) []geom.Vec3 {
	for _, si := range surfaces {
		s := &t.Surfaces[si]
		for c := range s.Cells {
			if openCell(&s.Cells[c]) {
				out = append(out, t.CellPosition(s, c))
			}
		}
	}
	return out
}

func mean(ps []geom.Vec3) geom.Vec3 {
	var sum geom.Vec3
	for _, p := range ps {
		sum = geom.Add(sum, p)
	}
	return geom.Scale(1/float64(len(ps)), sum)
}

// Couches returns the surface groups that look like a couch: every surface
// is either a back or a seat, there is at least one of each, and the seat
// area reaches p.SeatAreaMin and is at least the back area. A surface in
// both bands counts as a back.
func (t *Topology) Couches(p CouchParams) []Couch {
	var out []Couch
	for _, group := range t.Groups {
		var seat, back []int
		seatArea, backArea := 0.0, 0.0
		for _, si := range group {
			s := &t.Surfaces[si]
			h := s.HeightFromGround
			switch {
			case h >= p.BackHeightMin && h <= p.BackHeightMax:
				back = append(back, si)
				backArea += t.SurfaceArea(s)
			case h >= p.SeatHeightMin && h <= p.SeatHeightMax:
				seat = append(seat, si)
				seatArea += t.SurfaceArea(s)
			}
		}
		if len(seat)+len(back) != len(group) || len(seat) == 0 || len(back) == 0 ||
			seatArea < p.SeatAreaMin || seatArea < backArea {
			continue
		}

		backCells := t.openCells(back, nil)
		seatCells := t.openCells(seat, nil)
		if len(backCells) == 0 || len(seatCells) == 0 {
			continue
		}
		backMean, seatMean := mean(backCells), mean(seatCells)

		dir, length := DominantDirection(seatCells)
		dir = geom.Normalize(dir)
		normal := geom.Cross(geom.Up, dir)
		if geom.Dot(normal, geom.Sub(backMean, seatMean)) > 0 {
			normal = geom.Neg(normal)
		}
		normal = geom.Normalize(normal)

		// Width is measured across the seat, through its mean.
		widest := -1.0
		for _, c := range seatCells {
			rel := geom.Sub(c, seatMean)
			if math.Abs(geom.Dot(dir, rel)) > 0.1 {
				continue
			}
			widest = math.Max(widest, geom.Norm2(rel))
		}
		if widest < 0 {
			continue
		}

		out = append(out, Couch{
			Pos:    seatMean,
			Normal: normal,
			Length: length,
			Width:  2 * math.Sqrt(widest),
			Seat:   seat,
			Back:   back,
		})
	}
	return out
}
