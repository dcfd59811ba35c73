package topology

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
)

const sequenceTolerance = 0.01

// pairFits reports whether rectangle cur may follow prev in a chain.
type pairFits func(prev, cur RectPos, i int) bool

// chainRectangles picks one floor position per rectangle so that every
// consecutive pair satisfies fits. Candidates come from
// AllRectanglePosOnFloor and are tried in order, last rectangle first.
func (t *Topology) chainRectangles(widths, lengths []float64, fits pairFits) ([]RectPos, bool) {
	n := len(lengths)
	if n == 0 || len(widths) != n {
		return nil, false
	}
	cands := make([][]RectPos, n)
	for i := range cands {
		cands[i] = t.AllRectanglePosOnFloor(widths[i], lengths[i])
		if len(cands[i]) == 0 {
			return nil, false
		}
	}

	try := make([]int, n)
	from := 1
	for {
		bad := -1
		for i := from; i < n; i++ {
			if !fits(cands[i-1][try[i-1]], cands[i][try[i]], i) {
				bad = i
				break
			}
		}
		if bad < 0 {
			out := make([]RectPos, n)
			for i := range out {
				out[i] = cands[i][try[i]]
			}
			return out, true
		}

		for i := bad + 1; i < n; i++ {
			try[i] = 0
		}
		for i := bad; ; i-- {
			try[i] = (try[i] + 1) % len(cands[i])
			if try[i] != 0 {
				from = max(i, 1)
				break
			}
			if i == 0 {
				return nil, false
			}
		}
	}
}

// inLine reports cur straight ahead of prev, same direction, without overlap.
func inLine(prev, cur RectPos, prevLength, length float64) bool {
	d := geom.Sub(cur.Pos, prev.Pos)
	side := geom.Cross(geom.Down, prev.LengthDir)
	return math.Abs(1-geom.Dot(prev.LengthDir, cur.LengthDir)) <= sequenceTolerance &&
		math.Abs(geom.Dot(side, d)) <= sequenceTolerance &&
		geom.Dot(prev.LengthDir, d) >= prevLength/2+length/2
}

// FindAlignedRectangles places the rectangles on the floor one after the
// other along a shared direction. It returns their centers and the
// direction of the line.
func (t *Topology) FindAlignedRectangles(widths, lengths []float64) ([]geom.Vec3, geom.Vec3, bool) {
	chain, ok := t.chainRectangles(widths, lengths, func(prev, cur RectPos, i int) bool {
		return inLine(prev, cur, lengths[i-1], lengths[i])
	})
	if !ok {
		return nil, geom.Zero, false
	}
	pos := make([]geom.Vec3, len(chain))
	for i, r := range chain {
		pos[i] = r.Pos
	}
	return pos, chain[0].LengthDir, true
}

// FindRectanglesSequence places the rectangles on the floor so that each
// one either continues the previous one in line or turns a right angle
// past its end.
func (t *Topology) FindRectanglesSequence(widths, lengths []float64) ([]RectPos, bool) {
	return t.chainRectangles(widths, lengths, func(prev, cur RectPos, i int) bool {
		if inLine(prev, cur, lengths[i-1], lengths[i]) {
			return true
		}
		d := geom.Sub(cur.Pos, prev.Pos)
		return math.Abs(geom.Dot(prev.LengthDir, cur.LengthDir)) <= sequenceTolerance &&
			geom.Dot(prev.LengthDir, d) >= lengths[i-1]/2+widths[i]/2 &&
			geom.Dot(cur.LengthDir, d) >= lengths[i]/2+widths[i-1]/2
	})
}
