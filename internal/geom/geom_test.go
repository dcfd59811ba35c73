package geom

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestNormalizeZero(t *testing.T) {
	assert.Equal(t, Zero, Normalize(Zero))
	assert.Equal(t, Zero, HNormalize(Up))
	assert.InDelta(t, 1.0, Norm(Normalize(V(3, 4, 0))), 1e-12)
}

func TestAxisAngleRotate(t *testing.T) {
	q := AxisAngle(Up, math.Pi/2)
	got := q.Rotate(Front)
	assert.True(t, ApproxEqual(got, Left, 1e-9), "got %v", got)

	assert.Equal(t, Identity, AxisAngle(Zero, 1))
	assert.Equal(t, Identity, AxisAngle(Up, 0))
}

func TestFromTo(t *testing.T) {
	tests := []struct {
		name     string
		from, to Vec3
	}{
		{"same", Front, Front},
		{"quarter", Front, Left},
		{"opposite", Front, Back},
		{"diagonal", Front, V(1, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := FromTo(tt.from, tt.to)
			got := q.Rotate(tt.from)
			want := Normalize(tt.to)
			if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("rotate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLookRotation(t *testing.T) {
	front := Normalize(V(1, 0, 1))
	q := LookRotation(front, Up)
	assert.True(t, ApproxEqual(q.Rotate(Front), front, 1e-9))
	assert.True(t, ApproxEqual(q.Rotate(Up), Up, 1e-9))
	assert.True(t, ApproxEqual(q.Rotate(Left), Cross(Up, front), 1e-9))

	// Degenerate up still yields a valid rotation.
	q = LookRotation(Up, Up)
	assert.True(t, ApproxEqual(q.Rotate(Front), Up, 1e-9))
}

func TestQuatInverse(t *testing.T) {
	q := AxisAngle(V(1, 2, 3), 0.7)
	v := V(0.3, -1, 2)
	got := q.Inverse().Rotate(q.Rotate(v))
	if diff := cmp.Diff(v, got, approx); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
	assert.True(t, q.Mul(q.Inverse()).ApproxEqual(Identity, 1e-9))
}

func TestYawSteps(t *testing.T) {
	steps := YawSteps(24)
	require.Len(t, steps, 24)
	assert.Equal(t, Identity, steps[0])
	assert.True(t, ApproxEqual(steps[6].Rotate(Front), Left, 1e-9))
}

func TestBuildBoxCorners(t *testing.T) {
	b := BuildBox(V(1, 2, 3), V(2, 4, 6), Identity)
	assert.Equal(t, V(2, 4, 0), b[0])
	assert.Equal(t, V(0, 4, 0), b[1])
	assert.Equal(t, V(0, 4, 6), b[2])
	assert.Equal(t, V(2, 4, 6), b[3])
	assert.Equal(t, V(2, 0, 0), b[4])
	assert.Equal(t, V(0, 0, 6), b[6])
}

func TestBoxCollide(t *testing.T) {
	unit := V(1, 1, 1)
	tests := []struct {
		name string
		p2   Vec3
		r2   Quat
		want bool
	}{
		{"overlap", V(0.5, 0, 0), Identity, true},
		{"touching face", V(1.001, 0, 0), Identity, false},
		{"far", V(5, 0, 0), Identity, false},
		{"contained", V(0, 0, 0), AxisAngle(Up, 0.3), true},
		{"rotated near corner", V(1.2, 0, 0), AxisAngle(Up, math.Pi/4), true},
		{"rotated clear", V(1.3, 0, 0), AxisAngle(Up, math.Pi/4), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b1 := BuildBox(Zero, unit, Identity)
			assert.Equal(t, tt.want, BoxCollide(Zero, unit, &b1, tt.p2, unit, tt.r2))
		})
	}
}

func TestBoxCollideSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rv := func(s float64) Vec3 {
		return V((rng.Float64()-0.5)*s, (rng.Float64()-0.5)*s, (rng.Float64()-0.5)*s)
	}
	for i := 0; i < 500; i++ {
		p1, p2 := rv(3), rv(3)
		s1 := Add(rv(1.5), V(1, 1, 1))
		s2 := Add(rv(1.5), V(1, 1, 1))
		q1 := AxisAngle(rv(1), rng.Float64()*math.Pi)
		q2 := AxisAngle(rv(1), rng.Float64()*math.Pi)

		b1 := BuildBox(p1, s1, q1)
		b2 := BuildBox(p2, s2, q2)
		ab := BoxCollide(p1, s1, &b1, p2, s2, q2)
		ba := BoxCollide(p2, s2, &b2, p1, s1, q1)
		require.Equal(t, ab, ba, "pair %d", i)
	}
}

func TestSegmentDist(t *testing.T) {
	s := NewSegment(Zero, V(2, 0, 0))
	assert.InDelta(t, 1.0, s.DistToPoint(V(1, 1, 0)), 1e-12)
	assert.InDelta(t, 1.0, s.DistToPoint(V(-1, 0, 0)), 1e-12)
	assert.InDelta(t, math.Sqrt2, s.DistToPoint(V(3, 1, 0)), 1e-12)
	assert.True(t, s.IntersectsSphere(V(1, 0.5, 0), 0.6))
	assert.False(t, s.IntersectsSphere(V(1, 2, 0), 0.6))
}

func TestQuadNearestPoint(t *testing.T) {
	q := Quad{V(0, 0, 0), V(2, 0, 0), V(2, 0, 2), V(0, 0, 2)}
	tests := []struct {
		name string
		p    Vec3
		want Vec3
	}{
		{"inside", V(1, 3, 1), V(1, 0, 1)},
		{"corner0", V(-1, 0, -1), V(0, 0, 0)},
		{"corner2", V(3, 0, 3), V(2, 0, 2)},
		{"edge", V(1, 0, -4), V(1, 0, 0)},
		{"side", V(5, 1, 1), V(2, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, q.NearestPoint(tt.p), approx); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestQuadRayCast(t *testing.T) {
	q := Quad{V(0, 1, 0), V(2, 1, 0), V(2, 1, 2), V(0, 1, 2)}

	p, ok := q.RayCast(V(1, 3, 1), Down, Up)
	require.True(t, ok)
	assert.True(t, ApproxEqual(p, V(1, 1, 1), 1e-9))

	_, ok = q.RayCast(V(1, 3, 1), Down, Down)
	assert.False(t, ok, "back face hit")

	_, ok = q.RayCast(V(5, 3, 1), Down, Up)
	assert.False(t, ok, "outside quad")

	_, ok = q.RayCast(V(1, 3, 1), Up, Up)
	assert.False(t, ok, "pointing away")
}

func TestEigen3Plane(t *testing.T) {
	var pts []Vec3
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			pts = append(pts, V(float64(x)*0.1, float64(y)*0.1, 2))
		}
	}
	vecs, vals := Eigen3(pts)
	assert.GreaterOrEqual(t, vals[0], vals[1])
	assert.GreaterOrEqual(t, vals[1], vals[2])
	assert.InDelta(t, 0, vals[2], 1e-12)

	n := Normalize(Cross(vecs[0], vecs[1]))
	assert.InDelta(t, 1, math.Abs(n.Z), 1e-9)
}

func TestEigen3Empty(t *testing.T) {
	vecs, vals := Eigen3(nil)
	assert.Equal(t, [3]float64{}, vals)
	assert.Equal(t, Left, vecs[0])
}
