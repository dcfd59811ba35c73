package geom

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Eigen3 returns the eigenvectors and eigenvalues of the covariance of
// points about their barycentre, sorted by decreasing eigenvalue. The
// covariance is divided by len(points). An empty set or a failed
// factorization returns the canonical axes with zero eigenvalues.
func Eigen3(points []Vec3) (vectors [3]Vec3, values [3]float64) {
	vectors = [3]Vec3{Left, Up, Front}
	if len(points) == 0 {
		return vectors, values
	}

	var bary Vec3
	for _, p := range points {
		bary = Add(bary, p)
	}
	bary = Scale(1/float64(len(points)), bary)

	var c [3][3]float64
	for _, p := range points {
		d := [3]float64{p.X - bary.X, p.Y - bary.Y, p.Z - bary.Z}
		for i := 0; i < 3; i++ {
			for j := i; j < 3; j++ {
				c[i][j] += d[i] * d[j]
			}
		}
	}
	n := float64(len(points))
	sym := mat.NewSymDense(3, []float64{
		c[0][0] / n, c[0][1] / n, c[0][2] / n,
		c[0][1] / n, c[1][1] / n, c[1][2] / n,
		c[0][2] / n, c[1][2] / n, c[2][2] / n,
	})

	var es mat.EigenSym
	if !es.Factorize(sym, true) {
		return vectors, values
	}
	vals := es.Values(nil)
	var ev mat.Dense
	es.VectorsTo(&ev)

	idx := []int{0, 1, 2}
	sort.Slice(idx, func(a, b int) bool { return vals[idx[a]] > vals[idx[b]] })
	for k, i := range idx {
		values[k] = vals[i]
		vectors[k] = Vec3{X: ev.At(0, i), Y: ev.At(1, i), Z: ev.At(2, i)}
	}
	return vectors, values
}
