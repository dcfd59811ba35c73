package solver

import (
	"math"

	"github.com/banshee-data/roomscan/internal/geom"
)

// pose is a candidate kept in a tie set. pos2 is the linked bottom object
// of two-object placements; the clearance fields follow poses whose
// clearance box was stretched to an opposite wall or ceiling.
type pose struct {
	pos, pos2   geom.Vec3
	rot         geom.Quat
	clearSize   geom.Vec3
	clearCenter geom.Vec3
	oppositePos geom.Vec3
}

// ties keeps every candidate whose score is within geom.Eps of the best
// seen. A strictly better score drops the current set.
type ties struct {
	best  float64
	poses []pose
}

func (t *ties) offer(score float64, p pose) {
	if score > t.best {
		t.poses = t.poses[:0]
	}
	if len(t.poses) == 0 || math.Abs(score-t.best) < geom.Eps {
		t.poses = append(t.poses, p)
		t.best = score
	}
}

func (t *ties) empty() bool { return len(t.poses) == 0 }

// pick draws one pose of the set uniformly.
func (sv *Solver) pick(t *ties) pose {
	return t.poses[sv.rng.Intn(len(t.poses))]
}

// startAt returns a random rotation offset in [0, n).
func (sv *Solver) startAt(n int) int {
	if n <= 1 {
		return 0
	}
	return sv.rng.Intn(n)
}
