// Package geom holds the vector, rotation and box primitives shared by the
// surfel board, the topology analyzer and the placement solver.
//
// Vectors are gonum r3.Vec values in a Y-up world frame: Left is +X,
// Front is +Z, Up is +Y. Rotations are unit quaternions backed by
// gonum's quat.Number.
package geom
