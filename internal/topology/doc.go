// Package topology owns the structural analysis of a zoned surfel board.
//
// Responsibilities: extraction of horizontal Surfaces and vertical Walls,
// per-cell distance fields (border, wall, void, floor), surface neighbours
// and groups, the room center, ray casting, and the read-only spatial
// queries used by the placement solver.
// Key types: Topology, Surface, CellInfo, Wall, WallColumn, Job.
//
// Analyze produces an immutable *Topology snapshot that holds its own copy
// of the board. A snapshot is safe for concurrent reads.
package topology
