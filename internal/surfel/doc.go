// Package surfel owns the surfel board: a 2D grid of cells, each holding a
// height-ordered chain of oriented surface samples ("surfels").
//
// Responsibilities: surfel storage and replacement policy, zone
// connectivity (ComputeConexity), step-down reachability (CanGoDown),
// basin filtering, gameplay filters, ground/ceiling zone search and voxel
// ray casting.
// Key types: Board, Surfel, Direction, Flags.
//
// Surfels live in an arena owned by the Board; cells store the index of
// their first surfel. Pointers returned by the board stay valid until the
// next TryAddSurfel, Empty or Flush.
package surfel
