// Package solver places boxes in an analysed room.
//
// A Solver holds one topology snapshot and the list of objects it has
// already placed. Each Solve call enumerates candidate poses for one
// request, drops those that collide with placed objects or break a Rule,
// scores the rest with the request's Constraints and keeps the best. Ties
// are broken with the solver's own random source so runs are reproducible
// from a seed.
//
// Solve is not safe for concurrent use.
package solver
