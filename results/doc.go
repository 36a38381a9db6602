// Package results exposes calculation outputs as providers: views over
// the solved system that map index positions to scaling, direct,
// upstream, total, and contribution values.
//
// What
//
//   - Simple: the inventory surface — scaling vector, total
//     requirements, total flows g, total impacts h, total costs.
//   - Full: the contribution surface on top of Simple — per-column
//     solutions, loop and total factors, direct/upstream splits.
//     Two implementations: Eager inverts A up front; Lazy memoises
//     per-column solves and computes the same numbers on demand.
//
// Sign adoption
//
//	Matrices keep inputs negative. Every reported flow value flips
//	input rows to positive; the flip negates only non-zero values so
//	no -0 leaks out. SignedFlows bypasses adoption for callers that
//	feed results back into matrices.
//
// Consistency
//
//	Lazy memoisation is idempotent: repeated calls return the same
//	numbers as the eager path within floating-point reproducibility,
//	and identical slices across calls during the provider's lifetime.
//	Returned slices are views; callers must not mutate them.
package results
