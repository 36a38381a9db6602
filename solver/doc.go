// Package solver abstracts the linear-algebra operations the
// calculation pipeline needs, so the result providers never commit to a
// factorisation strategy.
//
// What
//
//   - Solver: the operation set — solve A·s=f, single-column solves,
//     inversion, dense products, matrix-vector products.
//   - Dense: the in-package implementation over the matrix kernels,
//     with factorisation reuse across calls on the same matrix.
//
// Determinism
//
//	Identical inputs produce identical outputs; nothing here consumes
//	randomness.
package solver
