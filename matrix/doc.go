// Package matrix provides the mutable dense and sparse matrices and the
// deterministic linear-algebra kernels underneath the LCA calculation:
// technology and intervention matrices, LU factorization with partial
// pivoting, inversion, and matrix-vector products.
//
// What
//
//   - Dense: row-major float64 matrix with bounds-checked accessors,
//     column/row copies, in-place column updates, and diagonal extraction.
//   - Hash: a sparse accumulator keyed by (row, col) that grows on demand
//     and upgrades to a Dense once the final shape is known.
//   - Kernels: LU (Doolittle with partial pivoting), Solve, SolveColumn,
//     Inverse, Mul, MatVec.
//
// Why
//
//	The calculator (§ solve A·s = f), the result providers (columns of
//	A⁻¹, B·diag(s)) and the Monte-Carlo driver all reduce to these few
//	operations; keeping them in one dependency-free package lets every
//	consumer share the same numeric policy.
//
// Determinism
//
//	All kernels use fixed traversal orders and explicit row pivoting by
//	largest absolute value with ties resolved to the lowest row index.
//	Identical inputs produce identical outputs bit for bit.
//
// Errors
//
//   - ErrBadShape           non-positive construction dimensions.
//   - ErrOutOfRange         row/column index outside the matrix.
//   - ErrDimensionMismatch  incompatible operand shapes.
//   - ErrNonSquare          square input required.
//   - ErrNilMatrix          nil receiver or operand.
//   - ErrSingular           zero pivot column during factorization.
//
// All sentinels are matched with errors.Is; kernels wrap them with an
// operation tag at the facade only.
package matrix
