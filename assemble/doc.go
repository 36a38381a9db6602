// Package assemble turns a technology index plus exchange data into the
// matrices of a calculation: the technology matrix A, the intervention
// matrix B, the characterization matrix C, the demand vector, and the
// net-cost vector.
//
// What
//
//   - Assembler.Build walks the index column by column, evaluates
//     formula-driven amounts against the parameter table, applies
//     allocation, optionally resamples uncertain amounts, and places
//     each exchange by the sign conventions below.
//   - MatrixData carries the assembled matrices together with the
//     indices that address them.
//
// Sign conventions
//
//	The quantitative reference of a column (product output or waste
//	input) lands positive on the diagonal. Linked technosphere
//	exchanges land negative off-diagonal. Elementary inputs are stored
//	negative in B, outputs positive; characterization factors of input
//	rows are negated so that C·g stays positive.
//
// Degradation
//
//	A formula that fails to evaluate falls back to the literal amount
//	and records a Diagnostic; assembly never aborts on formula errors.
//
// Determinism
//
//	Flow rows are discovered in column order, so the same index and
//	source always produce the same row layout. Resampling draws only
//	from the *rand.Rand passed to Build.
package assemble
