// Package matrix: sentinel error set.
// All kernels return these sentinels and tests check them via errors.Is.
// Panics are reserved for programmer errors in private helpers.
package matrix

import "errors"

var (
	// ErrBadShape is returned when requested dimensions are non-positive.
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange indicates a row or column index outside valid bounds.
	// Public indexers (At/Set/Add) return this, they never panic.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between
	// operands, e.g. Mul where a.Cols != b.Rows or a vector of wrong length.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrNilMatrix indicates that a nil matrix was used.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrSingular is returned when no usable pivot remains during LU
	// factorization or inversion.
	ErrSingular = errors.New("matrix: singular matrix")
)
