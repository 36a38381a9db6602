// Package matrix: deterministic linear-algebra kernels.
// All kernels operate on *Dense and return the package sentinels,
// wrapped with an operation tag at the facade.
package matrix

import (
	"fmt"
	"math"
)

// Operation tags for unified error wrapping.
const (
	opFactor      = "Factor"
	opSolve       = "Solve"
	opSolveColumn = "SolveColumn"
	opInverse     = "Inverse"
	opMul         = "Mul"
	opMatVec      = "MatVec"
)

// kernelErrorf wraps err with an operation tag, preserving errors.Is.
func kernelErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// LUFactors holds a reusable LU factorization P·A = L·U with partial
// pivoting. L is unit lower triangular, U upper triangular; both are
// packed into one matrix, with the permutation kept separately.
//
// Factor once, then solve against as many right-hand sides as needed:
// the calculator reuses one factorization for the scaling vector and
// every per-product solution.
type LUFactors struct {
	lu   *Dense
	perm []int
}

// Factor computes the pivoted LU factorization of a square matrix.
// Stage 1 (Validate): non-nil, square input.
// Stage 2 (Eliminate): for each column, pivot on the largest absolute
// value at or below the diagonal (ties to the lowest row index), swap,
// then eliminate below the pivot.
//
// Determinism: the pivot scan order is fixed, so identical inputs yield
// identical factors and permutations.
// Errors: ErrNilMatrix, ErrNonSquare, ErrSingular (zero pivot column).
// Complexity: O(n³) time, O(n²) space.
func Factor(a *Dense) (*LUFactors, error) {
	if a == nil {
		return nil, kernelErrorf(opFactor, ErrNilMatrix)
	}
	if a.rows != a.cols {
		return nil, kernelErrorf(opFactor, ErrNonSquare)
	}
	n := a.rows
	lu := a.Clone()
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	var k, i, j, p int
	var maxAbs, v, pivot float64
	for k = 0; k < n; k++ {
		// pivot scan: largest |lu[i][k]| for i >= k, lowest index wins ties
		maxAbs, p = 0, k
		for i = k; i < n; i++ {
			v = math.Abs(lu.data[i*n+k])
			if v > maxAbs {
				maxAbs, p = v, i
			}
		}
		if maxAbs == 0 {
			return nil, kernelErrorf(opFactor, ErrSingular)
		}
		if p != k {
			swapRows(lu, k, p)
			perm[k], perm[p] = perm[p], perm[k]
		}
		pivot = lu.data[k*n+k]
		for i = k + 1; i < n; i++ {
			lu.data[i*n+k] /= pivot
			v = lu.data[i*n+k]
			if v == 0 {
				continue
			}
			for j = k + 1; j < n; j++ {
				lu.data[i*n+j] -= v * lu.data[k*n+j]
			}
		}
	}
	return &LUFactors{lu: lu, perm: perm}, nil
}

// swapRows exchanges rows a and b of m in place.
func swapRows(m *Dense, a, b int) {
	ra := m.data[a*m.cols : (a+1)*m.cols]
	rb := m.data[b*m.cols : (b+1)*m.cols]
	for i := range ra {
		ra[i], rb[i] = rb[i], ra[i]
	}
}

// Size returns the dimension of the factored system.
func (f *LUFactors) Size() int { return len(f.perm) }

// SolveVec solves A·x = b using the stored factors.
// Stage 1 (Permute + forward): y = L⁻¹·P·b, top-down.
// Stage 2 (Backward): x = U⁻¹·y, bottom-up.
// Complexity: O(n²) per right-hand side.
func (f *LUFactors) SolveVec(b []float64) ([]float64, error) {
	n := f.Size()
	if len(b) != n {
		return nil, kernelErrorf(opSolve, ErrDimensionMismatch)
	}
	x := make([]float64, n)
	var i, k int
	var sum float64
	// forward substitution on the permuted right-hand side
	for i = 0; i < n; i++ {
		sum = b[f.perm[i]]
		for k = 0; k < i; k++ {
			sum -= f.lu.data[i*n+k] * x[k]
		}
		x[i] = sum
	}
	// backward substitution
	for i = n - 1; i >= 0; i-- {
		sum = x[i]
		for k = i + 1; k < n; k++ {
			sum -= f.lu.data[i*n+k] * x[k]
		}
		x[i] = sum / f.lu.data[i*n+i]
	}
	return x, nil
}

// SolveUnit solves A·x = v·e_j, the single-column demand the result
// providers use for per-product solutions. Complexity: O(n²).
func (f *LUFactors) SolveUnit(j int, v float64) ([]float64, error) {
	n := f.Size()
	if j < 0 || j >= n {
		return nil, kernelErrorf(opSolveColumn, ErrOutOfRange)
	}
	b := make([]float64, n)
	b[j] = v
	return f.SolveVec(b)
}

// Solve computes x with a·x = b through a one-shot factorization.
// Errors: ErrNilMatrix, ErrNonSquare, ErrSingular, ErrDimensionMismatch.
// Complexity: O(n³).
func Solve(a *Dense, b []float64) ([]float64, error) {
	f, err := Factor(a)
	if err != nil {
		return nil, err
	}
	return f.SolveVec(b)
}

// SolveColumn computes x with a·x = v·e_j through a one-shot factorization.
func SolveColumn(a *Dense, j int, v float64) ([]float64, error) {
	f, err := Factor(a)
	if err != nil {
		return nil, err
	}
	return f.SolveUnit(j, v)
}

// Inverse computes a⁻¹ by factoring once and solving against every
// canonical basis column. Prefer keeping the LUFactors and solving
// per column when only a few columns are needed.
// Complexity: O(n³) time, O(n²) space.
func Inverse(a *Dense) (*Dense, error) {
	f, err := Factor(a)
	if err != nil {
		return nil, err
	}
	n := f.Size()
	inv, err := NewDense(n, n)
	if err != nil {
		return nil, kernelErrorf(opInverse, err)
	}
	for j := 0; j < n; j++ {
		col, err := f.SolveUnit(j, 1)
		if err != nil {
			return nil, kernelErrorf(opInverse, err)
		}
		for i := 0; i < n; i++ {
			inv.data[i*n+j] = col[i]
		}
	}
	return inv, nil
}

// Mul computes the dense product C = A × B with a fixed i→k→j loop
// order, skipping zero left-hand elements.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(r·n·c) time, O(r·c) space.
func Mul(a, b *Dense) (*Dense, error) {
	if a == nil || b == nil {
		return nil, kernelErrorf(opMul, ErrNilMatrix)
	}
	if a.cols != b.rows {
		return nil, kernelErrorf(opMul, ErrDimensionMismatch)
	}
	res, err := NewDense(a.rows, b.cols)
	if err != nil {
		return nil, kernelErrorf(opMul, err)
	}
	var i, j, k int
	var av float64
	for i = 0; i < a.rows; i++ {
		for k = 0; k < a.cols; k++ {
			av = a.data[i*a.cols+k]
			if av == 0 {
				continue
			}
			for j = 0; j < b.cols; j++ {
				res.data[i*b.cols+j] += av * b.data[k*b.cols+j]
			}
		}
	}
	return res, nil
}

// MatVec computes y = m·x with one pass per row, skipping zero x entries.
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(rows·cols) time, O(rows) space.
func MatVec(m *Dense, x []float64) ([]float64, error) {
	if m == nil {
		return nil, kernelErrorf(opMatVec, ErrNilMatrix)
	}
	if len(x) != m.cols {
		return nil, kernelErrorf(opMatVec, ErrDimensionMismatch)
	}
	y := make([]float64, m.rows)
	var i, j, base int
	var acc, xv float64
	for i = 0; i < m.rows; i++ {
		acc = 0
		base = i * m.cols
		for j = 0; j < m.cols; j++ {
			xv = x[j]
			if xv != 0 {
				acc += m.data[base+j] * xv
			}
		}
		y[i] = acc
	}
	return y, nil
}
