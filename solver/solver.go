// Package solver: the solver contract and the dense implementation.
package solver

import (
	"github.com/lcafoundry/lcacore/matrix"
)

// Solver is the operation set the calculators drive. Implementations
// must be deterministic for identical inputs.
type Solver interface {
	// Solve returns s with a·s = f.
	Solve(a *matrix.Dense, f []float64) ([]float64, error)
	// SolveColumn returns x with a·x = v·e_j.
	SolveColumn(a *matrix.Dense, j int, v float64) ([]float64, error)
	// Invert returns a⁻¹.
	Invert(a *matrix.Dense) (*matrix.Dense, error)
	// Multiply returns the dense product x·y.
	Multiply(x, y *matrix.Dense) (*matrix.Dense, error)
	// MulVec returns x·v.
	MulVec(x *matrix.Dense, v []float64) ([]float64, error)
}

// Dense solves through the LU kernels. The factorisation of the most
// recent matrix is cached, so repeated column solves against the same
// technology matrix factor once. Not safe for concurrent use.
type Dense struct {
	last    *matrix.Dense
	factors *matrix.LUFactors
}

// NewDense returns a dense LU-backed solver.
func NewDense() *Dense { return &Dense{} }

func (s *Dense) factorsOf(a *matrix.Dense) (*matrix.LUFactors, error) {
	if s.last == a && s.factors != nil {
		return s.factors, nil
	}
	f, err := matrix.Factor(a)
	if err != nil {
		return nil, err
	}
	s.last, s.factors = a, f
	return f, nil
}

// Solve implements Solver.
func (s *Dense) Solve(a *matrix.Dense, f []float64) ([]float64, error) {
	factors, err := s.factorsOf(a)
	if err != nil {
		return nil, err
	}
	return factors.SolveVec(f)
}

// SolveColumn implements Solver.
func (s *Dense) SolveColumn(a *matrix.Dense, j int, v float64) ([]float64, error) {
	factors, err := s.factorsOf(a)
	if err != nil {
		return nil, err
	}
	return factors.SolveUnit(j, v)
}

// Invert implements Solver.
func (s *Dense) Invert(a *matrix.Dense) (*matrix.Dense, error) {
	return matrix.Inverse(a)
}

// Multiply implements Solver.
func (s *Dense) Multiply(x, y *matrix.Dense) (*matrix.Dense, error) {
	return matrix.Mul(x, y)
}

// MulVec implements Solver.
func (s *Dense) MulVec(x *matrix.Dense, v []float64) ([]float64, error) {
	return matrix.MatVec(x, v)
}
