package solver_test

import (
	"errors"
	"testing"

	"github.com/lcafoundry/lcacore/matrix"
	"github.com/lcafoundry/lcacore/solver"
	"github.com/stretchr/testify/require"
)

// TestDense_SolveAndReuse: a known system solves correctly and the
// cached factorisation serves column solves on the same matrix.
func TestDense_SolveAndReuse(t *testing.T) {
	a, err := matrix.DenseOf([][]float64{
		{1, 0, 0},
		{-1, 1, -0.1},
		{0, -2, 1},
	})
	require.NoError(t, err)
	s := solver.NewDense()

	x, err := s.Solve(a, []float64{1, 0, 0})
	require.NoError(t, err)
	require.InDelta(t, 1.0, x[0], 1e-12)
	require.InDelta(t, 1.25, x[1], 1e-12)
	require.InDelta(t, 2.5, x[2], 1e-12)

	col, err := s.SolveColumn(a, 0, 1)
	require.NoError(t, err)
	require.InDelta(t, x[0], col[0], 1e-12)
	require.InDelta(t, x[1], col[1], 1e-12)
	require.InDelta(t, x[2], col[2], 1e-12)
}

// TestDense_Singular surfaces matrix.ErrSingular.
func TestDense_Singular(t *testing.T) {
	a, err := matrix.DenseOf([][]float64{{1, 2}, {2, 4}})
	require.NoError(t, err)
	s := solver.NewDense()
	if _, err := s.Solve(a, []float64{1, 0}); !errors.Is(err, matrix.ErrSingular) {
		t.Errorf("want ErrSingular, got %v", err)
	}
}

// TestDense_InvertMultiply: M = B·A⁻¹ against hand numbers.
func TestDense_InvertMultiply(t *testing.T) {
	a, err := matrix.DenseOf([][]float64{{1, 0}, {-2, 1}})
	require.NoError(t, err)
	b, err := matrix.DenseOf([][]float64{{1, 3}})
	require.NoError(t, err)

	s := solver.NewDense()
	inv, err := s.Invert(a)
	require.NoError(t, err)
	m, err := s.Multiply(b, inv)
	require.NoError(t, err)

	// A⁻¹ = [[1,0],[2,1]] so M = [1+6, 3]
	v, err := m.At(0, 0)
	require.NoError(t, err)
	require.InDelta(t, 7.0, v, 1e-12)
	v, err = m.At(0, 1)
	require.NoError(t, err)
	require.InDelta(t, 3.0, v, 1e-12)

	g, err := s.MulVec(m, []float64{1, 0})
	require.NoError(t, err)
	require.InDelta(t, 7.0, g[0], 1e-12)
}
