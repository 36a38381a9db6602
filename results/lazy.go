// Package results: the lazy full provider.
package results

import (
	"github.com/lcafoundry/lcacore/assemble"
	"github.com/lcafoundry/lcacore/solver"
)

// Lazy is the full provider that defers column work: A is factored once
// (by the simple solve), per-column solutions and intensities are
// computed on first request and memoised. Right for result views that
// touch a few columns of a large system.
type Lazy struct {
	fullBase
	sv solver.Solver

	solutions   map[int][]float64
	intensities map[int][]float64
}

var _ Full = (*Lazy)(nil)

// NewLazy solves the simple result and prepares the memo tables.
func NewLazy(data *assemble.MatrixData, sv solver.Solver) (*Lazy, error) {
	simple, err := NewSimple(data, sv)
	if err != nil {
		return nil, err
	}
	l := &Lazy{
		sv:          sv,
		solutions:   make(map[int][]float64),
		intensities: make(map[int][]float64),
	}
	l.fullBase = fullBase{Simple: simple, cols: l}
	return l, nil
}

// solution memoises column j of A⁻¹ via a single-column solve. The
// factorisation already exists from the simple solve, so a miss costs
// one back-substitution.
func (l *Lazy) solution(j int) []float64 {
	if col, ok := l.solutions[j]; ok {
		return col
	}
	col, err := l.sv.SolveColumn(l.data.A, j, 1)
	if err != nil {
		return nil
	}
	l.solutions[j] = col
	return col
}

// intensity memoises M[:,j] = B·solution(j).
func (l *Lazy) intensity(j int) []float64 {
	if l.data.B == nil {
		return nil
	}
	if col, ok := l.intensities[j]; ok {
		return col
	}
	sol := l.solution(j)
	if sol == nil {
		return nil
	}
	col, err := l.sv.MulVec(l.data.B, sol)
	if err != nil {
		return nil
	}
	l.intensities[j] = col
	return col
}
