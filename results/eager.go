// Package results: the eager full provider.
package results

import (
	"fmt"

	"github.com/lcafoundry/lcacore/assemble"
	"github.com/lcafoundry/lcacore/matrix"
	"github.com/lcafoundry/lcacore/solver"
)

// Eager is the full provider that pays everything up front: A⁻¹ and
// M = B·A⁻¹ are computed at construction, queries are plain reads.
// Right for result views that touch most columns.
type Eager struct {
	fullBase
	inv *matrix.Dense
	m   *matrix.Dense
}

var _ Full = (*Eager)(nil)

// NewEager solves the simple result, inverts A, and precomputes the
// intensity matrix.
func NewEager(data *assemble.MatrixData, sv solver.Solver) (*Eager, error) {
	simple, err := NewSimple(data, sv)
	if err != nil {
		return nil, err
	}
	inv, err := sv.Invert(data.A)
	if err != nil {
		return nil, fmt.Errorf("%w: invert: %v", ErrResult, err)
	}
	e := &Eager{inv: inv}
	if data.B != nil {
		if e.m, err = sv.Multiply(data.B, inv); err != nil {
			return nil, fmt.Errorf("%w: intensity: %v", ErrResult, err)
		}
	}
	e.fullBase = fullBase{Simple: simple, cols: e}
	return e, nil
}

func (e *Eager) solution(j int) []float64 {
	col, err := e.inv.ColumnCopy(j)
	if err != nil {
		return nil
	}
	return col
}

func (e *Eager) intensity(j int) []float64 {
	if e.m == nil {
		return nil
	}
	col, err := e.m.ColumnCopy(j)
	if err != nil {
		return nil
	}
	return col
}
