// Package results: the simple (inventory-level) provider.
package results

import (
	"errors"
	"fmt"

	"github.com/lcafoundry/lcacore/assemble"
	"github.com/lcafoundry/lcacore/index"
	"github.com/lcafoundry/lcacore/solver"
)

// ErrResult is returned when a provider cannot be constructed. Queries
// never return it: an out-of-range query yields zero or nil.
var ErrResult = errors.New("results: result failed")

// Simple is the inventory-level result: scaling, totals per flow and
// impact category, and the net cost of the functional unit.
type Simple struct {
	data *assemble.MatrixData

	s        []float64
	totalReq []float64
	// g keeps the matrix sign convention; accessors adopt on the way out.
	g []float64
	h []float64

	totalCosts float64
	withCosts  bool
}

// NewSimple solves the system once: s = A⁻¹f, g = B·s, h = C·g, and the
// cost total Σ k[j]·s[j].
//
// Errors: ErrResult wrapping the solver failure (a singular technology
// matrix surfaces here).
func NewSimple(data *assemble.MatrixData, sv solver.Solver) (*Simple, error) {
	s, err := sv.Solve(data.A, data.Demand)
	if err != nil {
		return nil, fmt.Errorf("%w: scaling: %v", ErrResult, err)
	}
	r := &Simple{data: data, s: s}

	diag, err := data.A.Diag()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResult, err)
	}
	r.totalReq = make([]float64, len(s))
	for j := range s {
		r.totalReq[j] = diag[j] * s[j]
	}

	if data.B != nil {
		if r.g, err = sv.MulVec(data.B, s); err != nil {
			return nil, fmt.Errorf("%w: inventory: %v", ErrResult, err)
		}
	}
	if data.C != nil && r.g != nil {
		if r.h, err = sv.MulVec(data.C, r.g); err != nil {
			return nil, fmt.Errorf("%w: impacts: %v", ErrResult, err)
		}
	}
	if data.Costs != nil {
		r.withCosts = true
		for j, k := range data.Costs {
			r.totalCosts += k * s[j]
		}
	}
	return r, nil
}

// TechIndex returns the column index of the result.
func (r *Simple) TechIndex() *index.TechIndex { return r.data.TechIndex }

// EnviIndex returns the flow row index; nil without elementary flows.
func (r *Simple) EnviIndex() *index.EnviIndex { return r.data.EnviIndex }

// ImpactIndex returns the impact row index; nil without a method.
func (r *Simple) ImpactIndex() *index.ImpactIndex { return r.data.ImpactIndex }

// Data returns the assembled matrices the result was solved from.
func (r *Simple) Data() *assemble.MatrixData { return r.data }

// ScalingVector returns s.
func (r *Simple) ScalingVector() []float64 { return r.s }

// ScalingOf returns s[j].
func (r *Simple) ScalingOf(j int) float64 {
	if j < 0 || j >= len(r.s) {
		return 0
	}
	return r.s[j]
}

// TotalRequirements returns diag(A) ⊙ s: the produced amount of every
// product in the system.
func (r *Simple) TotalRequirements() []float64 { return r.totalReq }

// TotalFlows returns the inventory g with adopted signs: inputs
// reported positive.
func (r *Simple) TotalFlows() []float64 {
	return adopt(r.data.EnviIndex, r.g)
}

// TotalFlowOf returns the adopted inventory value of flow row i.
func (r *Simple) TotalFlowOf(i int) float64 {
	if i < 0 || i >= len(r.g) {
		return 0
	}
	return adoptValue(r.data.EnviIndex, i, r.g[i])
}

// SignedFlows returns g in the matrix sign convention (inputs
// negative). The simulator feeds these back into host matrices.
func (r *Simple) SignedFlows() []float64 { return r.g }

// TotalImpacts returns h = C·g, or nil without a method.
func (r *Simple) TotalImpacts() []float64 { return r.h }

// TotalImpactOf returns h[k].
func (r *Simple) TotalImpactOf(k int) float64 {
	if k < 0 || k >= len(r.h) {
		return 0
	}
	return r.h[k]
}

// HasCosts reports whether cost results were calculated.
func (r *Simple) HasCosts() bool { return r.withCosts }

// TotalCosts returns the net cost of the functional unit.
func (r *Simple) TotalCosts() float64 { return r.totalCosts }

// adopt flips input rows of v to positive, copying the slice. A nil
// index or vector passes through.
func adopt(envi *index.EnviIndex, v []float64) []float64 {
	if envi == nil || v == nil {
		return v
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = adoptValue(envi, i, x)
	}
	return out
}

// adoptValue flips one value when its row is an input; zero stays zero
// so no -0 appears in reports.
func adoptValue(envi *index.EnviIndex, i int, v float64) float64 {
	if envi == nil {
		return v
	}
	ref, ok := envi.At(i)
	if !ok || !ref.IsInput || v == 0 {
		return v
	}
	return -v
}
