// Package results: the full (contribution-level) provider surface.
package results

import (
	"github.com/lcafoundry/lcacore/assemble"
	"github.com/lcafoundry/lcacore/index"
)

// Full is the contribution surface: everything Simple answers plus
// per-column solutions, loop and total factors, and direct/upstream
// splits. Eager and Lazy implement it with different cost profiles.
type Full interface {
	TechIndex() *index.TechIndex
	EnviIndex() *index.EnviIndex
	ImpactIndex() *index.ImpactIndex
	Data() *assemble.MatrixData

	ScalingVector() []float64
	ScalingOf(j int) float64
	TotalRequirements() []float64
	TotalFlows() []float64
	TotalFlowOf(i int) float64
	SignedFlows() []float64
	TotalImpacts() []float64
	TotalImpactOf(k int) float64
	HasCosts() bool
	TotalCosts() float64

	// SolutionOfOne returns column j of A⁻¹: the scaling that one unit
	// of product j demands from every other product.
	SolutionOfOne(j int) []float64
	// LoopFactorOf returns 1 / (A[j,j]·A⁻¹[j,j]); 1 for non-looping
	// products.
	LoopFactorOf(j int) float64
	// TotalFactorOf returns loop_j · A[j,j] · s[j], the amount factor
	// upstream totals of product j scale with.
	TotalFactorOf(j int) float64

	// TechValueOf returns A[i,j]; ScaledTechValueOf returns s[j]·A[i,j].
	TechValueOf(i, j int) float64
	ScaledTechValueOf(i, j int) float64

	// DirectFlowsOf returns B[:,j]·s[j] with adopted signs;
	// DirectFlowOf one entry of it.
	DirectFlowsOf(j int) []float64
	DirectFlowOf(i, j int) float64
	// TotalFlowsOfOne returns M[:,j] = (B·A⁻¹)[:,j] adopted: the
	// upstream inventory of one unit of product j.
	TotalFlowsOfOne(j int) []float64
	TotalFlowOfOne(i, j int) float64
	// TotalFlowsOf returns M[:,j] scaled by the total factor.
	TotalFlowsOf(j int) []float64

	// DirectImpactsOf returns C·(B[:,j]·s[j]).
	DirectImpactsOf(j int) []float64
	// TotalImpactsOfOne returns C·M[:,j]; TotalImpactsOf scales it by
	// the total factor.
	TotalImpactsOfOne(j int) []float64
	TotalImpactsOf(j int) []float64
	// FlowImpactsOf returns C[:,i]·g[i]: the impact contribution of one
	// flow row.
	FlowImpactsOf(i int) []float64

	// DirectCostsOf returns k[j]·s[j]; TotalCostsOfOne the upstream
	// cost of one unit; TotalCostsOf scales it by the total factor.
	DirectCostsOf(j int) float64
	TotalCostsOfOne(j int) float64
	TotalCostsOf(j int) float64
}

// columnSource yields per-column solver artefacts; Eager reads them
// from precomputed matrices, Lazy solves and memoises.
type columnSource interface {
	// solution is column j of A⁻¹.
	solution(j int) []float64
	// intensity is column j of M = B·A⁻¹ in matrix sign convention.
	intensity(j int) []float64
}

// fullBase derives every Full operation from a Simple result and a
// columnSource.
type fullBase struct {
	*Simple
	cols columnSource
}

func (f *fullBase) SolutionOfOne(j int) []float64 { return f.cols.solution(j) }

func (f *fullBase) LoopFactorOf(j int) float64 {
	sol := f.cols.solution(j)
	if j < 0 || j >= len(sol) {
		return 1
	}
	ajj, err := f.data.A.At(j, j)
	if err != nil {
		return 1
	}
	d := ajj * sol[j]
	if d == 0 {
		return 1
	}
	return 1 / d
}

func (f *fullBase) TotalFactorOf(j int) float64 {
	if j < 0 || j >= len(f.totalReq) {
		return 0
	}
	return f.LoopFactorOf(j) * f.totalReq[j]
}

func (f *fullBase) TechValueOf(i, j int) float64 {
	v, err := f.data.A.At(i, j)
	if err != nil {
		return 0
	}
	return v
}

func (f *fullBase) ScaledTechValueOf(i, j int) float64 {
	return f.ScalingOf(j) * f.TechValueOf(i, j)
}

func (f *fullBase) DirectFlowsOf(j int) []float64 {
	return adopt(f.data.EnviIndex, f.rawDirectFlows(j))
}

func (f *fullBase) rawDirectFlows(j int) []float64 {
	if f.data.B == nil {
		return nil
	}
	col, err := f.data.B.ColumnCopy(j)
	if err != nil {
		return nil
	}
	sj := f.ScalingOf(j)
	for i := range col {
		col[i] *= sj
	}
	return col
}

func (f *fullBase) DirectFlowOf(i, j int) float64 {
	if f.data.B == nil {
		return 0
	}
	v, err := f.data.B.At(i, j)
	if err != nil {
		return 0
	}
	return adoptValue(f.data.EnviIndex, i, v*f.ScalingOf(j))
}

func (f *fullBase) TotalFlowsOfOne(j int) []float64 {
	return adopt(f.data.EnviIndex, f.cols.intensity(j))
}

func (f *fullBase) TotalFlowOfOne(i, j int) float64 {
	col := f.cols.intensity(j)
	if i < 0 || i >= len(col) {
		return 0
	}
	return adoptValue(f.data.EnviIndex, i, col[i])
}

func (f *fullBase) TotalFlowsOf(j int) []float64 {
	raw := f.cols.intensity(j)
	if raw == nil {
		return nil
	}
	tf := f.TotalFactorOf(j)
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = adoptValue(f.data.EnviIndex, i, v*tf)
	}
	return out
}

func (f *fullBase) DirectImpactsOf(j int) []float64 {
	return f.charactize(f.rawDirectFlows(j))
}

func (f *fullBase) TotalImpactsOfOne(j int) []float64 {
	return f.charactize(f.cols.intensity(j))
}

func (f *fullBase) TotalImpactsOf(j int) []float64 {
	h := f.TotalImpactsOfOne(j)
	if h == nil {
		return nil
	}
	tf := f.TotalFactorOf(j)
	out := make([]float64, len(h))
	for k, v := range h {
		out[k] = v * tf
	}
	return out
}

// charactize multiplies C with a raw (matrix-signed) flow vector.
func (f *fullBase) charactize(g []float64) []float64 {
	if f.data.C == nil || g == nil {
		return nil
	}
	k := f.data.C.Rows()
	out := make([]float64, k)
	for row := 0; row < k; row++ {
		sum := 0.0
		for i, v := range g {
			if v == 0 {
				continue
			}
			c, err := f.data.C.At(row, i)
			if err != nil {
				return nil
			}
			sum += c * v
		}
		out[row] = sum
	}
	return out
}

func (f *fullBase) FlowImpactsOf(i int) []float64 {
	if f.data.C == nil || i < 0 || i >= len(f.g) {
		return nil
	}
	k := f.data.C.Rows()
	out := make([]float64, k)
	for row := 0; row < k; row++ {
		c, err := f.data.C.At(row, i)
		if err != nil {
			return nil
		}
		out[row] = c * f.g[i]
	}
	return out
}

func (f *fullBase) DirectCostsOf(j int) float64 {
	if f.data.Costs == nil || j < 0 || j >= len(f.data.Costs) {
		return 0
	}
	return f.data.Costs[j] * f.ScalingOf(j)
}

func (f *fullBase) TotalCostsOfOne(j int) float64 {
	if f.data.Costs == nil {
		return 0
	}
	sol := f.cols.solution(j)
	sum := 0.0
	for i, x := range sol {
		sum += f.data.Costs[i] * x
	}
	return sum
}

func (f *fullBase) TotalCostsOf(j int) float64 {
	return f.TotalCostsOfOne(j) * f.TotalFactorOf(j)
}
