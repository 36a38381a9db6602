// Package sim: the append-only sample store of a simulation run.
package sim

import (
	"math"
	"sort"

	"github.com/lcafoundry/lcacore/assemble"
	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/index"
	"github.com/lcafoundry/lcacore/results"
)

// Pin collects the per-iteration contribution vectors of one pinned
// host product: its direct flows and its upstream flows per unit.
type Pin struct {
	Product core.ProcessProduct

	// Direct[i] and Upstream[i] are the vectors of iteration i, rows
	// aligned with the run's flow index.
	Direct   [][]float64
	Upstream [][]float64
}

// Result stores the samples of every committed iteration: the adopted
// inventory totals, the impact totals, the net costs, and the vectors
// of every pinned product. Failed iterations leave no trace except the
// failure count.
type Result struct {
	envi    *index.EnviIndex
	impacts *index.ImpactIndex

	flows      [][]float64 // iteration-major, adopted signs
	impactVals [][]float64
	costs      []float64
	hasCosts   bool

	pins   []*Pin
	failed int
}

// newResult sizes the store from the host shape; the indices stay
// stable across iterations, so they are captured once.
func newResult(data *assemble.MatrixData) *Result {
	return &Result{
		envi:     data.EnviIndex,
		impacts:  data.ImpactIndex,
		hasCosts: data.Costs != nil,
	}
}

func (r *Result) pin(p core.ProcessProduct) {
	r.pins = append(r.pins, &Pin{Product: p})
}

func (r *Result) append(res *results.Simple) {
	r.flows = append(r.flows, res.TotalFlows())
	if h := res.TotalImpacts(); h != nil {
		r.impactVals = append(r.impactVals, h)
	}
	if r.hasCosts {
		r.costs = append(r.costs, res.TotalCosts())
	}
}

func (r *Result) appendPin(p core.ProcessProduct, direct, upstream []float64) {
	for _, pin := range r.pins {
		if pin.Product == p {
			pin.Direct = append(pin.Direct, direct)
			pin.Upstream = append(pin.Upstream, upstream)
			return
		}
	}
}

// Iterations returns the number of committed iterations.
func (r *Result) Iterations() int { return len(r.flows) }

// FailedIterations returns the number of discarded iterations.
func (r *Result) FailedIterations() int { return r.failed }

// EnviIndex returns the flow row index of the samples.
func (r *Result) EnviIndex() *index.EnviIndex { return r.envi }

// ImpactIndex returns the impact row index; nil without a method.
func (r *Result) ImpactIndex() *index.ImpactIndex { return r.impacts }

// HasCosts reports whether cost samples were collected.
func (r *Result) HasCosts() bool { return r.hasCosts }

// FlowSamples returns the sample series of flow row i, one value per
// committed iteration, adopted signs. Nil for an unknown row.
func (r *Result) FlowSamples(i int) []float64 {
	if r.envi == nil || i < 0 || i >= r.envi.Size() {
		return nil
	}
	out := make([]float64, len(r.flows))
	for it, g := range r.flows {
		out[it] = g[i]
	}
	return out
}

// ImpactSamples returns the sample series of impact row k. Nil
// without a method or for an unknown row.
func (r *Result) ImpactSamples(k int) []float64 {
	if r.impacts == nil || k < 0 || k >= r.impacts.Size() {
		return nil
	}
	out := make([]float64, len(r.impactVals))
	for it, h := range r.impactVals {
		out[it] = h[k]
	}
	return out
}

// CostSamples returns the net-cost series; nil without costs.
func (r *Result) CostSamples() []float64 {
	if !r.hasCosts {
		return nil
	}
	return r.costs
}

// PinOf returns the pin store of the given product, nil if the
// product was never pinned.
func (r *Result) PinOf(p core.ProcessProduct) *Pin {
	for _, pin := range r.pins {
		if pin.Product == p {
			return pin
		}
	}
	return nil
}

// MeanFlow returns the sample mean of flow row i, NaN without samples.
func (r *Result) MeanFlow(i int) float64 { return mean(r.FlowSamples(i)) }

// MeanImpact returns the sample mean of impact row k.
func (r *Result) MeanImpact(k int) float64 { return mean(r.ImpactSamples(k)) }

// MeanCosts returns the sample mean of the net costs.
func (r *Result) MeanCosts() float64 { return mean(r.CostSamples()) }

// FlowPercentile returns the p-quantile (0..1, linear interpolation
// between order statistics) of flow row i.
func (r *Result) FlowPercentile(i int, p float64) float64 {
	return percentile(r.FlowSamples(i), p)
}

// ImpactPercentile returns the p-quantile of impact row k.
func (r *Result) ImpactPercentile(k int, p float64) float64 {
	return percentile(r.ImpactSamples(k), p)
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// percentile interpolates linearly between the neighbouring order
// statistics; p is clamped to [0, 1].
func percentile(v []float64, p float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(v))
	copy(sorted, v)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)
	if frac == 0 {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
