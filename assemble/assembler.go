// Package assemble: the matrix assembler.
package assemble

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/data"
	"github.com/lcafoundry/lcacore/formula"
	"github.com/lcafoundry/lcacore/index"
	"github.com/lcafoundry/lcacore/matrix"
)

// ErrAssemble is returned for structural failures during assembly.
var ErrAssemble = errors.New("assemble: assembly failed")

// Config selects what one assembly produces and from where.
type Config struct {
	// Source provides exchanges, allocation factors, and process types.
	Source data.Source
	// Params, when non-nil, supplies the evaluation scopes of
	// formula-driven amounts and costs.
	Params *formula.Table
	// Allocation selects which persisted factors apply; AllocationNone
	// disables allocation.
	Allocation core.AllocationMethod
	// WithCosts enables the net-cost vector.
	WithCosts bool
	// WithUncertainties enables resampling when Build receives an rng.
	WithUncertainties bool
	// Method, when non-nil, adds the characterization matrix.
	Method *core.ImpactMethod
	// Regionalized keys flow rows by (flow, location) instead of flow.
	Regionalized bool
	// ExtraFlows pre-seeds the flow index, widening B beyond the flows
	// the columns themselves carry. Used for sub-system-only flows.
	ExtraFlows []core.FlowRef
	// SubSystems marks columns that stand for nested product systems:
	// their diagonal becomes 1 (one unit of the reference product) and
	// their B column stays zero until the simulator writes it.
	SubSystems map[core.ProcessProduct]struct{}
}

// Assembler builds MatrixData from a technology index.
type Assembler struct {
	cfg Config
}

// New returns an assembler with the given configuration.
func New(cfg Config) *Assembler {
	return &Assembler{cfg: cfg}
}

type allocKey struct{ process, product uint64 }

type causalKey struct{ process, product, exchange uint64 }

// allocTable resolves allocation factors for one assembly.
type allocTable struct {
	byProduct map[allocKey]float64
	causal    map[causalKey]float64
}

// factorOf returns the share e contributes to column p. The
// quantitative reference is never allocated. Causal factors bind
// individual elementary exchanges; product-level factors everything
// else; a missing factor means 1.
func (t *allocTable) factorOf(e core.CalcExchange, p core.ProcessProduct) float64 {
	if t == nil || e.IsQuantRef(p) {
		return 1
	}
	if e.Type == core.ElementaryFlow {
		if f, ok := t.causal[causalKey{p.ProcessID, p.FlowID, e.ExchangeID}]; ok {
			return f
		}
	}
	if f, ok := t.byProduct[allocKey{p.ProcessID, p.FlowID}]; ok {
		return f
	}
	return 1
}

// Build assembles the matrices for ix. A non-nil rng together with
// Config.WithUncertainties switches assembly into simulation mode:
// every uncertain amount is replaced by a draw from its distribution,
// whose parameters P1..P3 set the range; the evaluated amount stands only
// where the distribution is UncertaintyNone.
//
// Stage 1 (Load): batch-load exchanges and allocation factors for every
// indexed process.
// Stage 2 (Columns): for each column, evaluate amounts, apply the
// allocation share, and place diagonal, technosphere, elementary, and
// cost values by the package sign conventions. Flow rows are created on
// first sight, in column order.
// Stage 3 (Characterize): with an impact method configured, fill C from
// the factors; location-specific factors take precedence over global
// ones on regionalised indices; factors of input rows are negated.
//
// Errors: ErrAssemble for structural failures (missing diagonal data is
// not one: a singular A surfaces from the solver instead).
func (a *Assembler) Build(ix *index.TechIndex, rng *rand.Rand) (*MatrixData, error) {
	n := ix.Size()
	A, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssemble, err)
	}

	ids := ix.ProcessIDs()
	byProcess, err := a.cfg.Source.Exchanges(ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load exchanges: %v", ErrAssemble, err)
	}
	alloc, err := a.loadAllocation(ids)
	if err != nil {
		return nil, err
	}

	envi := index.NewEnviIndex(a.cfg.Regionalized)
	for _, ref := range a.cfg.ExtraFlows {
		envi.Add(ref)
	}
	interventions := matrix.NewHash(envi.Size(), n)

	out := &MatrixData{TechIndex: ix, A: A, Demand: ix.DemandVector()}
	if a.cfg.WithCosts {
		out.Costs = make([]float64, n)
	}

	sample := rng != nil && a.cfg.WithUncertainties

	for j := 0; j < n; j++ {
		p, _ := ix.At(j)
		if a.isSubSystem(p) {
			// nested product system: one unit of its reference product,
			// interventions arrive from the simulator
			if err := A.Set(j, j, 1); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrAssemble, err)
			}
			continue
		}
		exchanges, ok := byProcess[p.ProcessID]
		if !ok {
			return nil, fmt.Errorf("%w: no exchanges for process %d", ErrAssemble, p.ProcessID)
		}

		var scope map[string]float64
		if a.cfg.Params != nil {
			scope = a.cfg.Params.Scope(p.ProcessID)
		}

		for _, e := range exchanges {
			amount := a.eval(e.Formula, e.Amount, e, scope, out)
			if sample && e.Uncertainty != nil {
				amount = e.Uncertainty.Sample(rng, amount)
			}
			amount *= alloc.factorOf(e, p)

			switch {
			case e.IsQuantRef(p):
				err = A.Add(j, j, amount)
			case e.IsLinkable():
				provider, linked := ix.LinkedProvider(e.Key())
				if !linked {
					continue // unlinked under the policy, no edge
				}
				i, found := ix.Of(provider)
				if !found {
					return nil, fmt.Errorf("%w: provider %v not indexed", ErrAssemble, provider)
				}
				err = A.Add(i, j, -amount)
			case e.Type == core.ElementaryFlow:
				row := envi.Add(core.FlowRef{
					FlowID:     e.FlowID,
					Type:       e.Type,
					IsInput:    e.IsInput,
					LocationID: e.LocationID,
				})
				v := amount
				if e.IsInput {
					v = -amount
				}
				err = interventions.Add(row, j, v)
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrAssemble, err)
			}

			if out.Costs != nil {
				cost := a.eval(e.CostFormula, e.CostValue, e, scope, out)
				cost *= alloc.factorOf(e, p)
				if e.Type == core.ProductFlow && !e.IsInput {
					out.Costs[j] -= cost // revenue
				} else {
					out.Costs[j] += cost
				}
			}
		}
	}

	if envi.Size() > 0 {
		out.EnviIndex = envi
		out.B, err = interventions.Dense(envi.Size(), n)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAssemble, err)
		}
	}

	if a.cfg.Method != nil && out.EnviIndex != nil {
		if err := a.characterize(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// isSubSystem reports whether the column stands for a nested product
// system, either marked by the caller or classified by the source.
func (a *Assembler) isSubSystem(p core.ProcessProduct) bool {
	if _, ok := a.cfg.SubSystems[p]; ok {
		return true
	}
	typ, err := a.cfg.Source.ProcessType(p.ProcessID)
	return err == nil && typ == core.SubSystem
}

// eval returns the formula value, falling back to the literal and
// recording a diagnostic when evaluation fails.
func (a *Assembler) eval(expr string, literal float64, e core.CalcExchange, scope map[string]float64, out *MatrixData) float64 {
	if expr == "" {
		return literal
	}
	v, err := formula.Eval(expr, scope)
	if err != nil {
		out.Diagnostics = append(out.Diagnostics, Diagnostic{
			ProcessID:  e.ProcessID,
			ExchangeID: e.ExchangeID,
			Formula:    expr,
			Err:        err,
		})
		return literal
	}
	return v
}

// loadAllocation builds the factor table for the configured method.
func (a *Assembler) loadAllocation(ids map[uint64]struct{}) (*allocTable, error) {
	if a.cfg.Allocation == core.AllocationNone {
		return nil, nil
	}
	factors, err := a.cfg.Source.AllocationFactors(ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load allocation factors: %v", ErrAssemble, err)
	}
	table := &allocTable{
		byProduct: make(map[allocKey]float64),
		causal:    make(map[causalKey]float64),
	}
	for _, fs := range factors {
		for _, f := range fs {
			if f.Method != a.cfg.Allocation {
				continue
			}
			if f.ExchangeID != 0 {
				table.causal[causalKey{f.ProcessID, f.ProductID, f.ExchangeID}] = f.Value
			} else {
				table.byProduct[allocKey{f.ProcessID, f.ProductID}] = f.Value
			}
		}
	}
	return table, nil
}

// characterize fills C from the method's factors. Row sign follows the
// flow direction so that C·g keeps positive contributions.
func (a *Assembler) characterize(out *MatrixData) error {
	method := a.cfg.Method
	impactIx := index.NewImpactIndex(method.Categories)
	m := out.EnviIndex.Size()
	C, err := matrix.NewDense(impactIx.Size(), m)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssemble, err)
	}

	for k, cat := range method.Categories {
		global := make(map[uint64]float64, len(cat.Factors))
		specific := make(map[[2]uint64]float64)
		for _, f := range cat.Factors {
			if f.LocationID != core.NoLocation {
				specific[[2]uint64{f.FlowID, f.LocationID}] = f.Value
			} else {
				global[f.FlowID] = f.Value
			}
		}
		var rowErr error
		out.EnviIndex.Each(func(i int, ref core.FlowRef) bool {
			v, ok := specific[[2]uint64{ref.FlowID, ref.LocationID}]
			if !ok {
				v, ok = global[ref.FlowID]
			}
			if !ok {
				return true
			}
			if ref.IsInput {
				v = -v
			}
			rowErr = C.Set(k, i, v)
			return rowErr == nil
		})
		if rowErr != nil {
			return fmt.Errorf("%w: %v", ErrAssemble, rowErr)
		}
	}
	out.ImpactIndex = impactIx
	out.C = C
	return nil
}
