// Package calc: the calculator pipeline.
package calc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/lcafoundry/lcacore/assemble"
	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/data"
	"github.com/lcafoundry/lcacore/formula"
	"github.com/lcafoundry/lcacore/index"
	"github.com/lcafoundry/lcacore/linker"
	"github.com/lcafoundry/lcacore/results"
	"github.com/lcafoundry/lcacore/solver"
)

// ErrSetup is returned when a calculation setup cannot be loaded or
// prepared.
var ErrSetup = errors.New("calc: invalid setup")

// Setup is one calculation request.
type Setup struct {
	// SystemID names the persisted product system.
	SystemID uint64
	// Demand overrides the persisted final demand when non-zero.
	Demand float64
	// Allocation selects the factor set; AllocationNone disables it.
	Allocation core.AllocationMethod
	// WithCosts adds the net-cost vector and cost results.
	WithCosts bool
	// WithUncertainties marks the setup for simulation; a plain
	// calculation still uses the mean amounts.
	WithUncertainties bool
	// ImpactMethodID adds characterization when non-zero.
	ImpactMethodID uint64
	// Regionalized keys flow rows by (flow, location).
	Regionalized bool
	// ParameterRedefs apply after the system's own redefinitions.
	ParameterRedefs []core.ParameterRedef
	// Seed seeds the simulation rng; unused by plain calculations.
	Seed int64
	// Linking configures provider resolution during index expansion.
	Linking core.LinkingConfig
}

// Prepared is a loaded and expanded calculation, ready to assemble.
// The simulator reuses it to build per-iteration matrices with its own
// configuration.
type Prepared struct {
	Setup  Setup
	System *core.ProductSystem
	Index  *index.TechIndex
	Params *formula.Table
	Method *core.ImpactMethod

	assembler *assemble.Assembler
}

// Calculator runs setups against one data source and solver.
type Calculator struct {
	source data.Source
	solver solver.Solver
}

// New returns a calculator over the given source and solver.
func New(source data.Source, sv solver.Solver) *Calculator {
	return &Calculator{source: source, solver: sv}
}

// Source returns the data source of the calculator.
func (c *Calculator) Source() data.Source { return c.source }

// Solver returns the solver of the calculator.
func (c *Calculator) Solver() solver.Solver { return c.solver }

// Prepare loads the system, expands the technology index, builds the
// parameter table with all redefinitions applied, and loads the impact
// method.
// Stage 1 (Load): product system; demand override applied.
// Stage 2 (Expand): BFS index build under the setup's linking config.
// Stage 3 (Parameters): global plus per-process parameters of the
// index, then the system's redefinitions, then the setup's.
// Stage 4 (Method): characterization method when requested.
//
// Errors: ErrSetup for load failures; index-build errors pass through.
func (c *Calculator) Prepare(ctx context.Context, setup Setup) (*Prepared, error) {
	sys, err := c.source.ProductSystem(setup.SystemID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSetup, err)
	}
	if setup.Demand != 0 {
		override := *sys
		override.Demand = setup.Demand
		sys = &override
	}

	ix, err := linker.NewBuilder(c.source, setup.Linking).Build(ctx, sys)
	if err != nil {
		return nil, err
	}

	contexts := ix.ProcessIDs()
	if setup.ImpactMethodID != 0 {
		contexts[setup.ImpactMethodID] = struct{}{}
	}
	defs, err := c.source.Parameters(contexts)
	if err != nil {
		return nil, fmt.Errorf("%w: load parameters: %v", ErrSetup, err)
	}
	params, err := formula.NewTable(defs)
	if err != nil {
		return nil, err
	}
	if len(sys.ParameterRedefs) > 0 {
		if err := params.Redefine(sys.ParameterRedefs); err != nil {
			return nil, err
		}
	}
	if len(setup.ParameterRedefs) > 0 {
		if err := params.Redefine(setup.ParameterRedefs); err != nil {
			return nil, err
		}
	}

	var method *core.ImpactMethod
	if setup.ImpactMethodID != 0 {
		if method, err = c.source.ImpactMethod(setup.ImpactMethodID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSetup, err)
		}
	}

	p := &Prepared{Setup: setup, System: sys, Index: ix, Params: params, Method: method}
	p.assembler = assemble.New(assemble.Config{
		Source:            c.source,
		Params:            params,
		Allocation:        setup.Allocation,
		WithCosts:         setup.WithCosts,
		WithUncertainties: setup.WithUncertainties,
		Method:            method,
		Regionalized:      setup.Regionalized,
	})
	return p, nil
}

// Build assembles the matrices of the prepared calculation. A non-nil
// rng resamples uncertain amounts (simulation mode).
func (p *Prepared) Build(rng *rand.Rand) (*assemble.MatrixData, error) {
	return p.assembler.Build(p.Index, rng)
}

// Simple runs the setup into an inventory-level result.
func (c *Calculator) Simple(ctx context.Context, setup Setup) (*results.Simple, error) {
	data, err := c.build(ctx, setup)
	if err != nil {
		return nil, err
	}
	return results.NewSimple(data, c.solver)
}

// Eager runs the setup into a full result with precomputed inverse and
// intensity matrices.
func (c *Calculator) Eager(ctx context.Context, setup Setup) (*results.Eager, error) {
	data, err := c.build(ctx, setup)
	if err != nil {
		return nil, err
	}
	return results.NewEager(data, c.solver)
}

// Lazy runs the setup into a full result with memoised column solves.
func (c *Calculator) Lazy(ctx context.Context, setup Setup) (*results.Lazy, error) {
	data, err := c.build(ctx, setup)
	if err != nil {
		return nil, err
	}
	return results.NewLazy(data, c.solver)
}

func (c *Calculator) build(ctx context.Context, setup Setup) (*assemble.MatrixData, error) {
	p, err := c.Prepare(ctx, setup)
	if err != nil {
		return nil, err
	}
	return p.Build(nil)
}
