// Package sim: the Monte-Carlo simulation driver.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lcafoundry/lcacore/assemble"
	"github.com/lcafoundry/lcacore/calc"
	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/results"
)

var (
	// ErrCyclicSubSystems is returned when the sub-system relation has
	// no topological order.
	ErrCyclicSubSystems = errors.New("sim: cyclic sub-systems")
	// ErrCancelled is returned when the context cancels a run.
	ErrCancelled = errors.New("sim: cancelled")
	// ErrIteration marks a discarded iteration; the run may continue.
	ErrIteration = errors.New("sim: iteration failed")
	// ErrPin is returned for a pin that is not a column of the host.
	ErrPin = errors.New("sim: unknown pinned product")
)

// node is one product system of the simulation graph: the root keeps
// its full setup, nested systems run LCI/LCC-only with one unit of
// their reference product as demand.
type node struct {
	product   core.ProcessProduct
	prepared  *calc.Prepared
	assembler *assemble.Assembler
	subs      []*node

	data *assemble.MatrixData
	last *results.Simple
}

// Simulator drives repeated sampled calculations of one setup, nested
// product systems solved before their hosts in every iteration.
type Simulator struct {
	calc  *calc.Calculator
	setup calc.Setup
	rng   *rand.Rand

	root  *node
	order []*node // topological, root last

	pins   []core.ProcessProduct
	result *Result
}

// New prepares the simulation graph: the root system, every nested
// system reachable through sub-system providers, and their assemblers
// with flow indices widened by the sub-system-only flows.
//
// Stage 1 (Graph): depth-first discovery of nested systems, keyed by
// system id; a back edge aborts with ErrCyclicSubSystems.
// Stage 2 (Shapes): one mean-value assembly per node in topological
// order, so every host's flow index already contains the rows its
// sub-systems deliver.
//
// Errors: ErrCyclicSubSystems; preparation failures pass through.
func New(ctx context.Context, c *calc.Calculator, setup calc.Setup) (*Simulator, error) {
	setup.WithUncertainties = true
	seed := setup.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Simulator{calc: c, setup: setup, rng: rand.New(rand.NewSource(seed))}

	state := make(map[uint64]int) // 0 unseen, 1 visiting, 2 done
	nodes := make(map[uint64]*node)
	root, err := s.discover(ctx, setup.SystemID, state, nodes)
	if err != nil {
		return nil, err
	}
	s.root = root

	for _, nd := range s.order {
		if err := s.shape(nd); err != nil {
			return nil, err
		}
	}
	s.result = newResult(s.root.data)
	return s, nil
}

// discover prepares the system and recurses into its sub-systems,
// appending nodes in topological order (children first).
func (s *Simulator) discover(ctx context.Context, systemID uint64, state map[uint64]int, nodes map[uint64]*node) (*node, error) {
	switch state[systemID] {
	case 1:
		return nil, fmt.Errorf("%w: system %d", ErrCyclicSubSystems, systemID)
	case 2:
		return nodes[systemID], nil
	}
	state[systemID] = 1

	prep, err := s.calc.Prepare(ctx, s.setupFor(systemID))
	if err != nil {
		return nil, err
	}
	nd := &node{product: prep.System.Reference(), prepared: prep}
	if systemID != s.setup.SystemID {
		// a nested system stands for one unit of its reference product
		nd.product = core.ProcessProduct{
			ProcessID: systemID,
			FlowID:    prep.System.ReferenceFlowID,
		}
	}

	var walkErr error
	prep.Index.Each(func(_ int, p core.ProcessProduct) bool {
		typ, err := s.calc.Source().ProcessType(p.ProcessID)
		if err != nil || typ != core.SubSystem || p.ProcessID == systemID {
			return true
		}
		sub, err := s.discover(ctx, p.ProcessID, state, nodes)
		if err != nil {
			walkErr = err
			return false
		}
		nd.subs = append(nd.subs, sub)
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	state[systemID] = 2
	nodes[systemID] = nd
	s.order = append(s.order, nd)
	return nd, nil
}

// setupFor derives the calculation setup of one node. Nested systems
// inherit linking, allocation, costs, and regionalisation, but run
// without an impact method and for one reference unit.
func (s *Simulator) setupFor(systemID uint64) calc.Setup {
	if systemID == s.setup.SystemID {
		return s.setup
	}
	return calc.Setup{
		SystemID:          systemID,
		Demand:            1,
		Allocation:        s.setup.Allocation,
		WithCosts:         s.setup.WithCosts,
		WithUncertainties: true,
		Regionalized:      s.setup.Regionalized,
		Linking:           s.setup.Linking,
	}
}

// extraFlows collects every flow the node's sub-systems deliver.
func (nd *node) extraFlows() []core.FlowRef {
	var refs []core.FlowRef
	for _, sub := range nd.subs {
		if sub.data == nil || sub.data.EnviIndex == nil {
			continue
		}
		sub.data.EnviIndex.Each(func(_ int, ref core.FlowRef) bool {
			refs = append(refs, ref)
			return true
		})
	}
	return refs
}

// shape builds the node's assembler and its mean-value matrices. The
// flow index is pre-seeded with every flow a sub-system delivers, so
// the intervention matrix keeps its shape across iterations.
func (s *Simulator) shape(nd *node) error {
	subProducts := make(map[core.ProcessProduct]struct{}, len(nd.subs))
	for _, sub := range nd.subs {
		subProducts[sub.product] = struct{}{}
	}
	nd.assembler = assemble.New(assemble.Config{
		Source:            s.calc.Source(),
		Params:            nd.prepared.Params,
		Allocation:        s.setup.Allocation,
		WithCosts:         s.setup.WithCosts,
		WithUncertainties: true,
		Method:            nd.prepared.Method,
		Regionalized:      s.setup.Regionalized,
		ExtraFlows:        nd.extraFlows(),
		SubSystems:        subProducts,
	})
	data, err := nd.assembler.Build(nd.prepared.Index, nil)
	if err != nil {
		return err
	}
	nd.data = data
	return nil
}

// Pin registers a host product for per-iteration contribution capture.
// Pins must be set before the first iteration runs.
func (s *Simulator) Pin(p core.ProcessProduct) error {
	if !s.root.prepared.Index.Contains(p) {
		return fmt.Errorf("%w: %v", ErrPin, p)
	}
	s.pins = append(s.pins, p)
	s.result.pin(p)
	return nil
}

// Result returns the append-only sample store of the run so far.
func (s *Simulator) Result() *Result { return s.result }

// HostData returns the host matrices of the most recent iteration.
func (s *Simulator) HostData() *assemble.MatrixData { return s.root.data }

// SubResult returns the latest result of the nested system behind the
// given sub-system product, nil before the first iteration.
func (s *Simulator) SubResult(p core.ProcessProduct) *results.Simple {
	for _, nd := range s.order {
		if nd != s.root && nd.product == p {
			return nd.last
		}
	}
	return nil
}

// Next runs one iteration: every nested system is resampled, rebuilt,
// and solved before its hosts, then the host integrates the fresh
// sub-system vectors, solves, and appends to the result store.
//
// Errors: ErrCancelled between solves; ErrIteration for assembly or
// solver failures — nothing of the failed iteration is appended, and
// the caller may keep iterating.
func (s *Simulator) Next(ctx context.Context) error {
	staged := make(map[*node]*results.Simple, len(s.order))
	for _, nd := range s.order {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		default:
		}

		if err := nd.prepared.Params.Simulate(s.rng); err != nil {
			return fmt.Errorf("%w: %v", ErrIteration, err)
		}
		data, err := nd.assembler.Build(nd.prepared.Index, s.rng)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIteration, err)
		}
		for _, sub := range nd.subs {
			if err := integrate(data, sub.product, staged[sub]); err != nil {
				return fmt.Errorf("%w: %v", ErrIteration, err)
			}
		}
		res, err := results.NewSimple(data, s.calc.Solver())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIteration, err)
		}
		nd.data, staged[nd] = data, res
	}

	// all solves succeeded, commit the iteration
	for nd, res := range staged {
		nd.last = res
	}
	if err := s.capturePins(); err != nil {
		return err
	}
	s.result.append(s.root.last)
	return nil
}

// integrate writes the sub-system's per-unit vectors into the host
// matrices: its B column becomes the sub inventory, its cost cell the
// sub cost, both expressed for one unit of the reference product.
func integrate(data *assemble.MatrixData, product core.ProcessProduct, sub *results.Simple) error {
	j, ok := data.TechIndex.Of(product)
	if !ok {
		return fmt.Errorf("sub-system %v not indexed", product)
	}
	envi := sub.EnviIndex()
	if envi != nil && data.B != nil {
		g := sub.SignedFlows()
		var setErr error
		envi.Each(func(r int, ref core.FlowRef) bool {
			row, ok := data.EnviIndex.Of(ref.FlowID, ref.LocationID)
			if !ok {
				return true // flow unknown to the host shape, nothing to carry
			}
			setErr = data.B.Set(row, j, g[r])
			return setErr == nil
		})
		if setErr != nil {
			return setErr
		}
	}
	if data.Costs != nil && sub.HasCosts() {
		data.Costs[j] = sub.TotalCosts()
	}
	return nil
}

// capturePins appends direct and upstream vectors of every pinned
// product, computed on the current host matrices.
func (s *Simulator) capturePins() error {
	if len(s.pins) == 0 {
		return nil
	}
	full, err := results.NewLazy(s.root.data, s.calc.Solver())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIteration, err)
	}
	type capture struct{ direct, upstream []float64 }
	captures := make([]capture, len(s.pins))
	for i, p := range s.pins {
		j, ok := s.root.data.TechIndex.Of(p)
		if !ok {
			return fmt.Errorf("%w: %v", ErrPin, p)
		}
		captures[i] = capture{full.DirectFlowsOf(j), full.TotalFlowsOfOne(j)}
	}
	// all captures resolved, append in one go
	for i, p := range s.pins {
		s.result.appendPin(p, captures[i].direct, captures[i].upstream)
	}
	return nil
}

// Run executes up to iterations rounds. Failed iterations are
// discarded and counted; cancellation stops the run with ErrCancelled,
// keeping everything already appended.
func (s *Simulator) Run(ctx context.Context, iterations int) (*Result, error) {
	for i := 0; i < iterations; i++ {
		err := s.Next(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrIteration):
			s.result.failed++
		default:
			return s.result, err
		}
	}
	return s.result, nil
}
