// Package data: the in-memory source.
package data

import (
	"fmt"
	"sort"

	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/dq"
	"github.com/lcafoundry/lcacore/formula"
)

// MemSource is a map-backed Source. Populate it with the Put* methods
// before handing it to a calculation; it is read-only afterwards.
type MemSource struct {
	exchanges    map[uint64][]core.CalcExchange
	providers    map[uint64][]core.ProcessProduct
	processTypes map[uint64]core.ProcessType
	systems      map[uint64]*core.ProductSystem
	methods      map[uint64]*core.ImpactMethod
	dqSystems    map[uint64]*dq.System
	params       []formula.Param
	allocation   map[uint64][]core.AllocationFactor
	processDQ    map[uint64]string
}

// NewMemSource returns an empty in-memory source.
func NewMemSource() *MemSource {
	return &MemSource{
		exchanges:    make(map[uint64][]core.CalcExchange),
		providers:    make(map[uint64][]core.ProcessProduct),
		processTypes: make(map[uint64]core.ProcessType),
		systems:      make(map[uint64]*core.ProductSystem),
		methods:      make(map[uint64]*core.ImpactMethod),
		dqSystems:    make(map[uint64]*dq.System),
		allocation:   make(map[uint64][]core.AllocationFactor),
		processDQ:    make(map[uint64]string),
	}
}

// PutProcess registers a process with its exchanges. Provider entries
// are derived automatically: every product output and waste input of the
// process becomes a provider of its flow.
func (m *MemSource) PutProcess(processID uint64, typ core.ProcessType, exchanges []core.CalcExchange) {
	m.exchanges[processID] = exchanges
	m.processTypes[processID] = typ
	for _, e := range exchanges {
		provides := (e.Type == core.ProductFlow && !e.IsInput) ||
			(e.Type == core.WasteFlow && e.IsInput)
		if !provides {
			continue
		}
		m.addProvider(e.FlowID, core.ProcessProduct{ProcessID: processID, FlowID: e.FlowID})
	}
}

// PutSystem registers a product system. The system id is additionally
// classified as core.SubSystem and registered as a provider of its
// reference flow, so other systems can link it as a nested sub-system.
func (m *MemSource) PutSystem(s *core.ProductSystem) {
	m.systems[s.ID] = s
	m.processTypes[s.ID] = core.SubSystem
	m.addProvider(s.ReferenceFlowID, core.ProcessProduct{
		ProcessID: s.ID,
		FlowID:    s.ReferenceFlowID,
	})
}

// PutMethod registers an impact method.
func (m *MemSource) PutMethod(method *core.ImpactMethod) {
	m.methods[method.ID] = method
}

// PutDQSystem registers a data-quality system.
func (m *MemSource) PutDQSystem(s *dq.System) {
	m.dqSystems[s.ID] = s
}

// PutParams appends parameter definitions.
func (m *MemSource) PutParams(params ...formula.Param) {
	m.params = append(m.params, params...)
}

// PutAllocationFactors appends allocation factors of a process.
func (m *MemSource) PutAllocationFactors(processID uint64, factors ...core.AllocationFactor) {
	m.allocation[processID] = append(m.allocation[processID], factors...)
}

// PutProcessDQEntry records the process-level data-quality entry string.
func (m *MemSource) PutProcessDQEntry(processID uint64, entry string) {
	m.processDQ[processID] = entry
}

func (m *MemSource) addProvider(flowID uint64, p core.ProcessProduct) {
	for _, q := range m.providers[flowID] {
		if q == p {
			return
		}
	}
	m.providers[flowID] = append(m.providers[flowID], p)
	// stable order independent of registration sequence
	sort.Slice(m.providers[flowID], func(i, j int) bool {
		a, b := m.providers[flowID][i], m.providers[flowID][j]
		if a.ProcessID != b.ProcessID {
			return a.ProcessID < b.ProcessID
		}
		return a.FlowID < b.FlowID
	})
}

// Exchanges implements Source.
func (m *MemSource) Exchanges(processIDs map[uint64]struct{}) (map[uint64][]core.CalcExchange, error) {
	out := make(map[uint64][]core.CalcExchange, len(processIDs))
	for id := range processIDs {
		if exchanges, ok := m.exchanges[id]; ok {
			out[id] = exchanges
		}
	}
	return out, nil
}

// Providers implements Source.
func (m *MemSource) Providers(flowID uint64) ([]core.ProcessProduct, error) {
	return m.providers[flowID], nil
}

// ProcessType implements Source.
func (m *MemSource) ProcessType(processID uint64) (core.ProcessType, error) {
	typ, ok := m.processTypes[processID]
	if !ok {
		return 0, fmt.Errorf("%w: process %d", ErrNotFound, processID)
	}
	return typ, nil
}

// ProductSystem implements Source.
func (m *MemSource) ProductSystem(id uint64) (*core.ProductSystem, error) {
	s, ok := m.systems[id]
	if !ok {
		return nil, fmt.Errorf("%w: product system %d", ErrNotFound, id)
	}
	return s, nil
}

// ImpactMethod implements Source.
func (m *MemSource) ImpactMethod(id uint64) (*core.ImpactMethod, error) {
	method, ok := m.methods[id]
	if !ok {
		return nil, fmt.Errorf("%w: impact method %d", ErrNotFound, id)
	}
	return method, nil
}

// DQSystem implements Source.
func (m *MemSource) DQSystem(id uint64) (*dq.System, error) {
	s, ok := m.dqSystems[id]
	if !ok {
		return nil, fmt.Errorf("%w: dq system %d", ErrNotFound, id)
	}
	return s, nil
}

// Parameters implements Source: global parameters plus those of the
// requested contexts.
func (m *MemSource) Parameters(contexts map[uint64]struct{}) ([]formula.Param, error) {
	var out []formula.Param
	for _, p := range m.params {
		if p.ContextID == formula.GlobalContext {
			out = append(out, p)
			continue
		}
		if _, ok := contexts[p.ContextID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// AllocationFactors implements Source.
func (m *MemSource) AllocationFactors(processIDs map[uint64]struct{}) (map[uint64][]core.AllocationFactor, error) {
	out := make(map[uint64][]core.AllocationFactor)
	for id := range processIDs {
		if factors, ok := m.allocation[id]; ok {
			out[id] = factors
		}
	}
	return out, nil
}

// ProcessDQEntry implements Source.
func (m *MemSource) ProcessDQEntry(processID uint64) (string, error) {
	return m.processDQ[processID], nil
}
