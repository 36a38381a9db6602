// Package index: the technology index.
package index

import (
	"errors"

	"github.com/lcafoundry/lcacore/core"
)

// ErrUnknownFlow names a missed flow or position lookup. The index
// lookups themselves report a miss through their bool result and do not
// return it.
var ErrUnknownFlow = errors.New("index: unknown flow")

// TechIndex is the ordered list of ProcessProduct columns of the
// technology matrix, plus the link table resolved during expansion.
//
// Invariants (kept by construction):
//   - the reference product sits at position 0;
//   - every provider stored in the link table is an index entry.
type TechIndex struct {
	entries []core.ProcessProduct
	pos     map[core.ProcessProduct]int
	links   map[core.ExchangeKey]core.ProcessProduct
	demand  float64
}

// NewTechIndex creates an index seeded with the reference product at
// position 0 and the given final demand.
func NewTechIndex(ref core.ProcessProduct, demand float64) *TechIndex {
	ix := &TechIndex{
		entries: make([]core.ProcessProduct, 0, 16),
		pos:     make(map[core.ProcessProduct]int, 16),
		links:   make(map[core.ExchangeKey]core.ProcessProduct),
		demand:  demand,
	}
	ix.Add(ref)
	return ix
}

// Size returns the number of columns.
func (ix *TechIndex) Size() int { return len(ix.entries) }

// Demand returns the magnitude of final demand for the reference product.
func (ix *TechIndex) Demand() float64 { return ix.demand }

// Ref returns the reference product (position 0).
func (ix *TechIndex) Ref() core.ProcessProduct { return ix.entries[0] }

// At returns the entry at position i.
func (ix *TechIndex) At(i int) (core.ProcessProduct, bool) {
	if i < 0 || i >= len(ix.entries) {
		return core.ProcessProduct{}, false
	}
	return ix.entries[i], true
}

// Of returns the position of p, if indexed.
func (ix *TechIndex) Of(p core.ProcessProduct) (int, bool) {
	i, ok := ix.pos[p]
	return i, ok
}

// Contains reports whether p is an index entry.
func (ix *TechIndex) Contains(p core.ProcessProduct) bool {
	_, ok := ix.pos[p]
	return ok
}

// Add appends p if absent and returns its position.
func (ix *TechIndex) Add(p core.ProcessProduct) int {
	if i, ok := ix.pos[p]; ok {
		return i
	}
	i := len(ix.entries)
	ix.entries = append(ix.entries, p)
	ix.pos[p] = i
	return i
}

// PutLink records that the exchange addressed by key is served by
// provider, indexing the provider if needed so the link-table invariant
// holds.
func (ix *TechIndex) PutLink(key core.ExchangeKey, provider core.ProcessProduct) {
	ix.Add(provider)
	ix.links[key] = provider
}

// LinkedProvider returns the provider resolved for the exchange key.
func (ix *TechIndex) LinkedProvider(key core.ExchangeKey) (core.ProcessProduct, bool) {
	p, ok := ix.links[key]
	return p, ok
}

// EachLink visits every resolved link; return false to stop early.
// Iteration order is unspecified.
func (ix *TechIndex) EachLink(fn func(key core.ExchangeKey, provider core.ProcessProduct) bool) {
	for k, p := range ix.links {
		if !fn(k, p) {
			return
		}
	}
}

// LinkCount returns the number of resolved links.
func (ix *TechIndex) LinkCount() int { return len(ix.links) }

// Each visits the entries in index order; return false to stop early.
func (ix *TechIndex) Each(fn func(i int, p core.ProcessProduct) bool) {
	for i, p := range ix.entries {
		if !fn(i, p) {
			return
		}
	}
}

// ProcessIDs returns the distinct process ids of the index, the batch
// the data source loads exchanges for.
func (ix *TechIndex) ProcessIDs() map[uint64]struct{} {
	ids := make(map[uint64]struct{}, len(ix.entries))
	for _, p := range ix.entries {
		ids[p.ProcessID] = struct{}{}
	}
	return ids
}

// DemandVector builds the final-demand vector: demand at position 0,
// zero elsewhere.
func (ix *TechIndex) DemandVector() []float64 {
	f := make([]float64, len(ix.entries))
	f[0] = ix.demand
	return f
}
