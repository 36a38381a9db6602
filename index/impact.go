// Package index: the impact-category index.
package index

import "github.com/lcafoundry/lcacore/core"

// ImpactIndex is the ordered list of impact categories, one row of the
// characterization matrix each.
type ImpactIndex struct {
	entries []core.ImpactCategory
	byID    map[uint64]int
}

// NewImpactIndex builds the index from the categories of a method,
// keeping method order.
func NewImpactIndex(categories []core.ImpactCategory) *ImpactIndex {
	ix := &ImpactIndex{
		entries: make([]core.ImpactCategory, 0, len(categories)),
		byID:    make(map[uint64]int, len(categories)),
	}
	for _, c := range categories {
		if _, ok := ix.byID[c.ID]; ok {
			continue
		}
		ix.byID[c.ID] = len(ix.entries)
		ix.entries = append(ix.entries, c)
	}
	return ix
}

// Size returns the number of categories.
func (ix *ImpactIndex) Size() int { return len(ix.entries) }

// Of returns the row of the category id.
func (ix *ImpactIndex) Of(id uint64) (int, bool) {
	i, ok := ix.byID[id]
	return i, ok
}

// At returns the category at row i.
func (ix *ImpactIndex) At(i int) (core.ImpactCategory, bool) {
	if i < 0 || i >= len(ix.entries) {
		return core.ImpactCategory{}, false
	}
	return ix.entries[i], true
}

// Each visits the categories in index order; return false to stop early.
func (ix *ImpactIndex) Each(fn func(i int, c core.ImpactCategory) bool) {
	for i, c := range ix.entries {
		if !fn(i, c) {
			return
		}
	}
}
