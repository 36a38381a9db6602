// Package index: the environment (flow) index.
package index

import "github.com/lcafoundry/lcacore/core"

// locKey keys a regionalised flow row.
type locKey struct{ flow, loc uint64 }

// EnviIndex is the ordered list of FlowRef rows of the intervention
// matrix. A regionalised index distinguishes rows by (flow, location);
// a plain index by flow only. The mode is fixed at construction, the
// two are mutually exclusive for a given index.
type EnviIndex struct {
	entries      []core.FlowRef
	regionalized bool
	byFlow       map[uint64]int
	byPair       map[locKey]int
}

// NewEnviIndex creates an empty flow index in the requested mode.
func NewEnviIndex(regionalized bool) *EnviIndex {
	ix := &EnviIndex{regionalized: regionalized}
	if regionalized {
		ix.byPair = make(map[locKey]int)
	} else {
		ix.byFlow = make(map[uint64]int)
	}
	return ix
}

// IsRegionalized reports the lookup mode.
func (ix *EnviIndex) IsRegionalized() bool { return ix.regionalized }

// Size returns the number of rows.
func (ix *EnviIndex) Size() int { return len(ix.entries) }

// Add appends ref if its key is absent and returns the row position.
// In plain mode the location of ref is ignored for the key (and zeroed
// in the stored entry); in regionalised mode the pair keys the row.
func (ix *EnviIndex) Add(ref core.FlowRef) int {
	if ix.regionalized {
		k := locKey{ref.FlowID, ref.LocationID}
		if i, ok := ix.byPair[k]; ok {
			return i
		}
		i := len(ix.entries)
		ix.entries = append(ix.entries, ref)
		ix.byPair[k] = i
		return i
	}
	if i, ok := ix.byFlow[ref.FlowID]; ok {
		return i
	}
	i := len(ix.entries)
	ref.LocationID = core.NoLocation
	ix.entries = append(ix.entries, ref)
	ix.byFlow[ref.FlowID] = i
	return i
}

// Of returns the row of (flowID, locationID). In plain mode the
// location argument is ignored.
func (ix *EnviIndex) Of(flowID, locationID uint64) (int, bool) {
	if ix.regionalized {
		i, ok := ix.byPair[locKey{flowID, locationID}]
		return i, ok
	}
	i, ok := ix.byFlow[flowID]
	return i, ok
}

// At returns the entry at row i.
func (ix *EnviIndex) At(i int) (core.FlowRef, bool) {
	if i < 0 || i >= len(ix.entries) {
		return core.FlowRef{}, false
	}
	return ix.entries[i], true
}

// Each visits the rows in index order; return false to stop early.
func (ix *EnviIndex) Each(fn func(i int, ref core.FlowRef) bool) {
	for i, ref := range ix.entries {
		if !fn(i, ref) {
			return
		}
	}
}
