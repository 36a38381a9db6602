// Package assemble: the assembled matrix bundle.
package assemble

import (
	"github.com/lcafoundry/lcacore/index"
	"github.com/lcafoundry/lcacore/matrix"
)

// MatrixData is the output of one assembly: matrices plus the indices
// that address their rows and columns. EnviIndex, ImpactIndex, B, C and
// Costs are nil when the setup did not request them.
type MatrixData struct {
	TechIndex   *index.TechIndex
	EnviIndex   *index.EnviIndex
	ImpactIndex *index.ImpactIndex

	// A is the n×n technology matrix.
	A *matrix.Dense
	// B is the m×n intervention matrix; nil when no elementary flows.
	B *matrix.Dense
	// C is the k×m characterization matrix; nil without an impact method.
	C *matrix.Dense

	// Demand is the final-demand vector: demand at position 0.
	Demand []float64
	// Costs holds net costs per column; nil unless costs were requested.
	Costs []float64

	// Diagnostics records formula fallbacks collected during assembly.
	Diagnostics []Diagnostic
}

// Diagnostic records one degraded evaluation: the formula failed and
// the literal amount was used instead.
type Diagnostic struct {
	ProcessID  uint64
	ExchangeID uint64
	Formula    string
	Err        error
}
