// Package core: ready-to-assemble exchange records.
package core

// CalcExchange is one exchange of a process in the form the matrix
// assembler consumes: identifiers resolved to numbers, amount and cost
// either literal or formula-driven, and optional uncertainty.
type CalcExchange struct {
	// ProcessID is the owning process.
	ProcessID uint64
	// ExchangeID is the persisted exchange identifier, unique per process.
	ExchangeID uint64
	// FlowID identifies the exchanged flow.
	FlowID uint64
	// Type is the flow classification.
	Type FlowType
	// IsInput is the exchange direction.
	IsInput bool

	// Amount is the literal amount; ignored when Formula evaluates.
	Amount float64
	// Formula, when non-empty, is evaluated against the process scope.
	Formula string

	// DefaultProviderID names the provider the author preferred; 0 if none.
	DefaultProviderID uint64
	// LocationID regionalises elementary exchanges; NoLocation otherwise.
	LocationID uint64

	// Uncertainty, when present, is resampled per simulation iteration.
	Uncertainty *Uncertainty

	// CostValue is the literal cost; CostFormula overrides when non-empty.
	CostValue   float64
	CostFormula string

	// DQEntry is the persisted data-quality entry "(v1;v2;...)"; empty if none.
	DQEntry string
}

// IsQuantRef reports whether e is the quantitative reference of the given
// process product: the product output or waste input whose flow matches
// the column's flow. Such exchanges land on the matrix diagonal.
func (e CalcExchange) IsQuantRef(p ProcessProduct) bool {
	if e.ProcessID != p.ProcessID || e.FlowID != p.FlowID {
		return false
	}
	switch e.Type {
	case ProductFlow:
		return !e.IsInput
	case WasteFlow:
		return e.IsInput
	default:
		return false
	}
}

// IsLinkable reports whether e is a technosphere exchange that may be
// linked to a provider: a product input or a waste output.
func (e CalcExchange) IsLinkable() bool {
	if e.Type == ElementaryFlow {
		return false
	}
	return (e.IsInput && e.Type == ProductFlow) || (!e.IsInput && e.Type == WasteFlow)
}

// Key returns the exchange key of e, addressing it in the link table.
func (e CalcExchange) Key() ExchangeKey {
	return ExchangeKey{ProcessID: e.ProcessID, ExchangeID: e.ExchangeID}
}
