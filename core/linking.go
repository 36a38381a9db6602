// Package core: provider-linking policy.
package core

// ProviderCallback lets callers steer provider resolution interactively.
// Cancel vetoes linking an exchange entirely; Select narrows a candidate
// set when more than one provider remains after the policy checks.
type ProviderCallback interface {
	// Cancel reports whether the exchange must stay unlinked.
	Cancel(e CalcExchange) bool
	// Select returns the subset of candidates to consider; an empty
	// result leaves the exchange unlinked.
	Select(e CalcExchange, candidates []ProcessProduct) []ProcessProduct
}

// LinkingConfig configures provider search and tech-index expansion.
type LinkingConfig struct {
	// Linking selects how default providers constrain resolution.
	Linking ProviderLinking
	// Preferred breaks ties between remaining candidates.
	Preferred ProcessType
	// Callback, when non-nil, may cancel or narrow candidate sets.
	Callback ProviderCallback
}

// DefaultLinkingConfig prefers declared default providers and unit
// processes, with no callback installed.
func DefaultLinkingConfig() LinkingConfig {
	return LinkingConfig{
		Linking:   LinkingPreferDefaults,
		Preferred: UnitProcess,
	}
}
