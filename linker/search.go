// Package linker: the provider search.
package linker

import (
	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/data"
)

// Search picks providers for unlinked technosphere exchanges under one
// linking configuration.
type Search struct {
	source data.Source
	config core.LinkingConfig
}

// NewSearch returns a provider search over the given source.
func NewSearch(source data.Source, config core.LinkingConfig) *Search {
	return &Search{source: source, config: config}
}

// IsLinkCandidate reports whether the search should try to link e: a
// linkable technosphere exchange, additionally carrying a default
// provider when the policy is LinkingOnlyDefaults.
func (s *Search) IsLinkCandidate(e core.CalcExchange) bool {
	if !e.IsLinkable() {
		return false
	}
	if s.config.Linking == core.LinkingOnlyDefaults && e.DefaultProviderID == 0 {
		return false
	}
	return true
}

// Find returns the provider for e, or ok=false when the exchange stays
// unlinked. The decision order:
//
//	Stage 1 (Cancel): an installed callback may veto the exchange.
//	Stage 2 (Candidates): providers of e.FlowID; none means unlinked.
//	Stage 3 (Default): unless the policy ignores defaults, a candidate
//	matching DefaultProviderID wins immediately; under
//	LinkingOnlyDefaults a miss means unlinked.
//	Stage 4 (Single): a sole candidate wins.
//	Stage 5 (Select): the callback may narrow the candidate set.
//	Stage 6 (Tie-break): the first candidate of the preferred process
//	type, else the first candidate by provider order.
//
// Errors: only source failures; policy outcomes are ok=false.
func (s *Search) Find(e core.CalcExchange) (core.ProcessProduct, bool, error) {
	var none core.ProcessProduct
	if s.config.Callback != nil && s.config.Callback.Cancel(e) {
		return none, false, nil
	}

	candidates, err := s.source.Providers(e.FlowID)
	if err != nil {
		return none, false, err
	}
	if len(candidates) == 0 {
		return none, false, nil
	}

	if s.config.Linking != core.LinkingIgnoreDefaults && e.DefaultProviderID != 0 {
		for _, c := range candidates {
			if c.ProcessID == e.DefaultProviderID {
				return c, true, nil
			}
		}
	}
	if s.config.Linking == core.LinkingOnlyDefaults {
		return none, false, nil
	}

	if len(candidates) == 1 {
		return candidates[0], true, nil
	}

	if s.config.Callback != nil {
		candidates = s.config.Callback.Select(e, candidates)
		switch len(candidates) {
		case 0:
			return none, false, nil
		case 1:
			return candidates[0], true, nil
		}
	}

	for _, c := range candidates {
		typ, err := s.source.ProcessType(c.ProcessID)
		if err != nil {
			continue // provider without a known type never wins the tie-break
		}
		if typ == s.config.Preferred {
			return c, true, nil
		}
	}
	return candidates[0], true, nil
}
