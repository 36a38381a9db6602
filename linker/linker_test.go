package linker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/data"
	"github.com/lcafoundry/lcacore/linker"
	"github.com/stretchr/testify/require"
)

// twoProviderSource registers p1 (unit process) and p2 (LCI result),
// both producing flow 100.
func twoProviderSource(t *testing.T) *data.MemSource {
	t.Helper()
	src := data.NewMemSource()
	src.PutProcess(1, core.UnitProcess, []core.CalcExchange{
		{ProcessID: 1, ExchangeID: 1, FlowID: 100, Type: core.ProductFlow, Amount: 1},
	})
	src.PutProcess(2, core.LCIResult, []core.CalcExchange{
		{ProcessID: 2, ExchangeID: 1, FlowID: 100, Type: core.ProductFlow, Amount: 1},
	})
	return src
}

func productInput(defaultProvider uint64) core.CalcExchange {
	return core.CalcExchange{
		ProcessID: 9, ExchangeID: 7, FlowID: 100,
		Type: core.ProductFlow, IsInput: true, Amount: 0.5,
		DefaultProviderID: defaultProvider,
	}
}

// TestSearch_DefaultWins: under PREFER_DEFAULTS the default provider
// beats the preferred process type.
func TestSearch_DefaultWins(t *testing.T) {
	s := linker.NewSearch(twoProviderSource(t), core.LinkingConfig{
		Linking:   core.LinkingPreferDefaults,
		Preferred: core.UnitProcess,
	})
	p, ok, err := s.Find(productInput(2))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(2), p.ProcessID)
}

// TestSearch_OnlyDefaultsRejects: no default set under ONLY_DEFAULTS
// leaves the exchange unlinked.
func TestSearch_OnlyDefaultsRejects(t *testing.T) {
	s := linker.NewSearch(twoProviderSource(t), core.LinkingConfig{
		Linking:   core.LinkingOnlyDefaults,
		Preferred: core.UnitProcess,
	})
	require.False(t, s.IsLinkCandidate(productInput(0)))

	_, ok, err := s.Find(productInput(0))
	require.NoError(t, err)
	require.False(t, ok)
}

// TestSearch_TieBreakPreferredType: no default, two candidates, the
// preferred type wins.
func TestSearch_TieBreakPreferredType(t *testing.T) {
	src := twoProviderSource(t)
	for _, tc := range []struct {
		preferred core.ProcessType
		want      uint64
	}{
		{core.UnitProcess, 1},
		{core.LCIResult, 2},
	} {
		s := linker.NewSearch(src, core.LinkingConfig{
			Linking:   core.LinkingPreferDefaults,
			Preferred: tc.preferred,
		})
		p, ok, err := s.Find(productInput(0))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, tc.want, p.ProcessID)
	}
}

type vetoCallback struct {
	cancel map[uint64]bool
	keep   uint64
}

func (c vetoCallback) Cancel(e core.CalcExchange) bool { return c.cancel[e.ExchangeID] }

func (c vetoCallback) Select(e core.CalcExchange, candidates []core.ProcessProduct) []core.ProcessProduct {
	for _, p := range candidates {
		if p.ProcessID == c.keep {
			return []core.ProcessProduct{p}
		}
	}
	return nil
}

// TestSearch_Callback: Cancel vetoes, Select narrows.
func TestSearch_Callback(t *testing.T) {
	s := linker.NewSearch(twoProviderSource(t), core.LinkingConfig{
		Linking:   core.LinkingPreferDefaults,
		Preferred: core.UnitProcess,
		Callback:  vetoCallback{cancel: map[uint64]bool{7: true}},
	})
	_, ok, err := s.Find(productInput(0))
	require.NoError(t, err)
	require.False(t, ok)

	s = linker.NewSearch(twoProviderSource(t), core.LinkingConfig{
		Linking:   core.LinkingPreferDefaults,
		Preferred: core.UnitProcess,
		Callback:  vetoCallback{keep: 2},
	})
	p, ok, err := s.Find(productInput(0))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(2), p.ProcessID)
}

// chainSource builds 1 → 2 → 3 → 1 (cyclic): each process consumes the
// product of the next.
func chainSource(t *testing.T) *data.MemSource {
	t.Helper()
	src := data.NewMemSource()
	put := func(id, outFlow, inFlow uint64) {
		src.PutProcess(id, core.UnitProcess, []core.CalcExchange{
			{ProcessID: id, ExchangeID: 1, FlowID: outFlow, Type: core.ProductFlow, Amount: 1},
			{ProcessID: id, ExchangeID: 2, FlowID: inFlow, Type: core.ProductFlow, IsInput: true, Amount: 0.5},
		})
	}
	put(1, 100, 200)
	put(2, 200, 300)
	put(3, 300, 100)
	return src
}

// TestBuilder_CyclicExpansion: BFS terminates on the cycle; reference at
// position 0; every linked provider is indexed.
func TestBuilder_CyclicExpansion(t *testing.T) {
	b := linker.NewBuilder(chainSource(t), core.DefaultLinkingConfig())
	ix, err := b.Build(context.Background(), &core.ProductSystem{
		ID: 10, ReferenceProcessID: 1, ReferenceFlowID: 100, Demand: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 3, ix.Size())
	require.Equal(t, core.ProcessProduct{ProcessID: 1, FlowID: 100}, ix.Ref())
	require.Equal(t, 3, ix.LinkCount())

	ix.EachLink(func(key core.ExchangeKey, provider core.ProcessProduct) bool {
		require.True(t, ix.Contains(provider))
		return true
	})
}

// TestBuilder_SearchOverridesDeclaredLink: the provider search runs
// for every link candidate and its result replaces the author-declared
// link; here the tie-break resolves to the unit process, not the
// declared LCI result.
func TestBuilder_SearchOverridesDeclaredLink(t *testing.T) {
	src := twoProviderSource(t)
	src.PutProcess(9, core.UnitProcess, []core.CalcExchange{
		{ProcessID: 9, ExchangeID: 1, FlowID: 900, Type: core.ProductFlow, Amount: 1},
		productInput(0),
	})
	b := linker.NewBuilder(src, core.DefaultLinkingConfig())
	ix, err := b.Build(context.Background(), &core.ProductSystem{
		ID: 10, ReferenceProcessID: 9, ReferenceFlowID: 900, Demand: 1,
		Links: []core.ProcessLink{
			{ProviderID: 2, ProcessID: 9, FlowID: 100, ExchangeID: 7},
		},
	})
	require.NoError(t, err)

	provider, ok := ix.LinkedProvider(core.ExchangeKey{ProcessID: 9, ExchangeID: 7})
	require.True(t, ok)
	require.Equal(t, uint64(1), provider.ProcessID)
}

// TestBuilder_DeclaredLinkSurvivesUnresolved: where the search
// resolves nothing (only-defaults policy, no default set) the declared
// link still binds and its provider is indexed.
func TestBuilder_DeclaredLinkSurvivesUnresolved(t *testing.T) {
	src := twoProviderSource(t)
	src.PutProcess(9, core.UnitProcess, []core.CalcExchange{
		{ProcessID: 9, ExchangeID: 1, FlowID: 900, Type: core.ProductFlow, Amount: 1},
		productInput(0),
	})
	b := linker.NewBuilder(src, core.LinkingConfig{
		Linking:   core.LinkingOnlyDefaults,
		Preferred: core.UnitProcess,
	})
	ix, err := b.Build(context.Background(), &core.ProductSystem{
		ID: 10, ReferenceProcessID: 9, ReferenceFlowID: 900, Demand: 1,
		Links: []core.ProcessLink{
			{ProviderID: 2, ProcessID: 9, FlowID: 100, ExchangeID: 7},
		},
	})
	require.NoError(t, err)

	provider, ok := ix.LinkedProvider(core.ExchangeKey{ProcessID: 9, ExchangeID: 7})
	require.True(t, ok)
	require.Equal(t, uint64(2), provider.ProcessID)
	require.True(t, ix.Contains(provider))
}

// TestBuilder_Cancelled
func TestBuilder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := linker.NewBuilder(chainSource(t), core.DefaultLinkingConfig())
	_, err := b.Build(ctx, &core.ProductSystem{ReferenceProcessID: 1, ReferenceFlowID: 100, Demand: 1})
	if !errors.Is(err, linker.ErrCancelled) {
		t.Errorf("want ErrCancelled, got %v", err)
	}
}
