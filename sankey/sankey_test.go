package sankey_test

import (
	"testing"

	"github.com/lcafoundry/lcacore/assemble"
	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/index"
	"github.com/lcafoundry/lcacore/matrix"
	"github.com/lcafoundry/lcacore/results"
	"github.com/lcafoundry/lcacore/sankey"
	"github.com/lcafoundry/lcacore/solver"
	"github.com/stretchr/testify/require"
)

// cyclicResult is the three-product feedback system: scaling
// [1, 1.25, 2.5], upstream totals of the single flow [11, 10, 8].
func cyclicResult(t *testing.T) results.Full {
	t.Helper()
	ix := index.NewTechIndex(core.ProcessProduct{ProcessID: 1, FlowID: 1}, 1)
	ix.Add(core.ProcessProduct{ProcessID: 2, FlowID: 2})
	ix.Add(core.ProcessProduct{ProcessID: 3, FlowID: 3})

	envi := index.NewEnviIndex(false)
	envi.Add(core.FlowRef{FlowID: 42, Type: core.ElementaryFlow})

	a, err := matrix.DenseOf([][]float64{
		{1, 0, 0},
		{-1, 1, -0.1},
		{0, -2, 1},
	})
	require.NoError(t, err)
	b, err := matrix.DenseOf([][]float64{{1, 2, 3}})
	require.NoError(t, err)

	r, err := results.NewEager(&assemble.MatrixData{
		TechIndex: ix,
		EnviIndex: envi,
		A:         a,
		B:         b,
		Demand:    ix.DemandVector(),
	}, solver.NewDense())
	require.NoError(t, err)
	return r
}

// TestBuild_Cycles: the feedback loop closes as an edge to an already
// materialised node; totals, directs, and shares per column.
func TestBuild_Cycles(t *testing.T) {
	r := cyclicResult(t)
	g := sankey.OfFlow(r, 0).Build()

	require.Equal(t, 3, g.NodeCount())

	wantDirect := []float64{1, 2.5, 7.5}
	wantTotal := []float64{11, 10, 8}
	wantShare := []float64{1, 10.0 / 11.0, 8.0 / 11.0}
	visited := 0
	g.Each(func(n *sankey.Node) bool {
		visited++
		require.InDelta(t, wantDirect[n.Index], n.Direct, 1e-10, "node %d", n.Index)
		require.InDelta(t, wantTotal[n.Index], n.Total, 1e-10, "node %d", n.Index)
		require.InDelta(t, wantShare[n.Index], n.Share, 1e-10, "node %d", n.Index)
		return true
	})
	require.Equal(t, 3, visited)

	require.Same(t, g.Root, g.NodeOf(0))
	require.Equal(t, []*sankey.Node{g.NodeOf(1)}, g.Root.Providers)
	require.Equal(t, []*sankey.Node{g.NodeOf(2)}, g.NodeOf(1).Providers)
	// the 3 → 2 feedback edge points back at the existing node
	require.Equal(t, []*sankey.Node{g.NodeOf(1)}, g.NodeOf(2).Providers)
}

// TestBuild_MinShare cuts the low-share provider off.
func TestBuild_MinShare(t *testing.T) {
	r := cyclicResult(t)
	g := sankey.OfFlow(r, 0).MinShare(0.8).Build()
	require.Equal(t, 2, g.NodeCount())
	require.NotNil(t, g.NodeOf(1))
	require.Nil(t, g.NodeOf(2))
}

// TestBuild_MaxNodes bounds the graph; the root survives a bound of 1.
func TestBuild_MaxNodes(t *testing.T) {
	r := cyclicResult(t)

	g := sankey.OfFlow(r, 0).MaxNodes(2).Build()
	require.Equal(t, 2, g.NodeCount())

	g = sankey.OfFlow(r, 0).MaxNodes(1).Build()
	require.Equal(t, 1, g.NodeCount())
	require.Empty(t, g.Root.Providers)
}

// TestBuild_ImpactSelection: characterising the single flow with factor
// 2 doubles totals, shares unchanged.
func TestBuild_ImpactSelection(t *testing.T) {
	r := cyclicResult(t)
	c, err := matrix.DenseOf([][]float64{{2}})
	require.NoError(t, err)
	data := r.Data()
	data.C = c
	data.ImpactIndex = index.NewImpactIndex([]core.ImpactCategory{{ID: 9, Name: "gwp"}})
	full, err := results.NewEager(data, solver.NewDense())
	require.NoError(t, err)

	g := sankey.OfImpact(full, 0).Build()
	require.InDelta(t, 22.0, g.Root.Total, 1e-10)
	require.InDelta(t, 10.0/11.0, g.NodeOf(1).Share, 1e-10)
}
