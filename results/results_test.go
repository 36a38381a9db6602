package results_test

import (
	"testing"

	"github.com/lcafoundry/lcacore/assemble"
	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/index"
	"github.com/lcafoundry/lcacore/matrix"
	"github.com/lcafoundry/lcacore/results"
	"github.com/lcafoundry/lcacore/solver"
	"github.com/stretchr/testify/require"
)

// loopSystem is a three-product system with a feedback loop between
// products 2 and 3 and a single output flow.
//
//	A = [[1,0,0],[-1,1,-0.1],[0,-2,1]], B = [1 2 3], f = [1,0,0]
//
// Known values: s = [1, 1.25, 2.5], g = 11, M = [11, 10, 4],
// loop factors [1, 0.8, 0.8], total factors [1, 1, 2].
func loopSystem(t *testing.T) *assemble.MatrixData {
	t.Helper()
	ix := index.NewTechIndex(core.ProcessProduct{ProcessID: 1, FlowID: 100}, 1)
	ix.Add(core.ProcessProduct{ProcessID: 2, FlowID: 200})
	ix.Add(core.ProcessProduct{ProcessID: 3, FlowID: 300})

	envi := index.NewEnviIndex(false)
	envi.Add(core.FlowRef{FlowID: 400, Type: core.ElementaryFlow})

	a, err := matrix.DenseOf([][]float64{
		{1, 0, 0},
		{-1, 1, -0.1},
		{0, -2, 1},
	})
	require.NoError(t, err)
	b, err := matrix.DenseOf([][]float64{{1, 2, 3}})
	require.NoError(t, err)
	c, err := matrix.DenseOf([][]float64{{2}})
	require.NoError(t, err)

	impactIx := index.NewImpactIndex([]core.ImpactCategory{{ID: 21, Name: "gwp"}})

	return &assemble.MatrixData{
		TechIndex:   ix,
		EnviIndex:   envi,
		ImpactIndex: impactIx,
		A:           a,
		B:           b,
		C:           c,
		Demand:      ix.DemandVector(),
		Costs:       []float64{5, 1, 0},
	}
}

// fullProviders builds both full variants over the same data.
func fullProviders(t *testing.T, data *assemble.MatrixData) map[string]results.Full {
	t.Helper()
	eager, err := results.NewEager(data, solver.NewDense())
	require.NoError(t, err)
	lazy, err := results.NewLazy(data, solver.NewDense())
	require.NoError(t, err)
	return map[string]results.Full{"eager": eager, "lazy": lazy}
}

// TestSimple_LoopSystem checks s, total requirements, g, h, and costs.
func TestSimple_LoopSystem(t *testing.T) {
	r, err := results.NewSimple(loopSystem(t), solver.NewDense())
	require.NoError(t, err)

	s := r.ScalingVector()
	require.InDelta(t, 1.0, s[0], 1e-12)
	require.InDelta(t, 1.25, s[1], 1e-12)
	require.InDelta(t, 2.5, s[2], 1e-12)

	tr := r.TotalRequirements()
	for j, want := range []float64{1, 1.25, 2.5} {
		require.InDelta(t, want, tr[j], 1e-12, "column %d", j)
	}

	require.InDelta(t, 11.0, r.TotalFlowOf(0), 1e-12)
	require.InDelta(t, 22.0, r.TotalImpactOf(0), 1e-12)
	require.True(t, r.HasCosts())
	require.InDelta(t, 5*1+1*1.25, r.TotalCosts(), 1e-12)
}

// TestFull_LoopAndTotalFactors: the loop-factor identity and the total
// factors on the feedback system, identical across variants.
func TestFull_LoopAndTotalFactors(t *testing.T) {
	data := loopSystem(t)
	for name, r := range fullProviders(t, data) {
		wantLoop := []float64{1, 0.8, 0.8}
		wantTotal := []float64{1, 1, 2}
		for j := 0; j < 3; j++ {
			require.InDelta(t, wantLoop[j], r.LoopFactorOf(j), 1e-12, "%s loop %d", name, j)
			require.InDelta(t, wantTotal[j], r.TotalFactorOf(j), 1e-12, "%s total %d", name, j)

			// loop_j · A[j,j] · A⁻¹[j,j] = 1
			sol := r.SolutionOfOne(j)
			require.InDelta(t, 1.0, r.LoopFactorOf(j)*r.TechValueOf(j, j)*sol[j], 1e-12, "%s identity %d", name, j)
		}
	}
}

// TestFull_UpstreamFlows: M columns, their scaling by the total factor,
// and M·f = g.
func TestFull_UpstreamFlows(t *testing.T) {
	data := loopSystem(t)
	for name, r := range fullProviders(t, data) {
		wantM := []float64{11, 10, 4}
		for j := 0; j < 3; j++ {
			require.InDelta(t, wantM[j], r.TotalFlowOfOne(0, j), 1e-10, "%s M[0,%d]", name, j)
		}

		// M·f accumulates to the inventory g
		mf := 0.0
		for j, fj := range data.Demand {
			mf += r.TotalFlowsOfOne(j)[0] * fj
		}
		require.InDelta(t, r.TotalFlowOf(0), mf, 1e-10, name)

		// node totals of the contribution tree
		want := []float64{11, 10, 8}
		for j := 0; j < 3; j++ {
			require.InDelta(t, want[j], r.TotalFlowsOf(j)[0], 1e-10, "%s node %d", name, j)
		}

		require.InDelta(t, 1.0*1, r.DirectFlowsOf(0)[0], 1e-12, name)
		require.InDelta(t, 2*1.25, r.DirectFlowsOf(1)[0], 1e-12, name)
	}
}

// TestFull_ImpactsAndCosts: characterized splits and cost ops.
func TestFull_ImpactsAndCosts(t *testing.T) {
	data := loopSystem(t)
	for name, r := range fullProviders(t, data) {
		require.InDelta(t, 22.0, r.TotalImpactsOfOne(0)[0], 1e-10, name)
		require.InDelta(t, 2*2*1.25, r.DirectImpactsOf(1)[0], 1e-12, name)
		require.InDelta(t, 22.0, r.FlowImpactsOf(0)[0], 1e-10, name)

		require.InDelta(t, 5.0, r.DirectCostsOf(0), 1e-12, name)
		// upstream cost of one unit of the reference: 5 + 1·1.25
		require.InDelta(t, 6.25, r.TotalCostsOfOne(0), 1e-12, name)
		require.InDelta(t, r.TotalCosts(), r.TotalCostsOf(0), 1e-12, name)
	}
}

// TestSignAdoption: a 1×1 system with one exchange per direction
// combination reports totals [1,2,3,4], inputs flipped positive.
func TestSignAdoption(t *testing.T) {
	ix := index.NewTechIndex(core.ProcessProduct{ProcessID: 1, FlowID: 100}, 1)
	envi := index.NewEnviIndex(false)
	envi.Add(core.FlowRef{FlowID: 401, Type: core.ElementaryFlow})
	envi.Add(core.FlowRef{FlowID: 402, Type: core.ElementaryFlow, IsInput: true})
	envi.Add(core.FlowRef{FlowID: 403, Type: core.ElementaryFlow})
	envi.Add(core.FlowRef{FlowID: 404, Type: core.ElementaryFlow, IsInput: true})

	a, err := matrix.DenseOf([][]float64{{1}})
	require.NoError(t, err)
	b, err := matrix.DenseOf([][]float64{{1}, {-2}, {3}, {-4}})
	require.NoError(t, err)

	data := &assemble.MatrixData{
		TechIndex: ix, EnviIndex: envi, A: a, B: b, Demand: ix.DemandVector(),
	}
	for name, r := range fullProviders(t, data) {
		require.Equal(t, []float64{1, 2, 3, 4}, r.TotalFlows(), name)
		require.Equal(t, []float64{1, -2, 3, -4}, r.SignedFlows(), name)
		require.Equal(t, []float64{1, 2, 3, 4}, r.TotalFlowsOfOne(0), name)
		require.Equal(t, 2.0, r.DirectFlowOf(1, 0), name)
	}
}

// TestLazy_Idempotence: repeated lazy queries return consistent values.
func TestLazy_Idempotence(t *testing.T) {
	r, err := results.NewLazy(loopSystem(t), solver.NewDense())
	require.NoError(t, err)
	first := r.TotalFlowsOfOne(2)
	second := r.TotalFlowsOfOne(2)
	require.Equal(t, first, second)
	require.InDelta(t, 4.0, first[0], 1e-10)
}
