package dq_test

import (
	"context"
	"testing"

	"github.com/lcafoundry/lcacore/calc"
	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/data"
	"github.com/lcafoundry/lcacore/dq"
	"github.com/lcafoundry/lcacore/solver"
	"github.com/stretchr/testify/require"
)

// pedigree is a five-indicator system scored 1..5.
func pedigree(t *testing.T) *dq.System {
	t.Helper()
	sys := &dq.System{ID: 1, Name: "pedigree"}
	names := []string{"reliability", "completeness", "temporal", "geographical", "technological"}
	for i, n := range names {
		sys.Indicators = append(sys.Indicators, dq.Indicator{
			Position: i + 1, Name: n, ScoreCount: 5,
		})
	}
	return sys
}

// TestSystem_EntryRoundTrip: parsing the formatted entry restores the
// score vector for in-range values.
func TestSystem_EntryRoundTrip(t *testing.T) {
	sys := pedigree(t)
	for _, vs := range [][]int{
		{1, 2, 3, 4, 5},
		{5, 4, 3, 2, 1},
		{0, 0, 0, 0, 0},
		{0, 5, 0, 3, 1},
	} {
		got, err := sys.ToValues(sys.Entry(vs))
		require.NoError(t, err)
		require.Equal(t, vs, got)
	}
}

// TestSystem_ToValues: whitespace, n.a., padding, clamping, errors.
func TestSystem_ToValues(t *testing.T) {
	sys := pedigree(t)

	got, err := sys.ToValues(" ( 1 ; n.a. ; 9 ) ")
	require.NoError(t, err)
	require.Equal(t, []int{1, 0, 5, 0, 0}, got)

	got, err = sys.ToValues("")
	require.NoError(t, err)
	require.Equal(t, []int{0, 0, 0, 0, 0}, got)

	_, err = sys.ToValues("1;2;3")
	require.ErrorIs(t, err, dq.ErrInvalidEntry)
	_, err = sys.ToValues("(1;x;3)")
	require.ErrorIs(t, err, dq.ErrInvalidEntry)
}

// dqSource builds the linked two-process system with data-quality
// entries on every elementary exchange except one, a single impact
// category, and the pedigree registered for processes and exchanges.
func dqSource(t *testing.T) *data.MemSource {
	t.Helper()
	src := data.NewMemSource()
	src.PutProcess(1, core.UnitProcess, []core.CalcExchange{
		{ProcessID: 1, ExchangeID: 1, FlowID: 100, Type: core.ProductFlow, Amount: 1},
		{ProcessID: 1, ExchangeID: 2, FlowID: 200, Type: core.ProductFlow, IsInput: true, Amount: 2},
		{ProcessID: 1, ExchangeID: 3, FlowID: 301, Type: core.ElementaryFlow, IsInput: true, Amount: 3, DQEntry: "(1;2;3;4;5)"},
		{ProcessID: 1, ExchangeID: 4, FlowID: 302, Type: core.ElementaryFlow, IsInput: true, Amount: 4, DQEntry: "(5;4;3;2;1)"},
		{ProcessID: 1, ExchangeID: 5, FlowID: 303, Type: core.ElementaryFlow, IsInput: true, Amount: 1, DQEntry: "(1;1;1;1;1)"},
	})
	src.PutProcess(2, core.UnitProcess, []core.CalcExchange{
		{ProcessID: 2, ExchangeID: 1, FlowID: 200, Type: core.ProductFlow, Amount: 1},
		{ProcessID: 2, ExchangeID: 2, FlowID: 301, Type: core.ElementaryFlow, IsInput: true, Amount: 5, DQEntry: "(5;4;3;2;1)"},
		{ProcessID: 2, ExchangeID: 3, FlowID: 302, Type: core.ElementaryFlow, IsInput: true, Amount: 6, DQEntry: "(1;2;3;4;5)"},
		{ProcessID: 2, ExchangeID: 4, FlowID: 303, Type: core.ElementaryFlow, IsInput: true, Amount: 1},
	})
	src.PutSystem(&core.ProductSystem{
		ID: 10, ReferenceProcessID: 1, ReferenceFlowID: 100, Demand: 1,
	})
	src.PutMethod(&core.ImpactMethod{ID: 20, Categories: []core.ImpactCategory{{
		ID:      21,
		Factors: []core.ImpactFactor{{FlowID: 301, Value: 2}, {FlowID: 302, Value: 8}},
	}}})
	src.PutDQSystem(pedigree(t))
	src.PutProcessDQEntry(1, "(1;2;3;4;5)")
	src.PutProcessDQEntry(2, "(5;4;3;2;1)")
	return src
}

// rowIndex resolves flow ids to intervention rows.
type rowIndex struct {
	row func(flow uint64) int
}

// dqResult runs the calculation and aggregates under the given policy.
func dqResult(t *testing.T, cfg dq.Config) (*dq.Result, *rowIndex) {
	t.Helper()
	src := dqSource(t)
	c := calc.New(src, solver.NewDense())
	r, err := c.Eager(context.Background(), calc.Setup{
		SystemID:       10,
		ImpactMethodID: 20,
		Linking:        core.DefaultLinkingConfig(),
	})
	require.NoError(t, err)
	sys := pedigree(t)
	cfg.ProcessSystem, cfg.ExchangeSystem = sys, sys
	res, err := dq.NewResult(cfg, src, r)
	require.NoError(t, err)

	return res, &rowIndex{row: func(flow uint64) int {
		i, ok := r.EnviIndex().Of(flow, core.NoLocation)
		require.True(t, ok, "flow %d", flow)
		return i
	}}
}

// TestResult_WeightedAverage: the two-process fixture under weighted
// averaging with half-up rounding. Direct contributions weigh process 1
// and 2 with [3,10] on the first flow and [4,12] on the second.
func TestResult_WeightedAverage(t *testing.T) {
	res, ix := dqResult(t, dq.Config{
		Aggregation: dq.WeightedAverage,
		NA:          dq.NAExclude,
		Rounding:    dq.RoundHalfUp,
	})

	require.Equal(t, []int{1, 2, 3, 4, 5}, res.ProcessScores(0))
	require.Equal(t, []int{5, 4, 3, 2, 1}, res.ProcessScores(1))

	e1, e2, e3 := ix.row(301), ix.row(302), ix.row(303)
	require.Equal(t, []int{1, 2, 3, 4, 5}, res.ExchangeScores(e1, 0))
	require.Equal(t, []int{5, 4, 3, 2, 1}, res.ExchangeScores(e1, 1))
	require.Equal(t, []int{5, 4, 3, 2, 1}, res.ExchangeScores(e2, 0))
	require.Equal(t, []int{1, 2, 3, 4, 5}, res.ExchangeScores(e2, 1))

	require.Equal(t, []int{4, 4, 3, 2, 2}, res.FlowScores(e1))
	require.Equal(t, []int{2, 3, 3, 4, 4}, res.FlowScores(e2))
	// the unassessed score excludes as 0 while its weight still counts
	require.Equal(t, []int{0, 0, 0, 0, 0}, res.FlowScores(e3))

	require.Equal(t, []int{2, 3, 3, 3, 4}, res.ImpactScores(0))
	require.Equal(t, []int{4, 4, 3, 2, 2}, res.ProcessImpactScores(0, 0))
	require.Equal(t, []int{2, 2, 3, 4, 4}, res.ProcessImpactScores(1, 0))
}

// TestResult_UseMax substitutes the score count for unassessed values.
func TestResult_UseMax(t *testing.T) {
	res, ix := dqResult(t, dq.Config{
		Aggregation: dq.WeightedAverage,
		NA:          dq.NAUseMax,
		Rounding:    dq.RoundHalfUp,
	})
	// (1·1 + 5·2) / 3 per indicator
	require.Equal(t, []int{4, 4, 4, 4, 4}, res.FlowScores(ix.row(303)))
}

// TestResult_CeilRounding always rounds the averages up.
func TestResult_CeilRounding(t *testing.T) {
	res, ix := dqResult(t, dq.Config{
		Aggregation: dq.WeightedAverage,
		NA:          dq.NAExclude,
		Rounding:    dq.RoundCeil,
	})
	require.Equal(t, []int{5, 4, 3, 3, 2}, res.FlowScores(ix.row(301)))
}

// TestResult_Maximum takes the worst score per row.
func TestResult_Maximum(t *testing.T) {
	res, ix := dqResult(t, dq.Config{Aggregation: dq.Maximum})
	require.Equal(t, []int{5, 4, 3, 4, 5}, res.FlowScores(ix.row(301)))
	require.Equal(t, []int{5, 4, 3, 4, 5}, res.FlowScores(ix.row(302)))
}

// TestResult_NoAggregation leaves flow and impact results empty while
// the score matrices remain addressable.
func TestResult_NoAggregation(t *testing.T) {
	res, ix := dqResult(t, dq.Config{Aggregation: dq.AggregationNone})
	require.Nil(t, res.FlowScores(ix.row(301)))
	require.Nil(t, res.ImpactScores(0))
	require.Equal(t, []int{1, 2, 3, 4, 5}, res.ProcessScores(0))
}
