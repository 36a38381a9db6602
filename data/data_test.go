package data_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/data"
	"github.com/lcafoundry/lcacore/formula"
	"github.com/stretchr/testify/require"
)

// TestMemSource_ProviderRegistration: product outputs and waste inputs
// become providers; product inputs and elementary exchanges do not.
func TestMemSource_ProviderRegistration(t *testing.T) {
	src := data.NewMemSource()
	src.PutProcess(1, core.UnitProcess, []core.CalcExchange{
		{ProcessID: 1, ExchangeID: 1, FlowID: 100, Type: core.ProductFlow, Amount: 1},
		{ProcessID: 1, ExchangeID: 2, FlowID: 200, Type: core.ProductFlow, IsInput: true, Amount: 2},
		{ProcessID: 1, ExchangeID: 3, FlowID: 300, Type: core.WasteFlow, IsInput: true, Amount: 0.5},
		{ProcessID: 1, ExchangeID: 4, FlowID: 400, Type: core.ElementaryFlow, Amount: 3},
	})

	providers, err := src.Providers(100)
	require.NoError(t, err)
	require.Equal(t, []core.ProcessProduct{{ProcessID: 1, FlowID: 100}}, providers)

	providers, err = src.Providers(300)
	require.NoError(t, err)
	require.Equal(t, []core.ProcessProduct{{ProcessID: 1, FlowID: 300}}, providers)

	for _, flow := range []uint64{200, 400} {
		providers, err = src.Providers(flow)
		require.NoError(t, err)
		require.Empty(t, providers, "flow %d", flow)
	}
}

// TestMemSource_SystemAsProvider: a registered product system classifies
// as a sub-system and provides its reference flow.
func TestMemSource_SystemAsProvider(t *testing.T) {
	src := data.NewMemSource()
	src.PutSystem(&core.ProductSystem{ID: 9, ReferenceProcessID: 1, ReferenceFlowID: 100, Demand: 1})

	typ, err := src.ProcessType(9)
	require.NoError(t, err)
	require.Equal(t, core.SubSystem, typ)

	providers, err := src.Providers(100)
	require.NoError(t, err)
	require.Contains(t, providers, core.ProcessProduct{ProcessID: 9, FlowID: 100})
}

// TestMemSource_NotFound
func TestMemSource_NotFound(t *testing.T) {
	src := data.NewMemSource()
	if _, err := src.ProductSystem(1); !errors.Is(err, data.ErrNotFound) {
		t.Errorf("missing system: want ErrNotFound, got %v", err)
	}
	if _, err := src.ProcessType(1); !errors.Is(err, data.ErrNotFound) {
		t.Errorf("missing process: want ErrNotFound, got %v", err)
	}
	if _, err := src.ImpactMethod(1); !errors.Is(err, data.ErrNotFound) {
		t.Errorf("missing method: want ErrNotFound, got %v", err)
	}
}

// TestMemSource_ParameterScoping: globals always load, context
// parameters only for requested contexts.
func TestMemSource_ParameterScoping(t *testing.T) {
	src := data.NewMemSource()
	src.PutParams(
		formula.Param{Name: "g", Value: 1},
		formula.Param{Name: "p", ContextID: 1, Value: 2},
		formula.Param{Name: "q", ContextID: 2, Value: 3},
	)
	params, err := src.Parameters(map[uint64]struct{}{1: {}})
	require.NoError(t, err)
	require.Len(t, params, 2)
	names := map[string]bool{}
	for _, p := range params {
		names[p.Name] = true
	}
	require.True(t, names["g"] && names["p"])
}

const workspaceYAML = `
processes:
  - id: 1
    type: unit_process
    dq_entry: "(1;2;3;4;5)"
    exchanges:
      - id: 1
        flow: 100
        flow_type: product
        amount: 1
      - id: 2
        flow: 400
        flow_type: elementary
        input: true
        amount: 0.5
        formula: "a * 0.25"
        uncertainty: {kind: uniform, p1: 0.4, p2: 0.6}
        dq_entry: "(2;2;2;2;2)"
    allocation:
      - product: 100
        method: physical
        value: 1
systems:
  - id: 10
    reference_process: 1
    reference_flow: 100
    demand: 2
    parameter_redefs:
      - {name: a, value: 4}
methods:
  - id: 20
    name: demo
    categories:
      - id: 21
        name: gwp
        unit: kg CO2 eq
        factors:
          - {flow: 400, value: 2}
dq_systems:
  - id: 30
    name: pedigree
    indicators:
      - {position: 1, name: reliability, scores: 5}
parameters:
  - {name: a, value: 2}
`

// TestReadWorkspace decodes a document and checks every section landed.
func TestReadWorkspace(t *testing.T) {
	src, err := data.ReadWorkspace(strings.NewReader(workspaceYAML))
	require.NoError(t, err)

	exchanges, err := src.Exchanges(map[uint64]struct{}{1: {}})
	require.NoError(t, err)
	require.Len(t, exchanges[1], 2)
	e := exchanges[1][1]
	require.Equal(t, core.ElementaryFlow, e.Type)
	require.True(t, e.IsInput)
	require.Equal(t, "a * 0.25", e.Formula)
	require.NotNil(t, e.Uncertainty)
	require.Equal(t, core.UncertaintyUniform, e.Uncertainty.Kind)

	sys, err := src.ProductSystem(10)
	require.NoError(t, err)
	require.Equal(t, 2.0, sys.Demand)
	require.Len(t, sys.ParameterRedefs, 1)

	method, err := src.ImpactMethod(20)
	require.NoError(t, err)
	require.Len(t, method.Categories, 1)
	require.Equal(t, 2.0, method.Categories[0].Factors[0].Value)

	dqs, err := src.DQSystem(30)
	require.NoError(t, err)
	require.Equal(t, 5, dqs.ScoreCount())

	entry, err := src.ProcessDQEntry(1)
	require.NoError(t, err)
	require.Equal(t, "(1;2;3;4;5)", entry)

	params, err := src.Parameters(nil)
	require.NoError(t, err)
	require.Len(t, params, 1)
}

// TestReadWorkspace_Errors rejects unknown enums and unknown fields.
func TestReadWorkspace_Errors(t *testing.T) {
	bad := []string{
		"processes:\n  - id: 1\n    exchanges:\n      - {id: 1, flow: 1, flow_type: bogus}",
		"processes:\n  - id: 1\n    what_is_this: 1",
		"not yaml: [",
	}
	for _, doc := range bad {
		if _, err := data.ReadWorkspace(strings.NewReader(doc)); !errors.Is(err, data.ErrWorkspace) {
			t.Errorf("doc %q: want ErrWorkspace, got %v", doc, err)
		}
	}
}
