// Package data: the YAML workspace reader.
package data

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lcafoundry/lcacore/core"
	"github.com/lcafoundry/lcacore/dq"
	"github.com/lcafoundry/lcacore/formula"
)

// ErrWorkspace is returned for workspace documents that fail to parse or
// carry invalid enumeration values.
var ErrWorkspace = errors.New("data: invalid workspace")

// workspaceDoc is the YAML shape of a workspace file.
type workspaceDoc struct {
	Processes  []processDoc  `yaml:"processes"`
	Systems    []systemDoc   `yaml:"systems"`
	Methods    []methodDoc   `yaml:"methods"`
	DQSystems  []dqSystemDoc `yaml:"dq_systems"`
	Parameters []paramDoc    `yaml:"parameters"`
}

type processDoc struct {
	ID         uint64          `yaml:"id"`
	Type       string          `yaml:"type"`
	DQEntry    string          `yaml:"dq_entry"`
	Exchanges  []exchangeDoc   `yaml:"exchanges"`
	Allocation []allocationDoc `yaml:"allocation"`
}

type exchangeDoc struct {
	ID              uint64          `yaml:"id"`
	Flow            uint64          `yaml:"flow"`
	FlowType        string          `yaml:"flow_type"`
	Input           bool            `yaml:"input"`
	Amount          float64         `yaml:"amount"`
	Formula         string          `yaml:"formula"`
	DefaultProvider uint64          `yaml:"default_provider"`
	Location        uint64          `yaml:"location"`
	Uncertainty     *uncertaintyDoc `yaml:"uncertainty"`
	Cost            float64         `yaml:"cost"`
	CostFormula     string          `yaml:"cost_formula"`
	DQEntry         string          `yaml:"dq_entry"`
}

type uncertaintyDoc struct {
	Kind string  `yaml:"kind"`
	P1   float64 `yaml:"p1"`
	P2   float64 `yaml:"p2"`
	P3   float64 `yaml:"p3"`
}

type allocationDoc struct {
	Product  uint64  `yaml:"product"`
	Method   string  `yaml:"method"`
	Value    float64 `yaml:"value"`
	Exchange uint64  `yaml:"exchange"`
}

type systemDoc struct {
	ID               uint64     `yaml:"id"`
	ReferenceProcess uint64     `yaml:"reference_process"`
	ReferenceFlow    uint64     `yaml:"reference_flow"`
	Demand           float64    `yaml:"demand"`
	Links            []linkDoc  `yaml:"links"`
	ParameterRedefs  []redefDoc `yaml:"parameter_redefs"`
}

type linkDoc struct {
	Provider   uint64 `yaml:"provider"`
	Process    uint64 `yaml:"process"`
	Flow       uint64 `yaml:"flow"`
	Exchange   uint64 `yaml:"exchange"`
	SystemLink bool   `yaml:"system_link"`
}

type redefDoc struct {
	Name    string  `yaml:"name"`
	Context uint64  `yaml:"context"`
	Value   float64 `yaml:"value"`
}

type methodDoc struct {
	ID         uint64        `yaml:"id"`
	Name       string        `yaml:"name"`
	Categories []categoryDoc `yaml:"categories"`
}

type categoryDoc struct {
	ID      uint64      `yaml:"id"`
	Name    string      `yaml:"name"`
	Unit    string      `yaml:"unit"`
	Factors []factorDoc `yaml:"factors"`
}

type factorDoc struct {
	Flow     uint64  `yaml:"flow"`
	Value    float64 `yaml:"value"`
	Location uint64  `yaml:"location"`
}

type dqSystemDoc struct {
	ID         uint64         `yaml:"id"`
	Name       string         `yaml:"name"`
	Indicators []indicatorDoc `yaml:"indicators"`
}

type indicatorDoc struct {
	Position int    `yaml:"position"`
	Name     string `yaml:"name"`
	Scores   int    `yaml:"scores"`
}

type paramDoc struct {
	Name        string          `yaml:"name"`
	Context     uint64          `yaml:"context"`
	Value       float64         `yaml:"value"`
	Formula     string          `yaml:"formula"`
	Uncertainty *uncertaintyDoc `yaml:"uncertainty"`
}

// LoadWorkspace reads a YAML workspace file into a MemSource.
func LoadWorkspace(path string) (*MemSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkspace, err)
	}
	defer f.Close()
	return ReadWorkspace(f)
}

// ReadWorkspace parses a YAML workspace document into a MemSource.
// Stage 1 (Decode): strict YAML decoding, unknown fields rejected.
// Stage 2 (Translate): enumeration strings become core enums; each
// process, system, method, dq system, and parameter is registered on a
// fresh MemSource.
//
// Errors: ErrWorkspace, wrapped with the offending entity.
func ReadWorkspace(r io.Reader) (*MemSource, error) {
	var doc workspaceDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkspace, err)
	}

	src := NewMemSource()
	for _, p := range doc.Processes {
		typ, err := parseProcessType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("process %d: %w", p.ID, err)
		}
		exchanges := make([]core.CalcExchange, 0, len(p.Exchanges))
		for _, e := range p.Exchanges {
			ft, err := parseFlowType(e.FlowType)
			if err != nil {
				return nil, fmt.Errorf("process %d exchange %d: %w", p.ID, e.ID, err)
			}
			u, err := parseUncertainty(e.Uncertainty)
			if err != nil {
				return nil, fmt.Errorf("process %d exchange %d: %w", p.ID, e.ID, err)
			}
			exchanges = append(exchanges, core.CalcExchange{
				ProcessID:         p.ID,
				ExchangeID:        e.ID,
				FlowID:            e.Flow,
				Type:              ft,
				IsInput:           e.Input,
				Amount:            e.Amount,
				Formula:           e.Formula,
				DefaultProviderID: e.DefaultProvider,
				LocationID:        e.Location,
				Uncertainty:       u,
				CostValue:         e.Cost,
				CostFormula:       e.CostFormula,
				DQEntry:           e.DQEntry,
			})
		}
		src.PutProcess(p.ID, typ, exchanges)
		if p.DQEntry != "" {
			src.PutProcessDQEntry(p.ID, p.DQEntry)
		}
		for _, a := range p.Allocation {
			method, err := parseAllocationMethod(a.Method)
			if err != nil {
				return nil, fmt.Errorf("process %d allocation: %w", p.ID, err)
			}
			src.PutAllocationFactors(p.ID, core.AllocationFactor{
				ProcessID:  p.ID,
				ProductID:  a.Product,
				Method:     method,
				Value:      a.Value,
				ExchangeID: a.Exchange,
			})
		}
	}

	for _, s := range doc.Systems {
		sys := &core.ProductSystem{
			ID:                 s.ID,
			ReferenceProcessID: s.ReferenceProcess,
			ReferenceFlowID:    s.ReferenceFlow,
			Demand:             s.Demand,
		}
		for _, l := range s.Links {
			sys.Links = append(sys.Links, core.ProcessLink{
				ProviderID:   l.Provider,
				ProcessID:    l.Process,
				FlowID:       l.Flow,
				ExchangeID:   l.Exchange,
				IsSystemLink: l.SystemLink,
			})
		}
		for _, r := range s.ParameterRedefs {
			sys.ParameterRedefs = append(sys.ParameterRedefs, core.ParameterRedef{
				Name:      r.Name,
				ContextID: r.Context,
				Value:     r.Value,
			})
		}
		src.PutSystem(sys)
	}

	for _, m := range doc.Methods {
		method := &core.ImpactMethod{ID: m.ID, Name: m.Name}
		for _, c := range m.Categories {
			cat := core.ImpactCategory{ID: c.ID, Name: c.Name, RefUnit: c.Unit}
			for _, f := range c.Factors {
				cat.Factors = append(cat.Factors, core.ImpactFactor{
					FlowID:     f.Flow,
					LocationID: f.Location,
					Value:      f.Value,
				})
			}
			method.Categories = append(method.Categories, cat)
		}
		src.PutMethod(method)
	}

	for _, d := range doc.DQSystems {
		sys := &dq.System{ID: d.ID, Name: d.Name}
		for _, ind := range d.Indicators {
			sys.Indicators = append(sys.Indicators, dq.Indicator{
				Position:   ind.Position,
				Name:       ind.Name,
				ScoreCount: ind.Scores,
			})
		}
		src.PutDQSystem(sys)
	}

	for _, p := range doc.Parameters {
		u, err := parseUncertainty(p.Uncertainty)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		src.PutParams(formula.Param{
			Name:        p.Name,
			ContextID:   p.Context,
			Value:       p.Value,
			Formula:     p.Formula,
			Uncertainty: u,
		})
	}

	return src, nil
}

func parseProcessType(s string) (core.ProcessType, error) {
	switch s {
	case "", "unit_process":
		return core.UnitProcess, nil
	case "lci_result":
		return core.LCIResult, nil
	case "system":
		return core.SubSystem, nil
	default:
		return 0, fmt.Errorf("%w: process type %q", ErrWorkspace, s)
	}
}

func parseFlowType(s string) (core.FlowType, error) {
	switch s {
	case "product":
		return core.ProductFlow, nil
	case "waste":
		return core.WasteFlow, nil
	case "elementary":
		return core.ElementaryFlow, nil
	default:
		return 0, fmt.Errorf("%w: flow type %q", ErrWorkspace, s)
	}
}

func parseAllocationMethod(s string) (core.AllocationMethod, error) {
	switch s {
	case "", "none":
		return core.AllocationNone, nil
	case "physical":
		return core.AllocationPhysical, nil
	case "economic":
		return core.AllocationEconomic, nil
	case "causal":
		return core.AllocationCausal, nil
	default:
		return 0, fmt.Errorf("%w: allocation method %q", ErrWorkspace, s)
	}
}

func parseUncertainty(d *uncertaintyDoc) (*core.Uncertainty, error) {
	if d == nil {
		return nil, nil
	}
	var kind core.UncertaintyKind
	switch d.Kind {
	case "log_normal":
		kind = core.UncertaintyLogNormal
	case "normal":
		kind = core.UncertaintyNormal
	case "triangle":
		kind = core.UncertaintyTriangle
	case "uniform":
		kind = core.UncertaintyUniform
	default:
		return nil, fmt.Errorf("%w: uncertainty kind %q", ErrWorkspace, d.Kind)
	}
	return &core.Uncertainty{Kind: kind, P1: d.P1, P2: d.P2, P3: d.P3}, nil
}
