// Package formula: the parameter table.
package formula

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/lcafoundry/lcacore/core"
)

// GlobalContext is the context id of global parameters.
const GlobalContext uint64 = 0

// Param is one persisted parameter definition.
type Param struct {
	Name string
	// ContextID scopes the parameter; GlobalContext means global.
	ContextID uint64
	// Value is the literal base value; Formula overrides when non-empty.
	Value   float64
	Formula string
	// Uncertainty, when present, is resampled by Simulate.
	Uncertainty *core.Uncertainty
}

// entry is the mutable evaluation state of one parameter.
type entry struct {
	param Param
	// base is the literal value, possibly redefined or resampled.
	base float64
	// value is the current evaluated value.
	value float64
	// redefined pins base against Simulate resampling.
	redefined bool
}

// Table holds the evaluated parameter scopes of a calculation: one
// global scope plus one scope per context (process, impact category).
// Build the table once per setup; Redefine and Simulate mutate values
// in place and re-run formula evaluation.
type Table struct {
	global   map[string]*entry
	contexts map[uint64]map[string]*entry
}

// NewTable builds the table and evaluates all formulas to a fixpoint.
// Formulas may reference other parameters of their own scope and the
// global scope; cyclic or unresolvable references surface ErrEval.
func NewTable(params []Param) (*Table, error) {
	t := &Table{
		global:   make(map[string]*entry),
		contexts: make(map[uint64]map[string]*entry),
	}
	for _, p := range params {
		e := &entry{param: p, base: p.Value, value: p.Value}
		if p.ContextID == GlobalContext {
			t.global[p.Name] = e
			continue
		}
		scope, ok := t.contexts[p.ContextID]
		if !ok {
			scope = make(map[string]*entry)
			t.contexts[p.ContextID] = scope
		}
		scope[p.Name] = e
	}
	if err := t.eval(); err != nil {
		return nil, err
	}
	return t, nil
}

// eval resolves every formula by fixpoint iteration: a pass evaluates
// each still-unresolved formula against the currently resolved values;
// the loop ends when a pass resolves nothing more.
func (t *Table) eval() error {
	// literal parameters are resolved from the start
	unresolved := make(map[*entry]uint64) // entry → owning context
	for _, e := range t.global {
		if e.param.Formula != "" && !e.redefined {
			unresolved[e] = GlobalContext
		} else {
			e.value = e.base
		}
	}
	for ctx, scope := range t.contexts {
		for _, e := range scope {
			if e.param.Formula != "" && !e.redefined {
				unresolved[e] = ctx
			} else {
				e.value = e.base
			}
		}
	}

	for len(unresolved) > 0 {
		progressed := false
		for e, ctx := range unresolved {
			scope := t.resolvedScope(ctx, unresolved)
			v, err := Eval(e.param.Formula, scope)
			if err != nil {
				continue // dependency not resolved yet, retry next pass
			}
			e.value = v
			delete(unresolved, e)
			progressed = true
		}
		if !progressed {
			names := make([]string, 0, len(unresolved))
			for e := range unresolved {
				names = append(names, e.param.Name)
			}
			sort.Strings(names)
			return fmt.Errorf("%w: unresolved parameters %v", ErrEval, names)
		}
	}
	return nil
}

// resolvedScope collects the resolved values visible from ctx: global
// values overlaid with the context's own, skipping unresolved entries.
func (t *Table) resolvedScope(ctx uint64, unresolved map[*entry]uint64) map[string]float64 {
	scope := make(map[string]float64, len(t.global))
	for name, e := range t.global {
		if _, pending := unresolved[e]; !pending {
			scope[name] = e.value
		}
	}
	if ctx != GlobalContext {
		for name, e := range t.contexts[ctx] {
			if _, pending := unresolved[e]; !pending {
				scope[name] = e.value
			}
		}
	}
	return scope
}

// Scope returns the evaluated values visible from a context: the global
// scope overlaid with the context's own parameters. The returned map is
// a fresh copy.
func (t *Table) Scope(ctx uint64) map[string]float64 {
	scope := make(map[string]float64, len(t.global))
	for name, e := range t.global {
		scope[name] = e.value
	}
	if ctx != GlobalContext {
		for name, e := range t.contexts[ctx] {
			scope[name] = e.value
		}
	}
	return scope
}

// Value returns the evaluated value of name as seen from ctx.
func (t *Table) Value(ctx uint64, name string) (float64, bool) {
	if ctx != GlobalContext {
		if e, ok := t.contexts[ctx][name]; ok {
			return e.value, true
		}
	}
	e, ok := t.global[name]
	if !ok {
		return 0, false
	}
	return e.value, true
}

// Redefine overrides parameter values and re-evaluates dependent
// formulas. A redefined parameter becomes a pinned literal: its formula
// no longer evaluates and Simulate leaves it untouched. Redefs naming
// unknown parameters create them in the target scope.
func (t *Table) Redefine(redefs []core.ParameterRedef) error {
	for _, r := range redefs {
		e := t.lookup(r.ContextID, r.Name)
		if e == nil {
			e = &entry{param: Param{Name: r.Name, ContextID: r.ContextID}}
			if r.ContextID == GlobalContext {
				t.global[r.Name] = e
			} else {
				scope, ok := t.contexts[r.ContextID]
				if !ok {
					scope = make(map[string]*entry)
					t.contexts[r.ContextID] = scope
				}
				scope[r.Name] = e
			}
		}
		e.base = r.Value
		e.value = r.Value
		e.redefined = true
	}
	return t.eval()
}

// lookup finds the entry of name in exactly the given scope.
func (t *Table) lookup(ctx uint64, name string) *entry {
	if ctx == GlobalContext {
		return t.global[name]
	}
	return t.contexts[ctx][name]
}

// Simulate resamples every uncertain, non-redefined parameter from its
// distribution and re-evaluates all formulas. Call once per iteration.
func (t *Table) Simulate(rng *rand.Rand) error {
	resample := func(e *entry) {
		if e.redefined || e.param.Uncertainty == nil {
			return
		}
		e.base = e.param.Uncertainty.Sample(rng, e.param.Value)
		e.value = e.base
	}
	for _, e := range t.global {
		resample(e)
	}
	for _, scope := range t.contexts {
		for _, e := range scope {
			resample(e)
		}
	}
	return t.eval()
}
