// Package formula evaluates parameter expressions and maintains the
// parameter table of a calculation: global and per-context scopes with
// literal values, formulas, and optional uncertainties.
//
// What
//
//   - Eval: compiles and runs one arithmetic expression against a scope
//     of named parameter values (expr-lang under the hood).
//   - Table: the parameter table. Formulas are resolved to values by
//     fixpoint iteration over their dependencies; Redefine applies
//     parameter redefinitions; Simulate resamples uncertain parameters
//     and re-evaluates dependent formulas for one iteration.
//
// Why
//
//	Exchange amounts and costs may be formula-driven; the assembler asks
//	the table for a per-process scope and evaluates against it. Keeping
//	evaluation in one place gives the whole pipeline a single error
//	surface (ErrEval) and a single degradation rule: a broken formula
//	falls back to the literal amount and records a diagnostic.
//
// Determinism
//
//	Resampling draws exclusively from the *rand.Rand passed to Simulate.
package formula
