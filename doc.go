// Package lcacore is a life cycle assessment computation core: it
// expands product systems into technology matrices, solves them, and
// derives inventory, impact, cost, data-quality, contribution, and
// Monte-Carlo simulation results.
//
// The pipeline, package by package:
//
//	core     — descriptors, exchanges, uncertainty distributions
//	data     — the data-source contract, in-memory and YAML sources
//	formula  — parameter tables and expression evaluation
//	linker   — provider search and tech-index expansion
//	index    — technology, flow, and impact indices
//	assemble — matrix assembly with allocation and resampling
//	matrix   — dense and sparse matrices, LU kernels
//	solver   — the solve/invert/multiply contract over those kernels
//	calc     — calculation setups and the calculator front door
//	results  — inventory-level and per-column result providers
//	dq       — data-quality systems and score aggregation
//	sankey   — bounded upstream contribution graphs
//	sim      — Monte-Carlo simulation with nested product systems
//
// cmd/lcacore wraps the pipeline into a CLI over YAML workspaces.
//
// A calculation starts from a calc.Setup naming a persisted product
// system, runs A·s = f through a solver.Solver, and surfaces results
// through the providers in results. Everything downstream of the data
// source is read-only after construction; RNG state and cancellation
// travel as explicit arguments.
package lcacore
