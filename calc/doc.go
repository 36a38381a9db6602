// Package calc drives a whole calculation: load the product system,
// expand the technology index, build the parameter table, assemble the
// matrices, and solve into a result provider.
//
// What
//
//   - Setup: the calculation request — system, demand override,
//     allocation, costs, impact method, redefinitions, linking.
//   - Calculator: Prepare loads and expands; Simple, Eager, and Lazy
//     assemble and solve into the respective provider.
//
// Determinism
//
//	A plain calculation never samples: amounts are the evaluated means.
//	Sampling lives in the simulation driver, which reuses Prepare.
package calc
