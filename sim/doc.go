// Package sim runs Monte-Carlo simulations of a calculation setup:
// parameter values and exchange amounts are resampled from their
// uncertainty distributions every iteration, the system is rebuilt and
// solved, and the totals are collected into an append-only sample
// store.
//
// What
//
//   - Simulator: prepares the simulation graph once, then Next or Run
//     produce iterations. Nested product systems linked as sub-system
//     providers are resampled and solved on their own and feed one
//     unit of their reference product into the host column.
//   - Result: the committed samples; flow, impact, and cost series
//     with mean and percentile statistics.
//   - Pin: per-iteration direct and upstream vectors of a registered
//     host product.
//
// Ordering
//
//	Sub-systems solve before their hosts in every iteration, deepest
//	first; a cyclic sub-system relation is rejected at construction
//	with ErrCyclicSubSystems. Host flow indices are widened up front
//	with every flow a sub-system delivers, so matrix shapes stay
//	fixed across iterations.
//
// Failure policy
//
//	An iteration commits all of its results or none of them: a failed
//	sample, assembly, or solve discards the whole iteration
//	(ErrIteration) and Run keeps going, counting the failure.
//	Cancellation stops between solves with ErrCancelled and keeps
//	everything already committed.
package sim
