// Package linker expands a product system into a technology index: a
// provider search that picks the best provider for an unlinked
// technosphere exchange under the configured linking policy, and a
// breadth-first builder that closes the link table from the reference
// product outwards.
//
// What
//
//   - Search: the per-exchange provider decision (defaults, callback,
//     preferred-type tie-break).
//   - Builder: BFS expansion over the data source. The search runs for
//     every link candidate and its result replaces the author-declared
//     link; declared links bind only where the search resolves nothing.
//     Cycles terminate through the visited set.
//
// Determinism
//
//	Given a source with stable provider order, the produced index order
//	is the BFS traversal order and identical across runs.
//
// Errors
//
//	Policy-incomplete situations (no provider under ONLY_DEFAULTS, empty
//	candidate sets) are not errors: the exchange stays unlinked. Source
//	failures and cancellation surface as errors.
package linker
