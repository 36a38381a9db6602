// Package index holds the ordered index structures that map descriptor
// identities to matrix positions: the technology index (columns), the
// environment/flow index (intervention rows), and the impact index
// (characterization rows).
//
// What
//
//   - TechIndex: ordered ProcessProduct entries plus the link table
//     resolved by the tech-index builder. The reference product is always
//     at position 0, and every linked provider is guaranteed indexed.
//   - EnviIndex: ordered FlowRef entries. A regionalised index keys rows
//     by (flow, location); a plain index keys by flow only. The two modes
//     are mutually exclusive for one index.
//   - ImpactIndex: ordered impact categories.
//
// Why
//
//	Matrices are addressed by dense integer positions; the index
//	structures are the single place where persisted identifiers are
//	translated to those positions. They are built once per calculation
//	setup and are immutable afterwards by convention.
//
// Complexity
//
//	All lookups are O(1) hash probes; Add is amortized O(1).
package index
