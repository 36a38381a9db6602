// Package sankey builds the bounded upstream contribution graph of one
// result selection: which products a result value flows through, and
// how much of it each of them carries.
//
// What
//
//   - OfFlow, OfImpact, OfCosts: select what the node values measure.
//   - Builder: MinShare cuts providers below a share threshold,
//     MaxNodes bounds the graph size; expansion is largest-share-first
//     so the bound keeps the dominant contributors.
//   - Graph, Node: the materialised tree; cycles in the technosphere
//     close as edges back to already materialised nodes.
//
// Semantics
//
//	A node's Total is the upstream value of its column with the total
//	factor applied, so feedback loops are not double-counted. Share is
//	Total over the root's Total; cut-off decisions compare absolute
//	shares, so negative contributions survive a positive threshold.
package sankey
