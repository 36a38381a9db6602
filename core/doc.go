// Package core defines the shared descriptor vocabulary of the LCA
// computation pipeline: flow and process identities, exchange records,
// product-system links, uncertainty distributions, and linking policy.
//
// What
//
//   - FlowRef / ProcessProduct / ExchangeKey: the identity keys the index
//     structures and matrices are addressed by.
//   - CalcExchange: a ready-to-assemble exchange record, carrying amount,
//     optional formula, allocation hints, costs, and uncertainty.
//   - ProcessLink / ProductSystem: author-declared edges and the persisted
//     system description the tech-index builder expands.
//   - ImpactMethod / ImpactCategory / ImpactFactor: characterization data.
//   - Uncertainty: distribution kinds with a deterministic Sample operation.
//   - LinkingConfig: provider-linking policy for unlinked exchanges.
//
// Why
//
//	Every downstream package (index, linker, assemble, results, sim)
//	speaks in these types; keeping them dependency-free avoids import
//	cycles between the index structures and the data adapters.
//
// Determinism
//
//	All sampling goes through an explicit *rand.Rand owned by the
//	calculation; nothing in this package touches global RNG state.
package core
