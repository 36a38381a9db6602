// Package data defines the read-only source contract the calculation
// pipeline loads from, plus two implementations: an in-memory source for
// tests and programmatic setups, and a YAML workspace reader.
//
// What
//
//   - Source: the adapter interface. Everything the tech-index builder,
//     assembler, and simulator need is expressed as read operations
//     (Exchanges, Providers, ProcessType, ...)
//     keyed by persisted identifiers.
//   - MemSource: a map-backed Source built via Put* calls. Registering a
//     process automatically registers its provider entries (product
//     outputs and waste inputs).
//   - ReadWorkspace: parses a YAML workspace document into a MemSource.
//
// Why
//
//	The core never dictates a persistence schema. Keeping the loading
//	surface behind one interface lets the calculator run unchanged over
//	a database adapter, a test fixture, or a YAML file.
//
// Errors
//
//	Lookups of missing entities return ErrNotFound; bulk loads simply
//	omit unknown ids.
package data
