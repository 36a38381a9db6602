// Package dq scores the data quality of a calculation: pedigree-style
// indicator systems, the persisted "(v1;v2;...)" entry format, and the
// aggregation of per-exchange scores into flow and impact results.
//
// What
//
//   - System, Indicator: ordered indicators with scores 1..ScoreCount;
//     0 means "not assessed". ToValues and Entry convert between score
//     vectors and the persisted entry string.
//   - Config, Result: load process and exchange score matrices from a
//     data source and fold them over a contribution result, weighing
//     each cell by its direct (or characterised) contribution.
//
// Aggregation
//
//	WeightedAverage uses absolute contributions as weights,
//	WeightedSquaredAverage squares them, Maximum takes the worst
//	score. Unassessed scores either stay 0 (their weight still
//	counts) or substitute the score count under NAUseMax. Averages
//	round half-up or always up, and every result clamps to the score
//	range. A zero total weight yields 0.
package dq
