// Package precompute derives the structures every corpus query relies on
// from the node types (otype) and slot containment (oslots):
//
//   - levels: node types ordered from least to most encompassing
//   - order/rank: the canonical node order and its inverse
//   - levUp: for each node, the nodes embedding it, nearest level first
//   - levDown: for each non-slot node, the non-slot nodes embedded in it
//   - boundary: first/last slot per node, and the nodes starting/ending at
//     each slot
//   - hierarchy: section or structure trees over selected node types
//
// Steps must run in that order; each consumes the results of the previous
// ones. All functions are deterministic.
package precompute
