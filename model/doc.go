// Package model defines the core types shared by the storage layer and the
// search engine.
//
// # Identity Types
//
//   - Node: a 1-based node identifier. Nodes 1..maxSlot are slots, the rest
//     span one or more slots.
//
// # Data Types
//
//   - Value: a tagged string or integer feature value
//   - ValueType: the declared value type of a feature
//   - Edge: a target node with an optional edge value
//
// Absence of a value is never encoded inside Value itself. Accessors return a
// (Value, bool) pair instead, so an integer 0 or an empty string stay distinct
// from "no value".
package model
