package model

import (
	"slices"
	"strconv"
)

// Node is a 1-based node identifier.
type Node uint32

// String returns the decimal node number.
func (n Node) String() string {
	return strconv.FormatUint(uint64(n), 10)
}

// Edge is an outgoing or incoming edge as seen from one endpoint.
type Edge struct {
	// Node is the other endpoint of the edge.
	Node Node
	// Value is only meaningful when HasValue is true.
	Value    Value
	HasValue bool
}

// NodesFromUint32 copies raw node ids into a []Node.
func NodesFromUint32(raw []uint32) []Node {
	out := make([]Node, len(raw))
	for i, v := range raw {
		out[i] = Node(v)
	}
	return out
}

// SortedUnique sorts nodes by id and removes duplicates in place.
func SortedUnique(nodes []Node) []Node {
	slices.Sort(nodes)
	return slices.Compact(nodes)
}
