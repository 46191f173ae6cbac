package precompute

import (
	"cmp"
	"slices"
)

// Order computes the canonical node order.
//
// Nodes are sorted by first slot ascending, then last slot descending (the
// embedder before the embedded), then level descending, then node number.
// order[p] is the node at position p; rank[n] is the position of node n
// (rank[0] is unused). order[rank[n]] == n for every node.
func Order(s *Structure, levelOf []int) (order, rank []uint32) {
	order = make([]uint32, s.MaxNode)
	for i := range order {
		order[i] = uint32(i) + 1 //nolint:gosec
	}
	slices.SortFunc(order, func(a, b uint32) int {
		if c := cmp.Compare(s.first(a), s.first(b)); c != 0 {
			return c
		}
		if c := cmp.Compare(s.last(b), s.last(a)); c != 0 {
			return c
		}
		if c := cmp.Compare(levelOf[s.Types[b]], levelOf[s.Types[a]]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	rank = make([]uint32, s.MaxNode+1)
	for p, n := range order {
		rank[n] = uint32(p) //nolint:gosec
	}
	return order, rank
}

// SortByRank sorts nodes into canonical order in place.
func SortByRank(nodes []uint32, rank []uint32) {
	slices.SortFunc(nodes, func(a, b uint32) int {
		return cmp.Compare(rank[a], rank[b])
	})
}
