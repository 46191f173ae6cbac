package feature

import (
	"cmp"
	"slices"

	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/model"
)

// typeFilter returns a predicate accepting nodes whose type is one of types.
// An empty list accepts every node; unknown type names match nothing.
func typeFilter(d *corpus.Data, types []string) func(uint32) bool {
	if len(types) == 0 {
		return func(uint32) bool { return true }
	}
	allowed := make([]bool, len(d.Structure.TypeNames))
	for _, t := range types {
		if code, ok := d.TypeCode(t); ok {
			allowed[code] = true
		}
	}
	return func(n uint32) bool {
		return n >= 1 && n <= d.MaxNode() && allowed[d.Structure.Types[n]]
	}
}

func inRange(d *corpus.Data, n uint32) bool {
	return n >= 1 && n <= d.MaxNode()
}

func sortNodes(nodes []model.Node, rank []uint32) {
	slices.SortFunc(nodes, func(a, b model.Node) int {
		return cmp.Compare(rank[a], rank[b])
	})
}
