package precompute

import (
	"github.com/hupe1980/tfgraph/internal/columnar"
)

// Hierarchy builds a tree over the given type codes, outermost first.
// Row 0 lists the nodes of types[0] in canonical order; the row of a node of
// types[i] lists the nodes of types[i+1] it embeds. Rows are indexed by
// node.
func Hierarchy(s *Structure, types []uint16, order []uint32, levUp *columnar.CSR) *columnar.CSR {
	depth := make(map[uint16]int, len(types))
	for i, t := range types {
		depth[t] = i
	}

	rows := make([][]uint32, s.MaxNode+1)
	for _, n := range order {
		d, ok := depth[s.Types[n]]
		if !ok {
			continue
		}
		if d == 0 {
			rows[0] = append(rows[0], n)
			continue
		}
		parentType := types[d-1]
		for _, m := range levUp.Row(int(n)) {
			if s.Types[m] == parentType {
				rows[m] = append(rows[m], n)
				break
			}
		}
	}
	return columnar.BuildCSR(rows)
}
