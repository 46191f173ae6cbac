package precompute

import "github.com/hupe1980/tfgraph/internal/columnar"

// Boundary holds the first and last slot of every node (indexed by node)
// and, per slot, the nodes starting or ending there in canonical order.
type Boundary struct {
	First    []uint32
	Last     []uint32
	StartsAt *columnar.CSR
	EndsAt   *columnar.CSR
}

// ComputeBoundary derives the boundary tables. order must be the canonical
// order so that per-slot rows come out sorted by rank.
func ComputeBoundary(s *Structure, order []uint32) *Boundary {
	b := &Boundary{
		First: make([]uint32, s.MaxNode+1),
		Last:  make([]uint32, s.MaxNode+1),
	}
	starts := make([][]uint32, s.MaxSlot+1)
	ends := make([][]uint32, s.MaxSlot+1)
	for _, n := range order {
		f, l := s.first(n), s.last(n)
		b.First[n], b.Last[n] = f, l
		starts[f] = append(starts[f], n)
		ends[l] = append(ends[l], n)
	}
	b.StartsAt = columnar.BuildCSR(starts)
	b.EndsAt = columnar.BuildCSR(ends)
	return b
}
