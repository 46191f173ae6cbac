package precompute

import (
	"cmp"
	"slices"

	"github.com/hupe1980/tfgraph/internal/columnar"
)

// slotUp returns, per slot, the non-slot nodes containing it.
func slotUp(s *Structure) [][]uint32 {
	up := make([][]uint32, s.MaxSlot+1)
	for n := s.MaxSlot + 1; n <= s.MaxNode; n++ {
		for _, slot := range s.Slots(n) {
			up[slot] = append(up[slot], n)
		}
	}
	return up
}

// contains reports whether the slots of m are a superset of the slots of n.
func (s *Structure) contains(m, n uint32) bool {
	ms, ns := s.Slots(m), s.Slots(n)
	if ms[0] > ns[0] || ms[len(ms)-1] < ns[len(ns)-1] || len(ms) < len(ns) {
		return false
	}
	if int(ms[len(ms)-1]-ms[0])+1 == len(ms) {
		return true
	}
	i := 0
	for _, slot := range ns {
		j, found := slices.BinarySearch(ms[i:], slot)
		if !found {
			return false
		}
		i += j + 1
	}
	return true
}

// LevUp computes, for every node, the non-slot nodes whose slots include all
// of its slots, sorted by level ascending (nearest first), then rank. Rows
// are indexed by node; row 0 is empty.
func LevUp(s *Structure, levelOf []int, rank []uint32) *columnar.CSR {
	up := slotUp(s)
	rows := make([][]uint32, s.MaxNode+1)

	byLevel := func(a, b uint32) int {
		if c := cmp.Compare(levelOf[s.Types[a]], levelOf[s.Types[b]]); c != 0 {
			return c
		}
		return cmp.Compare(rank[a], rank[b])
	}

	for n := uint32(1); n <= s.MaxNode; n++ {
		cands := up[s.first(n)]
		var row []uint32
		if s.IsSlot(n) {
			row = slices.Clone(cands)
		} else {
			for _, m := range cands {
				if m != n && s.contains(m, n) {
					row = append(row, m)
				}
			}
		}
		slices.SortFunc(row, byLevel)
		rows[n] = row
	}
	return columnar.BuildCSR(rows)
}

// LevDown computes, for every non-slot node, the non-slot nodes of a lower
// level embedded in it, in canonical order. Rows are indexed by node; rows
// of slots and row 0 are empty.
func LevDown(s *Structure, levelOf []int, rank []uint32, levUp *columnar.CSR) *columnar.CSR {
	rows := make([][]uint32, s.MaxNode+1)
	for m := s.MaxSlot + 1; m <= s.MaxNode; m++ {
		lm := levelOf[s.Types[m]]
		for _, n := range levUp.Row(int(m)) {
			if lm < levelOf[s.Types[n]] {
				rows[n] = append(rows[n], m)
			}
		}
	}
	for _, row := range rows {
		SortByRank(row, rank)
	}
	return columnar.BuildCSR(rows)
}
