package search

import (
	"cmp"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/tfgraph/feature"
	"github.com/hupe1980/tfgraph/model"
)

// env binds the accessors a query needs.
type env struct {
	reg     *feature.Registry
	otype   *feature.Otype
	oslots  *feature.Oslots
	bounds  *feature.Bounds
	levUp   *feature.Computed
	canon   *feature.Canonical
	maxSlot uint32
	maxNode uint32
}

func newEnv(reg *feature.Registry) *env {
	levUp, _ := reg.Computed(feature.LevUp)
	return &env{
		reg:     reg,
		otype:   reg.Otype(),
		oslots:  reg.Oslots(),
		bounds:  reg.Bounds(),
		levUp:   levUp,
		canon:   reg.Canonical(),
		maxSlot: uint32(reg.Otype().MaxSlot()),
		maxNode: uint32(reg.Otype().MaxNode()),
	}
}

func (e *env) slots(n uint32) []uint32 { return e.oslots.View(model.Node(n)) }

func (e *env) first(n uint32) uint32 {
	f, _ := e.bounds.V(model.Node(n))
	return uint32(f)
}

func (e *env) last(n uint32) uint32 {
	_, l := e.bounds.V(model.Node(n))
	return uint32(l)
}

func (e *env) rank(n uint32) int { return e.canon.Rank(model.Node(n)) }

func (e *env) sortByRank(nodes []uint32) {
	slices.SortFunc(nodes, func(a, b uint32) int {
		return cmp.Compare(e.rank(a), e.rank(b))
	})
}

// typeNodes returns the nodes of a type as a bitmap.
func (e *env) typeNodes(typ string) *roaring.Bitmap {
	bm := roaring.New()
	for _, n := range e.otype.S(typ) {
		bm.Add(uint32(n))
	}
	return bm
}

func (e *env) isType(typ string) bool {
	return slices.Contains(e.otype.Types(), typ)
}

// startsIn collects the nodes whose first slot lies in [lo, hi].
func (e *env) startsIn(lo, hi int64) []uint32 {
	return e.collect(lo, hi, e.bounds.StartsAtView)
}

// endsIn collects the nodes whose last slot lies in [lo, hi].
func (e *env) endsIn(lo, hi int64) []uint32 {
	return e.collect(lo, hi, e.bounds.EndsAtView)
}

func (e *env) collect(lo, hi int64, row func(model.Node) []uint32) []uint32 {
	lo, hi = max(lo, 1), min(hi, int64(e.maxSlot))
	if lo > hi {
		return nil
	}
	if lo == hi {
		return row(model.Node(lo))
	}
	var out []uint32
	for s := lo; s <= hi; s++ {
		out = append(out, row(model.Node(s))...)
	}
	return out
}

// sorted slot set helpers

func sameSet(a, b []uint32) bool { return slices.Equal(a, b) }

func overlaps(a, b []uint32) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			return true
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return false
}

// subset reports whether every element of a is in b.
func subset(a, b []uint32) bool {
	if len(a) > len(b) {
		return false
	}
	j := 0
	for _, x := range a {
		for j < len(b) && b[j] < x {
			j++
		}
		if j == len(b) || b[j] != x {
			return false
		}
		j++
	}
	return true
}
