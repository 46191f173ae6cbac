package corpus

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/hupe1980/tfgraph/internal/columnar"
	"github.com/hupe1980/tfgraph/internal/featfile"
	"github.com/hupe1980/tfgraph/model"
)

// EdgeColumn is an edge feature stored as a forward and an inverse CSR,
// both indexed by node with targets sorted by canonical rank.
//
// For valued features the value columns are aligned with CSR data
// positions; a position without a value means "edge without value".
type EdgeColumn struct {
	Name       string
	ValueType  model.ValueType
	EdgeValues bool
	Meta       map[string]string

	Fwd *columnar.CSR
	Inv *columnar.CSR

	FwdStr *columnar.StringColumn
	InvStr *columnar.StringColumn
	FwdInt *columnar.IntColumn
	InvInt *columnar.IntColumn
}

// BuildEdgeColumn builds an edge column from a parsed feature file. A later
// entry for the same (from, to) pair overrides an earlier one. It returns the
// number of integer values that collide with the missing-value sentinel.
func BuildEdgeColumn(f *featfile.Feature, maxNode uint32, rank []uint32) (*EdgeColumn, int, error) {
	for i := range f.From {
		if uint32(f.From[i]) > maxNode || uint32(f.To[i]) > maxNode {
			return nil, 0, fmt.Errorf("%w: %s: edge %d->%d beyond maxNode %d", ErrFeature, f.Name, f.From[i], f.To[i], maxNode)
		}
	}

	keep := dedupe(f)
	col := &EdgeColumn{Name: f.Name, ValueType: f.ValueType, EdgeValues: f.EdgeValues, Meta: f.Meta}

	var fwdPerm, invPerm []int
	col.Fwd, fwdPerm = adjacency(f.From, f.To, keep, maxNode, rank)
	col.Inv, invPerm = adjacency(f.To, f.From, keep, maxNode, rank)

	if !f.EdgeValues {
		return col, 0, nil
	}

	if f.ValueType == model.ValueInt {
		var c1 int
		col.FwdInt, c1 = intValues(f, fwdPerm)
		col.InvInt, _ = intValues(f, invPerm)
		return col, c1, nil
	}

	var present []string
	for _, i := range keep {
		if f.Has[i] {
			present = append(present, f.Strs[i])
		}
	}
	pool := columnar.BuildPool(present)
	col.FwdStr = strValues(f, fwdPerm, pool)
	col.InvStr = strValues(f, invPerm, pool)
	return col, 0, nil
}

// dedupe returns the edge indexes to keep: the last entry of each
// (from, to) pair.
func dedupe(f *featfile.Feature) []int {
	idx := make([]int, len(f.From))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		if c := cmp.Compare(f.From[a], f.From[b]); c != 0 {
			return c
		}
		return cmp.Compare(f.To[a], f.To[b])
	})
	keep := idx[:0]
	for i, e := range idx {
		if i+1 < len(idx) && f.From[idx[i+1]] == f.From[e] && f.To[idx[i+1]] == f.To[e] {
			continue
		}
		keep = append(keep, e)
	}
	return keep
}

// adjacency builds a CSR with one row per node from rows[e] -> cols[e] for
// the kept edges, each row sorted by the rank of its targets. perm maps data
// positions back to edge indexes.
func adjacency(rows, cols []model.Node, keep []int, maxNode uint32, rank []uint32) (*columnar.CSR, []int) {
	perm := slices.Clone(keep)
	slices.SortFunc(perm, func(a, b int) int {
		if c := cmp.Compare(rows[a], rows[b]); c != 0 {
			return c
		}
		return cmp.Compare(rank[cols[a]], rank[cols[b]])
	})

	indptr := make([]uint32, maxNode+2)
	data := make([]uint32, len(perm))
	for p, e := range perm {
		indptr[rows[e]+1]++
		data[p] = uint32(cols[e])
	}
	for i := 1; i < len(indptr); i++ {
		indptr[i] += indptr[i-1]
	}
	csr, _ := columnar.NewCSR(indptr, data)
	return csr, perm
}

func intValues(f *featfile.Feature, perm []int) (*columnar.IntColumn, int) {
	var positions []int
	var values []int64
	for p, e := range perm {
		if f.Has[e] {
			positions = append(positions, p)
			values = append(values, f.Ints[e])
		}
	}
	return columnar.BuildIntColumn(len(perm), positions, values)
}

func strValues(f *featfile.Feature, perm []int, pool *columnar.Pool) *columnar.StringColumn {
	var positions []int
	var values []string
	for p, e := range perm {
		if f.Has[e] {
			positions = append(positions, p)
			values = append(values, f.Strs[e])
		}
	}
	return columnar.BuildStringColumn(pool, len(perm), positions, values)
}

// Out returns the targets of the outgoing edges of n.
func (c *EdgeColumn) Out(n uint32) []uint32 { return c.Fwd.Row(int(n)) }

// In returns the sources of the incoming edges of n.
func (c *EdgeColumn) In(n uint32) []uint32 { return c.Inv.Row(int(n)) }

// OutEdges returns the outgoing edges of n with their values.
func (c *EdgeColumn) OutEdges(n uint32) []model.Edge {
	return c.edges(c.Fwd, c.FwdStr, c.FwdInt, n)
}

// InEdges returns the incoming edges of n with their values.
func (c *EdgeColumn) InEdges(n uint32) []model.Edge {
	return c.edges(c.Inv, c.InvStr, c.InvInt, n)
}

func (c *EdgeColumn) edges(csr *columnar.CSR, sc *columnar.StringColumn, ic *columnar.IntColumn, n uint32) []model.Edge {
	start, end := csr.Span(int(n))
	if start == end {
		return nil
	}
	data := csr.Data()
	out := make([]model.Edge, end-start)
	for p := start; p < end; p++ {
		e := model.Edge{Node: model.Node(data[p])}
		e.Value, e.HasValue = valueAt(sc, ic, p)
		out[p-start] = e
	}
	return out
}

// OutValue returns the value of the edge n -> m.
func (c *EdgeColumn) OutValue(n, m uint32) (model.Value, bool) {
	return c.lookup(c.Fwd, c.FwdStr, c.FwdInt, n, m)
}

func (c *EdgeColumn) lookup(csr *columnar.CSR, sc *columnar.StringColumn, ic *columnar.IntColumn, n, m uint32) (model.Value, bool) {
	start, end := csr.Span(int(n))
	data := csr.Data()
	for p := start; p < end; p++ {
		if data[p] == m {
			return valueAt(sc, ic, p)
		}
	}
	return model.Value{}, false
}

// HasEdge reports whether the edge n -> m exists.
func (c *EdgeColumn) HasEdge(n, m uint32) bool {
	return slices.Contains(c.Out(n), m)
}

func valueAt(sc *columnar.StringColumn, ic *columnar.IntColumn, p int) (model.Value, bool) {
	switch {
	case ic != nil:
		if v, ok := ic.Get(p); ok {
			return model.IntValue(v), true
		}
	case sc != nil:
		if s, ok := sc.Get(p); ok {
			return model.StrValue(s), true
		}
	}
	return model.Value{}, false
}
