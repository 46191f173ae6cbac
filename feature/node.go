package feature

import (
	"iter"
	"maps"

	"github.com/hupe1980/tfgraph/internal/columnar"
	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/internal/precompute"
	"github.com/hupe1980/tfgraph/model"
)

// NodeFeature is a string or integer valued node feature.
type NodeFeature struct {
	d   *corpus.Data
	col *corpus.NodeColumn
}

// Name returns the feature name.
func (f *NodeFeature) Name() string { return f.col.Name }

// ValueType returns the declared value type.
func (f *NodeFeature) ValueType() model.ValueType { return f.col.ValueType }

// Meta returns a copy of the feature file metadata.
func (f *NodeFeature) Meta() map[string]string { return maps.Clone(f.col.Meta) }

// V returns the value of node n.
func (f *NodeFeature) V(n model.Node) (model.Value, bool) {
	return f.col.Get(uint32(n))
}

// Has reports whether node n has a value.
func (f *NodeFeature) Has(n model.Node) bool {
	return f.col.Has(uint32(n))
}

// S returns all nodes holding value v, in canonical order.
func (f *NodeFeature) S(v model.Value) []model.Node {
	var raw []uint32
	for n := range f.match(func(x model.Value) bool { return x.Equal(v) }) {
		raw = append(raw, n)
	}
	precompute.SortByRank(raw, f.d.Rank)
	return model.NodesFromUint32(raw)
}

// Matching yields, in node order, the nodes whose value satisfies pred.
// For string features pred is evaluated once per distinct value.
func (f *NodeFeature) Matching(pred func(model.Value) bool) iter.Seq[model.Node] {
	return func(yield func(model.Node) bool) {
		for n := range f.match(pred) {
			if !yield(model.Node(n)) {
				return
			}
		}
	}
}

func (f *NodeFeature) match(pred func(model.Value) bool) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		if f.col.Int != nil {
			for n, v := range f.col.Int.Items() {
				if pred(model.IntValue(v)) && !yield(uint32(n)) { //nolint:gosec
					return
				}
			}
			return
		}
		pool := f.col.Str.Pool()
		hit := make([]bool, pool.Len())
		for i := range hit {
			hit[i] = pred(model.StrValue(pool.String(uint32(i)))) //nolint:gosec
		}
		for n, ix := range f.col.Str.Index() {
			if ix == columnar.NoString || int(ix) >= len(hit) || !hit[ix] {
				continue
			}
			if !yield(uint32(n)) { //nolint:gosec
				return
			}
		}
	}
}

// Items yields every node with a value, in node order.
func (f *NodeFeature) Items() iter.Seq2[model.Node, model.Value] {
	return func(yield func(model.Node, model.Value) bool) {
		for n, v := range f.col.Items() {
			if !yield(model.Node(n), v) {
				return
			}
		}
	}
}

// FreqList counts the values of the feature, optionally restricted to nodes
// of the given types, sorted by count descending then value ascending.
func (f *NodeFeature) FreqList(types ...string) []Freq {
	keep := typeFilter(f.d, types)
	counts := map[model.Value]int{}
	for n, v := range f.col.Items() {
		if keep(n) {
			counts[v]++
		}
	}
	return freqList(counts)
}
