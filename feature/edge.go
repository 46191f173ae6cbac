package feature

import (
	"iter"
	"maps"

	"github.com/hupe1980/tfgraph/internal/corpus"
	"github.com/hupe1980/tfgraph/model"
)

// EdgeFeature is an edge feature, optionally carrying a value per edge.
type EdgeFeature struct {
	d   *corpus.Data
	col *corpus.EdgeColumn
}

// Name returns the feature name.
func (f *EdgeFeature) Name() string { return f.col.Name }

// HasValues reports whether edges carry values.
func (f *EdgeFeature) HasValues() bool { return f.col.EdgeValues }

// ValueType returns the declared value type of edge values.
func (f *EdgeFeature) ValueType() model.ValueType { return f.col.ValueType }

// Meta returns a copy of the feature file metadata.
func (f *EdgeFeature) Meta() map[string]string { return maps.Clone(f.col.Meta) }

// F returns the outgoing edges of n, sorted by the canonical rank of their
// targets.
func (f *EdgeFeature) F(n model.Node) []model.Edge {
	return f.col.OutEdges(uint32(n))
}

// T returns the incoming edges of n, sorted by the canonical rank of their
// sources.
func (f *EdgeFeature) T(n model.Node) []model.Edge {
	return f.col.InEdges(uint32(n))
}

// B returns the edges of n in both directions, in canonical order. When n
// is linked to the same node both ways the outgoing edge wins.
func (f *EdgeFeature) B(n model.Node) []model.Edge {
	out, in := f.F(n), f.T(n)
	if len(in) == 0 {
		return out
	}
	if len(out) == 0 {
		return in
	}
	rank := f.d.Rank
	merged := make([]model.Edge, 0, len(out)+len(in))
	i, j := 0, 0
	for i < len(out) && j < len(in) {
		ro, ri := rank[out[i].Node], rank[in[j].Node]
		switch {
		case ro < ri:
			merged = append(merged, out[i])
			i++
		case ri < ro:
			merged = append(merged, in[j])
			j++
		default:
			merged = append(merged, out[i])
			i++
			j++
		}
	}
	merged = append(merged, out[i:]...)
	return append(merged, in[j:]...)
}

// Out returns the targets of the outgoing edges of n without values. The
// slice is a read-only view.
func (f *EdgeFeature) Out(n model.Node) []uint32 { return f.col.Out(uint32(n)) }

// In returns the sources of the incoming edges of n without values. The
// slice is a read-only view.
func (f *EdgeFeature) In(n model.Node) []uint32 { return f.col.In(uint32(n)) }

// Value returns the value of the edge from -> to. ok is false when the edge
// does not exist or has no value.
func (f *EdgeFeature) Value(from, to model.Node) (model.Value, bool) {
	return f.col.OutValue(uint32(from), uint32(to))
}

// Items yields every node with outgoing edges together with those edges.
func (f *EdgeFeature) Items() iter.Seq2[model.Node, []model.Edge] {
	return func(yield func(model.Node, []model.Edge) bool) {
		for n := range f.col.Fwd.Items() {
			if !yield(model.Node(n), f.col.OutEdges(uint32(n))) { //nolint:gosec
				return
			}
		}
	}
}

// FreqList counts edge values, optionally restricted by the types of the
// source and target nodes. Edges without a value are not counted. It
// returns nil for features without values.
func (f *EdgeFeature) FreqList(fromTypes, toTypes []string) []Freq {
	if !f.col.EdgeValues {
		return nil
	}
	keepFrom, keepTo := typeFilter(f.d, fromTypes), typeFilter(f.d, toTypes)
	counts := map[model.Value]int{}
	for n := range f.col.Fwd.Items() {
		if !keepFrom(uint32(n)) { //nolint:gosec
			continue
		}
		for _, e := range f.col.OutEdges(uint32(n)) { //nolint:gosec
			if e.HasValue && keepTo(uint32(e.Node)) {
				counts[e.Value]++
			}
		}
	}
	return freqList(counts)
}

// Count returns the number of edges, optionally restricted by the types of
// the source and target nodes.
func (f *EdgeFeature) Count(fromTypes, toTypes []string) int {
	keepFrom, keepTo := typeFilter(f.d, fromTypes), typeFilter(f.d, toTypes)
	total := 0
	for n, row := range f.col.Fwd.Items() {
		if !keepFrom(uint32(n)) { //nolint:gosec
			continue
		}
		for _, m := range row {
			if keepTo(m) {
				total++
			}
		}
	}
	return total
}
